package main

import (
	"fmt"
	"strings"
	"text/tabwriter"

	"agrodesk/internal/migration"

	"github.com/spf13/cobra"
)

var schemaCmd = &cobra.Command{
	Use:   "schema",
	Short: "Inspect the database schema",
}

var schemaCheckCmd = &cobra.Command{
	Use:   "check",
	Short: "Verify every expected table and column exists",
	RunE:  runSchemaCheck,
}

var migrateCmd = &cobra.Command{
	Use:   "migrate",
	Short: "Create or upgrade the database schema",
	RunE: func(cmd *cobra.Command, args []string) error {
		db, err := openDB(cmd.Context())
		if err != nil {
			return err
		}
		defer db.Close()
		if err := migrateDB(cmd.Context(), db); err != nil {
			return err
		}
		fmt.Fprintln(cmd.OutOrStdout(), "schema is up to date")
		return nil
	},
}

func init() {
	schemaCmd.AddCommand(schemaCheckCmd)
	rootCmd.AddCommand(schemaCmd, migrateCmd)
}

func runSchemaCheck(cmd *cobra.Command, args []string) error {
	db, err := openDB(cmd.Context())
	if err != nil {
		return err
	}
	defer db.Close()

	tables, err := migration.CheckSchema(cmd.Context(), db)
	if err != nil {
		return err
	}
	failed := printSchema(cmd, tables)
	if failed > 0 {
		return fmt.Errorf("%d table(s) missing or incomplete", failed)
	}
	return nil
}

// printSchema writes one line per table and returns how many are not OK
func printSchema(cmd *cobra.Command, tables []migration.TableStatus) int {
	w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
	defer w.Flush()

	failed := 0
	fmt.Fprintln(w, "TABLE\tSTATUS\tCOLUMNS\tMISSING")
	for _, t := range tables {
		status := "ok"
		switch {
		case !t.Exists:
			status = "absent"
		case len(t.Missing) > 0:
			status = "incomplete"
		}
		if !t.OK() {
			failed++
		}
		fmt.Fprintf(w, "%s\t%s\t%d\t%s\n", t.Name, status, len(t.Columns), strings.Join(t.Missing, ","))
	}
	return failed
}
