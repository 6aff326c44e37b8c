package main

import (
	"fmt"
	"text/tabwriter"

	"agrodesk/adapters/postgres"
	"agrodesk/app"
	"agrodesk/models"

	"github.com/spf13/cobra"
)

var trialLimit int

var trialsCmd = &cobra.Command{
	Use:   "trials",
	Short: "Inspect field trials",
}

var trialsLatestCmd = &cobra.Command{
	Use:   "latest",
	Short: "Show the most recently created trials",
	RunE: func(cmd *cobra.Command, args []string) error {
		db, err := openDB(cmd.Context())
		if err != nil {
			return err
		}
		defer db.Close()

		trials := app.NewTrialService(postgres.NewTrialRepository(db), logger)
		latest, err := trials.Latest(cmd.Context(), trialLimit)
		if err != nil {
			return err
		}
		printTrials(cmd, latest)
		return nil
	},
}

func init() {
	trialsLatestCmd.Flags().IntVar(&trialLimit, "limit", 10, "number of trials to show")
	trialsCmd.AddCommand(trialsLatestCmd)
	rootCmd.AddCommand(trialsCmd)
}

func printTrials(cmd *cobra.Command, trials []*models.FieldTrial) {
	w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
	defer w.Flush()
	fmt.Fprintln(w, "CODE\tNAME\tCROP\tSTATUS\tSTART\tCREATED")
	for _, t := range trials {
		fmt.Fprintf(w, "%s\t%s\t%s\t%s\t%s\t%s\n",
			t.TrialCode, t.Name, t.Crop, t.Status, t.StartDate, t.CreatedAt.Format("2006-01-02 15:04"))
	}
}
