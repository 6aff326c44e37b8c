// Command agrodesk-admin runs maintenance tasks against the agrodesk
// database: schema checks, migrations, user roles and seed data.
package main

import (
	"context"
	"fmt"
	"os"

	"agrodesk/internal"
	"agrodesk/internal/config"
	"agrodesk/internal/migration"

	"github.com/jmoiron/sqlx"
	"github.com/joho/godotenv"
	_ "github.com/lib/pq"
	"github.com/spf13/cobra"
)

var (
	// logger is set by the root command before any subcommand runs
	logger  = internal.NewNopLogger()
	envFile string
	verbose bool
)

var rootCmd = &cobra.Command{
	Use:   "agrodesk-admin",
	Short: "Maintenance commands for the agrodesk database",
	Long: `Maintenance commands for the agrodesk database.

Database commands read DATABASE_URL from the environment or from the
file given with --env-file (default .env).`,
	SilenceUsage: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		level := internal.LogLevelInfo
		if verbose {
			level = internal.LogLevelDebug
		}
		l, err := internal.NewLogger(level, "console")
		if err != nil {
			return err
		}
		logger = l
		return nil
	},
}

func init() {
	rootCmd.PersistentFlags().StringVar(&envFile, "env-file", ".env", "environment file to load before connecting")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "debug logging")
}

// openDB loads configuration and connects. Callers close the handle.
func openDB(ctx context.Context) (*sqlx.DB, error) {
	if err := godotenv.Load(envFile); err != nil {
		logger.Debug("no env file %s: %v", envFile, err)
	}
	cfg, err := config.Load()
	if err != nil {
		return nil, err
	}
	db, err := sqlx.ConnectContext(ctx, "postgres", cfg.Database.URL)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}
	return db, nil
}

// migrateDB brings the schema up to date
func migrateDB(ctx context.Context, db *sqlx.DB) error {
	return migration.NewRunner(logger).Run(ctx, db)
}

func main() {
	if err := rootCmd.ExecuteContext(context.Background()); err != nil {
		os.Exit(1)
	}
}
