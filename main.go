package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"

	"agrodesk/internal"
	"agrodesk/internal/config"
	"agrodesk/internal/container"
	"agrodesk/internal/errors"
	"agrodesk/internal/migration"
	"agrodesk/ports"

	"github.com/jmoiron/sqlx"
	"github.com/joho/godotenv"
	_ "github.com/lib/pq"
)

// initDatabase initializes the PostgreSQL database connection
func initDatabase(ctx context.Context, appConfig *config.Config, logger *internal.Logger) (*sqlx.DB, error) {
	if appConfig.Database.URL == "" {
		return nil, errors.ConfigInvalid("DATABASE_URL is required")
	}

	db, err := sqlx.ConnectContext(ctx, "postgres", appConfig.Database.URL)
	if err != nil {
		return nil, errors.Wrap(err, "failed to connect to database")
	}
	db.SetMaxOpenConns(appConfig.Database.MaxOpenConns)
	db.SetMaxIdleConns(appConfig.Database.MaxIdleConns)
	db.SetConnMaxLifetime(appConfig.Database.ConnMaxLifetime)

	migrator := migration.NewRunner(logger)
	if err := migrator.Run(ctx, db); err != nil {
		db.Close()
		return nil, errors.Wrap(err, "database migration failed")
	}

	return db, nil
}

func main() {
	// Load environment variables from .env file
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found, using system environment variables")
	}

	appConfig, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	logger, err := internal.NewLogger(internal.ParseLogLevel(appConfig.Logging.Level), appConfig.Logging.Format)
	if err != nil {
		log.Fatalf("Failed to create logger: %v", err)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	db, err := initDatabase(ctx, appConfig, logger)
	if err != nil {
		logger.Error("Failed to initialize database: %v", err)
		os.Exit(1)
	}

	appContainer, err := container.New(appConfig, logger)
	if err != nil {
		logger.Error("Failed to create application container: %v", err)
		os.Exit(1)
	}
	defer appContainer.Shutdown(context.Background())

	// Documents are optional: without storage the rest of the API still runs
	var store ports.ObjectStore
	if s, err := appContainer.InitStorage(ctx); err != nil {
		logger.Warn("Document storage disabled: %v", err)
	} else {
		store = s
	}

	if err := appContainer.InitWithDatabase(ctx, db, store); err != nil {
		logger.Error("Failed to initialize container: %v", err)
		os.Exit(1)
	}

	if err := appContainer.Server().ListenAndServe(ctx, ":"+appConfig.Server.Port); err != nil {
		logger.Error("Server stopped: %v", err)
		os.Exit(1)
	}
}
