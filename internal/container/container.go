package container

import (
	"context"
	"fmt"

	"agrodesk/adapters/postgres"
	"agrodesk/adapters/storage"
	"agrodesk/app"
	"agrodesk/internal"
	"agrodesk/internal/api"
	"agrodesk/internal/config"
	"agrodesk/internal/metrics"
	"agrodesk/ports"

	"github.com/jmoiron/sqlx"
)

// Container holds all application dependencies and manages their lifecycle
type Container struct {
	Config *config.Config
	Logger *internal.Logger

	// Infrastructure
	DB      *sqlx.DB
	Store   ports.ObjectStore
	Metrics *metrics.Metrics

	// Repositories (data access layer)
	UserRepo      ports.UserRepository
	CostRepo      ports.CostRepository
	DocumentRepo  ports.DocumentRepository
	TrialRepo     ports.TrialRepository
	AnalysisRepo  ports.AnalysisRepository
	PricingRepo   ports.PricingRepository
	EventRepo     ports.EventRepository
	BatchRepo     ports.BatchRepository
	DeliveryRepo  ports.DeliveryRepository
	NutritionRepo ports.NutritionRequestRepository

	// Application services
	Users      *app.UserService
	Costs      *app.CostService
	Documents  *app.DocumentService
	Trials     *app.TrialService
	TrialStats *app.TrialStatisticsService
	Reports    *app.ReportService
	Dashboard  *app.DashboardService
	Analyses   *app.AnalysisService
	Pricing    *app.PricingService
	Events     *app.EventService
	Operations *app.OperationsService
}

// New creates a new dependency injection container
func New(cfg *config.Config, logger *internal.Logger) (*Container, error) {
	if cfg == nil {
		return nil, fmt.Errorf("config cannot be nil")
	}
	if logger == nil {
		logger = internal.NewNopLogger()
	}

	c := &Container{
		Config: cfg,
		Logger: logger,
	}
	if cfg.Server.MetricsEnabled {
		c.Metrics = metrics.New("agrodesk")
	}
	return c, nil
}

// InitWithDatabase initializes components that require database access.
// A nil store leaves document routes unmounted.
func (c *Container) InitWithDatabase(ctx context.Context, db *sqlx.DB, store ports.ObjectStore) error {
	if db == nil {
		return fmt.Errorf("database connection cannot be nil")
	}

	c.DB = db
	c.Store = store

	if err := db.PingContext(ctx); err != nil {
		return fmt.Errorf("database connection test failed: %w", err)
	}

	c.initRepositories()
	c.initServices()

	c.Logger.Info("Container initialized successfully with database connection")
	return nil
}

// InitStorage connects the document object store from config
func (c *Container) InitStorage(ctx context.Context) (ports.ObjectStore, error) {
	store, err := storage.NewS3Store(ctx, c.Config.Storage)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize document storage: %w", err)
	}
	c.Logger.Info("Document storage bucket: %s", store.Bucket())
	return store, nil
}

// initRepositories initializes data access repositories
func (c *Container) initRepositories() {
	c.UserRepo = postgres.NewUserRepository(c.DB)
	c.CostRepo = postgres.NewCostRepository(c.DB)
	c.DocumentRepo = postgres.NewDocumentRepository(c.DB)
	c.TrialRepo = postgres.NewTrialRepository(c.DB)
	c.AnalysisRepo = postgres.NewAnalysisRepository(c.DB)
	c.PricingRepo = postgres.NewPricingRepository(c.DB)
	c.EventRepo = postgres.NewEventRepository(c.DB)
	c.BatchRepo = postgres.NewBatchRepository(c.DB)
	c.DeliveryRepo = postgres.NewDeliveryRepository(c.DB)
	c.NutritionRepo = postgres.NewNutritionRequestRepository(c.DB)
}

// initServices wires the application services over the repositories
func (c *Container) initServices() {
	cfg := c.Config

	c.Users = app.NewUserService(c.UserRepo, c.Logger)
	c.Costs = app.NewCostService(c.CostRepo, c.Logger)
	if c.Store != nil {
		c.Documents = app.NewDocumentService(c.DocumentRepo, c.Store, cfg.Storage.URLExpiry, c.Logger, c.Metrics)
	}
	c.Trials = app.NewTrialService(c.TrialRepo, c.Logger)
	c.TrialStats = app.NewTrialStatisticsService(c.Trials, cfg.Stats.Alpha, c.Logger, c.Metrics)
	c.Reports = app.NewReportService(c.Trials, c.TrialStats)
	c.Dashboard = app.NewDashboardService(c.AnalysisRepo, c.PricingRepo, c.BatchRepo, c.DeliveryRepo, c.NutritionRepo, cfg.Dashboard.TopN, c.Logger)
	c.Analyses = app.NewAnalysisService(c.AnalysisRepo, c.PricingRepo, c.Logger)
	c.Pricing = app.NewPricingService(c.PricingRepo)
	c.Events = app.NewEventService(c.EventRepo)
	c.Operations = app.NewOperationsService(c.BatchRepo, c.DeliveryRepo, c.NutritionRepo)
}

// Server builds the HTTP API over the initialized services
func (c *Container) Server() *api.Server {
	return api.NewServer(api.Services{
		Costs:      c.Costs,
		Documents:  c.Documents,
		Trials:     c.Trials,
		TrialStats: c.TrialStats,
		Reports:    c.Reports,
		Dashboard:  c.Dashboard,
		Analyses:   c.Analyses,
		Pricing:    c.Pricing,
		Events:     c.Events,
		Operations: c.Operations,
	}, api.Options{
		RequestTimeout: c.Config.Server.RequestTimeout,
		DefaultDays:    c.Config.Dashboard.DefaultDays,
		Alpha:          c.Config.Stats.Alpha,
	}, c.Logger, c.Metrics)
}

// Shutdown gracefully shuts down all components
func (c *Container) Shutdown(ctx context.Context) error {
	_ = c.Logger.Sync()
	if c.DB != nil {
		return c.DB.Close()
	}
	return nil
}
