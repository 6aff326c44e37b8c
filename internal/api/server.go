// Package api serves the agrodesk JSON API.
package api

import (
	"context"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"agrodesk/app"
	"agrodesk/internal"
	"agrodesk/internal/metrics"
)

// Services are the application services the routes call into. A nil
// service leaves its routes unmounted.
type Services struct {
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

// Options tune the server
type Options struct {
	RequestTimeout time.Duration
	// DefaultDays is the analysis dashboard window when ?days is absent
	DefaultDays int
	// Alpha is the significance level for ad-hoc ANOVA requests
	Alpha float64
}

// Server is the HTTP API
type Server struct {
	router   *chi.Mux
	services Services
	opts     Options
	logger   *internal.Logger
	metrics  *metrics.Metrics
}

// NewServer builds the router. m may be nil to disable /metrics.
func NewServer(services Services, opts Options, logger *internal.Logger, m *metrics.Metrics) *Server {
	if logger == nil {
		logger = internal.NewNopLogger()
	}
	if opts.RequestTimeout <= 0 {
		opts.RequestTimeout = 30 * time.Second
	}
	s := &Server{
		router:   chi.NewRouter(),
		services: services,
		opts:     opts,
		logger:   logger,
		metrics:  m,
	}
	s.setupMiddleware()
	s.setupRoutes()
	return s
}

// Handler returns the root handler
func (s *Server) Handler() http.Handler {
	return s.router
}

// setupMiddleware configures HTTP middleware
func (s *Server) setupMiddleware() {
	s.router.Use(middleware.RequestID)
	s.router.Use(middleware.RealIP)
	s.router.Use(s.requestLogger)
	s.router.Use(middleware.Recoverer)
	if s.metrics != nil {
		s.router.Use(s.metrics.Middleware)
	}
	s.router.Use(middleware.Compress(5))
}

// setupRoutes configures the application routes
func (s *Server) setupRoutes() {
	s.router.Get("/healthz", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
	})
	if s.metrics != nil {
		s.router.Method(http.MethodGet, "/metrics", s.metrics.Handler())
	}

	s.router.Route("/api", func(r chi.Router) {
		r.Use(middleware.Timeout(s.opts.RequestTimeout))

		r.Post("/stats/anova", s.handleANOVA)

		if s.services.Costs != nil {
			r.Route("/costs", s.costRoutes)
		}
		if s.services.Documents != nil {
			r.Route("/documents", s.documentRoutes)
		}
		if s.services.Operations != nil {
			r.Get("/batches/recent", s.handleRecentBatches)
			r.Route("/deliveries", s.deliveryRoutes)
			r.Route("/nutrition-requests", s.nutritionRequestRoutes)
		}
		if s.services.Dashboard != nil {
			r.Get("/operations/overview", s.handleOperationsOverview)
		}
		if s.services.Pricing != nil {
			r.Route("/pricing", s.pricingRoutes)
		}
		if s.services.Analyses != nil {
			r.Route("/analyses", s.analysisRoutes)
		}
		if s.services.Events != nil {
			r.Route("/events", s.eventRoutes)
		}
		if s.services.Trials != nil {
			r.Route("/trials", s.trialRoutes)
		}
	})
}

// requestLogger logs one line per request at debug, errors at warn
func (s *Server) requestLogger(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
		next.ServeHTTP(ww, r)
		status := ww.Status()
		if status == 0 {
			status = http.StatusOK
		}
		if status >= http.StatusInternalServerError {
			s.logger.Warn("%s %s -> %d (%s) [%s]", r.Method, r.URL.Path, status, time.Since(start), middleware.GetReqID(r.Context()))
			return
		}
		s.logger.Debug("%s %s -> %d (%s)", r.Method, r.URL.Path, status, time.Since(start))
	})
}

// ListenAndServe runs the server until ctx is cancelled, then shuts down
// gracefully
func (s *Server) ListenAndServe(ctx context.Context, addr string) error {
	srv := &http.Server{
		Addr:              addr,
		Handler:           s.router,
		ReadHeaderTimeout: 10 * time.Second,
	}
	errCh := make(chan error, 1)
	go func() {
		s.logger.Info("Starting agrodesk API on %s", addr)
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if err == http.ErrServerClosed {
			return nil
		}
		return err
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		s.logger.Info("Shutting down agrodesk API")
		return srv.Shutdown(shutdownCtx)
	}
}
