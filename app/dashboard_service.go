package app

import (
	"context"
	"time"

	"agrodesk/internal"
	"agrodesk/internal/aggregate"
	"agrodesk/models"
	"agrodesk/ports"
)

// OperationsOverview is the operations landing page
type OperationsOverview struct {
	RecentBatches []*models.Batch            `json:"recent_batches"`
	Deliveries    *aggregate.DeliverySummary `json:"deliveries"`
	Requests      *aggregate.RequestSummary  `json:"requests"`
	Pricing       *aggregate.PricingSummary  `json:"pricing"`
}

// DashboardService builds the aggregate views
type DashboardService struct {
	analyses   ports.AnalysisRepository
	pricing    ports.PricingRepository
	batches    ports.BatchRepository
	deliveries ports.DeliveryRepository
	requests   ports.NutritionRequestRepository
	topN       int
	logger     *internal.Logger
	now        func() time.Time
}

// NewDashboardService creates a dashboard service
func NewDashboardService(
	analyses ports.AnalysisRepository,
	pricing ports.PricingRepository,
	batches ports.BatchRepository,
	deliveries ports.DeliveryRepository,
	requests ports.NutritionRequestRepository,
	topN int,
	logger *internal.Logger,
) *DashboardService {
	if logger == nil {
		logger = internal.NewNopLogger()
	}
	if topN <= 0 {
		topN = 5
	}
	return &DashboardService{
		analyses: analyses, pricing: pricing, batches: batches,
		deliveries: deliveries, requests: requests,
		topN: topN, logger: logger, now: time.Now,
	}
}

// Analyses builds the analysis dashboard over the filtered analyses
func (s *DashboardService) Analyses(ctx context.Context, filter aggregate.AnalysisFilter) (*aggregate.AnalysisDashboard, error) {
	all, err := s.analyses.List(ctx)
	if err != nil {
		return nil, err
	}
	now := s.now()
	return aggregate.BuildAnalysisDashboard(filter.Apply(all, now), now, s.topN), nil
}

// Operations gathers batches, deliveries, requests and pricing
func (s *DashboardService) Operations(ctx context.Context, batchLimit int) (*OperationsOverview, error) {
	batches, err := s.batches.Recent(ctx, batchLimit)
	if err != nil {
		return nil, err
	}
	deliveries, err := s.deliveries.List(ctx)
	if err != nil {
		return nil, err
	}
	requests, err := s.requests.List(ctx)
	if err != nil {
		return nil, err
	}
	pricing, err := s.pricing.List(ctx)
	if err != nil {
		return nil, err
	}
	return &OperationsOverview{
		RecentBatches: batches,
		Deliveries:    aggregate.SummarizeDeliveries(deliveries),
		Requests:      aggregate.SummarizeRequests(requests),
		Pricing:       aggregate.SummarizePricing(pricing),
	}, nil
}
