package ports

import (
	"context"

	"agrodesk/models"

	"github.com/google/uuid"
)

// AnalysisRepository stores laboratory analyses
type AnalysisRepository interface {
	List(ctx context.Context) ([]*models.Analysis, error)
	Get(ctx context.Context, id uuid.UUID) (*models.Analysis, error)
	Create(ctx context.Context, analysis *models.Analysis) error
	Update(ctx context.Context, analysis *models.Analysis) error
	Delete(ctx context.Context, id uuid.UUID) error
}

// PricingRepository stores the analysis price list
type PricingRepository interface {
	List(ctx context.Context) ([]*models.AnalysisPricing, error)
	ListActive(ctx context.Context) ([]*models.AnalysisPricing, error)
	// GetActiveByType returns nil, nil when no active price exists
	GetActiveByType(ctx context.Context, analysisType string) (*models.AnalysisPricing, error)
	Create(ctx context.Context, pricing *models.AnalysisPricing) error
	Update(ctx context.Context, pricing *models.AnalysisPricing) error
	Delete(ctx context.Context, id uuid.UUID) error
}

// EventRepository stores events addressable by id or slug
type EventRepository interface {
	List(ctx context.Context) ([]*models.Event, error)
	GetByIDOrSlug(ctx context.Context, idOrSlug string) (*models.Event, error)
	Create(ctx context.Context, event *models.Event) error
	// Update never changes the slug
	Update(ctx context.Context, event *models.Event) error
	Delete(ctx context.Context, id uuid.UUID) error
}
