package ports

import (
	"context"

	"agrodesk/models"

	"github.com/google/uuid"
)

// BatchRepository reads production batches
type BatchRepository interface {
	// Recent returns the newest batches by production date
	Recent(ctx context.Context, limit int) ([]*models.Batch, error)
}

// DeliveryRepository stores farm deliveries
type DeliveryRepository interface {
	List(ctx context.Context) ([]*models.FarmDelivery, error)
	Get(ctx context.Context, id uuid.UUID) (*models.FarmDelivery, error)
	Create(ctx context.Context, delivery *models.FarmDelivery) error
	Update(ctx context.Context, delivery *models.FarmDelivery) error
	Delete(ctx context.Context, id uuid.UUID) error
}

// NutritionRequestRepository stores nutrition farm requests
type NutritionRequestRepository interface {
	List(ctx context.Context) ([]*models.NutritionFarmRequest, error)
	Get(ctx context.Context, id uuid.UUID) (*models.NutritionFarmRequest, error)
	Create(ctx context.Context, req *models.NutritionFarmRequest) error
	Update(ctx context.Context, req *models.NutritionFarmRequest) error
	Delete(ctx context.Context, id uuid.UUID) error
}
