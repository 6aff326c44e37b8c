package ports

import (
	"context"

	"agrodesk/models"

	"github.com/google/uuid"
)

// CostRepository stores costs. Every call is scoped by the session:
// admins see all rows, everyone else only their own.
type CostRepository interface {
	List(ctx context.Context, session models.Session, filter models.CostFilter) ([]*models.Cost, error)
	Get(ctx context.Context, session models.Session, id uuid.UUID) (*models.Cost, error)
	Create(ctx context.Context, cost *models.Cost) error
	Update(ctx context.Context, session models.Session, cost *models.Cost) error
	Delete(ctx context.Context, session models.Session, id uuid.UUID) error
	// Total sums amounts over the filtered rows
	Total(ctx context.Context, session models.Session, filter models.CostFilter) (float64, error)
}
