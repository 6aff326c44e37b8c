package ports

import (
	"context"
	"io"
	"time"

	"agrodesk/models"

	"github.com/google/uuid"
)

// DocumentRepository stores document metadata rows
type DocumentRepository interface {
	List(ctx context.Context) ([]*models.Document, error)
	Get(ctx context.Context, id uuid.UUID) (*models.Document, error)
	Create(ctx context.Context, doc *models.Document) error
	Delete(ctx context.Context, id uuid.UUID) error
}

// ObjectStore holds uploaded file contents
type ObjectStore interface {
	Put(ctx context.Context, key string, body io.Reader, size int64, contentType string) error
	Remove(ctx context.Context, key string) error
	// URL returns a link to the object valid for at least expiry
	URL(ctx context.Context, key string, expiry time.Duration) (string, error)
}
