package postgres

import (
	"context"
	"fmt"
	"time"

	"agrodesk/domain/core"
	"agrodesk/models"
	"agrodesk/ports"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
)

const documentColumns = `id, name, description, category, file_type, file_path, file_size, uploaded_by, created_at, updated_at`

type documentRepository struct {
	db *sqlx.DB
}

// NewDocumentRepository creates a new document repository
func NewDocumentRepository(db *sqlx.DB) ports.DocumentRepository {
	return &documentRepository{db: db}
}

func (r *documentRepository) List(ctx context.Context) ([]*models.Document, error) {
	docs := make([]*models.Document, 0)
	if err := r.db.SelectContext(ctx, &docs, `SELECT `+documentColumns+` FROM documents ORDER BY created_at DESC`); err != nil {
		return nil, fmt.Errorf("failed to list documents: %w", err)
	}
	return docs, nil
}

func (r *documentRepository) Get(ctx context.Context, id uuid.UUID) (*models.Document, error) {
	var doc models.Document
	if err := r.db.GetContext(ctx, &doc, `SELECT `+documentColumns+` FROM documents WHERE id = $1`, id); err != nil {
		return nil, getErr(err, core.ErrDocumentNotFound, id, "get document")
	}
	return &doc, nil
}

func (r *documentRepository) Create(ctx context.Context, doc *models.Document) error {
	if doc.ID == uuid.Nil {
		doc.ID = core.NewID()
	}
	now := time.Now().UTC()
	doc.CreatedAt, doc.UpdatedAt = now, now

	_, err := r.db.NamedExecContext(ctx, `
		INSERT INTO documents (`+documentColumns+`)
		VALUES (:id, :name, :description, :category, :file_type, :file_path, :file_size, :uploaded_by, :created_at, :updated_at)
	`, doc)
	if err != nil {
		return fmt.Errorf("failed to create document: %w", err)
	}
	return nil
}

func (r *documentRepository) Delete(ctx context.Context, id uuid.UUID) error {
	result, err := r.db.ExecContext(ctx, `DELETE FROM documents WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("failed to delete document: %w", err)
	}
	return affected(result, core.ErrDocumentNotFound, id)
}
