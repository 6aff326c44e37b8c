package app

import (
	"context"
	"fmt"
	"io"
	"time"

	"agrodesk/internal"
	"agrodesk/internal/metrics"
	"agrodesk/models"
	"agrodesk/ports"

	"github.com/google/uuid"
)

// Upload is a document to store
type Upload struct {
	Name        string
	Description *string
	Category    string
	FileName    string
	ContentType string
	Size        int64
	Body        io.Reader
}

// DocumentService keeps document rows and stored objects in step
type DocumentService struct {
	repo    ports.DocumentRepository
	store   ports.ObjectStore
	logger  *internal.Logger
	metrics *metrics.Metrics
	expiry  time.Duration
	now     func() time.Time
}

// NewDocumentService creates a document service. metrics may be nil.
func NewDocumentService(repo ports.DocumentRepository, store ports.ObjectStore, expiry time.Duration, logger *internal.Logger, m *metrics.Metrics) *DocumentService {
	if logger == nil {
		logger = internal.NewNopLogger()
	}
	return &DocumentService{repo: repo, store: store, logger: logger, metrics: m, expiry: expiry, now: time.Now}
}

// List returns documents newest first
func (s *DocumentService) List(ctx context.Context) ([]*models.Document, error) {
	return s.repo.List(ctx)
}

// Upload stores the object, then inserts its row. A failed insert removes
// the object again.
func (s *DocumentService) Upload(ctx context.Context, session models.Session, up Upload) (*models.Document, error) {
	if err := session.Require(); err != nil {
		return nil, err
	}
	fileName := up.FileName
	if fileName == "" {
		fileName = up.Name
	}
	doc := &models.Document{
		Name:        up.Name,
		Description: up.Description,
		Category:    up.Category,
		FileType:    up.ContentType,
		FileSize:    up.Size,
	}
	if err := doc.Validate(); err != nil {
		return nil, err
	}
	uploader := session.UserID.String()
	doc.UploadedBy = &uploader
	doc.FilePath = models.DocumentObjectKey(s.now(), fileName)

	if err := s.store.Put(ctx, doc.FilePath, up.Body, up.Size, up.ContentType); err != nil {
		return nil, err
	}
	if err := s.repo.Create(ctx, doc); err != nil {
		if rmErr := s.store.Remove(ctx, doc.FilePath); rmErr != nil {
			s.logger.Error("failed to remove orphaned object %s: %v", doc.FilePath, rmErr)
		}
		return nil, fmt.Errorf("failed to save document: %w", err)
	}
	s.metrics.ObserveUpload(up.Size)
	s.logger.Info("document uploaded: %s (%d bytes)", doc.FilePath, up.Size)
	return doc, nil
}

// Delete removes the stored object first, then the row
func (s *DocumentService) Delete(ctx context.Context, session models.Session, id uuid.UUID) error {
	if err := session.Require(); err != nil {
		return err
	}
	doc, err := s.repo.Get(ctx, id)
	if err != nil {
		return err
	}
	if err := s.store.Remove(ctx, doc.FilePath); err != nil {
		return err
	}
	return s.repo.Delete(ctx, id)
}

// URL returns a download link for the document
func (s *DocumentService) URL(ctx context.Context, id uuid.UUID) (string, error) {
	doc, err := s.repo.Get(ctx, id)
	if err != nil {
		return "", err
	}
	return s.store.URL(ctx, doc.FilePath, s.expiry)
}
