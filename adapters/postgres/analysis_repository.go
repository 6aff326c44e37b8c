package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"agrodesk/domain/core"
	"agrodesk/models"
	"agrodesk/ports"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
)

const analysisColumns = `id, analysis_type, category, status, consultant, client_name, crop, test_count,
	total_price, notes, emailed_date, created_at, updated_at`

type analysisRepository struct {
	db *sqlx.DB
}

// NewAnalysisRepository creates a new analysis repository
func NewAnalysisRepository(db *sqlx.DB) ports.AnalysisRepository {
	return &analysisRepository{db: db}
}

func (r *analysisRepository) List(ctx context.Context) ([]*models.Analysis, error) {
	out := make([]*models.Analysis, 0)
	if err := r.db.SelectContext(ctx, &out, `SELECT `+analysisColumns+` FROM analyses ORDER BY created_at DESC`); err != nil {
		return nil, fmt.Errorf("failed to list analyses: %w", err)
	}
	return out, nil
}

func (r *analysisRepository) Get(ctx context.Context, id uuid.UUID) (*models.Analysis, error) {
	var a models.Analysis
	if err := r.db.GetContext(ctx, &a, `SELECT `+analysisColumns+` FROM analyses WHERE id = $1`, id); err != nil {
		return nil, getErr(err, core.ErrNotFound, id, "get analysis")
	}
	return &a, nil
}

func (r *analysisRepository) Create(ctx context.Context, a *models.Analysis) error {
	if a.ID == uuid.Nil {
		a.ID = core.NewID()
	}
	now := time.Now().UTC()
	if a.CreatedAt.IsZero() {
		a.CreatedAt = now
	}
	a.UpdatedAt = now
	_, err := r.db.NamedExecContext(ctx, `
		INSERT INTO analyses (`+analysisColumns+`)
		VALUES (:id, :analysis_type, :category, :status, :consultant, :client_name, :crop, :test_count,
			:total_price, :notes, :emailed_date, :created_at, :updated_at)
	`, a)
	if err != nil {
		return fmt.Errorf("failed to create analysis: %w", err)
	}
	return nil
}

func (r *analysisRepository) Update(ctx context.Context, a *models.Analysis) error {
	a.UpdatedAt = time.Now().UTC()
	result, err := r.db.NamedExecContext(ctx, `
		UPDATE analyses SET analysis_type = :analysis_type, category = :category, status = :status,
			consultant = :consultant, client_name = :client_name, crop = :crop, test_count = :test_count,
			total_price = :total_price, notes = :notes, emailed_date = :emailed_date, updated_at = :updated_at
		WHERE id = :id
	`, a)
	if err != nil {
		return fmt.Errorf("failed to update analysis: %w", err)
	}
	return affected(result, core.ErrNotFound, a.ID)
}

func (r *analysisRepository) Delete(ctx context.Context, id uuid.UUID) error {
	result, err := r.db.ExecContext(ctx, `DELETE FROM analyses WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("failed to delete analysis: %w", err)
	}
	return affected(result, core.ErrNotFound, id)
}

const pricingColumns = `id, analysis_type, category, base_price, description, is_active, created_at, updated_at`

type pricingRepository struct {
	db *sqlx.DB
}

// NewPricingRepository creates a new analysis pricing repository
func NewPricingRepository(db *sqlx.DB) ports.PricingRepository {
	return &pricingRepository{db: db}
}

func (r *pricingRepository) List(ctx context.Context) ([]*models.AnalysisPricing, error) {
	return r.list(ctx, `SELECT `+pricingColumns+` FROM analysis_pricing ORDER BY analysis_type`)
}

func (r *pricingRepository) ListActive(ctx context.Context) ([]*models.AnalysisPricing, error) {
	return r.list(ctx, `SELECT `+pricingColumns+` FROM analysis_pricing WHERE is_active ORDER BY analysis_type`)
}

func (r *pricingRepository) list(ctx context.Context, query string) ([]*models.AnalysisPricing, error) {
	out := make([]*models.AnalysisPricing, 0)
	if err := r.db.SelectContext(ctx, &out, query); err != nil {
		return nil, fmt.Errorf("failed to list analysis pricing: %w", err)
	}
	return out, nil
}

// GetActiveByType returns nil, nil when no active row matches
func (r *pricingRepository) GetActiveByType(ctx context.Context, analysisType string) (*models.AnalysisPricing, error) {
	var p models.AnalysisPricing
	err := r.db.GetContext(ctx, &p, `SELECT `+pricingColumns+` FROM analysis_pricing
		WHERE analysis_type = $1 AND is_active ORDER BY updated_at DESC LIMIT 1`,
		strings.ToLower(strings.TrimSpace(analysisType)))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to get analysis pricing: %w", err)
	}
	return &p, nil
}

func (r *pricingRepository) Create(ctx context.Context, p *models.AnalysisPricing) error {
	if p.ID == uuid.Nil {
		p.ID = core.NewID()
	}
	now := time.Now().UTC()
	p.CreatedAt, p.UpdatedAt = now, now
	_, err := r.db.NamedExecContext(ctx, `
		INSERT INTO analysis_pricing (`+pricingColumns+`)
		VALUES (:id, :analysis_type, :category, :base_price, :description, :is_active, :created_at, :updated_at)
	`, p)
	if err != nil {
		return fmt.Errorf("failed to create analysis pricing: %w", err)
	}
	return nil
}

func (r *pricingRepository) Update(ctx context.Context, p *models.AnalysisPricing) error {
	p.UpdatedAt = time.Now().UTC()
	result, err := r.db.NamedExecContext(ctx, `
		UPDATE analysis_pricing SET analysis_type = :analysis_type, category = :category,
			base_price = :base_price, description = :description, is_active = :is_active,
			updated_at = :updated_at
		WHERE id = :id
	`, p)
	if err != nil {
		return fmt.Errorf("failed to update analysis pricing: %w", err)
	}
	return affected(result, core.ErrNotFound, p.ID)
}

func (r *pricingRepository) Delete(ctx context.Context, id uuid.UUID) error {
	result, err := r.db.ExecContext(ctx, `DELETE FROM analysis_pricing WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("failed to delete analysis pricing: %w", err)
	}
	return affected(result, core.ErrNotFound, id)
}
