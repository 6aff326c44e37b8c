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

// DefaultBatchLimit bounds Recent when the caller passes no limit
const DefaultBatchLimit = 10

type batchRepository struct {
	db *sqlx.DB
}

// NewBatchRepository creates a new product batch repository
func NewBatchRepository(db *sqlx.DB) ports.BatchRepository {
	return &batchRepository{db: db}
}

// Recent joins batches with their product name
func (r *batchRepository) Recent(ctx context.Context, limit int) ([]*models.Batch, error) {
	if limit <= 0 {
		limit = DefaultBatchLimit
	}
	batches := make([]*models.Batch, 0)
	err := r.db.SelectContext(ctx, &batches, `
		SELECT b.id, b.product_id, COALESCE(p.name, $2) AS product_name, b.production_date,
			b.batch_no, b.work_order, b.ph, b.conductivity_ms, b.sg, b.volume, b.note, b.created_at
		FROM product_batches b
		LEFT JOIN products p ON p.id = b.product_id
		ORDER BY b.production_date DESC, b.created_at DESC
		LIMIT $1
	`, limit, models.UnknownProduct)
	if err != nil {
		return nil, fmt.Errorf("failed to list recent batches: %w", err)
	}
	return batches, nil
}

const deliveryColumns = `id, farm, date, delivered_by, received_by, produce, quantity, notes, created_at, updated_at`

type deliveryRepository struct {
	db *sqlx.DB
}

// NewDeliveryRepository creates a new farm delivery repository
func NewDeliveryRepository(db *sqlx.DB) ports.DeliveryRepository {
	return &deliveryRepository{db: db}
}

func (r *deliveryRepository) List(ctx context.Context) ([]*models.FarmDelivery, error) {
	out := make([]*models.FarmDelivery, 0)
	if err := r.db.SelectContext(ctx, &out, `SELECT `+deliveryColumns+` FROM farm_deliveries ORDER BY date DESC`); err != nil {
		return nil, fmt.Errorf("failed to list farm deliveries: %w", err)
	}
	return out, nil
}

func (r *deliveryRepository) Get(ctx context.Context, id uuid.UUID) (*models.FarmDelivery, error) {
	var d models.FarmDelivery
	if err := r.db.GetContext(ctx, &d, `SELECT `+deliveryColumns+` FROM farm_deliveries WHERE id = $1`, id); err != nil {
		return nil, getErr(err, core.ErrNotFound, id, "get farm delivery")
	}
	return &d, nil
}

func (r *deliveryRepository) Create(ctx context.Context, d *models.FarmDelivery) error {
	if d.ID == uuid.Nil {
		d.ID = core.NewID()
	}
	now := time.Now().UTC()
	d.CreatedAt, d.UpdatedAt = now, now
	_, err := r.db.NamedExecContext(ctx, `
		INSERT INTO farm_deliveries (`+deliveryColumns+`)
		VALUES (:id, :farm, :date, :delivered_by, :received_by, :produce, :quantity, :notes, :created_at, :updated_at)
	`, d)
	if err != nil {
		return fmt.Errorf("failed to create farm delivery: %w", err)
	}
	return nil
}

// Update rewrites the row and bumps updated_at
func (r *deliveryRepository) Update(ctx context.Context, d *models.FarmDelivery) error {
	d.UpdatedAt = time.Now().UTC()
	result, err := r.db.NamedExecContext(ctx, `
		UPDATE farm_deliveries SET farm = :farm, date = :date, delivered_by = :delivered_by,
			received_by = :received_by, produce = :produce, quantity = :quantity, notes = :notes,
			updated_at = :updated_at
		WHERE id = :id
	`, d)
	if err != nil {
		return fmt.Errorf("failed to update farm delivery: %w", err)
	}
	return affected(result, core.ErrNotFound, d.ID)
}

func (r *deliveryRepository) Delete(ctx context.Context, id uuid.UUID) error {
	result, err := r.db.ExecContext(ctx, `DELETE FROM farm_deliveries WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("failed to delete farm delivery: %w", err)
	}
	return affected(result, core.ErrNotFound, id)
}

const requestColumns = `id, farm, manager, date, status, materials, notes, created_at, updated_at`

type nutritionRequestRepository struct {
	db *sqlx.DB
}

// NewNutritionRequestRepository creates a new nutrition farm request repository
func NewNutritionRequestRepository(db *sqlx.DB) ports.NutritionRequestRepository {
	return &nutritionRequestRepository{db: db}
}

func (r *nutritionRequestRepository) List(ctx context.Context) ([]*models.NutritionFarmRequest, error) {
	out := make([]*models.NutritionFarmRequest, 0)
	if err := r.db.SelectContext(ctx, &out, `SELECT `+requestColumns+` FROM nutrition_farm_requests ORDER BY date DESC`); err != nil {
		return nil, fmt.Errorf("failed to list nutrition farm requests: %w", err)
	}
	return out, nil
}

func (r *nutritionRequestRepository) Get(ctx context.Context, id uuid.UUID) (*models.NutritionFarmRequest, error) {
	var req models.NutritionFarmRequest
	if err := r.db.GetContext(ctx, &req, `SELECT `+requestColumns+` FROM nutrition_farm_requests WHERE id = $1`, id); err != nil {
		return nil, getErr(err, core.ErrNotFound, id, "get nutrition farm request")
	}
	return &req, nil
}

func (r *nutritionRequestRepository) Create(ctx context.Context, req *models.NutritionFarmRequest) error {
	if req.ID == uuid.Nil {
		req.ID = core.NewID()
	}
	now := time.Now().UTC()
	req.CreatedAt, req.UpdatedAt = now, now
	_, err := r.db.NamedExecContext(ctx, `
		INSERT INTO nutrition_farm_requests (`+requestColumns+`)
		VALUES (:id, :farm, :manager, :date, :status, :materials, :notes, :created_at, :updated_at)
	`, req)
	if err != nil {
		return fmt.Errorf("failed to create nutrition farm request: %w", err)
	}
	return nil
}

func (r *nutritionRequestRepository) Update(ctx context.Context, req *models.NutritionFarmRequest) error {
	req.UpdatedAt = time.Now().UTC()
	result, err := r.db.NamedExecContext(ctx, `
		UPDATE nutrition_farm_requests SET farm = :farm, manager = :manager, date = :date,
			status = :status, materials = :materials, notes = :notes, updated_at = :updated_at
		WHERE id = :id
	`, req)
	if err != nil {
		return fmt.Errorf("failed to update nutrition farm request: %w", err)
	}
	return affected(result, core.ErrNotFound, req.ID)
}

func (r *nutritionRequestRepository) Delete(ctx context.Context, id uuid.UUID) error {
	result, err := r.db.ExecContext(ctx, `DELETE FROM nutrition_farm_requests WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("failed to delete nutrition farm request: %w", err)
	}
	return affected(result, core.ErrNotFound, id)
}
