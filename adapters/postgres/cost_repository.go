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

const costColumns = `id, user_id, date, category, description, amount, expense_type, created_at, updated_at`

type costRepository struct {
	db *sqlx.DB
}

// NewCostRepository creates a new cost repository
func NewCostRepository(db *sqlx.DB) ports.CostRepository {
	return &costRepository{db: db}
}

// scoped limits non-admin sessions to their own rows
func scoped(session models.Session) *where {
	w := &where{}
	if !session.IsAdmin() {
		w.add("user_id = $%d", session.UserID)
	}
	return w
}

func costWhere(session models.Session, filter models.CostFilter) *where {
	w := scoped(session)
	if !filter.Start.IsZero() {
		w.add("date >= $%d", filter.Start)
	}
	if !filter.End.IsZero() {
		w.add("date <= $%d", filter.End)
	}
	if filter.Category != "" {
		w.add("category = $%d", filter.Category)
	}
	if filter.ExpenseType != "" {
		w.add("expense_type = $%d", filter.ExpenseType)
	}
	return w
}

// List returns costs newest first
func (r *costRepository) List(ctx context.Context, session models.Session, filter models.CostFilter) ([]*models.Cost, error) {
	w := costWhere(session, filter)
	costs := make([]*models.Cost, 0)
	query := `SELECT ` + costColumns + ` FROM costs` + w.String() + ` ORDER BY date DESC, created_at DESC`
	if err := r.db.SelectContext(ctx, &costs, query, w.args...); err != nil {
		return nil, fmt.Errorf("failed to list costs: %w", err)
	}
	return costs, nil
}

// Get retrieves one cost visible to the session
func (r *costRepository) Get(ctx context.Context, session models.Session, id uuid.UUID) (*models.Cost, error) {
	w := scoped(session)
	w.add("id = $%d", id)
	var cost models.Cost
	if err := r.db.GetContext(ctx, &cost, `SELECT `+costColumns+` FROM costs`+w.String(), w.args...); err != nil {
		return nil, getErr(err, core.ErrCostNotFound, id, "get cost")
	}
	return &cost, nil
}

// Create inserts a cost. The caller sets UserID.
func (r *costRepository) Create(ctx context.Context, cost *models.Cost) error {
	if cost.ID == uuid.Nil {
		cost.ID = core.NewID()
	}
	now := time.Now().UTC()
	cost.CreatedAt, cost.UpdatedAt = now, now

	_, err := r.db.NamedExecContext(ctx, `
		INSERT INTO costs (`+costColumns+`)
		VALUES (:id, :user_id, :date, :category, :description, :amount, :expense_type, :created_at, :updated_at)
	`, cost)
	if err != nil {
		return fmt.Errorf("failed to create cost: %w", err)
	}
	return nil
}

// Update modifies a cost visible to the session
func (r *costRepository) Update(ctx context.Context, session models.Session, cost *models.Cost) error {
	cost.UpdatedAt = time.Now().UTC()
	w := &where{args: []any{cost.Date, cost.Category, cost.Description, cost.Amount, cost.ExpenseType, cost.UpdatedAt}}
	w.add("id = $%d", cost.ID)
	if !session.IsAdmin() {
		w.add("user_id = $%d", session.UserID)
	}
	result, err := r.db.ExecContext(ctx, `UPDATE costs SET
		date = $1, category = $2, description = $3, amount = $4, expense_type = $5, updated_at = $6`+w.String(),
		w.args...)
	if err != nil {
		return fmt.Errorf("failed to update cost: %w", err)
	}
	return affected(result, core.ErrCostNotFound, cost.ID)
}

// Delete removes a cost visible to the session
func (r *costRepository) Delete(ctx context.Context, session models.Session, id uuid.UUID) error {
	w := scoped(session)
	w.add("id = $%d", id)
	result, err := r.db.ExecContext(ctx, `DELETE FROM costs`+w.String(), w.args...)
	if err != nil {
		return fmt.Errorf("failed to delete cost: %w", err)
	}
	return affected(result, core.ErrCostNotFound, id)
}

// Total sums the filtered amounts
func (r *costRepository) Total(ctx context.Context, session models.Session, filter models.CostFilter) (float64, error) {
	w := costWhere(session, filter)
	var total float64
	if err := r.db.GetContext(ctx, &total, `SELECT COALESCE(SUM(amount), 0) FROM costs`+w.String(), w.args...); err != nil {
		return 0, fmt.Errorf("failed to total costs: %w", err)
	}
	return total, nil
}
