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

const eventColumns = `id, slug, title, description, date, location, cost, featured, created_at, updated_at`

type eventRepository struct {
	db *sqlx.DB
}

// NewEventRepository creates a new event repository
func NewEventRepository(db *sqlx.DB) ports.EventRepository {
	return &eventRepository{db: db}
}

// List returns events in date order
func (r *eventRepository) List(ctx context.Context) ([]*models.Event, error) {
	out := make([]*models.Event, 0)
	if err := r.db.SelectContext(ctx, &out, `SELECT `+eventColumns+` FROM events ORDER BY date ASC`); err != nil {
		return nil, fmt.Errorf("failed to list events: %w", err)
	}
	return out, nil
}

// GetByIDOrSlug looks the event up by id when the key parses as one,
// by slug otherwise
func (r *eventRepository) GetByIDOrSlug(ctx context.Context, idOrSlug string) (*models.Event, error) {
	var (
		event models.Event
		err   error
	)
	if id, perr := core.ParseID(idOrSlug); perr == nil {
		err = r.db.GetContext(ctx, &event, `SELECT `+eventColumns+` FROM events WHERE id = $1`, id)
	} else {
		err = r.db.GetContext(ctx, &event, `SELECT `+eventColumns+` FROM events WHERE slug = $1`, idOrSlug)
	}
	if err != nil {
		return nil, getErr(err, core.ErrEventNotFound, idOrSlug, "get event")
	}
	return &event, nil
}

func (r *eventRepository) Create(ctx context.Context, e *models.Event) error {
	if e.ID == uuid.Nil {
		e.ID = core.NewID()
	}
	now := time.Now().UTC()
	e.CreatedAt, e.UpdatedAt = now, now
	_, err := r.db.NamedExecContext(ctx, `
		INSERT INTO events (`+eventColumns+`)
		VALUES (:id, :slug, :title, :description, :date, :location, :cost, :featured, :created_at, :updated_at)
	`, e)
	if err != nil {
		return fmt.Errorf("failed to create event: %w", uniqueErr(err, "slug"))
	}
	return nil
}

// Update leaves the slug column untouched
func (r *eventRepository) Update(ctx context.Context, e *models.Event) error {
	e.UpdatedAt = time.Now().UTC()
	result, err := r.db.NamedExecContext(ctx, `
		UPDATE events SET title = :title, description = :description, date = :date,
			location = :location, cost = :cost, featured = :featured, updated_at = :updated_at
		WHERE id = :id
	`, e)
	if err != nil {
		return fmt.Errorf("failed to update event: %w", err)
	}
	return affected(result, core.ErrEventNotFound, e.ID)
}

func (r *eventRepository) Delete(ctx context.Context, id uuid.UUID) error {
	result, err := r.db.ExecContext(ctx, `DELETE FROM events WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("failed to delete event: %w", err)
	}
	return affected(result, core.ErrEventNotFound, id)
}
