package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"agrodesk/domain/core"
	"agrodesk/models"
	"agrodesk/ports"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
)

const trialColumns = `id, name, trial_code, crop, variety_hybrid, trial_type, season, start_date, end_date,
	status, objective, farm_name, field_location, gps_coordinates, trial_area, responsible_agronomist_ids,
	tags, trial_category, budget, spent, completion_percentage, notifications_enabled, is_draft,
	design_type, replications, created_at, updated_at`

const trialValues = `:id, :name, :trial_code, :crop, :variety_hybrid, :trial_type, :season, :start_date, :end_date,
	:status, :objective, :farm_name, :field_location, :gps_coordinates, :trial_area, :responsible_agronomist_ids,
	:tags, :trial_category, :budget, :spent, :completion_percentage, :notifications_enabled, :is_draft,
	:design_type, :replications, :created_at, :updated_at`

const (
	treatmentInsert = `INSERT INTO field_trial_treatments
		(id, trial_id, name, description, application_method, rate, timing, color, created_at, updated_at)
		VALUES (:id, :trial_id, :name, :description, :application_method, :rate, :timing, :color, :created_at, :updated_at)`
	plotInsert = `INSERT INTO field_trial_plots
		(id, trial_id, plot_number, treatment, repetition, area, created_at)
		VALUES (:id, :trial_id, :plot_number, :treatment, :repetition, :area, :created_at)`
	variableInsert = `INSERT INTO field_trial_variables
		(id, trial_id, name, unit, frequency, description, data_type, created_at, updated_at)
		VALUES (:id, :trial_id, :name, :unit, :frequency, :description, :data_type, :created_at, :updated_at)`
	dataInsert = `INSERT INTO field_trial_data
		(id, trial_id, plot_id, variable_id, value, measurement_date, recorded_by, notes, created_at, updated_at)
		VALUES (:id, :trial_id, :plot_id, :variable_id, :value, :measurement_date, :recorded_by, :notes, :created_at, :updated_at)`
	taskInsert = `INSERT INTO field_trial_tasks
		(id, trial_id, title, description, due_date, status, responsible_person_id, priority, created_at, updated_at)
		VALUES (:id, :trial_id, :title, :description, :due_date, :status, :responsible_person_id, :priority, :created_at, :updated_at)`
)

type trialRepository struct {
	db *sqlx.DB
}

// NewTrialRepository creates a new field trial repository
func NewTrialRepository(db *sqlx.DB) ports.TrialRepository {
	return &trialRepository{db: db}
}

// List returns trials newest first, optionally only those where userID
// is a responsible agronomist
func (r *trialRepository) List(ctx context.Context, userID *uuid.UUID) ([]*models.FieldTrial, error) {
	w := &where{}
	if userID != nil {
		w.add("$%d = ANY(responsible_agronomist_ids)", userID.String())
	}
	trials := make([]*models.FieldTrial, 0)
	query := `SELECT ` + trialColumns + ` FROM field_trials` + w.String() + ` ORDER BY created_at DESC`
	if err := r.db.SelectContext(ctx, &trials, query, w.args...); err != nil {
		return nil, fmt.Errorf("failed to list field trials: %w", err)
	}
	return trials, nil
}

func (r *trialRepository) Latest(ctx context.Context, limit int) ([]*models.FieldTrial, error) {
	if limit <= 0 {
		limit = 5
	}
	trials := make([]*models.FieldTrial, 0)
	if err := r.db.SelectContext(ctx, &trials,
		`SELECT `+trialColumns+` FROM field_trials ORDER BY created_at DESC LIMIT $1`, limit); err != nil {
		return nil, fmt.Errorf("failed to list latest field trials: %w", err)
	}
	return trials, nil
}

func (r *trialRepository) Get(ctx context.Context, id uuid.UUID) (*models.FieldTrial, error) {
	var trial models.FieldTrial
	if err := r.db.GetContext(ctx, &trial, `SELECT `+trialColumns+` FROM field_trials WHERE id = $1`, id); err != nil {
		return nil, getErr(err, core.ErrTrialNotFound, id, "get field trial")
	}
	return &trial, nil
}

// LastCode returns the code of the most recently created trial
func (r *trialRepository) LastCode(ctx context.Context) (string, error) {
	var code sql.NullString
	err := r.db.GetContext(ctx, &code,
		`SELECT trial_code FROM field_trials WHERE trial_code IS NOT NULL ORDER BY created_at DESC LIMIT 1`)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return "", nil
		}
		return "", fmt.Errorf("failed to get last trial code: %w", err)
	}
	return code.String, nil
}

func stampTrial(t *models.FieldTrial) {
	if t.ID == uuid.Nil {
		t.ID = core.NewID()
	}
	now := time.Now().UTC()
	t.CreatedAt, t.UpdatedAt = now, now
	if t.Tags == nil {
		t.Tags = []string{}
	}
	if t.ResponsibleAgronomistIDs == nil {
		t.ResponsibleAgronomistIDs = []string{}
	}
}

func (r *trialRepository) Create(ctx context.Context, trial *models.FieldTrial) error {
	stampTrial(trial)
	if _, err := r.db.NamedExecContext(ctx, `INSERT INTO field_trials (`+trialColumns+`) VALUES (`+trialValues+`)`, trial); err != nil {
		return fmt.Errorf("failed to create field trial: %w", uniqueErr(err, "trial_code"))
	}
	return nil
}

// CreateWithDetails inserts the trial and every related row in one transaction
func (r *trialRepository) CreateWithDetails(ctx context.Context, nt *models.NewTrial) (err error) {
	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer func() {
		if err != nil {
			_ = tx.Rollback()
		}
	}()

	stampTrial(&nt.Trial)
	if _, err = tx.NamedExecContext(ctx, `INSERT INTO field_trials (`+trialColumns+`) VALUES (`+trialValues+`)`, &nt.Trial); err != nil {
		return fmt.Errorf("failed to create field trial: %w", uniqueErr(err, "trial_code"))
	}
	trialID := nt.Trial.ID
	for _, t := range nt.Treatments {
		stampTreatment(t, trialID)
		if _, err = tx.NamedExecContext(ctx, treatmentInsert, t); err != nil {
			return fmt.Errorf("failed to create treatment: %w", err)
		}
	}
	for _, p := range nt.Plots {
		stampPlot(p, trialID)
		if _, err = tx.NamedExecContext(ctx, plotInsert, p); err != nil {
			return fmt.Errorf("failed to create plot: %w", err)
		}
	}
	for _, v := range nt.Variables {
		stampVariable(v, trialID)
		if _, err = tx.NamedExecContext(ctx, variableInsert, v); err != nil {
			return fmt.Errorf("failed to create variable: %w", err)
		}
	}
	for _, t := range nt.Tasks {
		stampTask(t, trialID)
		if _, err = tx.NamedExecContext(ctx, taskInsert, t); err != nil {
			return fmt.Errorf("failed to create task: %w", err)
		}
	}
	if err = tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit field trial: %w", err)
	}
	return nil
}

func (r *trialRepository) Update(ctx context.Context, trial *models.FieldTrial) error {
	trial.UpdatedAt = time.Now().UTC()
	result, err := r.db.NamedExecContext(ctx, `
		UPDATE field_trials SET name = :name, crop = :crop, variety_hybrid = :variety_hybrid,
			trial_type = :trial_type, season = :season, start_date = :start_date, end_date = :end_date,
			status = :status, objective = :objective, farm_name = :farm_name, field_location = :field_location,
			gps_coordinates = :gps_coordinates, trial_area = :trial_area,
			responsible_agronomist_ids = :responsible_agronomist_ids, tags = :tags,
			trial_category = :trial_category, budget = :budget, spent = :spent,
			completion_percentage = :completion_percentage, notifications_enabled = :notifications_enabled,
			is_draft = :is_draft, design_type = :design_type, replications = :replications,
			updated_at = :updated_at
		WHERE id = :id
	`, trial)
	if err != nil {
		return fmt.Errorf("failed to update field trial: %w", err)
	}
	return affected(result, core.ErrTrialNotFound, trial.ID)
}

// Delete removes the trial; related rows cascade
func (r *trialRepository) Delete(ctx context.Context, id uuid.UUID) error {
	result, err := r.db.ExecContext(ctx, `DELETE FROM field_trials WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("failed to delete field trial: %w", err)
	}
	return affected(result, core.ErrTrialNotFound, id)
}

func (r *trialRepository) Treatments(ctx context.Context, trialID uuid.UUID) ([]*models.TrialTreatment, error) {
	out := make([]*models.TrialTreatment, 0)
	err := r.db.SelectContext(ctx, &out, `SELECT id, trial_id, name, description, application_method, rate,
		timing, color, created_at, updated_at FROM field_trial_treatments WHERE trial_id = $1 ORDER BY created_at`, trialID)
	if err != nil {
		return nil, fmt.Errorf("failed to list treatments: %w", err)
	}
	return out, nil
}

func (r *trialRepository) Plots(ctx context.Context, trialID uuid.UUID) ([]*models.TrialPlot, error) {
	out := make([]*models.TrialPlot, 0)
	err := r.db.SelectContext(ctx, &out, `SELECT id, trial_id, plot_number, treatment, repetition, area, created_at
		FROM field_trial_plots WHERE trial_id = $1 ORDER BY plot_number`, trialID)
	if err != nil {
		return nil, fmt.Errorf("failed to list plots: %w", err)
	}
	return out, nil
}

func (r *trialRepository) Variables(ctx context.Context, trialID uuid.UUID) ([]*models.TrialVariable, error) {
	out := make([]*models.TrialVariable, 0)
	err := r.db.SelectContext(ctx, &out, `SELECT id, trial_id, name, unit, frequency, description, data_type,
		created_at, updated_at FROM field_trial_variables WHERE trial_id = $1 ORDER BY created_at`, trialID)
	if err != nil {
		return nil, fmt.Errorf("failed to list variables: %w", err)
	}
	return out, nil
}

func (r *trialRepository) Data(ctx context.Context, trialID uuid.UUID) ([]*models.TrialDataPoint, error) {
	out := make([]*models.TrialDataPoint, 0)
	err := r.db.SelectContext(ctx, &out, `SELECT id, trial_id, plot_id, variable_id, value, measurement_date,
		recorded_by, notes, created_at, updated_at FROM field_trial_data WHERE trial_id = $1
		ORDER BY measurement_date DESC`, trialID)
	if err != nil {
		return nil, fmt.Errorf("failed to list trial data: %w", err)
	}
	return out, nil
}

func (r *trialRepository) Tasks(ctx context.Context, trialID uuid.UUID) ([]*models.TrialTask, error) {
	out := make([]*models.TrialTask, 0)
	err := r.db.SelectContext(ctx, &out, `SELECT id, trial_id, title, description, due_date, status,
		responsible_person_id, priority, created_at, updated_at FROM field_trial_tasks WHERE trial_id = $1
		ORDER BY due_date`, trialID)
	if err != nil {
		return nil, fmt.Errorf("failed to list tasks: %w", err)
	}
	return out, nil
}

func stampTreatment(t *models.TrialTreatment, trialID uuid.UUID) {
	if t.ID == uuid.Nil {
		t.ID = core.NewID()
	}
	t.TrialID = trialID
	t.CreatedAt = time.Now().UTC()
	t.UpdatedAt = t.CreatedAt
}

func stampPlot(p *models.TrialPlot, trialID uuid.UUID) {
	if p.ID == uuid.Nil {
		p.ID = core.NewID()
	}
	p.TrialID = trialID
	p.CreatedAt = time.Now().UTC()
}

func stampVariable(v *models.TrialVariable, trialID uuid.UUID) {
	if v.ID == uuid.Nil {
		v.ID = core.NewID()
	}
	v.TrialID = trialID
	v.CreatedAt = time.Now().UTC()
	v.UpdatedAt = v.CreatedAt
}

func stampTask(t *models.TrialTask, trialID uuid.UUID) {
	if t.ID == uuid.Nil {
		t.ID = core.NewID()
	}
	t.TrialID = trialID
	t.CreatedAt = time.Now().UTC()
	t.UpdatedAt = t.CreatedAt
}

func (r *trialRepository) AddTreatment(ctx context.Context, t *models.TrialTreatment) error {
	stampTreatment(t, t.TrialID)
	if _, err := r.db.NamedExecContext(ctx, treatmentInsert, t); err != nil {
		return fmt.Errorf("failed to create treatment: %w", err)
	}
	return nil
}

func (r *trialRepository) AddPlot(ctx context.Context, p *models.TrialPlot) error {
	stampPlot(p, p.TrialID)
	if _, err := r.db.NamedExecContext(ctx, plotInsert, p); err != nil {
		return fmt.Errorf("failed to create plot: %w", err)
	}
	return nil
}

func (r *trialRepository) AddVariable(ctx context.Context, v *models.TrialVariable) error {
	stampVariable(v, v.TrialID)
	if _, err := r.db.NamedExecContext(ctx, variableInsert, v); err != nil {
		return fmt.Errorf("failed to create variable: %w", err)
	}
	return nil
}

func (r *trialRepository) AddDataPoint(ctx context.Context, d *models.TrialDataPoint) error {
	if d.ID == uuid.Nil {
		d.ID = core.NewID()
	}
	d.CreatedAt = time.Now().UTC()
	d.UpdatedAt = d.CreatedAt
	if _, err := r.db.NamedExecContext(ctx, dataInsert, d); err != nil {
		return fmt.Errorf("failed to record data point: %w", err)
	}
	return nil
}

func (r *trialRepository) AddTask(ctx context.Context, t *models.TrialTask) error {
	stampTask(t, t.TrialID)
	if _, err := r.db.NamedExecContext(ctx, taskInsert, t); err != nil {
		return fmt.Errorf("failed to create task: %w", err)
	}
	return nil
}

func (r *trialRepository) UpdateTask(ctx context.Context, t *models.TrialTask) error {
	t.UpdatedAt = time.Now().UTC()
	result, err := r.db.NamedExecContext(ctx, `
		UPDATE field_trial_tasks SET title = :title, description = :description, due_date = :due_date,
			status = :status, responsible_person_id = :responsible_person_id, priority = :priority,
			updated_at = :updated_at
		WHERE id = :id AND trial_id = :trial_id
	`, t)
	if err != nil {
		return fmt.Errorf("failed to update task: %w", err)
	}
	return affected(result, core.ErrNotFound, t.ID)
}
