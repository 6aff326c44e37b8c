package ports

import (
	"context"

	"agrodesk/models"

	"github.com/google/uuid"
)

// TrialRepository stores field trials and their related rows
type TrialRepository interface {
	// List returns trials newest first. A non-nil userID keeps only trials
	// the user is responsible for.
	List(ctx context.Context, userID *uuid.UUID) ([]*models.FieldTrial, error)
	Latest(ctx context.Context, limit int) ([]*models.FieldTrial, error)
	Get(ctx context.Context, id uuid.UUID) (*models.FieldTrial, error)
	// LastCode returns the most recently created trial code, "" when none
	LastCode(ctx context.Context) (string, error)
	Create(ctx context.Context, trial *models.FieldTrial) error
	// CreateWithDetails inserts the trial and its related rows atomically
	CreateWithDetails(ctx context.Context, nt *models.NewTrial) error
	Update(ctx context.Context, trial *models.FieldTrial) error
	Delete(ctx context.Context, id uuid.UUID) error

	Treatments(ctx context.Context, trialID uuid.UUID) ([]*models.TrialTreatment, error)
	Plots(ctx context.Context, trialID uuid.UUID) ([]*models.TrialPlot, error)
	Variables(ctx context.Context, trialID uuid.UUID) ([]*models.TrialVariable, error)
	Data(ctx context.Context, trialID uuid.UUID) ([]*models.TrialDataPoint, error)
	Tasks(ctx context.Context, trialID uuid.UUID) ([]*models.TrialTask, error)

	AddTreatment(ctx context.Context, t *models.TrialTreatment) error
	AddPlot(ctx context.Context, p *models.TrialPlot) error
	AddVariable(ctx context.Context, v *models.TrialVariable) error
	AddDataPoint(ctx context.Context, d *models.TrialDataPoint) error
	AddTask(ctx context.Context, t *models.TrialTask) error
	UpdateTask(ctx context.Context, t *models.TrialTask) error
}
