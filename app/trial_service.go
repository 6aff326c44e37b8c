package app

import (
	"context"
	"fmt"

	"golang.org/x/sync/errgroup"

	"agrodesk/internal"
	"agrodesk/internal/aggregate"
	"agrodesk/models"
	"agrodesk/ports"

	"github.com/google/uuid"
)

// TrialService manages field trials and their related rows
type TrialService struct {
	repo   ports.TrialRepository
	logger *internal.Logger
}

// NewTrialService creates a trial service
func NewTrialService(repo ports.TrialRepository, logger *internal.Logger) *TrialService {
	if logger == nil {
		logger = internal.NewNopLogger()
	}
	return &TrialService{repo: repo, logger: logger}
}

// List returns all trials, or only the session user's when mine is set
func (s *TrialService) List(ctx context.Context, session models.Session, mine bool) ([]*models.FieldTrial, error) {
	if !mine {
		return s.repo.List(ctx, nil)
	}
	if err := session.Require(); err != nil {
		return nil, err
	}
	return s.repo.List(ctx, &session.UserID)
}

// Latest returns the most recently created trials
func (s *TrialService) Latest(ctx context.Context, limit int) ([]*models.FieldTrial, error) {
	if limit <= 0 {
		limit = 10
	}
	return s.repo.Latest(ctx, limit)
}

// Summary aggregates every trial for the trials dashboard
func (s *TrialService) Summary(ctx context.Context) (*aggregate.TrialSummary, error) {
	trials, err := s.repo.List(ctx, nil)
	if err != nil {
		return nil, err
	}
	return aggregate.SummarizeTrials(trials), nil
}

// Get returns one trial
func (s *TrialService) Get(ctx context.Context, id uuid.UUID) (*models.FieldTrial, error) {
	return s.repo.Get(ctx, id)
}

// NextTrialCode returns the code the next created trial would receive
func (s *TrialService) NextTrialCode(ctx context.Context) (string, error) {
	last, err := s.repo.LastCode(ctx)
	if err != nil {
		return "", err
	}
	return models.NextTrialCode(last), nil
}

func (s *TrialService) prepare(ctx context.Context, trial *models.FieldTrial) error {
	if err := trial.Validate(); err != nil {
		return err
	}
	if trial.TrialCode != "" {
		return nil
	}
	code, err := s.NextTrialCode(ctx)
	if err != nil {
		return fmt.Errorf("failed to generate trial code: %w", err)
	}
	trial.TrialCode = code
	return nil
}

// Create inserts a trial, generating its code when empty
func (s *TrialService) Create(ctx context.Context, trial *models.FieldTrial) error {
	if err := s.prepare(ctx, trial); err != nil {
		return err
	}
	if err := s.repo.Create(ctx, trial); err != nil {
		return err
	}
	s.logger.Info("field trial created: %s %s", trial.TrialCode, trial.ID)
	return nil
}

// CreateWithDetails inserts a trial with treatments, plots, variables and
// tasks in one transaction
func (s *TrialService) CreateWithDetails(ctx context.Context, nt *models.NewTrial) error {
	if err := s.prepare(ctx, &nt.Trial); err != nil {
		return err
	}
	for i, t := range nt.Treatments {
		if err := t.Validate(); err != nil {
			return fmt.Errorf("treatments[%d]: %w", i, err)
		}
	}
	for i, p := range nt.Plots {
		if err := p.Validate(); err != nil {
			return fmt.Errorf("plots[%d]: %w", i, err)
		}
	}
	for i, v := range nt.Variables {
		if err := v.Validate(); err != nil {
			return fmt.Errorf("variables[%d]: %w", i, err)
		}
	}
	for i, t := range nt.Tasks {
		if err := t.Validate(); err != nil {
			return fmt.Errorf("tasks[%d]: %w", i, err)
		}
	}
	if err := s.repo.CreateWithDetails(ctx, nt); err != nil {
		return err
	}
	s.logger.Info("field trial created with details: %s (%d treatments, %d plots)",
		nt.Trial.TrialCode, len(nt.Treatments), len(nt.Plots))
	return nil
}

// Update replaces a trial's editable fields
func (s *TrialService) Update(ctx context.Context, trial *models.FieldTrial) error {
	if err := trial.Validate(); err != nil {
		return err
	}
	return s.repo.Update(ctx, trial)
}

// Delete removes a trial and, by cascade, its related rows
func (s *TrialService) Delete(ctx context.Context, id uuid.UUID) error {
	return s.repo.Delete(ctx, id)
}

// Details loads a trial with every related table concurrently
func (s *TrialService) Details(ctx context.Context, id uuid.UUID) (*models.TrialDetails, error) {
	trial, err := s.repo.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	details := &models.TrialDetails{FieldTrial: *trial}

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() (err error) {
		details.Treatments, err = s.repo.Treatments(gctx, id)
		return err
	})
	g.Go(func() (err error) {
		details.Plots, err = s.repo.Plots(gctx, id)
		return err
	})
	g.Go(func() (err error) {
		details.Variables, err = s.repo.Variables(gctx, id)
		return err
	})
	g.Go(func() (err error) {
		details.Data, err = s.repo.Data(gctx, id)
		return err
	})
	g.Go(func() (err error) {
		details.Tasks, err = s.repo.Tasks(gctx, id)
		return err
	})
	if err := g.Wait(); err != nil {
		return nil, fmt.Errorf("failed to load trial details: %w", err)
	}
	return details, nil
}

// AddTreatment adds a treatment to a trial
func (s *TrialService) AddTreatment(ctx context.Context, trialID uuid.UUID, t *models.TrialTreatment) error {
	if err := t.Validate(); err != nil {
		return err
	}
	t.TrialID = trialID
	return s.repo.AddTreatment(ctx, t)
}

// AddPlot adds a plot to a trial
func (s *TrialService) AddPlot(ctx context.Context, trialID uuid.UUID, p *models.TrialPlot) error {
	if err := p.Validate(); err != nil {
		return err
	}
	p.TrialID = trialID
	return s.repo.AddPlot(ctx, p)
}

// AddVariable adds a measured variable to a trial
func (s *TrialService) AddVariable(ctx context.Context, trialID uuid.UUID, v *models.TrialVariable) error {
	if err := v.Validate(); err != nil {
		return err
	}
	v.TrialID = trialID
	return s.repo.AddVariable(ctx, v)
}

// AddDataPoint records a measurement
func (s *TrialService) AddDataPoint(ctx context.Context, trialID uuid.UUID, d *models.TrialDataPoint) error {
	if err := d.Validate(); err != nil {
		return err
	}
	d.TrialID = trialID
	return s.repo.AddDataPoint(ctx, d)
}

// AddTask adds a task to a trial
func (s *TrialService) AddTask(ctx context.Context, trialID uuid.UUID, t *models.TrialTask) error {
	if err := t.Validate(); err != nil {
		return err
	}
	t.TrialID = trialID
	return s.repo.AddTask(ctx, t)
}

// UpdateTask changes a task's fields, typically its status
func (s *TrialService) UpdateTask(ctx context.Context, t *models.TrialTask) error {
	if err := t.Validate(); err != nil {
		return err
	}
	return s.repo.UpdateTask(ctx, t)
}
