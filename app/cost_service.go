package app

import (
	"context"
	"fmt"

	"agrodesk/domain/core"
	"agrodesk/internal"
	"agrodesk/internal/aggregate"
	"agrodesk/models"
	"agrodesk/ports"

	"github.com/google/uuid"
)

// CostService manages costs for the calling user. Reads degrade to empty
// results on store failures so the cost pages keep rendering; writes
// always surface the error.
type CostService struct {
	repo   ports.CostRepository
	logger *internal.Logger
}

// NewCostService creates a cost service
func NewCostService(repo ports.CostRepository, logger *internal.Logger) *CostService {
	if logger == nil {
		logger = internal.NewNopLogger()
	}
	return &CostService{repo: repo, logger: logger}
}

// List returns the session's costs matching filter
func (s *CostService) List(ctx context.Context, session models.Session, filter models.CostFilter) []*models.Cost {
	if err := session.Require(); err != nil {
		s.logger.Warn("cost list without session")
		return []*models.Cost{}
	}
	costs, err := s.repo.List(ctx, session, filter)
	if err != nil {
		s.logger.Error("Error fetching costs: %v", err)
		return []*models.Cost{}
	}
	return costs
}

// ListByDateRange returns costs dated within [start, end]
func (s *CostService) ListByDateRange(ctx context.Context, session models.Session, start, end core.Date) []*models.Cost {
	return s.List(ctx, session, models.CostFilter{Start: start, End: end})
}

// ListByCategory returns costs in one category
func (s *CostService) ListByCategory(ctx context.Context, session models.Session, category string) []*models.Cost {
	return s.List(ctx, session, models.CostFilter{Category: category})
}

// ListByExpenseType returns monthly or one-time costs
func (s *CostService) ListByExpenseType(ctx context.Context, session models.Session, expenseType models.ExpenseType) []*models.Cost {
	return s.List(ctx, session, models.CostFilter{ExpenseType: expenseType})
}

// Total sums amounts in the optional date range; 0 on failure
func (s *CostService) Total(ctx context.Context, session models.Session, start, end core.Date) float64 {
	return s.total(ctx, session, models.CostFilter{Start: start, End: end})
}

// MonthlyRecurringTotal sums the monthly expenses
func (s *CostService) MonthlyRecurringTotal(ctx context.Context, session models.Session) float64 {
	return s.total(ctx, session, models.CostFilter{ExpenseType: models.ExpenseMonthly})
}

func (s *CostService) total(ctx context.Context, session models.Session, filter models.CostFilter) float64 {
	if session.Require() != nil {
		return 0
	}
	total, err := s.repo.Total(ctx, session, filter)
	if err != nil {
		s.logger.Error("Error calculating cost total: %v", err)
		return 0
	}
	return total
}

// Summary aggregates the filtered costs for the cost dashboard
func (s *CostService) Summary(ctx context.Context, session models.Session, filter models.CostFilter) *aggregate.CostSummary {
	return aggregate.SummarizeCosts(s.List(ctx, session, filter))
}

// Create records a cost owned by the session user
func (s *CostService) Create(ctx context.Context, session models.Session, cost *models.Cost) error {
	if err := session.Require(); err != nil {
		return err
	}
	if err := cost.Validate(); err != nil {
		return err
	}
	cost.UserID = session.UserID
	if err := s.repo.Create(ctx, cost); err != nil {
		return fmt.Errorf("failed to create cost: %w", err)
	}
	return nil
}

// Update changes a cost the session can see
func (s *CostService) Update(ctx context.Context, session models.Session, cost *models.Cost) error {
	if err := session.Require(); err != nil {
		return err
	}
	if err := cost.Validate(); err != nil {
		return err
	}
	return s.repo.Update(ctx, session, cost)
}

// Delete removes a cost the session can see
func (s *CostService) Delete(ctx context.Context, session models.Session, id uuid.UUID) error {
	if err := session.Require(); err != nil {
		return err
	}
	return s.repo.Delete(ctx, session, id)
}
