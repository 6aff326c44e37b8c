package app

import (
	"context"
	"fmt"

	"agrodesk/internal"
	"agrodesk/internal/aggregate"
	"agrodesk/models"
	"agrodesk/ports"

	"github.com/google/uuid"
)

// AnalysisService manages laboratory analyses
type AnalysisService struct {
	repo    ports.AnalysisRepository
	pricing ports.PricingRepository
	logger  *internal.Logger
}

// NewAnalysisService creates an analysis service
func NewAnalysisService(repo ports.AnalysisRepository, pricing ports.PricingRepository, logger *internal.Logger) *AnalysisService {
	if logger == nil {
		logger = internal.NewNopLogger()
	}
	return &AnalysisService{repo: repo, pricing: pricing, logger: logger}
}

func (s *AnalysisService) List(ctx context.Context) ([]*models.Analysis, error) {
	return s.repo.List(ctx)
}

func (s *AnalysisService) Get(ctx context.Context, id uuid.UUID) (*models.Analysis, error) {
	return s.repo.Get(ctx, id)
}

// Create inserts an analysis. Without an explicit total price, the active
// price for its type times the test count is used.
func (s *AnalysisService) Create(ctx context.Context, a *models.Analysis) error {
	if err := a.Validate(); err != nil {
		return err
	}
	if a.TotalPrice == nil {
		price, err := s.pricing.GetActiveByType(ctx, a.AnalysisType)
		if err != nil {
			s.logger.Warn("no price lookup for %s: %v", a.AnalysisType, err)
		} else if price != nil {
			total := price.BasePrice * float64(a.Tests())
			a.TotalPrice = &total
		}
	}
	return s.repo.Create(ctx, a)
}

func (s *AnalysisService) Update(ctx context.Context, a *models.Analysis) error {
	if err := a.Validate(); err != nil {
		return err
	}
	return s.repo.Update(ctx, a)
}

func (s *AnalysisService) Delete(ctx context.Context, id uuid.UUID) error {
	return s.repo.Delete(ctx, id)
}

// PricingService manages the analysis price list
type PricingService struct {
	repo ports.PricingRepository
}

// NewPricingService creates a pricing service
func NewPricingService(repo ports.PricingRepository) *PricingService {
	return &PricingService{repo: repo}
}

// List returns every price, or only active ones
func (s *PricingService) List(ctx context.Context, activeOnly bool) ([]*models.AnalysisPricing, error) {
	if activeOnly {
		return s.repo.ListActive(ctx)
	}
	return s.repo.List(ctx)
}

// Summary aggregates the whole price list
func (s *PricingService) Summary(ctx context.Context) (*aggregate.PricingSummary, error) {
	all, err := s.repo.List(ctx)
	if err != nil {
		return nil, err
	}
	return aggregate.SummarizePricing(all), nil
}

func (s *PricingService) Create(ctx context.Context, p *models.AnalysisPricing) error {
	if err := p.Validate(); err != nil {
		return err
	}
	return s.repo.Create(ctx, p)
}

func (s *PricingService) Update(ctx context.Context, p *models.AnalysisPricing) error {
	if err := p.Validate(); err != nil {
		return err
	}
	return s.repo.Update(ctx, p)
}

func (s *PricingService) Delete(ctx context.Context, id uuid.UUID) error {
	return s.repo.Delete(ctx, id)
}

// EventService manages public events
type EventService struct {
	repo ports.EventRepository
}

// NewEventService creates an event service
func NewEventService(repo ports.EventRepository) *EventService {
	return &EventService{repo: repo}
}

func (s *EventService) List(ctx context.Context) ([]*models.Event, error) {
	return s.repo.List(ctx)
}

func (s *EventService) Get(ctx context.Context, idOrSlug string) (*models.Event, error) {
	return s.repo.GetByIDOrSlug(ctx, idOrSlug)
}

func (s *EventService) Create(ctx context.Context, e *models.Event) error {
	if err := e.Validate(); err != nil {
		return err
	}
	return s.repo.Create(ctx, e)
}

// Update applies changes to the event found by id or slug. The stored
// slug is kept whatever the payload says.
func (s *EventService) Update(ctx context.Context, idOrSlug string, changes *models.Event) (*models.Event, error) {
	current, err := s.repo.GetByIDOrSlug(ctx, idOrSlug)
	if err != nil {
		return nil, err
	}
	changes.ID = current.ID
	changes.Slug = current.Slug
	changes.CreatedAt = current.CreatedAt
	if err := changes.Validate(); err != nil {
		return nil, err
	}
	if err := s.repo.Update(ctx, changes); err != nil {
		return nil, err
	}
	return changes, nil
}

func (s *EventService) Delete(ctx context.Context, idOrSlug string) error {
	current, err := s.repo.GetByIDOrSlug(ctx, idOrSlug)
	if err != nil {
		return err
	}
	return s.repo.Delete(ctx, current.ID)
}

// OperationsService manages deliveries, nutrition requests and batches
type OperationsService struct {
	batches    ports.BatchRepository
	deliveries ports.DeliveryRepository
	requests   ports.NutritionRequestRepository
}

// NewOperationsService creates an operations service
func NewOperationsService(batches ports.BatchRepository, deliveries ports.DeliveryRepository, requests ports.NutritionRequestRepository) *OperationsService {
	return &OperationsService{batches: batches, deliveries: deliveries, requests: requests}
}

// RecentBatches returns the newest production batches
func (s *OperationsService) RecentBatches(ctx context.Context, limit int) ([]*models.Batch, error) {
	return s.batches.Recent(ctx, limit)
}

func (s *OperationsService) Deliveries(ctx context.Context) ([]*models.FarmDelivery, error) {
	return s.deliveries.List(ctx)
}

// DeliverySummary aggregates every delivery
func (s *OperationsService) DeliverySummary(ctx context.Context) (*aggregate.DeliverySummary, error) {
	all, err := s.deliveries.List(ctx)
	if err != nil {
		return nil, err
	}
	return aggregate.SummarizeDeliveries(all), nil
}

func (s *OperationsService) CreateDelivery(ctx context.Context, d *models.FarmDelivery) error {
	if err := d.Validate(); err != nil {
		return err
	}
	return s.deliveries.Create(ctx, d)
}

func (s *OperationsService) UpdateDelivery(ctx context.Context, d *models.FarmDelivery) error {
	if err := d.Validate(); err != nil {
		return err
	}
	return s.deliveries.Update(ctx, d)
}

func (s *OperationsService) DeleteDelivery(ctx context.Context, id uuid.UUID) error {
	return s.deliveries.Delete(ctx, id)
}

func (s *OperationsService) Requests(ctx context.Context) ([]*models.NutritionFarmRequest, error) {
	return s.requests.List(ctx)
}

func (s *OperationsService) CreateRequest(ctx context.Context, r *models.NutritionFarmRequest) error {
	if err := r.Validate(); err != nil {
		return err
	}
	return s.requests.Create(ctx, r)
}

func (s *OperationsService) UpdateRequest(ctx context.Context, r *models.NutritionFarmRequest) error {
	if err := r.Validate(); err != nil {
		return err
	}
	return s.requests.Update(ctx, r)
}

func (s *OperationsService) DeleteRequest(ctx context.Context, id uuid.UUID) error {
	return s.requests.Delete(ctx, id)
}

// UserService manages application users
type UserService struct {
	repo   ports.UserRepository
	logger *internal.Logger
}

// NewUserService creates a user service
func NewUserService(repo ports.UserRepository, logger *internal.Logger) *UserService {
	if logger == nil {
		logger = internal.NewNopLogger()
	}
	return &UserService{repo: repo, logger: logger}
}

func (s *UserService) List(ctx context.Context) ([]*models.User, error) {
	return s.repo.ListUsers(ctx)
}

// Add creates a user after normalizing the email
func (s *UserService) Add(ctx context.Context, name, email string, role models.Role) (*models.User, error) {
	user := &models.User{Name: name, Email: email, Role: role}
	if err := user.Validate(); err != nil {
		return nil, err
	}
	if err := s.repo.CreateUser(ctx, user); err != nil {
		return nil, err
	}
	s.logger.Info("user created: %s (%s)", user.Email, user.Role)
	return user, nil
}

// Promote sets the role of the user with the given email
func (s *UserService) Promote(ctx context.Context, email string, role models.Role) (*models.User, error) {
	role, err := models.ParseRole(string(role))
	if err != nil {
		return nil, err
	}
	user, err := s.repo.GetUserByEmail(ctx, email)
	if err != nil {
		return nil, err
	}
	if err := s.repo.SetRole(ctx, user.ID, role); err != nil {
		return nil, fmt.Errorf("failed to promote %s: %w", user.Email, err)
	}
	user.Role = role
	s.logger.Info("user %s is now %s", user.Email, role)
	return user, nil
}
