package app

import (
	"context"
	"io"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/mock"

	"agrodesk/models"
)

type MockCostRepository struct {
	mock.Mock
}

func (m *MockCostRepository) List(ctx context.Context, session models.Session, filter models.CostFilter) ([]*models.Cost, error) {
	args := m.Called(ctx, session, filter)
	costs, _ := args.Get(0).([]*models.Cost)
	return costs, args.Error(1)
}

func (m *MockCostRepository) Get(ctx context.Context, session models.Session, id uuid.UUID) (*models.Cost, error) {
	args := m.Called(ctx, session, id)
	cost, _ := args.Get(0).(*models.Cost)
	return cost, args.Error(1)
}

func (m *MockCostRepository) Create(ctx context.Context, cost *models.Cost) error {
	return m.Called(ctx, cost).Error(0)
}

func (m *MockCostRepository) Update(ctx context.Context, session models.Session, cost *models.Cost) error {
	return m.Called(ctx, session, cost).Error(0)
}

func (m *MockCostRepository) Delete(ctx context.Context, session models.Session, id uuid.UUID) error {
	return m.Called(ctx, session, id).Error(0)
}

func (m *MockCostRepository) Total(ctx context.Context, session models.Session, filter models.CostFilter) (float64, error) {
	args := m.Called(ctx, session, filter)
	return args.Get(0).(float64), args.Error(1)
}

type MockDocumentRepository struct {
	mock.Mock
}

func (m *MockDocumentRepository) List(ctx context.Context) ([]*models.Document, error) {
	args := m.Called(ctx)
	docs, _ := args.Get(0).([]*models.Document)
	return docs, args.Error(1)
}

func (m *MockDocumentRepository) Get(ctx context.Context, id uuid.UUID) (*models.Document, error) {
	args := m.Called(ctx, id)
	doc, _ := args.Get(0).(*models.Document)
	return doc, args.Error(1)
}

func (m *MockDocumentRepository) Create(ctx context.Context, doc *models.Document) error {
	return m.Called(ctx, doc).Error(0)
}

func (m *MockDocumentRepository) Delete(ctx context.Context, id uuid.UUID) error {
	return m.Called(ctx, id).Error(0)
}

type MockObjectStore struct {
	mock.Mock
}

func (m *MockObjectStore) Put(ctx context.Context, key string, body io.Reader, size int64, contentType string) error {
	return m.Called(ctx, key, body, size, contentType).Error(0)
}

func (m *MockObjectStore) Remove(ctx context.Context, key string) error {
	return m.Called(ctx, key).Error(0)
}

func (m *MockObjectStore) URL(ctx context.Context, key string, expiry time.Duration) (string, error) {
	args := m.Called(ctx, key, expiry)
	return args.String(0), args.Error(1)
}

type MockTrialRepository struct {
	mock.Mock
}

func (m *MockTrialRepository) List(ctx context.Context, userID *uuid.UUID) ([]*models.FieldTrial, error) {
	args := m.Called(ctx, userID)
	out, _ := args.Get(0).([]*models.FieldTrial)
	return out, args.Error(1)
}

func (m *MockTrialRepository) Latest(ctx context.Context, limit int) ([]*models.FieldTrial, error) {
	args := m.Called(ctx, limit)
	out, _ := args.Get(0).([]*models.FieldTrial)
	return out, args.Error(1)
}

func (m *MockTrialRepository) Get(ctx context.Context, id uuid.UUID) (*models.FieldTrial, error) {
	args := m.Called(ctx, id)
	out, _ := args.Get(0).(*models.FieldTrial)
	return out, args.Error(1)
}

func (m *MockTrialRepository) LastCode(ctx context.Context) (string, error) {
	args := m.Called(ctx)
	return args.String(0), args.Error(1)
}

func (m *MockTrialRepository) Create(ctx context.Context, trial *models.FieldTrial) error {
	return m.Called(ctx, trial).Error(0)
}

func (m *MockTrialRepository) CreateWithDetails(ctx context.Context, nt *models.NewTrial) error {
	return m.Called(ctx, nt).Error(0)
}

func (m *MockTrialRepository) Update(ctx context.Context, trial *models.FieldTrial) error {
	return m.Called(ctx, trial).Error(0)
}

func (m *MockTrialRepository) Delete(ctx context.Context, id uuid.UUID) error {
	return m.Called(ctx, id).Error(0)
}

func (m *MockTrialRepository) Treatments(ctx context.Context, trialID uuid.UUID) ([]*models.TrialTreatment, error) {
	args := m.Called(ctx, trialID)
	out, _ := args.Get(0).([]*models.TrialTreatment)
	return out, args.Error(1)
}

func (m *MockTrialRepository) Plots(ctx context.Context, trialID uuid.UUID) ([]*models.TrialPlot, error) {
	args := m.Called(ctx, trialID)
	out, _ := args.Get(0).([]*models.TrialPlot)
	return out, args.Error(1)
}

func (m *MockTrialRepository) Variables(ctx context.Context, trialID uuid.UUID) ([]*models.TrialVariable, error) {
	args := m.Called(ctx, trialID)
	out, _ := args.Get(0).([]*models.TrialVariable)
	return out, args.Error(1)
}

func (m *MockTrialRepository) Data(ctx context.Context, trialID uuid.UUID) ([]*models.TrialDataPoint, error) {
	args := m.Called(ctx, trialID)
	out, _ := args.Get(0).([]*models.TrialDataPoint)
	return out, args.Error(1)
}

func (m *MockTrialRepository) Tasks(ctx context.Context, trialID uuid.UUID) ([]*models.TrialTask, error) {
	args := m.Called(ctx, trialID)
	out, _ := args.Get(0).([]*models.TrialTask)
	return out, args.Error(1)
}

func (m *MockTrialRepository) AddTreatment(ctx context.Context, t *models.TrialTreatment) error {
	return m.Called(ctx, t).Error(0)
}

func (m *MockTrialRepository) AddPlot(ctx context.Context, p *models.TrialPlot) error {
	return m.Called(ctx, p).Error(0)
}

func (m *MockTrialRepository) AddVariable(ctx context.Context, v *models.TrialVariable) error {
	return m.Called(ctx, v).Error(0)
}

func (m *MockTrialRepository) AddDataPoint(ctx context.Context, d *models.TrialDataPoint) error {
	return m.Called(ctx, d).Error(0)
}

func (m *MockTrialRepository) AddTask(ctx context.Context, t *models.TrialTask) error {
	return m.Called(ctx, t).Error(0)
}

func (m *MockTrialRepository) UpdateTask(ctx context.Context, t *models.TrialTask) error {
	return m.Called(ctx, t).Error(0)
}

type MockAnalysisRepository struct {
	mock.Mock
}

func (m *MockAnalysisRepository) List(ctx context.Context) ([]*models.Analysis, error) {
	args := m.Called(ctx)
	out, _ := args.Get(0).([]*models.Analysis)
	return out, args.Error(1)
}

func (m *MockAnalysisRepository) Get(ctx context.Context, id uuid.UUID) (*models.Analysis, error) {
	args := m.Called(ctx, id)
	out, _ := args.Get(0).(*models.Analysis)
	return out, args.Error(1)
}

func (m *MockAnalysisRepository) Create(ctx context.Context, a *models.Analysis) error {
	return m.Called(ctx, a).Error(0)
}

func (m *MockAnalysisRepository) Update(ctx context.Context, a *models.Analysis) error {
	return m.Called(ctx, a).Error(0)
}

func (m *MockAnalysisRepository) Delete(ctx context.Context, id uuid.UUID) error {
	return m.Called(ctx, id).Error(0)
}

type MockPricingRepository struct {
	mock.Mock
}

func (m *MockPricingRepository) List(ctx context.Context) ([]*models.AnalysisPricing, error) {
	args := m.Called(ctx)
	out, _ := args.Get(0).([]*models.AnalysisPricing)
	return out, args.Error(1)
}

func (m *MockPricingRepository) ListActive(ctx context.Context) ([]*models.AnalysisPricing, error) {
	args := m.Called(ctx)
	out, _ := args.Get(0).([]*models.AnalysisPricing)
	return out, args.Error(1)
}

func (m *MockPricingRepository) GetActiveByType(ctx context.Context, analysisType string) (*models.AnalysisPricing, error) {
	args := m.Called(ctx, analysisType)
	out, _ := args.Get(0).(*models.AnalysisPricing)
	return out, args.Error(1)
}

func (m *MockPricingRepository) Create(ctx context.Context, p *models.AnalysisPricing) error {
	return m.Called(ctx, p).Error(0)
}

func (m *MockPricingRepository) Update(ctx context.Context, p *models.AnalysisPricing) error {
	return m.Called(ctx, p).Error(0)
}

func (m *MockPricingRepository) Delete(ctx context.Context, id uuid.UUID) error {
	return m.Called(ctx, id).Error(0)
}

type MockEventRepository struct {
	mock.Mock
}

func (m *MockEventRepository) List(ctx context.Context) ([]*models.Event, error) {
	args := m.Called(ctx)
	out, _ := args.Get(0).([]*models.Event)
	return out, args.Error(1)
}

func (m *MockEventRepository) GetByIDOrSlug(ctx context.Context, idOrSlug string) (*models.Event, error) {
	args := m.Called(ctx, idOrSlug)
	out, _ := args.Get(0).(*models.Event)
	return out, args.Error(1)
}

func (m *MockEventRepository) Create(ctx context.Context, e *models.Event) error {
	return m.Called(ctx, e).Error(0)
}

func (m *MockEventRepository) Update(ctx context.Context, e *models.Event) error {
	return m.Called(ctx, e).Error(0)
}

func (m *MockEventRepository) Delete(ctx context.Context, id uuid.UUID) error {
	return m.Called(ctx, id).Error(0)
}

type MockUserRepository struct {
	mock.Mock
}

func (m *MockUserRepository) GetUserByID(ctx context.Context, userID uuid.UUID) (*models.User, error) {
	args := m.Called(ctx, userID)
	out, _ := args.Get(0).(*models.User)
	return out, args.Error(1)
}

func (m *MockUserRepository) GetUserByEmail(ctx context.Context, email string) (*models.User, error) {
	args := m.Called(ctx, email)
	out, _ := args.Get(0).(*models.User)
	return out, args.Error(1)
}

func (m *MockUserRepository) CreateUser(ctx context.Context, user *models.User) error {
	return m.Called(ctx, user).Error(0)
}

func (m *MockUserRepository) SetRole(ctx context.Context, userID uuid.UUID, role models.Role) error {
	return m.Called(ctx, userID, role).Error(0)
}

func (m *MockUserRepository) ListUsers(ctx context.Context) ([]*models.User, error) {
	args := m.Called(ctx)
	out, _ := args.Get(0).([]*models.User)
	return out, args.Error(1)
}
