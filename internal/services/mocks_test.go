package services

import (
	"context"
	"time"

	"garageflow/internal/caching"
	"garageflow/internal/models"

	"github.com/google/uuid"
	"github.com/hibiken/asynq"
	"github.com/stretchr/testify/mock"
)

// Mock repositories and services

type MockJobCardRepository struct {
	mock.Mock
}

func (m *MockJobCardRepository) Create(ctx context.Context, card *models.JobCard, entry models.TimelineEntry) error {
	args := m.Called(ctx, card, entry)
	return args.Error(0)
}

func (m *MockJobCardRepository) GetByID(ctx context.Context, workshopID, id uuid.UUID) (*models.JobCard, error) {
	args := m.Called(ctx, workshopID, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.JobCard), args.Error(1)
}

func (m *MockJobCardRepository) NextJobCardNumber(ctx context.Context, workshopID uuid.UUID, at time.Time) (string, error) {
	args := m.Called(ctx, workshopID, at)
	return args.String(0), args.Error(1)
}

func (m *MockJobCardRepository) ApplyTransition(ctx context.Context, card *models.JobCard, previous models.JobStatus, expectedVersion int, entry models.TimelineEntry) error {
	args := m.Called(ctx, card, previous, expectedVersion, entry)
	return args.Error(0)
}

func (m *MockJobCardRepository) RecordApproval(ctx context.Context, card *models.JobCard, expectedVersion int, entry models.TimelineEntry) error {
	args := m.Called(ctx, card, expectedVersion, entry)
	return args.Error(0)
}

func (m *MockJobCardRepository) Update(ctx context.Context, card *models.JobCard, expectedVersion int) error {
	args := m.Called(ctx, card, expectedVersion)
	return args.Error(0)
}

type MockTimelineRepository struct {
	mock.Mock
}

func (m *MockTimelineRepository) Record(ctx context.Context, entry models.TimelineEntry) error {
	args := m.Called(ctx, entry)
	return args.Error(0)
}

func (m *MockTimelineRepository) ListByJobCard(ctx context.Context, jobCardID uuid.UUID) ([]models.TimelineEntry, error) {
	args := m.Called(ctx, jobCardID)
	return args.Get(0).([]models.TimelineEntry), args.Error(1)
}

type MockInvoiceRepository struct {
	mock.Mock
}

func (m *MockInvoiceRepository) Create(ctx context.Context, invoice *models.Invoice) error {
	args := m.Called(ctx, invoice)
	return args.Error(0)
}

func (m *MockInvoiceRepository) GetByID(ctx context.Context, workshopID, id uuid.UUID) (*models.Invoice, error) {
	args := m.Called(ctx, workshopID, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Invoice), args.Error(1)
}

func (m *MockInvoiceRepository) ListByJobCard(ctx context.Context, workshopID, jobCardID uuid.UUID) ([]*models.Invoice, error) {
	args := m.Called(ctx, workshopID, jobCardID)
	return args.Get(0).([]*models.Invoice), args.Error(1)
}

func (m *MockInvoiceRepository) UpdateStatus(ctx context.Context, workshopID, id uuid.UUID, from, to models.InvoiceStatus, at time.Time) error {
	args := m.Called(ctx, workshopID, id, from, to, at)
	return args.Error(0)
}

type MockMGContractRepository struct {
	mock.Mock
}

func (m *MockMGContractRepository) Create(ctx context.Context, contract *models.MGContract) error {
	args := m.Called(ctx, contract)
	return args.Error(0)
}

func (m *MockMGContractRepository) GetByID(ctx context.Context, workshopID, id uuid.UUID) (*models.MGContract, error) {
	args := m.Called(ctx, workshopID, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.MGContract), args.Error(1)
}

func (m *MockMGContractRepository) ListActive(ctx context.Context, frequency models.BillingFrequency) ([]*models.MGContract, error) {
	args := m.Called(ctx, frequency)
	return args.Get(0).([]*models.MGContract), args.Error(1)
}

func (m *MockMGContractRepository) ListByWorkshop(ctx context.Context, workshopID uuid.UUID) ([]*models.MGContract, error) {
	args := m.Called(ctx, workshopID)
	return args.Get(0).([]*models.MGContract), args.Error(1)
}

func (m *MockMGContractRepository) End(ctx context.Context, workshopID, id uuid.UUID, at time.Time) error {
	args := m.Called(ctx, workshopID, id, at)
	return args.Error(0)
}

func (m *MockMGContractRepository) NextContractNumber(ctx context.Context, workshopID uuid.UUID, at time.Time) (string, error) {
	args := m.Called(ctx, workshopID, at)
	return args.String(0), args.Error(1)
}

func (m *MockMGContractRepository) Stats(ctx context.Context, workshopID uuid.UUID, period string) (*models.FleetStats, error) {
	args := m.Called(ctx, workshopID, period)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.FleetStats), args.Error(1)
}

type MockVehicleLogRepository struct {
	mock.Mock
}

func (m *MockVehicleLogRepository) Create(ctx context.Context, log *models.VehicleLog) error {
	args := m.Called(ctx, log)
	return args.Error(0)
}

func (m *MockVehicleLogRepository) CreateCorrection(ctx context.Context, reversal, replacement *models.VehicleLog) error {
	args := m.Called(ctx, reversal, replacement)
	return args.Error(0)
}

func (m *MockVehicleLogRepository) GetByID(ctx context.Context, contractID, id uuid.UUID) (*models.VehicleLog, error) {
	args := m.Called(ctx, contractID, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.VehicleLog), args.Error(1)
}

func (m *MockVehicleLogRepository) IsReversed(ctx context.Context, id uuid.UUID) (bool, error) {
	args := m.Called(ctx, id)
	return args.Bool(0), args.Error(1)
}

func (m *MockVehicleLogRepository) ListForVehicle(ctx context.Context, contractID, vehicleID uuid.UUID, from, to time.Time) ([]models.VehicleLog, error) {
	args := m.Called(ctx, contractID, vehicleID, from, to)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]models.VehicleLog), args.Error(1)
}

type MockBillingRepository struct {
	mock.Mock
}

func (m *MockBillingRepository) Insert(ctx context.Context, calc *models.BillingCalculation) (bool, error) {
	args := m.Called(ctx, calc)
	return args.Bool(0), args.Error(1)
}

func (m *MockBillingRepository) GetByPeriod(ctx context.Context, contractID uuid.UUID, period string) (*models.BillingCalculation, error) {
	args := m.Called(ctx, contractID, period)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.BillingCalculation), args.Error(1)
}

func (m *MockBillingRepository) ListByContract(ctx context.Context, contractID uuid.UUID) ([]*models.BillingCalculation, error) {
	args := m.Called(ctx, contractID)
	return args.Get(0).([]*models.BillingCalculation), args.Error(1)
}

type MockCacheService struct {
	mock.Mock
}

func (m *MockCacheService) AcquireBillingLock(ctx context.Context, contractID uuid.UUID, period string, ttl time.Duration) (caching.ReleaseFunc, error) {
	args := m.Called(ctx, contractID, period, ttl)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(caching.ReleaseFunc), args.Error(1)
}

func (m *MockCacheService) GetCalculation(ctx context.Context, contractID uuid.UUID, period string) (*models.BillingCalculation, error) {
	args := m.Called(ctx, contractID, period)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.BillingCalculation), args.Error(1)
}

func (m *MockCacheService) SetCalculation(ctx context.Context, calc *models.BillingCalculation, ttl time.Duration) error {
	args := m.Called(ctx, calc, ttl)
	return args.Error(0)
}

func (m *MockCacheService) Ping(ctx context.Context) error {
	args := m.Called(ctx)
	return args.Error(0)
}

type MockArchiveService struct {
	mock.Mock
}

func (m *MockArchiveService) ArchiveInvoice(ctx context.Context, invoice *models.Invoice) (string, error) {
	args := m.Called(ctx, invoice)
	return args.String(0), args.Error(1)
}

func (m *MockArchiveService) GetPresignedURL(ctx context.Context, objectName string, expiry time.Duration) (string, error) {
	args := m.Called(ctx, objectName, expiry)
	return args.String(0), args.Error(1)
}

func (m *MockArchiveService) EnsureBucketExists(ctx context.Context) error {
	args := m.Called(ctx)
	return args.Error(0)
}

type MockDispatcher struct {
	mock.Mock
}

func (m *MockDispatcher) DispatchStatusChange(ctx context.Context, change models.StatusChange) {
	m.Called(ctx, change)
}

type MockEnqueuer struct {
	mock.Mock
}

func (m *MockEnqueuer) EnqueueContext(ctx context.Context, task *asynq.Task, opts ...asynq.Option) (*asynq.TaskInfo, error) {
	args := m.Called(ctx, task, opts)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*asynq.TaskInfo), args.Error(1)
}
