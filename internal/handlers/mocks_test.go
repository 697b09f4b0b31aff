package handlers

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"

	"garageflow/internal/billing"
	"garageflow/internal/common"
	"garageflow/internal/models"
	"garageflow/internal/services"
	"garageflow/internal/workflow"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/mock"
)

type MockJobCardService struct {
	mock.Mock
}

func (m *MockJobCardService) CreateJobCard(ctx context.Context, workshopID uuid.UUID, input services.CreateJobCardInput) (*models.JobCard, error) {
	args := m.Called(ctx, workshopID, input)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.JobCard), args.Error(1)
}

func (m *MockJobCardService) GetJobCard(ctx context.Context, workshopID, id uuid.UUID) (*models.JobCard, error) {
	args := m.Called(ctx, workshopID, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.JobCard), args.Error(1)
}

func (m *MockJobCardService) UpdateJobCard(ctx context.Context, workshopID, id uuid.UUID, input services.UpdateJobCardInput) (*models.JobCard, error) {
	args := m.Called(ctx, workshopID, id, input)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.JobCard), args.Error(1)
}

func (m *MockJobCardService) Transition(ctx context.Context, workshopID, id uuid.UUID, requested models.JobStatus, notes string) (*workflow.TransitionOutcome, error) {
	args := m.Called(ctx, workshopID, id, requested, notes)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*workflow.TransitionOutcome), args.Error(1)
}

func (m *MockJobCardService) AddNote(ctx context.Context, workshopID, id uuid.UUID, text string) (*models.TimelineEntry, error) {
	args := m.Called(ctx, workshopID, id, text)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.TimelineEntry), args.Error(1)
}

func (m *MockJobCardService) RecordApproval(ctx context.Context, workshopID, id uuid.UUID, customerName string) (*models.JobCard, error) {
	args := m.Called(ctx, workshopID, id, customerName)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.JobCard), args.Error(1)
}

func (m *MockJobCardService) Timeline(ctx context.Context, workshopID, id uuid.UUID) ([]models.TimelineEntry, error) {
	args := m.Called(ctx, workshopID, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]models.TimelineEntry), args.Error(1)
}

type MockInvoiceService struct {
	mock.Mock
}

func (m *MockInvoiceService) Generate(ctx context.Context, workshopID uuid.UUID, input services.GenerateInvoiceInput) (*models.Invoice, error) {
	args := m.Called(ctx, workshopID, input)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Invoice), args.Error(1)
}

func (m *MockInvoiceService) GetInvoice(ctx context.Context, workshopID, id uuid.UUID) (*models.Invoice, error) {
	args := m.Called(ctx, workshopID, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Invoice), args.Error(1)
}

func (m *MockInvoiceService) ListForJobCard(ctx context.Context, workshopID, jobCardID uuid.UUID) ([]*models.Invoice, error) {
	args := m.Called(ctx, workshopID, jobCardID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*models.Invoice), args.Error(1)
}

func (m *MockInvoiceService) Finalize(ctx context.Context, workshopID, id uuid.UUID) (*models.Invoice, error) {
	args := m.Called(ctx, workshopID, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Invoice), args.Error(1)
}

func (m *MockInvoiceService) MarkPaid(ctx context.Context, workshopID, id uuid.UUID) (*models.Invoice, error) {
	args := m.Called(ctx, workshopID, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Invoice), args.Error(1)
}

type MockMGBillingService struct {
	mock.Mock
}

func (m *MockMGBillingService) CreateContract(ctx context.Context, workshopID uuid.UUID, input services.CreateContractInput) (*models.MGContract, error) {
	args := m.Called(ctx, workshopID, input)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.MGContract), args.Error(1)
}

func (m *MockMGBillingService) GetContract(ctx context.Context, workshopID, id uuid.UUID) (*models.MGContract, error) {
	args := m.Called(ctx, workshopID, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.MGContract), args.Error(1)
}

func (m *MockMGBillingService) ListContracts(ctx context.Context, workshopID uuid.UUID) ([]*models.MGContract, error) {
	args := m.Called(ctx, workshopID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*models.MGContract), args.Error(1)
}

func (m *MockMGBillingService) EndContract(ctx context.Context, workshopID, id uuid.UUID) (*models.MGContract, error) {
	args := m.Called(ctx, workshopID, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.MGContract), args.Error(1)
}

func (m *MockMGBillingService) RecordVehicleLog(ctx context.Context, workshopID uuid.UUID, input services.VehicleLogInput) (*models.VehicleLog, error) {
	args := m.Called(ctx, workshopID, input)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.VehicleLog), args.Error(1)
}

func (m *MockMGBillingService) ListVehicleLogs(ctx context.Context, workshopID, contractID, vehicleID uuid.UUID, period string) ([]models.VehicleLog, error) {
	args := m.Called(ctx, workshopID, contractID, vehicleID, period)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]models.VehicleLog), args.Error(1)
}

func (m *MockMGBillingService) CorrectVehicleLog(ctx context.Context, workshopID, logID uuid.UUID, input services.CorrectVehicleLogInput) (*services.VehicleLogCorrection, error) {
	args := m.Called(ctx, workshopID, logID, input)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*services.VehicleLogCorrection), args.Error(1)
}

func (m *MockMGBillingService) GenerateBill(ctx context.Context, workshopID, contractID uuid.UUID, period string) (*models.BillingCalculation, error) {
	args := m.Called(ctx, workshopID, contractID, period)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.BillingCalculation), args.Error(1)
}

func (m *MockMGBillingService) ListBills(ctx context.Context, workshopID, contractID uuid.UUID) ([]*models.BillingCalculation, error) {
	args := m.Called(ctx, workshopID, contractID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*models.BillingCalculation), args.Error(1)
}

func (m *MockMGBillingService) FleetStats(ctx context.Context, workshopID uuid.UUID) (*models.FleetStats, error) {
	args := m.Called(ctx, workshopID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.FleetStats), args.Error(1)
}

func (m *MockMGBillingService) RunScheduledBilling(ctx context.Context, period billing.BillingPeriod) (*services.ScheduledRunResult, error) {
	args := m.Called(ctx, period)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*services.ScheduledRunResult), args.Error(1)
}

type MockPinger struct {
	mock.Mock
}

func (m *MockPinger) Ping(ctx context.Context) error {
	return m.Called(ctx).Error(0)
}

// newTestEcho returns an echo instance configured like the server
func newTestEcho() *echo.Echo {
	e := echo.New()
	e.Validator = common.NewRequestValidator()
	return e
}

// authedContext builds an echo context carrying workshopID, optionally with a JSON body and an :id param
func authedContext(e *echo.Echo, method, target, body string, workshopID uuid.UUID, id string) (echo.Context, *httptest.ResponseRecorder) {
	var req *http.Request
	if body == "" {
		req = httptest.NewRequest(method, target, nil)
	} else {
		req = httptest.NewRequest(method, target, strings.NewReader(body))
		req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	}
	if workshopID != uuid.Nil {
		req = req.WithContext(common.WithActor(req.Context(), uuid.New(), workshopID, "Ravi Kumar"))
	}
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)
	if id != "" {
		c.SetParamNames("id")
		c.SetParamValues(id)
	}
	return c, rec
}
