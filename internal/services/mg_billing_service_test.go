package services

import (
	"context"
	"errors"
	"testing"
	"time"

	"garageflow/internal/billing"
	"garageflow/internal/caching"
	"garageflow/internal/common"
	"garageflow/internal/models"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"github.com/stretchr/testify/suite"
)

const (
	testLockTTL  = 30 * time.Second
	testCacheTTL = 24 * time.Hour
)

type MGBillingServiceTestSuite struct {
	suite.Suite
	contracts  *MockMGContractRepository
	logs       *MockVehicleLogRepository
	bills      *MockBillingRepository
	cache      *MockCacheService
	service    MGBillingService
	workshopID uuid.UUID
	contract   *models.MGContract
	vehicleA   uuid.UUID
	vehicleB   uuid.UUID
	period     billing.BillingPeriod
	now        time.Time
	ctx        context.Context
	released   int
}

func (suite *MGBillingServiceTestSuite) SetupTest() {
	suite.contracts = new(MockMGContractRepository)
	suite.logs = new(MockVehicleLogRepository)
	suite.bills = new(MockBillingRepository)
	suite.cache = new(MockCacheService)
	suite.workshopID = uuid.New()
	suite.vehicleA = uuid.New()
	suite.vehicleB = uuid.New()
	suite.now = time.Date(2025, 7, 3, 9, 0, 0, 0, time.UTC)
	suite.period = billing.BillingPeriod{Year: 2025, Month: time.June}
	suite.ctx = context.Background()
	suite.released = 0
	suite.contract = &models.MGContract{
		ID:               uuid.New(),
		ContractNumber:   "MG-2025-00004",
		WorkshopID:       suite.workshopID,
		ContractType:     models.ContractTypeFixedKm,
		AssuredKm:        decimal.NewFromInt(2000),
		RatePerKm:        decimal.NewFromInt(10),
		VehicleIDs:       []uuid.UUID{suite.vehicleA, suite.vehicleB},
		BillingFrequency: models.BillingFrequencyMonthly,
		Status:           models.ContractStatusActive,
	}

	clock := func() time.Time { return suite.now }
	engine := billing.NewMGBillingEngine().WithClock(clock)
	svc := NewMGBillingService(suite.contracts, suite.logs, suite.bills, suite.cache, engine, testLockTTL, testCacheTTL).(*mgBillingService)
	svc.now = clock
	suite.service = svc
}

func (suite *MGBillingServiceTestSuite) TearDownTest() {
	suite.contracts.AssertExpectations(suite.T())
	suite.logs.AssertExpectations(suite.T())
	suite.bills.AssertExpectations(suite.T())
	suite.cache.AssertExpectations(suite.T())
}

func TestMGBillingServiceTestSuite(t *testing.T) {
	suite.Run(t, new(MGBillingServiceTestSuite))
}

func (suite *MGBillingServiceTestSuite) release() caching.ReleaseFunc {
	return func(context.Context) error {
		suite.released++
		return nil
	}
}

func (suite *MGBillingServiceTestSuite) logFor(vehicleID uuid.UUID, day int, km int64) models.VehicleLog {
	return models.VehicleLog{
		ID:         uuid.New(),
		ContractID: suite.contract.ID,
		VehicleID:  vehicleID,
		LogDate:    time.Date(2025, 6, day, 0, 0, 0, 0, time.UTC),
		OpeningKm:  decimal.NewFromInt(10000),
		ClosingKm:  decimal.NewFromInt(10000 + km),
		TotalKm:    decimal.NewFromInt(km),
	}
}

func (suite *MGBillingServiceTestSuite) expectLockedMiss() {
	suite.contracts.On("GetByID", suite.ctx, suite.workshopID, suite.contract.ID).Return(suite.contract, nil).Once()
	suite.cache.On("GetCalculation", suite.ctx, suite.contract.ID, "2025-06").Return(nil, nil).Once()
	suite.cache.On("AcquireBillingLock", suite.ctx, suite.contract.ID, "2025-06", testLockTTL).Return(suite.release(), nil).Once()
	suite.bills.On("GetByPeriod", suite.ctx, suite.contract.ID, "2025-06").
		Return(nil, &common.NotFoundError{Entity: "billing calculation", ID: "x"}).Once()
}

func (suite *MGBillingServiceTestSuite) expectLogs() {
	start, end := suite.period.Start(), suite.period.End()
	suite.logs.On("ListForVehicle", mock.Anything, suite.contract.ID, suite.vehicleA, start, end).
		Return([]models.VehicleLog{suite.logFor(suite.vehicleA, 2, 900), suite.logFor(suite.vehicleA, 20, 600)}, nil).Once()
	suite.logs.On("ListForVehicle", mock.Anything, suite.contract.ID, suite.vehicleB, start, end).
		Return([]models.VehicleLog{suite.logFor(suite.vehicleB, 11, 900)}, nil).Once()
}

func (suite *MGBillingServiceTestSuite) TestGenerateBill_ComputesStoresAndCaches() {
	suite.expectLockedMiss()
	suite.expectLogs()
	suite.bills.On("Insert", suite.ctx, mock.AnythingOfType("*models.BillingCalculation")).Return(true, nil).Once()
	suite.cache.On("SetCalculation", suite.ctx, mock.AnythingOfType("*models.BillingCalculation"), testCacheTTL).Return(nil).Once()

	calc, err := suite.service.GenerateBill(suite.ctx, suite.workshopID, suite.contract.ID, "2025-06")

	require.NoError(suite.T(), err)
	assert.True(suite.T(), calc.ActualKm.Equal(decimal.NewFromInt(2400)))
	assert.True(suite.T(), calc.BillableKm.Equal(decimal.NewFromInt(2400)))
	assert.True(suite.T(), calc.BaseAmount.Equal(decimal.NewFromInt(24000)))
	assert.True(suite.T(), calc.ExtraKmCharge.Equal(decimal.NewFromInt(2000)))
	assert.True(suite.T(), calc.GSTAmount.Equal(decimal.NewFromInt(4320)))
	assert.True(suite.T(), calc.TotalAmount.Equal(decimal.NewFromInt(30320)))
	require.Len(suite.T(), calc.VehicleBreakdown, 2)
	assert.Equal(suite.T(), suite.vehicleA, calc.VehicleBreakdown[0].VehicleID)
	assert.Equal(suite.T(), 2, calc.VehicleBreakdown[0].LogCount)
	assert.Equal(suite.T(), 1, suite.released)
}

func (suite *MGBillingServiceTestSuite) TestGenerateBill_CacheHit() {
	stored := &models.BillingCalculation{ContractID: suite.contract.ID, BillingPeriod: "2025-06", TotalAmount: decimal.NewFromInt(23600)}
	suite.contracts.On("GetByID", suite.ctx, suite.workshopID, suite.contract.ID).Return(suite.contract, nil).Once()
	suite.cache.On("GetCalculation", suite.ctx, suite.contract.ID, "2025-06").Return(stored, nil).Once()

	calc, err := suite.service.GenerateBill(suite.ctx, suite.workshopID, suite.contract.ID, "2025-06")

	require.NoError(suite.T(), err)
	assert.Same(suite.T(), stored, calc)
	suite.cache.AssertNotCalled(suite.T(), "AcquireBillingLock", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
}

func (suite *MGBillingServiceTestSuite) TestGenerateBill_ReturnsStoredCalculation() {
	stored := &models.BillingCalculation{ContractID: suite.contract.ID, BillingPeriod: "2025-06", TotalAmount: decimal.NewFromInt(23600)}
	suite.contracts.On("GetByID", suite.ctx, suite.workshopID, suite.contract.ID).Return(suite.contract, nil).Once()
	suite.cache.On("GetCalculation", suite.ctx, suite.contract.ID, "2025-06").Return(nil, nil).Once()
	suite.cache.On("AcquireBillingLock", suite.ctx, suite.contract.ID, "2025-06", testLockTTL).Return(suite.release(), nil).Once()
	suite.bills.On("GetByPeriod", suite.ctx, suite.contract.ID, "2025-06").Return(stored, nil).Once()
	suite.cache.On("SetCalculation", suite.ctx, stored, testCacheTTL).Return(nil).Once()

	calc, err := suite.service.GenerateBill(suite.ctx, suite.workshopID, suite.contract.ID, "2025-06")

	require.NoError(suite.T(), err)
	assert.Same(suite.T(), stored, calc)
	suite.logs.AssertNotCalled(suite.T(), "ListForVehicle", mock.Anything, mock.Anything, mock.Anything, mock.Anything, mock.Anything)
}

func (suite *MGBillingServiceTestSuite) TestGenerateBill_StoredEvenAfterContractEnded() {
	suite.contract.Status = models.ContractStatusEnded
	stored := &models.BillingCalculation{ContractID: suite.contract.ID, BillingPeriod: "2025-06"}
	suite.contracts.On("GetByID", suite.ctx, suite.workshopID, suite.contract.ID).Return(suite.contract, nil).Once()
	suite.cache.On("GetCalculation", suite.ctx, suite.contract.ID, "2025-06").Return(nil, nil).Once()
	suite.cache.On("AcquireBillingLock", suite.ctx, suite.contract.ID, "2025-06", testLockTTL).Return(suite.release(), nil).Once()
	suite.bills.On("GetByPeriod", suite.ctx, suite.contract.ID, "2025-06").Return(stored, nil).Once()
	suite.cache.On("SetCalculation", suite.ctx, stored, testCacheTTL).Return(nil).Once()

	calc, err := suite.service.GenerateBill(suite.ctx, suite.workshopID, suite.contract.ID, "2025-06")

	require.NoError(suite.T(), err)
	assert.Same(suite.T(), stored, calc)
}

func (suite *MGBillingServiceTestSuite) TestGenerateBill_EndedContractWithoutBill() {
	suite.contract.Status = models.ContractStatusEnded
	suite.expectLockedMiss()

	_, err := suite.service.GenerateBill(suite.ctx, suite.workshopID, suite.contract.ID, "2025-06")

	assert.ErrorIs(suite.T(), err, common.ErrContractNotActive)
	assert.Equal(suite.T(), 1, suite.released)
}

func (suite *MGBillingServiceTestSuite) TestGenerateBill_LostInsertRaceReReads() {
	winner := &models.BillingCalculation{ID: uuid.New(), ContractID: suite.contract.ID, BillingPeriod: "2025-06"}
	suite.expectLockedMiss()
	suite.expectLogs()
	suite.bills.On("Insert", suite.ctx, mock.Anything).Return(false, nil).Once()
	suite.bills.On("GetByPeriod", suite.ctx, suite.contract.ID, "2025-06").Return(winner, nil).Once()
	suite.cache.On("SetCalculation", suite.ctx, winner, testCacheTTL).Return(nil).Once()

	calc, err := suite.service.GenerateBill(suite.ctx, suite.workshopID, suite.contract.ID, "2025-06")

	require.NoError(suite.T(), err)
	assert.Equal(suite.T(), winner.ID, calc.ID)
}

func (suite *MGBillingServiceTestSuite) TestGenerateBill_LockHeld() {
	suite.contracts.On("GetByID", suite.ctx, suite.workshopID, suite.contract.ID).Return(suite.contract, nil).Once()
	suite.cache.On("GetCalculation", suite.ctx, suite.contract.ID, "2025-06").Return(nil, nil).Once()
	suite.cache.On("AcquireBillingLock", suite.ctx, suite.contract.ID, "2025-06", testLockTTL).
		Return(nil, common.ErrBillingInProgress).Once()

	_, err := suite.service.GenerateBill(suite.ctx, suite.workshopID, suite.contract.ID, "2025-06")

	assert.ErrorIs(suite.T(), err, common.ErrBillingInProgress)
}

func (suite *MGBillingServiceTestSuite) TestGenerateBill_LogFetchFailure() {
	suite.expectLockedMiss()
	start, end := suite.period.Start(), suite.period.End()
	suite.logs.On("ListForVehicle", mock.Anything, suite.contract.ID, suite.vehicleA, start, end).
		Return(nil, errors.New("timeout")).Maybe()
	suite.logs.On("ListForVehicle", mock.Anything, suite.contract.ID, suite.vehicleB, start, end).
		Return([]models.VehicleLog{}, nil).Maybe()

	_, err := suite.service.GenerateBill(suite.ctx, suite.workshopID, suite.contract.ID, "2025-06")

	require.Error(suite.T(), err)
	assert.Contains(suite.T(), err.Error(), suite.vehicleA.String())
	suite.bills.AssertNotCalled(suite.T(), "Insert", mock.Anything, mock.Anything)
}

func (suite *MGBillingServiceTestSuite) TestGenerateBill_BadPeriod() {
	_, err := suite.service.GenerateBill(suite.ctx, suite.workshopID, suite.contract.ID, "2025-13")
	assert.ErrorIs(suite.T(), err, common.ErrInvalidBillingPeriod)
}

func (suite *MGBillingServiceTestSuite) TestCreateContract_Success() {
	suite.contracts.On("NextContractNumber", suite.ctx, suite.workshopID, suite.now).Return("MG-2025-00009", nil).Once()
	suite.contracts.On("Create", suite.ctx, mock.MatchedBy(func(c *models.MGContract) bool {
		return c.Status == models.ContractStatusActive && c.BillingFrequency == models.BillingFrequencyMonthly &&
			c.ContractNumber == "MG-2025-00009"
	})).Return(nil).Once()

	contract, err := suite.service.CreateContract(suite.ctx, suite.workshopID, CreateContractInput{
		CustomerID:   uuid.New(),
		ContractType: models.ContractTypeHybrid,
		AssuredKm:    decimal.NewFromInt(3000),
		RatePerKm:    decimal.RequireFromString("12.5"),
		VehicleIDs:   []uuid.UUID{suite.vehicleA},
		StartDate:    time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC),
		EndDate:      time.Date(2025, 12, 31, 0, 0, 0, 0, time.UTC),
	})

	require.NoError(suite.T(), err)
	assert.Equal(suite.T(), "MG-2025-00009", contract.ContractNumber)
}

func (suite *MGBillingServiceTestSuite) TestCreateContract_Invalid() {
	base := CreateContractInput{
		ContractType: models.ContractTypeFixedKm,
		AssuredKm:    decimal.NewFromInt(1000),
		RatePerKm:    decimal.NewFromInt(8),
		VehicleIDs:   []uuid.UUID{suite.vehicleA},
		StartDate:    time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC),
		EndDate:      time.Date(2025, 12, 31, 0, 0, 0, 0, time.UTC),
	}

	zeroRate := base
	zeroRate.RatePerKm = decimal.Zero
	noVehicles := base
	noVehicles.VehicleIDs = nil
	backwards := base
	backwards.EndDate = time.Date(2024, 12, 31, 0, 0, 0, 0, time.UTC)
	duplicate := base
	duplicate.VehicleIDs = []uuid.UUID{suite.vehicleA, suite.vehicleA}

	for name, input := range map[string]CreateContractInput{
		"zero rate": zeroRate, "no vehicles": noVehicles, "end before start": backwards, "duplicate vehicle": duplicate,
	} {
		_, err := suite.service.CreateContract(suite.ctx, suite.workshopID, input)
		assert.ErrorIs(suite.T(), err, common.ErrInvalidContract, name)
	}
}

func (suite *MGBillingServiceTestSuite) TestRecordVehicleLog_Validation() {
	suite.contracts.On("GetByID", suite.ctx, suite.workshopID, suite.contract.ID).Return(suite.contract, nil).Twice()

	_, err := suite.service.RecordVehicleLog(suite.ctx, suite.workshopID, VehicleLogInput{
		ContractID: suite.contract.ID,
		VehicleID:  suite.vehicleA,
		LogDate:    suite.now,
		OpeningKm:  decimal.NewFromInt(500),
		ClosingKm:  decimal.NewFromInt(400),
	})
	assert.ErrorIs(suite.T(), err, common.ErrInvalidVehicleLog)

	_, err = suite.service.RecordVehicleLog(suite.ctx, suite.workshopID, VehicleLogInput{
		ContractID: suite.contract.ID,
		VehicleID:  uuid.New(),
		LogDate:    suite.now,
		OpeningKm:  decimal.NewFromInt(400),
		ClosingKm:  decimal.NewFromInt(500),
	})
	assert.ErrorIs(suite.T(), err, common.ErrInvalidVehicleLog)
}

func (suite *MGBillingServiceTestSuite) TestRecordVehicleLog_Success() {
	suite.contracts.On("GetByID", suite.ctx, suite.workshopID, suite.contract.ID).Return(suite.contract, nil).Once()
	suite.logs.On("Create", suite.ctx, mock.MatchedBy(func(l *models.VehicleLog) bool {
		return l.TotalKm.Equal(decimal.RequireFromString("132.4")) && l.ReversesLogID == nil
	})).Return(nil).Once()

	entry, err := suite.service.RecordVehicleLog(suite.ctx, suite.workshopID, VehicleLogInput{
		ContractID: suite.contract.ID,
		VehicleID:  suite.vehicleB,
		LogDate:    suite.now,
		OpeningKm:  decimal.RequireFromString("45210.0"),
		ClosingKm:  decimal.RequireFromString("45342.4"),
	})

	require.NoError(suite.T(), err)
	assert.Equal(suite.T(), suite.contract.ID, entry.ContractID)
}

func (suite *MGBillingServiceTestSuite) TestCorrectVehicleLog_WritesReversalAndReplacement() {
	original := suite.logFor(suite.vehicleA, 5, 300)
	suite.contracts.On("GetByID", suite.ctx, suite.workshopID, suite.contract.ID).Return(suite.contract, nil).Once()
	suite.logs.On("GetByID", suite.ctx, suite.contract.ID, original.ID).Return(&original, nil).Once()
	suite.logs.On("IsReversed", suite.ctx, original.ID).Return(false, nil).Once()
	suite.logs.On("CreateCorrection", suite.ctx, mock.Anything, mock.Anything).Return(nil).Once()

	correction, err := suite.service.CorrectVehicleLog(suite.ctx, suite.workshopID, original.ID, CorrectVehicleLogInput{
		ContractID: suite.contract.ID,
		OpeningKm:  decimal.NewFromInt(10000),
		ClosingKm:  decimal.NewFromInt(10250),
		Notes:      "odometer misread",
	})

	require.NoError(suite.T(), err)
	rev := correction.Reversal
	require.NotNil(suite.T(), rev.ReversesLogID)
	assert.Equal(suite.T(), original.ID, *rev.ReversesLogID)
	assert.True(suite.T(), rev.TotalKm.Equal(decimal.NewFromInt(-300)))
	assert.True(suite.T(), rev.TotalKm.Equal(rev.ClosingKm.Sub(rev.OpeningKm)))
	assert.Equal(suite.T(), original.LogDate, rev.LogDate)
	assert.True(suite.T(), correction.Replacement.TotalKm.Equal(decimal.NewFromInt(250)))
	assert.True(suite.T(), original.TotalKm.Add(rev.TotalKm).Add(correction.Replacement.TotalKm).Equal(decimal.NewFromInt(250)))
}

func (suite *MGBillingServiceTestSuite) TestCorrectVehicleLog_OnlyOnce() {
	original := suite.logFor(suite.vehicleA, 5, 300)
	suite.contracts.On("GetByID", suite.ctx, suite.workshopID, suite.contract.ID).Return(suite.contract, nil).Once()
	suite.logs.On("GetByID", suite.ctx, suite.contract.ID, original.ID).Return(&original, nil).Once()
	suite.logs.On("IsReversed", suite.ctx, original.ID).Return(true, nil).Once()

	_, err := suite.service.CorrectVehicleLog(suite.ctx, suite.workshopID, original.ID, CorrectVehicleLogInput{
		ContractID: suite.contract.ID,
		OpeningKm:  decimal.NewFromInt(10000),
		ClosingKm:  decimal.NewFromInt(10250),
	})

	assert.ErrorIs(suite.T(), err, common.ErrInvalidVehicleLog)
}

func (suite *MGBillingServiceTestSuite) TestEndContract() {
	suite.contracts.On("GetByID", suite.ctx, suite.workshopID, suite.contract.ID).Return(suite.contract, nil).Once()
	suite.contracts.On("End", suite.ctx, suite.workshopID, suite.contract.ID, suite.now).Return(nil).Once()

	contract, err := suite.service.EndContract(suite.ctx, suite.workshopID, suite.contract.ID)

	require.NoError(suite.T(), err)
	assert.Equal(suite.T(), models.ContractStatusEnded, contract.Status)
}

func (suite *MGBillingServiceTestSuite) TestFleetStats_UsesCurrentMonth() {
	stats := &models.FleetStats{TotalContracts: 3, ActiveContracts: 2, TotalVehicles: 11, CurrentPeriod: "2025-07"}
	suite.contracts.On("Stats", suite.ctx, suite.workshopID, "2025-07").Return(stats, nil).Once()

	got, err := suite.service.FleetStats(suite.ctx, suite.workshopID)

	require.NoError(suite.T(), err)
	assert.Equal(suite.T(), 11, got.TotalVehicles)
}

func (suite *MGBillingServiceTestSuite) TestRunScheduledBilling_ContinuesPastBusyContract() {
	busy := &models.MGContract{ID: uuid.New(), ContractNumber: "MG-2025-00005", Status: models.ContractStatusActive,
		VehicleIDs: []uuid.UUID{uuid.New()}, AssuredKm: decimal.NewFromInt(100), RatePerKm: decimal.NewFromInt(5)}
	stored := &models.BillingCalculation{ContractID: suite.contract.ID, BillingPeriod: "2025-06"}

	suite.contracts.On("ListActive", suite.ctx, models.BillingFrequencyMonthly).Return([]*models.MGContract{busy, suite.contract}, nil).Once()
	suite.cache.On("GetCalculation", suite.ctx, busy.ID, "2025-06").Return(nil, nil).Once()
	suite.cache.On("AcquireBillingLock", suite.ctx, busy.ID, "2025-06", testLockTTL).Return(nil, common.ErrBillingInProgress).Once()
	suite.cache.On("GetCalculation", suite.ctx, suite.contract.ID, "2025-06").Return(stored, nil).Once()

	result, err := suite.service.RunScheduledBilling(suite.ctx, suite.period)

	require.NoError(suite.T(), err)
	assert.Equal(suite.T(), "2025-06", result.Period)
	assert.Equal(suite.T(), 1, result.Billed)
	assert.Equal(suite.T(), 1, result.Skipped)
	assert.Equal(suite.T(), 0, result.Failed)
}

func (suite *MGBillingServiceTestSuite) TestListContracts() {
	suite.contracts.On("ListByWorkshop", suite.ctx, suite.workshopID).Return([]*models.MGContract{suite.contract}, nil).Once()

	contracts, err := suite.service.ListContracts(suite.ctx, suite.workshopID)

	require.NoError(suite.T(), err)
	require.Len(suite.T(), contracts, 1)
	assert.Equal(suite.T(), "MG-2025-00004", contracts[0].ContractNumber)
}

func (suite *MGBillingServiceTestSuite) TestListVehicleLogs_RequestedPeriod() {
	suite.contracts.On("GetByID", suite.ctx, suite.workshopID, suite.contract.ID).Return(suite.contract, nil).Once()
	suite.logs.On("ListForVehicle", suite.ctx, suite.contract.ID, suite.vehicleA, suite.period.Start(), suite.period.End()).
		Return([]models.VehicleLog{suite.logFor(suite.vehicleA, 2, 900)}, nil).Once()

	logs, err := suite.service.ListVehicleLogs(suite.ctx, suite.workshopID, suite.contract.ID, suite.vehicleA, "2025-06")

	require.NoError(suite.T(), err)
	require.Len(suite.T(), logs, 1)
	assert.True(suite.T(), logs[0].TotalKm.Equal(decimal.NewFromInt(900)))
}

func (suite *MGBillingServiceTestSuite) TestListVehicleLogs_DefaultsToCurrentMonth() {
	july := billing.BillingPeriod{Year: 2025, Month: time.July}
	suite.contracts.On("GetByID", suite.ctx, suite.workshopID, suite.contract.ID).Return(suite.contract, nil).Once()
	suite.logs.On("ListForVehicle", suite.ctx, suite.contract.ID, suite.vehicleB, july.Start(), july.End()).
		Return([]models.VehicleLog{}, nil).Once()

	logs, err := suite.service.ListVehicleLogs(suite.ctx, suite.workshopID, suite.contract.ID, suite.vehicleB, "")

	require.NoError(suite.T(), err)
	assert.Empty(suite.T(), logs)
}

func (suite *MGBillingServiceTestSuite) TestListVehicleLogs_VehicleNotOnContract() {
	suite.contracts.On("GetByID", suite.ctx, suite.workshopID, suite.contract.ID).Return(suite.contract, nil).Once()

	_, err := suite.service.ListVehicleLogs(suite.ctx, suite.workshopID, suite.contract.ID, uuid.New(), "2025-06")

	assert.ErrorIs(suite.T(), err, common.ErrEntityNotFound)
	suite.logs.AssertNotCalled(suite.T(), "ListForVehicle", mock.Anything, mock.Anything, mock.Anything, mock.Anything, mock.Anything)
}

func (suite *MGBillingServiceTestSuite) TestListVehicleLogs_BadPeriod() {
	suite.contracts.On("GetByID", suite.ctx, suite.workshopID, suite.contract.ID).Return(suite.contract, nil).Once()

	_, err := suite.service.ListVehicleLogs(suite.ctx, suite.workshopID, suite.contract.ID, suite.vehicleA, "06-2025")

	assert.ErrorIs(suite.T(), err, common.ErrInvalidBillingPeriod)
}
