package services

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"garageflow/internal/billing"
	"garageflow/internal/caching"
	"garageflow/internal/common"
	"garageflow/internal/models"
	"garageflow/internal/repositories"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
	"github.com/shopspring/decimal"
	"golang.org/x/sync/errgroup"
)

const vehicleFetchConcurrency = 8

type CreateContractInput struct {
	CustomerID       uuid.UUID
	ContractType     models.ContractType
	AssuredKm        decimal.Decimal
	RatePerKm        decimal.Decimal
	VehicleIDs       []uuid.UUID
	StartDate        time.Time
	EndDate          time.Time
	BillingFrequency models.BillingFrequency
}

type VehicleLogInput struct {
	ContractID uuid.UUID
	VehicleID  uuid.UUID
	LogDate    time.Time
	OpeningKm  decimal.Decimal
	ClosingKm  decimal.Decimal
	Notes      string
}

type CorrectVehicleLogInput struct {
	ContractID uuid.UUID
	OpeningKm  decimal.Decimal
	ClosingKm  decimal.Decimal
	Notes      string
}

// VehicleLogCorrection is the pair of rows written for one correction
type VehicleLogCorrection struct {
	Reversal    *models.VehicleLog `json:"reversal"`
	Replacement *models.VehicleLog `json:"replacement"`
}

// ScheduledRunResult summarises one scheduled billing pass
type ScheduledRunResult struct {
	Period  string
	Billed  int
	Skipped int
	Failed  int
}

type MGBillingService interface {
	CreateContract(ctx context.Context, workshopID uuid.UUID, input CreateContractInput) (*models.MGContract, error)
	GetContract(ctx context.Context, workshopID, id uuid.UUID) (*models.MGContract, error)
	ListContracts(ctx context.Context, workshopID uuid.UUID) ([]*models.MGContract, error)
	EndContract(ctx context.Context, workshopID, id uuid.UUID) (*models.MGContract, error)
	RecordVehicleLog(ctx context.Context, workshopID uuid.UUID, input VehicleLogInput) (*models.VehicleLog, error)
	ListVehicleLogs(ctx context.Context, workshopID, contractID, vehicleID uuid.UUID, period string) ([]models.VehicleLog, error)
	CorrectVehicleLog(ctx context.Context, workshopID, logID uuid.UUID, input CorrectVehicleLogInput) (*VehicleLogCorrection, error)
	GenerateBill(ctx context.Context, workshopID, contractID uuid.UUID, period string) (*models.BillingCalculation, error)
	ListBills(ctx context.Context, workshopID, contractID uuid.UUID) ([]*models.BillingCalculation, error)
	FleetStats(ctx context.Context, workshopID uuid.UUID) (*models.FleetStats, error)
	RunScheduledBilling(ctx context.Context, period billing.BillingPeriod) (*ScheduledRunResult, error)
}

type mgBillingService struct {
	contracts repositories.MGContractRepository
	logs      repositories.VehicleLogRepository
	bills     repositories.BillingRepository
	cache     caching.CacheService
	engine    *billing.MGBillingEngine
	lockTTL   time.Duration
	cacheTTL  time.Duration
	now       func() time.Time
}

func NewMGBillingService(
	contracts repositories.MGContractRepository,
	logs repositories.VehicleLogRepository,
	bills repositories.BillingRepository,
	cache caching.CacheService,
	engine *billing.MGBillingEngine,
	lockTTL, cacheTTL time.Duration,
) MGBillingService {
	if engine == nil {
		engine = billing.NewMGBillingEngine()
	}
	return &mgBillingService{
		contracts: contracts,
		logs:      logs,
		bills:     bills,
		cache:     cache,
		engine:    engine,
		lockTTL:   lockTTL,
		cacheTTL:  cacheTTL,
		now:       time.Now,
	}
}

func validateContract(input CreateContractInput) error {
	switch {
	case input.ContractType != models.ContractTypeFixedKm && input.ContractType != models.ContractTypeVariableKm &&
		input.ContractType != models.ContractTypeHybrid:
		return fmt.Errorf("%w: unknown contract type %q", common.ErrInvalidContract, input.ContractType)
	case input.AssuredKm.IsNegative():
		return fmt.Errorf("%w: assured km cannot be negative", common.ErrInvalidContract)
	case !input.RatePerKm.IsPositive():
		return fmt.Errorf("%w: rate per km must be positive", common.ErrInvalidContract)
	case len(input.VehicleIDs) == 0:
		return fmt.Errorf("%w: at least one vehicle is required", common.ErrInvalidContract)
	case input.EndDate.Before(input.StartDate):
		return fmt.Errorf("%w: end date is before start date", common.ErrInvalidContract)
	}
	seen := make(map[uuid.UUID]struct{}, len(input.VehicleIDs))
	for _, id := range input.VehicleIDs {
		if _, dup := seen[id]; dup {
			return fmt.Errorf("%w: vehicle %s listed twice", common.ErrInvalidContract, id)
		}
		seen[id] = struct{}{}
	}
	return nil
}

func (s *mgBillingService) CreateContract(ctx context.Context, workshopID uuid.UUID, input CreateContractInput) (*models.MGContract, error) {
	if input.BillingFrequency == "" {
		input.BillingFrequency = models.BillingFrequencyMonthly
	}
	if err := validateContract(input); err != nil {
		return nil, err
	}

	now := s.now().UTC()
	number, err := s.contracts.NextContractNumber(ctx, workshopID, now)
	if err != nil {
		return nil, err
	}

	contract := &models.MGContract{
		ID:               uuid.New(),
		ContractNumber:   number,
		WorkshopID:       workshopID,
		CustomerID:       input.CustomerID,
		ContractType:     input.ContractType,
		AssuredKm:        input.AssuredKm,
		RatePerKm:        input.RatePerKm,
		VehicleIDs:       input.VehicleIDs,
		StartDate:        input.StartDate,
		EndDate:          input.EndDate,
		BillingFrequency: input.BillingFrequency,
		Status:           models.ContractStatusActive,
		CreatedAt:        now,
		UpdatedAt:        now,
	}
	if err := s.contracts.Create(ctx, contract); err != nil {
		return nil, err
	}

	log.Info().Str("contract_id", contract.ID.String()).Str("contract_number", number).Int("vehicles", len(input.VehicleIDs)).
		Msg("MG contract created")
	return contract, nil
}

func (s *mgBillingService) GetContract(ctx context.Context, workshopID, id uuid.UUID) (*models.MGContract, error) {
	return s.contracts.GetByID(ctx, workshopID, id)
}

func (s *mgBillingService) ListContracts(ctx context.Context, workshopID uuid.UUID) ([]*models.MGContract, error) {
	return s.contracts.ListByWorkshop(ctx, workshopID)
}

func (s *mgBillingService) EndContract(ctx context.Context, workshopID, id uuid.UUID) (*models.MGContract, error) {
	contract, err := s.contracts.GetByID(ctx, workshopID, id)
	if err != nil {
		return nil, err
	}

	now := s.now().UTC()
	if err := s.contracts.End(ctx, workshopID, id, now); err != nil {
		return nil, err
	}
	contract.Status = models.ContractStatusEnded
	contract.UpdatedAt = now

	log.Info().Str("contract_id", id.String()).Msg("MG contract ended")
	return contract, nil
}

func (s *mgBillingService) RecordVehicleLog(ctx context.Context, workshopID uuid.UUID, input VehicleLogInput) (*models.VehicleLog, error) {
	contract, err := s.contracts.GetByID(ctx, workshopID, input.ContractID)
	if err != nil {
		return nil, err
	}
	if !contract.IsActive() {
		return nil, fmt.Errorf("%w: %s", common.ErrContractNotActive, contract.ContractNumber)
	}
	if !contract.HasVehicle(input.VehicleID) {
		return nil, fmt.Errorf("%w: vehicle %s is not on contract %s", common.ErrInvalidVehicleLog, input.VehicleID, contract.ContractNumber)
	}
	if err := validateReadings(input.OpeningKm, input.ClosingKm); err != nil {
		return nil, err
	}

	entry := &models.VehicleLog{
		ID:         uuid.New(),
		ContractID: contract.ID,
		VehicleID:  input.VehicleID,
		LogDate:    input.LogDate.UTC(),
		OpeningKm:  input.OpeningKm,
		ClosingKm:  input.ClosingKm,
		TotalKm:    input.ClosingKm.Sub(input.OpeningKm),
		Notes:      strings.TrimSpace(input.Notes),
		CreatedAt:  s.now().UTC(),
	}
	if err := s.logs.Create(ctx, entry); err != nil {
		return nil, err
	}
	return entry, nil
}

// ListVehicleLogs returns one vehicle's logs for a billing period, reversals included.
// An empty period means the current month.
func (s *mgBillingService) ListVehicleLogs(ctx context.Context, workshopID, contractID, vehicleID uuid.UUID, period string) ([]models.VehicleLog, error) {
	contract, err := s.contracts.GetByID(ctx, workshopID, contractID)
	if err != nil {
		return nil, err
	}
	if !contract.HasVehicle(vehicleID) {
		return nil, common.NewNotFoundError("vehicle", vehicleID)
	}

	billingPeriod := billing.PeriodOf(s.now())
	if period != "" {
		if billingPeriod, err = billing.ParseBillingPeriod(period); err != nil {
			return nil, err
		}
	}
	return s.logs.ListForVehicle(ctx, contract.ID, vehicleID, billingPeriod.Start(), billingPeriod.End())
}

func validateReadings(opening, closing decimal.Decimal) error {
	if opening.IsNegative() {
		return fmt.Errorf("%w: opening km cannot be negative", common.ErrInvalidVehicleLog)
	}
	if closing.LessThan(opening) {
		return fmt.Errorf("%w: closing km %s is below opening km %s", common.ErrInvalidVehicleLog, closing, opening)
	}
	return nil
}

// CorrectVehicleLog appends a reversal of the original plus a replacement row.
// The original row is never modified and can be corrected only once.
func (s *mgBillingService) CorrectVehicleLog(ctx context.Context, workshopID, logID uuid.UUID, input CorrectVehicleLogInput) (*VehicleLogCorrection, error) {
	contract, err := s.contracts.GetByID(ctx, workshopID, input.ContractID)
	if err != nil {
		return nil, err
	}
	original, err := s.logs.GetByID(ctx, contract.ID, logID)
	if err != nil {
		return nil, err
	}
	if original.IsReversal() {
		return nil, fmt.Errorf("%w: reversal entries cannot be corrected", common.ErrInvalidVehicleLog)
	}
	reversed, err := s.logs.IsReversed(ctx, original.ID)
	if err != nil {
		return nil, err
	}
	if reversed {
		return nil, fmt.Errorf("%w: log %s was already corrected", common.ErrInvalidVehicleLog, original.ID)
	}
	if err := validateReadings(input.OpeningKm, input.ClosingKm); err != nil {
		return nil, err
	}

	now := s.now().UTC()
	notes := strings.TrimSpace(input.Notes)
	reversal := &models.VehicleLog{
		ID:            uuid.New(),
		ContractID:    original.ContractID,
		VehicleID:     original.VehicleID,
		LogDate:       original.LogDate,
		OpeningKm:     original.ClosingKm,
		ClosingKm:     original.OpeningKm,
		TotalKm:       original.TotalKm.Neg(),
		ReversesLogID: &original.ID,
		Notes:         notes,
		CreatedAt:     now,
	}
	replacement := &models.VehicleLog{
		ID:         uuid.New(),
		ContractID: original.ContractID,
		VehicleID:  original.VehicleID,
		LogDate:    original.LogDate,
		OpeningKm:  input.OpeningKm,
		ClosingKm:  input.ClosingKm,
		TotalKm:    input.ClosingKm.Sub(input.OpeningKm),
		Notes:      notes,
		CreatedAt:  now,
	}
	if err := s.logs.CreateCorrection(ctx, reversal, replacement); err != nil {
		return nil, err
	}

	log.Info().Str("vehicle_log_id", original.ID.String()).Str("contract_id", contract.ID.String()).Msg("vehicle log corrected")
	return &VehicleLogCorrection{Reversal: reversal, Replacement: replacement}, nil
}

func (s *mgBillingService) GenerateBill(ctx context.Context, workshopID, contractID uuid.UUID, period string) (*models.BillingCalculation, error) {
	billingPeriod, err := billing.ParseBillingPeriod(period)
	if err != nil {
		return nil, err
	}
	contract, err := s.contracts.GetByID(ctx, workshopID, contractID)
	if err != nil {
		return nil, err
	}
	return s.generate(ctx, contract, billingPeriod)
}

// generate returns the stored calculation when one exists; otherwise it computes
// and stores one under a per-(contract, period) lock.
func (s *mgBillingService) generate(ctx context.Context, contract *models.MGContract, period billing.BillingPeriod) (*models.BillingCalculation, error) {
	logger := log.With().Str("contract_id", contract.ID.String()).Str("period", period.String()).Logger()

	if s.cache != nil {
		cached, err := s.cache.GetCalculation(ctx, contract.ID, period.String())
		if err != nil {
			logger.Warn().Err(err).Msg("billing cache read failed")
		} else if cached != nil {
			return cached, nil
		}

		release, err := s.cache.AcquireBillingLock(ctx, contract.ID, period.String(), s.lockTTL)
		if err != nil {
			return nil, err
		}
		defer func() {
			if err := release(context.WithoutCancel(ctx)); err != nil {
				logger.Warn().Err(err).Msg("failed to release billing lock")
			}
		}()
	}

	existing, err := s.bills.GetByPeriod(ctx, contract.ID, period.String())
	if err == nil {
		s.remember(ctx, existing)
		return existing, nil
	}
	if !errors.Is(err, common.ErrEntityNotFound) {
		return nil, err
	}
	if !contract.IsActive() {
		return nil, fmt.Errorf("%w: %s", common.ErrContractNotActive, contract.ContractNumber)
	}

	logs, err := s.fetchLogs(ctx, contract, period)
	if err != nil {
		return nil, err
	}

	calc, err := s.engine.GenerateBill(contract, period, logs)
	if err != nil {
		return nil, err
	}

	inserted, err := s.bills.Insert(ctx, calc)
	if err != nil {
		return nil, err
	}
	if !inserted {
		// another writer stored this period first
		calc, err = s.bills.GetByPeriod(ctx, contract.ID, period.String())
		if err != nil {
			return nil, err
		}
	} else {
		logger.Info().
			Str("actual_km", calc.ActualKm.String()).
			Str("billable_km", calc.BillableKm.String()).
			Str("total_amount", calc.TotalAmount.StringFixed(2)).
			Msg("MG bill generated")
	}

	s.remember(ctx, calc)
	return calc, nil
}

func (s *mgBillingService) remember(ctx context.Context, calc *models.BillingCalculation) {
	if s.cache == nil {
		return
	}
	if err := s.cache.SetCalculation(ctx, calc, s.cacheTTL); err != nil {
		log.Warn().Err(err).Str("contract_id", calc.ContractID.String()).Msg("billing cache write failed")
	}
}

// fetchLogs loads each vehicle's logs for the period concurrently
func (s *mgBillingService) fetchLogs(ctx context.Context, contract *models.MGContract, period billing.BillingPeriod) ([]models.VehicleLog, error) {
	perVehicle := make([][]models.VehicleLog, len(contract.VehicleIDs))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(vehicleFetchConcurrency)
	for i, vehicleID := range contract.VehicleIDs {
		i, vehicleID := i, vehicleID
		g.Go(func() error {
			logs, err := s.logs.ListForVehicle(gctx, contract.ID, vehicleID, period.Start(), period.End())
			if err != nil {
				return fmt.Errorf("failed to load logs for vehicle %s: %w", vehicleID, err)
			}
			perVehicle[i] = logs
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	var all []models.VehicleLog
	for _, logs := range perVehicle {
		all = append(all, logs...)
	}
	return all, nil
}

func (s *mgBillingService) ListBills(ctx context.Context, workshopID, contractID uuid.UUID) ([]*models.BillingCalculation, error) {
	if _, err := s.contracts.GetByID(ctx, workshopID, contractID); err != nil {
		return nil, err
	}
	return s.bills.ListByContract(ctx, contractID)
}

func (s *mgBillingService) FleetStats(ctx context.Context, workshopID uuid.UUID) (*models.FleetStats, error) {
	return s.contracts.Stats(ctx, workshopID, billing.PeriodOf(s.now()).String())
}

// RunScheduledBilling bills period for every active monthly contract.
// A failing contract does not stop the run.
func (s *mgBillingService) RunScheduledBilling(ctx context.Context, period billing.BillingPeriod) (*ScheduledRunResult, error) {
	contracts, err := s.contracts.ListActive(ctx, models.BillingFrequencyMonthly)
	if err != nil {
		return nil, fmt.Errorf("failed to list active contracts: %w", err)
	}

	result := &ScheduledRunResult{Period: period.String()}
	var failures []error
	for _, contract := range contracts {
		if ctx.Err() != nil {
			failures = append(failures, ctx.Err())
			break
		}
		_, err := s.generate(ctx, contract, period)
		switch {
		case err == nil:
			result.Billed++
		case errors.Is(err, common.ErrBillingInProgress), errors.Is(err, common.ErrNoUsageData):
			result.Skipped++
			log.Info().Err(err).Str("contract_id", contract.ID.String()).Msg("scheduled billing skipped contract")
		default:
			result.Failed++
			failures = append(failures, fmt.Errorf("contract %s: %w", contract.ContractNumber, err))
			log.Error().Err(err).Str("contract_id", contract.ID.String()).Str("period", period.String()).Msg("scheduled billing failed")
		}
	}

	return result, errors.Join(failures...)
}
