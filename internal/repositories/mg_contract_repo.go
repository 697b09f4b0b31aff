package repositories

import (
	"context"
	"errors"
	"fmt"
	"time"

	"garageflow/internal/common"
	"garageflow/internal/models"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/shopspring/decimal"
)

type MGContractRepository interface {
	Create(ctx context.Context, contract *models.MGContract) error
	GetByID(ctx context.Context, workshopID, id uuid.UUID) (*models.MGContract, error)
	ListActive(ctx context.Context, frequency models.BillingFrequency) ([]*models.MGContract, error)
	ListByWorkshop(ctx context.Context, workshopID uuid.UUID) ([]*models.MGContract, error)
	End(ctx context.Context, workshopID, id uuid.UUID, at time.Time) error
	NextContractNumber(ctx context.Context, workshopID uuid.UUID, at time.Time) (string, error)
	Stats(ctx context.Context, workshopID uuid.UUID, period string) (*models.FleetStats, error)
}

type mgContractRepo struct {
	db DB
}

func NewMGContractRepo(db DB) MGContractRepository {
	return &mgContractRepo{db: db}
}

const contractColumns = `id, contract_number, workshop_id, customer_id, contract_type, assured_km, rate_per_km, vehicle_ids, start_date, end_date, billing_frequency, status, created_at, updated_at`

func (r *mgContractRepo) Create(ctx context.Context, contract *models.MGContract) error {
	query := `
		INSERT INTO mg_contracts (` + contractColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14)
	`
	_, err := r.db.Exec(ctx, query, contract.ID, contract.ContractNumber, contract.WorkshopID, contract.CustomerID,
		string(contract.ContractType), contract.AssuredKm, contract.RatePerKm, contract.VehicleIDs, contract.StartDate, contract.EndDate,
		string(contract.BillingFrequency), string(contract.Status), contract.CreatedAt, contract.UpdatedAt)
	if err != nil {
		return fmt.Errorf("failed to insert contract: %w", err)
	}
	return nil
}

func (r *mgContractRepo) GetByID(ctx context.Context, workshopID, id uuid.UUID) (*models.MGContract, error) {
	query := `SELECT ` + contractColumns + ` FROM mg_contracts WHERE workshop_id = $1 AND id = $2`
	contract, err := scanContract(r.db.QueryRow(ctx, query, workshopID, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, common.NewNotFoundError("contract", id)
		}
		return nil, err
	}
	return contract, nil
}

// ListActive returns active contracts across all workshops for scheduled billing
func (r *mgContractRepo) ListActive(ctx context.Context, frequency models.BillingFrequency) ([]*models.MGContract, error) {
	query := `SELECT ` + contractColumns + ` FROM mg_contracts WHERE status = $1 AND billing_frequency = $2 ORDER BY created_at ASC`
	return r.list(ctx, query, string(models.ContractStatusActive), string(frequency))
}

func (r *mgContractRepo) ListByWorkshop(ctx context.Context, workshopID uuid.UUID) ([]*models.MGContract, error) {
	query := `SELECT ` + contractColumns + ` FROM mg_contracts WHERE workshop_id = $1 ORDER BY created_at DESC`
	return r.list(ctx, query, workshopID)
}

func (r *mgContractRepo) list(ctx context.Context, query string, args ...any) ([]*models.MGContract, error) {
	rows, err := r.db.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	contracts := []*models.MGContract{}
	for rows.Next() {
		contract, err := scanContract(rows)
		if err != nil {
			return nil, err
		}
		contracts = append(contracts, contract)
	}
	return contracts, rows.Err()
}

func (r *mgContractRepo) End(ctx context.Context, workshopID, id uuid.UUID, at time.Time) error {
	query := `
		UPDATE mg_contracts
		SET status = $1, updated_at = $2
		WHERE workshop_id = $3 AND id = $4 AND status = $5
	`
	tag, err := r.db.Exec(ctx, query, string(models.ContractStatusEnded), at, workshopID, id, string(models.ContractStatusActive))
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("%w: contract %s", common.ErrContractNotActive, id)
	}
	return nil
}

func (r *mgContractRepo) NextContractNumber(ctx context.Context, workshopID uuid.UUID, at time.Time) (string, error) {
	year := at.UTC().Year()
	n, err := nextSequence(ctx, r.db, "mg_contract", workshopID.String(), year)
	if err != nil {
		return "", err
	}
	return formatSequenceNumber("MG", year, n), nil
}

// Stats aggregates contract counts and the billed total for period
func (r *mgContractRepo) Stats(ctx context.Context, workshopID uuid.UUID, period string) (*models.FleetStats, error) {
	query := `
		SELECT
			COUNT(*),
			COUNT(*) FILTER (WHERE c.status = $2),
			COALESCE(SUM(cardinality(c.vehicle_ids)) FILTER (WHERE c.status = $2), 0),
			COALESCE((
				SELECT SUM(b.total_amount)
				FROM mg_billing_calculations b
				JOIN mg_contracts bc ON bc.id = b.contract_id
				WHERE bc.workshop_id = $1 AND b.billing_period = $3
			), 0)
		FROM mg_contracts c
		WHERE c.workshop_id = $1
	`
	stats := &models.FleetStats{CurrentPeriod: period}
	var revenue decimal.Decimal
	if err := r.db.QueryRow(ctx, query, workshopID, string(models.ContractStatusActive), period).
		Scan(&stats.TotalContracts, &stats.ActiveContracts, &stats.TotalVehicles, &revenue); err != nil {
		return nil, err
	}
	stats.CurrentPeriodRevenue = revenue
	return stats, nil
}

func scanContract(row pgx.Row) (*models.MGContract, error) {
	c := &models.MGContract{}
	var contractType, frequency, status string
	err := row.Scan(&c.ID, &c.ContractNumber, &c.WorkshopID, &c.CustomerID, &contractType, &c.AssuredKm, &c.RatePerKm,
		&c.VehicleIDs, &c.StartDate, &c.EndDate, &frequency, &status, &c.CreatedAt, &c.UpdatedAt)
	if err != nil {
		return nil, err
	}
	c.ContractType = models.ContractType(contractType)
	c.BillingFrequency = models.BillingFrequency(frequency)
	c.Status = models.ContractStatus(status)
	return c, nil
}
