package repositories

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"garageflow/internal/common"
	"garageflow/internal/models"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
)

// BillingRepository stores one calculation per (contract, period)
type BillingRepository interface {
	// Insert reports false when a calculation for the same contract and period already exists
	Insert(ctx context.Context, calc *models.BillingCalculation) (bool, error)
	GetByPeriod(ctx context.Context, contractID uuid.UUID, period string) (*models.BillingCalculation, error)
	ListByContract(ctx context.Context, contractID uuid.UUID) ([]*models.BillingCalculation, error)
}

type billingRepo struct {
	db DB
}

func NewBillingRepo(db DB) BillingRepository {
	return &billingRepo{db: db}
}

const billingColumns = `id, contract_id, billing_period, assured_km, actual_km, billable_km, rate_per_km, base_amount, extra_km, extra_km_charge, gst_amount, total_amount, vehicle_breakdown, created_at`

func (r *billingRepo) Insert(ctx context.Context, calc *models.BillingCalculation) (bool, error) {
	breakdown, err := json.Marshal(calc.VehicleBreakdown)
	if err != nil {
		return false, fmt.Errorf("failed to encode vehicle breakdown: %w", err)
	}

	query := `
		INSERT INTO mg_billing_calculations (` + billingColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14)
		ON CONFLICT (contract_id, billing_period) DO NOTHING
	`
	tag, err := r.db.Exec(ctx, query, calc.ID, calc.ContractID, calc.BillingPeriod, calc.AssuredKm, calc.ActualKm, calc.BillableKm,
		calc.RatePerKm, calc.BaseAmount, calc.ExtraKm, calc.ExtraKmCharge, calc.GSTAmount, calc.TotalAmount, breakdown, calc.CreatedAt)
	if err != nil {
		return false, fmt.Errorf("failed to insert billing calculation: %w", err)
	}
	return tag.RowsAffected() == 1, nil
}

func (r *billingRepo) GetByPeriod(ctx context.Context, contractID uuid.UUID, period string) (*models.BillingCalculation, error) {
	query := `SELECT ` + billingColumns + ` FROM mg_billing_calculations WHERE contract_id = $1 AND billing_period = $2`
	calc, err := scanBilling(r.db.QueryRow(ctx, query, contractID, period))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, &common.NotFoundError{Entity: "billing calculation", ID: contractID.String() + "/" + period}
		}
		return nil, err
	}
	return calc, nil
}

func (r *billingRepo) ListByContract(ctx context.Context, contractID uuid.UUID) ([]*models.BillingCalculation, error) {
	query := `SELECT ` + billingColumns + ` FROM mg_billing_calculations WHERE contract_id = $1 ORDER BY billing_period DESC`
	rows, err := r.db.Query(ctx, query, contractID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	calcs := []*models.BillingCalculation{}
	for rows.Next() {
		calc, err := scanBilling(rows)
		if err != nil {
			return nil, err
		}
		calcs = append(calcs, calc)
	}
	return calcs, rows.Err()
}

func scanBilling(row pgx.Row) (*models.BillingCalculation, error) {
	calc := &models.BillingCalculation{}
	var breakdown []byte
	err := row.Scan(&calc.ID, &calc.ContractID, &calc.BillingPeriod, &calc.AssuredKm, &calc.ActualKm, &calc.BillableKm,
		&calc.RatePerKm, &calc.BaseAmount, &calc.ExtraKm, &calc.ExtraKmCharge, &calc.GSTAmount, &calc.TotalAmount, &breakdown, &calc.CreatedAt)
	if err != nil {
		return nil, err
	}
	if len(breakdown) > 0 {
		if err := json.Unmarshal(breakdown, &calc.VehicleBreakdown); err != nil {
			return nil, fmt.Errorf("failed to decode vehicle breakdown: %w", err)
		}
	}
	return calc, nil
}
