package billing

import (
	"fmt"
	"time"

	"garageflow/internal/common"
	"garageflow/internal/models"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

var (
	// ExtraKmSurchargeFactor is charged on top of the base rate for km above the assured minimum
	ExtraKmSurchargeFactor = decimal.RequireFromString("0.5")
	// MGGSTRate applies to the base amount only; the extra-km charge is not taxed
	MGGSTRate = decimal.RequireFromString("0.18")
)

// MGBillingEngine computes Minimum Guarantee fleet bills from already-fetched logs
type MGBillingEngine struct {
	now func() time.Time
}

func NewMGBillingEngine() *MGBillingEngine {
	return &MGBillingEngine{now: time.Now}
}

// WithClock overrides the timestamp source
func (e *MGBillingEngine) WithClock(now func() time.Time) *MGBillingEngine {
	e.now = now
	return e
}

// GenerateBill applies MAX(assured, actual) x rate plus the extra-km surcharge and GST.
// Logs for vehicles outside the contract or dates outside the period are ignored.
func (e *MGBillingEngine) GenerateBill(contract *models.MGContract, period BillingPeriod, logs []models.VehicleLog) (*models.BillingCalculation, error) {
	if !contract.IsActive() {
		return nil, fmt.Errorf("%w: %s is %s", common.ErrContractNotActive, contract.ContractNumber, contract.Status)
	}
	if len(contract.VehicleIDs) == 0 {
		return nil, fmt.Errorf("%w: %s", common.ErrNoUsageData, contract.ContractNumber)
	}

	usage := make(map[uuid.UUID]*models.VehicleUsage, len(contract.VehicleIDs))
	breakdown := make([]models.VehicleUsage, 0, len(contract.VehicleIDs))
	for _, id := range contract.VehicleIDs {
		usage[id] = &models.VehicleUsage{VehicleID: id, TotalKm: decimal.Zero}
	}

	actualKm := decimal.Zero
	for _, log := range logs {
		if log.ContractID != contract.ID || !period.Contains(log.LogDate) {
			continue
		}
		u, ok := usage[log.VehicleID]
		if !ok {
			continue
		}
		u.TotalKm = u.TotalKm.Add(log.TotalKm)
		u.LogCount++
		actualKm = actualKm.Add(log.TotalKm)
	}
	for _, id := range contract.VehicleIDs {
		breakdown = append(breakdown, *usage[id])
	}

	assured := contract.AssuredKm
	rate := contract.RatePerKm
	billable := decimal.Max(assured, actualKm)
	extraKm := decimal.Max(decimal.Zero, actualKm.Sub(assured))

	// GST is taken on the unrounded base so each amount is rounded exactly once
	exactBase := billable.Mul(rate)
	base := RoundMoney(exactBase)
	extraCharge := RoundMoney(extraKm.Mul(rate).Mul(ExtraKmSurchargeFactor))
	gst := RoundMoney(exactBase.Mul(MGGSTRate))

	calc := &models.BillingCalculation{
		ID:               uuid.New(),
		ContractID:       contract.ID,
		BillingPeriod:    period.String(),
		AssuredKm:        assured,
		ActualKm:         actualKm,
		BillableKm:       billable,
		RatePerKm:        rate,
		BaseAmount:       base,
		ExtraKm:          extraKm,
		ExtraKmCharge:    extraCharge,
		GSTAmount:        gst,
		TotalAmount:      base.Add(extraCharge).Add(gst),
		VehicleBreakdown: breakdown,
		CreatedAt:        e.now(),
	}
	calc.MustBalance()

	return calc, nil
}
