package models

import (
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

type ContractType string

const (
	ContractTypeFixedKm    ContractType = "FIXED_KM"
	ContractTypeVariableKm ContractType = "VARIABLE_KM"
	ContractTypeHybrid     ContractType = "HYBRID"
)

type ContractStatus string

const (
	ContractStatusActive ContractStatus = "ACTIVE"
	ContractStatusEnded  ContractStatus = "ENDED"
)

type BillingFrequency string

const (
	BillingFrequencyMonthly   BillingFrequency = "MONTHLY"
	BillingFrequencyQuarterly BillingFrequency = "QUARTERLY"
)

// MGContract is a Minimum Guarantee fleet agreement
type MGContract struct {
	ID               uuid.UUID        `json:"id" db:"id"`
	ContractNumber   string           `json:"contract_number" db:"contract_number"`
	WorkshopID       uuid.UUID        `json:"workshop_id" db:"workshop_id"`
	CustomerID       uuid.UUID        `json:"customer_id" db:"customer_id"`
	ContractType     ContractType     `json:"contract_type" db:"contract_type"`
	AssuredKm        decimal.Decimal  `json:"assured_km" db:"assured_km"`
	RatePerKm        decimal.Decimal  `json:"rate_per_km" db:"rate_per_km"`
	VehicleIDs       []uuid.UUID      `json:"vehicle_ids" db:"vehicle_ids"`
	StartDate        time.Time        `json:"start_date" db:"start_date"`
	EndDate          time.Time        `json:"end_date" db:"end_date"`
	BillingFrequency BillingFrequency `json:"billing_frequency" db:"billing_frequency"`
	Status           ContractStatus   `json:"status" db:"status"`
	CreatedAt        time.Time        `json:"created_at" db:"created_at"`
	UpdatedAt        time.Time        `json:"updated_at" db:"updated_at"`
}

func (c *MGContract) IsActive() bool {
	return c.Status == ContractStatusActive
}

func (c *MGContract) HasVehicle(vehicleID uuid.UUID) bool {
	for _, id := range c.VehicleIDs {
		if id == vehicleID {
			return true
		}
	}
	return false
}

// VehicleLog is an append-only odometer reading for one vehicle on one day.
// Corrections are written as a reversal row plus a replacement row.
type VehicleLog struct {
	ID            uuid.UUID       `json:"id" db:"id"`
	ContractID    uuid.UUID       `json:"contract_id" db:"contract_id"`
	VehicleID     uuid.UUID       `json:"vehicle_id" db:"vehicle_id"`
	LogDate       time.Time       `json:"log_date" db:"log_date"`
	OpeningKm     decimal.Decimal `json:"opening_km" db:"opening_km"`
	ClosingKm     decimal.Decimal `json:"closing_km" db:"closing_km"`
	TotalKm       decimal.Decimal `json:"total_km" db:"total_km"`
	ReversesLogID *uuid.UUID      `json:"reverses_log_id,omitempty" db:"reverses_log_id"`
	Notes         string          `json:"notes,omitempty" db:"notes"`
	CreatedAt     time.Time       `json:"created_at" db:"created_at"`
}

func (l *VehicleLog) IsReversal() bool {
	return l.ReversesLogID != nil
}

// VehicleUsage is the per-vehicle contribution to a billing calculation
type VehicleUsage struct {
	VehicleID uuid.UUID       `json:"vehicle_id"`
	TotalKm   decimal.Decimal `json:"total_km"`
	LogCount  int             `json:"log_count"`
}

type BillingCalculation struct {
	ID               uuid.UUID       `json:"id" db:"id"`
	ContractID       uuid.UUID       `json:"contract_id" db:"contract_id"`
	BillingPeriod    string          `json:"billing_period" db:"billing_period"`
	AssuredKm        decimal.Decimal `json:"assured_km" db:"assured_km"`
	ActualKm         decimal.Decimal `json:"actual_km" db:"actual_km"`
	BillableKm       decimal.Decimal `json:"billable_km" db:"billable_km"`
	RatePerKm        decimal.Decimal `json:"rate_per_km" db:"rate_per_km"`
	BaseAmount       decimal.Decimal `json:"base_amount" db:"base_amount"`
	ExtraKm          decimal.Decimal `json:"extra_km" db:"extra_km"`
	ExtraKmCharge    decimal.Decimal `json:"extra_km_charge" db:"extra_km_charge"`
	GSTAmount        decimal.Decimal `json:"gst_amount" db:"gst_amount"`
	TotalAmount      decimal.Decimal `json:"total_amount" db:"total_amount"`
	VehicleBreakdown []VehicleUsage  `json:"vehicle_breakdown" db:"vehicle_breakdown"`
	CreatedAt        time.Time       `json:"created_at" db:"created_at"`
}

// MustBalance panics when the calculation violates the billing identities.
func (b *BillingCalculation) MustBalance() {
	if !b.BillableKm.Equal(decimal.Max(b.AssuredKm, b.ActualKm)) {
		panic(fmt.Sprintf("billing %s/%s: billable km %s is not max(%s, %s)",
			b.ContractID, b.BillingPeriod, b.BillableKm, b.AssuredKm, b.ActualKm))
	}
	if !b.ExtraKm.Equal(decimal.Max(decimal.Zero, b.ActualKm.Sub(b.AssuredKm))) {
		panic(fmt.Sprintf("billing %s/%s: extra km %s inconsistent", b.ContractID, b.BillingPeriod, b.ExtraKm))
	}
	if !b.TotalAmount.Equal(b.BaseAmount.Add(b.ExtraKmCharge).Add(b.GSTAmount)) {
		panic(fmt.Sprintf("billing %s/%s: total %s out of balance", b.ContractID, b.BillingPeriod, b.TotalAmount))
	}
}

// FleetStats summarises MG fleet activity for a workshop
type FleetStats struct {
	TotalContracts       int             `json:"total_contracts"`
	ActiveContracts      int             `json:"active_contracts"`
	TotalVehicles        int             `json:"total_vehicles"`
	CurrentPeriod        string          `json:"current_period"`
	CurrentPeriodRevenue decimal.Decimal `json:"current_period_revenue"`
}
