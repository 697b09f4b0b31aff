package models

import (
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

type ItemType string

const (
	ItemTypeLabor ItemType = "LABOR"
	ItemTypePart  ItemType = "PART"
)

type InvoiceStatus string

const (
	InvoiceStatusDraft     InvoiceStatus = "DRAFT"
	InvoiceStatusFinalized InvoiceStatus = "FINALIZED"
	InvoiceStatusPaid      InvoiceStatus = "PAID"
)

// CanMoveTo reports whether the invoice status may advance to next
func (s InvoiceStatus) CanMoveTo(next InvoiceStatus) bool {
	switch s {
	case InvoiceStatusDraft:
		return next == InvoiceStatusFinalized
	case InvoiceStatusFinalized:
		return next == InvoiceStatusPaid
	}
	return false
}

type InvoiceLineItem struct {
	ID             uuid.UUID       `json:"id" db:"id"`
	InvoiceID      uuid.UUID       `json:"invoice_id" db:"invoice_id"`
	Description    string          `json:"description" db:"description"`
	HSNSACCode     string          `json:"hsn_sac_code" db:"hsn_sac_code"`
	Quantity       decimal.Decimal `json:"quantity" db:"quantity"`
	UnitPrice      decimal.Decimal `json:"unit_price" db:"unit_price"`
	DiscountAmount decimal.Decimal `json:"discount_amount" db:"discount_amount"`
	GSTRatePercent decimal.Decimal `json:"gst_rate_percent" db:"gst_rate_percent"`
	ItemType       ItemType        `json:"item_type" db:"item_type"`
}

// GrossAmount is quantity times unit price before discount
func (i InvoiceLineItem) GrossAmount() decimal.Decimal {
	return i.Quantity.Mul(i.UnitPrice)
}

// LineTotal is the taxable value of the item
func (i InvoiceLineItem) LineTotal() decimal.Decimal {
	return i.GrossAmount().Sub(i.DiscountAmount)
}

type Invoice struct {
	ID            uuid.UUID         `json:"id" db:"id"`
	InvoiceNumber string            `json:"invoice_number" db:"invoice_number"`
	JobCardID     uuid.UUID         `json:"job_card_id" db:"job_card_id"`
	WorkshopID    uuid.UUID         `json:"workshop_id" db:"workshop_id"`
	CustomerID    uuid.UUID         `json:"customer_id" db:"customer_id"`
	IsInterState  bool              `json:"is_inter_state" db:"is_inter_state"`
	Items         []InvoiceLineItem `json:"items"`
	TaxableValue  decimal.Decimal   `json:"taxable_value" db:"taxable_value"`
	CGST          decimal.Decimal   `json:"cgst" db:"cgst"`
	SGST          decimal.Decimal   `json:"sgst" db:"sgst"`
	IGST          decimal.Decimal   `json:"igst" db:"igst"`
	GrandTotal    decimal.Decimal   `json:"grand_total" db:"grand_total"`
	Status        InvoiceStatus     `json:"status" db:"status"`
	CreatedAt     time.Time         `json:"created_at" db:"created_at"`
	FinalizedAt   *time.Time        `json:"finalized_at,omitempty" db:"finalized_at"`
	PaidAt        *time.Time        `json:"paid_at,omitempty" db:"paid_at"`
}

// TotalTax is CGST + SGST + IGST
func (inv *Invoice) TotalTax() decimal.Decimal {
	return inv.CGST.Add(inv.SGST).Add(inv.IGST)
}

// Balanced reports whether the grand total equals taxable value plus all taxes
func (inv *Invoice) Balanced() bool {
	if !inv.GrandTotal.Equal(inv.TaxableValue.Add(inv.TotalTax())) {
		return false
	}
	if inv.IsInterState {
		return inv.CGST.IsZero() && inv.SGST.IsZero()
	}
	return inv.IGST.IsZero() && inv.CGST.Equal(inv.SGST)
}

// MustBalance panics when the invoice totals are inconsistent.
// An unbalanced invoice is a programming defect, never a user error.
func (inv *Invoice) MustBalance() {
	if !inv.Balanced() {
		panic(fmt.Sprintf("invoice %s out of balance: taxable=%s cgst=%s sgst=%s igst=%s total=%s",
			inv.InvoiceNumber, inv.TaxableValue, inv.CGST, inv.SGST, inv.IGST, inv.GrandTotal))
	}
}
