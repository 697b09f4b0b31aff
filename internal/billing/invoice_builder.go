package billing

import (
	"fmt"
	"strings"
	"time"

	"garageflow/internal/common"
	"garageflow/internal/models"

	"github.com/google/uuid"
	"github.com/labstack/gommon/random"
	"github.com/shopspring/decimal"
)

const invoiceSuffixLength = 6

// HSNDefaults supplies codes for items submitted without one
type HSNDefaults struct {
	Labor string
	Part  string
}

// InvoiceRequest is the already-fetched input for one invoice
type InvoiceRequest struct {
	JobCardID    uuid.UUID
	WorkshopID   uuid.UUID
	CustomerID   uuid.UUID
	IsInterState bool
	Items        []models.InvoiceLineItem
}

// InvoiceBuilder turns line items into a balanced draft invoice
type InvoiceBuilder struct {
	prefix   string
	defaults HSNDefaults
	now      func() time.Time
}

func NewInvoiceBuilder(prefix string, defaults HSNDefaults) *InvoiceBuilder {
	return &InvoiceBuilder{prefix: prefix, defaults: defaults, now: time.Now}
}

// WithClock overrides the timestamp source
func (b *InvoiceBuilder) WithClock(now func() time.Time) *InvoiceBuilder {
	b.now = now
	return b
}

// NextNumber returns a candidate invoice number {PREFIX}-{YYYYMMDD}-{6 alnum}.
// Uniqueness is enforced by storage; callers retry on collision.
func (b *InvoiceBuilder) NextNumber() string {
	return fmt.Sprintf("%s-%s-%s", b.prefix, b.now().Format("20060102"),
		random.String(invoiceSuffixLength, random.Uppercase, random.Numeric))
}

// Build validates the items and computes totals.
// Per-item taxes are summed unrounded and rounded once per invoice.
func (b *InvoiceBuilder) Build(req InvoiceRequest) (*models.Invoice, error) {
	if len(req.Items) == 0 {
		return nil, common.ErrEmptyInvoice
	}

	invoiceID := uuid.New()
	items := make([]models.InvoiceLineItem, len(req.Items))
	taxable := decimal.Zero
	taxes := TaxBreakdown{CGST: decimal.Zero, SGST: decimal.Zero, IGST: decimal.Zero}

	for i, item := range req.Items {
		if err := validateLineItem(i, item); err != nil {
			return nil, err
		}
		item.ID = uuid.New()
		item.InvoiceID = invoiceID
		item.Description = strings.TrimSpace(item.Description)
		if item.HSNSACCode == "" {
			item.HSNSACCode = b.DefaultHSN(item.ItemType)
		}
		items[i] = item

		lineTotal := item.LineTotal()
		taxable = taxable.Add(lineTotal)
		taxes = taxes.add(computeTaxExact(lineTotal, item.GSTRatePercent, req.IsInterState))
	}

	taxes = taxes.rounded()
	taxableValue := RoundMoney(taxable)

	invoice := &models.Invoice{
		ID:            invoiceID,
		InvoiceNumber: b.NextNumber(),
		JobCardID:     req.JobCardID,
		WorkshopID:    req.WorkshopID,
		CustomerID:    req.CustomerID,
		IsInterState:  req.IsInterState,
		Items:         items,
		TaxableValue:  taxableValue,
		CGST:          taxes.CGST,
		SGST:          taxes.SGST,
		IGST:          taxes.IGST,
		GrandTotal:    taxableValue.Add(taxes.Total()),
		Status:        models.InvoiceStatusDraft,
		CreatedAt:     b.now(),
	}
	invoice.MustBalance()

	return invoice, nil
}

// DefaultHSN returns the configured code for the item type
func (b *InvoiceBuilder) DefaultHSN(itemType models.ItemType) string {
	if itemType == models.ItemTypeLabor {
		return b.defaults.Labor
	}
	return b.defaults.Part
}

func validateLineItem(index int, item models.InvoiceLineItem) error {
	switch {
	case strings.TrimSpace(item.Description) == "":
		return &common.InvalidLineItemError{Index: index, Reason: "description is required"}
	case item.ItemType != models.ItemTypeLabor && item.ItemType != models.ItemTypePart:
		return &common.InvalidLineItemError{Index: index, Reason: fmt.Sprintf("unknown item type %q", item.ItemType)}
	case item.Quantity.IsNegative():
		return &common.InvalidLineItemError{Index: index, Reason: "quantity cannot be negative"}
	case item.UnitPrice.IsNegative():
		return &common.InvalidLineItemError{Index: index, Reason: "unit price cannot be negative"}
	case item.DiscountAmount.IsNegative():
		return &common.InvalidLineItemError{Index: index, Reason: "discount cannot be negative"}
	case item.DiscountAmount.GreaterThan(item.GrossAmount()):
		return &common.InvalidLineItemError{Index: index, Reason: "discount exceeds quantity times unit price"}
	case item.GSTRatePercent.IsNegative() || item.GSTRatePercent.GreaterThan(hundred):
		return &common.InvalidLineItemError{Index: index, Reason: "GST rate must be between 0 and 100"}
	}
	return nil
}
