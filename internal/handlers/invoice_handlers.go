package handlers

import (
	"net/http"
	"strings"

	"garageflow/internal/common"
	"garageflow/internal/models"
	"garageflow/internal/services"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
	"github.com/shopspring/decimal"
)

// InvoiceHandlers handles GST invoice requests
type InvoiceHandlers struct {
	invoiceService services.InvoiceService
	defaultGSTRate decimal.Decimal
}

func NewInvoiceHandlers(invoiceService services.InvoiceService, defaultGSTRate decimal.Decimal) *InvoiceHandlers {
	return &InvoiceHandlers{
		invoiceService: invoiceService,
		defaultGSTRate: defaultGSTRate,
	}
}

type InvoiceItemRequest struct {
	Description    string           `json:"description" validate:"required,max=500"`
	HSNSACCode     string           `json:"hsn_sac_code" validate:"omitempty,max=8"`
	Quantity       decimal.Decimal  `json:"quantity"`
	UnitPrice      decimal.Decimal  `json:"unit_price"`
	DiscountAmount decimal.Decimal  `json:"discount_amount"`
	GSTRatePercent *decimal.Decimal `json:"gst_rate_percent"`
	ItemType       string           `json:"item_type" validate:"required,oneof=LABOR PART"`
}

// GenerateInvoiceRequest is the payload for POST /invoices/generate.
// WorkshopID is optional and must match the caller's workshop when present.
type GenerateInvoiceRequest struct {
	JobCardID    uuid.UUID            `json:"job_card_id" validate:"required"`
	WorkshopID   *uuid.UUID           `json:"workshop_id"`
	CustomerID   uuid.UUID            `json:"customer_id" validate:"required"`
	IsInterState bool                 `json:"is_inter_state"`
	Items        []InvoiceItemRequest `json:"items" validate:"required,min=1,dive"`
}

func (h *InvoiceHandlers) toLineItems(items []InvoiceItemRequest) []models.InvoiceLineItem {
	out := make([]models.InvoiceLineItem, 0, len(items))
	for _, item := range items {
		rate := h.defaultGSTRate
		if item.GSTRatePercent != nil {
			rate = *item.GSTRatePercent
		}
		out = append(out, models.InvoiceLineItem{
			Description:    strings.TrimSpace(item.Description),
			HSNSACCode:     strings.TrimSpace(item.HSNSACCode),
			Quantity:       item.Quantity,
			UnitPrice:      item.UnitPrice,
			DiscountAmount: item.DiscountAmount,
			GSTRatePercent: rate,
			ItemType:       models.ItemType(item.ItemType),
		})
	}
	return out
}

// GenerateInvoice handles POST /invoices/generate
func (h *InvoiceHandlers) GenerateInvoice(c echo.Context) error {
	ctx := c.Request().Context()
	workshopID, ok := workshopFrom(c)
	if !ok {
		return common.SendUnauthorizedError(c)
	}

	var req GenerateInvoiceRequest
	if ok, err := bindAndValidate(c, &req); !ok {
		return err
	}
	if req.WorkshopID != nil && *req.WorkshopID != workshopID {
		return common.SendValidationError(c, "workshop_id", "workshop_id does not match the authenticated workshop")
	}

	invoice, err := h.invoiceService.Generate(ctx, workshopID, services.GenerateInvoiceInput{
		JobCardID:    req.JobCardID,
		CustomerID:   req.CustomerID,
		IsInterState: req.IsInterState,
		Items:        h.toLineItems(req.Items),
	})
	if err != nil {
		return common.SendDomainError(c, "generate invoice", err)
	}
	return c.JSON(http.StatusCreated, invoice)
}

// GetInvoice handles GET /invoices/:id
func (h *InvoiceHandlers) GetInvoice(c echo.Context) error {
	ctx := c.Request().Context()
	workshopID, ok := workshopFrom(c)
	if !ok {
		return common.SendUnauthorizedError(c)
	}
	id, ok, err := pathID(c, "id")
	if !ok {
		return err
	}

	invoice, err := h.invoiceService.GetInvoice(ctx, workshopID, id)
	if err != nil {
		return common.SendDomainError(c, "get invoice", err)
	}
	return c.JSON(http.StatusOK, invoice)
}

// ListJobCardInvoices handles GET /job-cards/:id/invoices
func (h *InvoiceHandlers) ListJobCardInvoices(c echo.Context) error {
	ctx := c.Request().Context()
	workshopID, ok := workshopFrom(c)
	if !ok {
		return common.SendUnauthorizedError(c)
	}
	jobCardID, ok, err := pathID(c, "id")
	if !ok {
		return err
	}

	invoices, err := h.invoiceService.ListForJobCard(ctx, workshopID, jobCardID)
	if err != nil {
		return common.SendDomainError(c, "list job card invoices", err)
	}
	return c.JSON(http.StatusOK, map[string]interface{}{
		"job_card_id": jobCardID,
		"invoices":    invoices,
	})
}

// FinalizeInvoice handles POST /invoices/:id/finalize
func (h *InvoiceHandlers) FinalizeInvoice(c echo.Context) error {
	ctx := c.Request().Context()
	workshopID, ok := workshopFrom(c)
	if !ok {
		return common.SendUnauthorizedError(c)
	}
	id, ok, err := pathID(c, "id")
	if !ok {
		return err
	}

	invoice, err := h.invoiceService.Finalize(ctx, workshopID, id)
	if err != nil {
		return common.SendDomainError(c, "finalize invoice", err)
	}
	return c.JSON(http.StatusOK, invoice)
}

// MarkInvoicePaid handles POST /invoices/:id/mark-paid
func (h *InvoiceHandlers) MarkInvoicePaid(c echo.Context) error {
	ctx := c.Request().Context()
	workshopID, ok := workshopFrom(c)
	if !ok {
		return common.SendUnauthorizedError(c)
	}
	id, ok, err := pathID(c, "id")
	if !ok {
		return err
	}

	invoice, err := h.invoiceService.MarkPaid(ctx, workshopID, id)
	if err != nil {
		return common.SendDomainError(c, "mark invoice paid", err)
	}
	return c.JSON(http.StatusOK, invoice)
}
