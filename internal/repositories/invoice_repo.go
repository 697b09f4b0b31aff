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
)

const invoiceNumberConstraint = "invoices_invoice_number_key"

type InvoiceRepository interface {
	Create(ctx context.Context, invoice *models.Invoice) error
	GetByID(ctx context.Context, workshopID, id uuid.UUID) (*models.Invoice, error)
	ListByJobCard(ctx context.Context, workshopID, jobCardID uuid.UUID) ([]*models.Invoice, error)
	UpdateStatus(ctx context.Context, workshopID, id uuid.UUID, from, to models.InvoiceStatus, at time.Time) error
}

type invoiceRepo struct {
	db DB
}

func NewInvoiceRepo(db DB) InvoiceRepository {
	return &invoiceRepo{db: db}
}

// Create stores the invoice header and its items in one transaction.
// A clash on the invoice number yields common.ErrDuplicateInvoiceNumber so callers can retry.
func (r *invoiceRepo) Create(ctx context.Context, invoice *models.Invoice) error {
	headerQuery := `
		INSERT INTO invoices (id, invoice_number, job_card_id, workshop_id, customer_id, is_inter_state, taxable_value, cgst, sgst, igst, grand_total, status, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13)
	`
	itemQuery := `
		INSERT INTO invoice_items (id, invoice_id, position, description, hsn_sac_code, quantity, unit_price, discount_amount, gst_rate_percent, item_type, line_total)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)
	`
	err := withTx(ctx, r.db, func(tx pgx.Tx) error {
		_, err := tx.Exec(ctx, headerQuery, invoice.ID, invoice.InvoiceNumber, invoice.JobCardID, invoice.WorkshopID, invoice.CustomerID,
			invoice.IsInterState, invoice.TaxableValue, invoice.CGST, invoice.SGST, invoice.IGST, invoice.GrandTotal,
			string(invoice.Status), invoice.CreatedAt)
		if err != nil {
			return err
		}
		for i, item := range invoice.Items {
			_, err := tx.Exec(ctx, itemQuery, item.ID, invoice.ID, i, item.Description, item.HSNSACCode, item.Quantity, item.UnitPrice,
				item.DiscountAmount, item.GSTRatePercent, string(item.ItemType), item.LineTotal())
			if err != nil {
				return fmt.Errorf("failed to insert invoice item: %w", err)
			}
		}
		return nil
	})
	if isUniqueViolation(err, invoiceNumberConstraint) {
		return common.ErrDuplicateInvoiceNumber
	}
	return err
}

func (r *invoiceRepo) GetByID(ctx context.Context, workshopID, id uuid.UUID) (*models.Invoice, error) {
	query := `
		SELECT id, invoice_number, job_card_id, workshop_id, customer_id, is_inter_state, taxable_value, cgst, sgst, igst, grand_total, status, created_at, finalized_at, paid_at
		FROM invoices
		WHERE workshop_id = $1 AND id = $2
	`
	invoice, err := scanInvoice(r.db.QueryRow(ctx, query, workshopID, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, common.NewNotFoundError("invoice", id)
		}
		return nil, err
	}

	if invoice.Items, err = r.listItems(ctx, invoice.ID); err != nil {
		return nil, err
	}
	return invoice, nil
}

func (r *invoiceRepo) ListByJobCard(ctx context.Context, workshopID, jobCardID uuid.UUID) ([]*models.Invoice, error) {
	query := `
		SELECT id, invoice_number, job_card_id, workshop_id, customer_id, is_inter_state, taxable_value, cgst, sgst, igst, grand_total, status, created_at, finalized_at, paid_at
		FROM invoices
		WHERE workshop_id = $1 AND job_card_id = $2
		ORDER BY created_at DESC
	`
	rows, err := r.db.Query(ctx, query, workshopID, jobCardID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	invoices := []*models.Invoice{}
	for rows.Next() {
		invoice, err := scanInvoice(rows)
		if err != nil {
			return nil, err
		}
		invoices = append(invoices, invoice)
	}
	return invoices, rows.Err()
}

// UpdateStatus moves an invoice forward only if it is still in status from
func (r *invoiceRepo) UpdateStatus(ctx context.Context, workshopID, id uuid.UUID, from, to models.InvoiceStatus, at time.Time) error {
	if !from.CanMoveTo(to) {
		return fmt.Errorf("%w: %s to %s", common.ErrInvalidInvoiceStatus, from, to)
	}

	column := "finalized_at"
	if to == models.InvoiceStatusPaid {
		column = "paid_at"
	}
	query := fmt.Sprintf(`
		UPDATE invoices
		SET status = $1, %s = $2
		WHERE workshop_id = $3 AND id = $4 AND status = $5
	`, column)

	tag, err := r.db.Exec(ctx, query, string(to), at, workshopID, id, string(from))
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("%w: invoice is no longer %s", common.ErrInvalidInvoiceStatus, from)
	}
	return nil
}

func (r *invoiceRepo) listItems(ctx context.Context, invoiceID uuid.UUID) ([]models.InvoiceLineItem, error) {
	query := `
		SELECT id, invoice_id, description, hsn_sac_code, quantity, unit_price, discount_amount, gst_rate_percent, item_type
		FROM invoice_items
		WHERE invoice_id = $1
		ORDER BY position ASC
	`
	rows, err := r.db.Query(ctx, query, invoiceID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	items := []models.InvoiceLineItem{}
	for rows.Next() {
		var item models.InvoiceLineItem
		var itemType string
		if err := rows.Scan(&item.ID, &item.InvoiceID, &item.Description, &item.HSNSACCode, &item.Quantity, &item.UnitPrice,
			&item.DiscountAmount, &item.GSTRatePercent, &itemType); err != nil {
			return nil, err
		}
		item.ItemType = models.ItemType(itemType)
		items = append(items, item)
	}
	return items, rows.Err()
}

func scanInvoice(row pgx.Row) (*models.Invoice, error) {
	invoice := &models.Invoice{}
	var status string
	err := row.Scan(&invoice.ID, &invoice.InvoiceNumber, &invoice.JobCardID, &invoice.WorkshopID, &invoice.CustomerID,
		&invoice.IsInterState, &invoice.TaxableValue, &invoice.CGST, &invoice.SGST, &invoice.IGST, &invoice.GrandTotal,
		&status, &invoice.CreatedAt, &invoice.FinalizedAt, &invoice.PaidAt)
	if err != nil {
		return nil, err
	}
	invoice.Status = models.InvoiceStatus(status)
	return invoice, nil
}
