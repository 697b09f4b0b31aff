package services

import (
	"context"
	"errors"
	"fmt"
	"time"

	"garageflow/internal/billing"
	"garageflow/internal/common"
	"garageflow/internal/models"
	"garageflow/internal/repositories"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
)

type GenerateInvoiceInput struct {
	JobCardID    uuid.UUID
	CustomerID   uuid.UUID
	IsInterState bool
	Items        []models.InvoiceLineItem
}

type InvoiceService interface {
	Generate(ctx context.Context, workshopID uuid.UUID, input GenerateInvoiceInput) (*models.Invoice, error)
	GetInvoice(ctx context.Context, workshopID, id uuid.UUID) (*models.Invoice, error)
	ListForJobCard(ctx context.Context, workshopID, jobCardID uuid.UUID) ([]*models.Invoice, error)
	Finalize(ctx context.Context, workshopID, id uuid.UUID) (*models.Invoice, error)
	MarkPaid(ctx context.Context, workshopID, id uuid.UUID) (*models.Invoice, error)
}

type invoiceService struct {
	invoiceRepo repositories.InvoiceRepository
	jobCardRepo repositories.JobCardRepository
	builder     *billing.InvoiceBuilder
	archive     ArchiveService
	maxAttempts int
	now         func() time.Time
}

func NewInvoiceService(invoiceRepo repositories.InvoiceRepository, jobCardRepo repositories.JobCardRepository, builder *billing.InvoiceBuilder, archive ArchiveService, maxAttempts int) InvoiceService {
	if maxAttempts < 1 {
		maxAttempts = 1
	}
	return &invoiceService{
		invoiceRepo: invoiceRepo,
		jobCardRepo: jobCardRepo,
		builder:     builder,
		archive:     archive,
		maxAttempts: maxAttempts,
		now:         time.Now,
	}
}

// Generate builds a draft invoice for a job card and stores it,
// drawing a new number whenever the candidate is already taken.
func (s *invoiceService) Generate(ctx context.Context, workshopID uuid.UUID, input GenerateInvoiceInput) (*models.Invoice, error) {
	if _, err := s.jobCardRepo.GetByID(ctx, workshopID, input.JobCardID); err != nil {
		return nil, err
	}

	invoice, err := s.builder.Build(billing.InvoiceRequest{
		JobCardID:    input.JobCardID,
		WorkshopID:   workshopID,
		CustomerID:   input.CustomerID,
		IsInterState: input.IsInterState,
		Items:        input.Items,
	})
	if err != nil {
		return nil, err
	}

	for attempt := 1; attempt <= s.maxAttempts; attempt++ {
		err = s.invoiceRepo.Create(ctx, invoice)
		if err == nil {
			log.Info().
				Str("invoice_id", invoice.ID.String()).
				Str("invoice_number", invoice.InvoiceNumber).
				Str("job_card_id", input.JobCardID.String()).
				Str("grand_total", invoice.GrandTotal.StringFixed(2)).
				Msg("invoice generated")
			return invoice, nil
		}
		if !errors.Is(err, common.ErrDuplicateInvoiceNumber) {
			return nil, err
		}
		log.Warn().Str("invoice_number", invoice.InvoiceNumber).Int("attempt", attempt).Msg("invoice number collision, retrying")
		invoice.InvoiceNumber = s.builder.NextNumber()
	}

	return nil, fmt.Errorf("%w after %d attempts", common.ErrInvoiceNumberExhausted, s.maxAttempts)
}

func (s *invoiceService) GetInvoice(ctx context.Context, workshopID, id uuid.UUID) (*models.Invoice, error) {
	return s.invoiceRepo.GetByID(ctx, workshopID, id)
}

// ListForJobCard returns every invoice raised against a job card, newest first
func (s *invoiceService) ListForJobCard(ctx context.Context, workshopID, jobCardID uuid.UUID) ([]*models.Invoice, error) {
	if _, err := s.jobCardRepo.GetByID(ctx, workshopID, jobCardID); err != nil {
		return nil, err
	}
	return s.invoiceRepo.ListByJobCard(ctx, workshopID, jobCardID)
}

// Finalize locks the invoice and archives a copy. Archive failures do not undo finalization.
func (s *invoiceService) Finalize(ctx context.Context, workshopID, id uuid.UUID) (*models.Invoice, error) {
	invoice, err := s.moveStatus(ctx, workshopID, id, models.InvoiceStatusFinalized)
	if err != nil {
		return nil, err
	}

	if s.archive != nil {
		objectName, err := s.archive.ArchiveInvoice(ctx, invoice)
		if err != nil {
			log.Error().Err(err).Str("invoice_id", id.String()).Msg("failed to archive finalized invoice")
		} else {
			log.Info().Str("invoice_id", id.String()).Str("object", objectName).Msg("invoice archived")
		}
	}
	return invoice, nil
}

func (s *invoiceService) MarkPaid(ctx context.Context, workshopID, id uuid.UUID) (*models.Invoice, error) {
	return s.moveStatus(ctx, workshopID, id, models.InvoiceStatusPaid)
}

func (s *invoiceService) moveStatus(ctx context.Context, workshopID, id uuid.UUID, to models.InvoiceStatus) (*models.Invoice, error) {
	invoice, err := s.invoiceRepo.GetByID(ctx, workshopID, id)
	if err != nil {
		return nil, err
	}
	if !invoice.Status.CanMoveTo(to) {
		return nil, fmt.Errorf("%w: %s to %s", common.ErrInvalidInvoiceStatus, invoice.Status, to)
	}

	now := s.now().UTC()
	if err := s.invoiceRepo.UpdateStatus(ctx, workshopID, id, invoice.Status, to, now); err != nil {
		return nil, err
	}

	invoice.Status = to
	switch to {
	case models.InvoiceStatusFinalized:
		invoice.FinalizedAt = &now
	case models.InvoiceStatusPaid:
		invoice.PaidAt = &now
	}
	log.Info().Str("invoice_id", id.String()).Str("status", string(to)).Msg("invoice status changed")
	return invoice, nil
}
