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

type JobCardRepository interface {
	Create(ctx context.Context, card *models.JobCard, entry models.TimelineEntry) error
	GetByID(ctx context.Context, workshopID, id uuid.UUID) (*models.JobCard, error)
	NextJobCardNumber(ctx context.Context, workshopID uuid.UUID, at time.Time) (string, error)
	ApplyTransition(ctx context.Context, card *models.JobCard, previous models.JobStatus, expectedVersion int, entry models.TimelineEntry) error
	RecordApproval(ctx context.Context, card *models.JobCard, expectedVersion int, entry models.TimelineEntry) error
	Update(ctx context.Context, card *models.JobCard, expectedVersion int) error
}

type jobCardRepo struct {
	db DB
}

func NewJobCardRepo(db DB) JobCardRepository {
	return &jobCardRepo{db: db}
}

// Create inserts the card together with its first timeline entry
func (r *jobCardRepo) Create(ctx context.Context, card *models.JobCard, entry models.TimelineEntry) error {
	query := `
		INSERT INTO job_cards (id, workshop_id, customer_id, job_card_number, vehicle_registration, status, priority, approval_status, version, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)
	`
	return withTx(ctx, r.db, func(tx pgx.Tx) error {
		_, err := tx.Exec(ctx, query, card.ID, card.WorkshopID, card.CustomerID, card.JobCardNumber, card.VehicleRegistration,
			string(card.Status), string(card.Priority), string(card.ApprovalStatus), card.Version, card.CreatedAt, card.UpdatedAt)
		if err != nil {
			return fmt.Errorf("failed to insert job card: %w", err)
		}
		return insertTimelineEntry(ctx, tx, entry)
	})
}

func (r *jobCardRepo) GetByID(ctx context.Context, workshopID, id uuid.UUID) (*models.JobCard, error) {
	query := `
		SELECT id, workshop_id, customer_id, job_card_number, vehicle_registration, status, priority, approval_status, version, created_at, updated_at
		FROM job_cards
		WHERE workshop_id = $1 AND id = $2
	`
	card := &models.JobCard{}
	var status, priority, approval string
	err := r.db.QueryRow(ctx, query, workshopID, id).Scan(&card.ID, &card.WorkshopID, &card.CustomerID, &card.JobCardNumber,
		&card.VehicleRegistration, &status, &priority, &approval, &card.Version, &card.CreatedAt, &card.UpdatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, common.NewNotFoundError("job card", id)
		}
		return nil, err
	}

	if card.Status, err = NormalizeStatus(status); err != nil {
		return nil, err
	}
	card.Priority = models.Priority(priority)
	card.ApprovalStatus = models.ApprovalStatus(approval)
	return card, nil
}

func (r *jobCardRepo) NextJobCardNumber(ctx context.Context, workshopID uuid.UUID, at time.Time) (string, error) {
	year := at.UTC().Year()
	n, err := nextSequence(ctx, r.db, "job_card", workshopID.String(), year)
	if err != nil {
		return "", err
	}
	return formatSequenceNumber("JC", year, n), nil
}

// ApplyTransition persists a validated status change and its timeline entry atomically.
// The update only applies if the row still has expectedVersion and the previous status.
func (r *jobCardRepo) ApplyTransition(ctx context.Context, card *models.JobCard, previous models.JobStatus, expectedVersion int, entry models.TimelineEntry) error {
	query := `
		UPDATE job_cards
		SET status = $1, version = version + 1, updated_at = $2
		WHERE workshop_id = $3 AND id = $4 AND version = $5 AND status = $6
	`
	return withTx(ctx, r.db, func(tx pgx.Tx) error {
		tag, err := tx.Exec(ctx, query, string(card.Status), card.UpdatedAt, card.WorkshopID, card.ID, expectedVersion, string(previous))
		if err != nil {
			return fmt.Errorf("failed to update job card status: %w", err)
		}
		if tag.RowsAffected() == 0 {
			return common.ErrConcurrentModification
		}
		return insertTimelineEntry(ctx, tx, entry)
	})
}

// RecordApproval stores the approval flag and its timeline entry atomically
func (r *jobCardRepo) RecordApproval(ctx context.Context, card *models.JobCard, expectedVersion int, entry models.TimelineEntry) error {
	query := `
		UPDATE job_cards
		SET approval_status = $1, version = version + 1, updated_at = $2
		WHERE workshop_id = $3 AND id = $4 AND version = $5
	`
	return withTx(ctx, r.db, func(tx pgx.Tx) error {
		tag, err := tx.Exec(ctx, query, string(card.ApprovalStatus), card.UpdatedAt, card.WorkshopID, card.ID, expectedVersion)
		if err != nil {
			return fmt.Errorf("failed to record approval: %w", err)
		}
		if tag.RowsAffected() == 0 {
			return common.ErrConcurrentModification
		}
		return insertTimelineEntry(ctx, tx, entry)
	})
}

// Update stores registration and priority edits. Status is only ever changed by ApplyTransition.
func (r *jobCardRepo) Update(ctx context.Context, card *models.JobCard, expectedVersion int) error {
	query := `
		UPDATE job_cards
		SET vehicle_registration = $1, priority = $2, version = version + 1, updated_at = $3
		WHERE workshop_id = $4 AND id = $5 AND version = $6
	`
	tag, err := r.db.Exec(ctx, query, card.VehicleRegistration, string(card.Priority), card.UpdatedAt, card.WorkshopID, card.ID, expectedVersion)
	if err != nil {
		return fmt.Errorf("failed to update job card: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return common.ErrConcurrentModification
	}
	return nil
}
