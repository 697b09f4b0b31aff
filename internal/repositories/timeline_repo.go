package repositories

import (
	"context"
	"fmt"

	"garageflow/internal/models"

	"github.com/google/uuid"
)

// TimelineRepository is the append-only audit trail of a job card.
// Entries are never updated or deleted.
type TimelineRepository interface {
	Record(ctx context.Context, entry models.TimelineEntry) error
	ListByJobCard(ctx context.Context, jobCardID uuid.UUID) ([]models.TimelineEntry, error)
}

type timelineRepo struct {
	db DB
}

func NewTimelineRepo(db DB) TimelineRepository {
	return &timelineRepo{db: db}
}

func (r *timelineRepo) Record(ctx context.Context, entry models.TimelineEntry) error {
	return insertTimelineEntry(ctx, r.db, entry)
}

func insertTimelineEntry(ctx context.Context, q querier, entry models.TimelineEntry) error {
	query := `
		INSERT INTO job_card_timeline (id, job_card_id, timestamp, description, actor, resulting_status)
		VALUES ($1, $2, $3, $4, $5, $6)
	`
	var status *string
	if entry.ResultingStatus != nil {
		s := string(*entry.ResultingStatus)
		status = &s
	}
	if _, err := q.Exec(ctx, query, entry.ID, entry.JobCardID, entry.Timestamp, entry.Description, entry.Actor, status); err != nil {
		return fmt.Errorf("failed to record timeline entry: %w", err)
	}
	return nil
}

func (r *timelineRepo) ListByJobCard(ctx context.Context, jobCardID uuid.UUID) ([]models.TimelineEntry, error) {
	query := `
		SELECT id, job_card_id, timestamp, description, actor, resulting_status
		FROM job_card_timeline
		WHERE job_card_id = $1
		ORDER BY timestamp ASC, id ASC
	`
	rows, err := r.db.Query(ctx, query, jobCardID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	entries := []models.TimelineEntry{}
	for rows.Next() {
		var entry models.TimelineEntry
		var status *string
		if err := rows.Scan(&entry.ID, &entry.JobCardID, &entry.Timestamp, &entry.Description, &entry.Actor, &status); err != nil {
			return nil, err
		}
		if status != nil {
			s, err := NormalizeStatus(*status)
			if err != nil {
				return nil, err
			}
			entry.ResultingStatus = &s
		}
		entries = append(entries, entry)
	}
	return entries, rows.Err()
}
