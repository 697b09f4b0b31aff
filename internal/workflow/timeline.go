package workflow

import (
	"fmt"
	"time"

	"garageflow/internal/models"

	"github.com/google/uuid"
)

const noteExcerptLength = 50

// NewTimelineEntry stamps a fresh audit entry. status is nil for free-form notes.
func NewTimelineEntry(jobCardID uuid.UUID, description, actor string, status *models.JobStatus, at time.Time) models.TimelineEntry {
	return models.TimelineEntry{
		ID:              uuid.New(),
		JobCardID:       jobCardID,
		Timestamp:       at.UTC(),
		Description:     description,
		Actor:           actor,
		ResultingStatus: status,
	}
}

func StatusChangeDescription(to models.JobStatus, notes string) string {
	if notes == "" {
		return fmt.Sprintf("Status changed to %s", to)
	}
	return fmt.Sprintf("Status changed to %s: %s", to, notes)
}

func CreatedDescription(number string) string {
	return fmt.Sprintf("Job card %s created", number)
}

func NoteDescription(text string) string {
	runes := []rune(text)
	if len(runes) > noteExcerptLength {
		runes = runes[:noteExcerptLength]
	}
	return fmt.Sprintf("Note added: %s...", string(runes))
}

func ApprovalDescription(customerName string) string {
	return fmt.Sprintf("Customer approval received - Signed by %s", customerName)
}
