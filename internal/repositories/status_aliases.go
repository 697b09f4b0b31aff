package repositories

import (
	"fmt"

	"garageflow/internal/models"
)

// legacyStatusAliases maps status strings written by older clients onto the canonical enum.
// Applied only when reading rows; writes always use the canonical value.
var legacyStatusAliases = map[string]models.JobStatus{
	"Pending":       models.StatusCreated,
	"pending":       models.StatusCreated,
	"created":       models.StatusCreated,
	"In-Progress":   models.StatusInProgress,
	"In Progress":   models.StatusInProgress,
	"in_progress":   models.StatusInProgress,
	"On Hold":       models.StatusOnHold,
	"on_hold":       models.StatusOnHold,
	"PDI_COMPLETED": models.StatusPDI,
	"Invoiced":      models.StatusInvoiced,
	"invoiced":      models.StatusInvoiced,
	"Completed":     models.StatusClosed,
	"completed":     models.StatusClosed,
	"Closed":        models.StatusClosed,
	"Cancelled":     models.StatusCancelled,
	"cancelled":     models.StatusCancelled,
}

// NormalizeStatus converts a stored status string into the canonical enum
func NormalizeStatus(raw string) (models.JobStatus, error) {
	if s := models.JobStatus(raw); s.IsValid() {
		return s, nil
	}
	if s, ok := legacyStatusAliases[raw]; ok {
		return s, nil
	}
	return "", fmt.Errorf("unrecognised stored job card status %q", raw)
}
