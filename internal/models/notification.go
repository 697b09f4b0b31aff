package models

import (
	"time"

	"github.com/google/uuid"
)

// NotificationType represents the channel a downstream worker should use
type NotificationType string

const (
	NotificationTypeWhatsApp NotificationType = "whatsapp"
	NotificationTypeSMS      NotificationType = "sms"
	NotificationTypeEmail    NotificationType = "email"
)

// StatusChange is the notification intent emitted after a committed transition.
// Formatting and delivery happen outside this service.
type StatusChange struct {
	JobCardID      uuid.UUID        `json:"job_card_id"`
	WorkshopID     uuid.UUID        `json:"workshop_id"`
	JobCardNumber  string           `json:"job_card_number"`
	PreviousStatus JobStatus        `json:"previous_status"`
	NewStatus      JobStatus        `json:"new_status"`
	Channel        NotificationType `json:"channel,omitempty"`
	OccurredAt     time.Time        `json:"occurred_at"`
}
