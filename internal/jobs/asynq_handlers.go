package jobs

import (
	"context"
	"encoding/json"
	"fmt"

	"garageflow/internal/models"

	"github.com/hibiken/asynq"
	"github.com/rs/zerolog/log"
)

// Task type definitions
const (
	TypeJobCardStatusChanged = "jobcard:status_changed"
)

// NewStatusChangedTask creates a task announcing a job card status change
func NewStatusChangedTask(change models.StatusChange) (*asynq.Task, error) {
	data, err := json.Marshal(change)
	if err != nil {
		return nil, err
	}
	return asynq.NewTask(TypeJobCardStatusChanged, data), nil
}

// StatusChangeSender delivers a status change on its channel
type StatusChangeSender interface {
	Send(ctx context.Context, change models.StatusChange) error
}

// LogSender only records the delivery request. Used when no channel provider is configured.
type LogSender struct{}

func (LogSender) Send(ctx context.Context, change models.StatusChange) error {
	log.Info().
		Str("job_card_id", change.JobCardID.String()).
		Str("job_card_number", change.JobCardNumber).
		Str("from", string(change.PreviousStatus)).
		Str("to", string(change.NewStatus)).
		Str("channel", string(change.Channel)).
		Msg("status change notification ready for delivery")
	return nil
}

// StatusChangedHandler consumes jobcard:status_changed tasks
type StatusChangedHandler struct {
	sender StatusChangeSender
}

func NewStatusChangedHandler(sender StatusChangeSender) *StatusChangedHandler {
	if sender == nil {
		sender = LogSender{}
	}
	return &StatusChangedHandler{sender: sender}
}

func (h *StatusChangedHandler) ProcessTask(ctx context.Context, t *asynq.Task) error {
	var change models.StatusChange
	if err := json.Unmarshal(t.Payload(), &change); err != nil {
		// malformed payloads will never succeed
		return fmt.Errorf("failed to unmarshal status change payload: %v: %w", err, asynq.SkipRetry)
	}
	return h.sender.Send(ctx, change)
}

// NewServeMux registers every task handler
func NewServeMux(statusChanged *StatusChangedHandler) *asynq.ServeMux {
	mux := asynq.NewServeMux()
	mux.Handle(TypeJobCardStatusChanged, statusChanged)
	return mux
}
