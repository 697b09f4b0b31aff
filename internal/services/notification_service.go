package services

import (
	"context"

	"garageflow/internal/jobs"
	"garageflow/internal/models"

	"github.com/hibiken/asynq"
	"github.com/rs/zerolog/log"
)

// NotificationDispatcher hands status changes to the async notification pipeline.
// Dispatch never fails the caller; enqueue errors are logged.
type NotificationDispatcher interface {
	DispatchStatusChange(ctx context.Context, change models.StatusChange)
}

// TaskEnqueuer is satisfied by *asynq.Client
type TaskEnqueuer interface {
	EnqueueContext(ctx context.Context, task *asynq.Task, opts ...asynq.Option) (*asynq.TaskInfo, error)
}

type notificationDispatcher struct {
	client  TaskEnqueuer
	queue   string
	channel models.NotificationType
}

func NewNotificationDispatcher(client TaskEnqueuer, queue string) NotificationDispatcher {
	if queue == "" {
		queue = "default"
	}
	return &notificationDispatcher{client: client, queue: queue, channel: models.NotificationTypeWhatsApp}
}

func (d *notificationDispatcher) DispatchStatusChange(ctx context.Context, change models.StatusChange) {
	if change.Channel == "" {
		change.Channel = d.channel
	}

	task, err := jobs.NewStatusChangedTask(change)
	if err != nil {
		log.Error().Err(err).Str("job_card_id", change.JobCardID.String()).Msg("failed to build status change task")
		return
	}

	info, err := d.client.EnqueueContext(ctx, task, asynq.Queue(d.queue), asynq.MaxRetry(5))
	if err != nil {
		log.Error().Err(err).
			Str("job_card_id", change.JobCardID.String()).
			Str("to", string(change.NewStatus)).
			Msg("failed to enqueue status change notification")
		return
	}
	log.Debug().Str("task_id", info.ID).Str("job_card_id", change.JobCardID.String()).Msg("status change notification enqueued")
}

// noopDispatcher is used when no queue is configured
type noopDispatcher struct{}

func NewNoopDispatcher() NotificationDispatcher {
	return noopDispatcher{}
}

func (noopDispatcher) DispatchStatusChange(context.Context, models.StatusChange) {}
