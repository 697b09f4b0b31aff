package services

import (
	"context"
	"fmt"
	"strings"
	"time"

	"garageflow/internal/common"
	"garageflow/internal/models"
	"garageflow/internal/repositories"
	"garageflow/internal/workflow"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
)

type CreateJobCardInput struct {
	CustomerID          uuid.UUID
	VehicleRegistration string
	Priority            models.Priority
}

// UpdateJobCardInput carries the editable card fields. Nil fields are left unchanged.
type UpdateJobCardInput struct {
	VehicleRegistration *string
	Priority            *models.Priority
}

type JobCardService interface {
	CreateJobCard(ctx context.Context, workshopID uuid.UUID, input CreateJobCardInput) (*models.JobCard, error)
	GetJobCard(ctx context.Context, workshopID, id uuid.UUID) (*models.JobCard, error)
	UpdateJobCard(ctx context.Context, workshopID, id uuid.UUID, input UpdateJobCardInput) (*models.JobCard, error)
	Transition(ctx context.Context, workshopID, id uuid.UUID, requested models.JobStatus, notes string) (*workflow.TransitionOutcome, error)
	AddNote(ctx context.Context, workshopID, id uuid.UUID, text string) (*models.TimelineEntry, error)
	RecordApproval(ctx context.Context, workshopID, id uuid.UUID, customerName string) (*models.JobCard, error)
	Timeline(ctx context.Context, workshopID, id uuid.UUID) ([]models.TimelineEntry, error)
}

type jobCardService struct {
	repo       repositories.JobCardRepository
	timeline   repositories.TimelineRepository
	machine    *workflow.StateMachine
	dispatcher NotificationDispatcher
	now        func() time.Time
}

func NewJobCardService(repo repositories.JobCardRepository, timeline repositories.TimelineRepository, machine *workflow.StateMachine, dispatcher NotificationDispatcher) JobCardService {
	if machine == nil {
		machine = workflow.NewStateMachine(nil)
	}
	if dispatcher == nil {
		dispatcher = NewNoopDispatcher()
	}
	return &jobCardService{
		repo:       repo,
		timeline:   timeline,
		machine:    machine,
		dispatcher: dispatcher,
		now:        time.Now,
	}
}

func (s *jobCardService) CreateJobCard(ctx context.Context, workshopID uuid.UUID, input CreateJobCardInput) (*models.JobCard, error) {
	registration := strings.ToUpper(strings.TrimSpace(input.VehicleRegistration))
	if registration == "" {
		return nil, fmt.Errorf("%w: vehicle registration is required", common.ErrValidation)
	}
	priority := input.Priority
	if priority == "" {
		priority = models.PriorityNormal
	}

	now := s.now().UTC()
	number, err := s.repo.NextJobCardNumber(ctx, workshopID, now)
	if err != nil {
		return nil, err
	}

	card := &models.JobCard{
		ID:                  uuid.New(),
		WorkshopID:          workshopID,
		CustomerID:          input.CustomerID,
		JobCardNumber:       number,
		VehicleRegistration: registration,
		Status:              models.StatusCreated,
		Priority:            priority,
		ApprovalStatus:      models.ApprovalPending,
		Version:             1,
		CreatedAt:           now,
		UpdatedAt:           now,
	}
	status := models.StatusCreated
	entry := workflow.NewTimelineEntry(card.ID, workflow.CreatedDescription(number), common.GetActorFromContext(ctx), &status, now)

	if err := s.repo.Create(ctx, card, entry); err != nil {
		return nil, err
	}

	log.Info().Str("job_card_id", card.ID.String()).Str("job_card_number", number).Msg("job card created")
	return card, nil
}

func (s *jobCardService) GetJobCard(ctx context.Context, workshopID, id uuid.UUID) (*models.JobCard, error) {
	return s.repo.GetByID(ctx, workshopID, id)
}

// UpdateJobCard edits registration and priority. An edit that races a
// transition or approval fails with ErrConcurrentModification.
func (s *jobCardService) UpdateJobCard(ctx context.Context, workshopID, id uuid.UUID, input UpdateJobCardInput) (*models.JobCard, error) {
	card, err := s.repo.GetByID(ctx, workshopID, id)
	if err != nil {
		return nil, err
	}

	updated := *card
	if input.VehicleRegistration != nil {
		registration := strings.ToUpper(strings.TrimSpace(*input.VehicleRegistration))
		if registration == "" {
			return nil, fmt.Errorf("%w: vehicle registration is required", common.ErrValidation)
		}
		updated.VehicleRegistration = registration
	}
	if input.Priority != nil {
		if !input.Priority.Valid() {
			return nil, fmt.Errorf("%w: unknown priority %q", common.ErrValidation, *input.Priority)
		}
		updated.Priority = *input.Priority
	}
	updated.UpdatedAt = s.now().UTC()
	updated.Version = card.Version + 1

	if err := s.repo.Update(ctx, &updated, card.Version); err != nil {
		return nil, err
	}

	log.Info().Str("job_card_id", id.String()).Msg("job card updated")
	return &updated, nil
}

// Transition validates the move, persists card and timeline together, then notifies
func (s *jobCardService) Transition(ctx context.Context, workshopID, id uuid.UUID, requested models.JobStatus, notes string) (*workflow.TransitionOutcome, error) {
	card, err := s.repo.GetByID(ctx, workshopID, id)
	if err != nil {
		return nil, err
	}

	outcome, err := s.machine.Transition(*card, requested, common.GetActorFromContext(ctx), strings.TrimSpace(notes))
	if err != nil {
		log.Debug().Err(err).Str("job_card_id", id.String()).Str("from", string(card.Status)).Str("to", string(requested)).
			Msg("transition rejected")
		return nil, err
	}

	outcome.JobCard.Version = card.Version + 1
	if err := s.repo.ApplyTransition(ctx, &outcome.JobCard, outcome.PreviousStatus, card.Version, outcome.Entry); err != nil {
		return nil, err
	}

	log.Info().
		Str("job_card_id", id.String()).
		Str("from", string(outcome.PreviousStatus)).
		Str("to", string(outcome.NewStatus)).
		Msg("job card status changed")

	s.dispatcher.DispatchStatusChange(ctx, models.StatusChange{
		JobCardID:      card.ID,
		WorkshopID:     card.WorkshopID,
		JobCardNumber:  card.JobCardNumber,
		PreviousStatus: outcome.PreviousStatus,
		NewStatus:      outcome.NewStatus,
		OccurredAt:     outcome.Entry.Timestamp,
	})

	return outcome, nil
}

func (s *jobCardService) AddNote(ctx context.Context, workshopID, id uuid.UUID, text string) (*models.TimelineEntry, error) {
	text = strings.TrimSpace(text)
	if text == "" {
		return nil, fmt.Errorf("%w: note text is required", common.ErrValidation)
	}
	if _, err := s.repo.GetByID(ctx, workshopID, id); err != nil {
		return nil, err
	}

	entry := workflow.NewTimelineEntry(id, workflow.NoteDescription(text), common.GetActorFromContext(ctx), nil, s.now())
	if err := s.timeline.Record(ctx, entry); err != nil {
		return nil, err
	}
	return &entry, nil
}

// RecordApproval marks the estimate as signed. Terminal cards cannot be approved.
func (s *jobCardService) RecordApproval(ctx context.Context, workshopID, id uuid.UUID, customerName string) (*models.JobCard, error) {
	customerName = strings.TrimSpace(customerName)
	if customerName == "" {
		return nil, fmt.Errorf("%w: customer name is required", common.ErrValidation)
	}

	card, err := s.repo.GetByID(ctx, workshopID, id)
	if err != nil {
		return nil, err
	}
	if s.machine.Graph().IsTerminal(card.Status) {
		return nil, fmt.Errorf("%w: job card %s is %s", common.ErrInvalidTransition, card.JobCardNumber, card.Status)
	}

	now := s.now().UTC()
	updated := *card
	updated.ApprovalStatus = models.ApprovalApproved
	updated.UpdatedAt = now
	updated.Version = card.Version + 1

	entry := workflow.NewTimelineEntry(id, workflow.ApprovalDescription(customerName), common.GetActorFromContext(ctx), nil, now)
	if err := s.repo.RecordApproval(ctx, &updated, card.Version, entry); err != nil {
		return nil, err
	}

	log.Info().Str("job_card_id", id.String()).Msg("customer approval recorded")
	return &updated, nil
}

func (s *jobCardService) Timeline(ctx context.Context, workshopID, id uuid.UUID) ([]models.TimelineEntry, error) {
	if _, err := s.repo.GetByID(ctx, workshopID, id); err != nil {
		return nil, err
	}
	return s.timeline.ListByJobCard(ctx, id)
}
