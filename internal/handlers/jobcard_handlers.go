package handlers

import (
	"errors"
	"net/http"

	"garageflow/internal/common"
	"garageflow/internal/models"
	"garageflow/internal/services"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
)

const maxNoteLength = 2000

// JobCardHandlers handles job card lifecycle requests
type JobCardHandlers struct {
	jobCardService services.JobCardService
}

func NewJobCardHandlers(jobCardService services.JobCardService) *JobCardHandlers {
	return &JobCardHandlers{jobCardService: jobCardService}
}

type CreateJobCardRequest struct {
	CustomerID          uuid.UUID `json:"customer_id" validate:"required"`
	VehicleRegistration string    `json:"vehicle_registration" validate:"required,max=20"`
	Priority            string    `json:"priority" validate:"omitempty,oneof=low normal high urgent"`
}

// UpdateJobCardRequest edits a card. Status is changed only through the transition endpoint.
type UpdateJobCardRequest struct {
	VehicleRegistration *string `json:"vehicle_registration" validate:"omitempty,min=1,max=20"`
	Priority            *string `json:"priority" validate:"omitempty,oneof=low normal high urgent"`
}

type TransitionRequest struct {
	NewStatus string `json:"new_status" validate:"required"`
	Notes     string `json:"notes"`
}

// TransitionResult reports the outcome of a status change.
// Rejections are returned with success=false rather than a bare error envelope.
// On rejection the card did not move, so new_status equals previous_status
// and requested_status carries the status that was refused.
type TransitionResult struct {
	Success         bool   `json:"success"`
	PreviousStatus  string `json:"previous_status"`
	NewStatus       string `json:"new_status"`
	RequestedStatus string `json:"requested_status,omitempty"`
	ErrorMessage    string `json:"error_message,omitempty"`
}

type AddNoteRequest struct {
	Text string `json:"text" validate:"required"`
}

type ApprovalRequest struct {
	CustomerName string `json:"customer_name" validate:"required,max=120"`
}

// CreateJobCard handles POST /job-cards
func (h *JobCardHandlers) CreateJobCard(c echo.Context) error {
	ctx := c.Request().Context()
	workshopID, ok := workshopFrom(c)
	if !ok {
		return common.SendUnauthorizedError(c)
	}

	var req CreateJobCardRequest
	if ok, err := bindAndValidate(c, &req); !ok {
		return err
	}

	card, err := h.jobCardService.CreateJobCard(ctx, workshopID, services.CreateJobCardInput{
		CustomerID:          req.CustomerID,
		VehicleRegistration: req.VehicleRegistration,
		Priority:            models.Priority(req.Priority),
	})
	if err != nil {
		return common.SendDomainError(c, "create job card", err)
	}
	return c.JSON(http.StatusCreated, card)
}

// GetJobCard handles GET /job-cards/:id
func (h *JobCardHandlers) GetJobCard(c echo.Context) error {
	ctx := c.Request().Context()
	workshopID, ok := workshopFrom(c)
	if !ok {
		return common.SendUnauthorizedError(c)
	}
	id, ok, err := pathID(c, "id")
	if !ok {
		return err
	}

	card, err := h.jobCardService.GetJobCard(ctx, workshopID, id)
	if err != nil {
		return common.SendDomainError(c, "get job card", err)
	}
	return c.JSON(http.StatusOK, card)
}

// UpdateJobCard handles PUT /job-cards/:id
func (h *JobCardHandlers) UpdateJobCard(c echo.Context) error {
	ctx := c.Request().Context()
	workshopID, ok := workshopFrom(c)
	if !ok {
		return common.SendUnauthorizedError(c)
	}
	id, ok, err := pathID(c, "id")
	if !ok {
		return err
	}

	var req UpdateJobCardRequest
	if ok, err := bindAndValidate(c, &req); !ok {
		return err
	}
	if req.VehicleRegistration == nil && req.Priority == nil {
		return common.SendValidationError(c, "body", "vehicle_registration or priority is required")
	}

	input := services.UpdateJobCardInput{VehicleRegistration: req.VehicleRegistration}
	if req.Priority != nil {
		priority := models.Priority(*req.Priority)
		input.Priority = &priority
	}

	card, err := h.jobCardService.UpdateJobCard(ctx, workshopID, id, input)
	if err != nil {
		return common.SendDomainError(c, "update job card", err)
	}
	return c.JSON(http.StatusOK, card)
}

// Transition handles POST /job-cards/:id/transition
func (h *JobCardHandlers) Transition(c echo.Context) error {
	ctx := c.Request().Context()
	workshopID, ok := workshopFrom(c)
	if !ok {
		return common.SendUnauthorizedError(c)
	}
	id, ok, err := pathID(c, "id")
	if !ok {
		return err
	}

	var req TransitionRequest
	if ok, err := bindAndValidate(c, &req); !ok {
		return err
	}
	requested, err := models.ParseJobStatus(req.NewStatus)
	if err != nil {
		return common.SendValidationError(c, "new_status", err.Error())
	}
	notes, err := common.NormalizeText(req.Notes, "notes", maxNoteLength)
	if err != nil {
		return common.SendValidationError(c, "notes", err.Error())
	}

	outcome, err := h.jobCardService.Transition(ctx, workshopID, id, requested, notes)
	if err != nil {
		var invalid *common.InvalidTransitionError
		if errors.As(err, &invalid) {
			return c.JSON(http.StatusUnprocessableEntity, TransitionResult{
				Success:         false,
				PreviousStatus:  invalid.From.String(),
				NewStatus:       invalid.From.String(),
				RequestedStatus: invalid.To.String(),
				ErrorMessage:    invalid.Error(),
			})
		}
		return common.SendDomainError(c, "transition job card", err)
	}

	return c.JSON(http.StatusOK, TransitionResult{
		Success:        true,
		PreviousStatus: outcome.PreviousStatus.String(),
		NewStatus:      outcome.NewStatus.String(),
	})
}

// AddNote handles POST /job-cards/:id/notes
func (h *JobCardHandlers) AddNote(c echo.Context) error {
	ctx := c.Request().Context()
	workshopID, ok := workshopFrom(c)
	if !ok {
		return common.SendUnauthorizedError(c)
	}
	id, ok, err := pathID(c, "id")
	if !ok {
		return err
	}

	var req AddNoteRequest
	if ok, err := bindAndValidate(c, &req); !ok {
		return err
	}
	text, err := common.NormalizeText(req.Text, "text", maxNoteLength)
	if err != nil {
		return common.SendValidationError(c, "text", err.Error())
	}

	entry, err := h.jobCardService.AddNote(ctx, workshopID, id, text)
	if err != nil {
		return common.SendDomainError(c, "add job card note", err)
	}
	return c.JSON(http.StatusCreated, entry)
}

// RecordApproval handles POST /job-cards/:id/approval
func (h *JobCardHandlers) RecordApproval(c echo.Context) error {
	ctx := c.Request().Context()
	workshopID, ok := workshopFrom(c)
	if !ok {
		return common.SendUnauthorizedError(c)
	}
	id, ok, err := pathID(c, "id")
	if !ok {
		return err
	}

	var req ApprovalRequest
	if ok, err := bindAndValidate(c, &req); !ok {
		return err
	}

	card, err := h.jobCardService.RecordApproval(ctx, workshopID, id, req.CustomerName)
	if err != nil {
		return common.SendDomainError(c, "record approval", err)
	}
	return c.JSON(http.StatusOK, card)
}

// Timeline handles GET /job-cards/:id/timeline
func (h *JobCardHandlers) Timeline(c echo.Context) error {
	ctx := c.Request().Context()
	workshopID, ok := workshopFrom(c)
	if !ok {
		return common.SendUnauthorizedError(c)
	}
	id, ok, err := pathID(c, "id")
	if !ok {
		return err
	}

	entries, err := h.jobCardService.Timeline(ctx, workshopID, id)
	if err != nil {
		return common.SendDomainError(c, "get job card timeline", err)
	}
	return c.JSON(http.StatusOK, map[string]interface{}{
		"job_card_id": id,
		"entries":     entries,
	})
}
