package common

import (
	"errors"
	"fmt"
	"net/http"

	"garageflow/internal/models"

	"github.com/labstack/echo/v4"
	"github.com/rs/zerolog/log"
)

var (
	ErrEntityNotFound         = errors.New("entity not found")
	ErrInvalidTransition      = errors.New("invalid status transition")
	ErrApprovalRequired       = errors.New("customer approval is required before work can start")
	ErrInvalidLineItem        = errors.New("invalid invoice line item")
	ErrEmptyInvoice           = errors.New("invoice must contain at least one line item")
	ErrContractNotActive      = errors.New("contract is not active")
	ErrNoUsageData            = errors.New("contract has no vehicles to bill")
	ErrConcurrentModification = errors.New("record was modified concurrently, reload and retry")
	ErrBillingInProgress      = errors.New("billing for this contract and period is already running")
	ErrInvalidBillingPeriod   = errors.New("billing period must be in YYYY-MM format")
	ErrInvalidInvoiceStatus   = errors.New("invoice status change not allowed")
	ErrInvoiceNumberExhausted = errors.New("could not allocate a unique invoice number")
	ErrDuplicateInvoiceNumber = errors.New("invoice number already exists")
	ErrInvalidVehicleLog      = errors.New("invalid vehicle log")
	ErrInvalidContract        = errors.New("invalid contract")
	ErrValidation             = errors.New("validation failed")
)

// NotFoundError names the missing entity
type NotFoundError struct {
	Entity string
	ID     string
}

func (e *NotFoundError) Error() string {
	return fmt.Sprintf("%s %s not found", e.Entity, e.ID)
}

func (e *NotFoundError) Is(target error) bool {
	return target == ErrEntityNotFound
}

func NewNotFoundError(entity string, id fmt.Stringer) error {
	return &NotFoundError{Entity: entity, ID: id.String()}
}

// InvalidTransitionError is returned when a job card status change is not an edge of the graph,
// or when a guard on an existing edge fails (Cause is then set).
type InvalidTransitionError struct {
	From  models.JobStatus
	To    models.JobStatus
	Cause error
}

func (e *InvalidTransitionError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("cannot transition from %s to %s: %v", e.From, e.To, e.Cause)
	}
	return fmt.Sprintf("cannot transition from %s to %s", e.From, e.To)
}

func (e *InvalidTransitionError) Is(target error) bool {
	return target == ErrInvalidTransition
}

func (e *InvalidTransitionError) Unwrap() error {
	return e.Cause
}

// InvalidLineItemError points at the offending item by position
type InvalidLineItemError struct {
	Index  int
	Reason string
}

func (e *InvalidLineItemError) Error() string {
	return fmt.Sprintf("line item %d: %s", e.Index+1, e.Reason)
}

func (e *InvalidLineItemError) Is(target error) bool {
	return target == ErrInvalidLineItem
}

// HTTPStatusFor maps domain errors to response codes
func HTTPStatusFor(err error) (int, string) {
	switch {
	case err == nil:
		return http.StatusOK, ""
	case errors.Is(err, ErrEntityNotFound):
		return http.StatusNotFound, "NOT_FOUND"
	case errors.Is(err, ErrConcurrentModification):
		return http.StatusConflict, "CONCURRENT_MODIFICATION"
	case errors.Is(err, ErrBillingInProgress):
		return http.StatusConflict, "BILLING_IN_PROGRESS"
	case errors.Is(err, ErrInvalidInvoiceStatus):
		return http.StatusConflict, "INVALID_INVOICE_STATUS"
	case errors.Is(err, ErrInvalidTransition):
		return http.StatusUnprocessableEntity, "INVALID_TRANSITION"
	case errors.Is(err, ErrContractNotActive):
		return http.StatusUnprocessableEntity, "CONTRACT_NOT_ACTIVE"
	case errors.Is(err, ErrNoUsageData):
		return http.StatusUnprocessableEntity, "NO_USAGE_DATA"
	case errors.Is(err, ErrInvalidLineItem), errors.Is(err, ErrEmptyInvoice):
		return http.StatusBadRequest, "INVALID_INVOICE"
	case errors.Is(err, ErrInvalidBillingPeriod), errors.Is(err, ErrInvalidVehicleLog), errors.Is(err, ErrInvalidContract),
		errors.Is(err, ErrValidation):
		return http.StatusBadRequest, "VALIDATION_ERROR"
	}
	return http.StatusInternalServerError, "SERVER_ERROR"
}

// SendDomainError writes err using the standard error envelope.
// Unknown errors are logged and masked.
func SendDomainError(c echo.Context, operation string, err error) error {
	status, code := HTTPStatusFor(err)
	if status == http.StatusInternalServerError {
		log.Error().Err(err).Str("operation", operation).Msg("request failed")
		return SendServerError(c, SecureErrorMessage(operation, err).Error())
	}
	return c.JSON(status, CreateErrorResponse(code, err.Error(), nil))
}
