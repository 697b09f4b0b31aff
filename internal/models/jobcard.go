package models

import (
	"fmt"
	"time"

	"github.com/google/uuid"
)

// JobStatus is the lifecycle state of a job card
type JobStatus string

const (
	StatusCreated          JobStatus = "CREATED"
	StatusContextVerified  JobStatus = "CONTEXT_VERIFIED"
	StatusDiagnosed        JobStatus = "DIAGNOSED"
	StatusEstimated        JobStatus = "ESTIMATED"
	StatusCustomerApproval JobStatus = "CUSTOMER_APPROVAL"
	StatusInProgress       JobStatus = "IN_PROGRESS"
	StatusOnHold           JobStatus = "ON_HOLD"
	StatusPDI              JobStatus = "PDI"
	StatusInvoiced         JobStatus = "INVOICED"
	StatusClosed           JobStatus = "CLOSED"
	StatusCancelled        JobStatus = "CANCELLED"
)

// AllJobStatuses lists every status in lifecycle order
var AllJobStatuses = []JobStatus{
	StatusCreated,
	StatusContextVerified,
	StatusDiagnosed,
	StatusEstimated,
	StatusCustomerApproval,
	StatusInProgress,
	StatusOnHold,
	StatusPDI,
	StatusInvoiced,
	StatusClosed,
	StatusCancelled,
}

func (s JobStatus) IsValid() bool {
	for _, known := range AllJobStatuses {
		if s == known {
			return true
		}
	}
	return false
}

func (s JobStatus) String() string {
	return string(s)
}

// ParseJobStatus accepts only the exact wire strings
func ParseJobStatus(raw string) (JobStatus, error) {
	s := JobStatus(raw)
	if !s.IsValid() {
		return "", fmt.Errorf("unknown job card status %q", raw)
	}
	return s, nil
}

// ApprovalStatus tracks customer sign-off on an estimate
type ApprovalStatus string

const (
	ApprovalPending  ApprovalStatus = "pending"
	ApprovalApproved ApprovalStatus = "approved"
	ApprovalRejected ApprovalStatus = "rejected"
)

type Priority string

const (
	PriorityLow    Priority = "low"
	PriorityNormal Priority = "normal"
	PriorityHigh   Priority = "high"
	PriorityUrgent Priority = "urgent"
)

func (p Priority) Valid() bool {
	switch p {
	case PriorityLow, PriorityNormal, PriorityHigh, PriorityUrgent:
		return true
	}
	return false
}

type JobCard struct {
	ID                  uuid.UUID      `json:"id" db:"id"`
	WorkshopID          uuid.UUID      `json:"workshop_id" db:"workshop_id"`
	CustomerID          uuid.UUID      `json:"customer_id" db:"customer_id"`
	JobCardNumber       string         `json:"job_card_number" db:"job_card_number"`
	VehicleRegistration string         `json:"vehicle_registration" db:"vehicle_registration"`
	Status              JobStatus      `json:"status" db:"status"`
	Priority            Priority       `json:"priority" db:"priority"`
	ApprovalStatus      ApprovalStatus `json:"approval_status" db:"approval_status"`
	Version             int            `json:"version" db:"version"`
	CreatedAt           time.Time      `json:"created_at" db:"created_at"`
	UpdatedAt           time.Time      `json:"updated_at" db:"updated_at"`
}

// TimelineEntry is an immutable audit record attached to a job card
type TimelineEntry struct {
	ID              uuid.UUID  `json:"id" db:"id"`
	JobCardID       uuid.UUID  `json:"job_card_id" db:"job_card_id"`
	Timestamp       time.Time  `json:"timestamp" db:"timestamp"`
	Description     string     `json:"description" db:"description"`
	Actor           string     `json:"actor" db:"actor"`
	ResultingStatus *JobStatus `json:"resulting_status,omitempty" db:"resulting_status"`
}
