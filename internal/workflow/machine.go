package workflow

import (
	"time"

	"garageflow/internal/common"
	"garageflow/internal/models"
)

// TransitionOutcome is everything a caller must persist for one accepted transition
type TransitionOutcome struct {
	JobCard        models.JobCard
	Entry          models.TimelineEntry
	PreviousStatus models.JobStatus
	NewStatus      models.JobStatus
}

// StateMachine validates job card transitions. It performs no I/O.
type StateMachine struct {
	graph *StatusGraph
	now   func() time.Time
}

func NewStateMachine(graph *StatusGraph) *StateMachine {
	if graph == nil {
		graph = NewStatusGraph()
	}
	return &StateMachine{graph: graph, now: time.Now}
}

// WithClock overrides the timestamp source
func (m *StateMachine) WithClock(now func() time.Time) *StateMachine {
	m.now = now
	return m
}

func (m *StateMachine) Graph() *StatusGraph {
	return m.graph
}

// Transition checks requested against the graph and the approval guard and,
// on success, returns the updated card copy plus the timeline entry to append.
// The input card is never modified.
func (m *StateMachine) Transition(card models.JobCard, requested models.JobStatus, actor, notes string) (*TransitionOutcome, error) {
	from := card.Status
	if !m.graph.CanTransition(from, requested) {
		return nil, &common.InvalidTransitionError{From: from, To: requested}
	}

	if from == models.StatusCustomerApproval && requested == models.StatusInProgress &&
		card.ApprovalStatus != models.ApprovalApproved {
		return nil, &common.InvalidTransitionError{From: from, To: requested, Cause: common.ErrApprovalRequired}
	}

	now := m.now()
	updated := card
	updated.Status = requested
	updated.UpdatedAt = now

	status := requested
	entry := NewTimelineEntry(card.ID, StatusChangeDescription(requested, notes), actor, &status, now)

	return &TransitionOutcome{
		JobCard:        updated,
		Entry:          entry,
		PreviousStatus: from,
		NewStatus:      requested,
	}, nil
}
