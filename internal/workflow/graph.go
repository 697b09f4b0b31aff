package workflow

import "garageflow/internal/models"

// StatusGraph holds the legal job card transitions. It is immutable after construction.
type StatusGraph struct {
	edges map[models.JobStatus][]models.JobStatus
}

// NewStatusGraph builds the workshop lifecycle:
// the linear chain CREATED..CLOSED, IN_PROGRESS <-> ON_HOLD,
// and CANCELLED reachable from every non-terminal state.
func NewStatusGraph() *StatusGraph {
	chain := []models.JobStatus{
		models.StatusCreated,
		models.StatusContextVerified,
		models.StatusDiagnosed,
		models.StatusEstimated,
		models.StatusCustomerApproval,
		models.StatusInProgress,
		models.StatusPDI,
		models.StatusInvoiced,
		models.StatusClosed,
	}

	edges := make(map[models.JobStatus][]models.JobStatus)
	for i := 0; i < len(chain)-1; i++ {
		edges[chain[i]] = append(edges[chain[i]], chain[i+1])
	}
	edges[models.StatusInProgress] = append(edges[models.StatusInProgress], models.StatusOnHold)
	edges[models.StatusOnHold] = append(edges[models.StatusOnHold], models.StatusInProgress)

	for _, s := range models.AllJobStatuses {
		if s == models.StatusClosed || s == models.StatusCancelled {
			continue
		}
		edges[s] = append(edges[s], models.StatusCancelled)
	}

	return &StatusGraph{edges: edges}
}

// CanTransition reports whether from -> to is an edge
func (g *StatusGraph) CanTransition(from, to models.JobStatus) bool {
	for _, next := range g.edges[from] {
		if next == to {
			return true
		}
	}
	return false
}

// AllowedTransitions returns the successors of from in declaration order
func (g *StatusGraph) AllowedTransitions(from models.JobStatus) []models.JobStatus {
	out := make([]models.JobStatus, len(g.edges[from]))
	copy(out, g.edges[from])
	return out
}

// IsTerminal reports whether no transition leaves s
func (g *StatusGraph) IsTerminal(s models.JobStatus) bool {
	return s.IsValid() && len(g.edges[s]) == 0
}
