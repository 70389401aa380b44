package assistant

import (
	"time"

	"github.com/opsdeck/netops-go-backend/internal/models"
)

// ContextWindow caps how many operations a snapshot may carry.
const ContextWindow = 200

// ContextOp is the flat, answer-ready projection of one operation. Full
// history is deliberately excluded to bound payload size.
type ContextOp struct {
	OpID        string    `json:"op_id"`
	Feature     string    `json:"feature"`
	Parameter   string    `json:"parameter"`
	Value       string    `json:"value"`
	Zone        string    `json:"zone"`
	Sites       []string  `json:"sites"`
	DesiredDate *string   `json:"desired_date"`
	PlannedDate *string   `json:"planned_date"`
	Priority    string    `json:"priority"`
	Status      string    `json:"status"`
	UpdatedAt   time.Time `json:"updated_at"`
}

// Snapshot is a bounded, read-only view of current operations, ordered by
// updated_at descending. An empty snapshot is a first-class case: every
// consumer answers "no information available" rather than erroring.
type Snapshot struct {
	Operations []ContextOp `json:"operations"`
}

func (s Snapshot) Empty() bool {
	return len(s.Operations) == 0
}

// KnownOpIDs lists the identifiers present in the snapshot, in order.
func (s Snapshot) KnownOpIDs() []string {
	ids := make([]string, 0, len(s.Operations))
	for _, o := range s.Operations {
		ids = append(ids, o.OpID)
	}
	return ids
}

// BuildSnapshot projects requests (already ordered by updated_at descending)
// into a snapshot, truncating to the context window.
func BuildSnapshot(requests []models.ChangeRequest) Snapshot {
	if len(requests) > ContextWindow {
		requests = requests[:ContextWindow]
	}
	snap := Snapshot{Operations: make([]ContextOp, 0, len(requests))}
	for _, r := range requests {
		snap.Operations = append(snap.Operations, ContextOp{
			OpID:        r.OpID,
			Feature:     r.Feature,
			Parameter:   r.Parameter,
			Value:       r.Value,
			Zone:        r.Zone,
			Sites:       r.Sites,
			DesiredDate: r.DesiredDate,
			PlannedDate: r.PlannedDate,
			Priority:    r.Priority,
			Status:      r.Status,
			UpdatedAt:   r.UpdatedAt,
		})
	}
	return snap
}
