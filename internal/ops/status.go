package ops

import "fmt"

// Status is the lifecycle state of a change request.
type Status string

const (
	StatusPending  Status = "PENDING"
	StatusPlanned  Status = "PLANNED"
	StatusExecuted Status = "EXECUTED"
	StatusFailed   Status = "FAILED"
)

// Department identifies who acted on a request.
type Department string

const (
	DeptEngineering Department = "ENGINEERING"
	DeptPilotage    Department = "PILOTAGE"
	DeptOperations  Department = "OPERATIONS"
)

// AllowedTransitions is the full transition graph. EXECUTED is terminal.
var AllowedTransitions = map[Status][]Status{
	StatusPending:  {StatusPlanned},
	StatusPlanned:  {StatusExecuted, StatusFailed},
	StatusFailed:   {StatusPlanned},
	StatusExecuted: {},
}

func ParseStatus(s string) (Status, error) {
	switch Status(s) {
	case StatusPending, StatusPlanned, StatusExecuted, StatusFailed:
		return Status(s), nil
	}
	return "", fmt.Errorf("invalid status %q", s)
}

func ParseDepartment(s string) (Department, error) {
	switch Department(s) {
	case DeptEngineering, DeptPilotage, DeptOperations:
		return Department(s), nil
	}
	return "", fmt.Errorf("invalid department %q", s)
}

// CanTransition reports whether from -> to is in the transition graph.
// Self-transitions are never allowed.
func CanTransition(from, to Status) bool {
	for _, s := range AllowedTransitions[from] {
		if s == to {
			return true
		}
	}
	return false
}
