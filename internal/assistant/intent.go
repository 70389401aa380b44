package assistant

// Intent is the classified purpose of a user question.
type Intent string

const (
	IntentGetStatus    Intent = "GET_STATUS"
	IntentListPlanned  Intent = "LIST_PLANNED"
	IntentListExecuted Intent = "LIST_EXECUTED"
	IntentListFailed   Intent = "LIST_FAILED"
	IntentHelp         Intent = "HELP"
)

// ValidIntent reports whether s is one of the five allowed intent values.
func ValidIntent(s string) bool {
	switch Intent(s) {
	case IntentGetStatus, IntentListPlanned, IntentListExecuted, IntentListFailed, IntentHelp:
		return true
	}
	return false
}

// Result is the structured outcome of intent resolution. OpID is empty
// unless the question targets one specific operation.
type Result struct {
	Intent Intent
	OpID   string
}
