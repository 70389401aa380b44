package assistant

import (
	"context"
	"strings"

	"github.com/opsdeck/netops-go-backend/internal/ops"
)

// Resolver turns a free-text question into a structured intent. Both
// implementations share the Result contract; answer text always comes from
// Compose, never from a resolver.
type Resolver interface {
	Resolve(ctx context.Context, question string, snap Snapshot) Result
}

// Keyword families scanned by the deterministic resolver, in priority order:
// failure before execution before planning.
var (
	failedKeywords   = []string{"échec", "en echec", "failed"}
	executedKeywords = []string{"exécut", "execut", "done"}
	plannedKeywords  = []string{"plan", "planning", "cette semaine", "prévu"}
)

// KeywordResolver is the deterministic strategy. It is always available and
// never fails.
type KeywordResolver struct{}

func (KeywordResolver) Resolve(_ context.Context, question string, _ Snapshot) Result {
	if opID := ops.ExtractOpID(question); opID != "" {
		return Result{Intent: IntentGetStatus, OpID: opID}
	}

	q := strings.ToLower(question)
	if containsAny(q, failedKeywords) {
		return Result{Intent: IntentListFailed}
	}
	if containsAny(q, executedKeywords) {
		return Result{Intent: IntentListExecuted}
	}
	if containsAny(q, plannedKeywords) {
		return Result{Intent: IntentListPlanned}
	}
	return Result{Intent: IntentHelp}
}

func containsAny(s string, subs []string) bool {
	for _, sub := range subs {
		if strings.Contains(s, sub) {
			return true
		}
	}
	return false
}
