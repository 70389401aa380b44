package assistant

import (
	"fmt"
	"strings"

	"github.com/opsdeck/netops-go-backend/internal/ops"
)

// maxReferences caps how many operation ids one answer may cite. The summary
// sentence still carries the true total.
const maxReferences = 12

const (
	answerNoInfo = "Information non disponible dans la base."
	answerHelp   = "Je peux répondre sur: planifiées / exécutées / en échec / statut d'une opération (OP-YYYY-NNNN)."
)

// Compose deterministically turns a resolved intent plus a context snapshot
// into the answer text and the list of referenced operation ids. It is a pure
// function and the single source of answer text for both resolver strategies.
func Compose(res Result, snap Snapshot) (string, []string) {
	if snap.Empty() {
		return answerNoInfo, []string{}
	}

	switch res.Intent {
	case IntentGetStatus:
		if res.OpID == "" {
			return answerHelp, []string{}
		}
		for _, o := range snap.Operations {
			if o.OpID == res.OpID {
				return fmt.Sprintf("Statut de %s: %s (priority: %s, feature: %s).",
					o.OpID, o.Status, o.Priority, o.Feature), []string{o.OpID}
			}
		}
		return answerNoInfo, []string{}

	case IntentListFailed:
		total, refs := filterByStatus(snap, ops.StatusFailed)
		if total == 0 {
			return "Non. Aucune opération en échec dans la base.", refs
		}
		return fmt.Sprintf("Oui. %d opération(s) en échec. Voir: %s.", total, strings.Join(refs, ", ")), refs

	case IntentListExecuted:
		total, refs := filterByStatus(snap, ops.StatusExecuted)
		if total == 0 {
			return "Aucune opération exécutée dans la base.", refs
		}
		return fmt.Sprintf("%d opération(s) exécutée(s): %s.", total, strings.Join(refs, ", ")), refs

	case IntentListPlanned:
		total, refs := filterByStatus(snap, ops.StatusPlanned)
		if total == 0 {
			return "Aucune opération planifiée dans la base.", refs
		}
		return fmt.Sprintf("%d opération(s) planifiée(s): %s.", total, strings.Join(refs, ", ")), refs
	}

	return answerHelp, []string{}
}

// filterByStatus returns the true match count and at most maxReferences ids,
// preserving the snapshot's updated_at-descending order.
func filterByStatus(snap Snapshot, status ops.Status) (int, []string) {
	total := 0
	refs := []string{}
	for _, o := range snap.Operations {
		if o.Status != string(status) {
			continue
		}
		total++
		if len(refs) < maxReferences {
			refs = append(refs, o.OpID)
		}
	}
	return total, refs
}
