package assistant

import (
	"context"
	"encoding/json"
	"log"
	"strings"

	"github.com/opsdeck/netops-go-backend/internal/ai"
	"github.com/opsdeck/netops-go-backend/internal/ops"
)

const parserSystemPrompt = "You are a parser for a network operations tracker. " +
	"Your job is to interpret a potentially misspelled French question and output ONLY a JSON object. " +
	"Do not include any extra text."

const parserMaxTokens = 200

var parserRules = []string{
	"If the user mentions an OP id with typos, map to the closest known_op_id when very likely (e.g. OP-2026-OOO3 -> OP-2026-0003).",
	"If no clear OP id, op_id must be null.",
	"intent must be one of: GET_STATUS, LIST_PLANNED, LIST_EXECUTED, LIST_FAILED, HELP.",
	"Use LIST_PLANNED for words like planifie, prévu, planning, cette semaine.",
	"Use LIST_EXECUTED for words like exécuté, fait, terminé, done.",
	"Use LIST_FAILED for words like échec, failed, erreur.",
	"Use GET_STATUS when user asks status of a specific OP id.",
	"Never output an op_id that is not in known_op_ids.",
}

type parserInput struct {
	Question   string            `json:"question"`
	KnownOpIDs []string          `json:"known_op_ids"`
	Rules      []string          `json:"rules"`
	Schema     map[string]string `json:"output_json_schema"`
}

type parserOutput struct {
	NormalizedQuestion string  `json:"normalized_question"`
	Intent             string  `json:"intent"`
	OpID               *string `json:"op_id"`
}

// Completer is the slice of the AI client the resolver needs.
type Completer interface {
	Complete(ctx context.Context, model string, messages []ai.Message, maxTokens int) (string, error)
}

// ModelResolver delegates intent classification to an external completion
// service, constrained to a strict JSON output schema. Anything the service
// returns is re-validated locally: an unknown intent degrades to HELP and an
// op id is kept only when it is well-formed and present in the snapshot's
// known-id list.
type ModelResolver struct {
	Client Completer
	Model  string
	// Fallback, when non-nil, handles service failures (timeout, transport
	// error, non-200). Malformed output never reaches it: that always
	// degrades to HELP.
	Fallback Resolver
}

func (r *ModelResolver) Resolve(ctx context.Context, question string, snap Snapshot) Result {
	input := parserInput{
		Question:   question,
		KnownOpIDs: snap.KnownOpIDs(),
		Rules:      parserRules,
		Schema: map[string]string{
			"normalized_question": "string",
			"intent":              "string",
			"op_id":               "string|null",
		},
	}
	payload, err := json.Marshal(input)
	if err != nil {
		return Result{Intent: IntentHelp}
	}

	text, err := r.Client.Complete(ctx, r.Model, []ai.Message{
		{Role: "system", Content: parserSystemPrompt},
		{Role: "user", Content: string(payload)},
	}, parserMaxTokens)
	if err != nil {
		log.Printf("assistant: completion failed: %v", err)
		if r.Fallback != nil {
			return r.Fallback.Resolve(ctx, question, snap)
		}
		return Result{Intent: IntentHelp}
	}

	var parsed parserOutput
	if err := json.Unmarshal([]byte(strings.TrimSpace(text)), &parsed); err != nil {
		return Result{Intent: IntentHelp}
	}

	intent := strings.ToUpper(parsed.Intent)
	if !ValidIntent(intent) {
		intent = string(IntentHelp)
	}

	opID := ""
	if parsed.OpID != nil {
		opID = groundOpID(strings.ToUpper(*parsed.OpID), snap)
	}
	return Result{Intent: Intent(intent), OpID: opID}
}

// groundOpID discards any id that is malformed or absent from the snapshot.
// This is the hard guard against hallucinated identifiers.
func groundOpID(opID string, snap Snapshot) string {
	if !ops.OpIDPattern.MatchString(opID) {
		return ""
	}
	for _, o := range snap.Operations {
		if o.OpID == opID {
			return opID
		}
	}
	return ""
}
