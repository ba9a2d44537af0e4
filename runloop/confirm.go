package runloop

import (
	"encoding/json"
	"fmt"
)

// ConfirmationPolicy decides whether a tool call may execute automatically
// or must be gated behind explicit user approval. Implementations are pure:
// no side effects, no I/O, total over all tool names.
type ConfirmationPolicy interface {
	// NeedsConfirmation reports whether the named tool requires approval.
	// Unknown tool names must require confirmation (fail safe).
	NeedsConfirmation(toolName string) bool

	// RenderConfirmation produces the human-readable prompt shown to the
	// user when the named call is gated.
	RenderConfirmation(toolName string, input json.RawMessage) string
}

// StaticPolicy classifies tools by a fixed allowlist: listed tools run
// automatically, everything else — including names the policy has never
// seen — pauses for approval.
type StaticPolicy struct {
	safe map[string]bool
}

// NewStaticPolicy creates a StaticPolicy from the tools that may run
// without approval. The think tool is always safe.
func NewStaticPolicy(safeTools ...string) *StaticPolicy {
	safe := make(map[string]bool, len(safeTools)+1)
	safe[ThinkToolName] = true
	for _, name := range safeTools {
		safe[name] = true
	}
	return &StaticPolicy{safe: safe}
}

// NeedsConfirmation reports whether the tool is outside the allowlist.
func (p *StaticPolicy) NeedsConfirmation(toolName string) bool {
	return !p.safe[toolName]
}

// RenderConfirmation formats the approval prompt for a gated call.
func (p *StaticPolicy) RenderConfirmation(toolName string, input json.RawMessage) string {
	compact := compactJSON(input)
	if compact == "" || compact == "{}" || compact == "null" {
		return fmt.Sprintf("The agent wants to run %q. Approve to continue.", toolName)
	}
	return fmt.Sprintf("The agent wants to run %q with input %s. Approve to continue.", toolName, compact)
}

func compactJSON(raw json.RawMessage) string {
	if len(raw) == 0 {
		return ""
	}
	var v any
	if err := json.Unmarshal(raw, &v); err != nil {
		return string(raw)
	}
	out, err := json.Marshal(v)
	if err != nil {
		return string(raw)
	}
	return string(out)
}
