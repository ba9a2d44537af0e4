package runloop

import (
	"context"

	"github.com/agencyboard/agentrun/modelio"
)

// Result is the structured outcome of one tool execution. It stays a struct
// between dispatcher and loop; the "OK: "/"ERROR: " framing the model
// depends on is applied only when the tool-result content block is built.
type Result struct {
	OK      bool
	Message string
}

// ExecContext carries the identity of the run on whose behalf a tool
// executes. The dispatcher's backing store owns its own concurrency
// discipline; the loop only threads this through.
type ExecContext struct {
	RunID    string            `json:"run_id"`
	BoardID  string            `json:"board_id,omitempty"`
	UserID   string            `json:"user_id,omitempty"`
	Metadata map[string]string `json:"metadata,omitempty"`
}

// Dispatcher performs a tool's side effect and reports success or failure.
//
// A Result with OK=false is data, not a fault: it is framed as an
// "ERROR: ..." tool result and fed back to the model, which may recover. A
// non-nil error is an infrastructure fault and fails the whole run.
type Dispatcher interface {
	Execute(ctx context.Context, call modelio.ToolCall, ec ExecContext) (Result, error)
}

// formatResult serializes a Result into the text framing the model expects.
func formatResult(r Result) string {
	if r.OK {
		return "OK: " + r.Message
	}
	return "ERROR: " + r.Message
}
