package runloop

import (
	"context"

	"github.com/agencyboard/agentrun/modelio"
)

// Snapshot is one progress observation of a run.
//
// Running and completed snapshots are a light-weight view sufficient to
// reconstruct UI state: iteration index, budget, output so far, the tool
// call log, and token totals. A paused snapshot is full fidelity: it also
// carries the complete conversation (including the pending assistant turn)
// and the pending tool call, and on its own is sufficient to resume the run
// from a different process.
type Snapshot struct {
	RunID         string             `json:"run_id"`
	Status        Status             `json:"status"`
	Iteration     int                `json:"iteration"`
	MaxIterations int                `json:"max_iterations"`
	Output        string             `json:"output,omitempty"`
	ToolCalls     []ToolCallLogEntry `json:"tool_calls,omitempty"`
	Usage         modelio.Usage      `json:"usage"`
	Messages      Conversation       `json:"messages,omitempty"`
	Pending       *PendingToolCall   `json:"pending,omitempty"`
}

// Progress is what the loop reports to the sink after every iteration and
// at each terminal transition.
type Progress struct {
	Status   Status   `json:"status"`
	Message  string   `json:"message,omitempty"`
	Snapshot Snapshot `json:"snapshot"`
}

// ProgressSink receives progress reports. Implementations must not block
// the loop for long; reporting errors are deliberately ignored by the
// runner because observability must never fail a run.
type ProgressSink interface {
	Report(ctx context.Context, runID string, p Progress) error
}

type noopSink struct{}

func (noopSink) Report(context.Context, string, Progress) error { return nil }
