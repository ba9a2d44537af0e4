package runloop

import (
	"encoding/json"
	"time"

	"github.com/agencyboard/agentrun/modelio"
)

// Status is the coarse lifecycle state of a run.
type Status string

const (
	StatusRunning   Status = "running"
	StatusCompleted Status = "completed"
	StatusPaused    Status = "paused"
	StatusFailed    Status = "failed"
)

// ThinkToolName is the reserved reasoning tool. Calls to it are answered
// immediately with an affirming result and never reach the dispatcher.
const ThinkToolName = "think"

// thinkAck is the synthesized result for a think-tool call.
const thinkAck = "OK: noted."

// RejectedToolResult is the fixed tool result synthesized when a user
// rejects a gated tool call. Models are steered by this exact phrasing;
// do not reword it.
const RejectedToolResult = "The user rejected this action. Continue without performing it."

// Decision is the human verdict that resumes a paused run.
type Decision string

const (
	DecisionApprove Decision = "approve"
	DecisionReject  Decision = "reject"
)

// PendingToolCall is a tool call held for human approval. It is created when
// the confirmation policy gates a call and destroyed when a decision
// converts it into exactly one tool result.
type PendingToolCall struct {
	ID           string          `json:"id"`
	Name         string          `json:"name"`
	Input        json.RawMessage `json:"input"`
	Confirmation string          `json:"confirmation"`

	// PriorResults holds results for calls from the same assistant turn that
	// were processed before the gate. They are replayed into the resume
	// message so every tool call id from the turn ends up answered.
	PriorResults []modelio.ToolResultData `json:"prior_results,omitempty"`
}

// ToolCallLogEntry is the append-only audit record for one executed
// (non-think) tool call. It is observability data only; control flow never
// re-parses it.
type ToolCallLogEntry struct {
	Name   string          `json:"name"`
	Input  json.RawMessage `json:"input"`
	Result string          `json:"result"`
	OK     bool            `json:"ok"`
}

// Outcome is the immutable terminal record of a run.
//
// Completed outcomes carry the full output text, iteration count, tool-call
// log, token totals, and cost. Paused outcomes additionally carry everything
// needed to resume: the full conversation including the just-appended
// assistant turn, and the pending tool call. Failed outcomes carry the raw
// error message and elapsed duration; they are not resumable.
type Outcome struct {
	RunID      string             `json:"run_id"`
	Status     Status             `json:"status"`
	Output     string             `json:"output,omitempty"`
	Iterations int                `json:"iterations"`
	ToolCalls  []ToolCallLogEntry `json:"tool_calls,omitempty"`
	Usage      modelio.Usage      `json:"usage"`
	Cost       float64            `json:"cost,omitempty"`

	// Messages is the final conversation state (completed and paused runs).
	// Pending and Reason are set only when paused.
	Messages Conversation     `json:"messages,omitempty"`
	Pending  *PendingToolCall `json:"pending,omitempty"`
	Reason   string           `json:"reason,omitempty"`

	// Failed only.
	ErrorMessage string        `json:"error_message,omitempty"`
	Duration     time.Duration `json:"duration,omitempty"`
}
