// Package runstore persists run records so paused runs survive process
// restarts and finished runs remain queryable for billing and audit.
package runstore

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/agencyboard/agentrun/modelio"
	"github.com/agencyboard/agentrun/runloop"
)

// ErrNotFound is returned by Load when no record exists for a run id.
var ErrNotFound = errors.New("runstore: run not found")

// Record is the durable row for one run. MessageHistory and PendingTool are
// stored as opaque JSON; only paused records carry enough state to resume.
type Record struct {
	RunID             string          `json:"run_id"`
	Status            runloop.Status  `json:"status"`
	Message           string          `json:"message,omitempty"`
	MessageHistory    json.RawMessage `json:"message_history,omitempty"`
	PendingTool       json.RawMessage `json:"pending_tool,omitempty"`
	TotalInputTokens  int             `json:"total_input_tokens"`
	TotalOutputTokens int             `json:"total_output_tokens"`
	IterationCount    int             `json:"iteration_count"`
	Output            string          `json:"output,omitempty"`
	UpdatedAt         time.Time       `json:"updated_at"`
}

// Store persists run records keyed by run id. Save overwrites any existing
// record for the same id.
type Store interface {
	Save(ctx context.Context, rec Record) error
	Load(ctx context.Context, runID string) (Record, error)
	Close() error
}

// RecordFromSnapshot converts a progress snapshot into its durable form.
func RecordFromSnapshot(snap runloop.Snapshot, message string) (Record, error) {
	rec := Record{
		RunID:             snap.RunID,
		Status:            snap.Status,
		Message:           message,
		TotalInputTokens:  snap.Usage.InputTokens,
		TotalOutputTokens: snap.Usage.OutputTokens,
		IterationCount:    snap.Iteration,
		Output:            snap.Output,
		UpdatedAt:         time.Now().UTC(),
	}
	if len(snap.Messages) > 0 {
		raw, err := json.Marshal(snap.Messages)
		if err != nil {
			return Record{}, fmt.Errorf("marshal message history: %w", err)
		}
		rec.MessageHistory = raw
	}
	if snap.Pending != nil {
		raw, err := json.Marshal(snap.Pending)
		if err != nil {
			return Record{}, fmt.Errorf("marshal pending tool: %w", err)
		}
		rec.PendingTool = raw
	}
	return rec, nil
}

// ResumeState is a paused record decoded back into loop inputs.
type ResumeState struct {
	Messages runloop.Conversation
	Pending  *runloop.PendingToolCall
	Usage    modelio.Usage
	Iters    int
	Output   string
}

// DecodeResumeState rebuilds resume inputs from a paused record. It refuses
// records in any other status: only a pause leaves full-fidelity state
// behind, and resuming from anything else would hand the model a broken
// conversation.
func DecodeResumeState(rec Record) (ResumeState, error) {
	if rec.Status != runloop.StatusPaused {
		return ResumeState{}, fmt.Errorf("run %s is %s, not paused", rec.RunID, rec.Status)
	}
	if len(rec.MessageHistory) == 0 || len(rec.PendingTool) == 0 {
		return ResumeState{}, fmt.Errorf("run %s: paused record is missing resume state", rec.RunID)
	}

	var msgs runloop.Conversation
	if err := json.Unmarshal(rec.MessageHistory, &msgs); err != nil {
		return ResumeState{}, fmt.Errorf("decode message history: %w", err)
	}
	var pending runloop.PendingToolCall
	if err := json.Unmarshal(rec.PendingTool, &pending); err != nil {
		return ResumeState{}, fmt.Errorf("decode pending tool: %w", err)
	}
	return ResumeState{
		Messages: msgs,
		Pending:  &pending,
		Usage:    modelio.Usage{InputTokens: rec.TotalInputTokens, OutputTokens: rec.TotalOutputTokens},
		Iters:    rec.IterationCount,
		Output:   rec.Output,
	}, nil
}
