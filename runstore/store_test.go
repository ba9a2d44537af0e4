package runstore_test

import (
	"context"
	"encoding/json"
	"errors"
	"testing"

	"github.com/agencyboard/agentrun/modelio"
	"github.com/agencyboard/agentrun/runloop"
	"github.com/agencyboard/agentrun/runstore"
	"github.com/agencyboard/agentrun/runstore/inmem"
)

func pausedSnapshot() runloop.Snapshot {
	return runloop.Snapshot{
		RunID:         "run-1",
		Status:        runloop.StatusPaused,
		Iteration:     3,
		MaxIterations: 10,
		Output:        "partial output",
		Usage:         modelio.Usage{InputTokens: 120, OutputTokens: 45},
		Messages: runloop.Conversation{
			modelio.UserMessage("delete board b1"),
			modelio.AssistantMessage(
				modelio.ToolCallBlock("c1", "delete_board", json.RawMessage(`{"board_id":"b1"}`)),
			),
		},
		Pending: &runloop.PendingToolCall{
			ID:           "c1",
			Name:         "delete_board",
			Input:        json.RawMessage(`{"board_id":"b1"}`),
			Confirmation: "The agent wants to run \"delete_board\".",
		},
	}
}

func TestSinkPersistsPausedSnapshot(t *testing.T) {
	store := inmem.New()
	sink := runstore.NewSink(store)
	ctx := context.Background()

	snap := pausedSnapshot()
	if err := sink.Report(ctx, snap.RunID, runloop.Progress{
		Status:   runloop.StatusPaused,
		Message:  snap.Pending.Confirmation,
		Snapshot: snap,
	}); err != nil {
		t.Fatalf("Report: %v", err)
	}

	rec, err := store.Load(ctx, "run-1")
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if rec.Status != runloop.StatusPaused {
		t.Errorf("status = %s", rec.Status)
	}
	if rec.TotalInputTokens != 120 || rec.TotalOutputTokens != 45 {
		t.Errorf("totals = %d/%d", rec.TotalInputTokens, rec.TotalOutputTokens)
	}
	if rec.IterationCount != 3 {
		t.Errorf("iterations = %d", rec.IterationCount)
	}

	state, err := runstore.DecodeResumeState(rec)
	if err != nil {
		t.Fatalf("DecodeResumeState: %v", err)
	}
	if len(state.Messages) != 2 {
		t.Fatalf("messages = %+v", state.Messages)
	}
	if state.Pending == nil || state.Pending.ID != "c1" || state.Pending.Name != "delete_board" {
		t.Errorf("pending = %+v", state.Pending)
	}
	if state.Usage.InputTokens != 120 || state.Iters != 3 {
		t.Errorf("state = %+v", state)
	}
	if state.Output != "partial output" {
		t.Errorf("output = %q", state.Output)
	}

	// The decoded history must still satisfy the pairing rules the pause
	// left it in (trailing assistant turn holds the gated call).
	calls := state.Messages[1].ToolCalls()
	if len(calls) != 1 || calls[0].ID != "c1" {
		t.Errorf("calls = %+v", calls)
	}
}

func TestSinkOverwritesOnLaterReports(t *testing.T) {
	store := inmem.New()
	sink := runstore.NewSink(store)
	ctx := context.Background()

	running := runloop.Snapshot{RunID: "run-2", Status: runloop.StatusRunning, Iteration: 1}
	if err := sink.Report(ctx, "run-2", runloop.Progress{Status: runloop.StatusRunning, Snapshot: running}); err != nil {
		t.Fatal(err)
	}
	done := runloop.Snapshot{RunID: "run-2", Status: runloop.StatusCompleted, Iteration: 4, Output: "final"}
	if err := sink.Report(ctx, "run-2", runloop.Progress{Status: runloop.StatusCompleted, Snapshot: done}); err != nil {
		t.Fatal(err)
	}

	rec, err := store.Load(ctx, "run-2")
	if err != nil {
		t.Fatal(err)
	}
	if rec.Status != runloop.StatusCompleted || rec.IterationCount != 4 || rec.Output != "final" {
		t.Errorf("record = %+v", rec)
	}
}

func TestDecodeResumeStateRejectsNonPaused(t *testing.T) {
	rec := runstore.Record{RunID: "run-3", Status: runloop.StatusCompleted}
	if _, err := runstore.DecodeResumeState(rec); err == nil {
		t.Error("completed record decoded as resumable")
	}

	rec = runstore.Record{RunID: "run-4", Status: runloop.StatusPaused}
	if _, err := runstore.DecodeResumeState(rec); err == nil {
		t.Error("paused record without state decoded as resumable")
	}
}

func TestLoadMissingRun(t *testing.T) {
	store := inmem.New()
	if _, err := store.Load(context.Background(), "nope"); !errors.Is(err, runstore.ErrNotFound) {
		t.Errorf("err = %v, want ErrNotFound", err)
	}
}
