package runstore

import (
	"context"
	"fmt"

	"github.com/agencyboard/agentrun/runloop"
)

// Sink is a runloop.ProgressSink that persists every progress report as a
// run record. Because the loop reports a full-fidelity snapshot on pause,
// a run persisted through this sink can be resumed by a different process
// after a crash: load the record, decode it with DecodeResumeState, and
// feed the result to Runner.Resume.
type Sink struct {
	store Store
}

// NewSink wraps a store as a progress sink.
func NewSink(store Store) *Sink {
	return &Sink{store: store}
}

// Report implements runloop.ProgressSink.
func (s *Sink) Report(ctx context.Context, runID string, p runloop.Progress) error {
	rec, err := RecordFromSnapshot(p.Snapshot, p.Message)
	if err != nil {
		return fmt.Errorf("record run %s: %w", runID, err)
	}
	if rec.RunID == "" {
		rec.RunID = runID
	}
	if err := s.store.Save(ctx, rec); err != nil {
		return fmt.Errorf("save run %s: %w", runID, err)
	}
	return nil
}
