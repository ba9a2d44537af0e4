package runloop

import (
	"context"
	"testing"
)

func TestChannelSinkDelivers(t *testing.T) {
	sink := NewChannelSink(4)
	defer sink.Close()

	if err := sink.Report(context.Background(), "run-1", Progress{Status: StatusRunning}); err != nil {
		t.Fatalf("Report: %v", err)
	}
	select {
	case p := <-sink.Progress():
		if p.Status != StatusRunning {
			t.Errorf("status = %s", p.Status)
		}
	default:
		t.Fatal("no progress delivered")
	}
}

func TestChannelSinkDropsWhenFull(t *testing.T) {
	sink := NewChannelSink(1)
	defer sink.Close()

	for i := 0; i < 5; i++ {
		if err := sink.Report(context.Background(), "run-1", Progress{Status: StatusRunning}); err != nil {
			t.Fatalf("Report must never fail on a full channel: %v", err)
		}
	}
	if got := len(sink.Progress()); got != 1 {
		t.Errorf("buffered = %d, want 1", got)
	}
}

func TestChannelSinkCloseIsIdempotent(t *testing.T) {
	sink := NewChannelSink(1)
	sink.Close()
	sink.Close()
	if err := sink.Report(context.Background(), "run-1", Progress{}); err != nil {
		t.Fatalf("Report after close: %v", err)
	}
	if _, ok := <-sink.Progress(); ok {
		t.Error("channel not closed")
	}
}
