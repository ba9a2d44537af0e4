package runloop

import (
	"context"
	"sync"
)

// ChannelSink delivers progress reports to the host application via a
// buffered channel, for UI polling or streaming. If the channel is full the
// report is dropped rather than blocking the loop; durable persistence
// belongs to a store-backed sink, not this one.
type ChannelSink struct {
	ch     chan Progress
	closed bool
	mu     sync.Mutex
}

// NewChannelSink creates a ChannelSink with the given buffer size.
func NewChannelSink(bufferSize int) *ChannelSink {
	if bufferSize <= 0 {
		bufferSize = 256
	}
	return &ChannelSink{ch: make(chan Progress, bufferSize)}
}

// Report implements ProgressSink. Reports after Close are silently dropped.
func (s *ChannelSink) Report(_ context.Context, _ string, p Progress) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return nil
	}
	select {
	case s.ch <- p:
	default:
		// Channel full; drop to avoid blocking the loop.
	}
	return nil
}

// Progress returns the read-only progress channel.
func (s *ChannelSink) Progress() <-chan Progress {
	return s.ch
}

// Close closes the channel. Safe to call multiple times.
func (s *ChannelSink) Close() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.closed {
		s.closed = true
		close(s.ch)
	}
}
