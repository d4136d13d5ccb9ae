package progress

import (
	"context"
	"sync/atomic"
	"time"
)

// DefaultCapacity is the default buffer size of a [ChannelSink]. At this
// depth a consumer rendering one row per event can fall behind by a
// full round of a medium-sized repository before a producer blocks.
const DefaultCapacity = 256

// Sink accepts progress events from a sync round. Implementations must
// be safe for concurrent use: every worker in the Cherry-pick Executor's
// pool sends to the same Sink.
type Sink interface {
	// Send delivers an event, blocking if the sink's buffer is full
	// (back-pressure) until space is available or ctx is cancelled.
	Send(ctx context.Context, kind Kind, fullName, message string, outcome any) error
}

// ChannelSink is a [Sink] backed by a buffered Go channel. Sends block
// once the buffer fills rather than dropping events, so a slow consumer
// (e.g. a terminal renderer throttled by frame rate) never causes the
// sync engine to silently lose progress information -- it only slows it
// down.
type ChannelSink struct {
	events chan Event
	index  atomic.Int64
	now    func() time.Time
}

// NewChannelSink creates a [ChannelSink] with the given buffer capacity
// and returns it along with the receive-only channel consumers read
// from. The channel is never closed by Send; call [ChannelSink.Close]
// once the round (and all of its workers) have finished.
func NewChannelSink(capacity int) (*ChannelSink, <-chan Event) {
	if capacity <= 0 {
		capacity = DefaultCapacity
	}
	s := &ChannelSink{
		events: make(chan Event, capacity),
		now:    time.Now,
	}
	return s, s.events
}

// Send delivers an event, assigning it the next monotonic index.
func (s *ChannelSink) Send(ctx context.Context, kind Kind, fullName, message string, outcome any) error {
	ev := Event{
		Index:    int(s.index.Add(1)) - 1,
		Kind:     kind,
		FullName: fullName,
		Message:  message,
		Outcome:  outcome,
		Time:     s.now(),
	}

	select {
	case s.events <- ev:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// Close closes the underlying channel. Callers must ensure no further
// Send calls are in flight; the sync command calls this only after
// Service.Sync, and with it every worker, has returned.
func (s *ChannelSink) Close() {
	close(s.events)
}

// NopSink discards every event. Service.Sync falls back to it when its
// caller supplies no sink.
type NopSink struct{}

// Send implements [Sink] by discarding the event.
func (NopSink) Send(context.Context, Kind, string, string, any) error { return nil }

var (
	_ Sink = (*ChannelSink)(nil)
	_ Sink = NopSink{}
)
