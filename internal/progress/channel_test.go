package progress

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestChannelSinkSendAssignsMonotonicIndex(t *testing.T) {
	sink, events := NewChannelSink(4)

	ctx := context.Background()
	require.NoError(t, sink.Send(ctx, KindTaskStart, "alice/feature", "starting", nil))
	require.NoError(t, sink.Send(ctx, KindTaskEnd, "alice/feature", "done", "outcome"))
	sink.Close()

	var got []Event
	for ev := range events {
		got = append(got, ev)
	}

	require.Len(t, got, 2)
	assert.Equal(t, 0, got[0].Index)
	assert.Equal(t, 1, got[1].Index)
	assert.Equal(t, KindTaskStart, got[0].Kind)
	assert.Equal(t, "alice/feature", got[0].FullName)
	assert.Equal(t, "outcome", got[1].Outcome)
}

func TestChannelSinkSendRespectsContextCancellation(t *testing.T) {
	// Capacity 1, fill it, then cancel a second send before it's drained.
	sink, _ := NewChannelSink(1)
	ctx, cancel := context.WithCancel(context.Background())

	require.NoError(t, sink.Send(context.Background(), KindTaskStart, "a", "1", nil))

	cancel()
	err := sink.Send(ctx, KindTaskStart, "b", "2", nil)
	assert.ErrorIs(t, err, context.Canceled)

	sink.Close() // close without reading
}

func TestNopSinkDiscards(t *testing.T) {
	var s NopSink
	assert.NoError(t, s.Send(context.Background(), KindRoundEnd, "", "", nil))
}

func TestDefaultCapacityUsedWhenNonPositive(t *testing.T) {
	s, _ := NewChannelSink(0)
	assert.Equal(t, DefaultCapacity, cap(s.events))
}

func TestEventKindString(t *testing.T) {
	tests := []struct {
		kind Kind
		want string
	}{
		{KindTaskStart, "task_start"},
		{KindTaskProgress, "task_progress"},
		{KindTaskEnd, "task_end"},
		{KindRoundEnd, "round_end"},
		{Kind(99), "unknown"},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, tt.kind.String())
	}
}
