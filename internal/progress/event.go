// Package progress defines the event stream a sync round emits as it
// works through branch plans, and the channel-backed sink that
// delivers it to a consumer (a CLI renderer, or eventually a desktop
// UI) with back-pressure instead of silently dropping events.
package progress

import "time"

// Kind identifies the shape of an [Event]'s payload.
type Kind int

// Event kinds emitted over the course of a sync round.
const (
	// KindTaskStart announces that a branch plan has begun execution.
	KindTaskStart Kind = iota

	// KindTaskProgress reports incremental progress within a task,
	// e.g. "commit 2 of 5 applied".
	KindTaskProgress

	// KindTaskEnd announces a branch plan's final [branchdeck.Outcome].
	KindTaskEnd

	// KindRoundEnd announces that every branch plan in the round has
	// finished, successfully or not.
	KindRoundEnd
)

func (k Kind) String() string {
	switch k {
	case KindTaskStart:
		return "task_start"
	case KindTaskProgress:
		return "task_progress"
	case KindTaskEnd:
		return "task_end"
	case KindRoundEnd:
		return "round_end"
	default:
		return "unknown"
	}
}

// Event is a single, indexed entry in a sync round's progress stream.
// Index is monotonically increasing per round regardless of which
// branch produced the event, so a consumer can detect gaps (it cannot:
// the sink never drops events) or simply render rows in arrival order.
type Event struct {
	// Index is this event's position in the round's stream, starting
	// at zero.
	Index int

	// Kind identifies which field below is meaningful.
	Kind Kind

	// FullName is the branch this event concerns. Empty for
	// KindRoundEnd.
	FullName string

	// Message is a short human-readable description, e.g.
	// "cherry-picking 3/5".
	Message string

	// Outcome is set for KindTaskEnd; see the branchdeck package for
	// its concrete type. Declared as `any` here so this package has no
	// import-cycle dependency on branchdeck.
	Outcome any

	// Time records when the event was produced.
	Time time.Time
}
