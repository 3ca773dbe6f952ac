// Package event implements the named, pattern-matched pub-sub used to coordinate
// game systems, the effect runner and the UI
package event

import (
	"errors"
	"time"

	"github.com/oklog/ulid/v2"
)

var (
	// ErrEmptyName is returned when emitting an event without a name
	ErrEmptyName = errors.New("event: empty event name")

	// ErrStopPropagation is returned by a handler to stop delivery to lower priority listeners
	// It is not reported as an error by Emit
	ErrStopPropagation = errors.New("event: stop propagation")
)

// Event is a single dispatched occurrence
type Event struct {
	ID        ulid.ULID
	Name      string
	Payload   any
	Seq       uint64    // Emission order within the dispatcher
	Timestamp time.Time // Emission time, not dispatch time for deferred events
}

// Handler processes one event
// Returning ErrStopPropagation halts delivery; any other error is collected by the emitter
type Handler func(Event) error

// Subscription identifies a listener or tap for removal
type Subscription uint64

// PayloadAs extracts a typed payload, reporting false on mismatch or nil payload
func PayloadAs[T any](ev Event) (T, bool) {
	v, ok := ev.Payload.(T)
	return v, ok
}
