package event

import (
	"errors"
	"fmt"
	"sort"
	"sync"
	"sync/atomic"
	"time"

	"github.com/oklog/ulid/v2"
	"github.com/rs/zerolog"

	"github.com/lixenwraith/void-striker/parameter"
)

// Option configures a Dispatcher
type Option func(*Dispatcher)

// WithHistorySize sets the event history capacity; n <= 0 disables history
func WithHistorySize(n int) Option {
	return func(d *Dispatcher) { d.history = NewHistory(n) }
}

// WithLogger routes handler panics and errors to logger
func WithLogger(logger zerolog.Logger) Option {
	return func(d *Dispatcher) { d.logger = logger }
}

// WithNow overrides the timestamp source, used by tests
func WithNow(now func() time.Time) Option {
	return func(d *Dispatcher) { d.now = now }
}

// ListenerOption configures a single listener
type ListenerOption func(*listener)

// WithPriority orders listeners; higher runs first, ties keep registration order
func WithPriority(p int) ListenerOption {
	return func(l *listener) { l.priority = p }
}

// Once removes the listener after its first delivery
func Once() ListenerOption {
	return func(l *listener) { l.once = true }
}

type listener struct {
	id       Subscription
	pattern  compiled
	handler  Handler
	priority int
	once     bool
}

type tap struct {
	id Subscription
	fn func(Event)
}

// Dispatcher fans named events out to pattern-matched listeners
//
// Architecture:
//   - Listeners kept in one slice sorted by priority desc, registration order asc
//   - Emit dispatches synchronously on the caller's goroutine
//   - EmitDeferred is safe from any goroutine; Flush dispatches the backlog on the
//     caller's goroutine (the game loop)
//   - Handlers run outside the lock and may call On/Off/Emit re-entrantly
//   - Taps observe every dispatched event after listeners, regardless of matching
type Dispatcher struct {
	mu        sync.RWMutex
	listeners []*listener
	taps      []tap
	nextID    Subscription

	seq     atomic.Uint64
	queue   *Queue
	history *History
	logger  zerolog.Logger
	now     func() time.Time

	// Flush goroutine only
	loggedDrops uint64
}

// NewDispatcher creates a dispatcher with default history size and a disabled logger
func NewDispatcher(opts ...Option) *Dispatcher {
	d := &Dispatcher{
		queue:   NewQueue(),
		history: NewHistory(parameter.EventHistorySize),
		logger:  zerolog.Nop(),
		now:     time.Now,
	}
	for _, opt := range opts {
		opt(d)
	}
	return d
}

// On registers handler for events matching pattern
// Panics on nil handler: registration is static wiring and a nil is a programming error
func (d *Dispatcher) On(pattern string, handler Handler, opts ...ListenerOption) Subscription {
	if handler == nil {
		panic("event: nil handler for pattern " + pattern)
	}

	l := &listener{pattern: compilePattern(pattern), handler: handler}
	for _, opt := range opts {
		opt(l)
	}

	d.mu.Lock()
	defer d.mu.Unlock()

	d.nextID++
	l.id = d.nextID

	// Insert after every listener with priority >= l.priority to keep ties in order
	idx := sort.Search(len(d.listeners), func(i int) bool {
		return d.listeners[i].priority < l.priority
	})
	d.listeners = append(d.listeners, nil)
	copy(d.listeners[idx+1:], d.listeners[idx:])
	d.listeners[idx] = l

	return l.id
}

// Once registers a listener removed after its first delivery
func (d *Dispatcher) Once(pattern string, handler Handler, opts ...ListenerOption) Subscription {
	return d.On(pattern, handler, append(opts, Once())...)
}

// Off removes a listener or tap; reports false for unknown ids
func (d *Dispatcher) Off(id Subscription) bool {
	d.mu.Lock()
	defer d.mu.Unlock()

	for i, l := range d.listeners {
		if l.id == id {
			d.listeners = append(d.listeners[:i], d.listeners[i+1:]...)
			return true
		}
	}
	for i, t := range d.taps {
		if t.id == id {
			d.taps = append(d.taps[:i], d.taps[i+1:]...)
			return true
		}
	}
	return false
}

// OffAll removes every listener registered with exactly this pattern, returning the count
func (d *Dispatcher) OffAll(pattern string) int {
	d.mu.Lock()
	defer d.mu.Unlock()

	kept := d.listeners[:0]
	removed := 0
	for _, l := range d.listeners {
		if l.pattern.raw == pattern {
			removed++
			continue
		}
		kept = append(kept, l)
	}
	clear(d.listeners[len(kept):])
	d.listeners = kept
	return removed
}

// Clear removes all listeners and taps
func (d *Dispatcher) Clear() {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.listeners = nil
	d.taps = nil
}

// Tap registers an observer called after listeners for every dispatched event
func (d *Dispatcher) Tap(fn func(Event)) Subscription {
	if fn == nil {
		panic("event: nil tap")
	}
	d.mu.Lock()
	defer d.mu.Unlock()
	d.nextID++
	d.taps = append(d.taps, tap{id: d.nextID, fn: fn})
	return d.nextID
}

// Emit dispatches synchronously and returns the joined handler errors
func (d *Dispatcher) Emit(name string, payload any) error {
	if name == "" {
		return ErrEmptyName
	}
	return d.dispatch(d.newEvent(name, payload))
}

// EmitDeferred queues the event for the next Flush; safe for concurrent use
func (d *Dispatcher) EmitDeferred(name string, payload any) error {
	if name == "" {
		return ErrEmptyName
	}
	d.queue.Push(d.newEvent(name, payload))
	return nil
}

// Flush dispatches queued events in FIFO order
// Events deferred by handlers during this call wait for the next Flush
func (d *Dispatcher) Flush() error {
	events := d.queue.Consume()
	if dropped := d.queue.Dropped(); dropped > d.loggedDrops {
		d.logger.Warn().Uint64("dropped", dropped-d.loggedDrops).Msg("deferred events overwritten")
		d.loggedDrops = dropped
	}
	if len(events) == 0 {
		return nil
	}
	var errs []error
	for _, ev := range events {
		if err := d.dispatch(ev); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

// Settle flushes repeatedly until the queue is empty or maxPasses is reached
// Used by the game loop so short put-chains from effects land in the same tick
func (d *Dispatcher) Settle(maxPasses int) error {
	var errs []error
	for i := 0; i < maxPasses && d.queue.Len() > 0; i++ {
		if err := d.Flush(); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

// Pending returns the approximate number of queued deferred events
func (d *Dispatcher) Pending() int {
	return d.queue.Len()
}

// Dropped returns how many deferred events were overwritten by a full queue
func (d *Dispatcher) Dropped() uint64 {
	return d.queue.Dropped()
}

// History returns dispatched events, oldest first
func (d *Dispatcher) History() []Event {
	return d.history.Events()
}

// ClearHistory drops the recorded history
func (d *Dispatcher) ClearHistory() {
	d.history.Clear()
}

// ListenerCount returns how many listeners would receive an event named name
func (d *Dispatcher) ListenerCount(name string) int {
	d.mu.RLock()
	defer d.mu.RUnlock()

	n := 0
	for _, l := range d.listeners {
		if l.pattern.match(name) {
			n++
		}
	}
	return n
}

func (d *Dispatcher) newEvent(name string, payload any) Event {
	return Event{
		ID:        ulid.Make(),
		Name:      name,
		Payload:   payload,
		Seq:       d.seq.Add(1),
		Timestamp: d.now(),
	}
}

// dispatch collects matching listeners under lock, removing one-shots before
// invocation so re-entrant emits cannot fire them twice
func (d *Dispatcher) dispatch(ev Event) error {
	d.mu.Lock()
	var targets []*listener
	kept := d.listeners[:0]
	for _, l := range d.listeners {
		matched := l.pattern.match(ev.Name)
		if matched {
			targets = append(targets, l)
		}
		if matched && l.once {
			continue
		}
		kept = append(kept, l)
	}
	clear(d.listeners[len(kept):])
	d.listeners = kept
	taps := append([]tap(nil), d.taps...)
	d.mu.Unlock()

	d.history.Record(ev)

	var errs []error
	for _, l := range targets {
		err := d.invoke(l, ev)
		if err == nil {
			continue
		}
		if errors.Is(err, ErrStopPropagation) {
			break
		}
		errs = append(errs, err)
	}

	for _, t := range taps {
		t.fn(ev)
	}

	return errors.Join(errs...)
}

func (d *Dispatcher) invoke(l *listener, ev Event) (err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("event: listener %q panicked on %q: %v", l.pattern.raw, ev.Name, r)
			d.logger.Error().Str("event", ev.Name).Str("pattern", l.pattern.raw).Interface("panic", r).Msg("listener panic")
		}
	}()
	if err = l.handler(ev); err != nil && !errors.Is(err, ErrStopPropagation) {
		d.logger.Debug().Err(err).Str("event", ev.Name).Str("pattern", l.pattern.raw).Msg("listener error")
		err = fmt.Errorf("event %q: %w", ev.Name, err)
	}
	return err
}
