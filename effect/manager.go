// Package effect runs saga-style side effects in response to dispatched events
//
// Effect handlers receive a Context exposing declarative operations (Call, Fork, Put,
// Take, Race, All, Delay) that honour cancellation and game pause. Handlers run on their
// own goroutines; Put goes through the dispatcher's deferred queue so listeners still
// execute on the game loop goroutine.
package effect

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"sync"
	"sync/atomic"

	"github.com/rs/zerolog"

	"github.com/lixenwraith/void-striker/event"
)

var (
	// ErrCancelled is returned by context operations after cancellation
	ErrCancelled = errors.New("effect: cancelled")

	// ErrTimeout is returned by Take when no matching event arrived in time
	ErrTimeout = errors.New("effect: take timed out")

	// ErrClosed is returned when registering on a closed manager
	ErrClosed = errors.New("effect: manager closed")
)

// Default control event names
const (
	DefaultCleanupEvent = "game.cleanup"
	DefaultPauseEvent   = "game.pause"
	DefaultResumeEvent  = "game.resume"
	DefaultErrorEvent   = "effect.error"
)

// Handler is an effect body started for a matching event
type Handler func(ec *Context, ev event.Event) error

// ErrorPayload is carried by the error event
type ErrorPayload struct {
	Effect string
	Event  string
	Err    error
}

// ID identifies a registered effect
type ID uint64

// Option configures a registration
type Option func(*registration)

// WithPriority orders effects started by the same event; higher starts first
func WithPriority(p int) Option {
	return func(r *registration) { r.priority = p }
}

// Once unregisters the effect after it first starts
func Once() Option {
	return func(r *registration) { r.once = true }
}

// WithName labels the effect in logs and error payloads
func WithName(name string) Option {
	return func(r *registration) { r.name = name }
}

// ManagerOption configures a Manager
type ManagerOption func(*Manager)

// WithCleanupEvent sets the event that cancels every running effect
func WithCleanupEvent(name string) ManagerOption {
	return func(m *Manager) { m.cleanupEvent = name }
}

// WithPauseEvents sets the events that pause and resume effect timers
func WithPauseEvents(pause, resume string) ManagerOption {
	return func(m *Manager) { m.pauseEvent, m.resumeEvent = pause, resume }
}

// WithErrorEvent sets the event emitted when a Call or handler fails
func WithErrorEvent(name string) ManagerOption {
	return func(m *Manager) { m.errorEvent = name }
}

// WithLogger routes effect failures to logger
func WithLogger(logger zerolog.Logger) ManagerOption {
	return func(m *Manager) { m.logger = logger }
}

type registration struct {
	id       ID
	name     string
	matcher  Matcher
	handler  Handler
	priority int
	once     bool
}

type taker struct {
	id      uint64
	matcher Matcher
	ch      chan event.Event // buffered 1; delivered at most once
}

// Manager matches dispatched events against registered effects and runs them
//
// Thread-Safety:
//   - Register/Unregister/CancelAll/Pause/Resume safe from any goroutine
//   - Events are observed through a dispatcher tap on the dispatching goroutine
//   - Handlers run concurrently; each gets its own Context
type Manager struct {
	d     *event.Dispatcher
	tapID event.Subscription

	mu        sync.Mutex
	regs      []*registration
	nextID    ID
	takers    []*taker
	nextTaker uint64
	tasks     map[*Task]struct{}

	root       context.Context
	rootCancel context.CancelFunc
	gen        context.Context // replaced on CancelAll
	genCancel  context.CancelFunc
	wg         sync.WaitGroup
	closed     atomic.Bool

	pauseMu  sync.Mutex
	paused   bool
	resumeCh chan struct{} // closed while running
	pauseCh  chan struct{} // closed while paused

	cleanupEvent string
	pauseEvent   string
	resumeEvent  string
	errorEvent   string
	logger       zerolog.Logger
}

// NewManager creates a manager observing d
func NewManager(d *event.Dispatcher, opts ...ManagerOption) *Manager {
	m := &Manager{
		d:            d,
		tasks:        make(map[*Task]struct{}),
		resumeCh:     make(chan struct{}),
		pauseCh:      make(chan struct{}),
		cleanupEvent: DefaultCleanupEvent,
		pauseEvent:   DefaultPauseEvent,
		resumeEvent:  DefaultResumeEvent,
		errorEvent:   DefaultErrorEvent,
		logger:       zerolog.Nop(),
	}
	close(m.resumeCh)
	for _, opt := range opts {
		opt(m)
	}

	m.root, m.rootCancel = context.WithCancel(context.Background())
	m.gen, m.genCancel = context.WithCancel(m.root)
	m.tapID = d.Tap(m.observe)
	return m
}

// Register adds an effect; effects started by one event run in priority order
func (m *Manager) Register(matcher Matcher, h Handler, opts ...Option) (ID, error) {
	if h == nil {
		panic("effect: nil handler for " + matcher.String())
	}
	if m.closed.Load() {
		return 0, ErrClosed
	}

	r := &registration{matcher: matcher, handler: h, name: matcher.String()}
	for _, opt := range opts {
		opt(r)
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	m.nextID++
	r.id = m.nextID

	idx := sort.Search(len(m.regs), func(i int) bool { return m.regs[i].priority < r.priority })
	m.regs = append(m.regs, nil)
	copy(m.regs[idx+1:], m.regs[idx:])
	m.regs[idx] = r
	return r.id, nil
}

// On is Register with Match(pattern)
func (m *Manager) On(pattern string, h Handler, opts ...Option) (ID, error) {
	return m.Register(Match(pattern), h, opts...)
}

// Unregister removes an effect; running tasks are not affected
func (m *Manager) Unregister(id ID) bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	for i, r := range m.regs {
		if r.id == id {
			m.regs = append(m.regs[:i], m.regs[i+1:]...)
			return true
		}
	}
	return false
}

// Registered returns the number of registered effects
func (m *Manager) Registered() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.regs)
}

// Running returns the number of tasks in flight, forks included
func (m *Manager) Running() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.tasks)
}

// Waiting returns the number of Take calls blocked on an event
func (m *Manager) Waiting() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.takers)
}

// CancelAll cancels every running task and pending Take; registrations stay
func (m *Manager) CancelAll() {
	m.mu.Lock()
	cancel := m.genCancel
	m.gen, m.genCancel = context.WithCancel(m.root)
	m.mu.Unlock()
	cancel()
}

// Pause freezes Delay and Take timeouts and blocks Call/Put until Resume
func (m *Manager) Pause() {
	m.pauseMu.Lock()
	defer m.pauseMu.Unlock()
	if m.paused {
		return
	}
	m.paused = true
	m.resumeCh = make(chan struct{})
	close(m.pauseCh)
}

// Resume releases paused effects
func (m *Manager) Resume() {
	m.pauseMu.Lock()
	defer m.pauseMu.Unlock()
	if !m.paused {
		return
	}
	m.paused = false
	m.pauseCh = make(chan struct{})
	close(m.resumeCh)
}

// IsPaused reports pause state
func (m *Manager) IsPaused() bool {
	m.pauseMu.Lock()
	defer m.pauseMu.Unlock()
	return m.paused
}

// signals returns the channels describing the current pause state
func (m *Manager) signals() (resumed, paused <-chan struct{}) {
	m.pauseMu.Lock()
	defer m.pauseMu.Unlock()
	return m.resumeCh, m.pauseCh
}

// Wait blocks until every task has finished
func (m *Manager) Wait() {
	m.wg.Wait()
}

// Close cancels all tasks, detaches from the dispatcher and waits
func (m *Manager) Close() {
	if !m.closed.CompareAndSwap(false, true) {
		return
	}
	m.d.Off(m.tapID)
	m.rootCancel()
	m.Resume()
	m.wg.Wait()
}

// observe runs on the dispatching goroutine for every event
func (m *Manager) observe(ev event.Event) {
	if m.closed.Load() {
		return
	}

	switch ev.Name {
	case m.cleanupEvent:
		m.CancelAll()
	case m.pauseEvent:
		m.Pause()
	case m.resumeEvent:
		m.Resume()
	}

	m.mu.Lock()
	// Takers first so a handler started by this event cannot consume it with Take
	keptTakers := m.takers[:0]
	for _, tk := range m.takers {
		if tk.matcher.Match(ev.Name) {
			tk.ch <- ev
			continue
		}
		keptTakers = append(keptTakers, tk)
	}
	clear(m.takers[len(keptTakers):])
	m.takers = keptTakers

	var start []*registration
	keptRegs := m.regs[:0]
	for _, r := range m.regs {
		matched := r.matcher.Match(ev.Name)
		if matched {
			start = append(start, r)
		}
		if matched && r.once {
			continue
		}
		keptRegs = append(keptRegs, r)
	}
	clear(m.regs[len(keptRegs):])
	m.regs = keptRegs
	gen := m.gen
	m.mu.Unlock()

	for _, r := range start {
		r := r
		m.spawn(gen, r.name, ev, nil, func(ec *Context) error { return r.handler(ec, ev) })
	}
}

// spawn starts fn on a new goroutine under parent; parentCtx is the forking Context, if any
func (m *Manager) spawn(parent context.Context, name string, trigger event.Event, parentCtx *Context, fn func(*Context) error) *Task {
	ctx, cancel := context.WithCancel(parent)
	ec := &Context{m: m, ctx: ctx, cancel: cancel, name: name, trigger: trigger, reports: &reportSet{}}
	if parentCtx != nil {
		ec.reports = parentCtx.reports
	}
	t := &Task{name: name, cancel: cancel, done: make(chan struct{})}

	m.mu.Lock()
	m.tasks[t] = struct{}{}
	m.mu.Unlock()

	m.wg.Add(1)
	if parentCtx != nil {
		parentCtx.forks.Add(1)
	}
	go func() {
		defer m.wg.Done()
		if parentCtx != nil {
			defer parentCtx.forks.Done()
		}

		err := m.run(ec, fn)
		ec.forks.Wait()
		cancel()

		m.mu.Lock()
		delete(m.tasks, t)
		m.mu.Unlock()
		t.finish(err)
	}()
	return t
}

func (m *Manager) run(ec *Context, fn func(*Context) error) (err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("effect %q panicked: %v", ec.name, r)
			m.logger.Error().Str("effect", ec.name).Interface("panic", r).Msg("effect panic")
			m.report(ec, err)
		}
	}()

	err = fn(ec)
	switch {
	case err == nil:
	case errors.Is(err, ErrCancelled), errors.Is(err, context.Canceled):
		// Cancellation is a normal outcome, not a failure
		err = ErrCancelled
	case ec.alreadyReported(err):
	default:
		m.report(ec, err)
	}
	return err
}

// report emits the error event; never blocks on pause
func (m *Manager) report(ec *Context, err error) {
	ec.markReported(err)
	m.logger.Warn().Err(err).Str("effect", ec.name).Str("event", ec.trigger.Name).Msg("effect failed")
	if m.errorEvent == "" {
		return
	}
	_ = m.d.EmitDeferred(m.errorEvent, ErrorPayload{Effect: ec.name, Event: ec.trigger.Name, Err: err})
}

func (m *Manager) addTaker(matcher Matcher) *taker {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.nextTaker++
	tk := &taker{id: m.nextTaker, matcher: matcher, ch: make(chan event.Event, 1)}
	m.takers = append(m.takers, tk)
	return tk
}

func (m *Manager) removeTaker(tk *taker) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for i, x := range m.takers {
		if x == tk {
			m.takers = append(m.takers[:i], m.takers[i+1:]...)
			return
		}
	}
}
