package effect

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/lixenwraith/void-striker/event"
)

// Effect is a unit of work composable by Race and All
type Effect func(ec *Context) (any, error)

// reportSet tracks errors already emitted as error events within one handler tree
type reportSet struct {
	mu   sync.Mutex
	errs []error
}

// Context is handed to each effect handler invocation; forks and combinator
// branches receive child contexts sharing the same trigger event
type Context struct {
	m       *Manager
	ctx     context.Context
	cancel  context.CancelFunc
	name    string
	trigger event.Event
	forks   sync.WaitGroup
	reports *reportSet
}

// Context returns the cancellation context of this invocation
func (ec *Context) Context() context.Context { return ec.ctx }

// Trigger returns the event that started the handler
func (ec *Context) Trigger() event.Event { return ec.trigger }

// Name returns the effect name
func (ec *Context) Name() string { return ec.name }

// IsCancelled reports whether this context or an ancestor was cancelled
func (ec *Context) IsCancelled() bool { return ec.ctx.Err() != nil }

// Cancel cancels this context and everything forked from it
func (ec *Context) Cancel() { ec.cancel() }

// Call runs fn once the manager is not paused; a failure is also emitted as the error event
func (ec *Context) Call(fn func(ctx context.Context) (any, error)) (any, error) {
	if err := ec.waitResumed(); err != nil {
		return nil, err
	}

	v, err := ec.protect(fn)
	if ec.IsCancelled() {
		return nil, ErrCancelled
	}
	if err != nil {
		ec.m.report(ec, err)
		return nil, err
	}
	return v, nil
}

// Fork starts fn concurrently; the handler's task completes only after its forks
func (ec *Context) Fork(fn func(ec *Context) error) *Task {
	return ec.m.spawn(ec.ctx, ec.name+"/fork", ec.trigger, ec, fn)
}

// Put dispatches an event through the deferred queue; returns ErrCancelled without emitting once cancelled
func (ec *Context) Put(name string, payload any) error {
	if err := ec.waitResumed(); err != nil {
		return err
	}
	return ec.m.d.EmitDeferred(name, payload)
}

// Take waits for the next event matching pattern dispatched after the call
// timeout <= 0 waits until cancelled; the timeout does not run down while paused
func (ec *Context) Take(pattern string, timeout time.Duration) (event.Event, error) {
	return ec.TakeMatch(Match(pattern), timeout)
}

// TakeMatch is Take with an explicit matcher
func (ec *Context) TakeMatch(m Matcher, timeout time.Duration) (event.Event, error) {
	if ec.IsCancelled() {
		return event.Event{}, ErrCancelled
	}
	tk := ec.m.addTaker(m)
	ev, err := ec.pausableWait(timeout, tk.ch)
	if err != nil {
		ec.m.removeTaker(tk)
		// Delivery may have won against the timer
		select {
		case ev := <-tk.ch:
			if ec.IsCancelled() {
				return event.Event{}, ErrCancelled
			}
			return ev, nil
		default:
		}
	}
	return ev, err
}

// Delay sleeps for d of unpaused time
func (ec *Context) Delay(d time.Duration) error {
	if ec.IsCancelled() {
		return ErrCancelled
	}
	if d <= 0 {
		return nil
	}
	_, err := ec.pausableWait(d, nil)
	if errors.Is(err, ErrTimeout) {
		return nil
	}
	return err
}

// Race runs effects concurrently and returns the index and outcome of the first to finish
// The losers are cancelled; the handler still waits for them before completing
func (ec *Context) Race(effects ...Effect) (int, any, error) {
	if len(effects) == 0 {
		return -1, nil, nil
	}

	type outcome struct {
		idx int
		val any
		err error
	}

	ctx, cancel := context.WithCancel(ec.ctx)
	results := make(chan outcome, len(effects))
	for i, eff := range effects {
		child := ec.child(ctx)
		ec.forks.Add(1)
		go func() {
			defer ec.forks.Done()
			defer child.cancel()
			v, err := child.runEffect(eff)
			results <- outcome{idx: i, val: v, err: err}
		}()
	}

	first := <-results
	cancel()
	if first.err != nil && ec.IsCancelled() {
		return first.idx, nil, ErrCancelled
	}
	return first.idx, first.val, first.err
}

// All runs effects concurrently and returns every result in order
// The first failure cancels the remaining effects and is returned
func (ec *Context) All(effects ...Effect) ([]any, error) {
	results := make([]any, len(effects))
	g, gctx := errgroup.WithContext(ec.ctx)

	for i, eff := range effects {
		child := ec.child(gctx)
		g.Go(func() error {
			defer child.cancel()
			v, err := child.runEffect(eff)
			if err != nil {
				return err
			}
			results[i] = v
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		if ec.IsCancelled() {
			return nil, ErrCancelled
		}
		return nil, err
	}
	return results, nil
}

// TakeEffect wraps Take; the result is the event.Event
func TakeEffect(pattern string, timeout time.Duration) Effect {
	return func(ec *Context) (any, error) {
		ev, err := ec.Take(pattern, timeout)
		if err != nil {
			return nil, err
		}
		return ev, nil
	}
}

// DelayEffect wraps Delay; the result is the duration
func DelayEffect(d time.Duration) Effect {
	return func(ec *Context) (any, error) {
		if err := ec.Delay(d); err != nil {
			return nil, err
		}
		return d, nil
	}
}

// CallEffect wraps Call
func CallEffect(fn func(ctx context.Context) (any, error)) Effect {
	return func(ec *Context) (any, error) {
		return ec.Call(fn)
	}
}

func (ec *Context) child(parent context.Context) *Context {
	ctx, cancel := context.WithCancel(parent)
	return &Context{
		m:       ec.m,
		ctx:     ctx,
		cancel:  cancel,
		name:    ec.name,
		trigger: ec.trigger,
		reports: ec.reports,
	}
}

// runEffect runs eff, converts panics to errors and waits for forks started inside it
func (ec *Context) runEffect(eff Effect) (v any, err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("effect %q panicked: %v", ec.name, r)
		}
		ec.forks.Wait()
	}()
	return eff(ec)
}

func (ec *Context) protect(fn func(ctx context.Context) (any, error)) (v any, err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("call panicked: %v", r)
		}
	}()
	return fn(ec.ctx)
}

// waitResumed blocks while the manager is paused
func (ec *Context) waitResumed() error {
	if ec.IsCancelled() {
		return ErrCancelled
	}
	resumed, _ := ec.m.signals()
	select {
	case <-resumed:
		if ec.IsCancelled() {
			return ErrCancelled
		}
		return nil
	case <-ec.ctx.Done():
		return ErrCancelled
	}
}

// pausableWait waits for ch, cancellation, or d of unpaused time (ErrTimeout)
// d <= 0 disables the deadline; a nil ch never delivers
func (ec *Context) pausableWait(d time.Duration, ch <-chan event.Event) (event.Event, error) {
	remaining := d
	for {
		resumed, paused := ec.m.signals()

		select {
		case <-resumed:
		default:
			// Paused: events still arrive, the deadline is frozen
			select {
			case ev := <-ch:
				return ev, nil
			case <-ec.ctx.Done():
				return event.Event{}, ErrCancelled
			case <-resumed:
			}
			continue
		}

		var timer *time.Timer
		var expired <-chan time.Time
		if d > 0 {
			timer = time.NewTimer(remaining)
			expired = timer.C
		}
		started := time.Now()

		select {
		case ev := <-ch:
			stopTimer(timer)
			return ev, nil
		case <-ec.ctx.Done():
			stopTimer(timer)
			return event.Event{}, ErrCancelled
		case <-expired:
			return event.Event{}, ErrTimeout
		case <-paused:
			stopTimer(timer)
			if d > 0 {
				remaining -= time.Since(started)
				if remaining < 0 {
					remaining = 0
				}
			}
		}
	}
}

func stopTimer(t *time.Timer) {
	if t != nil {
		t.Stop()
	}
}

func (ec *Context) alreadyReported(err error) bool {
	ec.reports.mu.Lock()
	defer ec.reports.mu.Unlock()
	for _, r := range ec.reports.errs {
		if errors.Is(err, r) {
			return true
		}
	}
	return false
}

func (ec *Context) markReported(err error) {
	ec.reports.mu.Lock()
	ec.reports.errs = append(ec.reports.errs, err)
	ec.reports.mu.Unlock()
}
