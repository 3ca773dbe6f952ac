package effect

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/lixenwraith/void-striker/event"
)

// runHandler registers fn on "start", emits it and returns the handler's result
func runHandler(t *testing.T, d *event.Dispatcher, m *Manager, fn Handler) <-chan error {
	t.Helper()
	result := make(chan error, 1)
	_, _ = m.On("start", func(ec *Context, ev event.Event) error {
		err := fn(ec, ev)
		result <- err
		return err
	}, Once())
	_ = d.Emit("start", nil)
	return result
}

func await(t *testing.T, ch <-chan error) error {
	t.Helper()
	select {
	case err := <-ch:
		return err
	case <-time.After(2 * time.Second):
		t.Fatal("Expected handler to finish within 2s")
		return nil
	}
}

func TestTakeReceivesNextEvent(t *testing.T) {
	d, m := newTestManager(t)
	var got event.Event
	res := runHandler(t, d, m, func(ec *Context, _ event.Event) error {
		ev, err := ec.Take("story.*", time.Second)
		got = ev
		return err
	})

	waitFor(t, "take registered", func() bool { return m.Waiting() == 1 })
	_ = d.Emit("enemy.spawned", nil)
	_ = d.Emit("story.advance", "next")

	if err := await(t, res); err != nil {
		t.Fatalf("Expected take to succeed, got %v", err)
	}
	if got.Name != "story.advance" || got.Payload != "next" {
		t.Errorf("Expected story.advance/next, got %s/%v", got.Name, got.Payload)
	}
	if m.Waiting() != 0 {
		t.Error("Expected taker removed after delivery")
	}
}

func TestTakeTimeout(t *testing.T) {
	d, m := newTestManager(t)
	res := runHandler(t, d, m, func(ec *Context, _ event.Event) error {
		_, err := ec.Take("never", 20*time.Millisecond)
		return err
	})

	if err := await(t, res); !errors.Is(err, ErrTimeout) {
		t.Errorf("Expected ErrTimeout, got %v", err)
	}
	if m.Waiting() != 0 {
		t.Error("Expected taker removed after timeout")
	}
}

func TestTakeDoesNotSeeTriggeringEvent(t *testing.T) {
	d, m := newTestManager(t)
	res := runHandler(t, d, m, func(ec *Context, _ event.Event) error {
		_, err := ec.Take("start", 30*time.Millisecond)
		return err
	})
	if err := await(t, res); !errors.Is(err, ErrTimeout) {
		t.Errorf("Expected take to ignore its own trigger, got %v", err)
	}
}

func TestRaceFirstWins(t *testing.T) {
	d, m := newTestManager(t)
	var idx int
	var val any
	res := runHandler(t, d, m, func(ec *Context, _ event.Event) error {
		var err error
		idx, val, err = ec.Race(
			DelayEffect(time.Hour),
			TakeEffect("boss.defeated", 0),
		)
		return err
	})

	waitFor(t, "take registered", func() bool { return m.Waiting() == 1 })
	_ = d.Emit("boss.defeated", 7)

	if err := await(t, res); err != nil {
		t.Fatalf("Unexpected race error: %v", err)
	}
	if idx != 1 {
		t.Errorf("Expected take to win, got index %d", idx)
	}
	if ev, ok := val.(event.Event); !ok || ev.Payload != 7 {
		t.Errorf("Expected winning event payload 7, got %v", val)
	}

	// Loser must be cancelled or Wait would hang on the hour-long delay
	done := make(chan struct{})
	go func() { m.Wait(); close(done) }()
	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("Expected losing branch to be cancelled")
	}
}

func TestRaceTimeoutBranch(t *testing.T) {
	d, m := newTestManager(t)
	var idx int
	res := runHandler(t, d, m, func(ec *Context, _ event.Event) error {
		var err error
		idx, _, err = ec.Race(TakeEffect("powerup.collected", 0), DelayEffect(10*time.Millisecond))
		return err
	})
	if err := await(t, res); err != nil {
		t.Fatal(err)
	}
	if idx != 1 {
		t.Errorf("Expected delay to win, got %d", idx)
	}
}

func TestAllCollectsInOrder(t *testing.T) {
	d, m := newTestManager(t)
	var out []any
	res := runHandler(t, d, m, func(ec *Context, _ event.Event) error {
		var err error
		out, err = ec.All(
			func(ec *Context) (any, error) {
				if err := ec.Delay(15 * time.Millisecond); err != nil {
					return nil, err
				}
				return "slow", nil
			},
			CallEffect(func(context.Context) (any, error) { return "fast", nil }),
		)
		return err
	})

	if err := await(t, res); err != nil {
		t.Fatal(err)
	}
	if len(out) != 2 || out[0] != "slow" || out[1] != "fast" {
		t.Errorf("Expected [slow fast], got %v", out)
	}
}

func TestAllFailureCancelsSiblings(t *testing.T) {
	d, m := newTestManager(t)
	boom := errors.New("boom")
	sibling := make(chan error, 1)
	res := runHandler(t, d, m, func(ec *Context, _ event.Event) error {
		_, err := ec.All(
			func(ec *Context) (any, error) {
				err := ec.Delay(time.Hour)
				sibling <- err
				return nil, err
			},
			func(*Context) (any, error) { return nil, boom },
		)
		return err
	})

	if err := await(t, res); !errors.Is(err, boom) {
		t.Errorf("Expected boom, got %v", err)
	}
	if err := <-sibling; !errors.Is(err, ErrCancelled) {
		t.Errorf("Expected sibling cancelled, got %v", err)
	}
}

func TestForkTrackedAndCancelled(t *testing.T) {
	d, m := newTestManager(t)
	forked := make(chan *Task, 1)
	res := runHandler(t, d, m, func(ec *Context, _ event.Event) error {
		forked <- ec.Fork(func(ec *Context) error { return ec.Delay(time.Hour) })
		return nil
	})

	if err := await(t, res); err != nil {
		t.Fatal(err)
	}
	task := <-forked
	if m.Running() != 2 {
		t.Errorf("Expected parent to wait for its fork, running=%d", m.Running())
	}

	task.Cancel()
	if err := task.Wait(); !errors.Is(err, ErrCancelled) {
		t.Errorf("Expected fork cancelled, got %v", err)
	}
	m.Wait()
	if m.Running() != 0 {
		t.Errorf("Expected no tasks left, got %d", m.Running())
	}
}

func TestCancelStopsOperations(t *testing.T) {
	d, m := newTestManager(t)
	res := runHandler(t, d, m, func(ec *Context, _ event.Event) error {
		ec.Cancel()
		if !ec.IsCancelled() {
			return errors.New("expected cancelled")
		}
		if _, err := ec.Call(func(context.Context) (any, error) { return 1, nil }); !errors.Is(err, ErrCancelled) {
			return errors.New("expected Call to report cancellation")
		}
		if err := ec.Put("x", nil); !errors.Is(err, ErrCancelled) {
			return errors.New("expected Put to report cancellation")
		}
		return nil
	})
	if err := await(t, res); err != nil {
		t.Errorf("Unexpected error: %v", err)
	}
	m.Wait()
	if d.Pending() != 0 {
		t.Error("Expected cancelled Put not to emit")
	}
}
