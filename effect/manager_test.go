package effect

import (
	"context"
	"errors"
	"regexp"
	"sync/atomic"
	"testing"
	"time"

	"github.com/lixenwraith/void-striker/event"
)

func newTestManager(t *testing.T) (*event.Dispatcher, *Manager) {
	t.Helper()
	d := event.NewDispatcher()
	m := NewManager(d)
	t.Cleanup(m.Close)
	return d, m
}

func waitFor(t *testing.T, what string, cond func() bool) {
	t.Helper()
	deadline := time.Now().Add(2 * time.Second)
	for !cond() {
		if time.Now().After(deadline) {
			t.Fatalf("Expected %s within 2s", what)
		}
		time.Sleep(time.Millisecond)
	}
}

func TestRegisterPriorityOrder(t *testing.T) {
	_, m := newTestManager(t)
	noop := func(*Context, event.Event) error { return nil }

	_, _ = m.On("a", noop, WithName("low"), WithPriority(-1))
	_, _ = m.On("a", noop, WithName("first"))
	_, _ = m.On("a", noop, WithName("high"), WithPriority(5))
	_, _ = m.On("a", noop, WithName("second"))

	want := []string{"high", "first", "second", "low"}
	for i, r := range m.regs {
		if r.name != want[i] {
			t.Errorf("Position %d: expected %s, got %s", i, want[i], r.name)
		}
	}
}

func TestOnceEffect(t *testing.T) {
	d, m := newTestManager(t)
	var runs atomic.Int32
	_, _ = m.On("level.start", func(*Context, event.Event) error {
		runs.Add(1)
		return nil
	}, Once())

	_ = d.Emit("level.start", nil)
	_ = d.Emit("level.start", nil)
	m.Wait()

	if runs.Load() != 1 {
		t.Errorf("Expected once effect to run 1 time, ran %d", runs.Load())
	}
	if m.Registered() != 0 {
		t.Errorf("Expected once effect unregistered, got %d", m.Registered())
	}
}

func TestMatcherKinds(t *testing.T) {
	d, m := newTestManager(t)
	var exact, glob, re atomic.Int32
	_, _ = m.Register(Exact("enemy.destroyed"), func(*Context, event.Event) error { exact.Add(1); return nil })
	_, _ = m.Register(Glob("enemy.*"), func(*Context, event.Event) error { glob.Add(1); return nil })
	_, _ = m.Register(Regexp(regexp.MustCompile(`^(enemy|boss)\.spawned$`)), func(*Context, event.Event) error { re.Add(1); return nil })

	_ = d.Emit("enemy.destroyed", nil)
	_ = d.Emit("enemy.spawned", nil)
	_ = d.Emit("boss.spawned", nil)
	m.Wait()

	if exact.Load() != 1 || glob.Load() != 2 || re.Load() != 2 {
		t.Errorf("Expected exact=1 glob=2 regexp=2, got %d %d %d", exact.Load(), glob.Load(), re.Load())
	}
}

func TestUnregister(t *testing.T) {
	d, m := newTestManager(t)
	var runs atomic.Int32
	id, _ := m.On("x", func(*Context, event.Event) error { runs.Add(1); return nil })
	if !m.Unregister(id) {
		t.Fatal("Expected Unregister to find effect")
	}
	if m.Unregister(id) {
		t.Error("Expected second Unregister to report false")
	}
	_ = d.Emit("x", nil)
	m.Wait()
	if runs.Load() != 0 {
		t.Error("Expected unregistered effect not to run")
	}
}

func TestCallErrorEmitsErrorEventOnce(t *testing.T) {
	d, m := newTestManager(t)
	boom := errors.New("boom")
	var payloads []ErrorPayload
	d.On(DefaultErrorEvent, func(ev event.Event) error {
		p, _ := event.PayloadAs[ErrorPayload](ev)
		payloads = append(payloads, p)
		return nil
	})

	_, _ = m.On("score.save", func(ec *Context, _ event.Event) error {
		_, err := ec.Call(func(context.Context) (any, error) { return nil, boom })
		return err
	}, WithName("saver"))

	_ = d.Emit("score.save", nil)
	m.Wait()
	_ = d.Flush()

	if len(payloads) != 1 {
		t.Fatalf("Expected 1 error event, got %d", len(payloads))
	}
	if payloads[0].Effect != "saver" || payloads[0].Event != "score.save" || !errors.Is(payloads[0].Err, boom) {
		t.Errorf("Unexpected payload %+v", payloads[0])
	}
}

func TestHandlerPanicReported(t *testing.T) {
	d, m := newTestManager(t)
	reported := 0
	d.On(DefaultErrorEvent, func(event.Event) error { reported++; return nil })

	_, _ = m.On("x", func(*Context, event.Event) error { panic("broken saga") })
	_ = d.Emit("x", nil)
	m.Wait()
	_ = d.Flush()

	if reported != 1 {
		t.Errorf("Expected panic reported once, got %d", reported)
	}
}

func TestCancelAllOnCleanupEvent(t *testing.T) {
	d, m := newTestManager(t)
	result := make(chan error, 1)
	_, _ = m.On("boss.spawned", func(ec *Context, _ event.Event) error {
		err := ec.Delay(time.Hour)
		result <- err
		return err
	})

	_ = d.Emit("boss.spawned", nil)
	waitFor(t, "effect running", func() bool { return m.Running() == 1 })
	_ = d.Emit(DefaultCleanupEvent, nil)

	select {
	case err := <-result:
		if !errors.Is(err, ErrCancelled) {
			t.Errorf("Expected ErrCancelled, got %v", err)
		}
	case <-time.After(2 * time.Second):
		t.Fatal("Expected cleanup to cancel the delay")
	}
	m.Wait()

	if m.Registered() != 1 {
		t.Error("Expected effect to stay registered after cleanup")
	}

	// New events after cleanup start fresh tasks
	_ = d.Emit("boss.spawned", nil)
	waitFor(t, "effect restarted", func() bool { return m.Running() == 1 })
	m.CancelAll()
	m.Wait()
}

func TestPauseFreezesDelay(t *testing.T) {
	d, m := newTestManager(t)
	done := make(chan struct{})
	_, _ = m.On("go", func(ec *Context, _ event.Event) error {
		err := ec.Delay(40 * time.Millisecond)
		close(done)
		return err
	})

	_ = d.Emit("go", nil)
	_ = d.Emit(DefaultPauseEvent, nil)
	if !m.IsPaused() {
		t.Fatal("Expected pause event to pause manager")
	}

	select {
	case <-done:
		t.Fatal("Expected delay to stay frozen while paused")
	case <-time.After(120 * time.Millisecond):
	}

	_ = d.Emit(DefaultResumeEvent, nil)
	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("Expected delay to finish after resume")
	}
}

func TestPauseFreezesTakeTimeout(t *testing.T) {
	d, m := newTestManager(t)
	result := make(chan error, 1)
	_, _ = m.On("go", func(ec *Context, _ event.Event) error {
		_, err := ec.Take("never", 40*time.Millisecond)
		result <- err
		return nil
	})

	_ = d.Emit("go", nil)
	waitFor(t, "take waiting", func() bool { return m.Waiting() == 1 })
	m.Pause()

	select {
	case err := <-result:
		t.Fatalf("Expected take timeout frozen while paused, got %v", err)
	case <-time.After(120 * time.Millisecond):
	}

	m.Resume()
	select {
	case err := <-result:
		if !errors.Is(err, ErrTimeout) {
			t.Errorf("Expected ErrTimeout after resume, got %v", err)
		}
	case <-time.After(2 * time.Second):
		t.Fatal("Expected take to time out after resume")
	}
	m.Wait()
}

func TestPausedTakeStillReceivesEvents(t *testing.T) {
	d, m := newTestManager(t)
	result := make(chan string, 1)
	_, _ = m.On("go", func(ec *Context, _ event.Event) error {
		ev, err := ec.Take("answer", time.Second)
		if err != nil {
			result <- err.Error()
			return nil
		}
		result <- ev.Name
		return nil
	})

	_ = d.Emit("go", nil)
	waitFor(t, "take waiting", func() bool { return m.Waiting() == 1 })
	m.Pause()
	_ = d.Emit("answer", nil)

	select {
	case got := <-result:
		if got != "answer" {
			t.Errorf("Expected answer delivered while paused, got %s", got)
		}
	case <-time.After(2 * time.Second):
		t.Fatal("Expected take to receive event while paused")
	}
	m.Resume()
	m.Wait()
}

func TestPutWaitsForResume(t *testing.T) {
	d, m := newTestManager(t)
	m.Pause()
	_, _ = m.On("go", func(ec *Context, _ event.Event) error {
		return ec.Put("level.complete", 3)
	})

	_ = d.Emit("go", nil)
	time.Sleep(30 * time.Millisecond)
	if d.Pending() != 0 {
		t.Fatal("Expected Put to block while paused")
	}

	m.Resume()
	waitFor(t, "put after resume", func() bool { return d.Pending() == 1 })
	m.Wait()

	var got []event.Event
	d.On("level.complete", func(ev event.Event) error { got = append(got, ev); return nil })
	_ = d.Flush()
	if len(got) != 1 || got[0].Payload != 3 {
		t.Errorf("Expected level.complete with payload 3, got %v", got)
	}
}

func TestCloseRejectsRegistration(t *testing.T) {
	d := event.NewDispatcher()
	m := NewManager(d)
	m.Close()
	m.Close()

	if _, err := m.On("x", func(*Context, event.Event) error { return nil }); !errors.Is(err, ErrClosed) {
		t.Errorf("Expected ErrClosed, got %v", err)
	}
}
