package event

import (
	"bytes"
	"errors"
	"strings"
	"sync"
	"testing"

	"github.com/rs/zerolog"

	"github.com/lixenwraith/void-striker/parameter"
)

func TestEmitPriorityOrder(t *testing.T) {
	d := NewDispatcher()
	var order []string

	d.On("player.hit", func(Event) error { order = append(order, "low"); return nil }, WithPriority(-5))
	d.On("player.hit", func(Event) error { order = append(order, "default-1"); return nil })
	d.On("player.*", func(Event) error { order = append(order, "high"); return nil }, WithPriority(10))
	d.On("player.hit", func(Event) error { order = append(order, "default-2"); return nil })

	if err := d.Emit("player.hit", nil); err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}

	want := []string{"high", "default-1", "default-2", "low"}
	if len(order) != len(want) {
		t.Fatalf("Expected %v, got %v", want, order)
	}
	for i := range want {
		if order[i] != want[i] {
			t.Errorf("Position %d: expected %s, got %s", i, want[i], order[i])
		}
	}
}

func TestOnceListener(t *testing.T) {
	d := NewDispatcher()
	calls := 0
	d.Once("boss.spawned", func(Event) error {
		calls++
		// Re-entrant emit must not fire the one-shot again
		_ = d.Emit("boss.spawned", nil)
		return nil
	})

	_ = d.Emit("boss.spawned", nil)
	_ = d.Emit("boss.spawned", nil)

	if calls != 1 {
		t.Errorf("Expected one-shot to fire once, fired %d times", calls)
	}
	if d.ListenerCount("boss.spawned") != 0 {
		t.Errorf("Expected no listeners left, got %d", d.ListenerCount("boss.spawned"))
	}
}

func TestStopPropagation(t *testing.T) {
	d := NewDispatcher()
	reached := false
	d.On("menu.select", func(Event) error { return ErrStopPropagation }, WithPriority(1))
	d.On("menu.select", func(Event) error { reached = true; return nil })

	if err := d.Emit("menu.select", nil); err != nil {
		t.Errorf("Expected stop propagation not to surface as error, got %v", err)
	}
	if reached {
		t.Error("Expected lower priority listener to be skipped")
	}
}

func TestEmitCollectsErrorsAndPanics(t *testing.T) {
	d := NewDispatcher()
	boom := errors.New("boom")
	after := false

	d.On("x", func(Event) error { return boom }, WithPriority(2))
	d.On("x", func(Event) error { panic("bad handler") }, WithPriority(1))
	d.On("x", func(Event) error { after = true; return nil })

	err := d.Emit("x", nil)
	if !errors.Is(err, boom) {
		t.Errorf("Expected joined error to wrap boom, got %v", err)
	}
	if !after {
		t.Error("Expected listeners after a failing one to still run")
	}
}

func TestEmitEmptyName(t *testing.T) {
	d := NewDispatcher()
	if err := d.Emit("", nil); !errors.Is(err, ErrEmptyName) {
		t.Errorf("Expected ErrEmptyName, got %v", err)
	}
	if err := d.EmitDeferred("", nil); !errors.Is(err, ErrEmptyName) {
		t.Errorf("Expected ErrEmptyName for deferred, got %v", err)
	}
}

func TestOffAndOffAll(t *testing.T) {
	d := NewDispatcher()
	noop := func(Event) error { return nil }

	id := d.On("a", noop)
	d.On("a", noop)
	d.On("b", noop)

	if !d.Off(id) {
		t.Error("Expected Off to remove known listener")
	}
	if d.Off(id) {
		t.Error("Expected second Off to report false")
	}
	if n := d.OffAll("a"); n != 1 {
		t.Errorf("Expected OffAll to remove 1, removed %d", n)
	}
	if d.ListenerCount("a") != 0 || d.ListenerCount("b") != 1 {
		t.Errorf("Unexpected listener counts a=%d b=%d", d.ListenerCount("a"), d.ListenerCount("b"))
	}
}

func TestDeferredFlush(t *testing.T) {
	d := NewDispatcher()
	var got []string

	d.On("*", func(ev Event) error {
		got = append(got, ev.Name)
		if ev.Name == "first" {
			_ = d.EmitDeferred("chained", nil)
		}
		return nil
	})

	_ = d.EmitDeferred("first", nil)
	_ = d.EmitDeferred("second", nil)
	if len(got) != 0 {
		t.Fatal("Expected deferred events not to dispatch before Flush")
	}

	_ = d.Flush()
	if len(got) != 2 || got[0] != "first" || got[1] != "second" {
		t.Fatalf("Expected [first second], got %v", got)
	}
	if d.Pending() != 1 {
		t.Fatalf("Expected chained event pending, got %d", d.Pending())
	}

	_ = d.Flush()
	if len(got) != 3 || got[2] != "chained" {
		t.Errorf("Expected chained event on second flush, got %v", got)
	}
}

func TestDeferredOverflowCountsDrops(t *testing.T) {
	var buf bytes.Buffer
	d := NewDispatcher(WithLogger(zerolog.New(&buf)))
	delivered := 0
	d.On("flood", func(Event) error { delivered++; return nil })

	for i := 0; i < parameter.EventQueueSize+5; i++ {
		_ = d.EmitDeferred("flood", i)
	}
	_ = d.Flush()

	if delivered != parameter.EventQueueSize {
		t.Errorf("Expected %d delivered, got %d", parameter.EventQueueSize, delivered)
	}
	if d.Dropped() != 5 {
		t.Errorf("Expected 5 dropped, got %d", d.Dropped())
	}
	if !strings.Contains(buf.String(), `"dropped":5`) {
		t.Errorf("Expected drop warning logged, got %q", buf.String())
	}

	buf.Reset()
	_ = d.EmitDeferred("flood", nil)
	_ = d.Flush()
	if buf.Len() != 0 {
		t.Errorf("Expected no repeated warning without new drops, got %q", buf.String())
	}
}

func TestSettleDrainsChains(t *testing.T) {
	d := NewDispatcher()
	depth := 0
	d.On("step", func(Event) error {
		depth++
		if depth < 4 {
			_ = d.EmitDeferred("step", nil)
		}
		return nil
	})

	_ = d.EmitDeferred("step", nil)
	_ = d.Settle(8)

	if depth != 4 {
		t.Errorf("Expected chain depth 4, got %d", depth)
	}
}

func TestHistoryAndTap(t *testing.T) {
	d := NewDispatcher(WithHistorySize(2))
	var tapped []string
	sub := d.Tap(func(ev Event) { tapped = append(tapped, ev.Name) })

	_ = d.Emit("one", 1)
	_ = d.Emit("two", 2)
	_ = d.Emit("three", 3)

	history := d.History()
	if len(history) != 2 || history[0].Name != "two" || history[1].Name != "three" {
		t.Errorf("Expected history [two three], got %v", history)
	}
	if history[0].Seq >= history[1].Seq {
		t.Error("Expected increasing sequence numbers")
	}
	if len(tapped) != 3 {
		t.Errorf("Expected tap to see 3 events, saw %d", len(tapped))
	}

	d.Off(sub)
	_ = d.Emit("four", nil)
	if len(tapped) != 3 {
		t.Error("Expected removed tap to stop observing")
	}
}

func TestPayloadAs(t *testing.T) {
	ev := Event{Payload: 42}
	if v, ok := PayloadAs[int](ev); !ok || v != 42 {
		t.Errorf("Expected 42, got %v (%v)", v, ok)
	}
	if _, ok := PayloadAs[string](ev); ok {
		t.Error("Expected type mismatch to report false")
	}
}

func TestConcurrentDeferredEmit(t *testing.T) {
	d := NewDispatcher()
	count := 0
	d.On("tick", func(Event) error { count++; return nil })

	var wg sync.WaitGroup
	for i := 0; i < 4; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for j := 0; j < 25; j++ {
				_ = d.EmitDeferred("tick", nil)
			}
		}()
	}
	wg.Wait()
	_ = d.Flush()

	if count != 100 {
		t.Errorf("Expected 100 dispatched events, got %d", count)
	}
}
