package event

import (
	"sync"
	"testing"

	"github.com/lixenwraith/void-striker/parameter"
)

func TestQueueFIFO(t *testing.T) {
	q := NewQueue()
	q.Push(Event{Name: "a", Seq: 1})
	q.Push(Event{Name: "b", Seq: 2})
	q.Push(Event{Name: "c", Seq: 3})

	if q.Len() != 3 {
		t.Fatalf("Expected 3 pending, got %d", q.Len())
	}

	events := q.Consume()
	if len(events) != 3 {
		t.Fatalf("Expected 3 events, got %d", len(events))
	}
	for i, want := range []string{"a", "b", "c"} {
		if events[i].Name != want {
			t.Errorf("Event %d: expected %s, got %s", i, want, events[i].Name)
		}
	}

	if again := q.Consume(); len(again) != 0 {
		t.Errorf("Expected empty second consume, got %d", len(again))
	}
}

func TestQueueOverflowDropsOldest(t *testing.T) {
	q := NewQueue()
	total := parameter.EventQueueSize + 10
	for i := 0; i < total; i++ {
		q.Push(Event{Seq: uint64(i)})
	}

	events := q.Consume()
	if len(events) != parameter.EventQueueSize {
		t.Fatalf("Expected %d events, got %d", parameter.EventQueueSize, len(events))
	}
	if events[0].Seq != 10 {
		t.Errorf("Expected oldest surviving seq 10, got %d", events[0].Seq)
	}
	if q.Dropped() != 10 {
		t.Errorf("Expected 10 dropped, got %d", q.Dropped())
	}
}

func TestQueueNoDropsWithinCapacity(t *testing.T) {
	q := NewQueue()
	for round := 0; round < 3; round++ {
		for i := 0; i < parameter.EventQueueSize; i++ {
			q.Push(Event{Seq: uint64(i)})
		}
		if got := len(q.Consume()); got != parameter.EventQueueSize {
			t.Fatalf("Round %d: expected %d events, got %d", round, parameter.EventQueueSize, got)
		}
	}
	if q.Dropped() != 0 {
		t.Errorf("Expected no drops when drained each round, got %d", q.Dropped())
	}
	if q.Len() != 0 {
		t.Errorf("Expected empty queue, got %d", q.Len())
	}
}

func TestQueueConcurrentPush(t *testing.T) {
	q := NewQueue()
	producers, perProducer := 8, 50

	var wg sync.WaitGroup
	wg.Add(producers)
	for p := 0; p < producers; p++ {
		go func() {
			defer wg.Done()
			for i := 0; i < perProducer; i++ {
				q.Push(Event{Name: "tick"})
			}
		}()
	}
	wg.Wait()

	if got := len(q.Consume()); got != producers*perProducer {
		t.Errorf("Expected %d events, got %d", producers*perProducer, got)
	}
}
