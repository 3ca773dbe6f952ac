package event

import (
	"sync/atomic"

	"github.com/lixenwraith/void-striker/parameter"
)

// Queue is the deferred event backlog: a ring of parameter.EventQueueSize slots with
// many producers and one consumer
//
// Thread-Safety:
//   - Push reserves a slot with an atomic add and may be called from any goroutine
//   - Consume belongs to the goroutine that flushes the dispatcher
//   - A slot is readable only after its published flag is set
//
// A full ring overwrites the oldest pending event; every overwrite is counted in Dropped
type Queue struct {
	slots     [parameter.EventQueueSize]Event
	published [parameter.EventQueueSize]atomic.Bool
	head      atomic.Uint64 // next slot to consume
	tail      atomic.Uint64 // next slot to reserve
	dropped   atomic.Uint64
}

// NewQueue returns an empty queue
func NewQueue() *Queue {
	return &Queue{}
}

// Push appends ev
func (q *Queue) Push(ev Event) {
	end := q.tail.Add(1)
	idx := (end - 1) & parameter.EventBufferMask

	q.slots[idx] = ev
	q.published[idx].Store(true) // after the write

	if end <= parameter.EventQueueSize {
		return
	}
	// Keep head within one ring of tail; the skipped slots were overwritten
	floor := end - parameter.EventQueueSize
	for {
		head := q.head.Load()
		if head >= floor {
			return
		}
		if q.head.CompareAndSwap(head, floor) {
			q.dropped.Add(floor - head)
			return
		}
	}
}

// Consume returns pending events oldest first
// It stops at a slot still being written; the remainder is returned by the next call
func (q *Queue) Consume() []Event {
	for {
		head := q.head.Load()
		tail := q.tail.Load()
		if tail <= head {
			return nil
		}
		if tail-head > parameter.EventQueueSize {
			// Overrun not yet settled by its producer
			floor := tail - parameter.EventQueueSize
			if q.head.CompareAndSwap(head, floor) {
				q.dropped.Add(floor - head)
			}
			continue
		}

		out := make([]Event, 0, tail-head)
		for pos := head; pos < tail; pos++ {
			idx := pos & parameter.EventBufferMask
			if !q.published[idx].Load() {
				break
			}
			out = append(out, q.slots[idx])
			q.published[idx].Store(false)
		}

		if q.head.CompareAndSwap(head, head+uint64(len(out))) {
			if len(out) == 0 {
				return nil
			}
			return out
		}
	}
}

// Len returns the approximate pending count
func (q *Queue) Len() int {
	head, tail := q.head.Load(), q.tail.Load()
	if tail <= head {
		return 0
	}
	return int(min(tail-head, uint64(parameter.EventQueueSize)))
}

// Dropped returns how many events were overwritten before being consumed
func (q *Queue) Dropped() uint64 {
	return q.dropped.Load()
}
