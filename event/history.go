package event

import "sync"

// History is a bounded circular log of dispatched events, oldest overwritten first
type History struct {
	mu    sync.Mutex
	buf   []Event
	start int
	count int
}

// NewHistory returns a history holding up to size events; size <= 0 disables recording
func NewHistory(size int) *History {
	if size < 0 {
		size = 0
	}
	return &History{buf: make([]Event, size)}
}

// Record appends ev, evicting the oldest entry when full
func (h *History) Record(ev Event) {
	h.mu.Lock()
	defer h.mu.Unlock()

	if len(h.buf) == 0 {
		return
	}
	if h.count < len(h.buf) {
		h.buf[(h.start+h.count)%len(h.buf)] = ev
		h.count++
		return
	}
	h.buf[h.start] = ev
	h.start = (h.start + 1) % len(h.buf)
}

// Events returns a copy, oldest first
func (h *History) Events() []Event {
	h.mu.Lock()
	defer h.mu.Unlock()

	out := make([]Event, h.count)
	for i := 0; i < h.count; i++ {
		out[i] = h.buf[(h.start+i)%len(h.buf)]
	}
	return out
}

// Len returns the number of recorded events
func (h *History) Len() int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.count
}

// Cap returns the configured capacity
func (h *History) Cap() int {
	return len(h.buf)
}

// Clear drops all recorded events
func (h *History) Clear() {
	h.mu.Lock()
	defer h.mu.Unlock()
	clear(h.buf)
	h.start, h.count = 0, 0
}
