// Package engine provides the pause-aware game clock, the fixed tick scheduler
// and crash-safe goroutine launch
package engine

import (
	"sync"
	"sync/atomic"
	"time"
)

// TimeSource abstracts wall time so clocks can be driven by tests
type TimeSource interface {
	Now() time.Time
}

type realTime struct{}

func (realTime) Now() time.Time { return time.Now() }

// RealTime is the monotonic system clock
var RealTime TimeSource = realTime{}

// ManualTime is a controllable time source for tests
type ManualTime struct {
	mu  sync.RWMutex
	now time.Time
}

// NewManualTime starts a manual clock at start
func NewManualTime(start time.Time) *ManualTime {
	return &ManualTime{now: start}
}

// Now returns the current manual time
func (m *ManualTime) Now() time.Time {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.now
}

// Advance moves the manual time forward
func (m *ManualTime) Advance(d time.Duration) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.now = m.now.Add(d)
}

// PausableClock provides game time that freezes while paused
type PausableClock struct {
	mu sync.RWMutex

	source    TimeSource
	realStart time.Time

	isPaused    atomic.Bool
	pauseStart  time.Time     // Real time the current pause began
	totalPaused time.Duration // Cumulative completed pause duration
}

// NewPausableClock creates a clock on the system time source
func NewPausableClock() *PausableClock {
	return NewPausableClockWithSource(RealTime)
}

// NewPausableClockWithSource creates a clock on an arbitrary time source
func NewPausableClockWithSource(source TimeSource) *PausableClock {
	return &PausableClock{source: source, realStart: source.Now()}
}

// Now returns game time: real elapsed minus time spent paused
func (pc *PausableClock) Now() time.Time {
	pc.mu.RLock()
	defer pc.mu.RUnlock()

	if pc.isPaused.Load() {
		return pc.realStart.Add(pc.pauseStart.Sub(pc.realStart) - pc.totalPaused)
	}
	return pc.realStart.Add(pc.source.Now().Sub(pc.realStart) - pc.totalPaused)
}

// Elapsed returns game time since the clock was created
func (pc *PausableClock) Elapsed() time.Duration {
	return pc.Now().Sub(pc.realStart)
}

// Pause stops game time advancement; repeated calls are no-ops
func (pc *PausableClock) Pause() {
	if pc.isPaused.CompareAndSwap(false, true) {
		pc.mu.Lock()
		pc.pauseStart = pc.source.Now()
		pc.mu.Unlock()
	}
}

// Resume continues game time advancement; repeated calls are no-ops
func (pc *PausableClock) Resume() {
	if pc.isPaused.CompareAndSwap(true, false) {
		pc.mu.Lock()
		if !pc.pauseStart.IsZero() {
			pc.totalPaused += pc.source.Now().Sub(pc.pauseStart)
			pc.pauseStart = time.Time{}
		}
		pc.mu.Unlock()
	}
}

// IsPaused returns current pause state
func (pc *PausableClock) IsPaused() bool {
	return pc.isPaused.Load()
}

// TotalPaused returns cumulative pause time including an ongoing pause
func (pc *PausableClock) TotalPaused() time.Duration {
	pc.mu.RLock()
	defer pc.mu.RUnlock()

	total := pc.totalPaused
	if pc.isPaused.Load() && !pc.pauseStart.IsZero() {
		total += pc.source.Now().Sub(pc.pauseStart)
	}
	return total
}
