package engine

import (
	"sync"
	"sync/atomic"
	"time"

	"github.com/lixenwraith/void-striker/parameter"
	"github.com/lixenwraith/void-striker/status"
)

// Ticker advances game logic by dt of game time
type Ticker interface {
	Tick(dt time.Duration)
}

// TickerFunc adapts a function to Ticker
type TickerFunc func(dt time.Duration)

func (f TickerFunc) Tick(dt time.Duration) { f(dt) }

// SchedulerOption configures a Scheduler
type SchedulerOption func(*Scheduler)

// WithStatus publishes tick counts to reg under "engine.ticks"
func WithStatus(reg *status.Registry) SchedulerOption {
	return func(s *Scheduler) {
		s.statTicks = reg.Ints.Get("engine.ticks")
		s.statLag = reg.Floats.Get("engine.tick_lag_ms")
	}
}

// WithTickObserver receives the wall duration of every tick, for histograms
func WithTickObserver(fn func(time.Duration)) SchedulerOption {
	return func(s *Scheduler) { s.observe = fn }
}

// Scheduler runs a Ticker on a fixed interval of game time
// Deadlines advance by the interval to avoid drift; falling more than two intervals
// behind resynchronizes instead of bursting
type Scheduler struct {
	clock    *PausableClock
	target   Ticker
	interval time.Duration

	mu           sync.Mutex
	lastTick     time.Time
	nextDeadline time.Time

	tickCount atomic.Uint64
	running   atomic.Bool
	stopChan  chan struct{}
	stopOnce  sync.Once
	wg        sync.WaitGroup

	statTicks *atomic.Int64
	statLag   *status.AtomicFloat
	observe   func(time.Duration)
}

// NewScheduler creates a scheduler; interval <= 0 uses parameter.TickInterval
func NewScheduler(clock *PausableClock, target Ticker, interval time.Duration, opts ...SchedulerOption) *Scheduler {
	if interval <= 0 {
		interval = parameter.TickInterval
	}
	s := &Scheduler{
		clock:    clock,
		target:   target,
		interval: interval,
		stopChan: make(chan struct{}),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Start begins the loop on a crash-safe goroutine; repeated calls are no-ops
func (s *Scheduler) Start() {
	if s.running.CompareAndSwap(false, true) {
		s.wg.Add(1)
		Go(s.loop)
	}
}

// Stop halts the loop and waits for the in-flight tick
func (s *Scheduler) Stop() {
	s.stopOnce.Do(func() {
		close(s.stopChan)
		if s.running.CompareAndSwap(true, false) {
			s.wg.Wait()
		}
	})
}

// Ticks returns the number of ticks executed
func (s *Scheduler) Ticks() uint64 {
	return s.tickCount.Load()
}

// Step runs one tick synchronously with the given dt, bypassing the timer
// Used by headless runs and tests
func (s *Scheduler) Step(dt time.Duration) {
	s.runTick(dt)
}

func (s *Scheduler) loop() {
	defer s.wg.Done()

	now := s.clock.Now()
	s.mu.Lock()
	s.lastTick = now
	s.nextDeadline = now.Add(s.interval)
	s.mu.Unlock()

	timer := time.NewTimer(s.interval)
	defer timer.Stop()

	for {
		select {
		case <-s.stopChan:
			return
		case <-timer.C:
		}

		if s.clock.IsPaused() {
			// Game time is frozen; poll slower and keep deadlines relative to frozen time
			timer.Reset(s.interval * 2)
			continue
		}

		gameNow := s.clock.Now()
		s.mu.Lock()
		deadline := s.nextDeadline
		s.mu.Unlock()

		if gameNow.Before(deadline) {
			timer.Reset(deadline.Sub(gameNow))
			continue
		}

		s.mu.Lock()
		dt := gameNow.Sub(s.lastTick)
		s.lastTick = gameNow
		s.nextDeadline = s.nextDeadline.Add(s.interval)
		if gameNow.Sub(s.nextDeadline) > s.interval*2 {
			s.nextDeadline = gameNow.Add(s.interval)
		}
		deadline = s.nextDeadline
		s.mu.Unlock()

		if s.statLag != nil {
			s.statLag.Set(float64(gameNow.Sub(deadline.Add(-s.interval))) / float64(time.Millisecond))
		}
		s.runTick(dt)

		wait := deadline.Sub(s.clock.Now())
		if wait < 0 {
			wait = 0
		}
		timer.Reset(wait)
	}
}

func (s *Scheduler) runTick(dt time.Duration) {
	if dt > parameter.MaxTickDelta {
		dt = parameter.MaxTickDelta
	}
	if dt < 0 {
		dt = 0
	}

	start := time.Now()
	s.target.Tick(dt)
	if s.observe != nil {
		s.observe(time.Since(start))
	}

	ticks := s.tickCount.Add(1)
	if s.statTicks != nil {
		s.statTicks.Store(int64(ticks))
	}
}
