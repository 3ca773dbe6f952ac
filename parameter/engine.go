package parameter

import "time"

// Game Loop & Engine Timing
const (
	// TickRate is the default game logic rate in Hz
	TickRate = 60

	// TickInterval is the fixed game logic interval
	TickInterval = time.Second / TickRate

	// FrameFPS is the default render rate, decoupled from logic ticks
	FrameFPS = 30

	// FrameInterval is the render interval
	FrameInterval = time.Second / FrameFPS

	// MaxTickDelta clamps dt after a stall so entities do not tunnel through each other
	MaxTickDelta = 100 * time.Millisecond
)

// Event Dispatcher
const (
	// EventQueueSize is the fixed capacity of the deferred event ring buffer
	EventQueueSize = 1024

	// EventBufferMask is the bitmask for fast modulo operations (1024 - 1)
	EventBufferMask = 1023

	// EventHistorySize is the default number of dispatched events kept for debugging
	EventHistorySize = 100

	// FlushIterations bounds repeated Flush passes per tick so deferred chains settle
	// without starving the frame
	FlushIterations = 8
)

// State Store
const (
	// StateHistoryLimit is the default depth of the undo stack
	StateHistoryLimit = 50
)
