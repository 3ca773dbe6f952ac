package engine

import "sync/atomic"

var crashHandler atomic.Pointer[func(any)]

// SetCrashHandler installs the handler invoked when a goroutine started by Go panics
// main installs one that restores the terminal before printing the stack
func SetCrashHandler(fn func(any)) {
	crashHandler.Store(&fn)
}

// Go runs fn in a new goroutine with panic recovery routed to the crash handler
// Without a handler the panic is re-raised
func Go(fn func()) {
	go func() {
		defer func() {
			if r := recover(); r != nil {
				if h := crashHandler.Load(); h != nil {
					(*h)(r)
					return
				}
				panic(r)
			}
		}()
		fn()
	}()
}
