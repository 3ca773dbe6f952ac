package effect

import (
	"context"
	"sync"
)

// Task is a running effect handler or fork
// A task completes after its function returns and every fork it started has finished
type Task struct {
	name   string
	cancel context.CancelFunc
	done   chan struct{}

	mu  sync.Mutex
	err error
}

// Name returns the effect name the task was started for
func (t *Task) Name() string { return t.name }

// Cancel requests cancellation of the task and its forks
func (t *Task) Cancel() { t.cancel() }

// Done is closed when the task has completed
func (t *Task) Done() <-chan struct{} { return t.done }

// Wait blocks until completion and returns the task's error
func (t *Task) Wait() error {
	<-t.done
	return t.Err()
}

// Err returns the task's error; nil while running
func (t *Task) Err() error {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.err
}

func (t *Task) finish(err error) {
	t.mu.Lock()
	t.err = err
	t.mu.Unlock()
	close(t.done)
}
