package shuttle

import (
	"errors"
	"fmt"
)

var (
	// ErrNotLoopThread is returned when an operation that must run on the loop goroutine is called from elsewhere
	ErrNotLoopThread = errors.New("not called from the loop goroutine")

	// ErrLoopRunning is returned when Run is called on a loop that is already running
	ErrLoopRunning = errors.New("loop is already running")

	// ErrLoopTerminated is returned when the loop has been asked to quit
	ErrLoopTerminated = errors.New("loop has been terminated")

	// ErrWorkerStopped is returned when a task is posted to a worker thread that cannot accept it
	ErrWorkerStopped = errors.New("worker thread is stopped")

	// ErrWorkerBusy is returned when a bounded worker thread has no free goroutine and does not queue
	ErrWorkerBusy = errors.New("worker thread is busy")
)

// DispatchError reports a failure of the dispatching machinery itself: the event pump could not pump
// or the worker thread could not accept the task. Failures of the posted work unit are never wrapped
// in a DispatchError.
type DispatchError struct {
	Op  string
	Err error
}

// Error implements the error interface
func (e *DispatchError) Error() string {
	return fmt.Sprintf("shuttle: %s: %v", e.Op, e.Err)
}

// Unwrap returns the underlying error
func (e *DispatchError) Unwrap() error {
	return e.Err
}

// IsDispatchError checks if an error was produced by the dispatching machinery
func IsDispatchError(err error) bool {
	var dispatchErr *DispatchError
	return errors.As(err, &dispatchErr)
}

// Panic is the fatal outcome of a work unit that panicked instead of returning.
type Panic struct {
	// Value is the value the work unit passed to panic
	Value any

	// Stack is the stack trace of the worker goroutine at the time of the panic
	Stack []byte
}

func (p *Panic) String() string {
	return fmt.Sprintf("panic: %v\n\n%s", p.Value, p.Stack)
}
