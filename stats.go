package shuttle

import "sync/atomic"

// Stats exposes the task counters of a dispatcher.
type Stats interface {
	// Returns the total number of tasks posted to the dispatcher since its creation.
	SubmittedTasks() uint64

	// Returns the number of tasks that have completed successfully.
	SuccessfulTasks() uint64

	// Returns the number of tasks that have returned an error or panicked.
	FailedTasks() uint64

	// Returns the total number of tasks that have completed (either successfully or not).
	CompletedTasks() uint64

	// Returns the number of tasks currently executing on a worker goroutine.
	RunningTasks() int64
}

type counters struct {
	submitted  atomic.Uint64
	successful atomic.Uint64
	failed     atomic.Uint64
	running    atomic.Int64
}

func (c *counters) SubmittedTasks() uint64 {
	return c.submitted.Load()
}

func (c *counters) SuccessfulTasks() uint64 {
	return c.successful.Load()
}

func (c *counters) FailedTasks() uint64 {
	return c.failed.Load()
}

func (c *counters) CompletedTasks() uint64 {
	return c.successful.Load() + c.failed.Load()
}

func (c *counters) RunningTasks() int64 {
	return c.running.Load()
}
