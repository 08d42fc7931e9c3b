package shuttle

import (
	"log/slog"
)

type options struct {
	pump   EventPump
	thread WorkerThread
	logger *slog.Logger
}

// Option configures a dispatcher.
type Option func(*options)

// WithEventPump sets the event pump a synchronous dispatcher drives while a post is pending.
// Defaults to a pump that dispatches every event of the dispatcher's loop.
// AsyncWorker does not pump and ignores this option.
func WithEventPump(pump EventPump) Option {
	return func(o *options) {
		o.pump = pump
	}
}

// WithWorkerThread sets the worker thread that executes posted work units.
func WithWorkerThread(thread WorkerThread) Option {
	return func(o *options) {
		o.thread = thread
	}
}

// WithLogger sets the logger used to trace posts.
func WithLogger(logger *slog.Logger) Option {
	return func(o *options) {
		o.logger = logger
	}
}
