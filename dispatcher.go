package shuttle

import (
	"context"
	"log/slog"
	"sync"

	"github.com/google/uuid"
)

// dispatcher holds what every dispatcher shares: the loop it serves, its worker thread and its counters.
type dispatcher struct {
	counters
	loop   *Loop
	logger *slog.Logger

	mutex  sync.RWMutex
	thread WorkerThread
}

func newDispatcher(loop *Loop, opts *options) *dispatcher {
	if loop == nil {
		panic("loop cannot be nil")
	}

	d := &dispatcher{
		loop:   loop,
		logger: opts.logger,
		thread: opts.thread,
	}
	if d.logger == nil {
		d.logger = slog.Default()
	}

	return d
}

func buildOptions(defaultThread func() WorkerThread, opts []Option) *options {
	o := &options{}
	for _, opt := range opts {
		opt(o)
	}
	if o.thread == nil {
		o.thread = defaultThread()
	}
	return o
}

// Loop returns the loop this dispatcher delivers results to.
func (d *dispatcher) Loop() *Loop {
	return d.loop
}

// WorkerThread returns the worker thread that executes posted work units.
func (d *dispatcher) WorkerThread() WorkerThread {
	d.mutex.RLock()
	defer d.mutex.RUnlock()

	return d.thread
}

// SetWorkerThread replaces the worker thread. It must not be called while a post is pending.
func (d *dispatcher) SetWorkerThread(thread WorkerThread) {
	if thread == nil {
		panic("worker thread cannot be nil")
	}

	d.mutex.Lock()
	defer d.mutex.Unlock()

	d.thread = thread
}

func (d *dispatcher) taskCounters() *counters {
	return &d.counters
}

// start posts a task to the worker thread, starting the thread first if needed.
func (d *dispatcher) start(thread WorkerThread, task func()) error {
	if !thread.Alive() {
		thread.Start()
	}

	d.submitted.Add(1)

	if err := thread.Post(task); err != nil {
		d.submitted.Add(^uint64(0))
		return &DispatchError{Op: "post", Err: err}
	}
	return nil
}

// postID returns an identifier to correlate the log lines of a post, empty when debug logging is off.
func (d *dispatcher) postID() string {
	if !d.logger.Enabled(context.Background(), slog.LevelDebug) {
		return ""
	}
	return uuid.NewString()
}

// runnable is a task whose completion can be awaited
type runnable interface {
	Run()
	Done() <-chan struct{}
}

// SyncDispatcher is a dispatcher whose posts block the caller until the work unit has finished.
// It is implemented by Worker and ConcurrentWorker.
type SyncDispatcher interface {
	Stats
	EventPump() EventPump
	WorkerThread() WorkerThread
	dispatch(task runnable) error
	taskCounters() *counters
}

// syncDispatcher implements blocking posts that pump the loop while they wait.
type syncDispatcher struct {
	*dispatcher
	pump EventPump
}

func newSyncDispatcher(loop *Loop, defaultThread func() WorkerThread, options []Option) *syncDispatcher {
	opts := buildOptions(defaultThread, options)

	d := &syncDispatcher{
		dispatcher: newDispatcher(loop, opts),
		pump:       opts.pump,
	}
	if d.pump == nil {
		d.pump = loop.Pump(nil)
	}
	return d
}

// EventPump returns the pump driven while a post is pending.
func (d *syncDispatcher) EventPump() EventPump {
	d.mutex.RLock()
	defer d.mutex.RUnlock()

	return d.pump
}

// SetEventPump replaces the event pump. It must not be called while a post is pending.
func (d *syncDispatcher) SetEventPump(pump EventPump) {
	if pump == nil {
		panic("event pump cannot be nil")
	}

	d.mutex.Lock()
	defer d.mutex.Unlock()

	d.pump = pump
}

func (d *syncDispatcher) dispatch(task runnable) error {
	d.mutex.RLock()
	pump, thread := d.pump, d.thread
	d.mutex.RUnlock()

	switch {
	case d.loop.IsLoopThread():
		id := d.postID()

		if err := d.start(thread, task.Run); err != nil {
			return err
		}

		d.logger.Debug("post pending", "post", id, "depth", d.loop.PumpDepth()+1)

		// Blocks until the task has been executed
		if err := pump.PumpUntil(task.Done()); err != nil {
			d.logger.Warn("event pump failed, task may still be running", "post", id, "error", err)
			if IsDispatchError(err) {
				return err
			}
			return &DispatchError{Op: "pump", Err: err}
		}

		d.logger.Debug("post completed", "post", id)

	case thread.IsWorkerThread():
		// A work unit posting again: execute the task in this goroutine
		d.submitted.Add(1)
		thread.Run(task.Run)

	default:
		return &DispatchError{Op: "post", Err: ErrNotLoopThread}
	}

	return nil
}

// Post executes unit on the dispatcher's worker thread and returns its result once it has finished.
// It must be called from the loop goroutine, which keeps processing events while waiting,
// or from a work unit running on the dispatcher's own worker thread, in which case unit runs inline.
//
// The unit's error is returned as is. If the unit panics, Post panics with the same value on the
// caller's goroutine. Failures of the dispatching machinery are reported as *DispatchError.
func Post[T any](d SyncDispatcher, unit WorkUnit[T]) (T, error) {
	task := newTask(unit, d.taskCounters())

	if err := d.dispatch(task); err != nil {
		var zero T
		return zero, err
	}

	return task.Outcome().Get()
}

func postErr(d SyncDispatcher, unit func() error) error {
	_, err := Post(d, func() (struct{}, error) {
		return struct{}{}, unit()
	})
	return err
}
