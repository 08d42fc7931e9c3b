package shuttle

import (
	"log/slog"
	"runtime/debug"
	"sync"
	"sync/atomic"

	"github.com/alitto/shuttle/internal/goid"
	"github.com/alitto/shuttle/internal/workqueue"
)

// WorkerThread executes tasks off the loop goroutine.
type WorkerThread interface {
	// Start starts the worker thread. Starting a thread that is alive has no effect.
	Start()

	// Stop stops the worker thread. Tasks already executing run to completion.
	Stop()

	// Alive reports whether the worker thread has been started and not stopped.
	Alive() bool

	// IsWorkerThread reports whether the caller is running on one of this thread's goroutines.
	IsWorkerThread() bool

	// Post queues a task for execution and returns without waiting for it.
	Post(task func()) error

	// Run executes a task on the calling goroutine.
	Run(task func())
}

// runTask executes a task, reporting a panic instead of propagating it, so that a failing
// task never terminates the goroutine that runs it.
func runTask(task func()) {
	defer func() {
		if p := recover(); p != nil {
			slog.Error("worker task panicked",
				"panic", p,
				"stack", string(debug.Stack()))
		}
	}()

	task()
}

// SingleWorkerThread runs tasks one at a time, in the order they were posted, on one long-lived
// goroutine. Tasks posted while the thread is stopped stay queued and run once it is started.
// Restarting the thread while its goroutine is still finishing a task never runs two tasks at once.
type SingleWorkerThread struct {
	queue *workqueue.Queue[func()]

	mutex   sync.Mutex
	stop    chan struct{}
	stopped chan struct{}

	// gid is the ID of the current worker goroutine
	gid atomic.Uint64
}

func NewSingleWorkerThread() *SingleWorkerThread {
	return &SingleWorkerThread{
		queue: workqueue.New[func()](),
	}
}

func (w *SingleWorkerThread) Start() {
	w.mutex.Lock()
	defer w.mutex.Unlock()

	if w.alive() {
		return
	}

	// A stopped goroutine may still be finishing its current task. The new one takes over the
	// queue only after it has exited.
	previous := w.stopped

	stop := make(chan struct{})
	stopped := make(chan struct{})
	w.stop = stop
	w.stopped = stopped

	go w.run(previous, stop, stopped)
}

func (w *SingleWorkerThread) Stop() {
	w.mutex.Lock()
	defer w.mutex.Unlock()

	if w.stop == nil {
		return
	}

	select {
	case <-w.stop:
	default:
		close(w.stop)
	}
}

func (w *SingleWorkerThread) Alive() bool {
	w.mutex.Lock()
	defer w.mutex.Unlock()

	return w.alive()
}

func (w *SingleWorkerThread) alive() bool {
	if w.stop == nil {
		return false
	}

	select {
	case <-w.stop:
		return false
	default:
		return true
	}
}

func (w *SingleWorkerThread) IsWorkerThread() bool {
	return w.gid.Load() == goid.Get()
}

func (w *SingleWorkerThread) Post(task func()) error {
	w.queue.Write(task)
	return nil
}

func (w *SingleWorkerThread) Run(task func()) {
	runTask(task)
}

// PendingTasks returns the number of tasks waiting to be executed.
func (w *SingleWorkerThread) PendingTasks() uint64 {
	return w.queue.Len()
}

// run reads tasks from the queue and executes them until stop is closed.
// It waits for the goroutine of the previous run, if any, to exit first.
func (w *SingleWorkerThread) run(previous <-chan struct{}, stop <-chan struct{}, stopped chan<- struct{}) {
	defer close(stopped)

	if previous != nil {
		<-previous
	}

	w.gid.Store(goid.Get())
	defer w.gid.CompareAndSwap(goid.Get(), 0)

	for {
		// Prioritize stopping over executing the next task
		select {
		case <-stop:
			return
		default:
		}

		if task, ok := w.queue.Read(); ok {
			w.Run(task)
			continue
		}

		select {
		case <-stop:
			return
		case <-w.queue.HasElements():
		}
	}
}
