package shuttle

import (
	"errors"
	"fmt"
	"sync"

	"github.com/alitto/shuttle/internal/goid"
	"github.com/gammazero/workerpool"
	"github.com/panjf2000/ants/v2"
)

// AntsWorkerThread runs each posted task on a goroutine borrowed from an ants pool.
// Concurrency is bounded by the pool's capacity.
//
// By default Post blocks while every pool goroutine is busy. Posting from the loop goroutine then
// stops the loop from pumping, and a running unit that waits on the loop (InvokeAndWait, a nested
// post) deadlocks it. Pass ants.WithNonblocking(true) to fail such posts with ErrWorkerBusy instead.
type AntsWorkerThread struct {
	pool       *ants.Pool
	goroutines sync.Map
}

// NewAntsWorkerThread creates a worker thread backed by an ants pool of the given size.
func NewAntsWorkerThread(size int, options ...ants.Option) (*AntsWorkerThread, error) {
	pool, err := ants.NewPool(size, options...)
	if err != nil {
		return nil, err
	}

	return &AntsWorkerThread{
		pool: pool,
	}, nil
}

func (w *AntsWorkerThread) Start() {
	if w.pool.IsClosed() {
		w.pool.Reboot()
	}
}

func (w *AntsWorkerThread) Stop() {
	w.pool.Release()
}

func (w *AntsWorkerThread) Alive() bool {
	return !w.pool.IsClosed()
}

func (w *AntsWorkerThread) IsWorkerThread() bool {
	_, ok := w.goroutines.Load(goid.Get())
	return ok
}

func (w *AntsWorkerThread) Post(task func()) error {
	err := w.pool.Submit(func() {
		w.Run(task)
	})
	switch {
	case err == nil:
		return nil
	case errors.Is(err, ants.ErrPoolOverload):
		return fmt.Errorf("%w: %v", ErrWorkerBusy, err)
	default:
		return fmt.Errorf("%w: %v", ErrWorkerStopped, err)
	}
}

func (w *AntsWorkerThread) Run(task func()) {
	id := goid.Get()
	if _, nested := w.goroutines.LoadOrStore(id, struct{}{}); !nested {
		defer w.goroutines.Delete(id)
	}

	runTask(task)
}

// RunningTasks returns the number of pool goroutines currently running a task.
func (w *AntsWorkerThread) RunningTasks() int {
	return w.pool.Running()
}

// WorkerPoolThread runs posted tasks on a bounded gammazero/workerpool pool. Tasks beyond the
// pool's size are queued without blocking the poster.
type WorkerPoolThread struct {
	maxWorkers int

	mutex      sync.Mutex
	pool       *workerpool.WorkerPool
	stopping   bool
	goroutines sync.Map
}

// NewWorkerPoolThread creates a worker thread that runs at most maxWorkers tasks at a time.
func NewWorkerPoolThread(maxWorkers int) *WorkerPoolThread {
	return &WorkerPoolThread{
		maxWorkers: maxWorkers,
		pool:       workerpool.New(maxWorkers),
	}
}

func (w *WorkerPoolThread) Start() {
	w.mutex.Lock()
	defer w.mutex.Unlock()

	if w.stopping {
		w.pool = workerpool.New(w.maxWorkers)
		w.stopping = false
	}
}

// Stop stops accepting tasks and waits for queued tasks to finish.
func (w *WorkerPoolThread) Stop() {
	w.mutex.Lock()
	pool := w.pool
	w.stopping = true
	w.mutex.Unlock()

	pool.StopWait()
}

func (w *WorkerPoolThread) Alive() bool {
	w.mutex.Lock()
	defer w.mutex.Unlock()

	return !w.stopping
}

func (w *WorkerPoolThread) IsWorkerThread() bool {
	_, ok := w.goroutines.Load(goid.Get())
	return ok
}

func (w *WorkerPoolThread) Post(task func()) error {
	w.mutex.Lock()
	defer w.mutex.Unlock()

	if w.stopping {
		return ErrWorkerStopped
	}

	w.pool.Submit(func() {
		w.Run(task)
	})
	return nil
}

func (w *WorkerPoolThread) Run(task func()) {
	id := goid.Get()
	if _, nested := w.goroutines.LoadOrStore(id, struct{}{}); !nested {
		defer w.goroutines.Delete(id)
	}

	runTask(task)
}

// WaitingTasks returns the number of tasks queued behind busy workers.
func (w *WorkerPoolThread) WaitingTasks() int {
	w.mutex.Lock()
	defer w.mutex.Unlock()

	return w.pool.WaitingQueueSize()
}
