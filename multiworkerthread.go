package shuttle

import (
	"sync"

	"github.com/alitto/shuttle/internal/goid"
	"github.com/alitto/shuttle/internal/stopper"
)

// MultiWorkerThread runs every posted task on a goroutine of its own, so tasks posted
// by different callers execute concurrently.
type MultiWorkerThread struct {
	mutex    sync.Mutex
	inflight *stopper.Stopper

	// goroutines holds the IDs of the goroutines currently running a task
	goroutines sync.Map
}

func NewMultiWorkerThread() *MultiWorkerThread {
	return &MultiWorkerThread{
		inflight: stopper.New(),
	}
}

// Start makes a stopped thread accept tasks again.
func (w *MultiWorkerThread) Start() {
	w.mutex.Lock()
	defer w.mutex.Unlock()

	if w.inflight.Stopping() {
		w.inflight = stopper.New()
	}
}

// Stop rejects further tasks. Tasks already running are not interrupted.
func (w *MultiWorkerThread) Stop() {
	w.tracker().Stop()
}

func (w *MultiWorkerThread) Alive() bool {
	return !w.tracker().Stopping()
}

func (w *MultiWorkerThread) IsWorkerThread() bool {
	_, ok := w.goroutines.Load(goid.Get())
	return ok
}

func (w *MultiWorkerThread) Post(task func()) error {
	inflight := w.tracker()
	if !inflight.Add() {
		return ErrWorkerStopped
	}

	go func() {
		defer inflight.Done()
		w.Run(task)
	}()

	return nil
}

func (w *MultiWorkerThread) Run(task func()) {
	id := goid.Get()
	if _, nested := w.goroutines.LoadOrStore(id, struct{}{}); !nested {
		defer w.goroutines.Delete(id)
	}

	runTask(task)
}

// RunningTasks returns the number of posted tasks that haven't finished yet.
func (w *MultiWorkerThread) RunningTasks() int {
	return int(w.tracker().Count())
}

// Wait blocks until every posted task has finished.
func (w *MultiWorkerThread) Wait() {
	w.tracker().Wait()
}

func (w *MultiWorkerThread) tracker() *stopper.Stopper {
	w.mutex.Lock()
	defer w.mutex.Unlock()

	return w.inflight
}
