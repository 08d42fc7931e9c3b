package shuttle

// Worker is the sequential synchronous dispatcher. Every work unit posted to it runs on the same
// long-lived worker goroutine, one after the other, in the order they were posted.
//
// A post blocks the calling event handler until the unit has finished, but the loop goroutine
// keeps dispatching events in the meantime:
//
//	loop := shuttle.NewLoop()
//	worker := shuttle.NewWorker(loop)
//
//	// inside an event handler
//	text, err := shuttle.Post(worker, func() (string, error) {
//		return fetch(url)
//	})
type Worker struct {
	*syncDispatcher
}

// NewWorker creates a sequential dispatcher delivering to the given loop.
// Unless WithWorkerThread is given, units run on a SingleWorkerThread started on first use.
func NewWorker(loop *Loop, options ...Option) *Worker {
	return &Worker{
		syncDispatcher: newSyncDispatcher(loop, func() WorkerThread {
			return NewSingleWorkerThread()
		}, options),
	}
}

// Post runs task on the worker goroutine and returns its error once it has finished.
// See the package-level Post for the rules that apply.
func (w *Worker) Post(task func() error) error {
	return postErr(w, task)
}

// ConcurrentWorker is the synchronous dispatcher that gives every posted work unit a goroutine of
// its own. A post still blocks its caller, so two posts issued one after the other by the same
// handler never overlap. Units posted by nested handlers, dispatched while an earlier post is
// pending, run concurrently with the earlier unit.
type ConcurrentWorker struct {
	*syncDispatcher
}

// NewConcurrentWorker creates a concurrent dispatcher delivering to the given loop.
// Unless WithWorkerThread is given, units run on a MultiWorkerThread.
func NewConcurrentWorker(loop *Loop, options ...Option) *ConcurrentWorker {
	return &ConcurrentWorker{
		syncDispatcher: newSyncDispatcher(loop, func() WorkerThread {
			return NewMultiWorkerThread()
		}, options),
	}
}

// Post runs task on a goroutine of its own and returns its error once it has finished.
// See the package-level Post for the rules that apply.
func (w *ConcurrentWorker) Post(task func() error) error {
	return postErr(w, task)
}
