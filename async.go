package shuttle

// AsyncTask bundles a work unit with the hook that receives its outcome.
type AsyncTask[T any] struct {
	// Run is executed on a worker goroutine
	Run WorkUnit[T]

	// Finish is called on the loop goroutine with the outcome of Run
	Finish func(Outcome[T])
}

// AsyncWorker is the non-blocking dispatcher. Posting returns immediately; once the work unit has
// finished, its Finish hook is queued on the loop like any other event.
type AsyncWorker struct {
	*dispatcher
}

// NewAsyncWorker creates an asynchronous dispatcher delivering to the given loop.
// Unless WithWorkerThread is given, units run on a MultiWorkerThread.
func NewAsyncWorker(loop *Loop, options ...Option) *AsyncWorker {
	opts := buildOptions(func() WorkerThread {
		return NewMultiWorkerThread()
	}, options)

	return &AsyncWorker{
		dispatcher: newDispatcher(loop, opts),
	}
}

// Post runs task on a worker goroutine and calls finish with its error on the loop goroutine.
// Finish may be nil. If task panics, the panic is raised on the loop goroutine instead of calling
// finish, where the loop's panic handler reports it.
func (w *AsyncWorker) Post(task func() error, finish func(error)) error {
	return PostAsync(w, AsyncTask[struct{}]{
		Run: func() (struct{}, error) {
			return struct{}{}, task()
		},
		Finish: func(outcome Outcome[struct{}]) {
			// Reported by the loop's panic handler, with or without a finish hook
			if outcome.Fatal != nil {
				panic(outcome.Fatal.Value)
			}
			if finish != nil {
				finish(outcome.Err)
			}
		},
	})
}

// PostAsync starts task.Run on the worker's thread and returns without waiting for it.
// Code following the call is not ordered with respect to the unit or its Finish hook.
// It can be called from any goroutine. An error is returned only if the worker thread
// did not accept the task.
func PostAsync[T any](w *AsyncWorker, task AsyncTask[T]) error {
	t := newTask(task.Run, w.taskCounters())
	id := w.postID()

	err := w.start(w.WorkerThread(), func() {
		t.Run()

		w.logger.Debug("async post completed", "post", id)

		w.loop.InvokeLater(func() {
			if task.Finish != nil {
				task.Finish(t.Outcome())
			}
		})
	})
	if err != nil {
		return err
	}

	w.logger.Debug("async post started", "post", id)

	return nil
}
