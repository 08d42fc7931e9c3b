package shuttle

import (
	"context"
	"log/slog"
	"runtime"
	"runtime/debug"
	"sync"
	"sync/atomic"

	"github.com/alitto/shuttle/internal/goid"
	"github.com/alitto/shuttle/internal/workqueue"
)

// Loop is a single-threaded event loop. Events are queued from any goroutine and processed in FIFO
// order by the one goroutine that calls Run, the loop goroutine.
//
// Handlers running on the loop goroutine may block on a synchronous dispatcher (Worker or
// ConcurrentWorker). While they do, the dispatcher keeps pumping the loop's queue, so the loop
// stays responsive.
type Loop struct {
	queue        *workqueue.Queue[Event]
	handler      func(Event)
	panicHandler func(any)
	logger       *slog.Logger

	// owner is the ID of the goroutine running the loop, zero when not running
	owner     atomic.Uint64
	depth     atomic.Int32
	processed atomic.Uint64

	quitOnce sync.Once
	quit     chan struct{}
}

// LoopOption configures a Loop.
type LoopOption func(*Loop)

// WithEventHandler sets the function that processes events that are not invocations.
func WithEventHandler(handler func(Event)) LoopOption {
	return func(l *Loop) {
		l.handler = handler
	}
}

// WithPanicHandler sets the function called with the recovered value when an event handler panics.
// The loop keeps running after a handler panic.
func WithPanicHandler(panicHandler func(any)) LoopOption {
	return func(l *Loop) {
		l.panicHandler = panicHandler
	}
}

// WithLoopLogger sets the logger used by the loop.
func WithLoopLogger(logger *slog.Logger) LoopOption {
	return func(l *Loop) {
		l.logger = logger
	}
}

// NewLoop creates a loop. The loop does not process events until Run is called.
func NewLoop(options ...LoopOption) *Loop {
	loop := &Loop{
		queue:  workqueue.New[Event](),
		logger: slog.Default(),
		quit:   make(chan struct{}),
	}

	for _, option := range options {
		option(loop)
	}

	if loop.panicHandler == nil {
		loop.panicHandler = loop.logPanic
	}

	return loop
}

// Run makes the calling goroutine the loop goroutine and processes events until Quit is called
// (returns nil) or the context is done (returns the context's error).
func (l *Loop) Run(ctx context.Context) error {
	if l.Terminated() {
		return ErrLoopTerminated
	}

	runtime.LockOSThread()
	defer runtime.UnlockOSThread()

	if !l.owner.CompareAndSwap(0, goid.Get()) {
		return ErrLoopRunning
	}
	defer l.owner.Store(0)

	l.logger.Debug("loop started")
	defer l.logger.Debug("loop stopped")

	for {
		// Prioritize termination over event processing
		select {
		case <-l.quit:
			return nil
		case <-ctx.Done():
			return ctx.Err()
		default:
		}

		if l.dispatchNext(nil) {
			continue
		}

		select {
		case <-l.quit:
			return nil
		case <-ctx.Done():
			return ctx.Err()
		case <-l.queue.HasElements():
		}
	}
}

// Post appends an event to the loop's queue. It can be called from any goroutine.
func (l *Loop) Post(ev Event) {
	l.queue.Write(ev)
}

// InvokeLater queues f to run on the loop goroutine and returns immediately.
func (l *Loop) InvokeLater(f func()) {
	l.queue.Write(Event{
		Kind: KindInvocation,
		run:  f,
	})
}

// InvokeAndWait runs f on the loop goroutine and waits for it to return.
// When called from the loop goroutine, f runs immediately.
// If the loop quits before f runs, ErrLoopTerminated is returned.
func (l *Loop) InvokeAndWait(f func()) error {
	if l.IsLoopThread() {
		f()
		return nil
	}

	done := make(chan struct{})
	l.InvokeLater(func() {
		defer close(done)
		f()
	})

	select {
	case <-done:
		return nil
	case <-l.quit:
	}

	select {
	case <-done:
		return nil
	default:
		return ErrLoopTerminated
	}
}

// IsLoopThread reports whether the caller is running on the loop goroutine.
func (l *Loop) IsLoopThread() bool {
	owner := l.owner.Load()
	return owner != 0 && owner == goid.Get()
}

// Quit asks the loop to stop. Run returns once the outermost event handler returns.
func (l *Loop) Quit() {
	l.quitOnce.Do(func() {
		close(l.quit)
	})
}

// Done returns a channel that is closed when Quit is called.
func (l *Loop) Done() <-chan struct{} {
	return l.quit
}

// Terminated reports whether Quit has been called.
func (l *Loop) Terminated() bool {
	select {
	case <-l.quit:
		return true
	default:
		return false
	}
}

// PostedEvents returns the total number of events queued since the loop was created.
func (l *Loop) PostedEvents() uint64 {
	return l.queue.WriteCount()
}

// ProcessedEvents returns the total number of events dispatched since the loop was created.
func (l *Loop) ProcessedEvents() uint64 {
	return l.processed.Load()
}

// PendingEvents returns the number of events waiting in the queue.
func (l *Loop) PendingEvents() uint64 {
	return l.queue.Len()
}

// PumpDepth returns the number of synchronous posts currently pumping this loop.
func (l *Loop) PumpDepth() int32 {
	return l.depth.Load()
}

// dispatchNext dispatches the first queued event accepted by filter (any event when filter is nil).
// It returns false if there was no such event.
func (l *Loop) dispatchNext(filter EventFilter) bool {
	var ev Event
	var ok bool
	if filter == nil {
		ev, ok = l.queue.Read()
	} else {
		ev, ok = l.queue.ReadFunc(filter)
	}
	if !ok {
		return false
	}

	l.dispatch(ev)
	return true
}

func (l *Loop) dispatch(ev Event) {
	defer func() {
		l.processed.Add(1)
		if p := recover(); p != nil {
			l.panicHandler(p)
		}
	}()

	if ev.run != nil {
		ev.run()
		return
	}

	if l.handler != nil {
		l.handler(ev)
	}
}

func (l *Loop) logPanic(p any) {
	l.logger.Error("event handler panicked",
		"panic", p,
		"stack", string(debug.Stack()))
}
