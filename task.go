package shuttle

import (
	"runtime/debug"

	"github.com/alitto/shuttle/internal/future"
)

// WorkUnit is a computation executed off the loop goroutine. A returned error is the unit's
// declared failure; a panic is its fatal failure.
type WorkUnit[T any] func() (T, error)

// Job adapts a computation without declared failures into a WorkUnit.
func Job[T any](job func() T) WorkUnit[T] {
	return func() (T, error) {
		return job(), nil
	}
}

// Outcome is what a work unit produced: a value, a declared failure (Err) or a fatal failure (Fatal).
type Outcome[T any] struct {
	Value T
	Err   error
	Fatal *Panic
}

// Failed reports whether the unit returned an error or panicked.
func (o Outcome[T]) Failed() bool {
	return o.Err != nil || o.Fatal != nil
}

// Get returns the unit's value and error. If the unit panicked, Get panics with the same value.
func (o Outcome[T]) Get() (T, error) {
	if o.Fatal != nil {
		panic(o.Fatal.Value)
	}
	return o.Value, o.Err
}

// task is a work unit in flight, paired with the signal that carries its outcome.
type task[T any] struct {
	unit    WorkUnit[T]
	signal  *future.Signal[Outcome[T]]
	resolve future.Resolver[Outcome[T]]
	stats   *counters
}

func newTask[T any](unit WorkUnit[T], stats *counters) *task[T] {
	signal, resolve := future.NewSignal[Outcome[T]]()

	return &task[T]{
		unit:    unit,
		signal:  signal,
		resolve: resolve,
		stats:   stats,
	}
}

// Run executes the unit and resolves the task's signal. It never panics.
func (t *task[T]) Run() {
	t.stats.running.Add(1)

	outcome := invokeUnit(t.unit)

	t.stats.running.Add(-1)
	if outcome.Failed() {
		t.stats.failed.Add(1)
	} else {
		t.stats.successful.Add(1)
	}

	t.resolve(outcome)
}

func (t *task[T]) Done() <-chan struct{} {
	return t.signal.Done()
}

func (t *task[T]) Outcome() Outcome[T] {
	return t.signal.Wait()
}

func invokeUnit[T any](unit WorkUnit[T]) (outcome Outcome[T]) {
	defer func() {
		if p := recover(); p != nil {
			outcome = Outcome[T]{
				Fatal: &Panic{
					Value: p,
					Stack: debug.Stack(),
				},
			}
		}
	}()

	outcome.Value, outcome.Err = unit()
	return
}
