package workqueue

import (
	"sync"
	"sync/atomic"

	"github.com/gammazero/deque"
)

// Queue is an unbounded FIFO queue that can be written to and read from concurrently.
// Readers that find the queue empty can park on the channel returned by HasElements.
type Queue[T any] struct {
	items       *deque.Deque[T]
	hasElements chan struct{}
	writeCount  atomic.Uint64
	readCount   atomic.Uint64
	mutex       sync.Mutex
}

func New[T any]() *Queue[T] {
	return &Queue[T]{
		items:       deque.New[T](),
		hasElements: make(chan struct{}, 1),
	}
}

// Write appends values to the back of the queue
func (q *Queue[T]) Write(values ...T) {
	q.mutex.Lock()
	for _, value := range values {
		q.items.PushBack(value)
	}
	q.mutex.Unlock()

	q.writeCount.Add(uint64(len(values)))

	// Notify there are elements in the queue
	select {
	case q.hasElements <- struct{}{}:
	default:
	}
}

// Read removes and returns the element at the front of the queue.
// The second return value is false if the queue is empty.
func (q *Queue[T]) Read() (value T, ok bool) {
	q.mutex.Lock()
	defer q.mutex.Unlock()

	if q.items.Len() == 0 {
		return
	}

	value = q.items.PopFront()
	q.readCount.Add(1)
	return value, true
}

// ReadFunc removes and returns the first element accepted by the given function.
// Rejected elements stay in the queue in their original order.
// The function is called with the queue locked and must not write to it.
func (q *Queue[T]) ReadFunc(accept func(T) bool) (value T, ok bool) {
	q.mutex.Lock()
	defer q.mutex.Unlock()

	var skipped []T
	for q.items.Len() > 0 {
		item := q.items.PopFront()
		if accept(item) {
			value, ok = item, true
			q.readCount.Add(1)
			break
		}
		skipped = append(skipped, item)
	}

	// Put back rejected elements
	for i := len(skipped) - 1; i >= 0; i-- {
		q.items.PushFront(skipped[i])
	}

	return
}

// HasElements returns a channel that receives a value after elements are written.
// A receive does not guarantee the queue is still non-empty when Read is called.
func (q *Queue[T]) HasElements() <-chan struct{} {
	return q.hasElements
}

// WriteCount returns the number of elements written to the queue since it was created
func (q *Queue[T]) WriteCount() uint64 {
	return q.writeCount.Load()
}

// ReadCount returns the number of elements read from the queue since it was created
func (q *Queue[T]) ReadCount() uint64 {
	return q.readCount.Load()
}

// Len returns the number of elements in the queue that haven't yet been read
func (q *Queue[T]) Len() uint64 {
	q.mutex.Lock()
	defer q.mutex.Unlock()

	return uint64(q.items.Len())
}
