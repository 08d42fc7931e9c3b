package shuttle

// EventPump drives the host event loop from inside an event handler, so that a handler blocked
// on a synchronous post keeps the loop responsive.
type EventPump interface {
	// PumpOnce dispatches the next pending event, if any, and reports whether it did.
	PumpOnce() bool

	// PumpUntil dispatches events until done is closed. It parks the calling goroutine while
	// there is nothing to dispatch.
	PumpUntil(done <-chan struct{}) error
}

// QueuePump is the EventPump that dispatches events straight from a Loop's queue.
// Events rejected by its filter are left queued, in order, for the loop to process once the
// pumping post returns.
type QueuePump struct {
	loop   *Loop
	filter EventFilter
}

// Pump returns an EventPump bound to this loop. A nil filter pumps every event.
func (l *Loop) Pump(filter EventFilter) *QueuePump {
	return &QueuePump{
		loop:   l,
		filter: filter,
	}
}

// PumpOnce dispatches the next event accepted by the filter. Off the loop goroutine it does nothing.
func (p *QueuePump) PumpOnce() bool {
	if !p.loop.IsLoopThread() {
		return false
	}
	return p.loop.dispatchNext(p.filter)
}

// PumpUntil dispatches events until done is closed. After the loop is asked to quit it stops
// dispatching but still waits for done.
func (p *QueuePump) PumpUntil(done <-chan struct{}) error {
	if !p.loop.IsLoopThread() {
		return &DispatchError{Op: "pump", Err: ErrNotLoopThread}
	}

	p.loop.depth.Add(1)
	defer p.loop.depth.Add(-1)

	for {
		select {
		case <-done:
			return nil
		default:
		}

		if p.loop.Terminated() {
			<-done
			return nil
		}

		if p.loop.dispatchNext(p.filter) {
			continue
		}

		select {
		case <-done:
			return nil
		case <-p.loop.quit:
		case <-p.loop.queue.HasElements():
		}
	}
}
