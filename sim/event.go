package sim

// Listener receives events addressed to it.
type Listener interface {
	HandleEvent(e Event)
}

// ListenerFunc adapts a plain function to the Listener interface.
type ListenerFunc func(e Event)

// HandleEvent calls f(e).
func (f ListenerFunc) HandleEvent(e Event) {
	f(e)
}

// Event defines the interface for all simulation events.
// Concrete events embed BaseEvent, which supplies every method; the time and
// send order are assigned by Simulation.Send, never by the caller.
type Event interface {
	Timestamp() int64
	SendOrder() uint64
	Target() Listener
	Cancelled() bool
	base() *BaseEvent
}

// PostExecuter is implemented by events that need a hook after delivery and
// after their callbacks have run.
type PostExecuter interface {
	PostExecute()
}

// BaseEvent provides common event fields.
type BaseEvent struct {
	target    Listener
	time      int64
	sendOrder uint64
	sent      bool
	delivered bool
	cancelled bool
	callbacks []func(Event)
}

// NewBaseEvent returns a BaseEvent addressed to target.
func NewBaseEvent(target Listener) BaseEvent {
	return BaseEvent{target: target}
}

// Timestamp returns the virtual time the event is due.
func (e *BaseEvent) Timestamp() int64 {
	return e.time
}

// SendOrder returns the tiebreaker assigned when the event was sent.
func (e *BaseEvent) SendOrder() uint64 {
	return e.sendOrder
}

// Target returns the listener the event is delivered to.
func (e *BaseEvent) Target() Listener {
	return e.target
}

// Cancelled reports whether the event was withdrawn before delivery.
func (e *BaseEvent) Cancelled() bool {
	return e.cancelled
}

// Delivered reports whether the event has reached its target.
func (e *BaseEvent) Delivered() bool {
	return e.delivered
}

// AddCallback registers fn to run right after the target handled the event.
// Callbacks of a cancelled event never run.
func (e *BaseEvent) AddCallback(fn func(Event)) {
	e.callbacks = append(e.callbacks, fn)
}

// Cancel withdraws the event. It returns false when the event was already
// delivered, in which case its effects are final.
func (e *BaseEvent) Cancel() bool {
	if e.delivered {
		return false
	}
	e.cancelled = true
	return true
}

func (e *BaseEvent) base() *BaseEvent {
	return e
}
