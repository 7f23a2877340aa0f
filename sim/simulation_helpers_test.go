package sim

// recorder is a listener that remembers the order it saw events in.
type recorder struct {
	clock *Simulation
	seen  []string
	times []int64
}

func (r *recorder) HandleEvent(e Event) {
	r.seen = append(r.seen, e.(*namedEvent).name)
	r.times = append(r.times, r.clock.Clock())
}

type namedEvent struct {
	BaseEvent
	name string
	post func()
}

func (e *namedEvent) PostExecute() {
	if e.post != nil {
		e.post()
	}
}

func newNamedEvent(target Listener, name string) *namedEvent {
	return &namedEvent{BaseEvent: NewBaseEvent(target), name: name}
}
