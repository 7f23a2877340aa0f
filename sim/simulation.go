package sim

import (
	"fmt"

	"github.com/sirupsen/logrus"
)

// Simulation is the core object that holds virtual time, the event queue,
// the RNG partitions and the observers of one run.
//
// Thread-safety: NOT thread-safe. Events are delivered one at a time on the
// goroutine that called Run.
type Simulation struct {
	clock     int64
	queue     *EventQueue
	sendSeq   uint64
	delivered uint64
	ids       map[string]int
	rng       *PartitionedRNG
	observers []Observer
	hooks     []func(Event)
	running   bool
	failure   *FatalError
}

// NewSimulation creates a simulation at time 0 whose randomness derives from seed.
func NewSimulation(seed int64) *Simulation {
	return &Simulation{
		queue: NewEventQueue(),
		ids:   make(map[string]int),
		rng:   NewPartitionedRNG(NewSimulationKey(seed)),
	}
}

// Clock returns the current virtual time.
func (s *Simulation) Clock() int64 {
	return s.clock
}

// RNG returns the simulation's partitioned random source.
func (s *Simulation) RNG() *PartitionedRNG {
	return s.rng
}

// Delivered returns the number of events delivered so far.
func (s *Simulation) Delivered() uint64 {
	return s.delivered
}

// Pending returns the number of queued events, cancelled ones included.
func (s *Simulation) Pending() int {
	return s.queue.Len()
}

// NextID returns a fresh sequential identifier for the given kind ("host",
// "vm", "action", ...). Identifiers start at 0 for every kind.
func (s *Simulation) NextID(kind string) int {
	id := s.ids[kind]
	s.ids[kind] = id + 1
	return id
}

// AddPostDeliveryHook registers fn to run after every delivered event, once
// the event's own callbacks and PostExecute hook have run.
func (s *Simulation) AddPostDeliveryHook(fn func(Event)) {
	s.hooks = append(s.hooks, fn)
}

// Send schedules e for delivery at virtual time at. The send order assigned
// here breaks ties between events due at the same time.
func (s *Simulation) Send(e Event, at int64) {
	b := e.base()
	if b.target == nil {
		s.Fatalf(FatalOrdering, "event %T has no target", e)
	}
	if b.sent {
		s.Fatalf(FatalOrdering, "event %T already sent for tick %d", e, b.time)
	}
	if at < s.clock {
		s.Fatalf(FatalOrdering, "event %T scheduled at tick %d, before current tick %d", e, at, s.clock)
	}
	b.time = at
	b.sendOrder = s.sendSeq
	b.sent = true
	s.sendSeq++
	s.queue.Schedule(e)
}

// SendAfter schedules e for delivery delay ticks from now.
func (s *Simulation) SendAfter(e Event, delay int64) {
	s.Send(e, s.clock+delay)
}

// Run delivers every event due at or before until, in (time, send order)
// order, then advances the clock to until. Run may be called again with a
// later horizon to continue the same simulation.
//
// A FatalError raised while delivering stops the run and is returned; the
// simulation refuses to run again afterwards. Any other panic propagates.
func (s *Simulation) Run(until int64) (err error) {
	if s.running {
		panic("Simulation.Run called re-entrantly")
	}
	if s.failure != nil {
		return s.failure
	}
	if until < s.clock {
		return fmt.Errorf("run horizon %d is before current tick %d", until, s.clock)
	}
	s.running = true
	defer func() {
		s.running = false
		if r := recover(); r != nil {
			fe, ok := r.(*FatalError)
			if !ok {
				panic(r)
			}
			logrus.Errorf("[tick %07d] simulation aborted: %v", s.clock, fe)
			s.failure = fe
			err = fe
		}
	}()

	for {
		next := s.queue.Peek()
		if next == nil || next.Timestamp() > until {
			break
		}
		s.queue.PopNext()
		s.clock = next.Timestamp()
		s.deliver(next)
	}
	s.clock = until
	return nil
}

func (s *Simulation) deliver(e Event) {
	b := e.base()
	if b.cancelled {
		return
	}
	b.delivered = true
	s.delivered++
	if logrus.IsLevelEnabled(logrus.TraceLevel) {
		logrus.Tracef("[tick %07d] deliver %T (order %d)", s.clock, e, b.sendOrder)
	}
	b.target.HandleEvent(e)
	for _, cb := range b.callbacks {
		cb(e)
	}
	if pe, ok := e.(PostExecuter); ok {
		pe.PostExecute()
	}
	for _, h := range s.hooks {
		h(e)
	}
}
