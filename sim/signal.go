package sim

// Signal names a countable occurrence emitted by the core. External metrics
// components subscribe to signals through an Observer.
type Signal string

const (
	SignalMessageSent        Signal = "message_sent"
	SignalActionCompleted    Signal = "action_completed"
	SignalActionFailed       Signal = "action_failed"
	SignalMigration          Signal = "migration"
	SignalShutdown           Signal = "host_shutdown"
	SignalPowerOn            Signal = "host_power_on"
	SignalPlacement          Signal = "placement"
	SignalPlacementFailed    Signal = "placement_failed"
	SignalRelocationRejected Signal = "relocation_rejected"
)

// Observer receives every signal emitted by a Simulation.
type Observer interface {
	Observe(signal Signal, source string)
}

// AddObserver subscribes o to the simulation's signals.
func (s *Simulation) AddObserver(o Observer) {
	s.observers = append(s.observers, o)
}

// Emit forwards a signal to all observers in subscription order.
// source identifies what produced it, e.g. a policy name.
func (s *Simulation) Emit(signal Signal, source string) {
	for _, o := range s.observers {
		o.Observe(signal, source)
	}
}
