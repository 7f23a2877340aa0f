package management

// Policy is a unit of management logic hosted by an AutonomicManager.
// Install looks up the capabilities the policy needs and subscribes to the
// events it reacts to; it must fail with ErrMissingCapability when the
// manager lacks one.
type Policy interface {
	Name() string
	Install(m *AutonomicManager) error
}

// PeriodicPolicy is a policy the manager executes on a fixed interval.
type PeriodicPolicy interface {
	Policy
	Execute()
}

// ManagerStartHook is implemented by policies that act when their manager starts.
type ManagerStartHook interface {
	OnManagerStart()
}

// ManagerStopHook is implemented by policies that act when their manager shuts down.
type ManagerStopHook interface {
	OnManagerStop()
}

// PolicyState is the lifecycle state of an installed policy.
type PolicyState int

const (
	PolicyInstalled PolicyState = iota
	PolicyRunning
	PolicyStopped
)

func (s PolicyState) String() string {
	switch s {
	case PolicyInstalled:
		return "installed"
	case PolicyRunning:
		return "running"
	case PolicyStopped:
		return "stopped"
	}
	return "unknown"
}
