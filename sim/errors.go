package sim

import "fmt"

// FatalKind classifies conditions that abort a simulation run.
type FatalKind string

const (
	// FatalConfiguration marks an invalid scenario setup, e.g. a policy
	// installed on a manager without the capabilities it needs.
	FatalConfiguration FatalKind = "configuration"
	// FatalCapacity marks a host that cannot hold what was committed to it.
	FatalCapacity FatalKind = "capacity"
	// FatalOrdering marks a broken engine invariant, e.g. an event in the past.
	FatalOrdering FatalKind = "ordering"
)

// FatalError aborts the current Run. It is raised with panic by Fatal and
// Fatalf and recovered by Simulation.Run, which returns it.
type FatalError struct {
	Kind  FatalKind
	Clock int64
	Err   error
}

func (e *FatalError) Error() string {
	return fmt.Sprintf("fatal %s error at tick %d: %v", e.Kind, e.Clock, e.Err)
}

func (e *FatalError) Unwrap() error {
	return e.Err
}

// Fatal aborts the run with err.
func (s *Simulation) Fatal(kind FatalKind, err error) {
	panic(&FatalError{Kind: kind, Clock: s.clock, Err: err})
}

// Fatalf aborts the run with a formatted error.
func (s *Simulation) Fatalf(kind FatalKind, format string, args ...any) {
	s.Fatal(kind, fmt.Errorf(format, args...))
}
