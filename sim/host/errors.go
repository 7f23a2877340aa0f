package host

import (
	"errors"
	"fmt"
)

// ErrInvalidTransition is returned when a power or ownership change is
// requested from a state that does not allow it.
var ErrInvalidTransition = errors.New("invalid host transition")

// PrivDomainID is the VM ID reported for the privileged domain.
const PrivDomainID = -1

// CapacityError reports a host that cannot hold a committed demand.
type CapacityError struct {
	HostID    int
	VMID      int
	Dimension Dimension
	Demand    int64
	Available int64
}

func (e *CapacityError) Error() string {
	who := fmt.Sprintf("vm %d", e.VMID)
	if e.VMID == PrivDomainID {
		who = "privileged domain"
	}
	return fmt.Sprintf("host %d does not have enough %s for %s: demand %d, available %d",
		e.HostID, e.Dimension, who, e.Demand, e.Available)
}
