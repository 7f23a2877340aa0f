package management

import (
	"github.com/dcsim/dcsim/sim"
	"github.com/dcsim/dcsim/sim/host"
)

// HostStatusEvent carries a fresh host status to a pool manager.
type HostStatusEvent struct {
	sim.BaseEvent
	Status *HostStatus
}

// NewHostStatusEvent addresses st to the manager to.
func NewHostStatusEvent(to *AutonomicManager, st *HostStatus) *HostStatusEvent {
	return &HostStatusEvent{BaseEvent: sim.NewBaseEvent(to), Status: st}
}

// VmRequest asks for a new VM of the given description.
type VmRequest struct {
	ID     int
	Desc   *host.VmDescription
	Source host.DemandSource
}

// PlacementRequestEvent asks a pool manager to place new VMs.
type PlacementRequestEvent struct {
	sim.BaseEvent
	Requests []VmRequest
}

// NewPlacementRequestEvent addresses reqs to the manager to.
func NewPlacementRequestEvent(to *AutonomicManager, reqs []VmRequest) *PlacementRequestEvent {
	return &PlacementRequestEvent{BaseEvent: sim.NewBaseEvent(to), Requests: reqs}
}

// Send delivers a management message delay ticks from now and emits
// SignalMessageSent on behalf of from.
func Send(s *sim.Simulation, from string, e sim.Event, delay int64) {
	s.SendAfter(e, delay)
	s.Emit(sim.SignalMessageSent, from)
}
