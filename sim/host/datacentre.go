package host

import (
	"errors"
	"fmt"

	"github.com/sirupsen/logrus"

	"github.com/dcsim/dcsim/sim"
)

// StepObserver is notified after every scheduling step. elapsed is the
// number of ticks since the previous step.
type StepObserver interface {
	ObserveStep(now, elapsed int64, hosts []*Host)
}

type stepEvent struct {
	sim.BaseEvent
}

// DataCentre owns the hosts of a simulation and drives the periodic step:
// every step ticks it refreshes VM demand and reschedules each host.
type DataCentre struct {
	sim       *sim.Simulation
	step      int64
	hosts     []*Host
	byID      map[int]*Host
	observers []StepObserver
	lastStep  int64
	started   bool
}

// NewDataCentre creates an empty data centre stepping every step ticks.
func NewDataCentre(s *sim.Simulation, step int64) *DataCentre {
	if step <= 0 {
		panic(fmt.Sprintf("NewDataCentre: step must be positive, got %d", step))
	}
	return &DataCentre{sim: s, step: step, byID: make(map[int]*Host)}
}

// AddHost registers h. Host IDs must be unique.
func (d *DataCentre) AddHost(h *Host) {
	if _, dup := d.byID[h.ID]; dup {
		panic(fmt.Sprintf("DataCentre.AddHost: duplicate host id %d", h.ID))
	}
	d.hosts = append(d.hosts, h)
	d.byID[h.ID] = h
}

// Hosts returns every host in registration order.
func (d *DataCentre) Hosts() []*Host {
	return d.hosts
}

// Host returns the host with the given ID, or nil.
func (d *DataCentre) Host(id int) *Host {
	return d.byID[id]
}

// AddObserver subscribes o to step notifications.
func (d *DataCentre) AddObserver(o StepObserver) {
	d.observers = append(d.observers, o)
}

// Start schedules the first step at the current tick.
func (d *DataCentre) Start() {
	if d.started {
		return
	}
	d.started = true
	d.lastStep = d.sim.Clock()
	d.sim.Send(&stepEvent{BaseEvent: sim.NewBaseEvent(d)}, d.sim.Clock())
}

// HandleEvent implements sim.Listener.
func (d *DataCentre) HandleEvent(e sim.Event) {
	if _, ok := e.(*stepEvent); !ok {
		logrus.Debugf("[tick %07d] data centre ignoring %T", d.sim.Clock(), e)
		return
	}
	d.Step()
	d.sim.SendAfter(&stepEvent{BaseEvent: sim.NewBaseEvent(d)}, d.step)
}

// Step refreshes demand and reschedules every host now. A capacity shortage
// aborts the simulation.
func (d *DataCentre) Step() {
	now := d.sim.Clock()
	for _, h := range d.hosts {
		if h.State() == On {
			for _, a := range h.allocations {
				a.VM.UpdateDemand(now)
			}
		}
		d.schedule(h)
	}
	elapsed := now - d.lastStep
	d.lastStep = now
	for _, o := range d.observers {
		o.ObserveStep(now, elapsed, d.hosts)
	}
}

// Reschedule runs the scheduler of a single host outside the periodic step,
// e.g. after a VM arrived or left.
func (d *DataCentre) Reschedule(h *Host) {
	d.schedule(h)
}

// schedule aborts the run when h cannot hold its allocations. A privileged
// domain that does not fit is a broken host description, not an overload.
func (d *DataCentre) schedule(h *Host) {
	err := h.Schedule()
	if err == nil {
		return
	}
	var ce *CapacityError
	if errors.As(err, &ce) && ce.VMID == PrivDomainID {
		d.sim.Fatal(sim.FatalConfiguration, err)
	}
	d.sim.Fatal(sim.FatalCapacity, err)
}
