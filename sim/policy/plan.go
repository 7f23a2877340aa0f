package policy

import (
	"github.com/sirupsen/logrus"

	"github.com/dcsim/dcsim/sim"
	"github.com/dcsim/dcsim/sim/host"
	"github.com/dcsim/dcsim/sim/management"
	"github.com/dcsim/dcsim/sim/trace"
)

// plan accumulates the actions of one policy execution. Migrations and
// instantiations onto a host that is OFF or SUSPENDED in the sandbox are
// grouped behind a single power-on of that host.
type plan struct {
	sim       *sim.Simulation
	origin    string
	trace     *trace.SimulationTrace
	bandwidth int64

	early     *management.ConcurrentExecutor
	moves     *management.ConcurrentExecutor
	powerOns  map[int]*management.ConcurrentExecutor
	shutdowns *management.ConcurrentExecutor
	deferred  []*management.MigrationAction
	suspend   bool
}

func newPlan(s *sim.Simulation, origin string, tr *trace.SimulationTrace, bandwidth int64) *plan {
	return &plan{
		sim:       s,
		origin:    origin,
		trace:     tr,
		bandwidth: bandwidth,
		early:     management.NewConcurrentExecutor(),
		moves:     management.NewConcurrentExecutor(),
		powerOns:  make(map[int]*management.ConcurrentExecutor),
		shutdowns: management.NewConcurrentExecutor(),
	}
}

// usable reports whether target can receive work in this plan. A host that
// is powering on for another reason cannot, since its arrival time is unknown.
func (p *plan) usable(target *management.HostData) bool {
	if target.Sandbox().State == host.PoweringOn {
		_, ours := p.powerOns[target.ID()]
		return ours
	}
	return true
}

// addMove queues a onto target, behind target's power-on if it needs one.
// It reports whether a power-on was needed.
func (p *plan) addMove(target *management.HostData, a management.Action) bool {
	state := target.Sandbox().State
	if group, ok := p.powerOns[target.ID()]; ok {
		group.Add(a)
		return true
	}
	if state == host.Off || state == host.Suspended {
		group := management.NewConcurrentExecutor(a)
		p.powerOns[target.ID()] = group
		p.moves.Add(management.NewSequentialExecutor(&management.PowerOnHostAction{Host: target.Host}, group))
		return true
	}
	p.moves.Add(a)
	return false
}

// migrate records the migration of vm from source to target: both sandboxes
// change, both statuses are invalidated, and a MigrationAction is queued. It
// returns false if the VM is no longer on the source host.
func (p *plan) migrate(vm management.VmStatus, source, target *management.HostData) bool {
	var live *host.VM
	for _, v := range source.Host.VMs() {
		if v.ID == vm.ID {
			live = v
			break
		}
	}
	if live == nil {
		return false
	}
	now := p.sim.Clock()
	action := &management.MigrationAction{VM: live, Source: source.Host, Target: target.Host, Bandwidth: p.bandwidth}
	poweredOn := p.addMove(target, action)
	if poweredOn {
		p.deferred = append(p.deferred, action)
	}
	source.Sandbox().Migrate(vm, target.Sandbox())
	source.Invalidate(now)
	target.Invalidate(now)

	projected := target.Sandbox().CPUUtilization(target.Desc().Capacity().CPU)
	p.trace.RecordMigration(trace.MigrationRecord{
		Clock: now, Policy: p.origin, VMID: vm.ID,
		SourceHost: source.ID(), TargetHost: target.ID(),
		PowerOn: poweredOn, TargetUtilization: projected,
	})
	logrus.WithFields(logrus.Fields{
		"policy": p.origin, "vm": vm.ID, "source": source.ID(), "target": target.ID(), "power_on": poweredOn,
	}).Infof("[tick %07d] migration planned", now)
	return true
}

// shutdown queues a power-off of d after all moves and marks its sandbox as
// going down.
func (p *plan) shutdown(d *management.HostData) {
	p.shutdownInto(p.shutdowns, d)
}

// shutdownFirst queues a power-off of d ahead of all moves.
func (p *plan) shutdownFirst(d *management.HostData) {
	p.shutdownInto(p.early, d)
}

func (p *plan) shutdownInto(exec *management.ConcurrentExecutor, d *management.HostData) {
	now := p.sim.Clock()
	exec.Add(&management.ShutdownHostAction{Host: d.Host, Suspend: p.suspend})
	d.Sandbox().PowerOff()
	d.Invalidate(now)
	p.trace.RecordShutdown(trace.ShutdownRecord{Clock: now, Policy: p.origin, HostID: d.ID(), Suspend: p.suspend})
	logrus.WithFields(logrus.Fields{"policy": p.origin, "host": d.ID()}).Infof("[tick %07d] shutdown planned", now)
}

// reject records that no target could be found for source.
func (p *plan) reject(source *management.HostData, reason string) {
	p.sim.Emit(sim.SignalRelocationRejected, p.origin)
	p.trace.RecordRejection(trace.RejectionRecord{Clock: p.sim.Clock(), Policy: p.origin, HostID: source.ID(), Reason: reason})
	logrus.Debugf("[tick %07d] %s: no target for host %d (%s)", p.sim.Clock(), p.origin, source.ID(), reason)
}

// instantiate records the placement of a new VM on target and queues its
// instantiation.
func (p *plan) instantiate(req management.VmRequest, vm management.VmStatus, target *management.HostData, duration int64, onPlaced func(*host.VM)) {
	now := p.sim.Clock()
	poweredOn := p.addMove(target, &management.InstantiateVmAction{Request: req, Target: target.Host, Duration: duration, OnPlaced: onPlaced})
	target.Sandbox().Instantiate(vm)
	target.Invalidate(now)
	p.trace.RecordPlacement(trace.PlacementRecord{Clock: now, VMID: req.ID, HostID: target.ID(), Placed: true})
	logrus.WithFields(logrus.Fields{
		"policy": p.origin, "vm": req.ID, "target": target.ID(), "power_on": poweredOn,
	}).Infof("[tick %07d] placement planned", now)
}

// execute runs Sequential{early shutdowns, moves, late shutdowns}. A plan
// without any action does nothing. Migrations waiting for a power-on are
// counted on their hosts right away, so status updates arriving before they
// start still show them in flight.
func (p *plan) execute() {
	if p.early.Len() == 0 && p.moves.Len() == 0 && p.shutdowns.Len() == 0 {
		return
	}
	for _, a := range p.deferred {
		a.Reserve()
	}
	management.Execute(p.sim, management.NewSequentialExecutor(p.early, p.moves, p.shutdowns), p.origin)
}
