package policy

import (
	"github.com/sirupsen/logrus"

	"github.com/dcsim/dcsim/sim"
	"github.com/dcsim/dcsim/sim/host"
	"github.com/dcsim/dcsim/sim/management"
	"github.com/dcsim/dcsim/sim/trace"
)

// PlacementPolicy places new VMs first-fit on Partially-utilized hosts by
// increasing utilization, then Underutilized hosts by decreasing
// utilization, then Empty hosts by decreasing power state. It reacts to
// PlacementRequestEvents and needs a HostPoolManager.
type PlacementPolicy struct {
	thresholds Thresholds
	// StartupTime is how long a VM takes to start once placed.
	StartupTime int64
	// OnPlaced is called with every VM once it runs.
	OnPlaced func(vm *host.VM)
	trace    *trace.SimulationTrace

	sim  *sim.Simulation
	pool *management.HostPoolManager
}

// NewPlacementPolicy creates a placement policy.
func NewPlacementPolicy(t Thresholds, tr *trace.SimulationTrace) *PlacementPolicy {
	return &PlacementPolicy{thresholds: t, trace: tr}
}

func (p *PlacementPolicy) Name() string { return "placement" }

func (p *PlacementPolicy) Install(m *management.AutonomicManager) error {
	pool, err := management.RequireHostPool(m)
	if err != nil {
		return err
	}
	p.pool = pool
	p.sim = m.Simulation()
	management.Subscribe(m, p.place)
	return nil
}

func (p *PlacementPolicy) place(e *management.PlacementRequestEvent) {
	now := p.sim.Clock()
	p.pool.ResetSandboxes()
	targets := slaTargets(Classify(p.pool.Hosts(), p.thresholds))
	pl := newPlan(p.sim, p.Name(), p.trace, 0)
	matcher := Matcher{Target: p.thresholds.Target}
	excluded := func(t *management.HostData) bool { return !pl.usable(t) }

	for _, req := range e.Requests {
		vm := management.VmStatus{
			ID:    req.ID,
			Desc:  req.Desc,
			InUse: req.Source.Demand(now).Min(req.Desc.MaxResources()),
		}
		target := matcher.FindTarget(vm, nil, targets, excluded)
		if target == nil {
			p.sim.Emit(sim.SignalPlacementFailed, p.Name())
			p.trace.RecordPlacement(trace.PlacementRecord{Clock: now, VMID: req.ID, HostID: -1})
			logrus.Warnf("[tick %07d] placement: no host can take vm#%d (%s)", now, req.ID, req.Desc.Name)
			continue
		}
		pl.instantiate(req, vm, target, p.StartupTime, p.OnPlaced)
	}
	pl.execute()
}
