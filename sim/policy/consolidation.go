package policy

import (
	"github.com/dcsim/dcsim/sim"
	"github.com/dcsim/dcsim/sim/host"
	"github.com/dcsim/dcsim/sim/management"
	"github.com/dcsim/dcsim/sim/trace"
)

// ConsolidationPolicy empties Underutilized hosts into other active hosts
// and powers off hosts left empty. It needs a HostPoolManager.
type ConsolidationPolicy struct {
	strategy   Strategy
	thresholds Thresholds
	bandwidth  int64
	suspend    bool
	trace      *trace.SimulationTrace

	sim  *sim.Simulation
	pool *management.HostPoolManager
}

// NewConsolidationPolicy creates a consolidation policy using the named
// strategy. With suspend set, emptied hosts are suspended instead of powered off.
func NewConsolidationPolicy(strategy string, t Thresholds, bandwidth int64, suspend bool, tr *trace.SimulationTrace) *ConsolidationPolicy {
	return &ConsolidationPolicy{
		strategy:   NewConsolidationStrategy(strategy),
		thresholds: t,
		bandwidth:  bandwidth,
		suspend:    suspend,
		trace:      tr,
	}
}

func (p *ConsolidationPolicy) Name() string { return "consolidation" }

func (p *ConsolidationPolicy) Install(m *management.AutonomicManager) error {
	pool, err := management.RequireHostPool(m)
	if err != nil {
		return err
	}
	p.pool = pool
	p.sim = m.Simulation()
	return nil
}

// Execute runs one consolidation pass: powered-on Empty hosts with no
// activity are shut down first, then VMs move off Underutilized sources, then
// sources left empty are shut down. A host that received a VM is never used
// as a source in the same pass, and vice versa.
func (p *ConsolidationPolicy) Execute() {
	p.pool.ResetSandboxes()
	b := Classify(p.pool.Hosts(), p.thresholds)
	pl := newPlan(p.sim, p.Name(), p.trace, p.bandwidth)
	pl.suspend = p.suspend

	for _, d := range b.Empty {
		st := d.CurrentStatus()
		if st.State == host.On && st.Incoming == 0 && st.Outgoing == 0 && st.Starting == 0 {
			pl.shutdownFirst(d)
		}
	}

	matcher := Matcher{Target: p.thresholds.Target}
	targets := p.strategy.Targets(b)
	usedSources := make(map[*management.HostData]bool)
	usedTargets := make(map[*management.HostData]bool)
	excluded := func(t *management.HostData) bool {
		return usedSources[t] || !pl.usable(t)
	}

	for _, source := range p.strategy.Sources(b) {
		if usedTargets[source] {
			continue
		}
		stuck := 0
		for _, vm := range p.strategy.Candidates(source, p.thresholds) {
			target := matcher.FindTarget(vm, source, targets, excluded)
			if target == nil || !pl.migrate(vm, source, target) {
				stuck++
				continue
			}
			usedSources[source] = true
			usedTargets[target] = true
		}
		if usedSources[source] && len(source.Sandbox().VMs) == 0 {
			pl.shutdown(source)
		}
		if stuck > 0 {
			pl.reject(source, "host not fully evacuated")
		}
	}
	pl.execute()
}
