package policy

import (
	"github.com/dcsim/dcsim/sim"
	"github.com/dcsim/dcsim/sim/management"
	"github.com/dcsim/dcsim/sim/trace"
)

// RelocationPolicy relieves Stressed hosts by migrating one VM off each of
// them per execution. It needs a HostPoolManager.
type RelocationPolicy struct {
	strategy   Strategy
	thresholds Thresholds
	bandwidth  int64
	trace      *trace.SimulationTrace

	sim  *sim.Simulation
	pool *management.HostPoolManager
}

// NewRelocationPolicy creates a relocation policy using the named strategy.
// bandwidth is the migration link speed in MB/s.
func NewRelocationPolicy(strategy string, t Thresholds, bandwidth int64, tr *trace.SimulationTrace) *RelocationPolicy {
	return &RelocationPolicy{
		strategy:   NewRelocationStrategy(strategy),
		thresholds: t,
		bandwidth:  bandwidth,
		trace:      tr,
	}
}

func (p *RelocationPolicy) Name() string { return "relocation" }

func (p *RelocationPolicy) Install(m *management.AutonomicManager) error {
	pool, err := management.RequireHostPool(m)
	if err != nil {
		return err
	}
	p.pool = pool
	p.sim = m.Simulation()
	return nil
}

// Execute runs one relocation pass. Sources with a migration already leaving
// them are skipped; a host used as a source is never a target in the same pass.
func (p *RelocationPolicy) Execute() {
	p.pool.ResetSandboxes()
	b := Classify(p.pool.Hosts(), p.thresholds)
	pl := newPlan(p.sim, p.Name(), p.trace, p.bandwidth)
	matcher := Matcher{Target: p.thresholds.Target}
	targets := p.strategy.Targets(b)
	usedSources := make(map[*management.HostData]bool)
	excluded := func(t *management.HostData) bool {
		return usedSources[t] || !pl.usable(t)
	}

	for _, source := range p.strategy.Sources(b) {
		if source.CurrentStatus().Outgoing > 0 {
			continue
		}
		moved := false
		for _, vm := range p.strategy.Candidates(source, p.thresholds) {
			target := matcher.FindTarget(vm, source, targets, excluded)
			if target == nil || !pl.migrate(vm, source, target) {
				continue
			}
			usedSources[source] = true
			if len(source.Sandbox().VMs) == 0 {
				pl.shutdown(source)
			}
			moved = true
			break
		}
		if !moved {
			pl.reject(source, "no feasible target")
		}
	}
	pl.execute()
}
