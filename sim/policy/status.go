package policy

import (
	"fmt"

	"github.com/sirupsen/logrus"

	"github.com/dcsim/dcsim/sim"
	"github.com/dcsim/dcsim/sim/management"
)

// HostStatusPolicy stores the host statuses a pool manager receives.
type HostStatusPolicy struct {
	sim  *sim.Simulation
	pool *management.HostPoolManager
}

func (p *HostStatusPolicy) Name() string { return "host-status" }

func (p *HostStatusPolicy) Install(m *management.AutonomicManager) error {
	pool, err := management.RequireHostPool(m)
	if err != nil {
		return err
	}
	p.pool = pool
	p.sim = m.Simulation()
	management.Subscribe(m, p.store)
	return nil
}

func (p *HostStatusPolicy) store(e *management.HostStatusEvent) {
	d := p.pool.Host(e.Status.ID)
	if d == nil {
		logrus.Warnf("[tick %07d] status for unknown host %d dropped", p.sim.Clock(), e.Status.ID)
		return
	}
	d.AddHostStatus(e.Status)
}

// HostMonitoringPolicy periodically snapshots its manager's host and sends
// the status to a pool manager. It needs a HostManager.
type HostMonitoringPolicy struct {
	to   *management.AutonomicManager
	sim  *sim.Simulation
	from string
	host *management.HostManager
}

// NewHostMonitoringPolicy creates a monitor reporting to the manager to.
func NewHostMonitoringPolicy(to *management.AutonomicManager) *HostMonitoringPolicy {
	if to == nil {
		panic("NewHostMonitoringPolicy: nil destination manager")
	}
	return &HostMonitoringPolicy{to: to}
}

func (p *HostMonitoringPolicy) Name() string { return "host-monitoring" }

func (p *HostMonitoringPolicy) Install(m *management.AutonomicManager) error {
	hm, err := management.RequireHost(m)
	if err != nil {
		return err
	}
	if hm.Host == nil {
		return fmt.Errorf("%w: manager %q has an empty host capability", management.ErrMissingCapability, m.Name())
	}
	p.host = hm
	p.sim = m.Simulation()
	p.from = m.Name()
	return nil
}

// Execute sends a fresh status of the host.
func (p *HostMonitoringPolicy) Execute() {
	st := management.NewHostStatus(p.host.Host, p.sim.Clock())
	management.Send(p.sim, p.from, management.NewHostStatusEvent(p.to, st), 0)
}
