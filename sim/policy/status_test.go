package policy

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dcsim/dcsim/sim"
	"github.com/dcsim/dcsim/sim/host"
	"github.com/dcsim/dcsim/sim/management"
)

func TestHostMonitoring_StatusesRevalidateHostData(t *testing.T) {
	// GIVEN a pool manager storing statuses and a host manager reporting every 5 minutes
	f := newFixture()
	d := f.addHost(host.On, 400)
	require.NoError(t, f.manager.InstallPolicy(&HostStatusPolicy{}))
	hm := management.NewAutonomicManager(f.sim, "host-0", management.Capabilities{Host: &management.HostManager{Host: f.hosts[0]}})
	require.NoError(t, hm.InstallPeriodicPolicy(NewHostMonitoringPolicy(f.manager), 0, 5*sim.Minute))
	f.manager.Start()
	hm.Start()

	// WHEN the data is invalidated at tick 0
	d.Invalidate(0)
	require.NoError(t, f.sim.Run(0))

	// THEN a status taken at the invalidation tick does not revalidate it
	assert.False(t, d.IsStatusValid())
	assert.Len(t, d.History(), 2)

	// AND the next status does
	require.NoError(t, f.sim.Run(5*sim.Minute))
	assert.True(t, d.IsStatusValid())
	assert.Len(t, d.History(), 3)
	assert.Equal(t, 5*sim.Minute, d.CurrentStatus().Time)
	assert.Equal(t, int64(900), d.CurrentStatus().InUse.CPU)
	assert.Equal(t, 2, f.signals[sim.SignalMessageSent])
}

func TestHostStatusPolicy_UnknownHostDropped(t *testing.T) {
	f := newFixture()
	f.addHost(host.On)
	require.NoError(t, f.manager.InstallPolicy(&HostStatusPolicy{}))
	f.manager.Start()

	management.Send(f.sim, "test", management.NewHostStatusEvent(f.manager, &management.HostStatus{ID: 42, Time: 0}), 0)
	require.NoError(t, f.sim.Run(0))

	assert.Nil(t, f.pool.Host(42))
	assert.Len(t, f.data[0].History(), 1)
}

func TestHostMonitoring_RequiresHostCapability(t *testing.T) {
	f := newFixture()
	err := f.manager.InstallPeriodicPolicy(NewHostMonitoringPolicy(f.manager), 0, sim.Minute)
	assert.ErrorIs(t, err, management.ErrMissingCapability)

	s := sim.NewSimulation(1)
	m := management.NewAutonomicManager(s, "host-0", management.Capabilities{Host: &management.HostManager{}})
	err = m.InstallPeriodicPolicy(NewHostMonitoringPolicy(f.manager), 0, sim.Minute)
	assert.ErrorIs(t, err, management.ErrMissingCapability)
}

func TestNewHostMonitoringPolicy_NilDestinationPanics(t *testing.T) {
	assert.Panics(t, func() { NewHostMonitoringPolicy(nil) })
}
