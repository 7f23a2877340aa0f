package policy

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dcsim/dcsim/sim"
	"github.com/dcsim/dcsim/sim/host"
	"github.com/dcsim/dcsim/sim/management"
	"github.com/dcsim/dcsim/sim/trace"
)

func TestRelocationPolicy_StressedToEmpty(t *testing.T) {
	// GIVEN a Stressed host (2400/2500) and an Empty powered-on host
	f := newFixture()
	stressed := f.addHost(host.On, 1000, 900)
	empty := f.addHost(host.On)
	tr := trace.NewSimulationTrace(trace.TraceConfig{Level: trace.TraceLevelDecisions})
	p := NewRelocationPolicy("balanced", testThresholds, 1000, tr)
	require.NoError(t, f.manager.InstallPolicy(p))

	// WHEN the policy executes
	p.Execute()

	// THEN exactly one migration of the smaller excess VM is planned
	require.Len(t, tr.Migrations, 1)
	m := tr.Migrations[0]
	assert.Equal(t, 1, m.VMID, "900 is the smallest VM above the 275 excess")
	assert.Equal(t, stressed.ID(), m.SourceHost)
	assert.Equal(t, empty.ID(), m.TargetHost)
	assert.False(t, m.PowerOn)

	// AND both hosts are invalidated and their sandboxes reflect the move
	assert.False(t, stressed.IsStatusValid())
	assert.False(t, empty.IsStatusValid())
	assert.Equal(t, 1, stressed.Sandbox().Outgoing)
	assert.Equal(t, 1, empty.Sandbox().Incoming)

	// AND the VM arrives once the migration completes
	require.NoError(t, f.sim.Run(2000))
	vm := f.hosts[1].VMs()
	require.Len(t, vm, 1)
	assert.Equal(t, 1, vm[0].ID)
	assert.Equal(t, 1, f.signals[sim.SignalMigration])
}

func TestRelocationPolicy_PowersOnOffTarget(t *testing.T) {
	// GIVEN a Stressed host and only an OFF host to move to
	f := newFixture()
	f.addHost(host.On, 1000, 900)
	off := f.addHost(host.Off)
	p := NewRelocationPolicy("", testThresholds, 1000, nil)
	require.NoError(t, f.manager.InstallPolicy(p))

	// WHEN the policy executes
	p.Execute()
	assert.Equal(t, host.PoweringOn, f.hosts[1].State(), "power-on starts immediately")

	// THEN the host powers on and then receives the VM
	require.NoError(t, f.sim.Run(1000+1024))
	assert.Equal(t, host.On, f.hosts[1].State())
	assert.Len(t, f.hosts[1].VMs(), 1)
	assert.Equal(t, 1, f.signals[sim.SignalPowerOn])
	assert.False(t, off.IsStatusValid())
}

func TestRelocationPolicy_NoFeasibleTargetIsRejectedNotError(t *testing.T) {
	f := newFixture()
	f.addHost(host.On, 1250, 1250)
	f.addHost(host.On, 1250, 1000)
	tr := trace.NewSimulationTrace(trace.TraceConfig{Level: trace.TraceLevelDecisions})
	p := NewRelocationPolicy("balanced", testThresholds, 1000, tr)
	require.NoError(t, f.manager.InstallPolicy(p))

	p.Execute()

	assert.Empty(t, tr.Migrations)
	assert.Len(t, tr.Rejections, 2)
	assert.Equal(t, 2, f.signals[sim.SignalRelocationRejected])
	assert.Zero(t, f.sim.Pending(), "nothing scheduled")
}

func TestRelocationPolicy_SkipsSourcesWithOutgoingMigration(t *testing.T) {
	f := newFixture()
	stressed := f.addHost(host.On, 1000, 900)
	f.addHost(host.On)
	stressed.CurrentStatus().Outgoing = 1
	tr := trace.NewSimulationTrace(trace.TraceConfig{Level: trace.TraceLevelDecisions})
	p := NewRelocationPolicy("balanced", testThresholds, 1000, tr)
	require.NoError(t, f.manager.InstallPolicy(p))

	p.Execute()
	assert.Empty(t, tr.Migrations)
	assert.Empty(t, tr.Rejections)
}

func TestRelocationPolicy_RequiresHostPool(t *testing.T) {
	s := sim.NewSimulation(1)
	m := management.NewAutonomicManager(s, "host-0", management.Capabilities{Host: &management.HostManager{}})
	err := m.InstallPeriodicPolicy(NewRelocationPolicy("", testThresholds, 1000, nil), 0, 100)
	assert.ErrorIs(t, err, management.ErrMissingCapability)
}

func TestRelocationPolicy_PeriodicExecutionThroughManager(t *testing.T) {
	// GIVEN a relocation policy running every 10 minutes on a stressed data centre
	f := newFixture()
	f.addHost(host.On, 1000, 900)
	f.addHost(host.On)
	tr := trace.NewSimulationTrace(trace.TraceConfig{Level: trace.TraceLevelDecisions})
	require.NoError(t, f.manager.InstallPeriodicPolicy(NewRelocationPolicy("sla", testThresholds, 1000, tr), sim.Minute, 10*sim.Minute))
	f.manager.Start()

	// WHEN two executions happen without any new status
	require.NoError(t, f.sim.Run(11*sim.Minute))

	// THEN the second execution skips the invalidated hosts
	assert.Len(t, tr.Migrations, 1)
	assert.Equal(t, 0, tr.Migrations[0].VMID, "sla moves the largest VM first")
}

func TestRelocationPolicy_MigrationWaitingForPowerOnIsNotPlannedTwice(t *testing.T) {
	// GIVEN a Stressed host and two OFF hosts that take 1000 ticks to power on
	f := newFixture()
	stressed := f.addHost(host.On, 1000, 900)
	f.addHost(host.Off)
	f.addHost(host.Off)
	tr := trace.NewSimulationTrace(trace.TraceConfig{Level: trace.TraceLevelDecisions})
	p := NewRelocationPolicy("balanced", testThresholds, 1000, tr)
	require.NoError(t, f.manager.InstallPolicy(p))

	// WHEN the policy executes, fresh statuses arrive while the target is
	// still powering on, and the policy executes again
	p.Execute()
	require.NoError(t, f.sim.Run(500))
	for i, d := range f.data {
		d.AddHostStatus(management.NewHostStatus(f.hosts[i], f.sim.Clock()))
	}
	require.True(t, stressed.IsStatusValid())
	assert.Equal(t, 1, stressed.CurrentStatus().Outgoing, "waiting migration is already in flight")
	assert.Equal(t, 1, f.data[1].CurrentStatus().Incoming)
	p.Execute()

	// THEN only the first migration exists and the second OFF host stays off
	require.Len(t, tr.Migrations, 1)
	assert.Equal(t, 1, tr.Migrations[0].TargetHost)
	require.NoError(t, f.sim.Run(3000))
	assert.Equal(t, host.Off, f.hosts[2].State())
	assert.Equal(t, 1, f.signals[sim.SignalPowerOn])
	assert.Equal(t, 1, f.signals[sim.SignalMigration])
	assert.Zero(t, f.signals[sim.SignalActionFailed])

	// AND the in-flight counts are cleared once the VM has arrived
	assert.Len(t, f.hosts[1].VMs(), 1)
	assert.Zero(t, f.hosts[0].OutgoingMigrations())
	assert.Zero(t, f.hosts[1].IncomingMigrations())
}
