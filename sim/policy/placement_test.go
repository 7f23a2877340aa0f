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

func request(id int, desc *host.VmDescription, cpu int64) management.VmRequest {
	return management.VmRequest{ID: id, Desc: desc, Source: host.StaticDemand{CPU: cpu, Memory: 1024, Bandwidth: 100, Storage: 1024}}
}

func TestPlacementPolicy_FirstFitThenPowerOn(t *testing.T) {
	// GIVEN an empty ON host and an empty OFF host
	f := newFixture()
	f.addHost(host.On)
	f.addHost(host.Off)
	tr := trace.NewSimulationTrace(trace.TraceConfig{Level: trace.TraceLevelDecisions})
	p := NewPlacementPolicy(testThresholds, tr)
	p.StartupTime = 100
	var placed []int
	p.OnPlaced = func(vm *host.VM) { placed = append(placed, vm.ID) }
	require.NoError(t, f.manager.InstallPolicy(p))
	f.manager.Start()

	// WHEN three VMs are requested, the last one wider than any host
	wide := &host.VmDescription{Name: "wide", Cores: 4, CoreCapacity: 1000, Memory: 1024, Bandwidth: 100, Storage: 1024}
	reqs := []management.VmRequest{
		request(100, testVmDesc, 600),  // ON host: 1100/2500
		request(101, testVmDesc, 1200), // ON host would reach 0.92
		request(102, wide, 500),
	}
	management.Send(f.sim, "test", management.NewPlacementRequestEvent(f.manager, reqs), 0)
	require.NoError(t, f.sim.Run(0))

	// THEN the first VM goes to the ON host and the second waits for the OFF host
	assert.Equal(t, host.PoweringOn, f.hosts[1].State())
	require.Len(t, tr.Placements, 3)
	assert.Equal(t, 0, tr.Placements[0].HostID)
	assert.Equal(t, 1, tr.Placements[1].HostID)
	assert.False(t, tr.Placements[2].Placed)
	assert.Equal(t, -1, tr.Placements[2].HostID)
	assert.Equal(t, 1, f.signals[sim.SignalPlacementFailed])

	// AND both VMs run once started
	require.NoError(t, f.sim.Run(1000+100))
	assert.Equal(t, []int{100, 101}, placed)
	assert.Len(t, f.hosts[0].VMs(), 1)
	assert.Len(t, f.hosts[1].VMs(), 1)
	assert.Equal(t, host.On, f.hosts[1].State())
	assert.Equal(t, 2, f.signals[sim.SignalPlacement])
	assert.Equal(t, 1, f.signals[sim.SignalPowerOn])
}

func TestPlacementPolicy_PrefersPartiallyUtilizedHosts(t *testing.T) {
	f := newFixture()
	f.addHost(host.On)
	f.addHost(host.On, 700) // 0.48
	p := NewPlacementPolicy(testThresholds, nil)
	require.NoError(t, f.manager.InstallPolicy(p))
	f.manager.Start()

	management.Send(f.sim, "test", management.NewPlacementRequestEvent(f.manager, []management.VmRequest{request(100, testVmDesc, 300)}), 0)
	require.NoError(t, f.sim.Run(0))

	assert.Len(t, f.hosts[1].VMs(), 2)
	assert.Empty(t, f.hosts[0].VMs())
}

func TestPlacementPolicy_IgnoredUntilManagerStarts(t *testing.T) {
	f := newFixture()
	f.addHost(host.On)
	require.NoError(t, f.manager.InstallPolicy(NewPlacementPolicy(testThresholds, nil)))

	management.Send(f.sim, "test", management.NewPlacementRequestEvent(f.manager, []management.VmRequest{request(100, testVmDesc, 300)}), 0)
	require.NoError(t, f.sim.Run(sim.Second))

	assert.Empty(t, f.hosts[0].VMs())
	assert.Zero(t, f.signals[sim.SignalPlacementFailed])
}
