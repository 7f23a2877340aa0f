package scenario

import (
	"bytes"
	"errors"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dcsim/dcsim/sim"
	"github.com/dcsim/dcsim/sim/host"
	"github.com/dcsim/dcsim/sim/management"
)

func buildTest(t *testing.T) *Experiment {
	t.Helper()
	spec, err := Parse([]byte(testYAML))
	require.NoError(t, err)
	exp, err := Build(spec)
	require.NoError(t, err)
	return exp
}

func TestBuild_WiresHostsManagersAndInitialStatus(t *testing.T) {
	exp := buildTest(t)

	require.Len(t, exp.DataCentre.Hosts(), 3)
	assert.Equal(t, host.Off, exp.DataCentre.Host(2).State())
	require.Len(t, exp.Pool.Hosts(), 3)
	for _, d := range exp.Pool.Hosts() {
		assert.True(t, d.IsStatusValid(), "host %d", d.ID())
		assert.Equal(t, int64(0), d.CurrentStatus().Time)
		require.NotNil(t, d.Manager)
	}

	// pinned VM runs and is scheduled before the first step
	vms := exp.DataCentre.Host(0).VMs()
	require.Len(t, vms, 1)
	assert.Equal(t, int64(200), vms[0].Scheduled().CPU)
	assert.Equal(t, int64(700), exp.Pool.Host(0).CurrentStatus().InUse.CPU)

	for _, name := range []string{"host-status", "placement", "relocation", "consolidation"} {
		state, ok := exp.Manager.PolicyState(name)
		require.True(t, ok, name)
		assert.Equal(t, management.PolicyInstalled, state, name)
	}
	_, err := uuid.Parse(exp.ID)
	assert.NoError(t, err)
	assert.Equal(t, 1, exp.Sim.Pending(), "one placement request is queued")
}

func TestBuild_RunIDsDiffer(t *testing.T) {
	assert.NotEqual(t, buildTest(t).ID, buildTest(t).ID)
}

func TestBuild_RejectsInvalidSpec(t *testing.T) {
	s := validSpec()
	s.Duration = 0
	_, err := Build(s)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "invalid scenario")
}

func TestBuild_PinnedToOffHostFails(t *testing.T) {
	s := validSpec()
	s.Hosts[0].State = "off"
	_, err := Build(s)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "pinned to host 0")
}

func TestBuild_PinnedBeyondMemoryFails(t *testing.T) {
	s := validSpec()
	s.VMs[0].Count = 8 // 8 x 1024 MB plus the 512 MB privileged domain exceeds 8192 MB
	s.HostTypes[0].PrivDomain.Memory = 512
	_, err := Build(s)
	require.Error(t, err)
	var capErr *host.CapacityError
	require.True(t, errors.As(err, &capErr))
	assert.Equal(t, host.Memory, capErr.Dimension)
}

func TestExperiment_RunPlacesArrivals(t *testing.T) {
	// GIVEN a scenario with one pinned VM and two arriving at two minutes
	exp := buildTest(t)

	// WHEN it runs for an hour
	require.NoError(t, exp.Run())
	r := exp.Report()

	// THEN every VM runs somewhere and the decisions are traced
	assert.Equal(t, 3, r.Hosts)
	assert.Equal(t, 3, r.VMs)
	require.NotNil(t, r.Trace)
	assert.Equal(t, 2, r.Trace.Placed)
	assert.Zero(t, r.Trace.PlacementFailures)
	assert.Equal(t, int64(sim.Hour), exp.Sim.Clock())
	assert.Equal(t, sim.Hour, r.Metrics.RecordedTicks)
	assert.Positive(t, r.Metrics.EnergyKWh)
	assert.Equal(t, 2, r.Metrics.Signals[string(sim.SignalPlacement)])
}

func TestExperiment_RunsOnce(t *testing.T) {
	exp := buildTest(t)
	require.NoError(t, exp.Run())
	assert.Error(t, exp.Run())
}

func TestExperiment_SameSeedSameReport(t *testing.T) {
	// GIVEN two experiments built from the same scenario
	a, b := buildTest(t), buildTest(t)

	// WHEN both run
	require.NoError(t, a.Run())
	require.NoError(t, b.Run())

	// THEN reports, decision traces and printed output are identical
	assert.Equal(t, a.Report(), b.Report())
	assert.Equal(t, a.Trace, b.Trace)
	var outA, outB bytes.Buffer
	a.Report().Print(&outA)
	b.Report().Print(&outB)
	assert.Equal(t, outA.String(), outB.String())
	assert.NotContains(t, outA.String(), a.ID)
}
