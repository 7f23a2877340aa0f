package workload

import (
	"math/rand"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dcsim/dcsim/sim"
	"github.com/dcsim/dcsim/sim/host"
)

var testDesc = &host.VmDescription{Name: "small", Cores: 1, CoreCapacity: 1000, Memory: 1024, Bandwidth: 100, Storage: 2048}

func TestStatic_ConstantOverTime(t *testing.T) {
	r := host.Resources{CPU: 300, Memory: 512}
	s := Static(r)
	assert.Equal(t, r, s.Demand(0))
	assert.Equal(t, r, s.Demand(sim.Day))
}

func TestGaussianWalk_SameTickNeverConsumesRandomness(t *testing.T) {
	// GIVEN two walks on identically seeded streams
	a := NewGaussianWalk(host.Resources{CPU: 500}, 50, sim.Minute, 1000, 0, rand.New(rand.NewSource(7)))
	b := NewGaussianWalk(host.Resources{CPU: 500}, 50, sim.Minute, 1000, 0, rand.New(rand.NewSource(7)))

	// WHEN one is asked several times at the same ticks and the other only once
	for i := 0; i < 5; i++ {
		a.Demand(sim.Minute)
	}
	for i := 0; i < 3; i++ {
		a.Demand(3 * sim.Minute)
	}

	// THEN both agree
	assert.Equal(t, b.Demand(3*sim.Minute), a.Demand(3*sim.Minute))
}

func TestGaussianWalk_HoldsBetweenBoundaries(t *testing.T) {
	g := NewGaussianWalk(host.Resources{CPU: 500, Memory: 256}, 100, sim.Minute, 1000, 0, rand.New(rand.NewSource(1)))
	assert.Equal(t, int64(500), g.Demand(sim.Minute-1).CPU, "no boundary crossed yet")
	first := g.Demand(sim.Minute)
	assert.Equal(t, first, g.Demand(2*sim.Minute-1))
	assert.Equal(t, int64(256), first.Memory)
}

func TestGaussianWalk_StaysWithinBounds(t *testing.T) {
	g := NewGaussianWalk(host.Resources{CPU: 50}, 400, sim.Second, 1000, 0, rand.New(rand.NewSource(3)))
	for now := int64(0); now < sim.Hour; now += sim.Minute {
		cpu := g.Demand(now).CPU
		require.GreaterOrEqual(t, cpu, int64(0))
		require.LessOrEqual(t, cpu, int64(1000))
	}
}

func TestGaussianWalk_InvalidArgumentsPanic(t *testing.T) {
	assert.Panics(t, func() { NewGaussianWalk(host.Resources{}, 1, 0, 0, 0, rand.New(rand.NewSource(1))) })
	assert.Panics(t, func() { NewGaussianWalk(host.Resources{}, 1, 1, 0, 0, nil) })
}

func TestSteps_PiecewiseConstant(t *testing.T) {
	s := NewSteps(host.Resources{Memory: 1024}, []Step{{At: 100, CPU: 800}, {At: 0, CPU: 200}, {At: 50, CPU: 400}})
	tests := []struct {
		now  int64
		want int64
	}{
		{0, 200}, {49, 200}, {50, 400}, {99, 400}, {100, 800}, {sim.Day, 800},
	}
	for _, tc := range tests {
		assert.Equal(t, tc.want, s.Demand(tc.now).CPU, "at tick %d", tc.now)
	}
	assert.Equal(t, int64(1024), s.Demand(0).Memory)
}

func TestSteps_ZeroBeforeFirstStep(t *testing.T) {
	s := NewSteps(host.Resources{CPU: 999}, []Step{{At: 10, CPU: 100}})
	assert.Zero(t, s.Demand(9).CPU)
}

func TestDemandSpec_Validate(t *testing.T) {
	tests := []struct {
		name    string
		spec    DemandSpec
		wantErr string
	}{
		{"static default", DemandSpec{CPU: 100}, ""},
		{"gaussian", DemandSpec{Kind: KindGaussian, CPU: 100, StdDev: 10}, ""},
		{"steps", DemandSpec{Kind: KindSteps, Steps: []Step{{At: 0, CPU: 1}}}, ""},
		{"unknown kind", DemandSpec{Kind: "sine"}, "unknown demand kind"},
		{"negative cpu", DemandSpec{CPU: -1}, "cpu must be non-negative"},
		{"negative stddev", DemandSpec{Kind: KindGaussian, StdDev: -1}, "stddev"},
		{"empty steps", DemandSpec{Kind: KindSteps}, "at least one step"},
		{"negative step", DemandSpec{Kind: KindSteps, Steps: []Step{{At: -1}}}, "steps[0]"},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			err := tc.spec.Validate("vms[0].demand")
			if tc.wantErr == "" {
				assert.NoError(t, err)
				return
			}
			require.Error(t, err)
			assert.Contains(t, err.Error(), tc.wantErr)
		})
	}
}

func TestNew_BuildsSourceForKind(t *testing.T) {
	static := New(DemandSpec{CPU: 300}, testDesc, 0, nil)
	assert.Equal(t, host.Resources{CPU: 300, Memory: 1024, Bandwidth: 100, Storage: 2048}, static.Demand(0))

	walk := New(DemandSpec{Kind: KindGaussian, CPU: 300, StdDev: 5000}, testDesc, 0, rand.New(rand.NewSource(1)))
	require.IsType(t, &GaussianWalk{}, walk)
	assert.LessOrEqual(t, walk.Demand(sim.Hour).CPU, int64(1000), "capped at the VM's CPU")

	steps := New(DemandSpec{Kind: KindSteps, Steps: []Step{{At: 10, CPU: 700}}}, testDesc, 0, nil)
	assert.Equal(t, int64(700), steps.Demand(10).CPU)
}
