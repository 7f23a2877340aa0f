package workload

import (
	"math"
	"math/rand"
	"sort"

	"github.com/dcsim/dcsim/sim/host"
)

// Static returns a source that always demands r.
func Static(r host.Resources) host.DemandSource {
	return host.StaticDemand(r)
}

// GaussianWalk is a CPU random walk: every interval ticks the CPU demand
// moves by a normally distributed step with standard deviation stddev and is
// clamped to [0, limit]. Memory, bandwidth and storage stay at their base values.
type GaussianWalk struct {
	base     host.Resources
	stddev   float64
	interval int64
	limit    int64
	rng      *rand.Rand

	cpu  float64
	last int64
}

// NewGaussianWalk starts a walk at base.CPU from tick start. A non-positive
// limit leaves the walk unbounded above.
func NewGaussianWalk(base host.Resources, stddev float64, interval, limit, start int64, rng *rand.Rand) *GaussianWalk {
	if interval <= 0 {
		panic("NewGaussianWalk: interval must be positive")
	}
	if rng == nil {
		panic("NewGaussianWalk: nil rng")
	}
	return &GaussianWalk{
		base:     base,
		stddev:   stddev,
		interval: interval,
		limit:    limit,
		rng:      rng,
		cpu:      float64(base.CPU),
		last:     start,
	}
}

// Demand advances the walk over every interval boundary up to now and returns
// the current demand. Ticks before the last boundary reuse the current value.
func (g *GaussianWalk) Demand(now int64) host.Resources {
	for g.last+g.interval <= now {
		g.last += g.interval
		g.cpu += g.rng.NormFloat64() * g.stddev
		if g.cpu < 0 {
			g.cpu = 0
		}
		if g.limit > 0 && g.cpu > float64(g.limit) {
			g.cpu = float64(g.limit)
		}
	}
	r := g.base
	r.CPU = int64(math.Round(g.cpu))
	return r
}

// Step is one segment of a piecewise-constant CPU trace, starting at At.
type Step struct {
	At  int64 `yaml:"at"`
	CPU int64 `yaml:"cpu"`
}

// Steps is a piecewise-constant CPU demand. Before the first step the CPU
// demand is zero.
type Steps struct {
	base  host.Resources
	steps []Step
}

// NewSteps builds a trace from steps, which need not be sorted. Memory,
// bandwidth and storage come from base.
func NewSteps(base host.Resources, steps []Step) *Steps {
	sorted := make([]Step, len(steps))
	copy(sorted, steps)
	sort.SliceStable(sorted, func(i, j int) bool { return sorted[i].At < sorted[j].At })
	return &Steps{base: base, steps: sorted}
}

func (s *Steps) Demand(now int64) host.Resources {
	i := sort.Search(len(s.steps), func(i int) bool { return s.steps[i].At > now })
	r := s.base
	r.CPU = 0
	if i > 0 {
		r.CPU = s.steps[i-1].CPU
	}
	return r
}
