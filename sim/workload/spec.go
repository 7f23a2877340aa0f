package workload

import (
	"fmt"
	"math"
	"math/rand"

	"github.com/dcsim/dcsim/sim"
	"github.com/dcsim/dcsim/sim/host"
)

// Demand kinds recognized in scenario files.
const (
	KindStatic   = "static"
	KindGaussian = "gaussian"
	KindSteps    = "steps"
)

var validKinds = map[string]bool{"": true, KindStatic: true, KindGaussian: true, KindSteps: true}

// DefaultWalkInterval is the step of a gaussian walk when none is given.
const DefaultWalkInterval = 5 * sim.Minute

// DemandSpec describes the CPU demand of a VM in a scenario file. An empty
// kind means static.
type DemandSpec struct {
	Kind     string  `yaml:"kind"`
	CPU      int64   `yaml:"cpu"`
	StdDev   float64 `yaml:"stddev,omitempty"`
	Interval int64   `yaml:"interval,omitempty"` // ticks between walk steps
	Steps    []Step  `yaml:"steps,omitempty"`
}

// IsValidKind reports whether name is a recognized demand kind.
func IsValidKind(name string) bool {
	return validKinds[name]
}

// Validate checks the demand description. prefix names it in error messages.
func (d *DemandSpec) Validate(prefix string) error {
	if !validKinds[d.Kind] {
		return fmt.Errorf("%s: unknown demand kind %q; valid: static, gaussian, steps", prefix, d.Kind)
	}
	if d.CPU < 0 {
		return fmt.Errorf("%s.cpu must be non-negative, got %d", prefix, d.CPU)
	}
	switch d.Kind {
	case KindGaussian:
		if math.IsNaN(d.StdDev) || math.IsInf(d.StdDev, 0) || d.StdDev < 0 {
			return fmt.Errorf("%s.stddev must be a finite non-negative number, got %f", prefix, d.StdDev)
		}
		if d.Interval < 0 {
			return fmt.Errorf("%s.interval must be non-negative, got %d", prefix, d.Interval)
		}
	case KindSteps:
		if len(d.Steps) == 0 {
			return fmt.Errorf("%s: steps demand needs at least one step", prefix)
		}
		for i, s := range d.Steps {
			if s.At < 0 || s.CPU < 0 {
				return fmt.Errorf("%s.steps[%d]: at and cpu must be non-negative", prefix, i)
			}
		}
	}
	return nil
}

// New builds the demand source of a VM with description desc arriving at
// start. The VM asks for its full memory, bandwidth and storage; rng is only
// used by gaussian walks and may be nil otherwise.
func New(d DemandSpec, desc *host.VmDescription, start int64, rng *rand.Rand) host.DemandSource {
	limit := desc.MaxResources()
	base := limit
	base.CPU = d.CPU
	switch d.Kind {
	case KindGaussian:
		interval := d.Interval
		if interval == 0 {
			interval = DefaultWalkInterval
		}
		return NewGaussianWalk(base, d.StdDev, interval, limit.CPU, start, rng)
	case KindSteps:
		return NewSteps(base, d.Steps)
	}
	return Static(base)
}
