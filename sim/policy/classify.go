package policy

import (
	"fmt"

	"gonum.org/v1/gonum/floats/scalar"
	"gonum.org/v1/gonum/stat"

	"github.com/dcsim/dcsim/sim/host"
	"github.com/dcsim/dcsim/sim/management"
)

// utilizationPrecision is the number of decimals utilization averages are
// rounded to before they are compared with thresholds.
const utilizationPrecision = 4

// Thresholds are the CPU utilization bounds used to classify hosts.
// Lower < Upper; Target caps the projected utilization of a target host.
type Thresholds struct {
	Lower  float64 `yaml:"lower"`
	Upper  float64 `yaml:"upper"`
	Target float64 `yaml:"target"`
}

// Validate checks 0 <= Lower < Upper <= 1 and 0 < Target <= 1.
func (t Thresholds) Validate() error {
	if t.Lower < 0 || t.Upper > 1 || t.Lower >= t.Upper {
		return fmt.Errorf("thresholds need 0 <= lower < upper <= 1, got lower=%g upper=%g", t.Lower, t.Upper)
	}
	if t.Target <= 0 || t.Target > 1 {
		return fmt.Errorf("target utilization must be in (0, 1], got %g", t.Target)
	}
	return nil
}

// Class is the utilization class of a host.
type Class int

const (
	Empty Class = iota
	Underutilized
	PartiallyUtilized
	Stressed
)

func (c Class) String() string {
	switch c {
	case Empty:
		return "empty"
	case Underutilized:
		return "underutilized"
	case PartiallyUtilized:
		return "partially-utilized"
	case Stressed:
		return "stressed"
	}
	return "unknown"
}

// Buckets partitions the hosts with a valid status by class. Each bucket
// keeps pool order.
type Buckets struct {
	Stressed          []*management.HostData
	PartiallyUtilized []*management.HostData
	Underutilized     []*management.HostData
	Empty             []*management.HostData
}

// Len returns the number of classified hosts.
func (b Buckets) Len() int {
	return len(b.Stressed) + len(b.PartiallyUtilized) + len(b.Underutilized) + len(b.Empty)
}

// AverageUtilization is the mean CPU utilization over the trailing run of
// powered-on statuses in d's history, rounded to four decimals. It is 0 when
// the newest status is not ON.
func AverageUtilization(d *management.HostData) float64 {
	capacity := d.Desc().Capacity().CPU
	if capacity <= 0 {
		return 0
	}
	var samples []float64
	for _, st := range d.History() {
		if st.State != host.On {
			break
		}
		samples = append(samples, float64(st.InUse.CPU)/float64(capacity))
	}
	if len(samples) == 0 {
		return 0
	}
	return scalar.Round(stat.Mean(samples, nil), utilizationPrecision)
}

// ClassOf classifies one host. A host with no VMs in its current status is
// Empty regardless of utilization.
func ClassOf(d *management.HostData, t Thresholds) Class {
	if len(d.CurrentStatus().VMs) == 0 {
		return Empty
	}
	u := AverageUtilization(d)
	switch {
	case u < t.Lower:
		return Underutilized
	case u > t.Upper:
		return Stressed
	}
	return PartiallyUtilized
}

// Classify partitions the hosts with a valid status. Hosts whose status is
// invalid are left out.
func Classify(hosts []*management.HostData, t Thresholds) Buckets {
	var b Buckets
	for _, d := range hosts {
		if !d.IsStatusValid() {
			continue
		}
		switch ClassOf(d, t) {
		case Empty:
			b.Empty = append(b.Empty, d)
		case Underutilized:
			b.Underutilized = append(b.Underutilized, d)
		case Stressed:
			b.Stressed = append(b.Stressed, d)
		default:
			b.PartiallyUtilized = append(b.PartiallyUtilized, d)
		}
	}
	return b
}
