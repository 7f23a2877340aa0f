// Package testutil provides shared test infrastructure for the dcsim packages:
// a reference host description and float assertions with relative tolerance.
package testutil

import (
	"math"
	"testing"

	"github.com/dcsim/dcsim/sim/host"
)

// HostDesc returns the reference test host: 2 cores of 1250 units, 8 GB of
// memory, a privileged domain of 500 CPU units and 512 MB, a linear power
// model from 100 W idle to 200 W, one second to power on and half a second
// to power off. Each call returns a fresh copy.
func HostDesc() *host.HostDescription {
	return &host.HostDescription{
		Name:         "test",
		Cores:        2,
		CoreCapacity: 1250,
		Memory:       8192,
		Bandwidth:    10000,
		Storage:      100000,
		PrivDomain:   host.Resources{CPU: 500, Memory: 512},
		Power:        host.LinearPowerModel{Idle: 100, Max: 200},
		PowerOnTime:  1000,
		PowerOffTime: 500,
	}
}

// AssertFloat64Equal compares two float64 values with relative tolerance.
func AssertFloat64Equal(t *testing.T, name string, want, got, relTol float64) {
	t.Helper()
	if want == 0 && got == 0 {
		return
	}
	diff := math.Abs(want - got)
	maxVal := math.Max(math.Abs(want), math.Abs(got))
	if diff/maxVal > relTol {
		t.Errorf("%s: got %v, want %v (diff=%v, relDiff=%v)", name, got, want, diff, diff/maxVal)
	}
}
