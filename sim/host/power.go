package host

import (
	"fmt"
	"math"
)

// PowerState is the power state of a host.
type PowerState int

const (
	Off PowerState = iota
	PoweringOn
	On
	Suspended
	PoweringOff
	Suspending
)

var powerStateNames = map[PowerState]string{
	Off:         "OFF",
	PoweringOn:  "POWERING_ON",
	On:          "ON",
	Suspended:   "SUSPENDED",
	PoweringOff: "POWERING_OFF",
	Suspending:  "SUSPENDING",
}

func (s PowerState) String() string {
	if n, ok := powerStateNames[s]; ok {
		return n
	}
	return fmt.Sprintf("PowerState(%d)", int(s))
}

// ParsePowerState parses the names produced by String.
func ParsePowerState(name string) (PowerState, error) {
	for s, n := range powerStateNames {
		if n == name {
			return s, nil
		}
	}
	return Off, fmt.Errorf("unknown power state %q", name)
}

// Rank orders power states for target selection: OFF < SUSPENDED <
// POWERING_OFF = SUSPENDING < POWERING_ON < ON.
func (s PowerState) Rank() int {
	switch s {
	case Off:
		return 0
	case Suspended:
		return 1
	case PoweringOff, Suspending:
		return 2
	case PoweringOn:
		return 3
	case On:
		return 4
	}
	return -1
}

// PowerModel maps CPU utilization in [0, 1] to power draw in watts.
type PowerModel interface {
	PowerAt(utilization float64) float64
	MaxPower() float64
}

// LinearPowerModel interpolates linearly between idle and max power.
type LinearPowerModel struct {
	Idle float64
	Max  float64
}

func (m LinearPowerModel) PowerAt(utilization float64) float64 {
	return m.Idle + (m.Max-m.Idle)*clampUnit(utilization)
}

func (m LinearPowerModel) MaxPower() float64 {
	return m.Max
}

// SPECPowerModel interpolates between power measurements taken at 0%, 10%,
// ..., 100% utilization, as published by SPECpower_ssj2008.
type SPECPowerModel struct {
	points [11]float64
}

// NewSPECPowerModel builds a model from exactly 11 non-decreasing measurements.
func NewSPECPowerModel(points []float64) (*SPECPowerModel, error) {
	if len(points) != 11 {
		return nil, fmt.Errorf("spec power model needs 11 points, got %d", len(points))
	}
	m := &SPECPowerModel{}
	for i, p := range points {
		if p < 0 || (i > 0 && p < points[i-1]) {
			return nil, fmt.Errorf("spec power model points must be non-negative and non-decreasing (point %d = %g)", i, p)
		}
		m.points[i] = p
	}
	return m, nil
}

func (m *SPECPowerModel) PowerAt(utilization float64) float64 {
	u := clampUnit(utilization) * 10
	lo := int(math.Floor(u))
	if lo >= 10 {
		return m.points[10]
	}
	frac := u - float64(lo)
	return m.points[lo] + (m.points[lo+1]-m.points[lo])*frac
}

func (m *SPECPowerModel) MaxPower() float64 {
	return m.points[10]
}

func clampUnit(u float64) float64 {
	return math.Max(0, math.Min(1, u))
}
