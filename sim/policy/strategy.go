package policy

import (
	"fmt"
	"slices"
	"sort"

	"github.com/dcsim/dcsim/sim/management"
)

// Strategy orders the hosts and VMs a relocation or consolidation pass
// considers.
type Strategy interface {
	// Sources returns the hosts to move VMs off, in the order to try them.
	Sources(b Buckets) []*management.HostData
	// Targets returns the hosts that may receive VMs, in first-fit order.
	Targets(b Buckets) []*management.HostData
	// Candidates returns the VMs of source to try moving, in order.
	Candidates(source *management.HostData, t Thresholds) []management.VmStatus
}

// ValidRelocationStrategies is the set of recognized relocation strategy names.
var ValidRelocationStrategies = map[string]bool{"": true, "balanced": true, "power": true, "sla": true}

// ValidConsolidationStrategies is the set of recognized consolidation strategy names.
var ValidConsolidationStrategies = map[string]bool{"": true, "balanced": true}

// StrategyNames returns the non-empty names in valid, sorted.
func StrategyNames(valid map[string]bool) []string {
	var names []string
	for n := range valid {
		if n != "" {
			names = append(names, n)
		}
	}
	sort.Strings(names)
	return names
}

// NewRelocationStrategy creates a relocation strategy by name.
// Empty string defaults to "balanced". Panics on unknown names.
func NewRelocationStrategy(name string) Strategy {
	if !ValidRelocationStrategies[name] {
		panic(fmt.Sprintf("unknown relocation strategy %q", name))
	}
	switch name {
	case "power":
		return PowerRelocation{}
	case "sla":
		return SLARelocation{}
	}
	return BalancedRelocation{}
}

// NewConsolidationStrategy creates a consolidation strategy by name.
// Empty string defaults to "balanced". Panics on unknown names.
func NewConsolidationStrategy(name string) Strategy {
	if !ValidConsolidationStrategies[name] {
		panic(fmt.Sprintf("unknown consolidation strategy %q", name))
	}
	return BalancedConsolidation{}
}

// stressedSources orders Stressed hosts by decreasing CPU utilization.
func stressedSources(b Buckets) []*management.HostData {
	return SortHosts(b.Stressed, Descending(ByCPUUtilization))
}

// excessCandidates returns the VMs whose CPU load is at least the amount by
// which source exceeds the upper threshold, in increasing load order. If no
// VM is that large, every VM is returned in decreasing load order.
func excessCandidates(source *management.HostData, t Thresholds) []management.VmStatus {
	st := source.CurrentStatus()
	excess := float64(st.InUse.CPU) - float64(source.Desc().Capacity().CPU)*t.Upper
	var big []management.VmStatus
	for _, vm := range st.VMs {
		if float64(vm.InUse.CPU) >= excess {
			big = append(big, vm)
		}
	}
	if len(big) > 0 {
		return SortVMs(big, ByCPUInUse)
	}
	return SortVMs(st.VMs, DescendingVMs(ByCPUInUse))
}

// BalancedRelocation targets Partially-utilized hosts by increasing
// <utilization, efficiency>, then Underutilized hosts by decreasing
// <utilization, efficiency>, then Empty hosts by decreasing <efficiency,
// power state>.
type BalancedRelocation struct{}

func (BalancedRelocation) Sources(b Buckets) []*management.HostData {
	return stressedSources(b)
}

func (BalancedRelocation) Targets(b Buckets) []*management.HostData {
	return slices.Concat(
		SortHosts(b.PartiallyUtilized, ChainHosts(ByCPUUtilization, ByEfficiency)),
		SortHosts(b.Underutilized, Descending(ChainHosts(ByCPUUtilization, ByEfficiency))),
		SortHosts(b.Empty, Descending(ChainHosts(ByEfficiency, ByPowerState))),
	)
}

func (BalancedRelocation) Candidates(source *management.HostData, t Thresholds) []management.VmStatus {
	return excessCandidates(source, t)
}

// PowerRelocation fills the most power-efficient hosts first: non-empty
// targets by decreasing <efficiency, utilization>, then Empty hosts by
// decreasing <efficiency, power state>.
type PowerRelocation struct{}

func (PowerRelocation) Sources(b Buckets) []*management.HostData {
	return stressedSources(b)
}

func (PowerRelocation) Targets(b Buckets) []*management.HostData {
	return slices.Concat(
		SortHosts(slices.Concat(b.PartiallyUtilized, b.Underutilized), Descending(ChainHosts(ByEfficiency, ByCPUUtilization))),
		SortHosts(b.Empty, Descending(ChainHosts(ByEfficiency, ByPowerState))),
	)
}

func (PowerRelocation) Candidates(source *management.HostData, t Thresholds) []management.VmStatus {
	return excessCandidates(source, t)
}

// SLARelocation spreads load: Partially-utilized hosts by increasing
// utilization, Underutilized hosts by decreasing utilization, Empty hosts by
// decreasing power state, and the largest VMs moved first.
type SLARelocation struct{}

func (SLARelocation) Sources(b Buckets) []*management.HostData {
	return stressedSources(b)
}

func (SLARelocation) Targets(b Buckets) []*management.HostData {
	return slaTargets(b)
}

func (SLARelocation) Candidates(source *management.HostData, _ Thresholds) []management.VmStatus {
	return SortVMs(source.CurrentStatus().VMs, DescendingVMs(ByCPUInUse))
}

func slaTargets(b Buckets) []*management.HostData {
	return slices.Concat(
		SortHosts(b.PartiallyUtilized, ByCPUUtilization),
		SortHosts(b.Underutilized, Descending(ByCPUUtilization)),
		SortHosts(b.Empty, Descending(ByPowerState)),
	)
}

// BalancedConsolidation evacuates Underutilized hosts without incoming
// migrations, least efficient and least utilized first, into Partially-utilized
// and Underutilized hosts ordered by decreasing <efficiency, utilization>.
// The biggest VMs move first.
type BalancedConsolidation struct{}

func (BalancedConsolidation) Sources(b Buckets) []*management.HostData {
	var sources []*management.HostData
	for _, d := range b.Underutilized {
		if d.CurrentStatus().Incoming == 0 {
			sources = append(sources, d)
		}
	}
	return SortHosts(sources, ChainHosts(ByEfficiency, ByCPUUtilization))
}

func (BalancedConsolidation) Targets(b Buckets) []*management.HostData {
	return SortHosts(slices.Concat(b.PartiallyUtilized, b.Underutilized), Descending(ChainHosts(ByEfficiency, ByCPUUtilization)))
}

func (BalancedConsolidation) Candidates(source *management.HostData, _ Thresholds) []management.VmStatus {
	return SortVMs(source.CurrentStatus().VMs, DescendingVMs(ChainVMs(ByMemory, ByCores, ByCoreCapacity, ByCPUInUse)))
}
