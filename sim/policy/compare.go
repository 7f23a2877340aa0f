package policy

import (
	"cmp"
	"slices"

	"github.com/dcsim/dcsim/sim/management"
)

// HostComparator orders hosts; it returns a negative number when a sorts
// before b.
type HostComparator func(a, b *management.HostData) int

// VmComparator orders VMs the same way.
type VmComparator func(a, b management.VmStatus) int

// ByCPUUtilization orders hosts by the CPU utilization of their current status.
func ByCPUUtilization(a, b *management.HostData) int {
	return cmp.Compare(currentUtilization(a), currentUtilization(b))
}

// ByEfficiency orders hosts by CPU capacity per watt.
func ByEfficiency(a, b *management.HostData) int {
	return cmp.Compare(a.Desc().Efficiency(), b.Desc().Efficiency())
}

// ByPowerState orders hosts by power state rank, OFF first.
func ByPowerState(a, b *management.HostData) int {
	return cmp.Compare(a.CurrentStatus().State.Rank(), b.CurrentStatus().State.Rank())
}

// ChainHosts compares with each comparator in turn until one separates a and b.
func ChainHosts(cs ...HostComparator) HostComparator {
	return func(a, b *management.HostData) int {
		for _, c := range cs {
			if r := c(a, b); r != 0 {
				return r
			}
		}
		return 0
	}
}

// Descending reverses a host comparator.
func Descending(c HostComparator) HostComparator {
	return func(a, b *management.HostData) int { return c(b, a) }
}

// SortHosts returns a sorted copy of hosts. Ties keep input order.
func SortHosts(hosts []*management.HostData, c HostComparator) []*management.HostData {
	sorted := slices.Clone(hosts)
	slices.SortStableFunc(sorted, c)
	return sorted
}

// ByCPUInUse orders VMs by CPU load.
func ByCPUInUse(a, b management.VmStatus) int {
	return cmp.Compare(a.InUse.CPU, b.InUse.CPU)
}

// ByMemory orders VMs by memory size.
func ByMemory(a, b management.VmStatus) int {
	return cmp.Compare(a.Desc.Memory, b.Desc.Memory)
}

// ByCores orders VMs by core count.
func ByCores(a, b management.VmStatus) int {
	return cmp.Compare(a.Desc.Cores, b.Desc.Cores)
}

// ByCoreCapacity orders VMs by per-core capacity.
func ByCoreCapacity(a, b management.VmStatus) int {
	return cmp.Compare(a.Desc.CoreCapacity, b.Desc.CoreCapacity)
}

// ChainVMs compares with each comparator in turn until one separates a and b.
func ChainVMs(cs ...VmComparator) VmComparator {
	return func(a, b management.VmStatus) int {
		for _, c := range cs {
			if r := c(a, b); r != 0 {
				return r
			}
		}
		return 0
	}
}

// DescendingVMs reverses a VM comparator.
func DescendingVMs(c VmComparator) VmComparator {
	return func(a, b management.VmStatus) int { return c(b, a) }
}

// SortVMs returns a sorted copy of vms. Ties keep input order.
func SortVMs(vms []management.VmStatus, c VmComparator) []management.VmStatus {
	sorted := slices.Clone(vms)
	slices.SortStableFunc(sorted, c)
	return sorted
}

func currentUtilization(d *management.HostData) float64 {
	return d.CurrentStatus().CPUUtilization(d.Desc().Capacity().CPU)
}
