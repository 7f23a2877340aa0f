package host

// Scheduler divides a powered-on host's resources among its VMs.
type Scheduler interface {
	Schedule(h *Host) error
}

// FairShareScheduler grants the privileged domain its full demand, every VM
// its full memory, bandwidth and storage demand, and shares the remaining CPU
// max-min fairly.
//
// CPU is handed out in rounds. Each round computes share = remaining /
// unsatisfied and visits unsatisfied VMs in allocation order, granting each
// min(share, outstanding demand). When remaining < unsatisfied the share is
// one unit, so integer remainders go to earlier VMs. Rounds stop when the CPU
// runs out or every VM is satisfied.
type FairShareScheduler struct{}

// Schedule implements Scheduler. A shortage of any non-CPU dimension, or of
// CPU for the privileged domain, returns a *CapacityError and leaves the
// grants of the failed pass in place.
func (FairShareScheduler) Schedule(h *Host) error {
	remaining := h.Capacity()

	priv := h.privDomain
	for _, d := range Dimensions {
		if priv.demand.Get(d) > remaining.Get(d) {
			return &CapacityError{HostID: h.ID, VMID: PrivDomainID, Dimension: d, Demand: priv.demand.Get(d), Available: remaining.Get(d)}
		}
	}
	priv.scheduled = priv.demand
	remaining = remaining.Subtract(priv.demand)

	for _, a := range h.allocations {
		vm := a.VM
		for _, d := range []Dimension{Memory, Bandwidth, Storage} {
			if vm.demand.Get(d) > remaining.Get(d) {
				return &CapacityError{HostID: h.ID, VMID: vm.ID, Dimension: d, Demand: vm.demand.Get(d), Available: remaining.Get(d)}
			}
		}
		granted := vm.demand
		granted.CPU = 0
		vm.scheduled = granted
		remaining = remaining.Subtract(granted)
	}

	cpu := remaining.CPU
	unsatisfied := 0
	for _, a := range h.allocations {
		if a.VM.demand.CPU > 0 {
			unsatisfied++
		}
	}
	for cpu > 0 && unsatisfied > 0 {
		share := max(cpu/int64(unsatisfied), 1)
		for _, a := range h.allocations {
			if cpu == 0 {
				break
			}
			vm := a.VM
			outstanding := vm.demand.CPU - vm.scheduled.CPU
			if outstanding <= 0 {
				continue
			}
			grant := min(share, outstanding, cpu)
			vm.scheduled.CPU += grant
			cpu -= grant
			if grant == outstanding {
				unsatisfied--
			}
		}
	}
	return nil
}
