package host

import (
	"fmt"
	"slices"
)

// Host is a physical machine. It owns its VM allocations, its privileged
// domain and the counters of management activity in flight on it.
//
// Thread-safety: NOT thread-safe.
type Host struct {
	ID   int
	Desc *HostDescription

	state       PowerState
	privDomain  *VM
	allocations []*VmAllocation
	incoming    int
	outgoing    int
	starting    int
	scheduler   Scheduler
}

// NewHost creates a host in the given power state with an empty VM set.
func NewHost(id int, desc *HostDescription, state PowerState, scheduler Scheduler) *Host {
	if desc == nil {
		panic("NewHost: nil description")
	}
	if scheduler == nil {
		scheduler = FairShareScheduler{}
	}
	priv := &VmDescription{
		Name:      "privileged-domain",
		Cores:     1,
		Memory:    desc.PrivDomain.Memory,
		Bandwidth: desc.PrivDomain.Bandwidth,
		Storage:   desc.PrivDomain.Storage,
	}
	priv.CoreCapacity = desc.PrivDomain.CPU
	h := &Host{
		ID:        id,
		Desc:      desc,
		state:     state,
		scheduler: scheduler,
	}
	h.privDomain = NewVM(PrivDomainID, priv, StaticDemand(desc.PrivDomain), 0)
	h.privDomain.host = h
	return h
}

func (h *Host) String() string {
	return fmt.Sprintf("host#%d(%s)", h.ID, h.Desc.Name)
}

// State returns the current power state.
func (h *Host) State() PowerState {
	return h.state
}

// Capacity returns the host's total resources.
func (h *Host) Capacity() Resources {
	return h.Desc.Capacity()
}

// PrivDomain returns the privileged domain VM.
func (h *Host) PrivDomain() *VM {
	return h.privDomain
}

// Allocations returns the VM allocations in allocation order.
func (h *Host) Allocations() []*VmAllocation {
	return h.allocations
}

// VMs returns the hosted VMs in allocation order.
func (h *Host) VMs() []*VM {
	vms := make([]*VM, len(h.allocations))
	for i, a := range h.allocations {
		vms[i] = a.VM
	}
	return vms
}

// HasVM reports whether vm runs on this host.
func (h *Host) HasVM(vm *VM) bool {
	return vm.host == h
}

// IncomingMigrations returns the number of migrations in flight to this host.
func (h *Host) IncomingMigrations() int { return h.incoming }

// OutgoingMigrations returns the number of migrations in flight from this host.
func (h *Host) OutgoingMigrations() int { return h.outgoing }

// StartingVMs returns the number of VM instantiations in flight on this host.
func (h *Host) StartingVMs() int { return h.starting }

// ResourcesInUse is what the scheduler granted to the privileged domain and
// every VM. It is zero for a host that is not ON.
func (h *Host) ResourcesInUse() Resources {
	if h.state != On {
		return Resources{}
	}
	used := h.privDomain.scheduled
	for _, a := range h.allocations {
		used = used.Add(a.VM.scheduled)
	}
	return used
}

// Committed is the non-CPU demand the host has promised: the privileged
// domain plus every VM's memory, bandwidth and storage, and their CPU demand.
func (h *Host) Committed() Resources {
	c := h.privDomain.demand
	for _, a := range h.allocations {
		c = c.Add(a.VM.demand)
	}
	return c
}

// CPUUtilization is the fraction of CPU capacity in use.
func (h *Host) CPUUtilization() float64 {
	capacity := h.Capacity().CPU
	if capacity == 0 {
		return 0
	}
	return float64(h.ResourcesInUse().CPU) / float64(capacity)
}

// Power returns the instantaneous draw in watts.
func (h *Host) Power() float64 {
	if h.Desc.Power == nil {
		return 0
	}
	switch h.state {
	case Off, Suspended:
		return 0
	case PoweringOn, PoweringOff, Suspending:
		return h.Desc.Power.PowerAt(0)
	}
	return h.Desc.Power.PowerAt(h.CPUUtilization())
}

// CheckFits returns a CapacityError if the host cannot hold vm's memory,
// bandwidth and storage on top of what it already committed.
func (h *Host) CheckFits(vm *VM) error {
	free := h.Capacity().Subtract(h.Committed())
	for _, d := range []Dimension{Memory, Bandwidth, Storage} {
		if vm.demand.Get(d) > free.Get(d) {
			return &CapacityError{HostID: h.ID, VMID: vm.ID, Dimension: d, Demand: vm.demand.Get(d), Available: free.Get(d)}
		}
	}
	return nil
}

// Place adds vm to the host. The VM must not run anywhere else.
func (h *Host) Place(vm *VM, now int64) error {
	if vm.host != nil {
		return fmt.Errorf("%w: %s already runs on %s", ErrInvalidTransition, vm, vm.host)
	}
	h.allocations = append(h.allocations, &VmAllocation{VM: vm, Since: now})
	vm.host = h
	return nil
}

// Remove detaches vm from the host and clears its scheduled resources.
func (h *Host) Remove(vm *VM) error {
	i := slices.IndexFunc(h.allocations, func(a *VmAllocation) bool { return a.VM == vm })
	if i < 0 {
		return fmt.Errorf("%w: %s does not run on %s", ErrInvalidTransition, vm, h)
	}
	h.allocations = slices.Delete(h.allocations, i, i+1)
	vm.host = nil
	vm.scheduled = Resources{}
	return nil
}

// BeginMigrationIn records a migration in flight to this host.
func (h *Host) BeginMigrationIn() { h.incoming++ }

// EndMigrationIn clears a migration in flight to this host.
func (h *Host) EndMigrationIn() { h.incoming = max(h.incoming-1, 0) }

// BeginMigrationOut records a migration in flight from this host.
func (h *Host) BeginMigrationOut() { h.outgoing++ }

// EndMigrationOut clears a migration in flight from this host.
func (h *Host) EndMigrationOut() { h.outgoing = max(h.outgoing-1, 0) }

// BeginInstantiate records a VM being started on this host.
func (h *Host) BeginInstantiate() { h.starting++ }

// EndInstantiate clears a VM start on this host.
func (h *Host) EndInstantiate() { h.starting = max(h.starting-1, 0) }

// BeginPowerOn moves an OFF or SUSPENDED host to POWERING_ON.
func (h *Host) BeginPowerOn() error {
	if h.state != Off && h.state != Suspended {
		return h.badTransition(PoweringOn)
	}
	h.state = PoweringOn
	return nil
}

// CompletePowerOn moves a POWERING_ON host to ON.
func (h *Host) CompletePowerOn() error {
	if h.state != PoweringOn {
		return h.badTransition(On)
	}
	h.state = On
	return nil
}

// BeginPowerOff moves an ON host with no VMs and no activity to POWERING_OFF.
func (h *Host) BeginPowerOff() error {
	if h.state != On || !h.idle() {
		return h.badTransition(PoweringOff)
	}
	h.state = PoweringOff
	return nil
}

// CompletePowerOff moves a POWERING_OFF host to OFF. A VM that arrived in the
// meantime keeps the host ON and the transition fails.
func (h *Host) CompletePowerOff() error {
	if h.state != PoweringOff {
		return h.badTransition(Off)
	}
	if !h.idle() {
		h.state = On
		return h.badTransition(Off)
	}
	h.state = Off
	h.reset()
	return nil
}

// BeginSuspend moves an ON host with no VMs and no activity to SUSPENDING.
func (h *Host) BeginSuspend() error {
	if h.state != On || !h.idle() {
		return h.badTransition(Suspending)
	}
	h.state = Suspending
	return nil
}

// CompleteSuspend moves a SUSPENDING host to SUSPENDED.
func (h *Host) CompleteSuspend() error {
	if h.state != Suspending {
		return h.badTransition(Suspended)
	}
	if !h.idle() {
		h.state = On
		return h.badTransition(Suspended)
	}
	h.state = Suspended
	h.reset()
	return nil
}

// Schedule runs the host's scheduler, or resets every grant when the host is
// not ON.
func (h *Host) Schedule() error {
	if h.state != On {
		h.reset()
		return nil
	}
	return h.scheduler.Schedule(h)
}

func (h *Host) idle() bool {
	return len(h.allocations) == 0 && h.incoming == 0 && h.outgoing == 0 && h.starting == 0
}

func (h *Host) reset() {
	h.privDomain.scheduled = Resources{}
	for _, a := range h.allocations {
		a.VM.scheduled = Resources{}
	}
}

func (h *Host) badTransition(to PowerState) error {
	return fmt.Errorf("%w: %s cannot go from %s to %s", ErrInvalidTransition, h, h.state, to)
}
