package management

import (
	"slices"

	"github.com/dcsim/dcsim/sim/host"
)

// VmStatus is a snapshot of one VM.
type VmStatus struct {
	ID    int
	Desc  *host.VmDescription
	InUse host.Resources
}

// NewVmStatus snapshots vm's scheduled resources.
func NewVmStatus(vm *host.VM) VmStatus {
	return VmStatus{ID: vm.ID, Desc: vm.Desc, InUse: vm.Scheduled()}
}

// HostStatus is a snapshot of a host at a point in virtual time. Snapshots
// held by HostData are never mutated; sandboxes are copies.
type HostStatus struct {
	ID       int
	Time     int64
	State    host.PowerState
	InUse    host.Resources
	Power    float64
	Incoming int
	Outgoing int
	Starting int
	VMs      []VmStatus
}

// NewHostStatus snapshots h at now.
func NewHostStatus(h *host.Host, now int64) *HostStatus {
	st := &HostStatus{
		ID:       h.ID,
		Time:     now,
		State:    h.State(),
		InUse:    h.ResourcesInUse(),
		Power:    h.Power(),
		Incoming: h.IncomingMigrations(),
		Outgoing: h.OutgoingMigrations(),
		Starting: h.StartingVMs(),
	}
	for _, vm := range h.VMs() {
		st.VMs = append(st.VMs, NewVmStatus(vm))
	}
	return st
}

// Copy returns a deep copy.
func (s *HostStatus) Copy() *HostStatus {
	c := *s
	c.VMs = slices.Clone(s.VMs)
	return &c
}

// CPUUtilization is InUse.CPU over the given capacity.
func (s *HostStatus) CPUUtilization(capacity int64) float64 {
	if capacity <= 0 {
		return 0
	}
	return float64(s.InUse.CPU) / float64(capacity)
}

// IsPoweredOn reports whether the host is ON or on its way there.
func (s *HostStatus) IsPoweredOn() bool {
	return s.State == host.On || s.State == host.PoweringOn
}

// Migrate moves vm from s to target, as a migration would once complete, and
// counts the migration as in flight on both sides. An OFF or SUSPENDED target
// becomes POWERING_ON.
func (s *HostStatus) Migrate(vm VmStatus, target *HostStatus) {
	if i := slices.IndexFunc(s.VMs, func(v VmStatus) bool { return v.ID == vm.ID }); i >= 0 {
		s.VMs = slices.Delete(s.VMs, i, i+1)
	}
	s.InUse = s.InUse.Subtract(vm.InUse)
	s.Outgoing++

	target.VMs = append(target.VMs, vm)
	target.InUse = target.InUse.Add(vm.InUse)
	target.Incoming++
	target.wake()
}

// Instantiate counts a new VM starting on s with the given resources.
func (s *HostStatus) Instantiate(vm VmStatus) {
	s.VMs = append(s.VMs, vm)
	s.InUse = s.InUse.Add(vm.InUse)
	s.Starting++
	s.wake()
}

// PowerOff marks the sandbox host as going down.
func (s *HostStatus) PowerOff() {
	s.State = host.PoweringOff
}

func (s *HostStatus) wake() {
	if s.State == host.Off || s.State == host.Suspended {
		s.State = host.PoweringOn
	}
}

// CanHost reports whether a host with description desc and status st can
// take vm: the host has enough cores of enough capacity, and st.InUse plus
// the VM's resources fits the host's capacity. A host that is not yet ON
// reports nothing in use, so its privileged domain is added to the check.
func CanHost(vm VmStatus, st *HostStatus, desc *host.HostDescription) bool {
	if vm.Desc != nil && (vm.Desc.Cores > desc.Cores || vm.Desc.CoreCapacity > desc.CoreCapacity) {
		return false
	}
	used := st.InUse.Add(vm.InUse)
	switch st.State {
	case host.Off, host.Suspended, host.PoweringOn:
		used = used.Add(desc.PrivDomain)
	}
	return used.Fits(desc.Capacity())
}
