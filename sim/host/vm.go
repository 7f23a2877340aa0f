package host

import "fmt"

// DemandSource yields the resource demand of a VM at a virtual time.
type DemandSource interface {
	Demand(now int64) Resources
}

// StaticDemand is a DemandSource that never changes.
type StaticDemand Resources

func (d StaticDemand) Demand(int64) Resources {
	return Resources(d)
}

// VM is a running virtual machine. Demand is refreshed from its source at
// every step; Scheduled is what the host's scheduler granted.
type VM struct {
	ID   int
	Desc *VmDescription

	source    DemandSource
	demand    Resources
	scheduled Resources
	host      *Host
}

// NewVM creates a VM whose demand comes from source, sampled at now.
func NewVM(id int, desc *VmDescription, source DemandSource, now int64) *VM {
	if desc == nil || source == nil {
		panic("NewVM: nil description or demand source")
	}
	vm := &VM{ID: id, Desc: desc, source: source}
	vm.UpdateDemand(now)
	return vm
}

// UpdateDemand resamples the demand source, capped to the VM's size.
func (v *VM) UpdateDemand(now int64) {
	d := v.source.Demand(now).Min(v.Desc.MaxResources())
	v.demand = d.Subtract(Resources{}) // clamp negatives
}

// Demand returns the last sampled demand.
func (v *VM) Demand() Resources {
	return v.demand
}

// Scheduled returns the resources granted by the last scheduling pass.
func (v *VM) Scheduled() Resources {
	return v.scheduled
}

// Host returns the host the VM runs on, or nil if it is not placed.
func (v *VM) Host() *Host {
	return v.host
}

func (v *VM) String() string {
	return fmt.Sprintf("vm#%d(%s)", v.ID, v.Desc.Name)
}

// VmAllocation binds a VM to the host it runs on.
type VmAllocation struct {
	VM    *VM
	Since int64
}
