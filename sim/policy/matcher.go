package policy

import (
	"github.com/dcsim/dcsim/sim/host"
	"github.com/dcsim/dcsim/sim/management"
)

// Matcher finds the first target, in the given order, that can take a VM.
type Matcher struct {
	// Target caps the projected CPU utilization of a target. Zero disables
	// the cap.
	Target float64
}

// Fits reports whether target's sandbox can take vm: the host is capable,
// has headroom on every dimension, is not going down, and its projected CPU
// utilization stays within the cap.
func (m Matcher) Fits(vm management.VmStatus, target *management.HostData) bool {
	sb := target.Sandbox()
	if sb == nil {
		return false
	}
	if sb.State == host.PoweringOff || sb.State == host.Suspending {
		return false
	}
	if !management.CanHost(vm, sb, target.Desc()) {
		return false
	}
	if m.Target > 0 {
		capacity := target.Desc().Capacity().CPU
		projected := float64(sb.InUse.CPU+vm.InUse.CPU) / float64(capacity)
		if projected > m.Target {
			return false
		}
	}
	return true
}

// FindTarget returns the first target that is not source, not excluded, and
// fits vm, or nil.
func (m Matcher) FindTarget(vm management.VmStatus, source *management.HostData, targets []*management.HostData, excluded func(*management.HostData) bool) *management.HostData {
	for _, t := range targets {
		if t == source {
			continue
		}
		if excluded != nil && excluded(t) {
			continue
		}
		if m.Fits(vm, t) {
			return t
		}
	}
	return nil
}
