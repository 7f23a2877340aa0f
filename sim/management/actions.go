package management

import (
	"errors"
	"fmt"

	"github.com/dcsim/dcsim/sim"
	"github.com/dcsim/dcsim/sim/host"
)

var (
	// ErrVMMoved is returned by a migration whose VM left the source host.
	ErrVMMoved = errors.New("vm is no longer on the source host")
	// ErrTargetNotOn is returned when a VM arrives at a host that is not ON.
	ErrTargetNotOn = errors.New("target host is not powered on")
)

// MigrationDuration is the time to copy memory MB of VM memory over a link
// of bandwidth MB/s, in milliseconds rounded up to a whole tick.
func MigrationDuration(memory, bandwidth int64) int64 {
	if bandwidth <= 0 {
		panic(fmt.Sprintf("MigrationDuration: bandwidth must be positive, got %d", bandwidth))
	}
	return (memory*1000 + bandwidth - 1) / bandwidth
}

// MigrationAction live-migrates a VM. While in flight the VM keeps running on
// the source and both hosts count the migration; ownership moves only on
// completion, and only if the target is ON and can hold the VM.
type MigrationAction struct {
	VM        *host.VM
	Source    *host.Host
	Target    *host.Host
	Bandwidth int64

	reserved bool
}

func (a *MigrationAction) String() string {
	return fmt.Sprintf("migrate %s %s->%s", a.VM, a.Source, a.Target)
}

// Reserve counts the migration on both hosts before it starts, for a
// migration queued behind other actions such as a power-on of its target.
// Start does not count a reserved migration again.
func (a *MigrationAction) Reserve() {
	if a.reserved {
		return
	}
	a.reserved = true
	a.Source.BeginMigrationOut()
	a.Target.BeginMigrationIn()
}

func (a *MigrationAction) release() {
	a.Source.EndMigrationOut()
	a.Target.EndMigrationIn()
}

func (a *MigrationAction) Start(ctx *ExecContext, done func(Outcome)) {
	var err error
	switch {
	case a.VM.Host() != a.Source:
		err = ErrVMMoved
	case a.Source == a.Target:
		err = fmt.Errorf("%w: %s migrates to its own host", host.ErrInvalidTransition, a.VM)
	}
	if err != nil {
		if a.reserved {
			a.release()
		}
		failNow(ctx, a, err, done)
		return
	}
	if !a.reserved {
		a.Source.BeginMigrationOut()
		a.Target.BeginMigrationIn()
	}
	completeAfter(ctx, a, MigrationDuration(a.VM.Desc.Memory, a.Bandwidth), func() error {
		a.release()
		if a.VM.Host() != a.Source {
			return ErrVMMoved
		}
		if a.Target.State() != host.On {
			return fmt.Errorf("%w: %s is %s", ErrTargetNotOn, a.Target, a.Target.State())
		}
		if err := a.Target.CheckFits(a.VM); err != nil {
			return err
		}
		if err := a.Source.Remove(a.VM); err != nil {
			return err
		}
		if err := a.Target.Place(a.VM, ctx.Sim.Clock()); err != nil {
			return err
		}
		reschedule(ctx, a.Source, a.Target)
		return nil
	}, sim.SignalMigration, done)
}

// ShutdownHostAction powers off an empty host, or suspends it when Suspend
// is set.
type ShutdownHostAction struct {
	Host    *host.Host
	Suspend bool
}

func (a *ShutdownHostAction) String() string {
	if a.Suspend {
		return fmt.Sprintf("suspend %s", a.Host)
	}
	return fmt.Sprintf("shutdown %s", a.Host)
}

func (a *ShutdownHostAction) Start(ctx *ExecContext, done func(Outcome)) {
	begin, complete := a.Host.BeginPowerOff, a.Host.CompletePowerOff
	if a.Suspend {
		begin, complete = a.Host.BeginSuspend, a.Host.CompleteSuspend
	}
	if err := begin(); err != nil {
		failNow(ctx, a, err, done)
		return
	}
	completeAfter(ctx, a, a.Host.Desc.PowerOffTime, func() error {
		if err := complete(); err != nil {
			return err
		}
		reschedule(ctx, a.Host)
		return nil
	}, sim.SignalShutdown, done)
}

// PowerOnHostAction powers on an OFF or SUSPENDED host. A host that is
// already ON succeeds immediately.
type PowerOnHostAction struct {
	Host *host.Host
}

func (a *PowerOnHostAction) String() string {
	return fmt.Sprintf("power on %s", a.Host)
}

func (a *PowerOnHostAction) Start(ctx *ExecContext, done func(Outcome)) {
	if a.Host.State() == host.On {
		completeAfter(ctx, a, 0, func() error { return nil }, "", done)
		return
	}
	if err := a.Host.BeginPowerOn(); err != nil {
		failNow(ctx, a, err, done)
		return
	}
	completeAfter(ctx, a, a.Host.Desc.PowerOnTime, func() error {
		if err := a.Host.CompletePowerOn(); err != nil {
			return err
		}
		reschedule(ctx, a.Host)
		return nil
	}, sim.SignalPowerOn, done)
}

// InstantiateVmAction starts a new VM on a host. The VM exists only once the
// action completes; OnPlaced is then called with it.
type InstantiateVmAction struct {
	Request  VmRequest
	Target   *host.Host
	Duration int64
	OnPlaced func(vm *host.VM)
}

func (a *InstantiateVmAction) String() string {
	return fmt.Sprintf("instantiate vm#%d(%s) on %s", a.Request.ID, a.Request.Desc.Name, a.Target)
}

func (a *InstantiateVmAction) Start(ctx *ExecContext, done func(Outcome)) {
	a.Target.BeginInstantiate()
	completeAfter(ctx, a, a.Duration, func() error {
		a.Target.EndInstantiate()
		if a.Target.State() != host.On {
			return fmt.Errorf("%w: %s is %s", ErrTargetNotOn, a.Target, a.Target.State())
		}
		vm := host.NewVM(a.Request.ID, a.Request.Desc, a.Request.Source, ctx.Sim.Clock())
		if err := a.Target.CheckFits(vm); err != nil {
			return err
		}
		if err := a.Target.Place(vm, ctx.Sim.Clock()); err != nil {
			return err
		}
		reschedule(ctx, a.Target)
		if a.OnPlaced != nil {
			a.OnPlaced(vm)
		}
		return nil
	}, sim.SignalPlacement, done)
}

// FuncAction runs Fn after Duration ticks. A non-nil error fails the action.
type FuncAction struct {
	Name     string
	Duration int64
	Fn       func() error
}

func (a *FuncAction) String() string {
	return a.Name
}

func (a *FuncAction) Start(ctx *ExecContext, done func(Outcome)) {
	completeAfter(ctx, a, a.Duration, func() error {
		if a.Fn == nil {
			return nil
		}
		return a.Fn()
	}, "", done)
}

// reschedule reruns the scheduler of hosts whose VM set or power state
// changed. A capacity shortage aborts the simulation.
func reschedule(ctx *ExecContext, hosts ...*host.Host) {
	for _, h := range hosts {
		if err := h.Schedule(); err != nil {
			ctx.Sim.Fatal(sim.FatalCapacity, err)
		}
	}
}
