package management

import (
	"github.com/sirupsen/logrus"

	"github.com/dcsim/dcsim/sim"
)

// Outcome is the result of a completed action.
type Outcome struct {
	Action    Action
	Success   bool
	Err       error
	Started   int64
	Completed int64
}

// ExecContext is shared by every action of one execution tree.
type ExecContext struct {
	Sim *sim.Simulation
	// Origin names what requested the actions, e.g. a policy name. It is the
	// source of every signal the actions emit.
	Origin string
}

// Action is a simulated management operation. Start begins it at the current
// tick; done is called exactly once, when the action and all of its effects
// are complete.
type Action interface {
	Start(ctx *ExecContext, done func(Outcome))
	String() string
}

// Execute starts a at the current tick on behalf of origin.
func Execute(s *sim.Simulation, a Action, origin string) {
	ExecuteThen(s, a, origin, nil)
}

// ExecuteThen is Execute with a completion callback for the whole tree.
func ExecuteThen(s *sim.Simulation, a Action, origin string, then func(Outcome)) {
	ctx := &ExecContext{Sim: s, Origin: origin}
	a.Start(ctx, func(o Outcome) {
		logrus.Debugf("[tick %07d] %s: %s finished (success=%t)", s.Clock(), origin, a, o.Success)
		if then != nil {
			then(o)
		}
	})
}

type actionEvent struct {
	sim.BaseEvent
	finish func()
}

type actionRunner struct{}

func (actionRunner) HandleEvent(e sim.Event) {
	e.(*actionEvent).finish()
}

// completeAfter schedules the completion of primitive action a delay ticks
// from now. apply runs at completion; a nil error means success, in which
// case onSuccess (if non-empty) is emitted.
func completeAfter(ctx *ExecContext, a Action, delay int64, apply func() error, onSuccess sim.Signal, done func(Outcome)) {
	started := ctx.Sim.Clock()
	ev := &actionEvent{BaseEvent: sim.NewBaseEvent(actionRunner{})}
	ev.finish = func() {
		err := apply()
		o := Outcome{Action: a, Success: err == nil, Err: err, Started: started, Completed: ctx.Sim.Clock()}
		if err != nil {
			logrus.Warnf("[tick %07d] %s failed: %v", ctx.Sim.Clock(), a, err)
			ctx.Sim.Emit(sim.SignalActionFailed, ctx.Origin)
		} else {
			ctx.Sim.Emit(sim.SignalActionCompleted, ctx.Origin)
			if onSuccess != "" {
				ctx.Sim.Emit(onSuccess, ctx.Origin)
			}
		}
		done(o)
	}
	ctx.Sim.SendAfter(ev, delay)
}

// failNow completes a with err through a zero-delay event.
func failNow(ctx *ExecContext, a Action, err error, done func(Outcome)) {
	completeAfter(ctx, a, 0, func() error { return err }, "", done)
}
