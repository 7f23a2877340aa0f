package management

import (
	"fmt"
	"strings"
)

// SequentialExecutor runs its actions one after another. By default a failed
// action does not stop the chain; with StopOnFailure the remaining actions
// are skipped.
type SequentialExecutor struct {
	Actions       []Action
	StopOnFailure bool
}

// NewSequentialExecutor returns an executor over actions.
func NewSequentialExecutor(actions ...Action) *SequentialExecutor {
	return &SequentialExecutor{Actions: actions}
}

// Add appends a.
func (e *SequentialExecutor) Add(a Action) {
	e.Actions = append(e.Actions, a)
}

// Len returns the number of actions.
func (e *SequentialExecutor) Len() int {
	return len(e.Actions)
}

// Start implements Action. An empty executor completes synchronously.
func (e *SequentialExecutor) Start(ctx *ExecContext, done func(Outcome)) {
	started := ctx.Sim.Clock()
	success := true
	var firstErr error
	var next func(i int)
	next = func(i int) {
		if i == len(e.Actions) {
			done(Outcome{Action: e, Success: success, Err: firstErr, Started: started, Completed: ctx.Sim.Clock()})
			return
		}
		e.Actions[i].Start(ctx, func(o Outcome) {
			if !o.Success {
				if success {
					firstErr = o.Err
				}
				success = false
				if e.StopOnFailure {
					next(len(e.Actions))
					return
				}
			}
			next(i + 1)
		})
	}
	next(0)
}

func (e *SequentialExecutor) String() string {
	return "sequential" + describe(e.Actions)
}

// ConcurrentExecutor starts all of its actions at once and completes when
// the last of them does.
type ConcurrentExecutor struct {
	Actions []Action
}

// NewConcurrentExecutor returns an executor over actions.
func NewConcurrentExecutor(actions ...Action) *ConcurrentExecutor {
	return &ConcurrentExecutor{Actions: actions}
}

// Add appends a.
func (e *ConcurrentExecutor) Add(a Action) {
	e.Actions = append(e.Actions, a)
}

// Len returns the number of actions.
func (e *ConcurrentExecutor) Len() int {
	return len(e.Actions)
}

// Start implements Action. An empty executor completes synchronously.
func (e *ConcurrentExecutor) Start(ctx *ExecContext, done func(Outcome)) {
	started := ctx.Sim.Clock()
	if len(e.Actions) == 0 {
		done(Outcome{Action: e, Success: true, Started: started, Completed: started})
		return
	}
	remaining := len(e.Actions)
	success := true
	var firstErr error
	for _, a := range e.Actions {
		a.Start(ctx, func(o Outcome) {
			if !o.Success && success {
				success = false
				firstErr = o.Err
			}
			remaining--
			if remaining == 0 {
				done(Outcome{Action: e, Success: success, Err: firstErr, Started: started, Completed: ctx.Sim.Clock()})
			}
		})
	}
}

func (e *ConcurrentExecutor) String() string {
	return "concurrent" + describe(e.Actions)
}

func describe(actions []Action) string {
	parts := make([]string, len(actions))
	for i, a := range actions {
		parts[i] = a.String()
	}
	return fmt.Sprintf("[%s]", strings.Join(parts, ", "))
}
