// Execution dispatch. Execute validates a command, resolves its
// target, and hands it to the state machine or to an instantaneous
// effect, funneling every outcome — including panics from effect code
// — through the single completion callback. Nothing is thrown past
// this boundary.
package action

import (
	"log/slog"
	"time"

	"github.com/google/uuid"

	"wildmind/internal/agent"
	"wildmind/internal/config"
	"wildmind/internal/world"
)

// Recorder observes attempted commands and their results, typically
// backed by the journal. A nil Recorder disables observation.
type Recorder interface {
	RecordAttempt(a *agent.Agent, cmd Command)
	RecordResult(a *agent.Agent, actionName string, res Result)
}

// Executor is the action validation & execution pipeline. One per
// simulation; it owns the per-agent collect progress state.
type Executor struct {
	World    *world.World
	Cfg      *config.Config
	Now      func() time.Time
	Recorder Recorder

	progress map[uuid.UUID]*Progress
}

// NewExecutor creates a pipeline over the given world.
func NewExecutor(w *world.World, cfg *config.Config, now func() time.Time) *Executor {
	return &Executor{
		World:    w,
		Cfg:      cfg,
		Now:      now,
		progress: make(map[uuid.UUID]*Progress),
	}
}

// Execute runs a command for an agent. done is invoked exactly once
// with the terminal result — on validation failure, on completion, or
// on interruption of the dispatched action. A command arriving while
// a collect is in progress supersedes it; the superseded collect's
// callback is never invoked.
func (e *Executor) Execute(a *agent.Agent, ctrl *Controller, cmd Command, done Callback) {
	done = onceCallback(done)

	fail := func(reason string) {
		res := failure(reason)
		e.recordResult(a, cmd.Name, res)
		done(res)
	}

	if reason := Validate(cmd, a, e.World); reason != "" {
		if e.Recorder != nil {
			e.Recorder.RecordAttempt(a, cmd)
		}
		fail(reason)
		return
	}

	var target *TargetRef
	switch cmd.Name {
	case ActionCollect, ActionMoveTo:
		target = ResolveTarget(cmd.Args["target"], a, e.World)
		if target == nil {
			if e.Recorder != nil {
				e.Recorder.RecordAttempt(a, cmd)
			}
			fail(ReasonTargetNotFound)
			return
		}
	}

	if e.Recorder != nil {
		e.Recorder.RecordAttempt(a, cmd)
	}

	// A new command for this agent supersedes any collect in flight.
	e.cancelProgress(a.ID)

	wrapped := func(res Result) {
		e.recordResult(a, cmd.Name, res)
		done(res)
	}

	defer func() {
		if r := recover(); r != nil {
			slog.Error("action dispatch panicked", "agent", a.Name, "action", cmd.Name, "panic", r)
			wrapped(failure(ReasonExecutionError))
		}
	}()

	switch cmd.Name {
	case ActionWander:
		var d time.Duration
		if secs, ok := cmd.argNumber("duration"); ok {
			d = time.Duration(secs * float64(time.Second))
		}
		ctrl.Wander(d, wrapped)

	case ActionMoveTo:
		arrival := 0.0
		if v, ok := cmd.argNumber("arrivalDistance"); ok {
			arrival = v
		}
		ctrl.MoveTo(*target, arrival, wrapped)

	case ActionSearchFor:
		ctrl.SearchFor(world.Kind(cmd.argString("itemType")), wrapped)

	case ActionSleep:
		ctrl.Sleep(wrapped)

	case ActionEat:
		wrapped(e.eat(a, world.Kind(cmd.argString("foodType"))))

	case ActionDrop:
		wrapped(e.drop(a, world.Kind(cmd.argString("itemType"))))

	case ActionCollect:
		e.collect(a, ctrl, *target, world.Kind(cmd.argString("itemType")), wrapped)

	case ActionAddFuel:
		e.addFuel(a, ctrl, wrapped)

	default:
		// Validate keeps this unreachable for external input.
		wrapped(failure(ReasonExecutionError))
	}
}

func (e *Executor) recordResult(a *agent.Agent, name string, res Result) {
	if e.Recorder != nil {
		e.Recorder.RecordResult(a, name, res)
	}
}
