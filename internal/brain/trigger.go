// Trigger evaluation and the decision cycle. ShouldTrigger is a pure
// decision over per-agent state; Fire runs the asynchronous service
// call behind the pending guard, so at most one call is ever
// outstanding per agent.
package brain

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"wildmind/internal/action"
	"wildmind/internal/agent"
	"wildmind/internal/config"
	"wildmind/internal/world"
)

// ContextKind names why a trigger evaluation is happening.
type ContextKind string

const (
	ContextActionCompleted ContextKind = "actionCompleted"
	ContextNeedCritical    ContextKind = "needCritical"
	ContextLowHealth       ContextKind = "lowHealth"
	ContextEntityPerceived ContextKind = "entityPerceived"
	ContextIdle            ContextKind = "idle"
	ContextHeartbeat       ContextKind = "heartbeat"
)

// TriggerContext carries the evidence for one trigger evaluation.
type TriggerContext struct {
	Kind       ContextKind
	Entity     *world.Entity  // entityPerceived
	ActionName string         // actionCompleted
	Result     *action.Result // actionCompleted
	Need       string         // needCritical
}

// DecisionRecorder observes accepted decisions and finished actions,
// typically the journal. Nil disables recording.
type DecisionRecorder interface {
	RecordDecision(a *agent.Agent, dec *Decision, raw string)
	RecordOutcome(a *agent.Agent, name string, res action.Result, at time.Time)
}

// envelope is a finished service call delivered back to the
// simulation goroutine.
type envelope struct {
	agentID uuid.UUID
	raw     string
	err     error
}

// Brain is the decision trigger engine for all agents.
type Brain struct {
	cfg   config.Trigger
	svc   Service
	exec  *action.Executor
	world *world.World
	now   func() time.Time

	Recorder DecisionRecorder

	states map[uuid.UUID]*AgentAIState
	inbox  chan envelope
}

// New creates a trigger engine. svc may be nil, which disables
// triggering entirely (agents stay on their reflexive loop).
func New(cfg config.Trigger, svc Service, exec *action.Executor, w *world.World, now func() time.Time) *Brain {
	return &Brain{
		cfg:    cfg,
		svc:    svc,
		exec:   exec,
		world:  w,
		now:    now,
		states: make(map[uuid.UUID]*AgentAIState),
		inbox:  make(chan envelope, 64),
	}
}

// StateFor returns the agent's AI state, creating it on first
// reference.
func (b *Brain) StateFor(id uuid.UUID) *AgentAIState {
	st, ok := b.states[id]
	if !ok {
		st = &AgentAIState{Enabled: b.svc != nil}
		b.states[id] = st
	}
	return st
}

// SetEnabled toggles decision-making for one agent.
func (b *Brain) SetEnabled(id uuid.UUID, enabled bool) {
	b.StateFor(id).Enabled = enabled
}

// RemoveAgent clears the AI state when an agent leaves the
// simulation.
func (b *Brain) RemoveAgent(id uuid.UUID) {
	delete(b.states, id)
}

// ShouldTrigger applies the gate chain and the per-context rules.
// Decides only; it never launches a call or touches the pending
// guard.
func (b *Brain) ShouldTrigger(a *agent.Agent, ctrl *action.Controller, tc TriggerContext) bool {
	st := b.StateFor(a.ID)
	now := b.now()

	if !st.Enabled || st.Pending || a.IsDead {
		return false
	}
	// Collecting and sleeping always suppress triggering, regardless
	// of context.
	if a.IsSleeping || b.exec.IsCollecting(a.ID) {
		return false
	}
	if !st.callAllowed(now, b.window(), b.cfg.MaxCallsPerWindow, b.minSpacing()) {
		return false
	}

	switch tc.Kind {
	case ContextActionCompleted, ContextNeedCritical, ContextLowHealth:
		return true

	case ContextEntityPerceived:
		if tc.Entity == nil {
			return false
		}
		cat := tc.Entity.Category
		if cat == world.CategoryThreat {
			return true
		}
		if cat == world.CategoryNone {
			return false
		}
		pursuit := b.pursuitCategory(ctrl)
		if pursuit == world.CategoryNone {
			// Aimless: any categorized newcomer interrupts.
			return true
		}
		return cat != pursuit

	case ContextIdle:
		return ctrl.Current().Kind == action.StateIdle &&
			now.Sub(ctrl.IdleSince()) >= time.Duration(b.cfg.IdleDelaySec*float64(time.Second))

	case ContextHeartbeat:
		return !st.LastCall.IsZero() &&
			now.Sub(st.LastCall) >= time.Duration(b.cfg.HeartbeatSec*float64(time.Second))
	}
	return false
}

// pursuitCategory derives the category of whatever the agent is
// currently pursuing. This is the single resolution point for the
// interrupt comparison: search targets use the watched kind's
// category, navigation targets use the stored category with a live
// registry lookup as fallback.
func (b *Brain) pursuitCategory(ctrl *action.Controller) world.Category {
	st := ctrl.Current()
	switch st.Kind {
	case action.StateSearching:
		return world.CategoryOf(st.SearchWatch)
	case action.StateMovingTo:
		t := st.Target
		if t == nil {
			return world.CategoryNone
		}
		if t.Category != world.CategoryNone {
			return t.Category
		}
		if e := b.world.Get(t.EntityID); e != nil {
			return e.Category
		}
		return world.CategoryOf(t.Kind)
	}
	return world.CategoryNone
}

// MaybeTrigger fires a decision cycle if the gates pass. Returns
// whether a call was launched.
func (b *Brain) MaybeTrigger(a *agent.Agent, ctrl *action.Controller, tc TriggerContext) bool {
	if b.svc == nil || !b.ShouldTrigger(a, ctrl, tc) {
		return false
	}
	b.fire(a, ctrl, tc)
	return true
}

// fire records the call, sets the pending guard, and launches the
// service call off the simulation goroutine. The response (or error)
// comes back through the inbox.
func (b *Brain) fire(a *agent.Agent, ctrl *action.Controller, tc TriggerContext) {
	st := b.StateFor(a.ID)
	now := b.now()
	st.recordCall(now, b.window())
	st.Pending = true

	situation := b.BuildSituation(a, ctrl, tc)
	agentID := a.ID

	slog.Debug("decision triggered", "agent", a.Name, "context", tc.Kind)

	go func() {
		ctx, cancel := context.WithTimeout(context.Background(), 45*time.Second)
		defer cancel()
		raw, err := b.svc.Decide(ctx, situation)
		b.inbox <- envelope{agentID: agentID, raw: raw, err: err}
	}()
}

// Lookup resolves an agent and its controller by ID for inbox
// delivery.
type Lookup func(uuid.UUID) (*agent.Agent, *action.Controller, bool)

// Drain delivers any finished service calls into the execution
// pipeline. Called once per scheduling tick on the simulation
// goroutine. Failures clear the pending guard and are returned to the
// caller, which decides how to surface them.
func (b *Brain) Drain(lookup Lookup) []error {
	var errs []error
	for {
		select {
		case env := <-b.inbox:
			if err := b.handle(env, lookup); err != nil {
				errs = append(errs, err)
			}
		default:
			return errs
		}
	}
}

func (b *Brain) handle(env envelope, lookup Lookup) error {
	st := b.StateFor(env.agentID)
	defer func() { st.Pending = false }()

	a, ctrl, ok := lookup(env.agentID)
	if !ok {
		return fmt.Errorf("decision for unknown agent %s", env.agentID)
	}
	if env.err != nil {
		return fmt.Errorf("decision service for %s: %w", a.Name, env.err)
	}

	dec, err := ParseDecision(env.raw)
	if err != nil {
		return fmt.Errorf("decision parse for %s: %w", a.Name, err)
	}

	st.LastDecision = dec
	st.Intent = dec.Intent
	st.Plan = dec.Plan
	a.Bubble = dec.Bubble
	if b.Recorder != nil {
		b.Recorder.RecordDecision(a, dec, env.raw)
	}

	b.exec.Execute(a, ctrl, dec.NextAction, nil)
	return nil
}

// EvaluateTick runs the time-driven trigger conditions for one agent:
// due action-completion re-evaluations, critical-need edges, low
// health, the idle delay, and the mandatory heartbeat.
func (b *Brain) EvaluateTick(a *agent.Agent, ctrl *action.Controller, criticalNeed float64) {
	st := b.StateFor(a.ID)
	now := b.now()

	// Due completion re-evaluations first: completion is the
	// strongest natural trigger.
	due := st.completions[:0]
	var fired []pendingCompletion
	for _, c := range st.completions {
		if now.Before(c.due) {
			due = append(due, c)
		} else {
			fired = append(fired, c)
		}
	}
	st.completions = due
	for _, c := range fired {
		res := c.result
		if b.MaybeTrigger(a, ctrl, TriggerContext{Kind: ContextActionCompleted, ActionName: c.name, Result: &res}) {
			return
		}
	}

	if a.IsDead {
		return
	}

	// Critical-need edges.
	for _, need := range []struct {
		name  string
		value float64
		flag  *bool
	}{
		{"food", a.Vitals.Food, &st.foodCritical},
		{"warmth", a.Vitals.Warmth, &st.warmthCritical},
		{"energy", a.Vitals.Energy, &st.energyCritical},
	} {
		critical := need.value < criticalNeed
		if critical && !*need.flag {
			*need.flag = true
			if b.MaybeTrigger(a, ctrl, TriggerContext{Kind: ContextNeedCritical, Need: need.name}) {
				return
			}
		} else if !critical {
			*need.flag = false
		}
	}

	// Low health edge.
	low := a.Vitals.Health < b.cfg.LowHealthThreshold
	if low && !st.healthLow {
		st.healthLow = true
		if b.MaybeTrigger(a, ctrl, TriggerContext{Kind: ContextLowHealth}) {
			return
		}
	} else if !low {
		st.healthLow = false
	}

	if b.MaybeTrigger(a, ctrl, TriggerContext{Kind: ContextIdle}) {
		return
	}
	b.MaybeTrigger(a, ctrl, TriggerContext{Kind: ContextHeartbeat})
}

// OnEntityPerceived runs the interrupt-priority evaluation for a
// newly perceived entity.
func (b *Brain) OnEntityPerceived(a *agent.Agent, ctrl *action.Controller, e *world.Entity) {
	b.MaybeTrigger(a, ctrl, TriggerContext{Kind: ContextEntityPerceived, Entity: e})
}

// RecordAttempt implements action.Recorder: every attempted command
// lands in the agent's bounded history.
func (b *Brain) RecordAttempt(a *agent.Agent, cmd action.Command) {
	st := b.StateFor(a.ID)
	st.appendHistory(HistoryEntry{
		Action:  cmd.Name,
		Args:    cmd.Args,
		Pending: true,
		At:      b.now(),
	}, b.cfg.HistoryLimit)
}

// RecordResult implements action.Recorder: the result resolves the
// pending history entry and, when AI is enabled, schedules an
// action-completion trigger evaluation after the configured delay.
func (b *Brain) RecordResult(a *agent.Agent, name string, res action.Result) {
	st := b.StateFor(a.ID)
	now := b.now()
	st.resolveHistory(name, res, now, b.cfg.HistoryLimit)
	if b.Recorder != nil {
		b.Recorder.RecordOutcome(a, name, res, now)
	}

	if !st.Enabled || b.svc == nil {
		return
	}
	st.completions = append(st.completions, pendingCompletion{
		due:    now.Add(time.Duration(b.cfg.CompletionDelaySec * float64(time.Second))),
		name:   name,
		result: res,
	})
}

func (b *Brain) window() time.Duration {
	return time.Duration(b.cfg.WindowSec * float64(time.Second))
}

func (b *Brain) minSpacing() time.Duration {
	return time.Duration(b.cfg.MinSpacingSec * float64(time.Second))
}
