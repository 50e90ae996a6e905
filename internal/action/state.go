// Movement/action state machine. One Controller per agent is the
// single authority on what that agent is doing right now. Every state
// registers at most one deadline at entry and is polled once per
// scheduling tick via Update; there are no re-entrant timer chains.
package action

import (
	"math/rand"
	"time"

	"github.com/google/uuid"

	"wildmind/internal/agent"
	"wildmind/internal/config"
	"wildmind/internal/world"
)

// StateKind enumerates the behavior modes.
type StateKind string

const (
	StateIdle      StateKind = "idle"
	StateWandering StateKind = "wandering"
	StateSearching StateKind = "searching"
	StateMovingTo  StateKind = "moving_to"
	StateSleeping  StateKind = "sleeping"
)

// TargetRef names a navigation target: a live entity when EntityID is
// set, otherwise a bare position synthesized from memory or supplied
// directly.
type TargetRef struct {
	EntityID uuid.UUID      `json:"entity_id,omitempty"`
	Kind     world.Kind     `json:"kind,omitempty"`
	Category world.Category `json:"category,omitempty"`
	Pos      world.Vec2     `json:"pos"`
}

// CurrentPos returns the target's live position when the entity still
// exists, else the last known position.
func (t TargetRef) CurrentPos(w *world.World) world.Vec2 {
	if t.EntityID != uuid.Nil {
		if e := w.Get(t.EntityID); e != nil {
			return e.Pos
		}
	}
	return t.Pos
}

// State is the controller's current behavior, exposed read-only.
type State struct {
	Kind            StateKind  `json:"kind"`
	Deadline        time.Time  `json:"deadline,omitempty"`
	Target          *TargetRef `json:"target,omitempty"`
	ArrivalDistance float64    `json:"arrival_distance,omitempty"`
	SearchItem      world.Kind `json:"search_item,omitempty"`
	SearchWatch     world.Kind `json:"search_watch,omitempty"`
}

// Controller runs the state machine for one agent. All methods must
// be called from the simulation goroutine.
type Controller struct {
	agent *agent.Agent
	world *world.World
	cfg   config.Movement
	now   func() time.Time
	rng   *rand.Rand

	state    State
	cb       Callback
	subToken agent.Token

	idleSince time.Time
}

// NewController creates an idle controller for a.
func NewController(a *agent.Agent, w *world.World, cfg config.Movement, now func() time.Time, rng *rand.Rand) *Controller {
	return &Controller{
		agent:     a,
		world:     w,
		cfg:       cfg,
		now:       now,
		rng:       rng,
		state:     State{Kind: StateIdle},
		idleSince: now(),
	}
}

// Current returns the active state.
func (c *Controller) Current() State {
	return c.state
}

// IdleSince returns when the controller last entered Idle. Only
// meaningful while the state is Idle.
func (c *Controller) IdleSince() time.Time {
	return c.idleSince
}

// Agent returns the controlled agent.
func (c *Controller) Agent() *agent.Agent {
	return c.agent
}

// Wander enters Wandering until a deadline. A non-positive duration
// picks a random one from the configured bounds.
func (c *Controller) Wander(d time.Duration, cb Callback) {
	if c.agent.IsDead {
		invoke(cb, failure(ReasonEntityDead))
		return
	}
	c.cancelCurrent()
	if d <= 0 {
		span := c.cfg.WanderMaxSec - c.cfg.WanderMinSec
		d = time.Duration((c.cfg.WanderMinSec + c.rng.Float64()*span) * float64(time.Second))
	}
	c.state = State{Kind: StateWandering, Deadline: c.now().Add(d)}
	c.cb = cb
	c.agent.IsMoving = true
}

// MoveTo enters MovingTo toward target; the completion check fires
// when the agent comes within arrival of the target's current
// position. Position integration itself belongs to the world
// movement collaborator.
func (c *Controller) MoveTo(target TargetRef, arrival float64, cb Callback) {
	if c.agent.IsDead {
		invoke(cb, failure(ReasonEntityDead))
		return
	}
	c.cancelCurrent()
	if arrival <= 0 {
		arrival = c.cfg.ArrivalDistance
	}
	t := target
	c.state = State{Kind: StateMovingTo, Target: &t, ArrivalDistance: arrival}
	c.cb = cb
	c.agent.IsMoving = true
}

// SearchFor looks for an entity satisfying the table-driven search
// spec for item. Succeeds immediately if one is already perceived;
// otherwise subscribes to newly-perceived notifications, wanders as
// the visible side effect, and fails with timeout at the configured
// deadline.
func (c *Controller) SearchFor(item world.Kind, cb Callback) {
	if c.agent.IsDead {
		invoke(cb, failure(ReasonEntityDead))
		return
	}
	c.cancelCurrent()

	spec := world.SearchSpecFor(item)
	if m := c.agent.Perception.ClosestMatch(spec, item, c.agent.Pos); m != nil {
		c.enterIdle()
		invoke(cb, Result{Success: true, Entity: m})
		return
	}

	deadline := c.now().Add(time.Duration(c.cfg.SearchDurationSec * float64(time.Second)))
	c.state = State{
		Kind:        StateSearching,
		Deadline:    deadline,
		SearchItem:  item,
		SearchWatch: spec.Watch,
	}
	c.cb = cb
	c.agent.IsMoving = true
	c.subToken = c.agent.Perception.Subscribe(func(e *world.Entity) {
		if c.state.Kind != StateSearching {
			return
		}
		if !spec.Matches(e, item) {
			return
		}
		c.complete(Result{Success: true, Entity: e})
	})
}

// Sleep enters Sleeping. Purely vitals-driven: waking is decided each
// tick by energy and health thresholds, never by a deadline.
func (c *Controller) Sleep(cb Callback) {
	if c.agent.IsDead {
		invoke(cb, failure(ReasonEntityDead))
		return
	}
	c.cancelCurrent()
	c.state = State{Kind: StateSleeping}
	c.cb = cb
	c.agent.IsSleeping = true
	c.agent.IsMoving = false
}

// StopCurrent forces Idle. The pending callback is dropped, not
// invoked: this is a caller-initiated abort, not a completion.
func (c *Controller) StopCurrent() {
	c.cancelCurrent()
	c.enterIdle()
}

// Update polls the active state against the current time. Called once
// per scheduling tick by the simulation.
func (c *Controller) Update(now time.Time) {
	if c.agent.IsDead && c.state.Kind != StateIdle {
		c.cancelCurrent()
		c.enterIdle()
		return
	}

	switch c.state.Kind {
	case StateWandering:
		if !now.Before(c.state.Deadline) {
			c.complete(Result{Success: true})
		}

	case StateMovingTo:
		target := *c.state.Target
		pos := target.CurrentPos(c.world)
		if c.agent.Pos.Dist(pos) <= c.state.ArrivalDistance {
			var arrived *world.Entity
			if target.EntityID != uuid.Nil {
				arrived = c.world.Get(target.EntityID)
			}
			c.complete(Result{Success: true, Entity: arrived})
		}

	case StateSearching:
		if !now.Before(c.state.Deadline) {
			c.complete(failure(ReasonTimeout))
		}

	case StateSleeping:
		switch {
		case c.agent.Vitals.Health < c.cfg.SleepInterruptHealth:
			c.complete(Result{Success: false, Reason: ReasonHPCritical, Interrupted: true})
		case c.agent.Vitals.Energy >= c.cfg.SleepWakeEnergy:
			c.complete(Result{Success: true})
		}
	}
}

// complete fires the single-shot callback and returns to Idle.
func (c *Controller) complete(res Result) {
	cb := c.cb
	c.cancelCurrent()
	c.enterIdle()
	invoke(cb, res)
}

// cancelCurrent tears down the active state's subscription and flags
// without invoking its callback. Starting a new state over an old one
// goes through here, which is what makes supersession silent.
func (c *Controller) cancelCurrent() {
	if c.subToken != 0 {
		c.agent.Perception.Unsubscribe(c.subToken)
		c.subToken = 0
	}
	c.cb = nil
	c.agent.IsSleeping = false
	c.agent.IsMoving = false
}

func (c *Controller) enterIdle() {
	c.state = State{Kind: StateIdle}
	c.idleSince = c.now()
}

func invoke(cb Callback, res Result) {
	if cb != nil {
		cb(res)
	}
}
