// Simulation wires the vitals engine, perception, state machines,
// execution pipeline, and decision trigger together and advances them
// each tick.
package engine

import (
	"log/slog"
	"math"
	"math/rand"
	"sync"
	"time"

	"github.com/google/uuid"

	"wildmind/internal/action"
	"wildmind/internal/agent"
	"wildmind/internal/brain"
	"wildmind/internal/config"
	"wildmind/internal/world"
)

// Simulation owns all mutable agent state. Step and the Snapshot
// accessors share a mutex; everything else runs on the loop
// goroutine.
type Simulation struct {
	World *world.World
	Cfg   *config.Config
	Exec  *action.Executor
	Brain *brain.Brain

	Agents []*agent.Agent
	Ctrls  map[uuid.UUID]*action.Controller

	Tick uint64

	now      func() time.Time
	rng      *rand.Rand
	headings map[uuid.UUID]world.Vec2

	mu sync.Mutex
}

// NewSimulation builds a simulation over a populated world. svc may
// be nil to run without the external decision service.
func NewSimulation(w *world.World, cfg *config.Config, svc brain.Service, seed int64) *Simulation {
	now := time.Now
	exec := action.NewExecutor(w, cfg, now)
	br := brain.New(cfg.Trigger, svc, exec, w, now)
	exec.Recorder = br

	return &Simulation{
		World:    w,
		Cfg:      cfg,
		Exec:     exec,
		Brain:    br,
		Ctrls:    make(map[uuid.UUID]*action.Controller),
		now:      now,
		rng:      rand.New(rand.NewSource(seed)),
		headings: make(map[uuid.UUID]world.Vec2),
	}
}

// SetClock replaces the time source. Test hook; call before Step.
func (s *Simulation) SetClock(now func() time.Time) {
	s.now = now
	s.Exec.Now = now
}

// AddAgent spawns an agent at pos and registers its mirror entity and
// controller.
func (s *Simulation) AddAgent(name string, pos world.Vec2) *agent.Agent {
	a := agent.New(name, pos, s.Cfg.Actions.InventoryCapacity, s.Cfg.World.PerceptionRadius)
	s.Agents = append(s.Agents, a)
	s.World.Add(a.Mirror)
	s.Ctrls[a.ID] = action.NewController(a, s.World, s.Cfg.Movement, s.nowFn, s.rng)
	s.Brain.StateFor(a.ID)
	slog.Info("agent spawned", "name", name, "x", pos.X, "y", pos.Y)
	return a
}

// RemoveAgent takes an agent out of the simulation and clears its AI
// state.
func (s *Simulation) RemoveAgent(id uuid.UUID) {
	for i, a := range s.Agents {
		if a.ID == id {
			s.Agents = append(s.Agents[:i], s.Agents[i+1:]...)
			break
		}
	}
	s.World.Remove(id)
	delete(s.Ctrls, id)
	delete(s.headings, id)
	s.Brain.RemoveAgent(id)
}

// Controller returns the state machine for an agent.
func (s *Simulation) Controller(id uuid.UUID) *action.Controller {
	return s.Ctrls[id]
}

func (s *Simulation) nowFn() time.Time {
	return s.now()
}

func (s *Simulation) lookup(id uuid.UUID) (*agent.Agent, *action.Controller, bool) {
	ctrl, ok := s.Ctrls[id]
	if !ok {
		return nil, nil, false
	}
	return ctrl.Agent(), ctrl, true
}

// Step advances the world by dt simulated seconds.
func (s *Simulation) Step(tick uint64, dt float64) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.Tick = tick
	now := s.now()

	// Finished decision calls first, so their actions start this tick.
	for _, err := range s.Brain.Drain(s.lookup) {
		slog.Warn("decision cycle failed", "error", err)
	}

	for _, a := range s.Agents {
		ctrl := s.Ctrls[a.ID]

		wasAlive := !a.IsDead
		agent.TickVitals(a, dt, s.warmthFor(a), s.Cfg.Vitals)
		if wasAlive && a.IsDead {
			slog.Info("agent died", "name", a.Name)
			ctrl.StopCurrent()
			s.Exec.CancelProgress(a.ID)
		}

		s.integrateMovement(a, ctrl, dt)
		a.SyncMirror()

		for _, e := range a.Perception.Refresh(a, s.World, tick) {
			s.Brain.OnEntityPerceived(a, ctrl, e)
		}

		ctrl.Update(now)
	}

	s.Exec.Update(now)

	for _, a := range s.Agents {
		s.Brain.EvaluateTick(a, s.Ctrls[a.ID], s.Cfg.Trigger.CriticalNeed)
	}
}

// warmthFor returns the nearest warmth source for an agent, or nil.
func (s *Simulation) warmthFor(a *agent.Agent) *world.Entity {
	return s.World.ClosestOfKind(world.KindBonfire, a.Pos)
}

// integrateMovement is the world movement collaborator: straight-line
// steps toward the navigation target, random-walk for wander and
// search. Arrival detection itself stays with the state machine.
func (s *Simulation) integrateMovement(a *agent.Agent, ctrl *action.Controller, dt float64) {
	if a.IsDead || !a.IsMoving {
		return
	}

	speed := s.Cfg.Movement.WalkSpeed
	if a.IsRunning {
		speed = s.Cfg.Movement.RunSpeed
	}
	step := speed * dt

	st := ctrl.Current()
	switch st.Kind {
	case action.StateMovingTo:
		target := st.Target.CurrentPos(s.World)
		dist := a.Pos.Dist(target)
		if dist < 1e-9 {
			return
		}
		if step > dist {
			step = dist
		}
		a.Pos = s.World.Clamp(a.Pos.Add((target.X-a.Pos.X)/dist*step, (target.Y-a.Pos.Y)/dist*step))

	case action.StateWandering, action.StateSearching:
		h, ok := s.headings[a.ID]
		if !ok || s.rng.Float64() < 0.05 {
			angle := s.rng.Float64() * 2 * math.Pi
			h = world.Vec2{X: math.Cos(angle), Y: math.Sin(angle)}
		}
		next := a.Pos.Add(h.X*step, h.Y*step)
		clamped := s.World.Clamp(next)
		if clamped != next {
			// Bounce off the world edge.
			h = world.Vec2{X: -h.X, Y: -h.Y}
			clamped = s.World.Clamp(a.Pos.Add(h.X*step, h.Y*step))
		}
		s.headings[a.ID] = h
		a.Pos = clamped
	}
}
