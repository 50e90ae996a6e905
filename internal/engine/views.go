// Read-only snapshot views for the rendering collaborator. The API
// server calls these from its own goroutine; the shared mutex with
// Step is held only while copying.
package engine

import (
	"time"

	"github.com/google/uuid"

	"wildmind/internal/action"
	"wildmind/internal/agent"
	"wildmind/internal/world"
)

// AgentView is the display-only projection of one agent.
type AgentView struct {
	ID         uuid.UUID        `json:"id"`
	Name       string           `json:"name"`
	Pos        world.Vec2       `json:"pos"`
	Vitals     agent.Vitals     `json:"vitals"`
	IsDead     bool             `json:"is_dead"`
	IsSleeping bool             `json:"is_sleeping"`
	State      action.State     `json:"state"`
	Bubble     agent.Bubble     `json:"bubble"`
	Intent     string           `json:"intent,omitempty"`
	Plan       []string         `json:"plan,omitempty"`
	Inventory  []world.Item     `json:"inventory"`
	Collecting *action.Progress `json:"collecting,omitempty"`
	LastCall   time.Time        `json:"last_decision_at,omitempty"`
}

// AgentViews snapshots every agent.
func (s *Simulation) AgentViews() []AgentView {
	s.mu.Lock()
	defer s.mu.Unlock()

	out := make([]AgentView, 0, len(s.Agents))
	for _, a := range s.Agents {
		out = append(out, s.agentView(a))
	}
	return out
}

// AgentViewByID snapshots one agent, if present.
func (s *Simulation) AgentViewByID(id uuid.UUID) (AgentView, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	ctrl, ok := s.Ctrls[id]
	if !ok {
		return AgentView{}, false
	}
	return s.agentView(ctrl.Agent()), true
}

func (s *Simulation) agentView(a *agent.Agent) AgentView {
	ctrl := s.Ctrls[a.ID]
	st := s.Brain.StateFor(a.ID)
	return AgentView{
		ID:         a.ID,
		Name:       a.Name,
		Pos:        a.Pos,
		Vitals:     a.Vitals,
		IsDead:     a.IsDead,
		IsSleeping: a.IsSleeping,
		State:      ctrl.Current(),
		Bubble:     a.Bubble,
		Intent:     st.Intent,
		Plan:       st.Plan,
		Inventory:  a.Inventory.Items(),
		Collecting: s.Exec.ProgressFor(a.ID),
		LastCall:   st.LastCall,
	}
}

// EntityView is the display-only projection of a placed entity.
type EntityView struct {
	ID       uuid.UUID      `json:"id"`
	Kind     world.Kind     `json:"kind"`
	Category world.Category `json:"category"`
	Pos      world.Vec2     `json:"pos"`
	Items    int            `json:"items"`
	Fuel     float64        `json:"fuel,omitempty"`
	MaxFuel  float64        `json:"max_fuel,omitempty"`
}

// WorldView snapshots every placed entity.
func (s *Simulation) WorldView() []EntityView {
	s.mu.Lock()
	defer s.mu.Unlock()

	entities := s.World.Entities()
	out := make([]EntityView, 0, len(entities))
	for _, e := range entities {
		out = append(out, EntityView{
			ID:       e.ID,
			Kind:     e.Kind,
			Category: e.Category,
			Pos:      e.Pos,
			Items:    len(e.Items),
			Fuel:     e.Fuel,
			MaxFuel:  e.MaxFuel,
		})
	}
	return out
}

// CurrentTick returns the most recently processed tick.
func (s *Simulation) CurrentTick() uint64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.Tick
}
