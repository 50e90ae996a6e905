// Per-agent collection progress, owned by the pipeline and exposed
// read-only to the rendering collaborator.
package action

import (
	"time"

	"github.com/google/uuid"

	"wildmind/internal/agent"
	"wildmind/internal/world"
)

// Progress is a timed collection in flight for one agent.
type Progress struct {
	AgentID   uuid.UUID  `json:"agent_id"`
	TargetID  uuid.UUID  `json:"target_id"`
	Item      world.Kind `json:"item"`
	StartedAt time.Time  `json:"started_at"`
	Deadline  time.Time  `json:"deadline"`

	agent *agent.Agent
	done  Callback
}

// Fraction returns completion in [0,1] at the given time.
func (p *Progress) Fraction(now time.Time) float64 {
	total := p.Deadline.Sub(p.StartedAt)
	if total <= 0 {
		return 1
	}
	f := float64(now.Sub(p.StartedAt)) / float64(total)
	if f < 0 {
		return 0
	}
	if f > 1 {
		return 1
	}
	return f
}

func (e *Executor) startProgress(a *agent.Agent, ent *world.Entity, item world.Kind, durationSec float64, done Callback) {
	now := e.Now()
	e.progress[a.ID] = &Progress{
		AgentID:   a.ID,
		TargetID:  ent.ID,
		Item:      item,
		StartedAt: now,
		Deadline:  now.Add(time.Duration(durationSec * float64(time.Second))),
		agent:     a,
		done:      done,
	}
}

// cancelProgress drops an in-flight collection without invoking its
// callback (supersession semantics).
func (e *Executor) cancelProgress(agentID uuid.UUID) {
	delete(e.progress, agentID)
}

// CancelProgress aborts the agent's in-flight collection, if any.
func (e *Executor) CancelProgress(agentID uuid.UUID) {
	e.cancelProgress(agentID)
}

// IsCollecting reports whether the agent has a collection in flight.
// The decision trigger reads this to suppress interruptions
// mid-collection.
func (e *Executor) IsCollecting(agentID uuid.UUID) bool {
	_, ok := e.progress[agentID]
	return ok
}

// ProgressFor returns a copy of the agent's in-flight collection for
// display, or nil.
func (e *Executor) ProgressFor(agentID uuid.UUID) *Progress {
	p, ok := e.progress[agentID]
	if !ok {
		return nil
	}
	cp := *p
	cp.done = nil
	cp.agent = nil
	return &cp
}

// Update completes collections whose deadlines have passed. Called
// once per scheduling tick.
func (e *Executor) Update(now time.Time) {
	for id, p := range e.progress {
		if now.Before(p.Deadline) {
			continue
		}
		delete(e.progress, id)

		ent := e.World.Get(p.TargetID)
		var res Result
		if ent == nil {
			res = failure(ReasonItemNotFound)
		} else {
			res = e.finishCollect(p.agent, ent, p.Item)
		}
		if p.done != nil {
			p.done(res)
		}
	}
}
