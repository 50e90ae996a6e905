// Perception — what an agent currently sees, plus a typed observer
// registry for newly-perceived notifications. Subscriptions return
// explicit tokens so cancellation on action supersession is
// structural rather than convention-based.
package agent

import (
	"github.com/google/uuid"

	"wildmind/internal/world"
)

// Token identifies a perception subscription. The zero Token never
// matches a live subscription.
type Token int

// Observer receives entities the moment they enter perception.
type Observer func(*world.Entity)

// Perception tracks the visible entity set for one agent.
type Perception struct {
	radius float64

	visible []*world.Entity
	inView  map[uuid.UUID]world.Vec2 // last seen position, for memory on departure

	nextToken Token
	observers map[Token]Observer
}

// NewPerception creates an empty perception set with the given
// radius.
func NewPerception(radius float64) *Perception {
	return &Perception{
		radius:    radius,
		inView:    make(map[uuid.UUID]world.Vec2),
		observers: make(map[Token]Observer),
	}
}

// Subscribe registers an observer for newly-perceived entities and
// returns its cancellation token.
func (p *Perception) Subscribe(fn Observer) Token {
	p.nextToken++
	tok := p.nextToken
	p.observers[tok] = fn
	return tok
}

// Unsubscribe removes a subscription. Unknown tokens are a no-op.
func (p *Perception) Unsubscribe(tok Token) {
	delete(p.observers, tok)
}

// Visible returns the currently perceived entities in stable world
// order. The slice is shared; callers must not mutate it.
func (p *Perception) Visible() []*world.Entity {
	return p.visible
}

// Sees reports whether any entity of kind is currently perceived.
func (p *Perception) Sees(kind world.Kind) bool {
	for _, e := range p.visible {
		if e.Kind == kind {
			return true
		}
	}
	return false
}

// ClosestVisible returns the nearest perceived entity of kind, or
// nil. Distance ties keep the earlier entity in perception order.
func (p *Perception) ClosestVisible(kind world.Kind, from world.Vec2) *world.Entity {
	var best *world.Entity
	bestDist := 0.0
	for _, e := range p.visible {
		if e.Kind != kind {
			continue
		}
		d := e.Pos.Dist(from)
		if best == nil || d < bestDist {
			best = e
			bestDist = d
		}
	}
	return best
}

// ClosestMatch returns the nearest perceived entity satisfying a
// search spec for item kind, or nil.
func (p *Perception) ClosestMatch(spec world.SearchSpec, item world.Kind, from world.Vec2) *world.Entity {
	var best *world.Entity
	bestDist := 0.0
	for _, e := range p.visible {
		if !spec.Matches(e, item) {
			continue
		}
		d := e.Pos.Dist(from)
		if best == nil || d < bestDist {
			best = e
			bestDist = d
		}
	}
	return best
}

// Refresh recomputes the visible set from the world and returns the
// entities that just entered perception, after notifying observers of
// each. Entities that left perception (moved away or removed from the
// world) are written into the agent's memory at their last seen
// position.
func (p *Perception) Refresh(a *Agent, w *world.World, tick uint64) []*world.Entity {
	next := make([]*world.Entity, 0, len(p.visible))
	nextSet := make(map[uuid.UUID]world.Vec2, len(p.visible))
	var entered []*world.Entity

	for _, e := range w.Entities() {
		if e.ID == a.ID {
			continue
		}
		if e.Pos.Dist(a.Pos) > p.radius {
			continue
		}
		next = append(next, e)
		nextSet[e.ID] = e.Pos
		if _, seen := p.inView[e.ID]; !seen {
			entered = append(entered, e)
		}
	}

	// Departures feed spatial memory.
	for _, prev := range p.visible {
		if _, still := nextSet[prev.ID]; still {
			continue
		}
		lastPos, ok := p.inView[prev.ID]
		if !ok {
			lastPos = prev.Pos
		}
		a.Memory.Remember(prev.Kind, lastPos, tick)
	}

	p.visible = next
	p.inView = nextSet

	for _, e := range entered {
		for _, fn := range p.observers {
			fn(e)
		}
	}
	return entered
}
