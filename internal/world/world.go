package world

import (
	"github.com/google/uuid"
)

// World is the flat container of all placed entities. Entity order is
// stable (insertion order) so that distance ties during target
// resolution break deterministically.
type World struct {
	Width, Height float64

	entities []*Entity
	byID     map[uuid.UUID]*Entity
}

// New creates an empty world of the given extent.
func New(width, height float64) *World {
	return &World{
		Width:  width,
		Height: height,
		byID:   make(map[uuid.UUID]*Entity),
	}
}

// Add places an entity into the world.
func (w *World) Add(e *Entity) {
	w.entities = append(w.entities, e)
	w.byID[e.ID] = e
}

// Remove takes an entity out of the world. Removing an absent entity
// is a no-op.
func (w *World) Remove(id uuid.UUID) {
	if _, ok := w.byID[id]; !ok {
		return
	}
	delete(w.byID, id)
	for i, e := range w.entities {
		if e.ID == id {
			w.entities = append(w.entities[:i], w.entities[i+1:]...)
			return
		}
	}
}

// Get returns the entity with the given ID, or nil.
func (w *World) Get(id uuid.UUID) *Entity {
	return w.byID[id]
}

// Entities returns all entities in stable order. The slice is shared;
// callers must not mutate it.
func (w *World) Entities() []*Entity {
	return w.entities
}

// Within returns entities within radius of pos, in stable order.
func (w *World) Within(pos Vec2, radius float64) []*Entity {
	var out []*Entity
	for _, e := range w.entities {
		if e.Pos.Dist(pos) <= radius {
			out = append(out, e)
		}
	}
	return out
}

// OfKind returns all entities of the given kind, in stable order.
func (w *World) OfKind(kind Kind) []*Entity {
	var out []*Entity
	for _, e := range w.entities {
		if e.Kind == kind {
			out = append(out, e)
		}
	}
	return out
}

// ClosestOfKind returns the entity of kind nearest to pos, or nil.
// Ties keep the earlier-placed entity.
func (w *World) ClosestOfKind(kind Kind, pos Vec2) *Entity {
	var best *Entity
	bestDist := 0.0
	for _, e := range w.entities {
		if e.Kind != kind {
			continue
		}
		d := e.Pos.Dist(pos)
		if best == nil || d < bestDist {
			best = e
			bestDist = d
		}
	}
	return best
}

// Clamp constrains pos to the world extent.
func (w *World) Clamp(pos Vec2) Vec2 {
	if pos.X < 0 {
		pos.X = 0
	}
	if pos.Y < 0 {
		pos.Y = 0
	}
	if pos.X > w.Width {
		pos.X = w.Width
	}
	if pos.Y > w.Height {
		pos.Y = w.Height
	}
	return pos
}
