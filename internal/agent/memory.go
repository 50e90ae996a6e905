// Spatial memory — last-known locations of entity kinds that have
// left perception. Supplies fallback targets to the action pipeline
// and remembered-but-not-visible context to the decision trigger.
package agent

import (
	"wildmind/internal/world"
)

// Remembered is a last-known sighting of an entity kind.
type Remembered struct {
	Kind world.Kind `json:"kind"`
	Pos  world.Vec2 `json:"pos"`
	Tick uint64     `json:"tick"`
}

// Memory maps entity kinds to their most recent remembered sighting.
type Memory struct {
	byKind map[world.Kind]Remembered
}

// NewMemory creates an empty memory.
func NewMemory() *Memory {
	return &Memory{byKind: make(map[world.Kind]Remembered)}
}

// Remember records (or overwrites) the last-known location of a kind.
func (m *Memory) Remember(kind world.Kind, pos world.Vec2, tick uint64) {
	m.byKind[kind] = Remembered{Kind: kind, Pos: pos, Tick: tick}
}

// Recall returns the remembered sighting for a kind, if any.
func (m *Memory) Recall(kind world.Kind) (Remembered, bool) {
	r, ok := m.byKind[kind]
	return r, ok
}

// Forget drops the remembered sighting for a kind.
func (m *Memory) Forget(kind world.Kind) {
	delete(m.byKind, kind)
}

// All returns every remembered sighting in unspecified order.
func (m *Memory) All() []Remembered {
	out := make([]Remembered, 0, len(m.byKind))
	for _, r := range m.byKind {
		out = append(out, r)
	}
	return out
}
