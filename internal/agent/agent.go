// Package agent provides the agent data model, the vitals engine, and
// the perception/memory layer. An agent's mutable fields are owned by
// the simulation goroutine; nothing here is safe for concurrent
// mutation from two pipelines.
package agent

import (
	"errors"

	"github.com/google/uuid"

	"wildmind/internal/world"
)

// Agent is an autonomous actor with needs, an inventory, and exactly
// one active behavior at a time.
type Agent struct {
	ID   uuid.UUID `json:"id"`
	Name string    `json:"name"`
	Pos  world.Vec2 `json:"pos"`

	Vitals    Vitals     `json:"vitals"`
	Inventory *Inventory `json:"inventory"`

	IsDead     bool `json:"is_dead"`
	IsSleeping bool `json:"is_sleeping"`
	IsRunning  bool `json:"is_running"`
	IsMoving   bool `json:"is_moving"`

	Perception *Perception `json:"-"`
	Memory     *Memory     `json:"-"`

	// Display-only speech bubble from the last decision.
	Bubble Bubble `json:"bubble"`

	// Mirror entity registered in the world so other agents perceive
	// this one.
	Mirror *world.Entity `json:"-"`
}

// Bubble is the short display text attached to a decision.
type Bubble struct {
	Text  string `json:"text"`
	Emoji string `json:"emoji"`
}

// Vitals are the four bounded needs. All range 0-100; lower is worse.
type Vitals struct {
	Food   float64 `json:"food"`
	Energy float64 `json:"energy"`
	Warmth float64 `json:"warmth"`
	Health float64 `json:"health"`
}

// New creates a live agent at pos with full vitals and an empty
// inventory of the given capacity.
func New(name string, pos world.Vec2, capacity int, perceptionRadius float64) *Agent {
	a := &Agent{
		ID:         uuid.New(),
		Name:       name,
		Pos:        pos,
		Vitals:     Vitals{Food: 100, Energy: 100, Warmth: 100, Health: 100},
		Inventory:  NewInventory(capacity),
		Memory:     NewMemory(),
		Perception: NewPerception(perceptionRadius),
	}
	a.Mirror = &world.Entity{
		ID:       a.ID,
		Kind:     world.KindAgent,
		Category: world.CategoryAgent,
		Pos:      pos,
	}
	return a
}

// SyncMirror copies the agent's position onto its world mirror entity.
func (a *Agent) SyncMirror() {
	if a.Mirror != nil {
		a.Mirror.Pos = a.Pos
	}
}

// ErrInventoryFull is returned by Inventory.Add at capacity.
var ErrInventoryFull = errors.New("inventory full")

// Inventory is a bounded ordered list of items. No stacking: each
// item occupies one slot.
type Inventory struct {
	capacity int
	items    []world.Item
}

// NewInventory creates an empty inventory with the given capacity.
func NewInventory(capacity int) *Inventory {
	return &Inventory{capacity: capacity}
}

// Add appends an item, or returns ErrInventoryFull without mutating.
func (inv *Inventory) Add(it world.Item) error {
	if len(inv.items) >= inv.capacity {
		return ErrInventoryFull
	}
	inv.items = append(inv.items, it)
	return nil
}

// RemoveKind removes and returns the first item of kind.
func (inv *Inventory) RemoveKind(kind world.Kind) (world.Item, bool) {
	for i, it := range inv.items {
		if it.Kind == kind {
			inv.items = append(inv.items[:i], inv.items[i+1:]...)
			return it, true
		}
	}
	return world.Item{}, false
}

// Has reports whether any item of kind is held.
func (inv *Inventory) Has(kind world.Kind) bool {
	for _, it := range inv.items {
		if it.Kind == kind {
			return true
		}
	}
	return false
}

// Full reports whether the inventory is at capacity.
func (inv *Inventory) Full() bool {
	return len(inv.items) >= inv.capacity
}

// Count returns the number of held items.
func (inv *Inventory) Count() int {
	return len(inv.items)
}

// Capacity returns the slot bound.
func (inv *Inventory) Capacity() int {
	return inv.capacity
}

// Items returns a copy of the held items in order.
func (inv *Inventory) Items() []world.Item {
	out := make([]world.Item, len(inv.items))
	copy(out, inv.items)
	return out
}
