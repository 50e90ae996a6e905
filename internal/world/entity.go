// Package world provides the entity model and flat-plane geometry the
// orchestrator runs against: positioned entities with kinds,
// categories, and small inventories.
package world

import (
	"math"

	"github.com/google/uuid"
)

// Vec2 is a position on the simulation plane.
type Vec2 struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
}

// Dist returns the Euclidean distance to other.
func (v Vec2) Dist(other Vec2) float64 {
	dx := v.X - other.X
	dy := v.Y - other.Y
	return math.Sqrt(dx*dx + dy*dy)
}

// Add returns v offset by dx, dy.
func (v Vec2) Add(dx, dy float64) Vec2 {
	return Vec2{X: v.X + dx, Y: v.Y + dy}
}

// Kind identifies what an entity or item is.
type Kind string

const (
	KindTree    Kind = "tree"
	KindGrass   Kind = "grass"
	KindBonfire Kind = "bonfire"
	KindApple   Kind = "apple"
	KindBerry   Kind = "berry"
	KindStick   Kind = "stick"
	KindWolf    Kind = "wolf"
	KindAgent   Kind = "agent"
)

// Category is the coarse classification used for interrupt-priority
// comparisons in the decision trigger.
type Category string

const (
	CategoryFood   Category = "food"
	CategoryFuel   Category = "fuel"
	CategoryWarmth Category = "warmth"
	CategoryThreat Category = "threat"
	CategorySource Category = "source"
	CategoryAgent  Category = "agent"
	CategoryNone   Category = ""
)

// Item is an inventory entry. Immutable once created; ownership moves
// between inventories as a whole.
type Item struct {
	Kind  Kind              `json:"kind"`
	Props map[string]string `json:"props,omitempty"`
}

// Entity is anything placed in the world: sources (trees, grass),
// ground items, structures, and threats. Agents are mirrored into the
// world as entities of KindAgent for perception purposes.
type Entity struct {
	ID       uuid.UUID `json:"id"`
	Kind     Kind      `json:"kind"`
	Category Category  `json:"category"`
	Pos      Vec2      `json:"pos"`
	Items    []Item    `json:"items,omitempty"`

	// Warmth sources only.
	Fuel    float64 `json:"fuel,omitempty"`
	MaxFuel float64 `json:"max_fuel,omitempty"`
}

// NewEntity creates an entity of the given kind at pos, with the
// category the catalog assigns to that kind.
func NewEntity(kind Kind, pos Vec2) *Entity {
	return &Entity{
		ID:       uuid.New(),
		Kind:     kind,
		Category: CategoryOf(kind),
		Pos:      pos,
	}
}

// Holds reports whether the entity currently holds an item of kind.
func (e *Entity) Holds(kind Kind) bool {
	for _, it := range e.Items {
		if it.Kind == kind {
			return true
		}
	}
	return false
}

// TakeItem removes and returns the first item of kind held by the
// entity.
func (e *Entity) TakeItem(kind Kind) (Item, bool) {
	for i, it := range e.Items {
		if it.Kind == kind {
			e.Items = append(e.Items[:i], e.Items[i+1:]...)
			return it, true
		}
	}
	return Item{}, false
}

// GiveItem appends an item to the entity's holdings. Source entities
// have no capacity bound.
func (e *Entity) GiveItem(it Item) {
	e.Items = append(e.Items, it)
}

// AddFuel raises the fuel level by amount, clamped to MaxFuel.
func (e *Entity) AddFuel(amount float64) {
	e.Fuel += amount
	if e.Fuel > e.MaxFuel {
		e.Fuel = e.MaxFuel
	}
}
