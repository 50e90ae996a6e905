// Decision validation — structural and state checks run before any
// world mutation. Returns the first failing reason; a rejected
// command never partially applies.
package action

import (
	"wildmind/internal/agent"
	"wildmind/internal/world"
)

// requiredArgs lists the argument names each action must carry.
// Presence in this map is also the closed-set membership check.
var requiredArgs = map[string][]string{
	ActionCollect:   {"target", "itemType"},
	ActionDrop:      {"itemType"},
	ActionEat:       {"foodType"},
	ActionMoveTo:    {"target"},
	ActionSearchFor: {"itemType"},
	ActionAddFuel:   {},
	ActionSleep:     {},
	ActionWander:    {},
}

// Validate checks a command against the closed action set and the
// current agent/world state. Returns "" when valid, else the failure
// reason.
func Validate(cmd Command, a *agent.Agent, w *world.World) string {
	required, known := requiredArgs[cmd.Name]
	if !known {
		return ReasonUnknownAction
	}
	for _, arg := range required {
		if !cmd.hasArg(arg) {
			return ReasonMissingArgument
		}
	}

	switch cmd.Name {
	case ActionCollect:
		if a.Inventory.Full() {
			return ReasonInventoryFull
		}

	case ActionDrop:
		if !a.Inventory.Has(world.Kind(cmd.argString("itemType"))) {
			return ReasonItemNotInInventory
		}

	case ActionEat:
		food := world.Kind(cmd.argString("foodType"))
		if world.CategoryOf(food) != world.CategoryFood {
			return ReasonInvalidTarget
		}
		if !a.Inventory.Has(food) {
			return ReasonItemNotInInventory
		}

	case ActionAddFuel:
		if !a.Inventory.Has(world.KindStick) {
			return ReasonNoSticks
		}
		if len(w.OfKind(world.KindBonfire)) == 0 {
			return ReasonNoWarmthSource
		}
	}
	return ""
}
