// Situation assembly — the textual payload handed to the decision
// service, plus the menu of actions that are legal in the current
// state. The menu gating mirrors the validator so the service is not
// offered actions that would be rejected.
package brain

import (
	"fmt"
	"sort"
	"strings"

	"wildmind/internal/action"
	"wildmind/internal/agent"
	"wildmind/internal/world"
)

const (
	nearbyLimit   = 8
	outcomesLimit = 5
)

// BuildSituation renders the agent's current situation: vitals,
// inventory, a ranked list of nearby relevant entities, remembered
// but not visible locations, recent action outcomes, current
// intent/plan, and the legal action menu.
func (b *Brain) BuildSituation(a *agent.Agent, ctrl *action.Controller, tc TriggerContext) string {
	st := b.StateFor(a.ID)
	var sb strings.Builder

	fmt.Fprintf(&sb, "You are %s at (%.1f, %.1f). Trigger: %s", a.Name, a.Pos.X, a.Pos.Y, tc.Kind)
	switch tc.Kind {
	case ContextActionCompleted:
		fmt.Fprintf(&sb, " (%s", tc.ActionName)
		if tc.Result != nil && !tc.Result.Success {
			fmt.Fprintf(&sb, " failed: %s", tc.Result.Reason)
		} else {
			sb.WriteString(" succeeded")
		}
		sb.WriteString(")")
	case ContextNeedCritical:
		fmt.Fprintf(&sb, " (%s is critical)", tc.Need)
	case ContextEntityPerceived:
		if tc.Entity != nil {
			fmt.Fprintf(&sb, " (spotted %s)", tc.Entity.Kind)
		}
	}
	sb.WriteString("\n\n")

	fmt.Fprintf(&sb, "Vitals: food %.0f, energy %.0f, warmth %.0f, health %.0f (0-100, lower is worse)\n",
		a.Vitals.Food, a.Vitals.Energy, a.Vitals.Warmth, a.Vitals.Health)

	items := a.Inventory.Items()
	if len(items) == 0 {
		fmt.Fprintf(&sb, "Inventory: empty (%d slots)\n", a.Inventory.Capacity())
	} else {
		names := make([]string, len(items))
		for i, it := range items {
			names[i] = string(it.Kind)
		}
		fmt.Fprintf(&sb, "Inventory (%d/%d): %s\n", len(items), a.Inventory.Capacity(), strings.Join(names, ", "))
	}

	if nearby := rankedNearby(a, nearbyLimit); len(nearby) > 0 {
		sb.WriteString("\nNearby:\n")
		for _, e := range nearby {
			fmt.Fprintf(&sb, "- %s at (%.1f, %.1f), %.1f away", e.Kind, e.Pos.X, e.Pos.Y, e.Pos.Dist(a.Pos))
			if len(e.Items) > 0 {
				fmt.Fprintf(&sb, ", holding %d item(s)", len(e.Items))
			}
			sb.WriteString("\n")
		}
	}

	if remembered := rememberedNotVisible(a); len(remembered) > 0 {
		sb.WriteString("\nRemembered locations (not currently visible):\n")
		for _, r := range remembered {
			fmt.Fprintf(&sb, "- %s last seen at (%.1f, %.1f)\n", r.Kind, r.Pos.X, r.Pos.Y)
		}
	}

	if outcomes := st.recentOutcomes(outcomesLimit); len(outcomes) > 0 {
		sb.WriteString("\nRecent actions:\n")
		for _, e := range outcomes {
			if e.Result.Success {
				fmt.Fprintf(&sb, "- %s: ok\n", e.Action)
			} else {
				fmt.Fprintf(&sb, "- %s: failed (%s)\n", e.Action, e.Result.Reason)
			}
		}
	}

	if st.Intent != "" {
		fmt.Fprintf(&sb, "\nCurrent intent: %s\n", st.Intent)
	}
	if len(st.Plan) > 0 {
		fmt.Fprintf(&sb, "Plan: %s\n", strings.Join(st.Plan, "; "))
	}

	sb.WriteString("\nLegal actions:\n")
	for _, line := range b.legalActions(a) {
		fmt.Fprintf(&sb, "- %s\n", line)
	}
	sb.WriteString("\nChoose the next action. Respond with the single JSON object only.")
	return sb.String()
}

// rankedNearby returns up to limit perceived categorized entities,
// closest first.
func rankedNearby(a *agent.Agent, limit int) []*world.Entity {
	var out []*world.Entity
	for _, e := range a.Perception.Visible() {
		if e.Category == world.CategoryNone {
			continue
		}
		out = append(out, e)
	}
	sort.SliceStable(out, func(i, j int) bool {
		return out[i].Pos.Dist(a.Pos) < out[j].Pos.Dist(a.Pos)
	})
	if len(out) > limit {
		out = out[:limit]
	}
	return out
}

// rememberedNotVisible filters memory down to useful kinds the agent
// cannot currently see.
func rememberedNotVisible(a *agent.Agent) []agent.Remembered {
	var out []agent.Remembered
	for _, r := range a.Memory.All() {
		if a.Perception.Sees(r.Kind) {
			continue
		}
		if world.CategoryOf(r.Kind) == world.CategoryNone || world.CategoryOf(r.Kind) == world.CategoryAgent {
			continue
		}
		out = append(out, r)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Kind < out[j].Kind })
	return out
}

// legalActions builds the gated menu offered to the service.
func (b *Brain) legalActions(a *agent.Agent) []string {
	menu := []string{
		`moveTo {"target": "<kind or {x,y}>", "arrivalDistance": <optional>}`,
		`searchFor {"itemType": "<apple|berry|stick>"}`,
		`wander {"duration": <optional seconds>}`,
	}

	if !a.Inventory.Full() && collectibleVisible(a) {
		menu = append(menu, `collect {"target": "<kind>", "itemType": "<item kind>"}`)
	}
	if a.Inventory.Has(world.KindStick) && a.Perception.Sees(world.KindBonfire) {
		menu = append(menu, `addFuel {}`)
	}
	if heldFood := heldFoodKinds(a); len(heldFood) > 0 {
		menu = append(menu, fmt.Sprintf(`eat {"foodType": "<%s>"}`, strings.Join(heldFood, "|")))
	}
	if a.Inventory.Count() > 0 {
		menu = append(menu, `drop {"itemType": "<held item kind>"}`)
	}
	if a.Vitals.Energy < b.cfg.SleepOfferEnergy {
		menu = append(menu, `sleep {}`)
	}
	return menu
}

// collectibleVisible reports whether anything collectible is in view:
// a source currently holding items, or a ground item.
func collectibleVisible(a *agent.Agent) bool {
	for _, e := range a.Perception.Visible() {
		switch e.Category {
		case world.CategorySource:
			if len(e.Items) > 0 {
				return true
			}
		case world.CategoryFuel, world.CategoryFood:
			return true
		}
	}
	return false
}

func heldFoodKinds(a *agent.Agent) []string {
	seen := map[world.Kind]bool{}
	var out []string
	for _, it := range a.Inventory.Items() {
		if world.CategoryOf(it.Kind) != world.CategoryFood || seen[it.Kind] {
			continue
		}
		seen[it.Kind] = true
		out = append(out, string(it.Kind))
	}
	return out
}
