// Instantaneous effects and the navigate-then-act composites.
package action

import (
	"math"

	"github.com/google/uuid"

	"wildmind/internal/agent"
	"wildmind/internal/world"
)

// eat consumes one matching food item and restores food by the
// configured per-item amount.
func (e *Executor) eat(a *agent.Agent, food world.Kind) Result {
	if _, ok := a.Inventory.RemoveKind(food); !ok {
		return failure(ReasonItemNotInInventory)
	}
	a.Vitals.Food += e.Cfg.Actions.EatRestore[string(food)]
	if a.Vitals.Food > 100 {
		a.Vitals.Food = 100
	}
	return Result{Success: true}
}

// drop removes an item from the agent and spawns a passive ground
// entity near the agent holding it.
func (e *Executor) drop(a *agent.Agent, kind world.Kind) Result {
	it, ok := a.Inventory.RemoveKind(kind)
	if !ok {
		return failure(ReasonItemNotInInventory)
	}
	ground := world.NewEntity(kind, e.World.Clamp(a.Pos.Add(e.Cfg.Actions.DropOffset, 0)))
	ground.GiveItem(it)
	e.World.Add(ground)
	return Result{Success: true, Entity: ground}
}

// collect implements navigate-then-act: walk into interaction range,
// then run the timed collection, then transfer one matching item.
// Navigation failure surfaces as navigation_failed with the inner
// failure attached.
func (e *Executor) collect(a *agent.Agent, ctrl *Controller, target TargetRef, item world.Kind, done Callback) {
	pos := target.CurrentPos(e.World)
	if a.Pos.Dist(pos) > e.Cfg.Actions.InteractionRange {
		arrival := e.Cfg.Actions.InteractionRange * 0.8
		ctrl.MoveTo(target, arrival, func(res Result) {
			if !res.Success {
				inner := res
				done(Result{Success: false, Reason: ReasonNavigationFailed, Inner: &inner})
				return
			}
			e.collect(a, ctrl, e.refreshTarget(a, target, item), item, done)
		})
		return
	}

	ent := e.World.Get(target.EntityID)
	if ent == nil {
		// Memory-derived positional target: the entity may have been
		// perceived on arrival.
		if t := e.refreshTarget(a, target, item); t.EntityID != uuid.Nil {
			ent = e.World.Get(t.EntityID)
		}
	}
	if ent == nil {
		done(failure(ReasonTargetNotFound))
		return
	}
	if a.Inventory.Full() {
		done(failure(ReasonInventoryFull))
		return
	}
	if !ent.Holds(item) {
		done(failure(ReasonItemNotFound))
		return
	}

	duration := e.Cfg.Actions.CollectGroundSec
	if d, ok := e.Cfg.Actions.CollectSourceSec[string(ent.Kind)]; ok {
		duration = d
	}
	if duration <= 0 {
		done(e.finishCollect(a, ent, item))
		return
	}
	e.startProgress(a, ent, item, duration, done)
}

// refreshTarget re-resolves a target after navigation: when the ref
// has no live entity (synthesized from memory, or the entity was
// consumed en route), the nearest perceived match for the wanted item
// takes its place.
func (e *Executor) refreshTarget(a *agent.Agent, target TargetRef, item world.Kind) TargetRef {
	if target.EntityID != uuid.Nil && e.World.Get(target.EntityID) != nil {
		return target
	}
	spec := world.SearchSpecFor(item)
	if m := a.Perception.ClosestMatch(spec, item, a.Pos); m != nil {
		return TargetRef{EntityID: m.ID, Kind: m.Kind, Category: m.Category, Pos: m.Pos}
	}
	return target
}

// finishCollect transfers one matching item from the source to the
// agent as a single atomic step. If the add fails after the remove,
// the item is restored to the source before reporting failure, so the
// item is never present in zero or two inventories at a tick
// boundary.
func (e *Executor) finishCollect(a *agent.Agent, ent *world.Entity, item world.Kind) Result {
	it, ok := ent.TakeItem(item)
	if !ok {
		return failure(ReasonItemNotFound)
	}
	if err := a.Inventory.Add(it); err != nil {
		ent.GiveItem(it)
		return failure(ReasonCollectionFailed)
	}
	// Ground wrappers vanish once emptied; sources (trees, grass)
	// remain.
	if ent.Kind == item && len(ent.Items) == 0 {
		e.World.Remove(ent.ID)
	}
	return Result{Success: true, Entity: ent}
}

// addFuel implements navigate-then-act against the nearest warmth
// source, then consumes one stick and raises the fuel level, clamped
// to the source's maximum.
func (e *Executor) addFuel(a *agent.Agent, ctrl *Controller, done Callback) {
	bonfire := e.World.ClosestOfKind(world.KindBonfire, a.Pos)
	if bonfire == nil {
		done(failure(ReasonNoWarmthSource))
		return
	}
	if a.Pos.Dist(bonfire.Pos) > e.Cfg.Actions.InteractionRange {
		target := TargetRef{EntityID: bonfire.ID, Kind: bonfire.Kind, Category: bonfire.Category, Pos: bonfire.Pos}
		arrival := math.Max(e.Cfg.Actions.InteractionRange*0.8, 0.1)
		ctrl.MoveTo(target, arrival, func(res Result) {
			if !res.Success {
				inner := res
				done(Result{Success: false, Reason: ReasonNavigationFailed, Inner: &inner})
				return
			}
			e.addFuel(a, ctrl, done)
		})
		return
	}

	if _, ok := a.Inventory.RemoveKind(world.KindStick); !ok {
		done(failure(ReasonNoSticks))
		return
	}
	bonfire.AddFuel(e.Cfg.Actions.FuelPerStick)
	done(Result{Success: true, Entity: bonfire})
}
