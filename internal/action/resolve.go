// Symbolic target resolution. A target spec is either a concrete
// position map or a bare type name; symbolic names resolve against
// perception first, then spatial memory.
package action

import (
	"wildmind/internal/agent"
	"wildmind/internal/world"
)

// ResolveTarget turns a raw target argument into a TargetRef, or nil
// when nothing resolves. Resolution order for symbolic names: the
// closest currently perceived entity of that kind (ties break by
// perception order), else a positional ref synthesized from the
// agent's memory.
func ResolveTarget(raw any, a *agent.Agent, w *world.World) *TargetRef {
	switch spec := raw.(type) {
	case map[string]any:
		x, okX := spec["x"].(float64)
		y, okY := spec["y"].(float64)
		if !okX || !okY {
			return nil
		}
		kind, _ := spec["type"].(string)
		return &TargetRef{
			Kind:     world.Kind(kind),
			Category: world.CategoryOf(world.Kind(kind)),
			Pos:      world.Vec2{X: x, Y: y},
		}

	case string:
		kind := world.Kind(spec)
		if e := a.Perception.ClosestVisible(kind, a.Pos); e != nil {
			return &TargetRef{
				EntityID: e.ID,
				Kind:     e.Kind,
				Category: e.Category,
				Pos:      e.Pos,
			}
		}
		if r, ok := a.Memory.Recall(kind); ok {
			return &TargetRef{
				Kind:     kind,
				Category: world.CategoryOf(kind),
				Pos:      r.Pos,
			}
		}
		return nil
	}
	return nil
}
