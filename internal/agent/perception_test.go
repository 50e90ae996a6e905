package agent

import (
	"testing"

	"wildmind/internal/world"
)

func TestRefreshReturnsNewlyEntered(t *testing.T) {
	w := world.New(100, 100)
	a := New("test", world.Vec2{X: 50, Y: 50}, 6, 10)
	w.Add(a.Mirror)

	near := world.NewEntity(world.KindTree, world.Vec2{X: 55, Y: 50})
	far := world.NewEntity(world.KindTree, world.Vec2{X: 90, Y: 90})
	w.Add(near)
	w.Add(far)

	entered := a.Perception.Refresh(a, w, 1)
	if len(entered) != 1 || entered[0] != near {
		t.Fatalf("expected only the near tree to enter, got %d entities", len(entered))
	}
	if !a.Perception.Sees(world.KindTree) {
		t.Fatal("expected tree visible")
	}

	// Already-seen entities are not reported again.
	if entered := a.Perception.Refresh(a, w, 2); len(entered) != 0 {
		t.Fatalf("expected no new entries, got %d", len(entered))
	}
}

func TestRefreshExcludesSelf(t *testing.T) {
	w := world.New(100, 100)
	a := New("test", world.Vec2{X: 50, Y: 50}, 6, 10)
	w.Add(a.Mirror)

	a.Perception.Refresh(a, w, 1)
	if a.Perception.Sees(world.KindAgent) {
		t.Fatal("agent must not perceive its own mirror")
	}
}

func TestDepartureFeedsMemory(t *testing.T) {
	w := world.New(100, 100)
	a := New("test", world.Vec2{X: 50, Y: 50}, 6, 10)
	w.Add(a.Mirror)

	tree := world.NewEntity(world.KindTree, world.Vec2{X: 55, Y: 50})
	w.Add(tree)
	a.Perception.Refresh(a, w, 1)

	// The agent walks away; the tree leaves perception.
	a.Pos = world.Vec2{X: 10, Y: 10}
	a.Perception.Refresh(a, w, 2)

	r, ok := a.Memory.Recall(world.KindTree)
	if !ok {
		t.Fatal("expected departed tree in memory")
	}
	if r.Pos != (world.Vec2{X: 55, Y: 50}) || r.Tick != 2 {
		t.Fatalf("expected last seen position at tick 2, got %+v", r)
	}
}

func TestRemovedEntityFeedsMemory(t *testing.T) {
	w := world.New(100, 100)
	a := New("test", world.Vec2{X: 50, Y: 50}, 6, 10)
	w.Add(a.Mirror)

	stick := world.NewEntity(world.KindStick, world.Vec2{X: 52, Y: 50})
	w.Add(stick)
	a.Perception.Refresh(a, w, 1)

	w.Remove(stick.ID)
	a.Perception.Refresh(a, w, 2)

	if _, ok := a.Memory.Recall(world.KindStick); !ok {
		t.Fatal("expected removed stick remembered at its last position")
	}
}

func TestObserverNotifiedOnceAndUnsubscribed(t *testing.T) {
	w := world.New(100, 100)
	a := New("test", world.Vec2{X: 50, Y: 50}, 6, 10)
	w.Add(a.Mirror)

	var seen []*world.Entity
	tok := a.Perception.Subscribe(func(e *world.Entity) { seen = append(seen, e) })

	tree := world.NewEntity(world.KindTree, world.Vec2{X: 55, Y: 50})
	w.Add(tree)
	a.Perception.Refresh(a, w, 1)
	a.Perception.Refresh(a, w, 2)

	if len(seen) != 1 || seen[0] != tree {
		t.Fatalf("expected one notification for the tree, got %d", len(seen))
	}

	a.Perception.Unsubscribe(tok)
	grass := world.NewEntity(world.KindGrass, world.Vec2{X: 54, Y: 50})
	w.Add(grass)
	a.Perception.Refresh(a, w, 3)
	if len(seen) != 1 {
		t.Fatal("expected no notifications after unsubscribe")
	}
}

func TestClosestVisible(t *testing.T) {
	w := world.New(100, 100)
	a := New("test", world.Vec2{X: 50, Y: 50}, 6, 20)
	w.Add(a.Mirror)

	nearer := world.NewEntity(world.KindStick, world.Vec2{X: 53, Y: 50})
	farther := world.NewEntity(world.KindStick, world.Vec2{X: 60, Y: 50})
	w.Add(farther)
	w.Add(nearer)
	a.Perception.Refresh(a, w, 1)

	if got := a.Perception.ClosestVisible(world.KindStick, a.Pos); got != nearer {
		t.Fatal("expected the nearer stick")
	}
	if a.Perception.ClosestVisible(world.KindWolf, a.Pos) != nil {
		t.Fatal("expected nil for unseen kind")
	}
}

func TestClosestMatchHonorsSearchSpec(t *testing.T) {
	w := world.New(100, 100)
	a := New("test", world.Vec2{X: 50, Y: 50}, 6, 20)
	w.Add(a.Mirror)

	empty := world.NewEntity(world.KindTree, world.Vec2{X: 52, Y: 50})
	laden := world.NewEntity(world.KindTree, world.Vec2{X: 58, Y: 50})
	laden.GiveItem(world.Item{Kind: world.KindApple})
	w.Add(empty)
	w.Add(laden)
	a.Perception.Refresh(a, w, 1)

	spec := world.SearchSpecFor(world.KindApple)
	got := a.Perception.ClosestMatch(spec, world.KindApple, a.Pos)
	if got != laden {
		t.Fatal("expected the laden tree despite the empty one being closer")
	}
}
