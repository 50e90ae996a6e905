package action

import (
	"math/rand"
	"testing"
	"time"

	"wildmind/internal/agent"
	"wildmind/internal/config"
	"wildmind/internal/world"
)

// fakeClock is an adjustable time source shared by the controller and
// executor under test.
type fakeClock struct {
	t time.Time
}

func newFakeClock() *fakeClock {
	return &fakeClock{t: time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)}
}

func (c *fakeClock) Now() time.Time          { return c.t }
func (c *fakeClock) Advance(d time.Duration) { c.t = c.t.Add(d) }

type fixture struct {
	clock *fakeClock
	cfg   *config.Config
	world *world.World
	agent *agent.Agent
	ctrl  *Controller
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	cfg := config.Default()
	clock := newFakeClock()
	w := world.New(cfg.World.Width, cfg.World.Height)
	a := agent.New("tester", world.Vec2{X: 60, Y: 60}, cfg.Actions.InventoryCapacity, cfg.World.PerceptionRadius)
	w.Add(a.Mirror)
	ctrl := NewController(a, w, cfg.Movement, clock.Now, rand.New(rand.NewSource(1)))
	return &fixture{clock: clock, cfg: &cfg, world: w, agent: a, ctrl: ctrl}
}

func (f *fixture) see(t *testing.T) {
	t.Helper()
	f.agent.SyncMirror()
	f.agent.Perception.Refresh(f.agent, f.world, 0)
}

// capture returns a callback that stores results and a counter of
// invocations.
func capture() (Callback, *[]Result) {
	var results []Result
	return func(r Result) { results = append(results, r) }, &results
}

func TestWanderCompletesAtDeadline(t *testing.T) {
	f := newFixture(t)
	cb, results := capture()

	f.ctrl.Wander(2*time.Second, cb)
	if f.ctrl.Current().Kind != StateWandering {
		t.Fatalf("expected wandering, got %s", f.ctrl.Current().Kind)
	}
	if !f.agent.IsMoving {
		t.Fatal("expected moving flag set")
	}

	f.ctrl.Update(f.clock.Now())
	if len(*results) != 0 {
		t.Fatal("expected no completion before the deadline")
	}

	f.clock.Advance(2 * time.Second)
	f.ctrl.Update(f.clock.Now())
	if len(*results) != 1 || !(*results)[0].Success {
		t.Fatalf("expected one success, got %+v", *results)
	}
	if f.ctrl.Current().Kind != StateIdle {
		t.Fatalf("expected idle after completion, got %s", f.ctrl.Current().Kind)
	}
	if f.agent.IsMoving {
		t.Fatal("expected moving flag cleared")
	}
}

func TestWanderDefaultDurationWithinBounds(t *testing.T) {
	f := newFixture(t)
	f.ctrl.Wander(0, nil)

	d := f.ctrl.Current().Deadline.Sub(f.clock.Now())
	min := time.Duration(f.cfg.Movement.WanderMinSec * float64(time.Second))
	max := time.Duration(f.cfg.Movement.WanderMaxSec * float64(time.Second))
	if d < min || d > max {
		t.Fatalf("expected duration in [%v,%v], got %v", min, max, d)
	}
}

func TestMoveToCompletesOnArrival(t *testing.T) {
	f := newFixture(t)
	tree := world.NewEntity(world.KindTree, world.Vec2{X: 80, Y: 60})
	f.world.Add(tree)

	cb, results := capture()
	f.ctrl.MoveTo(TargetRef{EntityID: tree.ID, Kind: tree.Kind, Pos: tree.Pos}, 1.0, cb)

	f.ctrl.Update(f.clock.Now())
	if len(*results) != 0 {
		t.Fatal("expected no completion while far away")
	}

	f.agent.Pos = world.Vec2{X: 79.5, Y: 60}
	f.ctrl.Update(f.clock.Now())
	if len(*results) != 1 || !(*results)[0].Success {
		t.Fatalf("expected arrival success, got %+v", *results)
	}
	if (*results)[0].Entity != tree {
		t.Fatal("expected arrived entity in result")
	}
}

func TestMoveToTracksMovingTarget(t *testing.T) {
	f := newFixture(t)
	wolf := world.NewEntity(world.KindWolf, world.Vec2{X: 61, Y: 60})
	f.world.Add(wolf)

	cb, results := capture()
	f.ctrl.MoveTo(TargetRef{EntityID: wolf.ID, Kind: wolf.Kind, Pos: wolf.Pos}, 1.0, cb)

	// Target moves out of arrival range before the poll.
	wolf.Pos = world.Vec2{X: 90, Y: 60}
	f.ctrl.Update(f.clock.Now())
	if len(*results) != 0 {
		t.Fatal("expected no arrival against the live position")
	}
}

func TestSearchForImmediateWhenPerceived(t *testing.T) {
	f := newFixture(t)
	tree := world.NewEntity(world.KindTree, world.Vec2{X: 62, Y: 60})
	tree.GiveItem(world.Item{Kind: world.KindApple})
	f.world.Add(tree)
	f.see(t)

	cb, results := capture()
	f.ctrl.SearchFor(world.KindApple, cb)
	if len(*results) != 1 || !(*results)[0].Success || (*results)[0].Entity != tree {
		t.Fatalf("expected immediate success with the tree, got %+v", *results)
	}
	if f.ctrl.Current().Kind != StateIdle {
		t.Fatalf("expected idle, got %s", f.ctrl.Current().Kind)
	}
}

func TestSearchForSucceedsOnPerceive(t *testing.T) {
	f := newFixture(t)
	f.see(t)

	cb, results := capture()
	f.ctrl.SearchFor(world.KindApple, cb)
	if f.ctrl.Current().Kind != StateSearching {
		t.Fatalf("expected searching, got %s", f.ctrl.Current().Kind)
	}
	if f.ctrl.Current().SearchWatch != world.KindTree {
		t.Fatalf("expected watch kind tree, got %s", f.ctrl.Current().SearchWatch)
	}

	// An empty tree entering view is not a match for an apple search.
	empty := world.NewEntity(world.KindTree, world.Vec2{X: 63, Y: 60})
	f.world.Add(empty)
	f.see(t)
	if len(*results) != 0 {
		t.Fatal("expected empty tree to be ignored")
	}

	laden := world.NewEntity(world.KindTree, world.Vec2{X: 58, Y: 60})
	laden.GiveItem(world.Item{Kind: world.KindApple})
	f.world.Add(laden)
	f.see(t)
	if len(*results) != 1 || !(*results)[0].Success || (*results)[0].Entity != laden {
		t.Fatalf("expected success with the laden tree, got %+v", *results)
	}
}

func TestSearchForTimesOutExactlyOnce(t *testing.T) {
	f := newFixture(t)
	f.see(t)

	cb, results := capture()
	f.ctrl.SearchFor(world.KindApple, cb)

	f.clock.Advance(time.Duration(f.cfg.Movement.SearchDurationSec+1) * time.Second)
	f.ctrl.Update(f.clock.Now())
	f.ctrl.Update(f.clock.Now())

	if len(*results) != 1 {
		t.Fatalf("expected exactly one completion, got %d", len(*results))
	}
	if (*results)[0].Success || (*results)[0].Reason != ReasonTimeout {
		t.Fatalf("expected timeout failure, got %+v", (*results)[0])
	}

	// The subscription is gone: a late match must not fire the
	// spent callback.
	laden := world.NewEntity(world.KindTree, world.Vec2{X: 58, Y: 60})
	laden.GiveItem(world.Item{Kind: world.KindApple})
	f.world.Add(laden)
	f.see(t)
	if len(*results) != 1 {
		t.Fatal("expected no callback after timeout")
	}
}

func TestSleepWakesAtEnergyThreshold(t *testing.T) {
	f := newFixture(t)
	f.agent.Vitals.Energy = 50

	cb, results := capture()
	f.ctrl.Sleep(cb)
	if !f.agent.IsSleeping {
		t.Fatal("expected sleeping flag set")
	}

	f.ctrl.Update(f.clock.Now())
	if len(*results) != 0 {
		t.Fatal("expected sleep to continue below the wake threshold")
	}

	f.agent.Vitals.Energy = f.cfg.Movement.SleepWakeEnergy
	f.ctrl.Update(f.clock.Now())
	if len(*results) != 1 || !(*results)[0].Success {
		t.Fatalf("expected wake success, got %+v", *results)
	}
	if f.agent.IsSleeping {
		t.Fatal("expected sleeping flag cleared")
	}
}

func TestSleepInterruptedByCriticalHealthBeforeWake(t *testing.T) {
	f := newFixture(t)
	cb, results := capture()
	f.ctrl.Sleep(cb)

	// Both wake conditions true at once: the health interrupt wins.
	f.agent.Vitals.Energy = 100
	f.agent.Vitals.Health = f.cfg.Movement.SleepInterruptHealth - 1
	f.ctrl.Update(f.clock.Now())

	if len(*results) != 1 {
		t.Fatalf("expected one completion, got %d", len(*results))
	}
	r := (*results)[0]
	if r.Success || r.Reason != ReasonHPCritical || !r.Interrupted {
		t.Fatalf("expected interrupted hp_critical, got %+v", r)
	}
}

func TestSupersessionDropsOldCallback(t *testing.T) {
	f := newFixture(t)
	oldCb, oldResults := capture()
	f.ctrl.Wander(5*time.Second, oldCb)

	newCb, newResults := capture()
	f.ctrl.Sleep(newCb)

	f.clock.Advance(10 * time.Second)
	f.agent.Vitals.Energy = 100
	f.ctrl.Update(f.clock.Now())

	if len(*oldResults) != 0 {
		t.Fatalf("superseded callback must never fire, got %+v", *oldResults)
	}
	if len(*newResults) != 1 {
		t.Fatalf("expected the new action to complete, got %d", len(*newResults))
	}
}

func TestStopCurrentDropsCallback(t *testing.T) {
	f := newFixture(t)
	cb, results := capture()
	f.ctrl.Wander(5*time.Second, cb)

	f.ctrl.StopCurrent()
	if f.ctrl.Current().Kind != StateIdle {
		t.Fatalf("expected idle, got %s", f.ctrl.Current().Kind)
	}
	f.clock.Advance(10 * time.Second)
	f.ctrl.Update(f.clock.Now())
	if len(*results) != 0 {
		t.Fatal("stopped action's callback must not fire")
	}
}

func TestDeadAgentRejectsEntry(t *testing.T) {
	f := newFixture(t)
	f.agent.IsDead = true

	cb, results := capture()
	f.ctrl.Wander(time.Second, cb)
	if len(*results) != 1 || (*results)[0].Reason != ReasonEntityDead {
		t.Fatalf("expected entity_dead, got %+v", *results)
	}
	if f.ctrl.Current().Kind != StateIdle {
		t.Fatal("dead agent must stay idle")
	}
}

func TestUpdateForcesIdleOnDeath(t *testing.T) {
	f := newFixture(t)
	cb, results := capture()
	f.ctrl.Wander(time.Second, cb)

	f.agent.IsDead = true
	f.clock.Advance(5 * time.Second)
	f.ctrl.Update(f.clock.Now())

	if f.ctrl.Current().Kind != StateIdle {
		t.Fatalf("expected idle after death, got %s", f.ctrl.Current().Kind)
	}
	if len(*results) != 0 {
		t.Fatal("death teardown must not invoke the callback")
	}
}
