package agent

import (
	"testing"

	"wildmind/internal/config"
	"wildmind/internal/world"
)

func vitalsCfg() config.Vitals {
	return config.Default().Vitals
}

func TestVitalsStayInRange(t *testing.T) {
	cfg := vitalsCfg()
	a := New("test", world.Vec2{}, 6, 10)
	a.Vitals = Vitals{Food: 1, Energy: 1, Warmth: 1, Health: 50}

	for i := 0; i < 1000; i++ {
		TickVitals(a, 1.0, nil, cfg)
		v := a.Vitals
		for name, x := range map[string]float64{"food": v.Food, "energy": v.Energy, "warmth": v.Warmth, "health": v.Health} {
			if x < 0 || x > 100 {
				t.Fatalf("tick %d: %s out of range: %f", i, name, x)
			}
		}
	}
}

func TestSleepRestoresEnergy(t *testing.T) {
	cfg := vitalsCfg()
	a := New("test", world.Vec2{}, 6, 10)
	a.Vitals.Energy = 40
	a.IsSleeping = true

	TickVitals(a, 10, nil, cfg)
	want := 40 + cfg.EnergySleepGainPerSec*10
	if a.Vitals.Energy != want {
		t.Fatalf("expected energy %f, got %f", want, a.Vitals.Energy)
	}
}

func TestRunningDrainsFasterThanWalking(t *testing.T) {
	cfg := vitalsCfg()
	walker := New("w", world.Vec2{}, 6, 10)
	runner := New("r", world.Vec2{}, 6, 10)
	walker.IsMoving = true
	runner.IsMoving = true
	runner.IsRunning = true

	TickVitals(walker, 10, nil, cfg)
	TickVitals(runner, 10, nil, cfg)
	if runner.Vitals.Energy >= walker.Vitals.Energy {
		t.Fatalf("expected running to drain faster: runner %f, walker %f",
			runner.Vitals.Energy, walker.Vitals.Energy)
	}
}

func TestWarmthRequiresFueledSourceInRange(t *testing.T) {
	cfg := vitalsCfg()
	fire := world.NewEntity(world.KindBonfire, world.Vec2{X: 0, Y: 0})
	fire.MaxFuel = 100
	fire.Fuel = 50

	near := New("near", world.Vec2{X: 1, Y: 0}, 6, 10)
	near.Vitals.Warmth = 50
	TickVitals(near, 5, fire, cfg)
	if near.Vitals.Warmth <= 50 {
		t.Fatalf("expected warmth gain near lit fire, got %f", near.Vitals.Warmth)
	}

	far := New("far", world.Vec2{X: cfg.WarmthRadius + 1, Y: 0}, 6, 10)
	far.Vitals.Warmth = 50
	TickVitals(far, 5, fire, cfg)
	if far.Vitals.Warmth >= 50 {
		t.Fatalf("expected warmth drain out of range, got %f", far.Vitals.Warmth)
	}

	fire.Fuel = 0
	cold := New("cold", world.Vec2{X: 1, Y: 0}, 6, 10)
	cold.Vitals.Warmth = 50
	TickVitals(cold, 5, fire, cfg)
	if cold.Vitals.Warmth >= 50 {
		t.Fatalf("expected warmth drain beside a dead fire, got %f", cold.Vitals.Warmth)
	}
}

func TestHealthDrainsWhenNeedCritical(t *testing.T) {
	cfg := vitalsCfg()
	a := New("test", world.Vec2{}, 6, 10)
	a.Vitals.Food = cfg.CriticalThreshold - 1

	before := a.Vitals.Health
	TickVitals(a, 1, nil, cfg)
	if a.Vitals.Health >= before {
		t.Fatalf("expected health drain below critical food, got %f", a.Vitals.Health)
	}
}

func TestHealthRegenWhenAllNeedsMet(t *testing.T) {
	cfg := vitalsCfg()
	fire := world.NewEntity(world.KindBonfire, world.Vec2{})
	fire.MaxFuel = 100
	fire.Fuel = 100

	a := New("test", world.Vec2{X: 1, Y: 0}, 6, 10)
	a.Vitals.Health = 50

	TickVitals(a, 1, fire, cfg)
	if a.Vitals.Health <= 50 {
		t.Fatalf("expected health regen with all needs met, got %f", a.Vitals.Health)
	}
}

func TestDeathIsMonotonic(t *testing.T) {
	cfg := vitalsCfg()
	a := New("test", world.Vec2{}, 6, 10)
	a.Vitals = Vitals{Food: 0, Warmth: 0, Energy: 0, Health: 0.01}

	TickVitals(a, 10, nil, cfg)
	if !a.IsDead {
		t.Fatal("expected agent to die at zero health")
	}

	// A dead agent's vitals never change again, even beside a fire.
	fire := world.NewEntity(world.KindBonfire, world.Vec2{})
	fire.MaxFuel = 100
	fire.Fuel = 100
	snapshot := a.Vitals
	TickVitals(a, 100, fire, cfg)
	if a.Vitals != snapshot {
		t.Fatalf("expected dead vitals frozen at %+v, got %+v", snapshot, a.Vitals)
	}
	if !a.IsDead {
		t.Fatal("death must be monotonic")
	}
}
