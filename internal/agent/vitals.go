// Vitals engine — per-tick needs update. The engine only mutates
// vitals and the death flag; interruption of actions on forced sleep
// or death is read by the state machine and trigger engine, not
// enforced here.
package agent

import (
	"wildmind/internal/config"
	"wildmind/internal/world"
)

// TickVitals advances an agent's needs by dt simulated seconds.
// warmth is the nearest warmth source, or nil. No-op on a dead agent.
func TickVitals(a *Agent, dt float64, warmth *world.Entity, cfg config.Vitals) {
	if a.IsDead {
		return
	}

	a.Vitals.Food -= cfg.FoodDecayPerSec * dt

	switch {
	case a.IsSleeping:
		a.Vitals.Energy += cfg.EnergySleepGainPerSec * dt
	case a.IsMoving && a.IsRunning:
		a.Vitals.Energy -= cfg.EnergyRunDrainPerSec * dt
	case a.IsMoving:
		a.Vitals.Energy -= cfg.EnergyWalkDrainPerSec * dt
	default:
		a.Vitals.Energy -= cfg.EnergyIdleDrainPerSec * dt
	}

	if warmth != nil && warmth.Fuel > 0 && a.Pos.Dist(warmth.Pos) <= cfg.WarmthRadius {
		a.Vitals.Warmth += cfg.WarmthGainPerSec * dt
	} else {
		a.Vitals.Warmth -= cfg.WarmthDrainPerSec * dt
	}

	switch {
	case a.Vitals.Food < cfg.CriticalThreshold || a.Vitals.Warmth < cfg.CriticalThreshold:
		a.Vitals.Health -= cfg.HealthDrainPerSec * dt
	case a.Vitals.Food > cfg.MetThreshold && a.Vitals.Warmth > cfg.MetThreshold && a.Vitals.Energy > cfg.MetThreshold:
		a.Vitals.Health += cfg.HealthRegenPerSec * dt
	}

	clampVitals(&a.Vitals)

	if a.Vitals.Health <= 0 {
		a.IsDead = true
	}
}

func clampVitals(v *Vitals) {
	v.Food = clamp01(v.Food)
	v.Energy = clamp01(v.Energy)
	v.Warmth = clamp01(v.Warmth)
	v.Health = clamp01(v.Health)
}

func clamp01(x float64) float64 {
	if x < 0 {
		return 0
	}
	if x > 100 {
		return 100
	}
	return x
}
