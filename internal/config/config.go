// Package config loads the tuning file that supplies every numeric
// constant the orchestrator consumes: vitals rates, thresholds,
// interaction ranges, collection durations, and decision-trigger
// windows. Nothing in the core packages hardcodes these values.
package config

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// Config is the root tuning document.
type Config struct {
	Vitals   Vitals   `yaml:"vitals"`
	Movement Movement `yaml:"movement"`
	Actions  Actions  `yaml:"actions"`
	Trigger  Trigger  `yaml:"trigger"`
	World    World    `yaml:"world"`
	API      API      `yaml:"api"`
}

// Vitals tunes the per-tick needs update. All rates are per simulated
// second; all thresholds live on the 0-100 vitals scale.
type Vitals struct {
	FoodDecayPerSec      float64 `yaml:"food_decay_per_sec"`
	EnergySleepGainPerSec float64 `yaml:"energy_sleep_gain_per_sec"`
	EnergyWalkDrainPerSec float64 `yaml:"energy_walk_drain_per_sec"`
	EnergyRunDrainPerSec  float64 `yaml:"energy_run_drain_per_sec"`
	EnergyIdleDrainPerSec float64 `yaml:"energy_idle_drain_per_sec"`
	WarmthGainPerSec     float64 `yaml:"warmth_gain_per_sec"`
	WarmthDrainPerSec    float64 `yaml:"warmth_drain_per_sec"`
	WarmthRadius         float64 `yaml:"warmth_radius"`
	HealthDrainPerSec    float64 `yaml:"health_drain_per_sec"`
	HealthRegenPerSec    float64 `yaml:"health_regen_per_sec"`
	CriticalThreshold    float64 `yaml:"critical_threshold"`
	MetThreshold         float64 `yaml:"met_threshold"`
}

// Movement tunes the state machine's timing and speeds.
type Movement struct {
	WalkSpeed            float64 `yaml:"walk_speed"`
	RunSpeed             float64 `yaml:"run_speed"`
	ArrivalDistance      float64 `yaml:"arrival_distance"`
	WanderMinSec         float64 `yaml:"wander_min_sec"`
	WanderMaxSec         float64 `yaml:"wander_max_sec"`
	SearchDurationSec    float64 `yaml:"search_duration_sec"`
	SleepWakeEnergy      float64 `yaml:"sleep_wake_energy"`
	SleepInterruptHealth float64 `yaml:"sleep_interrupt_health"`
}

// Actions tunes the validation/execution pipeline.
type Actions struct {
	InteractionRange  float64            `yaml:"interaction_range"`
	InventoryCapacity int                `yaml:"inventory_capacity"`
	// Collection duration in seconds keyed by the kind of the entity
	// being collected from. Kinds absent from the map use the ground
	// default (an instant pickup).
	CollectGroundSec  float64            `yaml:"collect_ground_sec"`
	CollectSourceSec  map[string]float64 `yaml:"collect_source_sec"`
	EatRestore        map[string]float64 `yaml:"eat_restore"`
	FuelPerStick      float64            `yaml:"fuel_per_stick"`
	DropOffset        float64            `yaml:"drop_offset"`
}

// Trigger tunes when the decision service is consulted.
type Trigger struct {
	WindowSec          float64 `yaml:"window_sec"`
	MaxCallsPerWindow  int     `yaml:"max_calls_per_window"`
	MinSpacingSec      float64 `yaml:"min_spacing_sec"`
	IdleDelaySec       float64 `yaml:"idle_delay_sec"`
	HeartbeatSec       float64 `yaml:"heartbeat_sec"`
	LowHealthThreshold float64 `yaml:"low_health_threshold"`
	CriticalNeed       float64 `yaml:"critical_need"`
	CompletionDelaySec float64 `yaml:"completion_delay_sec"`
	HistoryLimit       int     `yaml:"history_limit"`
	SleepOfferEnergy   float64 `yaml:"sleep_offer_energy"`
}

// World tunes initial entity placement.
type World struct {
	Width       float64 `yaml:"width"`
	Height      float64 `yaml:"height"`
	Seed        int64   `yaml:"seed"`
	TreeDensity float64 `yaml:"tree_density"`
	GrassDensity float64 `yaml:"grass_density"`
	StickCount  int     `yaml:"stick_count"`
	BonfireMaxFuel float64 `yaml:"bonfire_max_fuel"`
	PerceptionRadius float64 `yaml:"perception_radius"`
}

// API tunes the read-only HTTP view.
type API struct {
	Port int `yaml:"port"`
}

// Default returns the tuning used when no file is supplied.
func Default() Config {
	return Config{
		Vitals: Vitals{
			FoodDecayPerSec:       0.08,
			EnergySleepGainPerSec: 1.2,
			EnergyWalkDrainPerSec: 0.10,
			EnergyRunDrainPerSec:  0.35,
			EnergyIdleDrainPerSec: 0.02,
			WarmthGainPerSec:      0.8,
			WarmthDrainPerSec:     0.06,
			WarmthRadius:          6,
			HealthDrainPerSec:     0.25,
			HealthRegenPerSec:     0.15,
			CriticalThreshold:     15,
			MetThreshold:          60,
		},
		Movement: Movement{
			WalkSpeed:            1.6,
			RunSpeed:             3.4,
			ArrivalDistance:      1.0,
			WanderMinSec:         3,
			WanderMaxSec:         7,
			SearchDurationSec:    25,
			SleepWakeEnergy:      85,
			SleepInterruptHealth: 20,
		},
		Actions: Actions{
			InteractionRange:  2.0,
			InventoryCapacity: 6,
			CollectGroundSec:  0,
			CollectSourceSec: map[string]float64{
				"tree":  4,
				"grass": 2,
			},
			EatRestore: map[string]float64{
				"apple": 30,
				"berry": 15,
			},
			FuelPerStick: 20,
			DropOffset:   1.2,
		},
		Trigger: Trigger{
			WindowSec:          60,
			MaxCallsPerWindow:  6,
			MinSpacingSec:      4,
			IdleDelaySec:       8,
			HeartbeatSec:       45,
			LowHealthThreshold: 30,
			CriticalNeed:       15,
			CompletionDelaySec: 0.5,
			HistoryLimit:       20,
			SleepOfferEnergy:   40,
		},
		World: World{
			Width:            120,
			Height:           120,
			Seed:             0,
			TreeDensity:      0.55,
			GrassDensity:     0.45,
			StickCount:       14,
			BonfireMaxFuel:   100,
			PerceptionRadius: 14,
		},
		API: API{Port: 8080},
	}
}

// Load reads a tuning file, applying it over the defaults so partial
// files stay valid.
func Load(path string) (Config, error) {
	cfg := Default()
	raw, err := os.ReadFile(path)
	if err != nil {
		return cfg, err
	}
	if err := yaml.Unmarshal(raw, &cfg); err != nil {
		return cfg, fmt.Errorf("tuning file %s: %w", path, err)
	}
	return cfg, nil
}
