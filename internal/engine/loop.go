// Package engine drives the cooperative scheduling loop: one
// goroutine advances every agent each tick. True parallelism exists
// only across the external decision calls, never within one agent's
// pipeline.
package engine

import (
	"log/slog"
	"time"
)

// Loop runs the simulation at a fixed tick interval.
type Loop struct {
	Tick     uint64
	Speed    float64       // multiplier: 1.0 = real time, 0 = paused
	Interval time.Duration // base tick interval

	// OnTick advances the world by dt simulated seconds.
	OnTick func(tick uint64, dt float64)

	running bool
}

// NewLoop creates a loop with the default settings.
func NewLoop() *Loop {
	return &Loop{
		Speed:    1.0,
		Interval: 250 * time.Millisecond,
	}
}

// Run starts the loop. Blocks until Stop is called.
func (l *Loop) Run() {
	l.running = true
	slog.Info("simulation loop started", "interval", l.Interval, "speed", l.Speed)

	for l.running {
		if l.Speed <= 0 {
			time.Sleep(100 * time.Millisecond)
			continue
		}

		start := time.Now()
		l.Tick++
		if l.OnTick != nil {
			l.OnTick(l.Tick, l.Interval.Seconds())
		}

		elapsed := time.Since(start)
		target := time.Duration(float64(l.Interval) / l.Speed)
		if elapsed < target {
			time.Sleep(target - elapsed)
		}
	}

	slog.Info("simulation loop stopped", "tick", l.Tick)
}

// Stop halts the loop after the current tick.
func (l *Loop) Stop() {
	l.running = false
}
