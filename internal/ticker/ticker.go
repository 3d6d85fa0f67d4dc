// Package ticker runs the engine's single background driver (C6): one
// goroutine, one wall-clock interval, calling engine.Tick on every beat
// and logging (never panicking) if a tick takes unexpectedly long.
//
// Modelled on the mape service's periodic Run loop in cmd/server/main.go:
// a time.Ticker selected alongside ctx.Done(), so shutdown is immediate
// rather than waiting out the current interval.
package ticker

import (
	"context"
	"log/slog"
	"time"
)

// Engine is the subset of *engine.Engine the ticker drives. Declared
// here instead of imported directly so this package stays a leaf that
// can be tested against a fake.
type Engine interface {
	Tick()
}

// Ticker drives Engine.Tick at a fixed wall-clock interval until its
// context is cancelled.
type Ticker struct {
	engine   Engine
	interval time.Duration
	log      *slog.Logger
}

// New returns a Ticker that will call eng.Tick every interval.
func New(eng Engine, interval time.Duration, log *slog.Logger) *Ticker {
	return &Ticker{engine: eng, interval: interval, log: log}
}

// Run blocks, ticking until ctx is cancelled. Intended to be run in its
// own goroutine from main.
func (t *Ticker) Run(ctx context.Context) {
	tk := time.NewTicker(t.interval)
	defer tk.Stop()

	for {
		select {
		case <-ctx.Done():
			t.log.Info("ticker stopped")
			return
		case start := <-tk.C:
			t.engine.Tick()
			if elapsed := time.Since(start); elapsed > t.interval {
				t.log.Warn("tick took longer than its interval", "elapsed", elapsed, "interval", t.interval)
			}
		}
	}
}
