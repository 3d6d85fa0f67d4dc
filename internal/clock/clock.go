// Package clock provides the engine's single logical time source.
//
// Every other component reads time only through a Clock; none of them
// ever call time.Now directly. This lets a test harness run the whole
// engine at an accelerated, decelerated, paused or jumped logical rate
// without any component being aware of it.
package clock

import (
	"sync"
	"time"
)

// Clock is a logical clock: now() = l0 + k*(wallNow - w0).
//
// w0/l0 are recomputed on every SetSpeed/JumpTo/Pause/Resume so that
// Now() is continuous across the change — callers never observe a jump
// they did not ask for.
type Clock struct {
	mu      sync.RWMutex
	w0      time.Time
	l0      time.Time
	k       float64
	paused  bool
	nowFunc func() time.Time // overridable for deterministic tests
}

// New returns a running clock anchored at the wall clock's current time,
// with logical time starting at start and speed 1.0.
func New(start time.Time) *Clock {
	return &Clock{
		w0:      time.Now(),
		l0:      start,
		k:       1.0,
		nowFunc: time.Now,
	}
}

// Now returns the current logical instant.
func (c *Clock) Now() time.Time {
	c.mu.RLock()
	defer c.mu.RUnlock()
	if c.paused {
		return c.l0
	}
	elapsed := c.nowFunc().Sub(c.w0)
	return c.l0.Add(time.Duration(float64(elapsed) * c.k))
}

// SetSpeed changes the logical rate (0 freezes time as effectively as
// Pause, but Pause/Resume remember the pre-pause speed while SetSpeed(0)
// does not).
func (c *Clock) SetSpeed(k float64) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.rebaseLocked()
	c.k = k
}

// Speed returns the current logical rate.
func (c *Clock) Speed() float64 {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.k
}

// JumpTo moves logical time to t instantly; the clock keeps running
// (or stays paused) at its current speed from the new anchor.
func (c *Clock) JumpTo(t time.Time) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.w0 = c.nowFunc()
	c.l0 = t
}

// Pause freezes Now() at its current value.
func (c *Clock) Pause() {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.paused {
		return
	}
	c.rebaseLocked()
	c.paused = true
}

// Resume continues logical time from where Pause left it.
func (c *Clock) Resume() {
	c.mu.Lock()
	defer c.mu.Unlock()
	if !c.paused {
		return
	}
	c.w0 = c.nowFunc()
	c.paused = false
}

// Paused reports whether the clock is currently frozen.
func (c *Clock) Paused() bool {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.paused
}

// rebaseLocked folds the current (w0, l0, k) into a fresh anchor at the
// present moment, so a subsequent change of k or paused does not cause
// Now() to jump. Caller must hold c.mu.
func (c *Clock) rebaseLocked() {
	if c.paused {
		c.w0 = c.nowFunc()
		return
	}
	elapsed := c.nowFunc().Sub(c.w0)
	c.l0 = c.l0.Add(time.Duration(float64(elapsed) * c.k))
	c.w0 = c.nowFunc()
}
