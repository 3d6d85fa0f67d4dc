// Package thermal is the engine's pure thermal model (C4): given a room
// snapshot and an elapsed logical duration, it produces the room's new
// temperature and any state-transition signal.
//
// Step never mutates its input and never reads the clock itself — the
// caller supplies the elapsed time, so the model stays a pure function of its
// arguments and is trivially unit-testable.
//
// Cycle-breaking invariant (see spec design notes): a forced call
// (force=true) — the kind the scheduler makes while demoting or
// promoting a room to bring its temperature up to date before settling
// a billing segment — never emits REACHED or WAKE. Only the ticker's
// regular, non-forced call produces signals. Without this guard,
// Demote -> settle -> Step -> signal -> schedule pass -> Demote could
// recur forever.
package thermal

import "math"

// Signal is a state-transition event emitted by Step.
type Signal string

const (
	SignalNone    Signal = ""
	SignalReached Signal = "REACHED" // serving room arrived at its target
	SignalWake    Signal = "WAKE"    // paused room drifted >=1.0C from its pause point
)

// Epsilon is the tolerance within which a serving room is considered to
// have reached its target.
const Epsilon = 0.01

// WakeThreshold is the drift, in degrees, past which a paused room wakes.
const WakeThreshold = 1.0

// Rates holds the conditioning and passive-drift rates the model uses.
type Rates struct {
	// FanConditioning maps fan speed name to degrees per logical minute.
	FanConditioning map[string]float64
	// Rewarm is the passive drift rate toward DefaultTemp, degrees per
	// logical minute, used whenever the room is not being actively served.
	Rewarm float64
}

// Input is the subset of room state Step needs; it never reads the
// room's identity or billing fields.
type Input struct {
	ACOn           bool
	FanSpeed       string
	CurrentTemp    float64
	TargetTemp     float64
	DefaultTemp    float64
	CoolingPaused  bool
	PauseStartTemp *float64
}

// Step advances Input.CurrentTemp by deltaSeconds of logical time and
// returns the new temperature and any signal. A zero or negative
// deltaSeconds is a no-op (the "first call after boot" case in the
// spec, where only lastTempUpdate should be stamped by the caller).
func Step(rates Rates, in Input, isServing bool, deltaSeconds float64, force bool) (newTemp float64, signal Signal) {
	if deltaSeconds <= 0 {
		return in.CurrentTemp, SignalNone
	}
	deltaMinutes := deltaSeconds / 60.0

	if !in.ACOn {
		return moveToward(in.CurrentTemp, in.DefaultTemp, rates.Rewarm*deltaMinutes), SignalNone
	}

	if isServing {
		rate := rates.FanConditioning[in.FanSpeed]
		newTemp = moveToward(in.CurrentTemp, in.TargetTemp, rate*deltaMinutes)
		if !force && math.Abs(newTemp-in.TargetTemp) < Epsilon {
			return in.TargetTemp, SignalReached
		}
		return newTemp, SignalNone
	}

	// Not serving: either paused (waiting to wake) or sitting in the
	// waiting queue. Both drift passively toward DefaultTemp.
	newTemp = moveToward(in.CurrentTemp, in.DefaultTemp, rates.Rewarm*deltaMinutes)
	if in.CoolingPaused && !force && in.PauseStartTemp != nil {
		if math.Abs(newTemp-*in.PauseStartTemp) >= WakeThreshold {
			return newTemp, SignalWake
		}
	}
	return newTemp, SignalNone
}

// moveToward shifts cur toward target by at most maxDelta, clamped so
// it never overshoots. maxDelta is assumed non-negative; the sign of
// movement is purely the comparison between cur and target, which is
// what keeps the model symmetric between cooling and heating.
func moveToward(cur, target, maxDelta float64) float64 {
	if maxDelta < 0 {
		maxDelta = -maxDelta
	}
	if cur < target {
		next := cur + maxDelta
		if next > target {
			next = target
		}
		return next
	}
	if cur > target {
		next := cur - maxDelta
		if next < target {
			next = target
		}
		return next
	}
	return cur
}
