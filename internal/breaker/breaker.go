// Package breaker implements a minimal circuit breaker guarding
// best-effort downstream calls (Kafka event mirroring) so a stalled
// broker degrades the caller instead of blocking the engine lock.
//
// Modelled conceptually on the repo's circuit_breaker package (Closed /
// Open / HalfOpen states, a trip threshold, and a cooldown before
// probing again) and on the assessment service's use of a breaker in
// front of its Ledger HTTP client.
package breaker

import (
	"context"
	"errors"
	"sync"
	"time"
)

// State is one of Closed, Open, or HalfOpen.
type State int

const (
	Closed State = iota
	Open
	HalfOpen
)

func (s State) String() string {
	switch s {
	case Closed:
		return "closed"
	case Open:
		return "open"
	case HalfOpen:
		return "half_open"
	default:
		return "unknown"
	}
}

// ErrOpen is returned by Execute without calling op when the breaker is
// open and the cooldown has not yet elapsed.
var ErrOpen = errors.New("breaker: circuit open")

// Breaker trips to Open after FailureThreshold consecutive failures,
// stays there for Cooldown, then moves to HalfOpen and lets calls
// through again: the first success closes it, the first failure reopens
// it and restarts the cooldown. Calls made while HalfOpen are not
// limited to a single probe.
type Breaker struct {
	FailureThreshold int
	Cooldown         time.Duration

	mu            sync.Mutex
	state         State
	failures      int
	openedAt      time.Time
	onStateChange func(State)
}

// New returns a Breaker in the Closed state.
func New(failureThreshold int, cooldown time.Duration) *Breaker {
	if failureThreshold <= 0 {
		failureThreshold = 5
	}
	if cooldown <= 0 {
		cooldown = 30 * time.Second
	}
	return &Breaker{FailureThreshold: failureThreshold, Cooldown: cooldown}
}

// OnStateChange registers a callback invoked whenever the breaker
// transitions, so a caller can log or count transitions.
func (b *Breaker) OnStateChange(fn func(State)) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.onStateChange = fn
}

// State reports the breaker's current state.
func (b *Breaker) State() State {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.state
}

// Execute runs op if the breaker allows it, recording the outcome.
// While Open and still within the cooldown, it returns ErrOpen without
// calling op at all.
func (b *Breaker) Execute(ctx context.Context, op func(context.Context) error) error {
	if !b.allow() {
		return ErrOpen
	}
	err := op(ctx)
	b.recordResult(err)
	return err
}

func (b *Breaker) allow() bool {
	b.mu.Lock()
	defer b.mu.Unlock()

	switch b.state {
	case Open:
		if time.Since(b.openedAt) < b.Cooldown {
			return false
		}
		b.setState(HalfOpen)
		return true
	default:
		return true
	}
}

func (b *Breaker) recordResult(err error) {
	b.mu.Lock()
	defer b.mu.Unlock()

	if err == nil {
		b.failures = 0
		if b.state != Closed {
			b.setState(Closed)
		}
		return
	}

	switch b.state {
	case HalfOpen:
		b.openedAt = time.Now()
		b.setState(Open)
	default:
		b.failures++
		if b.failures >= b.FailureThreshold {
			b.openedAt = time.Now()
			b.setState(Open)
		}
	}
}

// setState must be called with b.mu held.
func (b *Breaker) setState(s State) {
	b.state = s
	if b.onStateChange != nil {
		b.onStateChange(s)
	}
}
