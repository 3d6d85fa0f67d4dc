// Package scheduler multiplexes rooms over C active compressor slots
// (C5): two queues (serving, waiting), slot enforcement, preemption,
// time-slice rotation, and the state transitions that accompany them.
//
// A Scheduler is not itself safe for concurrent use — the engine's
// single exclusive lock guards it, the room store, and the billing log
// together, exactly as spec'd: fine-grained per-component locking here
// was the source of the lost-update bugs this design replaces.
package scheduler

import (
	"time"

	"nrgchamp/hotelac/internal/billing"
	"nrgchamp/hotelac/internal/clock"
	"nrgchamp/hotelac/internal/roomstore"
	"nrgchamp/hotelac/internal/thermal"
)

// Signal mirrors thermal.Signal for callers that only need the scheduler.
type Signal = thermal.Signal

// Scheduler holds the two queues and the dependencies its procedures
// need: the room store (to read/patch room fields), the billing log
// (to settle segments), the clock (logical "now"), and the thermal
// rates (to bring a room's temperature up to date before settling).
type Scheduler struct {
	store *roomstore.Store
	bill  *billing.Log
	clk   *clock.Clock
	rates thermal.Rates
	price float64

	capacity  int
	timeSlice float64 // seconds

	serving []QueueEntry
	waiting []QueueEntry

	onPreempt func()
	onRotate  func()
}

// SetHooks registers counters the metrics package wants incremented when
// SchedulePass preempts or rotates a room. Either may be nil.
func (s *Scheduler) SetHooks(onPreempt, onRotate func()) {
	s.onPreempt = onPreempt
	s.onRotate = onRotate
}

// New constructs a Scheduler with empty queues.
func New(store *roomstore.Store, bill *billing.Log, clk *clock.Clock, rates thermal.Rates, price float64, capacity int, timeSliceSeconds float64) *Scheduler {
	return &Scheduler{
		store:     store,
		bill:      bill,
		clk:       clk,
		rates:     rates,
		price:     price,
		capacity:  capacity,
		timeSlice: timeSliceSeconds,
	}
}

// Serving returns a copy of the serving queue.
func (s *Scheduler) Serving() []QueueEntry {
	out := make([]QueueEntry, len(s.serving))
	copy(out, s.serving)
	return out
}

// Waiting returns a copy of the waiting queue.
func (s *Scheduler) Waiting() []QueueEntry {
	out := make([]QueueEntry, len(s.waiting))
	copy(out, s.waiting)
	return out
}

// State reports which queue, if any, roomID currently occupies.
func (s *Scheduler) State(roomID int) roomstore.QueueState {
	if indexOf(s.serving, roomID) >= 0 {
		return roomstore.QueueServing
	}
	if indexOf(s.waiting, roomID) >= 0 {
		return roomstore.QueueWaiting
	}
	return roomstore.QueueIdle
}

// ElapsedSeconds returns the room's time in its current queue, or 0 if
// it is in neither.
func (s *Scheduler) ElapsedSeconds(roomID int) float64 {
	now := s.clk.Now()
	if i := indexOf(s.serving, roomID); i >= 0 {
		return s.serving[i].servingDuration(now)
	}
	if i := indexOf(s.waiting, roomID); i >= 0 {
		return s.waiting[i].waitingDuration(now)
	}
	return 0
}

// RemoveRoom drops roomID from whichever queue holds it, without any
// billing side effect (the caller — PowerOff — has already settled any
// open segment), then runs a schedule pass so a freed slot is refilled.
func (s *Scheduler) RemoveRoom(roomID int) {
	s.removeStale(roomID)
	s.SchedulePass()
}

func (s *Scheduler) removeStale(roomID int) {
	if rest, _, ok := removeByRoomID(s.serving, roomID); ok {
		s.serving = rest
	}
	if rest, _, ok := removeByRoomID(s.waiting, roomID); ok {
		s.waiting = rest
	}
}

// Entry is the PowerOn/re-entry procedure: drop any stale entry for the
// room, then place it directly into serving if a slot is free, else
// into waiting, and run a schedule pass.
func (s *Scheduler) Entry(roomID int) {
	s.removeStale(roomID)

	room, ok := s.store.Get(roomID)
	if !ok {
		return
	}
	now := s.clk.Now()

	if len(s.serving) < s.capacity {
		t := now
		s.serving = append(s.serving, QueueEntry{
			RoomID: roomID, FanSpeed: room.FanSpeed, Mode: room.Mode,
			TargetTemp: room.TargetTemp, ServingTime: &t,
		})
		anchor := room.CurrentTemp
		s.store.Update(roomID, func(r *roomstore.Room) {
			r.ServingStart = &t
			r.WaitingStart = nil
			r.BillingStartTemp = &anchor
		})
	} else {
		t := now
		s.waiting = append(s.waiting, QueueEntry{
			RoomID: roomID, FanSpeed: room.FanSpeed, Mode: room.Mode,
			TargetTemp: room.TargetTemp, WaitingTime: &t,
		})
		s.store.Update(roomID, func(r *roomstore.Room) {
			r.WaitingStart = &t
			r.ServingStart = nil
		})
	}
	s.SchedulePass()
}

// SyncEntry refreshes an already-serving/waiting room's queue entry
// (fan speed, mode, target) after a ChangeTemp command, without touching
// timestamps or billing.
func (s *Scheduler) SyncEntry(roomID int, fan roomstore.FanSpeed, mode roomstore.Mode, target float64) {
	if i := indexOf(s.serving, roomID); i >= 0 {
		s.serving[i].FanSpeed = fan
		s.serving[i].Mode = mode
		s.serving[i].TargetTemp = target
	}
	if i := indexOf(s.waiting, roomID); i >= 0 {
		s.waiting[i].FanSpeed = fan
		s.waiting[i].Mode = mode
		s.waiting[i].TargetTemp = target
	}
}

// SchedulePass runs the four-step schedule pass described in the
// scheduler design: enforce capacity, priority preemption, time-slice
// rotation, then fill any free slots.
func (s *Scheduler) SchedulePass() {
	now := s.clk.Now()

	for len(s.serving) > s.capacity {
		victim := s.serving[selectVictim(s.serving, now)]
		s.Demote(victim, "CAPACITY")
		now = s.clk.Now()
	}

	for len(s.serving) == s.capacity && len(s.waiting) > 0 {
		wStar := s.waiting[selectPromotionCandidate(s.waiting, now)]
		sStar := s.serving[selectVictim(s.serving, now)]
		if priority(wStar.FanSpeed) <= priority(sStar.FanSpeed) {
			break
		}
		s.Demote(sStar, "PREEMPT")
		s.Promote(wStar)
		if s.onPreempt != nil {
			s.onPreempt()
		}
		now = s.clk.Now()
	}

	// Rotation demotes at most one entry per pass — the single serving
	// room with the largest serving duration past the time slice. Any
	// other stale entries rotate out on a later pass; demoting them all
	// at once would hand freshly-vacated (waitingTime==now) rooms a
	// same-pass rematch against the waiter that has been queued longest.
	if victim, ok := oldestRotationCandidate(s.serving, now, s.timeSlice); ok {
		s.Demote(victim, "ROTATION")
		if s.onRotate != nil {
			s.onRotate()
		}
		now = s.clk.Now()
	}

	for len(s.serving) < s.capacity && len(s.waiting) > 0 {
		wStar := s.waiting[selectPromotionCandidate(s.waiting, now)]
		s.Promote(wStar)
		now = s.clk.Now()
	}
}

// Demote moves entry from serving to waiting: brings its temperature up
// to date (forced — no signal), settles its billing segment, then
// re-enqueues it at the back of the waiting line.
func (s *Scheduler) Demote(entry QueueEntry, reason string) {
	now := s.clk.Now()
	room, ok := s.store.Get(entry.RoomID)
	if !ok {
		return
	}

	newTemp := s.forceStep(room, true, now)
	room, _ = s.store.Update(entry.RoomID, func(r *roomstore.Room) {
		r.CurrentTemp = newTemp
		t := now
		r.LastTempUpdate = &t
	})

	billing.Settle(s.bill, room, now, s.price, false)

	if rest, _, ok := removeByRoomID(s.serving, entry.RoomID); ok {
		s.serving = rest
	}
	entry.ServingTime = nil
	t := now
	entry.WaitingTime = &t
	s.waiting = append(s.waiting, entry)

	s.store.Update(entry.RoomID, func(r *roomstore.Room) {
		r.ServingStart = nil
		r.BillingStartTemp = nil
		r.WaitingStart = &t
	})
}

// Promote moves entry from waiting to serving: brings its temperature
// up to date (forced — no signal), then anchors a fresh billing segment
// at the post-drift reading.
func (s *Scheduler) Promote(entry QueueEntry) {
	now := s.clk.Now()
	room, ok := s.store.Get(entry.RoomID)
	if !ok {
		return
	}

	newTemp := s.forceStep(room, false, now)

	if rest, _, ok := removeByRoomID(s.waiting, entry.RoomID); ok {
		s.waiting = rest
	}
	entry.WaitingTime = nil
	t := now
	entry.ServingTime = &t
	s.serving = append(s.serving, entry)

	s.store.Update(entry.RoomID, func(r *roomstore.Room) {
		r.CurrentTemp = newTemp
		r.LastTempUpdate = &t
		r.ServingStart = &t
		r.WaitingStart = nil
		anchor := newTemp
		r.BillingStartTemp = &anchor
	})
}

// HandleReached processes a REACHED signal from the ticker's thermal
// step on a serving room: settle the segment, remove it from every
// queue, mark it paused, then run a schedule pass over the freed slot.
func (s *Scheduler) HandleReached(roomID int) {
	now := s.clk.Now()
	room, ok := s.store.Get(roomID)
	if !ok {
		return
	}
	billing.Settle(s.bill, room, now, s.price, false)
	s.removeStale(roomID)

	pauseTemp := room.TargetTemp
	s.store.Update(roomID, func(r *roomstore.Room) {
		r.CoolingPaused = true
		r.PauseStartTemp = &pauseTemp
		r.ServingStart = nil
		r.WaitingStart = nil
		r.BillingStartTemp = nil
	})
	s.SchedulePass()
}

// HandleWake processes a WAKE signal from a paused room: clear the
// pause and re-run the entry procedure.
func (s *Scheduler) HandleWake(roomID int) {
	s.store.Update(roomID, func(r *roomstore.Room) {
		r.CoolingPaused = false
		r.PauseStartTemp = nil
	})
	s.Entry(roomID)
}

// forceStep brings room.CurrentTemp up to now via a forced (signal-free)
// thermal step, without writing it back — callers decide what else to
// update in the same store mutation.
func (s *Scheduler) forceStep(room roomstore.Room, isServing bool, now time.Time) float64 {
	elapsed := 0.0
	if room.LastTempUpdate != nil {
		elapsed = now.Sub(*room.LastTempUpdate).Seconds()
	}
	newTemp, _ := thermal.Step(s.rates, toThermalInput(room), isServing, elapsed, true)
	return newTemp
}

func toThermalInput(r roomstore.Room) thermal.Input {
	return thermal.Input{
		ACOn:           r.ACOn,
		FanSpeed:       string(r.FanSpeed),
		CurrentTemp:    r.CurrentTemp,
		TargetTemp:     r.TargetTemp,
		DefaultTemp:    r.DefaultTemp,
		CoolingPaused:  r.CoolingPaused,
		PauseStartTemp: r.PauseStartTemp,
	}
}
