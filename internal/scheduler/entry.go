package scheduler

import (
	"time"

	"nrgchamp/hotelac/internal/roomstore"
)

// QueueEntry is a room's position in exactly one of the serving or
// waiting queues. Exactly one of ServingTime/WaitingTime is non-nil.
type QueueEntry struct {
	RoomID     int
	FanSpeed   roomstore.FanSpeed
	Mode       roomstore.Mode
	TargetTemp float64

	ServingTime *time.Time
	WaitingTime *time.Time
}

func priority(f roomstore.FanSpeed) int { return f.Priority() }

func (e QueueEntry) servingDuration(now time.Time) float64 {
	if e.ServingTime == nil {
		return 0
	}
	return now.Sub(*e.ServingTime).Seconds()
}

func (e QueueEntry) waitingDuration(now time.Time) float64 {
	if e.WaitingTime == nil {
		return 0
	}
	return now.Sub(*e.WaitingTime).Seconds()
}

// selectVictim picks the serving entry to demote: minimum priority,
// ties broken by the largest serving duration, finally by room id.
func selectVictim(serving []QueueEntry, now time.Time) int {
	best := 0
	for i := 1; i < len(serving); i++ {
		if betterVictim(serving[i], serving[best], now) {
			best = i
		}
	}
	return best
}

func betterVictim(a, b QueueEntry, now time.Time) bool {
	pa, pb := priority(a.FanSpeed), priority(b.FanSpeed)
	if pa != pb {
		return pa < pb
	}
	da, db := a.servingDuration(now), b.servingDuration(now)
	if da != db {
		return da > db
	}
	return a.RoomID < b.RoomID
}

// selectPromotionCandidate picks the waiting entry to promote: maximum
// priority, ties broken by the largest waiting duration (the room that
// has waited longest goes first), finally by room id.
func selectPromotionCandidate(waiting []QueueEntry, now time.Time) int {
	best := 0
	for i := 1; i < len(waiting); i++ {
		if betterCandidate(waiting[i], waiting[best], now) {
			best = i
		}
	}
	return best
}

func betterCandidate(a, b QueueEntry, now time.Time) bool {
	pa, pb := priority(a.FanSpeed), priority(b.FanSpeed)
	if pa != pb {
		return pa > pb
	}
	wa, wb := a.waitingDuration(now), b.waitingDuration(now)
	if wa != wb {
		return wa > wb
	}
	return a.RoomID < b.RoomID
}

// oldestRotationCandidate returns the serving entry with the largest
// serving duration that has reached the time slice, if any.
func oldestRotationCandidate(serving []QueueEntry, now time.Time, timeSlice float64) (QueueEntry, bool) {
	best := -1
	for i, e := range serving {
		if e.ServingTime == nil || now.Sub(*e.ServingTime).Seconds() < timeSlice {
			continue
		}
		if best < 0 || e.servingDuration(now) > serving[best].servingDuration(now) {
			best = i
		}
	}
	if best < 0 {
		return QueueEntry{}, false
	}
	return serving[best], true
}

func removeByRoomID(entries []QueueEntry, roomID int) ([]QueueEntry, QueueEntry, bool) {
	for i, e := range entries {
		if e.RoomID == roomID {
			out := make([]QueueEntry, 0, len(entries)-1)
			out = append(out, entries[:i]...)
			out = append(out, entries[i+1:]...)
			return out, e, true
		}
	}
	return entries, QueueEntry{}, false
}

func indexOf(entries []QueueEntry, roomID int) int {
	for i, e := range entries {
		if e.RoomID == roomID {
			return i
		}
	}
	return -1
}
