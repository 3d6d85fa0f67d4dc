package scheduler

import (
	"testing"
	"time"

	"nrgchamp/hotelac/internal/billing"
	"nrgchamp/hotelac/internal/clock"
	"nrgchamp/hotelac/internal/roomstore"
	"nrgchamp/hotelac/internal/thermal"
)

func newTestScheduler(t *testing.T, rooms int, capacity int, timeSlice float64) (*Scheduler, *roomstore.Store, *clock.Clock, time.Time) {
	t.Helper()
	start := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	clk := clock.New(start)
	store := roomstore.New(rooms, 32, 100, roomstore.ModeCooling, 25)
	bill := billing.New()
	rates := thermal.Rates{
		FanConditioning: map[string]float64{"LOW": 1.0 / 3.0, "MEDIUM": 1.0 / 2.0, "HIGH": 1.0},
		Rewarm:          0.5,
	}
	sched := New(store, bill, clk, rates, 1.0, capacity, timeSlice)
	return sched, store, clk, start
}

func powerOnRoom(s *Scheduler, store *roomstore.Store, id int) {
	store.Update(id, func(r *roomstore.Room) {
		r.ACOn = true
	})
	s.Entry(id)
}

func TestEntryFillsFreeSlotsBeforeWaiting(t *testing.T) {
	sched, store, _, _ := newTestScheduler(t, 4, 3, 120)

	for _, id := range []int{1, 2, 3} {
		powerOnRoom(sched, store, id)
	}
	if sched.State(1) != roomstore.QueueServing || sched.State(2) != roomstore.QueueServing || sched.State(3) != roomstore.QueueServing {
		t.Fatalf("expected rooms 1-3 serving with capacity 3, got %v %v %v", sched.State(1), sched.State(2), sched.State(3))
	}

	powerOnRoom(sched, store, 4)
	if sched.State(4) != roomstore.QueueWaiting {
		t.Fatalf("expected room 4 to wait once capacity is full, got %v", sched.State(4))
	}
}

func TestFullCapacityPreemptsLowestPriority(t *testing.T) {
	sched, store, _, _ := newTestScheduler(t, 2, 1, 120)

	store.Update(1, func(r *roomstore.Room) { r.ACOn = true; r.FanSpeed = roomstore.FanLow })
	sched.Entry(1)
	store.Update(2, func(r *roomstore.Room) { r.ACOn = true; r.FanSpeed = roomstore.FanHigh })
	sched.Entry(2)

	if sched.State(2) != roomstore.QueueServing {
		t.Fatalf("expected HIGH priority room 2 serving, got %v", sched.State(2))
	}
	if sched.State(1) != roomstore.QueueWaiting {
		t.Fatalf("expected LOW priority room 1 preempted to waiting, got %v", sched.State(1))
	}
}

func TestRotationDemotesOnlyTheOldestPerPass(t *testing.T) {
	sched, store, clk, start := newTestScheduler(t, 4, 3, 120)

	for _, id := range []int{1, 2, 3} {
		powerOnRoom(sched, store, id)
	}
	clk.JumpTo(start.Add(10 * time.Second))
	powerOnRoom(sched, store, 4)
	if sched.State(4) != roomstore.QueueWaiting {
		t.Fatalf("room 4 should be waiting before rotation, got %v", sched.State(4))
	}

	clk.JumpTo(start.Add(130 * time.Second))
	sched.SchedulePass()

	if sched.State(1) != roomstore.QueueWaiting {
		t.Fatalf("expected room 1 (earliest server) rotated out, got %v", sched.State(1))
	}
	if sched.State(2) != roomstore.QueueServing || sched.State(3) != roomstore.QueueServing {
		t.Fatalf("rooms 2 and 3 should still be serving after a single rotation, got %v %v", sched.State(2), sched.State(3))
	}
	if sched.State(4) != roomstore.QueueServing {
		t.Fatalf("expected room 4 (longest waiter) promoted in room 1's place, got %v", sched.State(4))
	}
}

func TestPromotionPrefersLongestWaiter(t *testing.T) {
	sched, store, clk, start := newTestScheduler(t, 3, 1, 120)

	powerOnRoom(sched, store, 1)

	clk.JumpTo(start.Add(5 * time.Second))
	powerOnRoom(sched, store, 2)
	if sched.State(2) != roomstore.QueueWaiting {
		t.Fatalf("room 2 should wait behind room 1, got %v", sched.State(2))
	}

	clk.JumpTo(start.Add(15 * time.Second))
	powerOnRoom(sched, store, 3)
	if sched.State(3) != roomstore.QueueWaiting {
		t.Fatalf("room 3 should also wait, got %v", sched.State(3))
	}

	sched.Demote(sched.serving[indexOf(sched.serving, 1)], "CAPACITY")
	sched.SchedulePass()

	if sched.State(2) != roomstore.QueueServing {
		t.Fatalf("expected the longer-waiting room 2 promoted over room 3, got %v", sched.State(2))
	}
	if sched.State(3) != roomstore.QueueWaiting {
		t.Fatalf("expected room 3 to remain waiting, got %v", sched.State(3))
	}
}

func TestRemoveRoomRefillsFreedSlot(t *testing.T) {
	sched, store, clk, start := newTestScheduler(t, 2, 1, 120)

	powerOnRoom(sched, store, 1)
	clk.JumpTo(start.Add(1 * time.Second))
	powerOnRoom(sched, store, 2)
	if sched.State(2) != roomstore.QueueWaiting {
		t.Fatalf("room 2 should be waiting, got %v", sched.State(2))
	}

	sched.RemoveRoom(1)

	if sched.State(1) != roomstore.QueueIdle {
		t.Fatalf("expected room 1 idle after RemoveRoom, got %v", sched.State(1))
	}
	if sched.State(2) != roomstore.QueueServing {
		t.Fatalf("expected room 2 promoted into the freed slot, got %v", sched.State(2))
	}
}
