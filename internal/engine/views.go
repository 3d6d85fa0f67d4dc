package engine

import (
	"fmt"
	"time"

	"nrgchamp/hotelac/internal/config"
	"nrgchamp/hotelac/internal/roomstore"
	"nrgchamp/hotelac/internal/scheduler"
)

// RoomStateView is the read model returned by RequestState.
type RoomStateView struct {
	Room           roomstore.Room
	QueueState     roomstore.QueueState
	ServingSeconds float64
	WaitingSeconds float64
	SettledCost    float64
	PendingCost    float64
	DailyRateDue   float64
}

// QueueStatusEntry is one room's position in ScheduleStatus's view of a
// queue, with its elapsed time already resolved against now.
type QueueStatusEntry struct {
	RoomID     int
	FanSpeed   roomstore.FanSpeed
	Mode       roomstore.Mode
	TargetTemp float64
	Seconds    float64
}

// ScheduleStatusView is the read model returned by ScheduleStatus.
type ScheduleStatusView struct {
	Capacity  int
	TimeSlice float64
	Serving   []QueueStatusEntry
	Waiting   []QueueStatusEntry
}

func queueView(entries []scheduler.QueueEntry, now time.Time) []QueueStatusEntry {
	out := make([]QueueStatusEntry, 0, len(entries))
	for _, e := range entries {
		seconds := 0.0
		switch {
		case e.ServingTime != nil:
			seconds = now.Sub(*e.ServingTime).Seconds()
		case e.WaitingTime != nil:
			seconds = now.Sub(*e.WaitingTime).Seconds()
		}
		out = append(out, QueueStatusEntry{
			RoomID: e.RoomID, FanSpeed: e.FanSpeed, Mode: e.Mode,
			TargetTemp: e.TargetTemp, Seconds: seconds,
		})
	}
	return out
}

func formatRange(target float64, limits config.ModeLimits) string {
	return fmt.Sprintf("target %.2f outside [%.2f, %.2f]", target, limits.Min, limits.Max)
}
