package billing

import (
	"time"

	"nrgchamp/hotelac/internal/roomstore"
)

// EffectiveDeltaT is the non-negative temperature change in the
// intended direction of mode: for COOLING it is how far the anchor
// dropped, for HEATING how far it rose.
func EffectiveDeltaT(mode roomstore.Mode, anchor, current float64) float64 {
	switch mode {
	case roomstore.ModeCooling:
		d := anchor - current
		if d < 0 {
			return 0
		}
		return d
	case roomstore.ModeHeating:
		d := current - anchor
		if d < 0 {
			return 0
		}
		return d
	default:
		return 0
	}
}

// Settle closes out room's open serving segment as of endTime and
// appends the resulting record: an AC record priced at effectiveΔT *
// rate, skipped when that cost is zero unless powerOff is set, in which
// case a zero-cost POWER_OFF_CYCLE marker is written instead. It
// returns the appended record, or nil if nothing was appended.
//
// If room.ServingStart or room.BillingStartTemp is unset, Settle appends
// nothing and returns nil. Its callers (Demote, HandleReached, PowerOff,
// ChangeSpeed, ChangeMode) call it for a room that was serving.
func Settle(log *Log, room roomstore.Room, endTime time.Time, rate float64, powerOff bool) *DetailRecord {
	if room.ServingStart == nil || room.BillingStartTemp == nil {
		return nil
	}

	delta := EffectiveDeltaT(room.Mode, *room.BillingStartTemp, room.CurrentTemp)
	cost := delta * rate

	rec := DetailRecord{
		RoomID:    room.ID,
		Kind:      KindAC,
		StartTime: *room.ServingStart,
		EndTime:   endTime,
		FanSpeed:  room.FanSpeed,
		Mode:      room.Mode,
		Rate:      rate,
		Cost:      cost,
	}

	if cost <= 0 {
		if !powerOff {
			return nil
		}
		rec.Kind = KindPowerOffCycle
		rec.Cost = 0
	}

	appended := log.Append(rec)
	return &appended
}
