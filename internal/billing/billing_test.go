package billing

import (
	"testing"
	"time"

	"nrgchamp/hotelac/internal/roomstore"
)

func TestAppendChainsHashes(t *testing.T) {
	log := New()
	start := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)

	r1 := log.Append(DetailRecord{RoomID: 1, Kind: KindAC, StartTime: start, EndTime: start.Add(time.Minute), Cost: 5})
	r2 := log.Append(DetailRecord{RoomID: 1, Kind: KindAC, StartTime: start.Add(time.Minute), EndTime: start.Add(2 * time.Minute), Cost: 3})

	if r1.PrevHash != "" {
		t.Fatalf("expected empty prevHash for the first record, got %q", r1.PrevHash)
	}
	if r2.PrevHash != r1.Hash {
		t.Fatalf("expected record 2's prevHash to equal record 1's hash")
	}
	if err := log.Verify(); err != nil {
		t.Fatalf("expected an intact chain, got %v", err)
	}
}

func TestVerifyDetectsTamperedRecord(t *testing.T) {
	log := New()
	start := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	log.Append(DetailRecord{RoomID: 1, Kind: KindAC, StartTime: start, EndTime: start.Add(time.Minute), Cost: 5})
	log.Append(DetailRecord{RoomID: 1, Kind: KindAC, StartTime: start.Add(time.Minute), EndTime: start.Add(2 * time.Minute), Cost: 3})

	log.records[0].Cost = 999

	if err := log.Verify(); err == nil {
		t.Fatalf("expected Verify to detect the tampered cost field")
	}
}

func TestAddOnAppendFiresInRegistrationOrder(t *testing.T) {
	log := New()
	var order []int
	log.AddOnAppend(func(DetailRecord) { order = append(order, 1) })
	log.AddOnAppend(func(DetailRecord) { order = append(order, 2) })

	log.Append(DetailRecord{RoomID: 1, Kind: KindAC})

	if len(order) != 2 || order[0] != 1 || order[1] != 2 {
		t.Fatalf("expected both hooks to fire in registration order, got %v", order)
	}
}

func TestListByRoomFiltersByWindowAndCustomer(t *testing.T) {
	log := New()
	start := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	log.Append(DetailRecord{RoomID: 1, Kind: KindAC, StartTime: start, CustomerID: "alice", Cost: 1})
	log.Append(DetailRecord{RoomID: 1, Kind: KindAC, StartTime: start.Add(time.Hour), CustomerID: "bob", Cost: 2})
	log.Append(DetailRecord{RoomID: 2, Kind: KindAC, StartTime: start, CustomerID: "alice", Cost: 4})

	got := log.ListByRoom(1, time.Time{}, time.Time{}, "alice")
	if len(got) != 1 || got[0].CustomerID != "alice" {
		t.Fatalf("expected exactly one alice record for room 1, got %+v", got)
	}

	windowed := log.ListByRoom(1, start.Add(30*time.Minute), time.Time{}, "")
	if len(windowed) != 1 || windowed[0].CustomerID != "bob" {
		t.Fatalf("expected only the record after the window start, got %+v", windowed)
	}
}

func TestTotalCostSumsAcrossRoom(t *testing.T) {
	log := New()
	log.Append(DetailRecord{RoomID: 1, Kind: KindAC, Cost: 2.5})
	log.Append(DetailRecord{RoomID: 1, Kind: KindAC, Cost: 1.5})
	log.Append(DetailRecord{RoomID: 2, Kind: KindAC, Cost: 100})

	if got := log.TotalCost(1); got != 4 {
		t.Fatalf("expected total cost 4 for room 1, got %v", got)
	}
}

func TestSettleSkipsZeroCostUnlessPowerOff(t *testing.T) {
	log := New()
	start := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	anchor := 22.0
	room := roomstore.Room{
		ID: 1, Mode: roomstore.ModeCooling, CurrentTemp: 22,
		ServingStart: &start, BillingStartTemp: &anchor,
	}

	if rec := Settle(log, room, start, 1.0, false); rec != nil {
		t.Fatalf("expected no record for a zero-delta non-powerOff settle, got %+v", rec)
	}
	if rec := Settle(log, room, start, 1.0, true); rec == nil || rec.Kind != KindPowerOffCycle {
		t.Fatalf("expected a zero-cost POWER_OFF_CYCLE record on powerOff, got %+v", rec)
	}
}

func TestSettlePricesEffectiveDelta(t *testing.T) {
	log := New()
	start := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	end := start.Add(10 * time.Minute)
	anchor := 30.0
	room := roomstore.Room{
		ID: 1, Mode: roomstore.ModeCooling, CurrentTemp: 22,
		ServingStart: &start, BillingStartTemp: &anchor,
	}

	rec := Settle(log, room, end, 2.0, false)
	if rec == nil {
		t.Fatalf("expected a settled record")
	}
	if rec.Cost != 16 {
		t.Fatalf("expected cost 8C * 2.0 = 16, got %.2f", rec.Cost)
	}
	if rec.Kind != KindAC {
		t.Fatalf("expected KindAC, got %v", rec.Kind)
	}
}

func TestEffectiveDeltaTClampsWrongDirection(t *testing.T) {
	if d := EffectiveDeltaT(roomstore.ModeCooling, 22, 24); d != 0 {
		t.Fatalf("expected 0 delta when current temp drifted above the cooling anchor, got %v", d)
	}
	if d := EffectiveDeltaT(roomstore.ModeHeating, 22, 20); d != 0 {
		t.Fatalf("expected 0 delta when current temp drifted below the heating anchor, got %v", d)
	}
}
