package engine

import (
	"time"

	"nrgchamp/hotelac/internal/billing"
	"nrgchamp/hotelac/internal/clock"
	"nrgchamp/hotelac/internal/config"
	"nrgchamp/hotelac/internal/metrics"
	"nrgchamp/hotelac/internal/roomstore"
	"nrgchamp/hotelac/internal/scheduler"
	"nrgchamp/hotelac/internal/thermal"

	"sync"
)

// Engine is the single exclusive-lock entry point described by C7: every
// exported method acquires mu, mutates the room store, scheduler queues
// and billing log together, and releases it before returning. The store,
// billing log and clock each guard their own single calls with an
// internal mutex, but consistency across them rests on mu alone —
// per-component locking was the predecessor's lost-update bug.
type Engine struct {
	mu sync.Mutex

	cfg     config.Config
	clk     *clock.Clock
	store   *roomstore.Store
	bill    *billing.Log
	sched   *scheduler.Scheduler
	rates   thermal.Rates
	metrics *metrics.Metrics
}

// New wires the engine's components together: a fresh room store seeded
// from cfg, an empty billing log, and a scheduler sharing both plus the
// clock and thermal rates. m may be nil, in which case the engine runs
// without instrumentation.
func New(cfg config.Config, clk *clock.Clock, m *metrics.Metrics) *Engine {
	rates := thermal.Rates{FanConditioning: cfg.FanRates, Rewarm: cfg.RewarmRate}
	store := roomstore.New(cfg.RoomCount, cfg.DefaultTemp, cfg.BillingUnitPrice, roomstore.ModeCooling, cfg.Cooling.Default)
	bill := billing.New()
	sched := scheduler.New(store, bill, clk, rates, cfg.BillingUnitPrice, cfg.Capacity, cfg.TimeSliceSeconds)

	e := &Engine{cfg: cfg, clk: clk, store: store, bill: bill, sched: sched, rates: rates, metrics: m}

	if m != nil {
		sched.SetHooks(m.IncPreemption, m.IncRotation)
		bill.AddOnAppend(func(rec billing.DetailRecord) {
			if rec.Kind == billing.KindAC {
				m.IncACRecord()
			}
		})
	}
	return e
}

// SetEventPublisher wires an async billing-event mirror: every record
// appended to the billing log from this point on is also handed to
// pub.Publish. Safe to call at most once, before the ticker starts.
func (e *Engine) SetEventPublisher(pub interface{ Publish(billing.DetailRecord) }) {
	e.bill.AddOnAppend(pub.Publish)
}

// record is called at the end of every command to report its result
// code and lock-held duration (measured on the logical clock, like start),
// and to refresh the queue-depth gauges. A nil metrics sink makes this a
// no-op.
func (e *Engine) record(command string, result Result, start time.Time) {
	if e.metrics == nil {
		return
	}
	e.metrics.ObserveCommand(command, string(result.Code), e.clk.Now().Sub(start).Seconds())
	e.metrics.SetQueueDepths(len(e.sched.Serving()), len(e.sched.Waiting()))
}

// Store exposes the room store to callers outside the command lock. The
// test-only initRoom HTTP handler writes room fields through it directly.
func (e *Engine) Store() *roomstore.Store { return e.store }

// Billing exposes the billing log for read-only callers.
func (e *Engine) Billing() *billing.Log { return e.bill }

// Clock exposes the clock, mainly for the test-only time-control endpoints.
func (e *Engine) Clock() *clock.Clock { return e.clk }

func (e *Engine) limitsFor(mode roomstore.Mode) config.ModeLimits {
	if mode == roomstore.ModeHeating {
		return e.cfg.Heating
	}
	return e.cfg.Cooling
}

func (e *Engine) defaultTargetFor(mode roomstore.Mode) float64 {
	return e.limitsFor(mode).Default
}

func validFan(f roomstore.FanSpeed) bool {
	return f == roomstore.FanLow || f == roomstore.FanMedium || f == roomstore.FanHigh
}

func validMode(m roomstore.Mode) bool {
	return m == roomstore.ModeCooling || m == roomstore.ModeHeating
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

// forceStep brings room.CurrentTemp up to now via a forced, signal-free
// thermal step without writing the result back.
func (e *Engine) forceStep(room roomstore.Room, isServing bool, now time.Time) float64 {
	elapsed := 0.0
	if room.LastTempUpdate != nil {
		elapsed = now.Sub(*room.LastTempUpdate).Seconds()
	}
	newTemp, _ := thermal.Step(e.rates, toThermalInput(room), isServing, elapsed, true)
	return newTemp
}

// PowerOn turns a room's AC on. Idempotent: a re-call while already on
// is a no-op (no duplicate room fee, no re-entry).
func (e *Engine) PowerOn(roomID int, currentTemp *float64) (result Result) {
	e.mu.Lock()
	defer e.mu.Unlock()
	defer func(start time.Time) { e.record("PowerOn", result, start) }(e.clk.Now())

	room, ok := e.store.Get(roomID)
	if !ok {
		return notFound(roomID)
	}
	if room.ACOn {
		return NoOp("ac already on")
	}

	t := e.clk.Now()
	_, err := e.store.Update(roomID, func(r *roomstore.Room) {
		if currentTemp != nil {
			r.CurrentTemp = *currentTemp
		}
		r.ACOn = true
		r.ACSessionStart = roomstore.PtrTime(t)
		r.LastTempUpdate = roomstore.PtrTime(t)
		r.CoolingPaused = false
		r.PauseStartTemp = nil
	})
	if err != nil {
		return internal(err.Error())
	}

	if e.cfg.EnableACCycleDailyFee && room.DailyRate > 0 {
		e.bill.Append(billing.DetailRecord{
			RoomID: roomID, Kind: billing.KindRoomFee,
			StartTime: t, EndTime: t, Rate: room.DailyRate, Cost: room.DailyRate,
		})
	}

	e.sched.Entry(roomID)
	return OK()
}

// PowerOff turns a room's AC off: settles whatever segment was open
// (serving or not), evicts it from both queues, and resets it to its
// idle defaults.
func (e *Engine) PowerOff(roomID int) (result Result) {
	e.mu.Lock()
	defer e.mu.Unlock()
	defer func(start time.Time) { e.record("PowerOff", result, start) }(e.clk.Now())

	room, ok := e.store.Get(roomID)
	if !ok {
		return notFound(roomID)
	}
	if !room.ACOn {
		return precondition("ac already off")
	}

	t := e.clk.Now()
	isServing := e.sched.State(roomID) == roomstore.QueueServing

	newTemp := e.forceStep(room, isServing, t)
	room, _ = e.store.Update(roomID, func(r *roomstore.Room) {
		r.CurrentTemp = newTemp
		r.LastTempUpdate = roomstore.PtrTime(t)
	})

	if room.ServingStart != nil {
		billing.Settle(e.bill, room, t, e.cfg.BillingUnitPrice, true)
	} else {
		e.bill.Append(billing.DetailRecord{
			RoomID: roomID, Kind: billing.KindPowerOffCycle,
			StartTime: t, EndTime: t, Rate: e.cfg.BillingUnitPrice, Cost: 0,
		})
	}

	e.sched.RemoveRoom(roomID)

	defaultTarget := e.defaultTargetFor(room.Mode)
	e.store.Update(roomID, func(r *roomstore.Room) {
		r.ACOn = false
		r.ACSessionStart = nil
		r.ServingStart = nil
		r.WaitingStart = nil
		r.BillingStartTemp = nil
		r.CoolingPaused = false
		r.PauseStartTemp = nil
		r.FanSpeed = roomstore.FanMedium
		r.TargetTemp = defaultTarget
		r.CurrentTemp = room.DefaultTemp
		r.LastTempUpdate = nil
	})

	return OK()
}

// ChangeTemp updates a room's target temperature, validating it against
// the current mode's [Min, Max] bounds. Clearing an existing pause
// re-enters the room into scheduling.
func (e *Engine) ChangeTemp(roomID int, target float64) (result Result) {
	e.mu.Lock()
	defer e.mu.Unlock()
	defer func(start time.Time) { e.record("ChangeTemp", result, start) }(e.clk.Now())

	room, ok := e.store.Get(roomID)
	if !ok {
		return notFound(roomID)
	}
	if !room.ACOn {
		return precondition("ac is off")
	}
	limits := e.limitsFor(room.Mode)
	if target < limits.Min || target > limits.Max {
		return outOfRange(formatRange(target, limits))
	}

	wasPaused := room.CoolingPaused
	e.store.Update(roomID, func(r *roomstore.Room) { r.TargetTemp = target })
	e.sched.SyncEntry(roomID, room.FanSpeed, room.Mode, target)

	if wasPaused {
		e.store.Update(roomID, func(r *roomstore.Room) {
			r.CoolingPaused = false
			r.PauseStartTemp = nil
		})
		e.sched.Entry(roomID)
	}
	return OK()
}

// ChangeSpeed updates a room's fan speed. A differing speed on a
// currently-serving room settles its open segment (at the old speed's
// conditioning rate) before re-running the entry procedure so priorities
// can reshuffle.
func (e *Engine) ChangeSpeed(roomID int, fan roomstore.FanSpeed) (result Result) {
	e.mu.Lock()
	defer e.mu.Unlock()
	defer func(start time.Time) { e.record("ChangeSpeed", result, start) }(e.clk.Now())

	room, ok := e.store.Get(roomID)
	if !ok {
		return notFound(roomID)
	}
	if !room.ACOn {
		return precondition("ac is off")
	}
	if !validFan(fan) {
		return invalidArgument("unknown fan speed")
	}
	if fan == room.FanSpeed {
		return NoOp("fan speed unchanged")
	}

	t := e.clk.Now()
	if room.ServingStart != nil {
		newTemp := e.forceStep(room, true, t)
		room, _ = e.store.Update(roomID, func(r *roomstore.Room) {
			r.CurrentTemp = newTemp
			r.LastTempUpdate = roomstore.PtrTime(t)
		})
		billing.Settle(e.bill, room, t, e.cfg.BillingUnitPrice, false)
	}

	e.store.Update(roomID, func(r *roomstore.Room) { r.FanSpeed = fan })
	e.sched.Entry(roomID)
	return OK()
}

// ChangeMode updates a room's conditioning mode (COOLING/HEATING). A
// genuine change settles any open serving segment under the old mode,
// then resets the target to the new mode's default and re-enters.
func (e *Engine) ChangeMode(roomID int, mode roomstore.Mode) (result Result) {
	e.mu.Lock()
	defer e.mu.Unlock()
	defer func(start time.Time) { e.record("ChangeMode", result, start) }(e.clk.Now())

	room, ok := e.store.Get(roomID)
	if !ok {
		return notFound(roomID)
	}
	if !validMode(mode) {
		return invalidArgument("unknown mode")
	}
	if mode == room.Mode {
		return NoOp("mode unchanged")
	}
	if !room.ACOn {
		return precondition("ac is off")
	}

	t := e.clk.Now()
	if room.ServingStart != nil {
		newTemp := e.forceStep(room, true, t)
		room, _ = e.store.Update(roomID, func(r *roomstore.Room) {
			r.CurrentTemp = newTemp
			r.LastTempUpdate = roomstore.PtrTime(t)
		})
		billing.Settle(e.bill, room, t, e.cfg.BillingUnitPrice, false)
	}

	e.store.Update(roomID, func(r *roomstore.Room) {
		r.Mode = mode
		r.TargetTemp = e.defaultTargetFor(mode)
	})
	e.sched.Entry(roomID)
	return OK()
}

// RequestState returns a point-in-time view of one room: its stored
// fields, its queue status and elapsed time in that queue, its settled
// total cost, and the pending cost of any open segment — computed
// without mutating anything, matching the rule that commands react to
// state rather than advance it; only the ticker does that.
func (e *Engine) RequestState(roomID int) (RoomStateView, Result) {
	e.mu.Lock()
	defer e.mu.Unlock()

	room, ok := e.store.Get(roomID)
	if !ok {
		return RoomStateView{}, notFound(roomID)
	}

	qstate := e.sched.State(roomID)
	if room.ACOn && room.CoolingPaused {
		qstate = roomstore.QueuePaused
	}

	var servingSeconds, waitingSeconds float64
	switch qstate {
	case roomstore.QueueServing:
		servingSeconds = e.sched.ElapsedSeconds(roomID)
	case roomstore.QueueWaiting:
		waitingSeconds = e.sched.ElapsedSeconds(roomID)
	}

	var pendingCost float64
	if room.ServingStart != nil && room.BillingStartTemp != nil {
		delta := billing.EffectiveDeltaT(room.Mode, *room.BillingStartTemp, room.CurrentTemp)
		pendingCost = delta * e.cfg.BillingUnitPrice
	}

	// The cycle-based daily fee only posts a ROOM_FEE record when the
	// config flag is on; when it's off, dailyRate still folds into the
	// reported total for display, per the billing open question.
	var dailyRateDue float64
	if !e.cfg.EnableACCycleDailyFee {
		dailyRateDue = room.DailyRate
	}

	return RoomStateView{
		Room:           room,
		QueueState:     qstate,
		ServingSeconds: servingSeconds,
		WaitingSeconds: waitingSeconds,
		SettledCost:    e.bill.TotalCost(roomID),
		PendingCost:    pendingCost,
		DailyRateDue:   dailyRateDue,
	}, OK()
}

// ScheduleStatus returns a snapshot of both queues, for the monitor
// endpoint and for tests asserting on scheduling invariants.
func (e *Engine) ScheduleStatus() ScheduleStatusView {
	e.mu.Lock()
	defer e.mu.Unlock()

	now := e.clk.Now()
	return ScheduleStatusView{
		Capacity:  e.cfg.Capacity,
		TimeSlice: e.cfg.TimeSliceSeconds,
		Serving:   queueView(e.sched.Serving(), now),
		Waiting:   queueView(e.sched.Waiting(), now),
	}
}

// Tick is the ticker's (C6) single driving step: advance every acOn
// room's thermal state by the elapsed logical time since its last
// update, dispatch any REACHED/WAKE signal, then run one schedule pass.
func (e *Engine) Tick() {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.metrics != nil {
		defer func() { e.metrics.SetQueueDepths(len(e.sched.Serving()), len(e.sched.Waiting())) }()
		e.metrics.IncTick()
	}

	now := e.clk.Now()
	for _, room := range e.store.List() {
		if !room.ACOn {
			continue
		}
		isServing := e.sched.State(room.ID) == roomstore.QueueServing

		elapsed := 0.0
		if room.LastTempUpdate != nil {
			elapsed = now.Sub(*room.LastTempUpdate).Seconds()
		}
		newTemp, sig := thermal.Step(e.rates, toThermalInput(room), isServing, elapsed, false)
		e.store.Update(room.ID, func(r *roomstore.Room) {
			r.CurrentTemp = newTemp
			r.LastTempUpdate = roomstore.PtrTime(now)
		})

		switch sig {
		case thermal.SignalReached:
			e.sched.HandleReached(room.ID)
		case thermal.SignalWake:
			e.sched.HandleWake(room.ID)
		}
	}
	e.sched.SchedulePass()
}
