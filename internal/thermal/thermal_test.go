package thermal

import "testing"

func testRates() Rates {
	return Rates{
		FanConditioning: map[string]float64{
			"LOW":    1.0 / 3.0,
			"MEDIUM": 1.0 / 2.0,
			"HIGH":   1.0,
		},
		Rewarm: 0.5,
	}
}

func TestStepServingCoolsTowardTarget(t *testing.T) {
	rates := testRates()
	in := Input{ACOn: true, FanSpeed: "HIGH", CurrentTemp: 32, TargetTemp: 22, DefaultTemp: 32}

	newTemp, sig := Step(rates, in, true, 60, false)
	if newTemp != 31 {
		t.Fatalf("after 1 logical minute at HIGH, got %.4f, want 31", newTemp)
	}
	if sig != SignalNone {
		t.Fatalf("expected no signal mid-cooldown, got %v", sig)
	}
}

func TestStepServingReachesTargetAndEmitsSignal(t *testing.T) {
	rates := testRates()
	in := Input{ACOn: true, FanSpeed: "HIGH", CurrentTemp: 32, TargetTemp: 22, DefaultTemp: 32}

	// 600 logical seconds = 10 minutes at HIGH (1C/min) covers the full 10C.
	newTemp, sig := Step(rates, in, true, 600, false)
	if newTemp != 22 {
		t.Fatalf("got %.4f, want 22 (reached)", newTemp)
	}
	if sig != SignalReached {
		t.Fatalf("expected REACHED, got %v", sig)
	}
}

func TestStepNeverOvershoots(t *testing.T) {
	rates := testRates()
	in := Input{ACOn: true, FanSpeed: "HIGH", CurrentTemp: 22.05, TargetTemp: 22, DefaultTemp: 32}

	newTemp, sig := Step(rates, in, true, 600, false)
	if newTemp != 22 {
		t.Fatalf("overshoot: got %.4f", newTemp)
	}
	if sig != SignalReached {
		t.Fatalf("expected REACHED when within epsilon, got %v", sig)
	}
}

func TestStepForcedNeverEmitsSignal(t *testing.T) {
	rates := testRates()
	in := Input{ACOn: true, FanSpeed: "HIGH", CurrentTemp: 32, TargetTemp: 22, DefaultTemp: 32}

	newTemp, sig := Step(rates, in, true, 600, true)
	if newTemp != 22 {
		t.Fatalf("got %.4f, want 22", newTemp)
	}
	if sig != SignalNone {
		t.Fatalf("forced step must never signal, got %v", sig)
	}
}

func TestStepPausedDriftsAndWakes(t *testing.T) {
	rates := testRates()
	pauseTemp := 24.0
	in := Input{
		ACOn: true, CurrentTemp: 24, TargetTemp: 24, DefaultTemp: 32,
		CoolingPaused: true, PauseStartTemp: &pauseTemp,
	}

	// 120 logical seconds = 2 minutes at rewarm 0.5C/min -> +1.0C -> wakes.
	newTemp, sig := Step(rates, in, false, 120, false)
	if newTemp != 25 {
		t.Fatalf("got %.4f, want 25", newTemp)
	}
	if sig != SignalWake {
		t.Fatalf("expected WAKE at >=1.0C drift, got %v", sig)
	}
}

func TestStepWaitingDriftsWithoutSignal(t *testing.T) {
	rates := testRates()
	in := Input{ACOn: true, CurrentTemp: 28, TargetTemp: 22, DefaultTemp: 32}

	newTemp, sig := Step(rates, in, false, 60, false)
	if newTemp != 28.5 {
		t.Fatalf("got %.4f, want 28.5", newTemp)
	}
	if sig != SignalNone {
		t.Fatalf("waiting room should never signal, got %v", sig)
	}
}

func TestStepZeroElapsedIsNoOp(t *testing.T) {
	rates := testRates()
	in := Input{ACOn: true, FanSpeed: "HIGH", CurrentTemp: 32, TargetTemp: 22, DefaultTemp: 32}
	newTemp, sig := Step(rates, in, true, 0, false)
	if newTemp != 32 || sig != SignalNone {
		t.Fatalf("zero delta must be a no-op, got temp=%.4f sig=%v", newTemp, sig)
	}
}

func TestStepPoweredOffDriftsToDefault(t *testing.T) {
	rates := testRates()
	in := Input{ACOn: false, CurrentTemp: 20, DefaultTemp: 30}
	newTemp, sig := Step(rates, in, false, 60, false)
	if newTemp != 20.5 {
		t.Fatalf("got %.4f, want 20.5", newTemp)
	}
	if sig != SignalNone {
		t.Fatalf("powered-off room should never signal, got %v", sig)
	}
}
