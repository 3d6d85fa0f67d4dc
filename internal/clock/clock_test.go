package clock

import (
	"testing"
	"time"
)

func TestClockAdvancesAtUnitSpeed(t *testing.T) {
	start := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	fake := start
	c := New(start)
	c.nowFunc = func() time.Time { return fake }
	c.w0 = fake

	fake = fake.Add(10 * time.Second)
	got := c.Now()
	want := start.Add(10 * time.Second)
	if !got.Equal(want) {
		t.Fatalf("Now() = %v, want %v", got, want)
	}
}

func TestClockSetSpeedIsContinuous(t *testing.T) {
	start := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	fake := start
	c := New(start)
	c.nowFunc = func() time.Time { return fake }

	fake = fake.Add(5 * time.Second)
	before := c.Now()

	c.SetSpeed(10)
	after := c.Now()
	if !before.Equal(after) {
		t.Fatalf("SetSpeed caused a jump: before=%v after=%v", before, after)
	}

	fake = fake.Add(1 * time.Second)
	got := c.Now()
	want := after.Add(10 * time.Second)
	if !got.Equal(want) {
		t.Fatalf("Now() after speed change = %v, want %v", got, want)
	}
}

func TestClockPauseFreezesNow(t *testing.T) {
	start := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	fake := start
	c := New(start)
	c.nowFunc = func() time.Time { return fake }

	fake = fake.Add(3 * time.Second)
	c.Pause()
	frozen := c.Now()

	fake = fake.Add(100 * time.Second)
	if got := c.Now(); !got.Equal(frozen) {
		t.Fatalf("paused clock advanced: got %v, want %v", got, frozen)
	}

	c.Resume()
	fake = fake.Add(1 * time.Second)
	if got := c.Now(); !got.Equal(frozen.Add(1 * time.Second)) {
		t.Fatalf("resume did not continue from pause point: got %v", got)
	}
}

func TestClockJumpTo(t *testing.T) {
	start := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	c := New(start)
	target := start.Add(48 * time.Hour)
	c.JumpTo(target)
	if got := c.Now(); got.Before(target) {
		t.Fatalf("JumpTo did not move logical time forward: got %v", got)
	}
}
