package timectrl

import (
	"math"
	"testing"
	"time"
)

func TestAdvanceScalesByRate(t *testing.T) {
	start := time.Date(2026, time.January, 1, 0, 0, 0, 0, time.UTC)
	tc := NewTimeController(start, WithRate(86400)) // one day per wall second

	applied := tc.Advance(1)
	if math.Abs(applied-86400) > 1e-9 {
		t.Fatalf("Advance returned %v sim seconds, want 86400", applied)
	}
	want := start.Add(24 * time.Hour)
	if got := tc.Now(); !got.Equal(want) {
		t.Fatalf("Now() = %v, want %v", got, want)
	}
}

func TestAdvanceWhilePausedIsNoop(t *testing.T) {
	start := time.Date(2026, time.January, 1, 0, 0, 0, 0, time.UTC)
	tc := NewTimeController(start)
	tc.Pause()

	if applied := tc.Advance(5); applied != 0 {
		t.Fatalf("Advance while paused applied %v sim seconds, want 0", applied)
	}
	if got := tc.Now(); !got.Equal(start) {
		t.Fatalf("paused clock moved to %v, want %v", got, start)
	}

	tc.Resume()
	tc.Advance(2)
	if got := tc.Now(); !got.Equal(start.Add(2 * time.Second)) {
		t.Fatalf("resumed clock = %v, want %v", got, start.Add(2*time.Second))
	}
}

func TestScaledSeconds(t *testing.T) {
	tc := NewTimeController(time.Now(), WithRate(10))
	if got := tc.ScaledSeconds(0.5); math.Abs(got-5) > 1e-12 {
		t.Fatalf("ScaledSeconds = %v, want 5", got)
	}
	tc.Pause()
	if got := tc.ScaledSeconds(0.5); got != 0 {
		t.Fatalf("ScaledSeconds while paused = %v, want 0", got)
	}
}

func TestSetRateRejectsNonPositive(t *testing.T) {
	tc := NewTimeController(time.Now(), WithRate(7))
	tc.SetRate(0)
	tc.SetRate(-3)
	if got := tc.Rate(); got != 7 {
		t.Fatalf("Rate = %v, want 7 after rejecting non-positive rates", got)
	}
}

func TestSetTimeJumpsClock(t *testing.T) {
	start := time.Date(2026, time.January, 1, 0, 0, 0, 0, time.UTC)
	tc := NewTimeController(start)

	target := start.Add(42 * time.Second)
	tc.SetTime(target)

	if got := tc.Now(); !got.Equal(target) {
		t.Fatalf("Now() = %v, want %v", got, target)
	}
}

func TestListenersSeeEachAdvance(t *testing.T) {
	start := time.Date(2026, time.January, 1, 0, 0, 0, 0, time.UTC)
	tc := NewTimeController(start)

	var seen []time.Time
	tc.AddListener(func(now time.Time) { seen = append(seen, now) })

	tc.Advance(1)
	tc.Advance(1)
	if len(seen) != 2 {
		t.Fatalf("listener fired %d times, want 2", len(seen))
	}
	if !seen[1].Equal(start.Add(2 * time.Second)) {
		t.Fatalf("last listener time = %v, want %v", seen[1], start.Add(2*time.Second))
	}

	tc.Pause()
	tc.Advance(1)
	if len(seen) != 2 {
		t.Fatal("listener fired for a paused advance")
	}
}
