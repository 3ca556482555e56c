package clock

import (
	"testing"
	"time"
)

func TestRealClock_Now(t *testing.T) {
	clock := RealClock{}

	before := time.Now()
	now := clock.Now()
	after := time.Now()

	if now.Before(before) || now.After(after) {
		t.Errorf("Clock time %v outside [%v, %v]", now, before, after)
	}
}

func TestMockClock_Fixed(t *testing.T) {
	fixed := time.Date(2013, 9, 27, 0, 0, 0, 0, time.UTC)
	clock := &MockClock{CurrentTime: fixed}

	if got := clock.Now(); !got.Equal(fixed) {
		t.Errorf("Now() = %v, want %v", got, fixed)
	}
	if got := clock.Now(); !got.Equal(fixed) {
		t.Errorf("Now() without Step moved to %v", got)
	}
}

func TestMockClock_StepAndAdvance(t *testing.T) {
	start := time.Date(2013, 9, 27, 0, 0, 0, 0, time.UTC)
	clock := &MockClock{CurrentTime: start, Step: 25 * time.Millisecond}

	first := clock.Now()
	if got := Elapsed(clock, first); got != 25*time.Millisecond {
		t.Errorf("Elapsed() = %v, want 25ms", got)
	}

	clock.Advance(time.Second)
	if got := clock.Now(); !got.Equal(start.Add(50*time.Millisecond + time.Second)) {
		t.Errorf("Now() after Advance = %v", got)
	}
}
