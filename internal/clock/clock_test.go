package clock

import (
	"testing"
	"time"
)

func TestManual(t *testing.T) {
	start := time.Date(2026, 1, 1, 9, 0, 0, 0, time.UTC)
	c := NewManual(start)

	if !c.Now().Equal(start) {
		t.Fatalf("Now() = %v, want %v", c.Now(), start)
	}

	c.Advance(90 * time.Second)
	if got := c.Now().Sub(start); got != 90*time.Second {
		t.Errorf("after Advance, elapsed = %v, want 90s", got)
	}

	c.AddDays(2)
	if got := c.Now().Day(); got != 3 {
		t.Errorf("after AddDays(2), day = %d, want 3", got)
	}

	c.Set(start.Add(-time.Minute))
	if !c.Now().Before(start) {
		t.Errorf("Set() backwards did not move the clock back")
	}
}

func TestReal(t *testing.T) {
	before := time.Now()
	got := New().Now()
	if got.Before(before) {
		t.Errorf("Real.Now() = %v, earlier than %v", got, before)
	}
}
