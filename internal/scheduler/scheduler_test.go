package scheduler

import (
	"testing"
	"time"
)

func TestUntilNextRunLaterToday(t *testing.T) {
	s := New(nil, 6)
	now := time.Date(2026, 3, 1, 4, 0, 0, 0, time.Local)

	wait := s.untilNextRun(now)
	if wait != 2*time.Hour {
		t.Fatalf("expected 2h wait, got %s", wait)
	}
}

func TestUntilNextRunRollsToTomorrow(t *testing.T) {
	s := New(nil, 6)
	now := time.Date(2026, 3, 1, 7, 30, 0, 0, time.Local)

	wait := s.untilNextRun(now)
	if wait != 22*time.Hour+30*time.Minute {
		t.Fatalf("expected 22h30m wait, got %s", wait)
	}
}

func TestUntilNextRunExactBoundaryRolls(t *testing.T) {
	s := New(nil, 0)
	now := time.Date(2026, 3, 1, 0, 0, 0, 0, time.Local)

	wait := s.untilNextRun(now)
	if wait != 24*time.Hour {
		t.Fatalf("expected 24h wait at exact boundary, got %s", wait)
	}
}

func TestNewClampsInvalidHour(t *testing.T) {
	s := New(nil, 99)
	if s.hour != 0 {
		t.Fatalf("expected hour clamped to 0, got %d", s.hour)
	}
}
