package timer

import (
	"testing"
	"time"
)

func TestNextDeadlineOrdering(t *testing.T) {
	s := NewScheduler()
	base := time.Now()
	s.ScheduleAt(CategoryMultipurpose, base.Add(50*time.Millisecond), func(time.Time) {})
	s.ScheduleAt(CategorySuspend, base.Add(10*time.Millisecond), func(time.Time) {})

	deadline, ok := s.NextDeadline()
	if !ok {
		t.Fatal("expected a deadline")
	}
	if !deadline.Equal(base.Add(10 * time.Millisecond)) {
		t.Errorf("expected earliest timer first, got %v", deadline)
	}
}

func TestExpiredFiresInOrder(t *testing.T) {
	s := NewScheduler()
	base := time.Now()
	var fired []string
	s.ScheduleAt(CategoryMultipurpose, base.Add(20*time.Millisecond), func(time.Time) { fired = append(fired, "b") })
	s.ScheduleAt(CategorySuspend, base.Add(10*time.Millisecond), func(time.Time) { fired = append(fired, "a") })
	s.ScheduleAt(CategoryEject, base.Add(30*time.Millisecond), func(time.Time) { fired = append(fired, "c") })

	due := s.Expired(base.Add(25 * time.Millisecond))
	for _, cb := range due {
		cb()
	}

	if len(fired) != 2 || fired[0] != "a" || fired[1] != "b" {
		t.Errorf("expected [a b], got %v", fired)
	}
	if s.Len() != 1 {
		t.Errorf("expected one timer remaining, got %d", s.Len())
	}
}

func TestCancelRemovesTimer(t *testing.T) {
	s := NewScheduler()
	id := s.Schedule(CategoryMultipurpose, time.Millisecond, func(time.Time) {})
	s.Cancel(id)
	if s.Len() != 0 {
		t.Errorf("expected no timers after cancel, got %d", s.Len())
	}
	due := s.Expired(time.Now().Add(time.Second))
	if len(due) != 0 {
		t.Errorf("cancelled timer should not fire, got %d callbacks", len(due))
	}
}

func TestCancelCategoryOnlyAffectsThatCategory(t *testing.T) {
	s := NewScheduler()
	s.Schedule(CategoryMultipurpose, time.Millisecond, func(time.Time) {})
	s.Schedule(CategorySuspend, time.Millisecond, func(time.Time) {})
	s.Schedule(CategorySuspend, time.Millisecond, func(time.Time) {})

	s.CancelCategory(CategorySuspend)

	if s.Len() != 1 {
		t.Errorf("expected 1 timer remaining, got %d", s.Len())
	}
}

func TestCancelAllDisarmsEverything(t *testing.T) {
	s := NewScheduler()
	s.Schedule(CategoryMultipurpose, time.Millisecond, func(time.Time) {})
	s.Schedule(CategoryEject, time.Millisecond, func(time.Time) {})
	s.CancelAll()
	if s.Len() != 0 {
		t.Errorf("expected CancelAll to clear every timer, got %d", s.Len())
	}
	if _, ok := s.NextDeadline(); ok {
		t.Error("expected no deadline after CancelAll")
	}
}
