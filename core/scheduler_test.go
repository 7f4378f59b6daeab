package core

import "testing"

// TestSchedulerMinInvariant covers the TESTABLE PROPERTY that
// NextTimestamp always reports the smallest scheduled timestamp,
// regardless of insertion order.
func TestSchedulerMinInvariant(t *testing.T) {
	s := NewScheduler()
	s.Schedule(100, TaskCompare)
	s.Schedule(10, TaskPIDMACompletion)
	s.Schedule(50, TaskSIDMACompletion)

	if got := s.NextTimestamp(); got != 10 {
		t.Fatalf("NextTimestamp=%d, want 10", got)
	}
}

func TestSchedulerAdvanceReturnsDueTasksInOrder(t *testing.T) {
	s := NewScheduler()
	s.Schedule(5, TaskPIDMACompletion)
	s.Schedule(5, TaskSIDMACompletion)
	s.Schedule(50, TaskCompare)

	due := s.Advance(5)
	if len(due) != 2 {
		t.Fatalf("len(due)=%d, want 2", len(due))
	}
	if due[0] != TaskPIDMACompletion || due[1] != TaskSIDMACompletion {
		t.Fatalf("due=%v, want [PIDMACompletion SIDMACompletion]", due)
	}

	due = s.Advance(45)
	if len(due) != 1 || due[0] != TaskCompare {
		t.Fatalf("due=%v after advancing to 50, want [Compare]", due)
	}
}

func TestSchedulerNeverReturnsThePanicSentinel(t *testing.T) {
	s := NewScheduler()
	due := s.Advance(1 << 62)
	for _, task := range due {
		if task == TaskPanic {
			t.Fatalf("Advance returned the Panic sentinel")
		}
	}
}
