// scheduler.go - ordered multiset of (timestamp, task), §4.J and §3.
//
// Grounded on the original hydra-emu/n64 core's Scheduler
// (core/n64_scheduler.hxx), a flat_multimap<uint64_t, TaskType> keyed by
// timestamp. Go has no off-the-shelf ordered multimap in the teacher's
// dependency set, so this is a small sorted slice, preallocated with one
// slot per task kind; linear insert/remove keeps the
// "next_timestamp == min(keys)" invariant trivial to maintain by
// construction. The number of pending events is not capped: the slice
// grows past the preallocated size if more events are scheduled.

package core

import "sort"

// TaskType is the scheduler's task-kind enum. Panic is the sentinel event
// at the infinite horizon (§3/§4.J); Compare mirrors the original source's
// redundant-but-present CP0 timer task; PIDMACompletion/SIDMACompletion/
// PIFCompletion make the "DMA completes at the next instruction boundary"
// ordering guarantee of §5 an explicit, testable scheduled event.
type TaskType int

const (
	TaskCompare TaskType = iota
	TaskPIDMACompletion
	TaskSIDMACompletion
	TaskPIFCompletion
	TaskPanic

	taskTypeCount
)

const panicHorizon = ^uint64(0)

type schedEvent struct {
	timestamp uint64
	task      TaskType
}

// Scheduler is an ordered multiset of events, sorted ascending by
// timestamp; events with equal timestamps stay in insertion order.
type Scheduler struct {
	events  []schedEvent
	current uint64
}

func NewScheduler() *Scheduler {
	s := &Scheduler{events: make([]schedEvent, 0, taskTypeCount)}
	s.Schedule(panicHorizon, TaskPanic)
	return s
}

func (s *Scheduler) Reset() {
	s.events = s.events[:0]
	s.current = 0
	s.Schedule(panicHorizon, TaskPanic)
}

func (s *Scheduler) Now() uint64 { return s.current }

// Schedule inserts (timestamp, task) keeping s.events sorted ascending.
func (s *Scheduler) Schedule(timestamp uint64, task TaskType) {
	i := sort.Search(len(s.events), func(i int) bool {
		return s.events[i].timestamp > timestamp
	})
	s.events = append(s.events, schedEvent{})
	copy(s.events[i+1:], s.events[i:])
	s.events[i] = schedEvent{timestamp: timestamp, task: task}
}

// Unschedule removes the first matching event by task kind.
func (s *Scheduler) Unschedule(task TaskType) {
	for i, e := range s.events {
		if e.task == task {
			s.events = append(s.events[:i], s.events[i+1:]...)
			return
		}
	}
}

// NextTimestamp returns the smallest scheduled timestamp; the Panic
// sentinel guarantees the slice is never empty.
func (s *Scheduler) NextTimestamp() uint64 {
	return s.events[0].timestamp
}

// Advance moves current forward and pops/returns every task now due, in
// timestamp order.
func (s *Scheduler) Advance(delta uint64) []TaskType {
	s.current += delta
	var due []TaskType
	for len(s.events) > 0 && s.events[0].timestamp <= s.current && s.events[0].task != TaskPanic {
		due = append(due, s.events[0].task)
		s.events = s.events[1:]
	}
	return due
}
