package tasks

// TaskSet holds the singleton background operations currently outstanding
// and enforces dedup-by-kind: a second submission of a kind that already
// has an instance in flight is dropped, not queued.
//
// TaskSet is owned and mutated exclusively by the coordinator's (single)
// calling goroutine; background workers only ever touch the result cells
// inside the tasks, so the set itself needs no synchronization.
type TaskSet struct {
	outstanding []singletonTask
	log         *eventLog
}

// NewTaskSet returns an empty set.
func NewTaskSet() *TaskSet {
	return &TaskSet{log: newEventLog("taskset")}
}

// Submit records t as outstanding. If a task of the same kind is already
// outstanding the submission is dropped with a warning and Submit returns
// false; the caller must not spawn the work in that case.
func (s *TaskSet) Submit(t singletonTask) bool {
	if s.Has(t.Kind()) {
		s.log.event(logWarn, "duplicate_task_dropped", map[string]any{
			"kind": string(t.Kind()),
		})
		return false
	}
	s.outstanding = append(s.outstanding, t)
	return true
}

// Has reports whether a task of kind k is outstanding.
func (s *TaskSet) Has(k Kind) bool {
	for _, t := range s.outstanding {
		if t.Kind() == k {
			return true
		}
	}
	return false
}

// Len returns the number of outstanding singleton tasks.
func (s *TaskSet) Len() int {
	return len(s.outstanding)
}

// poll gives every outstanding task one non-blocking completion check,
// merging completed fragments into res. Tasks whose cells are still empty
// or contended stay outstanding for the next frame.
func (s *TaskSet) poll(res *TaskResult) {
	keep := s.outstanding[:0]
	for _, t := range s.outstanding {
		if t.collect(res) {
			keep = append(keep, t)
		}
	}
	// Zero the tail so completed tasks don't linger behind the slice.
	for i := len(keep); i < len(s.outstanding); i++ {
		s.outstanding[i] = nil
	}
	s.outstanding = keep
}
