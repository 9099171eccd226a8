package kernel

import (
	"sync"
	"time"

	"github.com/sirupsen/logrus"
)

// TimeSlice is the quantum a running process is allowed before the
// scheduler forces it back to Ready.
const TimeSlice = 10 * time.Millisecond

// Clock abstracts wall-clock time so tests can drive the scheduler
// without sleeping.
type Clock interface {
	Now() time.Time
}

type realClock struct{}

func (realClock) Now() time.Time { return time.Now() }

// Scheduler is the cooperative, priority-ordered scheduler; ties between
// equal priorities go to table order.
// It runs entirely synchronously: Run calls the selected process's
// entry point in the caller's goroutine and returns once it returns or
// yields.
type Scheduler struct {
	mu         sync.Mutex
	table      *Table
	clock      Clock
	log        *logrus.Entry
	current    Pid
	sliceStart time.Time
}

// NewScheduler constructs a Scheduler over table, resting with no
// current process.
func NewScheduler(table *Table, clock Clock, log *logrus.Entry) *Scheduler {
	if clock == nil {
		clock = realClock{}
	}
	if log == nil {
		log = logrus.NewEntry(logrus.StandardLogger())
	}
	return &Scheduler{table: table, clock: clock, log: log}
}

// Current returns the pid currently marked Running, or 0.
func (s *Scheduler) Current() Pid {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.current
}

// findNextReady selects the highest-priority Ready process, breaking
// ties by table (slot) order — the same deterministic rule the original
// scheduler applies, not a rotating round-robin.
func (s *Scheduler) findNextReady() Pid {
	var best Pid
	var bestPriority Priority = -1
	s.table.mu.Lock()
	s.table.forEachActive(func(i int) bool {
		pcb := &s.table.slots[i]
		if pcb.State == Ready && pcb.Priority > bestPriority {
			bestPriority = pcb.Priority
			best = pcb.Pid
		}
		return true
	})
	s.table.mu.Unlock()
	return best
}

// Run performs one scheduling decision: if the current process is still
// within its time slice, it returns without switching; otherwise it
// picks the next ready process (by priority, then table order) and
// invokes its entry point synchronously.
func (s *Scheduler) Run() {
	s.mu.Lock()
	if s.current != 0 {
		if pcb, ok := s.table.Get(s.current); ok && pcb.State == Running {
			if s.clock.Now().Sub(s.sliceStart) < TimeSlice {
				s.mu.Unlock()
				return
			}
			s.table.SetState(s.current, Ready)
		}
	}

	next := s.findNextReady()
	if next == 0 {
		s.current = 0
		s.mu.Unlock()
		return
	}

	var entry EntryFunc
	var args interface{}
	s.table.SetState(next, Running)
	s.current = next
	s.sliceStart = s.clock.Now()
	if pcb, ok := s.table.Get(next); ok {
		entry = pcb.Entry
		args = pcb.Args
		s.log.WithFields(logrus.Fields{"pid": next, "name": pcb.Name}).Debug("scheduler: running")
	}
	s.mu.Unlock()

	if entry != nil {
		entry(args)
	}
}

// Tick is the periodic entry point; it is equivalent to Run but named
// separately for callers that drive the scheduler off a timer.
func (s *Scheduler) Tick() { s.Run() }

// Yield marks the current process Ready, clears "current", and
// immediately re-invokes the scheduler — the only way a process
// relinquishes the CPU under this cooperative model.
func (s *Scheduler) Yield() {
	s.mu.Lock()
	if s.current != 0 {
		s.table.SetState(s.current, Ready)
		s.current = 0
	}
	s.mu.Unlock()
	s.Run()
}
