// Package kernel implements the cooperative process table and scheduler
// that drive the core: a fixed pool of process control blocks, a
// priority-ordered scheduler (ties broken by table order), and the boot-time dependency
// starter that brings registered processes up in the right order.
package kernel

import (
	"sync"

	"github.com/mohae/deepcopy"
	"github.com/sirupsen/logrus"
)

// State is a process's lifecycle stage.
type State int

const (
	Ready State = iota
	Running
	Waiting
	Blocked
	Terminated
)

func (s State) String() string {
	switch s {
	case Ready:
		return "ready"
	case Running:
		return "running"
	case Waiting:
		return "waiting"
	case Blocked:
		return "blocked"
	case Terminated:
		return "terminated"
	default:
		return "unknown"
	}
}

// Priority orders processes within the scheduler's ready search.
type Priority int

const (
	Low Priority = iota
	Normal
	High
)

// Pid identifies a process. 0 is reserved for "no process".
type Pid uint32

// EntryFunc is a process's synchronous body, invoked by the scheduler on
// its turn. It returns to yield; it is called again on the process's
// next turn unless the process was terminated in the meantime.
type EntryFunc func(args interface{})

// PCB is one process control block. Everything but Runtime is set once
// at Create and never mutated except through the table's own methods.
type PCB struct {
	Pid       Pid
	State     State
	Priority  Priority
	Name      string
	Entry     EntryFunc
	Args      interface{}
	Runtime   uint32
	Active    bool
	Cwd       string
}

const maxProcesses = 16

// Table is the fixed-size process pool. Slots are reused by linear scan
// for the first inactive entry; Pid increases monotonically across
// allocations regardless of slot reuse.
type Table struct {
	mu      sync.Mutex
	slots   [maxProcesses]PCB
	nextPid Pid
	count   int
	log     *logrus.Entry
}

// NewTable constructs an empty process table.
func NewTable(log *logrus.Entry) *Table {
	if log == nil {
		log = logrus.NewEntry(logrus.StandardLogger())
	}
	t := &Table{nextPid: 1, log: log}
	return t
}

// Create allocates a PCB in the first free slot. Returns Pid 0 if the
// table is full.
func (t *Table) Create(name string, entry EntryFunc, args interface{}, priority Priority) Pid {
	t.mu.Lock()
	defer t.mu.Unlock()
	if t.count >= maxProcesses {
		t.log.WithField("name", name).Warn("process table full")
		return 0
	}
	for i := range t.slots {
		if !t.slots[i].Active {
			pid := t.nextPid
			t.nextPid++
			t.slots[i] = PCB{
				Pid:      pid,
				State:    Ready,
				Priority: priority,
				Name:     name,
				Entry:    entry,
				Args:     args,
				Active:   true,
			}
			t.count++
			t.log.WithFields(logrus.Fields{"pid": pid, "name": name, "priority": priority}).Debug("process created")
			return pid
		}
	}
	return 0
}

// Terminate frees pid's slot.
func (t *Table) Terminate(pid Pid) {
	t.mu.Lock()
	defer t.mu.Unlock()
	for i := range t.slots {
		if t.slots[i].Active && t.slots[i].Pid == pid {
			name := t.slots[i].Name
			t.slots[i] = PCB{}
			t.count--
			t.log.WithFields(logrus.Fields{"pid": pid, "name": name}).Debug("process terminated")
			return
		}
	}
}

// SetState updates pid's state, if it is active.
func (t *Table) SetState(pid Pid, s State) {
	t.mu.Lock()
	defer t.mu.Unlock()
	for i := range t.slots {
		if t.slots[i].Active && t.slots[i].Pid == pid {
			t.slots[i].State = s
			return
		}
	}
}

// GetState returns pid's state, or Terminated if pid is unknown.
func (t *Table) GetState(pid Pid) State {
	t.mu.Lock()
	defer t.mu.Unlock()
	for i := range t.slots {
		if t.slots[i].Active && t.slots[i].Pid == pid {
			return t.slots[i].State
		}
	}
	return Terminated
}

// Get returns a copy of pid's PCB and whether it was found.
func (t *Table) Get(pid Pid) (PCB, bool) {
	t.mu.Lock()
	defer t.mu.Unlock()
	for i := range t.slots {
		if t.slots[i].Active && t.slots[i].Pid == pid {
			return t.slots[i], true
		}
	}
	return PCB{}, false
}

// Count returns the number of active processes.
func (t *Table) Count() int {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.count
}

// Snapshot returns a deep copy of every active PCB, in slot order, for
// /proc/tasks: a reader must never observe a PCB being concurrently
// mutated by the scheduler.
func (t *Table) Snapshot() []PCB {
	t.mu.Lock()
	defer t.mu.Unlock()
	out := make([]PCB, 0, t.count)
	for i := range t.slots {
		if t.slots[i].Active {
			cp := deepcopy.Copy(t.slots[i]).(PCB)
			out = append(out, cp)
		}
	}
	return out
}

// forEachActive calls fn for every active slot in table order, stopping
// early if fn returns false. fn must not call back into Table (the lock
// is held).
func (t *Table) forEachActive(fn func(i int) bool) {
	for i := range t.slots {
		if t.slots[i].Active {
			if !fn(i) {
				return
			}
		}
	}
}
