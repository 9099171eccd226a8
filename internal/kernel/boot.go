package kernel

import (
	"fmt"

	"github.com/sirupsen/logrus"
)

// BootEntry registers one process for dependency-ordered startup: it is
// not created until every name in DependsOn is Running or Ready.
type BootEntry struct {
	Name       string
	Entry      EntryFunc
	Args       interface{}
	Priority   Priority
	DependsOn  []string
}

// started records a name's assigned pid once its process has been
// created, so later entries can check dependency satisfaction by name.
type started struct {
	pid Pid
}

// StartAll creates every registered entry once its dependencies are
// satisfied, iterating at most 2N rounds (N = len(entries)) before
// giving up on any that remain. It returns the names that could not be
// started, which is empty on full success.
func StartAll(table *Table, log *logrus.Entry, entries []BootEntry) []string {
	if log == nil {
		log = logrus.NewEntry(logrus.StandardLogger())
	}
	n := len(entries)
	startedByName := make(map[string]started, n)
	remaining := make([]BootEntry, len(entries))
	copy(remaining, entries)

	maxRounds := 2 * n
	for round := 0; round < maxRounds && len(remaining) > 0; round++ {
		var next []BootEntry
		progressed := false
		for _, e := range remaining {
			if dependenciesSatisfied(table, startedByName, e.DependsOn) {
				pid := table.Create(e.Name, e.Entry, e.Args, e.Priority)
				if pid == 0 {
					log.WithField("name", e.Name).Error("boot: process table full")
					next = append(next, e)
					continue
				}
				startedByName[e.Name] = started{pid: pid}
				progressed = true
				log.WithFields(logrus.Fields{"name": e.Name, "pid": pid, "round": round}).Debug("boot: started")
			} else {
				next = append(next, e)
			}
		}
		remaining = next
		if !progressed && len(remaining) > 0 {
			names := make([]string, 0, len(remaining))
			for _, e := range remaining {
				names = append(names, e.Name)
			}
			log.WithField("unstarted", names).Error(fmt.Sprintf("boot: round %d made no progress", round))
		}
	}

	var failed []string
	for _, e := range remaining {
		failed = append(failed, e.Name)
	}
	return failed
}

func dependenciesSatisfied(table *Table, startedByName map[string]started, deps []string) bool {
	for _, dep := range deps {
		st, ok := startedByName[dep]
		if !ok {
			return false
		}
		pcb, ok := table.Get(st.pid)
		if !ok {
			return false
		}
		if pcb.State != Running && pcb.State != Ready {
			return false
		}
	}
	return true
}
