package bootseq

import (
	"fmt"
	"strings"
	"time"

	"github.com/tilixi/tilixi/internal/kernel"
	"github.com/tilixi/tilixi/internal/vfsfs"
	"github.com/tilixi/tilixi/internal/vfsfs/memfs"
)

const osVersionLine = "TILIXI version 0.1 (host build)\n"

func staticContent(s string) func() ([]byte, error) {
	return func() ([]byte, error) { return []byte(s), nil }
}

// procRoot builds the /proc entry memfs mounts over the card's
// placeholder /proc directory: live uptime, a static version/meminfo
// stub (no memory accounting on this host build), a scheduler snapshot,
// and a tasks/ directory mirroring the process table, matching the
// original layout's /proc/{uptime,meminfo,version,sched} plus
// /proc/tasks.
func procRoot(bootTime time.Time, table *kernel.Table) memfs.Entry {
	return memfs.Entry{
		Name: "proc",
		Type: vfsfs.TypeDirectory,
		Children: func() []memfs.Entry {
			return []memfs.Entry{
				{Name: "uptime", Type: vfsfs.TypeProc, Readonly: true, Content: memfs.UptimeContent(bootTime)},
				{Name: "meminfo", Type: vfsfs.TypeProc, Readonly: true, Content: staticContent("MemTotal: N/A\n")},
				{Name: "version", Type: vfsfs.TypeProc, Readonly: true, Content: staticContent(osVersionLine)},
				{Name: "sched", Type: vfsfs.TypeProc, Readonly: true, Content: schedContent(table)},
				{Name: "tasks", Type: vfsfs.TypeDirectory, Children: func() []memfs.Entry { return taskEntries(table) }},
			}
		},
	}
}

func schedContent(table *kernel.Table) func() ([]byte, error) {
	return func() ([]byte, error) {
		var b strings.Builder
		for _, pcb := range table.Snapshot() {
			fmt.Fprintf(&b, "%d %s %s %d\n", pcb.Pid, pcb.Name, pcb.State, pcb.Priority)
		}
		return []byte(b.String()), nil
	}
}

func taskEntries(table *kernel.Table) []memfs.Entry {
	snapshot := table.Snapshot()
	out := make([]memfs.Entry, 0, len(snapshot))
	for _, pcb := range snapshot {
		pcb := pcb
		out = append(out, memfs.Entry{
			Name:     fmt.Sprintf("%d", pcb.Pid),
			Type:     vfsfs.TypeProc,
			Readonly: true,
			Content: func() ([]byte, error) {
				return []byte(fmt.Sprintf("pid: %d\nname: %s\nstate: %s\npriority: %d\n",
					pcb.Pid, pcb.Name, pcb.State, pcb.Priority)), nil
			},
		})
	}
	return out
}
