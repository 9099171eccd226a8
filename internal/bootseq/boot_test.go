package bootseq

import (
	"testing"

	"github.com/sirupsen/logrus"

	"github.com/tilixi/tilixi/internal/modes"
)

func newTestBoot(t *testing.T) *Boot {
	t.Helper()
	dir := t.TempDir()
	log := logrus.NewEntry(logrus.New())
	b, err := New(Params{CardDir: dir, Log: log})
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	return b
}

func TestRunOpensFirstBootPromptOnBlankCard(t *testing.T) {
	b := newTestBoot(t)
	if err := b.Run(); err != nil {
		t.Fatalf("Run: %v", err)
	}

	term := b.WM.Active()
	if term == nil {
		t.Fatal("no active terminal after Run")
	}
	if _, ok := term.Mode.(*modes.FirstBoot); !ok {
		t.Fatalf("expected FirstBoot mode on a blank card, got %T", term.Mode)
	}
}

func TestRunStartsSystemIdleProcess(t *testing.T) {
	b := newTestBoot(t)
	if err := b.Run(); err != nil {
		t.Fatalf("Run: %v", err)
	}

	found := false
	for _, pcb := range b.Table.Snapshot() {
		if pcb.Name == "system_idle" {
			found = true
		}
	}
	if !found {
		t.Fatal("system_idle process not present in process table after Run")
	}
}

func TestPrepareSkipsTerminalSetup(t *testing.T) {
	b := newTestBoot(t)
	if err := b.Prepare(); err != nil {
		t.Fatalf("Prepare: %v", err)
	}
	if b.WM.Count() != 0 {
		t.Fatalf("Prepare should not open a terminal, got count %d", b.WM.Count())
	}
}

func TestTickAdvancesScheduler(t *testing.T) {
	b := newTestBoot(t)
	if err := b.Run(); err != nil {
		t.Fatalf("Run: %v", err)
	}
	// Tick must not panic even with only the idle process registered.
	b.Tick()
}
