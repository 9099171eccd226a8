package shell

import (
	"strings"
	"testing"

	"github.com/tilixi/tilixi/internal/events"
	"github.com/tilixi/tilixi/internal/termui"
)

func newInputHarness(t *testing.T) (*Registry, *Context, *termui.Terminal) {
	t.Helper()
	wm := termui.NewWindowManager(800, 600)
	idx, ok := wm.New()
	if !ok {
		t.Fatal("failed to open a terminal")
	}
	term := wm.At(idx)

	registry := NewRegistry()
	ctx := &Context{Term: term, WM: wm, Extra: map[string]interface{}{"registry": registry}}
	return registry, ctx, term
}

func TestHandleKeyTypesCharacters(t *testing.T) {
	registry, ctx, term := newInputHarness(t)
	term.WriteString("$ ")

	HandleKey(registry, ctx, events.KeyEvent{Key: events.KeyL})
	HandleKey(registry, ctx, events.KeyEvent{Key: events.KeyS})

	row := term.Buffer[term.CursorRow]
	got := string(row[:])
	if want := "$ ls"; !strings.HasPrefix(got, want) {
		t.Fatalf("prompt row = %q, want prefix %q", got, want)
	}
	if term.InputPos != 2 {
		t.Fatalf("InputPos = %d, want 2", term.InputPos)
	}
}

func TestHandleKeyBackspaceRemovesLastChar(t *testing.T) {
	registry, ctx, term := newInputHarness(t)
	term.WriteString("$ ")

	HandleKey(registry, ctx, events.KeyEvent{Key: events.KeyL})
	HandleKey(registry, ctx, events.KeyEvent{Key: events.KeyS})
	HandleKey(registry, ctx, events.KeyEvent{Key: events.KeyBackspace})

	if term.InputPos != 1 {
		t.Fatalf("InputPos after backspace = %d, want 1", term.InputPos)
	}
	if term.InputLine[0] != 'l' {
		t.Fatalf("InputLine[0] = %q, want 'l'", term.InputLine[0])
	}
}

func TestHandleKeyBackspaceAtStartIsNoop(t *testing.T) {
	registry, ctx, term := newInputHarness(t)
	term.WriteString("$ ")

	HandleKey(registry, ctx, events.KeyEvent{Key: events.KeyBackspace})
	if term.InputPos != 0 {
		t.Fatalf("InputPos = %d, want 0", term.InputPos)
	}
}

func TestHandleKeyEnterPushesHistoryAndResetsLine(t *testing.T) {
	registry, ctx, term := newInputHarness(t)
	term.WriteString("$ ")

	HandleKey(registry, ctx, events.KeyEvent{Key: events.KeyE})
	HandleKey(registry, ctx, events.KeyEvent{Key: events.KeyEnter})

	if term.InputPos != 0 || term.InputLen != 0 {
		t.Fatalf("input line not reset after Enter: pos=%d len=%d", term.InputPos, term.InputLen)
	}
	if term.HistoryLen != 1 {
		t.Fatalf("HistoryLen = %d, want 1", term.HistoryLen)
	}
	if term.History[0] != "e" {
		t.Fatalf("History[0] = %q, want %q", term.History[0], "e")
	}
}

func TestHandleKeyEnterOnEmptyLineSkipsHistory(t *testing.T) {
	registry, ctx, term := newInputHarness(t)
	term.WriteString("$ ")

	HandleKey(registry, ctx, events.KeyEvent{Key: events.KeyEnter})
	if term.HistoryLen != 0 {
		t.Fatalf("HistoryLen = %d, want 0 for an empty line", term.HistoryLen)
	}
}

func TestHandleKeyHistoryUpRecallsPreviousLine(t *testing.T) {
	registry, ctx, term := newInputHarness(t)
	term.WriteString("$ ")

	HandleKey(registry, ctx, events.KeyEvent{Key: events.KeyL})
	HandleKey(registry, ctx, events.KeyEvent{Key: events.KeyS})
	HandleKey(registry, ctx, events.KeyEvent{Key: events.KeyEnter})

	HandleKey(registry, ctx, events.KeyEvent{Key: events.KeyUp})

	got := string(term.InputLine[:term.InputPos])
	if got != "ls" {
		t.Fatalf("recalled line = %q, want %q", got, "ls")
	}
}

func TestHandleKeyIgnoresInputWhenImageViewActive(t *testing.T) {
	registry, ctx, term := newInputHarness(t)
	term.ImageViewActive = true
	term.WriteString("$ ")
	before := term.InputPos

	HandleKey(registry, ctx, events.KeyEvent{Key: events.KeyL})

	if term.InputPos != before {
		t.Fatalf("InputPos changed while ImageViewActive: got %d, want %d", term.InputPos, before)
	}
}

type stubMode struct {
	handled int
}

func (m *stubMode) HandleKey(evt events.KeyEvent) bool {
	m.handled++
	return false
}

func TestHandleKeyDefersToInstalledMode(t *testing.T) {
	registry, ctx, term := newInputHarness(t)
	term.WriteString("$ ")
	mode := &stubMode{}
	term.Mode = mode

	HandleKey(registry, ctx, events.KeyEvent{Key: events.KeyL})

	if mode.handled != 1 {
		t.Fatalf("mode.handled = %d, want 1", mode.handled)
	}
	if term.InputPos != 0 {
		t.Fatalf("plain shell input ran despite an installed Mode: InputPos = %d", term.InputPos)
	}
}
