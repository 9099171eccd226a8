package shell_test

import (
	"testing"

	"github.com/tilixi/tilixi/internal/events"
	"github.com/tilixi/tilixi/internal/shell"
	"github.com/tilixi/tilixi/internal/shell/builtins"
	"github.com/tilixi/tilixi/internal/termui"
)

// keyForByte maps a plain lowercase letter or digit to its KeyCode,
// covering exactly the characters Scenario 1's key sequence needs.
func keyForByte(b byte) events.KeyCode {
	switch b {
	case 'e':
		return events.KeyE
	case 'c':
		return events.KeyC
	case 'h':
		return events.KeyH
	case 'o':
		return events.KeyO
	case 'l':
		return events.KeyL
	case ' ':
		return events.KeySpace
	}
	panic("keyForByte: unsupported byte")
}

// TestShellDispatchEchoRendersBuffer drives spec.md §8's Scenario 1 key
// by key through HandleKey: "echo hello" followed by Enter must render
// "$ echo hello" / "hello" / "$ " across three consecutive rows.
func TestShellDispatchEchoRendersBuffer(t *testing.T) {
	wm := termui.NewWindowManager(800, 600)
	idx, ok := wm.New()
	if !ok {
		t.Fatal("failed to open a terminal")
	}
	term := wm.At(idx)
	term.WriteString("$ ")

	registry := shell.NewRegistry()
	builtins.RegisterAll(registry)
	ctx := &shell.Context{Term: term, WM: wm, Extra: map[string]interface{}{"registry": registry}}

	for _, b := range []byte("echo hello") {
		shell.HandleKey(registry, ctx, events.KeyEvent{Key: keyForByte(b)})
	}
	shell.HandleKey(registry, ctx, events.KeyEvent{Key: events.KeyEnter})

	rows := []string{
		string(term.Buffer[0][:]),
		string(term.Buffer[1][:]),
		string(term.Buffer[2][:]),
	}
	wants := []string{"$ echo hello", "hello", "$ "}
	for i, want := range wants {
		if len(rows[i]) < len(want) || rows[i][:len(want)] != want {
			t.Fatalf("row %d = %q, want prefix %q", i, rows[i], want)
		}
	}
}
