package script

import (
	"strings"
	"testing"

	"github.com/tilixi/tilixi/internal/shell"
	"github.com/tilixi/tilixi/internal/termui"
)

// newScriptHarness builds a registry with a single "echo" built-in that
// records its argv (joined by spaces) to the returned log, instead of
// pulling in internal/shell/builtins — that package imports this one
// for the `run` built-in, so importing it back here would cycle.
func newScriptHarness(t *testing.T) (*shell.Registry, *shell.Context, *[]string) {
	t.Helper()
	var log []string
	registry := shell.NewRegistry()
	registry.Register("echo", func(ctx *shell.Context, argv []string) shell.Code {
		log = append(log, strings.Join(argv[1:], " "))
		return shell.OK
	}, "echo ARGS...")

	wm := termui.NewWindowManager(800, 600)
	idx, ok := wm.New()
	if !ok {
		t.Fatal("failed to open a terminal")
	}
	ctx := &shell.Context{Term: wm.At(idx), WM: wm}
	return registry, ctx, &log
}

// TestWhileLoopBreakExitsCurrentIteration is spec.md §8's Scenario 4:
// a while loop whose body breaks must stop immediately, never running
// the line after break, and the loop condition command runs exactly
// once since it only has one chance to be evaluated before the break
// short-circuits the loop.
func TestWhileLoopBreakExitsCurrentIteration(t *testing.T) {
	registry, ctx, log := newScriptHarness(t)
	ip := New(registry, ctx)

	script := []string{
		"echo start",
		"while echo loop",
		"do",
		"  echo body",
		"  break",
		"  echo after",
		"done",
		"echo end",
	}
	ip.Run(script)

	want := []string{"start", "loop", "body", "end"}
	got := *log
	if len(got) != len(want) {
		t.Fatalf("captured output = %v, want %v", got, want)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("captured output = %v, want %v", got, want)
		}
	}

	loopCount := 0
	afterCount := 0
	for _, line := range got {
		if line == "loop" {
			loopCount++
		}
		if line == "after" {
			afterCount++
		}
	}
	if loopCount != 1 {
		t.Fatalf("loop condition ran %d times, want exactly 1", loopCount)
	}
	if afterCount != 0 {
		t.Fatal("line after break executed, want it skipped")
	}
}

// TestWhileLoopRunsUntilConditionFails exercises the "script loop
// bounds" invariant: a while loop with no break exits exactly when its
// condition command starts failing.
func TestWhileLoopRunsUntilConditionFails(t *testing.T) {
	registry, ctx, _ := newScriptHarness(t)
	registry.Register("false", func(ctx *shell.Context, argv []string) shell.Code {
		return shell.ERR
	}, "always fails")
	var counter int
	registry.Register("lt3", func(ctx *shell.Context, argv []string) shell.Code {
		counter++
		if counter <= 3 {
			return shell.OK
		}
		return shell.ERR
	}, "true for the first 3 calls")

	ip := New(registry, ctx)
	script := []string{
		"while lt3",
		"do",
		"  echo tick",
		"done",
	}
	ip.Run(script)
	if counter != 4 {
		t.Fatalf("condition evaluated %d times, want 4 (3 true + 1 false)", counter)
	}
}

// TestAssignmentAndVarExpansion covers $var expansion feeding a
// built-in's argv.
func TestAssignmentAndVarExpansion(t *testing.T) {
	registry, ctx, log := newScriptHarness(t)
	ip := New(registry, ctx)

	script := []string{
		"name=alice",
		"echo hello $name",
	}
	ip.Run(script)
	got := *log
	if len(got) != 1 || got[0] != "hello alice" {
		t.Fatalf("captured output = %v, want [\"hello alice\"]", got)
	}
}
