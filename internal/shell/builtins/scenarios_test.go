package builtins

import (
	"testing"

	"github.com/sirupsen/logrus"

	"github.com/tilixi/tilixi/internal/bus"
	"github.com/tilixi/tilixi/internal/shell"
	"github.com/tilixi/tilixi/internal/termui"
	"github.com/tilixi/tilixi/internal/vfsfs"
	"github.com/tilixi/tilixi/internal/vfsfs/sdfs"
)

// fakePins stands in for the real SPI pin-select implementation: on a
// host-directory-backed card there is no bus to switch and the card is
// always present. internal/bootseq defines an identical HostPins, but
// this package cannot import internal/bootseq (it imports this package
// to register built-ins, and Go forbids the cycle).
type fakePins struct{}

func (fakePins) Select(p bus.Peripheral) error { return nil }
func (fakePins) CardPresent() bool             { return true }

type harness struct {
	registry *shell.Registry
	ctx      *shell.Context
	vfs      *vfsfs.Vfs
	term     *termui.Terminal
}

func newBuiltinsHarness(t *testing.T) *harness {
	t.Helper()
	dir := t.TempDir()
	log := logrus.NewEntry(logrus.New())
	arbiter := bus.New(fakePins{}, log)
	sd := sdfs.New(arbiter, dir)
	root, ops := sd.Root()
	v := vfsfs.New(log)
	if err := v.Mount("/", root, ops, nil); err != nil {
		t.Fatalf("mount: %v", err)
	}

	wm := termui.NewWindowManager(800, 600)
	idx, ok := wm.New()
	if !ok {
		t.Fatal("failed to open a terminal")
	}
	term := wm.At(idx)

	cwd, err := v.Resolve("/")
	if err != nil {
		t.Fatalf("resolve /: %v", err)
	}
	term.Cwd = cwd

	registry := shell.NewRegistry()
	RegisterAll(registry)

	ctx := &shell.Context{Term: term, Vfs: v, WM: wm, Extra: map[string]interface{}{"registry": registry}}
	return &harness{registry: registry, ctx: ctx, vfs: v, term: term}
}

func (h *harness) run(t *testing.T, line string) shell.Code {
	t.Helper()
	return shell.Execute(h.registry, h.ctx, line)
}

func (h *harness) readFile(t *testing.T, path string) string {
	t.Helper()
	n, err := h.vfs.ResolveAt(h.ctx.Term.Cwd, path)
	if err != nil {
		t.Fatalf("resolve %s: %v", path, err)
	}
	defer h.vfs.Release(n)
	f, err := h.vfs.OpenNode(n, vfsfs.ORead)
	if err != nil {
		t.Fatalf("open %s: %v", path, err)
	}
	defer h.vfs.Close(f)
	buf := make([]byte, 4096)
	total := 0
	for {
		n, err := h.vfs.Read(f, buf[total:])
		if err != nil {
			t.Fatalf("read %s: %v", path, err)
		}
		if n == 0 {
			break
		}
		total += n
	}
	return string(buf[:total])
}

// TestPipelineCatGrepMatchesScenario2 covers spec.md §8's Scenario 2:
// cat /etc/passwd | grep alice prints the matching line alone, and the
// pipeline leaves PipeInput empty once it returns.
func TestPipelineCatGrepMatchesScenario2(t *testing.T) {
	h := newBuiltinsHarness(t)
	if code := h.run(t, "mkdir /etc"); code != shell.OK {
		t.Fatalf("mkdir /etc: %v", code)
	}
	if code := h.run(t, "touch /etc/passwd"); code != shell.OK {
		t.Fatalf("touch /etc/passwd: %v", code)
	}
	if code := h.run(t, "echo -n alice:abcdef12 | cat > /etc/passwd"); code != shell.OK {
		t.Fatalf("seed /etc/passwd: %v", code)
	}
	if got := h.readFile(t, "/etc/passwd"); got != "alice:abcdef12" {
		t.Fatalf("seeded /etc/passwd = %q, want %q", got, "alice:abcdef12")
	}

	h.term.Clear()
	code := h.run(t, "cat /etc/passwd | grep alice")
	if code != shell.OK {
		t.Fatalf("cat|grep: %v", code)
	}
	row := string(h.term.Buffer[0][:])
	wantPrefix := "alice:abcdef12"
	if len(row) < len(wantPrefix) || row[:len(wantPrefix)] != wantPrefix {
		t.Fatalf("terminal row = %q, want prefix %q", row, wantPrefix)
	}
	if h.ctx.Term.PipeInput != nil {
		t.Fatalf("PipeInput = %v, want nil after the pipeline returns", h.ctx.Term.PipeInput)
	}
}

// TestPipelineRedirectionMatchesScenario3 covers Scenario 3: echo hi |
// cat > /tmp/x writes exactly "hi\n" to /tmp/x and prints nothing to
// the terminal.
func TestPipelineRedirectionMatchesScenario3(t *testing.T) {
	h := newBuiltinsHarness(t)
	if code := h.run(t, "mkdir /tmp"); code != shell.OK {
		t.Fatalf("mkdir /tmp: %v", code)
	}

	h.term.Clear()
	code := h.run(t, "echo hi | cat > /tmp/x")
	if code != shell.OK {
		t.Fatalf("echo|cat>: %v", code)
	}

	got := h.readFile(t, "/tmp/x")
	if got != "hi\n" {
		t.Fatalf("/tmp/x content = %q, want %q", got, "hi\n")
	}
	row := string(h.term.Buffer[0][:])
	for _, c := range row {
		if c != ' ' {
			t.Fatalf("terminal row = %q, want blank (redirection swallowed the output)", row)
		}
	}
}

// TestLsDotFilteringMatchesScenario5 covers Scenario 5: ls prints
// space-separated entries with a trailing newline when uncaptured, and
// one entry per line when output is being captured for a pipeline. "."
// and ".." never appear either way.
func TestLsDotFilteringMatchesScenario5(t *testing.T) {
	h := newBuiltinsHarness(t)
	for _, name := range []string{"a", "b", "c"} {
		if code := h.run(t, "touch /"+name); code != shell.OK {
			t.Fatalf("touch /%s: %v", name, code)
		}
	}

	h.term.Clear()
	if code := h.run(t, "ls /"); code != shell.OK {
		t.Fatalf("ls /: %v", code)
	}
	row := string(h.term.Buffer[0][:])
	want := "a b c"
	if len(row) < len(want) || row[:len(want)] != want {
		t.Fatalf("uncaptured ls row = %q, want prefix %q", row, want)
	}

	termui.CaptureStart()
	code := Ls(h.ctx, []string{"ls", "/"})
	captured := termui.CaptureStop()
	if code != shell.OK {
		t.Fatalf("captured ls: %v", code)
	}
	if got := string(captured); got != "a\nb\nc\n" {
		t.Fatalf("captured ls output = %q, want %q", got, "a\nb\nc\n")
	}
}

// TestEchoArgvIdentityRoundTrip covers the "echo argv identity"
// round-trip law: echo -n A B C produces exactly "A B C" with no
// trailing newline.
func TestEchoArgvIdentityRoundTrip(t *testing.T) {
	h := newBuiltinsHarness(t)
	h.term.Clear()
	if code := h.run(t, "echo -n A B C"); code != shell.OK {
		t.Fatalf("echo -n A B C: %v", code)
	}
	row := string(h.term.Buffer[0][:])
	want := "A B C"
	if len(row) < len(want) || row[:len(want)] != want {
		t.Fatalf("row = %q, want prefix %q", row, want)
	}
	if len(row) > len(want) && row[len(want)] != ' ' {
		t.Fatalf("row = %q, want no trailing content past %q", row, want)
	}
	if h.term.CursorRow != 0 {
		t.Fatalf("CursorRow = %d, want 0 (no trailing newline moved the cursor)", h.term.CursorRow)
	}
}

// TestMkdirRmdirRoundTrip covers the "filesystem mkdir/rmdir"
// round-trip law: mkdir /x; rmdir /x returns the node cache for /x to
// no-hit (a subsequent resolve fails with ENOENT).
func TestMkdirRmdirRoundTrip(t *testing.T) {
	h := newBuiltinsHarness(t)
	if code := h.run(t, "mkdir /x"); code != shell.OK {
		t.Fatalf("mkdir /x: %v", code)
	}
	if code := h.run(t, "rmdir /x"); code != shell.OK {
		t.Fatalf("rmdir /x: %v", code)
	}
	if _, err := h.vfs.Resolve("/x"); err != vfsfs.NotFound {
		t.Fatalf("resolve /x after rmdir = %v, want NotFound", err)
	}
}
