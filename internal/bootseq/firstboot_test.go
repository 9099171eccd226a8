package bootseq

import (
	"fmt"
	"testing"

	"github.com/tilixi/tilixi/internal/events"
	"github.com/tilixi/tilixi/internal/modes"
	"github.com/tilixi/tilixi/internal/vfsfs"
)

// keyForLetter maps a lowercase letter to its KeyCode; covers exactly
// the letters Scenario 6's key sequence needs.
func keyForLetter(c byte) events.KeyCode {
	switch c {
	case 'a':
		return events.KeyA
	case 'l':
		return events.KeyL
	case 'i':
		return events.KeyI
	case 'c':
		return events.KeyC
	case 'e':
		return events.KeyE
	case 'p':
		return events.KeyP
	case 's':
		return events.KeyS
	}
	panic("keyForLetter: unsupported byte")
}

func (b *Boot) typeAndEnter(word string) {
	for i := 0; i < len(word); i++ {
		b.PushKey(keyForLetter(word[i]), 0)
	}
	b.PushKey(events.KeyEnter, 0)
	b.PumpEvents()
}

func readFile(t *testing.T, v *vfsfs.Vfs, path string) string {
	t.Helper()
	f, err := v.Open(path, vfsfs.ORead)
	if err != nil {
		t.Fatalf("open %s: %v", path, err)
	}
	defer v.Close(f)
	buf := make([]byte, 256)
	total := 0
	for {
		n, rerr := v.Read(f, buf[total:])
		if rerr != nil {
			t.Fatalf("read %s: %v", path, rerr)
		}
		if n == 0 {
			break
		}
		total += n
	}
	return string(buf[:total])
}

// TestFirstBootKeySequenceWritesPasswdAndRenamesHome drives spec.md
// §8's Scenario 6 key-by-key through PushKey/PumpEvents, on the exact
// precondition a fresh Boot.Run produces on a blank card: /etc/passwd
// empty and /home/user present.
func TestFirstBootKeySequenceWritesPasswdAndRenamesHome(t *testing.T) {
	b := newTestBoot(t)
	if err := b.Run(); err != nil {
		t.Fatalf("Run: %v", err)
	}
	term := b.WM.Active()
	if _, ok := term.Mode.(*modes.FirstBoot); !ok {
		t.Fatalf("expected FirstBoot mode on a blank card, got %T", term.Mode)
	}

	if n, err := b.Vfs.Resolve("/home/user"); err != nil {
		t.Fatalf("precondition: /home/user must exist: %v", err)
	} else {
		b.Vfs.Release(n)
	}

	b.typeAndEnter("alice")
	b.typeAndEnter("pass")
	b.typeAndEnter("pass")

	if term.Mode != nil {
		t.Fatalf("Mode = %T, want nil once setup completes", term.Mode)
	}

	got := readFile(t, b.Vfs, "/etc/passwd")
	want := fmt.Sprintf("alice:%08x\n", modes.FnvHash("pass"))
	if got != want {
		t.Fatalf("/etc/passwd = %q, want %q", got, want)
	}

	if n, err := b.Vfs.Resolve("/home/alice"); err != nil {
		t.Fatalf("/home/alice should exist after setup: %v", err)
	} else {
		b.Vfs.Release(n)
	}
	if _, err := b.Vfs.Resolve("/home/user"); err != vfsfs.NotFound {
		t.Fatalf("/home/user should be gone after rename, resolve = %v", err)
	}
}

