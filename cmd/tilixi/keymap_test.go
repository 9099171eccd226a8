package main

import (
	"bufio"
	"strings"
	"testing"

	"github.com/tilixi/tilixi/internal/events"
)

func TestDecodeByteLettersAndDigits(t *testing.T) {
	cases := []struct {
		b    byte
		key  events.KeyCode
		mods uint8
	}{
		{'l', events.KeyL, 0},
		{'L', events.KeyL, events.ModShift},
		{'5', events.KeyFive, 0},
		{'%', events.KeyFive, events.ModShift},
		{' ', events.KeySpace, 0},
	}
	for _, c := range cases {
		key, mods := decodeByte(c.b)
		if key != c.key || mods != c.mods {
			t.Errorf("decodeByte(%q) = (%v, %v), want (%v, %v)", c.b, key, mods, c.key, c.mods)
		}
	}
}

func TestReadKeyPlainBytes(t *testing.T) {
	r := bufio.NewReader(strings.NewReader("a"))
	key, mods, quit, err := readKey(r)
	if err != nil || quit {
		t.Fatalf("readKey: key=%v mods=%v quit=%v err=%v", key, mods, quit, err)
	}
	if key != events.KeyA || mods != 0 {
		t.Fatalf("readKey('a') = (%v, %v), want (KeyA, 0)", key, mods)
	}
}

func TestReadKeyControlChars(t *testing.T) {
	r := bufio.NewReader(strings.NewReader("\r\x7f\t\x03"))

	key, _, quit, err := readKey(r)
	if err != nil || quit || key != events.KeyEnter {
		t.Fatalf("CR: key=%v quit=%v err=%v, want KeyEnter", key, quit, err)
	}
	key, _, quit, err = readKey(r)
	if err != nil || quit || key != events.KeyBackspace {
		t.Fatalf("DEL: key=%v quit=%v err=%v, want KeyBackspace", key, quit, err)
	}
	key, _, quit, err = readKey(r)
	if err != nil || quit || key != events.KeyTab {
		t.Fatalf("Tab: key=%v quit=%v err=%v, want KeyTab", key, quit, err)
	}
	_, _, quit, err = readKey(r)
	if err != nil || !quit {
		t.Fatalf("Ctrl+C: quit=%v err=%v, want quit=true", quit, err)
	}
}

func TestReadKeyArrowEscapeSequence(t *testing.T) {
	r := bufio.NewReader(strings.NewReader("\x1b[A"))
	key, mods, quit, err := readKey(r)
	if err != nil || quit {
		t.Fatalf("readKey: err=%v quit=%v", err, quit)
	}
	if key != events.KeyUp || mods != 0 {
		t.Fatalf("readKey(ESC [ A) = (%v, %v), want (KeyUp, 0)", key, mods)
	}
}

func TestReadKeyCtrlArrowEscapeSequence(t *testing.T) {
	r := bufio.NewReader(strings.NewReader("\x1b[1;5C"))
	key, mods, quit, err := readKey(r)
	if err != nil || quit {
		t.Fatalf("readKey: err=%v quit=%v", err, quit)
	}
	if key != events.KeyRight || mods != events.ModCtrl {
		t.Fatalf("readKey(ESC [ 1;5 C) = (%v, %v), want (KeyRight, ModCtrl)", key, mods)
	}
}

func TestDrainLineStripsNewline(t *testing.T) {
	r := bufio.NewReader(strings.NewReader("echo hi\nnext"))
	line, err := drainLine(r)
	if err != nil {
		t.Fatalf("drainLine: %v", err)
	}
	if line != "echo hi" {
		t.Fatalf("drainLine = %q, want %q", line, "echo hi")
	}
}
