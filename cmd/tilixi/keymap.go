package main

import (
	"bufio"
	"strings"

	"github.com/tilixi/tilixi/internal/events"
)

// letterKeys maps an uppercase ASCII letter to its KeyCode, the inverse
// of modes.KeyToChar's lower/upper pick for the alphabetic keys.
var letterKeys = map[byte]events.KeyCode{
	'Q': events.KeyQ, 'W': events.KeyW, 'E': events.KeyE, 'R': events.KeyR,
	'T': events.KeyT, 'Y': events.KeyY, 'U': events.KeyU, 'I': events.KeyI,
	'O': events.KeyO, 'P': events.KeyP, 'A': events.KeyA, 'S': events.KeyS,
	'D': events.KeyD, 'F': events.KeyF, 'G': events.KeyG, 'H': events.KeyH,
	'J': events.KeyJ, 'K': events.KeyK, 'L': events.KeyL, 'Z': events.KeyZ,
	'X': events.KeyX, 'C': events.KeyC, 'V': events.KeyV, 'B': events.KeyB,
	'N': events.KeyN, 'M': events.KeyM,
}

// punctKey pairs the unshifted and shifted character a punctuation key
// produces, mirroring modes.KeyToChar's pick(lower, upper) table.
type punctKey struct {
	Key   events.KeyCode
	Shift bool
}

var punctKeys = map[byte]punctKey{
	'`': {events.KeyTilde, false}, '~': {events.KeyTilde, true},
	'1': {events.KeyOne, false}, '!': {events.KeyOne, true},
	'2': {events.KeyTwo, false}, '@': {events.KeyTwo, true},
	'3': {events.KeyThree, false}, '#': {events.KeyThree, true},
	'4': {events.KeyFour, false}, '$': {events.KeyFour, true},
	'5': {events.KeyFive, false}, '%': {events.KeyFive, true},
	'6': {events.KeySix, false}, '^': {events.KeySix, true},
	'7': {events.KeySeven, false}, '&': {events.KeySeven, true},
	'8': {events.KeyEight, false}, '*': {events.KeyEight, true},
	'9': {events.KeyNine, false}, '(': {events.KeyNine, true},
	'0': {events.KeyZero, false}, ')': {events.KeyZero, true},
	'-': {events.KeyDash, false}, '_': {events.KeyDash, true},
	'=': {events.KeyEquals, false}, '+': {events.KeyEquals, true},
	'[': {events.KeyOpenBracket, false}, '{': {events.KeyOpenBracket, true},
	']': {events.KeyCloseBracket, false}, '}': {events.KeyCloseBracket, true},
	'\\': {events.KeyBackslash, false}, '|': {events.KeyBackslash, true},
	';': {events.KeyColon, false}, ':': {events.KeyColon, true},
	'\'': {events.KeyQuote, false}, '"': {events.KeyQuote, true},
	',': {events.KeyComma, false}, '<': {events.KeyComma, true},
	'.': {events.KeyPeriod, false}, '>': {events.KeyPeriod, true},
	'/': {events.KeySlash, false}, '?': {events.KeySlash, true},
	' ': {events.KeySpace, false},
}

// decodeByte turns one plain (non-escape, non-control) input byte into
// the key event it represents.
func decodeByte(b byte) (events.KeyCode, uint8) {
	if b >= 'a' && b <= 'z' {
		if k, ok := letterKeys[b-'a'+'A']; ok {
			return k, 0
		}
	}
	if b >= 'A' && b <= 'Z' {
		if k, ok := letterKeys[b]; ok {
			return k, events.ModShift
		}
	}
	if p, ok := punctKeys[b]; ok {
		if p.Shift {
			return p.Key, events.ModShift
		}
		return p.Key, 0
	}
	return events.KeyNone, 0
}

// readKey decodes one key event from r, which must be reading from a
// terminal already placed in raw mode. quit reports Ctrl+C, the
// interactive loop's only built-in way to stop.
func readKey(r *bufio.Reader) (key events.KeyCode, mods uint8, quit bool, err error) {
	b, err := r.ReadByte()
	if err != nil {
		return events.KeyNone, 0, false, err
	}
	switch {
	case b == 0x03:
		return events.KeyNone, 0, true, nil
	case b == 0x1b:
		return readEscape(r)
	case b == '\r' || b == '\n':
		return events.KeyEnter, 0, false, nil
	case b == 0x7f || b == 0x08:
		return events.KeyBackspace, 0, false, nil
	case b == '\t':
		return events.KeyTab, 0, false, nil
	case b >= 1 && b <= 26:
		if k, ok := letterKeys['A'+b-1]; ok {
			return k, events.ModCtrl, false, nil
		}
		return events.KeyNone, 0, false, nil
	default:
		key, mods = decodeByte(b)
		return key, mods, false, nil
	}
}

// readEscape parses a CSI sequence following an ESC byte: a bare arrow
// (ESC [ A/B/C/D) or the modified form terminals send for Ctrl+arrow
// (ESC [ 1 ; 5 A/B/C/D). A bare Esc with no following '[' is reported
// as KeyNone: plain shell input defines no behavior for Esc.
func readEscape(r *bufio.Reader) (events.KeyCode, uint8, bool, error) {
	b1, err := r.ReadByte()
	if err != nil {
		return events.KeyNone, 0, false, err
	}
	if b1 != '[' {
		return events.KeyNone, 0, false, nil
	}

	var params []byte
	var final byte
	for {
		b, err := r.ReadByte()
		if err != nil {
			return events.KeyNone, 0, false, err
		}
		if (b >= '0' && b <= '9') || b == ';' {
			params = append(params, b)
			continue
		}
		final = b
		break
	}

	var mod uint8
	if i := strings.IndexByte(string(params), ';'); i >= 0 && i+1 < len(params) && params[i+1] == '5' {
		mod = events.ModCtrl
	}

	switch final {
	case 'A':
		return events.KeyUp, mod, false, nil
	case 'B':
		return events.KeyDown, mod, false, nil
	case 'C':
		return events.KeyRight, mod, false, nil
	case 'D':
		return events.KeyLeft, mod, false, nil
	default:
		return events.KeyNone, 0, false, nil
	}
}

// drainLine reads one LF-terminated (or EOF-terminated) line, used by
// the headless fallback loop when stdin is not a real terminal.
func drainLine(r *bufio.Reader) (string, error) {
	line, err := r.ReadString('\n')
	return strings.TrimRight(line, "\r\n"), err
}
