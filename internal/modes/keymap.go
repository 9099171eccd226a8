// Package modes implements the full-screen interactive modes that take
// over a terminal's key input: nano, passwd, and the login/first-boot
// prompts.
package modes

import "github.com/tilixi/tilixi/internal/events"

// KeyToChar maps a key event to the US-QWERTY character it produces,
// honoring Shift, or 0 if the key has no printable character (arrows,
// Enter, Tab, Esc, ...).
func KeyToChar(key events.KeyCode, modifiers uint8) byte {
	shift := modifiers&events.ModShift != 0
	pick := func(lower, upper byte) byte {
		if shift {
			return upper
		}
		return lower
	}
	switch key {
	case events.KeyQ:
		return pick('q', 'Q')
	case events.KeyW:
		return pick('w', 'W')
	case events.KeyE:
		return pick('e', 'E')
	case events.KeyR:
		return pick('r', 'R')
	case events.KeyT:
		return pick('t', 'T')
	case events.KeyY:
		return pick('y', 'Y')
	case events.KeyU:
		return pick('u', 'U')
	case events.KeyI:
		return pick('i', 'I')
	case events.KeyO:
		return pick('o', 'O')
	case events.KeyP:
		return pick('p', 'P')
	case events.KeyA:
		return pick('a', 'A')
	case events.KeyS:
		return pick('s', 'S')
	case events.KeyD:
		return pick('d', 'D')
	case events.KeyF:
		return pick('f', 'F')
	case events.KeyG:
		return pick('g', 'G')
	case events.KeyH:
		return pick('h', 'H')
	case events.KeyJ:
		return pick('j', 'J')
	case events.KeyK:
		return pick('k', 'K')
	case events.KeyL:
		return pick('l', 'L')
	case events.KeyZ:
		return pick('z', 'Z')
	case events.KeyX:
		return pick('x', 'X')
	case events.KeyC:
		return pick('c', 'C')
	case events.KeyV:
		return pick('v', 'V')
	case events.KeyB:
		return pick('b', 'B')
	case events.KeyN:
		return pick('n', 'N')
	case events.KeyM:
		return pick('m', 'M')
	case events.KeyOne:
		return pick('1', '!')
	case events.KeyTwo:
		return pick('2', '@')
	case events.KeyThree:
		return pick('3', '#')
	case events.KeyFour:
		return pick('4', '$')
	case events.KeyFive:
		return pick('5', '%')
	case events.KeySix:
		return pick('6', '^')
	case events.KeySeven:
		return pick('7', '&')
	case events.KeyEight:
		return pick('8', '*')
	case events.KeyNine:
		return pick('9', '(')
	case events.KeyZero:
		return pick('0', ')')
	case events.KeySpace:
		return ' '
	case events.KeyDash:
		return pick('-', '_')
	case events.KeyEquals:
		return pick('=', '+')
	case events.KeyOpenBracket:
		return pick('[', '{')
	case events.KeyCloseBracket:
		return pick(']', '}')
	case events.KeyBackslash:
		return pick('\\', '|')
	case events.KeyColon:
		return pick(';', ':')
	case events.KeyQuote:
		return pick('\'', '"')
	case events.KeyComma:
		return pick(',', '<')
	case events.KeyPeriod:
		return pick('.', '>')
	case events.KeySlash:
		return pick('/', '?')
	case events.KeyTilde:
		return pick('`', '~')
	}
	return 0
}
