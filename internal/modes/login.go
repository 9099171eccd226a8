package modes

import (
	"github.com/tilixi/tilixi/internal/events"
	"github.com/tilixi/tilixi/internal/termui"
	"github.com/tilixi/tilixi/internal/vfsfs"
)

const loginMaxInput = 64

// Login is the interactive password prompt shown when /etc/passwd
// already holds credentials. It masks input and loops on a bad guess
// rather than giving up.
type Login struct {
	term     *termui.Terminal
	username string
	hash     uint32
	input    []byte
}

// StartLogin activates the login prompt on term if /etc/passwd holds a
// user entry, returning false (and doing nothing) if it does not —
// callers treat that as "no login required".
func StartLogin(term *termui.Terminal, v *vfsfs.Vfs) bool {
	user, hash, ok := ReadPasswdEntry(v)
	if !ok {
		return false
	}
	l := &Login{term: term, username: user, hash: hash, input: make([]byte, 0, loginMaxInput)}
	l.showScreen()
	term.Mode = l
	return true
}

func (l *Login) showScreen() {
	l.term.Clear()
	l.term.WriteString("Username: ")
	l.term.WriteLine(l.username)
	l.term.WriteString("password: ")
	l.input = l.input[:0]
}

func (l *Login) finish() {
	l.term.Mode = nil
	l.term.Clear()
	for i := range l.term.InputLine {
		l.term.InputLine[i] = 0
	}
	l.term.InputPos = 0
	l.term.InputLen = 0
	l.term.WriteString("$ ")
	l.term.CursorCol = 2
}

// HandleKey implements termui.Mode.
func (l *Login) HandleKey(evt events.KeyEvent) bool {
	if evt.Key == events.KeyBackspace {
		if len(l.input) > 0 && l.term.CursorCol > 0 {
			l.input = l.input[:len(l.input)-1]
			l.term.CursorCol--
			l.term.Buffer[l.term.CursorRow][l.term.CursorCol] = ' '
		}
		return false
	}

	if evt.Key == events.KeyEnter {
		l.term.Newline()
		if FnvHash(string(l.input)) != l.hash {
			l.term.WriteLine("Incorrect password. Try again.")
			l.term.WriteString("password: ")
			l.input = l.input[:0]
			return false
		}
		l.finish()
		return true
	}

	if evt.Key == events.KeyTab || evt.Key == events.KeyEsc {
		return false
	}

	c := KeyToChar(evt.Key, evt.Modifiers)
	if c == 0 {
		return false
	}
	if len(l.input)+1 >= loginMaxInput {
		return false
	}
	l.input = append(l.input, c)
	l.term.WriteChar('*')
	return false
}
