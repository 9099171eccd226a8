package modes

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/tilixi/tilixi/internal/events"
	"github.com/tilixi/tilixi/internal/termui"
	"github.com/tilixi/tilixi/internal/vfsfs"
)

const passwdMaxInput = 64

// FnvHash is the offset/prime FNV-1a variant /etc/passwd hashes are
// stored with, formatted as 8-digit lowercase hex.
func FnvHash(data string) uint32 {
	var hash uint32 = 2166136261
	for i := 0; i < len(data); i++ {
		hash ^= uint32(data[i])
		hash *= 16777619
	}
	return hash
}

type passwdStep int

const (
	passwdStepCurrent passwdStep = iota
	passwdStepNew
	passwdStepConfirm
)

// Passwd is the interactive `passwd` mode: a three-step prompt
// (current password, new password, confirm) that rewrites /etc/passwd
// on success.
type Passwd struct {
	term *termui.Terminal
	vfs  *vfsfs.Vfs

	step        passwdStep
	input       strings.Builder
	username    string
	currentHash uint32
	newPassword string
}

// ReadPasswdEntry reads /etc/passwd's single "user:hexhash" line.
func ReadPasswdEntry(v *vfsfs.Vfs) (user string, hash uint32, ok bool) {
	f, err := v.Open("/etc/passwd", vfsfs.ORead)
	if err != nil {
		return "", 0, false
	}
	defer v.Close(f)

	buf := make([]byte, 127)
	n, err := v.Read(f, buf)
	if err != nil || n <= 0 {
		return "", 0, false
	}
	line := string(buf[:n])
	if idx := strings.IndexByte(line, '\n'); idx >= 0 {
		line = line[:idx]
	}
	colon := strings.IndexByte(line, ':')
	if colon < 0 {
		return "", 0, false
	}
	user = line[:colon]
	hashStr := line[colon+1:]
	if hashStr == "" {
		return "", 0, false
	}
	h, err := strconv.ParseUint(hashStr, 16, 32)
	if err != nil {
		return "", 0, false
	}
	return user, uint32(h), true
}

func writePasswdEntry(v *vfsfs.Vfs, user, password string) bool {
	line := fmt.Sprintf("%s:%08x\n", user, FnvHash(password))
	f, err := v.Open("/etc/passwd", vfsfs.OWrite|vfsfs.OTrunc|vfsfs.OCreate)
	if err != nil {
		return false
	}
	defer v.Close(f)
	n, err := v.Write(f, []byte(line))
	return err == nil && n == len(line)
}

// StartPasswd constructs and activates the passwd mode on term, reading
// the current credentials from /etc/passwd. It returns false if
// /etc/passwd is missing or malformed.
func StartPasswd(term *termui.Terminal, v *vfsfs.Vfs) bool {
	user, hash, ok := ReadPasswdEntry(v)
	if !ok {
		return false
	}
	p := &Passwd{term: term, vfs: v, step: passwdStepCurrent, username: user, currentHash: hash}
	term.Clear()
	term.WriteLine("Change password")
	term.WriteString("Current password: ")
	term.Mode = p
	return true
}

func (p *Passwd) prompt(text string) {
	p.input.Reset()
	p.term.WriteString(text)
}

func (p *Passwd) finish(message string) {
	p.term.Mode = nil
	p.term.Newline()
	p.term.WriteLine(message)
	for i := range p.term.InputLine {
		p.term.InputLine[i] = 0
	}
	p.term.InputPos = 0
	p.term.InputLen = 0
	p.term.WriteString("$ ")
}

// HandleKey implements termui.Mode.
func (p *Passwd) HandleKey(evt events.KeyEvent) bool {
	if evt.Key == events.KeyBackspace {
		s := p.input.String()
		if len(s) > 0 {
			p.input.Reset()
			p.input.WriteString(s[:len(s)-1])
			if p.term.CursorCol > 0 {
				p.term.CursorCol--
			}
		}
		return false
	}

	if evt.Key == events.KeyEnter {
		p.term.Newline()
		switch p.step {
		case passwdStepCurrent:
			if FnvHash(p.input.String()) != p.currentHash {
				p.prompt("Current password incorrect. Try again: ")
				return false
			}
			p.step = passwdStepNew
			p.prompt("Enter new password: ")
			return false
		case passwdStepNew:
			if p.input.Len() == 0 {
				p.term.WriteString("Password cannot be empty. Enter new password: ")
				p.input.Reset()
				return false
			}
			p.newPassword = p.input.String()
			p.step = passwdStepConfirm
			p.prompt("Confirm new password: ")
			return false
		case passwdStepConfirm:
			if p.newPassword != p.input.String() {
				p.step = passwdStepNew
				p.prompt("Passwords do not match. Enter new password: ")
				return false
			}
			if !writePasswdEntry(p.vfs, p.username, p.newPassword) {
				p.finish("Failed to update /etc/passwd.")
				return true
			}
			p.finish("Password updated.")
			return true
		}
		return false
	}

	if evt.Key == events.KeyTab || evt.Key == events.KeyEsc {
		return false
	}

	c := KeyToChar(evt.Key, evt.Modifiers)
	if c == 0 {
		return false
	}
	if p.input.Len()+1 >= passwdMaxInput {
		return false
	}
	p.input.WriteByte(c)
	p.term.WriteChar('*')
	return false
}
