package modes

import (
	"strings"

	"github.com/tilixi/tilixi/internal/events"
	"github.com/tilixi/tilixi/internal/termui"
	"github.com/tilixi/tilixi/internal/vfsfs"
)

const (
	firstbootMaxInput = 32
	firstbootMaxPass  = 64
)

type firstbootStep int

const (
	firstbootStepUsername firstbootStep = iota
	firstbootStepPassword
	firstbootStepConfirm
)

// FirstBoot is the one-time setup prompt run when /etc/passwd is
// missing or empty: collect a username, a password and its
// confirmation, rename or create the home directory, and write
// /etc/passwd.
type FirstBoot struct {
	term *termui.Terminal
	vfs  *vfsfs.Vfs

	step            firstbootStep
	input           strings.Builder
	username        string
	password        string
	passwordConfirm string
}

// hasNonWhitespace reports whether data contains any byte that is not
// one of the C locale's whitespace characters.
func hasNonWhitespace(data []byte) bool {
	for _, c := range data {
		switch c {
		case ' ', '\n', '\t', '\r', '\f', '\v':
			continue
		default:
			return true
		}
	}
	return false
}

// StartFirstBootIfNeeded activates the first-boot setup prompt on term
// if /etc/passwd does not already hold a non-empty entry. It returns
// false if no setup is needed.
func StartFirstBootIfNeeded(term *termui.Terminal, v *vfsfs.Vfs) bool {
	node, err := v.Resolve("/etc/passwd")
	if err == nil {
		if node.Type == vfsfs.TypeFile {
			f, ferr := v.OpenNode(node, vfsfs.ORead)
			v.Release(node)
			if ferr == nil {
				defer v.Close(f)
				buf := make([]byte, 128)
				for {
					n, rerr := v.Read(f, buf)
					if rerr != nil || n <= 0 {
						break
					}
					if hasNonWhitespace(buf[:n]) {
						return false
					}
				}
			}
		} else {
			v.Release(node)
		}
	}

	fb := &FirstBoot{term: term, vfs: v, step: firstbootStepUsername}
	fb.showScreen()
	term.Mode = fb
	return true
}

func (fb *FirstBoot) showScreen() {
	fb.term.Clear()
	fb.term.WriteLine("First boot setup")
	switch fb.step {
	case firstbootStepUsername:
		fb.term.WriteString("Enter username: ")
	case firstbootStepPassword:
		fb.term.WriteString("Enter password: ")
	default:
		fb.term.WriteString("Confirm password: ")
	}
	fb.input.Reset()
}

func (fb *FirstBoot) setPrompt(text string) {
	fb.term.WriteString(text)
	fb.input.Reset()
}

func usernameIsValid(name string) bool {
	if name == "" {
		return false
	}
	for i := 0; i < len(name); i++ {
		switch name[i] {
		case '/', ' ', '\t', '.':
			return false
		}
	}
	return true
}

// renameHomeDir points /home at username: renaming an existing
// "users" or "user" placeholder directory if present, else creating
// username fresh.
func renameHomeDir(v *vfsfs.Vfs, username string) bool {
	home, err := v.Resolve("/home")
	if err != nil || !home.IsDir() {
		if err == nil {
			v.Release(home)
		}
		return false
	}
	defer v.Release(home)

	for _, placeholder := range []string{"users", "user"} {
		child, cerr := v.ResolveAt(home, placeholder)
		if cerr == nil {
			isDir := child.IsDir()
			v.Release(child)
			if isDir {
				return v.DirRename(home, placeholder, home, username) == nil
			}
		}
	}

	created, cerr := v.DirCreate(home, username, vfsfs.TypeDirectory)
	if cerr != nil {
		return false
	}
	v.Release(created)
	return true
}

func (fb *FirstBoot) finish(message string) {
	fb.term.Mode = nil
	fb.term.Newline()
	fb.term.WriteLine(message)
	for i := range fb.term.InputLine {
		fb.term.InputLine[i] = 0
	}
	fb.term.InputPos = 0
	fb.term.InputLen = 0
	fb.term.WriteString("$ ")
	fb.term.CursorCol = 2
}

func (fb *FirstBoot) acceptInput() bool {
	fb.term.Newline()

	switch fb.step {
	case firstbootStepUsername:
		if !usernameIsValid(fb.input.String()) {
			fb.term.WriteLine("Invalid username. Use letters/numbers, no dots or slashes.")
			fb.setPrompt("Enter username: ")
			return false
		}
		fb.username = fb.input.String()
		fb.step = firstbootStepPassword
		fb.setPrompt("Enter password: ")
		return false

	case firstbootStepPassword:
		if fb.input.Len() == 0 {
			fb.term.WriteLine("Password cannot be empty.")
			fb.setPrompt("Enter password: ")
			return false
		}
		fb.password = fb.input.String()
		fb.step = firstbootStepConfirm
		fb.setPrompt("Confirm password: ")
		return false

	case firstbootStepConfirm:
		fb.passwordConfirm = fb.input.String()
		if fb.password != fb.passwordConfirm {
			fb.term.WriteLine("Passwords do not match. Try again.")
			fb.step = firstbootStepPassword
			fb.setPrompt("Enter password: ")
			return false
		}
		if !renameHomeDir(fb.vfs, fb.username) {
			fb.finish("Failed to set home directory.")
			return true
		}
		if !writePasswdEntry(fb.vfs, fb.username, fb.password) {
			fb.finish("Failed to write /etc/passwd.")
			return true
		}
		fb.finish("Setup complete.")
		return true
	}
	return false
}

func (fb *FirstBoot) backspace() {
	if fb.input.Len() == 0 || fb.term.CursorCol == 0 {
		return
	}
	s := fb.input.String()
	fb.input.Reset()
	fb.input.WriteString(s[:len(s)-1])
	fb.term.CursorCol--
	fb.term.Buffer[fb.term.CursorRow][fb.term.CursorCol] = ' '
}

func (fb *FirstBoot) appendChar(c byte, mask bool) {
	if fb.input.Len()+1 >= firstbootMaxInput {
		return
	}
	fb.input.WriteByte(c)
	if mask {
		fb.term.WriteChar('*')
	} else {
		fb.term.WriteChar(c)
	}
}

// HandleKey implements termui.Mode.
func (fb *FirstBoot) HandleKey(evt events.KeyEvent) bool {
	if evt.Key == events.KeyBackspace {
		fb.backspace()
		return false
	}
	if evt.Key == events.KeyEnter {
		return fb.acceptInput()
	}
	if evt.Key == events.KeyTab || evt.Key == events.KeyEsc {
		return false
	}

	c := KeyToChar(evt.Key, evt.Modifiers)
	if c == 0 {
		return false
	}
	fb.appendChar(c, fb.step != firstbootStepUsername)
	return false
}
