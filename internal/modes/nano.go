package modes

import (
	"fmt"
	"strings"

	"github.com/tilixi/tilixi/internal/events"
	"github.com/tilixi/tilixi/internal/termui"
	"github.com/tilixi/tilixi/internal/vfsfs"
)

const (
	nanoMaxBuffer  = 4096
	nanoPromptMax  = 32
)

type nanoPromptState int

const (
	nanoPromptNone nanoPromptState = iota
	nanoPromptCmd
	nanoPromptSaveChoice
	nanoPromptConfirm
)

// Nano is the interactive `nano` mode: a flat byte-buffer editor with a
// line/column gutter and a Ctrl+X save flow.
type Nano struct {
	term *termui.Terminal
	vfs  *vfsfs.Vfs

	path   string
	buffer []byte
	cursor int
	dirty  bool

	promptState nanoPromptState
	promptInput strings.Builder
	pendingSave bool
}

// StartNano loads path (which must already exist and be a regular
// file) and activates the editor on term.
func StartNano(term *termui.Terminal, v *vfsfs.Vfs, path string) (*Nano, vfsfs.Errno) {
	node, err := v.ResolveAt(term.Cwd, path)
	if err != nil {
		return nil, vfsfs.NotFound
	}
	if node.Type != vfsfs.TypeFile {
		v.Release(node)
		return nil, vfsfs.Invalid
	}

	f, ferr := v.OpenNode(node, vfsfs.ORead)
	v.Release(node)
	if ferr != nil {
		return nil, vfsfs.Io
	}
	defer v.Close(f)

	buf := make([]byte, 0, 256)
	chunk := make([]byte, 128)
	for len(buf) < nanoMaxBuffer-1 {
		n, rerr := v.Read(f, chunk)
		if rerr != nil || n == 0 {
			break
		}
		remaining := nanoMaxBuffer - 1 - len(buf)
		if n > remaining {
			n = remaining
		}
		buf = append(buf, chunk[:n]...)
	}

	n := &Nano{term: term, vfs: v, path: path, buffer: buf}
	term.Mode = n
	n.render()
	return n, vfsfs.Ok
}

func (n *Nano) saveFile() bool {
	node, err := n.vfs.ResolveAt(n.term.Cwd, n.path)
	if err != nil {
		return false
	}
	defer n.vfs.Release(node)
	f, ferr := n.vfs.OpenNode(node, vfsfs.OWrite|vfsfs.OTrunc|vfsfs.OCreate)
	if ferr != nil {
		return false
	}
	defer n.vfs.Close(f)
	written, werr := n.vfs.Write(f, n.buffer)
	return werr == nil && written == len(n.buffer)
}

func (n *Nano) insertChar(c byte) {
	if len(n.buffer) >= nanoMaxBuffer-1 {
		return
	}
	n.buffer = append(n.buffer, 0)
	copy(n.buffer[n.cursor+1:], n.buffer[n.cursor:len(n.buffer)-1])
	n.buffer[n.cursor] = c
	n.cursor++
	n.dirty = true
}

func (n *Nano) backspace() {
	if n.cursor == 0 || len(n.buffer) == 0 {
		return
	}
	copy(n.buffer[n.cursor-1:], n.buffer[n.cursor:])
	n.buffer = n.buffer[:len(n.buffer)-1]
	n.cursor--
	n.dirty = true
}

func (n *Nano) resetPrompt() {
	n.promptState = nanoPromptNone
	n.promptInput.Reset()
	n.pendingSave = false
}

func (n *Nano) exitToShell() {
	n.term.Mode = nil
	n.resetPrompt()
	n.term.Clear()
	for i := range n.term.InputLine {
		n.term.InputLine[i] = 0
	}
	n.term.InputPos = 0
	n.term.WriteString("$ ")
	n.term.CursorRow = 0
	n.term.CursorCol = 2
}

func (n *Nano) render() {
	rows, cols := termui.Rows(), termui.Cols()
	n.term.Clear()
	n.term.WriteRow(0, fmt.Sprintf("  GNU nano  %s", n.path))

	editRows := rows - 3

	totalLines := 0
	if len(n.buffer) > 0 {
		totalLines = 1
		for _, c := range n.buffer {
			if c == '\n' {
				totalLines++
			}
		}
	}

	digits := 1
	tempLines := totalLines
	if tempLines == 0 {
		tempLines = 1
	}
	for tempLines >= 10 {
		digits++
		tempLines /= 10
	}
	prefixWidth := digits + 1
	if prefixWidth < 3 {
		prefixWidth = 3
	}
	if prefixWidth > cols-1 {
		prefixWidth = cols - 1
	}

	cursorLine, cursorColText := 0, 0
	for i := 0; i < n.cursor && i < len(n.buffer); i++ {
		if n.buffer[i] == '\n' {
			cursorLine++
			cursorColText = 0
		} else {
			cursorColText++
		}
	}
	if cursorLine >= editRows {
		cursorLine = editRows - 1
	}
	if cursorColText > cols-prefixWidth-1 {
		cursorColText = cols - prefixWidth - 1
	}
	cursorRow := 1 + cursorLine
	cursorCol := prefixWidth + cursorColText

	idx := 0
	for row := 0; row < editRows; row++ {
		var line strings.Builder
		if row < totalLines && totalLines > 0 {
			prefix := fmt.Sprintf("%*d ", digits, row+1)
			if len(prefix) > prefixWidth {
				prefix = prefix[:prefixWidth]
			}
			line.WriteString(prefix)
			for line.Len() < prefixWidth {
				line.WriteByte(' ')
			}
		} else {
			line.WriteByte('~')
		}

		for idx < len(n.buffer) {
			c := n.buffer[idx]
			if c == '\n' {
				idx++
				break
			}
			if line.Len() >= cols {
				break
			}
			line.WriteByte(c)
			idx++
		}

		n.term.WriteRow(1+row, line.String())
	}

	dirty := "Saved"
	if n.dirty {
		dirty = "Modified"
	}
	n.term.WriteRow(rows-2, fmt.Sprintf("File: %s -- %s", n.path, dirty))

	footer := "^P Command"
	switch n.promptState {
	case nanoPromptCmd:
		footer = fmt.Sprintf("Command: %s", n.promptInput.String())
	case nanoPromptSaveChoice:
		footer = "Save changes? (y/n)"
	case nanoPromptConfirm:
		footer = "Press Enter to confirm"
	}
	n.term.WriteRow(rows-1, footer)

	n.term.CursorRow = cursorRow
	n.term.CursorCol = cursorCol
}

// HandleKey implements termui.Mode.
func (n *Nano) HandleKey(evt events.KeyEvent) bool {
	ctrl := evt.Modifiers&events.ModCtrl != 0

	if ctrl && evt.Key == events.KeyX {
		if !n.dirty {
			n.exitToShell()
			return true
		}
		n.promptState = nanoPromptSaveChoice
		n.render()
		return false
	}

	if ctrl && evt.Key == events.KeyP {
		if n.promptState == nanoPromptNone {
			n.promptState = nanoPromptCmd
			n.promptInput.Reset()
		} else {
			n.resetPrompt()
		}
		n.render()
		return false
	}

	if n.promptState == nanoPromptCmd {
		switch {
		case evt.Key == events.KeyBackspace:
			s := n.promptInput.String()
			if len(s) > 0 {
				n.promptInput.Reset()
				n.promptInput.WriteString(s[:len(s)-1])
			}
		case evt.Key == events.KeyEnter:
			if n.promptInput.String() == "x" {
				n.promptState = nanoPromptSaveChoice
			} else {
				n.resetPrompt()
			}
		default:
			c := KeyToChar(evt.Key, evt.Modifiers)
			if c != 0 && n.promptInput.Len() < nanoPromptMax-1 {
				if n.promptInput.Len() == 0 && c == 'x' {
					n.promptState = nanoPromptSaveChoice
				} else {
					n.promptInput.WriteByte(c)
				}
			}
		}
		n.render()
		return false
	}

	if n.promptState == nanoPromptSaveChoice {
		c := KeyToChar(evt.Key, evt.Modifiers)
		switch c {
		case 'y', 'Y':
			n.pendingSave = true
			n.promptState = nanoPromptConfirm
		case 'n', 'N':
			n.pendingSave = false
			n.promptState = nanoPromptConfirm
		}
		n.render()
		return false
	}

	if n.promptState == nanoPromptConfirm {
		if evt.Key == events.KeyEnter {
			if n.pendingSave {
				if n.saveFile() {
					n.dirty = false
					n.exitToShell()
					return true
				}
			} else {
				n.exitToShell()
				return true
			}
			n.resetPrompt()
			n.render()
		}
		return false
	}

	switch {
	case evt.Key == events.KeyEnter:
		n.insertChar('\n')
	case evt.Key == events.KeyBackspace:
		n.backspace()
	default:
		c := KeyToChar(evt.Key, evt.Modifiers)
		if c != 0 && !ctrl {
			n.insertChar(c)
		}
	}

	n.render()
	return false
}
