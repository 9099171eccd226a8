package shell

import (
	"strings"

	"github.com/tilixi/tilixi/internal/events"
	"github.com/tilixi/tilixi/internal/modes"
	"github.com/tilixi/tilixi/internal/termui"
)

// HandleKey is the terminal input dispatcher every key event reaches
// once the hotkey table has had first refusal. It enforces the fixed
// interception order: a terminal showing an image ignores all input,
// an installed Mode (login, first-boot, passwd, nano) owns every key
// until it clears itself, and only then does plain shell line editing
// run.
func HandleKey(registry *Registry, ctx *Context, evt events.KeyEvent) {
	term := ctx.Term
	if term == nil || !term.Active {
		return
	}
	if term.ImageViewActive {
		return
	}
	if term.Mode != nil {
		term.Mode.HandleKey(evt)
		return
	}

	switch evt.Key {
	case events.KeyEnter:
		handleEnter(registry, ctx)
	case events.KeyBackspace:
		handleBackspace(term)
	case events.KeyUp:
		handleHistoryUp(term)
	case events.KeyDown:
		handleHistoryDown(term)
	case events.KeyTab, events.KeyEsc, events.KeyLeft, events.KeyRight, events.KeyCapsLock:
		// reserved; plain shell input defines no behavior for these
	default:
		if c := modes.KeyToChar(evt.Key, evt.Modifiers); c != 0 {
			handleChar(term, c)
		}
	}
}

func handleChar(term *termui.Terminal, c byte) {
	if term.InputPos >= len(term.InputLine)-1 {
		return
	}
	term.InputLine[term.InputPos] = c
	term.InputPos++
	term.InputLen = term.InputPos
	term.WriteChar(c)
}

func handleBackspace(term *termui.Terminal) {
	if term.InputPos == 0 {
		return
	}
	term.InputPos--
	term.InputLine[term.InputPos] = 0
	term.InputLen = term.InputPos
	if term.CursorCol > 0 {
		term.CursorCol--
		term.Buffer[term.CursorRow][term.CursorCol] = ' '
	}
}

func handleEnter(registry *Registry, ctx *Context) {
	term := ctx.Term
	line := string(term.InputLine[:term.InputPos])

	term.Newline()
	if term.InputPos > 0 {
		term.PushHistory(line)
	}

	if strings.TrimSpace(line) != "" {
		Execute(registry, ctx, line)
	}

	for i := range term.InputLine {
		term.InputLine[i] = 0
	}
	term.InputPos = 0
	term.InputLen = 0
	term.WriteString("$ ")
}

func handleHistoryUp(term *termui.Terminal) {
	if term.HistoryPos <= 0 {
		return
	}
	term.HistoryPos--
	loadHistoryLine(term, term.History[term.HistoryPos])
}

func handleHistoryDown(term *termui.Terminal) {
	if term.HistoryPos >= term.HistoryLen {
		return
	}
	term.HistoryPos++
	if term.HistoryPos < term.HistoryLen {
		loadHistoryLine(term, term.History[term.HistoryPos])
	} else {
		loadHistoryLine(term, "")
	}
}

// loadHistoryLine replaces the current input line with line and
// redraws the prompt row in place, mirroring the original's "\r$ "
// redraw without relying on carriage-return semantics this buffer
// model does not have.
func loadHistoryLine(term *termui.Terminal, line string) {
	maxLen := len(term.InputLine) - 1
	if len(line) > maxLen {
		line = line[:maxLen]
	}
	for i := range term.InputLine {
		term.InputLine[i] = 0
	}
	copy(term.InputLine, line)
	term.InputPos = len(line)
	term.InputLen = len(line)

	term.WriteRow(term.CursorRow, "$ "+line)
	col := 2 + len(line)
	if col >= termui.Cols() {
		col = termui.Cols() - 1
	}
	term.CursorCol = col
}
