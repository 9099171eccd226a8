package main

import (
	"fmt"
	"io"
	"strings"

	"github.com/tilixi/tilixi/internal/termui"
)

// render draws the active terminal's screen buffer to w using a full
// clear-and-redraw, the simplest possible backing for a buffer model
// that has no notion of a dirty-region diff.
func render(w io.Writer, wm *termui.WindowManager) {
	term := wm.Active()
	if term == nil {
		return
	}
	var b strings.Builder
	b.WriteString("\x1b[2J\x1b[H")
	for row := 0; row < termui.Rows(); row++ {
		line := term.Buffer[row]
		b.Write(line[:])
		b.WriteString("\r\n")
	}
	fmt.Fprintf(&b, "\x1b[%d;%dH", term.CursorRow+1, term.CursorCol+1)
	io.WriteString(w, b.String())
}
