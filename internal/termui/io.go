package termui

// capture is the single-threaded module-level output redirect used by
// the shell's pipeline and by `ls` when it needs newline-separated
// output for a downstream consumer. While active, every terminal write
// primitive appends to buf instead of the screen buffer, regardless of
// which *Terminal is writing.
var capture struct {
	active bool
	buf    []byte
}

// CaptureStart begins redirecting all terminal writes into an internal
// buffer.
func CaptureStart() {
	capture.active = true
	capture.buf = capture.buf[:0]
}

// CaptureStop ends the redirect and returns everything written since
// CaptureStart.
func CaptureStop() []byte {
	capture.active = false
	out := make([]byte, len(capture.buf))
	copy(out, capture.buf)
	return out
}

// CaptureActive reports whether a capture is in progress.
func CaptureActive() bool { return capture.active }

// WriteChar writes a single byte to t, honoring the active capture
// redirect and the terminal's line-wrap/scroll behavior.
func (t *Terminal) WriteChar(c byte) {
	if !t.Active {
		return
	}
	if capture.active {
		capture.buf = append(capture.buf, c)
		return
	}

	if t.CursorRow >= bufferRows {
		copy(t.Buffer[:bufferRows-1], t.Buffer[1:bufferRows])
		for col := 0; col < bufferCols; col++ {
			t.Buffer[bufferRows-1][col] = ' '
		}
		t.CursorRow = bufferRows - 1
	}

	if c == '\n' {
		t.CursorCol = 0
		t.CursorRow++
		return
	}

	if t.CursorRow < bufferRows {
		t.Buffer[t.CursorRow][t.CursorCol] = c
		t.CursorCol++
		if t.CursorCol >= bufferCols {
			t.CursorCol = 0
			t.CursorRow++
		}
	}
}

// WriteString writes every byte of s via WriteChar.
func (t *Terminal) WriteString(s string) {
	for i := 0; i < len(s); i++ {
		t.WriteChar(s[i])
	}
}

// WriteLine writes s followed by a newline.
func (t *Terminal) WriteLine(s string) {
	t.WriteString(s)
	t.Newline()
}

// Newline writes a single '\n'.
func (t *Terminal) Newline() { t.WriteChar('\n') }

// Clear resets the screen buffer and cursor, and drops history and the
// fastfetch overlay. Image-view state is left as it is.
func (t *Terminal) Clear() {
	for r := 0; r < bufferRows; r++ {
		for c := 0; c < bufferCols; c++ {
			t.Buffer[r][c] = ' '
		}
	}
	t.CursorRow = 0
	t.CursorCol = 0
	t.HistoryLen = 0
	t.HistoryPos = 0
	t.Fastfetch = FastfetchOverlay{}
}

// WriteRow overwrites row with text, space-padded or truncated to
// bufferCols, bypassing the cursor and the capture redirect. Used by
// full-screen modes (nano) that render a whole frame at once.
func (t *Terminal) WriteRow(row int, text string) {
	if row < 0 || row >= bufferRows {
		return
	}
	for c := 0; c < bufferCols; c++ {
		t.Buffer[row][c] = ' '
	}
	if len(text) > bufferCols {
		text = text[:bufferCols]
	}
	for c := 0; c < len(text); c++ {
		t.Buffer[row][c] = text[c]
	}
}

// Rows and Cols expose the fixed terminal frame dimensions.
func Rows() int { return bufferRows }
func Cols() int { return bufferCols }

// PushHistory appends line to the ring, evicting the oldest entry once
// full.
func (t *Terminal) PushHistory(line string) {
	if t.HistoryLen < historyCapacity {
		t.History[t.HistoryLen] = line
		t.HistoryLen++
	} else {
		copy(t.History[:historyCapacity-1], t.History[1:])
		t.History[historyCapacity-1] = line
	}
	t.HistoryPos = t.HistoryLen
}
