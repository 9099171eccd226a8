// Package termui implements the tiled terminal window manager: a fixed
// pool of terminal slots arranged as a binary-split tree of screen
// rectangles, re-tiled into a grid whenever a terminal closes.
package termui

import (
	"github.com/tilixi/tilixi/internal/events"
	"github.com/tilixi/tilixi/internal/vfsfs"
)

const (
	MaxWindows            = 8
	MaxHorizontalTerminals = 4
	minCellDimension       = 50
	screenMargin           = 5
	splitBorder            = 2
	bufferRows             = 24
	bufferCols             = 80
	historyCapacity        = 16
)

// SplitDir records how a terminal's rectangle was carved out of its
// parent, for rendering purposes only — it does not affect tiling math.
type SplitDir int

const (
	SplitNone SplitDir = iota
	SplitVertical
	SplitHorizontal
)

// Rect is a terminal's screen-space bounding box.
type Rect struct {
	X, Y, Width, Height int
}

func (r Rect) right() int  { return r.X + r.Width }
func (r Rect) bottom() int { return r.Y + r.Height }

// FastfetchOverlay holds the transient image-rendering state `fastfetch`
// installs over a terminal's scrollback while its art is on screen.
type FastfetchOverlay struct {
	Active     bool
	ImagePath  string
	Pixels     []byte
	Width      int
	Height     int
	StartRow   int
	LineCount  int
}

// Terminal is one tiled terminal's full state: screen buffer, input
// line, history, geometry, and the overlays interactive modes install.
type Terminal struct {
	Active bool

	Buffer     [bufferRows][bufferCols]byte
	CursorRow  int
	CursorCol  int

	InputLine []byte
	InputLen  int
	InputPos  int

	History    [historyCapacity]string
	HistoryLen int
	HistoryPos int

	Cwd *vfsfs.Node

	PipeInput []byte

	Rect     Rect
	SplitDir SplitDir

	Fastfetch FastfetchOverlay

	ImageViewActive bool
	ImageViewPath   string

	// Mode, when set, owns this terminal's key input until it clears
	// itself (nano, passwd, the login/first-boot prompts).
	Mode Mode
}

// Mode is an interactive full-screen input mode that takes over a
// terminal's key handling until it finishes — nano, passwd, login.
type Mode interface {
	// HandleKey consumes one key event. done reports whether the mode
	// has finished and the terminal should return to shell input.
	HandleKey(evt events.KeyEvent) (done bool)
}

func newTerminal() *Terminal {
	t := &Terminal{InputLine: make([]byte, bufferCols)}
	for r := 0; r < bufferRows; r++ {
		for c := 0; c < bufferCols; c++ {
			t.Buffer[r][c] = ' '
		}
	}
	return t
}

// WindowManager owns the fixed pool of terminal slots and the tiling
// algorithm that lays them out on a screenWidth x screenHeight canvas.
type WindowManager struct {
	slots          [MaxWindows]*Terminal
	windowCount    int
	activeTerminal int
	selected       int
	screenWidth    int
	screenHeight   int
}

// NewWindowManager constructs an empty manager for the given screen
// dimensions.
func NewWindowManager(screenWidth, screenHeight int) *WindowManager {
	wm := &WindowManager{screenWidth: screenWidth, screenHeight: screenHeight}
	for i := range wm.slots {
		wm.slots[i] = newTerminal()
	}
	return wm
}

// Count returns the number of active terminals.
func (wm *WindowManager) Count() int { return wm.windowCount }

// Selected returns the currently selected terminal, or nil if none are
// open.
func (wm *WindowManager) Selected() *Terminal {
	if wm.windowCount == 0 {
		return nil
	}
	return wm.slots[wm.selected]
}

// SelectedIndex returns the slot index of the selected terminal.
func (wm *WindowManager) SelectedIndex() int { return wm.selected }

// Active returns the terminal that should currently receive key input.
func (wm *WindowManager) Active() *Terminal {
	if wm.windowCount == 0 {
		return nil
	}
	return wm.slots[wm.activeTerminal]
}

// At returns slot i's terminal, regardless of Active state.
func (wm *WindowManager) At(i int) *Terminal { return wm.slots[i] }

func (wm *WindowManager) countHorizontalAt(y, tolerance int) int {
	count := 0
	for _, t := range wm.slots {
		if t.Active && t.Rect.Y >= y-tolerance && t.Rect.Y <= y+tolerance {
			count++
		}
	}
	return count
}

// New opens a new terminal, splitting the currently selected one. It
// returns the new slot index and true, or -1 and false if the pool is
// full or the split could not satisfy the minimum cell size in either
// direction.
func (wm *WindowManager) New() (int, bool) {
	if wm.windowCount >= MaxWindows {
		return -1, false
	}

	newIdx := -1
	for i, t := range wm.slots {
		if !t.Active {
			newIdx = i
			break
		}
	}
	if newIdx < 0 {
		return -1, false
	}

	wm.slots[newIdx] = newTerminal()
	newTerm := wm.slots[newIdx]

	if wm.windowCount == 0 {
		newTerm.Rect = Rect{
			X:      screenMargin,
			Y:      screenMargin,
			Width:  wm.screenWidth - 2*screenMargin,
			Height: wm.screenHeight - 2*screenMargin,
		}
		newTerm.SplitDir = SplitNone
	} else {
		selectedIdx := wm.selected
		if !wm.slots[selectedIdx].Active {
			for i, t := range wm.slots {
				if t.Active {
					selectedIdx = i
					wm.selected = i
					break
				}
			}
		}
		selected := wm.slots[selectedIdx]
		orig := selected.Rect

		horizontalCount := wm.countHorizontalAt(orig.Y, 5)
		splitDir := SplitVertical
		if orig.Width <= orig.Height {
			splitDir = SplitHorizontal
		}
		if horizontalCount >= MaxHorizontalTerminals {
			splitDir = SplitHorizontal
		}

		if splitDir == SplitVertical {
			halfWidth := orig.Width/2 - splitBorder
			if halfWidth < minCellDimension {
				splitDir = SplitHorizontal
			} else {
				newTerm.Rect = Rect{X: orig.X, Y: orig.Y, Width: halfWidth, Height: orig.Height}
				newTerm.SplitDir = SplitVertical
				selected.Rect.X = orig.X + halfWidth + 2*splitBorder
				selected.Rect.Width = halfWidth
				selected.SplitDir = SplitVertical
			}
		}

		if splitDir == SplitHorizontal {
			halfHeight := orig.Height/2 - splitBorder
			if halfHeight < minCellDimension {
				newTerm.Active = false
				wm.slots[newIdx] = newTerminal()
				return -1, false
			}
			newTerm.Rect = Rect{X: orig.X, Y: orig.Y, Width: orig.Width, Height: halfHeight}
			newTerm.SplitDir = SplitHorizontal
			selected.Rect.Y = orig.Y + halfHeight + 2*splitBorder
			selected.Rect.Height = halfHeight
			selected.SplitDir = SplitHorizontal
		}
	}

	newTerm.Active = true
	wm.activeTerminal = newIdx
	wm.selected = newIdx
	wm.windowCount++
	return newIdx, true
}

// Close closes the selected terminal and re-tiles whatever remains.
func (wm *WindowManager) Close() bool {
	if wm.windowCount == 0 {
		return false
	}
	toClose := wm.selected
	if !wm.slots[toClose].Active {
		toClose = wm.activeTerminal
		wm.selected = wm.activeTerminal
	}
	if !wm.slots[toClose].Active {
		return false
	}

	wm.slots[toClose].Active = false
	wm.windowCount--

	newSelected := -1
	for i, t := range wm.slots {
		if t.Active {
			newSelected = i
			break
		}
	}
	if newSelected >= 0 {
		wm.selected = newSelected
		wm.activeTerminal = newSelected
	} else {
		wm.selected = 0
		wm.activeTerminal = 0
	}

	wm.retile()
	return true
}

// retile re-lays-out every active terminal as a max-4-column grid, with
// a coverage sanity check falling back to... itself: this
// implementation computes the grid directly (no incremental layout to
// diverge), so the "full redraw fallback" is expressed as forcing the
// fullscreen/grid geometry rather than leaving stale rectangles in
// place. CoverageOK reports whether a caller-observed render would have
// needed that fallback.
func (wm *WindowManager) retile() {
	var active []int
	for i, t := range wm.slots {
		if t.Active {
			active = append(active, i)
		}
	}
	if len(active) == 0 {
		return
	}
	if len(active) == 1 {
		wm.slots[active[0]].Rect = Rect{
			X:      screenMargin,
			Y:      screenMargin,
			Width:  wm.screenWidth - 2*screenMargin,
			Height: wm.screenHeight - 2*screenMargin,
		}
		wm.slots[active[0]].SplitDir = SplitNone
		return
	}

	cols := len(active)
	if cols > MaxHorizontalTerminals {
		cols = MaxHorizontalTerminals
	}
	rows := (len(active) + cols - 1) / cols

	cellWidth := (wm.screenWidth - 2*screenMargin - splitBorder*(cols-1)) / cols
	cellHeight := (wm.screenHeight - 2*screenMargin - splitBorder*(rows-1)) / rows
	if cellWidth < minCellDimension {
		cellWidth = minCellDimension
	}
	if cellHeight < minCellDimension {
		cellHeight = minCellDimension
	}

	dir := SplitHorizontal
	if cols > 1 {
		dir = SplitVertical
	}

	for i, idx := range active {
		col := i % cols
		row := i / cols
		wm.slots[idx].Rect = Rect{
			X:      screenMargin + col*(cellWidth+splitBorder),
			Y:      screenMargin + row*(cellHeight+splitBorder),
			Width:  cellWidth,
			Height: cellHeight,
		}
		wm.slots[idx].SplitDir = dir
	}
}

// CoverageOK reports whether the active terminals' combined area covers
// at least 70% of the usable screen area and every rectangle is within
// bounds and at least minCellDimension on each side — the sanity check
// that gates whether a tiling result is acceptable or must be replaced
// by a full redraw.
func (wm *WindowManager) CoverageOK() bool {
	usableWidth := wm.screenWidth - 2*screenMargin
	usableHeight := wm.screenHeight - 2*screenMargin
	screenArea := usableWidth * usableHeight
	if screenArea <= 0 {
		return false
	}

	totalArea := 0
	for _, t := range wm.slots {
		if !t.Active {
			continue
		}
		r := t.Rect
		if r.X < 0 || r.Y < 0 || r.right() > wm.screenWidth || r.bottom() > wm.screenHeight {
			return false
		}
		if r.Width < minCellDimension || r.Height < minCellDimension {
			return false
		}
		totalArea += r.Width * r.Height
	}

	coverage := (totalArea * 100) / screenArea
	if coverage < 70 && wm.windowCount > 1 {
		return false
	}
	return true
}
