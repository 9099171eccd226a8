package termui

import (
	"testing"

	"github.com/google/go-cmp/cmp"
)

// TestWindowManagerFillsToMaxWithCoverage exercises the window-geometry
// coverage invariant from spec.md §8: after any sequence of opens, the
// active terminals cover at least 70% of the usable area, stay in
// bounds and never shrink below the minimum cell size.
func TestWindowManagerFillsToMaxWithCoverage(t *testing.T) {
	wm := NewWindowManager(2000, 2000)
	for i := 0; i < MaxWindows; i++ {
		if _, ok := wm.New(); !ok {
			t.Fatalf("New() #%d failed, want success on a large canvas", i)
		}
		if !wm.CoverageOK() {
			t.Fatalf("CoverageOK() false after opening terminal #%d", i+1)
		}
	}
	if wm.Count() != MaxWindows {
		t.Fatalf("Count() = %d, want %d", wm.Count(), MaxWindows)
	}
}

// TestWindowManagerNinthOpenIsNoop covers the boundary behavior:
// opening terminal #9 when the pool is already full is a no-op and
// window_count stays at 8.
func TestWindowManagerNinthOpenIsNoop(t *testing.T) {
	wm := NewWindowManager(2000, 2000)
	for i := 0; i < MaxWindows; i++ {
		if _, ok := wm.New(); !ok {
			t.Fatalf("New() #%d failed", i)
		}
	}
	if _, ok := wm.New(); ok {
		t.Fatal("New() succeeded past MaxWindows")
	}
	if wm.Count() != MaxWindows {
		t.Fatalf("Count() = %d, want %d after a refused 9th open", wm.Count(), MaxWindows)
	}
}

// TestWindowManagerSplitBelowMinimumFailsGracefully covers the boundary
// behavior: splitting a cell smaller than the minimum cell dimension
// fails gracefully rather than producing a degenerate rectangle, and
// the terminal count does not advance.
func TestWindowManagerSplitBelowMinimumFailsGracefully(t *testing.T) {
	wm := NewWindowManager(160, 160)

	for i := 0; i < 3; i++ {
		if _, ok := wm.New(); !ok {
			t.Fatalf("New() #%d failed, want success", i)
		}
	}
	before := wm.Count()

	if _, ok := wm.New(); ok {
		t.Fatal("New() succeeded splitting a cell below the minimum dimension")
	}
	if wm.Count() != before {
		t.Fatalf("Count() changed after a refused split: got %d, want %d", wm.Count(), before)
	}
}

// TestRetileFullscreensSoleSurvivor uses go-cmp to assert the exact
// Rect a lone remaining terminal is retiled to after its sibling
// closes: the full usable canvas, margin-inset.
func TestRetileFullscreensSoleSurvivor(t *testing.T) {
	wm := NewWindowManager(800, 600)
	wm.New()
	wm.New()

	if !wm.Close() {
		t.Fatal("Close() reported failure with two open terminals")
	}
	if wm.Count() != 1 {
		t.Fatalf("Count() = %d, want 1 after closing one of two terminals", wm.Count())
	}

	got := wm.Active().Rect
	want := Rect{X: screenMargin, Y: screenMargin, Width: 800 - 2*screenMargin, Height: 600 - 2*screenMargin}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Fatalf("retiled Rect mismatch (-want +got):\n%s", diff)
	}
	if wm.Active().SplitDir != SplitNone {
		t.Fatalf("SplitDir = %v, want SplitNone for the sole survivor", wm.Active().SplitDir)
	}
}

// TestRetileNoOverlapAmongActiveTerminals asserts the companion half of
// the coverage invariant: no two active terminals' rectangles overlap
// except on shared borders.
func TestRetileNoOverlapAmongActiveTerminals(t *testing.T) {
	wm := NewWindowManager(1600, 1200)
	for i := 0; i < 5; i++ {
		wm.New()
	}

	var rects []Rect
	for i := 0; i < MaxWindows; i++ {
		term := wm.At(i)
		if term.Active {
			rects = append(rects, term.Rect)
		}
	}

	for i := 0; i < len(rects); i++ {
		for j := i + 1; j < len(rects); j++ {
			a, b := rects[i], rects[j]
			if a.X < b.right() && b.X < a.right() && a.Y < b.bottom() && b.Y < a.bottom() {
				t.Fatalf("rects overlap: %+v and %+v", a, b)
			}
		}
	}
}
