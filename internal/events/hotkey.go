package events

import "sync"

const maxHotkeys = 16

type hotkeyBinding struct {
	modifiers uint8
	key       KeyCode
	action    string
}

// HotkeyTable maps modifier+key combinations to action names, checked
// before a key event is dispatched to the active terminal.
type HotkeyTable struct {
	mu       sync.Mutex
	bindings [maxHotkeys]hotkeyBinding
	count    int
}

// NewHotkeyTable constructs an empty table.
func NewHotkeyTable() *HotkeyTable {
	return &HotkeyTable{}
}

// Register adds a binding, silently ignoring the call once the table
// is full.
func (h *HotkeyTable) Register(modifiers uint8, key KeyCode, action string) {
	h.mu.Lock()
	defer h.mu.Unlock()
	if h.count >= maxHotkeys {
		return
	}
	h.bindings[h.count] = hotkeyBinding{modifiers: modifiers, key: key, action: action}
	h.count++
}

// Reset clears all bindings.
func (h *HotkeyTable) Reset() {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.count = 0
}

// Find returns the action bound to evt and true, or ("", false) if no
// binding's modifier bits are all present in evt's modifiers. A
// binding matches when evt carries at least the binding's modifiers
// (extra modifiers on the event do not prevent a match), mirroring the
// firmware's subset check.
func (h *HotkeyTable) Find(evt KeyEvent) (string, bool) {
	h.mu.Lock()
	defer h.mu.Unlock()
	for i := 0; i < h.count; i++ {
		b := h.bindings[i]
		if b.key != evt.Key {
			continue
		}
		if evt.Modifiers&b.modifiers == b.modifiers {
			return b.action, true
		}
	}
	return "", false
}

// RegisterDefaults installs the core's default bindings: Shift+A opens
// a new terminal, Shift+D closes the selected one.
func (h *HotkeyTable) RegisterDefaults() {
	h.Register(ModShift, KeyA, "terminal.new")
	h.Register(ModShift, KeyD, "terminal.close")
}
