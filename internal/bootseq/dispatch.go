package bootseq

import (
	"github.com/tilixi/tilixi/internal/events"
	"github.com/tilixi/tilixi/internal/shell"
	"github.com/tilixi/tilixi/internal/termui"
)

// PushKey enqueues a raw key press, standing in for the ISR that feeds
// the event queue on real hardware.
func (b *Boot) PushKey(key events.KeyCode, modifiers uint8) {
	b.Queue.Push(events.Event{Kind: events.KindKeyPressed, Key: key, Modifiers: modifiers})
}

// PumpEvents drains every currently queued event, routing each one the
// way event_processor.c's process() does: hotkeys get first refusal,
// and only a key with no matching hotkey reaches the active terminal.
func (b *Boot) PumpEvents() {
	for {
		evt := b.Queue.Pop()
		if evt.Kind == events.KindNone {
			return
		}
		b.dispatch(evt)
	}
}

func (b *Boot) dispatch(evt events.Event) {
	if evt.Kind != events.KindKeyPressed {
		return
	}
	keyEvt := events.KeyEvent{Key: evt.Key, Modifiers: evt.Modifiers}

	if action, ok := b.Hotkeys.Find(keyEvt); ok {
		b.executeAction(action)
		return
	}

	// Ctrl+Arrow window selection is not a named default hotkey in this
	// core, but some binding has to drive SelectDirection — wired here
	// directly rather than through the hotkey table since it addresses
	// a specific terminal (the arrow), not a named action string.
	if evt.Modifiers&events.ModCtrl != 0 {
		switch evt.Key {
		case events.KeyLeft:
			b.WM.SelectDirection(termui.DirLeft)
			return
		case events.KeyRight:
			b.WM.SelectDirection(termui.DirRight)
			return
		case events.KeyUp:
			b.WM.SelectDirection(termui.DirUp)
			return
		case events.KeyDown:
			b.WM.SelectDirection(termui.DirDown)
			return
		}
	}

	term := b.WM.Active()
	if term == nil {
		return
	}
	ctx := &shell.Context{
		Term: term,
		Vfs:  b.Vfs,
		WM:   b.WM,
		Extra: map[string]interface{}{
			"registry": b.Registry,
			"reload":   b.Config,
		},
	}
	shell.HandleKey(b.Registry, ctx, keyEvt)
}

func (b *Boot) executeAction(action string) {
	switch action {
	case "terminal.new":
		b.WM.New()
	case "terminal.close":
		b.WM.Close()
	default:
		b.Log.WithField("action", action).Warn("bootseq: unknown hotkey action")
	}
}
