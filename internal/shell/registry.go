package shell

import (
	"github.com/tilixi/tilixi/internal/termui"
	"github.com/tilixi/tilixi/internal/vfsfs"
)

// Context bundles everything a built-in handler needs: the terminal it
// is running in, the VFS to resolve paths against, and the window
// manager for terminal-lifecycle commands (exit closes the terminal).
// Handlers that need kernel or config access receive them through
// fields set by the caller composing this package (see internal/shell/
// builtins for how each command narrows its dependencies).
type Context struct {
	Term *termui.Terminal
	Vfs  *vfsfs.Vfs
	WM   *termui.WindowManager

	// Extra carries additional, command-specific collaborators (the
	// registry for `run`, the sysconfig loader for `reload`, ...)
	// keyed by name, so this package stays independent of every
	// downstream package those builtins need.
	Extra map[string]interface{}
}

// Handler is a built-in command's implementation: argv[0] is the
// command name, argv[1:] are its arguments.
type Handler func(ctx *Context, argv []string) Code

// Entry is one registered built-in.
type Entry struct {
	Name    string
	Handler Handler
	Help    string
}

const maxBuiltins = 32

// Registry is the name-keyed built-in command table.
type Registry struct {
	entries []Entry
}

// NewRegistry constructs an empty registry.
func NewRegistry() *Registry {
	return &Registry{}
}

// Register adds a built-in. Registering the same name twice replaces
// the earlier entry.
func (r *Registry) Register(name string, h Handler, help string) {
	for i := range r.entries {
		if r.entries[i].Name == name {
			r.entries[i].Handler = h
			r.entries[i].Help = help
			return
		}
	}
	r.entries = append(r.entries, Entry{Name: name, Handler: h, Help: help})
}

// Find looks up a built-in by exact, case-sensitive name.
func (r *Registry) Find(name string) (Entry, bool) {
	for _, e := range r.entries {
		if e.Name == name {
			return e, true
		}
	}
	return Entry{}, false
}

// All returns every registered entry, in registration order.
func (r *Registry) All() []Entry {
	return r.entries
}

// Dispatch finds argv[0]'s handler and calls it. If no built-in matches,
// it reports "command not found: <name>" to ctx.Term and returns ERR.
func (r *Registry) Dispatch(ctx *Context, argv []string) Code {
	if len(argv) == 0 {
		return OK
	}
	e, ok := r.Find(argv[0])
	if !ok {
		Errorf(ctx.Term, "command not found: %s", argv[0])
		return ERR
	}
	return e.Handler(ctx, argv)
}
