package builtins

import (
	"github.com/tilixi/tilixi/internal/shell"
	"github.com/tilixi/tilixi/internal/vfsfs"
)

// Touch implements `touch`. The original leaves this command an
// unimplemented stub ("TODO: implement touch functionality"); spec.md's
// argv table requires PATH... creates empty files, so this port
// completes it: an existing path is left untouched, a missing one is
// created empty via the same resolve-parent-and-create path cat's `>`
// redirection uses.
func Touch(ctx *shell.Context, argv []string) shell.Code {
	if len(argv) < 2 {
		shell.Errorf(ctx.Term, "touch: missing file operand")
		return shell.EINVAL
	}

	for _, path := range argv[1:] {
		if n, err := ctx.Vfs.ResolveAt(ctx.Term.Cwd, path); err == nil {
			ctx.Vfs.Release(n)
			continue
		}

		parent, name, errno := resolveParentAndName(ctx.Vfs, ctx.Term.Cwd, path)
		if errno != vfsfs.Ok {
			shell.Errorf(ctx.Term, "touch: %s: invalid path", path)
			return errnoToCode(errno)
		}
		created, cerr := ctx.Vfs.DirCreate(parent, name, vfsfs.TypeFile)
		ctx.Vfs.Release(parent)
		if cerr != nil {
			shell.Errorf(ctx.Term, "touch: %s: failed to create file", path)
			return shell.ERR
		}
		ctx.Vfs.Release(created)
	}
	return shell.OK
}
