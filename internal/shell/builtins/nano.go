package builtins

import (
	"github.com/tilixi/tilixi/internal/modes"
	"github.com/tilixi/tilixi/internal/shell"
	"github.com/tilixi/tilixi/internal/vfsfs"
)

// Nano implements `nano PATH`, handing the terminal's key input over to
// the interactive editor mode. PATH must already exist.
func Nano(ctx *shell.Context, argv []string) shell.Code {
	if len(argv) < 2 {
		shell.Errorf(ctx.Term, "nano: missing file operand")
		return shell.EINVAL
	}
	if len(argv) > 2 {
		shell.Errorf(ctx.Term, "nano: too many arguments")
		return shell.EINVAL
	}

	path := argv[1]
	_, errno := modes.StartNano(ctx.Term, ctx.Vfs, path)
	switch errno {
	case vfsfs.Ok:
		return shell.OK
	case vfsfs.NotFound:
		shell.Errorf(ctx.Term, "nano: %s: no such file or directory", path)
		return shell.ENOENT
	case vfsfs.Invalid:
		shell.Errorf(ctx.Term, "nano: %s: not a file", path)
		return shell.EINVAL
	default:
		shell.Errorf(ctx.Term, "nano: %s: unable to read file", path)
		return shell.ERR
	}
}
