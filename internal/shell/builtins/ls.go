package builtins

import (
	"github.com/tilixi/tilixi/internal/shell"
	"github.com/tilixi/tilixi/internal/termui"
)

// Ls implements `ls`. With no path it lists the current directory;
// entries are space-separated normally, newline-separated when the
// output is being captured (for a pipeline's downstream consumer).
func Ls(ctx *shell.Context, argv []string) shell.Code {
	if len(argv) > 2 {
		shell.Errorf(ctx.Term, "ls: too many arguments")
		return shell.EINVAL
	}

	dir := ctx.Term.Cwd
	owned := false
	if len(argv) == 2 {
		path := argv[1]
		n, err := ctx.Vfs.ResolveAt(ctx.Term.Cwd, path)
		if err != nil {
			shell.Errorf(ctx.Term, "ls: %s: no such file or directory", path)
			return shell.ENOENT
		}
		if !n.IsDir() {
			shell.Errorf(ctx.Term, "ls: %s: not a directory", path)
			ctx.Vfs.Release(n)
			return shell.ENOTDIR
		}
		dir = n
		owned = true
	} else if dir == nil {
		n, err := ctx.Vfs.Resolve("/")
		if err != nil {
			shell.Errorf(ctx.Term, "ls: no filesystem mounted")
			return shell.ERR
		}
		dir = n
	}
	if owned {
		defer ctx.Vfs.Release(dir)
	}

	iter, err := ctx.Vfs.DirIterCreateNode(dir)
	if err != nil {
		shell.Errorf(ctx.Term, "ls: directory iteration not supported")
		return shell.ERR
	}
	defer ctx.Vfs.DirIterDestroy(iter)

	useNewlines := termui.CaptureActive()
	count := 0
	for {
		ok, err := ctx.Vfs.DirIterNext(iter)
		if err != nil {
			shell.Errorf(ctx.Term, "ls: error reading directory")
			return shell.ERR
		}
		if !ok {
			break
		}
		if iter.Name == "" {
			continue
		}
		if useNewlines {
			ctx.Term.WriteString(iter.Name)
			ctx.Term.Newline()
		} else {
			if count > 0 {
				ctx.Term.WriteChar(' ')
			}
			ctx.Term.WriteString(iter.Name)
		}
		count++
	}
	if !useNewlines {
		ctx.Term.Newline()
	}
	return shell.OK
}
