package builtins

import (
	"github.com/tilixi/tilixi/internal/shell"
	"github.com/tilixi/tilixi/internal/vfsfs"
)

// dirIsEmpty reports whether dirNode, ignoring "." and "..", has any
// entries. A negative return indicates a read error.
func dirIsEmpty(ctx *shell.Context, dirNode *vfsfs.Node) int {
	iter, err := ctx.Vfs.DirIterCreateNode(dirNode)
	if err != nil {
		return -1
	}
	defer ctx.Vfs.DirIterDestroy(iter)

	for {
		ok, err := ctx.Vfs.DirIterNext(iter)
		if err != nil {
			return -1
		}
		if !ok {
			break
		}
		if iter.Name == "" || iter.Name == "." || iter.Name == ".." {
			continue
		}
		return 0
	}
	return 1
}

// Rmdir implements `rmdir PATH...`, refusing non-empty directories.
func Rmdir(ctx *shell.Context, argv []string) shell.Code {
	if len(argv) < 2 {
		shell.Errorf(ctx.Term, "rmdir: missing operand")
		return shell.EINVAL
	}

	for _, path := range argv[1:] {
		parent, name, errno := resolveParentAndName(ctx.Vfs, ctx.Term.Cwd, path)
		if errno != vfsfs.Ok {
			if errno == vfsfs.NotFound {
				shell.Errorf(ctx.Term, "rmdir: %s: no such file or directory", path)
				return shell.ENOENT
			}
			shell.Errorf(ctx.Term, "rmdir: %s: invalid path", path)
			return shell.EINVAL
		}

		node, err := ctx.Vfs.ResolveAt(parent, name)
		if err != nil {
			ctx.Vfs.Release(parent)
			shell.Errorf(ctx.Term, "rmdir: %s: no such file or directory", path)
			return shell.ENOENT
		}
		if !node.IsDir() {
			ctx.Vfs.Release(node)
			ctx.Vfs.Release(parent)
			shell.Errorf(ctx.Term, "rmdir: %s: not a directory", path)
			return shell.ENOTDIR
		}

		empty := dirIsEmpty(ctx, node)
		if empty <= 0 {
			ctx.Vfs.Release(node)
			ctx.Vfs.Release(parent)
			if empty == 0 {
				shell.Errorf(ctx.Term, "rmdir: %s: directory not empty", path)
			} else {
				shell.Errorf(ctx.Term, "rmdir: %s: error reading directory", path)
			}
			return shell.ERR
		}

		rerr := ctx.Vfs.DirRemove(parent, name)
		ctx.Vfs.Release(node)
		ctx.Vfs.Release(parent)
		if rerr != nil {
			shell.Errorf(ctx.Term, "rmdir: %s: failed to remove", path)
			return shell.ERR
		}
	}
	return shell.OK
}
