package builtins

import (
	"github.com/tilixi/tilixi/internal/shell"
	"github.com/tilixi/tilixi/internal/vfsfs"
)

func rmDirContents(ctx *shell.Context, dirNode *vfsfs.Node, force bool) shell.Code {
	iter, err := ctx.Vfs.DirIterCreateNode(dirNode)
	if err != nil {
		shell.Errorf(ctx.Term, "rm: directory iteration not supported")
		return shell.ERR
	}
	defer ctx.Vfs.DirIterDestroy(iter)

	for {
		ok, err := ctx.Vfs.DirIterNext(iter)
		if err != nil {
			shell.Errorf(ctx.Term, "rm: error reading directory")
			return shell.ERR
		}
		if !ok {
			break
		}
		name := iter.Name
		if name == "" || name == "." || name == ".." {
			continue
		}
		if code := rmEntryFromParent(ctx, dirNode, name, true, force); code != shell.OK {
			return code
		}
	}
	return shell.OK
}

func rmEntryFromParent(ctx *shell.Context, parent *vfsfs.Node, name string, recursive, force bool) shell.Code {
	node, err := ctx.Vfs.ResolveAt(parent, name)
	if err != nil {
		if force {
			return shell.OK
		}
		shell.Errorf(ctx.Term, "rm: %s: no such file or directory", name)
		return shell.ENOENT
	}

	if node.IsDir() {
		if !recursive {
			shell.Errorf(ctx.Term, "rm: %s: is a directory", name)
			ctx.Vfs.Release(node)
			return shell.EINVAL
		}
		if code := rmDirContents(ctx, node, force); code != shell.OK {
			ctx.Vfs.Release(node)
			return code
		}
	}

	rerr := ctx.Vfs.DirRemove(parent, name)
	ctx.Vfs.Release(node)
	if rerr != nil {
		if force {
			return shell.OK
		}
		shell.Errorf(ctx.Term, "rm: %s: failed to remove", name)
		return shell.ERR
	}
	return shell.OK
}

func rmPath(ctx *shell.Context, path string, recursive, force bool) shell.Code {
	parent, name, errno := resolveParentAndName(ctx.Vfs, ctx.Term.Cwd, path)
	if errno != vfsfs.Ok {
		if force && errno == vfsfs.NotFound {
			return shell.OK
		}
		if errno == vfsfs.NotFound {
			shell.Errorf(ctx.Term, "rm: %s: no such file or directory", path)
			return shell.ENOENT
		}
		shell.Errorf(ctx.Term, "rm: %s: invalid path", path)
		return shell.EINVAL
	}

	code := rmEntryFromParent(ctx, parent, name, recursive, force)
	ctx.Vfs.Release(parent)
	return code
}

// Rm implements `rm [-r|-R] [-f] [--] PATH...`.
func Rm(ctx *shell.Context, argv []string) shell.Code {
	if len(argv) < 2 {
		shell.Errorf(ctx.Term, "rm: missing operand")
		return shell.EINVAL
	}

	recursive := false
	force := false
	pathsFound := false
	parsingOpts := true

	for _, arg := range argv[1:] {
		if parsingOpts && arg == "--" {
			parsingOpts = false
			continue
		}
		if parsingOpts && len(arg) > 1 && arg[0] == '-' {
			switch arg {
			case "-r", "-R":
				recursive = true
				continue
			case "-f":
				force = true
				continue
			case "-rf", "-fr", "-Rf", "-fR":
				recursive = true
				force = true
				continue
			}
			shell.Errorf(ctx.Term, "rm: invalid option -- %s", arg)
			return shell.EINVAL
		}

		parsingOpts = false
		pathsFound = true
		if code := rmPath(ctx, arg, recursive, force); code != shell.OK {
			return code
		}
	}

	if !pathsFound {
		shell.Errorf(ctx.Term, "rm: missing operand")
		return shell.EINVAL
	}
	return shell.OK
}
