package builtins

import (
	"github.com/tilixi/tilixi/internal/shell"
	"github.com/tilixi/tilixi/internal/vfsfs"
)

func mvSingle(ctx *shell.Context, srcPath, dstPath string, dstIsDir bool) shell.Code {
	srcNode, err := ctx.Vfs.ResolveAt(ctx.Term.Cwd, srcPath)
	if err != nil {
		shell.Errorf(ctx.Term, "mv: %s: no such file or directory", srcPath)
		return shell.ENOENT
	}

	srcParent, srcName, errno := resolveParentAndName(ctx.Vfs, ctx.Term.Cwd, srcPath)
	if errno != vfsfs.Ok {
		ctx.Vfs.Release(srcNode)
		shell.Errorf(ctx.Term, "mv: %s: invalid path", srcPath)
		return shell.EINVAL
	}

	var dstDir *vfsfs.Node
	var dstName string
	if dstIsDir {
		d, derr := ctx.Vfs.ResolveAt(ctx.Term.Cwd, dstPath)
		if derr != nil {
			ctx.Vfs.Release(srcNode)
			ctx.Vfs.Release(srcParent)
			shell.Errorf(ctx.Term, "mv: %s: no such file or directory", dstPath)
			return shell.ENOENT
		}
		if !d.IsDir() {
			ctx.Vfs.Release(srcNode)
			ctx.Vfs.Release(srcParent)
			ctx.Vfs.Release(d)
			shell.Errorf(ctx.Term, "mv: %s: not a directory", dstPath)
			return shell.ENOTDIR
		}
		dstDir = d
		dstName = basenameFromPath(srcPath)
		if dstName == "" {
			ctx.Vfs.Release(srcNode)
			ctx.Vfs.Release(srcParent)
			ctx.Vfs.Release(dstDir)
			shell.Errorf(ctx.Term, "mv: %s: invalid path", srcPath)
			return shell.EINVAL
		}
	} else {
		d, name, derrno := resolveParentAndName(ctx.Vfs, ctx.Term.Cwd, dstPath)
		if derrno != vfsfs.Ok {
			ctx.Vfs.Release(srcNode)
			ctx.Vfs.Release(srcParent)
			if derrno == vfsfs.NotFound {
				shell.Errorf(ctx.Term, "mv: %s: no such file or directory", dstPath)
				return shell.ENOENT
			}
			shell.Errorf(ctx.Term, "mv: %s: invalid path", dstPath)
			return shell.EINVAL
		}
		dstDir, dstName = d, name
	}

	if srcNode.IsDir() && nameHasExtension(dstName) {
		ctx.Vfs.Release(dstDir)
		ctx.Vfs.Release(srcParent)
		ctx.Vfs.Release(srcNode)
		shell.Errorf(ctx.Term, "mv: %s: invalid directory name", dstName)
		return shell.EINVAL
	}

	dstNode, dstErr := ctx.Vfs.ResolveAt(dstDir, dstName)
	if dstErr == nil {
		if dstNode == srcNode {
			ctx.Vfs.Release(dstNode)
			ctx.Vfs.Release(dstDir)
			ctx.Vfs.Release(srcParent)
			ctx.Vfs.Release(srcNode)
			return shell.OK
		}
		if dstNode.IsDir() {
			ctx.Vfs.Release(dstNode)
			ctx.Vfs.Release(dstDir)
			ctx.Vfs.Release(srcParent)
			ctx.Vfs.Release(srcNode)
			shell.Errorf(ctx.Term, "mv: %s: is a directory", dstName)
			return shell.ENOTDIR
		}
		if srcNode.IsDir() {
			ctx.Vfs.Release(dstNode)
			ctx.Vfs.Release(dstDir)
			ctx.Vfs.Release(srcParent)
			ctx.Vfs.Release(srcNode)
			shell.Errorf(ctx.Term, "mv: %s: not a directory", dstPath)
			return shell.ENOTDIR
		}
		ctx.Vfs.Release(dstNode)
		if rerr := ctx.Vfs.DirRemove(dstDir, dstName); rerr != nil {
			ctx.Vfs.Release(dstDir)
			ctx.Vfs.Release(srcParent)
			ctx.Vfs.Release(srcNode)
			shell.Errorf(ctx.Term, "mv: %s: failed to remove", dstPath)
			return shell.ERR
		}
	}

	mvErr := ctx.Vfs.DirRename(srcParent, srcName, dstDir, dstName)

	ctx.Vfs.Release(dstDir)
	ctx.Vfs.Release(srcParent)
	ctx.Vfs.Release(srcNode)

	if mvErr != nil {
		shell.Errorf(ctx.Term, "mv: %s: failed to move", srcPath)
		return shell.ERR
	}
	return shell.OK
}

// Mv implements `mv SRC... DST`.
func Mv(ctx *shell.Context, argv []string) shell.Code {
	if len(argv) < 3 {
		shell.Errorf(ctx.Term, "mv: missing file operand")
		return shell.EINVAL
	}

	srcCount := len(argv) - 2
	target := argv[len(argv)-1]

	targetTrailingSlash := len(target) > 1 && target[len(target)-1] == '/'
	targetIsDir := false

	if tn, err := ctx.Vfs.ResolveAt(ctx.Term.Cwd, target); err == nil {
		targetIsDir = tn.IsDir()
		ctx.Vfs.Release(tn)
	} else if targetTrailingSlash {
		shell.Errorf(ctx.Term, "mv: %s: not a directory", target)
		return shell.ENOTDIR
	}

	if srcCount > 1 {
		if !targetIsDir {
			shell.Errorf(ctx.Term, "mv: %s: not a directory", target)
			return shell.ENOTDIR
		}
		for _, src := range argv[1 : len(argv)-1] {
			if code := mvSingle(ctx, src, target, true); code != shell.OK {
				return code
			}
		}
		return shell.OK
	}

	return mvSingle(ctx, argv[1], target, targetIsDir)
}
