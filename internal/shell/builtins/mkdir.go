package builtins

import (
	"strings"

	"github.com/tilixi/tilixi/internal/shell"
	"github.com/tilixi/tilixi/internal/vfsfs"
)

func hasNonSlash(s string) bool {
	for _, c := range s {
		if c != '/' {
			return true
		}
	}
	return false
}

func mkdirSingle(ctx *shell.Context, path string, parents bool) shell.Code {
	if path == "" {
		shell.Errorf(ctx.Term, "mkdir: missing operand")
		return shell.EINVAL
	}

	var current *vfsfs.Node
	var err error
	if strings.HasPrefix(path, "/") {
		current, err = ctx.Vfs.Resolve("/")
	} else if ctx.Term.Cwd != nil {
		current, err = ctx.Vfs.ResolveAt(ctx.Term.Cwd, ".")
	} else {
		current, err = ctx.Vfs.Resolve("/")
	}
	if err != nil || current == nil {
		shell.Errorf(ctx.Term, "mkdir: no filesystem mounted")
		return shell.ERR
	}

	cursor := strings.TrimLeft(path, "/")
	if cursor == "" {
		ctx.Vfs.Release(current)
		shell.Errorf(ctx.Term, "mkdir: %s: file exists", path)
		return shell.EINVAL
	}

	for cursor != "" {
		slashIdx := strings.IndexByte(cursor, '/')
		var component, rest string
		isLast := false
		if slashIdx < 0 {
			component = cursor
			isLast = true
		} else {
			component = cursor[:slashIdx]
			rest = cursor[slashIdx+1:]
			isLast = !hasNonSlash(rest)
		}

		advance := func() bool {
			if slashIdx < 0 {
				return false
			}
			cursor = rest
			return true
		}

		if component == "" {
			if !advance() {
				break
			}
			continue
		}
		if component == "." {
			if !advance() {
				break
			}
			continue
		}
		if component == ".." {
			next, nerr := ctx.Vfs.ResolveAt(current, "..")
			if nerr != nil {
				ctx.Vfs.Release(current)
				shell.Errorf(ctx.Term, "mkdir: %s: no such file or directory", path)
				return shell.ENOENT
			}
			ctx.Vfs.Release(current)
			current = next
			if !advance() {
				break
			}
			continue
		}

		next, nerr := ctx.Vfs.ResolveAt(current, component)
		if nerr == nil {
			if !next.IsDir() {
				shell.Errorf(ctx.Term, "mkdir: %s: not a directory", component)
				ctx.Vfs.Release(next)
				ctx.Vfs.Release(current)
				return shell.ENOTDIR
			}
			if isLast && !parents {
				ctx.Vfs.Release(next)
				ctx.Vfs.Release(current)
				shell.Errorf(ctx.Term, "mkdir: %s: file exists", path)
				return shell.EINVAL
			}
			ctx.Vfs.Release(current)
			current = next
		} else {
			if !parents && !isLast {
				ctx.Vfs.Release(current)
				shell.Errorf(ctx.Term, "mkdir: %s: no such file or directory", path)
				return shell.ENOENT
			}
			if nameHasExtension(component) {
				shell.Errorf(ctx.Term, "mkdir: %s: invalid directory name", component)
				ctx.Vfs.Release(current)
				return shell.EINVAL
			}
			created, cerr := ctx.Vfs.DirCreate(current, component, vfsfs.TypeDirectory)
			if cerr != nil {
				ctx.Vfs.Release(current)
				shell.Errorf(ctx.Term, "mkdir: %s: failed to create directory", path)
				return shell.ERR
			}
			ctx.Vfs.Release(current)
			current = created
		}

		if !advance() {
			break
		}
	}

	ctx.Vfs.Release(current)
	return shell.OK
}

// Mkdir implements `mkdir [-p] PATH...`.
func Mkdir(ctx *shell.Context, argv []string) shell.Code {
	if len(argv) < 2 {
		shell.Errorf(ctx.Term, "mkdir: missing operand")
		return shell.EINVAL
	}

	parents := false
	pathsFound := false
	for _, arg := range argv[1:] {
		if arg == "-p" {
			parents = true
			continue
		}
		if strings.HasPrefix(arg, "-") {
			shell.Errorf(ctx.Term, "mkdir: invalid option -- %s", arg)
			return shell.EINVAL
		}
		pathsFound = true
		if code := mkdirSingle(ctx, arg, parents); code != shell.OK {
			return code
		}
	}
	if !pathsFound {
		shell.Errorf(ctx.Term, "mkdir: missing operand")
		return shell.EINVAL
	}
	return shell.OK
}
