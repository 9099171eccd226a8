// Package builtins implements the shell's built-in command set: one
// file per original_source/src/shell/cmds/*.c, reusing that file's argv
// semantics and error-message prefixes against the Go VFS/termui ports.
package builtins

import (
	"strings"

	"github.com/tilixi/tilixi/internal/shell"
	"github.com/tilixi/tilixi/internal/vfsfs"
)

func trimTrailingSlashes(p string) string {
	for len(p) > 1 && p[len(p)-1] == '/' {
		p = p[:len(p)-1]
	}
	return p
}

func nameHasExtension(name string) bool {
	if name == "" {
		return false
	}
	idx := strings.LastIndex(name, ".")
	return idx > 0
}

func basenameFromPath(p string) string {
	trimmed := trimTrailingSlashes(p)
	idx := strings.LastIndex(trimmed, "/")
	name := trimmed
	if idx >= 0 {
		name = trimmed[idx+1:]
	}
	return name
}

// resolveParentAndName decomposes path into its containing directory
// (resolved relative to cwd, still referenced on success) and final
// path component, mirroring every cmd_*.c's repeated
// resolve_parent_and_name helper: trims trailing slashes, rejects "/"
// itself and a final "." or "..", and resolves the directory portion
// relative to cwd rather than always from the filesystem root.
func resolveParentAndName(v *vfsfs.Vfs, cwd *vfsfs.Node, p string) (*vfsfs.Node, string, vfsfs.Errno) {
	trimmed := trimTrailingSlashes(p)
	if trimmed == "/" {
		return nil, "", vfsfs.Invalid
	}

	idx := strings.LastIndex(trimmed, "/")
	var dirPart, name string
	if idx < 0 {
		name = trimmed
	} else {
		dirPart = trimmed[:idx]
		name = trimmed[idx+1:]
		if dirPart == "" {
			dirPart = "/"
		}
	}
	if name == "" {
		return nil, "", vfsfs.Invalid
	}

	var parent *vfsfs.Node
	var err error
	if idx < 0 {
		if cwd != nil {
			parent, err = v.ResolveAt(cwd, ".")
		} else {
			parent, err = v.Resolve("/")
		}
	} else {
		parent, err = v.ResolveAt(cwd, dirPart)
	}
	if err != nil {
		return nil, "", vfsfs.AsErrno(err)
	}

	if name == "." || name == ".." {
		v.Release(parent)
		return nil, "", vfsfs.Invalid
	}
	if !parent.IsDir() {
		v.Release(parent)
		return nil, "", vfsfs.NotDir
	}
	return parent, name, vfsfs.Ok
}

// errnoToCode maps the VFS error taxonomy onto the shell's exit codes.
func errnoToCode(e vfsfs.Errno) shell.Code {
	switch e {
	case vfsfs.NotFound:
		return shell.ENOENT
	case vfsfs.NotDir:
		return shell.ENOTDIR
	case vfsfs.Invalid:
		return shell.EINVAL
	case vfsfs.Access, vfsfs.ReadOnly, vfsfs.NotPermitted:
		return shell.EPERM
	default:
		return shell.ERR
	}
}
