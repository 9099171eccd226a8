package builtins

import (
	"strings"

	"github.com/tilixi/tilixi/internal/shell"
	"github.com/tilixi/tilixi/internal/vfsfs"
)

// readUsernameFromPasswd reads the first colon-delimited field of
// /etc/passwd, used to expand a bare "~" in cd's argument.
func readUsernameFromPasswd(v *vfsfs.Vfs) (string, bool) {
	f, err := v.Open("/etc/passwd", vfsfs.ORead)
	if err != nil {
		return "", false
	}
	defer v.Close(f)
	buf := make([]byte, 127)
	n, _ := v.Read(f, buf)
	if n <= 0 {
		return "", false
	}
	line := string(buf[:n])
	if idx := strings.IndexByte(line, '\n'); idx >= 0 {
		line = line[:idx]
	}
	user := line
	if idx := strings.IndexByte(line, ':'); idx >= 0 {
		user = line[:idx]
	}
	if user == "" {
		return "", false
	}
	return user, true
}

// Cd implements `cd`.
func Cd(ctx *shell.Context, argv []string) shell.Code {
	if len(argv) == 1 {
		root, err := ctx.Vfs.Resolve("/")
		if err != nil {
			shell.Errorf(ctx.Term, "cd: root directory not found")
			return shell.ENOENT
		}
		ctx.Vfs.Release(ctx.Term.Cwd)
		ctx.Term.Cwd = root
		return shell.OK
	}
	if len(argv) > 2 {
		shell.Errorf(ctx.Term, "cd: too many arguments")
		return shell.EINVAL
	}

	path := argv[1]
	if path == "~" || strings.HasPrefix(path, "~/") {
		rest := path[1:]
		if user, ok := readUsernameFromPasswd(ctx.Vfs); ok {
			path = "/home/" + user + rest
		} else {
			path = "/home" + rest
		}
	}

	newCwd, err := ctx.Vfs.ResolveAt(ctx.Term.Cwd, path)
	if err != nil {
		shell.Errorf(ctx.Term, "cd: %s: no such file or directory", path)
		return shell.ENOENT
	}
	if !newCwd.IsDir() {
		shell.Errorf(ctx.Term, "cd: %s: not a directory", path)
		ctx.Vfs.Release(newCwd)
		return shell.ENOTDIR
	}
	ctx.Vfs.Release(ctx.Term.Cwd)
	ctx.Term.Cwd = newCwd
	return shell.OK
}

// Pwd implements `pwd`.
func Pwd(ctx *shell.Context, argv []string) shell.Code {
	if len(argv) > 1 {
		shell.Errorf(ctx.Term, "pwd: too many arguments")
		return shell.EINVAL
	}
	if ctx.Term.Cwd == nil {
		ctx.Term.WriteString("/\n")
		return shell.OK
	}
	ctx.Term.WriteString(ctx.Term.Cwd.Path)
	ctx.Term.Newline()
	return shell.OK
}
