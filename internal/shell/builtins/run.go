package builtins

import (
	"strings"

	"github.com/tilixi/tilixi/internal/script"
	"github.com/tilixi/tilixi/internal/shell"
	"github.com/tilixi/tilixi/internal/vfsfs"
)

func loadScriptLines(ctx *shell.Context, f *vfsfs.File) ([]string, error) {
	var all []byte
	buf := make([]byte, 128)
	for {
		n, err := ctx.Vfs.Read(f, buf)
		if err != nil {
			return nil, err
		}
		if n == 0 {
			break
		}
		all = append(all, buf[:n]...)
	}

	text := strings.ReplaceAll(string(all), "\r", "")
	lines := strings.Split(text, "\n")
	if len(lines) > 0 && lines[len(lines)-1] == "" && len(all) > 0 && all[len(all)-1] == '\n' {
		lines = lines[:len(lines)-1]
	}
	if len(lines) == 0 {
		lines = []string{""}
	}
	return lines, nil
}

// Run implements `run PATH`, interpreting PATH as a shell script.
func Run(ctx *shell.Context, argv []string) shell.Code {
	if len(argv) < 2 {
		shell.Errorf(ctx.Term, "run: missing program name")
		return shell.EINVAL
	}
	if len(argv) > 2 {
		shell.Errorf(ctx.Term, "run: too many arguments")
		return shell.EINVAL
	}

	path := argv[1]
	node, err := ctx.Vfs.ResolveAt(ctx.Term.Cwd, path)
	if err != nil {
		shell.Errorf(ctx.Term, "run: %s: no such file or directory", path)
		return shell.ENOENT
	}
	if node.Type != vfsfs.TypeFile {
		shell.Errorf(ctx.Term, "run: %s: not a file", path)
		ctx.Vfs.Release(node)
		return shell.EINVAL
	}
	f, ferr := ctx.Vfs.OpenNode(node, vfsfs.ORead)
	ctx.Vfs.Release(node)
	if ferr != nil {
		shell.Errorf(ctx.Term, "run: %s: unable to open", path)
		return shell.ERR
	}

	lines, rerr := loadScriptLines(ctx, f)
	ctx.Vfs.Close(f)
	if rerr != nil {
		shell.Errorf(ctx.Term, "run: %s: read error", path)
		return shell.ERR
	}

	registry, ok := ctx.Extra["registry"].(*shell.Registry)
	if !ok {
		shell.Errorf(ctx.Term, "run: script execution not available")
		return shell.ENOTSUP
	}

	script.New(registry, ctx).Run(lines)
	return shell.OK
}
