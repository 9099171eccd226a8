package builtins

import (
	"strings"

	"github.com/tilixi/tilixi/internal/shell"
	"github.com/tilixi/tilixi/internal/vfsfs"
)

func hasRgb565Extension(path string) bool {
	dot := strings.LastIndexByte(path, '.')
	return dot >= 0 && path[dot:] == ".rgb565"
}

// Qimgv implements `qimgv PATH`, opening PATH (a .rgb565 file) in a new
// window's image-view overlay.
func Qimgv(ctx *shell.Context, argv []string) shell.Code {
	if len(argv) < 2 {
		shell.Errorf(ctx.Term, "qimgv: missing file operand")
		return shell.EINVAL
	}
	path := argv[1]
	if !hasRgb565Extension(path) {
		shell.Errorf(ctx.Term, "qimgv: expected .rgb565 file")
		return shell.EINVAL
	}

	node, err := ctx.Vfs.ResolveAt(ctx.Term.Cwd, path)
	if err != nil {
		shell.Errorf(ctx.Term, "qimgv: no such file: %s", path)
		return shell.ENOENT
	}
	if node.Type != vfsfs.TypeFile {
		ctx.Vfs.Release(node)
		shell.Errorf(ctx.Term, "qimgv: not a file: %s", path)
		return shell.EINVAL
	}
	absPath := node.Path
	ctx.Vfs.Release(node)

	idx, ok := ctx.WM.New()
	if !ok {
		shell.Errorf(ctx.Term, "qimgv: too many windows open")
		return shell.ERR
	}
	viewer := ctx.WM.At(idx)
	viewer.Clear()
	viewer.InputLen = 0
	viewer.InputPos = 0
	viewer.ImageViewActive = true
	viewer.ImageViewPath = absPath
	viewer.Fastfetch.Active = false

	return shell.OK
}
