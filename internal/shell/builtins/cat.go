package builtins

import (
	"github.com/tilixi/tilixi/internal/shell"
	"github.com/tilixi/tilixi/internal/vfsfs"
)

func catWriteOutput(ctx *shell.Context, out *vfsfs.File, buf []byte) shell.Code {
	if out != nil {
		n, err := ctx.Vfs.Write(out, buf)
		if err != nil || n != len(buf) {
			return shell.ERR
		}
		return shell.OK
	}
	ctx.Term.WriteString(string(buf))
	return shell.OK
}

// openOrCreateOutput resolves dest; if it already exists as a file it is
// opened WRITE|TRUNC|CREATE, otherwise its parent/name are resolved and
// a new file is created. Mirrors cat.c's out_path handling so `>` is
// grounded identically regardless of which builtin issues it.
func openOrCreateOutput(ctx *shell.Context, dest string) (*vfsfs.File, shell.Code, string) {
	n, err := ctx.Vfs.ResolveAt(ctx.Term.Cwd, dest)
	if err == nil {
		defer ctx.Vfs.Release(n)
		if n.Type != vfsfs.TypeFile {
			return nil, shell.EINVAL, "not a file"
		}
		f, oerr := ctx.Vfs.OpenNode(n, vfsfs.OWrite|vfsfs.OTrunc|vfsfs.OCreate)
		if oerr != nil {
			return nil, shell.ERR, "unable to open output"
		}
		return f, shell.OK, ""
	}

	parent, name, errno := resolveParentAndName(ctx.Vfs, ctx.Term.Cwd, dest)
	if errno != vfsfs.Ok {
		return nil, errnoToCode(errno), "invalid path"
	}
	defer ctx.Vfs.Release(parent)
	created, cerr := ctx.Vfs.DirCreate(parent, name, vfsfs.TypeFile)
	if cerr != nil {
		return nil, shell.ERR, "failed to create file"
	}
	f, oerr := ctx.Vfs.OpenNode(created, vfsfs.OWrite|vfsfs.OTrunc|vfsfs.OCreate)
	if oerr != nil {
		return nil, shell.ERR, "unable to open output"
	}
	return f, shell.OK, ""
}

// Cat implements `cat`, including its "> outfile" redirection form: if
// no input paths are given and pipe input is set, it emits pipe input
// instead of erroring.
func Cat(ctx *shell.Context, argv []string) shell.Code {
	if len(argv) < 2 {
		if len(ctx.Term.PipeInput) > 0 {
			catWriteOutput(ctx, nil, ctx.Term.PipeInput)
			return shell.OK
		}
		shell.Errorf(ctx.Term, "cat: missing file operand")
		return shell.EINVAL
	}

	redirectPos := -1
	for i := 1; i < len(argv); i++ {
		if argv[i] == ">" {
			redirectPos = i
			break
		}
	}

	lastInput := len(argv) - 1
	if redirectPos > 0 {
		lastInput = redirectPos - 1
	}
	if lastInput < 1 {
		if len(ctx.Term.PipeInput) > 0 {
			lastInput = 0
		} else {
			shell.Errorf(ctx.Term, "cat: missing file operand")
			return shell.EINVAL
		}
	}

	var outPath string
	if redirectPos >= 0 {
		if redirectPos+1 >= len(argv) {
			shell.Errorf(ctx.Term, "cat: missing output file operand")
			return shell.EINVAL
		}
		if redirectPos+2 != len(argv) {
			shell.Errorf(ctx.Term, "cat: too many arguments")
			return shell.EINVAL
		}
		outPath = argv[redirectPos+1]
	}

	var outFile *vfsfs.File
	if outPath != "" {
		f, code, msg := openOrCreateOutput(ctx, outPath)
		if code != shell.OK {
			if msg == "not a file" {
				shell.Errorf(ctx.Term, "cat: %s: not a file", outPath)
			} else if code == shell.ENOENT {
				shell.Errorf(ctx.Term, "cat: %s: no such file or directory", outPath)
			} else {
				shell.Errorf(ctx.Term, "cat: %s: %s", outPath, msg)
			}
			return code
		}
		outFile = f
	}

	if lastInput == 0 {
		if code := catWriteOutput(ctx, outFile, ctx.Term.PipeInput); code != shell.OK {
			if outFile != nil {
				ctx.Vfs.Close(outFile)
			}
			shell.Errorf(ctx.Term, "cat: write error")
			return shell.ERR
		}
		if outFile != nil {
			ctx.Vfs.Close(outFile)
		}
		return shell.OK
	}

	buf := make([]byte, 128)
	for i := 1; i <= lastInput; i++ {
		path := argv[i]
		node, err := ctx.Vfs.ResolveAt(ctx.Term.Cwd, path)
		if err != nil {
			shell.Errorf(ctx.Term, "cat: %s: no such file or directory", path)
			if outFile != nil {
				ctx.Vfs.Close(outFile)
			}
			return shell.ENOENT
		}
		if node.Type != vfsfs.TypeFile {
			shell.Errorf(ctx.Term, "cat: %s: not a file", path)
			ctx.Vfs.Release(node)
			if outFile != nil {
				ctx.Vfs.Close(outFile)
			}
			return shell.EINVAL
		}

		f, err := ctx.Vfs.OpenNode(node, vfsfs.ORead)
		ctx.Vfs.Release(node)
		if err != nil {
			shell.Errorf(ctx.Term, "cat: %s: unable to open", path)
			if outFile != nil {
				ctx.Vfs.Close(outFile)
			}
			return shell.ERR
		}

		for {
			n, rerr := ctx.Vfs.Read(f, buf)
			if rerr != nil {
				ctx.Vfs.Close(f)
				if outFile != nil {
					ctx.Vfs.Close(outFile)
				}
				shell.Errorf(ctx.Term, "cat: %s: read error", path)
				return shell.ERR
			}
			if n == 0 {
				break
			}
			if code := catWriteOutput(ctx, outFile, buf[:n]); code != shell.OK {
				ctx.Vfs.Close(f)
				if outFile != nil {
					ctx.Vfs.Close(outFile)
				}
				shell.Errorf(ctx.Term, "cat: write error")
				return shell.ERR
			}
		}
		ctx.Vfs.Close(f)
	}

	if outFile != nil {
		ctx.Vfs.Close(outFile)
	}
	return shell.OK
}
