package builtins

import (
	"fmt"
	"strings"

	"github.com/tilixi/tilixi/internal/shell"
	"github.com/tilixi/tilixi/internal/vfsfs"
)

type grepFlags struct {
	ignoreCase, invert, showLine bool
	firstPattern                int
}

func grepParseFlags(argv []string) (grepFlags, shell.Code) {
	f := grepFlags{firstPattern: 1}
	for i := 1; i < len(argv); i++ {
		arg := argv[i]
		if len(arg) == 0 || arg[0] != '-' {
			f.firstPattern = i
			return f, shell.OK
		}
		if arg == "--" {
			f.firstPattern = i + 1
			return f, shell.OK
		}
		if len(arg) == 1 {
			f.firstPattern = i
			return f, shell.OK
		}
		for _, c := range arg[1:] {
			switch c {
			case 'i':
				f.ignoreCase = true
			case 'v':
				f.invert = true
			case 'n':
				f.showLine = true
			default:
				return f, shell.EINVAL
			}
		}
	}
	f.firstPattern = len(argv)
	return f, shell.OK
}

func lineContains(line, pattern string, ignoreCase bool) bool {
	if pattern == "" {
		return true
	}
	if ignoreCase {
		return strings.Contains(strings.ToLower(line), strings.ToLower(pattern))
	}
	return strings.Contains(line, pattern)
}

func grepOutputLine(ctx *shell.Context, filename string, showFilename, showLine bool, lineNo int, line string) {
	if showFilename && filename != "" {
		ctx.Term.WriteString(filename)
		ctx.Term.WriteChar(':')
	}
	if showLine {
		ctx.Term.WriteString(fmt.Sprintf("%d:", lineNo))
	}
	ctx.Term.WriteString(line)
	ctx.Term.Newline()
}

func grepProcessStream(ctx *shell.Context, pattern string, f grepFlags, filename string, showFilename bool, data []byte) {
	lineNo := 1
	var line strings.Builder
	emit := func() {
		text := line.String()
		match := lineContains(text, pattern, f.ignoreCase)
		if f.invert {
			match = !match
		}
		if match {
			grepOutputLine(ctx, filename, showFilename, f.showLine, lineNo, text)
		}
		line.Reset()
		lineNo++
	}
	for _, c := range data {
		if c == '\n' {
			emit()
			continue
		}
		line.WriteByte(c)
	}
	if line.Len() > 0 {
		emit()
	}
}

func grepReadAll(ctx *shell.Context, file *vfsfs.File) ([]byte, error) {
	var out []byte
	buf := make([]byte, 128)
	for {
		n, err := ctx.Vfs.Read(file, buf)
		if err != nil {
			return nil, err
		}
		if n == 0 {
			break
		}
		out = append(out, buf[:n]...)
	}
	return out, nil
}

// Grep implements `grep [-i] [-v] [-n] [--] PATTERN [FILE...]`.
func Grep(ctx *shell.Context, argv []string) shell.Code {
	if len(argv) < 2 {
		shell.Errorf(ctx.Term, "grep: missing pattern")
		return shell.EINVAL
	}

	flags, code := grepParseFlags(argv)
	if code == shell.EINVAL {
		shell.Errorf(ctx.Term, "grep: invalid option")
		return shell.EINVAL
	}
	if code != shell.OK {
		return code
	}
	if flags.firstPattern >= len(argv) {
		shell.Errorf(ctx.Term, "grep: missing pattern")
		return shell.EINVAL
	}

	pattern := argv[flags.firstPattern]
	firstPath := flags.firstPattern + 1

	if firstPath >= len(argv) {
		if len(ctx.Term.PipeInput) > 0 {
			grepProcessStream(ctx, pattern, flags, "", false, ctx.Term.PipeInput)
			return shell.OK
		}
		shell.Errorf(ctx.Term, "grep: missing file operand")
		return shell.EINVAL
	}

	fileCount := len(argv) - firstPath
	for _, path := range argv[firstPath:] {
		node, err := ctx.Vfs.ResolveAt(ctx.Term.Cwd, path)
		if err != nil {
			shell.Errorf(ctx.Term, "grep: %s: no such file or directory", path)
			return shell.ENOENT
		}
		if node.Type != vfsfs.TypeFile {
			shell.Errorf(ctx.Term, "grep: %s: not a file", path)
			ctx.Vfs.Release(node)
			return shell.EINVAL
		}
		f, err := ctx.Vfs.OpenNode(node, vfsfs.ORead)
		ctx.Vfs.Release(node)
		if err != nil {
			shell.Errorf(ctx.Term, "grep: %s: unable to open", path)
			return shell.ERR
		}
		data, rerr := grepReadAll(ctx, f)
		ctx.Vfs.Close(f)
		if rerr != nil {
			shell.Errorf(ctx.Term, "grep: %s: read error", path)
			return shell.ERR
		}
		grepProcessStream(ctx, pattern, flags, path, fileCount > 1, data)
	}
	return shell.OK
}
