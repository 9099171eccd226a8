package builtins

import (
	"fmt"
	"unicode"

	"github.com/tilixi/tilixi/internal/shell"
	"github.com/tilixi/tilixi/internal/vfsfs"
)

type wcFlags struct {
	lines, words, bytes bool
}

type wcCounts struct {
	lines, words, bytes int
}

func wcParseFlags(argv []string) (wcFlags, int, shell.Code) {
	f := wcFlags{}
	i := 1
	for ; i < len(argv); i++ {
		arg := argv[i]
		if len(arg) == 0 || arg[0] != '-' || arg == "-" {
			break
		}
		if arg == "--" {
			i++
			break
		}
		for _, c := range arg[1:] {
			switch c {
			case 'l':
				f.lines = true
			case 'w':
				f.words = true
			case 'c':
				f.bytes = true
			default:
				return f, i, shell.EINVAL
			}
		}
	}
	if !f.lines && !f.words && !f.bytes {
		f.lines, f.words, f.bytes = true, true, true
	}
	return f, i, shell.OK
}

func wcCount(data []byte) wcCounts {
	var c wcCounts
	c.bytes = len(data)
	inWord := false
	for _, b := range data {
		if b == '\n' {
			c.lines++
		}
		if unicode.IsSpace(rune(b)) {
			inWord = false
		} else if !inWord {
			inWord = true
			c.words++
		}
	}
	return c
}

func wcFormat(c wcCounts, f wcFlags, label string) string {
	s := ""
	if f.lines {
		s += fmt.Sprintf("%7d", c.lines)
	}
	if f.words {
		s += fmt.Sprintf("%7d", c.words)
	}
	if f.bytes {
		s += fmt.Sprintf("%7d", c.bytes)
	}
	if label != "" {
		s += " " + label
	}
	return s
}

// Wc implements `wc [-l] [-w] [-c] [--] [FILE...]`.
func Wc(ctx *shell.Context, argv []string) shell.Code {
	flags, firstPath, code := wcParseFlags(argv)
	if code != shell.OK {
		shell.Errorf(ctx.Term, "wc: invalid option")
		return shell.EINVAL
	}

	if firstPath >= len(argv) {
		if len(ctx.Term.PipeInput) == 0 {
			shell.Errorf(ctx.Term, "wc: missing file operand")
			return shell.EINVAL
		}
		c := wcCount(ctx.Term.PipeInput)
		ctx.Term.WriteLine(wcFormat(c, flags, ""))
		return shell.OK
	}

	paths := argv[firstPath:]
	var total wcCounts
	for _, path := range paths {
		node, err := ctx.Vfs.ResolveAt(ctx.Term.Cwd, path)
		if err != nil {
			shell.Errorf(ctx.Term, "wc: %s: no such file or directory", path)
			return shell.ENOENT
		}
		if node.Type != vfsfs.TypeFile {
			shell.Errorf(ctx.Term, "wc: %s: not a file", path)
			ctx.Vfs.Release(node)
			return shell.EINVAL
		}
		f, err := ctx.Vfs.OpenNode(node, vfsfs.ORead)
		ctx.Vfs.Release(node)
		if err != nil {
			shell.Errorf(ctx.Term, "wc: %s: unable to open", path)
			return shell.ERR
		}
		data, rerr := grepReadAll(ctx, f)
		ctx.Vfs.Close(f)
		if rerr != nil {
			shell.Errorf(ctx.Term, "wc: %s: read error", path)
			return shell.ERR
		}
		c := wcCount(data)
		total.lines += c.lines
		total.words += c.words
		total.bytes += c.bytes
		ctx.Term.WriteLine(wcFormat(c, flags, path))
	}

	if len(paths) > 1 {
		ctx.Term.WriteLine(wcFormat(total, flags, "total"))
	}
	return shell.OK
}
