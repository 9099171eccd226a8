package shell

import (
	"fmt"

	"github.com/tilixi/tilixi/internal/termui"
)

// Execute parses and runs one input line against ctx, handling the
// two-stage pipeline when the line contains a "|". It is the top-level
// entry point terminal input dispatch calls.
func Execute(registry *Registry, ctx *Context, input string) Code {
	toks := Parse(input)
	left, right := toks.Stages()

	var code Code
	if toks.HasPipe {
		code = runPipeline(registry, ctx, left, right)
	} else {
		code = registry.Dispatch(ctx, left)
	}

	if code != OK {
		fmt.Fprintf(lineWriter{ctx.Term}, "Command failed with code %d\n", int(code))
	}
	return code
}

// lineWriter adapts *termui.Terminal to io.Writer for fmt.Fprintf.
type lineWriter struct{ term *termui.Terminal }

func (w lineWriter) Write(p []byte) (int, error) {
	w.term.WriteString(string(p))
	return len(p), nil
}

// runPipeline captures stage one's output, hands it to stage two as
// pipe input, runs stage two, then clears pipe input — exactly two
// stages, run sequentially, never concurrently.
func runPipeline(registry *Registry, ctx *Context, left, right []string) Code {
	termui.CaptureStart()
	registry.Dispatch(ctx, left)
	captured := termui.CaptureStop()

	ctx.Term.PipeInput = captured
	rightCode := registry.Dispatch(ctx, right)
	ctx.Term.PipeInput = nil
	return rightCode
}
