package main

import (
	"context"
	"flag"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/google/subcommands"
	"github.com/sirupsen/logrus"

	"github.com/tilixi/tilixi/internal/bootseq"
	"github.com/tilixi/tilixi/internal/script"
	"github.com/tilixi/tilixi/internal/shell"
	"github.com/tilixi/tilixi/internal/termui"
)

// runCmd implements `tilixi run`: bring a core's filesystem and shell
// up headlessly, with no login or first-boot prompt attached, and feed
// it a script file the way a CI job or test fixture would.
type runCmd struct {
	cardDir string
}

func (*runCmd) Name() string     { return "run" }
func (*runCmd) Synopsis() string { return "execute a script against a card directory, headlessly" }
func (*runCmd) Usage() string {
	return `run -card <dir> <script>: interpret script's commands non-interactively and print the resulting screen.
`
}

func (c *runCmd) SetFlags(f *flag.FlagSet) {
	f.StringVar(&c.cardDir, "card", "", "host directory standing in for the SD card root (required)")
}

func (c *runCmd) Execute(_ context.Context, f *flag.FlagSet, _ ...any) subcommands.ExitStatus {
	if c.cardDir == "" || f.NArg() != 1 {
		f.Usage()
		return subcommands.ExitUsageError
	}

	path := f.Arg(0)
	data, err := os.ReadFile(path)
	if err != nil {
		fmt.Fprintf(os.Stderr, "run: %s: %v\n", path, err)
		return subcommands.ExitFailure
	}

	log := logrus.WithField("cmd", "run")
	b, err := bootseq.New(bootseq.Params{CardDir: c.cardDir, Log: log})
	if err != nil {
		log.WithError(err).Error("run: construct failed")
		return subcommands.ExitFailure
	}
	if err := b.Prepare(); err != nil {
		log.WithError(err).Error("run: boot preparation failed")
		return subcommands.ExitFailure
	}

	idx, ok := b.WM.New()
	if !ok {
		fmt.Fprintln(os.Stderr, "run: failed to open a terminal")
		return subcommands.ExitFailure
	}
	term := b.WM.At(idx)
	term.WriteString("$ ")

	ctx := &shell.Context{
		Term: term,
		Vfs:  b.Vfs,
		WM:   b.WM,
		Extra: map[string]interface{}{
			"registry": b.Registry,
			"reload":   b.Config,
		},
	}

	lines := strings.Split(strings.ReplaceAll(string(data), "\r", ""), "\n")
	script.New(b.Registry, ctx).Run(lines)

	printScreen(os.Stdout, term)
	return subcommands.ExitSuccess
}

func printScreen(w io.Writer, term *termui.Terminal) {
	for row := 0; row < termui.Rows(); row++ {
		line := term.Buffer[row]
		trimmed := strings.TrimRight(string(line[:]), " ")
		fmt.Fprintln(w, trimmed)
	}
}
