package main

import (
	"bufio"
	"context"
	"flag"
	"fmt"
	"io"
	"os"

	"github.com/containerd/console"
	"github.com/google/subcommands"
	"github.com/sirupsen/logrus"
	"golang.org/x/term"

	"github.com/tilixi/tilixi/internal/bootseq"
	"github.com/tilixi/tilixi/internal/events"
)

// bootCmd implements `tilixi boot`: bring a core all the way up against
// a host card directory and attach an interactive terminal to it.
type bootCmd struct {
	cardDir string
}

func (*bootCmd) Name() string     { return "boot" }
func (*bootCmd) Synopsis() string { return "boot a core against a host directory and attach a terminal" }
func (*bootCmd) Usage() string {
	return `boot -card <dir>: run the boot sequence and attach an interactive terminal.
`
}

func (c *bootCmd) SetFlags(f *flag.FlagSet) {
	f.StringVar(&c.cardDir, "card", "", "host directory standing in for the SD card root (required)")
}

func (c *bootCmd) Execute(_ context.Context, f *flag.FlagSet, _ ...any) subcommands.ExitStatus {
	if c.cardDir == "" {
		fmt.Fprintln(os.Stderr, "boot: -card is required")
		return subcommands.ExitUsageError
	}

	log := logrus.WithField("cmd", "boot")
	b, err := bootseq.New(bootseq.Params{CardDir: c.cardDir, Log: log})
	if err != nil {
		log.WithError(err).Error("boot: construct failed")
		return subcommands.ExitFailure
	}
	if err := b.Run(); err != nil {
		log.WithError(err).Error("boot: sequence failed")
		return subcommands.ExitFailure
	}

	if !term.IsTerminal(int(os.Stdin.Fd())) {
		log.Info("boot: stdin is not a terminal, running line-buffered")
		return runHeadless(b, os.Stdin, os.Stdout)
	}

	cur, err := console.Current()
	if err != nil {
		log.WithError(err).Warn("boot: no controlling console, running line-buffered")
		return runHeadless(b, os.Stdin, os.Stdout)
	}
	if err := cur.SetRaw(); err != nil {
		log.WithError(err).Error("boot: failed to set raw mode")
		return subcommands.ExitFailure
	}
	defer cur.Reset()

	return runInteractive(b, cur, cur)
}

// runInteractive drives the core from a raw-mode terminal: every byte
// read from r becomes a key event, and the active terminal's buffer is
// redrawn to w after each batch of events is processed.
func runInteractive(b *bootseq.Boot, r io.Reader, w io.Writer) subcommands.ExitStatus {
	reader := bufio.NewReader(r)
	render(w, b.WM)
	for {
		key, mods, quit, err := readKey(reader)
		if err != nil {
			if err == io.EOF {
				return subcommands.ExitSuccess
			}
			return subcommands.ExitFailure
		}
		if quit {
			return subcommands.ExitSuccess
		}
		if key == 0 {
			continue
		}
		b.PushKey(key, mods)
		b.PumpEvents()
		b.Tick()
		render(w, b.WM)
	}
}

// runHeadless is the fallback used when stdin is not a real terminal
// (piped input, a non-interactive CI shell): commands are read a line
// at a time and played back as a character run followed by Enter,
// since there is no raw byte stream to decode escape sequences from.
func runHeadless(b *bootseq.Boot, r io.Reader, w io.Writer) subcommands.ExitStatus {
	reader := bufio.NewReader(r)
	for {
		line, rerr := drainLine(reader)
		for _, ch := range []byte(line) {
			key, mods := decodeByte(ch)
			if key != 0 {
				b.PushKey(key, mods)
			}
		}
		b.PushKey(events.KeyEnter, 0)
		b.PumpEvents()
		b.Tick()
		if rerr == io.EOF {
			break
		}
		if rerr != nil {
			return subcommands.ExitFailure
		}
	}
	render(w, b.WM)
	return subcommands.ExitSuccess
}
