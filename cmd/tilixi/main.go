// Command tilixi is the host build of the TILIXI core: the same VFS,
// scheduler, window manager, and shell that run on the microcontroller
// firmware, driven here against a plain host directory standing in for
// the SD card, for development and testing away from real hardware.
package main

import (
	"context"
	"flag"
	"fmt"
	"os"

	"github.com/google/subcommands"
	"github.com/sirupsen/logrus"
)

var logLevel = flag.String("log-level", "info", "logging level: debug, info, warn, error")

func main() {
	subcommands.Register(subcommands.HelpCommand(), "")
	subcommands.Register(subcommands.FlagsCommand(), "")
	subcommands.Register(subcommands.CommandsCommand(), "")

	subcommands.Register(new(bootCmd), "")
	subcommands.Register(new(runCmd), "")
	subcommands.Register(new(fsckCmd), "")

	flag.Parse()

	level, err := logrus.ParseLevel(*logLevel)
	if err != nil {
		fmt.Fprintf(os.Stderr, "tilixi: invalid -log-level %q: %v\n", *logLevel, err)
		os.Exit(int(subcommands.ExitUsageError))
	}
	logrus.SetLevel(level)
	logrus.SetFormatter(&logrus.TextFormatter{FullTimestamp: true})

	ctx := context.Background()
	os.Exit(int(subcommands.Execute(ctx)))
}
