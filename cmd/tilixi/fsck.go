package main

import (
	"context"
	"flag"
	"fmt"
	"os"

	"github.com/google/subcommands"
	"github.com/sirupsen/logrus"

	"github.com/tilixi/tilixi/internal/bootseq"
	"github.com/tilixi/tilixi/internal/bus"
	"github.com/tilixi/tilixi/internal/vfsfs"
	"github.com/tilixi/tilixi/internal/vfsfs/sdfs"
)

// fsckCmd implements `tilixi fsck`: repair a card directory's layout
// without bringing up the rest of the core, matching the firmware's
// boot_init_sd_filesystem run in isolation.
type fsckCmd struct {
	cardDir string
}

func (*fsckCmd) Name() string     { return "fsck" }
func (*fsckCmd) Synopsis() string { return "check and repair a card directory's filesystem layout" }
func (*fsckCmd) Usage() string {
	return `fsck -card <dir>: create any missing directories/files the boot layout requires.
`
}

func (c *fsckCmd) SetFlags(f *flag.FlagSet) {
	f.StringVar(&c.cardDir, "card", "", "host directory standing in for the SD card root (required)")
}

func (c *fsckCmd) Execute(_ context.Context, f *flag.FlagSet, _ ...any) subcommands.ExitStatus {
	if c.cardDir == "" {
		fmt.Fprintln(os.Stderr, "fsck: -card is required")
		return subcommands.ExitUsageError
	}

	log := logrus.WithField("cmd", "fsck")
	arbiter := bus.New(bootseq.HostPins{}, log)
	v := vfsfs.New(log)
	sd := sdfs.New(arbiter, c.cardDir)
	root, ops := sd.Root()
	if err := v.Mount("/", root, ops, nil); err != nil {
		log.WithError(err).Error("fsck: mount failed")
		return subcommands.ExitFailure
	}

	if err := bootseq.RepairFilesystem(v, log); err != nil {
		log.WithError(err).Error("fsck: repair failed")
		return subcommands.ExitFailure
	}

	fmt.Println("fsck: filesystem layout OK")
	return subcommands.ExitSuccess
}
