// Package bootseq brings a TILIXI core instance up from nothing to a
// running, interactive shell: bus arbiter, VFS mount and repair,
// process table and scheduler, event routing, window manager, and the
// built-in command set — in the same order the firmware's
// boot_sequence_run does it.
package bootseq

import (
	"sort"

	"github.com/hashicorp/go-multierror"
	"github.com/sirupsen/logrus"
	"golang.org/x/sync/errgroup"

	"github.com/tilixi/tilixi/internal/vfsfs"
)

// requiredDirs is the full directory tree boot_init_sd_filesystem lays
// down on a blank card, grouped by independent top-level subtree so the
// repair pass can walk each subtree concurrently.
var requiredDirs = map[string][]string{
	"/bin":  nil,
	"/dev":  {"/dev/input", "/dev/pipe"},
	"/etc":  nil,
	"/home": {"/home/user", "/home/user/documents"},
	"/proc": {"/proc/tasks"},
	"/run":  {"/run/pipes", "/run/tasks", "/run/events"},
	"/tmp":  nil,
	"/usr":  {"/usr/bin", "/usr/bin/games", "/usr/bin/demos", "/usr/share", "/usr/share/help", "/usr/share/fonts", "/usr/share/banners"},
	"/var":  {"/var/log"},
}

// requiredFiles is the full file list boot_init_sd_filesystem creates
// empty, keyed by parent directory. /etc/passwd and /home/user/.history
// are deliberately absent: passwd's presence/emptiness is what decides
// first-boot vs. login, and history is owned by the terminal at
// runtime, not seeded at boot.
var requiredFiles = map[string][]string{
	"/etc":       {"shells", "system.conf", "tty.conf", "keymap.conf", "motd"},
	"/home/user": {".profile", ".editorrc"},
	"/tmp":       {".keep"},
	"/var/log":   {"kernel.log", "scheduler.log", "terminal.log", "input.log", "boot.log"},
}

// ensureDir creates name inside dir if it is not already present,
// tolerating vfsfs.Exists as success so repeated boots are idempotent.
func ensureDir(v *vfsfs.Vfs, parent string, name string) error {
	dir, err := v.Resolve(parent)
	if err != nil {
		return err
	}
	defer v.Release(dir)
	child, err := v.DirCreate(dir, name, vfsfs.TypeDirectory)
	if err != nil {
		if err == vfsfs.Exists {
			return nil
		}
		return err
	}
	v.Release(child)
	return nil
}

// ensureFile creates name inside dir as an empty file, tolerating
// vfsfs.Exists as success.
func ensureFile(v *vfsfs.Vfs, parent string, name string) error {
	dir, err := v.Resolve(parent)
	if err != nil {
		return err
	}
	defer v.Release(dir)
	child, err := v.DirCreate(dir, name, vfsfs.TypeFile)
	if err != nil {
		if err == vfsfs.Exists {
			return nil
		}
		return err
	}
	v.Release(child)
	return nil
}

// repairSubtree walks one top-level directory's required children in
// order (a later entry may nest under an earlier one) and then its
// required files.
func repairSubtree(v *vfsfs.Vfs, top string, children []string) error {
	var result *multierror.Error

	parent, name := splitTop(top)
	if err := ensureDir(v, parent, name); err != nil {
		result = multierror.Append(result, err)
	}

	sorted := append([]string(nil), children...)
	sort.Strings(sorted)
	for _, child := range sorted {
		p, n := splitTop(child)
		if err := ensureDir(v, p, n); err != nil {
			result = multierror.Append(result, err)
		}
	}

	for parentDir, files := range requiredFiles {
		if !underTop(parentDir, top) {
			continue
		}
		for _, f := range files {
			if err := ensureFile(v, parentDir, f); err != nil {
				result = multierror.Append(result, err)
			}
		}
	}

	return result.ErrorOrNil()
}

func splitTop(path string) (parent, name string) {
	i := len(path) - 1
	for i > 0 && path[i] != '/' {
		i--
	}
	if i == 0 {
		return "/", path[1:]
	}
	return path[:i], path[i+1:]
}

func underTop(path, top string) bool {
	return path == top || (len(path) > len(top) && path[:len(top)] == top && path[len(top)] == '/')
}

// RepairFilesystem ensures the full directory/file layout exists on v,
// creating whatever is missing and leaving whatever is already there
// untouched. Each top-level subtree is repaired concurrently since they
// never share a parent directory; a failure in one subtree does not
// stop the others. Every subtree's failure is logged, and the first
// one is returned.
func RepairFilesystem(v *vfsfs.Vfs, log *logrus.Entry) error {
	var g errgroup.Group
	for top, children := range requiredDirs {
		top, children := top, children
		g.Go(func() error {
			if err := repairSubtree(v, top, children); err != nil {
				log.WithError(err).WithField("subtree", top).Warn("bootseq: repair issues")
				return err
			}
			return nil
		})
	}
	return g.Wait()
}
