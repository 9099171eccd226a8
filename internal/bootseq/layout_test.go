package bootseq

import (
	"testing"

	"github.com/sirupsen/logrus"

	"github.com/tilixi/tilixi/internal/bus"
	"github.com/tilixi/tilixi/internal/vfsfs"
	"github.com/tilixi/tilixi/internal/vfsfs/sdfs"
)

func newTestVfs(t *testing.T) *vfsfs.Vfs {
	t.Helper()
	dir := t.TempDir()
	log := logrus.NewEntry(logrus.New())
	arbiter := bus.New(HostPins{}, log)
	sd := sdfs.New(arbiter, dir)
	root, ops := sd.Root()
	v := vfsfs.New(log)
	if err := v.Mount("/", root, ops, nil); err != nil {
		t.Fatalf("mount: %v", err)
	}
	return v
}

func mustResolve(t *testing.T, v *vfsfs.Vfs, path string) {
	t.Helper()
	n, err := v.Resolve(path)
	if err != nil {
		t.Fatalf("resolve %s: %v", path, err)
	}
	v.Release(n)
}

func TestRepairFilesystemCreatesFullLayout(t *testing.T) {
	v := newTestVfs(t)
	log := logrus.NewEntry(logrus.New())

	if err := RepairFilesystem(v, log); err != nil {
		t.Fatalf("RepairFilesystem: %v", err)
	}

	for top, children := range requiredDirs {
		mustResolve(t, v, top)
		for _, c := range children {
			mustResolve(t, v, c)
		}
	}
	for parent, files := range requiredFiles {
		for _, f := range files {
			mustResolve(t, v, parent+"/"+f)
		}
	}
}

func TestRepairFilesystemIsIdempotent(t *testing.T) {
	v := newTestVfs(t)
	log := logrus.NewEntry(logrus.New())

	if err := RepairFilesystem(v, log); err != nil {
		t.Fatalf("first RepairFilesystem: %v", err)
	}
	if err := RepairFilesystem(v, log); err != nil {
		t.Fatalf("second RepairFilesystem: %v", err)
	}

	n, err := v.Resolve("/etc")
	if err != nil {
		t.Fatalf("resolve /etc after double repair: %v", err)
	}
	v.Release(n)
}

func TestRepairFilesystemLeavesExistingFileAlone(t *testing.T) {
	v := newTestVfs(t)
	log := logrus.NewEntry(logrus.New())

	root, err := v.Resolve("/")
	if err != nil {
		t.Fatalf("resolve /: %v", err)
	}
	etc, err := v.DirCreate(root, "etc", vfsfs.TypeDirectory)
	v.Release(root)
	if err != nil {
		t.Fatalf("pre-create /etc: %v", err)
	}
	passwd, err := v.DirCreate(etc, "passwd", vfsfs.TypeFile)
	v.Release(etc)
	if err != nil {
		t.Fatalf("pre-create /etc/passwd: %v", err)
	}
	v.Release(passwd)

	if err := RepairFilesystem(v, log); err != nil {
		t.Fatalf("RepairFilesystem: %v", err)
	}

	mustResolve(t, v, "/etc/passwd")
}
