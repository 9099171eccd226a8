// Package memfs is a synthetic VFS backend used for /proc and /dev: a
// directory tree whose contents are generated on demand rather than
// read from bytes on a card. It mirrors the teacher's
// pkg/sentry/fsimpl/proc and pkg/sentry/fsimpl/sys pattern of presenting
// live process/kernel state as directory entries, adapted to this
// project's Ops vtable instead of gVisor's kernfs.Inode interface.
package memfs

import (
	"sort"
	"time"

	"github.com/tilixi/tilixi/internal/vfsfs"
)

// Entry is one synthetic filesystem entry. Exactly one of Content
// (files) or Children (directories) should be set.
type Entry struct {
	Name     string
	Type     vfsfs.NodeType
	Readonly bool
	// Content returns a file entry's current bytes, computed fresh on
	// every open so readers always see live state.
	Content func() ([]byte, error)
	// Children returns a directory entry's current child list,
	// computed fresh on every lookup/iteration.
	Children func() []Entry
}

type handle struct {
	data []byte
	pos  int64
}

type dirIterState struct {
	entries []Entry
	idx     int
}

// Backend wraps a root Entry as a vfsfs.Ops-compatible filesystem.
type Backend struct {
	Root Entry
}

// New constructs a Backend and its root *vfsfs.Node.
func New(root Entry) (*Backend, *vfsfs.Node) {
	b := &Backend{Root: root}
	node := b.nodeFor(root)
	return b, node
}

func (b *Backend) nodeFor(e Entry) *vfsfs.Node {
	flags := vfsfs.Flags(0)
	if e.Readonly {
		flags |= vfsfs.FlagReadonly
	}
	n := vfsfs.NewNode(e.Type, b.ops(), e, flags)
	return n
}

func (b *Backend) ops() *vfsfs.Ops {
	return &vfsfs.Ops{
		Open: func(n *vfsfs.Node, flags vfsfs.OpenFlags) (interface{}, error) {
			e := n.BackendData.(Entry)
			if e.Type != vfsfs.TypeFile && e.Type != vfsfs.TypeProc {
				return nil, vfsfs.NotPermitted
			}
			if e.Content == nil {
				return nil, vfsfs.NotPermitted
			}
			if flags&vfsfs.OWrite != 0 {
				return nil, vfsfs.ReadOnly
			}
			data, err := e.Content()
			if err != nil {
				return nil, err
			}
			return &handle{data: data}, nil
		},
		Close: func(h interface{}) error { return nil },
		Read: func(h interface{}, buf []byte) (int, error) {
			hd := h.(*handle)
			if hd.pos >= int64(len(hd.data)) {
				return 0, nil
			}
			n := copy(buf, hd.data[hd.pos:])
			hd.pos += int64(n)
			return n, nil
		},
		Write: func(h interface{}, buf []byte) (int, error) {
			return 0, vfsfs.ReadOnly
		},
		Size: func(n *vfsfs.Node) (int64, error) {
			e := n.BackendData.(Entry)
			if e.Content == nil {
				return 0, vfsfs.NotPermitted
			}
			data, err := e.Content()
			if err != nil {
				return 0, err
			}
			return int64(len(data)), nil
		},
		Seek: func(h interface{}, offset int64) error {
			h.(*handle).pos = offset
			return nil
		},
		Tell: func(h interface{}) (int64, error) {
			return h.(*handle).pos, nil
		},
		DirIterCreate: func(dir *vfsfs.Node) (*vfsfs.DirIter, error) {
			e := dir.BackendData.(Entry)
			if e.Children == nil {
				return nil, vfsfs.NotPermitted
			}
			children := e.Children()
			sort.Slice(children, func(i, j int) bool { return children[i].Name < children[j].Name })
			return &vfsfs.DirIter{Dir: dir, BackendIter: &dirIterState{entries: children}}, nil
		},
		DirIterNext: func(iter *vfsfs.DirIter) (bool, error) {
			st := iter.BackendIter.(*dirIterState)
			if st.idx >= len(st.entries) {
				return false, nil
			}
			iter.Name = st.entries[st.idx].Name
			st.idx++
			return true, nil
		},
		DirIterDestroy: func(iter *vfsfs.DirIter) {},
		Lookup: func(dir *vfsfs.Node, name string) (*vfsfs.Node, error) {
			e := dir.BackendData.(Entry)
			if e.Children == nil {
				return nil, vfsfs.NotPermitted
			}
			for _, c := range e.Children() {
				if c.Name == name {
					return b.nodeFor(c), nil
				}
			}
			return nil, vfsfs.NotFound
		},
	}
}

// UptimeContent renders /proc/uptime given a process start time.
func UptimeContent(start time.Time) func() ([]byte, error) {
	return func() ([]byte, error) {
		secs := time.Since(start).Seconds()
		return []byte(formatFloat(secs) + "\n"), nil
	}
}

func formatFloat(f float64) string {
	whole := int64(f)
	frac := int64((f - float64(whole)) * 100)
	if frac < 0 {
		frac = -frac
	}
	digits := func(n int64) string {
		if n < 10 {
			return "0" + itoa(n)
		}
		return itoa(n)
	}
	return itoa(whole) + "." + digits(frac)
}

func itoa(n int64) string {
	if n == 0 {
		return "0"
	}
	neg := n < 0
	if neg {
		n = -n
	}
	var buf [20]byte
	i := len(buf)
	for n > 0 {
		i--
		buf[i] = byte('0' + n%10)
		n /= 10
	}
	if neg {
		i--
		buf[i] = '-'
	}
	return string(buf[i:])
}
