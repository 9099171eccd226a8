package vfsfs_test

import (
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/sirupsen/logrus"

	"github.com/tilixi/tilixi/internal/vfsfs"
	"github.com/tilixi/tilixi/internal/vfsfs/memfs"
)

func newTestVfs(t *testing.T) *vfsfs.Vfs {
	t.Helper()
	root := memfs.Entry{
		Type: vfsfs.TypeDirectory,
		Children: func() []memfs.Entry {
			return []memfs.Entry{
				{Name: "a.txt", Type: vfsfs.TypeFile, Content: func() ([]byte, error) { return []byte("hi"), nil }},
				{Name: "sub", Type: vfsfs.TypeDirectory, Children: func() []memfs.Entry {
					return []memfs.Entry{
						{Name: "b.txt", Type: vfsfs.TypeFile, Readonly: true, Content: func() ([]byte, error) { return []byte("yo"), nil }},
					}
				}},
			}
		},
	}
	_, rootNode := memfs.New(root)
	log := logrus.NewEntry(logrus.New())
	v := vfsfs.New(log)
	if err := v.Mount("/", rootNode, rootNode.Ops, nil); err != nil {
		t.Fatalf("mount: %v", err)
	}
	return v
}

// TestResolveReleaseBalancesRefcount exercises the refcount-balance
// invariant from spec.md §8: after any command completes, a path
// resolved and released the same number of times returns its refcount
// to its pre-command value.
func TestResolveReleaseBalancesRefcount(t *testing.T) {
	v := newTestVfs(t)

	n, err := v.Resolve("/a.txt")
	if err != nil {
		t.Fatalf("resolve: %v", err)
	}
	before := n.Refcount()
	v.Release(n)

	for i := 0; i < 5; i++ {
		n, err := v.Resolve("/a.txt")
		if err != nil {
			t.Fatalf("resolve #%d: %v", i, err)
		}
		v.Release(n)
	}

	n, err = v.Resolve("/a.txt")
	if err != nil {
		t.Fatalf("resolve after loop: %v", err)
	}
	after := n.Refcount()
	v.Release(n)

	if after != before {
		t.Fatalf("refcount not balanced: before=%d after=%d", before, after)
	}
}

// TestResolveIdentityReturnsSameNode covers the node-identity invariant:
// resolving the same path twice (with a release between) yields the
// same cached *Node as long as the cache has not overflowed.
func TestResolveIdentityReturnsSameNode(t *testing.T) {
	v := newTestVfs(t)

	n1, err := v.Resolve("/sub/b.txt")
	if err != nil {
		t.Fatalf("resolve #1: %v", err)
	}
	v.Release(n1)

	n2, err := v.Resolve("/sub/b.txt")
	if err != nil {
		t.Fatalf("resolve #2: %v", err)
	}
	v.Release(n2)

	if n1 != n2 {
		t.Fatalf("resolve(%q) returned different nodes across calls: %p != %p", "/sub/b.txt", n1, n2)
	}
}

// nodeSnapshot captures the immutable facets of a Node spec.md §8's
// "node immutability" invariant cares about: Type and Ops never change
// for a live node. Ops is a vtable (funcs aren't comparable), so the
// snapshot instead records whether it is present.
type nodeSnapshot struct {
	Type     vfsfs.NodeType
	Readonly bool
	HasOps   bool
}

func snapshot(n *vfsfs.Node) nodeSnapshot {
	return nodeSnapshot{Type: n.Type, Readonly: n.Readonly(), HasOps: n.Ops != nil}
}

// TestNodeImmutabilityAcrossResolves asserts a node's Type and Ops
// presence observed at two different times are equal, using go-cmp to
// diff the snapshots directly.
func TestNodeImmutabilityAcrossResolves(t *testing.T) {
	v := newTestVfs(t)

	n1, err := v.Resolve("/sub/b.txt")
	if err != nil {
		t.Fatalf("resolve #1: %v", err)
	}
	t1 := snapshot(n1)
	v.Release(n1)

	n2, err := v.Resolve("/sub/b.txt")
	if err != nil {
		t.Fatalf("resolve #2: %v", err)
	}
	t2 := snapshot(n2)
	v.Release(n2)

	if diff := cmp.Diff(t1, t2); diff != "" {
		t.Fatalf("node snapshot changed between resolves (-t1 +t2):\n%s", diff)
	}
	want := nodeSnapshot{Type: vfsfs.TypeFile, Readonly: true, HasOps: true}
	if diff := cmp.Diff(want, t2); diff != "" {
		t.Fatalf("snapshot mismatch (-want +got):\n%s", diff)
	}
}

// TestAsErrno table-drives vfsfs.AsErrno with go-cmp comparing the
// resulting Errno values.
func TestAsErrno(t *testing.T) {
	cases := []struct {
		name string
		in   error
		want vfsfs.Errno
	}{
		{"nil", nil, vfsfs.Ok},
		{"already errno", vfsfs.NotFound, vfsfs.NotFound},
		{"other errno value", vfsfs.Busy, vfsfs.Busy},
		{"foreign error", errString("boom"), vfsfs.Io},
	}
	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			got := vfsfs.AsErrno(c.in)
			if diff := cmp.Diff(c.want, got); diff != "" {
				t.Fatalf("AsErrno(%v) mismatch (-want +got):\n%s", c.in, diff)
			}
		})
	}
}

type errString string

func (e errString) Error() string { return string(e) }

// TestResolveParentOfRootIsInvalid covers the boundary behavior "rm / is refused
// with EINVAL" at the VFS layer: ResolveParent("/") has no parent to
// decompose into and must fail with Invalid.
func TestResolveParentOfRootIsInvalid(t *testing.T) {
	v := newTestVfs(t)
	_, _, err := v.ResolveParent("/")
	if err != vfsfs.Invalid {
		t.Fatalf("ResolveParent(\"/\") = %v, want Invalid", err)
	}
}
