package vfsfs

import (
	"path"
	"sort"
	"strings"
	"sync"

	"github.com/google/btree"
	"github.com/sirupsen/logrus"
)

// NodeCacheCapacity is the fixed size of the node cache arena. Once
// full, resolution fails rather than evicting live entries (spec.md §3).
const NodeCacheCapacity = 64

// mount describes a filesystem grafted into the VFS namespace at
// MountPoint.
type mount struct {
	point string
	root  *Node
	ops   *Ops
	data  interface{}
}

// cacheEntry is the btree item backing the node cache, ordered by
// canonical path so the arena has a deterministic scan order.
type cacheEntry struct {
	path string
	node *Node
}

func (c *cacheEntry) Less(than btree.Item) bool {
	return c.path < than.(*cacheEntry).path
}

// Vfs is the process-wide virtual filesystem. All filesystem access in
// this repository must flow through a Vfs.
type Vfs struct {
	mu     sync.Mutex
	mounts []*mount
	cache  *btree.BTree
	log    *logrus.Entry
}

// New constructs an uninitialized Vfs. Call Init before use.
func New(log *logrus.Entry) *Vfs {
	if log == nil {
		log = logrus.NewEntry(logrus.StandardLogger())
	}
	return &Vfs{
		cache: btree.New(8),
		log:   log,
	}
}

// Init prepares the Vfs for use. It currently has nothing to do beyond
// construction, but is kept as an explicit lifecycle step to mirror the
// original's vfs_init and to give tests a documented reset point.
func (v *Vfs) Init() error { return nil }

// Mount grafts root at mountPoint using ops. Fails with Exists if
// mountPoint is already mounted, NotFound if mountPoint does not resolve
// (except for "/", which always succeeds).
func (v *Vfs) Mount(mountPoint string, root *Node, ops *Ops, data interface{}) error {
	mountPoint = canonicalize(mountPoint)
	v.mu.Lock()
	defer v.mu.Unlock()

	for _, m := range v.mounts {
		if m.point == mountPoint {
			return Exists
		}
	}
	if mountPoint != "/" {
		if _, err := v.resolveLocked("/", mountPoint); err != nil {
			return NotFound
		}
	}
	root.Path = mountPoint
	v.mounts = append(v.mounts, &mount{point: mountPoint, root: root, ops: ops, data: data})
	sort.Slice(v.mounts, func(i, j int) bool {
		return len(v.mounts[i].point) > len(v.mounts[j].point)
	})
	v.cache.ReplaceOrInsert(&cacheEntry{path: mountPoint, node: root})
	v.log.WithField("mount", mountPoint).Info("vfs: mounted")
	return nil
}

// Umount removes the filesystem mounted at mountPoint.
func (v *Vfs) Umount(mountPoint string) error {
	mountPoint = canonicalize(mountPoint)
	v.mu.Lock()
	defer v.mu.Unlock()
	for i, m := range v.mounts {
		if m.point == mountPoint {
			v.mounts = append(v.mounts[:i], v.mounts[i+1:]...)
			v.cache.Delete(&cacheEntry{path: mountPoint})
			v.log.WithField("mount", mountPoint).Info("vfs: unmounted")
			return nil
		}
	}
	return NotFound
}

// mountFor returns the mount whose point is the longest prefix of p.
func (v *Vfs) mountFor(p string) *mount {
	for _, m := range v.mounts {
		if m.point == "/" || p == m.point || strings.HasPrefix(p, m.point+"/") {
			return m
		}
	}
	return nil
}

func canonicalize(p string) string {
	if p == "" {
		return "/"
	}
	clean := path.Clean("/" + p)
	return clean
}

// splitComponents splits a cleaned path into non-empty components.
func splitComponents(p string) []string {
	parts := strings.Split(p, "/")
	out := make([]string, 0, len(parts))
	for _, c := range parts {
		if c != "" {
			out = append(out, c)
		}
	}
	return out
}

// lookupCache returns the cached node for path, if present, with its
// refcount incremented.
func (v *Vfs) lookupCache(p string) *Node {
	item := v.cache.Get(&cacheEntry{path: p})
	if item == nil {
		return nil
	}
	n := item.(*cacheEntry).node
	n.incRef()
	return n
}

func (v *Vfs) cacheSize() int { return v.cache.Len() }

func (v *Vfs) insertCache(p string, n *Node) error {
	if v.cacheSize() >= NodeCacheCapacity {
		if v.cache.Get(&cacheEntry{path: p}) == nil {
			return NoMemory
		}
	}
	v.cache.ReplaceOrInsert(&cacheEntry{path: p, node: n})
	return nil
}

// Resolve resolves an absolute or mount-relative path from the
// filesystem root. Returns the resolved node with its refcount
// incremented, or an error if the path does not exist.
func (v *Vfs) Resolve(p string) (*Node, error) {
	v.mu.Lock()
	defer v.mu.Unlock()
	return v.resolveLocked("/", p)
}

// ResolveAt resolves path relative to base, honoring "." and "..".
// Absolute paths bypass base. ".." at root stays at root.
func (v *Vfs) ResolveAt(base *Node, p string) (*Node, error) {
	v.mu.Lock()
	defer v.mu.Unlock()
	basePath := "/"
	if base != nil {
		basePath = base.Path
	}
	return v.resolveLocked(basePath, p)
}

func (v *Vfs) resolveLocked(basePath, p string) (*Node, error) {
	current := basePath
	if strings.HasPrefix(p, "/") {
		current = "/"
	}
	for _, comp := range splitComponents(p) {
		switch comp {
		case ".":
			// no-op
		case "..":
			current = parentPath(current)
		default:
			next := joinPath(current, comp)
			n := v.lookupCache(next)
			if n == nil {
				dirNode := v.lookupCache(current)
				if dirNode == nil {
					return nil, NotFound
				}
				if !dirNode.IsDir() {
					dirNode.decRef()
					return nil, NotDir
				}
				if dirNode.Ops == nil || dirNode.Ops.Lookup == nil {
					dirNode.decRef()
					return nil, NotPermitted
				}
				child, err := dirNode.Ops.Lookup(dirNode, comp)
				dirNode.decRef()
				if err != nil {
					return nil, err
				}
				if child == nil {
					return nil, NotFound
				}
				child.Path = next
				if err := v.insertCache(next, child); err != nil {
					return nil, err
				}
				n = child
				n.incRef()
			}
			// Intermediate lookups keep no reference: only the final
			// lookupCache below hands one to the caller.
			n.decRef()
			current = next
		}
	}
	n := v.lookupCache(current)
	if n == nil {
		return nil, NotFound
	}
	return n, nil
}

func parentPath(p string) string {
	if p == "/" {
		return "/"
	}
	parent := path.Dir(p)
	return parent
}

func joinPath(dir, name string) string {
	if dir == "/" {
		return "/" + name
	}
	return dir + "/" + name
}

// ResolveParent atomically decomposes path into its parent node (still
// referenced) and final component name, so callers never race between
// looking up the parent and operating on the entry.
func (v *Vfs) ResolveParent(p string) (*Node, string, error) {
	clean := canonicalize(p)
	if clean == "/" {
		return nil, "", Invalid
	}
	dir, name := path.Split(clean)
	dir = canonicalize(dir)
	parent, err := v.Resolve(dir)
	if err != nil {
		return nil, "", err
	}
	if !parent.IsDir() {
		v.Release(parent)
		return nil, "", NotDir
	}
	return parent, name, nil
}

// Release decrements node's refcount. A nil node is a no-op.
func (v *Vfs) Release(n *Node) {
	if n == nil {
		return
	}
	n.decRef()
}

// File is an open handle: a resolved node plus a backend handle and
// byte position.
type File struct {
	node     *Node
	handle   interface{}
	position int64
}

// Open resolves path and opens it with flags.
func (v *Vfs) Open(p string, flags OpenFlags) (*File, error) {
	n, err := v.Resolve(p)
	if err != nil {
		if err == NotFound && flags&OCreate != 0 {
			parent, name, perr := v.ResolveParent(p)
			if perr != nil {
				return nil, perr
			}
			created, cerr := v.DirCreate(parent, name, TypeFile)
			v.Release(parent)
			if cerr != nil {
				return nil, cerr
			}
			n = created
		} else {
			return nil, err
		}
	}
	f, err := v.OpenNode(n, flags)
	v.Release(n)
	return f, err
}

// OpenNode opens an already-resolved node without affecting its
// refcount beyond what the returned File pins implicitly.
func (v *Vfs) OpenNode(n *Node, flags OpenFlags) (*File, error) {
	if n.Ops == nil || n.Ops.Open == nil {
		return nil, NotPermitted
	}
	if n.Readonly() && flags&(OWrite|OAppend|OTrunc) != 0 {
		return nil, ReadOnly
	}
	handle, err := n.Ops.Open(n, flags)
	if err != nil {
		return nil, err
	}
	n.incRef()
	f := &File{node: n}
	f.handle = handle
	if flags&OAppend != 0 && n.Ops.Size != nil {
		if sz, err := n.Ops.Size(n); err == nil {
			f.position = sz
			if n.Ops.Seek != nil {
				_ = n.Ops.Seek(handle, sz)
			}
		}
	}
	return f, nil
}

// Close closes an open file and releases its pinned node.
func (v *Vfs) Close(f *File) error {
	if f == nil {
		return BadHandle
	}
	var err error
	if f.node.Ops != nil && f.node.Ops.Close != nil {
		err = f.node.Ops.Close(f.handle)
	}
	v.Release(f.node)
	return err
}

// Read reads from an open file into buf.
func (v *Vfs) Read(f *File, buf []byte) (int, error) {
	if f == nil {
		return 0, BadHandle
	}
	if f.node.Ops == nil || f.node.Ops.Read == nil {
		return 0, NotPermitted
	}
	n, err := f.node.Ops.Read(f.handle, buf)
	f.position += int64(n)
	return n, err
}

// Write writes buf to an open file.
func (v *Vfs) Write(f *File, buf []byte) (int, error) {
	if f == nil {
		return 0, BadHandle
	}
	if f.node.Ops == nil || f.node.Ops.Write == nil {
		return 0, NotPermitted
	}
	n, err := f.node.Ops.Write(f.handle, buf)
	f.position += int64(n)
	return n, err
}

// Seek repositions an open file.
func (v *Vfs) Seek(f *File, offset int64) error {
	if f == nil {
		return BadHandle
	}
	if f.node.Ops == nil || f.node.Ops.Seek == nil {
		return IllegalSeek
	}
	if err := f.node.Ops.Seek(f.handle, offset); err != nil {
		return err
	}
	f.position = offset
	return nil
}

// Tell returns an open file's current position.
func (v *Vfs) Tell(f *File) (int64, error) {
	if f == nil {
		return 0, BadHandle
	}
	return f.position, nil
}

// Size returns path's size in bytes.
func (v *Vfs) Size(p string) (int64, error) {
	n, err := v.Resolve(p)
	if err != nil {
		return 0, err
	}
	defer v.Release(n)
	return v.SizeNode(n)
}

// SizeNode returns an already-resolved node's size in bytes.
func (v *Vfs) SizeNode(n *Node) (int64, error) {
	if n.Ops == nil || n.Ops.Size == nil {
		return 0, NotPermitted
	}
	return n.Ops.Size(n)
}

// DirIterCreate creates a directory iterator for path.
func (v *Vfs) DirIterCreate(p string) (*DirIter, error) {
	n, err := v.Resolve(p)
	if err != nil {
		return nil, err
	}
	iter, err := v.DirIterCreateNode(n)
	if err != nil {
		v.Release(n)
		return nil, err
	}
	return iter, nil
}

// DirIterCreateNode creates a directory iterator for an already-resolved
// directory node. The iterator pins dir until DirIterDestroy.
func (v *Vfs) DirIterCreateNode(dir *Node) (*DirIter, error) {
	if !dir.IsDir() {
		return nil, NotDir
	}
	if dir.Ops == nil || dir.Ops.DirIterCreate == nil {
		return nil, NotPermitted
	}
	dir.incRef()
	iter, err := dir.Ops.DirIterCreate(dir)
	if err != nil {
		dir.decRef()
		return nil, err
	}
	return iter, nil
}

// DirIterNext advances iter. Returns (true, nil) if an entry is
// available (see iter.Name), (false, nil) at end, or an error.
func (v *Vfs) DirIterNext(iter *DirIter) (bool, error) {
	if iter.Dir.Ops == nil || iter.Dir.Ops.DirIterNext == nil {
		return false, NotPermitted
	}
	return iter.Dir.Ops.DirIterNext(iter)
}

// DirIterDestroy destroys iter and releases its pinned directory.
func (v *Vfs) DirIterDestroy(iter *DirIter) {
	if iter == nil {
		return
	}
	if iter.Dir.Ops != nil && iter.Dir.Ops.DirIterDestroy != nil {
		iter.Dir.Ops.DirIterDestroy(iter)
	}
	v.Release(iter.Dir)
}

// DirCreate creates name of the given type inside dir.
func (v *Vfs) DirCreate(dir *Node, name string, typ NodeType) (*Node, error) {
	if !dir.IsDir() {
		return nil, NotDir
	}
	if dir.Readonly() {
		return nil, ReadOnly
	}
	if dir.Ops == nil || dir.Ops.DirCreate == nil {
		return nil, NotPermitted
	}
	child, err := dir.Ops.DirCreate(dir, name, typ)
	if err != nil {
		return nil, err
	}
	v.mu.Lock()
	child.Path = joinPath(dir.Path, name)
	insertErr := v.insertCache(child.Path, child)
	v.mu.Unlock()
	if insertErr != nil {
		return nil, insertErr
	}
	return child, nil
}

// DirRemove removes name from dir.
func (v *Vfs) DirRemove(dir *Node, name string) error {
	if !dir.IsDir() {
		return NotDir
	}
	if dir.Readonly() {
		return ReadOnly
	}
	if dir.Ops == nil || dir.Ops.DirRemove == nil {
		return NotPermitted
	}
	if err := dir.Ops.DirRemove(dir, name); err != nil {
		return err
	}
	v.mu.Lock()
	v.cache.Delete(&cacheEntry{path: joinPath(dir.Path, name)})
	v.mu.Unlock()
	return nil
}

// DirRename renames oldName in oldDir to newName in newDir. Per spec.md
// §9's Open Question, rename across different mount points is rejected
// with Invalid rather than guessed at.
func (v *Vfs) DirRename(oldDir *Node, oldName string, newDir *Node, newName string) error {
	if !oldDir.IsDir() || !newDir.IsDir() {
		return NotDir
	}
	oldMount := v.mountFor(oldDir.Path)
	newMount := v.mountFor(newDir.Path)
	if oldMount != newMount {
		return Invalid
	}
	if oldDir.Ops == nil || oldDir.Ops.Rename == nil {
		return NotPermitted
	}
	if err := oldDir.Ops.Rename(oldDir, oldName, newDir, newName); err != nil {
		return err
	}
	v.mu.Lock()
	oldPath := joinPath(oldDir.Path, oldName)
	newPath := joinPath(newDir.Path, newName)
	v.cache.Delete(&cacheEntry{path: oldPath})
	v.cache.Delete(&cacheEntry{path: newPath})
	v.mu.Unlock()
	return nil
}
