// Package fusefs implements a read-through FUSE filesystem that forwards
// Lookup/Open/Read/ReadDir calls to a backend.Operator, the userspace-mount
// counterpart to the cached-mode mirroring in internal/mount.
package fusefs

import (
	"context"
	"os"
	"strings"
	"sync"

	"github.com/anacrolix/fuse"
	fusefspkg "github.com/anacrolix/fuse/fs"

	"github.com/arunaengine/kubedal/internal/backend"
)

// FS is the root of a backend-forwarding filesystem tree.
type FS struct {
	operator backend.Operator
	readOnly bool
}

// New constructs a FUSE filesystem rooted at the backend's configured root.
func New(operator backend.Operator, readOnly bool) *FS {
	return &FS{operator: operator, readOnly: readOnly}
}

var _ fusefspkg.FS = (*FS)(nil)

func (f *FS) Root() (fusefspkg.Node, error) {
	return &dir{fs: f, path: "/"}, nil
}

// dir is a directory node; its children are listed lazily from the backend
// on every ReadDirAll/Lookup, since the operator has no change-notification.
type dir struct {
	fs   *FS
	path string
}

var (
	_ fusefspkg.Node               = (*dir)(nil)
	_ fusefspkg.NodeStringLookuper = (*dir)(nil)
	_ fusefspkg.HandleReadDirAller = (*dir)(nil)
)

func (d *dir) Attr(ctx context.Context, a *fuse.Attr) error {
	a.Mode = os.ModeDir | 0o755
	return nil
}

func (d *dir) Lookup(ctx context.Context, name string) (fusefspkg.Node, error) {
	entries, err := d.fs.operator.List(ctx, d.path)
	if err != nil {
		return nil, fuse.EIO
	}
	target := join(d.path, name)
	for _, e := range entries {
		if e.Path != target {
			continue
		}
		switch e.Kind {
		case backend.EntryDirectory:
			return &dir{fs: d.fs, path: target}, nil
		case backend.EntryFile:
			return &file{fs: d.fs, path: target, size: e.Size}, nil
		default:
			return nil, fuse.EIO
		}
	}
	return nil, fuse.ENOENT
}

func (d *dir) ReadDirAll(ctx context.Context) ([]fuse.Dirent, error) {
	entries, err := d.fs.operator.List(ctx, d.path)
	if err != nil {
		return nil, fuse.EIO
	}

	dirents := make([]fuse.Dirent, 0, len(entries))
	for _, e := range entries {
		typ := fuse.DT_File
		if e.Kind == backend.EntryDirectory {
			typ = fuse.DT_Dir
		}
		dirents = append(dirents, fuse.Dirent{Name: base(e.Path), Type: typ})
	}
	return dirents, nil
}

// file is a leaf node; every Open re-opens the backend reader, and the
// handle buffers that object in memory (bufferedReader). Nothing is cached
// across opens.
type file struct {
	fs   *FS
	path string
	size int64

	mu     sync.Mutex
	reader *bufferedReader
}

var (
	_ fusefspkg.Node       = (*file)(nil)
	_ fusefspkg.NodeOpener = (*file)(nil)
)

func (f *file) Attr(ctx context.Context, a *fuse.Attr) error {
	a.Mode = 0o644
	a.Size = uint64(f.size)
	if f.fs.readOnly {
		a.Mode = 0o444
	}
	return nil
}

func (f *file) Open(ctx context.Context, req *fuse.OpenRequest, resp *fuse.OpenResponse) (fusefspkg.Handle, error) {
	if f.fs.readOnly && req.Flags.IsWriteOnly() {
		return nil, fuse.EPERM
	}
	rc, err := f.fs.operator.Reader(ctx, f.path)
	if err != nil {
		return nil, fuse.EIO
	}
	return &fileHandle{reader: newBufferedReader(rc)}, nil
}

var _ fusefspkg.HandleReader = (*fileHandle)(nil)

type fileHandle struct {
	reader *bufferedReader
}

func (h *fileHandle) Read(ctx context.Context, req *fuse.ReadRequest, resp *fuse.ReadResponse) error {
	buf := make([]byte, req.Size)
	n, err := h.reader.ReadAt(buf, req.Offset)
	if err != nil {
		return fuse.EIO
	}
	resp.Data = buf[:n]
	return nil
}

func join(parent, name string) string {
	if parent == "/" {
		return "/" + name
	}
	return strings.TrimSuffix(parent, "/") + "/" + name
}

func base(path string) string {
	i := strings.LastIndex(strings.TrimSuffix(path, "/"), "/")
	return strings.TrimSuffix(path, "/")[i+1:]
}
