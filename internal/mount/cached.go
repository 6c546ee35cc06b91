package mount

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sync"

	"golang.org/x/sync/errgroup"
	kmount "k8s.io/mount-utils"

	"github.com/arunaengine/kubedal/internal/backend"
	atomicwriter "github.com/arunaengine/kubedal/third_party/k8s.io/kubernetes/pkg/volume/util"
)

// stagingRoot is the well-known parent directory for per-volume cached-mode
// staging directories.
var stagingRoot = filepath.Join(os.TempDir(), "kubedal", "staging")

// fetchConcurrency bounds how many backend objects are streamed into the
// staging payload at once during cached-mode mirroring.
const fetchConcurrency = 4

type cachedMount struct {
	stagingDir string
	targetPath string
	mounter    kmount.Interface
}

func stagingDirFor(volumeID string) string {
	return filepath.Join(stagingRoot, volumeID)
}

func ensureDir(path string) error {
	if err := os.MkdirAll(path, 0o755); err != nil {
		return fmt.Errorf("mount: failed to create directory %s: %w", path, err)
	}
	return nil
}

// mountCached lists the backend root, mirrors every file into a staging
// directory via the vendored AtomicWriter, and bind-mounts the staging
// directory onto targetPath.
func mountCached(ctx context.Context, volumeID, targetPath string, op backend.Operator, access Access) (*cachedMount, error) {
	stagingDir := stagingDirFor(volumeID)
	if err := ensureDir(stagingDir); err != nil {
		return nil, err
	}

	if err := mirror(ctx, op, stagingDir); err != nil {
		return nil, err
	}

	mounter := kmount.New("")
	opts := []string{"bind"}
	if access == ReadOnly {
		opts = append(opts, "ro")
	}
	if err := mounter.Mount(stagingDir, targetPath, "", opts); err != nil {
		return nil, fmt.Errorf("mount: bind mount failed: %w", err)
	}

	return &cachedMount{stagingDir: stagingDir, targetPath: targetPath, mounter: mounter}, nil
}

// unmountCached removes the bind at the target path; the staging directory
// stays behind for reclamation.
func unmountCached(m *cachedMount) error {
	if m == nil {
		return nil
	}
	return m.mounter.Unmount(m.targetPath)
}

// mirror recursively lists the backend root and writes every file entry
// into dir via an AtomicWriter payload: files are opened and streamed,
// directories are ensured to exist, and any entry kind the operator could
// not classify fails Unknown.
func mirror(ctx context.Context, op backend.Operator, dir string) error {
	entries, err := op.List(ctx, "")
	if err != nil {
		return err
	}

	writer, err := atomicwriter.NewAtomicWriter(dir)
	if err != nil {
		return fmt.Errorf("mount: failed to construct staging writer: %w", err)
	}

	var files []backend.Entry
	var dirs []string
	for _, entry := range entries {
		switch entry.Kind {
		case backend.EntryDirectory:
			dirs = append(dirs, relPath(entry.Path))
		case backend.EntryFile:
			files = append(files, entry)
		default:
			return &backend.Error{Code: backend.ErrUnknown, Message: fmt.Sprintf("unrecognized entry kind for %s", entry.Path)}
		}
	}

	payload := make(map[string]atomicwriter.FileProjection, len(files))
	var mu sync.Mutex
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(fetchConcurrency)
	for _, entry := range files {
		entry := entry
		g.Go(func() error {
			data, err := readAll(gctx, op, entry.Path)
			if err != nil {
				return err
			}
			mu.Lock()
			payload[relPath(entry.Path)] = atomicwriter.FileProjection{Data: data, Mode: 0o644}
			mu.Unlock()
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return err
	}

	if len(payload) > 0 {
		if err := writer.Write(ctx, payload, nil); err != nil {
			return err
		}
	}

	// Directories come after the payload write: MkdirAll either follows the
	// writer's top-level symlink for a populated prefix, or creates a real
	// directory for an empty one. The other order collides with the
	// writer's symlink setup.
	for _, rel := range dirs {
		if err := ensureDir(filepath.Join(dir, rel)); err != nil {
			return err
		}
	}
	return nil
}

func relPath(path string) string {
	for len(path) > 0 && path[0] == '/' {
		path = path[1:]
	}
	return path
}

func readAll(ctx context.Context, op backend.Operator, path string) ([]byte, error) {
	r, err := op.Reader(ctx, path)
	if err != nil {
		return nil, err
	}
	defer r.Close()
	return io.ReadAll(r)
}
