package mount

import (
	"context"
	"fmt"

	"github.com/anacrolix/fuse"
	fusefspkg "github.com/anacrolix/fuse/fs"

	"github.com/arunaengine/kubedal/internal/backend"
	"github.com/arunaengine/kubedal/internal/mount/fusefs"
)

type fuseMount struct {
	conn       *fuse.Conn
	targetPath string
}

// mountFuse starts a userspace filesystem session forwarding reads to op,
// mounted at targetPath. Serving runs in its own goroutine for the
// lifetime of the mount; unmountFuse drives the retained connection to
// unmount.
func mountFuse(ctx context.Context, targetPath string, op backend.Operator, access Access) (*fuseMount, error) {
	opts := []fuse.MountOption{fuse.FSName("kubedal"), fuse.Subtype("kubedal")}
	if access == ReadOnly {
		opts = append(opts, fuse.ReadOnly())
	}

	conn, err := fuse.Mount(targetPath, opts...)
	if err != nil {
		return nil, fmt.Errorf("mount: fuse mount failed: %w", err)
	}

	filesystem := fusefs.New(op, access == ReadOnly)
	go func() {
		_ = fusefspkg.Serve(conn, filesystem)
	}()

	<-conn.Ready
	if err := conn.MountError; err != nil {
		conn.Close()
		return nil, fmt.Errorf("mount: fuse mount handshake failed: %w", err)
	}

	return &fuseMount{conn: conn, targetPath: targetPath}, nil
}

func unmountFuse(m *fuseMount) error {
	if m == nil {
		return nil
	}
	if err := fuse.Unmount(m.targetPath); err != nil {
		return fmt.Errorf("mount: fuse unmount failed: %w", err)
	}
	return m.conn.Close()
}
