package mount

import (
	"context"
	"fmt"
	"sync"

	"github.com/arunaengine/kubedal/internal/backend"
)

// State is a Mount's lifecycle stage. Only Mounted may transition to
// Unmounting; unmounting from every other state is a no-op success.
type State int

const (
	Unmounted State = iota
	Mounting
	Mounted
	Unmounting
)

func (s State) String() string {
	switch s {
	case Unmounted:
		return "Unmounted"
	case Mounting:
		return "Mounting"
	case Mounted:
		return "Mounted"
	case Unmounting:
		return "Unmounting"
	default:
		return "Unknown"
	}
}

// Mount is a runtime record associating a target path with a backend
// operator and a mount strategy. It exclusively owns the OS resources it
// creates (staging directory, bind mount, fuse session) and its teardown is
// always safe to call more than once.
type Mount struct {
	VolumeID   string
	TargetPath string

	operator backend.Operator
	mode     Mode
	access   Access

	mu    sync.Mutex
	state State

	cached *cachedMount
	fused  *fuseMount
}

// New constructs a Mount in the Unmounted state. Call Mount to bring it up.
func New(volumeID, targetPath string, operator backend.Operator, mode Mode, access Access) *Mount {
	return &Mount{
		VolumeID:   volumeID,
		TargetPath: targetPath,
		operator:   operator,
		mode:       mode,
		access:     access,
		state:      Unmounted,
	}
}

// ResolveAccess demotes a requested read-write access to read-only when the
// owning DataNode is marked read-only. Demote rather than reject: a
// workload that merely didn't know the backend was read-only still gets a
// usable mount.
func ResolveAccess(requested Access, dataNodeReadOnly bool) Access {
	if dataNodeReadOnly && requested == ReadWrite {
		return ReadOnly
	}
	return requested
}

// Mount brings the record from Unmounted to Mounted. Calling it again while
// already Mounted is a no-op success.
func (m *Mount) Mount(ctx context.Context) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.state == Mounted {
		return nil
	}
	if m.state != Unmounted {
		return fmt.Errorf("mount: cannot mount volume %s from state %s", m.VolumeID, m.state)
	}
	m.state = Mounting

	if err := m.operator.Check(ctx); err != nil {
		m.state = Unmounted
		return fmt.Errorf("mount: reachability check failed for volume %s: %w", m.VolumeID, err)
	}

	if err := ensureDir(m.TargetPath); err != nil {
		m.state = Unmounted
		return err
	}

	var err error
	switch m.mode {
	case Cached:
		m.cached, err = mountCached(ctx, m.VolumeID, m.TargetPath, m.operator, m.access)
	case Fuse:
		m.fused, err = mountFuse(ctx, m.TargetPath, m.operator, m.access)
	default:
		err = fmt.Errorf("mount: unrecognized mount mode %d", m.mode)
	}
	if err != nil {
		m.state = Unmounted
		return err
	}

	m.state = Mounted
	return nil
}

// Unmount tears a Mounted record down. Called from any other state, it is a
// no-op success.
func (m *Mount) Unmount(ctx context.Context) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.state != Mounted {
		return nil
	}
	m.state = Unmounting

	var err error
	switch m.mode {
	case Cached:
		err = unmountCached(m.cached)
	case Fuse:
		err = unmountFuse(m.fused)
	}
	if err != nil {
		// Leave state as Unmounting: a caller must retry rather than
		// silently relabeling a failed teardown as Unmounted.
		return fmt.Errorf("mount: unmount failed for volume %s: %w", m.VolumeID, err)
	}

	m.cached = nil
	m.fused = nil
	m.state = Unmounted
	return nil
}

// State returns the current lifecycle stage, for tests and diagnostics.
func (m *Mount) State() State {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.state
}
