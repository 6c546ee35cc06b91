package mount

import "fmt"

// Mode selects how a Mount materializes backend data at a target path.
type Mode int

const (
	Cached Mode = iota
	Fuse
)

// Access selects whether a mount permits writes.
type Access int

const (
	ReadWrite Access = iota
	ReadOnly
)

// MountAccess is the wire-level string carried in volume context / claim
// annotations, e.g. "cache-read-only". Parsing is case-exact over the
// kebab-case forms; unrecognized strings are rejected rather than defaulted.
type MountAccess string

const (
	CacheReadWrite MountAccess = "cache-read-write"
	CacheReadOnly  MountAccess = "cache-read-only"
	FuseReadWrite  MountAccess = "fuse-read-write"
	FuseReadOnly   MountAccess = "fuse-read-only"
)

// Parse decodes a MountAccess string into its (Mode, Access) pair.
func (m MountAccess) Parse() (Mode, Access, error) {
	switch m {
	case CacheReadWrite:
		return Cached, ReadWrite, nil
	case CacheReadOnly:
		return Cached, ReadOnly, nil
	case FuseReadWrite:
		return Fuse, ReadWrite, nil
	case FuseReadOnly:
		return Fuse, ReadOnly, nil
	default:
		return 0, 0, fmt.Errorf("mount: unrecognized mount access %q", string(m))
	}
}
