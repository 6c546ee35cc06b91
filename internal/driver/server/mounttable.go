package server

import (
	"sync"

	"github.com/arunaengine/kubedal/internal/mount"
)

// MountTable is the node service's table of active mounts: a process-local
// map from volume_id to its owned Mount record, created on successful
// publish and destroyed on unpublish.
type MountTable struct {
	mu     sync.Mutex
	mounts map[string]*mount.Mount
}

func NewMountTable() *MountTable {
	return &MountTable{mounts: make(map[string]*mount.Mount)}
}

func (t *MountTable) Get(volumeID string) (*mount.Mount, bool) {
	t.mu.Lock()
	defer t.mu.Unlock()
	m, ok := t.mounts[volumeID]
	return m, ok
}

func (t *MountTable) Put(volumeID string, m *mount.Mount) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.mounts[volumeID] = m
}

func (t *MountTable) Delete(volumeID string) {
	t.mu.Lock()
	defer t.mu.Unlock()
	delete(t.mounts, volumeID)
}
