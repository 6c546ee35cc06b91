// Package registry implements the CSI Controller Service's in-memory
// volume registry: a process-local, mutex-guarded map from volume name to
// the volume_id/capacity/context triple minted for it.
package registry

import "sync"

// Volume is one registry entry, keyed externally by its user-supplied name.
type Volume struct {
	ID            string
	CapacityBytes int64
	VolumeContext map[string]string
}

// Registry is process-local and holds no durable state of its own: it
// starts empty on every process start, and nothing repopulates it from
// orchestrator state.
type Registry struct {
	mu     sync.Mutex
	byName map[string]Volume
	byID   map[string]string // volume id -> name, for DeleteVolume lookup
}

func New() *Registry {
	return &Registry{
		byName: make(map[string]Volume),
		byID:   make(map[string]string),
	}
}

// Get returns the volume registered under name, if any.
func (r *Registry) Get(name string) (Volume, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	v, ok := r.byName[name]
	return v, ok
}

// Put inserts or overwrites the volume registered under name.
func (r *Registry) Put(name string, v Volume) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.byName[name] = v
	r.byID[v.ID] = name
}

// PutIfAbsent registers v under name unless an entry already exists, and
// returns the entry that won. Concurrent CreateVolume calls for the same
// name race to this single insertion point, so both observe one volume.
func (r *Registry) PutIfAbsent(name string, v Volume) Volume {
	r.mu.Lock()
	defer r.mu.Unlock()
	if existing, ok := r.byName[name]; ok {
		return existing
	}
	r.byName[name] = v
	r.byID[v.ID] = name
	return v
}

// DeleteByID removes the volume with the given id, if present. It is a
// no-op if absent, matching DeleteVolume's idempotent contract.
func (r *Registry) DeleteByID(id string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	name, ok := r.byID[id]
	if !ok {
		return
	}
	delete(r.byName, name)
	delete(r.byID, id)
}

// List returns a snapshot of all registered volumes.
func (r *Registry) List() []Volume {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]Volume, 0, len(r.byName))
	for _, v := range r.byName {
		out = append(out, v)
	}
	return out
}
