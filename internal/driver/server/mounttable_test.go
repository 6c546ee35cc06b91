package server

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/arunaengine/kubedal/internal/mount"
)

func TestMountTable_PutGetDelete(t *testing.T) {
	table := NewMountTable()

	_, ok := table.Get("v1")
	assert.False(t, ok)

	m := mount.New("v1", "/target", nil, mount.Cached, mount.ReadOnly)
	table.Put("v1", m)

	got, ok := table.Get("v1")
	assert.True(t, ok)
	assert.Same(t, m, got)

	table.Delete("v1")
	_, ok = table.Get("v1")
	assert.False(t, ok)

	// deleting an absent key is a no-op.
	table.Delete("v1")
}
