package mount

import (
	"bytes"
	"context"
	"errors"
	"io"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/arunaengine/kubedal/internal/backend"
)

// fakeOperator serves listings and object bytes from memory.
type fakeOperator struct {
	entries  []backend.Entry
	files    map[string][]byte
	checkErr error
}

func (f *fakeOperator) Check(ctx context.Context) error { return f.checkErr }

func (f *fakeOperator) List(ctx context.Context, path string) ([]backend.Entry, error) {
	return f.entries, nil
}

func (f *fakeOperator) Reader(ctx context.Context, path string) (io.ReadCloser, error) {
	data, ok := f.files[path]
	if !ok {
		return nil, errors.New("no such object")
	}
	return io.NopCloser(bytes.NewReader(data)), nil
}

func TestMirror_WritesFilesAndDirectories(t *testing.T) {
	op := &fakeOperator{
		entries: []backend.Entry{
			{Path: "/k1", Kind: backend.EntryFile, Size: 5},
			{Path: "/k2/sub", Kind: backend.EntryFile, Size: 3},
			{Path: "/empty", Kind: backend.EntryDirectory},
		},
		files: map[string][]byte{
			"/k1":     []byte("hello"),
			"/k2/sub": []byte("sub"),
		},
	}

	dir := t.TempDir()
	require.NoError(t, mirror(context.Background(), op, dir))

	data, err := os.ReadFile(filepath.Join(dir, "k1"))
	require.NoError(t, err)
	assert.Equal(t, []byte("hello"), data)

	data, err = os.ReadFile(filepath.Join(dir, "k2", "sub"))
	require.NoError(t, err)
	assert.Equal(t, []byte("sub"), data)

	info, err := os.Stat(filepath.Join(dir, "empty"))
	require.NoError(t, err)
	assert.True(t, info.IsDir())
}

func TestMirror_EmptyBackend(t *testing.T) {
	op := &fakeOperator{}
	require.NoError(t, mirror(context.Background(), op, t.TempDir()))
}

func TestMirror_UnknownEntryKindFails(t *testing.T) {
	op := &fakeOperator{
		entries: []backend.Entry{{Path: "/weird", Kind: backend.EntryUnknown}},
	}

	err := mirror(context.Background(), op, t.TempDir())
	require.Error(t, err)

	var berr *backend.Error
	require.ErrorAs(t, err, &berr)
	assert.Equal(t, backend.ErrUnknown, berr.Code)
}

func TestMount_FailsFastWhenProbeFails(t *testing.T) {
	op := &fakeOperator{checkErr: errors.New("unreachable")}
	m := New("v1", t.TempDir(), op, Cached, ReadOnly)

	err := m.Mount(context.Background())
	require.Error(t, err)
	assert.Equal(t, Unmounted, m.State(), "failed mount must return to Unmounted")
}
