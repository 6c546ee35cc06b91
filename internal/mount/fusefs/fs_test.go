package fusefs

import (
	"bytes"
	"io"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestJoin(t *testing.T) {
	assert.Equal(t, "/k1", join("/", "k1"))
	assert.Equal(t, "/k2/sub", join("/k2", "sub"))
	assert.Equal(t, "/k2/sub", join("/k2/", "sub"))
}

func TestBase(t *testing.T) {
	assert.Equal(t, "k1", base("/k1"))
	assert.Equal(t, "sub", base("/k2/sub"))
	assert.Equal(t, "k2", base("/k2/"))
}

func TestBufferedReader_ReadAt(t *testing.T) {
	r := newBufferedReader(io.NopCloser(bytes.NewReader([]byte("hello world"))))

	buf := make([]byte, 5)
	n, err := r.ReadAt(buf, 0)
	require.NoError(t, err)
	assert.Equal(t, 5, n)
	assert.Equal(t, "hello", string(buf[:n]))

	n, err = r.ReadAt(buf, 6)
	require.NoError(t, err)
	assert.Equal(t, "world", string(buf[:n]))

	// reads past the end return zero bytes, not an error.
	n, err = r.ReadAt(buf, 100)
	require.NoError(t, err)
	assert.Zero(t, n)
}
