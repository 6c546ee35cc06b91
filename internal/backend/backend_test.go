package backend

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	kubedalv1alpha1 "github.com/arunaengine/kubedal/internal/apis/kubedal/v1alpha1"
)

func TestMergeConfig_SecretWinsOnCollision(t *testing.T) {
	merged, err := MergeConfig(
		map[string]string{"bucket": "b", "region": "us-east-1"},
		map[string][]byte{"region": []byte("eu-west-1"), "access_key": []byte("ak")},
	)
	require.NoError(t, err)
	assert.Equal(t, "b", merged["bucket"])
	assert.Equal(t, "eu-west-1", merged["region"])
	assert.Equal(t, "ak", merged["access_key"])
}

func TestMergeConfig_NonUTF8Secret(t *testing.T) {
	_, err := MergeConfig(nil, map[string][]byte{"key": {0xff, 0xfe, 0xfd}})
	require.Error(t, err)

	var berr *Error
	require.ErrorAs(t, err, &berr)
	assert.Equal(t, ErrInternal, berr.Code)
	assert.Contains(t, berr.Message, "Failed to deserialize secret")
}

func TestNewOperator_UnrecognizedBackend(t *testing.T) {
	_, err := NewOperator(kubedalv1alpha1.Backend("FTP"), nil)
	require.Error(t, err)

	var berr *Error
	require.ErrorAs(t, err, &berr)
	assert.Equal(t, ErrInvalidArgument, berr.Code)
}

func TestNewOperator_S3MissingConfig(t *testing.T) {
	_, err := NewOperator(kubedalv1alpha1.BackendS3, map[string]string{})
	require.Error(t, err)

	var berr *Error
	require.ErrorAs(t, err, &berr)
	assert.Equal(t, ErrInvalidArgument, berr.Code)
}

func TestNewOperator_HTTPMissingConfig(t *testing.T) {
	_, err := NewOperator(kubedalv1alpha1.BackendHTTP, map[string]string{})
	require.Error(t, err)
}

func TestS3Operator_JoinRoot(t *testing.T) {
	op, err := newS3Operator(map[string]string{
		"endpoint": "http://localhost:9000",
		"bucket":   "b",
		"root":     "/prefix",
	})
	require.NoError(t, err)

	s3 := op.(*s3Operator)
	assert.Equal(t, "prefix/k1", s3.joinRoot("/k1"))
	assert.Equal(t, "prefix", s3.joinRoot(""))
	assert.Equal(t, "prefix/k2/sub", s3.joinRoot("k2/sub"))

	noRoot, err := newS3Operator(map[string]string{"endpoint": "http://localhost:9000", "bucket": "b"})
	require.NoError(t, err)
	assert.Equal(t, "k1", noRoot.(*s3Operator).joinRoot("/k1"))
}

func TestNewOperator_HTTPBuildsLayeredOperator(t *testing.T) {
	op, err := NewOperator(kubedalv1alpha1.BackendHTTP, map[string]string{"endpoint": "http://example.invalid"})
	require.NoError(t, err)
	assert.NotNil(t, op)

	_, ok := op.(*retryOperator)
	assert.True(t, ok, "NewOperator must wrap with retry as the outermost layer")
}
