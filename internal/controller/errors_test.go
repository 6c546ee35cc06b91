package controller

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestErrorWrapping(t *testing.T) {
	cause := errors.New("connection refused")

	var err error = &KubeError{Op: "list DataNodes", Err: cause}
	assert.ErrorIs(t, err, cause)
	assert.Contains(t, err.Error(), "list DataNodes")

	err = &SecretAccessError{Name: "s1", Namespace: "ns", Err: cause}
	assert.ErrorIs(t, err, cause)
	assert.Contains(t, err.Error(), "ns/s1")

	err = &FinalizerError{Err: cause}
	assert.ErrorIs(t, err, cause)

	err = &MissingSecret{Name: "s1", Namespace: "ns"}
	assert.Contains(t, err.Error(), "not found")

	err = &ReconcilerError{Message: "no DataNode reference/selector"}
	assert.Equal(t, "no DataNode reference/selector", err.Error())
}
