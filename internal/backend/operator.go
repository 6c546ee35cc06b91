// Package backend builds typed object-storage clients ("operators") from a
// DataNode's backend kind and configuration.
package backend

import (
	"context"
	"fmt"
	"io"

	kubedalv1alpha1 "github.com/arunaengine/kubedal/internal/apis/kubedal/v1alpha1"
)

// EntryKind classifies a listing entry returned by Operator.List.
type EntryKind int

const (
	// EntryUnknown is an entry kind the operator could not classify; mount
	// mirroring must fail rather than guess.
	EntryUnknown EntryKind = iota
	EntryFile
	EntryDirectory
)

// Entry is one object or prefix returned by a recursive backend listing.
type Entry struct {
	Path string
	Kind EntryKind
	Size int64
}

// Operator is a constructed backend client capable of listing, reading, and
// probing a DataNode endpoint. It never mutates orchestrator state; secret
// fetching and all Kubernetes API calls happen upstream of NewOperator.
type Operator interface {
	// Check performs a cheap reachability probe against the backend. It is
	// called once by the Mount Engine before any data movement begins.
	Check(ctx context.Context) error

	// List recursively enumerates entries rooted at path. An empty path
	// lists from the operator's configured root.
	List(ctx context.Context, path string) ([]Entry, error)

	// Reader opens a streaming reader for the object at path. The caller
	// owns the returned io.ReadCloser and must close it.
	Reader(ctx context.Context, path string) (io.ReadCloser, error)
}

// Error is a backend-factory or backend-operation failure, carrying the CSI
// status code the caller should surface.
type Error struct {
	Code    ErrorCode
	Message string
	Err     error
}

func (e *Error) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %s: %v", e.Code, e.Message, e.Err)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

func (e *Error) Unwrap() error { return e.Err }

// ErrorCode mirrors the subset of the CSI error taxonomy that backend
// construction and operation can produce.
type ErrorCode string

const (
	ErrInvalidArgument ErrorCode = "InvalidArgument"
	ErrInternal        ErrorCode = "Internal"
	ErrUnknown         ErrorCode = "Unknown"
)

func invalidArgument(format string, args ...any) error {
	return &Error{Code: ErrInvalidArgument, Message: fmt.Sprintf(format, args...)}
}

func internal(err error, format string, args ...any) error {
	return &Error{Code: ErrInternal, Message: fmt.Sprintf(format, args...), Err: err}
}

// NewOperator builds a layered Operator for the given backend kind and
// merged config. Logging and retry are always attached, never left to the
// caller to bolt on.
func NewOperator(kind kubedalv1alpha1.Backend, config map[string]string) (Operator, error) {
	var op Operator
	var err error

	switch kind {
	case kubedalv1alpha1.BackendS3:
		op, err = newS3Operator(config)
	case kubedalv1alpha1.BackendHTTP:
		op, err = newHTTPOperator(config)
	default:
		return nil, invalidArgument("unrecognized backend kind %q", kind)
	}
	if err != nil {
		return nil, err
	}

	return withRetry(withLogging(op)), nil
}
