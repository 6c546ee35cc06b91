package backend

import (
	"context"
	"io"
	"time"

	"github.com/cenkalti/backoff/v4"
	"github.com/go-logr/logr"
	"sigs.k8s.io/controller-runtime/pkg/log"
)

// loggingOperator wraps an Operator and logs every call through
// controller-runtime's context logger.
type loggingOperator struct {
	inner Operator
}

func withLogging(inner Operator) Operator {
	return &loggingOperator{inner: inner}
}

func (o *loggingOperator) logger(ctx context.Context) logr.Logger {
	return log.FromContext(ctx).WithName("backend")
}

func (o *loggingOperator) Check(ctx context.Context) error {
	err := o.inner.Check(ctx)
	if err != nil {
		o.logger(ctx).Error(err, "check failed")
	} else {
		o.logger(ctx).V(1).Info("check ok")
	}
	return err
}

func (o *loggingOperator) List(ctx context.Context, path string) ([]Entry, error) {
	entries, err := o.inner.List(ctx, path)
	if err != nil {
		o.logger(ctx).Error(err, "list failed", "path", path)
		return nil, err
	}
	o.logger(ctx).V(1).Info("list ok", "path", path, "count", len(entries))
	return entries, nil
}

func (o *loggingOperator) Reader(ctx context.Context, path string) (io.ReadCloser, error) {
	r, err := o.inner.Reader(ctx, path)
	if err != nil {
		o.logger(ctx).Error(err, "reader open failed", "path", path)
	}
	return r, err
}

// retryOperator wraps an Operator with exponential-backoff retry. Only the
// open of a Reader stream is retried, never the stream itself: retrying a
// partially-consumed io.ReadCloser would silently duplicate or drop bytes.
type retryOperator struct {
	inner Operator
}

func withRetry(inner Operator) Operator {
	return &retryOperator{inner: inner}
}

func newBackoff(ctx context.Context) backoff.BackOffContext {
	b := backoff.NewExponentialBackOff()
	b.MaxElapsedTime = 30 * time.Second
	return backoff.WithContext(b, ctx)
}

func (o *retryOperator) Check(ctx context.Context) error {
	return backoff.Retry(func() error {
		return o.inner.Check(ctx)
	}, newBackoff(ctx))
}

func (o *retryOperator) List(ctx context.Context, path string) ([]Entry, error) {
	var entries []Entry
	err := backoff.Retry(func() error {
		var err error
		entries, err = o.inner.List(ctx, path)
		return err
	}, newBackoff(ctx))
	return entries, err
}

func (o *retryOperator) Reader(ctx context.Context, path string) (io.ReadCloser, error) {
	var r io.ReadCloser
	err := backoff.Retry(func() error {
		var err error
		r, err = o.inner.Reader(ctx, path)
		return err
	}, newBackoff(ctx))
	return r, err
}
