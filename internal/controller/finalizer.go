package controller

import (
	"context"
	"time"

	apierrors "k8s.io/apimachinery/pkg/api/errors"
	ctrl "sigs.k8s.io/controller-runtime"
	"sigs.k8s.io/controller-runtime/pkg/client"
	"sigs.k8s.io/controller-runtime/pkg/controller/controllerutil"
)

// Step is the inner reconciler's outcome: either requeue after a duration,
// or await the next watch event with no explicit requeue.
type Step struct {
	RequeueAfter time.Duration
	Await        bool
}

func Requeue(after time.Duration) Step { return Step{RequeueAfter: after} }
func AwaitChange() Step                { return Step{Await: true} }

func (s Step) result() ctrl.Result {
	if s.Await {
		return ctrl.Result{}
	}
	return ctrl.Result{RequeueAfter: s.RequeueAfter}
}

// WithFinalizer wraps an apply/cleanup pair in the finalizer lifecycle: on
// an object lacking the finalizer and not being deleted, add it atomically;
// on an object being deleted, run cleanup and, on success, remove the
// finalizer.
func WithFinalizer(
	ctx context.Context,
	c client.Client,
	obj client.Object,
	finalizer string,
	apply func(ctx context.Context) (Step, error),
	cleanup func(ctx context.Context) (Step, error),
) (ctrl.Result, error) {
	if !obj.GetDeletionTimestamp().IsZero() {
		step, err := cleanup(ctx)
		if err != nil {
			return ctrl.Result{}, err
		}

		// cleanup returning without error is itself the success signal;
		// Step only encodes how the (rare) non-deleting requeue should
		// behave, not whether cleanup finished.
		controllerutil.RemoveFinalizer(obj, finalizer)
		if err := c.Update(ctx, obj); err != nil {
			if apierrors.IsConflict(err) {
				return ctrl.Result{RequeueAfter: time.Second}, nil
			}
			return ctrl.Result{}, &FinalizerError{Err: err}
		}
		return step.result(), nil
	}

	if !controllerutil.ContainsFinalizer(obj, finalizer) {
		controllerutil.AddFinalizer(obj, finalizer)
		if err := c.Update(ctx, obj); err != nil {
			if apierrors.IsConflict(err) {
				return ctrl.Result{RequeueAfter: time.Second}, nil
			}
			return ctrl.Result{}, &FinalizerError{Err: err}
		}
	}

	step, err := apply(ctx)
	if err != nil {
		return ctrl.Result{}, err
	}
	return step.result(), nil
}
