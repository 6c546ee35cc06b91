package controller

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	metav1 "k8s.io/apimachinery/pkg/apis/meta/v1"
	"k8s.io/apimachinery/pkg/types"
	"sigs.k8s.io/controller-runtime/pkg/client"
	"sigs.k8s.io/controller-runtime/pkg/client/fake"
	"sigs.k8s.io/controller-runtime/pkg/controller/controllerutil"

	kubedalv1alpha1 "github.com/arunaengine/kubedal/internal/apis/kubedal/v1alpha1"
	"github.com/arunaengine/kubedal/internal/scheme"
)

func noStep(ctx context.Context) (Step, error) { return AwaitChange(), nil }

func fetch(t *testing.T, c client.Client, name string) *kubedalv1alpha1.DataNode {
	t.Helper()
	var dataNode kubedalv1alpha1.DataNode
	require.NoError(t, c.Get(context.Background(), client.ObjectKey{Name: name, Namespace: "ns"}, &dataNode))
	return &dataNode
}

func TestWithFinalizer_AddsFinalizerAndRunsApply(t *testing.T) {
	seed := &kubedalv1alpha1.DataNode{
		ObjectMeta: metav1.ObjectMeta{Name: "dn1", Namespace: "ns", UID: types.UID("u1")},
	}
	c := fake.NewClientBuilder().WithScheme(scheme.New()).WithObjects(seed).Build()
	dataNode := fetch(t, c, "dn1")

	applied := false
	result, err := WithFinalizer(context.Background(), c, dataNode, kubedalv1alpha1.DataNodeFinalizer,
		func(ctx context.Context) (Step, error) {
			applied = true
			return Requeue(time.Minute), nil
		}, noStep)
	require.NoError(t, err)
	assert.True(t, applied)
	assert.Equal(t, time.Minute, result.RequeueAfter)

	assert.True(t, controllerutil.ContainsFinalizer(fetch(t, c, "dn1"), kubedalv1alpha1.DataNodeFinalizer))
}

func TestWithFinalizer_RunsCleanupAndRemovesFinalizerOnDelete(t *testing.T) {
	now := metav1.Now()
	seed := &kubedalv1alpha1.DataNode{
		ObjectMeta: metav1.ObjectMeta{
			Name:              "dn1",
			Namespace:         "ns",
			UID:               types.UID("u1"),
			DeletionTimestamp: &now,
			Finalizers:        []string{kubedalv1alpha1.DataNodeFinalizer},
		},
	}
	c := fake.NewClientBuilder().WithScheme(scheme.New()).WithObjects(seed).Build()
	dataNode := fetch(t, c, "dn1")

	cleaned := false
	_, err := WithFinalizer(context.Background(), c, dataNode, kubedalv1alpha1.DataNodeFinalizer,
		noStep, func(ctx context.Context) (Step, error) {
			cleaned = true
			return AwaitChange(), nil
		})
	require.NoError(t, err)
	assert.True(t, cleaned)

	// with its last finalizer removed, the deleting object is gone.
	var fetched kubedalv1alpha1.DataNode
	err = c.Get(context.Background(), client.ObjectKey{Name: "dn1", Namespace: "ns"}, &fetched)
	assert.Error(t, err)
}

func TestWithFinalizer_CleanupFailureKeepsFinalizer(t *testing.T) {
	now := metav1.Now()
	seed := &kubedalv1alpha1.DataNode{
		ObjectMeta: metav1.ObjectMeta{
			Name:              "dn1",
			Namespace:         "ns",
			UID:               types.UID("u1"),
			DeletionTimestamp: &now,
			Finalizers:        []string{kubedalv1alpha1.DataNodeFinalizer},
		},
	}
	c := fake.NewClientBuilder().WithScheme(scheme.New()).WithObjects(seed).Build()
	dataNode := fetch(t, c, "dn1")

	_, err := WithFinalizer(context.Background(), c, dataNode, kubedalv1alpha1.DataNodeFinalizer,
		noStep, func(ctx context.Context) (Step, error) {
			return Step{}, &ReconcilerError{Message: "cleanup not done yet"}
		})
	require.Error(t, err)

	assert.True(t, controllerutil.ContainsFinalizer(fetch(t, c, "dn1"), kubedalv1alpha1.DataNodeFinalizer))
}

func TestStep_Result(t *testing.T) {
	assert.Equal(t, time.Minute, Requeue(time.Minute).result().RequeueAfter)
	assert.Zero(t, AwaitChange().result().RequeueAfter)
}
