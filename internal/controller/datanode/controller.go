// Package datanode implements the DataNode controller (C7): it validates
// backend reachability once and publishes availability/usage status.
package datanode

import (
	"context"
	"time"

	corev1 "k8s.io/api/core/v1"
	apierrors "k8s.io/apimachinery/pkg/api/errors"
	"k8s.io/apimachinery/pkg/api/resource"
	metav1 "k8s.io/apimachinery/pkg/apis/meta/v1"
	"k8s.io/client-go/tools/record"
	ctrl "sigs.k8s.io/controller-runtime"
	"sigs.k8s.io/controller-runtime/pkg/client"
	"sigs.k8s.io/controller-runtime/pkg/log"
	"sigs.k8s.io/controller-runtime/pkg/manager"

	kubedalv1alpha1 "github.com/arunaengine/kubedal/internal/apis/kubedal/v1alpha1"
	"github.com/arunaengine/kubedal/internal/backend"
	"github.com/arunaengine/kubedal/internal/controller"
)

const steadyStateRequeue = 30 * time.Minute

// fieldOwner is the fixed field manager name every status patch uses, so
// repeated server-side applies from this controller always supersede its own
// prior writes.
const fieldOwner = client.FieldOwner("kubedal-datanode-controller")

// Reconciler drives DataNode objects to the desired state: once reachability
// has been confirmed, status is left untouched at a slow 30-minute poll.
type Reconciler struct {
	Client   client.Client
	Recorder record.EventRecorder
}

func (r *Reconciler) Reconcile(ctx context.Context, req ctrl.Request) (ctrl.Result, error) {
	var dataNode kubedalv1alpha1.DataNode
	if err := r.Client.Get(ctx, req.NamespacedName, &dataNode); err != nil {
		return ctrl.Result{}, client.IgnoreNotFound(err)
	}

	result, err := controller.WithFinalizer(ctx, r.Client, &dataNode, kubedalv1alpha1.DataNodeFinalizer, func(ctx context.Context) (controller.Step, error) {
		return r.apply(ctx, &dataNode)
	}, func(ctx context.Context) (controller.Step, error) {
		return r.cleanup(ctx, &dataNode)
	})
	if err != nil {
		return controller.ApplyErrorPolicy(r.Recorder, &dataNode, "ReconcileFailed", err), nil
	}
	return result, nil
}

func (r *Reconciler) apply(ctx context.Context, dataNode *kubedalv1alpha1.DataNode) (controller.Step, error) {
	if dataNode.Status != nil {
		return controller.Requeue(steadyStateRequeue), nil
	}

	config, err := r.mergedConfig(ctx, dataNode)
	if err != nil {
		return controller.Step{}, err
	}

	op, err := backend.NewOperator(dataNode.Spec.Backend, config)
	if err != nil {
		return controller.Step{}, &controller.ReconcilerError{Message: err.Error()}
	}
	if err := op.Check(ctx); err != nil {
		return controller.Step{}, &controller.ReconcilerError{Message: err.Error()}
	}

	// Apply patches carry only the fields this manager owns: a minimal
	// object with its GVK set, never the fetched object (whose populated
	// managedFields an apply patch rejects).
	patch := &kubedalv1alpha1.DataNode{
		TypeMeta:   metav1.TypeMeta{APIVersion: kubedalv1alpha1.GroupVersion.String(), Kind: "DataNode"},
		ObjectMeta: metav1.ObjectMeta{Name: dataNode.Name, Namespace: dataNode.Namespace},
		Status: &kubedalv1alpha1.DataNodeStatus{
			Available: true,
			Used:      resource.MustParse("0"),
		},
	}
	if err := r.Client.Status().Patch(ctx, patch, client.Apply, client.ForceOwnership, fieldOwner); err != nil {
		return controller.Step{}, &controller.KubeError{Op: "patch DataNode status", Err: err}
	}
	dataNode.Status = patch.Status

	r.Recorder.Event(dataNode, corev1.EventTypeNormal, "Initialized", "backend reachability confirmed")
	log.FromContext(ctx).Info("DataNode initialized", "name", dataNode.Name, "namespace", dataNode.Namespace)
	return controller.Requeue(steadyStateRequeue), nil
}

func (r *Reconciler) cleanup(ctx context.Context, dataNode *kubedalv1alpha1.DataNode) (controller.Step, error) {
	r.Recorder.Event(dataNode, corev1.EventTypeNormal, "DeleteRequested", "DataNode deletion requested")
	return controller.AwaitChange(), nil
}

// mergedConfig fetches the optional secret referenced by the DataNode and
// merges it into spec.config, secret keys winning on collision.
func (r *Reconciler) mergedConfig(ctx context.Context, dataNode *kubedalv1alpha1.DataNode) (map[string]string, error) {
	if dataNode.Spec.SecretRef == nil {
		return backend.MergeConfig(dataNode.Spec.Config, nil)
	}

	namespace := dataNode.Namespace
	if dataNode.Spec.SecretRef.Namespace != nil {
		namespace = *dataNode.Spec.SecretRef.Namespace
	}

	var secret corev1.Secret
	key := client.ObjectKey{Name: dataNode.Spec.SecretRef.Name, Namespace: namespace}
	if err := r.Client.Get(ctx, key, &secret); err != nil {
		if apierrors.IsNotFound(err) {
			return nil, &controller.MissingSecret{Name: key.Name, Namespace: key.Namespace}
		}
		return nil, &controller.SecretAccessError{Name: key.Name, Namespace: key.Namespace, Err: err}
	}

	return backend.MergeConfig(dataNode.Spec.Config, secret.Data)
}

func (r *Reconciler) SetupWithManager(mgr manager.Manager) error {
	return ctrl.NewControllerManagedBy(mgr).
		For(&kubedalv1alpha1.DataNode{}).
		Named("datanode").
		Complete(r)
}
