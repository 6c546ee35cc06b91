// Package datapod implements the DataPod controller (C8): it resolves a
// DataNode reference or selector, generates a path when unset, and installs
// an owner reference to the resolved DataNode.
package datapod

import (
	"context"
	"fmt"
	"time"

	corev1 "k8s.io/api/core/v1"
	metav1 "k8s.io/apimachinery/pkg/apis/meta/v1"
	"k8s.io/client-go/tools/record"
	ctrl "sigs.k8s.io/controller-runtime"
	"sigs.k8s.io/controller-runtime/pkg/client"
	"sigs.k8s.io/controller-runtime/pkg/controller/controllerutil"
	"sigs.k8s.io/controller-runtime/pkg/log"
	"sigs.k8s.io/controller-runtime/pkg/manager"

	kubedalv1alpha1 "github.com/arunaengine/kubedal/internal/apis/kubedal/v1alpha1"
	"github.com/arunaengine/kubedal/internal/controller"
)

const syncRequeue = 5 * time.Minute

const fieldOwner = client.FieldOwner("kubedal-datapod-controller")

// Reconciler drives DataPod objects to the desired state.
type Reconciler struct {
	Client   client.Client
	Recorder record.EventRecorder
}

func (r *Reconciler) Reconcile(ctx context.Context, req ctrl.Request) (ctrl.Result, error) {
	var dataPod kubedalv1alpha1.DataPod
	if err := r.Client.Get(ctx, req.NamespacedName, &dataPod); err != nil {
		return ctrl.Result{}, client.IgnoreNotFound(err)
	}

	result, err := controller.WithFinalizer(ctx, r.Client, &dataPod, kubedalv1alpha1.DataPodFinalizer, func(ctx context.Context) (controller.Step, error) {
		return r.apply(ctx, &dataPod)
	}, func(ctx context.Context) (controller.Step, error) {
		return r.cleanup(ctx, &dataPod)
	})
	if err != nil {
		return controller.ApplyErrorPolicy(r.Recorder, &dataPod, "ReconcileFailed", err), nil
	}
	return result, nil
}

func (r *Reconciler) apply(ctx context.Context, dataPod *kubedalv1alpha1.DataPod) (controller.Step, error) {
	effectivePath, generated := effectivePath(dataPod)

	dataNode, err := r.resolveDataNode(ctx, dataPod)
	if err != nil {
		return controller.Step{}, err
	}

	before := dataPod.DeepCopy()

	// Apply patches carry only owned fields on a minimal object with its
	// GVK set; the fetched object's managedFields would be rejected.
	patch := &kubedalv1alpha1.DataPod{
		TypeMeta:   metav1.TypeMeta{APIVersion: kubedalv1alpha1.GroupVersion.String(), Kind: "DataPod"},
		ObjectMeta: metav1.ObjectMeta{Name: dataPod.Name, Namespace: dataPod.Namespace},
		Spec:       dataPod.Spec,
	}
	patch.Spec.Path = effectivePath
	if err := controllerutil.SetOwnerReference(dataNode, patch, r.Client.Scheme()); err != nil {
		return controller.Step{}, &controller.ReconcilerError{Message: fmt.Sprintf("setting owner reference: %v", err)}
	}

	if err := r.Client.Patch(ctx, patch, client.Apply, client.ForceOwnership, fieldOwner); err != nil {
		return controller.Step{}, &controller.KubeError{Op: "patch DataPod spec", Err: err}
	}
	dataPod.Spec = patch.Spec
	dataPod.OwnerReferences = patch.OwnerReferences

	statusPatch := &kubedalv1alpha1.DataPod{
		TypeMeta:   metav1.TypeMeta{APIVersion: kubedalv1alpha1.GroupVersion.String(), Kind: "DataPod"},
		ObjectMeta: metav1.ObjectMeta{Name: dataPod.Name, Namespace: dataPod.Namespace},
		Status: &kubedalv1alpha1.DataPodStatus{
			Available:     true,
			GeneratedPath: generated,
		},
	}
	if err := r.Client.Status().Patch(ctx, statusPatch, client.Apply, client.ForceOwnership, fieldOwner); err != nil {
		return controller.Step{}, &controller.KubeError{Op: "patch DataPod status", Err: err}
	}
	dataPod.Status = statusPatch.Status

	if changed(before, dataPod) {
		r.Recorder.Event(dataPod, corev1.EventTypeNormal, "ReconciledSync", "DataPod synced to resolved DataNode")
		log.FromContext(ctx).Info("DataPod reconciled", "name", dataPod.Name, "namespace", dataPod.Namespace, "path", effectivePath)
	}

	return controller.Requeue(syncRequeue), nil
}

func (r *Reconciler) cleanup(ctx context.Context, dataPod *kubedalv1alpha1.DataPod) (controller.Step, error) {
	r.Recorder.Event(dataPod, corev1.EventTypeNormal, "DeleteRequested", "DataPod deletion requested")
	return controller.AwaitChange(), nil
}

// effectivePath resolves the path a DataPod addresses: absent, empty, or
// "/" triggers generation of "/"+uid.
func effectivePath(dataPod *kubedalv1alpha1.DataPod) (path string, generated bool) {
	if dataPod.Spec.Path == "" || dataPod.Spec.Path == "/" {
		return "/" + string(dataPod.UID), true
	}
	return dataPod.Spec.Path, false
}

// resolveDataNode resolves the owning DataNode. DataNodeRef and
// DataNodeSelector are mutually exclusive, and exactly one must resolve a
// DataNode.
func (r *Reconciler) resolveDataNode(ctx context.Context, dataPod *kubedalv1alpha1.DataPod) (*kubedalv1alpha1.DataNode, error) {
	switch {
	case dataPod.Spec.DataNodeRef != nil && dataPod.Spec.DataNodeSelector != nil:
		return nil, &controller.ReconcilerError{Message: "dataNodeRef and dataNodeSelector are mutually exclusive"}

	case dataPod.Spec.DataNodeRef != nil:
		namespace := dataPod.Namespace
		if dataPod.Spec.DataNodeRef.Namespace != nil {
			namespace = *dataPod.Spec.DataNodeRef.Namespace
		}
		var dataNode kubedalv1alpha1.DataNode
		key := client.ObjectKey{Name: dataPod.Spec.DataNodeRef.Name, Namespace: namespace}
		if err := r.Client.Get(ctx, key, &dataNode); err != nil {
			return nil, &controller.KubeError{Op: "get referenced DataNode", Err: err}
		}
		return &dataNode, nil

	case dataPod.Spec.DataNodeSelector != nil:
		var dataNodes kubedalv1alpha1.DataNodeList
		opts := []client.ListOption{client.InNamespace(dataPod.Namespace)}
		if len(dataPod.Spec.DataNodeSelector.MatchLabels) > 0 {
			opts = append(opts, client.MatchingLabels(dataPod.Spec.DataNodeSelector.MatchLabels))
		}
		if err := r.Client.List(ctx, &dataNodes, opts...); err != nil {
			return nil, &controller.KubeError{Op: "list DataNodes by selector", Err: err}
		}
		if len(dataNodes.Items) == 0 {
			return nil, &controller.ReconcilerError{Message: "no DataNode matches dataNodeSelector"}
		}
		return &dataNodes.Items[0], nil

	default:
		return nil, &controller.ReconcilerError{Message: "no DataNode reference/selector"}
	}
}

// changed reports whether the observable spec/status differ, gating the
// ReconciledSync event to real transitions.
func changed(before, after *kubedalv1alpha1.DataPod) bool {
	if before.Spec.Path != after.Spec.Path {
		return true
	}
	if before.Status == nil || after.Status == nil {
		return before.Status != after.Status
	}
	return *before.Status != *after.Status
}

func (r *Reconciler) SetupWithManager(mgr manager.Manager) error {
	return ctrl.NewControllerManagedBy(mgr).
		For(&kubedalv1alpha1.DataPod{}).
		Named("datapod").
		Complete(r)
}
