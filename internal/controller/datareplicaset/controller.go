// Package datareplicaset implements the DataReplicaSet controller (C9): it
// fans a source DataPod out to N replica DataPods on distinct DataNodes,
// provisions a volume claim per replica plus one for the source, and keeps
// a synchronization worker pod wired to all of them.
package datareplicaset

import (
	"context"
	"fmt"
	"sort"
	"time"

	corev1 "k8s.io/api/core/v1"
	apierrors "k8s.io/apimachinery/pkg/api/errors"
	metav1 "k8s.io/apimachinery/pkg/apis/meta/v1"
	"k8s.io/apimachinery/pkg/types"
	"k8s.io/client-go/tools/record"
	ctrl "sigs.k8s.io/controller-runtime"
	"sigs.k8s.io/controller-runtime/pkg/client"
	"sigs.k8s.io/controller-runtime/pkg/controller/controllerutil"
	"sigs.k8s.io/controller-runtime/pkg/log"
	"sigs.k8s.io/controller-runtime/pkg/manager"

	kubedalv1alpha1 "github.com/arunaengine/kubedal/internal/apis/kubedal/v1alpha1"
	"github.com/arunaengine/kubedal/internal/controller"
	kubedalmount "github.com/arunaengine/kubedal/internal/mount"
)

const (
	idleRequeue = 30 * time.Minute
	syncRequeue = 5 * time.Minute
)

// reasonInsufficientNodes is the status.reason stamped when fewer distinct
// DataNodes than requested replicas are available, so a degraded group is
// distinguishable from one that has not been reconciled yet.
const reasonInsufficientNodes = "insufficient distinct data nodes"

const fieldOwner = client.FieldOwner("kubedal-datareplicaset-controller")

// Reconciler drives DataReplicaSet objects to the desired state.
type Reconciler struct {
	Client   client.Client
	Recorder record.EventRecorder
}

func (r *Reconciler) Reconcile(ctx context.Context, req ctrl.Request) (ctrl.Result, error) {
	var drs kubedalv1alpha1.DataReplicaSet
	if err := r.Client.Get(ctx, req.NamespacedName, &drs); err != nil {
		return ctrl.Result{}, client.IgnoreNotFound(err)
	}

	result, err := controller.WithFinalizer(ctx, r.Client, &drs, kubedalv1alpha1.DataReplicaSetFinalizer, func(ctx context.Context) (controller.Step, error) {
		return r.apply(ctx, &drs)
	}, func(ctx context.Context) (controller.Step, error) {
		return r.cleanup(ctx, &drs)
	})
	if err != nil {
		return controller.ApplyErrorPolicy(r.Recorder, &drs, "ReconcileFailed", err), nil
	}
	return result, nil
}

func (r *Reconciler) apply(ctx context.Context, drs *kubedalv1alpha1.DataReplicaSet) (controller.Step, error) {
	if drs.Status != nil {
		return controller.Requeue(idleRequeue), nil
	}

	var members kubedalv1alpha1.DataPodList
	listOpts := []client.ListOption{client.InNamespace(drs.Namespace)}
	if len(drs.Spec.Selector.MatchLabels) > 0 {
		listOpts = append(listOpts, client.MatchingLabels(drs.Spec.Selector.MatchLabels))
	}
	if err := r.Client.List(ctx, &members, listOpts...); err != nil {
		return controller.Step{}, &controller.KubeError{Op: "list replica DataPods", Err: err}
	}

	target := int(drs.Spec.Replicas)
	current := len(members.Items)
	degraded := false

	if current < target {
		created, short, err := r.fanOut(ctx, drs, &members)
		if err != nil {
			return controller.Step{}, err
		}
		current += created
		degraded = short
	}

	before := drs.Status
	status := &kubedalv1alpha1.DataReplicaSetStatus{Available: current >= target && !degraded}
	if degraded {
		status.Reason = reasonInsufficientNodes
	}

	// Minimal apply object with its GVK set; the fetched object's
	// managedFields would be rejected by an apply patch.
	patch := &kubedalv1alpha1.DataReplicaSet{
		TypeMeta:   metav1.TypeMeta{APIVersion: kubedalv1alpha1.GroupVersion.String(), Kind: "DataReplicaSet"},
		ObjectMeta: metav1.ObjectMeta{Name: drs.Name, Namespace: drs.Namespace},
		Status:     status,
	}
	if err := r.Client.Status().Patch(ctx, patch, client.Apply, client.ForceOwnership, fieldOwner); err != nil {
		return controller.Step{}, &controller.KubeError{Op: "patch DataReplicaSet status", Err: err}
	}
	drs.Status = status

	if before == nil || *before != *status {
		r.Recorder.Eventf(drs, corev1.EventTypeNormal, "ReconciledFanOut", "%d/%d replicas present", current, target)
		log.FromContext(ctx).Info("DataReplicaSet fanned out", "name", drs.Name, "namespace", drs.Namespace, "current", current, "target", target, "degraded", degraded)
	}

	return controller.Requeue(syncRequeue), nil
}

func (r *Reconciler) cleanup(ctx context.Context, drs *kubedalv1alpha1.DataReplicaSet) (controller.Step, error) {
	// Owner references on the replica DataPods, the volume claims, and the
	// sync pod cascade-delete them; nothing further to do here.
	r.Recorder.Event(drs, corev1.EventTypeNormal, "DeleteRequested", "DataReplicaSet deletion requested")
	return controller.AwaitChange(), nil
}

// fanOut resolves the source DataPod and its DataNode, computes the pool
// of DataNodes distinct from the source and from every already-present
// replica, pops one per missing replica slot, and creates the replica
// DataPod/claim pair plus (idempotently) the source claim and the sync
// pod. It returns the number of new replicas created and whether the
// available-node pool ran dry before reaching the target.
func (r *Reconciler) fanOut(ctx context.Context, drs *kubedalv1alpha1.DataReplicaSet, members *kubedalv1alpha1.DataPodList) (created int, degraded bool, err error) {
	sourceNamespace := drs.Namespace
	if drs.Spec.SourcePod.Namespace != nil {
		sourceNamespace = *drs.Spec.SourcePod.Namespace
	}
	var sourcePod kubedalv1alpha1.DataPod
	if err := r.Client.Get(ctx, client.ObjectKey{Name: drs.Spec.SourcePod.Name, Namespace: sourceNamespace}, &sourcePod); err != nil {
		return 0, false, &controller.KubeError{Op: "get source DataPod", Err: err}
	}

	sourceDataNode, err := r.resolvePodDataNode(ctx, &sourcePod)
	if err != nil {
		return 0, false, err
	}

	var allNodes kubedalv1alpha1.DataNodeList
	if err := r.Client.List(ctx, &allNodes, client.InNamespace(drs.Namespace)); err != nil {
		return 0, false, &controller.KubeError{Op: "list DataNodes", Err: err}
	}

	available := availableDataNodes(allNodes.Items, sourceDataNode.UID, members.Items)

	for i := len(members.Items); i < int(drs.Spec.Replicas); i++ {
		if len(available) == 0 {
			degraded = true
			break
		}
		dataNode := available[0]
		available = available[1:]

		replicaPod := buildReplicaDataPod(drs, &dataNode, i)
		if err := controllerutil.SetControllerReference(drs, replicaPod, r.Client.Scheme()); err != nil {
			return created, false, &controller.ReconcilerError{Message: fmt.Sprintf("setting owner reference on replica DataPod: %v", err)}
		}
		if err := r.Client.Create(ctx, replicaPod); err != nil {
			return created, false, &controller.KubeError{Op: "create replica DataPod", Err: err}
		}

		if _, err := r.ensureVolumeClaim(ctx, drs, &dataNode, replicaPod, kubedalmount.FuseReadWrite); err != nil {
			return created, false, err
		}

		created++
	}

	sourceClaim, err := r.ensureVolumeClaim(ctx, drs, sourceDataNode, &sourcePod, kubedalmount.FuseReadOnly)
	if err != nil {
		return created, false, err
	}

	if err := r.ensureSyncPod(ctx, drs, &sourcePod, sourceClaim); err != nil {
		return created, false, err
	}

	return created, degraded, nil
}

// resolvePodDataNode fetches the DataNode a DataPod's dataNodeRef points
// at. By the time a DataReplicaSet reconciles, the source and every
// already-created replica carry a concrete ref (the DataPod controller
// never leaves dataNodeSelector on a reconciled object's effective spec).
func (r *Reconciler) resolvePodDataNode(ctx context.Context, dataPod *kubedalv1alpha1.DataPod) (*kubedalv1alpha1.DataNode, error) {
	if dataPod.Spec.DataNodeRef == nil {
		return nil, &controller.ReconcilerError{Message: fmt.Sprintf("DataPod %s/%s has no resolved dataNodeRef", dataPod.Namespace, dataPod.Name)}
	}
	namespace := dataPod.Namespace
	if dataPod.Spec.DataNodeRef.Namespace != nil {
		namespace = *dataPod.Spec.DataNodeRef.Namespace
	}
	var dataNode kubedalv1alpha1.DataNode
	key := client.ObjectKey{Name: dataPod.Spec.DataNodeRef.Name, Namespace: namespace}
	if err := r.Client.Get(ctx, key, &dataNode); err != nil {
		return nil, &controller.KubeError{Op: "get DataPod's DataNode", Err: err}
	}
	return &dataNode, nil
}

// availableDataNodes returns, in deterministic (name-sorted) order, every
// DataNode other than the source's and every DataNode already claimed by
// a present replica. The sort keeps pop order stable for a given listing.
func availableDataNodes(all []kubedalv1alpha1.DataNode, sourceUID types.UID, members []kubedalv1alpha1.DataPod) []kubedalv1alpha1.DataNode {
	used := map[string]bool{string(sourceUID): true}
	byName := make(map[string]kubedalv1alpha1.DataNode, len(all))
	for _, n := range all {
		byName[n.Namespace+"/"+n.Name] = n
	}
	for _, pod := range members {
		if pod.Spec.DataNodeRef == nil {
			continue
		}
		namespace := pod.Namespace
		if pod.Spec.DataNodeRef.Namespace != nil {
			namespace = *pod.Spec.DataNodeRef.Namespace
		}
		if n, ok := byName[namespace+"/"+pod.Spec.DataNodeRef.Name]; ok {
			used[string(n.UID)] = true
		}
	}

	out := make([]kubedalv1alpha1.DataNode, 0, len(all))
	for _, n := range all {
		if !used[string(n.UID)] {
			out = append(out, n)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out
}

// ensureVolumeClaim returns the volume claim already provisioned for
// dataPod under drs, if any, else creates one. Idempotency matters here
// because fanOut re-evaluates the source claim on every reconcile while
// replicas are still being filled in.
func (r *Reconciler) ensureVolumeClaim(ctx context.Context, drs *kubedalv1alpha1.DataReplicaSet, dataNode *kubedalv1alpha1.DataNode, dataPod *kubedalv1alpha1.DataPod, mountAccess kubedalmount.MountAccess) (*corev1.PersistentVolumeClaim, error) {
	var claims corev1.PersistentVolumeClaimList
	if err := r.Client.List(ctx, &claims, client.InNamespace(drs.Namespace)); err != nil {
		return nil, &controller.KubeError{Op: "list volume claims", Err: err}
	}
	for i := range claims.Items {
		ann := claims.Items[i].Annotations
		if ann[kubedalv1alpha1.AnnotationDataPodName] == dataPod.Name &&
			ann[kubedalv1alpha1.AnnotationDataPodNamespace] == dataPod.Namespace &&
			ownedBy(claims.Items[i].OwnerReferences, drs.UID) {
			return &claims.Items[i], nil
		}
	}

	claim := buildVolumeClaim(drs, dataNode, dataPod, mountAccess)
	if err := controllerutil.SetControllerReference(drs, claim, r.Client.Scheme()); err != nil {
		return nil, &controller.ReconcilerError{Message: fmt.Sprintf("setting owner reference on volume claim: %v", err)}
	}
	if err := r.Client.Create(ctx, claim); err != nil {
		return nil, &controller.KubeError{Op: "create volume claim", Err: err}
	}
	return claim, nil
}

// ensureSyncPod creates the synchronization worker pod, mounting the source
// claim and the currently-present replica claims, if no pod of that name
// exists. An existing pod is left as it is, even when the set of claims has
// changed since it was created.
func (r *Reconciler) ensureSyncPod(ctx context.Context, drs *kubedalv1alpha1.DataReplicaSet, sourcePod *kubedalv1alpha1.DataPod, sourceClaim *corev1.PersistentVolumeClaim) error {
	var existing corev1.Pod
	podKey := client.ObjectKey{Name: fmt.Sprintf("%s-sync", drs.Name), Namespace: drs.Namespace}
	err := r.Client.Get(ctx, podKey, &existing)
	if err == nil {
		return nil
	}
	if !apierrors.IsNotFound(err) {
		return &controller.KubeError{Op: "get sync pod", Err: err}
	}

	var members kubedalv1alpha1.DataPodList
	listOpts := []client.ListOption{client.InNamespace(drs.Namespace)}
	if len(drs.Spec.Selector.MatchLabels) > 0 {
		listOpts = append(listOpts, client.MatchingLabels(drs.Spec.Selector.MatchLabels))
	}
	if err := r.Client.List(ctx, &members, listOpts...); err != nil {
		return &controller.KubeError{Op: "list replica DataPods", Err: err}
	}
	if len(members.Items) == 0 {
		// replicas=0: nothing to sync, no worker pod.
		return nil
	}

	var claims corev1.PersistentVolumeClaimList
	if err := r.Client.List(ctx, &claims, client.InNamespace(drs.Namespace)); err != nil {
		return &controller.KubeError{Op: "list volume claims", Err: err}
	}

	mounts := []syncMount{{claim: sourceClaim, path: sourcePod.Spec.Path, readOnly: true}}
	for i := range members.Items {
		replica := &members.Items[i]
		for j := range claims.Items {
			ann := claims.Items[j].Annotations
			if ann[kubedalv1alpha1.AnnotationDataPodName] == replica.Name &&
				ann[kubedalv1alpha1.AnnotationDataPodNamespace] == replica.Namespace {
				mounts = append(mounts, syncMount{claim: &claims.Items[j], path: replica.Spec.Path, readOnly: false})
				break
			}
		}
	}

	pod := buildSyncPod(drs, mounts)
	if err := controllerutil.SetControllerReference(drs, pod, r.Client.Scheme()); err != nil {
		return &controller.ReconcilerError{Message: fmt.Sprintf("setting owner reference on sync pod: %v", err)}
	}
	if err := r.Client.Create(ctx, pod); err != nil {
		return &controller.KubeError{Op: "create sync pod", Err: err}
	}
	return nil
}

func ownedBy(refs []metav1.OwnerReference, uid types.UID) bool {
	for _, ref := range refs {
		if ref.UID == uid {
			return true
		}
	}
	return false
}

func (r *Reconciler) SetupWithManager(mgr manager.Manager) error {
	return ctrl.NewControllerManagedBy(mgr).
		For(&kubedalv1alpha1.DataReplicaSet{}).
		Owns(&kubedalv1alpha1.DataPod{}).
		Owns(&corev1.PersistentVolumeClaim{}).
		Owns(&corev1.Pod{}).
		Named("datareplicaset").
		Complete(r)
}
