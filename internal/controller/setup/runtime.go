package setup

import (
	"context"
	"fmt"

	"sigs.k8s.io/controller-runtime/pkg/client"
	"sigs.k8s.io/controller-runtime/pkg/manager"

	kubedalv1alpha1 "github.com/arunaengine/kubedal/internal/apis/kubedal/v1alpha1"
	"github.com/arunaengine/kubedal/internal/controller/datanode"
	"github.com/arunaengine/kubedal/internal/controller/datapod"
	"github.com/arunaengine/kubedal/internal/controller/datareplicaset"
)

// StartupGate performs a bounded list(limit=1) per kind before any
// controller starts: a kind the CRDs haven't been installed for fails
// fast with a diagnostic instead of a controller silently never syncing.
// The reader must be the direct API reader; the cache-backed client would
// block here waiting for informers that only sync after manager start.
func StartupGate(ctx context.Context, c client.Reader) error {
	probes := []client.ObjectList{
		&kubedalv1alpha1.DataNodeList{},
		&kubedalv1alpha1.DataPodList{},
		&kubedalv1alpha1.DataReplicaSetList{},
	}
	for _, list := range probes {
		if err := c.List(ctx, list, client.Limit(1)); err != nil {
			return fmt.Errorf("kubedal CRDs do not appear to be installed (listing %T failed): %w", list, err)
		}
	}
	return nil
}

// SetupWithManager registers the DataNode, DataPod, and DataReplicaSet
// controllers on mgr after confirming the CRDs are reachable. Each kind
// runs as its own controller-runtime controller with its own bounded
// per-key work queue; reconciliations across kinds and across distinct
// objects run in parallel, same-key reconciliations are serialized.
func SetupWithManager(mgr manager.Manager) error {
	ctx := context.Background()
	if err := StartupGate(ctx, mgr.GetAPIReader()); err != nil {
		return err
	}

	if err := (&datanode.Reconciler{
		Client:   mgr.GetClient(),
		Recorder: mgr.GetEventRecorderFor("kubedal-datanode-controller"),
	}).SetupWithManager(mgr); err != nil {
		return fmt.Errorf("setting up DataNode controller: %w", err)
	}

	if err := (&datapod.Reconciler{
		Client:   mgr.GetClient(),
		Recorder: mgr.GetEventRecorderFor("kubedal-datapod-controller"),
	}).SetupWithManager(mgr); err != nil {
		return fmt.Errorf("setting up DataPod controller: %w", err)
	}

	if err := (&datareplicaset.Reconciler{
		Client:   mgr.GetClient(),
		Recorder: mgr.GetEventRecorderFor("kubedal-datareplicaset-controller"),
	}).SetupWithManager(mgr); err != nil {
		return fmt.Errorf("setting up DataReplicaSet controller: %w", err)
	}

	return nil
}
