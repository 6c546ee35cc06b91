package datanode

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	corev1 "k8s.io/api/core/v1"
	metav1 "k8s.io/apimachinery/pkg/apis/meta/v1"
	"k8s.io/client-go/tools/record"
	"k8s.io/utils/ptr"
	"sigs.k8s.io/controller-runtime/pkg/client/fake"

	kubedalv1alpha1 "github.com/arunaengine/kubedal/internal/apis/kubedal/v1alpha1"
	"github.com/arunaengine/kubedal/internal/controller"
	"github.com/arunaengine/kubedal/internal/scheme"
)

func TestMergedConfig_NoSecretRefPassesConfigThrough(t *testing.T) {
	r := &Reconciler{Client: fake.NewClientBuilder().WithScheme(scheme.New()).Build()}

	dataNode := &kubedalv1alpha1.DataNode{
		ObjectMeta: metav1.ObjectMeta{Name: "dn1", Namespace: "ns"},
		Spec: kubedalv1alpha1.DataNodeSpec{
			Backend: kubedalv1alpha1.BackendS3,
			Config:  map[string]string{"bucket": "b"},
		},
	}

	config, err := r.mergedConfig(context.Background(), dataNode)
	require.NoError(t, err)
	assert.Equal(t, "b", config["bucket"])
}

func TestMergedConfig_MergesSecretDataSecretWins(t *testing.T) {
	secret := &corev1.Secret{
		ObjectMeta: metav1.ObjectMeta{Name: "creds", Namespace: "other"},
		Data: map[string][]byte{
			"access_key": []byte("ak"),
			"bucket":     []byte("from-secret"),
		},
	}
	r := &Reconciler{Client: fake.NewClientBuilder().WithScheme(scheme.New()).WithObjects(secret).Build()}

	dataNode := &kubedalv1alpha1.DataNode{
		ObjectMeta: metav1.ObjectMeta{Name: "dn1", Namespace: "ns"},
		Spec: kubedalv1alpha1.DataNodeSpec{
			Backend:   kubedalv1alpha1.BackendS3,
			Config:    map[string]string{"bucket": "from-spec"},
			SecretRef: &kubedalv1alpha1.Ref{Name: "creds", Namespace: ptr.To("other")},
		},
	}

	config, err := r.mergedConfig(context.Background(), dataNode)
	require.NoError(t, err)
	assert.Equal(t, "ak", config["access_key"])
	assert.Equal(t, "from-secret", config["bucket"])
}

func TestMergedConfig_MissingSecret(t *testing.T) {
	r := &Reconciler{Client: fake.NewClientBuilder().WithScheme(scheme.New()).Build()}

	dataNode := &kubedalv1alpha1.DataNode{
		ObjectMeta: metav1.ObjectMeta{Name: "dn1", Namespace: "ns"},
		Spec: kubedalv1alpha1.DataNodeSpec{
			Backend:   kubedalv1alpha1.BackendS3,
			SecretRef: &kubedalv1alpha1.Ref{Name: "absent"},
		},
	}

	_, err := r.mergedConfig(context.Background(), dataNode)
	require.Error(t, err)

	var missing *controller.MissingSecret
	require.ErrorAs(t, err, &missing)
	assert.Equal(t, "absent", missing.Name)
	assert.Equal(t, "ns", missing.Namespace, "secretRef without namespace defaults to the DataNode's")
}

func TestApply_SteadyStateRequeuesWithoutProbing(t *testing.T) {
	r := &Reconciler{
		Client:   fake.NewClientBuilder().WithScheme(scheme.New()).Build(),
		Recorder: record.NewFakeRecorder(4),
	}

	// an already-reconciled DataNode with an unreachable backend must not
	// be probed again: status presence alone decides.
	dataNode := &kubedalv1alpha1.DataNode{
		ObjectMeta: metav1.ObjectMeta{Name: "dn1", Namespace: "ns"},
		Spec:       kubedalv1alpha1.DataNodeSpec{Backend: kubedalv1alpha1.BackendS3},
		Status:     &kubedalv1alpha1.DataNodeStatus{Available: true},
	}

	step, err := r.apply(context.Background(), dataNode)
	require.NoError(t, err)
	assert.Equal(t, steadyStateRequeue, step.RequeueAfter)
}

func TestCleanup_EmitsDeleteRequested(t *testing.T) {
	recorder := record.NewFakeRecorder(4)
	r := &Reconciler{
		Client:   fake.NewClientBuilder().WithScheme(scheme.New()).Build(),
		Recorder: recorder,
	}

	dataNode := &kubedalv1alpha1.DataNode{ObjectMeta: metav1.ObjectMeta{Name: "dn1", Namespace: "ns"}}
	step, err := r.cleanup(context.Background(), dataNode)
	require.NoError(t, err)
	assert.True(t, step.Await)

	select {
	case event := <-recorder.Events:
		assert.Contains(t, event, "DeleteRequested")
	default:
		t.Fatal("expected a DeleteRequested event")
	}
}
