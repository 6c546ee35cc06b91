package datareplicaset

import (
	"testing"

	"github.com/stretchr/testify/assert"
	metav1 "k8s.io/apimachinery/pkg/apis/meta/v1"
	"k8s.io/apimachinery/pkg/types"

	kubedalv1alpha1 "github.com/arunaengine/kubedal/internal/apis/kubedal/v1alpha1"
)

func dataNode(name string, uid types.UID) kubedalv1alpha1.DataNode {
	return kubedalv1alpha1.DataNode{ObjectMeta: metav1.ObjectMeta{Name: name, Namespace: "ns", UID: uid}}
}

func TestAvailableDataNodes_ExcludesSourceAndUsedReplicas(t *testing.T) {
	all := []kubedalv1alpha1.DataNode{
		dataNode("dn-a", "uid-a"),
		dataNode("dn-b", "uid-b"),
		dataNode("dn-c", "uid-c"),
		dataNode("dn-src", "uid-src"),
	}
	members := []kubedalv1alpha1.DataPod{
		{
			ObjectMeta: metav1.ObjectMeta{Namespace: "ns"},
			Spec:       kubedalv1alpha1.DataPodSpec{DataNodeRef: &kubedalv1alpha1.Ref{Name: "dn-a"}},
		},
	}

	available := availableDataNodes(all, types.UID("uid-src"), members)

	names := make([]string, len(available))
	for i, n := range available {
		names[i] = n.Name
	}
	assert.Equal(t, []string{"dn-b", "dn-c"}, names, "source and already-used replica nodes must be excluded, remainder sorted by name")
}

func TestAvailableDataNodes_EmptyWhenNoneDistinct(t *testing.T) {
	all := []kubedalv1alpha1.DataNode{dataNode("dn-src", "uid-src")}
	available := availableDataNodes(all, types.UID("uid-src"), nil)
	assert.Empty(t, available)
}

func TestOwnedBy(t *testing.T) {
	refs := []metav1.OwnerReference{{UID: types.UID("owner-1")}}
	assert.True(t, ownedBy(refs, types.UID("owner-1")))
	assert.False(t, ownedBy(refs, types.UID("owner-2")))
	assert.False(t, ownedBy(nil, types.UID("owner-1")))
}
