package datareplicaset

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	corev1 "k8s.io/api/core/v1"
	"k8s.io/apimachinery/pkg/api/resource"
	metav1 "k8s.io/apimachinery/pkg/apis/meta/v1"
	"k8s.io/apimachinery/pkg/types"

	kubedalv1alpha1 "github.com/arunaengine/kubedal/internal/apis/kubedal/v1alpha1"
	kubedalmount "github.com/arunaengine/kubedal/internal/mount"
)

func TestSuffix8_IsEightLowercaseAlphanumerics(t *testing.T) {
	seen := map[string]bool{}
	for i := 0; i < 50; i++ {
		s := suffix8()
		require.Len(t, s, 8)
		for _, r := range s {
			assert.True(t, (r >= '0' && r <= '9') || (r >= 'a' && r <= 'z'), "unexpected rune %q", r)
		}
		seen[s] = true
	}
	assert.Greater(t, len(seen), 1, "suffix8 should not be constant")
}

func TestBuildReplicaDataPod_NameAndPathAndRef(t *testing.T) {
	drs := &kubedalv1alpha1.DataReplicaSet{
		ObjectMeta: metav1.ObjectMeta{Name: "drs1", Namespace: "ns", UID: types.UID("drs-uid")},
		Spec: kubedalv1alpha1.DataReplicaSetSpec{
			Template: kubedalv1alpha1.DataPodTemplateSpec{
				Metadata: kubedalv1alpha1.DataPodTemplateMeta{Labels: map[string]string{"app": "x"}},
			},
		},
	}
	dataNode := &kubedalv1alpha1.DataNode{ObjectMeta: metav1.ObjectMeta{Name: "dn2", Namespace: "ns", UID: types.UID("dn2-uid")}}

	pod := buildReplicaDataPod(drs, dataNode, 2)

	assert.Equal(t, "drs-uid-replica-2", pod.Name)
	assert.Equal(t, "ns", pod.Namespace)
	assert.Equal(t, "/replica-2", pod.Spec.Path)
	require.NotNil(t, pod.Spec.DataNodeRef)
	assert.Equal(t, "dn2", pod.Spec.DataNodeRef.Name)
	require.NotNil(t, pod.Spec.DataNodeRef.Namespace)
	assert.Equal(t, "ns", *pod.Spec.DataNodeRef.Namespace)
	assert.Nil(t, pod.Spec.DataNodeSelector)
	assert.Equal(t, "x", pod.Labels["app"])
}

func TestBuildVolumeClaim_AccessModeAndAnnotations(t *testing.T) {
	drs := &kubedalv1alpha1.DataReplicaSet{ObjectMeta: metav1.ObjectMeta{Name: "drs1", Namespace: "ns", UID: types.UID("drs-uid")}}
	dataNode := &kubedalv1alpha1.DataNode{ObjectMeta: metav1.ObjectMeta{Name: "dn1", Namespace: "ns"}}
	dataPod := &kubedalv1alpha1.DataPod{ObjectMeta: metav1.ObjectMeta{Name: "dp1", Namespace: "ns"}}

	readOnly := buildVolumeClaim(drs, dataNode, dataPod, kubedalmount.FuseReadOnly)
	assert.Equal(t, []corev1.PersistentVolumeAccessMode{corev1.ReadOnlyMany}, readOnly.Spec.AccessModes)
	assert.Equal(t, "fuse-read-only", readOnly.Annotations[kubedalv1alpha1.AnnotationMount])
	assert.Equal(t, "dn1", readOnly.Annotations[kubedalv1alpha1.AnnotationDataNodeName])
	assert.Equal(t, "dp1", readOnly.Annotations[kubedalv1alpha1.AnnotationDataPodName])
	assert.Equal(t, "kubedal", *readOnly.Spec.StorageClassName)

	readWrite := buildVolumeClaim(drs, dataNode, dataPod, kubedalmount.FuseReadWrite)
	assert.Equal(t, []corev1.PersistentVolumeAccessMode{corev1.ReadWriteOnce}, readWrite.Spec.AccessModes)
	assert.Equal(t, "fuse-read-write", readWrite.Annotations[kubedalv1alpha1.AnnotationMount])

	assert.NotEqual(t, readOnly.Name, readWrite.Name, "each claim gets a distinct random suffix")
}

func TestBuildVolumeClaim_HonorsRequestedQuantity(t *testing.T) {
	drs := &kubedalv1alpha1.DataReplicaSet{ObjectMeta: metav1.ObjectMeta{Name: "drs1", Namespace: "ns", UID: types.UID("drs-uid")}}
	dataNode := &kubedalv1alpha1.DataNode{ObjectMeta: metav1.ObjectMeta{Name: "dn1", Namespace: "ns"}}
	requested := resource.MustParse("10Gi")
	dataPod := &kubedalv1alpha1.DataPod{
		ObjectMeta: metav1.ObjectMeta{Name: "dp1", Namespace: "ns"},
		Spec:       kubedalv1alpha1.DataPodSpec{Request: &requested},
	}

	claim := buildVolumeClaim(drs, dataNode, dataPod, kubedalmount.FuseReadWrite)
	assert.True(t, claim.Spec.Resources.Requests[corev1.ResourceStorage].Equal(requested))
}

func TestBuildSyncPod_MountsEveryClaimAtItsPath(t *testing.T) {
	drs := &kubedalv1alpha1.DataReplicaSet{ObjectMeta: metav1.ObjectMeta{Name: "drs1", Namespace: "ns"}}
	source := &corev1.PersistentVolumeClaim{ObjectMeta: metav1.ObjectMeta{Name: "pvc-src"}}
	replica := &corev1.PersistentVolumeClaim{ObjectMeta: metav1.ObjectMeta{Name: "pvc-rep"}}

	pod := buildSyncPod(drs, []syncMount{
		{claim: source, path: "/src", readOnly: true},
		{claim: replica, path: "/replica-0", readOnly: false},
	})

	assert.Equal(t, "drs1-sync", pod.Name)
	require.Len(t, pod.Spec.Volumes, 2)
	require.Len(t, pod.Spec.Containers[0].VolumeMounts, 2)
	assert.Equal(t, "pvc-src", pod.Spec.Volumes[0].PersistentVolumeClaim.ClaimName)
	assert.True(t, pod.Spec.Volumes[0].PersistentVolumeClaim.ReadOnly)
	assert.Equal(t, "/data/src", pod.Spec.Containers[0].VolumeMounts[0].MountPath)
	assert.True(t, pod.Spec.Containers[0].VolumeMounts[0].ReadOnly)
	assert.Equal(t, "/data/replica-0", pod.Spec.Containers[0].VolumeMounts[1].MountPath)
	assert.False(t, pod.Spec.Containers[0].VolumeMounts[1].ReadOnly)
}
