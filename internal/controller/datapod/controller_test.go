package datapod

import (
	"testing"

	"github.com/stretchr/testify/assert"
	metav1 "k8s.io/apimachinery/pkg/apis/meta/v1"
	"k8s.io/apimachinery/pkg/types"

	kubedalv1alpha1 "github.com/arunaengine/kubedal/internal/apis/kubedal/v1alpha1"
)

func TestEffectivePath_GeneratesFromUIDWhenAbsentOrRoot(t *testing.T) {
	for _, path := range []string{"", "/"} {
		dataPod := &kubedalv1alpha1.DataPod{
			ObjectMeta: metav1.ObjectMeta{UID: types.UID("abc123")},
			Spec:       kubedalv1alpha1.DataPodSpec{Path: path},
		}
		got, generated := effectivePath(dataPod)
		assert.Equal(t, "/abc123", got)
		assert.True(t, generated)
	}
}

func TestEffectivePath_HonorsExplicitPath(t *testing.T) {
	dataPod := &kubedalv1alpha1.DataPod{
		ObjectMeta: metav1.ObjectMeta{UID: types.UID("abc123")},
		Spec:       kubedalv1alpha1.DataPodSpec{Path: "/some/dir"},
	}
	got, generated := effectivePath(dataPod)
	assert.Equal(t, "/some/dir", got)
	assert.False(t, generated)
}

func TestChanged_DetectsPathAndStatusTransitions(t *testing.T) {
	before := &kubedalv1alpha1.DataPod{Spec: kubedalv1alpha1.DataPodSpec{Path: "/a"}}
	after := &kubedalv1alpha1.DataPod{Spec: kubedalv1alpha1.DataPodSpec{Path: "/b"}}
	assert.True(t, changed(before, after), "differing path should count as changed")

	before = &kubedalv1alpha1.DataPod{Spec: kubedalv1alpha1.DataPodSpec{Path: "/a"}}
	after = &kubedalv1alpha1.DataPod{Spec: kubedalv1alpha1.DataPodSpec{Path: "/a"}}
	assert.False(t, changed(before, after), "identical spec and nil statuses should not count as changed")

	before.Status = &kubedalv1alpha1.DataPodStatus{Available: true}
	assert.True(t, changed(before, after), "nil vs non-nil status should count as changed")

	after.Status = &kubedalv1alpha1.DataPodStatus{Available: true}
	assert.False(t, changed(before, after), "equal statuses should not count as changed")

	after.Status.GeneratedPath = true
	assert.True(t, changed(before, after), "differing status fields should count as changed")
}
