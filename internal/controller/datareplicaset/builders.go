package datareplicaset

import (
	"fmt"
	"strings"

	"github.com/google/uuid"
	corev1 "k8s.io/api/core/v1"
	"k8s.io/apimachinery/pkg/api/resource"
	metav1 "k8s.io/apimachinery/pkg/apis/meta/v1"
	"k8s.io/utils/ptr"

	kubedalv1alpha1 "github.com/arunaengine/kubedal/internal/apis/kubedal/v1alpha1"
	kubedalmount "github.com/arunaengine/kubedal/internal/mount"
)

// storageClassName is the StorageClass every PVC this controller provisions
// asks for; a cluster running this driver registers its CSI provisioner
// under this name.
const storageClassName = "kubedal"

// defaultRequestQuantity is used when neither the source nor the replica
// template's DataPod spec carries a requested storage quantity.
var defaultRequestQuantity = resource.MustParse("1Gi")

// syncContainerImage is the placeholder worker image; the container
// contract (poll the read-only source mount, rsync changes to each
// read-write replica mount) is a documented extension point, not
// implemented here.
const syncContainerImage = "alpine:3.20"

// buildReplicaDataPod constructs the i'th replica DataPod: named
// "<drs-uid>-replica-<i>", path "/replica-<i>", pinned to dataNode via
// dataNodeRef, owned by drs, labeled from the template.
func buildReplicaDataPod(drs *kubedalv1alpha1.DataReplicaSet, dataNode *kubedalv1alpha1.DataNode, index int) *kubedalv1alpha1.DataPod {
	labels := make(map[string]string, len(drs.Spec.Template.Metadata.Labels))
	for k, v := range drs.Spec.Template.Metadata.Labels {
		labels[k] = v
	}

	spec := drs.Spec.Template.Spec
	spec.Path = fmt.Sprintf("/replica-%d", index)
	spec.DataNodeSelector = nil
	spec.DataNodeRef = &kubedalv1alpha1.Ref{
		Name:      dataNode.Name,
		Namespace: ptr.To(dataNode.Namespace),
	}

	return &kubedalv1alpha1.DataPod{
		ObjectMeta: metav1.ObjectMeta{
			Name:      fmt.Sprintf("%s-replica-%d", drs.UID, index),
			Namespace: drs.Namespace,
			Labels:    labels,
		},
		Spec: spec,
	}
}

// buildVolumeClaim constructs the PersistentVolumeClaim backing one
// DataPod (source or replica): named "pvc-<drs-uid>-<suffix8>", annotated
// with the DataNode/DataPod identity pair the node service needs at
// publish time, and the mount access the sync pod should request.
func buildVolumeClaim(drs *kubedalv1alpha1.DataReplicaSet, dataNode *kubedalv1alpha1.DataNode, dataPod *kubedalv1alpha1.DataPod, mountAccess kubedalmount.MountAccess) *corev1.PersistentVolumeClaim {
	quantity := defaultRequestQuantity
	if dataPod.Spec.Request != nil {
		quantity = *dataPod.Spec.Request
	}

	accessMode := corev1.ReadWriteOnce
	if mountAccess == kubedalmount.FuseReadOnly {
		accessMode = corev1.ReadOnlyMany
	}

	return &corev1.PersistentVolumeClaim{
		ObjectMeta: metav1.ObjectMeta{
			Name:      fmt.Sprintf("pvc-%s-%s", drs.UID, suffix8()),
			Namespace: drs.Namespace,
			Annotations: map[string]string{
				kubedalv1alpha1.AnnotationDataNodeName:      dataNode.Name,
				kubedalv1alpha1.AnnotationDataNodeNamespace: dataNode.Namespace,
				kubedalv1alpha1.AnnotationDataPodName:       dataPod.Name,
				kubedalv1alpha1.AnnotationDataPodNamespace:  dataPod.Namespace,
				kubedalv1alpha1.AnnotationMount:             string(mountAccess),
			},
		},
		Spec: corev1.PersistentVolumeClaimSpec{
			AccessModes:      []corev1.PersistentVolumeAccessMode{accessMode},
			StorageClassName: ptr.To(storageClassName),
			Resources: corev1.VolumeResourceRequirements{
				Requests: corev1.ResourceList{corev1.ResourceStorage: quantity},
			},
		},
	}
}

// syncMount pairs a claim with the path inside the worker pod it should be
// mounted at and whether that mount is read-only.
type syncMount struct {
	claim    *corev1.PersistentVolumeClaim
	path     string
	readOnly bool
}

// buildSyncPod constructs the synchronization worker pod: the source claim
// mounted read-only at "/data" + the source DataPod's path, each replica
// claim mounted read-write at "/data" + its own path. The container command
// is a placeholder (sleep infinity); the extension point's contract is to
// poll the read-only source mount and rsync changes to each read-write
// replica mount.
func buildSyncPod(drs *kubedalv1alpha1.DataReplicaSet, mounts []syncMount) *corev1.Pod {
	volumes := make([]corev1.Volume, 0, len(mounts))
	volumeMounts := make([]corev1.VolumeMount, 0, len(mounts))
	for i, m := range mounts {
		name := fmt.Sprintf("data-%d", i)
		volumes = append(volumes, corev1.Volume{
			Name: name,
			VolumeSource: corev1.VolumeSource{
				PersistentVolumeClaim: &corev1.PersistentVolumeClaimVolumeSource{
					ClaimName: m.claim.Name,
					ReadOnly:  m.readOnly,
				},
			},
		})
		volumeMounts = append(volumeMounts, corev1.VolumeMount{
			Name:      name,
			MountPath: "/data" + m.path,
			ReadOnly:  m.readOnly,
		})
	}

	return &corev1.Pod{
		ObjectMeta: metav1.ObjectMeta{
			Name:      fmt.Sprintf("%s-sync", drs.Name),
			Namespace: drs.Namespace,
			Labels: map[string]string{
				"kubedal.arunaengine.org/data-replica-set": drs.Name,
			},
		},
		Spec: corev1.PodSpec{
			RestartPolicy: corev1.RestartPolicyAlways,
			Containers: []corev1.Container{
				{
					Name:         "sync",
					Image:        syncContainerImage,
					Command:      []string{"sleep", "infinity"},
					VolumeMounts: volumeMounts,
					SecurityContext: &corev1.SecurityContext{
						AllowPrivilegeEscalation: ptr.To(false),
						ReadOnlyRootFilesystem:   ptr.To(false),
						RunAsNonRoot:             ptr.To(true),
					},
				},
			},
			Volumes: volumes,
		},
	}
}

// suffix8 derives an 8-character lowercase alphanumeric suffix from a
// random UUID: hyphens trimmed, first 8 hex characters kept.
func suffix8() string {
	return strings.ReplaceAll(uuid.NewString(), "-", "")[:8]
}
