package v1alpha1

import (
	"k8s.io/apimachinery/pkg/api/resource"
	metav1 "k8s.io/apimachinery/pkg/apis/meta/v1"
)

// Backend identifies the object-storage protocol a DataNode speaks. The tag
// is closed: decoding an unrecognized value is an error, never a default.
// +kubebuilder:validation:Enum=S3;HTTP
type Backend string

const (
	// BackendS3 addresses an S3-compatible object store.
	BackendS3 Backend = "S3"
	// BackendHTTP addresses a plain, read-mostly HTTP(S) endpoint.
	BackendHTTP Backend = "HTTP"
)

// Ref is a name/namespace pointer to another namespace-scoped object. An
// absent Namespace means "the referencing object's own namespace".
type Ref struct {
	Name      string  `json:"name"`
	Namespace *string `json:"namespace,omitempty"`
}

// LabelSelector is a matchLabels mapping. Go maps don't preserve insertion
// order; the mapping is handed to list calls as a label map, so the order
// in which labels are declared has no effect.
type LabelSelector struct {
	MatchLabels map[string]string `json:"matchLabels,omitempty"`
}

// +kubebuilder:object:root=true
// +kubebuilder:subresource:status
// +kubebuilder:resource:shortName=dn,scope=Namespaced
// +kubebuilder:printcolumn:name="Available",type=boolean,JSONPath=`.status.available`

// DataNode is an addressable object-storage backend endpoint.
type DataNode struct {
	metav1.TypeMeta   `json:",inline"`
	metav1.ObjectMeta `json:"metadata,omitempty"`

	Spec   DataNodeSpec    `json:"spec"`
	Status *DataNodeStatus `json:"status,omitempty"`
}

// DataNodeSpec is the desired configuration of a DataNode.
type DataNodeSpec struct {
	// Backend selects the object-storage protocol.
	Backend Backend `json:"backend"`

	// ReadOnly, when true, demotes any read-write mount request against
	// this backend to read-only at node-side publish.
	// +optional
	ReadOnly bool `json:"readOnly,omitempty"`

	// SecretRef names a Secret whose data is merged into Config, secret
	// keys winning on collision, before a backend operator is built.
	// +optional
	SecretRef *Ref `json:"secretRef,omitempty"`

	// Config carries backend-interpreted key/value pairs, e.g. endpoint,
	// bucket, region, root.
	// +optional
	Config map[string]string `json:"config,omitempty"`

	// Limit is an optional storage quota for this backend.
	// +optional
	Limit *resource.Quantity `json:"limit,omitempty"`
}

// DataNodeStatus is the observed state of a DataNode. A nil status means the
// object has not yet been reconciled.
type DataNodeStatus struct {
	// Available is true only once the endpoint has been reached
	// successfully at least once with the configured credentials.
	Available bool `json:"available"`

	// Used is the backend's last-observed usage.
	Used resource.Quantity `json:"used"`
}

// +kubebuilder:object:root=true

// DataNodeList is a list of DataNode.
type DataNodeList struct {
	metav1.TypeMeta `json:",inline"`
	metav1.ListMeta `json:"metadata,omitempty"`
	Items           []DataNode `json:"items"`
}

// +kubebuilder:object:root=true
// +kubebuilder:subresource:status
// +kubebuilder:resource:shortName=dp,scope=Namespaced
// +kubebuilder:printcolumn:name="Available",type=boolean,JSONPath=`.status.available`
// +kubebuilder:printcolumn:name="Path",type=string,JSONPath=`.spec.path`

// DataPod is a path inside a DataNode, addressable as a volume source.
type DataPod struct {
	metav1.TypeMeta   `json:",inline"`
	metav1.ObjectMeta `json:"metadata,omitempty"`

	Spec   DataPodSpec    `json:"spec"`
	Status *DataPodStatus `json:"status,omitempty"`
}

// DataPodSpec is the desired configuration of a DataPod. DataNodeRef and
// DataNodeSelector are mutually exclusive: exactly one must be set.
type DataPodSpec struct {
	// Path is the absolute path inside the DataNode this DataPod
	// addresses. Absent, empty, or "/" triggers generation of "/"+uid.
	// +optional
	Path string `json:"path,omitempty"`

	// DataNodeRef names the owning DataNode directly.
	// +optional
	DataNodeRef *Ref `json:"dataNodeRef,omitempty"`

	// DataNodeSelector resolves the owning DataNode by label match; the
	// first DataNode returned by a namespaced list is chosen.
	// +optional
	DataNodeSelector *LabelSelector `json:"dataNodeSelector,omitempty"`

	// Request is an optional requested storage quantity.
	// +optional
	Request *resource.Quantity `json:"request,omitempty"`
}

// DataPodStatus is the observed state of a DataPod.
type DataPodStatus struct {
	Available     bool `json:"available"`
	GeneratedPath bool `json:"generatedPath"`
}

// +kubebuilder:object:root=true

// DataPodList is a list of DataPod.
type DataPodList struct {
	metav1.TypeMeta `json:",inline"`
	metav1.ListMeta `json:"metadata,omitempty"`
	Items           []DataPod `json:"items"`
}

// +kubebuilder:object:root=true
// +kubebuilder:subresource:status
// +kubebuilder:resource:shortName=drs,scope=Namespaced
// +kubebuilder:printcolumn:name="Available",type=boolean,JSONPath=`.status.available`
// +kubebuilder:printcolumn:name="Replicas",type=integer,JSONPath=`.spec.replicas`

// DataReplicaSet maintains N DataPod replicas of a source DataPod, each on
// a DataNode distinct from the source and from every other replica.
type DataReplicaSet struct {
	metav1.TypeMeta   `json:",inline"`
	metav1.ObjectMeta `json:"metadata,omitempty"`

	Spec   DataReplicaSetSpec    `json:"spec"`
	Status *DataReplicaSetStatus `json:"status,omitempty"`
}

// DataReplicaSetSpec is the desired configuration of a DataReplicaSet.
type DataReplicaSetSpec struct {
	// Replicas is the desired replica count N.
	// +kubebuilder:validation:Minimum=0
	Replicas uint32 `json:"replicas"`

	// SourcePod identifies the source DataPod being replicated.
	SourcePod Ref `json:"sourcePod"`

	// Selector identifies member replica DataPods; at steady state exactly
	// Replicas DataPods match it.
	Selector LabelSelector `json:"selector"`

	// Template is applied to every replica DataPod this object creates.
	Template DataPodTemplateSpec `json:"template"`
}

// DataPodTemplateSpec is the per-replica DataPod template. Metadata.Labels
// must be a superset of Spec.Selector.
type DataPodTemplateSpec struct {
	Metadata DataPodTemplateMeta `json:"metadata,omitempty"`
	Spec     DataPodSpec         `json:"spec,omitempty"`
}

// DataPodTemplateMeta carries the labels stamped on every replica DataPod.
type DataPodTemplateMeta struct {
	Labels map[string]string `json:"labels,omitempty"`
}

// DataReplicaSetStatus is the observed state of a DataReplicaSet.
type DataReplicaSetStatus struct {
	// Available is true once Replicas distinct-DataNode replicas exist.
	Available bool `json:"available"`

	// Reason explains a degraded (Available=false) status, e.g.
	// "insufficient distinct data nodes". Empty when Available is true or
	// the object has not yet been reconciled to a terminal state.
	// +optional
	Reason string `json:"reason,omitempty"`
}

// +kubebuilder:object:root=true

// DataReplicaSetList is a list of DataReplicaSet.
type DataReplicaSetList struct {
	metav1.TypeMeta `json:",inline"`
	metav1.ListMeta `json:"metadata,omitempty"`
	Items           []DataReplicaSet `json:"items"`
}

// Finalizer strings, one per kind, installed by the reconciler runtime and
// removed only once cleanup succeeds.
const (
	DataNodeFinalizer       = "kubedal.arunaengine.org/datanode"
	DataPodFinalizer        = "kubedal.arunaengine.org/datapod"
	DataReplicaSetFinalizer = "kubedal.arunaengine.org/datareplicaset"
)

// Volume-context / annotation keys shared between the controller service,
// the node service, and provisioned volume claims.
const (
	AnnotationDataNodeName      = "kubedal.arunaengine.org/data-node-name"
	AnnotationDataNodeNamespace = "kubedal.arunaengine.org/data-node-namespace"
	AnnotationDataPodName       = "kubedal.arunaengine.org/data-pod-name"
	AnnotationDataPodNamespace  = "kubedal.arunaengine.org/data-pod-namespace"
	AnnotationMount             = "kubedal.arunaengine.org/mount"
)

func init() {
	SchemeBuilder.Register(&DataNode{}, &DataNodeList{})
	SchemeBuilder.Register(&DataPod{}, &DataPodList{})
	SchemeBuilder.Register(&DataReplicaSet{}, &DataReplicaSetList{})
}
