package server

import (
	"context"
	"errors"
	"testing"

	"github.com/container-storage-interface/spec/lib/go/csi"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
	authorizationv1 "k8s.io/api/authorization/v1"
	apierrors "k8s.io/apimachinery/pkg/api/errors"
	metav1 "k8s.io/apimachinery/pkg/apis/meta/v1"
	"k8s.io/apimachinery/pkg/runtime"
	"k8s.io/apimachinery/pkg/runtime/schema"
	clientgofake "k8s.io/client-go/kubernetes/fake"
	clienttesting "k8s.io/client-go/testing"
	"sigs.k8s.io/controller-runtime/pkg/client"
	"sigs.k8s.io/controller-runtime/pkg/client/fake"

	kubedalv1alpha1 "github.com/arunaengine/kubedal/internal/apis/kubedal/v1alpha1"
	"github.com/arunaengine/kubedal/internal/authz"
	"github.com/arunaengine/kubedal/internal/backend"
	"github.com/arunaengine/kubedal/internal/scheme"
)

func newTestNodeServer(t *testing.T, allowed bool, objects ...client.Object) *NodeServer {
	t.Helper()

	c := fake.NewClientBuilder().WithScheme(scheme.New()).WithObjects(objects...).Build()

	clientset := clientgofake.NewSimpleClientset()
	clientset.PrependReactor("create", "subjectaccessreviews", func(action clienttesting.Action) (bool, runtime.Object, error) {
		ca := action.(clienttesting.CreateAction)
		sar := ca.GetObject().(*authorizationv1.SubjectAccessReview).DeepCopy()
		sar.Status.Allowed = allowed
		return true, sar, nil
	})

	return NewNodeServer("node-1", c, authz.New(clientset))
}

func TestNodePublishVolume_RejectsMissingArguments(t *testing.T) {
	s := newTestNodeServer(t, true)

	_, err := s.NodePublishVolume(context.Background(), &csi.NodePublishVolumeRequest{TargetPath: "/m"})
	assert.Equal(t, codes.InvalidArgument, status.Code(err))

	_, err = s.NodePublishVolume(context.Background(), &csi.NodePublishVolumeRequest{VolumeId: "v1"})
	assert.Equal(t, codes.InvalidArgument, status.Code(err))

	_, err = s.NodePublishVolume(context.Background(), &csi.NodePublishVolumeRequest{
		VolumeId:   "v1",
		TargetPath: "/m",
		// no data node reference, no mount access
		VolumeContext: map[string]string{},
	})
	assert.Equal(t, codes.InvalidArgument, status.Code(err))
}

func TestNodePublishVolume_RejectsUnrecognizedMountAccess(t *testing.T) {
	s := newTestNodeServer(t, true)

	_, err := s.NodePublishVolume(context.Background(), &csi.NodePublishVolumeRequest{
		VolumeId:   "v1",
		TargetPath: "/m",
		VolumeContext: map[string]string{
			kubedalv1alpha1.AnnotationDataNodeName:      "dn1",
			kubedalv1alpha1.AnnotationDataNodeNamespace: "ns",
			kubedalv1alpha1.AnnotationMount:             "cache-read-sometimes",
		},
	})
	assert.Equal(t, codes.InvalidArgument, status.Code(err))
}

func TestNodePublishVolume_NotFoundDataNode(t *testing.T) {
	s := newTestNodeServer(t, true)

	_, err := s.NodePublishVolume(context.Background(), &csi.NodePublishVolumeRequest{
		VolumeId:   "v1",
		TargetPath: "/m",
		VolumeContext: map[string]string{
			kubedalv1alpha1.AnnotationDataNodeName:      "absent",
			kubedalv1alpha1.AnnotationDataNodeNamespace: "ns",
			kubedalv1alpha1.AnnotationMount:             "cache-read-only",
		},
	})
	assert.Equal(t, codes.NotFound, status.Code(err))
}

func TestNodePublishVolume_AuthorizationDeny(t *testing.T) {
	dataNode := &kubedalv1alpha1.DataNode{
		ObjectMeta: metav1.ObjectMeta{Name: "dn1", Namespace: "ns"},
		Spec: kubedalv1alpha1.DataNodeSpec{
			Backend: kubedalv1alpha1.BackendS3,
			Config:  map[string]string{"endpoint": "http://e", "bucket": "b"},
		},
	}
	s := newTestNodeServer(t, false, dataNode)

	_, err := s.NodePublishVolume(context.Background(), &csi.NodePublishVolumeRequest{
		VolumeId:   "v1",
		TargetPath: "/m",
		VolumeContext: map[string]string{
			kubedalv1alpha1.AnnotationDataNodeName:      "dn1",
			kubedalv1alpha1.AnnotationDataNodeNamespace: "ns",
			kubedalv1alpha1.AnnotationMount:             "cache-read-only",
			contextPodNamespace:                         "workload-ns",
			contextPodServiceAccount:                    "workload-sa",
		},
	})
	require.Error(t, err)
	assert.Equal(t, codes.PermissionDenied, status.Code(err))
	assert.Contains(t, status.Convert(err).Message(), "system:serviceaccount:workload-ns:workload-sa")

	// no mount artifacts: the table must not have gained an entry.
	_, ok := s.Mounts.Get("v1")
	assert.False(t, ok)
}

func TestNodeUnpublishVolume_AbsentVolumeIsSuccess(t *testing.T) {
	s := newTestNodeServer(t, true)

	resp, err := s.NodeUnpublishVolume(context.Background(), &csi.NodeUnpublishVolumeRequest{
		VolumeId:   "never-published",
		TargetPath: "/m",
	})
	require.NoError(t, err)
	assert.NotNil(t, resp)
}

func TestNodeUnpublishVolume_RejectsMissingArguments(t *testing.T) {
	s := newTestNodeServer(t, true)

	_, err := s.NodeUnpublishVolume(context.Background(), &csi.NodeUnpublishVolumeRequest{TargetPath: "/m"})
	assert.Equal(t, codes.InvalidArgument, status.Code(err))

	_, err = s.NodeUnpublishVolume(context.Background(), &csi.NodeUnpublishVolumeRequest{VolumeId: "v1"})
	assert.Equal(t, codes.InvalidArgument, status.Code(err))
}

func TestNodeGetInfo(t *testing.T) {
	s := newTestNodeServer(t, true)

	resp, err := s.NodeGetInfo(context.Background(), &csi.NodeGetInfoRequest{})
	require.NoError(t, err)
	assert.Equal(t, "node-1", resp.NodeId)
	assert.Equal(t, int64(1000), resp.MaxVolumesPerNode)
}

func TestNodeGetCapabilities_AdvertisesStageUnstage(t *testing.T) {
	s := newTestNodeServer(t, true)

	resp, err := s.NodeGetCapabilities(context.Background(), &csi.NodeGetCapabilitiesRequest{})
	require.NoError(t, err)
	require.Len(t, resp.Capabilities, 1)
	assert.Equal(t, csi.NodeServiceCapability_RPC_STAGE_UNSTAGE_VOLUME, resp.Capabilities[0].GetRpc().GetType())
}

func TestNodeExpandVolume_Unimplemented(t *testing.T) {
	s := newTestNodeServer(t, true)
	_, err := s.NodeExpandVolume(context.Background(), &csi.NodeExpandVolumeRequest{})
	assert.Equal(t, codes.Unimplemented, status.Code(err))
}

func TestToGRPCStatus_Mapping(t *testing.T) {
	assert.NoError(t, toGRPCStatus(nil, "noop"))

	berr := &backend.Error{Code: backend.ErrInvalidArgument, Message: "bad config"}
	assert.Equal(t, codes.InvalidArgument, status.Code(toGRPCStatus(berr, "building operator")))

	berr = &backend.Error{Code: backend.ErrUnknown, Message: "odd entry"}
	assert.Equal(t, codes.Unknown, status.Code(toGRPCStatus(berr, "mirroring")))

	aerr := &authz.Error{Code: authz.ErrPermissionDenied, Message: "denied"}
	assert.Equal(t, codes.PermissionDenied, status.Code(toGRPCStatus(aerr, "authorizing")))

	notFound := apierrors.NewNotFound(schema.GroupResource{Group: "kubedal.arunaengine.org", Resource: "datanodes"}, "dn1")
	assert.Equal(t, codes.NotFound, status.Code(toGRPCStatus(notFound, "fetching DataNode")))

	assert.Equal(t, codes.Internal, status.Code(toGRPCStatus(errors.New("boom"), "anything else")))
}
