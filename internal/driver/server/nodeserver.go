package server

import (
	"context"
	"errors"

	"github.com/container-storage-interface/spec/lib/go/csi"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
	corev1 "k8s.io/api/core/v1"
	apierrors "k8s.io/apimachinery/pkg/api/errors"
	"k8s.io/apimachinery/pkg/types"
	"sigs.k8s.io/controller-runtime/pkg/client"

	kubedalv1alpha1 "github.com/arunaengine/kubedal/internal/apis/kubedal/v1alpha1"
	"github.com/arunaengine/kubedal/internal/authz"
	"github.com/arunaengine/kubedal/internal/backend"
	kubedalmount "github.com/arunaengine/kubedal/internal/mount"
)

// Volume-context keys carrying the standard CSI pod identity, forwarded by
// the orchestrator on every NodePublishVolume call.
const (
	contextPodName           = "csi.storage.k8s.io/pod.name"
	contextPodNamespace      = "csi.storage.k8s.io/pod.namespace"
	contextPodServiceAccount = "csi.storage.k8s.io/serviceAccount.name"
	contextPodUID            = "csi.storage.k8s.io/pod.uid"
)

const maxVolumesPerNode = 1000

// NodeServer implements the CSI Node service: it turns publish/unpublish
// calls into authorize, build-operator, then mount/unmount, tracking
// active mounts in a MountTable.
type NodeServer struct {
	csi.UnimplementedNodeServer

	NodeID string
	Client client.Client
	Gate   *authz.Gate
	Mounts *MountTable
}

func NewNodeServer(nodeID string, c client.Client, gate *authz.Gate) *NodeServer {
	return &NodeServer{
		NodeID: nodeID,
		Client: c,
		Gate:   gate,
		Mounts: NewMountTable(),
	}
}

func (s *NodeServer) NodeGetCapabilities(ctx context.Context, req *csi.NodeGetCapabilitiesRequest) (*csi.NodeGetCapabilitiesResponse, error) {
	return &csi.NodeGetCapabilitiesResponse{
		Capabilities: []*csi.NodeServiceCapability{
			{
				Type: &csi.NodeServiceCapability_Rpc{
					Rpc: &csi.NodeServiceCapability_RPC{
						Type: csi.NodeServiceCapability_RPC_STAGE_UNSTAGE_VOLUME,
					},
				},
			},
		},
	}, nil
}

func (s *NodeServer) NodeGetInfo(ctx context.Context, req *csi.NodeGetInfoRequest) (*csi.NodeGetInfoResponse, error) {
	return &csi.NodeGetInfoResponse{
		NodeId:            s.NodeID,
		MaxVolumesPerNode: maxVolumesPerNode,
	}, nil
}

func (s *NodeServer) NodeStageVolume(ctx context.Context, req *csi.NodeStageVolumeRequest) (*csi.NodeStageVolumeResponse, error) {
	return &csi.NodeStageVolumeResponse{}, nil
}

func (s *NodeServer) NodeUnstageVolume(ctx context.Context, req *csi.NodeUnstageVolumeRequest) (*csi.NodeUnstageVolumeResponse, error) {
	return &csi.NodeUnstageVolumeResponse{}, nil
}

func (s *NodeServer) NodeExpandVolume(ctx context.Context, req *csi.NodeExpandVolumeRequest) (*csi.NodeExpandVolumeResponse, error) {
	return nil, status.Error(codes.Unimplemented, "NodeExpandVolume is not supported")
}

func (s *NodeServer) NodeGetVolumeStats(ctx context.Context, req *csi.NodeGetVolumeStatsRequest) (*csi.NodeGetVolumeStatsResponse, error) {
	return nil, status.Error(codes.Unimplemented, "NodeGetVolumeStats is not supported")
}

func (s *NodeServer) NodePublishVolume(ctx context.Context, req *csi.NodePublishVolumeRequest) (*csi.NodePublishVolumeResponse, error) {
	if req.GetVolumeId() == "" {
		return nil, status.Error(codes.InvalidArgument, "volume_id is required")
	}
	if req.GetTargetPath() == "" {
		return nil, status.Error(codes.InvalidArgument, "target_path is required")
	}

	vc := req.GetVolumeContext()
	dataNodeName := vc[kubedalv1alpha1.AnnotationDataNodeName]
	dataNodeNamespace := vc[kubedalv1alpha1.AnnotationDataNodeNamespace]
	dataPodName := vc[kubedalv1alpha1.AnnotationDataPodName]
	dataPodNamespace := vc[kubedalv1alpha1.AnnotationDataPodNamespace]
	mountAccessStr := vc[kubedalv1alpha1.AnnotationMount]

	if dataNodeName == "" || mountAccessStr == "" {
		return nil, status.Error(codes.InvalidArgument, "volume_context missing data node reference or mount access")
	}

	mode, access, err := kubedalmount.MountAccess(mountAccessStr).Parse()
	if err != nil {
		return nil, status.Error(codes.InvalidArgument, err.Error())
	}

	var dataNode kubedalv1alpha1.DataNode
	if err := s.Client.Get(ctx, types.NamespacedName{Name: dataNodeName, Namespace: dataNodeNamespace}, &dataNode); err != nil {
		return nil, toGRPCStatus(err, "fetching DataNode")
	}

	if dataPodName != "" {
		var dataPod kubedalv1alpha1.DataPod
		if err := s.Client.Get(ctx, types.NamespacedName{Name: dataPodName, Namespace: dataPodNamespace}, &dataPod); err != nil {
			return nil, toGRPCStatus(err, "fetching DataPod")
		}
	}

	identity := authz.Identity{
		Namespace:      vc[contextPodNamespace],
		ServiceAccount: vc[contextPodServiceAccount],
	}

	var secretRef *authz.SecretRef
	var secretData map[string][]byte
	if dataNode.Spec.SecretRef != nil {
		secretNamespace := dataNodeNamespace
		if dataNode.Spec.SecretRef.Namespace != nil {
			secretNamespace = *dataNode.Spec.SecretRef.Namespace
		}
		secretRef = &authz.SecretRef{Name: dataNode.Spec.SecretRef.Name, Namespace: secretNamespace}

		if err := s.Gate.Authorize(ctx, identity, dataNodeName, dataNodeNamespace, secretRef); err != nil {
			return nil, toGRPCStatus(err, "authorizing publish")
		}

		var secret corev1.Secret
		if err := s.Client.Get(ctx, types.NamespacedName{Name: secretRef.Name, Namespace: secretRef.Namespace}, &secret); err != nil {
			return nil, toGRPCStatus(err, "fetching secret")
		}
		secretData = secret.Data
	} else {
		if err := s.Gate.Authorize(ctx, identity, dataNodeName, dataNodeNamespace, nil); err != nil {
			return nil, toGRPCStatus(err, "authorizing publish")
		}
	}

	mergedConfig, err := backend.MergeConfig(dataNode.Spec.Config, secretData)
	if err != nil {
		return nil, toGRPCStatus(err, "merging backend config")
	}

	operator, err := backend.NewOperator(dataNode.Spec.Backend, mergedConfig)
	if err != nil {
		return nil, toGRPCStatus(err, "building backend operator")
	}

	access = kubedalmount.ResolveAccess(access, dataNode.Spec.ReadOnly)

	m := kubedalmount.New(req.GetVolumeId(), req.GetTargetPath(), operator, mode, access)
	if err := m.Mount(ctx); err != nil {
		return nil, toGRPCStatus(err, "mounting volume")
	}

	s.Mounts.Put(req.GetVolumeId(), m)
	return &csi.NodePublishVolumeResponse{}, nil
}

func (s *NodeServer) NodeUnpublishVolume(ctx context.Context, req *csi.NodeUnpublishVolumeRequest) (*csi.NodeUnpublishVolumeResponse, error) {
	if req.GetVolumeId() == "" {
		return nil, status.Error(codes.InvalidArgument, "volume_id is required")
	}
	if req.GetTargetPath() == "" {
		return nil, status.Error(codes.InvalidArgument, "target_path is required")
	}

	m, ok := s.Mounts.Get(req.GetVolumeId())
	if !ok {
		return &csi.NodeUnpublishVolumeResponse{}, nil
	}

	if err := m.Unmount(ctx); err != nil {
		return nil, status.Error(codes.Internal, err.Error())
	}
	s.Mounts.Delete(req.GetVolumeId())

	return &csi.NodeUnpublishVolumeResponse{}, nil
}

// toGRPCStatus maps domain errors (backend.Error, authz.Error, Kubernetes
// API errors) onto CSI status codes.
func toGRPCStatus(err error, context string) error {
	if err == nil {
		return nil
	}

	var berr *backend.Error
	if errors.As(err, &berr) {
		return status.Error(backendCode(berr.Code), context+": "+berr.Error())
	}

	var aerr *authz.Error
	if errors.As(err, &aerr) {
		return status.Error(authzCode(aerr.Code), context+": "+aerr.Error())
	}

	if apierrors.IsNotFound(err) {
		return status.Error(codes.NotFound, context+": "+err.Error())
	}

	return status.Error(codes.Internal, context+": "+err.Error())
}

func backendCode(c backend.ErrorCode) codes.Code {
	switch c {
	case backend.ErrInvalidArgument:
		return codes.InvalidArgument
	case backend.ErrUnknown:
		return codes.Unknown
	default:
		return codes.Internal
	}
}

func authzCode(c authz.ErrorCode) codes.Code {
	if c == authz.ErrPermissionDenied {
		return codes.PermissionDenied
	}
	return codes.Internal
}
