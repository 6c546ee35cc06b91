package server

import (
	"context"
	"strings"

	"github.com/container-storage-interface/spec/lib/go/csi"
	"github.com/google/uuid"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
	corev1 "k8s.io/api/core/v1"
	"sigs.k8s.io/controller-runtime/pkg/client"

	kubedalv1alpha1 "github.com/arunaengine/kubedal/internal/apis/kubedal/v1alpha1"
	"github.com/arunaengine/kubedal/internal/registry"
)

// defaultCapacityBytes is the fixed 5 GiB capacity minted when CreateVolume
// receives no capacity_range.
const defaultCapacityBytes = 5 << 30

// fixedTotalCapacityBytes is the large fixed value GetCapacity reports,
// since the driver imposes no orchestrator-visible capacity ceiling of its
// own (capacity is the backend's concern, surfaced instead via DataNode
// status.used).
const fixedTotalCapacityBytes = 1 << 50

// ControllerServer implements the CSI Controller service: CreateVolume
// resolves a volume-claim's annotations into a volume_context, and the
// result is cached in an in-memory Registry.
type ControllerServer struct {
	csi.UnimplementedControllerServer

	Client   client.Client
	Registry *registry.Registry
}

func NewControllerServer(c client.Client) *ControllerServer {
	return &ControllerServer{Client: c, Registry: registry.New()}
}

func (s *ControllerServer) ControllerGetCapabilities(ctx context.Context, req *csi.ControllerGetCapabilitiesRequest) (*csi.ControllerGetCapabilitiesResponse, error) {
	return &csi.ControllerGetCapabilitiesResponse{
		Capabilities: []*csi.ControllerServiceCapability{
			{
				Type: &csi.ControllerServiceCapability_Rpc{
					Rpc: &csi.ControllerServiceCapability_RPC{
						Type: csi.ControllerServiceCapability_RPC_CREATE_DELETE_VOLUME,
					},
				},
			},
		},
	}, nil
}

func (s *ControllerServer) CreateVolume(ctx context.Context, req *csi.CreateVolumeRequest) (*csi.CreateVolumeResponse, error) {
	if req.GetName() == "" {
		return nil, status.Error(codes.InvalidArgument, "name is required")
	}

	if existing, ok := s.Registry.Get(req.GetName()); ok {
		return &csi.CreateVolumeResponse{
			Volume: &csi.Volume{
				VolumeId:      existing.ID,
				CapacityBytes: existing.CapacityBytes,
				VolumeContext: existing.VolumeContext,
			},
		}, nil
	}

	namespace := req.GetParameters()["resourceNamespace"]
	if namespace == "" {
		return nil, status.Error(codes.InvalidArgument, "parameters[resourceNamespace] is required")
	}

	claim, err := s.findClaim(ctx, namespace, req.GetName())
	if err != nil {
		return nil, err
	}

	volumeContext := map[string]string{
		kubedalv1alpha1.AnnotationDataNodeName:      claim.Annotations[kubedalv1alpha1.AnnotationDataNodeName],
		kubedalv1alpha1.AnnotationDataNodeNamespace: claim.Annotations[kubedalv1alpha1.AnnotationDataNodeNamespace],
		kubedalv1alpha1.AnnotationDataPodName:       claim.Annotations[kubedalv1alpha1.AnnotationDataPodName],
		kubedalv1alpha1.AnnotationDataPodNamespace:  claim.Annotations[kubedalv1alpha1.AnnotationDataPodNamespace],
		kubedalv1alpha1.AnnotationMount:             claim.Annotations[kubedalv1alpha1.AnnotationMount],
	}
	if override, ok := req.GetParameters()["mount"]; ok {
		overridden, err := overrideMountMode(volumeContext[kubedalv1alpha1.AnnotationMount], override)
		if err != nil {
			return nil, status.Error(codes.InvalidArgument, err.Error())
		}
		volumeContext[kubedalv1alpha1.AnnotationMount] = overridden
	}

	capacityBytes := int64(defaultCapacityBytes)
	if req.GetCapacityRange().GetRequiredBytes() > 0 {
		capacityBytes = req.GetCapacityRange().GetRequiredBytes()
	}

	// PutIfAbsent rather than Put: two concurrent CreateVolume calls for
	// the same name must both come back with the volume that won the race.
	winner := s.Registry.PutIfAbsent(req.GetName(), registry.Volume{
		ID:            "kubedal-" + uuid.NewString(),
		CapacityBytes: capacityBytes,
		VolumeContext: volumeContext,
	})

	return &csi.CreateVolumeResponse{
		Volume: &csi.Volume{
			VolumeId:      winner.ID,
			CapacityBytes: winner.CapacityBytes,
			VolumeContext: winner.VolumeContext,
		},
	}, nil
}

// overrideMountMode replaces the mode half of a "<mode>-<access>" mount
// string while preserving its access half, honoring a parameters[mount]
// override from the closed set {cached, fuse}.
func overrideMountMode(current, mode string) (string, error) {
	var prefix string
	switch mode {
	case "cached":
		prefix = "cache"
	case "fuse":
		prefix = "fuse"
	default:
		return "", status.Error(codes.InvalidArgument, "parameters[mount] must be one of cached, fuse")
	}
	_, access, found := strings.Cut(current, "-")
	if !found {
		return "", status.Error(codes.InvalidArgument, "volume claim carries no mount access annotation to override")
	}
	return prefix + "-" + access, nil
}

// findClaim locates the PersistentVolumeClaim that triggered this
// CreateVolume call. External-provisioner names the call after the claim
// as "pvc-<uid>"; stripping that prefix recovers the uid to match against.
func (s *ControllerServer) findClaim(ctx context.Context, namespace, name string) (*corev1.PersistentVolumeClaim, error) {
	uid := strings.TrimPrefix(name, "pvc-")

	var claims corev1.PersistentVolumeClaimList
	if err := s.Client.List(ctx, &claims, client.InNamespace(namespace)); err != nil {
		return nil, status.Error(codes.Internal, "listing volume claims: "+err.Error())
	}

	for i := range claims.Items {
		if string(claims.Items[i].UID) == uid {
			return &claims.Items[i], nil
		}
	}
	return nil, status.Error(codes.NotFound, "no volume claim found for "+name)
}

func (s *ControllerServer) DeleteVolume(ctx context.Context, req *csi.DeleteVolumeRequest) (*csi.DeleteVolumeResponse, error) {
	if req.GetVolumeId() == "" {
		return nil, status.Error(codes.InvalidArgument, "volume_id is required")
	}
	s.Registry.DeleteByID(req.GetVolumeId())
	return &csi.DeleteVolumeResponse{}, nil
}

func (s *ControllerServer) ListVolumes(ctx context.Context, req *csi.ListVolumesRequest) (*csi.ListVolumesResponse, error) {
	entries := make([]*csi.ListVolumesResponse_Entry, 0)
	for _, v := range s.Registry.List() {
		entries = append(entries, &csi.ListVolumesResponse_Entry{
			Volume: &csi.Volume{
				VolumeId:      v.ID,
				CapacityBytes: v.CapacityBytes,
				VolumeContext: v.VolumeContext,
			},
		})
	}
	return &csi.ListVolumesResponse{Entries: entries}, nil
}

func (s *ControllerServer) GetCapacity(ctx context.Context, req *csi.GetCapacityRequest) (*csi.GetCapacityResponse, error) {
	return &csi.GetCapacityResponse{AvailableCapacity: fixedTotalCapacityBytes}, nil
}

func (s *ControllerServer) ValidateVolumeCapabilities(ctx context.Context, req *csi.ValidateVolumeCapabilitiesRequest) (*csi.ValidateVolumeCapabilitiesResponse, error) {
	return &csi.ValidateVolumeCapabilitiesResponse{
		Confirmed: &csi.ValidateVolumeCapabilitiesResponse_Confirmed{},
	}, nil
}
