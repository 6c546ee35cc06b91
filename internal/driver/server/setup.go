package server

import (
	"context"
	"fmt"
	"net"
	"os"
	"path/filepath"
	"strings"

	"github.com/container-storage-interface/spec/lib/go/csi"
	grpcprometheus "github.com/grpc-ecosystem/go-grpc-middleware/providers/prometheus"
	"github.com/kubernetes-csi/csi-lib-utils/protosanitizer"
	"github.com/prometheus/client_golang/prometheus"
	"google.golang.org/grpc"
	"sigs.k8s.io/controller-runtime/pkg/log"
)

// ParseEndpoint splits a "unix://path" endpoint into its scheme and
// address. Any non-unix scheme is rejected.
func ParseEndpoint(endpoint string) (network, address string, err error) {
	const scheme = "unix://"
	if !strings.HasPrefix(endpoint, scheme) {
		return "", "", fmt.Errorf("Only unix domain sockets are supported, got endpoint %q", endpoint)
	}
	return "unix", strings.TrimPrefix(endpoint, scheme), nil
}

// Serve binds the given unix socket endpoint, registers identity plus
// either node or controller services, and serves until ctx is cancelled,
// then gracefully stops. A Prometheus metrics interceptor is chained with
// a secret-stripping logging interceptor ahead of any CSI RPC handler.
func Serve(ctx context.Context, endpoint string, identity *IdentityServer, node *NodeServer, controller *ControllerServer, registry *prometheus.Registry) error {
	network, address, err := ParseEndpoint(endpoint)
	if err != nil {
		return err
	}

	if err := os.RemoveAll(address); err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("failed to remove stale socket %s: %w", address, err)
	}
	if dir := filepath.Dir(address); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("failed to create socket directory %s: %w", dir, err)
		}
	}

	listener, err := net.Listen(network, address)
	if err != nil {
		return fmt.Errorf("failed to listen on %s: %w", endpoint, err)
	}
	defer os.RemoveAll(address)

	metrics := grpcprometheus.NewServerMetrics()
	registry.MustRegister(metrics)

	grpcServer := grpc.NewServer(
		grpc.ChainUnaryInterceptor(
			metrics.UnaryServerInterceptor(),
			loggingInterceptor,
		),
	)

	csi.RegisterIdentityServer(grpcServer, identity)
	if node != nil {
		csi.RegisterNodeServer(grpcServer, node)
	}
	if controller != nil {
		csi.RegisterControllerServer(grpcServer, controller)
	}

	errCh := make(chan error, 1)
	go func() {
		errCh <- grpcServer.Serve(listener)
	}()

	select {
	case <-ctx.Done():
		grpcServer.GracefulStop()
		return nil
	case err := <-errCh:
		return err
	}
}

func loggingInterceptor(ctx context.Context, req any, info *grpc.UnaryServerInfo, handler grpc.UnaryHandler) (any, error) {
	logger := log.FromContext(ctx).WithName("grpc")
	logger.V(1).Info("handling request", "method", info.FullMethod, "request", protosanitizer.StripSecrets(req))

	resp, err := handler(ctx, req)
	if err != nil {
		logger.Error(err, "request failed", "method", info.FullMethod)
		return nil, err
	}

	logger.V(1).Info("request succeeded", "method", info.FullMethod, "response", protosanitizer.StripSecrets(resp))
	return resp, nil
}
