// Package driver wires the CSI gRPC services and, in the controller role,
// the reconciler runtime onto a shared controller-runtime Manager.
package driver

import (
	"context"
	"fmt"

	"github.com/prometheus/client_golang/prometheus"
	"k8s.io/client-go/kubernetes"
	"sigs.k8s.io/controller-runtime/pkg/manager"

	"github.com/arunaengine/kubedal/internal/authz"
	"github.com/arunaengine/kubedal/internal/controller/setup"
	"github.com/arunaengine/kubedal/internal/driver/config"
	"github.com/arunaengine/kubedal/internal/driver/server"
)

// Setup registers the CSI gRPC server and, in the controller role, the
// reconciler runtime as Runnables on mgr.
func Setup(ctx context.Context, mgr manager.Manager, cfg *config.Config) error {
	clientset, err := kubernetes.NewForConfig(mgr.GetConfig())
	if err != nil {
		return fmt.Errorf("building kubernetes clientset: %w", err)
	}
	gate := authz.New(clientset)

	identity := server.NewIdentityServer()
	registry := prometheus.NewRegistry()

	var nodeSrv *server.NodeServer
	var controllerSrv *server.ControllerServer

	if cfg.IsController() {
		controllerSrv = server.NewControllerServer(mgr.GetClient())

		if err := setup.SetupWithManager(mgr); err != nil {
			return fmt.Errorf("setting up reconciler runtime: %w", err)
		}
	} else {
		nodeSrv = server.NewNodeServer(cfg.NodeID, mgr.GetClient(), gate)
	}

	return mgr.Add(manager.RunnableFunc(func(ctx context.Context) error {
		return server.Serve(ctx, cfg.GRPCEndpoint, identity, nodeSrv, controllerSrv, registry)
	}))
}
