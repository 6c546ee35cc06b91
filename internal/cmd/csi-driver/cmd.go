package csidriver

import (
	"fmt"

	"github.com/spf13/cobra"
	ctrl "sigs.k8s.io/controller-runtime"
	"sigs.k8s.io/controller-runtime/pkg/healthz"
	"sigs.k8s.io/controller-runtime/pkg/log"
	"sigs.k8s.io/controller-runtime/pkg/metrics/server"

	"github.com/arunaengine/kubedal/internal/cmd/csi-driver/options"
	"github.com/arunaengine/kubedal/internal/driver"
	"github.com/arunaengine/kubedal/internal/scheme"
)

const helpOutput = "A CSI driver that mounts declarative object-storage endpoints (DataNode/DataPod/DataReplicaSet) into pods."

// NewCommand returns a new command instance of the kubedal CSI driver.
func NewCommand() *cobra.Command {
	opts := new(options.Options)

	cmd := &cobra.Command{
		Use:   "kubedal-csi-driver",
		Short: helpOutput,
		PreRunE: func(cmd *cobra.Command, args []string) error {
			return opts.Complete()
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()

			log.Log = opts.Logr.WithName("apiutil")
			mlog := opts.Logr.WithName("controller-manager")
			ctrl.SetLogger(mlog)

			mgr, err := ctrl.NewManager(opts.RestConfig, ctrl.Options{
				Scheme:                 scheme.New(),
				ReadinessEndpointName:  "/readyz",
				HealthProbeBindAddress: opts.ReadyzAddress,
				Metrics: server.Options{
					BindAddress: opts.MetricsAddress,
				},
				Logger: mlog,
			})
			if err != nil {
				return fmt.Errorf("unable to create controller manager: %w", err)
			}

			if err := mgr.AddReadyzCheck("readyz", healthz.Ping); err != nil {
				return fmt.Errorf("unable to add readyz check: %w", err)
			}

			if err := driver.Setup(ctx, mgr, &opts.CSI); err != nil {
				return fmt.Errorf("unable to setup csi driver: %w", err)
			}

			opts.Logr.WithName("main").Info("starting kubedal csi-driver...", "endpoint", opts.CSI.GRPCEndpoint, "node-id", opts.CSI.NodeID)
			return mgr.Start(ctx)
		},
	}

	opts.AddFlags(cmd)

	return cmd
}
