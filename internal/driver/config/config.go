// Package config holds the CSI driver's runtime configuration, populated
// from CLI flags.
package config

// ControllerNodeID is the --node-id value that selects the controller role
// (Identity + Controller + embedded reconciler) rather than the node role
// (Identity + Node).
const ControllerNodeID = "controller"

// Config is the driver's process configuration.
type Config struct {
	// GRPCEndpoint is the unix:// socket the driver listens on.
	GRPCEndpoint string

	// NodeID identifies this process's role. The value "controller"
	// selects the controller role; any other value selects the node role
	// and is reported verbatim from NodeGetInfo.
	NodeID string

	// DriverName holds the --driver-name flag. No service reads it:
	// Identity.GetPluginInfo reports the fixed server.DriverName.
	DriverName string
}

// IsController reports whether this process should run in the controller
// role.
func (c Config) IsController() bool {
	return c.NodeID == ControllerNodeID
}
