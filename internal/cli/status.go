package cli

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/qbridge-labs/qbridge/internal/config"
	"github.com/qbridge-labs/qbridge/internal/device"
	"github.com/qbridge-labs/qbridge/pkg/core"
)

func newStatusCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "status",
		Short: "Inspect or change the device availability status",
	}
	cmd.AddCommand(newStatusGetCommand(), newStatusSetCommand())
	return cmd
}

func newStatusGetCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "get",
		Short: "Print the current device status",
		RunE: func(cmd *cobra.Command, _ []string) error {
			status, err := currentStatus()
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), status)
			return nil
		},
	}
}

func newStatusSetCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "set <active|inactive|maintenance>",
		Short: "Write the device status to the status file",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			status := core.DeviceStatus(args[0])
			if !status.Valid() {
				return fmt.Errorf("invalid device status %q: want active, inactive or maintenance", args[0])
			}
			if cfg.Device.StatusPath == "" {
				return fmt.Errorf("no status file configured: set device.status_path in %s", config.ConfigFileName)
			}
			if err := os.WriteFile(cfg.Device.StatusPath, []byte(status+"\n"), 0o644); err != nil {
				return fmt.Errorf("failed to write status file: %w", err)
			}
			logger.Info("device status updated", "status", status, "path", cfg.Device.StatusPath)
			return nil
		},
	}
}

// currentStatus resolves the status the same way the server does at startup:
// the status file wins when configured and readable, otherwise the configured
// initial status applies.
func currentStatus() (core.DeviceStatus, error) {
	if cfg.Device.StatusPath != "" {
		return device.ReadStatusFile(cfg.Device.StatusPath)
	}
	return cfg.InitialStatus()
}
