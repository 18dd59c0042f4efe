package cli

import (
	"encoding/json"
	"fmt"

	"github.com/spf13/cobra"
)

func newDeviceCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "device",
		Short: "Show the loaded device topology and capacity",
		RunE: func(cmd *cobra.Command, _ []string) error {
			rt, err := buildRuntime()
			if err != nil {
				return err
			}
			defer rt.close()

			info := rt.snapshot.Info(rt.status.Get(), rt.backend.Simulator())
			body := struct {
				DeviceID     string   `json:"device_id"`
				ProviderID   string   `json:"provider_id"`
				Type         string   `json:"type"`
				Status       string   `json:"status"`
				MaxQubits    int      `json:"max_qubits"`
				MaxShots     int      `json:"max_shots"`
				CalibratedAt string   `json:"calibrated_at,omitempty"`
				Qubits       []int    `json:"qubits"`
				Couplings    [][2]int `json:"couplings"`
			}{
				DeviceID:     info.DeviceID,
				ProviderID:   info.ProviderID,
				Type:         info.Type,
				Status:       string(info.Status),
				MaxQubits:    info.MaxQubits,
				MaxShots:     info.MaxShots,
				CalibratedAt: info.CalibratedAt,
				Qubits:       rt.snapshot.Topology.PhysicalQubits(),
				Couplings:    rt.snapshot.Topology.Couplings(),
			}

			out, err := json.MarshalIndent(body, "", "  ")
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), string(out))
			return nil
		},
	}
}
