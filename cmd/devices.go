// cmd/devices.go
package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/ColonelBlimp/morsedecoder/internal/audio"
)

var devicesCmd = &cobra.Command{
	Use:   "devices",
	Short: "List audio capture devices",
	Args:  cobra.NoArgs,
	RunE:  runDevices,
}

func init() {
	rootCmd.AddCommand(devicesCmd)
}

func runDevices(cmd *cobra.Command, _ []string) error {
	capture := audio.New(current.settings.AudioConfig())
	if err := capture.Init(); err != nil {
		return fmt.Errorf("audio: %w", err)
	}
	defer capture.Close()

	devices, err := capture.ListDevices()
	if err != nil {
		return fmt.Errorf("audio: %w", err)
	}
	for i, d := range devices {
		fmt.Fprintf(cmd.OutOrStdout(), "[%d] %s\n", i, d.Name())
	}
	return nil
}
