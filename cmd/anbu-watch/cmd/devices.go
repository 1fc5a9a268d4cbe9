package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/anbu-systems/anbu-watch/internal/capture"
)

// maxDevices bounds the indices probed by the devices subcommand.
var maxDevices int

// devicesCmd lists the camera indices that can actually be opened.
var devicesCmd = &cobra.Command{
	Use:   "devices",
	Short: "List usable camera devices.",
	Long: `Probes device indices in order and prints the ones that can be opened.
Indices that fail to open are skipped silently; an empty result means no
camera is currently usable.`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, _ []string) error {
		available := capture.Enumerate(cmd.Context(), maxDevices)
		if len(available) == 0 {
			fmt.Fprintln(cmd.OutOrStdout(), "No usable camera devices found.")

			return nil
		}

		for _, index := range available {
			fmt.Fprintf(cmd.OutOrStdout(), "camera %d\n", index)
		}

		return nil
	},
}

//nolint:gochecknoinits // Required by Cobra CLI framework architecture.
func init() {
	devicesCmd.Flags().
		IntVarP(&maxDevices, "max-devices", "m", capture.DefaultMaxDevices, "highest device index to probe (exclusive)")

	rootCmd.AddCommand(devicesCmd)
}
