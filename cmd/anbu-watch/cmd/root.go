package cmd

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/anbu-systems/anbu-watch/internal/config"
	"github.com/anbu-systems/anbu-watch/internal/logger"
	"github.com/anbu-systems/anbu-watch/internal/service/watcher"
	"github.com/anbu-systems/anbu-watch/internal/version"
)

var (
	// configPath to the configuration YAML file.
	configPath string
	// deviceIndex overrides the configured camera when non-negative.
	deviceIndex int
	// cooldown overrides the configured episode grace period.
	cooldown time.Duration
	// targetLabel overrides the configured detection class.
	targetLabel string
	// minConfidence overrides the configured detection threshold.
	minConfidence float64
	// logLevel sets the minimum level for console logging.
	logLevel string

	// rootCmd represents the base command for running a surveillance session.
	rootCmd = &cobra.Command{
		Use:   "anbu-watch",
		Short: "Watch a camera feed and send an email alert when a subject appears.",
		Long: `Runs a surveillance session on one camera: every frame is passed through
a pretrained object detection model, and the first frame of each presence
episode triggers exactly one email notification.

A presence episode ends only after the subject has been absent for longer
than the cooldown, so detection flicker and brief occlusions never cause
duplicate alerts. Credentials, the camera selection and the detection
thresholds come from the settings file; flags override it per run.`,
		Args: cobra.NoArgs,
		PersistentPreRun: func(_ *cobra.Command, _ []string) {
			if level, ok := logger.ParseLogLevel(logLevel); ok {
				logger.SetLevel(level)
			}
		},
		RunE: func(_ *cobra.Command, _ []string) error {
			// Setup graceful shutdown handling.
			ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGTERM, syscall.SIGINT)
			defer stop()

			options := &watcher.Options{
				ConfigPath:    configPath,
				DeviceIndex:   deviceIndex,
				Cooldown:      cooldown,
				TargetLabel:   targetLabel,
				MinConfidence: minConfidence,
			}

			return watcher.Run(ctx, options)
		},
	}
)

// Execute runs the anbu-watch CLI and exits with non-zero status on error.
func Execute() {
	version.AttachCobraVersionCommand(rootCmd)

	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

//nolint:gochecknoinits // Required by Cobra CLI framework architecture.
func init() {
	rootCmd.PersistentFlags().
		StringVarP(&configPath, "config", "c", config.DefaultConfigFilename, "path to configuration file")
	rootCmd.PersistentFlags().StringVar(&logLevel, "log-level", "info", "minimum log level (debug, info, warn, error)")

	rootCmd.Flags().IntVarP(&deviceIndex, "device", "d", -1, "camera device index, negative asks the operator")
	rootCmd.Flags().DurationVar(&cooldown, "cooldown", 0, "presence episode grace period, 0 uses the configured value")
	rootCmd.Flags().StringVar(&targetLabel, "label", "", "detection class to watch for, empty uses the configured value")
	rootCmd.Flags().
		Float64Var(&minConfidence, "min-confidence", 0, "detection confidence threshold, 0 uses the configured value")
}
