package cmd

import (
	"time"

	"github.com/spf13/cobra"

	"github.com/anbu-systems/anbu-watch/internal/config"
	"github.com/anbu-systems/anbu-watch/internal/logger"
)

var (
	// setupSender is the authenticating sender address.
	setupSender string
	// setupPassword is the app password for the sender address.
	setupPassword string
	// setupReceiver is the alert destination address.
	setupReceiver string
	// setupSMTPHost is the outgoing mail server hostname.
	setupSMTPHost string
	// setupSMTPPort is the mail submission port.
	setupSMTPPort int
	// setupDevice is the preferred camera index, negative to be asked.
	setupDevice int
	// setupCooldown is the presence episode grace period.
	setupCooldown time.Duration
)

// setupCmd writes a settings file from flags so a session can start
// without interactive configuration.
var setupCmd = &cobra.Command{
	Use:   "setup",
	Short: "Write the settings file for surveillance sessions.",
	Long: `Collects the mail credential, the notification destination and the
session parameters, validates them and writes the settings YAML file.
The file is written with owner-only permissions since it carries the
sender's app password.`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, _ []string) error {
		cfg := &config.Config{
			SMTPHost:       setupSMTPHost,
			SMTPPort:       setupSMTPPort,
			SenderEmail:    setupSender,
			SenderPassword: setupPassword,
			ReceiverEmail:  setupReceiver,
			DeviceIndex:    setupDevice,
			Cooldown:       setupCooldown,
		}

		if err := config.Save(configPath, cfg); err != nil {
			return err
		}

		logger.InfoKV(cmd.Context(), "Settings written", "path", configPath)

		return nil
	},
}

//nolint:gochecknoinits // Required by Cobra CLI framework architecture.
func init() {
	setupCmd.Flags().StringVar(&setupSender, "sender", "", "sender email address")
	setupCmd.Flags().StringVar(&setupPassword, "password", "", "sender app password")
	setupCmd.Flags().StringVar(&setupReceiver, "receiver", "", "receiver email address")
	setupCmd.Flags().StringVar(&setupSMTPHost, "smtp-host", config.DefaultSMTPHost, "outgoing mail server hostname")
	setupCmd.Flags().IntVar(&setupSMTPPort, "smtp-port", config.DefaultSMTPPort, "outgoing mail submission port")
	setupCmd.Flags().IntVar(&setupDevice, "device", -1, "preferred camera index, negative asks at session start")
	setupCmd.Flags().DurationVar(&setupCooldown, "cooldown", config.DefaultCooldown, "presence episode grace period")

	_ = setupCmd.MarkFlagRequired("sender")
	_ = setupCmd.MarkFlagRequired("password")
	_ = setupCmd.MarkFlagRequired("receiver")

	rootCmd.AddCommand(setupCmd)
}
