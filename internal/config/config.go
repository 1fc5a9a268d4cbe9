package config

import (
	"errors"
	"fmt"
	"net/mail"
	"os"
	"path/filepath"
	"time"

	"gopkg.in/yaml.v3"
)

// Config holds the settings for one surveillance session.
type Config struct {
	// SMTPHost is the hostname of the outgoing mail server.
	SMTPHost string `yaml:"smtp_host"`
	// SMTPPort is the submission port of the outgoing mail server.
	SMTPPort int `yaml:"smtp_port"`
	// SenderEmail is the account used to authenticate against the mail server.
	SenderEmail string `yaml:"sender_email"`
	// SenderPassword is the app password for SenderEmail.
	SenderPassword string `yaml:"sender_password"`
	// ReceiverEmail is the destination address for alert notifications.
	ReceiverEmail string `yaml:"receiver_email"`
	// DeviceIndex selects the camera device. Negative means "ask the operator".
	DeviceIndex int `yaml:"device_index"`
	// MaxDevices bounds the device indices probed during enumeration.
	MaxDevices int `yaml:"max_devices"`
	// TargetLabel is the detection class that counts as subject presence.
	TargetLabel string `yaml:"target_label"`
	// MinConfidence is the detection confidence threshold in [0,1].
	// Raising it trades missed detections for fewer false alerts.
	MinConfidence float64 `yaml:"min_confidence"`
	// Cooldown is the grace period after the last positive frame during
	// which the presence episode is considered ongoing.
	Cooldown time.Duration `yaml:"cooldown"`
	// FrameWidth is the capture width requested from the camera.
	FrameWidth int `yaml:"frame_width"`
	// FrameHeight is the capture height requested from the camera.
	FrameHeight int `yaml:"frame_height"`
	// ModelWeights is the path to the detection model weights file.
	ModelWeights string `yaml:"model_weights"`
	// ModelConfig is the path to the detection model network config file.
	ModelConfig string `yaml:"model_config"`
	// ModelClasses is the path to the newline-separated class names file.
	ModelClasses string `yaml:"model_classes"`
}

const (
	// DefaultConfigFilename is the default filename for session settings.
	DefaultConfigFilename = "anbu-watch-settings.yaml"

	// DefaultSMTPHost is the default outgoing mail server.
	DefaultSMTPHost = "smtp.gmail.com"

	// DefaultSMTPPort is the default mail submission port.
	DefaultSMTPPort = 587

	// DefaultMaxDevices bounds camera enumeration when unset.
	DefaultMaxDevices = 5

	// DefaultTargetLabel is the detection class watched for by default.
	DefaultTargetLabel = "person"

	// DefaultMinConfidence is the default detection confidence threshold.
	DefaultMinConfidence = 0.5

	// DefaultCooldown is the default grace period for presence episodes.
	DefaultCooldown = 60 * time.Second

	// DefaultFrameWidth is the default capture width.
	DefaultFrameWidth = 1280

	// DefaultFrameHeight is the default capture height.
	DefaultFrameHeight = 720

	// DefaultFilePermissions is the default file permission for config files.
	DefaultFilePermissions = 0o600
)

var (
	// errConfigIsNotSet is returned when a nil configuration is provided.
	errConfigIsNotSet = errors.New("configuration is not set")
	// errSenderRequired is returned when the sender address is missing.
	errSenderRequired = errors.New("sender email must be provided")
	// errPasswordRequired is returned when the sender password is missing.
	errPasswordRequired = errors.New("sender password must be provided")
	// errReceiverRequired is returned when the receiver address is missing.
	errReceiverRequired = errors.New("receiver email must be provided")
)

// Load reads configuration from the provided path and validates essential fields.
func Load(path string) (*Config, error) {
	if path == "" {
		path = DefaultConfigFilename
	}

	contents, err := os.ReadFile(filepath.Clean(path))
	if err != nil {
		return nil, fmt.Errorf("read settings: %w", err)
	}

	// Index 0 is a valid camera, so "ask the operator" needs a distinct
	// default for files that omit device_index entirely.
	cfg := Config{DeviceIndex: -1}
	if err := yaml.Unmarshal(contents, &cfg); err != nil {
		return nil, fmt.Errorf("unmarshal settings: %w", err)
	}

	if err := Validate(&cfg); err != nil {
		return nil, err
	}

	return &cfg, nil
}

// Save writes settings to the provided path.
func Save(path string, cfg *Config) error {
	if cfg == nil {
		return errConfigIsNotSet
	}

	if path == "" {
		path = DefaultConfigFilename
	}

	if err := Validate(cfg); err != nil {
		return err
	}

	data, err := yaml.Marshal(cfg)
	if err != nil {
		return fmt.Errorf("marshal settings: %w", err)
	}

	// Restrict permissions, the file carries a mail credential.
	if err := os.WriteFile(filepath.Clean(path), data, DefaultFilePermissions); err != nil {
		return fmt.Errorf("write settings: %w", err)
	}

	return nil
}

// Validate checks the provided settings for required fields and fills defaults.
func Validate(cfg *Config) error {
	if cfg == nil {
		return errConfigIsNotSet
	}

	switch {
	case cfg.SenderEmail == "":
		return errSenderRequired
	case cfg.SenderPassword == "":
		return errPasswordRequired
	case cfg.ReceiverEmail == "":
		return errReceiverRequired
	}

	if _, err := mail.ParseAddress(cfg.SenderEmail); err != nil {
		return fmt.Errorf("invalid sender email: %w", err)
	}

	if _, err := mail.ParseAddress(cfg.ReceiverEmail); err != nil {
		return fmt.Errorf("invalid receiver email: %w", err)
	}

	applyDefaults(cfg)

	if cfg.MinConfidence < 0 || cfg.MinConfidence > 1 {
		return fmt.Errorf("min confidence %v is outside [0,1]", cfg.MinConfidence)
	}

	return nil
}

// applyDefaults fills zero-valued optional fields with package defaults.
func applyDefaults(cfg *Config) {
	if cfg.SMTPHost == "" {
		cfg.SMTPHost = DefaultSMTPHost
	}

	if cfg.SMTPPort <= 0 {
		cfg.SMTPPort = DefaultSMTPPort
	}

	if cfg.MaxDevices <= 0 {
		cfg.MaxDevices = DefaultMaxDevices
	}

	if cfg.TargetLabel == "" {
		cfg.TargetLabel = DefaultTargetLabel
	}

	if cfg.MinConfidence == 0 {
		cfg.MinConfidence = DefaultMinConfidence
	}

	if cfg.Cooldown <= 0 {
		cfg.Cooldown = DefaultCooldown
	}

	if cfg.FrameWidth <= 0 {
		cfg.FrameWidth = DefaultFrameWidth
	}

	if cfg.FrameHeight <= 0 {
		cfg.FrameHeight = DefaultFrameHeight
	}
}
