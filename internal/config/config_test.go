package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

// TestValidate checks required fields, format validations and default filling.
func TestValidate(t *testing.T) {
	t.Parallel()

	// Missing sender.
	cfg := new(Config)

	err := Validate(cfg)
	require.ErrorIs(t, err, errSenderRequired)

	// Missing password.
	cfg = &Config{
		SenderEmail: "guard@example.com",
	}

	err = Validate(cfg)
	require.ErrorIs(t, err, errPasswordRequired)

	// Bad receiver address.
	cfg = &Config{
		SenderEmail:    "guard@example.com",
		SenderPassword: "app-password",
		ReceiverEmail:  "not an address",
	}

	err = Validate(cfg)
	require.Error(t, err)

	// Okay, defaults filled.
	cfg = &Config{
		SenderEmail:    "guard@example.com",
		SenderPassword: "app-password",
		ReceiverEmail:  "owner@example.com",
	}

	err = Validate(cfg)
	require.NoError(t, err)
	require.Equal(t, DefaultSMTPHost, cfg.SMTPHost)
	require.Equal(t, DefaultSMTPPort, cfg.SMTPPort)
	require.Equal(t, DefaultTargetLabel, cfg.TargetLabel)
	require.Equal(t, DefaultMaxDevices, cfg.MaxDevices)
	require.InEpsilon(t, DefaultMinConfidence, cfg.MinConfidence, 1e-9)
	require.Equal(t, DefaultCooldown, cfg.Cooldown)
}

// TestValidateRejectsOutOfRangeConfidence ensures thresholds stay inside [0,1].
func TestValidateRejectsOutOfRangeConfidence(t *testing.T) {
	t.Parallel()

	cfg := &Config{
		SenderEmail:    "guard@example.com",
		SenderPassword: "app-password",
		ReceiverEmail:  "owner@example.com",
		MinConfidence:  1.5,
	}

	require.Error(t, Validate(cfg))
}

// TestLoadDefaultsDeviceIndexToPrompt treats an omitted device_index as
// "ask the operator" rather than camera zero.
func TestLoadDefaultsDeviceIndexToPrompt(t *testing.T) {
	t.Parallel()

	path := filepath.Join(t.TempDir(), "settings.yaml")
	contents := []byte("sender_email: guard@example.com\n" +
		"sender_password: app-password\n" +
		"receiver_email: owner@example.com\n")
	require.NoError(t, os.WriteFile(path, contents, 0o600))

	cfg, err := Load(path)
	require.NoError(t, err)
	require.Equal(t, -1, cfg.DeviceIndex)
}

// TestSaveLoadRoundtrip ensures settings are persisted and loaded back correctly.
func TestSaveLoadRoundtrip(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	path := filepath.Join(dir, "settings.yaml")

	cfg := &Config{
		SenderEmail:    "guard@example.com",
		SenderPassword: "app-password",
		ReceiverEmail:  "owner@example.com",
		DeviceIndex:    2,
		Cooldown:       90 * time.Second,
	}

	require.NoError(t, Save(path, cfg))

	loaded, err := Load(path)
	require.NoError(t, err)
	require.Equal(t, cfg.SenderEmail, loaded.SenderEmail)
	require.Equal(t, cfg.ReceiverEmail, loaded.ReceiverEmail)
	require.Equal(t, 2, loaded.DeviceIndex)
	require.Equal(t, 90*time.Second, loaded.Cooldown)

	// Credential-bearing file must not be group or world readable.
	info, err := os.Stat(path)
	require.NoError(t, err)
	require.Equal(t, os.FileMode(DefaultFilePermissions), info.Mode().Perm())
}
