package watcher

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/anbu-systems/anbu-watch/internal/capture"
	"github.com/anbu-systems/anbu-watch/internal/config"
	"github.com/anbu-systems/anbu-watch/internal/detector"
	"github.com/anbu-systems/anbu-watch/internal/domain/alert"
	"github.com/anbu-systems/anbu-watch/internal/logger"
	"github.com/anbu-systems/anbu-watch/internal/notifier"
)

// Options controls one surveillance session.
type Options struct {
	// ConfigPath specifies the path to the settings YAML file.
	ConfigPath string

	// DeviceIndex overrides the configured camera index when non-negative.
	DeviceIndex int

	// Cooldown overrides the configured episode grace period when positive.
	Cooldown time.Duration

	// TargetLabel overrides the configured detection class when non-empty.
	TargetLabel string

	// MinConfidence overrides the configured threshold when positive.
	MinConfidence float64

	// Input is where the device-selection prompt reads from.
	// Defaults to stdin.
	Input io.Reader

	// Output is where the device-selection prompt writes to.
	// Defaults to stdout.
	Output io.Writer
}

// ErrNoDeviceAvailable indicates enumeration found no usable camera.
var ErrNoDeviceAvailable = errors.New("no camera devices available")

// Run starts a surveillance session and blocks until the context is
// canceled or the frame stream fails. The camera is released on every
// exit path; notifications already in flight are left to complete.
func Run(ctx context.Context, opts *Options) error {
	ctx = logger.WithName(ctx, "anbu-watch")

	cfg, err := config.Load(opts.ConfigPath)
	if err != nil {
		return fmt.Errorf("load settings: %w", err)
	}

	applyOverrides(cfg, opts)

	available := capture.Enumerate(ctx, cfg.MaxDevices)
	if len(available) == 0 {
		return ErrNoDeviceAvailable
	}

	index, err := chooseDevice(ctx, cfg.DeviceIndex, available, opts)
	if err != nil {
		return err
	}

	source, err := capture.Open(index, cfg.FrameWidth, cfg.FrameHeight)
	if err != nil {
		return fmt.Errorf("open device %d: %w", index, err)
	}

	det, err := detector.NewYOLO(detector.YOLOOptions{
		WeightsPath: cfg.ModelWeights,
		ConfigPath:  cfg.ModelConfig,
		ClassesPath: cfg.ModelClasses,
	})
	if err != nil {
		// The session has not taken ownership of the camera yet.
		if closeErr := source.Close(); closeErr != nil {
			logger.WarnKV(ctx, "Failed to release camera", "error", closeErr)
		}

		return fmt.Errorf("load detector: %w", err)
	}

	defer func() {
		if closeErr := det.Close(); closeErr != nil {
			logger.WarnKV(ctx, "Failed to release detector", "error", closeErr)
		}
	}()

	dispatcher := notifier.NewDispatcher(
		notifier.NewSMTP(cfg.SMTPHost, cfg.SMTPPort, cfg.SenderEmail, cfg.SenderPassword),
	)

	s := &session{
		source:        source,
		detector:      det,
		machine:       alert.NewMachine(cfg.Cooldown),
		dispatcher:    dispatcher,
		receiver:      cfg.ReceiverEmail,
		targetLabel:   cfg.TargetLabel,
		minConfidence: cfg.MinConfidence,
		now:           time.Now,
	}

	logger.InfoKV(ctx, "Surveillance session started",
		"device_index", index,
		"target_label", cfg.TargetLabel,
		"min_confidence", cfg.MinConfidence,
		"cooldown", cfg.Cooldown)

	runErr := s.run(ctx)

	// Drain deliveries spawned before the loop exited. They run on a
	// detached context, so this only waits, it never cancels them.
	dispatcher.Wait()

	logger.Info(ctx, "Surveillance session stopped")

	return runErr
}

// applyOverrides layers command-line overrides on top of file settings.
func applyOverrides(cfg *config.Config, opts *Options) {
	if opts.DeviceIndex >= 0 {
		cfg.DeviceIndex = opts.DeviceIndex
	}

	if opts.Cooldown > 0 {
		cfg.Cooldown = opts.Cooldown
	}

	if opts.TargetLabel != "" {
		cfg.TargetLabel = opts.TargetLabel
	}

	if opts.MinConfidence > 0 {
		cfg.MinConfidence = opts.MinConfidence
	}
}

// chooseDevice resolves the camera index for the session: an explicit
// index must be among the enumerated ones, a single candidate is picked
// automatically, anything else asks the operator.
func chooseDevice(ctx context.Context, configured int, available []int, opts *Options) (int, error) {
	if configured >= 0 {
		for _, index := range available {
			if index == configured {
				return configured, nil
			}
		}

		return 0, fmt.Errorf("device %d: %w", configured, ErrNoDeviceAvailable)
	}

	if len(available) == 1 {
		logger.InfoKV(ctx, "Single camera found, selecting it", "device_index", available[0])

		return available[0], nil
	}

	in := opts.Input
	if in == nil {
		in = os.Stdin
	}

	out := opts.Output
	if out == nil {
		out = os.Stdout
	}

	return SelectDevice(ctx, available, in, out)
}
