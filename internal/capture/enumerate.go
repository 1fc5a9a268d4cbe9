package capture

import (
	"context"
	"errors"
	"fmt"

	"gocv.io/x/gocv"

	"github.com/anbu-systems/anbu-watch/internal/logger"
)

// DefaultMaxDevices bounds the device indices probed during enumeration.
const DefaultMaxDevices = 5

// errDeviceNotOpened is returned by a probe when the device opens
// without error but reports itself unusable.
var errDeviceNotOpened = errors.New("device is not opened")

// ProbeFunc checks whether the camera at the given index is usable.
// It must release whatever it opened before returning.
type ProbeFunc func(index int) error

// Enumerate probes device indices in [0, maxDevices) and returns, in
// order, the ones that can be opened and closed without error. A failed
// probe excludes its index and is logged at debug level only; enumeration
// itself never fails. A non-positive maxDevices yields an empty result.
// Cancelling the context stops probing and returns whatever was found
// so far.
func Enumerate(ctx context.Context, maxDevices int) []int {
	return EnumerateWith(ctx, maxDevices, probeDevice)
}

// EnumerateWith is Enumerate with an injectable probe.
func EnumerateWith(ctx context.Context, maxDevices int, probe ProbeFunc) []int {
	if maxDevices < 0 {
		maxDevices = 0
	}

	available := make([]int, 0, maxDevices)

	for index := 0; index < maxDevices; index++ {
		if ctx.Err() != nil {
			return available
		}

		if err := probe(index); err != nil {
			logger.DebugKV(ctx, "Device probe failed", "device_index", index, "error", err)

			continue
		}

		available = append(available, index)
	}

	return available
}

// probeDevice transiently opens and closes one camera device.
func probeDevice(index int) error {
	cam, err := gocv.OpenVideoCapture(index)
	if err != nil {
		return fmt.Errorf("open device %d: %w", index, err)
	}

	defer func() {
		_ = cam.Close()
	}()

	if !cam.IsOpened() {
		return fmt.Errorf("device %d: %w", index, errDeviceNotOpened)
	}

	return nil
}
