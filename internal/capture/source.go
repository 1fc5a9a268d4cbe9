package capture

import (
	"errors"
	"fmt"
	"sync"

	"gocv.io/x/gocv"
)

// ErrReadFailed is returned by Next when the device stops producing
// frames, either through a transient read failure or end of stream.
var ErrReadFailed = errors.New("failed to read frame from device")

// Source owns one opened camera device and produces frames on demand.
// It is driven by a single frame loop and must be closed on every exit
// path; Close is idempotent so deferred and explicit releases may overlap.
type Source struct {
	// cam is the underlying capture handle.
	cam *gocv.VideoCapture
	// frame is the reusable decode buffer handed out by Next.
	frame gocv.Mat
	// index is the device index the source was opened with.
	index int
	// mu guards closed so a deferred Close racing an explicit one
	// releases the device exactly once.
	mu sync.Mutex
	// closed marks the source as released.
	closed bool
}

// Open opens the camera at the given index and requests the provided
// capture dimensions. Failures are fatal to session start.
func Open(index, width, height int) (*Source, error) {
	cam, err := gocv.OpenVideoCapture(index)
	if err != nil {
		return nil, fmt.Errorf("open device %d: %w", index, err)
	}

	if !cam.IsOpened() {
		_ = cam.Close()

		return nil, fmt.Errorf("device %d: %w", index, errDeviceNotOpened)
	}

	// Requested sizes are best-effort, the driver may pick the nearest mode.
	cam.Set(gocv.VideoCaptureFrameWidth, float64(width))
	cam.Set(gocv.VideoCaptureFrameHeight, float64(height))

	return &Source{
		cam:   cam,
		frame: gocv.NewMat(),
		index: index,
	}, nil
}

// Next reads the next frame into the source's internal buffer and returns
// it. The returned Mat is only valid until the following Next or Close
// call. Returns ErrReadFailed when the device produces no usable frame.
func (s *Source) Next() (*gocv.Mat, error) {
	if ok := s.cam.Read(&s.frame); !ok || s.frame.Empty() {
		return nil, fmt.Errorf("device %d: %w", s.index, ErrReadFailed)
	}

	return &s.frame, nil
}

// Index returns the device index the source was opened with.
func (s *Source) Index() int {
	return s.index
}

// Close releases the camera and the frame buffer. Safe to call more than once.
func (s *Source) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed {
		return nil
	}

	s.closed = true

	if err := s.frame.Close(); err != nil {
		_ = s.cam.Close()

		return fmt.Errorf("release frame buffer: %w", err)
	}

	if err := s.cam.Close(); err != nil {
		return fmt.Errorf("release device %d: %w", s.index, err)
	}

	return nil
}
