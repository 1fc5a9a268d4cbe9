package watcher

import (
	"context"
	"fmt"
	"time"

	"gocv.io/x/gocv"

	"github.com/anbu-systems/anbu-watch/internal/domain/alert"
	"github.com/anbu-systems/anbu-watch/internal/domain/detection"
	"github.com/anbu-systems/anbu-watch/internal/logger"
	"github.com/anbu-systems/anbu-watch/internal/notifier"
)

// FrameSource produces frames on demand for the duration of a session.
type FrameSource interface {
	Next() (*gocv.Mat, error)
	Close() error
}

// Detector maps one frame to the objects found in it.
type Detector interface {
	Detect(frame *gocv.Mat) ([]detection.Detection, error)
	Close() error
}

// Dispatcher fires one asynchronous, never-awaited notification.
type Dispatcher interface {
	Dispatch(ctx context.Context, req notifier.Request)
}

// session is one running surveillance loop with its collaborators wired in.
type session struct {
	// source produces the frame stream.
	source FrameSource
	// detector maps frames to detections.
	detector Detector
	// machine decides when a presence episode begins.
	machine *alert.Machine
	// dispatcher sends the notification for each raised episode.
	dispatcher Dispatcher
	// receiver is the notification destination address.
	receiver string
	// targetLabel is the detection class that counts as presence.
	targetLabel string
	// minConfidence is the detection confidence threshold.
	minConfidence float64
	// now supplies observation timestamps.
	now func() time.Time
}

// run executes the sequential frame loop: frames are handled strictly in
// arrival order because presence and cooldown timing depend on ordered
// timestamps. It returns nil when the context is canceled (operator stop)
// and an error when the frame stream fails.
func (s *session) run(ctx context.Context) error {
	// The session owns the camera: it is released exactly once here, on
	// operator stop and stream failure alike.
	defer func() {
		if err := s.source.Close(); err != nil {
			logger.WarnKV(ctx, "Failed to release camera", "error", err)
		}
	}()

	for {
		// A stop request takes effect after the current frame.
		select {
		case <-ctx.Done():
			return nil
		default:
		}

		frame, err := s.source.Next()
		if err != nil {
			return fmt.Errorf("read frame: %w", err)
		}

		detections, err := s.detector.Detect(frame)
		if err != nil {
			// A collaborator fault on one frame must not end the session.
			logger.WarnKV(ctx, "Detector failed on frame", "error", err)

			continue
		}

		present := detection.Present(detections, s.targetLabel, s.minConfidence)

		evt := s.machine.Observe(present, s.now())
		if evt == nil {
			continue
		}

		logger.InfoKV(ctx, "Presence episode opened",
			"episode_id", evt.EpisodeID, "raised_at", evt.RaisedAt)

		s.dispatcher.Dispatch(ctx, notifier.Request{
			To:        s.receiver,
			Subject:   alertSubject,
			Body:      fmt.Sprintf(alertBodyFormat, s.targetLabel),
			EpisodeID: evt.EpisodeID,
		})
	}
}

const (
	// alertSubject is the notification subject line.
	alertSubject = "Intruder Alert!"

	// alertBodyFormat is the notification body. The verb fits the default
	// "person" label and reads acceptably for other classes too.
	alertBodyFormat = "A %s has been detected in the surveillance area!"
)
