package watcher

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"gocv.io/x/gocv"

	"github.com/anbu-systems/anbu-watch/internal/capture"
	"github.com/anbu-systems/anbu-watch/internal/domain/alert"
	"github.com/anbu-systems/anbu-watch/internal/domain/detection"
	"github.com/anbu-systems/anbu-watch/internal/notifier"
)

var (
	errTestDetector  = errors.New("test detector error")
	errTestTransport = errors.New("test transport error")
)

// fakeSource serves a fixed number of frames, then fails like a stream
// that ended. It counts reads and closes.
type fakeSource struct {
	// mu guards the counters.
	mu sync.Mutex
	// limit is the number of frames to serve before failing.
	limit int
	// reads counts Next calls that served a frame.
	reads int
	// closes counts Close calls.
	closes int
	// frame is the zero-value placeholder handed to the detector fakes.
	frame gocv.Mat
}

func (f *fakeSource) Next() (*gocv.Mat, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	if f.reads >= f.limit {
		return nil, capture.ErrReadFailed
	}

	f.reads++

	return &f.frame, nil
}

func (f *fakeSource) Close() error {
	f.mu.Lock()
	defer f.mu.Unlock()

	f.closes++

	return nil
}

func (f *fakeSource) readCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()

	return f.reads
}

func (f *fakeSource) closeCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()

	return f.closes
}

// scriptedDetector replays a per-frame presence script and can fail or
// run a hook on selected calls.
type scriptedDetector struct {
	// script holds the presence signal per frame.
	script []bool
	// errAt marks call indices that fail with errTestDetector.
	errAt map[int]bool
	// onCall runs before each call with the call index.
	onCall func(call int)
	// calls counts Detect invocations.
	calls int
}

func (d *scriptedDetector) Detect(_ *gocv.Mat) ([]detection.Detection, error) {
	call := d.calls
	d.calls++

	if d.onCall != nil {
		d.onCall(call)
	}

	if d.errAt[call] {
		return nil, errTestDetector
	}

	if call < len(d.script) && d.script[call] {
		return []detection.Detection{
			{Label: "person", Confidence: 0.9},
		}, nil
	}

	return nil, nil
}

func (d *scriptedDetector) Close() error {
	return nil
}

// recordingDispatcher captures dispatch requests synchronously.
type recordingDispatcher struct {
	// mu guards requests.
	mu sync.Mutex
	// requests are the dispatched notifications.
	requests []notifier.Request
}

func (r *recordingDispatcher) Dispatch(_ context.Context, req notifier.Request) {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.requests = append(r.requests, req)
}

func (r *recordingDispatcher) seen() []notifier.Request {
	r.mu.Lock()
	defer r.mu.Unlock()

	return append([]notifier.Request(nil), r.requests...)
}

// stepClock hands out timestamps one second apart per call.
type stepClock struct {
	// next is the index of the next tick.
	next int
}

func (c *stepClock) now() time.Time {
	t := time.Unix(1_700_000_000, 0).Add(time.Duration(c.next) * time.Second)
	c.next++

	return t
}

// newTestSession wires a session from fakes replaying the given script.
func newTestSession(script []bool, cooldown time.Duration, dispatcher Dispatcher) (*session, *fakeSource, *scriptedDetector) {
	source := &fakeSource{limit: len(script)}
	det := &scriptedDetector{script: script}
	clock := &stepClock{}

	s := &session{
		source:        source,
		detector:      det,
		machine:       alert.NewMachine(cooldown),
		dispatcher:    dispatcher,
		receiver:      "owner@example.com",
		targetLabel:   "person",
		minConfidence: 0.5,
		now:           clock.now,
	}

	return s, source, det
}

// TestRunRaisesOncePerEpisode replays the canonical trace at both
// cooldown settings and counts dispatched notifications.
func TestRunRaisesOncePerEpisode(t *testing.T) {
	t.Parallel()

	trace := []bool{true, true, true, false, false, true, true}

	// The 2s gap does not exceed a 2s cooldown: one episode.
	dispatcher := new(recordingDispatcher)
	s, source, _ := newTestSession(trace, 2*time.Second, dispatcher)

	err := s.run(context.Background())
	require.ErrorIs(t, err, capture.ErrReadFailed)
	require.Len(t, dispatcher.seen(), 1)

	// The failed read released the camera, exactly once.
	require.Equal(t, 1, source.closeCount())

	// With a 1s cooldown the gap resets the episode: two notifications.
	dispatcher = new(recordingDispatcher)
	s, _, _ = newTestSession(trace, 1*time.Second, dispatcher)

	err = s.run(context.Background())
	require.ErrorIs(t, err, capture.ErrReadFailed)

	requests := dispatcher.seen()
	require.Len(t, requests, 2)
	require.NotEqual(t, requests[0].EpisodeID, requests[1].EpisodeID)
	require.Equal(t, "owner@example.com", requests[0].To)
	require.Equal(t, "Intruder Alert!", requests[0].Subject)
}

// TestRunSurvivesSenderFailure wires a real dispatcher whose transport
// always fails; every frame must still be processed and the only error
// out of the loop is the end-of-stream one.
func TestRunSurvivesSenderFailure(t *testing.T) {
	t.Parallel()

	sender := failingSender{}
	dispatcher := notifier.NewDispatcher(sender)

	trace := []bool{true, true, false, false, false, false, true}
	s, source, _ := newTestSession(trace, 1*time.Second, dispatcher)

	err := s.run(context.Background())
	require.ErrorIs(t, err, capture.ErrReadFailed)
	require.Equal(t, len(trace), source.readCount())

	dispatcher.Wait()
}

// failingSender always fails delivery.
type failingSender struct{}

func (failingSender) Send(context.Context, notifier.Request) error {
	return errTestTransport
}

// TestRunSkipsFramesOnDetectorError drops faulty frames without feeding
// the state machine and without ending the session.
func TestRunSkipsFramesOnDetectorError(t *testing.T) {
	t.Parallel()

	// Presence frames exist but every one of them fails detection,
	// so no episode can open.
	trace := []bool{true, true, true}
	dispatcher := new(recordingDispatcher)
	s, source, det := newTestSession(trace, time.Second, dispatcher)
	det.errAt = map[int]bool{0: true, 1: true, 2: true}

	err := s.run(context.Background())
	require.ErrorIs(t, err, capture.ErrReadFailed)
	require.Equal(t, len(trace), source.readCount())
	require.Empty(t, dispatcher.seen())
	require.Equal(t, alert.StatusIdle, s.machine.Status())
}

// TestRunStopsAfterCurrentFrame cancels mid-loop and verifies the loop
// finishes the frame in hand, requests no further frames, and reports no
// error for an operator-requested stop.
func TestRunStopsAfterCurrentFrame(t *testing.T) {
	t.Parallel()

	ctx, cancel := context.WithCancel(context.Background())

	trace := []bool{false, false, true, true, true, true}
	dispatcher := new(recordingDispatcher)
	s, source, det := newTestSession(trace, time.Second, dispatcher)

	// Stop while the third frame is being processed.
	det.onCall = func(call int) {
		if call == 2 {
			cancel()
		}
	}

	err := s.run(ctx)
	require.NoError(t, err)
	require.Equal(t, 3, source.readCount())

	// The frame in flight was still fully processed: it carried
	// presence, so its episode was raised before exiting.
	require.Len(t, dispatcher.seen(), 1)

	// The stop path released the camera, exactly once.
	require.Equal(t, 1, source.closeCount())
}
