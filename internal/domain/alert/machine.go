package alert

import (
	"time"

	"github.com/google/uuid"
)

// Status enumerates the states of the alerting machine.
type Status int

const (
	// StatusIdle means no presence episode is ongoing. Initial state.
	StatusIdle Status = iota
	// StatusAlerted means a presence episode is ongoing and its
	// notification has already been raised.
	StatusAlerted
)

// String returns a human-readable status name for logs.
func (s Status) String() string {
	switch s {
	case StatusIdle:
		return "idle"
	case StatusAlerted:
		return "alerted"
	default:
		return "unknown"
	}
}

// Event is emitted exactly once per presence episode, on the transition
// from idle to alerted.
type Event struct {
	// EpisodeID uniquely identifies the presence episode the event opened.
	EpisodeID string
	// RaisedAt is the observation time that opened the episode.
	RaisedAt time.Time
}

// Machine converts a noisy per-frame presence signal into discrete
// presence episodes with at most one Event each.
//
// While alerted, a false signal does not end the episode until the time
// since the last true signal exceeds the cooldown. Brief detection gaps
// (model flicker, momentary occlusion) therefore never raise a second
// event for the same episode.
//
// The machine owns all of its state; it is not safe for concurrent use
// and is intended to be driven by a single sequential frame loop.
type Machine struct {
	// status is the current state, idle or alerted.
	status Status
	// lastTrueAt is the observation time of the most recent true signal.
	lastTrueAt time.Time
	// cooldown is the grace period after lastTrueAt during which the
	// episode is considered ongoing despite false signals.
	cooldown time.Duration
	// episodeID identifies the ongoing episode while alerted.
	episodeID string
}

// DefaultCooldown is the grace period applied when none is configured.
const DefaultCooldown = 60 * time.Second

// NewMachine creates an idle machine with the provided cooldown.
// Non-positive cooldowns fall back to DefaultCooldown.
func NewMachine(cooldown time.Duration) *Machine {
	if cooldown <= 0 {
		cooldown = DefaultCooldown
	}

	return &Machine{
		status:   StatusIdle,
		cooldown: cooldown,
	}
}

// Observe feeds one frame's presence signal into the machine and returns
// a non-nil Event only on the idle-to-alerted transition.
//
// Callers pass time.Now() for now; cooldown comparisons then run on the
// monotonic clock reading carried by time.Time, so wall-clock adjustments
// cannot shorten or stretch an episode. A negative elapsed time (possible
// when observations come from a source without monotonic readings) is
// clamped to zero instead of ending the episode early.
func (m *Machine) Observe(present bool, now time.Time) *Event {
	switch m.status {
	case StatusIdle:
		if !present {
			return nil
		}

		m.status = StatusAlerted
		m.lastTrueAt = now
		m.episodeID = uuid.NewString()

		return &Event{
			EpisodeID: m.episodeID,
			RaisedAt:  now,
		}
	case StatusAlerted:
		if present {
			m.lastTrueAt = now

			return nil
		}

		elapsed := now.Sub(m.lastTrueAt)
		if elapsed < 0 {
			elapsed = 0
		}

		if elapsed > m.cooldown {
			m.status = StatusIdle
			m.episodeID = ""
		}

		return nil
	default:
		return nil
	}
}

// Status returns the current machine state.
func (m *Machine) Status() Status {
	return m.status
}

// Cooldown returns the configured grace period.
func (m *Machine) Cooldown() time.Duration {
	return m.cooldown
}
