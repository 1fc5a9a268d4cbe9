package notifier

import "context"

// Request describes one alert notification. It is constructed once per
// raised episode, handed to the dispatcher, and never mutated afterwards.
type Request struct {
	// To is the destination address.
	To string
	// Subject is the message subject line.
	Subject string
	// Body is the plain-text message body.
	Body string
	// EpisodeID ties the notification to the presence episode that raised it.
	EpisodeID string
}

// Sender performs one best-effort delivery attempt.
type Sender interface {
	Send(ctx context.Context, req Request) error
}
