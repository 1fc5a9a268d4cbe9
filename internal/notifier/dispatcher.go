package notifier

import (
	"context"
	"sync"

	"github.com/anbu-systems/anbu-watch/internal/logger"
)

// Dispatcher spawns one goroutine per notification and isolates every
// delivery failure at that goroutine's boundary. The frame loop never
// blocks on notification I/O and never sees a transport error.
type Dispatcher struct {
	// sender performs the actual delivery.
	sender Sender
	// inflight tracks spawned deliveries so Wait can drain them.
	inflight sync.WaitGroup
}

// NewDispatcher wraps the provided sender.
func NewDispatcher(sender Sender) *Dispatcher {
	return &Dispatcher{
		sender: sender,
	}
}

// Dispatch fires one asynchronous delivery and returns immediately.
// Cancelling ctx after Dispatch returns does not abort the delivery:
// a notification that is already in flight completes or fails on its own.
// Failures are logged and discarded; there are no retries here.
func (d *Dispatcher) Dispatch(ctx context.Context, req Request) {
	// Detach from the session's cancellation while keeping its values,
	// so stop() does not kill in-flight notifications.
	sendCtx := context.WithoutCancel(ctx)

	d.inflight.Add(1)

	go func() {
		defer d.inflight.Done()

		if err := d.sender.Send(sendCtx, req); err != nil {
			logger.ErrorKV(sendCtx, "Notification dispatch failed",
				"episode_id", req.EpisodeID, "error", err)

			return
		}

		logger.InfoKV(sendCtx, "Notification sent",
			"episode_id", req.EpisodeID, "destination", req.To)
	}()
}

// Wait blocks until all dispatched deliveries have finished. Used by
// tests and by the session teardown after the frame loop has exited.
func (d *Dispatcher) Wait() {
	d.inflight.Wait()
}
