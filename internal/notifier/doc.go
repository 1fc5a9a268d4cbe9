// Package notifier delivers alert notifications out of band. SMTP is the
// transport; Dispatcher provides the fire-and-forget contract the alerting
// core relies on: asynchronous, never awaited, failures logged and
// swallowed at the task boundary.
package notifier
