// Package watcher orchestrates one surveillance session: it enumerates
// and selects a camera, opens the frame source, and drives the sequential
// frame loop that feeds detections through the presence classifier into
// the alerting state machine, dispatching one notification per raised
// presence episode.
package watcher
