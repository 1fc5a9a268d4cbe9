// Package config defines surveillance session settings and provides
// helpers to load, validate and save them in YAML format.
//
// The Config type holds the mail transport credentials, the camera
// selection, and the detection/alerting thresholds.
package config
