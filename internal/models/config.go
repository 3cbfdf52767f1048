// Package models contains the data structures used throughout redistribution-client-checker.
package models

import "time"

// CheckerConfig holds the complete configuration for a checker run.
type CheckerConfig struct {
	Panorama PanoramaConfig
	Ping     *PingConfig // nil if not configured
}

// PanoramaConfig holds connection settings for the Panorama appliance.
// The same credentials drive both the SSH CLI session and the XML API.
type PanoramaConfig struct {
	Hostname string
	Username string
	Password string
	Port     int           // SSH port
	Timeout  time.Duration // dial timeout, also bounds each prompt read
}

// PingConfig holds the optional reachability probe settings.
type PingConfig struct {
	Count   int
	Timeout time.Duration
}
