package config

import (
	"time"

	"github.com/tkingovr/pipefilter/api"
)

const (
	DefaultNodeID       = "default"
	DefaultListen       = "127.0.0.1:8080"
	DefaultTickInterval = 500 * time.Millisecond
	DefaultDirection    = api.DirectionDown
	DefaultFluidVolume  = 1000
)

// DefaultDataDir returns the default directory for persisted node records.
func DefaultDataDir() string {
	return "~/.pipefilter"
}

// DefaultLogDir returns the default extraction log directory path.
func DefaultLogDir() string {
	return "~/.pipefilter/logs"
}
