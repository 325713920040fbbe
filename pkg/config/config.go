package config

import "time"

// Config is the backend configuration.
type Config interface {
	ListenAddress() string
	HistoryDir() string
	HistoryMaxAge() time.Duration
	HistoryPruneSchedule() string
	MaxUploadBytes() int64

	SetListenAddress(string)

	// Load reads the configuration from the source.
	Load() error
	// Save saves the configuration to the source.
	Save() error

	LogrusFields() map[string]interface{}
}
