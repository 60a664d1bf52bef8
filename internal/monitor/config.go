package monitor

import "time"

const (
	DefaultInterval     = 30 * time.Second
	DefaultFetchTimeout = 15 * time.Second
)

// Config names the stop to watch. RouteID is optional.
type Config struct {
	StopID       string
	RouteID      string
	Interval     time.Duration
	FetchTimeout time.Duration
}

func (config Config) Enabled() bool {
	return config.StopID != ""
}

func (config Config) withDefaults() Config {
	if config.Interval <= 0 {
		config.Interval = DefaultInterval
	}
	if config.FetchTimeout <= 0 {
		config.FetchTimeout = DefaultFetchTimeout
	}
	return config
}
