// Package appconf holds the process configuration assembled from flags.
package appconf

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/neugierig/proximo/internal/proximo"
)

type Environment int

const (
	Development Environment = iota
	Test
	Production
)

func (e Environment) String() string {
	switch e {
	case Test:
		return "test"
	case Production:
		return "production"
	default:
		return "development"
	}
}

// EnvFlagToEnvironment maps the -env flag onto an Environment. Unknown values
// are treated as development.
func EnvFlagToEnvironment(env string) Environment {
	switch strings.ToLower(strings.TrimSpace(env)) {
	case "test":
		return Test
	case "production", "prod":
		return Production
	default:
		return Development
	}
}

const DefaultBaseURL = "http://proximobus.appspot.com/agencies/sf-muni/"

type Config struct {
	Port              int
	Env               Environment
	BaseURL           string
	HTTPTimeout       time.Duration
	QueryTimeout      time.Duration
	RequestsPerSecond float64
	RateLimit         int // per client per second; zero disables
	FavoritesDBPath   string
	LogLevel          string

	MonitorStopID   string
	MonitorRouteID  string
	MonitorInterval time.Duration
}

// Validate reports the first invalid setting. A bad base URL is returned as a
// *proximo.ConfigError.
func (c Config) Validate() error {
	if c.Port < 1 || c.Port > 65535 {
		return fmt.Errorf("port %d out of range", c.Port)
	}
	if _, err := proximo.ParseBaseURL(c.BaseURL); err != nil {
		return err
	}
	if c.HTTPTimeout < 0 {
		return errors.New("http timeout must not be negative")
	}
	if c.QueryTimeout < 0 {
		return errors.New("query timeout must not be negative")
	}
	if c.RequestsPerSecond < 0 {
		return errors.New("requests per second must not be negative")
	}
	if c.RateLimit < 0 {
		return errors.New("rate limit must not be negative")
	}
	if c.FavoritesDBPath == "" {
		return errors.New("favorites database path must not be empty")
	}
	if c.Env == Test && c.FavoritesDBPath != ":memory:" {
		return fmt.Errorf("test environment requires an in-memory favorites database, got %q", c.FavoritesDBPath)
	}
	if c.MonitorRouteID != "" && c.MonitorStopID == "" {
		return errors.New("monitor route requires a monitor stop")
	}
	if c.MonitorInterval < 0 {
		return errors.New("monitor interval must not be negative")
	}
	return nil
}
