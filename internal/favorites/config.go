package favorites

import "github.com/neugierig/proximo/internal/appconf"

// Config holds configuration options for the Store
type Config struct {
	DBPath string // Path to SQLite database file, or ":memory:"
	Env    appconf.Environment
}
