// Package names resolves route and run ids to display names, fetching each id
// at most once while it is outstanding and serving a placeholder until the
// name arrives.
package names

import (
	"log/slog"
	"sort"
	"sync"

	"github.com/neugierig/proximo/internal/logging"
	"github.com/neugierig/proximo/internal/query"
)

// State is the resolution state of one id.
type State int

const (
	Absent State = iota
	Pending
	Resolved
)

func (s State) String() string {
	switch s {
	case Absent:
		return "absent"
	case Pending:
		return "pending"
	case Resolved:
		return "resolved"
	default:
		return "unknown"
	}
}

// FailurePolicy decides what a failed fetch leaves behind.
type FailurePolicy int

const (
	// RetryOnFailure returns the id to Absent so the next Resolve fetches
	// again.
	RetryOnFailure FailurePolicy = iota
	// KeepPending leaves the id Pending; it is never fetched again and keeps
	// showing the placeholder.
	KeepPending
)

// Options configures a Cache.
type Options struct {
	Logger *slog.Logger
	// OnChange runs on the cache's loop after a name is stored.
	OnChange      func(id, name string)
	FailurePolicy FailurePolicy
}

type entry struct {
	state State
	name  string
}

// Cache maps ids to display names. It is owned by whoever creates it; route
// names and run names use separate instances.
type Cache struct {
	name     string
	runner   *query.Runner
	loop     *query.Loop
	logger   *slog.Logger
	onChange func(id, name string)
	policy   FailurePolicy

	mu      sync.Mutex
	entries map[string]*entry
	version uint64
}

// NewCache returns an empty cache whose fetches run on runner and whose
// results are stored on loop.
func NewCache(name string, runner *query.Runner, loop *query.Loop, opts Options) *Cache {
	return &Cache{
		name:     name,
		runner:   runner,
		loop:     loop,
		logger:   logging.Component(opts.Logger, "name_cache").With(slog.String("cache", name)),
		onChange: opts.OnChange,
		policy:   opts.FailurePolicy,
		entries:  make(map[string]*entry),
	}
}

// Resolve returns the name for id if it is known. Otherwise it returns
// placeholder, and if no fetch for id is outstanding it starts fetch.
func (c *Cache) Resolve(id string, fetch query.Query[string], placeholder string) string {
	c.mu.Lock()
	e, ok := c.entries[id]
	if ok {
		state, name := e.state, e.name
		c.mu.Unlock()
		lookupsTotal.WithLabelValues(c.name, state.String()).Inc()
		if state == Resolved {
			return name
		}
		return placeholder
	}
	c.entries[id] = &entry{state: Pending}
	c.mu.Unlock()

	lookupsTotal.WithLabelValues(c.name, Absent.String()).Inc()
	c.logger.Debug("resolving name", slog.String("id", id))

	query.Start(c.runner, c.loop, fetch, query.Callbacks[string]{
		Result: func(name string) { c.store(id, name) },
		Error:  func(err error) { c.fail(id, err) },
	})
	return placeholder
}

// Seed records a name that is already known so no fetch is issued for id.
func (c *Cache) Seed(id, name string) {
	c.mu.Lock()
	c.entries[id] = &entry{state: Resolved, name: name}
	c.version++
	c.mu.Unlock()
}

// Lookup reports the current name and state of id without fetching.
func (c *Cache) Lookup(id string) (string, State) {
	c.mu.Lock()
	defer c.mu.Unlock()

	e, ok := c.entries[id]
	if !ok {
		return "", Absent
	}
	return e.name, e.state
}

// Len returns the number of ids that are pending or resolved.
func (c *Cache) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.entries)
}

// Entry is one id known to a cache.
type Entry struct {
	ID    string
	Name  string
	State State
}

// Entries returns every pending or resolved id, sorted by id.
func (c *Cache) Entries() []Entry {
	c.mu.Lock()
	entries := make([]Entry, 0, len(c.entries))
	for id, e := range c.entries {
		entries = append(entries, Entry{ID: id, Name: e.name, State: e.state})
	}
	c.mu.Unlock()

	sort.Slice(entries, func(i, j int) bool { return entries[i].ID < entries[j].ID })
	return entries
}

// Version increases every time a name is stored.
func (c *Cache) Version() uint64 {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.version
}

func (c *Cache) store(id, name string) {
	c.mu.Lock()
	c.entries[id] = &entry{state: Resolved, name: name}
	c.version++
	c.mu.Unlock()

	if c.onChange != nil {
		c.onChange(id, name)
	}
}

func (c *Cache) fail(id string, err error) {
	fetchFailuresTotal.WithLabelValues(c.name).Inc()
	logging.LogWarn(c.logger, "name fetch failed", err, slog.String("id", id))

	if c.policy != RetryOnFailure {
		return
	}

	c.mu.Lock()
	if e, ok := c.entries[id]; ok && e.state == Pending {
		delete(c.entries, id)
	}
	c.mu.Unlock()
}
