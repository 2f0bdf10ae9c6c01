package reconciler

import (
	"sort"
	"sync"

	"image-catalog/internal/catalog"
	"image-catalog/internal/health"
	"image-catalog/internal/logging"
	"image-catalog/internal/metrics"
	"image-catalog/internal/scanner"
)

// Binding pairs a cached base path with the scanner that walks it.
type Binding struct {
	Entry   catalog.BasePathEntry
	Scanner *scanner.Scanner
}

// Cache is the in-memory mirror of the registered base paths, rebuilt on
// demand from the persistence layer. The binding slice is replaced
// atomically on refresh, so a pass in progress keeps its own consistent
// snapshot for its whole duration.
type Cache struct {
	db    *catalog.Database
	state *health.ServiceState

	mu       sync.RWMutex
	bindings []Binding
	byID     map[int64]catalog.BasePathEntry
}

// NewCache creates an empty cache. Call Refresh before the first pass.
func NewCache(db *catalog.Database, state *health.ServiceState) *Cache {
	return &Cache{
		db:    db,
		state: state,
		byID:  make(map[int64]catalog.BasePathEntry),
	}
}

// Refresh reloads the base path set from the persistence layer. On read
// failure it returns false and leaves the previous cache untouched. On
// success it replaces the set atomically, sorted by path for deterministic
// processing order, rebuilds one scanner per base path, and clears any
// database degradation (a successful read proves the store is usable).
func (c *Cache) Refresh() bool {
	logging.Info("Caching base paths from database...")

	paths, err := c.db.GetBasePaths()
	if err != nil {
		logging.Error("Base path cache refresh failed: %v", err)
		return false
	}

	sort.Slice(paths, func(i, j int) bool { return paths[i].Path < paths[j].Path })

	bindings := make([]Binding, 0, len(paths))
	byID := make(map[int64]catalog.BasePathEntry, len(paths))
	for _, entry := range paths {
		bindings = append(bindings, Binding{
			Entry:   entry,
			Scanner: scanner.New(entry.Path),
		})
		byID[entry.ID] = entry
	}

	c.mu.Lock()
	c.bindings = bindings
	c.byID = byID
	c.mu.Unlock()

	c.state.SetDatabaseHealth(health.Healthy, "")
	metrics.DBDegraded.Set(float64(health.Healthy))

	logging.Info("Base path entries cached: %d", len(bindings))
	return true
}

// Snapshot returns the current bindings. The returned slice is never
// mutated after publication; callers may iterate it without locking.
func (c *Cache) Snapshot() []Binding {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.bindings
}

// BasePath looks up a cached base path by id.
func (c *Cache) BasePath(id int64) (catalog.BasePathEntry, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	entry, ok := c.byID[id]
	return entry, ok
}
