// Package registry holds the current set of published metrics. Entries
// are owned per source: each commit atomically replaces everything the
// committing source published before, so readers never observe a
// half-refreshed source.
package registry

import (
	"log/slog"
	"sort"
	"sync"

	"github.com/jpetrucciani/epimetheus/internal/flatten"
)

// Registry is a concurrent metric store keyed by metric name.
type Registry struct {
	mu      sync.RWMutex
	entries map[string]entry
	owned   map[string]map[string]struct{} // source id -> owned names
}

type entry struct {
	value  float64
	source string
}

// New creates an empty registry.
func New() *Registry {
	return &Registry{
		entries: make(map[string]entry),
		owned:   make(map[string]map[string]struct{}),
	}
}

// Commit atomically replaces all entries owned by sourceID with pairs.
// Names the source published on an earlier commit but not this one are
// evicted. A name previously owned by a different source is taken over;
// that points at overlapping source configuration, so it is logged, not
// treated as an error.
func (r *Registry) Commit(sourceID string, pairs []flatten.Pair) {
	r.mu.Lock()
	defer r.mu.Unlock()

	next := make(map[string]struct{}, len(pairs))
	for _, p := range pairs {
		if e, ok := r.entries[p.Name]; ok && e.source != sourceID {
			slog.Warn("metric name taken over from another source",
				"metric", p.Name, "previous", e.source, "source", sourceID)
			delete(r.owned[e.source], p.Name)
		}
		r.entries[p.Name] = entry{value: p.Value, source: sourceID}
		next[p.Name] = struct{}{}
	}

	for name := range r.owned[sourceID] {
		if _, keep := next[name]; keep {
			continue
		}
		if e, ok := r.entries[name]; ok && e.source == sourceID {
			delete(r.entries, name)
		}
	}
	r.owned[sourceID] = next
}

// Snapshot returns a consistent point-in-time copy of all entries,
// sorted by name for stable exposition output.
func (r *Registry) Snapshot() []flatten.Pair {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]flatten.Pair, 0, len(r.entries))
	for name, e := range r.entries {
		out = append(out, flatten.Pair{Name: name, Value: e.value})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out
}

// Get returns the current value of one metric.
func (r *Registry) Get(name string) (float64, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	e, ok := r.entries[name]
	return e.value, ok
}

// Len returns the number of published metrics.
func (r *Registry) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.entries)
}
