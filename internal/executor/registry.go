package executor

import (
	"sort"
	"sync"

	"github.com/alanmaizon/qalam/internal/domain"
)

// DefaultRegistryCapacity bounds how many session executors are kept.
const DefaultRegistryCapacity = 1024

type registryKey struct {
	session string
	surface domain.Surface
}

type registryEntry struct {
	executor *Executor
	lastUsed uint64
}

// Registry hands out one Executor per session and surface, so independent
// clients never share a busy flag. Once capacity is reached the least
// recently used idle executors are dropped; busy ones are always kept.
type Registry struct {
	opts     Options
	capacity int

	mu      sync.Mutex
	clock   uint64
	entries map[registryKey]*registryEntry
}

func NewRegistry(opts Options) *Registry {
	return NewBoundedRegistry(opts, DefaultRegistryCapacity)
}

func NewBoundedRegistry(opts Options, capacity int) *Registry {
	if capacity <= 0 {
		capacity = DefaultRegistryCapacity
	}
	return &Registry{opts: opts, capacity: capacity, entries: make(map[registryKey]*registryEntry)}
}

func (r *Registry) Get(session string, surface domain.Surface) *Executor {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.clock++
	key := registryKey{session: session, surface: surface}
	if entry, ok := r.entries[key]; ok {
		entry.lastUsed = r.clock
		return entry.executor
	}

	if len(r.entries) >= r.capacity {
		r.evictIdle(len(r.entries) - r.capacity + 1)
	}
	entry := &registryEntry{executor: New(surface, r.opts), lastUsed: r.clock}
	r.entries[key] = entry
	return entry.executor
}

// evictIdle removes up to n idle executors, oldest first.
func (r *Registry) evictIdle(n int) {
	idle := make([]registryKey, 0, len(r.entries))
	for key, entry := range r.entries {
		if !entry.executor.State().Busy {
			idle = append(idle, key)
		}
	}
	sort.Slice(idle, func(i, j int) bool {
		return r.entries[idle[i]].lastUsed < r.entries[idle[j]].lastUsed
	})
	for _, key := range idle[:min(n, len(idle))] {
		delete(r.entries, key)
	}
}

// Len reports how many executors exist.
func (r *Registry) Len() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.entries)
}
