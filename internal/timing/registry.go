package timing

import (
	"sync"

	"github.com/wesleyorama2/tracehttp/internal/diag"
)

// Registry maps correlation keys to the clock of the exchange that owns them.
// The empty key always resolves to the process-wide Default clock.
type Registry struct {
	mu       sync.RWMutex
	clocks   map[string]*Clock
	newClock func() *Clock
}

// NewRegistry returns an empty registry handing out monotonic clocks.
func NewRegistry() *Registry {
	return NewRegistryWithSource(monotonicMillis)
}

// NewRegistryWithSource returns a registry whose clocks read now.
func NewRegistryWithSource(now NowFunc) *Registry {
	return &Registry{
		clocks:   make(map[string]*Clock),
		newClock: func() *Clock { return NewClockWithSource(now) },
	}
}

// Acquire returns a freshly reset clock for key. The empty key resets and
// returns the shared Default clock.
func (r *Registry) Acquire(key string) *Clock {
	if key == "" {
		c := Default()
		c.Reset()
		return c
	}
	c := r.newClock()
	r.mu.Lock()
	r.clocks[key] = c
	r.mu.Unlock()
	return c
}

// Lookup returns the clock for key, or nil once it has been released.
func (r *Registry) Lookup(key string) *Clock {
	if key == "" {
		return Default()
	}
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.clocks[key]
}

// Release forgets key. Events that arrive for it afterwards are dropped.
func (r *Registry) Release(key string) {
	if key == "" {
		return
	}
	r.mu.Lock()
	delete(r.clocks, key)
	r.mu.Unlock()
}

// Len reports how many exchanges currently hold a clock.
func (r *Registry) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.clocks)
}

var (
	defaultRegistry *Registry
	installOnce     sync.Once
)

// Install attaches a classifier for the process-wide registry to the
// process-wide diagnostic stream. Only the first call does anything.
func Install() *Registry {
	installOnce.Do(func() {
		defaultRegistry = NewRegistry()
		diag.Register(NewClassifier(defaultRegistry))
	})
	return defaultRegistry
}
