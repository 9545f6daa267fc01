package registry

import "sync"

// Registry is a thread-safe key/value store whose keys can be locked once
// init-time registration is over.
type Registry struct {
	mu     sync.RWMutex
	values map[string]interface{}
	locked map[string]bool
}

// GlobalRegistry holds process-wide extension lists (routes, commands, jobs).
var GlobalRegistry = NewRegistry()

func NewRegistry() *Registry {
	return &Registry{
		values: make(map[string]interface{}),
		locked: make(map[string]bool),
	}
}

// SetGlobal stores v under key. Writes to a locked key are ignored.
func (r *Registry) SetGlobal(key string, v interface{}) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.locked[key] {
		return
	}
	r.values[key] = v
}

func (r *Registry) GetGlobal(key string) (interface{}, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	v, ok := r.values[key]
	return v, ok
}

// Lock freezes key. Registration helpers panic on locked keys.
func (r *Registry) Lock(key string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.locked[key] = true
}

func (r *Registry) IsLocked(key string) bool {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.locked[key]
}

// UnlockForTesting reopens a locked key.
func (r *Registry) UnlockForTesting(key string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.locked, key)
}
