// Package notify broadcasts "state changed" signals between live storefront
// instances that share a profile.
package notify

import (
	"context"
	"sync"
)

// Topic names.
const (
	CartUpdated      = "cartUpdated"
	FavoritesUpdated = "favoritesUpdated"
)

// Topic scopes a signal to one profile.
type Topic struct {
	Name    string `json:"name"`
	Profile string `json:"profile"`
}

// Notifier delivers change signals. Handlers run synchronously inside
// Notify for local subscribers.
type Notifier interface {
	Notify(ctx context.Context, topic Topic)
	Subscribe(topic Topic, fn func()) (unsubscribe func())
}

const defaultWatchCapacity = 1

// RouterOption customizes Router construction.
type RouterOption func(*Router)

// RouterWithWatchCapacity overrides the buffered channel size used by Watch.
func RouterWithWatchCapacity(n int) RouterOption {
	return func(r *Router) {
		if n > 0 {
			r.watchCapacity = n
		}
	}
}

// Router is the in-process Notifier.
type Router struct {
	mu            sync.RWMutex
	nextID        uint64
	handlers      map[Topic]map[uint64]func()
	watchCapacity int
}

func NewRouter(opts ...RouterOption) *Router {
	r := &Router{
		handlers:      map[Topic]map[uint64]func(){},
		watchCapacity: defaultWatchCapacity,
	}
	for _, opt := range opts {
		if opt != nil {
			opt(r)
		}
	}
	return r
}

// Subscribe registers fn for topic. The returned func is idempotent.
func (r *Router) Subscribe(topic Topic, fn func()) func() {
	r.mu.Lock()
	r.nextID++
	id := r.nextID
	if r.handlers[topic] == nil {
		r.handlers[topic] = map[uint64]func(){}
	}
	r.handlers[topic][id] = fn
	r.mu.Unlock()

	var once sync.Once
	return func() {
		once.Do(func() { r.remove(topic, id) })
	}
}

func (r *Router) remove(topic Topic, id uint64) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if hs := r.handlers[topic]; hs != nil {
		delete(hs, id)
		if len(hs) == 0 {
			delete(r.handlers, topic)
		}
	}
}

// Notify calls every handler subscribed to topic.
func (r *Router) Notify(_ context.Context, topic Topic) {
	r.deliver(topic)
}

func (r *Router) deliver(topic Topic) {
	r.mu.RLock()
	hs := make([]func(), 0, len(r.handlers[topic]))
	for _, fn := range r.handlers[topic] {
		hs = append(hs, fn)
	}
	r.mu.RUnlock()
	for _, fn := range hs {
		fn()
	}
}

// Subscribers reports how many handlers listen on topic.
func (r *Router) Subscribers(topic Topic) int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.handlers[topic])
}

// Watch returns a channel that receives a value after each signal on topic.
// Signals coalesce when the reader falls behind.
func Watch(n Notifier, topic Topic, capacity int) (<-chan struct{}, func()) {
	if capacity <= 0 {
		capacity = defaultWatchCapacity
		if r, ok := n.(*Router); ok {
			capacity = r.watchCapacity
		}
	}
	ch := make(chan struct{}, capacity)
	unsubscribe := n.Subscribe(topic, func() {
		select {
		case ch <- struct{}{}:
		default:
		}
	})
	return ch, unsubscribe
}
