// Package registry holds the named resolvers served by the _extension query.
package registry

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"sync"
	"sync/atomic"

	"cafe.GO/core/registry"
)

// ResolverFunc resolves one extension. Args is the JSON-decoded args string.
type ResolverFunc func(ctx context.Context, args map[string]interface{}) (interface{}, error)

// ErrUnknownExtension is returned by Resolve for unregistered names.
var ErrUnknownExtension = errors.New("unknown extension")

var (
	mu     sync.Mutex
	locked int32
)

func entries() map[string]ResolverFunc {
	if v, ok := registry.GlobalRegistry.GetGlobal(registry.KeyRegistryGraphQL); ok && v != nil {
		return v.(map[string]ResolverFunc)
	}
	return make(map[string]ResolverFunc)
}

// Register adds a resolver from init(). Names are unique; panics once the
// first query has been served.
func Register(name string, resolve ResolverFunc) {
	mu.Lock()
	defer mu.Unlock()
	if registry.GlobalRegistry.IsLocked(registry.KeyRegistryGraphQL) {
		panic("graphql/registry: locked (register only during init before first request)")
	}
	m := entries()
	if _, ok := m[name]; ok {
		panic("graphql/registry: duplicate " + name)
	}
	m[name] = resolve
	registry.GlobalRegistry.SetGlobal(registry.KeyRegistryGraphQL, m)
}

// Unregister removes a registration. Tests only.
func Unregister(name string) {
	mu.Lock()
	defer mu.Unlock()
	registry.GlobalRegistry.UnlockForTesting(registry.KeyRegistryGraphQL)
	atomic.StoreInt32(&locked, 0)
	m := entries()
	delete(m, name)
	registry.GlobalRegistry.SetGlobal(registry.KeyRegistryGraphQL, m)
}

// Resolve calls the named resolver. The first call locks the registry.
func Resolve(ctx context.Context, name string, args map[string]interface{}) (interface{}, error) {
	if atomic.CompareAndSwapInt32(&locked, 0, 1) {
		registry.GlobalRegistry.Lock(registry.KeyRegistryGraphQL)
	}
	resolve, ok := entries()[name]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrUnknownExtension, name)
	}
	if args == nil {
		args = map[string]interface{}{}
	}
	return resolve(ctx, args)
}

// Names returns the registered names, sorted.
func Names() []string {
	mu.Lock()
	defer mu.Unlock()
	m := entries()
	names := make([]string, 0, len(m))
	for n := range m {
		names = append(names, n)
	}
	sort.Strings(names)
	return names
}
