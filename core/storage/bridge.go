// Package storage persists per-profile storefront state (cart lines,
// favorites) as versioned JSON documents.
package storage

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"reflect"
	"sync"

	"go.uber.org/zap"

	"cafe.GO/core/registry"
)

// Well-known keys.
const (
	KeyCart      = "cartItems"
	KeyFavorites = "favorites"
)

// SchemaVersion tags every document written by Save.
const SchemaVersion = 1

// Migrator converts a legacy unversioned JSON array into the current items
// encoding for one key.
type Migrator func(raw json.RawMessage) (json.RawMessage, error)

var migratorsMu sync.Mutex

// RegisterMigrator installs the legacy migrator for key. Call from init().
func RegisterMigrator(key string, m Migrator) {
	migratorsMu.Lock()
	defer migratorsMu.Unlock()
	if registry.GlobalRegistry.IsLocked(registry.KeyRegistryMigrators) {
		panic("storage: migrators locked (register only during init)")
	}
	list := migrators()
	list[key] = m
	registry.GlobalRegistry.SetGlobal(registry.KeyRegistryMigrators, list)
}

func migrators() map[string]Migrator {
	out := make(map[string]Migrator)
	if v, ok := registry.GlobalRegistry.GetGlobal(registry.KeyRegistryMigrators); ok && v != nil {
		for k, m := range v.(map[string]Migrator) {
			out[k] = m
		}
	}
	return out
}

type envelope struct {
	Version int             `json:"version"`
	Items   json.RawMessage `json:"items"`
}

// Bridge reads and writes lists for a profile. Malformed or unknown
// documents are discarded and read back as empty.
type Bridge struct {
	backend Backend
	logger  *zap.Logger
}

func NewBridge(backend Backend, logger *zap.Logger) *Bridge {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Bridge{backend: backend, logger: logger}
}

func physicalKey(profile, key string) string {
	return profile + ":" + key
}

// Load decodes the list stored under key into dst, a pointer to a slice.
// Absent keys leave dst empty. Only backend failures are returned.
func (b *Bridge) Load(ctx context.Context, profile, key string, dst interface{}) error {
	pk := physicalKey(profile, key)
	raw, err := b.backend.Get(ctx, pk)
	if errors.Is(err, ErrNotFound) {
		resetValue(dst)
		return nil
	}
	if err != nil {
		return fmt.Errorf("storage: load %s: %w", key, err)
	}

	items, legacy, derr := decode(key, raw)
	if derr == nil {
		derr = json.Unmarshal(items, dst)
	}
	if derr != nil {
		b.logger.Warn("discarding unreadable storefront state",
			zap.String("profile", profile), zap.String("key", key), zap.Error(derr))
		resetValue(dst)
		if err := b.backend.Delete(ctx, pk); err != nil {
			return fmt.Errorf("storage: reset %s: %w", key, err)
		}
		return nil
	}
	if legacy {
		if err := b.Save(ctx, profile, key, reflect.ValueOf(dst).Elem().Interface()); err != nil {
			return err
		}
		b.logger.Info("migrated legacy storefront state",
			zap.String("profile", profile), zap.String("key", key))
	}
	return nil
}

func decode(key string, raw []byte) (items json.RawMessage, legacy bool, err error) {
	trimmed := bytes.TrimSpace(raw)
	if len(trimmed) == 0 {
		return nil, false, errors.New("empty document")
	}
	if trimmed[0] == '[' {
		if m, ok := migrators()[key]; ok {
			items, err = m(trimmed)
			return items, true, err
		}
		return trimmed, true, nil
	}
	var env envelope
	if err := json.Unmarshal(trimmed, &env); err != nil {
		return nil, false, err
	}
	if env.Version != SchemaVersion {
		return nil, false, fmt.Errorf("unsupported schema version %d", env.Version)
	}
	if len(env.Items) == 0 || string(env.Items) == "null" {
		return json.RawMessage("[]"), false, nil
	}
	return env.Items, false, nil
}

// Save replaces the list stored under key.
func (b *Bridge) Save(ctx context.Context, profile, key string, list interface{}) error {
	items, err := json.Marshal(list)
	if err != nil {
		return fmt.Errorf("storage: encode %s: %w", key, err)
	}
	if string(items) == "null" {
		items = []byte("[]")
	}
	doc, err := json.Marshal(envelope{Version: SchemaVersion, Items: items})
	if err != nil {
		return fmt.Errorf("storage: encode %s: %w", key, err)
	}
	if err := b.backend.Set(ctx, physicalKey(profile, key), doc); err != nil {
		return fmt.Errorf("storage: save %s: %w", key, err)
	}
	return nil
}

// Remove deletes the entry for key.
func (b *Bridge) Remove(ctx context.Context, profile, key string) error {
	err := b.backend.Delete(ctx, physicalKey(profile, key))
	if err != nil && !errors.Is(err, ErrNotFound) {
		return fmt.Errorf("storage: remove %s: %w", key, err)
	}
	return nil
}

// Raw returns the stored document for key.
func (b *Bridge) Raw(ctx context.Context, profile, key string) ([]byte, error) {
	return b.backend.Get(ctx, physicalKey(profile, key))
}

func resetValue(dst interface{}) {
	rv := reflect.ValueOf(dst)
	if rv.Kind() == reflect.Ptr && !rv.IsNil() {
		rv.Elem().Set(reflect.Zero(rv.Elem().Type()))
	}
}
