package storage

import (
	"context"
	"encoding/json"
	"errors"
	"testing"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

type line struct {
	ID       string `json:"id"`
	Quantity int    `json:"quantity"`
}

func TestBridge_LoadAbsent(t *testing.T) {
	b := NewBridge(NewMemory(), zap.NewNop())
	lines := []line{{ID: "stale"}}
	if err := b.Load(context.Background(), "p1", KeyCart, &lines); err != nil {
		t.Fatalf("Load: %v", err)
	}
	if len(lines) != 0 {
		t.Errorf("Load absent = %v, want empty", lines)
	}
}

func TestBridge_SaveLoadRoundTrip(t *testing.T) {
	ctx := context.Background()
	mem := NewMemory()
	b := NewBridge(mem, zap.NewNop())
	in := []line{{ID: "a", Quantity: 2}, {ID: "b", Quantity: 1}}
	if err := b.Save(ctx, "p1", KeyCart, in); err != nil {
		t.Fatalf("Save: %v", err)
	}
	first, _ := mem.Get(ctx, "p1:cartItems")

	var out []line
	if err := b.Load(ctx, "p1", KeyCart, &out); err != nil {
		t.Fatalf("Load: %v", err)
	}
	if len(out) != 2 || out[0].ID != "a" || out[1].Quantity != 1 {
		t.Fatalf("Load = %v", out)
	}
	if err := b.Save(ctx, "p1", KeyCart, out); err != nil {
		t.Fatalf("Save: %v", err)
	}
	second, _ := mem.Get(ctx, "p1:cartItems")
	if string(first) != string(second) {
		t.Errorf("round trip changed document:\n%s\n%s", first, second)
	}

	var env envelope
	if err := json.Unmarshal(second, &env); err != nil || env.Version != SchemaVersion {
		t.Errorf("document = %s, want version %d", second, SchemaVersion)
	}
}

func TestBridge_SaveNilWritesEmptyList(t *testing.T) {
	ctx := context.Background()
	mem := NewMemory()
	b := NewBridge(mem, zap.NewNop())
	var none []line
	if err := b.Save(ctx, "p1", KeyFavorites, none); err != nil {
		t.Fatalf("Save: %v", err)
	}
	raw, _ := mem.Get(ctx, "p1:favorites")
	if string(raw) != `{"version":1,"items":[]}` {
		t.Errorf("document = %s", raw)
	}
}

func TestBridge_CorruptResets(t *testing.T) {
	ctx := context.Background()
	for name, doc := range map[string]string{
		"malformed":      `{"version":1,"items":[{"id":`,
		"not json":       `hello`,
		"future version": `{"version":99,"items":[{"id":"a","quantity":1}]}`,
		"wrong shape":    `{"version":1,"items":{"id":"a"}}`,
		"blank":          `   `,
	} {
		t.Run(name, func(t *testing.T) {
			mem := NewMemory()
			_ = mem.Set(ctx, "p1:cartItems", []byte(doc))
			b := NewBridge(mem, zap.NewNop())
			out := []line{{ID: "x"}}
			if err := b.Load(ctx, "p1", KeyCart, &out); err != nil {
				t.Fatalf("Load: %v", err)
			}
			if len(out) != 0 {
				t.Errorf("Load = %v, want empty", out)
			}
			if _, err := mem.Get(ctx, "p1:cartItems"); !errors.Is(err, ErrNotFound) {
				t.Error("corrupt entry was not cleared")
			}
		})
	}
}

func TestBridge_LegacyArrayMigrated(t *testing.T) {
	ctx := context.Background()
	mem := NewMemory()
	_ = mem.Set(ctx, "p1:legacyKey", []byte(`[{"id":"a","quantity":3}]`))
	b := NewBridge(mem, zap.NewNop())
	var out []line
	if err := b.Load(ctx, "p1", "legacyKey", &out); err != nil {
		t.Fatalf("Load: %v", err)
	}
	if len(out) != 1 || out[0].Quantity != 3 {
		t.Fatalf("Load = %v", out)
	}
	raw, _ := mem.Get(ctx, "p1:legacyKey")
	if string(raw) != `{"version":1,"items":[{"id":"a","quantity":3}]}` {
		t.Errorf("legacy document not rewritten: %s", raw)
	}
}

func TestBridge_LegacyMigratorApplied(t *testing.T) {
	ctx := context.Background()
	RegisterMigrator("doubled", func(raw json.RawMessage) (json.RawMessage, error) {
		var in []line
		if err := json.Unmarshal(raw, &in); err != nil {
			return nil, err
		}
		for i := range in {
			in[i].Quantity *= 2
		}
		return json.Marshal(in)
	})
	mem := NewMemory()
	_ = mem.Set(ctx, "p1:doubled", []byte(`[{"id":"a","quantity":2}]`))
	var out []line
	if err := NewBridge(mem, nil).Load(ctx, "p1", "doubled", &out); err != nil {
		t.Fatalf("Load: %v", err)
	}
	if len(out) != 1 || out[0].Quantity != 4 {
		t.Errorf("Load = %v, want quantity 4", out)
	}
}

func TestBridge_ProfilesIsolated(t *testing.T) {
	ctx := context.Background()
	b := NewBridge(NewMemory(), zap.NewNop())
	_ = b.Save(ctx, "p1", KeyCart, []line{{ID: "a", Quantity: 1}})
	var out []line
	_ = b.Load(ctx, "p2", KeyCart, &out)
	if len(out) != 0 {
		t.Errorf("profile p2 sees p1 data: %v", out)
	}
}

func TestBridge_Remove(t *testing.T) {
	ctx := context.Background()
	b := NewBridge(NewMemory(), zap.NewNop())
	_ = b.Save(ctx, "p1", KeyCart, []line{{ID: "a", Quantity: 1}})
	if err := b.Remove(ctx, "p1", KeyCart); err != nil {
		t.Fatalf("Remove: %v", err)
	}
	if _, err := b.Raw(ctx, "p1", KeyCart); !errors.Is(err, ErrNotFound) {
		t.Errorf("Raw after Remove err = %v, want ErrNotFound", err)
	}
	if err := b.Remove(ctx, "p1", KeyCart); err != nil {
		t.Errorf("Remove absent: %v", err)
	}
}

type failingBackend struct{ Memory }

func (f *failingBackend) Get(context.Context, string) ([]byte, error) {
	return nil, errors.New("disk gone")
}

func TestBridge_BackendErrorSurfaces(t *testing.T) {
	b := NewBridge(&failingBackend{}, zap.NewNop())
	var out []line
	if err := b.Load(context.Background(), "p1", KeyCart, &out); err == nil {
		t.Error("Load with failing backend: want error")
	}
}

func TestRedisBackend(t *testing.T) {
	ctx := context.Background()
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	defer client.Close()

	backend := NewRedis(client, "cafe:storefront:")
	if _, err := backend.Get(ctx, "p1:cartItems"); !errors.Is(err, ErrNotFound) {
		t.Fatalf("Get absent err = %v, want ErrNotFound", err)
	}

	b := NewBridge(backend, zap.NewNop())
	if err := b.Save(ctx, "p1", KeyCart, []line{{ID: "a", Quantity: 5}}); err != nil {
		t.Fatalf("Save: %v", err)
	}
	got, err := mr.Get("cafe:storefront:p1:cartItems")
	if err != nil {
		t.Fatalf("miniredis Get: %v", err)
	}
	if got != `{"version":1,"items":[{"id":"a","quantity":5}]}` {
		t.Errorf("stored = %s", got)
	}
	if ttl := mr.TTL("cafe:storefront:p1:cartItems"); ttl != 0 {
		t.Errorf("TTL = %v, want none", ttl)
	}

	var out []line
	if err := b.Load(ctx, "p1", KeyCart, &out); err != nil || len(out) != 1 {
		t.Fatalf("Load = %v, %v", out, err)
	}
	if err := b.Remove(ctx, "p1", KeyCart); err != nil {
		t.Fatalf("Remove: %v", err)
	}
	if mr.Exists("cafe:storefront:p1:cartItems") {
		t.Error("key still present after Remove")
	}
}
