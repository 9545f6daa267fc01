package registry

import (
	"context"
	"errors"
	"testing"
)

func nop(context.Context, map[string]interface{}) (interface{}, error) { return nil, nil }

// register adds fn under name on an unlocked registry and removes it when the
// test ends, so test order does not matter.
func register(t *testing.T, name string, fn ResolverFunc) {
	t.Helper()
	Unregister(name)
	Register(name, fn)
	t.Cleanup(func() { Unregister(name) })
}

func TestRegistry_Register_Resolve(t *testing.T) {
	register(t, "testEcho", func(ctx context.Context, args map[string]interface{}) (interface{}, error) {
		return map[string]interface{}{"echo": args["value"]}, nil
	})

	got, err := Resolve(context.Background(), "testEcho", map[string]interface{}{"value": "ok"})
	if err != nil {
		t.Fatalf("Resolve: %v", err)
	}
	m, ok := got.(map[string]interface{})
	if !ok || m["echo"] != "ok" {
		t.Errorf("got %v, want map[echo:ok]", got)
	}
}

func TestRegistry_Resolve_NilArgs(t *testing.T) {
	register(t, "nilArgs", func(_ context.Context, args map[string]interface{}) (interface{}, error) {
		if args == nil {
			t.Error("args should never be nil")
		}
		return nil, nil
	})
	if _, err := Resolve(context.Background(), "nilArgs", nil); err != nil {
		t.Fatalf("Resolve: %v", err)
	}
}

func TestRegistry_Resolve_Unknown(t *testing.T) {
	t.Cleanup(func() { Unregister("nonexistent") })
	_, err := Resolve(context.Background(), "nonexistent", nil)
	if !errors.Is(err, ErrUnknownExtension) {
		t.Fatalf("err = %v, want ErrUnknownExtension", err)
	}
}

func TestRegistry_Names_Sorted(t *testing.T) {
	register(t, "zeta", nop)
	register(t, "alpha", nop)

	var seen []string
	for _, n := range Names() {
		if n == "alpha" || n == "zeta" {
			seen = append(seen, n)
		}
	}
	if len(seen) != 2 || seen[0] != "alpha" || seen[1] != "zeta" {
		t.Errorf("Names() order = %v, want [alpha zeta]", seen)
	}
}

func TestRegistry_Names_AfterResolve(t *testing.T) {
	register(t, "served", nop)
	if _, err := Resolve(context.Background(), "served", nil); err != nil {
		t.Fatalf("Resolve: %v", err)
	}
	found := false
	for _, n := range Names() {
		found = found || n == "served"
	}
	if !found {
		t.Error("Names() lost an entry after the registry locked")
	}
}

func TestRegistry_DuplicatePanics(t *testing.T) {
	register(t, "dup", nop)
	defer func() {
		if recover() == nil {
			t.Fatal("want panic on duplicate")
		}
	}()
	Register("dup", nop)
}

func TestRegistry_RegisterAfterResolvePanics(t *testing.T) {
	register(t, "first", nop)
	if _, err := Resolve(context.Background(), "first", nil); err != nil {
		t.Fatalf("Resolve: %v", err)
	}
	t.Cleanup(func() { Unregister("late") })
	defer func() {
		if recover() == nil {
			t.Fatal("want panic registering after the first query")
		}
	}()
	Register("late", nop)
}
