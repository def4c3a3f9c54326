package cache

import (
	"context"
	"strings"
	"testing"
	"time"
)

type keyRequest struct {
	Target float64 `json:"target"`
	Months int     `json:"months"`
}

func TestKey(t *testing.T) {
	a, err := Key("goal", keyRequest{Target: 20000, Months: 36})
	if err != nil {
		t.Fatalf("Key() error = %v", err)
	}
	b, _ := Key("goal", keyRequest{Target: 20000, Months: 36})
	c, _ := Key("goal", keyRequest{Target: 20000, Months: 37})
	d, _ := Key("project", keyRequest{Target: 20000, Months: 36})

	if a != b {
		t.Errorf("identical requests should share a key: %s != %s", a, b)
	}
	if a == c {
		t.Error("different requests should not share a key")
	}
	if a == d || !strings.HasPrefix(d, "project:") {
		t.Errorf("prefix should separate endpoints: %s, %s", a, d)
	}

	if _, err := Key("bad", func() {}); err == nil {
		t.Error("expected error for an unencodable request")
	}
}

func TestMemoryStore(t *testing.T) {
	ctx := context.Background()
	store := NewMemoryStore(time.Minute)

	if _, found, err := store.Get(ctx, "missing"); found || err != nil {
		t.Fatalf("Get(missing) = %v, %v; expected miss", found, err)
	}

	if err := store.Set(ctx, "key", []byte(`{"ok":true}`)); err != nil {
		t.Fatalf("Set() error = %v", err)
	}
	data, found, err := store.Get(ctx, "key")
	if err != nil || !found {
		t.Fatalf("Get(key) = %v, %v; expected hit", found, err)
	}
	if string(data) != `{"ok":true}` {
		t.Errorf("Get(key) = %s", data)
	}
	if store.ItemCount() != 1 {
		t.Errorf("ItemCount() = %d, expected 1", store.ItemCount())
	}
}

func TestMemoryStoreExpiry(t *testing.T) {
	ctx := context.Background()
	store := NewMemoryStore(10 * time.Millisecond)
	if err := store.Set(ctx, "key", []byte("value")); err != nil {
		t.Fatalf("Set() error = %v", err)
	}
	time.Sleep(30 * time.Millisecond)
	if _, found, _ := store.Get(ctx, "key"); found {
		t.Error("expected entry to expire")
	}
}

func TestNop(t *testing.T) {
	var store Store = Nop{}
	if err := store.Set(context.Background(), "key", []byte("value")); err != nil {
		t.Fatalf("Set() error = %v", err)
	}
	if _, found, _ := store.Get(context.Background(), "key"); found {
		t.Error("Nop should never hit")
	}
}

func TestRedisStoreUnavailable(t *testing.T) {
	// Nothing listens on port 1, so every call fails rather than missing.
	store := NewRedisStore("127.0.0.1:1", time.Minute)
	defer func() { _ = store.Close() }()

	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()

	if err := store.Ping(ctx); err == nil {
		t.Fatal("expected ping to fail without a server")
	}
	if _, found, err := store.Get(ctx, "key"); found || err == nil {
		t.Errorf("Get() = %v, %v; expected an error", found, err)
	}
}
