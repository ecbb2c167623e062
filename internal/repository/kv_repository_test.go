package repository

import (
	"context"
	"testing"
	"time"
)

func TestMemoryKVStoreBasics(t *testing.T) {
	kv := NewMemoryKVStore()
	ctx := context.Background()

	if _, err := kv.Get(ctx, "missing"); err != ErrKeyNotFound {
		t.Errorf("missing key: got %v, want ErrKeyNotFound", err)
	}

	kv.Set(ctx, "k", "v1", 0)
	if val, err := kv.Get(ctx, "k"); err != nil || val != "v1" {
		t.Errorf("get after set: %q, %v", val, err)
	}

	kv.Set(ctx, "k", "v2", 0)
	if val, _ := kv.Get(ctx, "k"); val != "v2" {
		t.Errorf("overwrite: got %q, want v2", val)
	}

	kv.Del(ctx, "k")
	if _, err := kv.Get(ctx, "k"); err != ErrKeyNotFound {
		t.Errorf("get after del: got %v, want ErrKeyNotFound", err)
	}
}

func TestMemoryKVStoreTTL(t *testing.T) {
	kv := NewMemoryKVStore()
	ctx := context.Background()

	now := time.Date(2025, 3, 10, 9, 0, 0, 0, time.UTC)
	kv.Now = func() time.Time { return now }

	kv.Set(ctx, "short", "v", time.Hour)
	kv.Set(ctx, "forever", "v", 0)

	now = now.Add(30 * time.Minute)
	if _, err := kv.Get(ctx, "short"); err != nil {
		t.Errorf("key should still be alive: %v", err)
	}

	now = now.Add(time.Hour)
	if _, err := kv.Get(ctx, "short"); err != ErrKeyNotFound {
		t.Errorf("expired key: got %v, want ErrKeyNotFound", err)
	}
	if _, err := kv.Get(ctx, "forever"); err != nil {
		t.Errorf("zero ttl means no expiry: %v", err)
	}

	// 过期条目在读取时被清掉
	if kv.Len() != 1 {
		t.Errorf("expired entry should be dropped, %d entries left", kv.Len())
	}
}

func TestMemoryKVStoreDelMultiple(t *testing.T) {
	kv := NewMemoryKVStore()
	ctx := context.Background()

	kv.Set(ctx, "a", "1", 0)
	kv.Set(ctx, "b", "2", 0)
	kv.Set(ctx, "c", "3", 0)

	if err := kv.Del(ctx, "a", "b", "nope"); err != nil {
		t.Fatalf("del: %v", err)
	}
	if kv.Len() != 1 {
		t.Errorf("got %d entries, want 1", kv.Len())
	}
	if err := kv.Del(ctx); err != nil {
		t.Errorf("empty del should be a no-op: %v", err)
	}
}
