package redis

import (
	"context"
	"testing"
	"time"
)

func TestCacheSetAndGet(t *testing.T) {
	client, mr := newTestRedisClient(t)

	cache := NewCache(client)
	ctx := context.Background()

	if err := cache.Set(ctx, "operation:key:abc", []byte(`{"id":"1"}`), time.Minute); err != nil {
		t.Fatalf("set failed: %v", err)
	}

	val, err := cache.Get(ctx, "operation:key:abc")
	if err != nil {
		t.Fatalf("get failed: %v", err)
	}

	if string(val) != `{"id":"1"}` {
		t.Fatalf("unexpected value %s", val)
	}

	if !mr.Exists(cachePrefix + "operation:key:abc") {
		t.Fatalf("expected key to be namespaced with %q", cachePrefix)
	}
}

func TestCacheMissReturnsNil(t *testing.T) {
	client, _ := newTestRedisClient(t)

	val, err := NewCache(client).Get(context.Background(), "absent")
	if err != nil {
		t.Fatalf("miss should not be an error, got %v", err)
	}
	if val != nil {
		t.Fatalf("expected nil value, got %s", val)
	}
}

func TestCacheExpires(t *testing.T) {
	client, mr := newTestRedisClient(t)

	cache := NewCache(client)
	ctx := context.Background()

	if err := cache.Set(ctx, "short", []byte("v"), time.Second); err != nil {
		t.Fatalf("set failed: %v", err)
	}

	mr.FastForward(2 * time.Second)

	val, err := cache.Get(ctx, "short")
	if err != nil || val != nil {
		t.Fatalf("expected expired key to miss, got val=%s err=%v", val, err)
	}
}

func TestCacheDelete(t *testing.T) {
	client, _ := newTestRedisClient(t)

	cache := NewCache(client)
	ctx := context.Background()

	if err := cache.Set(ctx, "foo", []byte("bar"), time.Minute); err != nil {
		t.Fatalf("set failed: %v", err)
	}

	if err := cache.Delete(ctx, "foo"); err != nil {
		t.Fatalf("delete failed: %v", err)
	}

	if val, err := cache.Get(ctx, "foo"); err != nil || val != nil {
		t.Fatalf("expected deleted key to miss, got val=%s err=%v", val, err)
	}
}

func TestCacheGetErrorWhenServerDown(t *testing.T) {
	client, mr := newTestRedisClient(t)

	mr.Close()

	if _, err := NewCache(client).Get(context.Background(), "foo"); err == nil {
		t.Fatalf("expected error when redis is unavailable")
	}
}
