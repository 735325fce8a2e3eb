package cache

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
)

type snapshot struct {
	PropertyID string `json:"property_id"`
	Available  int    `json:"available"`
}

func newTestCache(t *testing.T, ttl time.Duration) (*Cache, *miniredis.Miniredis) {
	t.Helper()
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { client.Close() })
	return New(client, ttl), mr
}

func TestGetSetRoundTrip(t *testing.T) {
	c, _ := newTestCache(t, time.Minute)
	ctx := context.Background()
	key := AvailabilityKey("507f191e810c19729de860ea", "double")

	var miss snapshot
	hit, err := c.Get(ctx, key, &miss)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if hit {
		t.Fatalf("expected a miss on an empty cache")
	}

	want := snapshot{PropertyID: "507f191e810c19729de860ea", Available: 3}
	if err := c.Set(ctx, key, want); err != nil {
		t.Fatalf("set failed: %v", err)
	}

	var got snapshot
	hit, err = c.Get(ctx, key, &got)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !hit {
		t.Fatalf("expected a hit after set")
	}
	if got != want {
		t.Errorf("expected %+v, got %+v", want, got)
	}
}

func TestEntriesExpire(t *testing.T) {
	c, mr := newTestCache(t, 30*time.Second)
	ctx := context.Background()
	key := AvailabilityKey("507f191e810c19729de860ea", "single")

	if err := c.Set(ctx, key, snapshot{Available: 1}); err != nil {
		t.Fatalf("set failed: %v", err)
	}

	mr.FastForward(31 * time.Second)

	var got snapshot
	hit, err := c.Get(ctx, key, &got)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if hit {
		t.Errorf("expected entry to have expired")
	}
}

func TestDelInvalidates(t *testing.T) {
	c, _ := newTestCache(t, time.Minute)
	ctx := context.Background()

	keys := []string{
		AvailabilityKey("507f191e810c19729de860ea", "single"),
		AvailabilityKey("507f191e810c19729de860ea", "double"),
	}
	for _, key := range keys {
		if err := c.Set(ctx, key, snapshot{Available: 2}); err != nil {
			t.Fatalf("set failed: %v", err)
		}
	}

	if err := c.Del(ctx, keys...); err != nil {
		t.Fatalf("del failed: %v", err)
	}

	for _, key := range keys {
		var got snapshot
		hit, err := c.Get(ctx, key, &got)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if hit {
			t.Errorf("expected %s to be gone", key)
		}
	}
}

func TestDelWithNoKeysIsNoOp(t *testing.T) {
	c, _ := newTestCache(t, time.Minute)
	if err := c.Del(context.Background()); err != nil {
		t.Errorf("unexpected error: %v", err)
	}
}
