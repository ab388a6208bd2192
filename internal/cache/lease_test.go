package cache

import (
	"context"
	"testing"
	"time"
)

func TestKeyJoinsPrefix(t *testing.T) {
	if got := Key("lease", " reaper ", ""); got != redisPrefix+":lease:reaper" {
		t.Fatalf("unexpected key %s", got)
	}
	if got := Key(); got != redisPrefix {
		t.Fatalf("empty key should be the prefix, got %s", got)
	}
}

func TestLeaseWithoutRedisIsAlwaysHeld(t *testing.T) {
	lease := NewLease(nil, "reaper", 0)
	if lease.ttl != time.Minute {
		t.Fatalf("default ttl = %v", lease.ttl)
	}
	ctx := context.Background()
	for i := 0; i < 2; i++ {
		ok, err := lease.Acquire(ctx)
		if err != nil || !ok {
			t.Fatalf("acquire without redis = %v, %v", ok, err)
		}
	}
	if err := lease.Renew(ctx); err != nil {
		t.Fatalf("renew without redis: %v", err)
	}
	if err := lease.Release(ctx); err != nil {
		t.Fatalf("release without redis: %v", err)
	}
}

func TestRedisDisabledByDefault(t *testing.T) {
	if err := InitRedis(nil); err != nil {
		t.Fatalf("init nil config: %v", err)
	}
	if Enabled() || Client() != nil {
		t.Fatalf("redis should be disabled")
	}
	if err := Ping(context.Background()); err != nil {
		t.Fatalf("ping disabled redis: %v", err)
	}
}

func TestInitRedisDisabledLeavesClientNil(t *testing.T) {
	if err := InitRedis(nil); err != nil {
		t.Fatalf("nil config should be a no-op: %v", err)
	}
	if Enabled() || Client() != nil {
		t.Fatalf("redis should stay disabled")
	}
	if err := Ping(context.Background()); err != nil {
		t.Fatalf("ping without redis should succeed: %v", err)
	}
}
