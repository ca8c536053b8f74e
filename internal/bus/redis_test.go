// Copyright (c) 2025 ManuGH
// Licensed under the PolyForm Noncommercial License 1.0.0

package bus

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
)

func newTestRedisBus(t *testing.T) (*RedisBus, func()) {
	t.Helper()
	mr, err := miniredis.Run()
	if err != nil {
		t.Fatalf("start miniredis: %v", err)
	}
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	return NewRedisBus(client), func() {
		_ = client.Close()
		mr.Close()
	}
}

func TestRedisBusPublishSubscribe(t *testing.T) {
	b, cleanup := newTestRedisBus(t)
	defer cleanup()

	ctx := context.Background()
	ch, unsubscribe := b.Subscribe(ctx)
	defer unsubscribe()

	// Give the subscription a moment to register with miniredis.
	time.Sleep(50 * time.Millisecond)
	b.Publish(ctx)

	select {
	case <-ch:
	case <-time.After(time.Second):
		t.Fatalf("expected subscriber to receive notification")
	}
}
