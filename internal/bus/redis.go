// Copyright (c) 2025 ManuGH
// Licensed under the PolyForm Noncommercial License 1.0.0
// Since v2.0.0, this software is restricted to non-commercial use only.

package bus

import (
	"context"

	"github.com/redis/go-redis/v9"

	"github.com/reservesd/reservesd/internal/log"
)

// RedisBus notifies observers across process boundaries using Redis
// pub/sub, for deployments where a separate CLI/HTTP front-end
// observes the planner's re-plans (SPEC_FULL.md §4.H).
type RedisBus struct {
	client *redis.Client
}

// NewRedisBus wraps an existing redis client. The caller owns the
// client's lifecycle (creation and Close).
func NewRedisBus(client *redis.Client) *RedisBus {
	return &RedisBus{client: client}
}

// Publish fire-and-forgets a signal on the shared topic; a transient
// Redis error is logged and swallowed, matching spec §6's
// fire-and-forget contract.
func (b *RedisBus) Publish(ctx context.Context) {
	if err := b.client.Publish(ctx, topic, "1").Err(); err != nil {
		log.WithComponent("bus").Warn().Err(err).Msg("failed to publish replan notification")
	}
}

// Subscribe opens a Redis pub/sub subscription and relays messages as
// signals on the returned channel. The unsubscribe function closes
// the underlying subscription.
func (b *RedisBus) Subscribe(ctx context.Context) (<-chan struct{}, func()) {
	sub := b.client.Subscribe(ctx, topic)
	out := make(chan struct{}, 1)

	go func() {
		ch := sub.Channel()
		for range ch {
			select {
			case out <- struct{}{}:
			default:
			}
		}
	}()

	unsubscribe := func() {
		_ = sub.Close()
	}
	return out, unsubscribe
}

var _ Bus = (*RedisBus)(nil)
