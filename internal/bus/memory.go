// Copyright (c) 2025 ManuGH
// Licensed under the PolyForm Noncommercial License 1.0.0
// Since v2.0.0, this software is restricted to non-commercial use only.

package bus

import (
	"context"
	"sync"
)

// MemoryBus is a process-local fan-out notifier, adapted from the
// teacher's in-memory pub/sub primitive but simplified to the
// signal-only contract spec §6 defines: Publish carries no payload,
// and every currently subscribed observer is woken non-blockingly.
type MemoryBus struct {
	mu   sync.Mutex
	subs map[chan struct{}]struct{}
}

// NewMemoryBus builds an empty MemoryBus.
func NewMemoryBus() *MemoryBus {
	return &MemoryBus{subs: make(map[chan struct{}]struct{})}
}

// Publish wakes every current subscriber. A subscriber whose channel
// is already full (has not drained its last wake-up) is skipped
// rather than blocked, since the signal has no payload to lose.
func (b *MemoryBus) Publish(_ context.Context) {
	b.mu.Lock()
	defer b.mu.Unlock()
	for ch := range b.subs {
		select {
		case ch <- struct{}{}:
		default:
		}
	}
}

// Subscribe registers a new observer channel and returns it plus an
// unsubscribe function.
func (b *MemoryBus) Subscribe(_ context.Context) (<-chan struct{}, func()) {
	ch := make(chan struct{}, 1)
	b.mu.Lock()
	b.subs[ch] = struct{}{}
	b.mu.Unlock()

	unsubscribe := func() {
		b.mu.Lock()
		delete(b.subs, ch)
		b.mu.Unlock()
	}
	return ch, unsubscribe
}

var _ Bus = (*MemoryBus)(nil)
