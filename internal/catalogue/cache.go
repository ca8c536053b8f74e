// Copyright (c) 2025 ManuGH
// Licensed under the PolyForm Noncommercial License 1.0.0
// Since v2.0.0, this software is restricted to non-commercial use only.

package catalogue

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"time"

	"github.com/dgraph-io/badger/v4"

	"github.com/reservesd/reservesd/internal/log"
	"github.com/reservesd/reservesd/internal/metrics"
	"github.com/reservesd/reservesd/internal/reservation"
)

// CachedClient wraps a Client with a local, TTL'd response cache
// backed by badger, an embedded pure-Go KV store — chosen so an
// appliance deployment needs no external cache server (SPEC_FULL.md §4.F).
type CachedClient struct {
	inner Client
	db    *badger.DB
	ttl   time.Duration
}

// NewCachedClient opens (or creates) a badger database at dir and
// wraps inner with it. ttl bounds how long a cached response may be
// served before a fresh upstream fetch is forced.
func NewCachedClient(inner Client, dir string, ttl time.Duration) (*CachedClient, error) {
	opts := badger.DefaultOptions(dir).WithLogger(nil)
	db, err := badger.Open(opts)
	if err != nil {
		return nil, fmt.Errorf("open catalogue cache: %w", err)
	}
	if ttl <= 0 {
		ttl = 5 * time.Minute
	}
	return &CachedClient{inner: inner, db: db, ttl: ttl}, nil
}

// Close releases the underlying badger database.
func (c *CachedClient) Close() error {
	return c.db.Close()
}

func (c *CachedClient) FindByID(ctx context.Context, id int64, withExtended bool) ([]reservation.Program, error) {
	key := []byte(fmt.Sprintf("id:%d:%t", id, withExtended))
	if cached, ok := c.lookup(key); ok {
		metrics.CatalogueCacheHits.WithLabelValues("findById").Inc()
		return cached, nil
	}
	programs, err := c.inner.FindByID(ctx, id, withExtended)
	if err != nil {
		return nil, err
	}
	c.store(key, programs)
	return programs, nil
}

func (c *CachedClient) FindByRule(ctx context.Context, opt SearchOption) ([]reservation.Program, error) {
	key := ruleCacheKey(opt)
	if cached, ok := c.lookup(key); ok {
		metrics.CatalogueCacheHits.WithLabelValues("findByRule").Inc()
		return cached, nil
	}
	programs, err := c.inner.FindByRule(ctx, opt)
	if err != nil {
		return nil, err
	}
	c.store(key, programs)
	return programs, nil
}

func (c *CachedClient) lookup(key []byte) ([]reservation.Program, bool) {
	var programs []reservation.Program
	err := c.db.View(func(txn *badger.Txn) error {
		item, err := txn.Get(key)
		if err != nil {
			return err
		}
		return item.Value(func(val []byte) error {
			return json.Unmarshal(val, &programs)
		})
	})
	if err != nil {
		return nil, false
	}
	return programs, true
}

func (c *CachedClient) store(key []byte, programs []reservation.Program) {
	data, err := json.Marshal(programs)
	if err != nil {
		log.WithComponent("catalogue").Warn().Err(err).Msg("failed to marshal catalogue response for cache")
		return
	}
	err = c.db.Update(func(txn *badger.Txn) error {
		entry := badger.NewEntry(key, data).WithTTL(c.ttl)
		return txn.SetEntry(entry)
	})
	if err != nil {
		log.WithComponent("catalogue").Warn().Err(err).Msg("failed to store catalogue response in cache")
	}
}

// ruleCacheKey canonicalises a SearchOption into a stable cache key
// so two identical rule queries hit the same cache entry.
func ruleCacheKey(opt SearchOption) []byte {
	data, _ := json.Marshal(opt)
	sum := sha256.Sum256(data)
	return []byte("rule:" + hex.EncodeToString(sum[:]))
}
