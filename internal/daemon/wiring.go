// Copyright (c) 2025 ManuGH
// Licensed under the PolyForm Noncommercial License 1.0.0
// Since v2.0.0, this software is restricted to non-commercial use only.

package daemon

import (
	"context"
	"fmt"

	"github.com/redis/go-redis/v9"

	"github.com/reservesd/reservesd/internal/bus"
	"github.com/reservesd/reservesd/internal/catalogue"
	"github.com/reservesd/reservesd/internal/config"
	"github.com/reservesd/reservesd/internal/planner"
	"github.com/reservesd/reservesd/internal/reservation"
	"github.com/reservesd/reservesd/internal/rulestore"
	"github.com/reservesd/reservesd/internal/store"
	"github.com/reservesd/reservesd/internal/tuner"
)

// toDescriptors converts the YAML tuner inventory into the tuner
// package's runtime Descriptor shape.
func toDescriptors(cfg config.Config) []tuner.Descriptor {
	descriptors := make([]tuner.Descriptor, 0, len(cfg.Tuners))
	for _, t := range cfg.Tuners {
		types := make([]reservation.ChannelType, 0, len(t.Types))
		for _, s := range t.Types {
			types = append(types, reservation.ChannelType(s))
		}
		descriptors = append(descriptors, tuner.Descriptor{Index: t.Index, Types: types})
	}
	return descriptors
}

// NewCatalogueClient selects the HTTP (optionally badger-cached) or
// in-memory catalogue client per configuration (SPEC_FULL.md §4.F).
func NewCatalogueClient(cfg config.Config) (catalogue.Client, func() error, error) {
	if cfg.CatalogueBaseURL == "" {
		return catalogue.NewMemoryClient(), func() error { return nil }, nil
	}

	httpClient := catalogue.NewHTTPClient(cfg.CatalogueBaseURL, 5)
	var client catalogue.Client = httpClient
	closeFn := func() error { return nil }

	if cfg.CatalogueCacheDir != "" {
		cached, err := catalogue.NewCachedClient(httpClient, cfg.CatalogueCacheDir, cfg.CatalogueCacheTTL)
		if err != nil {
			return nil, nil, fmt.Errorf("daemon: open catalogue cache: %w", err)
		}
		client = cached
		closeFn = cached.Close
	}
	return client, closeFn, nil
}

// NewRuleStore selects the SQLite-backed or in-memory rule store per
// configuration (SPEC_FULL.md §4.G).
func NewRuleStore(cfg config.Config) (rulestore.RuleStore, func() error, error) {
	if cfg.RuleStorePath == "" {
		return rulestore.NewMemoryStore(), func() error { return nil }, nil
	}
	store, err := rulestore.Open(cfg.RuleStorePath, rulestore.DefaultConfig())
	if err != nil {
		return nil, nil, fmt.Errorf("daemon: open rule store: %w", err)
	}
	return store, store.Close, nil
}

// NewBus selects the Redis-backed or in-process IPC bus per
// configuration (SPEC_FULL.md §4.H).
func NewBus(cfg config.Config) (bus.Bus, func() error, error) {
	if cfg.RedisAddr == "" {
		return bus.NewMemoryBus(), func() error { return nil }, nil
	}
	client := redis.NewClient(&redis.Options{Addr: cfg.RedisAddr})
	if err := client.Ping(context.Background()).Err(); err != nil {
		return nil, nil, fmt.Errorf("daemon: connect to redis at %s: %w", cfg.RedisAddr, err)
	}
	return bus.NewRedisBus(client), client.Close, nil
}

// Collaborators bundles every planner dependency built from Config, so
// main can assemble and tear them down as one unit.
type Collaborators struct {
	Catalogue catalogue.Client
	RuleStore rulestore.RuleStore
	Bus       bus.Bus
	Tuners    *tuner.Inventory
	Store     *store.Store

	closers []func() error
}

// NewCollaborators builds every out-of-process-adjacent dependency the
// Planner needs, per the backend selected by cfg.
func NewCollaborators(cfg config.Config) (*Collaborators, error) {
	c := &Collaborators{}

	catalogueClient, closeCatalogue, err := NewCatalogueClient(cfg)
	if err != nil {
		return nil, err
	}
	c.Catalogue = catalogueClient
	c.closers = append(c.closers, closeCatalogue)

	ruleStore, closeRuleStore, err := NewRuleStore(cfg)
	if err != nil {
		c.Close()
		return nil, err
	}
	c.RuleStore = ruleStore
	c.closers = append(c.closers, closeRuleStore)

	notifier, closeBus, err := NewBus(cfg)
	if err != nil {
		c.Close()
		return nil, err
	}
	c.Bus = notifier
	c.closers = append(c.closers, closeBus)

	c.Tuners = tuner.NewInventory()
	c.Tuners.Set(toDescriptors(cfg))

	c.Store = store.New(cfg.ReservesPath)

	return c, nil
}

// Close releases every collaborator in reverse construction order,
// returning the first error encountered (best-effort: all are attempted).
func (c *Collaborators) Close() error {
	var firstErr error
	for i := len(c.closers) - 1; i >= 0; i-- {
		if err := c.closers[i](); err != nil && firstErr == nil {
			firstErr = err
		}
	}
	return firstErr
}

// NewPlanner builds and loads a Planner from its collaborators.
func NewPlanner(c *Collaborators) (*planner.Planner, error) {
	p := planner.New(c.Catalogue, c.RuleStore, c.Store, c.Tuners, c.Bus)
	if err := p.Load(); err != nil {
		return nil, fmt.Errorf("daemon: load reservation store: %w", err)
	}
	return p, nil
}
