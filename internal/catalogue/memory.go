// Copyright (c) 2025 ManuGH
// Licensed under the PolyForm Noncommercial License 1.0.0
// Since v2.0.0, this software is restricted to non-commercial use only.

package catalogue

import (
	"context"
	"strings"
	"sync"
	"time"

	"github.com/reservesd/reservesd/internal/reservation"
)

// MemoryClient is an in-memory Client fake used by tests and
// local/demo wiring. It matches SearchOption against its program set
// using Week, the GR/BS/CS/SKY flags, IsFree, and Keyword/IgnoreKeyword
// (case-folded, against Name only); the other SearchOption fields are
// not consulted.
type MemoryClient struct {
	mu       sync.RWMutex
	programs map[int64]reservation.Program
}

// NewMemoryClient builds a MemoryClient seeded with programs.
func NewMemoryClient(programs ...reservation.Program) *MemoryClient {
	c := &MemoryClient{programs: make(map[int64]reservation.Program, len(programs))}
	for _, p := range programs {
		c.programs[p.ID] = p
	}
	return c
}

// Put inserts or replaces a program.
func (c *MemoryClient) Put(p reservation.Program) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.programs[p.ID] = p
}

// Remove deletes a program by id.
func (c *MemoryClient) Remove(id int64) {
	c.mu.Lock()
	defer c.mu.Unlock()
	delete(c.programs, id)
}

func (c *MemoryClient) FindByID(_ context.Context, id int64, _ bool) ([]reservation.Program, error) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	p, ok := c.programs[id]
	if !ok {
		return nil, nil
	}
	return []reservation.Program{p}, nil
}

func (c *MemoryClient) FindByRule(_ context.Context, opt SearchOption) ([]reservation.Program, error) {
	c.mu.RLock()
	defer c.mu.RUnlock()

	var out []reservation.Program
	for _, p := range c.programs {
		if matches(p, opt) {
			out = append(out, p)
		}
	}
	return out, nil
}

func matches(p reservation.Program, opt SearchOption) bool {
	if opt.Week != 0 {
		weekday := time.UnixMilli(p.StartAt).Weekday()
		if opt.Week&(1<<uint(weekday)) == 0 {
			return false
		}
	}
	if opt.GR != nil && *opt.GR && p.ChannelType != reservation.ChannelGR {
		return false
	}
	if opt.BS != nil && *opt.BS && p.ChannelType != reservation.ChannelBS {
		return false
	}
	if opt.CS != nil && *opt.CS && p.ChannelType != reservation.ChannelCS {
		return false
	}
	if opt.Sky != nil && *opt.Sky && p.ChannelType != reservation.ChannelSky {
		return false
	}
	if opt.IsFree != nil && *opt.IsFree && !p.IsFree {
		return false
	}
	if opt.Keyword != nil {
		haystack := foldCase(p.Name)
		needle := foldCase(*opt.Keyword)
		if !strings.Contains(haystack, needle) {
			return false
		}
	}
	if opt.IgnoreKeyword != nil {
		haystack := foldCase(p.Name)
		needle := foldCase(*opt.IgnoreKeyword)
		if needle != "" && strings.Contains(haystack, needle) {
			return false
		}
	}
	return true
}
