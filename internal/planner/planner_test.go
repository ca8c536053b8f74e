// Copyright (c) 2025 ManuGH
// Licensed under the PolyForm Noncommercial License 1.0.0

package planner

import (
	"context"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"

	"github.com/reservesd/reservesd/internal/bus"
	"github.com/reservesd/reservesd/internal/catalogue"
	"github.com/reservesd/reservesd/internal/reservation"
	"github.com/reservesd/reservesd/internal/rulestore"
	"github.com/reservesd/reservesd/internal/store"
	"github.com/reservesd/reservesd/internal/tuner"
)

func newTestPlanner(t *testing.T, programs ...reservation.Program) (*Planner, *catalogue.MemoryClient) {
	t.Helper()
	client := catalogue.NewMemoryClient(programs...)
	rules := rulestore.NewMemoryStore()
	s := store.New(filepath.Join(t.TempDir(), "reserves.json"))
	inv := tuner.NewInventory([]tuner.Descriptor{{Index: 0, Types: []reservation.ChannelType{reservation.ChannelGR}}})
	p := New(client, rules, s, inv, bus.NewMemoryBus())
	require.NoError(t, p.Load())
	return p, client
}

func TestAddManualSchedulesAndPersists(t *testing.T) {
	p, _ := newTestPlanner(t, reservation.Program{ID: 1, StartAt: 100, EndAt: 200, ChannelType: reservation.ChannelGR})
	ctx := context.Background()

	r, err := p.AddManual(ctx, 1, nil)
	require.NoError(t, err)
	require.Equal(t, reservation.OriginManual, r.Origin)

	all, total := p.All(nil, nil)
	require.Equal(t, 1, total)
	require.Equal(t, int64(1), all[0].Program.ID)
}

func TestAddManualProgramNotFound(t *testing.T) {
	p, _ := newTestPlanner(t)
	_, err := p.AddManual(context.Background(), 99, nil)
	require.ErrorIs(t, err, ErrProgramNotFound)
}

func TestAddManualAlreadyReserved(t *testing.T) {
	p, _ := newTestPlanner(t, reservation.Program{ID: 1, StartAt: 100, EndAt: 200, ChannelType: reservation.ChannelGR})
	ctx := context.Background()
	_, err := p.AddManual(ctx, 1, nil)
	require.NoError(t, err)

	_, err = p.AddManual(ctx, 1, nil)
	require.ErrorIs(t, err, ErrAlreadyReserved)
}

// S6 - addManual rejects on conflict, leaving state unchanged.
func TestAddManualRejectsOnConflictLeavingStateUnchanged(t *testing.T) {
	p, _ := newTestPlanner(t,
		reservation.Program{ID: 1, StartAt: 100, EndAt: 300, ChannelType: reservation.ChannelGR},
		reservation.Program{ID: 2, StartAt: 150, EndAt: 250, ChannelType: reservation.ChannelGR},
	)
	ctx := context.Background()
	_, err := p.AddManual(ctx, 1, nil)
	require.NoError(t, err)

	_, err = p.AddManual(ctx, 2, nil)
	require.ErrorIs(t, err, ErrConflict)

	all, total := p.All(nil, nil)
	require.Equal(t, 1, total)
	require.Equal(t, int64(1), all[0].Program.ID)
}

func TestCancelManualRemovesReservation(t *testing.T) {
	p, _ := newTestPlanner(t, reservation.Program{ID: 1, StartAt: 100, EndAt: 200, ChannelType: reservation.ChannelGR})
	ctx := context.Background()
	_, err := p.AddManual(ctx, 1, nil)
	require.NoError(t, err)
	require.NoError(t, p.Cancel(ctx, 1))

	// Cancel triggers updateAll asynchronously; poll briefly for completion.
	deadline := time.Now().Add(time.Second)
	for time.Now().Before(deadline) {
		if _, total := p.All(nil, nil); total == 0 {
			return
		}
		time.Sleep(5 * time.Millisecond)
	}
	t.Fatalf("expected reservation removed after cancel")
}

func TestConcurrentMutationsFailFastWithAlreadyRunning(t *testing.T) {
	defer goleak.VerifyNone(t)

	p, _ := newTestPlanner(t, reservation.Program{ID: 1, StartAt: 100, EndAt: 200, ChannelType: reservation.ChannelGR})

	release, err := p.acquire()
	require.NoError(t, err)

	var wg sync.WaitGroup
	wg.Add(1)
	var gotErr error
	go func() {
		defer wg.Done()
		_, gotErr = p.AddManual(context.Background(), 1, nil)
	}()
	wg.Wait()

	require.ErrorIs(t, gotErr, ErrAlreadyRunning)
	release()
}

func TestNextManualIDStrictlyMonotonic(t *testing.T) {
	p, _ := newTestPlanner(t)
	a := p.nextManualID()
	b := p.nextManualID()
	require.Greater(t, b, a)
}
