// Copyright (c) 2025 ManuGH
// Licensed under the PolyForm Noncommercial License 1.0.0

package daemon

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/reservesd/reservesd/internal/config"
	"github.com/reservesd/reservesd/internal/reservation"
)

func TestToDescriptorsConvertsChannelTypes(t *testing.T) {
	cfg := config.Config{Tuners: []config.TunerConfig{
		{Index: 0, Types: []string{"GR", "BS"}},
	}}
	got := toDescriptors(cfg)
	require.Len(t, got, 1)
	require.Equal(t, 0, got[0].Index)
	require.Equal(t, []reservation.ChannelType{reservation.ChannelGR, reservation.ChannelBS}, got[0].Types)
}

func TestNewCollaboratorsDefaultsToInMemoryBackends(t *testing.T) {
	cfg := config.Defaults()
	cfg.ReservesPath = t.TempDir() + "/reserves.json"

	c, err := NewCollaborators(cfg)
	require.NoError(t, err)
	defer c.Close()

	require.NotNil(t, c.Catalogue)
	require.NotNil(t, c.RuleStore)
	require.NotNil(t, c.Bus)
	require.NotNil(t, c.Tuners)
	require.NotNil(t, c.Store)

	p, err := NewPlanner(c)
	require.NoError(t, err)
	all, _ := p.All(nil, nil)
	require.Empty(t, all, "expected empty reservation store on fresh load")
}
