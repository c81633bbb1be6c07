package catalog

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"MeasureInGoods/internal/collector"
	"MeasureInGoods/internal/model"
)

const catalogYAML = `assets:
  - id: BTC
    label: Bitcoin
    units:
      - id: gold
        label: Gold
        endpoint: /ratios/btc-gold
`

func TestStore_RefreshFromAPI(t *testing.T) {
	caps := &model.Capabilities{Assets: []model.AssetCapability{{ID: "SPX", Label: "S&P 500"}}}
	s := NewStore(&collector.MockFetcher{Capabilities: caps}, nil, "")

	assert.Equal(t, SourceFallback, s.Snapshot().Source)
	require.NoError(t, s.Refresh(context.Background()))

	snap := s.Snapshot()
	assert.Equal(t, SourceAPI, snap.Source)
	assert.False(t, snap.Fallback())
	assert.Empty(t, snap.Notice)
	assert.Same(t, caps, snap.Capabilities)
}

func TestStore_RefreshFailureServesFallback(t *testing.T) {
	s := NewStore(&collector.MockFetcher{}, nil, "")

	err := s.Refresh(context.Background())
	require.Error(t, err)

	snap := s.Snapshot()
	assert.True(t, snap.Fallback())
	assert.Equal(t, "Capabilities unavailable (Request failed with status 404). Showing fallback options.", snap.Notice)
	_, ok := snap.Capabilities.Asset("GOLD")
	assert.True(t, ok)
}

func TestStore_EmptyCatalogIsFailure(t *testing.T) {
	s := NewStore(&collector.MockFetcher{Capabilities: &model.Capabilities{}}, nil, "")
	require.Error(t, s.Refresh(context.Background()))
	assert.True(t, s.Snapshot().Fallback())
}

func TestStore_FileOverridesFallback(t *testing.T) {
	path := filepath.Join(t.TempDir(), "catalog.yaml")
	require.NoError(t, os.WriteFile(path, []byte(catalogYAML), 0o644))

	s := NewStore(&collector.MockFetcher{}, nil, path)
	snap := s.Snapshot()
	assert.Equal(t, SourceFile, snap.Source)
	btc, ok := snap.Capabilities.Asset("BTC")
	require.True(t, ok)
	assert.Equal(t, "/ratios/btc-gold", btc.Units[0].Endpoint)
}

func TestStore_MissingFileKeepsBuiltin(t *testing.T) {
	s := NewStore(&collector.MockFetcher{}, nil, filepath.Join(t.TempDir(), "absent.yaml"))
	assert.Equal(t, SourceFallback, s.Snapshot().Source)
}

func TestStore_WatchReloadsFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "catalog.yaml")
	require.NoError(t, os.WriteFile(path, []byte(catalogYAML), 0o644))

	s := NewStore(&collector.MockFetcher{}, nil, path)
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	require.NoError(t, s.Watch(ctx))

	updated := catalogYAML + `  - id: ETH
    label: Ether
    units: []
`
	require.NoError(t, os.WriteFile(path, []byte(updated), 0o644))

	require.Eventually(t, func() bool {
		_, ok := s.Snapshot().Capabilities.Asset("ETH")
		return ok
	}, 2*time.Second, 20*time.Millisecond)
}
