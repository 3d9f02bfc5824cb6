package main

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/siteiq/siteiq/internal/store"
	"github.com/siteiq/siteiq/pkg/geocode"
)

func TestPruneGeocodeCache(t *testing.T) {
	ctx := context.Background()

	// Negative TTL makes every cached entry already expired.
	st, err := store.NewSQLite(filepath.Join(t.TempDir(), "test.db"), -time.Hour)
	require.NoError(t, err)
	t.Cleanup(func() { _ = st.Close() })
	require.NoError(t, st.Migrate(ctx))

	require.NoError(t, st.SetGeocode(ctx, "stale-key", &geocode.Result{
		Latitude:  30.2672,
		Longitude: -97.7431,
		Matched:   true,
	}))

	deleted, err := pruneGeocodeCache(ctx, st)
	require.NoError(t, err)
	assert.Equal(t, 1, deleted)

	deleted, err = pruneGeocodeCache(ctx, st)
	require.NoError(t, err)
	assert.Zero(t, deleted)
}

func TestPruneGeocodeCache_KeepsFreshEntries(t *testing.T) {
	ctx := context.Background()

	st, err := store.NewSQLite(filepath.Join(t.TempDir(), "test.db"), 24*time.Hour)
	require.NoError(t, err)
	t.Cleanup(func() { _ = st.Close() })
	require.NoError(t, st.Migrate(ctx))

	require.NoError(t, st.SetGeocode(ctx, "fresh-key", &geocode.Result{Matched: true}))

	deleted, err := pruneGeocodeCache(ctx, st)
	require.NoError(t, err)
	assert.Zero(t, deleted)

	cached, err := st.GetGeocode(ctx, "fresh-key")
	require.NoError(t, err)
	require.NotNil(t, cached)
	assert.True(t, cached.Matched)
}
