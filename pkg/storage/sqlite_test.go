package storage

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"catalogscraper/pkg/config"
	"catalogscraper/pkg/logger"
)

func TestSQLiteStoreRoundTrip(t *testing.T) {
	ctx := context.Background()
	path := filepath.Join(t.TempDir(), "catalog.db")

	store, err := OpenSQLite(ctx, path, logger.NewNopLogger())
	require.NoError(t, err)
	defer store.Close()

	assert.Empty(t, store.Load(ctx))

	require.NoError(t, store.Save(ctx, sampleCollection()))
	loaded := store.Load(ctx)
	require.Len(t, loaded, 2)
	assert.Equal(t, "Amélie & Co", loaded[0].Title)
	assert.Equal(t, []interface{}{"Comedy"}, loaded[0].Detail["genre"])
	assert.Equal(t, "https://example.test/tv/watch-some-show", loaded[1].URL)
}

func TestSQLiteStoreSaveReplacesAll(t *testing.T) {
	ctx := context.Background()
	store, err := OpenSQLite(ctx, filepath.Join(t.TempDir(), "catalog.db"), logger.NewNopLogger())
	require.NoError(t, err)
	defer store.Close()

	require.NoError(t, store.Save(ctx, sampleCollection()))
	require.NoError(t, store.Save(ctx, sampleCollection()[1:]))

	loaded := store.Load(ctx)
	require.Len(t, loaded, 1)
	assert.Equal(t, "Some Show", loaded[0].Title)
}

func TestSQLiteStoreDuplicateLocatorRollsBack(t *testing.T) {
	ctx := context.Background()
	store, err := OpenSQLite(ctx, filepath.Join(t.TempDir(), "catalog.db"), logger.NewNopLogger())
	require.NoError(t, err)
	defer store.Close()

	require.NoError(t, store.Save(ctx, sampleCollection()[:1]))

	dup := append(sampleCollection(), sampleCollection()[0])
	require.Error(t, store.Save(ctx, dup))

	loaded := store.Load(ctx)
	require.Len(t, loaded, 1, "failed save must leave the previous snapshot")
}

func TestSQLiteStoreReopen(t *testing.T) {
	ctx := context.Background()
	path := filepath.Join(t.TempDir(), "catalog.db")

	store, err := Open(ctx, config.StorageConfig{Backend: config.BackendSQLite, Path: path}, logger.NewNopLogger())
	require.NoError(t, err)
	require.NoError(t, store.Save(ctx, sampleCollection()))
	require.NoError(t, store.Close())

	reopened, err := OpenSQLite(ctx, path, logger.NewNopLogger())
	require.NoError(t, err)
	defer reopened.Close()

	assert.Len(t, reopened.Load(ctx), 2)
	assert.Equal(t, "sqlite:"+path, reopened.Location())
}
