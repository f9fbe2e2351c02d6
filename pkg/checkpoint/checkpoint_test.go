package checkpoint

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"catalogscraper/pkg/logger"
)

func newTestManager(t *testing.T) *Manager {
	t.Helper()
	return NewManager(filepath.Join(t.TempDir(), "imdb.json.state.json"), logger.NewNopLogger())
}

func TestCreateAndLoad(t *testing.T) {
	mgr := newTestManager(t)

	state, err := mgr.Create("https://example.test", "imdb.json", 1, 12)
	require.NoError(t, err)
	assert.Equal(t, 12, state.TotalRecords)
	assert.True(t, mgr.Exists())

	loaded, err := mgr.Load()
	require.NoError(t, err)
	require.NotNil(t, loaded)
	assert.Equal(t, "https://example.test", loaded.Source)
	assert.Equal(t, stateVersion, loaded.Version)
	assert.False(t, loaded.Finished)
}

func TestLoadMissing(t *testing.T) {
	mgr := newTestManager(t)

	state, err := mgr.Load()
	assert.NoError(t, err)
	assert.Nil(t, state)

	info, err := mgr.GetCheckpointInfo()
	assert.NoError(t, err)
	assert.Nil(t, info)
}

func TestLoadCorrupt(t *testing.T) {
	mgr := newTestManager(t)
	require.NoError(t, os.WriteFile(mgr.Path(), []byte("{not json"), 0644))

	_, err := mgr.Load()
	assert.Error(t, err)
}

func TestLoadNewerVersion(t *testing.T) {
	mgr := newTestManager(t)
	require.NoError(t, os.WriteFile(mgr.Path(), []byte(`{"version": 99}`), 0644))

	_, err := mgr.Load()
	assert.ErrorContains(t, err, "newer than supported")
}

func TestRecordPageAndFinish(t *testing.T) {
	mgr := newTestManager(t)
	state, err := mgr.Create("src", "store", 1, 0)
	require.NoError(t, err)

	require.NoError(t, mgr.RecordPage(state, PageProgress{Page: 1, Added: 3, Skipped: 1, TotalRecords: 3}))
	require.NoError(t, mgr.RecordPage(state, PageProgress{Page: 2, Added: 2, EnrichFailures: 1, TotalRecords: 5}))
	require.NoError(t, mgr.Finish(state, "exhausted"))

	loaded, err := mgr.Load()
	require.NoError(t, err)
	assert.Equal(t, 2, loaded.LastPage)
	assert.Equal(t, 2, loaded.PagesVisited)
	assert.Equal(t, 5, loaded.RecordsAdded)
	assert.Equal(t, 1, loaded.RecordsSkipped)
	assert.Equal(t, 1, loaded.EnrichFailures)
	assert.Equal(t, 5, loaded.TotalRecords)
	assert.True(t, loaded.Finished)
	assert.Equal(t, "exhausted", loaded.StopReason)
}

func TestInterruptLeavesRunUnfinished(t *testing.T) {
	mgr := newTestManager(t)
	state, err := mgr.Create("src", "store", 1, 0)
	require.NoError(t, err)

	require.NoError(t, mgr.RecordPage(state, PageProgress{Page: 1, Added: 2, TotalRecords: 2}))
	require.NoError(t, mgr.Interrupt(state, "cancelled"))

	loaded, err := mgr.Load()
	require.NoError(t, err)
	assert.False(t, loaded.Finished)
	assert.Equal(t, "cancelled", loaded.StopReason)
	assert.Equal(t, 1, loaded.LastPage)
}

func TestCreateBacksUpPreviousState(t *testing.T) {
	mgr := newTestManager(t)
	_, err := mgr.Create("first", "store", 1, 0)
	require.NoError(t, err)

	_, err = mgr.Create("second", "store", 1, 0)
	require.NoError(t, err)

	backup := NewManager(mgr.Path()+".backup", logger.NewNopLogger())
	prev, err := backup.Load()
	require.NoError(t, err)
	assert.Equal(t, "first", prev.Source)
}

func TestGetCheckpointInfoAge(t *testing.T) {
	mgr := newTestManager(t)
	base := time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)
	mgr.now = func() time.Time { return base }

	_, err := mgr.Create("src", "store", 1, 7)
	require.NoError(t, err)

	mgr.now = func() time.Time { return base.Add(time.Hour) }
	info, err := mgr.GetCheckpointInfo()
	require.NoError(t, err)
	assert.Equal(t, time.Hour, info["age"])
	assert.Equal(t, 7, info["total_records"])
}

func TestDelete(t *testing.T) {
	mgr := newTestManager(t)
	_, err := mgr.Create("src", "store", 1, 0)
	require.NoError(t, err)

	require.NoError(t, mgr.Delete())
	assert.False(t, mgr.Exists())
	assert.NoError(t, mgr.Delete())
}
