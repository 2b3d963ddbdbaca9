package playlist

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/holosmedia/holos/internal/db"
	"github.com/holosmedia/holos/internal/logger"
	"github.com/holosmedia/holos/internal/models"
)

// setupSavedTest creates a saved playlist service whose coordinator
// persists through a real database
func setupSavedTest(t *testing.T) (*SavedService, *Coordinator, func()) {
	t.Helper()
	logger.Init("error", false)

	tmpFile := filepath.Join(t.TempDir(), "test.db")
	database, err := db.New(tmpFile)
	require.NoError(t, err)

	sqlDB, err := database.GetSQLDB()
	require.NoError(t, err)

	err = db.RunMigrations(sqlDB, "file://../../migrations")
	require.NoError(t, err)

	repos := db.NewRepositories(database)
	coord := NewCoordinator(repos.PlaylistState, nil)
	service := NewSavedService(repos, coord)

	cleanup := func() {
		_ = database.Close()
	}

	return service, coord, cleanup
}

func savedTestItem(title string) models.MediaItem {
	return models.MediaItem{
		ID:       uuid.New(),
		Title:    title,
		FilePath: "/media/" + title + ".mp4",
	}
}

func TestSaveNamed_RejectsEmptyPlaylist(t *testing.T) {
	service, _, cleanup := setupSavedTest(t)
	defer cleanup()

	_, err := service.SaveNamed(context.Background(), "empty")
	assert.ErrorIs(t, err, ErrEmptyPlaylist)
	assert.True(t, IsEmptyPlaylist(err))
}

func TestSaveNamed_SnapshotsLivePlaylist(t *testing.T) {
	service, coord, cleanup := setupSavedTest(t)
	defer cleanup()

	ctx := context.Background()
	require.True(t, coord.Add(ctx, savedTestItem("one")))
	require.True(t, coord.Add(ctx, savedTestItem("two")))

	saved, err := service.SaveNamed(ctx, "evening block")
	require.NoError(t, err)
	assert.Equal(t, "evening block", saved.Name)
	assert.Equal(t, 2, saved.ItemCount)
	assert.NotEqual(t, uuid.Nil, saved.ID)
}

func TestSaveNamed_ImmutableAfterLiveChanges(t *testing.T) {
	service, coord, cleanup := setupSavedTest(t)
	defer cleanup()

	ctx := context.Background()
	item := savedTestItem("keeper")
	require.True(t, coord.Add(ctx, item))

	saved, err := service.SaveNamed(ctx, "frozen")
	require.NoError(t, err)

	// Mutating the live playlist does not touch the saved copy
	coord.Clear(ctx)
	require.True(t, coord.Add(ctx, savedTestItem("other")))

	require.NoError(t, service.Restore(ctx, saved.ID))

	snap := coord.Snapshot()
	require.Len(t, snap.Items, 1)
	assert.Equal(t, item.ID, snap.Items[0].ID)
}

func TestListSaved_NewestFirst(t *testing.T) {
	service, coord, cleanup := setupSavedTest(t)
	defer cleanup()

	ctx := context.Background()
	require.True(t, coord.Add(ctx, savedTestItem("one")))

	for _, name := range []string{"first", "second", "third"} {
		_, err := service.SaveNamed(ctx, name)
		require.NoError(t, err)
	}

	saved, err := service.ListSaved(ctx)
	require.NoError(t, err)
	assert.Len(t, saved, 3)
}

func TestRestore_ResetsCursorAndFlags(t *testing.T) {
	service, coord, cleanup := setupSavedTest(t)
	defer cleanup()

	ctx := context.Background()
	for i := 0; i < 3; i++ {
		require.True(t, coord.Add(ctx, savedTestItem("clip")))
	}

	saved, err := service.SaveNamed(ctx, "block")
	require.NoError(t, err)

	require.NoError(t, coord.SetCurrentIndex(ctx, 2))
	coord.SetPlaying(ctx, true)

	require.NoError(t, service.Restore(ctx, saved.ID))

	snap := coord.Snapshot()
	assert.Equal(t, 0, snap.CurrentIndex)
	assert.False(t, snap.IsPlaying)
	assert.Len(t, snap.Items, 3)
}

func TestRestore_PreservesPlayMode(t *testing.T) {
	service, coord, cleanup := setupSavedTest(t)
	defer cleanup()

	ctx := context.Background()
	require.True(t, coord.Add(ctx, savedTestItem("clip")))

	saved, err := service.SaveNamed(ctx, "block")
	require.NoError(t, err)

	require.NoError(t, coord.SetPlayMode(ctx, models.PlayModeManual))
	require.NoError(t, service.Restore(ctx, saved.ID))

	assert.Equal(t, models.PlayModeManual, coord.Snapshot().PlayMode)
}

func TestRestore_UnknownIDFails(t *testing.T) {
	service, _, cleanup := setupSavedTest(t)
	defer cleanup()

	err := service.Restore(context.Background(), uuid.New())
	require.Error(t, err)
}

func TestDeleteNamed_RemovesPlaylist(t *testing.T) {
	service, coord, cleanup := setupSavedTest(t)
	defer cleanup()

	ctx := context.Background()
	require.True(t, coord.Add(ctx, savedTestItem("clip")))

	saved, err := service.SaveNamed(ctx, "short lived")
	require.NoError(t, err)

	require.NoError(t, service.DeleteNamed(ctx, saved.ID))

	listed, err := service.ListSaved(ctx)
	require.NoError(t, err)
	assert.Empty(t, listed)

	err = service.Restore(ctx, saved.ID)
	require.Error(t, err)
}
