package playlist

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/holosmedia/holos/internal/logger"
	"github.com/holosmedia/holos/internal/models"
)

// memStore is an in-memory Store for coordinator tests
type memStore struct {
	snap    *models.PlaylistSnapshot
	saves   int
	saveErr error
}

func (m *memStore) Load(ctx context.Context) (*models.PlaylistSnapshot, error) {
	if m.snap == nil {
		return models.DefaultPlaylistSnapshot(), nil
	}
	return m.snap, nil
}

func (m *memStore) Save(ctx context.Context, snap *models.PlaylistSnapshot) error {
	m.saves++
	if m.saveErr != nil {
		return m.saveErr
	}
	m.snap = snap
	return nil
}

// recordingMirror records published snapshots
type recordingMirror struct {
	published []*models.PlaylistSnapshot
}

func (m *recordingMirror) Publish(ctx context.Context, snap *models.PlaylistSnapshot) error {
	m.published = append(m.published, snap)
	return nil
}

func setupCoordinatorTest(t *testing.T) (*Coordinator, *memStore, *recordingMirror) {
	t.Helper()
	logger.Init("error", false)

	store := &memStore{}
	mirror := &recordingMirror{}
	return NewCoordinator(store, mirror), store, mirror
}

func testItem(title string) models.MediaItem {
	return models.MediaItem{
		ID:       uuid.New(),
		Title:    title,
		FilePath: "/media/" + title + ".mp4",
	}
}

func fillPlaylist(t *testing.T, coord *Coordinator, n int) []models.MediaItem {
	t.Helper()
	ctx := context.Background()
	items := make([]models.MediaItem, n)
	for i := 0; i < n; i++ {
		items[i] = testItem(fmt.Sprintf("item-%02d", i))
		require.True(t, coord.Add(ctx, items[i]))
	}
	return items
}

func TestAdd_RejectsWhenFull(t *testing.T) {
	coord, _, _ := setupCoordinatorTest(t)
	ctx := context.Background()

	fillPlaylist(t, coord, MaxItems)
	require.Equal(t, MaxItems, coord.Len())

	accepted := coord.Add(ctx, testItem("overflow"))
	assert.False(t, accepted)
	assert.Equal(t, MaxItems, coord.Len())
}

func TestAdd_AllowsDuplicates(t *testing.T) {
	coord, _, _ := setupCoordinatorTest(t)
	ctx := context.Background()

	item := testItem("repeat")
	assert.True(t, coord.Add(ctx, item))
	assert.True(t, coord.Add(ctx, item))
	assert.Equal(t, 2, coord.Len())
}

func TestRemove_ShiftsCursorForEarlierIndex(t *testing.T) {
	coord, _, _ := setupCoordinatorTest(t)
	ctx := context.Background()

	items := fillPlaylist(t, coord, 5)
	require.NoError(t, coord.SetCurrentIndex(ctx, 3))

	// Removing an item before the cursor shifts it down so it still
	// points at the same entry
	assert.True(t, coord.Remove(ctx, items[1].ID.String()))
	assert.Equal(t, 2, coord.CurrentIndex())

	current, ok := coord.CurrentItem()
	require.True(t, ok)
	assert.Equal(t, items[3].ID, current.ID)
}

func TestRemove_ClampsCursorAtEnd(t *testing.T) {
	coord, _, _ := setupCoordinatorTest(t)
	ctx := context.Background()

	items := fillPlaylist(t, coord, 3)
	require.NoError(t, coord.SetCurrentIndex(ctx, 2))

	assert.True(t, coord.Remove(ctx, items[2].ID.String()))
	assert.Equal(t, 1, coord.CurrentIndex())
}

func TestRemove_UnknownIDReturnsFalse(t *testing.T) {
	coord, _, _ := setupCoordinatorTest(t)
	ctx := context.Background()

	fillPlaylist(t, coord, 2)
	assert.False(t, coord.Remove(ctx, uuid.NewString()))
	assert.Equal(t, 2, coord.Len())
}

func TestReorder_MovesItemWithoutRemappingCursor(t *testing.T) {
	coord, _, _ := setupCoordinatorTest(t)
	ctx := context.Background()

	items := fillPlaylist(t, coord, 4)
	require.NoError(t, coord.SetCurrentIndex(ctx, 1))

	require.NoError(t, coord.Reorder(ctx, 0, 3))

	snap := coord.Snapshot()
	assert.Equal(t, items[1].ID, snap.Items[0].ID)
	assert.Equal(t, items[2].ID, snap.Items[1].ID)
	assert.Equal(t, items[3].ID, snap.Items[2].ID)
	assert.Equal(t, items[0].ID, snap.Items[3].ID)

	// The cursor stays positional, it does not follow the moved item
	assert.Equal(t, 1, snap.CurrentIndex)
}

func TestReorder_OutOfRange(t *testing.T) {
	coord, _, _ := setupCoordinatorTest(t)
	ctx := context.Background()

	fillPlaylist(t, coord, 3)

	assert.True(t, IsIndexOutOfRange(coord.Reorder(ctx, -1, 2)))
	assert.True(t, IsIndexOutOfRange(coord.Reorder(ctx, 0, 3)))
	assert.True(t, IsIndexOutOfRange(coord.Reorder(ctx, 5, 0)))
}

func TestAdvance_LoopModeCyclesFullLength(t *testing.T) {
	coord, _, _ := setupCoordinatorTest(t)
	ctx := context.Background()

	n := 5
	fillPlaylist(t, coord, n)
	require.NoError(t, coord.SetPlayMode(ctx, models.PlayModeLoop))

	seen := make(map[int]bool)
	seen[coord.CurrentIndex()] = true
	for i := 0; i < n-1; i++ {
		idx, err := coord.Advance(ctx)
		require.NoError(t, err)
		seen[idx] = true
	}
	assert.Len(t, seen, n)

	// One more advance wraps back to the start
	idx, err := coord.Advance(ctx)
	require.NoError(t, err)
	assert.Equal(t, 0, idx)
}

func TestAdvance_ManualModeClampsAtEnd(t *testing.T) {
	coord, _, _ := setupCoordinatorTest(t)
	ctx := context.Background()

	fillPlaylist(t, coord, 3)
	require.NoError(t, coord.SetPlayMode(ctx, models.PlayModeManual))
	require.NoError(t, coord.SetCurrentIndex(ctx, 2))

	idx, err := coord.Advance(ctx)
	require.NoError(t, err)
	assert.Equal(t, 2, idx)
}

func TestAdvance_EmptyPlaylist(t *testing.T) {
	coord, _, _ := setupCoordinatorTest(t)

	_, err := coord.Advance(context.Background())
	assert.ErrorIs(t, err, ErrEmptyPlaylist)
}

func TestPrevious_LoopModeWrapsToEnd(t *testing.T) {
	coord, _, _ := setupCoordinatorTest(t)
	ctx := context.Background()

	fillPlaylist(t, coord, 4)
	require.NoError(t, coord.SetPlayMode(ctx, models.PlayModeLoop))

	idx, err := coord.Previous(ctx)
	require.NoError(t, err)
	assert.Equal(t, 3, idx)
}

func TestPrevious_ManualModeClampsAtStart(t *testing.T) {
	coord, _, _ := setupCoordinatorTest(t)
	ctx := context.Background()

	fillPlaylist(t, coord, 4)
	require.NoError(t, coord.SetPlayMode(ctx, models.PlayModeManual))

	idx, err := coord.Previous(ctx)
	require.NoError(t, err)
	assert.Equal(t, 0, idx)
}

func TestClear_ResetsEverything(t *testing.T) {
	coord, _, _ := setupCoordinatorTest(t)
	ctx := context.Background()

	fillPlaylist(t, coord, 5)
	require.NoError(t, coord.SetCurrentIndex(ctx, 3))
	coord.SetPlaying(ctx, true)
	coord.SetActive(ctx, true)

	coord.Clear(ctx)

	snap := coord.Snapshot()
	assert.Empty(t, snap.Items)
	assert.Equal(t, 0, snap.CurrentIndex)
	assert.False(t, snap.IsPlaying)
	assert.False(t, snap.IsActive)

	// A cleared playlist accepts new items again
	assert.True(t, coord.Add(ctx, testItem("fresh")))
}

func TestOnItemEnded_LoopAdvancesAndWraps(t *testing.T) {
	coord, _, _ := setupCoordinatorTest(t)
	ctx := context.Background()

	fillPlaylist(t, coord, 3)
	require.NoError(t, coord.SetPlayMode(ctx, models.PlayModeLoop))
	require.NoError(t, coord.SetCurrentIndex(ctx, 2))

	coord.OnItemEnded(ctx)
	assert.Equal(t, 0, coord.CurrentIndex())
}

func TestOnItemEnded_ManualHoldsCursor(t *testing.T) {
	coord, _, _ := setupCoordinatorTest(t)
	ctx := context.Background()

	fillPlaylist(t, coord, 3)
	require.NoError(t, coord.SetPlayMode(ctx, models.PlayModeManual))
	require.NoError(t, coord.SetCurrentIndex(ctx, 1))

	coord.OnItemEnded(ctx)
	assert.Equal(t, 1, coord.CurrentIndex())
}

func TestSetPlayMode_RejectsUnknownMode(t *testing.T) {
	coord, _, _ := setupCoordinatorTest(t)

	err := coord.SetPlayMode(context.Background(), models.PlayMode("shuffle"))
	assert.ErrorIs(t, err, ErrInvalidPlayMode)
}

func TestApplySnapshot_ReestablishesInvariants(t *testing.T) {
	coord, _, _ := setupCoordinatorTest(t)
	ctx := context.Background()

	items := make([]models.MediaItem, MaxItems+5)
	for i := range items {
		items[i] = testItem(fmt.Sprintf("bulk-%02d", i))
	}

	coord.ApplySnapshot(ctx, &models.PlaylistSnapshot{
		Items:        items,
		CurrentIndex: 40,
		PlayMode:     models.PlayMode("bogus"),
		IsPlaying:    true,
	})

	snap := coord.Snapshot()
	assert.Len(t, snap.Items, MaxItems)
	assert.Equal(t, MaxItems-1, snap.CurrentIndex)
	assert.Equal(t, models.PlayModeLoop, snap.PlayMode)
	assert.True(t, snap.IsPlaying)
}

func TestMirror_PublishesOnlyWhileActive(t *testing.T) {
	coord, _, mirror := setupCoordinatorTest(t)
	ctx := context.Background()

	coord.Add(ctx, testItem("a"))
	assert.Empty(t, mirror.published)

	coord.SetActive(ctx, true)
	publishedAfterActivate := len(mirror.published)
	require.Greater(t, publishedAfterActivate, 0)

	coord.Add(ctx, testItem("b"))
	assert.Greater(t, len(mirror.published), publishedAfterActivate)

	coord.SetActive(ctx, false)
	countAfterDeactivate := len(mirror.published)

	coord.Add(ctx, testItem("c"))
	assert.Equal(t, countAfterDeactivate, len(mirror.published))
}

func TestStoreFailure_NotSurfaced(t *testing.T) {
	logger.Init("error", false)
	store := &memStore{saveErr: errors.New("disk full")}
	coord := NewCoordinator(store, nil)
	ctx := context.Background()

	// The in-memory playlist stays authoritative even when persistence fails
	assert.True(t, coord.Add(ctx, testItem("a")))
	assert.Equal(t, 1, coord.Len())
}

func TestRestore_LoadsPersistedState(t *testing.T) {
	logger.Init("error", false)
	items := []models.MediaItem{testItem("x"), testItem("y")}
	store := &memStore{snap: &models.PlaylistSnapshot{
		Items:        items,
		CurrentIndex: 1,
		PlayMode:     models.PlayModeManual,
	}}
	coord := NewCoordinator(store, nil)

	require.NoError(t, coord.Restore(context.Background()))

	snap := coord.Snapshot()
	assert.Len(t, snap.Items, 2)
	assert.Equal(t, 1, snap.CurrentIndex)
	assert.Equal(t, models.PlayModeManual, snap.PlayMode)
}
