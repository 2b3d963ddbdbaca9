// Package playlist implements the in-memory playlist coordinator: the
// ordered media list, the playback cursor and the play-mode transitions.
// The coordinator is the only owner of this state; the persistent store
// and the remote sync mirror hold write-through copies with no authority.
package playlist

import (
	"context"
	"sync"
	"time"

	"github.com/holosmedia/holos/internal/logger"
	"github.com/holosmedia/holos/internal/models"
)

// MaxItems is the playlist capacity
const MaxItems = 20

// Store persists playlist snapshots durably. Load is called once at
// startup; Save after every mutation (overwrite, last write wins).
type Store interface {
	Load(ctx context.Context) (*models.PlaylistSnapshot, error)
	Save(ctx context.Context, snap *models.PlaylistSnapshot) error
}

// Mirror pushes snapshots to remote observers. Publications only happen
// while the playlist is active (broadcasting).
type Mirror interface {
	Publish(ctx context.Context, snap *models.PlaylistSnapshot) error
}

// Coordinator owns the ordered media list and playback cursor and
// computes play-mode transitions. All methods are safe for concurrent
// use from HTTP handlers.
type Coordinator struct {
	mu           sync.RWMutex
	items        []models.MediaItem
	currentIndex int
	playMode     models.PlayMode
	isPlaying    bool
	isActive     bool

	store  Store
	mirror Mirror
}

// NewCoordinator creates a coordinator with default state (empty list,
// loop mode, inactive). store may not be nil; mirror may be nil when
// remote sync is disabled.
func NewCoordinator(store Store, mirror Mirror) *Coordinator {
	return &Coordinator{
		items:        []models.MediaItem{},
		currentIndex: 0,
		playMode:     models.PlayModeLoop,
		store:        store,
		mirror:       mirror,
	}
}

// Restore loads the persisted snapshot into the coordinator. Malformed or
// absent state yields defaults; a storage failure is surfaced so startup
// can decide what to do with it.
func (c *Coordinator) Restore(ctx context.Context) error {
	snap, err := c.store.Load(ctx)
	if err != nil {
		return err
	}
	c.ApplySnapshot(ctx, snap)
	return nil
}

// Add appends an item to the playlist. It returns false when the playlist
// is at capacity; the list is left unchanged and no error is raised, the
// caller surfaces the "playlist full" condition. Duplicate IDs are allowed.
func (c *Coordinator) Add(ctx context.Context, item models.MediaItem) bool {
	c.mu.Lock()
	defer c.mu.Unlock()

	if len(c.items) >= MaxItems {
		logger.Log.Debug().
			Str("media_id", item.ID.String()).
			Int("length", len(c.items)).
			Msg("Playlist full, add rejected")
		return false
	}

	c.items = append(c.items, item)
	c.persistLocked(ctx)
	return true
}

// Remove removes the first item matching id and returns whether a match
// was found. The cursor follows the removal: indices before the cursor
// shift it down, and a cursor past the new end is clamped.
func (c *Coordinator) Remove(ctx context.Context, id string) bool {
	c.mu.Lock()
	defer c.mu.Unlock()

	idx := -1
	for i, item := range c.items {
		if item.ID.String() == id {
			idx = i
			break
		}
	}
	if idx < 0 {
		return false
	}

	c.items = append(c.items[:idx], c.items[idx+1:]...)

	if idx < c.currentIndex {
		c.currentIndex--
	}
	c.clampCursorLocked()

	c.persistLocked(ctx)
	return true
}

// Reorder moves one element from fromIndex to toIndex. The cursor is NOT
// remapped to follow the moved item; it stays a positional pointer.
func (c *Coordinator) Reorder(ctx context.Context, fromIndex, toIndex int) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if fromIndex < 0 || fromIndex >= len(c.items) || toIndex < 0 || toIndex >= len(c.items) {
		return ErrIndexOutOfRange
	}
	if fromIndex == toIndex {
		return nil
	}

	moved := c.items[fromIndex]
	c.items = append(c.items[:fromIndex], c.items[fromIndex+1:]...)

	rest := append([]models.MediaItem{}, c.items[toIndex:]...)
	c.items = append(append(c.items[:toIndex], moved), rest...)

	c.persistLocked(ctx)
	return nil
}

// Advance moves the cursor forward one position. Loop mode wraps past the
// end; manual mode holds at the last item. Returns the new cursor.
func (c *Coordinator) Advance(ctx context.Context) (int, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if len(c.items) == 0 {
		return 0, ErrEmptyPlaylist
	}

	switch c.playMode {
	case models.PlayModeLoop:
		c.currentIndex = (c.currentIndex + 1) % len(c.items)
	default:
		if c.currentIndex < len(c.items)-1 {
			c.currentIndex++
		}
	}

	c.persistLocked(ctx)
	return c.currentIndex, nil
}

// Previous moves the cursor back one position. Loop mode wraps to the last
// item at the boundary; manual mode clamps at 0. Returns the new cursor.
func (c *Coordinator) Previous(ctx context.Context) (int, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if len(c.items) == 0 {
		return 0, ErrEmptyPlaylist
	}

	switch c.playMode {
	case models.PlayModeLoop:
		c.currentIndex = (c.currentIndex - 1 + len(c.items)) % len(c.items)
	default:
		if c.currentIndex > 0 {
			c.currentIndex--
		}
	}

	c.persistLocked(ctx)
	return c.currentIndex, nil
}

// Clear empties the playlist and resets cursor, playing and active flags
func (c *Coordinator) Clear(ctx context.Context) {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.items = []models.MediaItem{}
	c.currentIndex = 0
	c.isPlaying = false
	c.isActive = false

	c.persistLocked(ctx)
}

// OnItemEnded is invoked by the playback surface when the current item
// finishes. Loop mode advances (wrapping at the end); manual mode holds
// the cursor and waits for operator action.
func (c *Coordinator) OnItemEnded(ctx context.Context) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if len(c.items) == 0 || c.playMode != models.PlayModeLoop {
		return
	}

	c.currentIndex = (c.currentIndex + 1) % len(c.items)
	c.persistLocked(ctx)
}

// SetCurrentIndex moves the cursor to an explicit position
func (c *Coordinator) SetCurrentIndex(ctx context.Context, index int) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if index < 0 || index >= len(c.items) {
		return ErrIndexOutOfRange
	}
	c.currentIndex = index
	c.persistLocked(ctx)
	return nil
}

// SetPlayMode switches between loop and manual end-of-list handling
func (c *Coordinator) SetPlayMode(ctx context.Context, mode models.PlayMode) error {
	if !mode.IsValid() {
		return ErrInvalidPlayMode
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	c.playMode = mode
	c.persistLocked(ctx)
	return nil
}

// SetPlaying toggles the playing flag
func (c *Coordinator) SetPlaying(ctx context.Context, playing bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.isPlaying = playing
	c.persistLocked(ctx)
}

// SetActive marks the playlist as broadcasting. While active, mutations
// are mirrored to remote observers.
func (c *Coordinator) SetActive(ctx context.Context, active bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.isActive = active
	c.persistLocked(ctx)
}

// Len returns the number of items in the playlist
func (c *Coordinator) Len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.items)
}

// CurrentIndex returns the playback cursor
func (c *Coordinator) CurrentIndex() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.currentIndex
}

// IsActive reports whether the playlist is currently broadcasting
func (c *Coordinator) IsActive() bool {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.isActive
}

// CurrentItem returns the item under the cursor
func (c *Coordinator) CurrentItem() (models.MediaItem, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	if len(c.items) == 0 {
		return models.MediaItem{}, false
	}
	return c.items[c.currentIndex], true
}

// Snapshot returns a deep copy of the coordinator state
func (c *Coordinator) Snapshot() *models.PlaylistSnapshot {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.snapshotLocked()
}

// ApplySnapshot overwrites coordinator state wholesale from a snapshot.
// This is the single inbound path for store restores and remote sync
// updates; invariants are re-established here (capacity, cursor bounds)
// so a foreign snapshot can never corrupt local state.
func (c *Coordinator) ApplySnapshot(ctx context.Context, snap *models.PlaylistSnapshot) {
	if snap == nil {
		return
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	items := snap.Items
	if items == nil {
		items = []models.MediaItem{}
	}
	if len(items) > MaxItems {
		items = items[:MaxItems]
	}
	c.items = append([]models.MediaItem{}, items...)

	c.currentIndex = snap.CurrentIndex
	c.clampCursorLocked()

	if snap.PlayMode.IsValid() {
		c.playMode = snap.PlayMode
	} else {
		c.playMode = models.PlayModeLoop
	}
	c.isPlaying = snap.IsPlaying
	c.isActive = snap.IsActive

	if err := c.store.Save(ctx, c.snapshotLocked()); err != nil {
		logger.Log.Warn().Err(err).Msg("Failed to persist applied playlist snapshot")
	}
}

// clampCursorLocked re-establishes the cursor invariant: within
// [0, length-1] when non-empty, 0 when empty. Caller holds the lock.
func (c *Coordinator) clampCursorLocked() {
	if len(c.items) == 0 {
		c.currentIndex = 0
		return
	}
	if c.currentIndex >= len(c.items) {
		c.currentIndex = len(c.items) - 1
	}
	if c.currentIndex < 0 {
		c.currentIndex = 0
	}
}

// snapshotLocked builds a snapshot copy. Caller holds the lock.
func (c *Coordinator) snapshotLocked() *models.PlaylistSnapshot {
	items := make([]models.MediaItem, len(c.items))
	copy(items, c.items)
	return &models.PlaylistSnapshot{
		Items:        items,
		CurrentIndex: c.currentIndex,
		PlayMode:     c.playMode,
		IsPlaying:    c.isPlaying,
		IsActive:     c.isActive,
		UpdatedAt:    time.Now().UTC(),
	}
}

// persistLocked writes through to the store and, while active, the remote
// mirror. Storage failures are logged, never surfaced: the in-memory
// coordinator remains the authority. Caller holds the lock.
func (c *Coordinator) persistLocked(ctx context.Context) {
	snap := c.snapshotLocked()

	if err := c.store.Save(ctx, snap); err != nil {
		logger.Log.Warn().Err(err).Msg("Failed to persist playlist state")
	}

	if c.mirror != nil && c.isActive {
		if err := c.mirror.Publish(ctx, snap); err != nil {
			logger.Log.Warn().Err(err).Msg("Failed to mirror playlist state")
		}
	}
}
