package playlist

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/google/uuid"
	"github.com/holosmedia/holos/internal/db"
	"github.com/holosmedia/holos/internal/logger"
	"github.com/holosmedia/holos/internal/models"
)

// SavedService manages the independent collection of named playlist
// snapshots. Saved playlists are immutable once created; they are only
// listed, restored into the live playlist, or deleted.
type SavedService struct {
	repos *db.Repositories
	coord *Coordinator
}

// NewSavedService creates a new saved playlist service
func NewSavedService(repos *db.Repositories, coord *Coordinator) *SavedService {
	return &SavedService{repos: repos, coord: coord}
}

// SaveNamed snapshots the live playlist under the given name.
// Saving an empty playlist is rejected.
func (s *SavedService) SaveNamed(ctx context.Context, name string) (*models.SavedPlaylist, error) {
	snap := s.coord.Snapshot()
	if len(snap.Items) == 0 {
		return nil, fmt.Errorf("failed to save playlist: %w", ErrEmptyPlaylist)
	}

	encoded, err := json.Marshal(snap.Items)
	if err != nil {
		return nil, fmt.Errorf("failed to encode playlist items: %w", err)
	}

	saved := models.NewSavedPlaylist(name, string(encoded), len(snap.Items))
	if err := s.repos.SavedPlaylists.Create(ctx, saved); err != nil {
		logger.Log.Error().
			Err(err).
			Str("name", name).
			Msg("Failed to save named playlist")
		return nil, fmt.Errorf("failed to save playlist: %w", err)
	}

	logger.Log.Info().
		Str("saved_playlist_id", saved.ID.String()).
		Str("name", name).
		Int("item_count", saved.ItemCount).
		Msg("Playlist saved")

	return saved, nil
}

// ListSaved returns all saved playlists, newest first
func (s *SavedService) ListSaved(ctx context.Context) ([]*models.SavedPlaylist, error) {
	saved, err := s.repos.SavedPlaylists.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list saved playlists: %w", err)
	}
	return saved, nil
}

// DeleteNamed removes a saved playlist by ID
func (s *SavedService) DeleteNamed(ctx context.Context, id uuid.UUID) error {
	if err := s.repos.SavedPlaylists.Delete(ctx, id); err != nil {
		return fmt.Errorf("failed to delete saved playlist: %w", err)
	}

	logger.Log.Info().
		Str("saved_playlist_id", id.String()).
		Msg("Saved playlist deleted")

	return nil
}

// Restore replaces the live playlist with the items of a saved playlist.
// The cursor resets to 0 and playback flags are cleared.
func (s *SavedService) Restore(ctx context.Context, id uuid.UUID) error {
	saved, err := s.repos.SavedPlaylists.GetByID(ctx, id)
	if err != nil {
		return fmt.Errorf("failed to restore saved playlist: %w", err)
	}

	var items []models.MediaItem
	if err := json.Unmarshal([]byte(saved.Items), &items); err != nil {
		return fmt.Errorf("failed to decode saved playlist items: %w", err)
	}

	snap := models.DefaultPlaylistSnapshot()
	snap.Items = items
	snap.PlayMode = s.coord.Snapshot().PlayMode
	s.coord.ApplySnapshot(ctx, snap)

	logger.Log.Info().
		Str("saved_playlist_id", id.String()).
		Int("item_count", len(items)).
		Msg("Saved playlist restored into live playlist")

	return nil
}
