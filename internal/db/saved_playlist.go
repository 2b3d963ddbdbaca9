package db

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/holosmedia/holos/internal/models"
)

// SavedPlaylistRepository handles database operations for named playlist snapshots
type SavedPlaylistRepository struct {
	db *DB
}

// NewSavedPlaylistRepository creates a new saved playlist repository
func NewSavedPlaylistRepository(db *DB) *SavedPlaylistRepository {
	return &SavedPlaylistRepository{db: db}
}

// Create inserts a new saved playlist
func (r *SavedPlaylistRepository) Create(ctx context.Context, saved *models.SavedPlaylist) error {
	result := r.db.WithContext(ctx).Create(saved)
	if result.Error != nil {
		return fmt.Errorf("failed to create saved playlist: %w", MapGormError(result.Error))
	}
	return nil
}

// GetByID retrieves a saved playlist by its UUID
func (r *SavedPlaylistRepository) GetByID(ctx context.Context, id uuid.UUID) (*models.SavedPlaylist, error) {
	var saved models.SavedPlaylist
	result := r.db.WithContext(ctx).Where("id = ?", id.String()).First(&saved)
	if result.Error != nil {
		return nil, MapGormError(result.Error)
	}
	return &saved, nil
}

// List retrieves all saved playlists, newest first
func (r *SavedPlaylistRepository) List(ctx context.Context) ([]*models.SavedPlaylist, error) {
	var saved []*models.SavedPlaylist
	result := r.db.WithContext(ctx).Order("created_at DESC").Find(&saved)
	if result.Error != nil {
		return nil, fmt.Errorf("failed to list saved playlists: %w", MapGormError(result.Error))
	}
	return saved, nil
}

// Delete removes a saved playlist by its UUID
func (r *SavedPlaylistRepository) Delete(ctx context.Context, id uuid.UUID) error {
	result := r.db.WithContext(ctx).Where("id = ?", id.String()).Delete(&models.SavedPlaylist{})
	if result.Error != nil {
		return fmt.Errorf("failed to delete saved playlist: %w", MapGormError(result.Error))
	}
	if result.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}
