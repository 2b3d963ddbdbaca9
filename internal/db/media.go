package db

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/holosmedia/holos/internal/models"
)

// MediaRepository handles database operations for media library items
type MediaRepository struct {
	db *DB
}

// NewMediaRepository creates a new media repository
func NewMediaRepository(db *DB) *MediaRepository {
	return &MediaRepository{db: db}
}

// Create inserts a new media item into the database
func (r *MediaRepository) Create(ctx context.Context, item *models.MediaItem) error {
	result := r.db.WithContext(ctx).Create(item)
	if result.Error != nil {
		return fmt.Errorf("failed to create media item: %w", MapGormError(result.Error))
	}
	return nil
}

// GetByID retrieves a media item by its UUID
func (r *MediaRepository) GetByID(ctx context.Context, id uuid.UUID) (*models.MediaItem, error) {
	var item models.MediaItem
	result := r.db.WithContext(ctx).Where("id = ?", id.String()).First(&item)
	if result.Error != nil {
		return nil, MapGormError(result.Error)
	}
	return &item, nil
}

// GetByFilePath retrieves a media item by its storage locator
func (r *MediaRepository) GetByFilePath(ctx context.Context, filePath string) (*models.MediaItem, error) {
	var item models.MediaItem
	result := r.db.WithContext(ctx).Where("file_path = ?", filePath).First(&item)
	if result.Error != nil {
		return nil, MapGormError(result.Error)
	}
	return &item, nil
}

// List retrieves all media items ordered by creation time, newest first
func (r *MediaRepository) List(ctx context.Context) ([]*models.MediaItem, error) {
	var items []*models.MediaItem
	result := r.db.WithContext(ctx).Order("created_at DESC").Find(&items)
	if result.Error != nil {
		return nil, fmt.Errorf("failed to list media items: %w", MapGormError(result.Error))
	}
	return items, nil
}

// ExistsByIDs checks which of the given media IDs exist, in a single query
func (r *MediaRepository) ExistsByIDs(ctx context.Context, ids []uuid.UUID) (map[uuid.UUID]bool, error) {
	idStrings := make([]string, len(ids))
	for i, id := range ids {
		idStrings[i] = id.String()
	}

	var found []models.MediaItem
	result := r.db.WithContext(ctx).Select("id").Where("id IN ?", idStrings).Find(&found)
	if result.Error != nil {
		return nil, fmt.Errorf("failed to check media existence: %w", MapGormError(result.Error))
	}

	exists := make(map[uuid.UUID]bool, len(ids))
	for _, id := range ids {
		exists[id] = false
	}
	for _, item := range found {
		exists[item.ID] = true
	}
	return exists, nil
}

// Update persists metadata changes to an existing media item. Columns
// are written explicitly so nil values are not skipped as zero values.
func (r *MediaRepository) Update(ctx context.Context, item *models.MediaItem) error {
	result := r.db.WithContext(ctx).Model(&models.MediaItem{}).Where("id = ?", item.ID.String()).
		Updates(map[string]interface{}{
			"title":         item.Title,
			"duration":      item.Duration,
			"thumbnail_url": item.ThumbnailURL,
		})
	if result.Error != nil {
		return fmt.Errorf("failed to update media item: %w", MapGormError(result.Error))
	}
	if result.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}

// Delete removes a media item by its UUID
func (r *MediaRepository) Delete(ctx context.Context, id uuid.UUID) error {
	result := r.db.WithContext(ctx).Where("id = ?", id.String()).Delete(&models.MediaItem{})
	if result.Error != nil {
		return fmt.Errorf("failed to delete media item: %w", MapGormError(result.Error))
	}
	if result.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}
