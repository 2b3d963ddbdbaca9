package db

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/holosmedia/holos/internal/logger"
	"github.com/holosmedia/holos/internal/models"
	"gorm.io/gorm"
)

// PlaylistStateRepository persists the live playlist snapshot.
// It is a singleton table with only one row; every coordinator mutation
// overwrites it (last write wins).
type PlaylistStateRepository struct {
	db *DB
}

// NewPlaylistStateRepository creates a new playlist state repository
func NewPlaylistStateRepository(db *DB) *PlaylistStateRepository {
	return &PlaylistStateRepository{db: db}
}

// Load reads the persisted snapshot. An absent or malformed blob yields
// defaults (empty list, loop mode, inactive); malformed data is discarded,
// not repaired, and never surfaced to the caller.
func (r *PlaylistStateRepository) Load(ctx context.Context) (*models.PlaylistSnapshot, error) {
	var row models.PlaylistStateRow
	result := r.db.WithContext(ctx).Where("id = ?", 1).First(&row)
	if result.Error != nil {
		if errors.Is(MapGormError(result.Error), ErrNotFound) {
			return models.DefaultPlaylistSnapshot(), nil
		}
		return nil, MapGormError(result.Error)
	}

	var snap models.PlaylistSnapshot
	if err := json.Unmarshal([]byte(row.State), &snap); err != nil {
		logger.Log.Warn().
			Err(err).
			Msg("Discarding malformed persisted playlist state, using defaults")
		return models.DefaultPlaylistSnapshot(), nil
	}
	if snap.Items == nil {
		snap.Items = []models.MediaItem{}
	}
	return &snap, nil
}

// Save overwrites the persisted snapshot (upsert on the singleton row).
// The update-then-insert runs inside a transaction so two concurrent
// saves cannot both take the insert path.
func (r *PlaylistStateRepository) Save(ctx context.Context, snap *models.PlaylistSnapshot) error {
	encoded, err := json.Marshal(snap)
	if err != nil {
		return fmt.Errorf("failed to encode playlist state: %w", err)
	}

	now := time.Now().UTC()
	row := models.PlaylistStateRow{ID: 1, State: string(encoded), UpdatedAt: now}

	err = r.db.WithTransaction(ctx, func(tx *gorm.DB) error {
		result := tx.Model(&models.PlaylistStateRow{}).Where("id = ?", 1).
			Updates(map[string]interface{}{"state": row.State, "updated_at": now})
		if result.Error != nil {
			return MapGormError(result.Error)
		}
		if result.RowsAffected == 0 {
			if err := tx.Create(&row).Error; err != nil {
				return MapGormError(err)
			}
		}
		return nil
	})
	if err != nil {
		return fmt.Errorf("failed to save playlist state: %w", err)
	}
	return nil
}
