package models

import (
	"fmt"
	"time"

	"github.com/google/uuid"
)

// MediaItem represents one piece of content in the media library.
// The file itself lives in external storage; FilePath is an opaque locator.
// Items are immutable once registered apart from display metadata.
type MediaItem struct {
	ID           uuid.UUID `json:"id" gorm:"type:text;primaryKey;column:id"`
	Title        string    `json:"title" gorm:"type:text;not null;column:title" validate:"required"`
	Duration     *int64    `json:"duration" gorm:"type:integer;column:duration"` // seconds, unknown until probed upstream
	FilePath     string    `json:"file_path" gorm:"type:text;not null;uniqueIndex;column:file_path" validate:"required"`
	ThumbnailURL *string   `json:"thumbnail_url,omitempty" gorm:"type:text;column:thumbnail_url"`
	CreatedAt    time.Time `json:"created_at" gorm:"type:datetime;default:CURRENT_TIMESTAMP;column:created_at"`
}

// TableName overrides the default table name
func (MediaItem) TableName() string {
	return "media_items"
}

// NewMediaItem creates a new MediaItem with generated UUID and timestamp
func NewMediaItem(title, filePath string) *MediaItem {
	return &MediaItem{
		ID:        uuid.New(),
		Title:     title,
		FilePath:  filePath,
		CreatedAt: time.Now().UTC(),
	}
}

// DurationString returns duration in HH:MM:SS format, or "--:--:--" when unknown
func (m *MediaItem) DurationString() string {
	if m.Duration == nil {
		return "--:--:--"
	}
	d := *m.Duration
	return fmt.Sprintf("%02d:%02d:%02d", d/3600, (d%3600)/60, d%60)
}
