package models

import (
	"time"

	"github.com/google/uuid"
)

// PlayMode controls what happens when playback reaches the end of the playlist
type PlayMode string

// Play mode constants
const (
	// PlayModeLoop wraps back to the first item on item end
	PlayModeLoop PlayMode = "loop"
	// PlayModeManual holds at the last item until the operator advances
	PlayModeManual PlayMode = "manual"
)

// IsValid checks if the play mode is a known value
func (m PlayMode) IsValid() bool {
	return m == PlayModeLoop || m == PlayModeManual
}

// PlaylistSnapshot is the serialized form of the live playlist state.
// It is what the persistent store writes through and what the sync
// bridge mirrors to remote observers.
type PlaylistSnapshot struct {
	Items        []MediaItem `json:"items"`
	CurrentIndex int         `json:"current_index"`
	PlayMode     PlayMode    `json:"play_mode"`
	IsPlaying    bool        `json:"is_playing"`
	IsActive     bool        `json:"is_active"`
	UpdatedAt    time.Time   `json:"updated_at"`
	// Origin identifies the process that produced the snapshot so the
	// sync bridge can skip its own publications.
	Origin string `json:"origin,omitempty"`
}

// DefaultPlaylistSnapshot returns the initial playlist state: empty list,
// loop mode, nothing playing, not broadcasting.
func DefaultPlaylistSnapshot() *PlaylistSnapshot {
	return &PlaylistSnapshot{
		Items:        []MediaItem{},
		CurrentIndex: 0,
		PlayMode:     PlayModeLoop,
		IsPlaying:    false,
		IsActive:     false,
		UpdatedAt:    time.Now().UTC(),
	}
}

// PlaylistStateRow is the singleton database row holding the serialized
// live playlist snapshot
type PlaylistStateRow struct {
	ID        int       `json:"id" gorm:"type:integer;primaryKey;column:id"`
	State     string    `json:"state" gorm:"type:text;not null;column:state"`
	UpdatedAt time.Time `json:"updated_at" gorm:"type:datetime;default:CURRENT_TIMESTAMP;column:updated_at"`
}

// TableName overrides the default table name
func (PlaylistStateRow) TableName() string {
	return "playlist_state"
}

// SavedPlaylist is a named, timestamped snapshot of a playlist persisted
// independently of the live state. Immutable apart from explicit delete.
type SavedPlaylist struct {
	ID        uuid.UUID `json:"id" gorm:"type:text;primaryKey;column:id"`
	Name      string    `json:"name" gorm:"type:text;not null;column:name" validate:"required"`
	Items     string    `json:"-" gorm:"type:text;not null;column:items"` // JSON-encoded []MediaItem
	ItemCount int       `json:"item_count" gorm:"type:integer;not null;column:item_count"`
	CreatedAt time.Time `json:"created_at" gorm:"type:datetime;default:CURRENT_TIMESTAMP;column:created_at"`
}

// NewSavedPlaylist creates a new SavedPlaylist with generated UUID and timestamp
func NewSavedPlaylist(name, encodedItems string, itemCount int) *SavedPlaylist {
	return &SavedPlaylist{
		ID:        uuid.New(),
		Name:      name,
		Items:     encodedItems,
		ItemCount: itemCount,
		CreatedAt: time.Now().UTC(),
	}
}
