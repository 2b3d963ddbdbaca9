package models

import (
	"time"

	"github.com/google/uuid"
)

// Channel represents a broadcast channel entity
type Channel struct {
	ID        uuid.UUID `json:"id" gorm:"type:text;primaryKey;column:id"`
	Name      string    `json:"name" gorm:"type:text;not null;uniqueIndex;column:name" validate:"required,min=1,max=255"`
	LogoURL   *string   `json:"logo_url,omitempty" gorm:"type:text;column:logo_url"`
	Loop      bool      `json:"loop" gorm:"type:integer;not null;default:0;column:loop"`
	CreatedAt time.Time `json:"created_at" gorm:"type:datetime;default:CURRENT_TIMESTAMP;column:created_at"`
	UpdatedAt time.Time `json:"updated_at" gorm:"type:datetime;default:CURRENT_TIMESTAMP;column:updated_at"`
}

// NewChannel creates a new Channel with generated UUID and timestamps
func NewChannel(name string, loop bool) *Channel {
	now := time.Now().UTC()
	return &Channel{
		ID:        uuid.New(),
		Name:      name,
		Loop:      loop,
		CreatedAt: now,
		UpdatedAt: now,
	}
}
