package models

import (
	"time"
)

// MachineIdentity is the singleton row holding this installation's
// stable machine identifier
type MachineIdentity struct {
	ID        int       `json:"id" gorm:"type:integer;primaryKey;column:id"`
	MachineID string    `json:"machine_id" gorm:"type:text;not null;column:machine_id"`
	CreatedAt time.Time `json:"created_at" gorm:"type:datetime;default:CURRENT_TIMESTAMP;column:created_at"`
}

// TableName overrides the default table name
func (MachineIdentity) TableName() string {
	return "machine_identity"
}

// ActivationRecord is the singleton row holding the validated activation key.
// Expiry is checked on every load; expired records are discarded.
type ActivationRecord struct {
	ID          int       `json:"id" gorm:"type:integer;primaryKey;column:id"`
	Key         string    `json:"key" gorm:"type:text;not null;column:key"`
	KeyID       string    `json:"key_id" gorm:"type:text;column:key_id"`
	MachineID   string    `json:"machine_id" gorm:"type:text;column:machine_id"`
	ExpiresAt   time.Time `json:"expires_at" gorm:"type:datetime;not null;column:expires_at"`
	ActivatedAt time.Time `json:"activated_at" gorm:"type:datetime;default:CURRENT_TIMESTAMP;column:activated_at"`
}

// TableName overrides the default table name
func (ActivationRecord) TableName() string {
	return "activation_records"
}

// IsExpired reports whether the activation has lapsed
func (r *ActivationRecord) IsExpired(now time.Time) bool {
	return now.After(r.ExpiresAt)
}

// LicenseRecord is the singleton row holding the validated license key.
// Licenses gate feature tiers; activation keys gate application access.
type LicenseRecord struct {
	ID          int       `json:"id" gorm:"type:integer;primaryKey;column:id"`
	LicenseKey  string    `json:"license_key" gorm:"type:text;not null;column:license_key"`
	Level       string    `json:"level" gorm:"type:text;column:level"`
	ExpiresAt   time.Time `json:"expires_at" gorm:"type:datetime;not null;column:expires_at"`
	ValidatedAt time.Time `json:"validated_at" gorm:"type:datetime;default:CURRENT_TIMESTAMP;column:validated_at"`
}

// TableName overrides the default table name
func (LicenseRecord) TableName() string {
	return "license_records"
}

// IsExpired reports whether the license has lapsed
func (r *LicenseRecord) IsExpired(now time.Time) bool {
	return now.After(r.ExpiresAt)
}
