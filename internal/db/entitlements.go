package db

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/holosmedia/holos/internal/logger"
	"github.com/holosmedia/holos/internal/models"
)

// EntitlementRepository persists the machine identity and the validated
// activation/license records. All three are singleton rows; expiry is
// checked on every load and expired records are discarded.
type EntitlementRepository struct {
	db *DB
}

// NewEntitlementRepository creates a new entitlement repository
func NewEntitlementRepository(db *DB) *EntitlementRepository {
	return &EntitlementRepository{db: db}
}

// MachineID returns the stable machine identifier, generating and
// persisting one on first use
func (r *EntitlementRepository) MachineID(ctx context.Context) (string, error) {
	var identity models.MachineIdentity
	result := r.db.WithContext(ctx).Where("id = ?", 1).First(&identity)
	if result.Error == nil {
		return identity.MachineID, nil
	}
	if !errors.Is(MapGormError(result.Error), ErrNotFound) {
		return "", MapGormError(result.Error)
	}

	identity = models.MachineIdentity{
		ID:        1,
		MachineID: uuid.NewString(),
		CreatedAt: time.Now().UTC(),
	}
	if err := r.db.WithContext(ctx).Create(&identity).Error; err != nil {
		return "", fmt.Errorf("failed to persist machine identity: %w", MapGormError(err))
	}

	logger.Log.Info().
		Str("machine_id", identity.MachineID).
		Msg("Generated new machine identity")

	return identity.MachineID, nil
}

// SaveActivation overwrites the stored activation record
func (r *EntitlementRepository) SaveActivation(ctx context.Context, record *models.ActivationRecord) error {
	record.ID = 1
	if err := r.db.WithContext(ctx).Save(record).Error; err != nil {
		return fmt.Errorf("failed to save activation record: %w", MapGormError(err))
	}
	return nil
}

// LoadActivation returns the stored activation record, or nil if none
// exists or the stored record has expired. Expired records are deleted.
func (r *EntitlementRepository) LoadActivation(ctx context.Context) (*models.ActivationRecord, error) {
	var record models.ActivationRecord
	result := r.db.WithContext(ctx).Where("id = ?", 1).First(&record)
	if result.Error != nil {
		if errors.Is(MapGormError(result.Error), ErrNotFound) {
			return nil, nil
		}
		return nil, MapGormError(result.Error)
	}

	if record.IsExpired(time.Now().UTC()) {
		logger.Log.Warn().
			Time("expires_at", record.ExpiresAt).
			Msg("Stored activation key has expired, discarding")
		if err := r.DeleteActivation(ctx); err != nil {
			return nil, err
		}
		return nil, nil
	}

	return &record, nil
}

// DeleteActivation removes the stored activation record
func (r *EntitlementRepository) DeleteActivation(ctx context.Context) error {
	result := r.db.WithContext(ctx).Where("id = ?", 1).Delete(&models.ActivationRecord{})
	if result.Error != nil {
		return fmt.Errorf("failed to delete activation record: %w", MapGormError(result.Error))
	}
	return nil
}

// SaveLicense overwrites the stored license record
func (r *EntitlementRepository) SaveLicense(ctx context.Context, record *models.LicenseRecord) error {
	record.ID = 1
	if err := r.db.WithContext(ctx).Save(record).Error; err != nil {
		return fmt.Errorf("failed to save license record: %w", MapGormError(err))
	}
	return nil
}

// LoadLicense returns the stored license record, or nil if none exists or
// the stored record has expired. Expired records are deleted.
func (r *EntitlementRepository) LoadLicense(ctx context.Context) (*models.LicenseRecord, error) {
	var record models.LicenseRecord
	result := r.db.WithContext(ctx).Where("id = ?", 1).First(&record)
	if result.Error != nil {
		if errors.Is(MapGormError(result.Error), ErrNotFound) {
			return nil, nil
		}
		return nil, MapGormError(result.Error)
	}

	if record.IsExpired(time.Now().UTC()) {
		logger.Log.Warn().
			Time("expires_at", record.ExpiresAt).
			Msg("Stored license has expired, discarding")
		if err := r.DeleteLicense(ctx); err != nil {
			return nil, err
		}
		return nil, nil
	}

	return &record, nil
}

// DeleteLicense removes the stored license record
func (r *EntitlementRepository) DeleteLicense(ctx context.Context) error {
	result := r.db.WithContext(ctx).Where("id = ?", 1).Delete(&models.LicenseRecord{})
	if result.Error != nil {
		return fmt.Errorf("failed to delete license record: %w", MapGormError(result.Error))
	}
	return nil
}
