package license

import (
	"context"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/holosmedia/holos/internal/db"
	"github.com/holosmedia/holos/internal/logger"
	"github.com/holosmedia/holos/internal/models"
)

// Service coordinates key validation with persisted entitlement records
// and issues session tokens after successful activation.
type Service struct {
	repos     *db.Repositories
	validator *Validator
	jwtSecret []byte
	tokenTTL  time.Duration
}

// NewService creates a new entitlement service
func NewService(repos *db.Repositories, validator *Validator, jwtSecret string, tokenTTL time.Duration) *Service {
	return &Service{
		repos:     repos,
		validator: validator,
		jwtSecret: []byte(jwtSecret),
		tokenTTL:  tokenTTL,
	}
}

// MachineID returns this installation's stable machine identifier
func (s *Service) MachineID(ctx context.Context) (string, error) {
	return s.repos.Entitlements.MachineID(ctx)
}

// Activate validates an activation key for this machine and persists the
// record. A session token is returned on success.
func (s *Service) Activate(ctx context.Context, key, ipAddress string) (*ActivationResult, string, error) {
	machineID, err := s.repos.Entitlements.MachineID(ctx)
	if err != nil {
		return nil, "", fmt.Errorf("failed to activate: %w", err)
	}

	result, err := s.validator.ValidateActivationKey(ctx, key, machineID, ipAddress)
	if err != nil {
		return nil, "", fmt.Errorf("failed to activate: %w", err)
	}
	if !result.Valid {
		logger.Log.Warn().
			Str("machine_id", machineID).
			Str("message", result.Message).
			Msg("Activation key rejected")
		return result, "", fmt.Errorf("failed to activate: %w: %s", ErrKeyRejected, result.Message)
	}

	record := &models.ActivationRecord{
		Key:         key,
		KeyID:       result.KeyID,
		MachineID:   machineID,
		ExpiresAt:   result.ExpiresAt.UTC(),
		ActivatedAt: time.Now().UTC(),
	}
	if err := s.repos.Entitlements.SaveActivation(ctx, record); err != nil {
		return nil, "", fmt.Errorf("failed to activate: %w", err)
	}

	token, err := s.issueToken(machineID, result.ExpiresAt)
	if err != nil {
		return nil, "", fmt.Errorf("failed to activate: %w", err)
	}

	logger.Log.Info().
		Str("machine_id", machineID).
		Str("key_id", result.KeyID).
		Time("expires_at", result.ExpiresAt).
		Msg("Activation key validated")

	return result, token, nil
}

// ValidateLicense validates a license key and persists the record
func (s *Service) ValidateLicense(ctx context.Context, licenseKey string) (*LicenseResult, error) {
	result, err := s.validator.ValidateLicense(ctx, licenseKey)
	if err != nil {
		return nil, fmt.Errorf("failed to validate license: %w", err)
	}
	if !result.Valid {
		logger.Log.Warn().
			Str("message", result.Message).
			Msg("License key rejected")
		return result, fmt.Errorf("failed to validate license: %w: %s", ErrKeyRejected, result.Message)
	}

	record := &models.LicenseRecord{
		LicenseKey:  licenseKey,
		Level:       result.Level,
		ExpiresAt:   result.ExpiresAt.UTC(),
		ValidatedAt: time.Now().UTC(),
	}
	if err := s.repos.Entitlements.SaveLicense(ctx, record); err != nil {
		return nil, fmt.Errorf("failed to validate license: %w", err)
	}

	logger.Log.Info().
		Str("level", result.Level).
		Time("expires_at", result.ExpiresAt).
		Msg("License key validated")

	return result, nil
}

// Status reports the stored entitlement state. Expired records have
// already been discarded by the repository on load.
func (s *Service) Status(ctx context.Context) (*models.ActivationRecord, *models.LicenseRecord, error) {
	activation, err := s.repos.Entitlements.LoadActivation(ctx)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to load activation: %w", err)
	}
	lic, err := s.repos.Entitlements.LoadLicense(ctx)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to load license: %w", err)
	}
	return activation, lic, nil
}

// issueToken signs a session JWT bound to the machine identity. The token
// never outlives the activation itself.
func (s *Service) issueToken(machineID string, activationExpiry time.Time) (string, error) {
	now := time.Now().UTC()
	expiry := now.Add(s.tokenTTL)
	if activationExpiry.Before(expiry) {
		expiry = activationExpiry
	}

	claims := jwt.RegisteredClaims{
		Subject:   machineID,
		IssuedAt:  jwt.NewNumericDate(now),
		ExpiresAt: jwt.NewNumericDate(expiry),
		Issuer:    "holos",
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString(s.jwtSecret)
	if err != nil {
		return "", fmt.Errorf("failed to sign session token: %w", err)
	}
	return signed, nil
}

// ParseToken validates a session token and returns the machine ID it is
// bound to
func (s *Service) ParseToken(tokenString string) (string, error) {
	token, err := jwt.ParseWithClaims(tokenString, &jwt.RegisteredClaims{}, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", t.Header["alg"])
		}
		return s.jwtSecret, nil
	})
	if err != nil {
		return "", fmt.Errorf("invalid session token: %w", err)
	}

	claims, ok := token.Claims.(*jwt.RegisteredClaims)
	if !ok || !token.Valid {
		return "", fmt.Errorf("invalid session token")
	}
	return claims.Subject, nil
}
