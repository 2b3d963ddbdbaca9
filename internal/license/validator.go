// Package license validates activation keys and license keys against
// external validators and persists the resulting entitlement records.
// Activation keys gate application access; license keys gate feature tiers.
package license

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/holosmedia/holos/internal/logger"
)

const (
	simulatedActivationTTL = 30 * 24 * time.Hour
	simulatedLicenseTTL    = 365 * 24 * time.Hour
	simulatedLicenseLevel  = "standard"
)

// ActivationResult is the validator's answer to an activation key check
type ActivationResult struct {
	Valid     bool      `json:"valid"`
	Message   string    `json:"message"`
	KeyID     string    `json:"keyId,omitempty"`
	ExpiresAt time.Time `json:"expiresAt,omitempty"`
}

// LicenseResult is the validator's answer to a license key check
type LicenseResult struct {
	Valid     bool      `json:"valid"`
	Message   string    `json:"message,omitempty"`
	Level     string    `json:"license_level,omitempty"`
	ExpiresAt time.Time `json:"expires_at,omitempty"`
}

// Validator checks keys against the hosted validation endpoints. With no
// endpoint configured it runs in simulation mode: any non-empty key is
// accepted with deterministic expiry, keeping the application testable
// without live infrastructure.
type Validator struct {
	activationBaseURL string
	licenseBaseURL    string
	httpClient        *http.Client
}

// NewValidator creates a validator. Empty base URLs enable simulation mode
// for the corresponding check.
func NewValidator(activationBaseURL, licenseBaseURL string, timeout time.Duration) *Validator {
	return &Validator{
		activationBaseURL: strings.TrimRight(activationBaseURL, "/"),
		licenseBaseURL:    strings.TrimRight(licenseBaseURL, "/"),
		httpClient:        &http.Client{Timeout: timeout},
	}
}

// ValidateActivationKey checks an activation key for this machine
func (v *Validator) ValidateActivationKey(ctx context.Context, key, machineID, ipAddress string) (*ActivationResult, error) {
	if key == "" {
		return nil, ErrKeyRequired
	}

	if v.activationBaseURL == "" {
		logger.Log.Info().
			Str("machine_id", machineID).
			Msg("Simulation mode: accepting activation key")
		return &ActivationResult{
			Valid:     true,
			Message:   "activation key accepted in simulation mode",
			KeyID:     "sim_" + machineID,
			ExpiresAt: time.Now().UTC().Add(simulatedActivationTTL),
		}, nil
	}

	payload := map[string]string{
		"key":       key,
		"machineId": machineID,
	}
	if ipAddress != "" {
		payload["ipAddress"] = ipAddress
	}

	var result ActivationResult
	if err := v.post(ctx, v.activationBaseURL+"/validate-activation-key", payload, &result); err != nil {
		return nil, err
	}
	return &result, nil
}

// ValidateLicense checks a license key
func (v *Validator) ValidateLicense(ctx context.Context, licenseKey string) (*LicenseResult, error) {
	if licenseKey == "" {
		return nil, ErrKeyRequired
	}

	if v.licenseBaseURL == "" {
		logger.Log.Info().Msg("Simulation mode: accepting license key")
		return &LicenseResult{
			Valid:     true,
			Level:     simulatedLicenseLevel,
			ExpiresAt: time.Now().UTC().Add(simulatedLicenseTTL),
		}, nil
	}

	payload := map[string]string{"license_key": licenseKey}

	var result LicenseResult
	if err := v.post(ctx, v.licenseBaseURL+"/validate-license", payload, &result); err != nil {
		return nil, err
	}
	return &result, nil
}

func (v *Validator) post(ctx context.Context, endpoint string, body, out interface{}) error {
	payload, err := json.Marshal(body)
	if err != nil {
		return fmt.Errorf("failed to encode request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, bytes.NewReader(payload))
	if err != nil {
		return fmt.Errorf("failed to build request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := v.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrValidatorUnreachable, err)
	}
	defer resp.Body.Close() // nolint:errcheck

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("%w: reading response: %v", ErrValidatorUnreachable, err)
	}

	// Validators answer 400 with a structured {valid:false} body; decode
	// before deciding how to fail
	if err := json.Unmarshal(raw, out); err != nil {
		if resp.StatusCode < 200 || resp.StatusCode >= 300 {
			return fmt.Errorf("%w: %d %s", ErrKeyRejected, resp.StatusCode, strings.TrimSpace(string(raw)))
		}
		return fmt.Errorf("malformed validator response: %w", err)
	}
	return nil
}
