package models

import (
	"sync"
	"time"

	"github.com/google/uuid"
)

// BroadcastOutputs holds the output locators returned by the broadcast
// collaborator once a stream is confirmed
type BroadcastOutputs struct {
	HLSURL     string `json:"hls_url"`
	PlayerURL  string `json:"player_url"`
	IframeCode string `json:"iframe_code"`
	IPHTTPURL  string `json:"ip_http_url"`
}

// BroadcastTelemetry holds derived stream metrics refreshed by status polling
type BroadcastTelemetry struct {
	Viewers         int    `json:"viewers"`
	Bitrate         string `json:"bitrate"`
	DurationElapsed int64  `json:"duration_elapsed"` // seconds
}

// BroadcastSession represents one activation of the antenna for a channel.
// It is kept in memory only; the status enum and its transition rules live
// in the broadcast package (status is stored as a string to avoid an
// import cycle).
type BroadcastSession struct {
	ID        uuid.UUID `json:"id"`
	ChannelID uuid.UUID `json:"channel_id"`
	StartedAt time.Time `json:"started_at"`

	Status     string             `json:"status"`
	StreamID   string             `json:"stream_id"`
	Simulation bool               `json:"simulation"`
	Outputs    BroadcastOutputs   `json:"outputs"`
	Telemetry  BroadcastTelemetry `json:"telemetry"`
	LastError  string             `json:"last_error"`

	opInFlight bool
	mu         sync.RWMutex
}

// NewBroadcastSession creates a new idle session for a channel
func NewBroadcastSession(channelID uuid.UUID) *BroadcastSession {
	return &BroadcastSession{
		ID:        uuid.New(),
		ChannelID: channelID,
		StartedAt: time.Now().UTC(),
		Status:    "idle",
	}
}

// GetStatus returns the current status (thread-safe)
func (s *BroadcastSession) GetStatus() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.Status
}

// SetStatus sets the status (thread-safe)
// Transition validation is done by the caller using broadcast.Status
func (s *BroadcastSession) SetStatus(status string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.Status = status
}

// TryBeginOp marks an operation as in flight. It returns false if another
// start/stop call is already running for this session; the caller must not
// proceed. The UI disables controls during starting/stopping, this flag is
// the server-side guard for the same rule.
func (s *BroadcastSession) TryBeginOp() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.opInFlight {
		return false
	}
	s.opInFlight = true
	return true
}

// EndOp clears the operation-in-flight flag
func (s *BroadcastSession) EndOp() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.opInFlight = false
}

// GetStreamID returns the collaborator-assigned stream ID (thread-safe)
func (s *BroadcastSession) GetStreamID() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.StreamID
}

// SetStream records the confirmed stream identity and output locators (thread-safe)
func (s *BroadcastSession) SetStream(streamID string, simulation bool, outputs BroadcastOutputs) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.StreamID = streamID
	s.Simulation = simulation
	s.Outputs = outputs
	s.StartedAt = time.Now().UTC()
}

// GetOutputs returns the output locators (thread-safe)
func (s *BroadcastSession) GetOutputs() BroadcastOutputs {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.Outputs
}

// TelemetryPatch carries polled metrics. Nil fields were omitted by the
// collaborator; non-nil fields overwrite, zeros included.
type TelemetryPatch struct {
	Viewers         *int
	Bitrate         *string
	DurationElapsed *int64
}

// MergeTelemetry merges polled metrics into the session without touching
// status (thread-safe). Omitted fields are skipped so a sparse status
// response never wipes known telemetry; a reported zero is applied, so a
// viewer count can drop back to zero.
func (s *BroadcastSession) MergeTelemetry(p TelemetryPatch) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if p.Viewers != nil {
		s.Telemetry.Viewers = *p.Viewers
	}
	if p.Bitrate != nil {
		s.Telemetry.Bitrate = *p.Bitrate
	}
	if p.DurationElapsed != nil {
		s.Telemetry.DurationElapsed = *p.DurationElapsed
	}
}

// GetTelemetry returns the current telemetry (thread-safe)
func (s *BroadcastSession) GetTelemetry() BroadcastTelemetry {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.Telemetry
}

// SetLastError records the most recent collaborator failure (thread-safe)
func (s *BroadcastSession) SetLastError(err error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err != nil {
		s.LastError = err.Error()
	} else {
		s.LastError = ""
	}
}

// GetLastError returns the most recent failure message (thread-safe)
func (s *BroadcastSession) GetLastError() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.LastError
}

// Reset returns the session to idle, clearing stream identity, outputs and
// telemetry (thread-safe). Used for the terminal stopped -> idle transition.
func (s *BroadcastSession) Reset() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.Status = "idle"
	s.StreamID = ""
	s.Simulation = false
	s.Outputs = BroadcastOutputs{}
	s.Telemetry = BroadcastTelemetry{}
	s.LastError = ""
}

// BroadcastSessionView is a point-in-time copy of a session. It carries
// no lock, so it is safe to return by value and serialize.
type BroadcastSessionView struct {
	ID         uuid.UUID          `json:"id"`
	ChannelID  uuid.UUID          `json:"channel_id"`
	StartedAt  time.Time          `json:"started_at"`
	Status     string             `json:"status"`
	StreamID   string             `json:"stream_id"`
	Simulation bool               `json:"simulation"`
	Outputs    BroadcastOutputs   `json:"outputs"`
	Telemetry  BroadcastTelemetry `json:"telemetry"`
	LastError  string             `json:"last_error"`
}

// Snapshot returns a copy of the session safe for JSON serialization (thread-safe)
func (s *BroadcastSession) Snapshot() BroadcastSessionView {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return BroadcastSessionView{
		ID:         s.ID,
		ChannelID:  s.ChannelID,
		StartedAt:  s.StartedAt,
		Status:     s.Status,
		StreamID:   s.StreamID,
		Simulation: s.Simulation,
		Outputs:    s.Outputs,
		Telemetry:  s.Telemetry,
		LastError:  s.LastError,
	}
}
