package broadcast

import (
	"context"
	"fmt"
	"net"
	"net/url"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/holosmedia/holos/internal/logger"
	"github.com/holosmedia/holos/internal/models"
	"github.com/holosmedia/holos/internal/playlist"
)

// Manager owns broadcast sessions per channel and drives their status
// machine against the collaborator. Sessions live in memory only.
type Manager struct {
	client       Collaborator
	coord        *playlist.Coordinator
	pollInterval time.Duration

	mu       sync.RWMutex
	sessions map[string]*models.BroadcastSession
	pollers  map[string]chan struct{}
	stopped  bool
}

// NewManager creates a broadcast manager
func NewManager(client Collaborator, coord *playlist.Coordinator, pollInterval time.Duration) *Manager {
	return &Manager{
		client:       client,
		coord:        coord,
		pollInterval: pollInterval,
		sessions:     make(map[string]*models.BroadcastSession),
		pollers:      make(map[string]chan struct{}),
	}
}

// GetSession returns the session for a channel, if one exists
func (m *Manager) GetSession(channelID uuid.UUID) (*models.BroadcastSession, bool) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	session, ok := m.sessions[channelID.String()]
	return session, ok
}

func (m *Manager) getOrCreateSession(channelID uuid.UUID) *models.BroadcastSession {
	m.mu.Lock()
	defer m.mu.Unlock()
	if session, ok := m.sessions[channelID.String()]; ok {
		return session
	}
	session := models.NewBroadcastSession(channelID)
	m.sessions[channelID.String()] = session
	return session
}

// Activate starts a broadcast for the channel from the live playlist.
// Preconditions: playlist non-empty and no other start/stop in flight;
// neither failure performs a network call. On collaborator failure the
// session reverts to idle and the reason is surfaced; no automatic retry.
func (m *Manager) Activate(ctx context.Context, channel *models.Channel) (*models.BroadcastSession, error) {
	session := m.getOrCreateSession(channel.ID)

	if !session.TryBeginOp() {
		return nil, ErrOperationInFlight
	}
	defer session.EndOp()

	snap := m.coord.Snapshot()
	if len(snap.Items) == 0 {
		logger.Log.Warn().
			Str("channel_id", channel.ID.String()).
			Msg("Activate rejected: empty playlist")
		return nil, fmt.Errorf("failed to activate broadcast: %w", ErrEmptyPlaylist)
	}

	current := Status(session.GetStatus())
	if current == StatusStopped {
		// Terminal state resets before a fresh activation
		session.Reset()
		current = StatusIdle
	}
	if !current.CanTransitionTo(StatusStarting) {
		return nil, fmt.Errorf("failed to activate broadcast: %w: %s -> %s", ErrInvalidTransition, current, StatusStarting)
	}
	session.SetStatus(StatusStarting.String())

	mediaURLs := make([]string, len(snap.Items))
	for i, item := range snap.Items {
		mediaURLs[i] = item.FilePath
	}

	resp, err := m.client.Start(ctx, StartRequest{
		ChannelID: channel.ID.String(),
		Source:    SourcePlaylist,
		MediaURLs: mediaURLs,
		Loop:      snap.PlayMode == models.PlayModeLoop,
	})
	if err != nil {
		session.SetStatus(StatusIdle.String())
		session.SetLastError(err)
		logger.Log.Error().
			Err(err).
			Str("channel_id", channel.ID.String()).
			Msg("Failed to start broadcast")
		return nil, fmt.Errorf("failed to activate broadcast: %w", err)
	}

	session.SetStream(resp.StreamID, resp.Simulation, models.BroadcastOutputs{
		HLSURL:     resp.HLSURL,
		PlayerURL:  resp.PlayerURL,
		IframeCode: resp.IframeCode,
		IPHTTPURL:  resp.IPHTTPURL,
	})
	session.MergeTelemetry(models.TelemetryPatch{Viewers: &resp.Viewers, Bitrate: &resp.Bitrate})
	session.SetLastError(nil)
	session.SetStatus(StatusLive.String())

	m.coord.SetActive(ctx, true)
	m.startPolling(channel.ID)

	logger.Log.Info().
		Str("channel_id", channel.ID.String()).
		Str("stream_id", resp.StreamID).
		Bool("simulation", resp.Simulation).
		Int("item_count", len(snap.Items)).
		Msg("Broadcast is live")

	return session, nil
}

// Deactivate stops a live broadcast. On collaborator failure the session
// reverts to live so the operator can retry.
func (m *Manager) Deactivate(ctx context.Context, channelID uuid.UUID, reason string) (*models.BroadcastSession, error) {
	session, ok := m.GetSession(channelID)
	if !ok || Status(session.GetStatus()) != StatusLive {
		return nil, fmt.Errorf("failed to deactivate broadcast: %w", ErrNotLive)
	}

	if !session.TryBeginOp() {
		return nil, ErrOperationInFlight
	}
	defer session.EndOp()

	session.SetStatus(StatusStopping.String())

	_, err := m.client.Stop(ctx, StopRequest{
		ChannelID: channelID.String(),
		StreamID:  session.GetStreamID(),
		Reason:    reason,
	})
	if err != nil {
		session.SetStatus(StatusLive.String())
		session.SetLastError(err)
		logger.Log.Error().
			Err(err).
			Str("channel_id", channelID.String()).
			Msg("Failed to stop broadcast")
		return nil, fmt.Errorf("failed to deactivate broadcast: %w", err)
	}

	session.SetStatus(StatusStopped.String())
	m.stopPolling(channelID)
	m.coord.SetActive(ctx, false)

	logger.Log.Info().
		Str("channel_id", channelID.String()).
		Str("stream_id", session.GetStreamID()).
		Msg("Broadcast stopped")

	return session, nil
}

// PollStatus fetches collaborator status for a live session and merges
// telemetry. Status only changes if the collaborator reports a terminal
// state. Polling a non-live session is a no-op.
func (m *Manager) PollStatus(ctx context.Context, channelID uuid.UUID) (*models.BroadcastSession, error) {
	session, ok := m.GetSession(channelID)
	if !ok {
		return nil, fmt.Errorf("failed to poll status: %w", ErrNotLive)
	}
	if Status(session.GetStatus()) != StatusLive {
		return session, nil
	}

	resp, err := m.client.Status(ctx, channelID.String(), session.GetStreamID())
	if err != nil {
		// Poll failures never change status; the next tick reconciles
		session.SetLastError(err)
		logger.Log.Warn().
			Err(err).
			Str("channel_id", channelID.String()).
			Msg("Status poll failed")
		return session, fmt.Errorf("failed to poll status: %w", err)
	}

	session.MergeTelemetry(models.TelemetryPatch{
		Viewers:         resp.Viewers,
		Bitrate:         resp.Bitrate,
		DurationElapsed: resp.Duration,
	})

	if isTerminalRemoteStatus(resp.Status) {
		logger.Log.Info().
			Str("channel_id", channelID.String()).
			Str("remote_status", resp.Status).
			Msg("Collaborator reported terminal state, stopping session")
		session.SetStatus(StatusStopped.String())
		m.stopPolling(channelID)
		m.coord.SetActive(ctx, false)
	}

	return session, nil
}

// ConfigureTransmission forwards a protocol and destination to the
// collaborator. This is a side channel independent of the idle/live
// state machine.
func (m *Manager) ConfigureTransmission(ctx context.Context, channelID uuid.UUID, protocol, destination string) (*TransmitResponse, error) {
	protocol = strings.ToLower(protocol)
	if !validProtocols[protocol] {
		return nil, fmt.Errorf("failed to configure transmission: %w: %q", ErrUnsupportedProtocol, protocol)
	}
	if err := validateDestination(destination); err != nil {
		return nil, fmt.Errorf("failed to configure transmission: %w", err)
	}

	var streamID string
	if session, ok := m.GetSession(channelID); ok {
		streamID = session.GetStreamID()
	}

	resp, err := m.client.Transmit(ctx, TransmitRequest{
		ChannelID:   channelID.String(),
		StreamID:    streamID,
		Protocol:    protocol,
		Destination: destination,
	})
	if err != nil {
		logger.Log.Error().
			Err(err).
			Str("channel_id", channelID.String()).
			Str("protocol", protocol).
			Msg("Failed to configure transmission")
		return nil, fmt.Errorf("failed to configure transmission: %w", err)
	}

	logger.Log.Info().
		Str("channel_id", channelID.String()).
		Str("protocol", protocol).
		Str("destination", destination).
		Msg("Transmission configured")

	return resp, nil
}

// MarkStopped force-stops a session from an out-of-band signal (webhook).
// It is a no-op unless the session is live.
func (m *Manager) MarkStopped(ctx context.Context, channelID uuid.UUID) {
	session, ok := m.GetSession(channelID)
	if !ok || Status(session.GetStatus()) != StatusLive {
		return
	}
	session.SetStatus(StatusStopped.String())
	m.stopPolling(channelID)
	m.coord.SetActive(ctx, false)
}

// Stop shuts down the manager, cancelling all pollers
func (m *Manager) Stop() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.stopped = true
	for channelID, stop := range m.pollers {
		close(stop)
		delete(m.pollers, channelID)
	}
}

// startPolling launches the status poll loop for a channel. Polls run
// sequentially inside one goroutine, so there is never more than one
// in-flight request; missed ticks are coalesced by the ticker.
func (m *Manager) startPolling(channelID uuid.UUID) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.stopped {
		return
	}
	if _, ok := m.pollers[channelID.String()]; ok {
		return
	}

	stop := make(chan struct{})
	m.pollers[channelID.String()] = stop

	go func() {
		ticker := time.NewTicker(m.pollInterval)
		defer ticker.Stop()
		defer func() {
			m.mu.Lock()
			if m.pollers[channelID.String()] == stop {
				delete(m.pollers, channelID.String())
			}
			m.mu.Unlock()
		}()

		for {
			select {
			case <-stop:
				return
			case <-ticker.C:
				session, ok := m.GetSession(channelID)
				if !ok || Status(session.GetStatus()) != StatusLive {
					return
				}
				ctx, cancel := context.WithTimeout(context.Background(), m.pollInterval)
				_, _ = m.PollStatus(ctx, channelID) // nolint:errcheck // poll failures are logged and retried next tick
				cancel()
			}
		}
	}()
}

// stopPolling cancels the poll loop for a channel
func (m *Manager) stopPolling(channelID uuid.UUID) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if stop, ok := m.pollers[channelID.String()]; ok {
		close(stop)
		delete(m.pollers, channelID.String())
	}
}

// isTerminalRemoteStatus reports whether a collaborator status string
// means the stream is no longer running
func isTerminalRemoteStatus(status string) bool {
	switch strings.ToLower(status) {
	case "stopped", "error", "failed", "finished":
		return true
	default:
		return false
	}
}

// validateDestination accepts either a URL with a host or a bare
// host:port pair
func validateDestination(destination string) error {
	if destination == "" {
		return ErrInvalidDestination
	}

	if strings.Contains(destination, "://") {
		u, err := url.Parse(destination)
		if err != nil || u.Host == "" {
			return fmt.Errorf("%w: %q", ErrInvalidDestination, destination)
		}
		return nil
	}

	host, port, err := net.SplitHostPort(destination)
	if err != nil || host == "" || port == "" {
		return fmt.Errorf("%w: %q", ErrInvalidDestination, destination)
	}
	return nil
}
