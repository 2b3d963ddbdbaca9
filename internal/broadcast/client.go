package broadcast

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/holosmedia/holos/internal/config"
	"github.com/holosmedia/holos/internal/logger"
)

// Collaborator is the consumed contract of the external FFmpeg
// orchestration API
type Collaborator interface {
	Start(ctx context.Context, req StartRequest) (*StartResponse, error)
	Stop(ctx context.Context, req StopRequest) (*StopResponse, error)
	Status(ctx context.Context, channelID, streamID string) (*StatusResponse, error)
	Transmit(ctx context.Context, req TransmitRequest) (*TransmitResponse, error)
}

// Client talks to the FFmpeg orchestration API over HTTP. When no API is
// configured (empty base URL, absent key, or a demo_/sk_test_ key) it runs
// in simulation mode: no network calls, deterministic synthetic responses.
// Simulation mode is a first-class path used for offline development and
// test fixtures, not an error fallback.
type Client struct {
	baseURL    string
	apiKey     string
	simBaseURL string
	httpClient *http.Client
}

// NewClient creates a collaborator client from broadcast configuration
func NewClient(cfg *config.BroadcastConfig) *Client {
	return &Client{
		baseURL:    strings.TrimRight(cfg.APIBaseURL, "/"),
		apiKey:     cfg.APIKey,
		simBaseURL: strings.TrimRight(cfg.SimulationBaseURL, "/"),
		httpClient: &http.Client{Timeout: cfg.RequestTimeout},
	}
}

// SimulationMode reports whether the client synthesizes responses locally
func (c *Client) SimulationMode() bool {
	return c.baseURL == "" ||
		c.apiKey == "" ||
		strings.HasPrefix(c.apiKey, "demo_") ||
		strings.HasPrefix(c.apiKey, "sk_test_")
}

// SimulatedHLSURL returns the deterministic simulation HLS locator for a channel
func (c *Client) SimulatedHLSURL(channelID string) string {
	return fmt.Sprintf("%s/hls/%s/index.m3u8", c.simBaseURL, channelID)
}

// Start asks the collaborator to start a broadcast
func (c *Client) Start(ctx context.Context, req StartRequest) (*StartResponse, error) {
	if c.SimulationMode() {
		logger.Log.Info().
			Str("channel_id", req.ChannelID).
			Msg("Simulation mode: synthesizing start response")
		return c.simulateStart(req), nil
	}

	var resp StartResponse
	if err := c.post(ctx, "/streams", req, &resp); err != nil {
		return nil, err
	}
	if !resp.Success {
		return nil, rejectionError(http.StatusOK, resp.Error)
	}
	return &resp, nil
}

// Stop asks the collaborator to stop a broadcast, keyed by stream ID with
// channel ID as fallback
func (c *Client) Stop(ctx context.Context, req StopRequest) (*StopResponse, error) {
	if c.SimulationMode() {
		logger.Log.Info().
			Str("channel_id", req.ChannelID).
			Str("stream_id", req.StreamID).
			Msg("Simulation mode: synthesizing stop response")
		return c.simulateStop(req), nil
	}

	target := req.StreamID
	if target == "" {
		target = req.ChannelID
	}

	var resp StopResponse
	if err := c.post(ctx, fmt.Sprintf("/streams/%s/stop", target), req, &resp); err != nil {
		return nil, err
	}
	if !resp.Success {
		return nil, rejectionError(http.StatusOK, resp.Error)
	}
	return &resp, nil
}

// Status fetches the current stream status and telemetry
func (c *Client) Status(ctx context.Context, channelID, streamID string) (*StatusResponse, error) {
	if c.SimulationMode() {
		return c.simulateStatus(channelID, streamID), nil
	}

	target := streamID
	if target == "" {
		target = channelID
	}

	var resp StatusResponse
	if err := c.get(ctx, fmt.Sprintf("/streams/%s", target), &resp); err != nil {
		return nil, err
	}
	if !resp.Success {
		return nil, rejectionError(http.StatusOK, resp.Error)
	}
	return &resp, nil
}

// Transmit forwards a transmission protocol/destination configuration
func (c *Client) Transmit(ctx context.Context, req TransmitRequest) (*TransmitResponse, error) {
	if c.SimulationMode() {
		logger.Log.Info().
			Str("channel_id", req.ChannelID).
			Str("protocol", req.Protocol).
			Msg("Simulation mode: synthesizing transmit response")
		return c.simulateTransmit(req), nil
	}

	var resp TransmitResponse
	if err := c.post(ctx, "/streams/ip-output", req, &resp); err != nil {
		return nil, err
	}
	if !resp.Success {
		return nil, rejectionError(http.StatusOK, resp.Error)
	}
	return &resp, nil
}

func (c *Client) simulateStart(req StartRequest) *StartResponse {
	return &StartResponse{
		Success:    true,
		StreamID:   "sim_" + req.ChannelID,
		HLSURL:     c.SimulatedHLSURL(req.ChannelID),
		PlayerURL:  fmt.Sprintf("%s/player/%s", c.simBaseURL, req.ChannelID),
		IframeCode: fmt.Sprintf(`<iframe src="%s/embed/%s" width="100%%" height="100%%" frameborder="0" allowfullscreen></iframe>`, c.simBaseURL, req.ChannelID),
		IPHTTPURL:  fmt.Sprintf("%s/stream/%s/live.m3u8", c.simBaseURL, req.ChannelID),
		Status:     "live",
		Viewers:    0,
		Bitrate:    "5000",
		Simulation: true,
	}
}

func (c *Client) simulateStop(req StopRequest) *StopResponse {
	streamID := req.StreamID
	if streamID == "" {
		streamID = "sim_" + req.ChannelID
	}
	return &StopResponse{
		Success:   true,
		StreamID:  streamID,
		Status:    "stopped",
		StoppedAt: time.Now().UTC().Format(time.RFC3339),
	}
}

func (c *Client) simulateStatus(channelID, streamID string) *StatusResponse {
	if streamID == "" {
		streamID = "sim_" + channelID
	}
	viewers := 0
	bitrate := "5000"
	return &StatusResponse{
		Success:  true,
		StreamID: streamID,
		Status:   "live",
		Viewers:  &viewers,
		Bitrate:  &bitrate,
		HLSURL:   c.SimulatedHLSURL(channelID),
	}
}

func (c *Client) simulateTransmit(req TransmitRequest) *TransmitResponse {
	streamID := req.StreamID
	if streamID == "" {
		streamID = "sim_" + req.ChannelID
	}
	return &TransmitResponse{
		Success:  true,
		StreamID: streamID,
		Status:   "configured",
		HLSURL:   c.SimulatedHLSURL(req.ChannelID),
	}
}

// post issues a JSON POST to the collaborator and decodes the response.
// Network failures map to ErrCollaboratorUnreachable; non-2xx answers map
// to ErrCollaboratorRejected carrying the collaborator's message.
func (c *Client) post(ctx context.Context, path string, body, out interface{}) error {
	payload, err := json.Marshal(body)
	if err != nil {
		return fmt.Errorf("failed to encode request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+path, bytes.NewReader(payload))
	if err != nil {
		return fmt.Errorf("failed to build request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("X-API-Key", c.apiKey)

	return c.do(req, out)
}

// get issues a GET to the collaborator and decodes the response
func (c *Client) get(ctx context.Context, path string, out interface{}) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+path, nil)
	if err != nil {
		return fmt.Errorf("failed to build request: %w", err)
	}
	req.Header.Set("X-API-Key", c.apiKey)

	return c.do(req, out)
}

func (c *Client) do(req *http.Request, out interface{}) error {
	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrCollaboratorUnreachable, err)
	}
	defer resp.Body.Close() // nolint:errcheck

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("%w: reading response: %v", ErrCollaboratorUnreachable, err)
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return rejectionError(resp.StatusCode, strings.TrimSpace(string(body)))
	}

	if err := json.Unmarshal(body, out); err != nil {
		return fmt.Errorf("%w: malformed response: %v", ErrCollaboratorRejected, err)
	}
	return nil
}
