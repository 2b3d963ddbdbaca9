package broadcast

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/holosmedia/holos/internal/config"
	"github.com/holosmedia/holos/internal/logger"
)

func newTestClient(t *testing.T, baseURL, apiKey string) *Client {
	t.Helper()
	logger.Init("error", false)

	return NewClient(&config.BroadcastConfig{
		APIBaseURL:        baseURL,
		APIKey:            apiKey,
		SimulationBaseURL: "https://mediaplus.broadcast",
		RequestTimeout:    2 * time.Second,
	})
}

func TestSimulationMode_Detection(t *testing.T) {
	tests := []struct {
		name    string
		baseURL string
		apiKey  string
		want    bool
	}{
		{"no base url", "", "sk_live_real", true},
		{"no api key", "https://api.example.com", "", true},
		{"demo key", "https://api.example.com", "demo_abc", true},
		{"test key", "https://api.example.com", "sk_test_abc", true},
		{"real credentials", "https://api.example.com", "sk_live_real", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			client := newTestClient(t, tt.baseURL, tt.apiKey)
			assert.Equal(t, tt.want, client.SimulationMode())
		})
	}
}

func TestSimulatedStart_DeterministicOutputs(t *testing.T) {
	client := newTestClient(t, "", "")
	ctx := context.Background()

	resp, err := client.Start(ctx, StartRequest{
		ChannelID: "chan-1",
		Source:    SourcePlaylist,
		MediaURLs: []string{"/media/a.mp4"},
		Loop:      true,
	})
	require.NoError(t, err)

	assert.True(t, resp.Success)
	assert.True(t, resp.Simulation)
	assert.Equal(t, "sim_chan-1", resp.StreamID)
	assert.Equal(t, "https://mediaplus.broadcast/hls/chan-1/index.m3u8", resp.HLSURL)
	assert.Equal(t, "https://mediaplus.broadcast/player/chan-1", resp.PlayerURL)
	assert.Equal(t, "https://mediaplus.broadcast/stream/chan-1/live.m3u8", resp.IPHTTPURL)
	assert.Contains(t, resp.IframeCode, "https://mediaplus.broadcast/embed/chan-1")
	assert.Equal(t, "live", resp.Status)
	assert.Equal(t, "5000", resp.Bitrate)

	// Simulation responses are fully deterministic for a given channel
	again, err := client.Start(ctx, StartRequest{ChannelID: "chan-1", Source: SourcePlaylist})
	require.NoError(t, err)
	assert.Equal(t, resp.StreamID, again.StreamID)
	assert.Equal(t, resp.HLSURL, again.HLSURL)
}

func TestSimulatedStatus_StreamIDFallback(t *testing.T) {
	client := newTestClient(t, "", "demo_key")

	resp, err := client.Status(context.Background(), "chan-9", "")
	require.NoError(t, err)
	assert.Equal(t, "sim_chan-9", resp.StreamID)
	assert.Equal(t, "live", resp.Status)
}

func TestStart_RealMode_SendsAPIKey(t *testing.T) {
	var gotKey, gotPath string
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotKey = r.Header.Get("X-API-Key")
		gotPath = r.URL.Path
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"success":true,"streamId":"str_1","hlsUrl":"https://cdn/hls.m3u8","status":"live"}`)) // nolint:errcheck
	}))
	defer server.Close()

	client := newTestClient(t, server.URL, "sk_live_key")
	require.False(t, client.SimulationMode())

	resp, err := client.Start(context.Background(), StartRequest{ChannelID: "chan-1", Source: SourcePlaylist})
	require.NoError(t, err)

	assert.Equal(t, "sk_live_key", gotKey)
	assert.Equal(t, "/streams", gotPath)
	assert.Equal(t, "str_1", resp.StreamID)
	assert.False(t, resp.Simulation)
}

func TestStop_RealMode_TargetsStreamIDWithChannelFallback(t *testing.T) {
	var gotPath string
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.Path
		w.Write([]byte(`{"success":true,"streamId":"str_1","status":"stopped"}`)) // nolint:errcheck
	}))
	defer server.Close()

	client := newTestClient(t, server.URL, "sk_live_key")
	ctx := context.Background()

	_, err := client.Stop(ctx, StopRequest{ChannelID: "chan-1", StreamID: "str_1"})
	require.NoError(t, err)
	assert.Equal(t, "/streams/str_1/stop", gotPath)

	_, err = client.Stop(ctx, StopRequest{ChannelID: "chan-1"})
	require.NoError(t, err)
	assert.Equal(t, "/streams/chan-1/stop", gotPath)
}

func TestClient_NetworkFailureMapsToUnreachable(t *testing.T) {
	// Point at a closed port
	client := newTestClient(t, "http://127.0.0.1:1", "sk_live_key")

	_, err := client.Start(context.Background(), StartRequest{ChannelID: "chan-1"})
	assert.ErrorIs(t, err, ErrCollaboratorUnreachable)
}

func TestClient_Non2xxMapsToRejected(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "stream limit reached", http.StatusTooManyRequests)
	}))
	defer server.Close()

	client := newTestClient(t, server.URL, "sk_live_key")

	_, err := client.Start(context.Background(), StartRequest{ChannelID: "chan-1"})
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrCollaboratorRejected)
	assert.Contains(t, err.Error(), "stream limit reached")
}

func TestClient_SuccessFalseMapsToRejected(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"success":false,"error":"no capacity"}`)) // nolint:errcheck
	}))
	defer server.Close()

	client := newTestClient(t, server.URL, "sk_live_key")

	_, err := client.Start(context.Background(), StartRequest{ChannelID: "chan-1"})
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrCollaboratorRejected)
	assert.Contains(t, err.Error(), "no capacity")
}
