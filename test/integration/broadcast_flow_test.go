//go:build integration
// +build integration

package integration

import (
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type sessionResponse struct {
	Status   string `json:"status"`
	StreamID string `json:"stream_id"`
	Outputs  struct {
		HLSURL     string `json:"hls_url"`
		PlayerURL  string `json:"player_url"`
		IframeCode string `json:"iframe_code"`
		IPHTTPURL  string `json:"ip_http_url"`
	} `json:"outputs"`
	Simulation bool   `json:"simulation"`
	LastError  string `json:"last_error"`
}

func TestBroadcastFlow(t *testing.T) {
	c, cleanup := setupConsole(t)
	defer cleanup()

	channelID := createChannel(t, c.router, "Main Channel")
	mediaID := registerMedia(t, c.router, "Feature", "/media/feature.mp4")

	t.Run("StartWithEmptyPlaylist", func(t *testing.T) {
		w := doJSON(t, c.router, http.MethodPost, "/api/channels/"+channelID+"/broadcast/start", nil)
		assert.Equal(t, http.StatusConflict, w.Code)

		var resp struct {
			Error string `json:"error"`
		}
		decode(t, w, &resp)
		assert.Equal(t, "empty_playlist", resp.Error)
	})

	t.Run("StartGoesLive", func(t *testing.T) {
		w := doJSON(t, c.router, http.MethodPost, "/api/playlist/items", map[string]interface{}{
			"media_id": mediaID,
		})
		require.Equal(t, http.StatusCreated, w.Code)

		w = doJSON(t, c.router, http.MethodPost, "/api/channels/"+channelID+"/broadcast/start", nil)
		require.Equal(t, http.StatusOK, w.Code, w.Body.String())

		var session sessionResponse
		decode(t, w, &session)
		assert.Equal(t, "live", session.Status)
		assert.True(t, session.Simulation)
		assert.NotEmpty(t, session.StreamID)
		assert.Contains(t, session.Outputs.HLSURL, "index.m3u8")
		assert.NotEmpty(t, session.Outputs.PlayerURL)
		assert.NotEmpty(t, session.Outputs.IframeCode)

		assert.True(t, c.coord.IsActive())
	})

	t.Run("StatusWhileLive", func(t *testing.T) {
		w := doJSON(t, c.router, http.MethodGet, "/api/channels/"+channelID+"/broadcast/status", nil)
		require.Equal(t, http.StatusOK, w.Code)

		var session sessionResponse
		decode(t, w, &session)
		assert.Equal(t, "live", session.Status)
	})

	t.Run("Transmit", func(t *testing.T) {
		w := doJSON(t, c.router, http.MethodPost, "/api/channels/"+channelID+"/broadcast/transmit", map[string]interface{}{
			"protocol":    "udp",
			"destination": "239.0.0.1:5000",
		})
		assert.Equal(t, http.StatusOK, w.Code, w.Body.String())

		w = doJSON(t, c.router, http.MethodPost, "/api/channels/"+channelID+"/broadcast/transmit", map[string]interface{}{
			"protocol":    "ftp",
			"destination": "239.0.0.1:5000",
		})
		assert.Equal(t, http.StatusBadRequest, w.Code)

		w = doJSON(t, c.router, http.MethodPost, "/api/channels/"+channelID+"/broadcast/transmit", map[string]interface{}{
			"protocol":    "udp",
			"destination": "not a destination",
		})
		assert.Equal(t, http.StatusBadRequest, w.Code)
	})

	t.Run("Stop", func(t *testing.T) {
		w := doJSON(t, c.router, http.MethodPost, "/api/channels/"+channelID+"/broadcast/stop", map[string]interface{}{
			"reason": "end of programming",
		})
		require.Equal(t, http.StatusOK, w.Code, w.Body.String())

		var session sessionResponse
		decode(t, w, &session)
		assert.Equal(t, "stopped", session.Status)
		assert.False(t, c.coord.IsActive())
	})

	t.Run("StopAgainIsConflict", func(t *testing.T) {
		w := doJSON(t, c.router, http.MethodPost, "/api/channels/"+channelID+"/broadcast/stop", nil)
		assert.Equal(t, http.StatusConflict, w.Code)

		var resp struct {
			Error string `json:"error"`
		}
		decode(t, w, &resp)
		assert.Equal(t, "not_live", resp.Error)
	})

	t.Run("RestartAfterStop", func(t *testing.T) {
		w := doJSON(t, c.router, http.MethodPost, "/api/channels/"+channelID+"/broadcast/start", nil)
		require.Equal(t, http.StatusOK, w.Code)

		var session sessionResponse
		decode(t, w, &session)
		assert.Equal(t, "live", session.Status)
	})

	t.Run("WebhookStopsLiveBroadcast", func(t *testing.T) {
		w := doJSON(t, c.router, http.MethodPost, "/api/webhooks/broadcast", map[string]interface{}{
			"channelId": channelID,
			"event":     "stream.stopped",
		})
		// No signature header, rejected
		assert.Equal(t, http.StatusUnauthorized, w.Code)

		req := doSignedWebhook(t, c, map[string]interface{}{
			"channelId": channelID,
			"event":     "stream.stopped",
		})
		require.Equal(t, http.StatusOK, req.Code)

		w = doJSON(t, c.router, http.MethodGet, "/api/channels/"+channelID+"/broadcast/status", nil)
		var session sessionResponse
		decode(t, w, &session)
		assert.Equal(t, "stopped", session.Status)
	})

	t.Run("StatusUnknownChannelIsIdle", func(t *testing.T) {
		other := createChannel(t, c.router, "Idle Channel")

		w := doJSON(t, c.router, http.MethodGet, "/api/channels/"+other+"/broadcast/status", nil)
		require.Equal(t, http.StatusOK, w.Code)

		var session sessionResponse
		decode(t, w, &session)
		assert.Equal(t, "idle", session.Status)
	})
}

func TestEntitlementFlow(t *testing.T) {
	c, cleanup := setupConsole(t)
	defer cleanup()

	t.Run("StatusBeforeActivation", func(t *testing.T) {
		w := doJSON(t, c.router, http.MethodGet, "/api/keys/status", nil)
		require.Equal(t, http.StatusOK, w.Code)

		var resp struct {
			MachineID string `json:"machine_id"`
			Activated bool   `json:"activated"`
			Licensed  bool   `json:"licensed"`
		}
		decode(t, w, &resp)
		assert.NotEmpty(t, resp.MachineID)
		assert.False(t, resp.Activated)
		assert.False(t, resp.Licensed)
	})

	t.Run("ActivateInSimulationMode", func(t *testing.T) {
		w := doJSON(t, c.router, http.MethodPost, "/api/keys/activate", map[string]interface{}{
			"key": "demo_activation",
		})
		require.Equal(t, http.StatusOK, w.Code, w.Body.String())

		var resp struct {
			Valid bool   `json:"valid"`
			Token string `json:"token"`
		}
		decode(t, w, &resp)
		assert.True(t, resp.Valid)
		assert.NotEmpty(t, resp.Token)
	})

	t.Run("StatusAfterActivation", func(t *testing.T) {
		w := doJSON(t, c.router, http.MethodGet, "/api/keys/status", nil)
		require.Equal(t, http.StatusOK, w.Code)

		var resp struct {
			Activated bool `json:"activated"`
		}
		decode(t, w, &resp)
		assert.True(t, resp.Activated)
	})
}
