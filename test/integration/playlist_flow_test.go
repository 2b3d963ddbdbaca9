//go:build integration
// +build integration

package integration

import (
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/holosmedia/holos/internal/models"
)

func TestPlaylistFlow(t *testing.T) {
	c, cleanup := setupConsole(t)
	defer cleanup()

	ids := make([]string, 3)
	ids[0] = registerMedia(t, c.router, "Morning Show", "/media/morning.mp4")
	ids[1] = registerMedia(t, c.router, "Midday News", "/media/midday.mkv")
	ids[2] = registerMedia(t, c.router, "Evening Film", "/media/evening.mov")

	t.Run("AddItems", func(t *testing.T) {
		for _, id := range ids {
			w := doJSON(t, c.router, http.MethodPost, "/api/playlist/items", map[string]interface{}{
				"media_id": id,
			})
			require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
		}

		var snap models.PlaylistSnapshot
		w := doJSON(t, c.router, http.MethodGet, "/api/playlist", nil)
		require.Equal(t, http.StatusOK, w.Code)
		decode(t, w, &snap)
		assert.Len(t, snap.Items, 3)
		assert.Equal(t, 0, snap.CurrentIndex)
	})

	t.Run("AddItem_UnknownMedia", func(t *testing.T) {
		w := doJSON(t, c.router, http.MethodPost, "/api/playlist/items", map[string]interface{}{
			"media_id": "6b2a3a9e-0000-0000-0000-000000000000",
		})
		assert.Equal(t, http.StatusNotFound, w.Code)
	})

	t.Run("Reorder", func(t *testing.T) {
		w := doJSON(t, c.router, http.MethodPut, "/api/playlist/reorder", map[string]interface{}{
			"from_index": 0,
			"to_index":   2,
		})
		require.Equal(t, http.StatusOK, w.Code, w.Body.String())

		var snap models.PlaylistSnapshot
		decode(t, w, &snap)
		assert.Equal(t, "Morning Show", snap.Items[2].Title)
		assert.Equal(t, "Midday News", snap.Items[0].Title)
	})

	t.Run("Reorder_OutOfRange", func(t *testing.T) {
		w := doJSON(t, c.router, http.MethodPut, "/api/playlist/reorder", map[string]interface{}{
			"from_index": 0,
			"to_index":   9,
		})
		assert.Equal(t, http.StatusBadRequest, w.Code)
	})

	t.Run("AdvanceAndLoop", func(t *testing.T) {
		// Loop mode wraps after the last item
		for i := 0; i < 3; i++ {
			w := doJSON(t, c.router, http.MethodPost, "/api/playlist/advance", nil)
			require.Equal(t, http.StatusOK, w.Code)
		}
		assert.Equal(t, 0, c.coord.CurrentIndex())
	})

	t.Run("ManualModeClampsAtEnd", func(t *testing.T) {
		w := doJSON(t, c.router, http.MethodPut, "/api/playlist/mode", map[string]interface{}{
			"mode": "manual",
		})
		require.Equal(t, http.StatusOK, w.Code)

		for i := 0; i < 5; i++ {
			doJSON(t, c.router, http.MethodPost, "/api/playlist/advance", nil)
		}
		assert.Equal(t, 2, c.coord.CurrentIndex())
	})

	t.Run("InvalidMode", func(t *testing.T) {
		w := doJSON(t, c.router, http.MethodPut, "/api/playlist/mode", map[string]interface{}{
			"mode": "shuffle",
		})
		assert.Equal(t, http.StatusBadRequest, w.Code)
	})

	t.Run("SaveRestoreRoundTrip", func(t *testing.T) {
		w := doJSON(t, c.router, http.MethodPost, "/api/playlists", map[string]interface{}{
			"name": "daily block",
		})
		require.Equal(t, http.StatusCreated, w.Code, w.Body.String())

		var saved models.SavedPlaylist
		decode(t, w, &saved)
		assert.Equal(t, 3, saved.ItemCount)

		// Clear the live playlist, then restore
		w = doJSON(t, c.router, http.MethodPost, "/api/playlist/clear", nil)
		require.Equal(t, http.StatusOK, w.Code)
		assert.Equal(t, 0, c.coord.Len())

		w = doJSON(t, c.router, http.MethodPost, "/api/playlists/"+saved.ID.String()+"/restore", nil)
		require.Equal(t, http.StatusOK, w.Code)

		var snap models.PlaylistSnapshot
		decode(t, w, &snap)
		assert.Len(t, snap.Items, 3)
		assert.Equal(t, 0, snap.CurrentIndex)
	})

	t.Run("DeleteSavedPlaylist", func(t *testing.T) {
		var listing struct {
			Playlists []models.SavedPlaylist `json:"playlists"`
		}
		w := doJSON(t, c.router, http.MethodGet, "/api/playlists", nil)
		require.Equal(t, http.StatusOK, w.Code)
		decode(t, w, &listing)
		require.Len(t, listing.Playlists, 1)

		w = doJSON(t, c.router, http.MethodDelete, "/api/playlists/"+listing.Playlists[0].ID.String(), nil)
		assert.Equal(t, http.StatusOK, w.Code)

		w = doJSON(t, c.router, http.MethodGet, "/api/playlists", nil)
		decode(t, w, &listing)
		assert.Empty(t, listing.Playlists)
	})
}

func TestPlaylistCapacity(t *testing.T) {
	c, cleanup := setupConsole(t)
	defer cleanup()

	id := registerMedia(t, c.router, "Filler", "/media/filler.mp4")

	// Duplicates are allowed, so one catalog entry can fill the playlist
	for i := 0; i < 20; i++ {
		w := doJSON(t, c.router, http.MethodPost, "/api/playlist/items", map[string]interface{}{
			"media_id": id,
		})
		require.Equal(t, http.StatusCreated, w.Code)
	}

	w := doJSON(t, c.router, http.MethodPost, "/api/playlist/items", map[string]interface{}{
		"media_id": id,
	})
	assert.Equal(t, http.StatusConflict, w.Code)

	var resp struct {
		Error string `json:"error"`
	}
	decode(t, w, &resp)
	assert.Equal(t, "playlist_full", resp.Error)
}

func TestMediaCatalog(t *testing.T) {
	c, cleanup := setupConsole(t)
	defer cleanup()

	t.Run("UnsupportedFormat", func(t *testing.T) {
		w := doJSON(t, c.router, http.MethodPost, "/api/media", map[string]interface{}{
			"title":     "Spreadsheet",
			"file_path": "/media/report.xlsx",
		})
		assert.Equal(t, http.StatusBadRequest, w.Code)
	})

	t.Run("DuplicatePath", func(t *testing.T) {
		registerMedia(t, c.router, "Original", "/media/unique.mp4")

		w := doJSON(t, c.router, http.MethodPost, "/api/media", map[string]interface{}{
			"title":     "Copy",
			"file_path": "/media/unique.mp4",
		})
		assert.Equal(t, http.StatusConflict, w.Code)
	})

	t.Run("ListAndDelete", func(t *testing.T) {
		id := registerMedia(t, c.router, "Disposable", "/media/tmp.mp4")

		var listing struct {
			Total int `json:"total"`
		}
		w := doJSON(t, c.router, http.MethodGet, "/api/media", nil)
		require.Equal(t, http.StatusOK, w.Code)
		decode(t, w, &listing)
		assert.Equal(t, 2, listing.Total)

		w = doJSON(t, c.router, http.MethodDelete, "/api/media/"+id, nil)
		assert.Equal(t, http.StatusOK, w.Code)

		w = doJSON(t, c.router, http.MethodGet, "/api/media/"+id, nil)
		assert.Equal(t, http.StatusNotFound, w.Code)
	})
}
