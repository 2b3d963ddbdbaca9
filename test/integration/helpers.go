//go:build integration
// +build integration

package integration

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"runtime"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/require"
	"github.com/holosmedia/holos/internal/api"
	"github.com/holosmedia/holos/internal/broadcast"
	"github.com/holosmedia/holos/internal/channel"
	"github.com/holosmedia/holos/internal/config"
	"github.com/holosmedia/holos/internal/db"
	"github.com/holosmedia/holos/internal/license"
	"github.com/holosmedia/holos/internal/logger"
	"github.com/holosmedia/holos/internal/playlist"
)

const testWebhookKey = "integration-webhook-secret"

// console bundles everything the integration tests drive
type console struct {
	router  *gin.Engine
	repos   *db.Repositories
	coord   *playlist.Coordinator
	manager *broadcast.Manager
}

// setupTestDB creates an in-memory test database with migrations applied
func setupTestDB(t *testing.T) (*db.DB, *db.Repositories, func()) {
	t.Helper()

	database, err := db.New(":memory:")
	require.NoError(t, err, "Failed to create in-memory database")

	sqlDB, err := database.GetSQLDB()
	require.NoError(t, err, "Failed to get SQL DB")

	// Resolve the migrations directory relative to this file so tests
	// work regardless of working directory
	_, filename, _, ok := runtime.Caller(0)
	require.True(t, ok, "Failed to get current file path")

	testDir := filepath.Dir(filename)
	rootDir := filepath.Dir(filepath.Dir(testDir))
	migrationsPath := "file://" + filepath.Join(rootDir, "migrations")

	err = db.RunMigrations(sqlDB, migrationsPath)
	require.NoError(t, err, "Failed to run migrations")

	repos := db.NewRepositories(database)

	cleanup := func() {
		_ = database.Close()
	}

	return database, repos, cleanup
}

// setupConsole wires the full API surface against an in-memory database.
// The broadcast client runs in simulation mode so no network calls happen.
func setupConsole(t *testing.T) (*console, func()) {
	t.Helper()
	logger.Init("error", false)
	gin.SetMode(gin.TestMode)

	database, repos, dbCleanup := setupTestDB(t)

	coord := playlist.NewCoordinator(repos.PlaylistState, nil)
	savedService := playlist.NewSavedService(repos, coord)
	channelService := channel.NewService(repos)

	client := broadcast.NewClient(&config.BroadcastConfig{
		SimulationBaseURL: "https://mediaplus.broadcast",
		RequestTimeout:    2 * time.Second,
	})
	manager := broadcast.NewManager(client, coord, time.Minute)

	validator := license.NewValidator("", "", 2*time.Second)
	licenseService := license.NewService(repos, validator, "integration-secret", time.Hour)

	router := gin.New()
	router.Use(gin.Recovery())
	apiGroup := router.Group("/api")

	api.SetupHealthRoutes(apiGroup, database)
	api.SetupChannelRoutes(apiGroup, channelService)
	api.SetupMediaRoutes(apiGroup, repos, []string{"mp4", "mkv", "mov"})
	api.SetupPlaylistRoutes(apiGroup, coord, savedService, repos)
	api.SetupBroadcastRoutes(apiGroup, manager, channelService)
	api.SetupKeysRoutes(apiGroup, licenseService)
	api.SetupWebhookRoutes(apiGroup, manager, testWebhookKey)

	cleanup := func() {
		manager.Stop()
		dbCleanup()
	}

	return &console{
		router:  router,
		repos:   repos,
		coord:   coord,
		manager: manager,
	}, cleanup
}

// doJSON sends a JSON request through the router and returns the recorder
func doJSON(t *testing.T, router *gin.Engine, method, path string, body interface{}) *httptest.ResponseRecorder {
	t.Helper()

	var reader *bytes.Reader
	if body != nil {
		encoded, err := json.Marshal(body)
		require.NoError(t, err)
		reader = bytes.NewReader(encoded)
	} else {
		reader = bytes.NewReader(nil)
	}

	req := httptest.NewRequest(method, path, reader)
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	return w
}

// decode unmarshals a response body into out
func decode(t *testing.T, w *httptest.ResponseRecorder, out interface{}) {
	t.Helper()
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), out))
}

// doSignedWebhook posts a collaborator webhook with the shared-secret
// signature header set
func doSignedWebhook(t *testing.T, c *console, body interface{}) *httptest.ResponseRecorder {
	t.Helper()

	encoded, err := json.Marshal(body)
	require.NoError(t, err)

	req := httptest.NewRequest(http.MethodPost, "/api/webhooks/broadcast", bytes.NewReader(encoded))
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("X-FFmpeg-Signature", testWebhookKey)
	w := httptest.NewRecorder()
	c.router.ServeHTTP(w, req)
	return w
}

// registerMedia creates a catalog entry through the API and returns its ID
func registerMedia(t *testing.T, router *gin.Engine, title, filePath string) string {
	t.Helper()

	w := doJSON(t, router, http.MethodPost, "/api/media", map[string]interface{}{
		"title":     title,
		"file_path": filePath,
	})
	require.Equal(t, http.StatusCreated, w.Code, "media registration failed: %s", w.Body.String())

	var created struct {
		ID string `json:"id"`
	}
	decode(t, w, &created)
	require.NotEmpty(t, created.ID)
	return created.ID
}

// createChannel creates a channel through the API and returns its ID
func createChannel(t *testing.T, router *gin.Engine, name string) string {
	t.Helper()

	w := doJSON(t, router, http.MethodPost, "/api/channels", map[string]interface{}{
		"name": name,
		"loop": true,
	})
	require.Equal(t, http.StatusCreated, w.Code, "channel creation failed: %s", w.Body.String())

	var created struct {
		ID string `json:"id"`
	}
	decode(t, w, &created)
	require.NotEmpty(t, created.ID)
	return created.ID
}
