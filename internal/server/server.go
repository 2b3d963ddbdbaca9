// Package server provides the HTTP server setup and routing configuration.
package server

import (
	"context"
	"fmt"
	"net/http"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/holosmedia/holos/internal/api"
	"github.com/holosmedia/holos/internal/broadcast"
	"github.com/holosmedia/holos/internal/channel"
	"github.com/holosmedia/holos/internal/config"
	"github.com/holosmedia/holos/internal/db"
	"github.com/holosmedia/holos/internal/license"
	"github.com/holosmedia/holos/internal/logger"
	"github.com/holosmedia/holos/internal/middleware"
	"github.com/holosmedia/holos/internal/playlist"
	"github.com/holosmedia/holos/internal/syncbridge"
	"github.com/redis/go-redis/v9"
)

// Server represents the HTTP server
type Server struct {
	config         *config.Config
	db             *db.DB
	repos          *db.Repositories
	coordinator    *playlist.Coordinator
	savedService   *playlist.SavedService
	channelService *channel.Service
	manager        *broadcast.Manager
	licenseService *license.Service
	bridge         *syncbridge.Bridge
	redisClient    *redis.Client
	router         *gin.Engine
	server         *http.Server
}

// New creates a new server instance and wires the service graph
func New(cfg *config.Config, database *db.DB) *Server {
	repos := db.NewRepositories(database)

	var bridge *syncbridge.Bridge
	var redisClient *redis.Client
	var mirror playlist.Mirror
	if cfg.Sync.Enabled {
		redisClient = redis.NewClient(&redis.Options{
			Addr: cfg.Sync.RedisAddr,
			DB:   cfg.Sync.RedisDB,
		})
		bridge = syncbridge.New(redisClient)
		mirror = bridge
	}

	coordinator := playlist.NewCoordinator(repos.PlaylistState, mirror)
	if bridge != nil {
		bridge.SetCoordinator(coordinator)
	}

	client := broadcast.NewClient(&cfg.Broadcast)
	manager := broadcast.NewManager(client, coordinator, cfg.Broadcast.PollInterval)

	validator := license.NewValidator(cfg.Auth.ActivationBaseURL, cfg.Auth.LicenseBaseURL, cfg.Broadcast.RequestTimeout)
	licenseService := license.NewService(repos, validator, cfg.Auth.JWTSecret, cfg.Auth.TokenTTL)

	return &Server{
		config:         cfg,
		db:             database,
		repos:          repos,
		coordinator:    coordinator,
		savedService:   playlist.NewSavedService(repos, coordinator),
		channelService: channel.NewService(repos),
		manager:        manager,
		licenseService: licenseService,
		bridge:         bridge,
		redisClient:    redisClient,
	}
}

// setupRouter initializes the Gin router with middleware and routes
func (s *Server) setupRouter() {
	// Set Gin mode based on log level
	if s.config.Logging.Level == "debug" {
		gin.SetMode(gin.DebugMode)
	} else {
		gin.SetMode(gin.ReleaseMode)
	}

	// Create new Gin router
	s.router = gin.New()

	// Add middleware stack
	s.router.Use(middleware.RequestLogger()) // Custom zerolog request logger
	s.router.Use(gin.Recovery())             // Panic recovery
	s.router.Use(cors.Default())             // CORS support (allows all origins)

	// Create API route group
	apiGroup := s.router.Group("/api")

	// Always-open routes: health, activation and the collaborator webhook
	// (the webhook authenticates by signature, not session token)
	api.SetupHealthRoutes(apiGroup, s.db)
	api.SetupKeysRoutes(apiGroup, s.licenseService)
	api.SetupWebhookRoutes(apiGroup, s.manager, s.config.Broadcast.APIKey)

	consoleGroup := apiGroup
	if s.config.Auth.Enabled {
		consoleGroup = apiGroup.Group("")
		consoleGroup.Use(middleware.SessionAuth(s.licenseService))
	}

	api.SetupChannelRoutes(consoleGroup, s.channelService)
	api.SetupMediaRoutes(consoleGroup, s.repos, s.config.Media.SupportedFormats)
	api.SetupPlaylistRoutes(consoleGroup, s.coordinator, s.savedService, s.repos)
	api.SetupBroadcastRoutes(consoleGroup, s.manager, s.channelService)

	if s.bridge != nil {
		api.SetupSyncRoutes(consoleGroup, s.bridge)
	}
}

// Start starts the HTTP server
func (s *Server) Start() error {
	s.setupRouter()

	// Restore the persisted playlist before accepting traffic
	if err := s.coordinator.Restore(context.Background()); err != nil {
		return fmt.Errorf("failed to restore playlist state: %w", err)
	}

	if s.bridge != nil {
		s.bridge.Start()
	}

	addr := fmt.Sprintf("%s:%d", s.config.Server.Host, s.config.Server.Port)

	s.server = &http.Server{
		Addr:           addr,
		Handler:        s.router,
		ReadTimeout:    s.config.Server.ReadTimeout,
		WriteTimeout:   s.config.Server.WriteTimeout,
		MaxHeaderBytes: 1 << 20, // 1 MB
	}

	logger.Log.Info().
		Str("host", s.config.Server.Host).
		Int("port", s.config.Server.Port).
		Bool("sync_enabled", s.bridge != nil).
		Msg("Starting HTTP server")

	return s.server.ListenAndServe()
}

// Shutdown gracefully shuts down the server
func (s *Server) Shutdown(ctx context.Context) error {
	logger.Log.Info().Msg("Shutting down server gracefully")

	// Stop the broadcast manager's pollers
	if s.manager != nil {
		s.manager.Stop()
	}

	// Disconnect the sync bridge
	if s.bridge != nil {
		s.bridge.Stop()
	}
	if s.redisClient != nil {
		if err := s.redisClient.Close(); err != nil {
			logger.Log.Warn().Err(err).Msg("Error closing redis client")
		}
	}

	// Check if server was started before attempting shutdown
	if s.server != nil {
		if err := s.server.Shutdown(ctx); err != nil {
			return fmt.Errorf("server shutdown error: %w", err)
		}
	}

	logger.Log.Info().Msg("Server stopped")
	return nil
}
