// Package channel handles business logic for broadcast channel management.
package channel

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/holosmedia/holos/internal/db"
	"github.com/holosmedia/holos/internal/logger"
	"github.com/holosmedia/holos/internal/models"
)

// Service handles business logic for channel operations
type Service struct {
	repos *db.Repositories
}

// NewService creates a new channel service instance
func NewService(repos *db.Repositories) *Service {
	return &Service{repos: repos}
}

// Create creates a new channel with a unique name
func (s *Service) Create(ctx context.Context, name string, logoURL *string, loop bool) (*models.Channel, error) {
	if len(name) == 0 || len(name) > 255 {
		return nil, fmt.Errorf("failed to create channel: %w", ErrInvalidName)
	}

	ch := models.NewChannel(name, loop)
	ch.LogoURL = logoURL

	if err := s.repos.Channels.Create(ctx, ch); err != nil {
		if db.IsDuplicate(err) {
			logger.Log.Warn().
				Str("name", name).
				Msg("Create channel failed: duplicate name")
			return nil, fmt.Errorf("failed to create channel: %w", ErrDuplicateChannelName)
		}
		logger.Log.Error().
			Err(err).
			Str("name", name).
			Msg("Failed to create channel")
		return nil, fmt.Errorf("failed to create channel: %w", err)
	}

	logger.Log.Info().
		Str("channel_id", ch.ID.String()).
		Str("name", name).
		Msg("Channel created")

	return ch, nil
}

// Get retrieves a channel by ID
func (s *Service) Get(ctx context.Context, id uuid.UUID) (*models.Channel, error) {
	ch, err := s.repos.Channels.GetByID(ctx, id)
	if err != nil {
		if db.IsNotFound(err) {
			return nil, fmt.Errorf("failed to get channel: %w", ErrChannelNotFound)
		}
		return nil, fmt.Errorf("failed to get channel: %w", err)
	}
	return ch, nil
}

// List retrieves all channels
func (s *Service) List(ctx context.Context) ([]*models.Channel, error) {
	channels, err := s.repos.Channels.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list channels: %w", err)
	}
	return channels, nil
}

// Update modifies a channel's name, logo or loop flag
func (s *Service) Update(ctx context.Context, id uuid.UUID, name *string, logoURL *string, loop *bool) (*models.Channel, error) {
	ch, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}

	if name != nil {
		if len(*name) == 0 || len(*name) > 255 {
			return nil, fmt.Errorf("failed to update channel: %w", ErrInvalidName)
		}
		ch.Name = *name
	}
	if logoURL != nil {
		ch.LogoURL = logoURL
	}
	if loop != nil {
		ch.Loop = *loop
	}

	if err := s.repos.Channels.Update(ctx, ch); err != nil {
		if db.IsDuplicate(err) {
			return nil, fmt.Errorf("failed to update channel: %w", ErrDuplicateChannelName)
		}
		logger.Log.Error().
			Err(err).
			Str("channel_id", id.String()).
			Msg("Failed to update channel")
		return nil, fmt.Errorf("failed to update channel: %w", err)
	}

	logger.Log.Info().
		Str("channel_id", id.String()).
		Msg("Channel updated")

	return ch, nil
}

// Delete removes a channel
func (s *Service) Delete(ctx context.Context, id uuid.UUID) error {
	if err := s.repos.Channels.Delete(ctx, id); err != nil {
		if db.IsNotFound(err) {
			return fmt.Errorf("failed to delete channel: %w", ErrChannelNotFound)
		}
		logger.Log.Error().
			Err(err).
			Str("channel_id", id.String()).
			Msg("Failed to delete channel")
		return fmt.Errorf("failed to delete channel: %w", err)
	}

	logger.Log.Info().
		Str("channel_id", id.String()).
		Msg("Channel deleted")

	return nil
}
