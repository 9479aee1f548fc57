package service

import (
	"context"
	"strings"

	"linkshelf/internal/cache"
	"linkshelf/internal/models"
	"linkshelf/internal/notifications"
	"linkshelf/internal/repository"
	"linkshelf/internal/validation"
)

type PlaylistService struct {
	playlists repository.PlaylistRepository
	links     repository.LinkRepository
	events    EventPublisher
}

type CreatePlaylistInput struct {
	UserID      uint
	Name        string
	Description *string
	// Visibility is optional and defaults to private.
	Visibility string
}

type UpdatePlaylistInput struct {
	UserID      uint
	PlaylistID  uint
	Name        *string
	Description *string
}

func NewPlaylistService(playlists repository.PlaylistRepository, links repository.LinkRepository, events EventPublisher) *PlaylistService {
	return &PlaylistService{playlists: playlists, links: links, events: events}
}

func (s *PlaylistService) CreatePlaylist(ctx context.Context, in CreatePlaylistInput) (*models.Playlist, error) {
	if err := validation.ValidatePlaylistName(in.Name); err != nil {
		return nil, models.NewValidationError(err.Error())
	}

	visibility := models.VisibilityPrivate
	if strings.TrimSpace(in.Visibility) != "" {
		v, ok := models.ParseVisibility(in.Visibility)
		if !ok {
			return nil, invalidVisibility()
		}
		visibility = v
	}

	playlist := &models.Playlist{
		Name:        strings.TrimSpace(in.Name),
		Description: trimmedOrNil(in.Description),
		UserID:      in.UserID,
		Visibility:  visibility,
	}
	if err := s.playlists.Create(ctx, playlist); err != nil {
		return nil, err
	}
	if playlist.Links == nil {
		playlist.Links = []models.Link{}
	}
	if visibility == models.VisibilityPublic {
		cache.InvalidatePublicPlaylists(ctx)
	}
	return playlist, nil
}

// ChangeVisibility validates raw before any lookup, so a bad value never
// touches storage.
func (s *PlaylistService) ChangeVisibility(ctx context.Context, userID, playlistID uint, raw string) (*models.Playlist, error) {
	visibility, ok := models.ParseVisibility(raw)
	if !ok {
		return nil, invalidVisibility()
	}

	playlist, err := s.ownedPlaylist(ctx, userID, playlistID)
	if err != nil {
		return nil, err
	}

	if playlist.Visibility != visibility {
		if err := s.playlists.UpdateVisibility(ctx, playlistID, visibility); err != nil {
			return nil, err
		}
		playlist.Visibility = visibility
		cache.InvalidatePublicPlaylists(ctx)
		publishEvent(ctx, s.events, userID, notifications.EventPlaylistUpdated, map[string]any{
			"playlist_id": playlist.ID,
			"visibility":  visibility,
		})
	}
	return playlist, nil
}

func (s *PlaylistService) UpdatePlaylist(ctx context.Context, in UpdatePlaylistInput) (*models.Playlist, error) {
	if in.Name == nil && in.Description == nil {
		return nil, models.NewValidationError("Nothing to update")
	}
	if in.Name != nil {
		if err := validation.ValidatePlaylistName(*in.Name); err != nil {
			return nil, models.NewValidationError(err.Error())
		}
	}

	playlist, err := s.ownedPlaylist(ctx, in.UserID, in.PlaylistID)
	if err != nil {
		return nil, err
	}

	if in.Name != nil {
		playlist.Name = strings.TrimSpace(*in.Name)
	}
	if in.Description != nil {
		playlist.Description = trimmedOrNil(in.Description)
	}

	if err := s.playlists.UpdateDetails(ctx, playlist.ID, playlist.Name, playlist.Description); err != nil {
		return nil, err
	}
	if playlist.Visibility == models.VisibilityPublic {
		cache.InvalidatePublicPlaylists(ctx)
	}
	return playlist, nil
}

// AddLink moves one of the user's links into one of their playlists.
func (s *PlaylistService) AddLink(ctx context.Context, userID, playlistID, linkID uint) (*models.Link, error) {
	playlist, err := s.ownedPlaylist(ctx, userID, playlistID)
	if err != nil {
		return nil, err
	}

	link, err := s.links.GetByID(ctx, linkID)
	if err != nil {
		return nil, err
	}
	if link.UserID != userID {
		return nil, models.NewForbiddenError("You do not own this link")
	}

	moved, err := s.links.AssignToPlaylist(ctx, userID, linkID, playlistID)
	if err != nil {
		return nil, err
	}
	if !moved {
		return nil, models.NewConflictError("Link already in playlist")
	}

	// Moving out of a public playlist changes that listing as well.
	previous := link.PlaylistID
	link.PlaylistID = &playlist.ID
	if playlist.Visibility == models.VisibilityPublic || previous != nil {
		cache.InvalidatePublicPlaylists(ctx)
	}
	return link, nil
}

func (s *PlaylistService) ListMine(ctx context.Context, userID uint) ([]models.Playlist, error) {
	playlists, err := s.playlists.ListByUser(ctx, userID)
	if err != nil {
		return nil, err
	}
	return withLinkSlices(playlists), nil
}

// ListPublic returns every public playlist, served from Redis for up to
// cache.PublicPlaylistsTTL.
func (s *PlaylistService) ListPublic(ctx context.Context) ([]models.Playlist, error) {
	var playlists []models.Playlist
	err := cache.Aside(ctx, cache.PublicPlaylistsKey, &playlists, cache.PublicPlaylistsTTL, func() error {
		var err error
		playlists, err = s.playlists.ListPublic(ctx)
		playlists = withLinkSlices(playlists)
		return err
	})
	if err != nil {
		return nil, err
	}
	if playlists == nil {
		playlists = []models.Playlist{}
	}
	return playlists, nil
}

func (s *PlaylistService) ownedPlaylist(ctx context.Context, userID, playlistID uint) (*models.Playlist, error) {
	playlist, err := s.playlists.GetByID(ctx, playlistID)
	if err != nil {
		return nil, err
	}
	if playlist.UserID != userID {
		return nil, models.NewForbiddenError("You do not own this playlist")
	}
	return playlist, nil
}

func invalidVisibility() error {
	return models.NewValidationError("Invalid visibility, expected 'private' or 'public'")
}

func trimmedOrNil(s *string) *string {
	if s == nil {
		return nil
	}
	t := strings.TrimSpace(*s)
	if t == "" {
		return nil
	}
	return &t
}

// withLinkSlices makes empty playlists serialize links as [] rather than null.
func withLinkSlices(playlists []models.Playlist) []models.Playlist {
	for i := range playlists {
		if playlists[i].Links == nil {
			playlists[i].Links = []models.Link{}
		}
	}
	return playlists
}
