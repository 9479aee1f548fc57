package server

import (
	"linkshelf/internal/models"
	"linkshelf/internal/service"

	"github.com/gofiber/fiber/v2"
)

// CreatePlaylist handles POST /api/v1/playlists
// @Summary Create playlist
// @Tags playlists
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param request body object{name=string,description=string,visibility=string} true "Playlist"
// @Success 201 {object} models.Envelope{data=models.Playlist}
// @Failure 400 {object} models.ErrorResponse
// @Router /playlists [post]
func (s *Server) CreatePlaylist(c *fiber.Ctx) error {
	var req struct {
		Name        string  `json:"name"`
		Description *string `json:"description"`
		Visibility  string  `json:"visibility"`
	}
	if err := c.BodyParser(&req); err != nil {
		return badRequest(c, "Invalid request body")
	}

	playlist, err := s.playlistService.CreatePlaylist(c.UserContext(), service.CreatePlaylistInput{
		UserID:      currentUserID(c),
		Name:        req.Name,
		Description: req.Description,
		Visibility:  req.Visibility,
	})
	if err != nil {
		return respondServiceError(c, err)
	}
	return models.Respond(c, fiber.StatusCreated, "Playlist created", playlist)
}

// GetMyPlaylists handles GET /api/v1/playlists
// @Summary Own playlists with their links
// @Tags playlists
// @Produce json
// @Security BearerAuth
// @Success 200 {object} models.Envelope{data=[]models.Playlist}
// @Router /playlists [get]
func (s *Server) GetMyPlaylists(c *fiber.Ctx) error {
	playlists, err := s.playlistService.ListMine(c.UserContext(), currentUserID(c))
	if err != nil {
		return respondServiceError(c, err)
	}
	if playlists == nil {
		playlists = []models.Playlist{}
	}
	return models.Respond(c, fiber.StatusOK, "Playlists retrieved", playlists)
}

// GetPublicPlaylists handles GET /api/v1/playlists/public
// @Summary Public playlists
// @Tags playlists
// @Produce json
// @Success 200 {object} models.Envelope{data=[]models.Playlist}
// @Router /playlists/public [get]
func (s *Server) GetPublicPlaylists(c *fiber.Ctx) error {
	playlists, err := s.playlistService.ListPublic(c.UserContext())
	if err != nil {
		return respondServiceError(c, err)
	}
	return models.Respond(c, fiber.StatusOK, "Public playlists retrieved", playlists)
}

// UpdatePlaylist handles PATCH /api/v1/playlists/:id
// @Summary Rename or describe a playlist
// @Tags playlists
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path int true "Playlist ID"
// @Param request body object{name=string,description=string} true "Changes"
// @Success 200 {object} models.Envelope{data=models.Playlist}
// @Failure 403 {object} models.ErrorResponse
// @Router /playlists/{id} [patch]
func (s *Server) UpdatePlaylist(c *fiber.Ctx) error {
	id, err := parseID(c, "id")
	if err != nil {
		return nil
	}
	var req struct {
		Name        *string `json:"name"`
		Description *string `json:"description"`
	}
	if err := c.BodyParser(&req); err != nil {
		return badRequest(c, "Invalid request body")
	}

	playlist, err := s.playlistService.UpdatePlaylist(c.UserContext(), service.UpdatePlaylistInput{
		UserID:      currentUserID(c),
		PlaylistID:  id,
		Name:        req.Name,
		Description: req.Description,
	})
	if err != nil {
		return respondServiceError(c, err)
	}
	return models.Respond(c, fiber.StatusOK, "Playlist updated", playlist)
}

// UpdatePlaylistVisibility handles PATCH /api/v1/playlists/:id/visibility
// @Summary Change playlist visibility
// @Tags playlists
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path int true "Playlist ID"
// @Param request body object{visibility=string} true "private or public"
// @Success 200 {object} models.Envelope{data=models.Playlist}
// @Failure 400 {object} models.ErrorResponse
// @Failure 403 {object} models.ErrorResponse
// @Failure 404 {object} models.ErrorResponse
// @Router /playlists/{id}/visibility [patch]
func (s *Server) UpdatePlaylistVisibility(c *fiber.Ctx) error {
	id, err := parseID(c, "id")
	if err != nil {
		return nil
	}
	var req struct {
		Visibility string `json:"visibility"`
	}
	if err := c.BodyParser(&req); err != nil {
		return badRequest(c, "Invalid request body")
	}

	playlist, err := s.playlistService.ChangeVisibility(c.UserContext(), currentUserID(c), id, req.Visibility)
	if err != nil {
		return respondServiceError(c, err)
	}
	return models.Respond(c, fiber.StatusOK, "Playlist visibility updated", playlist)
}

// AddLinkToPlaylist handles POST /api/v1/playlists/:id/links
// @Summary Add a link to a playlist
// @Tags playlists
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path int true "Playlist ID"
// @Param request body object{link_id=int} true "Link"
// @Success 200 {object} models.Envelope{data=models.Link}
// @Failure 409 {object} models.ErrorResponse
// @Router /playlists/{id}/links [post]
func (s *Server) AddLinkToPlaylist(c *fiber.Ctx) error {
	id, err := parseID(c, "id")
	if err != nil {
		return nil
	}
	var req struct {
		LinkID uint `json:"link_id"`
	}
	if err := c.BodyParser(&req); err != nil || req.LinkID == 0 {
		return badRequest(c, "link_id is required")
	}

	link, err := s.playlistService.AddLink(c.UserContext(), currentUserID(c), id, req.LinkID)
	if err != nil {
		return respondServiceError(c, err)
	}
	return models.Respond(c, fiber.StatusOK, "Link added to playlist", link)
}
