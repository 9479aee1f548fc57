package server

import (
	"linkshelf/internal/models"
	"linkshelf/internal/repository"
	"linkshelf/internal/service"

	"github.com/gofiber/fiber/v2"
)

// IngestResponse is the data payload of both submission endpoints.
type IngestResponse struct {
	Links    []*models.Link `json:"links"`
	Source   string         `json:"source"`
	Uploader string         `json:"uploader"`
	Skipped  []string       `json:"skipped"`
}

// CreateLinks handles POST /api/v1/links
// @Summary Submit links
// @Description Stores new URLs for the caller; URLs already on file are skipped
// @Tags links
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param request body object{links=[]string} true "Links"
// @Success 201 {object} models.Envelope{data=IngestResponse}
// @Success 200 {object} models.Envelope "No new links to add"
// @Failure 400 {object} models.ErrorResponse
// @Router /links [post]
func (s *Server) CreateLinks(c *fiber.Ctx) error {
	var req struct {
		Links []string `json:"links"`
	}
	if err := c.BodyParser(&req); err != nil {
		return badRequest(c, "Invalid request body")
	}

	res, err := s.linkService.Ingest(c.UserContext(), service.IngestInput{
		UserID: currentUserID(c),
		URLs:   req.Links,
		Source: models.SourceManual,
	})
	if err != nil {
		return respondServiceError(c, err)
	}
	return s.respondIngest(c, res, models.SourceManual)
}

// UploadLinkFiles handles POST /api/v1/links/upload
// @Summary Upload link files
// @Description Extracts URLs from .txt, .csv, .xlsx or .pdf files and stores the new ones
// @Tags links
// @Accept multipart/form-data
// @Produce json
// @Security BearerAuth
// @Param files formData file true "One or more files"
// @Success 201 {object} models.Envelope{data=IngestResponse}
// @Failure 400 {object} models.ErrorResponse
// @Router /links/upload [post]
func (s *Server) UploadLinkFiles(c *fiber.Ctx) error {
	form, err := c.MultipartForm()
	if err != nil {
		return badRequest(c, "Expected multipart form with files")
	}
	headers := form.File["files"]
	if len(headers) == 0 {
		headers = form.File["file"]
	}
	if len(headers) == 0 {
		return badRequest(c, "No files uploaded")
	}

	files := make([]service.UploadedFile, 0, len(headers))
	for _, fh := range headers {
		content, err := readUpload(fh)
		if err != nil {
			return models.RespondWithError(c, fiber.StatusInternalServerError, models.NewInternalError(err))
		}
		files = append(files, service.UploadedFile{Filename: fh.Filename, Content: content})
	}

	res, err := s.linkService.IngestFiles(c.UserContext(), currentUserID(c), files)
	if err != nil {
		return respondServiceError(c, err)
	}
	return s.respondIngest(c, res, models.SourceFile)
}

func (s *Server) respondIngest(c *fiber.Ctx, res *service.IngestResult, source models.LinkSource) error {
	skipped := res.Skipped
	if skipped == nil {
		skipped = []string{}
	}
	if res.NothingNew {
		return models.Respond(c, fiber.StatusOK, "No new links to add", fiber.Map{"skipped": skipped})
	}

	var uploader string
	if profile, err := s.userService.GetProfile(c.UserContext(), currentUserID(c)); err == nil {
		uploader = profile.Email
	}

	return models.Respond(c, fiber.StatusCreated, "Links have been uploaded successfully", IngestResponse{
		Links:    res.Links,
		Source:   string(source),
		Uploader: uploader,
		Skipped:  skipped,
	})
}

// GetLinks handles GET /api/v1/links
// @Summary List own links
// @Tags links
// @Produce json
// @Security BearerAuth
// @Param limit query int false "Page size"
// @Param offset query int false "Offset"
// @Success 200 {object} models.Envelope{data=[]models.Link}
// @Router /links [get]
func (s *Server) GetLinks(c *fiber.Ctx) error {
	page := parsePagination(c, service.DefaultLinkPageSize)
	links, err := s.linkService.ListLinks(c.UserContext(), currentUserID(c), page.Limit, page.Offset)
	if err != nil {
		return respondServiceError(c, err)
	}
	if links == nil {
		links = []models.Link{}
	}
	return models.Respond(c, fiber.StatusOK, "Links retrieved", links)
}

// DeleteLink handles DELETE /api/v1/links/:id
// @Summary Delete a link
// @Tags links
// @Security BearerAuth
// @Param id path int true "Link ID"
// @Success 200 {object} models.Envelope
// @Failure 404 {object} models.ErrorResponse
// @Router /links/{id} [delete]
func (s *Server) DeleteLink(c *fiber.Ctx) error {
	id, err := parseID(c, "id")
	if err != nil {
		return nil
	}
	if err := s.linkService.DeleteLink(c.UserContext(), currentUserID(c), id); err != nil {
		return respondServiceError(c, err)
	}
	return models.Respond(c, fiber.StatusOK, "Link deleted", nil)
}

// UpdateLinkProgress handles PATCH /api/v1/links/:id/progress
// @Summary Record watch progress
// @Tags links
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path int true "Link ID"
// @Param request body object{last_watched_seconds=int,completed=bool} true "Progress"
// @Success 200 {object} models.Envelope{data=models.Link}
// @Router /links/{id}/progress [patch]
func (s *Server) UpdateLinkProgress(c *fiber.Ctx) error {
	id, err := parseID(c, "id")
	if err != nil {
		return nil
	}
	var req struct {
		LastWatchedSeconds *int  `json:"last_watched_seconds"`
		Completed          *bool `json:"completed"`
	}
	if err := c.BodyParser(&req); err != nil {
		return badRequest(c, "Invalid request body")
	}

	link, err := s.linkService.UpdateProgress(c.UserContext(), currentUserID(c), id, repository.ProgressUpdate{
		LastWatchedSeconds: req.LastWatchedSeconds,
		Completed:          req.Completed,
	})
	if err != nil {
		return respondServiceError(c, err)
	}
	return models.Respond(c, fiber.StatusOK, "Progress updated", link)
}
