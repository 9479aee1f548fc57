package server

import (
	"io"
	"mime/multipart"

	"linkshelf/internal/models"

	"github.com/gofiber/fiber/v2"
)

// GetMyProfile handles GET /api/v1/users/me
// @Summary Current user's profile
// @Tags users
// @Produce json
// @Security BearerAuth
// @Success 200 {object} models.Envelope{data=models.Profile}
// @Failure 401 {object} models.ErrorResponse
// @Router /users/me [get]
func (s *Server) GetMyProfile(c *fiber.Ctx) error {
	profile, err := s.userService.GetProfile(c.UserContext(), currentUserID(c))
	if err != nil {
		return respondServiceError(c, err)
	}
	return models.Respond(c, fiber.StatusOK, "Profile retrieved", profile)
}

// UploadProfileImage handles POST /api/v1/users/me/profile-image
// @Summary Upload profile image
// @Description The image is cropped to a square and stored as 512x512 WebP
// @Tags users
// @Accept multipart/form-data
// @Produce json
// @Security BearerAuth
// @Param file formData file true "Image file"
// @Success 200 {object} models.Envelope{data=storage.StoredFile}
// @Failure 400 {object} models.ErrorResponse
// @Router /users/me/profile-image [post]
func (s *Server) UploadProfileImage(c *fiber.Ctx) error {
	fileHeader, err := c.FormFile("file")
	if err != nil {
		return badRequest(c, "No file uploaded")
	}
	content, err := readUpload(fileHeader)
	if err != nil {
		return models.RespondWithError(c, fiber.StatusInternalServerError, models.NewInternalError(err))
	}

	stored, err := s.userService.UploadProfileImage(c.UserContext(), currentUserID(c), content)
	if err != nil {
		return respondServiceError(c, err)
	}
	return models.Respond(c, fiber.StatusOK, "Profile image uploaded and updated successfully", stored)
}

// DeleteProfileImage handles DELETE /api/v1/users/me/profile-image
// @Summary Remove profile image
// @Tags users
// @Security BearerAuth
// @Success 200 {object} models.Envelope
// @Failure 404 {object} models.ErrorResponse
// @Router /users/me/profile-image [delete]
func (s *Server) DeleteProfileImage(c *fiber.Ctx) error {
	if err := s.userService.DeleteProfileImage(c.UserContext(), currentUserID(c)); err != nil {
		return respondServiceError(c, err)
	}
	return models.Respond(c, fiber.StatusOK, "Profile image removed", nil)
}

func readUpload(fh *multipart.FileHeader) ([]byte, error) {
	f, err := fh.Open()
	if err != nil {
		return nil, err
	}
	defer func() { _ = f.Close() }()
	return io.ReadAll(f)
}
