package server

import (
	"errors"
	"os"

	"linkshelf/internal/imaging"
	"linkshelf/internal/models"
	"linkshelf/internal/storage"

	"github.com/gofiber/fiber/v2"
)

// serveLocalFile streams a blob written by the local store.
func (s *Server) serveLocalFile(local *storage.LocalStore) fiber.Handler {
	return func(c *fiber.Ctx) error {
		path, err := local.Path(c.Params("id"))
		if err != nil {
			return models.RespondWithError(c, fiber.StatusNotFound,
				&models.AppError{Code: models.CodeNotFound, Message: "File not found"})
		}
		if _, statErr := os.Stat(path); statErr != nil {
			if errors.Is(statErr, os.ErrNotExist) {
				return models.RespondWithError(c, fiber.StatusNotFound,
					&models.AppError{Code: models.CodeNotFound, Message: "File not found"})
			}
			return models.RespondWithError(c, fiber.StatusInternalServerError, models.NewInternalError(statErr))
		}
		c.Set(fiber.HeaderCacheControl, "public, max-age=86400")
		c.Type(imaging.ProfileFileExt)
		return c.SendFile(path)
	}
}
