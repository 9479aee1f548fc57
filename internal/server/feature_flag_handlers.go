package server

import (
	"linkshelf/internal/models"

	"github.com/gofiber/fiber/v2"
)

// GetFeatureFlags returns configured feature flags and evaluated state for current user.
// @Summary Feature flags for the caller
// @Tags info
// @Produce json
// @Security BearerAuth
// @Success 200 {object} models.Envelope
// @Router /features [get]
func (s *Server) GetFeatureFlags(c *fiber.Ctx) error {
	configured := s.featureFlags.Names()
	if configured == nil {
		configured = []string{}
	}
	return models.Respond(c, fiber.StatusOK, "Feature flags", fiber.Map{
		"configured": configured,
		"evaluated":  s.featureFlags.Snapshot(currentUserID(c)),
	})
}
