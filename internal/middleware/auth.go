package middleware

import (
	"strings"

	"linkshelf/internal/auth"
	"linkshelf/internal/models"

	"github.com/gofiber/fiber/v2"
)

// AuthConfig configures JWTAuth.
type AuthConfig struct {
	Tokens *auth.TokenManager
	// AllowQueryToken accepts ?token= for clients that cannot set headers (websockets).
	AllowQueryToken bool
}

// JWTAuth enforces a valid bearer token and stores the user ID in
// c.Locals("userID") and the request context.
func JWTAuth(cfg AuthConfig) fiber.Handler {
	return func(c *fiber.Ctx) error {
		tokenString := bearerToken(c.Get(fiber.HeaderAuthorization))
		if tokenString == "" && cfg.AllowQueryToken {
			tokenString = c.Query("token")
		}
		if tokenString == "" {
			return models.RespondWithError(c, fiber.StatusUnauthorized,
				models.NewUnauthorizedError("Authorization required"))
		}

		userID, err := cfg.Tokens.Parse(tokenString)
		if err != nil {
			return models.RespondWithError(c, fiber.StatusUnauthorized,
				models.NewUnauthorizedError("Could not validate credentials"))
		}

		c.Locals("userID", userID)
		c.SetUserContext(WithUserID(c.UserContext(), userID))
		return c.Next()
	}
}

func bearerToken(header string) string {
	parts := strings.Fields(header)
	if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") {
		return ""
	}
	return parts[1]
}
