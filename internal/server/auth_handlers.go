package server

import (
	"linkshelf/internal/models"
	"linkshelf/internal/service"

	"github.com/gofiber/fiber/v2"
)

// TokenResponse is returned by a successful login.
type TokenResponse struct {
	AccessToken string `json:"access_token"`
	TokenType   string `json:"token_type"`
	ExpiresIn   int    `json:"expires_in"`
}

// Register handles POST /api/v1/auth/register
// @Summary Register
// @Description Create an account with email and password
// @Tags auth
// @Accept json
// @Produce json
// @Param request body object{email=string,password=string} true "Registration"
// @Success 201 {object} models.Envelope{data=models.User}
// @Failure 400 {object} models.ErrorResponse
// @Failure 409 {object} models.ErrorResponse
// @Router /auth/register [post]
func (s *Server) Register(c *fiber.Ctx) error {
	var req struct {
		Email    string `json:"email"`
		Password string `json:"password"`
	}
	if err := c.BodyParser(&req); err != nil {
		return badRequest(c, "Invalid request body")
	}

	user, err := s.userService.Register(c.UserContext(), service.RegisterInput{
		Email:    req.Email,
		Password: req.Password,
	})
	if err != nil {
		return respondServiceError(c, err)
	}

	return models.Respond(c, fiber.StatusCreated, "User has been registered successfully", user)
}

// Login handles POST /api/v1/auth/login. It accepts a JSON body with
// email/password or an OAuth2 password form with username/password.
// @Summary Login
// @Description Exchange credentials for a bearer token
// @Tags auth
// @Accept json,x-www-form-urlencoded
// @Produce json
// @Param request body object{email=string,password=string} true "Credentials"
// @Success 200 {object} models.Envelope{data=TokenResponse}
// @Failure 401 {object} models.ErrorResponse
// @Router /auth/login [post]
func (s *Server) Login(c *fiber.Ctx) error {
	var req struct {
		Email    string `json:"email" form:"email"`
		Username string `json:"username" form:"username"`
		Password string `json:"password" form:"password"`
	}
	if err := c.BodyParser(&req); err != nil {
		return badRequest(c, "Invalid request body")
	}

	email := req.Email
	if email == "" {
		email = req.Username
	}
	if email == "" || req.Password == "" {
		return badRequest(c, "Email and password are required")
	}

	user, err := s.userService.Authenticate(c.UserContext(), email, req.Password)
	if err != nil {
		return respondServiceError(c, err)
	}

	token, err := s.tokens.Issue(user.ID)
	if err != nil {
		return models.RespondWithError(c, fiber.StatusInternalServerError, models.NewInternalError(err))
	}

	return models.Respond(c, fiber.StatusOK, "Login successful", TokenResponse{
		AccessToken: token,
		TokenType:   "bearer",
		ExpiresIn:   int(s.tokens.TTL().Seconds()),
	})
}

// Info handles GET /api/v1/info
// @Summary API info
// @Tags info
// @Produce json
// @Success 200 {object} models.Envelope
// @Router /info [get]
func (s *Server) Info(c *fiber.Ctx) error {
	return models.Respond(c, fiber.StatusOK, "This is v1", fiber.Map{
		"name":     "linkshelf",
		"features": s.featureFlags.Snapshot(currentUserID(c)),
	})
}
