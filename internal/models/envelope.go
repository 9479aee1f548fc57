package models

import "github.com/gofiber/fiber/v2"

// APIVersion is stamped on every response envelope.
const APIVersion = "v1"

// Envelope is the success response shape shared by every API endpoint.
type Envelope struct {
	Version string      `json:"version"`
	Status  int         `json:"status"`
	Message string      `json:"message"`
	Data    interface{} `json:"data,omitempty"`
}

// Respond writes an Envelope with the given status.
func Respond(c *fiber.Ctx, status int, message string, data interface{}) error {
	return c.Status(status).JSON(Envelope{
		Version: APIVersion,
		Status:  status,
		Message: message,
		Data:    data,
	})
}
