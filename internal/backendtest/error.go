package backendtest

import (
	"github.com/gofiber/fiber/v2"
)

// errorPayload mirrors the backend's error body: {"detail": "..."}.
type errorPayload struct {
	Detail string `json:"detail"`
}

func writeError(c *fiber.Ctx, status int, detail string) error {
	return c.Status(status).JSON(errorPayload{Detail: detail})
}

// errorHandler standardizes unhandled errors and unknown routes into the backend's error shape.
func errorHandler() fiber.ErrorHandler {
	return func(c *fiber.Ctx, err error) error {
		status := fiber.StatusInternalServerError
		if e, ok := err.(*fiber.Error); ok {
			status = e.Code
		}

		switch status {
		case fiber.StatusBadRequest:
			return writeError(c, status, "Bad Request")
		case fiber.StatusNotFound:
			return writeError(c, status, "Not Found")
		case fiber.StatusMethodNotAllowed:
			return writeError(c, status, "Method Not Allowed")
		default:
			return writeError(c, status, "Internal Server Error")
		}
	}
}
