package utils

import "github.com/gofiber/fiber/v2"

const (
	defaultSuccessMessage = "success"
	defaultErrorMessage   = "error"
)

// APIResponse is the envelope every endpoint answers with.
type APIResponse struct {
	Success bool        `json:"success"`
	Data    interface{} `json:"data,omitempty"`
	Message string      `json:"message"`
	Meta    interface{} `json:"meta,omitempty"`
	Details interface{} `json:"details,omitempty"`
}

func write(c *fiber.Ctx, status int, body APIResponse) error {
	if body.Message == "" {
		body.Message = defaultErrorMessage
		if body.Success {
			body.Message = defaultSuccessMessage
		}
	}
	if status == 0 {
		status = fiber.StatusOK
		if !body.Success {
			status = fiber.StatusInternalServerError
		}
	}
	return c.Status(status).JSON(body)
}

// SendSuccess answers 200 with data.
func SendSuccess(c *fiber.Ctx, message string, data interface{}) error {
	return write(c, fiber.StatusOK, APIResponse{Success: true, Data: data, Message: message})
}

// SendSuccessWithStatus answers with an explicit status, typically 201.
func SendSuccessWithStatus(c *fiber.Ctx, status int, message string, data interface{}) error {
	return write(c, status, APIResponse{Success: true, Data: data, Message: message})
}

// OK answers 200 with data plus pagination or summary metadata.
func OK(c *fiber.Ctx, data interface{}, message string, meta interface{}) error {
	return write(c, fiber.StatusOK, APIResponse{Success: true, Data: data, Message: message, Meta: meta})
}

// SendError answers with a failure envelope.
func SendError(c *fiber.Ctx, status int, message string) error {
	return write(c, status, APIResponse{Message: message})
}

// Fail answers with a failure envelope carrying details, such as field violations.
func Fail(c *fiber.Ctx, status int, message string, details interface{}) error {
	return write(c, status, APIResponse{Message: message, Details: details})
}
