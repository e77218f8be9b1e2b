package server

import (
	"github.com/gofiber/fiber/v2"

	"github.com/shubhamdasnadas/assetwatch/pkg/models"
)

// SendSuccess writes the standard success envelope.
func SendSuccess(c *fiber.Ctx, status int, data any) error {
	return c.Status(status).JSON(models.APIResponse{
		Status: "success",
		Data:   data,
	})
}

// SendError writes a failure envelope with the general error type.
func SendError(c *fiber.Ctx, status int, message string) error {
	return SendErrorWithType(c, status, message, models.GeneralErrorType)
}

// SendErrorWithType writes a failure envelope with an explicit error type so
// clients can branch on the failure class.
func SendErrorWithType(c *fiber.Ctx, status int, message string, errType models.ErrorType) error {
	return c.Status(status).JSON(models.APIErrorResponse{
		Status:    "error",
		Message:   message,
		ErrorType: errType,
	})
}
