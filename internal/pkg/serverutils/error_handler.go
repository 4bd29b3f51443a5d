package serverutils

import (
	"errors"

	"github.com/gofiber/fiber/v2"
)

// ErrorHandlerMiddleware turns errors returned by handlers into the JSON envelope.
func ErrorHandlerMiddleware() fiber.Handler {
	return func(ctx *fiber.Ctx) error {
		err := ctx.Next()
		if err == nil {
			return nil
		}
		return WriteError(ctx, err)
	}
}

// ErrorHandler is the same mapping for fiber.Config.ErrorHandler.
func ErrorHandler(ctx *fiber.Ctx, err error) error {
	return WriteError(ctx, err)
}

func WriteError(ctx *fiber.Ctx, err error) error {
	code := fiber.StatusInternalServerError
	message := "Internal server error"

	var verr *ValidationError
	var ferr *fiber.Error
	switch {
	case errors.As(err, &verr):
		code = fiber.StatusBadRequest
		message = verr.Error()
	case errors.As(err, &ferr):
		code = ferr.Code
		message = ferr.Message
	}

	return ctx.Status(code).JSON(ErrorResponse(code, message))
}
