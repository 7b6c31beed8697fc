package handlers

import (
	"errors"

	"github.com/gofiber/fiber/v2"

	"github.com/example/aclauto/internal/services"
)

// mapServiceError translates lifecycle/store failures into HTTP errors with
// the messages the back-office UI toasts verbatim.
func mapServiceError(err error) error {
	var (
		transition *services.TransitionError
		mismatch   *services.PaymentMismatchError
	)

	switch {
	case errors.Is(err, services.ErrNotFound):
		return fiber.NewError(fiber.StatusNotFound, "record not found")
	case errors.Is(err, services.ErrOutOfStock):
		return fiber.NewError(fiber.StatusConflict, "no stock left on this sale condition")
	case errors.Is(err, services.ErrValidation):
		return fiber.NewError(fiber.StatusBadRequest, err.Error())
	case errors.As(err, &mismatch):
		return fiber.NewError(fiber.StatusBadRequest, mismatch.Error())
	case errors.As(err, &transition):
		return fiber.NewError(fiber.StatusConflict, transition.Error())
	}
	return err
}
