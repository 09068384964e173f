package cashbox

import (
	"errors"

	"github.com/gofiber/fiber/v2"
)

// ToFiber: Servis hatasını HTTP cevabına çevirir.
// ConflictError için çakışan oturum id'si cevapta ayrıca dönülür ki
// istemci mevcut oturuma yönlenebilsin.
func ToFiber(c *fiber.Ctx, err error) error {
	var conflict *ConflictError
	if errors.As(err, &conflict) {
		return c.Status(fiber.StatusConflict).JSON(fiber.Map{
			"error":      conflict.Msg,
			"session_id": conflict.SessionID,
		})
	}

	switch {
	case IsValidation(err):
		return fiber.NewError(fiber.StatusBadRequest, err.Error())
	case IsNotFound(err):
		return fiber.NewError(fiber.StatusNotFound, err.Error())
	case IsState(err):
		return fiber.NewError(fiber.StatusUnprocessableEntity, err.Error())
	case IsAuthorization(err):
		return fiber.NewError(fiber.StatusForbidden, err.Error())
	default:
		return fiber.NewError(fiber.StatusInternalServerError, err.Error())
	}
}
