package reconcile

import (
	"fmt"

	"otelspa-backend/internal/cashbox"

	"github.com/gofiber/fiber/v2"
)

// GET /api/sessions/:id/reconciliation
// Beklenen ve cached bakiye karşılaştırması; drift != 0 operatöre sorun
// olarak gösterilir.
func ReportHandler() fiber.Handler {
	return func(c *fiber.Ctx) error {
		var sessionID uint
		if _, err := fmt.Sscan(c.Params("id"), &sessionID); err != nil || sessionID == 0 {
			return fiber.NewError(fiber.StatusBadRequest, "Oturum id geçersiz")
		}

		report, err := BuildReport(sessionID)
		if err != nil {
			return cashbox.ToFiber(c, err)
		}

		return c.JSON(report)
	}
}
