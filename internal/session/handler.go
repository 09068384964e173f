package session

import (
	"fmt"
	"log"
	"time"

	"otelspa-backend/internal/audit"
	"otelspa-backend/internal/auth"
	"otelspa-backend/internal/cashbox"
	"otelspa-backend/internal/models"

	"github.com/gofiber/fiber/v2"
)

type OpenSessionRequest struct {
	RegisterID    uint    `json:"register_id"`
	OpeningAmount float64 `json:"opening_amount"`
	Notes         string  `json:"notes"`
}

type CloseSessionRequest struct {
	CountedAmount float64 `json:"counted_amount"`
	Notes         string  `json:"notes"`
}

type ForceDeleteRequest struct {
	Reason string `json:"reason"`
}

type SessionResponse struct {
	ID              uint     `json:"id"`
	SessionNumber   string   `json:"session_number"`
	RegisterID      uint     `json:"register_id"`
	OperatorID      uint     `json:"operator_id"`
	OpeningAmount   float64  `json:"opening_amount"`
	CurrentAmount   float64  `json:"current_amount"`
	Status          string   `json:"status"`
	OpenedAt        string   `json:"opened_at"`
	ClosedAt        *string  `json:"closed_at"`
	ClosingVariance *float64 `json:"closing_variance"`
	Notes           string   `json:"notes"`
}

func toSessionResponse(s *models.CashSession) SessionResponse {
	resp := SessionResponse{
		ID:              s.ID,
		SessionNumber:   s.SessionNumber(),
		RegisterID:      s.RegisterID,
		OperatorID:      s.OperatorID,
		OpeningAmount:   s.OpeningAmount,
		CurrentAmount:   s.CurrentAmount,
		Status:          string(s.Status),
		OpenedAt:        s.OpenedAt.Format("2006-01-02 15:04:05"),
		ClosingVariance: s.ClosingVariance,
		Notes:           s.Notes,
	}
	if s.ClosedAt != nil {
		closedAt := s.ClosedAt.Format("2006-01-02 15:04:05")
		resp.ClosedAt = &closedAt
	}
	return resp
}

// Yardımcı: parametrelerden oturum id'si
func sessionIDParam(c *fiber.Ctx) (uint, error) {
	var id uint
	if _, err := fmt.Sscan(c.Params("id"), &id); err != nil || id == 0 {
		return 0, fiber.NewError(fiber.StatusBadRequest, "Oturum id geçersiz")
	}
	return id, nil
}

// -------------------------------------------------
// POST /api/sessions
// -------------------------------------------------
func OpenSessionHandler() fiber.Handler {
	return func(c *fiber.Ctx) error {
		var body OpenSessionRequest
		if err := c.BodyParser(&body); err != nil {
			return fiber.NewError(fiber.StatusBadRequest, "Geçersiz istek gövdesi")
		}

		if body.RegisterID == 0 {
			return fiber.NewError(fiber.StatusBadRequest, "register_id zorunlu")
		}

		user, err := auth.CurrentUser(c)
		if err != nil {
			return err
		}

		sess, err := Open(body.RegisterID, user.ID, body.OpeningAmount, body.Notes)
		if err != nil {
			return cashbox.ToFiber(c, err)
		}

		if logErr := audit.WriteLog(audit.LogOptions{
			UserID:      user.ID,
			UserName:    user.Name,
			EntityType:  "cash_session",
			EntityID:    sess.ID,
			Action:      models.AuditActionCreate,
			Description: fmt.Sprintf("Oturum açıldı: %s, açılış %.2f", sess.SessionNumber(), sess.OpeningAmount),
			After:       toSessionResponse(sess),
		}); logErr != nil {
			// Log hatası kritik değil, sadece log'la
			log.Printf("Audit log yazılamadı: %v", logErr)
		}

		return c.Status(fiber.StatusCreated).JSON(toSessionResponse(sess))
	}
}

// -------------------------------------------------
// POST /api/sessions/:id/close
// -------------------------------------------------
func CloseSessionHandler() fiber.Handler {
	return func(c *fiber.Ctx) error {
		sessionID, err := sessionIDParam(c)
		if err != nil {
			return err
		}

		var body CloseSessionRequest
		if err := c.BodyParser(&body); err != nil {
			return fiber.NewError(fiber.StatusBadRequest, "Geçersiz istek gövdesi")
		}

		user, err := auth.CurrentUser(c)
		if err != nil {
			return err
		}

		before, err := GetByID(sessionID)
		if err != nil {
			return cashbox.ToFiber(c, err)
		}

		sess, err := Close(sessionID, body.CountedAmount, body.Notes)
		if err != nil {
			return cashbox.ToFiber(c, err)
		}

		variance := 0.0
		if sess.ClosingVariance != nil {
			variance = *sess.ClosingVariance
		}
		if logErr := audit.WriteLog(audit.LogOptions{
			UserID:      user.ID,
			UserName:    user.Name,
			EntityType:  "cash_session",
			EntityID:    sess.ID,
			Action:      models.AuditActionClose,
			Description: fmt.Sprintf("Oturum kapatıldı: %s, sayılan %.2f, fark %+.2f", sess.SessionNumber(), body.CountedAmount, variance),
			Before:      toSessionResponse(before),
			After:       toSessionResponse(sess),
		}); logErr != nil {
			log.Printf("Audit log yazılamadı: %v", logErr)
		}

		return c.JSON(toSessionResponse(sess))
	}
}

// -------------------------------------------------
// GET /api/sessions/current?register_id=1
// -------------------------------------------------
func GetCurrentSessionHandler() fiber.Handler {
	return func(c *fiber.Ctx) error {
		var registerID uint
		if _, err := fmt.Sscan(c.Query("register_id"), &registerID); err != nil || registerID == 0 {
			return fiber.NewError(fiber.StatusBadRequest, "register_id zorunlu")
		}

		sess, err := GetCurrent(registerID)
		if err != nil {
			return cashbox.ToFiber(c, err)
		}
		if sess == nil {
			// Açık oturum yok; istemci "oturum aç" ekranını gösterir
			return c.JSON(fiber.Map{"session": nil})
		}

		return c.JSON(fiber.Map{"session": toSessionResponse(sess)})
	}
}

// -------------------------------------------------
// GET /api/sessions?register_id=1&status=open&from=2025-12-01&to=2025-12-31
// -------------------------------------------------
func ListSessionsHandler() fiber.Handler {
	return func(c *fiber.Ctx) error {
		var filter ListFilter

		if ridStr := c.Query("register_id"); ridStr != "" {
			var rid uint
			if _, err := fmt.Sscan(ridStr, &rid); err != nil || rid == 0 {
				return fiber.NewError(fiber.StatusBadRequest, "register_id geçersiz")
			}
			filter.RegisterID = rid
		}

		if statusStr := c.Query("status"); statusStr != "" {
			status := models.SessionStatus(statusStr)
			if status != models.SessionStatusOpen && status != models.SessionStatusClosed {
				return fiber.NewError(fiber.StatusBadRequest, "status geçersiz (open|closed)")
			}
			filter.Status = status
		}

		if fromStr := c.Query("from"); fromStr != "" {
			from, err := time.Parse("2006-01-02", fromStr)
			if err != nil {
				return fiber.NewError(fiber.StatusBadRequest, "from tarihi geçersiz")
			}
			filter.From = &from
		}

		if toStr := c.Query("to"); toStr != "" {
			to, err := time.Parse("2006-01-02", toStr)
			if err != nil {
				return fiber.NewError(fiber.StatusBadRequest, "to tarihi geçersiz")
			}
			filter.To = &to
		}

		sessions, err := List(filter)
		if err != nil {
			return cashbox.ToFiber(c, err)
		}

		resp := make([]SessionResponse, 0, len(sessions))
		for i := range sessions {
			resp = append(resp, toSessionResponse(&sessions[i]))
		}

		return c.JSON(resp)
	}
}

// -------------------------------------------------
// GET /api/sessions/:id
// -------------------------------------------------
func GetSessionHandler() fiber.Handler {
	return func(c *fiber.Ctx) error {
		sessionID, err := sessionIDParam(c)
		if err != nil {
			return err
		}

		sess, err := GetByID(sessionID)
		if err != nil {
			return cashbox.ToFiber(c, err)
		}

		return c.JSON(toSessionResponse(sess))
	}
}

// -------------------------------------------------
// DELETE /api/sessions/:id
// Sadece boş ve açık oturumlar; gerisi force-delete ister.
// -------------------------------------------------
func DeleteSessionHandler() fiber.Handler {
	return func(c *fiber.Ctx) error {
		sessionID, err := sessionIDParam(c)
		if err != nil {
			return err
		}

		user, err := auth.CurrentUser(c)
		if err != nil {
			return err
		}

		before, err := GetByID(sessionID)
		if err != nil {
			return cashbox.ToFiber(c, err)
		}

		if err := Delete(sessionID); err != nil {
			return cashbox.ToFiber(c, err)
		}

		if logErr := audit.WriteLog(audit.LogOptions{
			UserID:      user.ID,
			UserName:    user.Name,
			EntityType:  "cash_session",
			EntityID:    sessionID,
			Action:      models.AuditActionDelete,
			Description: fmt.Sprintf("Boş oturum silindi: %s", before.SessionNumber()),
			Before:      toSessionResponse(before),
		}); logErr != nil {
			log.Printf("Audit log yazılamadı: %v", logErr)
		}

		return c.JSON(fiber.Map{"deleted": true, "session_id": sessionID})
	}
}

// -------------------------------------------------
// DELETE /api/admin/sessions/:id/force
// Oturum + tüm hareketleri tek transaction'da; neden zorunlu.
// -------------------------------------------------
func ForceDeleteSessionHandler() fiber.Handler {
	return func(c *fiber.Ctx) error {
		sessionID, err := sessionIDParam(c)
		if err != nil {
			return err
		}

		var body ForceDeleteRequest
		if err := c.BodyParser(&body); err != nil {
			return fiber.NewError(fiber.StatusBadRequest, "Geçersiz istek gövdesi")
		}
		if body.Reason == "" {
			return fiber.NewError(fiber.StatusBadRequest, "Silme nedeni zorunlu")
		}

		user, err := auth.CurrentUser(c)
		if err != nil {
			return err
		}

		result, err := ForceDelete(sessionID, user, body.Reason)
		if err != nil {
			return cashbox.ToFiber(c, err)
		}

		return c.JSON(fiber.Map{
			"deleted":         true,
			"session_id":      result.SessionID,
			"deleted_entries": result.DeletedEntries,
			"income_count":    result.Snapshot.IncomeCount,
			"expense_count":   result.Snapshot.ExpenseCount,
			"purchase_count":  result.Snapshot.PurchaseCount,
		})
	}
}
