package audit

import (
	"fmt"

	"otelspa-backend/internal/database"
	"otelspa-backend/internal/models"

	"github.com/gofiber/fiber/v2"
)

type AuditLogResponse struct {
	ID          uint               `json:"id"`
	CreatedAt   string             `json:"created_at"`
	UserID      uint               `json:"user_id"`
	UserName    string             `json:"user_name"`
	EntityType  string             `json:"entity_type"`
	EntityID    uint               `json:"entity_id"`
	Action      models.AuditAction `json:"action"`
	Description string             `json:"description"`
}

type ForceDeleteAuditResponse struct {
	ID            uint    `json:"id"`
	CreatedAt     string  `json:"created_at"`
	ActorID       uint    `json:"actor_id"`
	ActorName     string  `json:"actor_name"`
	SessionID     uint    `json:"session_id"`
	RegisterID    uint    `json:"register_id"`
	Reason        string  `json:"reason"`
	IncomeCount   int64   `json:"income_count"`
	ExpenseCount  int64   `json:"expense_count"`
	PurchaseCount int64   `json:"purchase_count"`
	IncomeTotal   float64 `json:"income_total"`
	ExpenseTotal  float64 `json:"expense_total"`
	PurchaseTotal float64 `json:"purchase_total"`
	SessionData   string  `json:"session_data"`
}

// GET /api/audit-logs?entity_type=cash_session&entity_id=1&user_id=2
func ListAuditLogsHandler() fiber.Handler {
	return func(c *fiber.Ctx) error {
		entityType := c.Query("entity_type")
		entityIDStr := c.Query("entity_id")
		userIDStr := c.Query("user_id")

		dbq := database.DB.Model(&models.AuditLog{})

		if userIDStr != "" {
			var uid uint
			if _, err := fmt.Sscan(userIDStr, &uid); err == nil && uid > 0 {
				dbq = dbq.Where("user_id = ?", uid)
			}
		}

		if entityType != "" {
			dbq = dbq.Where("entity_type = ?", entityType)
		}

		if entityIDStr != "" {
			var eid uint
			if _, err := fmt.Sscan(entityIDStr, &eid); err == nil && eid > 0 {
				dbq = dbq.Where("entity_id = ?", eid)
			}
		}

		var logs []models.AuditLog
		if err := dbq.Order("created_at DESC").Find(&logs).Error; err != nil {
			return fiber.NewError(fiber.StatusInternalServerError, "Loglar listelenemedi")
		}

		resp := make([]AuditLogResponse, 0, len(logs))
		for _, l := range logs {
			resp = append(resp, AuditLogResponse{
				ID:          l.ID,
				CreatedAt:   l.CreatedAt.Format("2006-01-02 15:04:05"),
				UserID:      l.UserID,
				UserName:    l.UserName,
				EntityType:  l.EntityType,
				EntityID:    l.EntityID,
				Action:      l.Action,
				Description: l.Description,
			})
		}

		return c.JSON(resp)
	}
}

// GET /api/admin/force-delete-audits?session_id=3
// Sadece super admin route'unda; kayıtlar append-only, silme/güncelleme yok.
func ListForceDeleteAuditsHandler() fiber.Handler {
	return func(c *fiber.Ctx) error {
		dbq := database.DB.Model(&models.ForceDeleteAudit{})

		if sidStr := c.Query("session_id"); sidStr != "" {
			var sid uint
			if _, err := fmt.Sscan(sidStr, &sid); err == nil && sid > 0 {
				dbq = dbq.Where("session_id = ?", sid)
			}
		}

		var recs []models.ForceDeleteAudit
		if err := dbq.Order("created_at DESC").Find(&recs).Error; err != nil {
			return fiber.NewError(fiber.StatusInternalServerError, "Kayıtlar listelenemedi")
		}

		resp := make([]ForceDeleteAuditResponse, 0, len(recs))
		for _, r := range recs {
			resp = append(resp, ForceDeleteAuditResponse{
				ID:            r.ID,
				CreatedAt:     r.CreatedAt.Format("2006-01-02 15:04:05"),
				ActorID:       r.ActorID,
				ActorName:     r.ActorName,
				SessionID:     r.SessionID,
				RegisterID:    r.RegisterID,
				Reason:        r.Reason,
				IncomeCount:   r.IncomeCount,
				ExpenseCount:  r.ExpenseCount,
				PurchaseCount: r.PurchaseCount,
				IncomeTotal:   r.IncomeTotal,
				ExpenseTotal:  r.ExpenseTotal,
				PurchaseTotal: r.PurchaseTotal,
				SessionData:   r.SessionData,
			})
		}

		return c.JSON(resp)
	}
}
