package audit

import (
	"encoding/json"
	"fmt"

	"otelspa-backend/internal/database"
	"otelspa-backend/internal/models"

	"gorm.io/gorm"
)

type LogOptions struct {
	UserID      uint
	UserName    string
	EntityType  string
	EntityID    uint
	Action      models.AuditAction
	Description string
	Before      any
	After       any
}

func WriteLog(opts LogOptions) error {
	// PostgreSQL jsonb için boş string yerine "null" JSON string'i kullanmalıyız
	beforeStr := "null"
	afterStr := "null"

	if opts.Before != nil {
		if b, err := json.Marshal(opts.Before); err == nil {
			beforeStr = string(b)
		}
	}
	if opts.After != nil {
		if b, err := json.Marshal(opts.After); err == nil {
			afterStr = string(b)
		}
	}

	log := models.AuditLog{
		UserID:      opts.UserID,
		UserName:    opts.UserName,
		EntityType:  opts.EntityType,
		EntityID:    opts.EntityID,
		Action:      opts.Action,
		Description: opts.Description,
		BeforeData:  beforeStr,
		AfterData:   afterStr,
	}

	if err := database.DB.Create(&log).Error; err != nil {
		return fmt.Errorf("audit log kaydedilemedi: %w", err)
	}

	return nil
}

// ForceDeleteSnapshot: Silinecek oturumun hareket özeti.
// Force-delete transaction'ı başlamadan önce hesaplanır.
type ForceDeleteSnapshot struct {
	IncomeCount   int64
	ExpenseCount  int64
	PurchaseCount int64
	IncomeTotal   float64
	ExpenseTotal  float64
	PurchaseTotal float64
}

// WriteForceDelete: Force-delete kaydını verilen transaction içinde yazar.
// Silme ile aynı transaction'da olmalı; kayıt yazılamazsa silme de geri alınır.
func WriteForceDelete(tx *gorm.DB, actor *models.User, session *models.CashSession, reason string, snap ForceDeleteSnapshot) error {
	sessionJSON, err := json.Marshal(session)
	if err != nil {
		return fmt.Errorf("oturum snapshot'ı serileştirilemedi: %w", err)
	}

	rec := models.ForceDeleteAudit{
		ActorID:       actor.ID,
		ActorName:     actor.Name,
		SessionID:     session.ID,
		RegisterID:    session.RegisterID,
		Reason:        reason,
		IncomeCount:   snap.IncomeCount,
		ExpenseCount:  snap.ExpenseCount,
		PurchaseCount: snap.PurchaseCount,
		IncomeTotal:   snap.IncomeTotal,
		ExpenseTotal:  snap.ExpenseTotal,
		PurchaseTotal: snap.PurchaseTotal,
		SessionData:   string(sessionJSON),
	}

	if err := tx.Create(&rec).Error; err != nil {
		return fmt.Errorf("force-delete kaydı yazılamadı: %w", err)
	}

	return nil
}
