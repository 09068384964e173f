package models

import "time"

// ForceDeleteAudit: Admin force-delete işleminin kalıcı kaydı.
// Oturum ve hareketleri silinirken aynı transaction içinde yazılır.
// Append-only; sonraki force-delete'lerden etkilenmez, undo yolu yok.
type ForceDeleteAudit struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	CreatedAt time.Time `json:"created_at"`

	ActorID   uint   `gorm:"not null" json:"actor_id"`
	ActorName string `gorm:"size:100" json:"actor_name"` // denormalize

	SessionID  uint   `gorm:"index;not null" json:"session_id"`
	RegisterID uint   `gorm:"index" json:"register_id"`
	Reason     string `gorm:"size:255;not null" json:"reason"`

	// Silinen hareketlerin özeti (adet ve toplam tutar, tür bazında)
	IncomeCount   int64   `json:"income_count"`
	ExpenseCount  int64   `json:"expense_count"`
	PurchaseCount int64   `json:"purchase_count"`
	IncomeTotal   float64 `json:"income_total"`
	ExpenseTotal  float64 `json:"expense_total"`
	PurchaseTotal float64 `json:"purchase_total"`

	// Silinen oturumun son hali (JSON)
	SessionData string `gorm:"type:jsonb" json:"session_data"`
}
