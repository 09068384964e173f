package models

import (
	"fmt"
	"time"
)

type SessionStatus string

const (
	SessionStatusOpen   SessionStatus = "open"
	SessionStatusClosed SessionStatus = "closed"
	// "suspended" eski veride görülüyor ama hiçbir akış bu duruma geçmiyor.
	// İş kuralı netleşene kadar rezerve; open/close makinesine dahil değil.
	SessionStatusSuspended SessionStatus = "suspended"
)

// CashSession: Bir kasanın açılıştan kapanışa kadar süren hesap dönemi.
// Açıkken bakiye hareketlerle güncellenir, kapandıktan sonra değişmez.
// Normal silme yolu yok; sadece admin force-delete ile kaldırılabilir.
type CashSession struct {
	ID         uint `gorm:"primaryKey"`
	RegisterID uint `gorm:"index;not null"`
	Register   CashRegister
	OperatorID uint `gorm:"index;not null"`
	Operator   User `gorm:"foreignKey:OperatorID"`

	OpeningAmount float64 `gorm:"not null"` // açılış tutarı
	CurrentAmount float64 `gorm:"not null"` // güncel bakiye (hareketlerle tutulur)

	Status   SessionStatus `gorm:"size:20;not null;index"`
	OpenedAt time.Time     `gorm:"not null"`
	ClosedAt *time.Time    // kapalıysa dolu, açıkken null

	// countedAmount - beklenen bakiye; kapanana kadar null
	ClosingVariance *float64

	Notes string `gorm:"size:1000"`

	CreatedAt time.Time
	UpdatedAt time.Time
}

// SessionNumber: Kullanıcıya gösterilen oturum numarası ("S12" gibi).
func (s *CashSession) SessionNumber() string {
	return fmt.Sprintf("S%d", s.ID)
}
