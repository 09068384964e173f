package models

import "time"

type EntryKind string

const (
	EntryKindIncome   EntryKind = "income"   // para girişi
	EntryKindExpense  EntryKind = "expense"  // gider
	EntryKindPurchase EntryKind = "purchase" // satın alma
)

type PaymentMethod string

const (
	PaymentMethodCash     PaymentMethod = "cash"
	PaymentMethodTransfer PaymentMethod = "transfer"
	PaymentMethodCard     PaymentMethod = "card"
	PaymentMethodOther    PaymentMethod = "other"
)

// LedgerEntry: Açık bir kasa oturumuna bağlı tek hareket kaydı.
// Sadece açık oturum altında oluşturulur, sonradan değiştirilmez.
type LedgerEntry struct {
	ID        uint `gorm:"primaryKey"`
	SessionID uint `gorm:"index;not null"`
	Session   CashSession

	Kind EntryKind `gorm:"size:20;not null;index"`

	// Amount her zaman pozitif; purchase için toplam tutar (quantity * unit_price).
	Amount    float64  `gorm:"not null"`
	Quantity  *float64 // sadece purchase
	UnitPrice *float64 // sadece purchase

	Category      string        `gorm:"size:100"`
	PaymentMethod PaymentMethod `gorm:"size:20;not null"`
	Description   string        `gorm:"size:255"`

	CreatedAt time.Time
	UpdatedAt time.Time
}

// SignedDelta: Hareketin oturum bakiyesine etkisi.
// income bakiyeyi artırır, expense ve purchase azaltır.
func (e *LedgerEntry) SignedDelta() float64 {
	if e.Kind == EntryKindIncome {
		return e.Amount
	}
	return -e.Amount
}

func ValidEntryKind(k EntryKind) bool {
	switch k {
	case EntryKindIncome, EntryKindExpense, EntryKindPurchase:
		return true
	}
	return false
}

func ValidPaymentMethod(m PaymentMethod) bool {
	switch m {
	case PaymentMethodCash, PaymentMethodTransfer, PaymentMethodCard, PaymentMethodOther:
		return true
	}
	return false
}
