// Package ledger, açık oturumlara hareket (gelir/gider/satın alma)
// ekler. Hareket satırı ve bakiye güncellemesi tek transaction'dır;
// biri olmadan diğeri asla görünmez.
package ledger

import (
	"otelspa-backend/internal/cashbox"
	"otelspa-backend/internal/database"
	"otelspa-backend/internal/models"
	"otelspa-backend/internal/reconcile"
)

func RecordIncome(sessionID uint, amount float64, category string, method models.PaymentMethod, description string) (*models.LedgerEntry, error) {
	return record(models.LedgerEntry{
		SessionID:     sessionID,
		Kind:          models.EntryKindIncome,
		Amount:        amount,
		Category:      category,
		PaymentMethod: method,
		Description:   description,
	})
}

func RecordExpense(sessionID uint, amount float64, category string, method models.PaymentMethod, description string) (*models.LedgerEntry, error) {
	return record(models.LedgerEntry{
		SessionID:     sessionID,
		Kind:          models.EntryKindExpense,
		Amount:        amount,
		Category:      category,
		PaymentMethod: method,
		Description:   description,
	})
}

// RecordPurchase: Tutar miktar × birim fiyattan hesaplanır; bakiye
// etkisi gider gibidir (azaltır).
func RecordPurchase(sessionID uint, quantity, unitPrice float64, category string, method models.PaymentMethod, description string) (*models.LedgerEntry, error) {
	if quantity <= 0 {
		return nil, cashbox.Validationf("Miktar 0'dan büyük olmalı")
	}
	if unitPrice <= 0 {
		return nil, cashbox.Validationf("Birim fiyat 0'dan büyük olmalı")
	}

	return record(models.LedgerEntry{
		SessionID:     sessionID,
		Kind:          models.EntryKindPurchase,
		Amount:        quantity * unitPrice,
		Quantity:      &quantity,
		UnitPrice:     &unitPrice,
		Category:      category,
		PaymentMethod: method,
		Description:   description,
	})
}

// Hareket ekleme + bakiye güncelleme, tek atomik birim.
// Önce koşullu bakiye güncellemesi (oturum satırını kilitler ve açık
// olduğunu doğrular), sonra hareket satırı. Herhangi biri başarısızsa
// ikisi de geri alınır.
func record(entry models.LedgerEntry) (*models.LedgerEntry, error) {
	if entry.Amount <= 0 {
		return nil, cashbox.Validationf("Tutar 0'dan büyük olmalı")
	}
	if !models.ValidPaymentMethod(entry.PaymentMethod) {
		return nil, cashbox.Validationf("Geçersiz ödeme yöntemi (cash|transfer|card|other)")
	}

	tx := database.DB.Begin()
	if tx.Error != nil {
		return nil, cashbox.Persistence("transaction başlatma", tx.Error)
	}

	if err := reconcile.ApplyIncrementTx(tx, entry.SessionID, entry.SignedDelta()); err != nil {
		tx.Rollback()
		return nil, err
	}

	if err := tx.Create(&entry).Error; err != nil {
		tx.Rollback()
		return nil, cashbox.Persistence("hareket kaydı", err)
	}

	if err := tx.Commit().Error; err != nil {
		return nil, cashbox.Persistence("transaction commit", err)
	}

	return &entry, nil
}

func ListEntries(sessionID uint, kind models.EntryKind) ([]models.LedgerEntry, error) {
	dbq := database.DB.Model(&models.LedgerEntry{}).Where("session_id = ?", sessionID)
	if kind != "" {
		if !models.ValidEntryKind(kind) {
			return nil, cashbox.Validationf("Geçersiz hareket türü (income|expense|purchase)")
		}
		dbq = dbq.Where("kind = ?", kind)
	}

	var entries []models.LedgerEntry
	if err := dbq.Order("created_at DESC, id DESC").Find(&entries).Error; err != nil {
		return nil, cashbox.Persistence("hareket listesi", err)
	}
	return entries, nil
}

type Summary struct {
	SessionID     uint    `json:"session_id"`
	OpeningAmount float64 `json:"opening_amount"`
	IncomeTotal   float64 `json:"income_total"`
	ExpenseTotal  float64 `json:"expense_total"`
	PurchaseTotal float64 `json:"purchase_total"`
	ExpectedCash  float64 `json:"expected_cash"`
}

// BuildSummary: Oturumun tür bazında toplamları ve beklenen kasa tutarı.
func BuildSummary(sessionID uint) (*Summary, error) {
	var sess models.CashSession
	if err := database.DB.First(&sess, "id = ?", sessionID).Error; err != nil {
		return nil, cashbox.NotFoundf("Oturum bulunamadı (id=%d)", sessionID)
	}

	type row struct {
		Kind  string  `gorm:"column:kind"`
		Total float64 `gorm:"column:total"`
	}
	var rows []row

	if err := database.DB.Model(&models.LedgerEntry{}).
		Select("kind, COALESCE(SUM(amount), 0) as total").
		Where("session_id = ?", sessionID).
		Group("kind").
		Scan(&rows).Error; err != nil {
		return nil, cashbox.Persistence("hareket toplamları", err)
	}

	sum := Summary{SessionID: sessionID, OpeningAmount: sess.OpeningAmount}
	for _, r := range rows {
		switch models.EntryKind(r.Kind) {
		case models.EntryKindIncome:
			sum.IncomeTotal = r.Total
		case models.EntryKindExpense:
			sum.ExpenseTotal = r.Total
		case models.EntryKindPurchase:
			sum.PurchaseTotal = r.Total
		}
	}
	sum.ExpectedCash = sum.OpeningAmount + sum.IncomeTotal - sum.ExpenseTotal - sum.PurchaseTotal

	return &sum, nil
}
