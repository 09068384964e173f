// Package reconcile, oturum bakiyesinin iki halini yönetir:
// hareketlerle adım adım tutulan cached bakiye (ApplyIncrement) ve
// ledger satırlarından sıfırdan hesaplanan beklenen bakiye
// (ComputeExpectedBalance). Kapanışta ve denetimde her zaman ikincisi
// esas alınır; cached değere güvenilmez.
package reconcile

import (
	"errors"

	"otelspa-backend/internal/cashbox"
	"otelspa-backend/internal/database"
	"otelspa-backend/internal/models"

	"gorm.io/gorm"
)

type Report struct {
	SessionID uint    `json:"session_id"`
	Expected  float64 `json:"expected"`
	Cached    float64 `json:"cached"`
	Drift     float64 `json:"drift"`
}

// ComputeExpectedBalanceTx: openingAmount + Σincome − Σexpense − Σpurchase.
// Verilen tx/db handle üzerinden okur; kapanış bunu kendi transaction'ı
// içinde çağırır ki tutarlı bir anlık görüntüden hesaplansın.
func ComputeExpectedBalanceTx(tx *gorm.DB, sessionID uint) (float64, error) {
	var sess models.CashSession
	if err := tx.First(&sess, "id = ?", sessionID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return 0, cashbox.NotFoundf("Oturum bulunamadı (id=%d)", sessionID)
		}
		return 0, cashbox.Persistence("oturum sorgusu", err)
	}

	type row struct {
		Kind  string  `gorm:"column:kind"`
		Total float64 `gorm:"column:total"`
	}
	var rows []row

	if err := tx.Model(&models.LedgerEntry{}).
		Select("kind, COALESCE(SUM(amount), 0) as total").
		Where("session_id = ?", sessionID).
		Group("kind").
		Scan(&rows).Error; err != nil {
		return 0, cashbox.Persistence("hareket toplamları", err)
	}

	expected := sess.OpeningAmount
	for _, r := range rows {
		if models.EntryKind(r.Kind) == models.EntryKindIncome {
			expected += r.Total
		} else {
			expected -= r.Total
		}
	}

	return expected, nil
}

func ComputeExpectedBalance(sessionID uint) (float64, error) {
	return ComputeExpectedBalanceTx(database.DB, sessionID)
}

// ApplyIncrementTx: Bakiyeyi tek bir koşullu UPDATE ile günceller.
// current_amount = current_amount + delta, sadece oturum hâlâ açıksa.
// Read-modify-write yok; eşzamanlı iki increment birbirinin değerini
// ezemez. 0 satır etkilendiyse oturum kapalı ya da yok demektir ve
// çağıranın transaction'ı bütünüyle geri alınmalıdır.
func ApplyIncrementTx(tx *gorm.DB, sessionID uint, delta float64) error {
	res := tx.Model(&models.CashSession{}).
		Where("id = ? AND status = ?", sessionID, models.SessionStatusOpen).
		Update("current_amount", gorm.Expr("current_amount + ?", delta))
	if res.Error != nil {
		return cashbox.Persistence("bakiye güncelleme", res.Error)
	}
	if res.RowsAffected == 0 {
		return cashbox.Statef("Kapalı ya da mevcut olmayan oturuma hareket işlenemez (id=%d)", sessionID)
	}
	return nil
}

// BuildReport: Beklenen ve cached bakiyeyi tek SELECT ile okur; iki ayrı
// sorgu arasına başka bir hareketin commit'i girip sahte drift gösteremez.
// Drift sıfır değilse bir bug ya da elle müdahale var demektir; rapor
// operatöre gösterilir, sessizce düzeltilmez.
func BuildReport(sessionID uint) (*Report, error) {
	type row struct {
		CurrentAmount float64 `gorm:"column:current_amount"`
		Expected      float64 `gorm:"column:expected"`
	}
	var r row

	res := database.DB.Raw(`
		SELECT s.current_amount AS current_amount,
		       s.opening_amount + COALESCE(SUM(
		           CASE WHEN e.kind = ? THEN e.amount ELSE -e.amount END
		       ), 0) AS expected
		FROM cash_sessions s
		LEFT JOIN ledger_entries e ON e.session_id = s.id
		WHERE s.id = ?
		GROUP BY s.id, s.current_amount, s.opening_amount`,
		models.EntryKindIncome, sessionID).Scan(&r)
	if res.Error != nil {
		return nil, cashbox.Persistence("denetim raporu", res.Error)
	}
	if res.RowsAffected == 0 {
		return nil, cashbox.NotFoundf("Oturum bulunamadı (id=%d)", sessionID)
	}

	return &Report{
		SessionID: sessionID,
		Expected:  r.Expected,
		Cached:    r.CurrentAmount,
		Drift:     r.CurrentAmount - r.Expected,
	}, nil
}
