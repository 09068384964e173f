package session

import (
	"errors"

	"otelspa-backend/internal/audit"
	"otelspa-backend/internal/cashbox"
	"otelspa-backend/internal/database"
	"otelspa-backend/internal/models"

	"gorm.io/gorm"
)

type ForceDeleteResult struct {
	SessionID      uint
	DeletedEntries int64
	Snapshot       audit.ForceDeleteSnapshot
}

// ForceDelete: Oturumu ve TÜM hareketlerini tek transaction'da siler,
// aynı transaction'da ForceDeleteAudit kaydı yazar. Herhangi bir adım
// başarısız olursa hiçbir şey silinmiş olmaz; yarım silme yok.
// Hatalı açılmış ya da bozuk oturumların temizliği için admin yolu.
func ForceDelete(sessionID uint, actor *models.User, reason string) (*ForceDeleteResult, error) {
	if actor == nil || !actor.CanForceDelete() {
		return nil, &cashbox.AuthorizationError{Msg: "Bu işlem için yetkiniz yok"}
	}

	tx := database.DB.Begin()
	if tx.Error != nil {
		return nil, cashbox.Persistence("transaction başlatma", tx.Error)
	}

	// Oturum ve hareket özeti silme ile aynı transaction içinde okunur;
	// araya giren bir hareket ya da kapanış kayda yansımadan silinemez.
	var sess models.CashSession
	if err := tx.First(&sess, "id = ?", sessionID).Error; err != nil {
		tx.Rollback()
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, cashbox.NotFoundf("Oturum bulunamadı (id=%d)", sessionID)
		}
		return nil, cashbox.Persistence("oturum sorgusu", err)
	}

	snap, err := buildSnapshot(tx, sessionID)
	if err != nil {
		tx.Rollback()
		return nil, err
	}

	res := tx.Where("session_id = ?", sessionID).Delete(&models.LedgerEntry{})
	if res.Error != nil {
		tx.Rollback()
		return nil, cashbox.Persistence("hareket silme", res.Error)
	}
	deletedEntries := res.RowsAffected

	if err := tx.Delete(&models.CashSession{}, "id = ?", sessionID).Error; err != nil {
		tx.Rollback()
		return nil, cashbox.Persistence("oturum silme", err)
	}

	if err := audit.WriteForceDelete(tx, actor, &sess, reason, snap); err != nil {
		tx.Rollback()
		return nil, cashbox.Persistence("force-delete kaydı", err)
	}

	if err := tx.Commit().Error; err != nil {
		return nil, cashbox.Persistence("transaction commit", err)
	}

	return &ForceDeleteResult{
		SessionID:      sessionID,
		DeletedEntries: deletedEntries,
		Snapshot:       snap,
	}, nil
}

// Silinecek hareketlerin tür bazında adet ve toplamları. Silme
// transaction'ının handle'ı ile çağrılır.
func buildSnapshot(tx *gorm.DB, sessionID uint) (audit.ForceDeleteSnapshot, error) {
	var snap audit.ForceDeleteSnapshot

	type row struct {
		Kind  string  `gorm:"column:kind"`
		Cnt   int64   `gorm:"column:cnt"`
		Total float64 `gorm:"column:total"`
	}
	var rows []row

	if err := tx.Model(&models.LedgerEntry{}).
		Select("kind, COUNT(*) as cnt, COALESCE(SUM(amount), 0) as total").
		Where("session_id = ?", sessionID).
		Group("kind").
		Scan(&rows).Error; err != nil {
		return snap, cashbox.Persistence("hareket özetleri", err)
	}

	for _, r := range rows {
		switch models.EntryKind(r.Kind) {
		case models.EntryKindIncome:
			snap.IncomeCount = r.Cnt
			snap.IncomeTotal = r.Total
		case models.EntryKindExpense:
			snap.ExpenseCount = r.Cnt
			snap.ExpenseTotal = r.Total
		case models.EntryKindPurchase:
			snap.PurchaseCount = r.Cnt
			snap.PurchaseTotal = r.Total
		}
	}

	return snap, nil
}
