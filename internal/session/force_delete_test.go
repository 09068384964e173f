package session

import (
	"testing"

	"otelspa-backend/internal/cashbox"
	"otelspa-backend/internal/ledger"
	"otelspa-backend/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

func seedSessionWithEntries(t *testing.T, db *gorm.DB, regName string, operatorID uint) *models.CashSession {
	reg := seedRegister(t, db, regName)
	sess, err := Open(reg.ID, operatorID, 1000, "")
	require.NoError(t, err)

	entries := []models.LedgerEntry{
		{SessionID: sess.ID, Kind: models.EntryKindIncome, Amount: 200, PaymentMethod: models.PaymentMethodCash},
		{SessionID: sess.ID, Kind: models.EntryKindExpense, Amount: 80, PaymentMethod: models.PaymentMethodCash},
		{SessionID: sess.ID, Kind: models.EntryKindPurchase, Amount: 120, PaymentMethod: models.PaymentMethodTransfer},
	}
	for i := range entries {
		require.NoError(t, db.Create(&entries[i]).Error)
	}

	return sess
}

func TestForceDelete(t *testing.T) {
	db := setupTestDB(t)
	admin := seedUser(t, db, models.RoleSuperAdmin)
	cashier := seedUser(t, db, models.RoleCashier)

	t.Run("oturum ve tüm hareketleri birlikte silinir", func(t *testing.T) {
		sess := seedSessionWithEntries(t, db, "FD Kasa 1", cashier.ID)

		result, err := ForceDelete(sess.ID, admin, "hatalı açılmış test oturumu")
		require.NoError(t, err)
		assert.Equal(t, int64(3), result.DeletedEntries)

		var sessCount, entryCount int64
		require.NoError(t, db.Model(&models.CashSession{}).Where("id = ?", sess.ID).Count(&sessCount).Error)
		require.NoError(t, db.Model(&models.LedgerEntry{}).Where("session_id = ?", sess.ID).Count(&entryCount).Error)
		assert.Zero(t, sessCount)
		assert.Zero(t, entryCount)
	})

	t.Run("audit kaydı özet bilgileri taşır", func(t *testing.T) {
		sess := seedSessionWithEntries(t, db, "FD Kasa 2", cashier.ID)

		_, err := ForceDelete(sess.ID, admin, "mükerrer oturum")
		require.NoError(t, err)

		var rec models.ForceDeleteAudit
		require.NoError(t, db.First(&rec, "session_id = ?", sess.ID).Error)

		assert.Equal(t, admin.ID, rec.ActorID)
		assert.Equal(t, admin.Name, rec.ActorName)
		assert.Equal(t, "mükerrer oturum", rec.Reason)
		assert.Equal(t, int64(1), rec.IncomeCount)
		assert.Equal(t, int64(1), rec.ExpenseCount)
		assert.Equal(t, int64(1), rec.PurchaseCount)
		assert.Equal(t, 200.0, rec.IncomeTotal)
		assert.Equal(t, 80.0, rec.ExpenseTotal)
		assert.Equal(t, 120.0, rec.PurchaseTotal)
		assert.Contains(t, rec.SessionData, `"ID":`)
	})

	t.Run("kasiyer yetkisiz AuthorizationError", func(t *testing.T) {
		sess := seedSessionWithEntries(t, db, "FD Kasa 3", cashier.ID)

		_, err := ForceDelete(sess.ID, cashier, "deneme")
		require.Error(t, err)
		assert.True(t, cashbox.IsAuthorization(err))

		// Hiçbir şey silinmemiş olmalı
		var entryCount int64
		require.NoError(t, db.Model(&models.LedgerEntry{}).Where("session_id = ?", sess.ID).Count(&entryCount).Error)
		assert.Equal(t, int64(3), entryCount)
	})

	t.Run("olmayan oturum NotFoundError", func(t *testing.T) {
		_, err := ForceDelete(9999, admin, "yok zaten")
		require.Error(t, err)
		assert.True(t, cashbox.IsNotFound(err))
	})

	t.Run("adım başarısız olursa hiçbir şey silinmez", func(t *testing.T) {
		sess := seedSessionWithEntries(t, db, "FD Kasa 4", cashier.ID)

		// Audit tablosunu düşürerek transaction'ın son adımını patlat:
		// hareketler silindikten sonra audit insert'i başarısız olur ve
		// tüm transaction geri alınmalıdır.
		require.NoError(t, db.Migrator().DropTable(&models.ForceDeleteAudit{}))
		t.Cleanup(func() {
			require.NoError(t, db.AutoMigrate(&models.ForceDeleteAudit{}))
		})

		_, err := ForceDelete(sess.ID, admin, "yarım kalacak silme")
		require.Error(t, err)

		// Oturum ve 3 hareket aynen yerinde
		var sessCount, entryCount int64
		require.NoError(t, db.Model(&models.CashSession{}).Where("id = ?", sess.ID).Count(&sessCount).Error)
		require.NoError(t, db.Model(&models.LedgerEntry{}).Where("session_id = ?", sess.ID).Count(&entryCount).Error)
		assert.Equal(t, int64(1), sessCount)
		assert.Equal(t, int64(3), entryCount)
	})

	t.Run("kapalı oturum da force-delete edilebilir", func(t *testing.T) {
		reg := seedRegister(t, db, "FD Kasa 5")
		sess, err := Open(reg.ID, cashier.ID, 100, "")
		require.NoError(t, err)
		_, err = Close(sess.ID, 100, "")
		require.NoError(t, err)

		result, err := ForceDelete(sess.ID, admin, "kapalı ama bozuk")
		require.NoError(t, err)
		assert.Equal(t, int64(0), result.DeletedEntries)

		// SessionData silme anındaki durumu taşımalı: oturum kapalıydı
		var rec models.ForceDeleteAudit
		require.NoError(t, db.First(&rec, "session_id = ?", sess.ID).Error)
		assert.Contains(t, rec.SessionData, string(models.SessionStatusClosed))
	})

	t.Run("eşzamanlı harekette özet silinenle tutarlı", func(t *testing.T) {
		sess := seedSessionWithEntries(t, db, "FD Kasa 6", cashier.ID)

		// Silme sürerken hareket kaydetmeye çalışan ikinci bir istemci.
		// Oturum silinince StateError alıp durur; araya sıkıştırabildiği
		// her hareket hem silinen satır sayısına hem audit özetine
		// yansımış olmalı.
		done := make(chan struct{})
		go func() {
			defer close(done)
			for i := 0; i < 50; i++ {
				_, err := ledger.RecordExpense(sess.ID, 10, "sarf", models.PaymentMethodCash, "")
				if err != nil {
					return
				}
			}
		}()

		result, err := ForceDelete(sess.ID, admin, "eşzamanlılık temizliği")
		require.NoError(t, err)
		<-done

		snapCount := result.Snapshot.IncomeCount + result.Snapshot.ExpenseCount + result.Snapshot.PurchaseCount
		assert.Equal(t, result.DeletedEntries, snapCount)

		var rec models.ForceDeleteAudit
		require.NoError(t, db.First(&rec, "session_id = ?", sess.ID).Error)
		assert.Equal(t, result.DeletedEntries, rec.IncomeCount+rec.ExpenseCount+rec.PurchaseCount)

		// Kayda geçmeden silinen hareket yok
		var leftover int64
		require.NoError(t, db.Model(&models.LedgerEntry{}).Where("session_id = ?", sess.ID).Count(&leftover).Error)
		assert.Zero(t, leftover)
	})
}
