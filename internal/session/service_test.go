package session

import (
	"testing"

	"otelspa-backend/internal/cashbox"
	"otelspa-backend/internal/database"
	"otelspa-backend/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
)

func setupTestDB(t *testing.T) *gorm.DB {
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{TranslateError: true})
	require.NoError(t, err)

	// :memory: veritabanı bağlantı başına ayrı; pool tek bağlantıda kalmalı
	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)

	require.NoError(t, db.AutoMigrate(
		&models.User{},
		&models.CashRegister{},
		&models.CashSession{},
		&models.LedgerEntry{},
		&models.AuditLog{},
		&models.ForceDeleteAudit{},
	))

	require.NoError(t, db.Exec(
		`CREATE UNIQUE INDEX IF NOT EXISTS idx_cash_sessions_open_register
		 ON cash_sessions (register_id) WHERE status = 'open'`,
	).Error)

	old := database.DB
	database.DB = db
	t.Cleanup(func() { database.DB = old })

	return db
}

func seedRegister(t *testing.T, db *gorm.DB, name string) *models.CashRegister {
	reg := models.CashRegister{Name: name, Location: "Resepsiyon"}
	require.NoError(t, db.Create(&reg).Error)
	return &reg
}

func seedUser(t *testing.T, db *gorm.DB, role models.UserRole) *models.User {
	user := models.User{
		Name:         "Test Kullanıcı " + string(role),
		Email:        string(role) + "@otelspa.local",
		PasswordHash: "x",
		Role:         role,
	}
	require.NoError(t, db.Create(&user).Error)
	return &user
}

func TestOpen(t *testing.T) {
	db := setupTestDB(t)
	reg := seedRegister(t, db, "Kasa 1")
	op := seedUser(t, db, models.RoleCashier)

	t.Run("yeni oturum açılır", func(t *testing.T) {
		sess, err := Open(reg.ID, op.ID, 1000, "")
		require.NoError(t, err)

		assert.Equal(t, models.SessionStatusOpen, sess.Status)
		assert.Equal(t, 1000.0, sess.OpeningAmount)
		assert.Equal(t, 1000.0, sess.CurrentAmount)
		assert.Nil(t, sess.ClosedAt)
		assert.Nil(t, sess.ClosingVariance)
		assert.False(t, sess.OpenedAt.IsZero())
	})

	t.Run("aynı kasada ikinci oturum ConflictError", func(t *testing.T) {
		_, err := Open(reg.ID, op.ID, 500, "")
		require.Error(t, err)
		require.True(t, cashbox.IsConflict(err))

		var conflict *cashbox.ConflictError
		require.ErrorAs(t, err, &conflict)
		assert.NotZero(t, conflict.SessionID, "çakışan oturum id'si dönmeli")

		// Yeni kayıt oluşmamış olmalı
		var count int64
		require.NoError(t, db.Model(&models.CashSession{}).
			Where("register_id = ?", reg.ID).Count(&count).Error)
		assert.Equal(t, int64(1), count)
	})

	t.Run("başka kasada oturum açılabilir", func(t *testing.T) {
		reg2 := seedRegister(t, db, "Kasa 2")
		sess, err := Open(reg2.ID, op.ID, 200, "")
		require.NoError(t, err)
		assert.Equal(t, models.SessionStatusOpen, sess.Status)
	})

	t.Run("negatif açılış tutarı ValidationError", func(t *testing.T) {
		_, err := Open(reg.ID, op.ID, -1, "")
		require.Error(t, err)
		assert.True(t, cashbox.IsValidation(err))
	})

	t.Run("sıfır açılış tutarı geçerli", func(t *testing.T) {
		reg3 := seedRegister(t, db, "Kasa 3")
		sess, err := Open(reg3.ID, op.ID, 0, "")
		require.NoError(t, err)
		assert.Equal(t, 0.0, sess.CurrentAmount)
	})

	t.Run("olmayan kasa NotFoundError", func(t *testing.T) {
		_, err := Open(9999, op.ID, 100, "")
		require.Error(t, err)
		assert.True(t, cashbox.IsNotFound(err))
	})

	t.Run("kapalı oturum yeni açılışı engellemez", func(t *testing.T) {
		reg4 := seedRegister(t, db, "Kasa 4")
		first, err := Open(reg4.ID, op.ID, 100, "")
		require.NoError(t, err)
		_, err = Close(first.ID, 100, "")
		require.NoError(t, err)

		second, err := Open(reg4.ID, op.ID, 150, "")
		require.NoError(t, err)
		assert.NotEqual(t, first.ID, second.ID)
	})
}

func TestClose(t *testing.T) {
	db := setupTestDB(t)
	op := seedUser(t, db, models.RoleCashier)

	addEntry := func(t *testing.T, sessionID uint, kind models.EntryKind, amount float64) {
		entry := models.LedgerEntry{
			SessionID:     sessionID,
			Kind:          kind,
			Amount:        amount,
			PaymentMethod: models.PaymentMethodCash,
		}
		require.NoError(t, db.Create(&entry).Error)
		delta := entry.SignedDelta()
		require.NoError(t, db.Model(&models.CashSession{}).
			Where("id = ?", sessionID).
			Update("current_amount", gorm.Expr("current_amount + ?", delta)).Error)
	}

	t.Run("fark sıfır", func(t *testing.T) {
		reg := seedRegister(t, db, "Kapanış Kasa 1")
		sess, err := Open(reg.ID, op.ID, 1000, "")
		require.NoError(t, err)

		addEntry(t, sess.ID, models.EntryKindIncome, 100)
		addEntry(t, sess.ID, models.EntryKindExpense, 50)

		closed, err := Close(sess.ID, 1050, "")
		require.NoError(t, err)

		assert.Equal(t, models.SessionStatusClosed, closed.Status)
		require.NotNil(t, closed.ClosingVariance)
		assert.Equal(t, 0.0, *closed.ClosingVariance)
		assert.Equal(t, 1050.0, closed.CurrentAmount)
		require.NotNil(t, closed.ClosedAt)
	})

	t.Run("eksik sayım negatif fark olarak raporlanır", func(t *testing.T) {
		reg := seedRegister(t, db, "Kapanış Kasa 2")
		sess, err := Open(reg.ID, op.ID, 1000, "")
		require.NoError(t, err)

		addEntry(t, sess.ID, models.EntryKindIncome, 100)
		addEntry(t, sess.ID, models.EntryKindExpense, 50)

		closed, err := Close(sess.ID, 1000, "")
		require.NoError(t, err)

		require.NotNil(t, closed.ClosingVariance)
		assert.Equal(t, -50.0, *closed.ClosingVariance, "fark düzeltilmez, raporlanır")
		assert.Equal(t, 1050.0, closed.CurrentAmount, "bakiye beklenen değere sabitlenir")
		assert.Contains(t, closed.Notes, "KAPANIŞ FARKI")
	})

	t.Run("beklenen bakiye cached değerden değil ledger'dan hesaplanır", func(t *testing.T) {
		reg := seedRegister(t, db, "Kapanış Kasa 3")
		sess, err := Open(reg.ID, op.ID, 500, "")
		require.NoError(t, err)

		addEntry(t, sess.ID, models.EntryKindIncome, 200)

		// cached bakiyeyi elle boz (drift simülasyonu)
		require.NoError(t, db.Model(&models.CashSession{}).
			Where("id = ?", sess.ID).
			Update("current_amount", 9999).Error)

		closed, err := Close(sess.ID, 700, "")
		require.NoError(t, err)

		assert.Equal(t, 700.0, closed.CurrentAmount)
		require.NotNil(t, closed.ClosingVariance)
		assert.Equal(t, 0.0, *closed.ClosingVariance)
	})

	t.Run("ikinci kapanış StateError, ilk kapanışa dokunmaz", func(t *testing.T) {
		reg := seedRegister(t, db, "Kapanış Kasa 4")
		sess, err := Open(reg.ID, op.ID, 300, "")
		require.NoError(t, err)

		first, err := Close(sess.ID, 250, "")
		require.NoError(t, err)
		require.NotNil(t, first.ClosingVariance)
		assert.Equal(t, -50.0, *first.ClosingVariance)

		_, err = Close(sess.ID, 300, "")
		require.Error(t, err)
		assert.True(t, cashbox.IsState(err))

		var after models.CashSession
		require.NoError(t, db.First(&after, "id = ?", sess.ID).Error)
		require.NotNil(t, after.ClosingVariance)
		assert.Equal(t, *first.ClosingVariance, *after.ClosingVariance)
		require.NotNil(t, after.ClosedAt)
		assert.Equal(t, first.ClosedAt.Unix(), after.ClosedAt.Unix())
	})

	t.Run("olmayan oturum NotFoundError", func(t *testing.T) {
		_, err := Close(9999, 100, "")
		require.Error(t, err)
		assert.True(t, cashbox.IsNotFound(err))
	})

	t.Run("operatör notu korunur", func(t *testing.T) {
		reg := seedRegister(t, db, "Kapanış Kasa 5")
		sess, err := Open(reg.ID, op.ID, 100, "açılış notu")
		require.NoError(t, err)

		closed, err := Close(sess.ID, 90, "kasada eksik var")
		require.NoError(t, err)

		assert.Contains(t, closed.Notes, "açılış notu")
		assert.Contains(t, closed.Notes, "kasada eksik var")
		assert.Contains(t, closed.Notes, "KAPANIŞ FARKI")
	})
}

func TestGetCurrent(t *testing.T) {
	db := setupTestDB(t)
	op := seedUser(t, db, models.RoleCashier)
	reg := seedRegister(t, db, "Güncel Kasa")

	t.Run("açık oturum yoksa nil", func(t *testing.T) {
		sess, err := GetCurrent(reg.ID)
		require.NoError(t, err)
		assert.Nil(t, sess)
	})

	t.Run("açık oturum dönülür", func(t *testing.T) {
		opened, err := Open(reg.ID, op.ID, 100, "")
		require.NoError(t, err)

		sess, err := GetCurrent(reg.ID)
		require.NoError(t, err)
		require.NotNil(t, sess)
		assert.Equal(t, opened.ID, sess.ID)
	})

	t.Run("kapanınca tekrar nil", func(t *testing.T) {
		sess, err := GetCurrent(reg.ID)
		require.NoError(t, err)
		require.NotNil(t, sess)

		_, err = Close(sess.ID, 100, "")
		require.NoError(t, err)

		sess, err = GetCurrent(reg.ID)
		require.NoError(t, err)
		assert.Nil(t, sess)
	})
}

func TestDelete(t *testing.T) {
	db := setupTestDB(t)
	op := seedUser(t, db, models.RoleCashier)

	t.Run("boş açık oturum silinir", func(t *testing.T) {
		reg := seedRegister(t, db, "Silme Kasa 1")
		sess, err := Open(reg.ID, op.ID, 100, "")
		require.NoError(t, err)

		require.NoError(t, Delete(sess.ID))

		_, err = GetByID(sess.ID)
		assert.True(t, cashbox.IsNotFound(err))
	})

	t.Run("kapalı oturum silinemez", func(t *testing.T) {
		reg := seedRegister(t, db, "Silme Kasa 2")
		sess, err := Open(reg.ID, op.ID, 100, "")
		require.NoError(t, err)
		_, err = Close(sess.ID, 100, "")
		require.NoError(t, err)

		err = Delete(sess.ID)
		require.Error(t, err)
		assert.True(t, cashbox.IsState(err))
	})

	t.Run("hareketli oturum silinemez", func(t *testing.T) {
		reg := seedRegister(t, db, "Silme Kasa 3")
		sess, err := Open(reg.ID, op.ID, 100, "")
		require.NoError(t, err)

		entry := models.LedgerEntry{
			SessionID:     sess.ID,
			Kind:          models.EntryKindIncome,
			Amount:        10,
			PaymentMethod: models.PaymentMethodCash,
		}
		require.NoError(t, db.Create(&entry).Error)

		err = Delete(sess.ID)
		require.Error(t, err)
		assert.True(t, cashbox.IsState(err))

		// Oturum ve hareket yerinde
		var count int64
		require.NoError(t, db.Model(&models.LedgerEntry{}).
			Where("session_id = ?", sess.ID).Count(&count).Error)
		assert.Equal(t, int64(1), count)
	})

	t.Run("olmayan oturum NotFoundError", func(t *testing.T) {
		err := Delete(9999)
		require.Error(t, err)
		assert.True(t, cashbox.IsNotFound(err))
	})
}
