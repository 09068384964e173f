// Package session, kasa oturumu yaşam döngüsünü yönetir:
// açma (kasa başına tek açık oturum), kapama (bağımsız bakiye
// doğrulaması ve fark kaydı) ve admin force-delete.
package session

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"otelspa-backend/internal/cashbox"
	"otelspa-backend/internal/database"
	"otelspa-backend/internal/models"
	"otelspa-backend/internal/reconcile"
	"otelspa-backend/internal/registry"

	"gorm.io/gorm"
)

// Open: Kasada yeni oturum açar.
// Açık oturum tekilliği partial unique index ile veritabanında duruyor;
// burada check-then-act yok. Insert çakışırsa mevcut açık oturumun
// id'siyle ConflictError dönülür, yeni kayıt oluşmaz.
func Open(registerID, operatorID uint, openingAmount float64, notes string) (*models.CashSession, error) {
	if openingAmount < 0 {
		return nil, cashbox.Validationf("Açılış tutarı negatif olamaz")
	}

	if _, err := registry.GetRegister(registerID); err != nil {
		return nil, err
	}

	sess := models.CashSession{
		RegisterID:    registerID,
		OperatorID:    operatorID,
		OpeningAmount: openingAmount,
		CurrentAmount: openingAmount,
		Status:        models.SessionStatusOpen,
		OpenedAt:      time.Now(),
		Notes:         notes,
	}

	if err := database.DB.Create(&sess).Error; err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			var existing models.CashSession
			findErr := database.DB.
				Where("register_id = ? AND status = ?", registerID, models.SessionStatusOpen).
				First(&existing).Error
			if findErr != nil {
				// Çakışan oturum bu arada kapanmış olabilir; yine de açılış
				// başarısız, çağıran tekrar denemeli.
				return nil, &cashbox.ConflictError{
					Msg: "Bu kasada zaten açık bir oturum var",
				}
			}
			return nil, &cashbox.ConflictError{
				Msg:       fmt.Sprintf("Bu kasada zaten açık bir oturum var (oturum %s)", existing.SessionNumber()),
				SessionID: existing.ID,
			}
		}
		return nil, cashbox.Persistence("oturum açma", err)
	}

	return &sess, nil
}

// Close: Oturumu kapatır.
// Beklenen bakiye cached current_amount'tan DEĞİL, ledger satırlarından
// yeniden hesaplanır (drift yakalamak için). Status geçişi koşullu
// UPDATE ile yapılır; aynı anda ikinci bir kapanış ya da hareket kaydı
// ya bu kapanıştan önce biter ya da StateError alır.
// Kapanış idempotent değildir: ikinci çağrı StateError döner ve ilk
// kapanışın variance/closedAt değerlerine dokunmaz.
func Close(sessionID uint, countedAmount float64, notes string) (*models.CashSession, error) {
	var sess models.CashSession
	if err := database.DB.First(&sess, "id = ?", sessionID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, cashbox.NotFoundf("Oturum bulunamadı (id=%d)", sessionID)
		}
		return nil, cashbox.Persistence("oturum sorgusu", err)
	}

	if sess.Status == models.SessionStatusClosed {
		return nil, cashbox.Statef("Oturum zaten kapalı (id=%d)", sessionID)
	}

	err := database.DB.Transaction(func(tx *gorm.DB) error {
		// Atomiklik kapısı: sadece hâlâ açık olan oturumu kapat.
		// Satır kilidi alındığı için eşzamanlı hareket kayıtları burada
		// sıraya girer; kapanıştan sonra gelenler StateError alır.
		res := tx.Model(&models.CashSession{}).
			Where("id = ? AND status = ?", sessionID, models.SessionStatusOpen).
			Update("status", models.SessionStatusClosed)
		if res.Error != nil {
			return cashbox.Persistence("oturum kapama", res.Error)
		}
		if res.RowsAffected == 0 {
			return cashbox.Statef("Oturum zaten kapalı (id=%d)", sessionID)
		}

		expected, err := reconcile.ComputeExpectedBalanceTx(tx, sessionID)
		if err != nil {
			return err
		}

		variance := countedAmount - expected
		now := time.Now()
		merged := mergeClosingNotes(sess.Notes, notes, countedAmount, expected, variance)

		if err := tx.Model(&models.CashSession{}).
			Where("id = ?", sessionID).
			Updates(map[string]interface{}{
				"current_amount":   expected,
				"closing_variance": variance,
				"closed_at":        now,
				"notes":            merged,
			}).Error; err != nil {
			return cashbox.Persistence("kapanış kaydı", err)
		}

		return tx.First(&sess, "id = ?", sessionID).Error
	})
	if err != nil {
		return nil, err
	}

	return &sess, nil
}

// Sayım farkı varsa kapanış notuna özetini ekle; operatör notu korunur.
func mergeClosingNotes(existing, closingNote string, counted, expected, variance float64) string {
	parts := make([]string, 0, 3)
	if strings.TrimSpace(existing) != "" {
		parts = append(parts, existing)
	}
	if strings.TrimSpace(closingNote) != "" {
		parts = append(parts, closingNote)
	}
	if variance != 0 {
		parts = append(parts, fmt.Sprintf(
			"KAPANIŞ FARKI: Beklenen %.2f, Sayılan %.2f, Fark %+.2f",
			expected, counted, variance))
	}
	return strings.Join(parts, "\n")
}

// GetCurrent: Kasanın açık oturumunu döner; yoksa nil.
// POS ve ön büro "oturum aç" mı "mevcut oturumu göster" mi kararını
// bununla veriyor.
func GetCurrent(registerID uint) (*models.CashSession, error) {
	var sess models.CashSession
	err := database.DB.
		Where("register_id = ? AND status = ?", registerID, models.SessionStatusOpen).
		First(&sess).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, cashbox.Persistence("açık oturum sorgusu", err)
	}
	return &sess, nil
}

func GetByID(sessionID uint) (*models.CashSession, error) {
	var sess models.CashSession
	if err := database.DB.First(&sess, "id = ?", sessionID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, cashbox.NotFoundf("Oturum bulunamadı (id=%d)", sessionID)
		}
		return nil, cashbox.Persistence("oturum sorgusu", err)
	}
	return &sess, nil
}

type ListFilter struct {
	RegisterID uint
	Status     models.SessionStatus
	From       *time.Time
	To         *time.Time
}

func List(filter ListFilter) ([]models.CashSession, error) {
	dbq := database.DB.Model(&models.CashSession{})

	if filter.RegisterID != 0 {
		dbq = dbq.Where("register_id = ?", filter.RegisterID)
	}
	if filter.Status != "" {
		dbq = dbq.Where("status = ?", filter.Status)
	}
	if filter.From != nil {
		dbq = dbq.Where("opened_at >= ?", *filter.From)
	}
	if filter.To != nil {
		dbq = dbq.Where("opened_at <= ?", *filter.To)
	}

	var sessions []models.CashSession
	if err := dbq.Order("opened_at DESC, id DESC").Find(&sessions).Error; err != nil {
		return nil, cashbox.Persistence("oturum listesi", err)
	}
	return sessions, nil
}

// Delete: Normal (force olmayan) silme.
// Sadece açık VE hareketi olmayan oturumlar silinebilir; kapalı oturum
// ya da hareketli oturum için force-delete gerekir.
func Delete(sessionID uint) error {
	sess, err := GetByID(sessionID)
	if err != nil {
		return err
	}

	if sess.Status == models.SessionStatusClosed {
		return cashbox.Statef("Kapalı oturum silinemez (id=%d)", sessionID)
	}

	var entryCount int64
	if err := database.DB.Model(&models.LedgerEntry{}).
		Where("session_id = ?", sessionID).
		Count(&entryCount).Error; err != nil {
		return cashbox.Persistence("hareket sayısı", err)
	}
	if entryCount > 0 {
		return cashbox.Statef("Hareketi olan oturum normal yolla silinemez (%d hareket)", entryCount)
	}

	if err := database.DB.Delete(&models.CashSession{}, "id = ?", sessionID).Error; err != nil {
		return cashbox.Persistence("oturum silme", err)
	}
	return nil
}
