package database

import (
	"log"

	"otelspa-backend/internal/config"
	"otelspa-backend/internal/models"

	"gorm.io/driver/postgres"
	"gorm.io/gorm"
)

var DB *gorm.DB

func Init(cfg *config.Config) {
	var err error

	// TranslateError: unique index ihlalini gorm.ErrDuplicatedKey olarak
	// almak için. Açık oturum tekilliği bu hataya dayanıyor.
	DB, err = gorm.Open(postgres.Open(cfg.DatabaseDSN), &gorm.Config{TranslateError: true})
	if err != nil {
		log.Fatalf("Veritabanına bağlanılamadı: %v", err)
	}

	err = DB.AutoMigrate(
		&models.User{},
		&models.CashRegister{},
		&models.CashSession{},
		&models.LedgerEntry{},
		&models.AuditLog{},
		&models.ForceDeleteAudit{},
	)
	if err != nil {
		log.Fatalf("AutoMigrate hatası: %v", err)
	}

	// Açık oturum tekilliği: aynı kasada status='open' en fazla bir satır.
	// Uygulama içi kontrol yetmez; birden fazla server process'i aynı anda
	// open çağırabilir. Kısıt veritabanında durmalı (partial unique index).
	if err := DB.Exec(
		`CREATE UNIQUE INDEX IF NOT EXISTS idx_cash_sessions_open_register
		 ON cash_sessions (register_id) WHERE status = 'open'`,
	).Error; err != nil {
		log.Fatalf("Açık oturum index'i oluşturulamadı: %v", err)
	}

	log.Println("Veritabanı bağlantısı başarılı. Migration tamamlandı.")
}
