package models

import "time"

// CashRegister: Fiziksel kasa noktası (resepsiyon, spa, restoran vs.).
// Katalog admin tarafından yönetilir; oturum tarafı sadece okur.
type CashRegister struct {
	ID        uint   `gorm:"primaryKey"`
	Name      string `gorm:"size:100;not null;unique"`
	Location  string `gorm:"size:255"`
	CreatedAt time.Time
	UpdatedAt time.Time
}
