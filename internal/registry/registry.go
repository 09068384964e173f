// Package registry, kasa kataloğuna erişimi sağlar.
// Oturum tarafı sadece GetRegister kullanır; katalog bakımı admin
// endpoint'lerinden yapılır.
package registry

import (
	"errors"

	"otelspa-backend/internal/cashbox"
	"otelspa-backend/internal/database"
	"otelspa-backend/internal/models"

	"gorm.io/gorm"
)

func GetRegister(registerID uint) (*models.CashRegister, error) {
	var reg models.CashRegister
	if err := database.DB.First(&reg, "id = ?", registerID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, cashbox.NotFoundf("Kasa bulunamadı (id=%d)", registerID)
		}
		return nil, cashbox.Persistence("kasa sorgusu", err)
	}
	return &reg, nil
}
