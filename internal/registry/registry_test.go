package registry

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

	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)

	require.NoError(t, db.AutoMigrate(&models.CashRegister{}))

	old := database.DB
	database.DB = db
	t.Cleanup(func() { database.DB = old })

	return db
}

func TestGetRegister(t *testing.T) {
	db := setupTestDB(t)

	reg := models.CashRegister{Name: "Resepsiyon Kasası", Location: "Lobi"}
	require.NoError(t, db.Create(&reg).Error)

	t.Run("mevcut kasa dönülür", func(t *testing.T) {
		found, err := GetRegister(reg.ID)
		require.NoError(t, err)
		assert.Equal(t, reg.ID, found.ID)
		assert.Equal(t, "Resepsiyon Kasası", found.Name)
	})

	t.Run("olmayan kasa NotFoundError", func(t *testing.T) {
		_, err := GetRegister(9999)
		require.Error(t, err)
		assert.True(t, cashbox.IsNotFound(err))
	})
}
