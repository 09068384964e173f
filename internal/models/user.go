package models

import "time"

type UserRole string

const (
	RoleSuperAdmin UserRole = "super_admin"
	RoleCashier    UserRole = "cashier"
)

type User struct {
	ID           uint     `gorm:"primaryKey"`
	Name         string   `gorm:"size:100;not null"`
	Email        string   `gorm:"size:100;uniqueIndex;not null"`
	PasswordHash string   `gorm:"size:255;not null"`
	Role         UserRole `gorm:"size:20;not null"`
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

// CanForceDelete: oturum ve hareketlerini kalıcı silme yetkisi var mı?
// İsim değil yetenek kontrolü; yeni roller eklenirse sadece burası değişir.
func (u *User) CanForceDelete() bool {
	return u.Role == RoleSuperAdmin
}
