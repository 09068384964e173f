// Package cashbox, kasa çekirdeğinin hata türlerini tanımlar.
// Servisler her zaman bu türlerden birini döner; handler katmanı
// ToFiber ile HTTP koduna çevirir. Hiçbir hata log'lanıp yutulmaz.
package cashbox

import (
	"errors"
	"fmt"
)

// ValidationError: Geçersiz girdi (negatif tutar, eksik alan vs.).
// Çağıran girdiyi düzeltip tekrar deneyebilir.
type ValidationError struct {
	Msg string
}

func (e *ValidationError) Error() string { return e.Msg }

func Validationf(format string, args ...any) error {
	return &ValidationError{Msg: fmt.Sprintf(format, args...)}
}

// ConflictError: Kasada zaten açık bir oturum var.
// SessionID çakışan oturumu taşır; çağıran körlemesine tekrar denemek
// yerine o oturuma yönlenebilir.
type ConflictError struct {
	Msg       string
	SessionID uint
}

func (e *ConflictError) Error() string { return e.Msg }

// NotFoundError: Referans verilen kasa ya da oturum yok.
type NotFoundError struct {
	Msg string
}

func (e *NotFoundError) Error() string { return e.Msg }

func NotFoundf(format string, args ...any) error {
	return &NotFoundError{Msg: fmt.Sprintf(format, args...)}
}

// StateError: İşlem, oturumun mevcut yaşam döngüsü durumunda geçersiz
// (kapalı oturuma hareket ekleme, kapalı oturumu tekrar kapatma).
type StateError struct {
	Msg string
}

func (e *StateError) Error() string { return e.Msg }

func Statef(format string, args ...any) error {
	return &StateError{Msg: fmt.Sprintf(format, args...)}
}

// AuthorizationError: Aktörün idari işlem yetkisi yok.
type AuthorizationError struct {
	Msg string
}

func (e *AuthorizationError) Error() string { return e.Msg }

// PersistenceError: Veritabanı hatası. Geçici olabilir ama çekirdek
// mutasyon işlemlerini çağıran adına asla tekrar denemez (mükerrer
// hareket riski); karar çağırana ait.
type PersistenceError struct {
	Op  string
	Err error
}

func (e *PersistenceError) Error() string {
	return fmt.Sprintf("%s: veritabanı hatası: %v", e.Op, e.Err)
}

func (e *PersistenceError) Unwrap() error { return e.Err }

func Persistence(op string, err error) error {
	return &PersistenceError{Op: op, Err: err}
}

// IsNotFound gibi yardımcılar test ve handler tarafında errors.As
// yazmak yerine kullanılıyor.
func IsValidation(err error) bool {
	var t *ValidationError
	return errors.As(err, &t)
}

func IsConflict(err error) bool {
	var t *ConflictError
	return errors.As(err, &t)
}

func IsNotFound(err error) bool {
	var t *NotFoundError
	return errors.As(err, &t)
}

func IsState(err error) bool {
	var t *StateError
	return errors.As(err, &t)
}

func IsAuthorization(err error) bool {
	var t *AuthorizationError
	return errors.As(err, &t)
}
