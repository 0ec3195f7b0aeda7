// Package models содержит доменные модели системы: пользователей, планы,
// подписки, каталог, голоса, отправки и записи журнала активности.
// Структуры используются в бизнес-логике и при работе с хранилищем.
package models

import "time"

// User представляет зарегистрированного пользователя системы.
// Хэш пароля и счётчики блокировки в JSON-ответы не попадают.
type User struct {
	ID                  int64      `json:"id"`                    // Уникальный идентификатор пользователя
	Email               string     `json:"email"`                 // Электронная почта (уникальная)
	PasswordHash        string     `json:"-"`                     // Хэш пароля пользователя
	FullName            string     `json:"full_name"`             // Полное имя
	CreatedAt           time.Time  `json:"created_at"`            // Дата регистрации
	IsActive            bool       `json:"is_active"`             // Признак активной учётной записи
	IsAdmin             bool       `json:"is_admin"`              // Признак администратора
	ReferralCode        string     `json:"referral_code"`         // Реферальный код пользователя
	ReferredBy          *string    `json:"referred_by,omitempty"` // Реферальный код пригласившего
	CreditBalance       float64    `json:"credit_balance"`        // Баланс бонусных кредитов
	ProviderCustomerID  *string    `json:"-"`                     // Идентификатор клиента у платёжного провайдера
	FailedLoginAttempts int        `json:"-"`                     // Счётчик неудачных попыток входа подряд
	AccountLockedUntil  *time.Time `json:"-"`                     // Время, до которого учётная запись заблокирована
	Address             *string    `json:"address,omitempty"`
	StreetNumber        *string    `json:"street_number,omitempty"`
	City                *string    `json:"city,omitempty"`
	ZipCode             *string    `json:"zip_code,omitempty"`
	Country             *string    `json:"country,omitempty"`
	Birthdate           *time.Time `json:"birthdate,omitempty"`
}

// Locked сообщает, заблокирована ли учётная запись на момент now.
func (u *User) Locked(now time.Time) bool {
	return u.AccountLockedUntil != nil && u.AccountLockedUntil.After(now)
}

// UserUpdate описывает частичное обновление профиля.
// Nil-поля не изменяются.
type UserUpdate struct {
	FullName     *string `json:"full_name,omitempty" validate:"omitempty,min=1,max=100"`
	Address      *string `json:"address,omitempty"`
	StreetNumber *string `json:"street_number,omitempty"`
	City         *string `json:"city,omitempty"`
	ZipCode      *string `json:"zip_code,omitempty"`
	Country      *string `json:"country,omitempty"`
	Birthdate    *string `json:"birthdate,omitempty" validate:"omitempty,datetime=2006-01-02"`
}
