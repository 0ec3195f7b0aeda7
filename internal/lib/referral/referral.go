// Package referral генерирует реферальные коды пользователей.
package referral

import (
	"strings"

	"github.com/google/uuid"
)

// NewCode возвращает короткий реферальный код: первые 8 символов uuid в верхнем регистре.
func NewCode() string {
	id := uuid.NewString()
	return strings.ToUpper(strings.ReplaceAll(id, "-", "")[:8])
}
