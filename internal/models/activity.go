package models

import "time"

// Activity представляет запись журнала активности.
// Журнал только пополняется, записи не изменяются.
type Activity struct {
	ID          int64          `json:"id"`
	UserID      *int64         `json:"user_id,omitempty"` // Инициатор, nil для системных событий
	Type        string         `json:"type"`              // login, register, vote, subscription, webhook и т.п.
	Description string         `json:"description,omitempty"`
	IPAddress   *string        `json:"-"`
	UserAgent   *string        `json:"-"`
	Payload     map[string]any `json:"payload,omitempty"` // Дополнительные данные, сериализуются в JSON
	CreatedAt   time.Time      `json:"created_at"`
}
