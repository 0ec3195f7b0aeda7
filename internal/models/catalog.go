package models

import "time"

// Category представляет категорию дизайнов в каталоге.
type Category struct {
	ID          int64  `json:"id"`        // Уникальный идентификатор категории
	Name        string `json:"name"`      // Название (уникальное)
	Slug        string `json:"slug"`      // Слаг для URL (уникальный)
	Description string `json:"description"`
	ImageURL    string `json:"image_url"`
	IsActive    bool   `json:"is_active"` // Видна ли категория в каталоге
}

// Design представляет дизайн внутри категории.
type Design struct {
	ID          int64     `json:"id"`                  // Уникальный идентификатор дизайна
	Name        string    `json:"name"`
	Description string    `json:"description"`
	CategoryID  int64     `json:"category_id"`         // Категория, к которой относится дизайн
	ImageURL    string    `json:"image_url"`
	ModelURL    *string   `json:"model_url,omitempty"` // Ссылка на 3D-модель, если есть
	CreatedAt   time.Time `json:"created_at"`
	IsActive    bool      `json:"is_active"`
	VotesCount  int       `json:"votes_count"`         // Количество голосов, подсчитывается при выдаче
}

// Vote представляет голос пользователя за дизайн.
// Пара (UserID, DesignID) уникальна, записи не изменяются и не удаляются.
type Vote struct {
	ID        int64     `json:"id"`
	UserID    int64     `json:"user_id"`
	DesignID  int64     `json:"design_id"`
	CreatedAt time.Time `json:"created_at"`
}
