package models

// UsersStats агрегированная статистика по пользователям для админки.
type UsersStats struct {
	Total    int `json:"total"`
	Active   int `json:"active"`
	Inactive int `json:"inactive"`
	Admins   int `json:"admins"`
	Recent   int `json:"recent"` // Зарегистрированы за последние 30 дней
}

// SubscriptionsStats агрегированная статистика по подпискам для админки.
type SubscriptionsStats struct {
	Total    int            `json:"total"`
	Active   int            `json:"active"`
	ByPeriod map[string]int `json:"by_period"`
}
