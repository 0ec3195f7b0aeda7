package models

import (
	"fmt"
	"time"
)

// BillingPeriod перечисляет поддерживаемые периоды оплаты подписки.
const (
	PeriodMonthly    = "monthly"
	PeriodQuarterly  = "quarterly"
	PeriodSemiannual = "semiannual"
	PeriodAnnual     = "annual"
)

// PeriodLength возвращает длительность периода оплаты в днях.
// Для неизвестного периода возвращает ошибку.
func PeriodLength(billingPeriod string) (int, error) {
	switch billingPeriod {
	case PeriodMonthly:
		return 30, nil
	case PeriodQuarterly:
		return 90, nil
	case PeriodSemiannual:
		return 180, nil
	case PeriodAnnual:
		return 365, nil
	default:
		return 0, fmt.Errorf("unknown billing period: %s", billingPeriod)
	}
}

// ValidBillingPeriod проверяет, входит ли период в перечисление.
func ValidBillingPeriod(billingPeriod string) bool {
	_, err := PeriodLength(billingPeriod)
	return err == nil
}

// Plan представляет тариф подписки из каталога.
type Plan struct {
	ID              int64    `json:"id"`               // Уникальный идентификатор тарифа
	Name            string   `json:"name"`             // Название: Starter, Hobbista, Creativo, Professional
	Slug            string   `json:"slug"`             // Уникальный слаг тарифа
	Description     string   `json:"description"`      // Описание
	CategoriesCount int      `json:"categories_count"` // Сколько категорий может выбрать подписчик
	ItemsPerMonth   int      `json:"items_per_month"`  // Сколько позиций отправляется в месяц
	MonthlyPrice    float64  `json:"monthly_price"`    // Цена за месяц
	QuarterlyPrice  float64  `json:"quarterly_price"`  // Цена за квартал
	SemiannualPrice float64  `json:"semiannual_price"` // Цена за полгода
	AnnualPrice     float64  `json:"annual_price"`     // Цена за год
	IsPopular       bool     `json:"is_popular"`       // Маркер «популярный» для витрины
	Features        []string `json:"features"`         // Список преимуществ тарифа
	IsActive        bool     `json:"is_active"`        // Доступен ли тариф для оформления
}

// Subscription представляет платёжные отношения пользователя с одним тарифом.
// Инвариант: не более одной записи с IsActive=true на пользователя
// (частичный уникальный индекс в БД).
type Subscription struct {
	ID                     int64     `json:"id"`                // Уникальный идентификатор подписки
	UserID                 int64     `json:"user_id"`           // Владелец подписки
	PlanID                 int64     `json:"plan_id"`           // Оформленный тариф
	StartDate              time.Time `json:"start_date"`        // Начало подписки
	EndDate                time.Time `json:"end_date"`          // Конец оплаченного периода
	IsActive               bool      `json:"is_active"`         // Действует ли подписка
	BillingPeriod          string    `json:"billing_period"`    // Период оплаты: monthly/quarterly/semiannual/annual
	NextBillingDate        time.Time `json:"next_billing_date"` // Дата следующего списания
	ProviderCustomerID     *string   `json:"-"`                 // Клиент у платёжного провайдера
	ProviderSubscriptionID *string   `json:"-"`                 // Подписка у платёжного провайдера
}

// SubscriptionWithPlan объединяет подписку с данными тарифа для ответов API.
type SubscriptionWithPlan struct {
	Subscription
	Plan *Plan `json:"plan"`
}
