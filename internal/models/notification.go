package models

// Типы уведомлений биллинга, отправляемых через очередь.
const (
	NotificationPaymentFailed       = "payment_failed"
	NotificationSubscriptionEnded   = "subscription_ended"
	NotificationSubscriptionRenewed = "subscription_renewed"
)

// BillingNotification сообщение для очереди уведомлений биллинга.
// Публикуется API-сервером, потребляется отправителем писем.
type BillingNotification struct {
	Type     string         `json:"type"`
	Email    string         `json:"email"`
	FullName string         `json:"full_name"`
	Payload  map[string]any `json:"payload,omitempty"`
}
