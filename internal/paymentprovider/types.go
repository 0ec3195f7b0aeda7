package paymentprovider

// Запрос на создание клиента у платёжного провайдера
type CreateCustomerRequest struct {
	Email string `json:"email" validate:"required,email"`
	Name  string `json:"name,omitempty"`
}

// Ответ провайдера при создании клиента
type CreateCustomerResponse struct {
	ID    string `json:"id"`
	Email string `json:"email"`
}

// Запрос на создание сессии оформления подписки
type CreateCheckoutSessionRequest struct {
	Customer   string            `json:"customer" validate:"required"`
	PriceID    string            `json:"price_id" validate:"required"`
	Mode       string            `json:"mode"`
	SuccessURL string            `json:"success_url" validate:"required"`
	CancelURL  string            `json:"cancel_url" validate:"required"`
	Metadata   map[string]string `json:"metadata,omitempty"`
}

// Сессия оформления, возвращается при создании и при чтении.
// PaymentStatus принимает значения "paid" и "unpaid".
type CheckoutSession struct {
	ID             string            `json:"id"`
	URL            string            `json:"url"`
	Customer       string            `json:"customer"`
	Subscription   string            `json:"subscription"`
	PaymentStatus  string            `json:"payment_status"`
	Metadata       map[string]string `json:"metadata,omitempty"`
	AmountTotal    int64             `json:"amount_total"`
	Currency       string            `json:"currency"`
	ExpiresAtUnix  int64             `json:"expires_at"`
	CreatedAtUnix  int64             `json:"created"`
	CustomerEmail  string            `json:"customer_email,omitempty"`
	SubscriptionID string            `json:"subscription_id,omitempty"`
}

const (
	PaymentStatusPaid   = "paid"
	PaymentStatusUnpaid = "unpaid"
)
