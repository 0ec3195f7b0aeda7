package models

import "time"

// Статусы отправки.
const (
	ShipmentProcessed = "processed"
	ShipmentShipped   = "shipped"
	ShipmentDelivered = "delivered"
)

// Shipment представляет отправку набора позиций пользователю.
// Создаётся и изменяется только администратором.
type Shipment struct {
	ID                    int64           `json:"id"`
	UserID                int64           `json:"user_id"`
	TrackingNumber        *string         `json:"tracking_number,omitempty"`
	Status                string          `json:"status"` // processed, shipped, delivered
	ShippedDate           *time.Time      `json:"shipped_date,omitempty"`
	EstimatedDeliveryDate *time.Time      `json:"estimated_delivery_date,omitempty"`
	DeliveredDate         *time.Time      `json:"delivered_date,omitempty"`
	CreatedAt             time.Time       `json:"created_at"`
	Items                 []*ShipmentItem `json:"items"`
}

// ShipmentItem представляет позицию внутри отправки.
type ShipmentItem struct {
	ID         int64   `json:"id"`
	ShipmentID int64   `json:"shipment_id"`
	DesignID   int64   `json:"design_id"`
	Quantity   int     `json:"quantity"`
	Design     *Design `json:"design,omitempty"` // Дизайн позиции, подгружается при выдаче
}
