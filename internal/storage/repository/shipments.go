package repository

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/cookieflix/cookieflix-backend/internal/models"
)

// ListShipmentsByUser возвращает отправки пользователя с позициями и дизайнами,
// отсортированные по дате создания по убыванию.
func (s *Storage) ListShipmentsByUser(ctx context.Context, userID int64) ([]*models.Shipment, error) {
	const op = "storage.ListShipmentsByUser"
	select {
	case <-ctx.Done():
		return nil, fmt.Errorf("%s: %w", op, ctx.Err())
	default:
	}

	query := `SELECT id, user_id, tracking_number, status, shipped_date,
			      estimated_delivery_date, delivered_date, created_at
			  FROM shipments
			  WHERE user_id = $1
			  ORDER BY created_at DESC`
	rows, err := s.DB.QueryContext(ctx, query, userID)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	defer func() {
		_ = rows.Close()
	}()

	var result []*models.Shipment
	for rows.Next() {
		item, err := scanShipment(rows)
		if err != nil {
			return nil, fmt.Errorf("%s: %w", op, err)
		}
		result = append(result, item)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	for _, shipment := range result {
		items, err := s.listShipmentItems(ctx, shipment.ID)
		if err != nil {
			return nil, fmt.Errorf("%s: %w", op, err)
		}
		shipment.Items = items
	}
	return result, nil
}

// GetShipment возвращает отправку по ID без позиций.
func (s *Storage) GetShipment(ctx context.Context, id int64) (*models.Shipment, error) {
	const op = "storage.GetShipment"
	select {
	case <-ctx.Done():
		return nil, fmt.Errorf("%s: %w", op, ctx.Err())
	default:
	}

	query := `SELECT id, user_id, tracking_number, status, shipped_date,
			      estimated_delivery_date, delivered_date, created_at
			  FROM shipments
			  WHERE id = $1`
	item, err := scanShipment(s.DB.QueryRowContext(ctx, query, id))
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return item, nil
}

// CreateShipment вставляет новую отправку и возвращает её ID.
func (s *Storage) CreateShipment(ctx context.Context, shipment models.Shipment) (int64, error) {
	const op = "storage.CreateShipment"
	select {
	case <-ctx.Done():
		return 0, fmt.Errorf("%s: %w", op, ctx.Err())
	default:
	}

	query := `INSERT INTO shipments (user_id, tracking_number, status, shipped_date,
			      estimated_delivery_date, delivered_date)
			  VALUES ($1, $2, $3, $4, $5, $6)
			  RETURNING id`
	var newID int64
	err := s.DB.QueryRowContext(ctx, query,
		shipment.UserID, shipment.TrackingNumber, shipment.Status, shipment.ShippedDate,
		shipment.EstimatedDeliveryDate, shipment.DeliveredDate).Scan(&newID)
	if err != nil {
		return 0, fmt.Errorf("%s: %w", op, err)
	}
	return newID, nil
}

// AddShipmentItem вставляет позицию в отправку и возвращает её ID.
func (s *Storage) AddShipmentItem(ctx context.Context, item models.ShipmentItem) (int64, error) {
	const op = "storage.AddShipmentItem"
	select {
	case <-ctx.Done():
		return 0, fmt.Errorf("%s: %w", op, ctx.Err())
	default:
	}

	query := `INSERT INTO shipment_items (shipment_id, design_id, quantity)
			  VALUES ($1, $2, $3)
			  RETURNING id`
	var newID int64
	err := s.DB.QueryRowContext(ctx, query,
		item.ShipmentID, item.DesignID, item.Quantity).Scan(&newID)
	if err != nil {
		return 0, fmt.Errorf("%s: %w", op, err)
	}
	return newID, nil
}

func (s *Storage) listShipmentItems(ctx context.Context, shipmentID int64) ([]*models.ShipmentItem, error) {
	query := `SELECT i.id, i.shipment_id, i.design_id, i.quantity,
			      d.id, d.name, d.description, d.category_id, d.image_url, d.model_url,
			      d.created_at, d.is_active
			  FROM shipment_items i
			  JOIN designs d ON d.id = i.design_id
			  WHERE i.shipment_id = $1
			  ORDER BY i.id`
	rows, err := s.DB.QueryContext(ctx, query, shipmentID)
	if err != nil {
		return nil, err
	}
	defer func() {
		_ = rows.Close()
	}()

	var result []*models.ShipmentItem
	for rows.Next() {
		var item models.ShipmentItem
		var design models.Design
		var modelURL sql.NullString
		if err := rows.Scan(&item.ID, &item.ShipmentID, &item.DesignID, &item.Quantity,
			&design.ID, &design.Name, &design.Description, &design.CategoryID,
			&design.ImageURL, &modelURL, &design.CreatedAt, &design.IsActive); err != nil {
			return nil, err
		}
		if modelURL.Valid {
			design.ModelURL = &modelURL.String
		}
		item.Design = &design
		result = append(result, &item)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return result, nil
}

func scanShipment(row interface{ Scan(...any) error }) (*models.Shipment, error) {
	var item models.Shipment
	var trackingNumber sql.NullString
	var shippedDate, estimatedDeliveryDate, deliveredDate sql.NullTime
	if err := row.Scan(&item.ID, &item.UserID, &trackingNumber, &item.Status,
		&shippedDate, &estimatedDeliveryDate, &deliveredDate, &item.CreatedAt); err != nil {
		return nil, err
	}
	if trackingNumber.Valid {
		item.TrackingNumber = &trackingNumber.String
	}
	if shippedDate.Valid {
		item.ShippedDate = &shippedDate.Time
	}
	if estimatedDeliveryDate.Valid {
		item.EstimatedDeliveryDate = &estimatedDeliveryDate.Time
	}
	if deliveredDate.Valid {
		item.DeliveredDate = &deliveredDate.Time
	}
	return &item, nil
}
