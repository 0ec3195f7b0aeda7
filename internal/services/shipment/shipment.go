// Package services содержит бизнес-логику отслеживания отправок.
package services

import (
	"context"
	"errors"
	"log/slog"

	"github.com/cookieflix/cookieflix-backend/internal/models"
)

// Ошибки уровня сервиса, по которым обработчики выбирают HTTP-статус.
var (
	ErrShipmentNotFound = errors.New("shipment not found")
	ErrDesignNotFound   = errors.New("design not found")
	ErrUserNotFound     = errors.New("user not found")
	ErrInvalidStatus    = errors.New("invalid shipment status")
)

// ShipmentRepository определяет методы хранилища, нужные сервису отправок.
type ShipmentRepository interface {
	// ListShipmentsByUser возвращает отправки пользователя с позициями.
	ListShipmentsByUser(ctx context.Context, userID int64) ([]*models.Shipment, error)
	// GetShipment возвращает отправку по ID с позициями.
	GetShipment(ctx context.Context, id int64) (*models.Shipment, error)
	// CreateShipment вставляет отправку и возвращает её ID.
	CreateShipment(ctx context.Context, shipment models.Shipment) (int64, error)
	// AddShipmentItem вставляет позицию отправки и возвращает её ID.
	AddShipmentItem(ctx context.Context, item models.ShipmentItem) (int64, error)
	// GetUser возвращает пользователя по ID.
	GetUser(ctx context.Context, id int64) (*models.User, error)
	// GetDesign возвращает дизайн по ID.
	GetDesign(ctx context.Context, id int64) (*models.Design, error)
}

// ShipmentService реализует операции над отправками.
type ShipmentService struct {
	repo ShipmentRepository
	log  *slog.Logger
}

// NewShipmentService создает новый экземпляр ShipmentService.
func NewShipmentService(repo ShipmentRepository, log *slog.Logger) *ShipmentService {
	return &ShipmentService{repo: repo, log: log}
}

// ListMy возвращает отправки пользователя, новые первыми.
func (s *ShipmentService) ListMy(ctx context.Context, userID int64) ([]*models.Shipment, error) {
	return s.repo.ListShipmentsByUser(ctx, userID)
}

// Create регистрирует отправку для пользователя. Вызывается администратором.
func (s *ShipmentService) Create(ctx context.Context, shipment models.Shipment) (*models.Shipment, error) {
	if _, err := s.repo.GetUser(ctx, shipment.UserID); err != nil {
		return nil, ErrUserNotFound
	}
	if shipment.Status == "" {
		shipment.Status = models.ShipmentProcessed
	}
	switch shipment.Status {
	case models.ShipmentProcessed, models.ShipmentShipped, models.ShipmentDelivered:
	default:
		return nil, ErrInvalidStatus
	}

	id, err := s.repo.CreateShipment(ctx, shipment)
	if err != nil {
		return nil, err
	}
	s.log.Info("shipment created",
		slog.Int64("shipment_id", id), slog.Int64("user_id", shipment.UserID))
	return s.repo.GetShipment(ctx, id)
}

// AddItem добавляет позицию в отправку. Вызывается администратором.
func (s *ShipmentService) AddItem(ctx context.Context, shipmentID, designID int64, quantity int) (*models.ShipmentItem, error) {
	if _, err := s.repo.GetShipment(ctx, shipmentID); err != nil {
		return nil, ErrShipmentNotFound
	}
	design, err := s.repo.GetDesign(ctx, designID)
	if err != nil {
		return nil, ErrDesignNotFound
	}
	if quantity <= 0 {
		quantity = 1
	}

	item := models.ShipmentItem{
		ShipmentID: shipmentID,
		DesignID:   designID,
		Quantity:   quantity,
	}
	id, err := s.repo.AddShipmentItem(ctx, item)
	if err != nil {
		return nil, err
	}
	item.ID = id
	item.Design = design
	return &item, nil
}
