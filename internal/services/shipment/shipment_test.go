package services

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"testing"

	"github.com/cookieflix/cookieflix-backend/internal/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
)

type RepoMock struct {
	mock.Mock
}

func (m *RepoMock) ListShipmentsByUser(ctx context.Context, userID int64) ([]*models.Shipment, error) {
	args := m.Called(ctx, userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*models.Shipment), args.Error(1)
}

func (m *RepoMock) GetShipment(ctx context.Context, id int64) (*models.Shipment, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Shipment), args.Error(1)
}

func (m *RepoMock) CreateShipment(ctx context.Context, shipment models.Shipment) (int64, error) {
	args := m.Called(ctx, shipment)
	return args.Get(0).(int64), args.Error(1)
}

func (m *RepoMock) AddShipmentItem(ctx context.Context, item models.ShipmentItem) (int64, error) {
	args := m.Called(ctx, item)
	return args.Get(0).(int64), args.Error(1)
}

func (m *RepoMock) GetUser(ctx context.Context, id int64) (*models.User, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.User), args.Error(1)
}

func (m *RepoMock) GetDesign(ctx context.Context, id int64) (*models.Design, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Design), args.Error(1)
}

func newNoopLogger() *slog.Logger {
	h := slog.NewTextHandler(io.Discard, &slog.HandlerOptions{})
	return slog.New(h)
}

func TestShipmentService_Create(t *testing.T) {
	user := &models.User{ID: 1, Email: "user@example.com"}
	created := &models.Shipment{ID: 5, UserID: 1, Status: models.ShipmentProcessed}

	tests := []struct {
		name       string
		shipment   models.Shipment
		setupMocks func(r *RepoMock)
		wantErr    error
	}{
		{
			name:     "default status applied",
			shipment: models.Shipment{UserID: 1},
			setupMocks: func(r *RepoMock) {
				r.On("GetUser", mock.Anything, int64(1)).Return(user, nil).Once()
				r.On("CreateShipment", mock.Anything, mock.MatchedBy(func(s models.Shipment) bool {
					return s.Status == models.ShipmentProcessed
				})).Return(int64(5), nil).Once()
				r.On("GetShipment", mock.Anything, int64(5)).Return(created, nil).Once()
			},
		},
		{
			name:     "explicit shipped status",
			shipment: models.Shipment{UserID: 1, Status: models.ShipmentShipped},
			setupMocks: func(r *RepoMock) {
				r.On("GetUser", mock.Anything, int64(1)).Return(user, nil).Once()
				r.On("CreateShipment", mock.Anything, mock.MatchedBy(func(s models.Shipment) bool {
					return s.Status == models.ShipmentShipped
				})).Return(int64(5), nil).Once()
				r.On("GetShipment", mock.Anything, int64(5)).Return(created, nil).Once()
			},
		},
		{
			name:     "unknown user",
			shipment: models.Shipment{UserID: 99},
			setupMocks: func(r *RepoMock) {
				r.On("GetUser", mock.Anything, int64(99)).Return(nil, errors.New("not found")).Once()
			},
			wantErr: ErrUserNotFound,
		},
		{
			name:     "unsupported status",
			shipment: models.Shipment{UserID: 1, Status: "lost"},
			setupMocks: func(r *RepoMock) {
				r.On("GetUser", mock.Anything, int64(1)).Return(user, nil).Once()
			},
			wantErr: ErrInvalidStatus,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			repo := new(RepoMock)
			svc := NewShipmentService(repo, newNoopLogger())

			tt.setupMocks(repo)

			got, err := svc.Create(context.Background(), tt.shipment)
			if tt.wantErr != nil {
				assert.ErrorIs(t, err, tt.wantErr)
				assert.Nil(t, got)
			} else {
				assert.NoError(t, err)
				assert.Equal(t, created, got)
			}

			repo.AssertExpectations(t)
		})
	}
}

func TestShipmentService_AddItem(t *testing.T) {
	shipment := &models.Shipment{ID: 5, UserID: 1, Status: models.ShipmentProcessed}
	design := &models.Design{ID: 42, CategoryID: 3, IsActive: true}

	tests := []struct {
		name       string
		quantity   int
		setupMocks func(r *RepoMock)
		wantQty    int
		wantErr    error
	}{
		{
			name:     "item added",
			quantity: 2,
			setupMocks: func(r *RepoMock) {
				r.On("GetShipment", mock.Anything, int64(5)).Return(shipment, nil).Once()
				r.On("GetDesign", mock.Anything, int64(42)).Return(design, nil).Once()
				r.On("AddShipmentItem", mock.Anything, mock.MatchedBy(func(it models.ShipmentItem) bool {
					return it.ShipmentID == 5 && it.DesignID == 42 && it.Quantity == 2
				})).Return(int64(7), nil).Once()
			},
			wantQty: 2,
		},
		{
			name:     "zero quantity defaults to one",
			quantity: 0,
			setupMocks: func(r *RepoMock) {
				r.On("GetShipment", mock.Anything, int64(5)).Return(shipment, nil).Once()
				r.On("GetDesign", mock.Anything, int64(42)).Return(design, nil).Once()
				r.On("AddShipmentItem", mock.Anything, mock.MatchedBy(func(it models.ShipmentItem) bool {
					return it.Quantity == 1
				})).Return(int64(7), nil).Once()
			},
			wantQty: 1,
		},
		{
			name:     "unknown shipment",
			quantity: 1,
			setupMocks: func(r *RepoMock) {
				r.On("GetShipment", mock.Anything, int64(5)).Return(nil, errors.New("not found")).Once()
			},
			wantErr: ErrShipmentNotFound,
		},
		{
			name:     "unknown design",
			quantity: 1,
			setupMocks: func(r *RepoMock) {
				r.On("GetShipment", mock.Anything, int64(5)).Return(shipment, nil).Once()
				r.On("GetDesign", mock.Anything, int64(42)).Return(nil, errors.New("not found")).Once()
			},
			wantErr: ErrDesignNotFound,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			repo := new(RepoMock)
			svc := NewShipmentService(repo, newNoopLogger())

			tt.setupMocks(repo)

			got, err := svc.AddItem(context.Background(), 5, 42, tt.quantity)
			if tt.wantErr != nil {
				assert.ErrorIs(t, err, tt.wantErr)
				assert.Nil(t, got)
			} else {
				assert.NoError(t, err)
				assert.Equal(t, int64(7), got.ID)
				assert.Equal(t, tt.wantQty, got.Quantity)
				assert.Equal(t, design, got.Design)
			}

			repo.AssertExpectations(t)
		})
	}
}
