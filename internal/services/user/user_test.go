package services_test

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"testing"

	"github.com/cookieflix/cookieflix-backend/internal/models"
	services "github.com/cookieflix/cookieflix-backend/internal/services/user"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
)

type UserRepoMock struct {
	mock.Mock
}

func (m *UserRepoMock) GetUser(ctx context.Context, id int64) (*models.User, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.User), args.Error(1)
}

func (m *UserRepoMock) UpdateUserProfile(ctx context.Context, u models.User) error {
	return m.Called(ctx, u).Error(0)
}

func (m *UserRepoMock) CountReferrals(ctx context.Context, referralCode string) (int, error) {
	args := m.Called(ctx, referralCode)
	return args.Int(0), args.Error(1)
}

func newNoopLogger() *slog.Logger {
	h := slog.NewTextHandler(io.Discard, &slog.HandlerOptions{})
	return slog.New(h)
}

func strPtr(s string) *string { return &s }

func TestUserService_UpdateProfile(t *testing.T) {
	baseUser := func() *models.User {
		return &models.User{ID: 1, Email: "user@example.com", FullName: "Old Name", IsActive: true}
	}
	withAddress := func() *models.User {
		u := baseUser()
		u.Address = strPtr("Via Roma")
		u.StreetNumber = strPtr("1")
		u.City = strPtr("Milano")
		u.ZipCode = strPtr("20100")
		u.Country = strPtr("IT")
		return u
	}

	tests := []struct {
		name       string
		upd        models.UserUpdate
		setupMocks func(r *UserRepoMock)
		check      func(t *testing.T, got *models.User)
		wantErr    error
	}{
		{
			name: "full name updated",
			upd:  models.UserUpdate{FullName: strPtr("New Name")},
			setupMocks: func(r *UserRepoMock) {
				r.On("GetUser", mock.Anything, int64(1)).Return(baseUser(), nil).Once()
				r.On("UpdateUserProfile", mock.Anything, mock.MatchedBy(func(u models.User) bool {
					return u.FullName == "New Name"
				})).Return(nil).Once()
			},
			check: func(t *testing.T, got *models.User) {
				assert.Equal(t, "New Name", got.FullName)
			},
		},
		{
			name: "complete address accepted",
			upd: models.UserUpdate{
				Address:      strPtr("Via Roma"),
				StreetNumber: strPtr("1"),
				City:         strPtr("Milano"),
				ZipCode:      strPtr("20100"),
				Country:      strPtr("IT"),
			},
			setupMocks: func(r *UserRepoMock) {
				r.On("GetUser", mock.Anything, int64(1)).Return(baseUser(), nil).Once()
				r.On("UpdateUserProfile", mock.Anything, mock.Anything).Return(nil).Once()
			},
			check: func(t *testing.T, got *models.User) {
				assert.Equal(t, "Milano", *got.City)
			},
		},
		{
			name: "partial address rejected",
			upd:  models.UserUpdate{City: strPtr("Milano")},
			setupMocks: func(r *UserRepoMock) {
				r.On("GetUser", mock.Anything, int64(1)).Return(baseUser(), nil).Once()
			},
			wantErr: services.ErrIncompleteAddress,
		},
		{
			name: "clearing one address field breaks completeness",
			upd:  models.UserUpdate{City: strPtr("")},
			setupMocks: func(r *UserRepoMock) {
				r.On("GetUser", mock.Anything, int64(1)).Return(withAddress(), nil).Once()
			},
			wantErr: services.ErrIncompleteAddress,
		},
		{
			name: "single field change keeps existing complete address",
			upd:  models.UserUpdate{City: strPtr("Torino")},
			setupMocks: func(r *UserRepoMock) {
				r.On("GetUser", mock.Anything, int64(1)).Return(withAddress(), nil).Once()
				r.On("UpdateUserProfile", mock.Anything, mock.MatchedBy(func(u models.User) bool {
					return u.City != nil && *u.City == "Torino"
				})).Return(nil).Once()
			},
			check: func(t *testing.T, got *models.User) {
				assert.Equal(t, "Torino", *got.City)
			},
		},
		{
			name: "birthdate parsed",
			upd:  models.UserUpdate{Birthdate: strPtr("1990-05-15")},
			setupMocks: func(r *UserRepoMock) {
				r.On("GetUser", mock.Anything, int64(1)).Return(baseUser(), nil).Once()
				r.On("UpdateUserProfile", mock.Anything, mock.Anything).Return(nil).Once()
			},
			check: func(t *testing.T, got *models.User) {
				assert.NotNil(t, got.Birthdate)
				assert.Equal(t, 1990, got.Birthdate.Year())
			},
		},
		{
			name: "user not found",
			upd:  models.UserUpdate{FullName: strPtr("New Name")},
			setupMocks: func(r *UserRepoMock) {
				r.On("GetUser", mock.Anything, int64(1)).Return(nil, errors.New("not found")).Once()
			},
			wantErr: errors.New("not found"),
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			repo := new(UserRepoMock)
			svc := services.NewUserService(repo, newNoopLogger())

			tt.setupMocks(repo)

			got, err := svc.UpdateProfile(context.Background(), 1, tt.upd)
			if tt.wantErr != nil {
				assert.Error(t, err)
				assert.Contains(t, err.Error(), tt.wantErr.Error())
				assert.Nil(t, got)
			} else {
				assert.NoError(t, err)
				tt.check(t, got)
			}

			repo.AssertExpectations(t)
		})
	}
}

func TestUserService_Referral(t *testing.T) {
	repo := new(UserRepoMock)
	svc := services.NewUserService(repo, newNoopLogger())

	repo.On("GetUser", mock.Anything, int64(1)).
		Return(&models.User{ID: 1, ReferralCode: "AB12CD34", CreditBalance: 7.5}, nil).Once()
	repo.On("CountReferrals", mock.Anything, "AB12CD34").Return(3, nil).Once()

	got, err := svc.Referral(context.Background(), 1)
	assert.NoError(t, err)
	assert.Equal(t, &services.ReferralInfo{
		ReferralCode:  "AB12CD34",
		ReferredCount: 3,
		CreditBalance: 7.5,
	}, got)

	repo.AssertExpectations(t)
}
