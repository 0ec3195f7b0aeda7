package services_test

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"testing"
	"time"

	customjwt "github.com/cookieflix/cookieflix-backend/internal/lib/jwt"
	"github.com/cookieflix/cookieflix-backend/internal/lib/password"
	"github.com/cookieflix/cookieflix-backend/internal/models"
	services "github.com/cookieflix/cookieflix-backend/internal/services/auth"
	"github.com/cookieflix/cookieflix-backend/internal/storage/repository"
	jwtlib "github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
)

// Мок для UserRepository
type UserRepoMock struct {
	mock.Mock
}

func (m *UserRepoMock) CreateUser(ctx context.Context, user models.User) (int64, error) {
	args := m.Called(ctx, user)
	return args.Get(0).(int64), args.Error(1)
}

func (m *UserRepoMock) GetUserByEmail(ctx context.Context, email string) (*models.User, error) {
	args := m.Called(ctx, email)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.User), args.Error(1)
}

func (m *UserRepoMock) GetUser(ctx context.Context, id int64) (*models.User, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.User), args.Error(1)
}

func (m *UserRepoMock) UpdateLoginFailure(ctx context.Context, userID int64, attempts int, lockedUntil *time.Time) error {
	return m.Called(ctx, userID, attempts, lockedUntil).Error(0)
}

func (m *UserRepoMock) ResetLoginFailures(ctx context.Context, userID int64) error {
	return m.Called(ctx, userID).Error(0)
}

// Мок для jwt.Maker
type JwtMakerMock struct {
	mock.Mock
}

func (m *JwtMakerMock) GenerateToken(userID int64, role string) (string, error) {
	args := m.Called(userID, role)
	return args.String(0), args.Error(1)
}

func (m *JwtMakerMock) ParseToken(token string) (*customjwt.CustomClaims, error) {
	args := m.Called(token)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*customjwt.CustomClaims), args.Error(1)
}

// Заглушка журнала активности: записи не проверяются
type RecorderStub struct{}

func (RecorderStub) Record(_ context.Context, _ *int64, _ string, _ map[string]any) {}

func newNoopLogger() *slog.Logger {
	h := slog.NewTextHandler(io.Discard, &slog.HandlerOptions{})
	return slog.New(h)
}

func TestAuthService_Register(t *testing.T) {
	created := &models.User{ID: 7, Email: "test@example.com", FullName: "Test User", IsActive: true}

	tests := []struct {
		name       string
		email      string
		fullName   string
		password   string
		setupMocks func(r *UserRepoMock)
		wantUser   *models.User
		wantErr    error
	}{
		{
			name:     "successful registration",
			email:    "test@example.com",
			fullName: "Test User",
			password: "password123",
			setupMocks: func(r *UserRepoMock) {
				r.On("CreateUser", mock.Anything, mock.MatchedBy(func(user models.User) bool {
					return user.Email == "test@example.com" &&
						user.FullName == "Test User" &&
						user.PasswordHash != "" &&
						user.IsActive &&
						!user.IsAdmin &&
						len(user.ReferralCode) == 8
				})).Return(int64(7), nil).Once()
				r.On("GetUser", mock.Anything, int64(7)).Return(created, nil).Once()
			},
			wantUser: created,
		},
		{
			name:     "email already taken",
			email:    "dup@example.com",
			fullName: "Dup User",
			password: "password123",
			setupMocks: func(r *UserRepoMock) {
				r.On("CreateUser", mock.Anything, mock.Anything).Return(int64(0), repository.ErrAlreadyExists).Once()
			},
			wantErr: services.ErrEmailTaken,
		},
		{
			name:     "repository error",
			email:    "test@example.com",
			fullName: "Test User",
			password: "password123",
			setupMocks: func(r *UserRepoMock) {
				r.On("CreateUser", mock.Anything, mock.Anything).Return(int64(0), errors.New("db error")).Once()
			},
			wantErr: errors.New("db error"),
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			repo := new(UserRepoMock)
			jwtMock := new(JwtMakerMock)
			svc := services.NewAuthService(repo, jwtMock, RecorderStub{}, newNoopLogger())

			tt.setupMocks(repo)

			got, err := svc.Register(context.Background(), tt.email, tt.password, tt.fullName, nil)
			if tt.wantErr != nil {
				assert.Error(t, err)
				assert.Contains(t, err.Error(), tt.wantErr.Error())
			} else {
				assert.NoError(t, err)
				assert.Equal(t, tt.wantUser, got)
			}

			repo.AssertExpectations(t)
		})
	}
}

func TestAuthService_Login(t *testing.T) {
	rawPassword := "correctpassword"
	hashedPassword, err := password.GetHash(rawPassword)
	if err != nil {
		t.Fatalf("failed to hash password: %v", err)
	}

	baseUser := func() *models.User {
		return &models.User{
			ID:           1,
			Email:        "test@example.com",
			PasswordHash: hashedPassword,
			IsActive:     true,
		}
	}

	tests := []struct {
		name       string
		email      string
		password   string
		setupMocks func(r *UserRepoMock, j *JwtMakerMock)
		wantToken  string
		wantErr    error
	}{
		{
			name:     "successful login",
			email:    "test@example.com",
			password: rawPassword,
			setupMocks: func(r *UserRepoMock, j *JwtMakerMock) {
				r.On("GetUserByEmail", mock.Anything, "test@example.com").Return(baseUser(), nil).Once()
				j.On("GenerateToken", int64(1), "user").Return("jwt-token-123", nil).Once()
			},
			wantToken: "jwt-token-123",
		},
		{
			name:     "admin gets admin role",
			email:    "admin@example.com",
			password: rawPassword,
			setupMocks: func(r *UserRepoMock, j *JwtMakerMock) {
				admin := baseUser()
				admin.ID = 2
				admin.IsAdmin = true
				r.On("GetUserByEmail", mock.Anything, "admin@example.com").Return(admin, nil).Once()
				j.On("GenerateToken", int64(2), "admin").Return("jwt-token-admin", nil).Once()
			},
			wantToken: "jwt-token-admin",
		},
		{
			name:     "user not found",
			email:    "nobody@example.com",
			password: rawPassword,
			setupMocks: func(r *UserRepoMock, _ *JwtMakerMock) {
				r.On("GetUserByEmail", mock.Anything, "nobody@example.com").Return(nil, errors.New("not found")).Once()
			},
			wantErr: services.ErrInvalidCredentials,
		},
		{
			name:     "disabled account",
			email:    "test@example.com",
			password: rawPassword,
			setupMocks: func(r *UserRepoMock, _ *JwtMakerMock) {
				disabled := baseUser()
				disabled.IsActive = false
				r.On("GetUserByEmail", mock.Anything, "test@example.com").Return(disabled, nil).Once()
			},
			wantErr: services.ErrAccountDisabled,
		},
		{
			name:     "locked account rejected before password check",
			email:    "test@example.com",
			password: rawPassword,
			setupMocks: func(r *UserRepoMock, _ *JwtMakerMock) {
				locked := baseUser()
				until := time.Now().UTC().Add(10 * time.Minute)
				locked.AccountLockedUntil = &until
				r.On("GetUserByEmail", mock.Anything, "test@example.com").Return(locked, nil).Once()
			},
			wantErr: services.ErrAccountLocked,
		},
		{
			name:     "wrong password increments failure counter",
			email:    "test@example.com",
			password: "wrongpassword",
			setupMocks: func(r *UserRepoMock, _ *JwtMakerMock) {
				r.On("GetUserByEmail", mock.Anything, "test@example.com").Return(baseUser(), nil).Once()
				r.On("UpdateLoginFailure", mock.Anything, int64(1), 1, (*time.Time)(nil)).Return(nil).Once()
			},
			wantErr: services.ErrInvalidCredentials,
		},
		{
			name:     "fifth failure locks the account but still reads as bad credentials",
			email:    "test@example.com",
			password: "wrongpassword",
			setupMocks: func(r *UserRepoMock, _ *JwtMakerMock) {
				almost := baseUser()
				almost.FailedLoginAttempts = 4
				r.On("GetUserByEmail", mock.Anything, "test@example.com").Return(almost, nil).Once()
				r.On("UpdateLoginFailure", mock.Anything, int64(1), 5, mock.MatchedBy(func(until *time.Time) bool {
					return until != nil && until.After(time.Now().UTC())
				})).Return(nil).Once()
			},
			wantErr: services.ErrInvalidCredentials,
		},
		{
			name:     "expired lock allows login again",
			email:    "test@example.com",
			password: rawPassword,
			setupMocks: func(r *UserRepoMock, j *JwtMakerMock) {
				expired := baseUser()
				until := time.Now().UTC().Add(-time.Minute)
				expired.AccountLockedUntil = &until
				expired.FailedLoginAttempts = 5
				r.On("GetUserByEmail", mock.Anything, "test@example.com").Return(expired, nil).Once()
				r.On("ResetLoginFailures", mock.Anything, int64(1)).Return(nil).Once()
				j.On("GenerateToken", int64(1), "user").Return("jwt-token-123", nil).Once()
			},
			wantToken: "jwt-token-123",
		},
		{
			name:     "successful login resets failure counter",
			email:    "test@example.com",
			password: rawPassword,
			setupMocks: func(r *UserRepoMock, j *JwtMakerMock) {
				withFailures := baseUser()
				withFailures.FailedLoginAttempts = 2
				r.On("GetUserByEmail", mock.Anything, "test@example.com").Return(withFailures, nil).Once()
				r.On("ResetLoginFailures", mock.Anything, int64(1)).Return(nil).Once()
				j.On("GenerateToken", int64(1), "user").Return("jwt-token-123", nil).Once()
			},
			wantToken: "jwt-token-123",
		},
		{
			name:     "token generation error",
			email:    "test@example.com",
			password: rawPassword,
			setupMocks: func(r *UserRepoMock, j *JwtMakerMock) {
				r.On("GetUserByEmail", mock.Anything, "test@example.com").Return(baseUser(), nil).Once()
				j.On("GenerateToken", int64(1), "user").Return("", errors.New("token error")).Once()
			},
			wantErr: errors.New("token error"),
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			repo := new(UserRepoMock)
			jwtMock := new(JwtMakerMock)
			svc := services.NewAuthService(repo, jwtMock, RecorderStub{}, newNoopLogger())

			tt.setupMocks(repo, jwtMock)

			token, user, err := svc.Login(context.Background(), tt.email, tt.password)
			if tt.wantErr != nil {
				assert.Error(t, err)
				assert.Contains(t, err.Error(), tt.wantErr.Error())
				assert.Empty(t, token)
				assert.Nil(t, user)
			} else {
				assert.NoError(t, err)
				assert.Equal(t, tt.wantToken, token)
				assert.NotNil(t, user)
			}

			repo.AssertExpectations(t)
			jwtMock.AssertExpectations(t)
		})
	}
}

func TestAuthService_EnsureAdmin(t *testing.T) {
	tests := []struct {
		name       string
		email      string
		password   string
		setupMocks func(r *UserRepoMock)
		wantErr    bool
	}{
		{
			name:       "empty credentials skip bootstrap",
			email:      "",
			password:   "",
			setupMocks: func(_ *UserRepoMock) {},
		},
		{
			name:     "existing admin is kept",
			email:    "admin@example.com",
			password: "secret",
			setupMocks: func(r *UserRepoMock) {
				r.On("GetUserByEmail", mock.Anything, "admin@example.com").
					Return(&models.User{ID: 1, IsAdmin: true}, nil).Once()
			},
		},
		{
			name:     "missing admin is created",
			email:    "admin@example.com",
			password: "secret",
			setupMocks: func(r *UserRepoMock) {
				r.On("GetUserByEmail", mock.Anything, "admin@example.com").
					Return(nil, errors.New("not found")).Once()
				r.On("CreateUser", mock.Anything, mock.MatchedBy(func(user models.User) bool {
					return user.Email == "admin@example.com" && user.IsAdmin && user.IsActive
				})).Return(int64(1), nil).Once()
			},
		},
		{
			name:     "concurrent creation is tolerated",
			email:    "admin@example.com",
			password: "secret",
			setupMocks: func(r *UserRepoMock) {
				r.On("GetUserByEmail", mock.Anything, "admin@example.com").
					Return(nil, errors.New("not found")).Once()
				r.On("CreateUser", mock.Anything, mock.Anything).
					Return(int64(0), repository.ErrAlreadyExists).Once()
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			repo := new(UserRepoMock)
			jwtMock := new(JwtMakerMock)
			svc := services.NewAuthService(repo, jwtMock, RecorderStub{}, newNoopLogger())

			tt.setupMocks(repo)

			err := svc.EnsureAdmin(context.Background(), tt.email, tt.password)
			if tt.wantErr {
				assert.Error(t, err)
			} else {
				assert.NoError(t, err)
			}

			repo.AssertExpectations(t)
		})
	}
}

func TestAuthService_ValidateToken(t *testing.T) {
	validClaims := &customjwt.CustomClaims{
		Role: "user",
		RegisteredClaims: jwtlib.RegisteredClaims{
			Subject:   "1",
			IssuedAt:  jwtlib.NewNumericDate(time.Now()),
			ExpiresAt: jwtlib.NewNumericDate(time.Now().Add(time.Hour)),
		},
	}
	activeUser := &models.User{ID: 1, Email: "test@example.com", IsActive: true}

	tests := []struct {
		name       string
		token      string
		setupMocks func(r *UserRepoMock, j *JwtMakerMock)
		wantUser   *models.User
		wantRole   string
		wantErr    bool
	}{
		{
			name:  "valid token",
			token: "valid-token",
			setupMocks: func(r *UserRepoMock, j *JwtMakerMock) {
				j.On("ParseToken", "valid-token").Return(validClaims, nil).Once()
				r.On("GetUser", mock.Anything, int64(1)).Return(activeUser, nil).Once()
			},
			wantUser: activeUser,
			wantRole: "user",
		},
		{
			name:  "invalid token",
			token: "invalid-token",
			setupMocks: func(_ *UserRepoMock, j *JwtMakerMock) {
				j.On("ParseToken", "invalid-token").Return(nil, errors.New("invalid token")).Once()
			},
			wantErr: true,
		},
		{
			name:  "disabled user rejected with live token",
			token: "valid-token",
			setupMocks: func(r *UserRepoMock, j *JwtMakerMock) {
				j.On("ParseToken", "valid-token").Return(validClaims, nil).Once()
				r.On("GetUser", mock.Anything, int64(1)).
					Return(&models.User{ID: 1, IsActive: false}, nil).Once()
			},
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			repo := new(UserRepoMock)
			jwtMock := new(JwtMakerMock)
			svc := services.NewAuthService(repo, jwtMock, RecorderStub{}, newNoopLogger())

			tt.setupMocks(repo, jwtMock)

			user, role, err := svc.ValidateToken(context.Background(), tt.token)
			if tt.wantErr {
				assert.Error(t, err)
				assert.Nil(t, user)
			} else {
				assert.NoError(t, err)
				assert.Equal(t, tt.wantUser, user)
				assert.Equal(t, tt.wantRole, role)
			}

			repo.AssertExpectations(t)
			jwtMock.AssertExpectations(t)
		})
	}
}
