// Package services содержит логику бизнес-уровня для работы с пользователями и аутентификацией.
package services

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/cookieflix/cookieflix-backend/internal/lib/jwt"
	"github.com/cookieflix/cookieflix-backend/internal/lib/password"
	"github.com/cookieflix/cookieflix-backend/internal/lib/referral"
	"github.com/cookieflix/cookieflix-backend/internal/lib/sl"
	"github.com/cookieflix/cookieflix-backend/internal/models"
	activityservice "github.com/cookieflix/cookieflix-backend/internal/services/activity"
	"github.com/cookieflix/cookieflix-backend/internal/storage/repository"
)

// Ошибки уровня сервиса, по которым обработчики выбирают HTTP-статус.
var (
	ErrEmailTaken         = errors.New("email already registered")
	ErrInvalidCredentials = errors.New("invalid credentials")
	ErrAccountLocked      = errors.New("account temporarily locked")
	ErrAccountDisabled    = errors.New("account disabled")
)

const (
	// maxFailedAttempts количество неудачных попыток входа до блокировки.
	maxFailedAttempts = 5
	// lockDuration длительность временной блокировки аккаунта.
	lockDuration = 15 * time.Minute
)

// UserRepository описывает контракт для работы с пользователями в базе данных.
type UserRepository interface {
	// CreateUser сохраняет нового пользователя и возвращает его ID.
	CreateUser(ctx context.Context, user models.User) (int64, error)
	// GetUserByEmail возвращает пользователя по email или ошибку, если не найден.
	GetUserByEmail(ctx context.Context, email string) (*models.User, error)
	// GetUser возвращает пользователя по ID.
	GetUser(ctx context.Context, id int64) (*models.User, error)
	// UpdateLoginFailure сохраняет счётчик неудачных попыток и время блокировки.
	UpdateLoginFailure(ctx context.Context, userID int64, attempts int, lockedUntil *time.Time) error
	// ResetLoginFailures сбрасывает счётчик неудачных попыток после успешного входа.
	ResetLoginFailures(ctx context.Context, userID int64) error
}

// ActivityRecorder фиксирует действия пользователя в журнале активности.
type ActivityRecorder interface {
	Record(ctx context.Context, userID *int64, action string, payload map[string]any)
}

// AuthService отвечает за регистрацию, авторизацию и валидацию JWT.
type AuthService struct {
	users    UserRepository
	jwtMaker jwt.Maker
	recorder ActivityRecorder
	log      *slog.Logger
}

// NewAuthService создает новый экземпляр AuthService.
func NewAuthService(users UserRepository, jwtMaker jwt.Maker, recorder ActivityRecorder, log *slog.Logger) *AuthService {
	return &AuthService{
		users:    users,
		jwtMaker: jwtMaker,
		recorder: recorder,
		log:      log,
	}
}

// Register создает нового пользователя с хэшированием пароля и реферальным кодом.
func (s *AuthService) Register(ctx context.Context, email, rawPassword, fullName string, referredBy *string) (*models.User, error) {
	hashed, err := password.GetHash(rawPassword)
	if err != nil {
		return nil, err
	}
	user := models.User{
		Email:        email,
		PasswordHash: hashed,
		FullName:     fullName,
		IsActive:     true,
		ReferralCode: referral.NewCode(),
		ReferredBy:   referredBy,
	}
	id, err := s.users.CreateUser(ctx, user)
	if errors.Is(err, repository.ErrAlreadyExists) {
		return nil, ErrEmailTaken
	}
	if err != nil {
		return nil, err
	}
	s.recorder.Record(ctx, &id, activityservice.ActionUserRegistered, map[string]any{"email": email})
	return s.users.GetUser(ctx, id)
}

// EnsureAdmin создаёт администратора с указанными учётными данными, если
// пользователь с таким email ещё не существует. Вызывается при старте.
func (s *AuthService) EnsureAdmin(ctx context.Context, email, rawPassword string) error {
	if email == "" || rawPassword == "" {
		return nil
	}
	if _, err := s.users.GetUserByEmail(ctx, email); err == nil {
		return nil
	}
	hashed, err := password.GetHash(rawPassword)
	if err != nil {
		return err
	}
	user := models.User{
		Email:        email,
		PasswordHash: hashed,
		FullName:     "Administrator",
		IsActive:     true,
		IsAdmin:      true,
		ReferralCode: referral.NewCode(),
	}
	if _, err := s.users.CreateUser(ctx, user); err != nil && !errors.Is(err, repository.ErrAlreadyExists) {
		return err
	}
	s.log.Info("admin user ensured")
	return nil
}

// Login проверяет пароль пользователя и генерирует JWT. Неудачные попытки
// считаются; после maxFailedAttempts подряд аккаунт блокируется на lockDuration.
func (s *AuthService) Login(ctx context.Context, email, rawPassword string) (string, *models.User, error) {
	user, err := s.users.GetUserByEmail(ctx, email)
	if err != nil {
		// существование аккаунта не раскрывается
		return "", nil, ErrInvalidCredentials
	}
	if !user.IsActive {
		return "", nil, ErrAccountDisabled
	}
	now := time.Now().UTC()
	if user.Locked(now) {
		return "", nil, ErrAccountLocked
	}

	if err := password.CompareHash(user.PasswordHash, rawPassword); err != nil {
		attempts := user.FailedLoginAttempts + 1
		var lockedUntil *time.Time
		if attempts >= maxFailedAttempts {
			t := now.Add(lockDuration)
			lockedUntil = &t
			s.log.Warn("account locked after repeated login failures",
				slog.Int64("user_id", user.ID))
		}
		if err := s.users.UpdateLoginFailure(ctx, user.ID, attempts, lockedUntil); err != nil {
			s.log.Error("failed to record login failure", sl.Err(err))
		}
		if lockedUntil != nil {
			s.recorder.Record(ctx, &user.ID, activityservice.ActionAccountLocked,
				map[string]any{"attempts": attempts})
		}
		// сама блокирующая попытка — всё ещё неверный пароль
		return "", nil, ErrInvalidCredentials
	}

	if user.FailedLoginAttempts > 0 || user.AccountLockedUntil != nil {
		if err := s.users.ResetLoginFailures(ctx, user.ID); err != nil {
			s.log.Error("failed to reset login failures", sl.Err(err))
		}
	}

	role := jwt.RoleUser
	if user.IsAdmin {
		role = jwt.RoleAdmin
	}
	token, err := s.jwtMaker.GenerateToken(user.ID, role)
	if err != nil {
		return "", nil, err
	}
	s.recorder.Record(ctx, &user.ID, activityservice.ActionUserLogin, nil)
	return token, user, nil
}

// ValidateToken проверяет JWT и возвращает пользователя из базы.
// Отключённый пользователь считается невалидным даже с живым токеном.
func (s *AuthService) ValidateToken(ctx context.Context, token string) (*models.User, string, error) {
	claims, err := s.jwtMaker.ParseToken(token)
	if err != nil {
		return nil, "", err
	}
	userID, err := claims.UserID()
	if err != nil {
		return nil, "", err
	}
	user, err := s.users.GetUser(ctx, userID)
	if err != nil {
		return nil, "", err
	}
	if !user.IsActive {
		return nil, "", ErrAccountDisabled
	}
	return user, claims.Role, nil
}
