// Package services содержит бизнес-логику работы с профилем пользователя
// и реферальной программой.
package services

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/cookieflix/cookieflix-backend/internal/models"
)

// ErrIncompleteAddress возвращается, когда адрес доставки заполнен частично.
var ErrIncompleteAddress = errors.New("shipping address must be complete")

// UserRepository описывает методы хранилища, нужные сервису профиля.
type UserRepository interface {
	// GetUser возвращает пользователя по ID.
	GetUser(ctx context.Context, id int64) (*models.User, error)
	// UpdateUserProfile обновляет профильные поля пользователя.
	UpdateUserProfile(ctx context.Context, u models.User) error
	// CountReferrals подсчитывает пользователей, зарегистрированных по коду.
	CountReferrals(ctx context.Context, referralCode string) (int, error)
}

// ReferralInfo агрегирует данные реферальной программы пользователя.
type ReferralInfo struct {
	ReferralCode  string  `json:"referral_code"`
	ReferredCount int     `json:"referred_count"`
	CreditBalance float64 `json:"credit_balance"`
}

// UserService реализует операции над профилем пользователя.
type UserService struct {
	users UserRepository
	log   *slog.Logger
}

// NewUserService создает новый экземпляр UserService.
func NewUserService(users UserRepository, log *slog.Logger) *UserService {
	return &UserService{users: users, log: log}
}

// UpdateProfile применяет частичное обновление профиля. Адресные поля
// обновляются по принципу "всё или ничего": если тронуто хотя бы одно,
// итоговый адрес должен быть полным.
func (s *UserService) UpdateProfile(ctx context.Context, userID int64, upd models.UserUpdate) (*models.User, error) {
	user, err := s.users.GetUser(ctx, userID)
	if err != nil {
		return nil, err
	}

	if upd.FullName != nil {
		user.FullName = *upd.FullName
	}
	addressTouched := false
	for _, p := range []struct {
		src *string
		dst **string
	}{
		{upd.Address, &user.Address},
		{upd.StreetNumber, &user.StreetNumber},
		{upd.City, &user.City},
		{upd.ZipCode, &user.ZipCode},
		{upd.Country, &user.Country},
	} {
		if p.src != nil {
			addressTouched = true
			if *p.src == "" {
				*p.dst = nil
			} else {
				v := *p.src
				*p.dst = &v
			}
		}
	}
	if addressTouched && !completeAddress(user) {
		return nil, ErrIncompleteAddress
	}
	if upd.Birthdate != nil {
		bd, err := time.Parse("2006-01-02", *upd.Birthdate)
		if err != nil {
			return nil, err
		}
		user.Birthdate = &bd
	}

	if err := s.users.UpdateUserProfile(ctx, *user); err != nil {
		return nil, err
	}
	s.log.Info("user profile updated", slog.Int64("user_id", userID))
	return user, nil
}

// Referral возвращает сводку реферальной программы пользователя.
func (s *UserService) Referral(ctx context.Context, userID int64) (*ReferralInfo, error) {
	user, err := s.users.GetUser(ctx, userID)
	if err != nil {
		return nil, err
	}
	count, err := s.users.CountReferrals(ctx, user.ReferralCode)
	if err != nil {
		return nil, err
	}
	return &ReferralInfo{
		ReferralCode:  user.ReferralCode,
		ReferredCount: count,
		CreditBalance: user.CreditBalance,
	}, nil
}

func completeAddress(u *models.User) bool {
	return u.Address != nil && u.StreetNumber != nil && u.City != nil &&
		u.ZipCode != nil && u.Country != nil
}
