package repository

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/cookieflix/cookieflix-backend/internal/models"
)

const userColumns = `id, email, password_hash, full_name, created_at, is_active, is_admin,
			      referral_code, referred_by, credit_balance, provider_customer_id,
			      failed_login_attempts, account_locked_until,
			      address, street_number, city, zip_code, country, birthdate`

func scanUser(row interface{ Scan(...any) error }) (*models.User, error) {
	u := &models.User{}
	var lockedUntil, birthdate sql.NullTime
	var referredBy, customerID, address, streetNumber, city, zipCode, country sql.NullString
	if err := row.Scan(&u.ID, &u.Email, &u.PasswordHash, &u.FullName, &u.CreatedAt,
		&u.IsActive, &u.IsAdmin, &u.ReferralCode, &referredBy, &u.CreditBalance,
		&customerID, &u.FailedLoginAttempts, &lockedUntil,
		&address, &streetNumber, &city, &zipCode, &country, &birthdate); err != nil {
		return nil, err
	}
	if referredBy.Valid {
		u.ReferredBy = &referredBy.String
	}
	if customerID.Valid {
		u.ProviderCustomerID = &customerID.String
	}
	if lockedUntil.Valid {
		u.AccountLockedUntil = &lockedUntil.Time
	}
	if address.Valid {
		u.Address = &address.String
	}
	if streetNumber.Valid {
		u.StreetNumber = &streetNumber.String
	}
	if city.Valid {
		u.City = &city.String
	}
	if zipCode.Valid {
		u.ZipCode = &zipCode.String
	}
	if country.Valid {
		u.Country = &country.String
	}
	if birthdate.Valid {
		u.Birthdate = &birthdate.Time
	}
	return u, nil
}

// CreateUser сохраняет нового пользователя и возвращает его ID.
func (s *Storage) CreateUser(ctx context.Context, user models.User) (int64, error) {
	const op = "storage.CreateUser"
	select {
	case <-ctx.Done():
		return 0, fmt.Errorf("%s: %w", op, ctx.Err())
	default:
	}

	var newID int64
	query := `INSERT INTO users (email, password_hash, full_name, is_active, is_admin,
			      referral_code, referred_by)
			  VALUES ($1, $2, $3, $4, $5, $6, $7)
			  RETURNING id`
	err := s.DB.QueryRowContext(ctx, query,
		user.Email, user.PasswordHash, user.FullName, user.IsActive, user.IsAdmin,
		user.ReferralCode, user.ReferredBy).Scan(&newID)
	if err != nil {
		if uniqueViolation(err) {
			return 0, fmt.Errorf("%s: %w", op, ErrAlreadyExists)
		}
		return 0, fmt.Errorf("%s: %w", op, err)
	}
	return newID, nil
}

// GetUserByEmail возвращает пользователя по электронной почте.
func (s *Storage) GetUserByEmail(ctx context.Context, email string) (*models.User, error) {
	const op = "storage.GetUserByEmail"
	select {
	case <-ctx.Done():
		return nil, fmt.Errorf("%s: %w", op, ctx.Err())
	default:
	}

	query := `SELECT ` + userColumns + ` FROM users WHERE email = $1`
	u, err := scanUser(s.DB.QueryRowContext(ctx, query, email))
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return u, nil
}

// GetUser возвращает пользователя по его ID.
func (s *Storage) GetUser(ctx context.Context, userID int64) (*models.User, error) {
	const op = "storage.GetUser"
	select {
	case <-ctx.Done():
		return nil, fmt.Errorf("%s: %w", op, ctx.Err())
	default:
	}

	query := `SELECT ` + userColumns + ` FROM users WHERE id = $1`
	u, err := scanUser(s.DB.QueryRowContext(ctx, query, userID))
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return u, nil
}

// UpdateLoginFailure записывает количество неудачных попыток входа и время блокировки.
func (s *Storage) UpdateLoginFailure(ctx context.Context, userID int64, attempts int, lockedUntil *time.Time) error {
	const op = "storage.UpdateLoginFailure"
	select {
	case <-ctx.Done():
		return fmt.Errorf("%s: %w", op, ctx.Err())
	default:
	}

	query := `UPDATE users
			  SET failed_login_attempts = $1, account_locked_until = $2
			  WHERE id = $3`
	if _, err := s.DB.ExecContext(ctx, query, attempts, lockedUntil, userID); err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	return nil
}

// ResetLoginFailures сбрасывает счётчик неудачных попыток и блокировку.
func (s *Storage) ResetLoginFailures(ctx context.Context, userID int64) error {
	const op = "storage.ResetLoginFailures"
	select {
	case <-ctx.Done():
		return fmt.Errorf("%s: %w", op, ctx.Err())
	default:
	}

	query := `UPDATE users
			  SET failed_login_attempts = 0, account_locked_until = NULL
			  WHERE id = $1`
	if _, err := s.DB.ExecContext(ctx, query, userID); err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	return nil
}

// UpdateUserProfile обновляет профильные поля пользователя.
func (s *Storage) UpdateUserProfile(ctx context.Context, u models.User) error {
	const op = "storage.UpdateUserProfile"
	select {
	case <-ctx.Done():
		return fmt.Errorf("%s: %w", op, ctx.Err())
	default:
	}

	query := `UPDATE users
			  SET full_name = $1, address = $2, street_number = $3, city = $4,
			      zip_code = $5, country = $6, birthdate = $7
			  WHERE id = $8`
	if _, err := s.DB.ExecContext(ctx, query,
		u.FullName, u.Address, u.StreetNumber, u.City,
		u.ZipCode, u.Country, u.Birthdate, u.ID); err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	return nil
}

// CountReferrals подсчитывает пользователей, зарегистрированных по реферальному коду.
func (s *Storage) CountReferrals(ctx context.Context, referralCode string) (int, error) {
	const op = "storage.CountReferrals"
	select {
	case <-ctx.Done():
		return 0, fmt.Errorf("%s: %w", op, ctx.Err())
	default:
	}

	query := `SELECT COUNT(*) FROM users WHERE referred_by = $1`
	var count int
	if err := s.DB.QueryRowContext(ctx, query, referralCode).Scan(&count); err != nil {
		return 0, fmt.Errorf("%s: %w", op, err)
	}
	return count, nil
}

// SetProviderCustomerID сохраняет идентификатор клиента у платёжного провайдера.
func (s *Storage) SetProviderCustomerID(ctx context.Context, userID int64, customerID string) error {
	const op = "storage.SetProviderCustomerID"
	select {
	case <-ctx.Done():
		return fmt.Errorf("%s: %w", op, ctx.Err())
	default:
	}

	query := `UPDATE users SET provider_customer_id = $1 WHERE id = $2`
	if _, err := s.DB.ExecContext(ctx, query, customerID, userID); err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	return nil
}
