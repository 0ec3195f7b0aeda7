package repository

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/cookieflix/cookieflix-backend/internal/models"
)

const subscriptionColumns = `id, user_id, plan_id, start_date, end_date, is_active,
			      billing_period, next_billing_date, provider_customer_id, provider_subscription_id`

func scanSubscription(row interface{ Scan(...any) error }) (*models.Subscription, error) {
	var item models.Subscription
	var customerID, subscriptionID sql.NullString
	if err := row.Scan(&item.ID, &item.UserID, &item.PlanID, &item.StartDate, &item.EndDate,
		&item.IsActive, &item.BillingPeriod, &item.NextBillingDate,
		&customerID, &subscriptionID); err != nil {
		return nil, err
	}
	if customerID.Valid {
		item.ProviderCustomerID = &customerID.String
	}
	if subscriptionID.Valid {
		item.ProviderSubscriptionID = &subscriptionID.String
	}
	return &item, nil
}

// CreateSubscription вставляет новую подписку и возвращает её ID.
// Частичный уникальный индекс на (user_id) WHERE is_active гарантирует
// не более одной активной подписки на пользователя.
func (s *Storage) CreateSubscription(ctx context.Context, sub models.Subscription) (int64, error) {
	const op = "storage.CreateSubscription"
	select {
	case <-ctx.Done():
		return 0, fmt.Errorf("%s: %w", op, ctx.Err())
	default:
	}

	query := `INSERT INTO subscriptions (user_id, plan_id, start_date, end_date, is_active,
			      billing_period, next_billing_date, provider_customer_id, provider_subscription_id)
			  VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
			  RETURNING id`
	var newID int64
	err := s.DB.QueryRowContext(ctx, query,
		sub.UserID, sub.PlanID, sub.StartDate, sub.EndDate, sub.IsActive,
		sub.BillingPeriod, sub.NextBillingDate, sub.ProviderCustomerID,
		sub.ProviderSubscriptionID).Scan(&newID)
	if err != nil {
		if uniqueViolation(err) {
			return 0, fmt.Errorf("%s: %w", op, ErrAlreadyExists)
		}
		return 0, fmt.Errorf("%s: %w", op, err)
	}
	return newID, nil
}

// GetActiveSubscriptionByUserID возвращает активную подписку пользователя.
func (s *Storage) GetActiveSubscriptionByUserID(ctx context.Context, userID int64) (*models.Subscription, error) {
	const op = "storage.GetActiveSubscriptionByUserID"
	select {
	case <-ctx.Done():
		return nil, fmt.Errorf("%s: %w", op, ctx.Err())
	default:
	}

	query := `SELECT ` + subscriptionColumns + `
			  FROM subscriptions
			  WHERE user_id = $1 AND is_active = true`
	item, err := scanSubscription(s.DB.QueryRowContext(ctx, query, userID))
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return item, nil
}

// GetSubscriptionByProviderID возвращает подписку по идентификатору у провайдера.
func (s *Storage) GetSubscriptionByProviderID(ctx context.Context, providerSubscriptionID string) (*models.Subscription, error) {
	const op = "storage.GetSubscriptionByProviderID"
	select {
	case <-ctx.Done():
		return nil, fmt.Errorf("%s: %w", op, ctx.Err())
	default:
	}

	query := `SELECT ` + subscriptionColumns + `
			  FROM subscriptions
			  WHERE provider_subscription_id = $1`
	item, err := scanSubscription(s.DB.QueryRowContext(ctx, query, providerSubscriptionID))
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return item, nil
}

// UpdateSubscriptionPeriod обновляет конец оплаченного периода и флаг активности
// по идентификатору подписки у провайдера. Возвращает число изменённых строк.
func (s *Storage) UpdateSubscriptionPeriod(ctx context.Context, providerSubscriptionID string, periodEnd time.Time, isActive bool) (int, error) {
	const op = "storage.UpdateSubscriptionPeriod"
	select {
	case <-ctx.Done():
		return 0, fmt.Errorf("%s: %w", op, ctx.Err())
	default:
	}

	query := `UPDATE subscriptions
			  SET end_date = $1, next_billing_date = $1, is_active = $2
			  WHERE provider_subscription_id = $3`
	result, err := s.DB.ExecContext(ctx, query, periodEnd, isActive, providerSubscriptionID)
	if err != nil {
		return 0, fmt.Errorf("%s: %w", op, err)
	}
	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("%s: %w", op, err)
	}
	return int(rowsAffected), nil
}

// DeactivateSubscription снимает флаг активности, не меняя даты окончания.
func (s *Storage) DeactivateSubscription(ctx context.Context, providerSubscriptionID string) (int, error) {
	const op = "storage.DeactivateSubscription"
	select {
	case <-ctx.Done():
		return 0, fmt.Errorf("%s: %w", op, ctx.Err())
	default:
	}

	query := `UPDATE subscriptions
			  SET is_active = false
			  WHERE provider_subscription_id = $1`
	result, err := s.DB.ExecContext(ctx, query, providerSubscriptionID)
	if err != nil {
		return 0, fmt.Errorf("%s: %w", op, err)
	}
	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("%s: %w", op, err)
	}
	return int(rowsAffected), nil
}
