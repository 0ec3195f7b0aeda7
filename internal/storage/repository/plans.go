package repository

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/cookieflix/cookieflix-backend/internal/models"
)

const planColumns = `id, name, slug, description, categories_count, items_per_month,
			      monthly_price, quarterly_price, semiannual_price, annual_price,
			      is_popular, features, is_active`

func scanPlan(row interface{ Scan(...any) error }) (*models.Plan, error) {
	var item models.Plan
	var features []byte
	if err := row.Scan(&item.ID, &item.Name, &item.Slug, &item.Description,
		&item.CategoriesCount, &item.ItemsPerMonth,
		&item.MonthlyPrice, &item.QuarterlyPrice, &item.SemiannualPrice, &item.AnnualPrice,
		&item.IsPopular, &features, &item.IsActive); err != nil {
		return nil, err
	}
	if len(features) > 0 {
		if err := json.Unmarshal(features, &item.Features); err != nil {
			return nil, fmt.Errorf("decode features: %w", err)
		}
	}
	return &item, nil
}

// ListPlans возвращает активные тарифы с пагинацией.
func (s *Storage) ListPlans(ctx context.Context, limit, offset int) ([]*models.Plan, error) {
	const op = "storage.ListPlans"
	select {
	case <-ctx.Done():
		return nil, fmt.Errorf("%s: %w", op, ctx.Err())
	default:
	}

	query := `SELECT ` + planColumns + `
			  FROM subscription_plans
			  WHERE is_active = true
			  ORDER BY id
			  LIMIT $1 OFFSET $2`
	rows, err := s.DB.QueryContext(ctx, query, limit, offset)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	defer func() {
		_ = rows.Close()
	}()

	var result []*models.Plan
	for rows.Next() {
		item, err := scanPlan(rows)
		if err != nil {
			return nil, fmt.Errorf("%s: %w", op, err)
		}
		result = append(result, item)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return result, nil
}

// GetPlanBySlug возвращает активный тариф по слагу.
func (s *Storage) GetPlanBySlug(ctx context.Context, slug string) (*models.Plan, error) {
	const op = "storage.GetPlanBySlug"
	select {
	case <-ctx.Done():
		return nil, fmt.Errorf("%s: %w", op, ctx.Err())
	default:
	}

	query := `SELECT ` + planColumns + `
			  FROM subscription_plans
			  WHERE slug = $1 AND is_active = true`
	item, err := scanPlan(s.DB.QueryRowContext(ctx, query, slug))
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return item, nil
}

// GetPlan возвращает тариф по ID независимо от флага активности.
func (s *Storage) GetPlan(ctx context.Context, id int64) (*models.Plan, error) {
	const op = "storage.GetPlan"
	select {
	case <-ctx.Done():
		return nil, fmt.Errorf("%s: %w", op, ctx.Err())
	default:
	}

	query := `SELECT ` + planColumns + `
			  FROM subscription_plans
			  WHERE id = $1`
	item, err := scanPlan(s.DB.QueryRowContext(ctx, query, id))
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return item, nil
}
