package repository

import (
	"context"
	"fmt"

	"github.com/cookieflix/cookieflix-backend/internal/models"
)

// CountUsersStats подсчитывает агрегированную статистику по пользователям.
func (s *Storage) CountUsersStats(ctx context.Context) (*models.UsersStats, error) {
	const op = "storage.CountUsersStats"
	select {
	case <-ctx.Done():
		return nil, fmt.Errorf("%s: %w", op, ctx.Err())
	default:
	}

	query := `SELECT
			      COUNT(*),
			      COUNT(*) FILTER (WHERE is_active),
			      COUNT(*) FILTER (WHERE NOT is_active),
			      COUNT(*) FILTER (WHERE is_admin),
			      COUNT(*) FILTER (WHERE created_at >= now() - INTERVAL '30 days')
			  FROM users`
	var stats models.UsersStats
	if err := s.DB.QueryRowContext(ctx, query).Scan(&stats.Total, &stats.Active,
		&stats.Inactive, &stats.Admins, &stats.Recent); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return &stats, nil
}

// CountSubscriptionsStats подсчитывает статистику по подпискам с разбивкой
// активных по периоду оплаты.
func (s *Storage) CountSubscriptionsStats(ctx context.Context) (*models.SubscriptionsStats, error) {
	const op = "storage.CountSubscriptionsStats"
	select {
	case <-ctx.Done():
		return nil, fmt.Errorf("%s: %w", op, ctx.Err())
	default:
	}

	stats := &models.SubscriptionsStats{
		ByPeriod: map[string]int{
			models.PeriodMonthly:    0,
			models.PeriodQuarterly:  0,
			models.PeriodSemiannual: 0,
			models.PeriodAnnual:     0,
		},
	}
	query := `SELECT COUNT(*), COUNT(*) FILTER (WHERE is_active) FROM subscriptions`
	if err := s.DB.QueryRowContext(ctx, query).Scan(&stats.Total, &stats.Active); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	query = `SELECT billing_period, COUNT(*)
			 FROM subscriptions
			 WHERE is_active = true
			 GROUP BY billing_period`
	rows, err := s.DB.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	defer func() {
		_ = rows.Close()
	}()

	for rows.Next() {
		var period string
		var count int
		if err := rows.Scan(&period, &count); err != nil {
			return nil, fmt.Errorf("%s: %w", op, err)
		}
		stats.ByPeriod[period] = count
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return stats, nil
}

// ListCategoriesAdmin возвращает категории с фильтрами по имени и активности,
// количеством дизайнов и общим числом строк до пагинации.
func (s *Storage) ListCategoriesAdmin(ctx context.Context, search *string, isActive *bool, limit, offset int) ([]*models.Category, []int, int, error) {
	const op = "storage.ListCategoriesAdmin"
	select {
	case <-ctx.Done():
		return nil, nil, 0, fmt.Errorf("%s: %w", op, ctx.Err())
	default:
	}

	var total int
	countQuery := `SELECT COUNT(*)
			  FROM categories
			  WHERE ($1::text IS NULL OR name ILIKE '%' || $1 || '%')
			  	AND ($2::boolean IS NULL OR is_active = $2)`
	if err := s.DB.QueryRowContext(ctx, countQuery, search, isActive).Scan(&total); err != nil {
		return nil, nil, 0, fmt.Errorf("%s: %w", op, err)
	}

	query := `SELECT c.id, c.name, c.slug, c.description, c.image_url, c.is_active,
			      COUNT(d.id) AS design_count
			  FROM categories c
			  LEFT JOIN designs d ON d.category_id = c.id
			  WHERE ($1::text IS NULL OR c.name ILIKE '%' || $1 || '%')
			  	AND ($2::boolean IS NULL OR c.is_active = $2)
			  GROUP BY c.id
			  ORDER BY c.id
			  LIMIT $3 OFFSET $4`
	rows, err := s.DB.QueryContext(ctx, query, search, isActive, limit, offset)
	if err != nil {
		return nil, nil, 0, fmt.Errorf("%s: %w", op, err)
	}
	defer func() {
		_ = rows.Close()
	}()

	var result []*models.Category
	var designCounts []int
	for rows.Next() {
		var item models.Category
		var designCount int
		if err := rows.Scan(&item.ID, &item.Name, &item.Slug, &item.Description,
			&item.ImageURL, &item.IsActive, &designCount); err != nil {
			return nil, nil, 0, fmt.Errorf("%s: %w", op, err)
		}
		result = append(result, &item)
		designCounts = append(designCounts, designCount)
	}
	if err := rows.Err(); err != nil {
		return nil, nil, 0, fmt.Errorf("%s: %w", op, err)
	}
	return result, designCounts, total, nil
}

// ListDesignsAdmin возвращает дизайны с фильтрами, количеством голосов
// и общим числом строк до пагинации.
func (s *Storage) ListDesignsAdmin(ctx context.Context, search *string, categoryID *int64, isActive *bool, limit, offset int) ([]*models.Design, int, error) {
	const op = "storage.ListDesignsAdmin"
	select {
	case <-ctx.Done():
		return nil, 0, fmt.Errorf("%s: %w", op, ctx.Err())
	default:
	}

	var total int
	countQuery := `SELECT COUNT(*)
			  FROM designs
			  WHERE ($1::text IS NULL OR name ILIKE '%' || $1 || '%')
			  	AND ($2::bigint IS NULL OR category_id = $2)
			  	AND ($3::boolean IS NULL OR is_active = $3)`
	if err := s.DB.QueryRowContext(ctx, countQuery, search, categoryID, isActive).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("%s: %w", op, err)
	}

	query := `SELECT d.id, d.name, d.description, d.category_id, d.image_url, d.model_url,
			      d.created_at, d.is_active, COUNT(v.id) AS votes_count
			  FROM designs d
			  LEFT JOIN votes v ON v.design_id = d.id
			  WHERE ($1::text IS NULL OR d.name ILIKE '%' || $1 || '%')
			  	AND ($2::bigint IS NULL OR d.category_id = $2)
			  	AND ($3::boolean IS NULL OR d.is_active = $3)
			  GROUP BY d.id
			  ORDER BY d.id
			  LIMIT $4 OFFSET $5`
	rows, err := s.DB.QueryContext(ctx, query, search, categoryID, isActive, limit, offset)
	if err != nil {
		return nil, 0, fmt.Errorf("%s: %w", op, err)
	}
	defer func() {
		_ = rows.Close()
	}()

	result, err := scanDesigns(rows)
	if err != nil {
		return nil, 0, fmt.Errorf("%s: %w", op, err)
	}
	return result, total, nil
}
