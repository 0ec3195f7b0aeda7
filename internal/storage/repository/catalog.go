package repository

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/cookieflix/cookieflix-backend/internal/models"
)

// ListCategories возвращает активные категории с пагинацией.
func (s *Storage) ListCategories(ctx context.Context, limit, offset int) ([]*models.Category, error) {
	const op = "storage.ListCategories"
	select {
	case <-ctx.Done():
		return nil, fmt.Errorf("%s: %w", op, ctx.Err())
	default:
	}

	query := `SELECT id, name, slug, description, image_url, is_active
			  FROM categories
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

	var result []*models.Category
	for rows.Next() {
		var item models.Category
		if err := rows.Scan(&item.ID, &item.Name, &item.Slug, &item.Description,
			&item.ImageURL, &item.IsActive); err != nil {
			return nil, fmt.Errorf("%s: %w", op, err)
		}
		result = append(result, &item)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return result, nil
}

// GetCategoryBySlug возвращает активную категорию по слагу.
func (s *Storage) GetCategoryBySlug(ctx context.Context, slug string) (*models.Category, error) {
	const op = "storage.GetCategoryBySlug"
	select {
	case <-ctx.Done():
		return nil, fmt.Errorf("%s: %w", op, ctx.Err())
	default:
	}

	query := `SELECT id, name, slug, description, image_url, is_active
			  FROM categories
			  WHERE slug = $1 AND is_active = true`
	var item models.Category
	if err := s.DB.QueryRowContext(ctx, query, slug).Scan(&item.ID, &item.Name, &item.Slug,
		&item.Description, &item.ImageURL, &item.IsActive); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return &item, nil
}

// GetCategoriesByIDs возвращает активные категории по списку идентификаторов.
func (s *Storage) GetCategoriesByIDs(ctx context.Context, ids []int64) ([]*models.Category, error) {
	const op = "storage.GetCategoriesByIDs"
	select {
	case <-ctx.Done():
		return nil, fmt.Errorf("%s: %w", op, ctx.Err())
	default:
	}

	query := `SELECT id, name, slug, description, image_url, is_active
			  FROM categories
			  WHERE id = ANY($1) AND is_active = true`
	rows, err := s.DB.QueryContext(ctx, query, ids)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	defer func() {
		_ = rows.Close()
	}()

	var result []*models.Category
	for rows.Next() {
		var item models.Category
		if err := rows.Scan(&item.ID, &item.Name, &item.Slug, &item.Description,
			&item.ImageURL, &item.IsActive); err != nil {
			return nil, fmt.Errorf("%s: %w", op, err)
		}
		result = append(result, &item)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return result, nil
}

// ListDesigns возвращает активные дизайны активных категорий с количеством голосов,
// опционально фильтруя по категории.
func (s *Storage) ListDesigns(ctx context.Context, categoryID *int64, limit, offset int) ([]*models.Design, error) {
	const op = "storage.ListDesigns"
	select {
	case <-ctx.Done():
		return nil, fmt.Errorf("%s: %w", op, ctx.Err())
	default:
	}

	query := `SELECT d.id, d.name, d.description, d.category_id, d.image_url, d.model_url,
			      d.created_at, d.is_active, COUNT(v.id) AS votes_count
			  FROM designs d
			  JOIN categories c ON c.id = d.category_id
			  LEFT JOIN votes v ON v.design_id = d.id
			  WHERE d.is_active = true
			  	AND c.is_active = true
			  	AND ($1::bigint IS NULL OR d.category_id = $1)
			  GROUP BY d.id
			  ORDER BY d.id
			  LIMIT $2 OFFSET $3`
	rows, err := s.DB.QueryContext(ctx, query, categoryID, limit, offset)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	defer func() {
		_ = rows.Close()
	}()

	result, err := scanDesigns(rows)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return result, nil
}

// GetDesign возвращает дизайн по ID вместе с количеством голосов.
func (s *Storage) GetDesign(ctx context.Context, id int64) (*models.Design, error) {
	const op = "storage.GetDesign"
	select {
	case <-ctx.Done():
		return nil, fmt.Errorf("%s: %w", op, ctx.Err())
	default:
	}

	query := `SELECT d.id, d.name, d.description, d.category_id, d.image_url, d.model_url,
			      d.created_at, d.is_active, COUNT(v.id) AS votes_count
			  FROM designs d
			  LEFT JOIN votes v ON v.design_id = d.id
			  WHERE d.id = $1
			  GROUP BY d.id`
	row := s.DB.QueryRowContext(ctx, query, id)

	var item models.Design
	var modelURL sql.NullString
	if err := row.Scan(&item.ID, &item.Name, &item.Description, &item.CategoryID,
		&item.ImageURL, &modelURL, &item.CreatedAt, &item.IsActive, &item.VotesCount); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	if modelURL.Valid {
		item.ModelURL = &modelURL.String
	}
	return &item, nil
}

// ListVotedDesigns возвращает активные дизайны, за которые голосовал пользователь.
func (s *Storage) ListVotedDesigns(ctx context.Context, userID int64, categoryID *int64) ([]*models.Design, error) {
	const op = "storage.ListVotedDesigns"
	select {
	case <-ctx.Done():
		return nil, fmt.Errorf("%s: %w", op, ctx.Err())
	default:
	}

	query := `SELECT d.id, d.name, d.description, d.category_id, d.image_url, d.model_url,
			      d.created_at, d.is_active, COUNT(av.id) AS votes_count
			  FROM designs d
			  JOIN votes uv ON uv.design_id = d.id AND uv.user_id = $1
			  LEFT JOIN votes av ON av.design_id = d.id
			  WHERE d.is_active = true
			  	AND ($2::bigint IS NULL OR d.category_id = $2)
			  GROUP BY d.id
			  ORDER BY d.id`
	rows, err := s.DB.QueryContext(ctx, query, userID, categoryID)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	defer func() {
		_ = rows.Close()
	}()

	result, err := scanDesigns(rows)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return result, nil
}

// ReplacePreferredCategories атомарно заменяет набор предпочитаемых категорий пользователя.
func (s *Storage) ReplacePreferredCategories(ctx context.Context, userID int64, categoryIDs []int64) error {
	const op = "storage.ReplacePreferredCategories"
	select {
	case <-ctx.Done():
		return fmt.Errorf("%s: %w", op, ctx.Err())
	default:
	}

	tx, err := s.DB.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	defer func() {
		_ = tx.Rollback()
	}()

	if _, err := tx.ExecContext(ctx,
		`DELETE FROM user_category_preference WHERE user_id = $1`, userID); err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	for _, categoryID := range categoryIDs {
		if _, err := tx.ExecContext(ctx,
			`INSERT INTO user_category_preference (user_id, category_id) VALUES ($1, $2)`,
			userID, categoryID); err != nil {
			return fmt.Errorf("%s: %w", op, err)
		}
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	return nil
}

func scanDesigns(rows *sql.Rows) ([]*models.Design, error) {
	var result []*models.Design
	for rows.Next() {
		var item models.Design
		var modelURL sql.NullString
		if err := rows.Scan(&item.ID, &item.Name, &item.Description, &item.CategoryID,
			&item.ImageURL, &modelURL, &item.CreatedAt, &item.IsActive, &item.VotesCount); err != nil {
			return nil, err
		}
		if modelURL.Valid {
			item.ModelURL = &modelURL.String
		}
		result = append(result, &item)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return result, nil
}
