package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/cookieflix/cookieflix-backend/internal/models"
)

// HasVote сообщает, голосовал ли пользователь за дизайн.
func (s *Storage) HasVote(ctx context.Context, userID, designID int64) (bool, error) {
	const op = "storage.HasVote"
	select {
	case <-ctx.Done():
		return false, fmt.Errorf("%s: %w", op, ctx.Err())
	default:
	}

	query := `SELECT EXISTS (SELECT 1 FROM votes WHERE user_id = $1 AND design_id = $2)`
	var exists bool
	if err := s.DB.QueryRowContext(ctx, query, userID, designID).Scan(&exists); err != nil {
		return false, fmt.Errorf("%s: %w", op, err)
	}
	return exists, nil
}

// CountMonthlyCategoryVotes возвращает число голосов пользователя в категории
// за окно [monthStart, nextMonthStart).
func (s *Storage) CountMonthlyCategoryVotes(ctx context.Context, userID, categoryID int64, monthStart, nextMonthStart time.Time) (int, error) {
	const op = "storage.CountMonthlyCategoryVotes"
	select {
	case <-ctx.Done():
		return 0, fmt.Errorf("%s: %w", op, ctx.Err())
	default:
	}

	query := `SELECT COUNT(v.id)
			  FROM votes v
			  JOIN designs d ON d.id = v.design_id
			  WHERE v.user_id = $1
			  	AND d.category_id = $2
			  	AND v.created_at >= $3
			  	AND v.created_at < $4`
	var count int
	if err := s.DB.QueryRowContext(ctx, query,
		userID, categoryID, monthStart, nextMonthStart).Scan(&count); err != nil {
		return 0, fmt.Errorf("%s: %w", op, err)
	}
	return count, nil
}

// CreateVote вставляет голос, только если месячная квота по категории ещё не
// исчерпана. Условие проверяется тем же оператором, что и вставка, поэтому
// конкурентные запросы не могут превысить квоту. Возвращает (id, true) при
// успехе и (0, false), когда квота исчерпана.
func (s *Storage) CreateVote(ctx context.Context, vote models.Vote, categoryID int64, quota int, monthStart, nextMonthStart time.Time) (int64, bool, error) {
	const op = "storage.CreateVote"
	select {
	case <-ctx.Done():
		return 0, false, fmt.Errorf("%s: %w", op, ctx.Err())
	default:
	}

	query := `INSERT INTO votes (user_id, design_id)
			  SELECT $1, $2
			  WHERE (SELECT COUNT(v.id)
			         FROM votes v
			         JOIN designs d ON d.id = v.design_id
			         WHERE v.user_id = $1
			           AND d.category_id = $3
			           AND v.created_at >= $4
			           AND v.created_at < $5) < $6
			  RETURNING id`
	var newID int64
	err := s.DB.QueryRowContext(ctx, query,
		vote.UserID, vote.DesignID, categoryID, monthStart, nextMonthStart, quota).Scan(&newID)
	if err != nil {
		if uniqueViolation(err) {
			return 0, false, fmt.Errorf("%s: %w", op, ErrAlreadyExists)
		}
		if errors.Is(err, sql.ErrNoRows) {
			return 0, false, nil
		}
		return 0, false, fmt.Errorf("%s: %w", op, err)
	}
	return newID, true, nil
}
