package repository

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/cookieflix/cookieflix-backend/internal/models"
)

// CreateActivity вставляет запись журнала активности.
func (s *Storage) CreateActivity(ctx context.Context, activity models.Activity) error {
	const op = "storage.CreateActivity"
	select {
	case <-ctx.Done():
		return fmt.Errorf("%s: %w", op, ctx.Err())
	default:
	}

	var payload []byte
	if activity.Payload != nil {
		var err error
		payload, err = json.Marshal(activity.Payload)
		if err != nil {
			return fmt.Errorf("%s: %w", op, err)
		}
	}

	query := `INSERT INTO activities (user_id, type, description, ip_address, user_agent, payload)
			  VALUES ($1, $2, $3, $4, $5, $6)`
	if _, err := s.DB.ExecContext(ctx, query,
		activity.UserID, activity.Type, activity.Description,
		activity.IPAddress, activity.UserAgent, payload); err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	return nil
}
