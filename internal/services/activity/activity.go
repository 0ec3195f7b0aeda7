// Package services содержит журнал активности: append-only записи о действиях
// пользователей. Ошибки записи журнала не прерывают основную операцию.
package services

import (
	"context"
	"log/slog"

	"github.com/cookieflix/cookieflix-backend/internal/lib/sl"
	"github.com/cookieflix/cookieflix-backend/internal/models"
)

// Действия, фиксируемые в журнале.
const (
	ActionUserRegistered          = "user.registered"
	ActionUserLogin               = "user.login"
	ActionAccountLocked           = "account.locked"
	ActionVoteCast                = "vote.cast"
	ActionSubscriptionActivated   = "subscription.activated"
	ActionSubscriptionRenewed     = "subscription.renewed"
	ActionSubscriptionDeactivated = "subscription.deactivated"
	ActionPaymentFailed           = "payment.failed"
)

// ActivityRepository описывает вставку записи журнала в хранилище.
type ActivityRepository interface {
	// CreateActivity сохраняет запись журнала активности.
	CreateActivity(ctx context.Context, activity models.Activity) error
}

// Recorder пишет записи журнала активности.
type Recorder struct {
	repo ActivityRepository
	log  *slog.Logger
}

// NewRecorder создает новый экземпляр Recorder.
func NewRecorder(repo ActivityRepository, log *slog.Logger) *Recorder {
	return &Recorder{repo: repo, log: log}
}

// Record сохраняет запись журнала. Ошибка записи логируется и не возвращается:
// журнал вспомогательный и не должен ронять основную операцию.
func (r *Recorder) Record(ctx context.Context, userID *int64, activityType string, payload map[string]any) {
	activity := models.Activity{
		UserID:  userID,
		Type:    activityType,
		Payload: payload,
	}
	if err := r.repo.CreateActivity(ctx, activity); err != nil {
		r.log.Error("failed to record activity", slog.String("type", activityType), sl.Err(err))
	}
}
