package services

import (
	"context"
	"encoding/json"
	"log/slog"
	"time"

	"github.com/cookieflix/cookieflix-backend/internal/lib/sl"
	"github.com/cookieflix/cookieflix-backend/internal/models"
	"github.com/cookieflix/cookieflix-backend/internal/paymentprovider"
	activityservice "github.com/cookieflix/cookieflix-backend/internal/services/activity"
)

// Типы событий биллинга, которые присылает провайдер.
const (
	EventCheckoutCompleted   = "checkout.session.completed"
	EventSubscriptionUpdated = "customer.subscription.updated"
	EventSubscriptionDeleted = "customer.subscription.deleted"
	EventPaymentFailed       = "invoice.payment_failed"
)

// providerSubscription объект события customer.subscription.*.
type providerSubscription struct {
	ID               string `json:"id"`
	Status           string `json:"status"`
	CurrentPeriodEnd int64  `json:"current_period_end"`
}

// providerInvoice объект события invoice.payment_failed.
type providerInvoice struct {
	Customer     string `json:"customer"`
	Subscription string `json:"subscription"`
	AttemptCount int    `json:"attempt_count"`
}

// HandleEvent обрабатывает событие вебхука биллинга. Неизвестные типы,
// отсутствующие подписки и неполные метаданные логируются и подтверждаются:
// провайдер перепосылает событие только при ошибке, а перепосылка таких
// событий ничего не исправит. Ошибка возвращается только при сбое хранилища.
func (s *SubscriptionService) HandleEvent(ctx context.Context, eventType string, object json.RawMessage) error {
	log := s.log.With(slog.String("event_type", eventType))

	switch eventType {
	case EventCheckoutCompleted:
		return s.handleCheckoutCompleted(ctx, log, object)
	case EventSubscriptionUpdated:
		return s.handleSubscriptionUpdated(ctx, log, object)
	case EventSubscriptionDeleted:
		return s.handleSubscriptionDeleted(ctx, log, object)
	case EventPaymentFailed:
		return s.handlePaymentFailed(ctx, log, object)
	default:
		log.Info("ignoring unknown webhook event")
		return nil
	}
}

func (s *SubscriptionService) handleCheckoutCompleted(ctx context.Context, log *slog.Logger, object json.RawMessage) error {
	var session paymentprovider.CheckoutSession
	if err := json.Unmarshal(object, &session); err != nil {
		log.Warn("malformed checkout session object", sl.Err(err))
		return nil
	}
	if session.PaymentStatus != paymentprovider.PaymentStatusPaid {
		log.Info("checkout session not paid yet", slog.String("session_id", session.ID))
		return nil
	}
	if !validSessionMetadata(session.Metadata) {
		log.Warn("checkout session metadata incomplete", slog.String("session_id", session.ID))
		return nil
	}
	_, err := s.activateFromSession(ctx, &session)
	return err
}

func (s *SubscriptionService) handleSubscriptionUpdated(ctx context.Context, log *slog.Logger, object json.RawMessage) error {
	var sub providerSubscription
	if err := json.Unmarshal(object, &sub); err != nil || sub.ID == "" {
		log.Warn("malformed subscription object", sl.Err(err))
		return nil
	}

	active := sub.Status == "active"
	periodEnd := time.Unix(sub.CurrentPeriodEnd, 0).UTC()
	existing, err := s.repo.GetSubscriptionByProviderID(ctx, sub.ID)
	if err != nil {
		log.Warn("subscription not found for provider id", slog.String("provider_id", sub.ID))
		return nil
	}
	if _, err := s.repo.UpdateSubscriptionPeriod(ctx, sub.ID, periodEnd, active); err != nil {
		return err
	}

	if active {
		s.recorder.Record(ctx, &existing.UserID, activityservice.ActionSubscriptionRenewed,
			map[string]any{"subscription_id": existing.ID, "period_end": periodEnd})
		s.notifyUser(ctx, existing.UserID, models.NotificationSubscriptionRenewed,
			map[string]any{"period_end": periodEnd.Format("2006-01-02")})
	} else {
		s.recorder.Record(ctx, &existing.UserID, activityservice.ActionSubscriptionDeactivated,
			map[string]any{"subscription_id": existing.ID, "status": sub.Status})
		s.notifyUser(ctx, existing.UserID, models.NotificationSubscriptionEnded, nil)
	}
	log.Info("subscription period updated",
		slog.String("provider_id", sub.ID), slog.Bool("active", active))
	return nil
}

func (s *SubscriptionService) handleSubscriptionDeleted(ctx context.Context, log *slog.Logger, object json.RawMessage) error {
	var sub providerSubscription
	if err := json.Unmarshal(object, &sub); err != nil || sub.ID == "" {
		log.Warn("malformed subscription object", sl.Err(err))
		return nil
	}

	existing, err := s.repo.GetSubscriptionByProviderID(ctx, sub.ID)
	if err != nil {
		log.Warn("subscription not found for provider id", slog.String("provider_id", sub.ID))
		return nil
	}
	count, err := s.repo.DeactivateSubscription(ctx, sub.ID)
	if err != nil {
		return err
	}
	if count > 0 {
		s.recorder.Record(ctx, &existing.UserID, activityservice.ActionSubscriptionDeactivated,
			map[string]any{"subscription_id": existing.ID})
		s.notifyUser(ctx, existing.UserID, models.NotificationSubscriptionEnded, nil)
	}
	log.Info("subscription deactivated", slog.String("provider_id", sub.ID))
	return nil
}

func (s *SubscriptionService) handlePaymentFailed(ctx context.Context, log *slog.Logger, object json.RawMessage) error {
	var invoice providerInvoice
	if err := json.Unmarshal(object, &invoice); err != nil || invoice.Subscription == "" {
		log.Warn("malformed invoice object", sl.Err(err))
		return nil
	}

	existing, err := s.repo.GetSubscriptionByProviderID(ctx, invoice.Subscription)
	if err != nil {
		log.Warn("subscription not found for provider id",
			slog.String("provider_id", invoice.Subscription))
		return nil
	}
	s.recorder.Record(ctx, &existing.UserID, activityservice.ActionPaymentFailed,
		map[string]any{"subscription_id": existing.ID, "attempt_count": invoice.AttemptCount})
	s.notifyUser(ctx, existing.UserID, models.NotificationPaymentFailed,
		map[string]any{"attempt_count": invoice.AttemptCount})
	log.Warn("payment failed for subscription",
		slog.String("provider_id", invoice.Subscription),
		slog.Int("attempt_count", invoice.AttemptCount))
	return nil
}

// notifyUser публикует уведомление биллинга для пользователя по его ID.
func (s *SubscriptionService) notifyUser(ctx context.Context, userID int64, notificationType string, payload map[string]any) {
	user, err := s.repo.GetUser(ctx, userID)
	if err != nil {
		s.log.Error("failed to load user for notification",
			slog.Int64("user_id", userID), sl.Err(err))
		return
	}
	s.publishBilling(models.BillingNotification{
		Type:     notificationType,
		Email:    user.Email,
		FullName: user.FullName,
		Payload:  payload,
	})
}

func validSessionMetadata(metadata map[string]string) bool {
	return metadata["user_id"] != "" && metadata["plan_id"] != "" &&
		models.ValidBillingPeriod(metadata["billing_period"])
}
