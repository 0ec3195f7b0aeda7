// Package stats содержит административные обработчики сводной статистики.
package stats

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/middleware"
	"github.com/go-chi/render"

	"github.com/cookieflix/cookieflix-backend/internal/http/response"
	"github.com/cookieflix/cookieflix-backend/internal/lib/sl"
	"github.com/cookieflix/cookieflix-backend/internal/models"
)

type Service interface {
	UsersStats(ctx context.Context) (*models.UsersStats, error)
	SubscriptionsStats(ctx context.Context) (*models.SubscriptionsStats, error)
}

// UsersHandler отдаёт сводку по пользователям.
type UsersHandler struct {
	log     *slog.Logger
	service Service
}

func NewUsers(log *slog.Logger, service Service) *UsersHandler {
	return &UsersHandler{log: log, service: service}
}

func (h *UsersHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	const op = "handlers.admin.stats.users"

	log := h.log.With(
		slog.String("op", op),
		slog.String("request_id", middleware.GetReqID(r.Context())),
	)

	stats, err := h.service.UsersStats(r.Context())
	if err != nil {
		log.Error("failed to count users stats", sl.Err(err))
		render.Status(r, http.StatusInternalServerError)
		render.JSON(w, r, response.Error("failed to count users stats"))
		return
	}

	render.JSON(w, r, response.StatusOKWithData(stats))
}

// SubscriptionsHandler отдаёт сводку по подпискам.
type SubscriptionsHandler struct {
	log     *slog.Logger
	service Service
}

func NewSubscriptions(log *slog.Logger, service Service) *SubscriptionsHandler {
	return &SubscriptionsHandler{log: log, service: service}
}

func (h *SubscriptionsHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	const op = "handlers.admin.stats.subscriptions"

	log := h.log.With(
		slog.String("op", op),
		slog.String("request_id", middleware.GetReqID(r.Context())),
	)

	stats, err := h.service.SubscriptionsStats(r.Context())
	if err != nil {
		log.Error("failed to count subscriptions stats", sl.Err(err))
		render.Status(r, http.StatusInternalServerError)
		render.JSON(w, r, response.Error("failed to count subscriptions stats"))
		return
	}

	render.JSON(w, r, response.StatusOKWithData(stats))
}
