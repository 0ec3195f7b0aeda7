// Package health содержит обработчики проверки состояния сервиса:
// открытый (жив ли процесс) и административный (доступность зависимостей).
package health

import (
	"context"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/render"

	"github.com/cookieflix/cookieflix-backend/internal/http/response"
	"github.com/cookieflix/cookieflix-backend/internal/lib/sl"
)

// Pinger проверяет доступность зависимости.
type Pinger interface {
	Ping(ctx context.Context) error
}

type Handler struct {
	log   *slog.Logger
	db    Pinger
	cache Pinger
}

func New(log *slog.Logger, db, cache Pinger) *Handler {
	return &Handler{log: log, db: db, cache: cache}
}

func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	const op = "handlers.admin.health"
	log := h.log.With(slog.String("op", op))

	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()

	checks := map[string]string{
		"database": "ok",
		"redis":    "ok",
	}
	healthy := true

	if err := h.db.Ping(ctx); err != nil {
		log.Error("database check failed", sl.Err(err))
		checks["database"] = err.Error()
		healthy = false
	}
	if err := h.cache.Ping(ctx); err != nil {
		log.Error("redis check failed", sl.Err(err))
		checks["redis"] = err.Error()
		healthy = false
	}

	if !healthy {
		render.Status(r, http.StatusServiceUnavailable)
	}
	render.JSON(w, r, response.StatusOKWithData(map[string]any{
		"healthy": healthy,
		"checks":  checks,
	}))
}

// PublicHandler отвечает без аутентификации и без проверки зависимостей.
type PublicHandler struct{}

func NewPublic() *PublicHandler {
	return &PublicHandler{}
}

func (h *PublicHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	render.JSON(w, r, response.StatusOKWithData(map[string]any{
		"status": "ok",
	}))
}
