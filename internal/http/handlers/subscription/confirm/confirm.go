package confirm

import (
	"context"
	"errors"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/middleware"
	"github.com/go-chi/render"

	"github.com/cookieflix/cookieflix-backend/internal/http/middlewarectx"
	"github.com/cookieflix/cookieflix-backend/internal/http/response"
	"github.com/cookieflix/cookieflix-backend/internal/lib/sl"
	subservice "github.com/cookieflix/cookieflix-backend/internal/services/subscription"
)

type Service interface {
	ConfirmCheckout(ctx context.Context, userID *int64, sessionID string) (*subservice.ConfirmResult, error)
}

type Handler struct {
	log     *slog.Logger
	service Service
}

func New(log *slog.Logger, service Service) *Handler {
	return &Handler{log: log, service: service}
}

func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	const op = "handlers.subscription.confirm"

	log := h.log.With(
		slog.String("op", op),
		slog.String("request_id", middleware.GetReqID(r.Context())),
	)

	sessionID := r.URL.Query().Get("session_id")
	if sessionID == "" {
		render.Status(r, http.StatusBadRequest)
		render.JSON(w, r, response.Error("missing session_id"))
		return
	}

	// запрос разрешён и без токена: провайдер возвращает пользователя
	// на страницу успеха до того, как фронтенд восстановит сессию
	var userID *int64
	if user, ok := middlewarectx.UserFromContext(r.Context()); ok {
		userID = &user.ID
	}

	result, err := h.service.ConfirmCheckout(r.Context(), userID, sessionID)
	switch {
	case errors.Is(err, subservice.ErrSessionNotFound):
		log.Error("checkout session not found", slog.String("session_id", sessionID))
		render.Status(r, http.StatusNotFound)
		render.JSON(w, r, response.Error("checkout session not found"))
		return
	case errors.Is(err, subservice.ErrUserMismatch):
		log.Error("session belongs to another user", slog.String("session_id", sessionID))
		render.Status(r, http.StatusForbidden)
		render.JSON(w, r, response.Error("session belongs to another user"))
		return
	case err != nil:
		log.Error("failed to confirm checkout", sl.Err(err))
		render.Status(r, http.StatusInternalServerError)
		render.JSON(w, r, response.Error("failed to confirm checkout"))
		return
	}

	log.Info("checkout confirmed", slog.String("status", result.Status))
	render.JSON(w, r, response.StatusOKWithData(result))
}
