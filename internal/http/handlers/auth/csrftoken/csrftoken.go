package csrftoken

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/middleware"
	"github.com/go-chi/render"

	"github.com/cookieflix/cookieflix-backend/internal/http/response"
	"github.com/cookieflix/cookieflix-backend/internal/lib/sl"
)

// Service выдаёт одноразовые CSRF-токены.
type Service interface {
	IssueCSRFToken(ctx context.Context) (string, error)
}

type Handler struct {
	log     *slog.Logger
	service Service
}

func New(log *slog.Logger, service Service) *Handler {
	return &Handler{log: log, service: service}
}

func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	const op = "handlers.auth.csrftoken"

	log := h.log.With(
		slog.String("op", op),
		slog.String("request_id", middleware.GetReqID(r.Context())),
	)

	token, err := h.service.IssueCSRFToken(r.Context())
	if err != nil {
		log.Error("failed to issue csrf token", sl.Err(err))
		render.Status(r, http.StatusInternalServerError)
		render.JSON(w, r, response.Error("failed to issue csrf token"))
		return
	}

	render.JSON(w, r, response.StatusOKWithData(map[string]any{
		"csrf_token": token,
	}))
}
