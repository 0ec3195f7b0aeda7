package planread

import (
	"context"
	"errors"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi"
	"github.com/go-chi/chi/middleware"
	"github.com/go-chi/render"

	"github.com/cookieflix/cookieflix-backend/internal/http/response"
	"github.com/cookieflix/cookieflix-backend/internal/models"
	subservice "github.com/cookieflix/cookieflix-backend/internal/services/subscription"
)

type Service interface {
	GetPlan(ctx context.Context, slug string) (*models.Plan, error)
}

type Handler struct {
	log     *slog.Logger
	service Service
}

func New(log *slog.Logger, service Service) *Handler {
	return &Handler{log: log, service: service}
}

func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	const op = "handlers.subscription.planread"

	log := h.log.With(
		slog.String("op", op),
		slog.String("request_id", middleware.GetReqID(r.Context())),
	)

	slug := chi.URLParam(r, "slug")
	if slug == "" {
		render.Status(r, http.StatusBadRequest)
		render.JSON(w, r, response.Error("missing plan slug"))
		return
	}

	plan, err := h.service.GetPlan(r.Context(), slug)
	if errors.Is(err, subservice.ErrPlanNotFound) {
		log.Error("plan not found", slog.String("slug", slug))
		render.Status(r, http.StatusNotFound)
		render.JSON(w, r, response.Error("plan not found"))
		return
	}
	if err != nil {
		render.Status(r, http.StatusInternalServerError)
		render.JSON(w, r, response.Error("failed to read plan"))
		return
	}

	render.JSON(w, r, response.StatusOKWithData(plan))
}
