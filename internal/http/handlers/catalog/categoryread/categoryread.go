package categoryread

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
	catalogservice "github.com/cookieflix/cookieflix-backend/internal/services/catalog"
)

type Service interface {
	GetCategory(ctx context.Context, slug string) (*models.Category, error)
}

type Handler struct {
	log     *slog.Logger
	service Service
}

func New(log *slog.Logger, service Service) *Handler {
	return &Handler{log: log, service: service}
}

func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	const op = "handlers.catalog.categoryread"

	log := h.log.With(
		slog.String("op", op),
		slog.String("request_id", middleware.GetReqID(r.Context())),
	)

	slug := chi.URLParam(r, "slug")
	if slug == "" {
		render.Status(r, http.StatusBadRequest)
		render.JSON(w, r, response.Error("missing category slug"))
		return
	}

	category, err := h.service.GetCategory(r.Context(), slug)
	if errors.Is(err, catalogservice.ErrCategoryNotFound) {
		log.Error("category not found", slog.String("slug", slug))
		render.Status(r, http.StatusNotFound)
		render.JSON(w, r, response.Error("category not found"))
		return
	}
	if err != nil {
		render.Status(r, http.StatusInternalServerError)
		render.JSON(w, r, response.Error("failed to read category"))
		return
	}

	render.JSON(w, r, response.StatusOKWithData(category))
}
