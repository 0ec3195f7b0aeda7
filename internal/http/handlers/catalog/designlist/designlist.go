package designlist

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/middleware"
	"github.com/go-chi/render"

	"github.com/cookieflix/cookieflix-backend/internal/http/response"
	"github.com/cookieflix/cookieflix-backend/internal/lib/sl"
	"github.com/cookieflix/cookieflix-backend/internal/models"
	catalogservice "github.com/cookieflix/cookieflix-backend/internal/services/catalog"
)

type Service interface {
	ListDesigns(ctx context.Context, categorySlug *string, limit, offset int) ([]*models.Design, error)
}

type Handler struct {
	log     *slog.Logger
	service Service
}

func New(log *slog.Logger, service Service) *Handler {
	return &Handler{log: log, service: service}
}

func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	const op = "handlers.catalog.designlist"

	log := h.log.With(
		slog.String("op", op),
		slog.String("request_id", middleware.GetReqID(r.Context())),
	)

	limit, err := strconv.Atoi(r.URL.Query().Get("limit"))
	if err != nil || limit <= 0 {
		limit = 50
	}
	offset, err := strconv.Atoi(r.URL.Query().Get("offset"))
	if err != nil || offset < 0 {
		offset = 0
	}
	var categorySlug *string
	if v := r.URL.Query().Get("category"); v != "" {
		categorySlug = &v
	}

	designs, err := h.service.ListDesigns(r.Context(), categorySlug, limit, offset)
	if errors.Is(err, catalogservice.ErrCategoryNotFound) {
		log.Error("category not found")
		render.Status(r, http.StatusNotFound)
		render.JSON(w, r, response.Error("category not found"))
		return
	}
	if err != nil {
		log.Error("failed to list designs", sl.Err(err))
		render.Status(r, http.StatusInternalServerError)
		render.JSON(w, r, response.Error("failed to list designs"))
		return
	}

	log.Info("designs listed", "count", len(designs))
	render.JSON(w, r, response.StatusOKWithData(map[string]any{
		"count":   len(designs),
		"designs": designs,
	}))
}
