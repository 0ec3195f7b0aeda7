package myvotes

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
	"github.com/cookieflix/cookieflix-backend/internal/models"
	catalogservice "github.com/cookieflix/cookieflix-backend/internal/services/catalog"
)

type Service interface {
	ListVotedDesigns(ctx context.Context, userID int64, categorySlug *string) ([]*models.Design, error)
}

type Handler struct {
	log     *slog.Logger
	service Service
}

func New(log *slog.Logger, service Service) *Handler {
	return &Handler{log: log, service: service}
}

func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	const op = "handlers.catalog.myvotes"

	log := h.log.With(
		slog.String("op", op),
		slog.String("request_id", middleware.GetReqID(r.Context())),
	)

	user, ok := middlewarectx.UserFromContext(r.Context())
	if !ok {
		log.Error("user not found in context")
		render.Status(r, http.StatusUnauthorized)
		render.JSON(w, r, response.Error("unauthorized"))
		return
	}

	var categorySlug *string
	if v := r.URL.Query().Get("category"); v != "" {
		categorySlug = &v
	}

	designs, err := h.service.ListVotedDesigns(r.Context(), user.ID, categorySlug)
	if errors.Is(err, catalogservice.ErrCategoryNotFound) {
		render.Status(r, http.StatusNotFound)
		render.JSON(w, r, response.Error("category not found"))
		return
	}
	if err != nil {
		log.Error("failed to list voted designs", sl.Err(err))
		render.Status(r, http.StatusInternalServerError)
		render.JSON(w, r, response.Error("failed to list voted designs"))
		return
	}

	render.JSON(w, r, response.StatusOKWithData(map[string]any{
		"count":   len(designs),
		"designs": designs,
	}))
}
