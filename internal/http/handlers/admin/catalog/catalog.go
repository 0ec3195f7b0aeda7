// Package catalog содержит административные выборки каталога с фильтрами.
package catalog

import (
	"context"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/middleware"
	"github.com/go-chi/render"

	"github.com/cookieflix/cookieflix-backend/internal/http/response"
	"github.com/cookieflix/cookieflix-backend/internal/lib/sl"
	statsservice "github.com/cookieflix/cookieflix-backend/internal/services/stats"
)

type Service interface {
	Categories(ctx context.Context, search *string, isActive *bool, limit, offset int) (*statsservice.AdminCategoriesPage, error)
	Designs(ctx context.Context, search *string, categoryID *int64, isActive *bool, limit, offset int) (*statsservice.AdminDesignsPage, error)
}

// CategoriesHandler отдаёт категории со счётчиками дизайнов.
type CategoriesHandler struct {
	log     *slog.Logger
	service Service
}

func NewCategories(log *slog.Logger, service Service) *CategoriesHandler {
	return &CategoriesHandler{log: log, service: service}
}

func (h *CategoriesHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	const op = "handlers.admin.catalog.categories"

	log := h.log.With(
		slog.String("op", op),
		slog.String("request_id", middleware.GetReqID(r.Context())),
	)

	limit, offset := pagination(r, 50)
	search := optionalString(r, "search")
	isActive := optionalBool(r, "is_active")

	page, err := h.service.Categories(r.Context(), search, isActive, limit, offset)
	if err != nil {
		log.Error("failed to list categories", sl.Err(err))
		render.Status(r, http.StatusInternalServerError)
		render.JSON(w, r, response.Error("failed to list categories"))
		return
	}

	render.JSON(w, r, response.StatusOKWithData(page))
}

// DesignsHandler отдаёт дизайны по фильтрам поиска и активности.
type DesignsHandler struct {
	log     *slog.Logger
	service Service
}

func NewDesigns(log *slog.Logger, service Service) *DesignsHandler {
	return &DesignsHandler{log: log, service: service}
}

func (h *DesignsHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	const op = "handlers.admin.catalog.designs"

	log := h.log.With(
		slog.String("op", op),
		slog.String("request_id", middleware.GetReqID(r.Context())),
	)

	limit, offset := pagination(r, 50)
	search := optionalString(r, "search")
	isActive := optionalBool(r, "is_active")
	var categoryID *int64
	if v, err := strconv.ParseInt(r.URL.Query().Get("category_id"), 10, 64); err == nil && v > 0 {
		categoryID = &v
	}

	page, err := h.service.Designs(r.Context(), search, categoryID, isActive, limit, offset)
	if err != nil {
		log.Error("failed to list designs", sl.Err(err))
		render.Status(r, http.StatusInternalServerError)
		render.JSON(w, r, response.Error("failed to list designs"))
		return
	}

	render.JSON(w, r, response.StatusOKWithData(page))
}

func pagination(r *http.Request, defaultLimit int) (int, int) {
	limit, err := strconv.Atoi(r.URL.Query().Get("limit"))
	if err != nil || limit <= 0 {
		limit = defaultLimit
	}
	offset, err := strconv.Atoi(r.URL.Query().Get("offset"))
	if err != nil || offset < 0 {
		offset = 0
	}
	return limit, offset
}

func optionalString(r *http.Request, name string) *string {
	if v := r.URL.Query().Get(name); v != "" {
		return &v
	}
	return nil
}

func optionalBool(r *http.Request, name string) *bool {
	if v, err := strconv.ParseBool(r.URL.Query().Get(name)); err == nil {
		return &v
	}
	return nil
}
