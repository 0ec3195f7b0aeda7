package categories

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/middleware"
	"github.com/go-chi/render"
	"github.com/go-playground/validator"

	"github.com/cookieflix/cookieflix-backend/internal/http/middlewarectx"
	"github.com/cookieflix/cookieflix-backend/internal/http/response"
	"github.com/cookieflix/cookieflix-backend/internal/lib/sl"
	subservice "github.com/cookieflix/cookieflix-backend/internal/services/subscription"
)

// Request — входные данные для выбора предпочитаемых категорий
type Request struct {
	CategoryIDs []int64 `json:"category_ids" validate:"required,min=1,dive,gt=0"`
}

type Service interface {
	SetPreferredCategories(ctx context.Context, userID int64, categoryIDs []int64) error
}

type Handler struct {
	log      *slog.Logger
	service  Service
	validate *validator.Validate
}

func New(log *slog.Logger, service Service) *Handler {
	return &Handler{
		log:      log,
		service:  service,
		validate: validator.New(),
	}
}

func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	const op = "handlers.subscription.categories"

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

	var req Request
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		log.Error("failed to decode request body", sl.Err(err))
		render.Status(r, http.StatusBadRequest)
		render.JSON(w, r, response.Error("invalid request body"))
		return
	}

	if err := h.validate.Struct(req); err != nil {
		log.Error("validation failed", sl.Err(err))
		render.Status(r, http.StatusBadRequest)
		render.JSON(w, r, response.ValidationError(err.(validator.ValidationErrors)))
		return
	}

	err := h.service.SetPreferredCategories(r.Context(), user.ID, req.CategoryIDs)
	switch {
	case errors.Is(err, subservice.ErrNoActiveSubscription):
		log.Error("no active subscription", slog.Int64("user_id", user.ID))
		render.Status(r, http.StatusForbidden)
		render.JSON(w, r, response.Error("active subscription required"))
		return
	case errors.Is(err, subservice.ErrCategoryQuotaExceeded):
		render.Status(r, http.StatusBadRequest)
		render.JSON(w, r, response.Error("too many categories for plan"))
		return
	case errors.Is(err, subservice.ErrUnknownCategory):
		render.Status(r, http.StatusBadRequest)
		render.JSON(w, r, response.Error("unknown or inactive category"))
		return
	case err != nil:
		log.Error("failed to set preferred categories", sl.Err(err))
		render.Status(r, http.StatusInternalServerError)
		render.JSON(w, r, response.Error("failed to set preferred categories"))
		return
	}

	log.Info("preferred categories updated", slog.Int64("user_id", user.ID))
	render.JSON(w, r, response.StatusOKWithData(map[string]any{
		"category_ids": req.CategoryIDs,
	}))
}
