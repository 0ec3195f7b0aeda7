package checkout

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

// Request — входные данные для оформления подписки
type Request struct {
	PlanSlug      string `json:"plan_slug" validate:"required"`
	BillingPeriod string `json:"billing_period" validate:"required,oneof=monthly quarterly semiannual annual"`
}

type Service interface {
	CreateCheckout(ctx context.Context, userID int64, planSlug, billingPeriod string) (*subservice.CheckoutLink, error)
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
	const op = "handlers.subscription.checkout"

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

	link, err := h.service.CreateCheckout(r.Context(), user.ID, req.PlanSlug, req.BillingPeriod)
	switch {
	case errors.Is(err, subservice.ErrPlanNotFound):
		log.Error("plan not found", slog.String("slug", req.PlanSlug))
		render.Status(r, http.StatusNotFound)
		render.JSON(w, r, response.Error("plan not found"))
		return
	case errors.Is(err, subservice.ErrInvalidBillingPeriod):
		render.Status(r, http.StatusBadRequest)
		render.JSON(w, r, response.Error("invalid billing period"))
		return
	case errors.Is(err, subservice.ErrAlreadySubscribed):
		log.Error("user already has active subscription", slog.Int64("user_id", user.ID))
		render.Status(r, http.StatusBadRequest)
		render.JSON(w, r, response.Error("active subscription already exists"))
		return
	case errors.Is(err, subservice.ErrPriceNotMapped):
		log.Error("no price for plan and period", slog.String("slug", req.PlanSlug))
		render.Status(r, http.StatusBadRequest)
		render.JSON(w, r, response.Error("no price configured for plan and period"))
		return
	case err != nil:
		log.Error("failed to create checkout session", sl.Err(err))
		render.Status(r, http.StatusInternalServerError)
		render.JSON(w, r, response.Error("failed to create checkout session"))
		return
	}

	log.Info("checkout session created", slog.String("session_id", link.SessionID))
	render.JSON(w, r, response.StatusOKWithData(link))
}
