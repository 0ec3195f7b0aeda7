package create

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/middleware"
	"github.com/go-chi/render"
	"github.com/go-playground/validator"

	"github.com/cookieflix/cookieflix-backend/internal/http/response"
	"github.com/cookieflix/cookieflix-backend/internal/lib/sl"
	"github.com/cookieflix/cookieflix-backend/internal/models"
	shipmentservice "github.com/cookieflix/cookieflix-backend/internal/services/shipment"
)

// Request — входные данные для регистрации отправки
type Request struct {
	UserID                int64   `json:"user_id" validate:"required,gt=0"`
	TrackingNumber        *string `json:"tracking_number,omitempty"`
	Status                string  `json:"status" validate:"omitempty,oneof=processed shipped delivered"`
	ShippedDate           *string `json:"shipped_date,omitempty" validate:"omitempty,datetime=2006-01-02"`
	EstimatedDeliveryDate *string `json:"estimated_delivery_date,omitempty" validate:"omitempty,datetime=2006-01-02"`
}

type Service interface {
	Create(ctx context.Context, shipment models.Shipment) (*models.Shipment, error)
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
	const op = "handlers.shipment.create"

	log := h.log.With(
		slog.String("op", op),
		slog.String("request_id", middleware.GetReqID(r.Context())),
	)

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

	shipment := models.Shipment{
		UserID:         req.UserID,
		TrackingNumber: req.TrackingNumber,
		Status:         req.Status,
	}
	if req.ShippedDate != nil {
		d, _ := time.Parse("2006-01-02", *req.ShippedDate)
		shipment.ShippedDate = &d
	}
	if req.EstimatedDeliveryDate != nil {
		d, _ := time.Parse("2006-01-02", *req.EstimatedDeliveryDate)
		shipment.EstimatedDeliveryDate = &d
	}

	created, err := h.service.Create(r.Context(), shipment)
	switch {
	case errors.Is(err, shipmentservice.ErrUserNotFound):
		log.Error("user not found", slog.Int64("user_id", req.UserID))
		render.Status(r, http.StatusNotFound)
		render.JSON(w, r, response.Error("user not found"))
		return
	case errors.Is(err, shipmentservice.ErrInvalidStatus):
		render.Status(r, http.StatusBadRequest)
		render.JSON(w, r, response.Error("invalid shipment status"))
		return
	case err != nil:
		log.Error("failed to create shipment", sl.Err(err))
		render.Status(r, http.StatusInternalServerError)
		render.JSON(w, r, response.Error("failed to create shipment"))
		return
	}

	log.Info("shipment created", slog.Int64("shipment_id", created.ID))
	render.Status(r, http.StatusCreated)
	render.JSON(w, r, response.StatusOKWithData(created))
}
