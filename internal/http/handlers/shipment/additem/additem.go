package additem

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/go-chi/chi"
	"github.com/go-chi/chi/middleware"
	"github.com/go-chi/render"
	"github.com/go-playground/validator"

	"github.com/cookieflix/cookieflix-backend/internal/http/response"
	"github.com/cookieflix/cookieflix-backend/internal/lib/sl"
	"github.com/cookieflix/cookieflix-backend/internal/models"
	shipmentservice "github.com/cookieflix/cookieflix-backend/internal/services/shipment"
)

// Request — входные данные для добавления позиции в отправку
type Request struct {
	DesignID int64 `json:"design_id" validate:"required,gt=0"`
	Quantity int   `json:"quantity" validate:"omitempty,gt=0"`
}

type Service interface {
	AddItem(ctx context.Context, shipmentID, designID int64, quantity int) (*models.ShipmentItem, error)
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
	const op = "handlers.shipment.additem"

	log := h.log.With(
		slog.String("op", op),
		slog.String("request_id", middleware.GetReqID(r.Context())),
	)

	shipmentID, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil || shipmentID <= 0 {
		render.Status(r, http.StatusBadRequest)
		render.JSON(w, r, response.Error("invalid shipment id"))
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

	item, err := h.service.AddItem(r.Context(), shipmentID, req.DesignID, req.Quantity)
	switch {
	case errors.Is(err, shipmentservice.ErrShipmentNotFound):
		log.Error("shipment not found", slog.Int64("shipment_id", shipmentID))
		render.Status(r, http.StatusNotFound)
		render.JSON(w, r, response.Error("shipment not found"))
		return
	case errors.Is(err, shipmentservice.ErrDesignNotFound):
		log.Error("design not found", slog.Int64("design_id", req.DesignID))
		render.Status(r, http.StatusNotFound)
		render.JSON(w, r, response.Error("design not found"))
		return
	case err != nil:
		log.Error("failed to add shipment item", sl.Err(err))
		render.Status(r, http.StatusInternalServerError)
		render.JSON(w, r, response.Error("failed to add shipment item"))
		return
	}

	log.Info("shipment item added", slog.Int64("item_id", item.ID))
	render.Status(r, http.StatusCreated)
	render.JSON(w, r, response.StatusOKWithData(item))
}
