package vote

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
	votingservice "github.com/cookieflix/cookieflix-backend/internal/services/voting"
)

// Request — входные данные для голоса
type Request struct {
	DesignID int64 `json:"design_id" validate:"required,gt=0"`
}

type Service interface {
	Vote(ctx context.Context, userID, designID int64) (*votingservice.VoteResult, error)
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
	const op = "handlers.voting.vote"

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

	result, err := h.service.Vote(r.Context(), user.ID, req.DesignID)
	switch {
	case errors.Is(err, votingservice.ErrSubscriptionRequired):
		log.Error("vote without active subscription", slog.Int64("user_id", user.ID))
		render.Status(r, http.StatusForbidden)
		render.JSON(w, r, response.Error("active subscription required"))
		return
	case errors.Is(err, votingservice.ErrDesignNotFound):
		log.Error("design not found", slog.Int64("design_id", req.DesignID))
		render.Status(r, http.StatusNotFound)
		render.JSON(w, r, response.Error("design not found"))
		return
	case errors.Is(err, votingservice.ErrAlreadyVoted):
		log.Error("duplicate vote", slog.Int64("design_id", req.DesignID))
		render.Status(r, http.StatusConflict)
		render.JSON(w, r, response.Error("already voted for this design"))
		return
	case errors.Is(err, votingservice.ErrQuotaExhausted):
		log.Error("vote quota exhausted", slog.Int64("user_id", user.ID))
		render.Status(r, http.StatusBadRequest)
		render.JSON(w, r, response.Error("monthly vote quota exhausted for this category"))
		return
	case err != nil:
		log.Error("failed to register vote", sl.Err(err))
		render.Status(r, http.StatusInternalServerError)
		render.JSON(w, r, response.Error("failed to register vote"))
		return
	}

	log.Info("vote registered", slog.Int64("vote_id", result.VoteID))
	render.Status(r, http.StatusCreated)
	render.JSON(w, r, response.StatusOKWithData(result))
}
