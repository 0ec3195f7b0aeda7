package remaining

import (
	"context"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/middleware"
	"github.com/go-chi/render"

	"github.com/cookieflix/cookieflix-backend/internal/http/middlewarectx"
	"github.com/cookieflix/cookieflix-backend/internal/http/response"
	"github.com/cookieflix/cookieflix-backend/internal/lib/sl"
)

type Service interface {
	VotesRemaining(ctx context.Context, userID, categoryID int64) (int, error)
}

type Handler struct {
	log     *slog.Logger
	service Service
}

func New(log *slog.Logger, service Service) *Handler {
	return &Handler{log: log, service: service}
}

func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	const op = "handlers.voting.remaining"

	log := h.log.With(
		slog.String("op", op),
		slog.String("request_id", middleware.GetReqID(r.Context())),
	)

	user, ok := middlewarectx.UserFromContext(r.Context())
	if !ok {
		log.Error("user not found in context")
		render.Status(r, http.StatusUnauthorized)
		render.JSON(w, r, response.Error("authentication required"))
		return
	}

	categoryID, err := strconv.ParseInt(r.URL.Query().Get("category_id"), 10, 64)
	if err != nil || categoryID <= 0 {
		log.Error("invalid category_id query parameter")
		render.Status(r, http.StatusBadRequest)
		render.JSON(w, r, response.Error("invalid category_id"))
		return
	}

	left, err := h.service.VotesRemaining(r.Context(), user.ID, categoryID)
	if err != nil {
		log.Error("failed to count remaining votes", sl.Err(err))
		render.Status(r, http.StatusInternalServerError)
		render.JSON(w, r, response.Error("failed to count remaining votes"))
		return
	}

	render.JSON(w, r, response.StatusOKWithData(map[string]any{
		"category_id":     categoryID,
		"votes_remaining": left,
	}))
}
