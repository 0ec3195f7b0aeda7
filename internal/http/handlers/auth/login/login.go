package login

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net"
	"net/http"
	"time"

	"github.com/go-chi/chi/middleware"
	"github.com/go-chi/render"
	"github.com/go-playground/validator"

	"github.com/cookieflix/cookieflix-backend/internal/http/response"
	"github.com/cookieflix/cookieflix-backend/internal/lib/sl"
	"github.com/cookieflix/cookieflix-backend/internal/models"
	authservice "github.com/cookieflix/cookieflix-backend/internal/services/auth"
)

const (
	// loginAttemptsPerWindow лимит попыток входа с одной пары email+IP.
	loginAttemptsPerWindow = 5
	loginWindow            = time.Minute
)

// Request — входные данные для входа
type Request struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

type Service interface {
	Login(ctx context.Context, email, rawPassword string) (string, *models.User, error)
}

// AttemptLimiter ограничивает частоту попыток входа в фиксированном окне.
type AttemptLimiter interface {
	AllowAttempt(ctx context.Context, key string, limit int, window time.Duration) (bool, error)
}

type Handler struct {
	log      *slog.Logger
	service  Service
	limiter  AttemptLimiter
	validate *validator.Validate
}

func New(log *slog.Logger, service Service, limiter AttemptLimiter) *Handler {
	return &Handler{
		log:      log,
		service:  service,
		limiter:  limiter,
		validate: validator.New(),
	}
}

func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	const op = "handlers.auth.login"

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

	ip, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		ip = r.RemoteAddr
	}
	allowed, err := h.limiter.AllowAttempt(r.Context(), "login:"+req.Email+":"+ip,
		loginAttemptsPerWindow, loginWindow)
	if err != nil {
		log.Error("failed to check login rate limit", sl.Err(err))
	} else if !allowed {
		log.Error("login rate limit exceeded", slog.String("ip", ip))
		render.Status(r, http.StatusTooManyRequests)
		render.JSON(w, r, response.Error("too many login attempts, try again later"))
		return
	}

	token, user, err := h.service.Login(r.Context(), req.Email, req.Password)
	switch {
	case errors.Is(err, authservice.ErrAccountLocked):
		log.Error("account locked", slog.String("email", req.Email))
		render.Status(r, http.StatusForbidden)
		render.JSON(w, r, response.Error("account temporarily locked, try again later"))
		return
	case errors.Is(err, authservice.ErrAccountDisabled):
		log.Error("account disabled", slog.String("email", req.Email))
		render.Status(r, http.StatusForbidden)
		render.JSON(w, r, response.Error("account disabled"))
		return
	case err != nil:
		log.Error("login failed", sl.Err(err))
		render.Status(r, http.StatusUnauthorized)
		render.JSON(w, r, response.Error("invalid email or password"))
		return
	}

	log.Info("user logged in", slog.Int64("user_id", user.ID))
	render.JSON(w, r, response.StatusOKWithData(map[string]any{
		"token": token,
		"user":  user,
	}))
}
