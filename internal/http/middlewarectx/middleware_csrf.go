package middlewarectx

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/go-chi/render"

	"github.com/cookieflix/cookieflix-backend/internal/http/response"
	"github.com/cookieflix/cookieflix-backend/internal/lib/sl"
)

// CSRFStore описывает проверку одноразовых CSRF-токенов.
type CSRFStore interface {
	ConsumeCSRFToken(ctx context.Context, token string) (bool, error)
}

// CSRFMiddleware требует валидный одноразовый токен в заголовке X-CSRF-Token
// для изменяющих запросов. Токены выдаются отдельным эндпоинтом и живут
// в Redis, поэтому проверка работает при любом числе экземпляров сервера.
func CSRFMiddleware(store CSRFStore, log *slog.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			token := r.Header.Get("X-CSRF-Token")
			if token == "" {
				log.Error("missing csrf token")
				render.Status(r, http.StatusForbidden)
				render.JSON(w, r, response.Error("missing csrf token"))
				return
			}
			ok, err := store.ConsumeCSRFToken(r.Context(), token)
			if err != nil {
				log.Error("failed to check csrf token", sl.Err(err))
				render.Status(r, http.StatusInternalServerError)
				render.JSON(w, r, response.Error("internal error"))
				return
			}
			if !ok {
				log.Error("invalid or expired csrf token")
				render.Status(r, http.StatusForbidden)
				render.JSON(w, r, response.Error("invalid or expired csrf token"))
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}
