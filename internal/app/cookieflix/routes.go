package cookieflix

import (
	"log/slog"

	"github.com/go-chi/chi"
	"github.com/go-chi/chi/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	admincatalog "github.com/cookieflix/cookieflix-backend/internal/http/handlers/admin/catalog"
	adminhealth "github.com/cookieflix/cookieflix-backend/internal/http/handlers/admin/health"
	adminstats "github.com/cookieflix/cookieflix-backend/internal/http/handlers/admin/stats"
	"github.com/cookieflix/cookieflix-backend/internal/http/handlers/auth/csrftoken"
	"github.com/cookieflix/cookieflix-backend/internal/http/handlers/auth/login"
	"github.com/cookieflix/cookieflix-backend/internal/http/handlers/auth/me"
	"github.com/cookieflix/cookieflix-backend/internal/http/handlers/auth/register"
	"github.com/cookieflix/cookieflix-backend/internal/http/handlers/catalog/categorylist"
	"github.com/cookieflix/cookieflix-backend/internal/http/handlers/catalog/categoryread"
	"github.com/cookieflix/cookieflix-backend/internal/http/handlers/catalog/designlist"
	"github.com/cookieflix/cookieflix-backend/internal/http/handlers/catalog/myvotes"
	shipadditem "github.com/cookieflix/cookieflix-backend/internal/http/handlers/shipment/additem"
	shipcreate "github.com/cookieflix/cookieflix-backend/internal/http/handlers/shipment/create"
	"github.com/cookieflix/cookieflix-backend/internal/http/handlers/shipment/mylist"
	"github.com/cookieflix/cookieflix-backend/internal/http/handlers/subscription/categories"
	"github.com/cookieflix/cookieflix-backend/internal/http/handlers/subscription/checkout"
	"github.com/cookieflix/cookieflix-backend/internal/http/handlers/subscription/confirm"
	"github.com/cookieflix/cookieflix-backend/internal/http/handlers/subscription/my"
	"github.com/cookieflix/cookieflix-backend/internal/http/handlers/subscription/planlist"
	"github.com/cookieflix/cookieflix-backend/internal/http/handlers/subscription/planread"
	"github.com/cookieflix/cookieflix-backend/internal/http/handlers/user/referral"
	"github.com/cookieflix/cookieflix-backend/internal/http/handlers/user/update"
	"github.com/cookieflix/cookieflix-backend/internal/http/handlers/voting/remaining"
	"github.com/cookieflix/cookieflix-backend/internal/http/handlers/voting/vote"
	"github.com/cookieflix/cookieflix-backend/internal/http/handlers/webhook"
	"github.com/cookieflix/cookieflix-backend/internal/http/middlewarectx"

	"github.com/cookieflix/cookieflix-backend/internal/cache"
	authservice "github.com/cookieflix/cookieflix-backend/internal/services/auth"
	catalogservice "github.com/cookieflix/cookieflix-backend/internal/services/catalog"
	shipmentservice "github.com/cookieflix/cookieflix-backend/internal/services/shipment"
	statsservice "github.com/cookieflix/cookieflix-backend/internal/services/stats"
	subservice "github.com/cookieflix/cookieflix-backend/internal/services/subscription"
	userservice "github.com/cookieflix/cookieflix-backend/internal/services/user"
	votingservice "github.com/cookieflix/cookieflix-backend/internal/services/voting"
	"github.com/cookieflix/cookieflix-backend/internal/storage/repository"
)

// Deps зависимости маршрутов приложения.
type Deps struct {
	APIPrefix     string
	Auth          *authservice.AuthService
	User          *userservice.UserService
	Catalog       *catalogservice.CatalogService
	Voting        *votingservice.VotingService
	Subscription  *subservice.SubscriptionService
	Shipment      *shipmentservice.ShipmentService
	Stats         *statsservice.StatsService
	Cache         *cache.Cache
	DB            *repository.Storage
	WebhookSecret string
}

// RegisterRoutes регистрирует все маршруты приложения.
func RegisterRoutes(r chi.Router, logger *slog.Logger, deps Deps) {
	// Глобальные middleware
	r.Use(
		middleware.RequestID,
		middleware.Logger,
		middleware.Recoverer,
		middleware.URLFormat,
	)

	prefix := deps.APIPrefix
	if prefix == "" {
		prefix = "/api/v1"
	}
	r.Route(prefix, func(r chi.Router) {
		// Открытые конечные точки
		r.Post("/auth/register", register.New(logger, deps.Auth).ServeHTTP)
		r.Post("/auth/login", login.New(logger, deps.Auth, deps.Cache).ServeHTTP)
		r.Get("/products/categories", categorylist.New(logger, deps.Catalog).ServeHTTP)
		r.Get("/products/categories/{slug}", categoryread.New(logger, deps.Catalog).ServeHTTP)
		r.Get("/products/designs", designlist.New(logger, deps.Catalog).ServeHTTP)
		r.Get("/subscriptions/plans", planlist.New(logger, deps.Subscription).ServeHTTP)
		r.Get("/subscriptions/plans/{slug}", planread.New(logger, deps.Subscription).ServeHTTP)
		r.Get("/admin/public-health", adminhealth.NewPublic().ServeHTTP)

		// Подтверждение оформления доступно и без токена
		r.Group(func(r chi.Router) {
			r.Use(middlewarectx.OptionalJWTMiddleware(deps.Auth, logger))
			r.Get("/subscriptions/checkout/confirm", confirm.New(logger, deps.Subscription).ServeHTTP)
		})

		// Группа с JWT аутентификацией
		r.Group(func(r chi.Router) {
			r.Use(middlewarectx.JWTMiddleware(deps.Auth, logger))
			r.Use(middlewarectx.RateLimitMiddleware(logger))
			r.Get("/auth/me", me.New(logger).ServeHTTP)
			r.Get("/users/me", me.New(logger).ServeHTTP)
			r.Get("/auth/csrf-token", csrftoken.New(logger, deps.Cache).ServeHTTP)
			r.With(middlewarectx.CSRFMiddleware(deps.Cache, logger)).
				Put("/users/me", update.New(logger, deps.User).ServeHTTP)
			r.Get("/users/referral-code", referral.New(logger, deps.User).ServeHTTP)
			r.Get("/products/my-votes", myvotes.New(logger, deps.Catalog).ServeHTTP)
			r.Post("/products/vote", vote.New(logger, deps.Voting).ServeHTTP)
			r.Get("/products/votes/remaining", remaining.New(logger, deps.Voting).ServeHTTP)
			r.Post("/subscriptions/checkout", checkout.New(logger, deps.Subscription).ServeHTTP)
			r.Get("/subscriptions/my", my.New(logger, deps.Subscription).ServeHTTP)
			r.Post("/subscriptions/categories", categories.New(logger, deps.Subscription).ServeHTTP)
			r.Get("/shipments/my", mylist.New(logger, deps.Shipment).ServeHTTP)

			// Административные конечные точки
			r.Group(func(r chi.Router) {
				r.Use(middlewarectx.AdminOnlyMiddleware(logger))
				r.Post("/shipments", shipcreate.New(logger, deps.Shipment).ServeHTTP)
				r.Post("/shipments/{id}/items", shipadditem.New(logger, deps.Shipment).ServeHTTP)
				r.Get("/admin/health", adminhealth.New(logger, deps.DB, deps.Cache).ServeHTTP)
				r.Get("/admin/users/stats", adminstats.NewUsers(logger, deps.Stats).ServeHTTP)
				r.Get("/admin/subscriptions/stats", adminstats.NewSubscriptions(logger, deps.Stats).ServeHTTP)
				r.Get("/admin/categories", admincatalog.NewCategories(logger, deps.Stats).ServeHTTP)
				r.Get("/admin/designs", admincatalog.NewDesigns(logger, deps.Stats).ServeHTTP)
			})
		})

		// Webhook endpoint (без аутентификации)
		r.Post("/webhooks/billing", webhook.New(logger, deps.Subscription, deps.WebhookSecret).ServeHTTP)
	})

	r.Handle("/metrics", promhttp.Handler())
}
