// Package cookieflix собирает API-сервер: хранилище, миграции, кеш,
// очередь уведомлений, платёжный провайдер, сервисы и HTTP-маршруты.
package cookieflix

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi"
	"github.com/streadway/amqp"

	"github.com/cookieflix/cookieflix-backend/internal/cache"
	"github.com/cookieflix/cookieflix-backend/internal/config"
	"github.com/cookieflix/cookieflix-backend/internal/lib/jwt"
	"github.com/cookieflix/cookieflix-backend/internal/lib/rabbitmq"
	"github.com/cookieflix/cookieflix-backend/internal/lib/sl"
	"github.com/cookieflix/cookieflix-backend/internal/migrations"
	"github.com/cookieflix/cookieflix-backend/internal/paymentprovider"
	activityservice "github.com/cookieflix/cookieflix-backend/internal/services/activity"
	authservice "github.com/cookieflix/cookieflix-backend/internal/services/auth"
	catalogservice "github.com/cookieflix/cookieflix-backend/internal/services/catalog"
	shipmentservice "github.com/cookieflix/cookieflix-backend/internal/services/shipment"
	statsservice "github.com/cookieflix/cookieflix-backend/internal/services/stats"
	subservice "github.com/cookieflix/cookieflix-backend/internal/services/subscription"
	userservice "github.com/cookieflix/cookieflix-backend/internal/services/user"
	votingservice "github.com/cookieflix/cookieflix-backend/internal/services/voting"
	"github.com/cookieflix/cookieflix-backend/internal/storage/repository"
)

type App struct {
	server     *http.Server
	logger     *slog.Logger
	db         *repository.Storage
	cache      *cache.Cache
	rabbitConn *amqp.Connection
	rabbitCh   *amqp.Channel
}

func New(ctx context.Context, cfg *config.Config, logger *slog.Logger) (*App, error) {
	db, err := repository.New(cfg.StorageConnectionString)
	if err != nil {
		return nil, err
	}
	if err = migrations.Run(db.DB, cfg.MigrationsPath); err != nil {
		return nil, err
	}
	if err = repository.CheckDatabaseReady(db); err != nil {
		return nil, err
	}

	cacheRedis, err := cache.InitServer(ctx, cfg.RedisConnection)
	if err != nil {
		return nil, err
	}

	rabbitConn, err := rabbitmq.Connect(cfg.AddressRabbit, cfg.RetriesRabbit, cfg.DelayRabbit)
	if err != nil {
		return nil, err
	}
	rabbitCh, err := rabbitmq.SetupChannel(rabbitConn, rabbitmq.GetNotificationQueues())
	if err != nil {
		rabbitConn.Close()
		return nil, err
	}
	publisher := rabbitmq.NewPublisher(rabbitCh)

	providerClient := paymentprovider.NewClient(cfg.ProviderAPIURL, cfg.ProviderAPIKey)
	jwtMaker := jwt.NewJWTMaker(cfg.JWTSecretKey, cfg.TokenTTL)
	recorder := activityservice.NewRecorder(db, logger)

	authService := authservice.NewAuthService(db, jwtMaker, recorder, logger)
	if err := authService.EnsureAdmin(ctx, cfg.AdminBootstrapEmail, cfg.AdminBootstrapPassword); err != nil {
		logger.Error("failed to ensure admin user", sl.Err(err))
	}

	userService := userservice.NewUserService(db, logger)
	catalogService := catalogservice.NewCatalogService(db, cacheRedis, logger)
	votingService := votingservice.NewVotingService(db, recorder, logger)
	subscriptionService := subservice.NewSubscriptionService(db, providerClient, publisher,
		recorder, cfg.FrontendURL, logger)
	shipmentService := shipmentservice.NewShipmentService(db, logger)
	statsService := statsservice.NewStatsService(db, logger)

	router := chi.NewRouter()
	RegisterRoutes(router, logger, Deps{
		APIPrefix:     cfg.APIPrefix,
		Auth:          authService,
		User:          userService,
		Catalog:       catalogService,
		Voting:        votingService,
		Subscription:  subscriptionService,
		Shipment:      shipmentService,
		Stats:         statsService,
		Cache:         cacheRedis,
		DB:            db,
		WebhookSecret: cfg.WebhookSecret,
	})

	srv := &http.Server{
		Addr:         cfg.AddressHTTP,
		Handler:      router,
		ReadTimeout:  cfg.TimeoutHTTP,
		WriteTimeout: cfg.TimeoutHTTP,
		IdleTimeout:  cfg.IdleTimeout,
	}

	return &App{
		server:     srv,
		logger:     logger,
		db:         db,
		cache:      cacheRedis,
		rabbitConn: rabbitConn,
		rabbitCh:   rabbitCh,
	}, nil
}

func (a *App) Run(ctx context.Context) error {
	errCh := make(chan error, 1)
	go func() {
		a.logger.Info("HTTP server starting on", slog.String("address", a.server.Addr))
		err := a.server.ListenAndServe()
		if errors.Is(err, http.ErrServerClosed) {
			errCh <- nil
		} else {
			errCh <- err
		}
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
		timeoutCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
		defer cancel()
		a.logger.Info("shutting down HTTP server gracefully")
		err := a.server.Shutdown(timeoutCtx)
		if closeErr := a.rabbitCh.Close(); closeErr != nil {
			a.logger.Error("failed to close rabbitmq channel", sl.Err(closeErr))
		}
		if closeErr := a.rabbitConn.Close(); closeErr != nil {
			a.logger.Error("failed to close rabbitmq connection", sl.Err(closeErr))
		}
		a.db.DB.Close()
		return err
	}
}
