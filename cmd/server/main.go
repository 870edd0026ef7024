package main

import (
	"context"
	"database/sql"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/newrelic/go-agent/v3/newrelic"
	"github.com/redis/go-redis/v9"
	"github.com/sirupsen/logrus"

	"tripbuddy/internal/app"
	"tripbuddy/internal/config"
	"tripbuddy/internal/handler"
	"tripbuddy/internal/logger"
	internalRedis "tripbuddy/internal/redis"
	"tripbuddy/internal/repository/postgres"
	"tripbuddy/internal/service"
	"tripbuddy/internal/ws"
)

func main() {
	cfg := config.Load()
	logger.Setup()

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	// Initialize New Relic FIRST (before database so we can instrument DB).
	var nrApp *newrelic.Application
	var err error
	if cfg.NewRelic.Enabled && cfg.NewRelic.LicenseKey != "" {
		nrApp, err = newrelic.NewApplication(
			newrelic.ConfigAppName(cfg.NewRelic.AppName),
			newrelic.ConfigLicense(cfg.NewRelic.LicenseKey),
			newrelic.ConfigDistributedTracerEnabled(true),
			newrelic.ConfigAppLogForwardingEnabled(true),
		)
		if err != nil {
			logrus.WithError(err).Warn("failed to initialize New Relic")
		} else {
			logrus.WithField("app", cfg.NewRelic.AppName).Info("New Relic enabled")
		}
	}

	if err := app.RunMigrations(cfg.Database); err != nil {
		logrus.WithError(err).Fatal("failed to run migrations")
	}

	db, err := app.NewDatabase(ctx, cfg.Database, nrApp)
	if err != nil {
		logrus.WithError(err).Fatal("failed to connect to database")
	}
	defer db.Close()
	logrus.Info("connected to PostgreSQL")

	redisClient, err := app.NewRedisClient(ctx, cfg.Redis, nrApp)
	if err != nil {
		logrus.WithError(err).Fatal("failed to connect to redis")
	}
	defer redisClient.Close()
	logrus.Info("connected to Redis")

	server, hub := wireServer(db, redisClient, nrApp, cfg)

	// The hub bridges the Redis notification channels to websocket clients.
	go hub.Run(context.Background())
	defer hub.Close()

	go func() {
		logrus.WithField("port", cfg.Server.Port).Info("starting server")
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logrus.WithError(err).Fatal("server error")
		}
	}()

	// Graceful shutdown.
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	logrus.Info("shutting down server...")

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer shutdownCancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		logrus.WithError(err).Fatal("server forced to shutdown")
	}

	logrus.Info("server exited")
}

// wireServer wires all dependencies and returns the HTTP server and the
// websocket hub.
func wireServer(db *sql.DB, redisClient *redis.Client, nrApp *newrelic.Application, cfg *config.Config) (*http.Server, *ws.Hub) {
	// Redis-backed stores.
	cacheStore := internalRedis.NewCacheStore(redisClient)
	lockStore := internalRedis.NewLockStore(redisClient)
	pushStore := internalRedis.NewPushStore(redisClient)

	// Persistence.
	store := postgres.NewStore(db)

	// Services.
	mailer := service.NewMailer(cfg.Mail)
	notificationService := service.NewNotificationService(store, pushStore)
	accountService := service.NewAccountService(
		store, mailer, notificationService,
		cfg.Auth.VerifyTokenTTL,
		cfg.Server.BaseURL+"/v1/auth/verify",
	)
	rideService := service.NewRideService(store, cacheStore, notificationService)
	bookingService := service.NewBookingService(store, lockStore, cacheStore, notificationService)
	contactService := service.NewContactService(mailer, notificationService, cfg.Mail.AdminEmail)

	// Live-push fan-out.
	hub := ws.NewHub(pushStore)

	// Handlers.
	authHandler := handler.NewAuthHandler(accountService, cfg.Auth)
	userHandler := handler.NewUserHandler(accountService)
	rideHandler := handler.NewRideHandler(rideService)
	bookingHandler := handler.NewBookingHandler(bookingService)
	notificationHandler := handler.NewNotificationHandler(notificationService)
	contactHandler := handler.NewContactHandler(contactService, accountService)
	wsHandler := handler.NewWSHandler(hub, cfg.Auth.JWTSecret)

	router := app.NewRouter(app.RouterDeps{
		AuthHandler:         authHandler,
		UserHandler:         userHandler,
		RideHandler:         rideHandler,
		BookingHandler:      bookingHandler,
		NotificationHandler: notificationHandler,
		ContactHandler:      contactHandler,
		WSHandler:           wsHandler,
		RedisClient:         redisClient,
		NewRelicApp:         nrApp,
		JWTSecret:           cfg.Auth.JWTSecret,
	})

	server := &http.Server{
		Addr:         ":" + cfg.Server.Port,
		Handler:      router,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
	}

	return server, hub
}
