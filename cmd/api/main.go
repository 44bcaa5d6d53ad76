package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/gofiber/fiber/v2"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	httptransport "github.com/spec-kit/helpdesk-service/internal/api/http"
	"github.com/spec-kit/helpdesk-service/internal/api/http/handlers"
	"github.com/spec-kit/helpdesk-service/internal/audit"
	"github.com/spec-kit/helpdesk-service/internal/auth"
	"github.com/spec-kit/helpdesk-service/internal/config"
	"github.com/spec-kit/helpdesk-service/internal/events"
	"github.com/spec-kit/helpdesk-service/internal/observability"
	"github.com/spec-kit/helpdesk-service/internal/persistence"
	"github.com/spec-kit/helpdesk-service/internal/repository"
	"github.com/spec-kit/helpdesk-service/internal/service"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("failed to load config: %v", err)
	}

	logger, err := observability.NewLogger(cfg.Logger)
	if err != nil {
		log.Fatalf("failed to init logger: %v", err)
	}
	defer logger.Sync() //nolint:errcheck

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// With no DSN configured the service runs on in-memory storage, which
	// keeps local development and demos free of external dependencies.
	var (
		pool         *pgxpool.Pool
		ticketRepo   repository.TicketRepository
		userRepo     repository.UserRepository
		activityRepo repository.ActivityLogRepository
	)
	if cfg.Postgres.DSN != "" {
		pool, err = persistence.NewPostgresPool(ctx, cfg.Postgres)
		if err != nil {
			logger.Fatal("failed to connect postgres", zap.Error(err))
		}
		defer pool.Close()

		if cfg.Postgres.RunMigrations {
			if err := persistence.RunMigrations(ctx, pool, "migrations", logger); err != nil {
				logger.Fatal("failed to run migrations", zap.Error(err))
			}
		}

		ticketRepo = repository.NewTicketRepository(pool)
		userRepo = repository.NewUserRepository(pool)
		activityRepo = repository.NewActivityLogRepository(pool)
	} else {
		logger.Warn("POSTGRES_DSN not set, using in-memory storage")
		ticketRepo = repository.NewMemoryTicketRepository()
		userRepo = repository.NewMemoryUserRepository()
		activityRepo = repository.NewMemoryActivityLogRepository()
	}

	var (
		redisClient    *redis.Client
		principalCache auth.PrincipalCache
	)
	if client, err := persistence.NewRedisClient(ctx, cfg.Redis); err != nil {
		logger.Warn("redis unavailable, principal caching disabled", zap.Error(err))
	} else {
		redisClient = client
		principalCache = auth.NewRedisPrincipalCache(redisClient)
		defer redisClient.Close()
	}

	dispatcher := events.NewInMemoryDispatcher()

	recorder := audit.NewRecorder(activityRepo, logger)
	recorder.Register(dispatcher)

	notifications := service.NewNotificationService(service.NewMemorySink(), dispatcher, logger, cfg.Notification)
	notifications.RegisterHandlers()

	authService := service.NewAuthService(cfg.Auth, userRepo)
	ticketService := service.NewTicketService(service.TicketDependencies{
		TicketRepo:   ticketRepo,
		UserRepo:     userRepo,
		ActivityRepo: activityRepo,
		Dispatcher:   dispatcher,
	})
	userService := service.NewUserService(service.UserDependencies{
		UserRepo:   userRepo,
		Cache:      principalCache,
		Dispatcher: dispatcher,
		BcryptCost: cfg.Auth.BcryptCost,
	})
	activityService := service.NewActivityService(activityRepo, ticketRepo)

	authMiddleware := auth.NewAuthMiddleware(authService.TokenManager(), userRepo, principalCache)
	metrics := observability.NewMetrics()

	app := fiber.New(fiber.Config{AppName: cfg.App.Name})
	httptransport.RegisterMiddlewares(app, logger, metrics, cfg.App.RequestTimeout())

	httptransport.RegisterRoutes(app, httptransport.RouteConfig{
		Health:         handlers.NewHealthHandler(cfg.App.Name, cfg.App.Version, pool, redisClient),
		Auth:           handlers.NewAuthHandler(authService),
		Tickets:        handlers.NewTicketsHandler(ticketService),
		Users:          handlers.NewUsersHandler(userService),
		Activity:       handlers.NewActivityHandler(activityService),
		AuthMiddleware: authMiddleware,
	})

	go func() {
		if err := app.Listen(cfg.App.Addr()); err != nil {
			logger.Fatal("fiber listen", zap.Error(err))
		}
	}()

	waitForShutdown(logger)

	_ = app.Shutdown()
	dispatcher.Drain()
}

func waitForShutdown(logger *zap.Logger) {
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)

	sig := <-sigCh
	logger.Info("shutting down", zap.String("signal", sig.String()))
}
