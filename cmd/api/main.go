package main

import (
	"context"
	"fmt"
	"log"
	"os/signal"
	"syscall"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/adaptor"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/eventstack/notification-engine/internal/config"
	"github.com/eventstack/notification-engine/internal/handler"
	"github.com/eventstack/notification-engine/internal/infra/postgresql"
	"github.com/eventstack/notification-engine/internal/infra/postgresql/migrations"
	infraredis "github.com/eventstack/notification-engine/internal/infra/redis"
	"github.com/eventstack/notification-engine/internal/observability"
	"github.com/eventstack/notification-engine/internal/provider"
	"github.com/eventstack/notification-engine/internal/queue"
	"github.com/eventstack/notification-engine/internal/repository"
	"github.com/eventstack/notification-engine/internal/service"
	"github.com/eventstack/notification-engine/internal/transport"
)

const shutdownTimeout = 10 * time.Second

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("failed to load config: %v", err)
	}

	logger, err := observability.NewLogger(cfg.LogLevel)
	if err != nil {
		log.Fatalf("failed to initialize logger: %v", err)
	}
	defer logger.Sync() //nolint:errcheck

	db, err := postgresql.NewPostgres(cfg.DatabaseDSN)
	if err != nil {
		logger.Fatal("postgres initialization failed", zap.Error(err))
	}

	if err := migrations.Migrate(db); err != nil {
		logger.Fatal("database migrations failed", zap.Error(err))
	}

	sqlDB, err := db.DB()
	if err != nil {
		logger.Fatal("postgres underlying db init failed", zap.Error(err))
	}
	defer sqlDB.Close()

	rdb, err := infraredis.NewRedis(cfg.RedisURL)
	if err != nil {
		logger.Fatal("redis initialization failed", zap.Error(err))
	}
	defer rdb.Close()

	notificationRepo := repository.NewGormNotificationRepo(db)
	attemptRepo := repository.NewGormAttemptRepo(db)
	templateRepo := repository.NewGormTemplateRepo(db)

	if err := templateRepo.Seed(context.Background(), repository.DefaultTemplates()); err != nil {
		logger.Fatal("template seeding failed", zap.Error(err))
	}

	sender, err := provider.NewSendGridSender(cfg.SendGridAPIKey, cfg.FromEmail, cfg.FromName)
	if err != nil {
		logger.Fatal("sendgrid initialization failed", zap.Error(err))
	}

	rateLimiter, err := infraredis.NewRedisRateLimiter(rdb, cfg.RateLimitPerSec)
	if err != nil {
		logger.Fatal("rate limiter initialization failed", zap.Error(err))
	}

	consumerClient, err := queue.NewRabbitMQ(cfg.RabbitMQURL, cfg.QueueName)
	if err != nil {
		logger.Fatal("rabbitmq consumer connection failed", zap.Error(err))
	}
	defer consumerClient.Close()

	metrics := observability.NewMetrics()

	deliverySvc, err := service.NewDeliveryService(
		notificationRepo,
		attemptRepo,
		sender,
		rateLimiter,
		cfg.MaxSendAttempts,
		logger,
	)
	if err != nil {
		logger.Fatal("delivery service initialization failed", zap.Error(err))
	}
	deliverySvc.SetMetrics(metrics)

	consumer := queue.NewRabbitMQConsumer(consumerClient, logger)
	consumer.SetPoisonHook(metrics.IncPoisonMessage)

	worker, err := service.NewConsumerWorker(consumer, deliverySvc, logger)
	if err != nil {
		logger.Fatal("consumer worker initialization failed", zap.Error(err))
	}
	worker.SetMetrics(metrics)

	sweeper, err := service.NewRetrySweeper(
		notificationRepo,
		deliverySvc,
		time.Duration(cfg.RetryIntervalMins)*time.Minute,
		cfg.MaxSendAttempts,
		time.Duration(cfg.RetryWindowHours)*time.Hour,
		cfg.RetryScanLimit,
		logger,
	)
	if err != nil {
		logger.Fatal("retry sweeper initialization failed", zap.Error(err))
	}

	app := fiber.New(fiber.Config{
		AppName:      "notification-engine",
		ErrorHandler: transport.ErrorHandler(logger),
	})
	app.Use(recover.New())
	app.Use(metrics.HTTPMiddleware())

	handler.RegisterHealthRoutes(app, sqlDB, rdb, sender)
	app.Get("/metrics", adaptor.HTTPHandler(metrics.Handler()))

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		return worker.Start(gctx)
	})

	g.Go(func() error {
		return sweeper.Start(gctx)
	})

	g.Go(func() error {
		logger.Info("notification-engine api started", zap.Int("port", cfg.APIPort))
		return app.Listen(fmt.Sprintf(":%d", cfg.APIPort))
	})

	g.Go(func() error {
		<-gctx.Done()
		logger.Info("shutting down")
		return app.ShutdownWithTimeout(shutdownTimeout)
	})

	if err := g.Wait(); err != nil && ctx.Err() == nil {
		logger.Fatal("notification-engine stopped with error", zap.Error(err))
	}

	logger.Info("notification-engine stopped")
}
