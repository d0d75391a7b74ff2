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
	"github.com/studyhub/notifier/internal/channel"
	"github.com/studyhub/notifier/internal/config"
	"github.com/studyhub/notifier/internal/handler"
	"github.com/studyhub/notifier/internal/infra/postgresql"
	"github.com/studyhub/notifier/internal/infra/postgresql/migrations"
	infraredis "github.com/studyhub/notifier/internal/infra/redis"
	"github.com/studyhub/notifier/internal/mail"
	"github.com/studyhub/notifier/internal/observability"
	"github.com/studyhub/notifier/internal/ratelimit"
	"github.com/studyhub/notifier/internal/repository"
	"github.com/studyhub/notifier/internal/service"
	"github.com/studyhub/notifier/internal/transport"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

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
	taskRepo := repository.NewGormTaskRepo(db)
	userRepo := repository.NewGormUserRepo(db)
	attemptRepo := repository.NewGormAttemptRepo(db)

	websiteAdapter, err := channel.NewWebsiteAdapter(notificationRepo)
	if err != nil {
		logger.Fatal("website adapter init failed", zap.Error(err))
	}

	var mailer channel.Mailer
	if cfg.SendgridAPIKey != "" {
		mailer, err = mail.NewSendgridMailer(cfg.SendgridAPIKey, cfg.EmailFromName, cfg.EmailFrom)
		if err != nil {
			logger.Fatal("sendgrid mailer init failed", zap.Error(err))
		}
	} else {
		logger.Warn("no sendgrid api key configured, email delivery is suppressed")
		mailer = mail.NewConsoleMailer(logger)
	}
	emailAdapter, err := channel.NewEmailAdapter(mailer)
	if err != nil {
		logger.Fatal("email adapter init failed", zap.Error(err))
	}

	adapters := []channel.Adapter{websiteAdapter, emailAdapter}
	if cfg.ChatBotAPIURL != "" {
		chatAdapter, err := channel.NewChatAdapter(cfg.ChatBotAPIURL)
		if err != nil {
			logger.Fatal("chat adapter init failed", zap.Error(err))
		}
		adapters = append(adapters, chatAdapter)
	} else {
		logger.Warn("no chat bot api url configured, chat delivery is disabled")
	}

	registry, err := channel.NewRegistry(adapters...)
	if err != nil {
		logger.Fatal("channel registry init failed", zap.Error(err))
	}

	var limiter ratelimit.ChannelLimiter
	limiter, err = infraredis.NewSendLimiter(rdb, cfg.OutboundRatePerSec)
	if err != nil {
		logger.Fatal("send limiter init failed", zap.Error(err))
	}

	metrics := observability.NewMetrics()

	dispatchSvc, err := service.NewDispatchService(userRepo, attemptRepo, registry, limiter, logger)
	if err != nil {
		logger.Fatal("dispatch service init failed", zap.Error(err))
	}
	dispatchSvc.SetMetrics(metrics)

	reminderSvc, err := service.NewReminderService(taskRepo, userRepo, notificationRepo, dispatchSvc, logger)
	if err != nil {
		logger.Fatal("reminder service init failed", zap.Error(err))
	}
	reminderSvc.SetMetrics(metrics)

	inboxSvc, err := service.NewNotificationService(notificationRepo, logger)
	if err != nil {
		logger.Fatal("notification service init failed", zap.Error(err))
	}

	app := fiber.New(fiber.Config{
		ErrorHandler: transport.ErrorHandler(logger),
	})
	app.Use(metrics.HTTPMiddleware())

	if err := handler.RegisterNotificationRoutes(app, reminderSvc, inboxSvc); err != nil {
		logger.Fatal("route registration failed", zap.Error(err))
	}
	if err := handler.RegisterAttemptRoutes(app, dispatchSvc); err != nil {
		logger.Fatal("attempt route registration failed", zap.Error(err))
	}
	handler.RegisterHealthRoutes(app, sqlDB, rdb)
	app.Get("/metrics", adaptor.HTTPHandler(metrics.Handler()))

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	g, groupCtx := errgroup.WithContext(ctx)

	g.Go(func() error {
		logger.Info("notifier api started", zap.Int("port", cfg.APIPort))
		return app.Listen(fmt.Sprintf(":%d", cfg.APIPort))
	})

	if cfg.ReminderPollIntervalSec > 0 {
		poller, err := service.NewPoller(reminderSvc, time.Duration(cfg.ReminderPollIntervalSec)*time.Second, logger)
		if err != nil {
			logger.Fatal("poller init failed", zap.Error(err))
		}
		g.Go(func() error {
			logger.Info("reminder poller started", zap.Int("intervalSec", cfg.ReminderPollIntervalSec))
			return poller.Start(groupCtx)
		})
	}

	g.Go(func() error {
		<-groupCtx.Done()
		return app.Shutdown()
	})

	if err := g.Wait(); err != nil {
		logger.Error("notifier stopped with error", zap.Error(err))
	}
}
