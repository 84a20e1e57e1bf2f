package main // Entry point package

import (
	"context"
	"errors"
	"net/http"
	"os/signal"
	"sync"
	"syscall"
	"time"

	"github.com/labstack/echo/v4"                   // Echo web framework
	echomw "github.com/labstack/echo/v4/middleware" // request logging and recovery
	"go.uber.org/zap"

	"github.com/iliyamo/hotel-room-reservation/internal/app"
	"github.com/iliyamo/hotel-room-reservation/internal/config" // Internal config loader
	"github.com/iliyamo/hotel-room-reservation/internal/database"
	"github.com/iliyamo/hotel-room-reservation/internal/handler"
	"github.com/iliyamo/hotel-room-reservation/internal/jobs"
	"github.com/iliyamo/hotel-room-reservation/internal/lock"
	"github.com/iliyamo/hotel-room-reservation/internal/middleware"
	"github.com/iliyamo/hotel-room-reservation/internal/queue"
	"github.com/iliyamo/hotel-room-reservation/internal/repository"
	"github.com/iliyamo/hotel-room-reservation/internal/router" // Internal router setup
	"github.com/iliyamo/hotel-room-reservation/internal/service"
)

func main() {
	cfg := config.Load() // Load environment config
	logger := app.NewLogger(cfg.Env)
	defer func() { _ = logger.Sync() }()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	db, err := database.Open(cfg.DBUser, cfg.DBPass, cfg.DBHost, cfg.DBPort, cfg.DBName)
	if err != nil {
		logger.Fatal("database connection failed", zap.Error(err))
	}
	defer db.Close()

	migrator, err := database.NewMigrator(db, logger)
	if err != nil {
		logger.Fatal("migrator setup failed", zap.Error(err))
	}
	if err := migrator.Run(ctx); err != nil {
		logger.Fatal("migrations failed", zap.Error(err))
	}

	rdb, err := config.NewRedisClient(ctx)
	if err != nil {
		logger.Fatal("redis connection failed", zap.Error(err))
	}
	defer rdb.Close()

	// Events are optional: without a broker the service runs with a no-op
	// publisher and no consumers.
	var publisher service.EventPublisher = queue.NopPublisher{}
	if cfg.RabbitURL != "" {
		publisher = queue.NewPublisher(cfg.RabbitURL, logger)
	} else {
		logger.Warn("RABBITMQ_URL not set; reservation events are disabled")
	}

	reservations := repository.NewReservationRepo(db)
	svc := service.NewReservationService(
		reservations,
		repository.NewRoomRepo(db),
		repository.NewCouponRepo(db),
		repository.NewCustomerRepo(db),
		lock.NewRoomLocker(rdb, cfg.Lock, logger),
		publisher,
		logger,
	)

	e := echo.New() // Create Echo instance
	e.HideBanner = true
	e.Validator = handler.NewRequestValidator()
	e.HTTPErrorHandler = handler.ErrorHandler(logger)
	e.Use(echomw.Recover())
	e.Use(echomw.RequestLoggerWithConfig(echomw.RequestLoggerConfig{
		LogMethod:  true,
		LogURI:     true,
		LogStatus:  true,
		LogLatency: true,
		LogError:   true,
		LogValuesFunc: func(c echo.Context, v echomw.RequestLoggerValues) error {
			fields := []zap.Field{
				zap.String("method", v.Method),
				zap.String("uri", v.URI),
				zap.Int("status", v.Status),
				zap.Duration("latency", v.Latency),
			}
			if v.Error != nil {
				fields = append(fields, zap.Error(v.Error))
			}
			logger.Info("request", fields...)
			return nil
		},
	}))

	health := handler.Health(map[string]handler.Pinger{
		"mysql": reservations.DB(),
		"redis": handler.PingFunc(func(ctx context.Context) error { return rdb.Ping(ctx).Err() }),
	})
	router.RegisterRoutes(e, health, handler.NewAvailabilityHandler(svc, logger))
	router.RegisterCustomer(e, handler.NewCustomerHandler(svc, logger), cfg.JWTSecret,
		middleware.NewBookingLimiter(cfg.RateLimit, rdb, logger))
	router.RegisterOwner(e, handler.NewFrontDeskHandler(svc, logger), cfg.JWTSecret)

	var workers sync.WaitGroup

	if cfg.Expiry.Enabled {
		job := jobs.NewExpiryJob(svc, cfg.Expiry, logger)
		if err := job.Start(ctx); err != nil {
			logger.Fatal("expiry job start failed", zap.Error(err))
		}
		defer func() { _ = job.Stop() }()
	}

	if cfg.RabbitURL != "" {
		// A nil *SMTPMailer stored in the interface would not compare equal
		// to nil, so only assign when mailing is configured.
		var mailer queue.Mailer
		if m := queue.NewSMTPMailer(cfg.SMTP); m != nil {
			mailer = m
		}
		notifications := queue.NewNotificationHandler(cfg.LogDir, mailer, logger)
		payments := queue.NewPaymentHandler(svc, service.IsStaleSignal, logger)

		consumers := map[string]queue.Handler{
			queue.ReservationEventsQueue: notifications.Handle,
			queue.PaymentEventsQueue:     payments.Handle,
		}
		for name, handle := range consumers {
			workers.Add(1)
			go func(name string, handle queue.Handler) {
				defer workers.Done()
				if err := queue.Consume(ctx, cfg.RabbitURL, name, handle, logger); err != nil && !errors.Is(err, context.Canceled) {
					logger.Error("consumer stopped", zap.String("queue", name), zap.Error(err))
				}
			}(name, handle)
		}
	}

	addr := ":" + cfg.Port // Address string with port
	go func() {
		logger.Info("listening", zap.String("addr", addr), zap.String("env", cfg.Env))
		if err := e.Start(addr); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("http server failed", zap.Error(err))
			stop()
		}
	}()

	<-ctx.Done()
	logger.Info("shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := e.Shutdown(shutdownCtx); err != nil {
		logger.Error("http shutdown failed", zap.Error(err))
	}
	workers.Wait()
}
