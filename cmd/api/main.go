package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"log"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"mechmarket/internal/adapter/http/handlers"
	"mechmarket/internal/adapter/http/routes"
	"mechmarket/internal/adapter/persistence/repository"
	"mechmarket/internal/adapter/persistence/sequence"
	"mechmarket/internal/config"
	"mechmarket/internal/domain/money"
	"mechmarket/internal/infrastructure/database"
	"mechmarket/internal/infrastructure/events"
	"mechmarket/internal/infrastructure/logging"
	"mechmarket/internal/infrastructure/metrics"
	"mechmarket/internal/infrastructure/payments"
	"mechmarket/internal/infrastructure/scheduler"
	"mechmarket/internal/usecase"
	"mechmarket/internal/usecase/interfaces"

	"github.com/joho/godotenv"
)

// @title           MechMarket API
// @version         1.0
// @description     Marketplace transactional core: jobs, competitive bidding, change orders and escrow payments.

// @host localhost:8080

// @BasePath  /v1

func main() {
	if err := run(); err != nil {
		log.Fatal(err)
	}
}

func run() error {
	if err := godotenv.Load(); err != nil {
		log.Println("no .env file found, using environment variables")
	}

	defaultConfigPath := os.Getenv("MECHMARKET_CONFIG_PATH")
	if defaultConfigPath == "" {
		defaultConfigPath = "configs/config.yaml"
	}
	configPath := flag.String("config", defaultConfigPath, "Path to configuration file")
	flag.Parse()

	cfg, err := config.Load(*configPath)
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return fmt.Errorf("invalid config: %w", err)
	}

	logger := logging.New(cfg.Logging)
	slog.SetDefault(logger)

	logger.Info("starting mechmarket",
		slog.Int("port", cfg.Server.Port),
		slog.String("region", cfg.DynamoDB.Region),
	)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	ddb, err := database.NewDynamoDBClient(ctx, database.Config{
		Region:          cfg.DynamoDB.Region,
		Endpoint:        cfg.DynamoDB.Endpoint,
		AccessKeyID:     cfg.DynamoDB.AccessKeyID,
		SecretAccessKey: cfg.DynamoDB.SecretAccessKey,
	})
	if err != nil {
		return fmt.Errorf("failed to initialize dynamodb: %w", err)
	}

	jobRepo := repository.NewJobDynamoRepository(ddb)
	bidRepo := repository.NewBidDynamoRepository(ddb)
	orderRepo := repository.NewChangeOrderDynamoRepository(ddb)
	paymentRepo := repository.NewPaymentDynamoRepository(ddb)

	allocator, closeAllocator, err := newAllocator(ctx, cfg, logger)
	if err != nil {
		return err
	}
	defer closeAllocator()

	bus := events.NewBus(logger)
	defer bus.Close()

	m := metrics.New()
	bus.Subscribe("metrics", m.EventSubscriber())

	if cfg.RabbitMQ.Enabled {
		bridge, err := events.NewRabbitPublisher(events.RabbitConfig{
			Host:              cfg.RabbitMQ.Host,
			Port:              cfg.RabbitMQ.Port,
			User:              cfg.RabbitMQ.User,
			Password:          cfg.RabbitMQ.Password,
			VHost:             cfg.RabbitMQ.VHost,
			ExchangeName:      cfg.RabbitMQ.Exchange,
			ConnectRetries:    cfg.RabbitMQ.ConnectRetries,
			ConnectRetryDelay: cfg.RabbitMQ.ConnectRetryDelay,
			PublishRetries:    cfg.RabbitMQ.PublishRetries,
			PublishRetryDelay: cfg.RabbitMQ.PublishRetryDelay,
		}, logger)
		if err != nil {
			return fmt.Errorf("failed to initialize rabbitmq bridge: %w", err)
		}
		defer bridge.Close()
		bus.Subscribe("rabbitmq", bridge.Handle)
	}

	processor, err := payments.NewMercadoPagoProcessor(cfg.MercadoPago.AccessToken, cfg.MercadoPago.MockMode, logger)
	if err != nil {
		return fmt.Errorf("failed to initialize payment processor: %w", err)
	}

	limits := money.Limits{
		MinAmountCents: cfg.Payments.MinAmountCents,
		MaxAmountCents: cfg.Payments.MaxAmountCents,
	}

	jobUC := usecase.NewJobUseCase(jobRepo, paymentRepo, allocator, bus, logger, cfg.Lifecycle.JobTTL)
	bidUC := usecase.NewBidUseCase(bidRepo, jobRepo, bus, logger, cfg.Lifecycle.BidTTL)
	orderUC := usecase.NewChangeOrderUseCase(orderRepo, jobRepo, bus, logger, limits, cfg.Lifecycle.ChangeOrderTTL)
	payUC := usecase.NewPaymentUseCase(paymentRepo, jobRepo, orderUC, processor, bus, logger, usecase.PaymentConfig{
		FeeRate:     cfg.Payments.FeeRate,
		Limits:      limits,
		Currency:    cfg.Payments.Currency,
		MaxAttempts: cfg.Payments.MaxAttempts,
		BackoffBase: cfg.Payments.BackoffBase,
	})
	expirationUC := usecase.NewExpirationUseCase(
		jobRepo, bidRepo, orderRepo,
		jobUC, orderUC, payUC,
		bus, logger, cfg.Scheduler.WarnAhead,
	)

	runner := scheduler.NewRunner(func(ctx context.Context) error {
		start := time.Now()
		stats, err := expirationUC.Sweep(ctx)
		m.ObserveSweep(time.Since(start))
		if err != nil {
			return err
		}
		if stats.Errors > 0 {
			logger.Warn("expiration sweep finished with errors",
				slog.Int("errors", stats.Errors),
			)
		}
		return nil
	}, cfg.Scheduler.SweepInterval, logger)
	runner.Start()
	defer runner.Stop()

	router := routes.NewRouter(routes.Handlers{
		Jobs:         handlers.NewJobHandler(jobUC),
		Bids:         handlers.NewBidHandler(bidUC),
		ChangeOrders: handlers.NewChangeOrderHandler(orderUC),
		Payments:     handlers.NewPaymentHandler(payUC, logger),
		Metrics:      m.Handler(),
	}, m.GinMiddleware())

	addr := fmt.Sprintf(":%d", cfg.Server.Port)
	srv := &http.Server{
		Addr:         addr,
		Handler:      router,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
		IdleTimeout:  cfg.Server.IdleTimeout,
	}

	serveErr := make(chan error, 1)
	go func() {
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serveErr <- err
		}
	}()

	logger.Info("mechmarket is running", slog.String("address", addr))

	select {
	case err := <-serveErr:
		return fmt.Errorf("server failed: %w", err)
	case <-ctx.Done():
	}

	logger.Info("shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("server shutdown: %w", err)
	}

	logger.Info("shutdown complete")
	return nil
}

// newAllocator prefers the Postgres sequence for display numbers and falls
// back to a process-local counter when Postgres is not configured.
func newAllocator(ctx context.Context, cfg *config.Config, logger *slog.Logger) (interfaces.DisplayNumberAllocator, func(), error) {
	if cfg.Postgres.Host == "" {
		logger.Warn("postgres not configured, display numbers are process-local")
		return sequence.NewLocalAllocator(), func() {}, nil
	}

	allocator, err := sequence.NewPostgresAllocator(ctx, cfg.Postgres.DSN())
	if err != nil {
		return nil, nil, fmt.Errorf("failed to initialize display number sequence: %w", err)
	}
	return allocator, func() {
		if err := allocator.Close(); err != nil {
			logger.Warn("closing postgres allocator", slog.Any("error", err))
		}
	}, nil
}
