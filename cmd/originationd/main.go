package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/bibbank/bib/services/origination-service/internal/application/usecase"
	"github.com/bibbank/bib/services/origination-service/internal/domain/service"
	"github.com/bibbank/bib/services/origination-service/internal/infrastructure/config"
	"github.com/bibbank/bib/services/origination-service/internal/infrastructure/kafka"
	pgRepo "github.com/bibbank/bib/services/origination-service/internal/infrastructure/postgres"
	redisStore "github.com/bibbank/bib/services/origination-service/internal/infrastructure/redis"
	grpcPresentation "github.com/bibbank/bib/services/origination-service/internal/presentation/grpc"
	"github.com/bibbank/bib/services/origination-service/internal/presentation/rest"
	pkgkafka "github.com/bibbank/bib/services/origination-service/pkg/kafka"
	"github.com/bibbank/bib/services/origination-service/pkg/money"
	"github.com/bibbank/bib/services/origination-service/pkg/observability"
	pkgpostgres "github.com/bibbank/bib/services/origination-service/pkg/postgres"
)

func main() {
	var err error
	if len(os.Args) > 1 && os.Args[1] == "migrate-down" {
		err = migrateDown()
	} else {
		err = run()
	}
	if err != nil {
		slog.Error("origination-service failed", "error", err)
		os.Exit(1)
	}
}

// migrateDown rolls the schema back and exits without starting the servers.
func migrateDown() error {
	cfg := config.Load()
	if err := cfg.Validate(); err != nil {
		return err
	}
	if err := pkgpostgres.RunMigrationsDown(postgresConfig(cfg).DSN(), pgRepo.Migrations, pgRepo.MigrationsDir); err != nil {
		return fmt.Errorf("roll back migrations: %w", err)
	}
	slog.Info("migrations rolled back", "database", cfg.DB.Name)
	return nil
}

func postgresConfig(cfg config.Config) pkgpostgres.Config {
	return pkgpostgres.Config{
		Host:     cfg.DB.Host,
		Port:     cfg.DB.Port,
		User:     cfg.DB.User,
		Password: cfg.DB.Password,
		Database: cfg.DB.Name,
		SSLMode:  cfg.DB.SSLMode,
		MaxConns: int32(cfg.DB.MaxConns), //nolint:gosec // small configured value
	}
}

func run() error {
	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	cfg := config.Load()

	logger := observability.InitLogger(observability.LogConfig{
		Level:   cfg.LogLevel,
		Format:  cfg.LogFormat,
		Service: cfg.ServiceName,
	})

	if err := cfg.Validate(); err != nil {
		return err
	}

	logger.Info("starting origination-service",
		"http_port", cfg.HTTPPort,
		"grpc_port", cfg.GRPCPort,
	)

	// Tracing is optional; metrics are always exported.
	if cfg.OTLPEndpoint != "" {
		shutdown, err := observability.InitTracer(ctx, observability.TracingConfig{
			ServiceName: cfg.ServiceName,
			Endpoint:    cfg.OTLPEndpoint,
			Insecure:    true,
		})
		if err != nil {
			logger.Warn("failed to initialize tracer, continuing without tracing", "error", err)
		} else {
			defer func() { _ = shutdown(context.Background()) }() //nolint:errcheck // best-effort tracer shutdown
		}
	}
	meterProvider, metricsHandler, err := observability.InitMetrics(observability.MetricsConfig{ServiceName: cfg.ServiceName})
	if err != nil {
		return fmt.Errorf("init metrics: %w", err)
	}
	defer func() { _ = meterProvider.Shutdown(context.Background()) }() //nolint:errcheck
	metrics, err := usecase.NewMetrics(meterProvider.Meter("origination-service"))
	if err != nil {
		return fmt.Errorf("register metrics: %w", err)
	}

	// Lending policy.
	lendingPolicy, err := config.LoadPolicy(cfg.PolicyFile)
	if err != nil {
		return err
	}
	currency, err := money.NewCurrency(cfg.Currency)
	if err != nil {
		return fmt.Errorf("DEFAULT_CURRENCY: %w", err)
	}
	logger.Info("lending policy loaded", "file", cfg.PolicyFile, "currency", currency.Code())

	// Database connection and migrations.
	pgCfg := postgresConfig(cfg)
	if err := pkgpostgres.RunMigrations(pgCfg.DSN(), pgRepo.Migrations, pgRepo.MigrationsDir); err != nil {
		return fmt.Errorf("run migrations: %w", err)
	}

	dbCtx, dbCancel := context.WithTimeout(ctx, 10*time.Second)
	defer dbCancel()
	pool, err := pkgpostgres.NewPool(dbCtx, pgCfg)
	if err != nil {
		return fmt.Errorf("connect to database: %w", err)
	}
	defer pool.Close()
	logger.Info("connected to database")

	rdb, err := redisStore.Open(ctx, cfg.Redis.Addr, cfg.Redis.Password, cfg.Redis.DB)
	if err != nil {
		return err
	}
	defer rdb.Close()

	kafkaCfg := pkgkafka.Config{
		Brokers:       cfg.Kafka.Brokers,
		ConsumerGroup: cfg.Kafka.ConsumerGroup,
		TLS:           cfg.Kafka.TLS,
		SASLEnabled:   cfg.Kafka.SASLMechanism != "",
		SASLMechanism: cfg.Kafka.SASLMechanism,
		SASLUsername:  cfg.Kafka.SASLUsername,
		SASLPassword:  cfg.Kafka.SASLPassword,
	}
	producer, err := pkgkafka.NewProducer(kafkaCfg)
	if err != nil {
		return fmt.Errorf("create kafka producer: %w", err)
	}
	defer producer.Close()

	// Wire infrastructure adapters.
	scheduleRepo := pgRepo.NewScheduleRepo(pool)
	publisher := kafka.NewEventPublisher(producer, cfg.Kafka.EventsTopic, logger)
	idempotency := redisStore.NewIdempotencyStore(rdb, cfg.Redis.IdempotencyTTL)

	// Wire domain services and use cases.
	rates := service.NewRateResolver(lendingPolicy)
	validator := service.NewEligibilityValidator(lendingPolicy, rates)
	simulator := service.NewSimulator(lendingPolicy, rates)
	clock := usecase.Clock(time.Now)

	simulateUC := usecase.NewSimulateLoanUseCase(simulator, currency, metrics, logger)
	validateUC := usecase.NewValidateLoanUseCase(validator, publisher, currency, clock, metrics, logger)
	confirmUC := usecase.NewConfirmLoanUseCase(lendingPolicy, validator, scheduleRepo, publisher, idempotency,
		currency, clock, metrics, logger)
	getScheduleUC := usecase.NewGetScheduleUseCase(scheduleRepo, clock)
	settleUC := usecase.NewRecordSettlementUseCase(scheduleRepo, publisher, clock, metrics, logger)

	// Settlement consumer.
	settlements := kafka.NewSettlementHandler(settleUC, logger)
	consumer, err := pkgkafka.NewConsumer(kafkaCfg, cfg.Kafka.SettlementsTopic, settlements.Handle, logger)
	if err != nil {
		return fmt.Errorf("create settlement consumer: %w", err)
	}
	defer consumer.Close()

	// gRPC server.
	handler := grpcPresentation.NewOriginationHandler(simulateUC, validateUC, confirmUC, getScheduleUC, logger)
	grpcServer, err := grpcPresentation.NewServer(handler, logger, grpcPresentation.ServerOptions{
		ServiceName: cfg.ServiceName,
		TLSCertFile: cfg.TLS.CertFile,
		TLSKeyFile:  cfg.TLS.KeyFile,
		Reflection:  cfg.EnableReflection,
	})
	if err != nil {
		return err
	}

	// HTTP server (health checks and metrics).
	health := rest.NewHealthHandler(cfg.ServiceName, map[string]rest.Check{
		"postgres": func(ctx context.Context) error { return pkgpostgres.HealthCheck(ctx, pool) },
		"redis":    func(ctx context.Context) error { return rdb.Ping(ctx).Err() },
	}, logger)
	httpServer := &http.Server{
		Addr:              cfg.HTTPAddr(),
		Handler:           rest.NewMux(health, metricsHandler),
		ReadHeaderTimeout: 10 * time.Second,
	}

	// Start servers and the consumer.
	errCh := make(chan error, 3)

	go func() {
		if err := grpcServer.Serve(cfg.GRPCAddr()); err != nil {
			errCh <- fmt.Errorf("gRPC server error: %w", err)
		}
	}()

	go func() {
		logger.Info("HTTP server starting", "port", cfg.HTTPPort)
		if err := httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- fmt.Errorf("HTTP server error: %w", err)
		}
	}()

	go func() {
		if err := consumer.Start(ctx); err != nil {
			errCh <- fmt.Errorf("settlement consumer error: %w", err)
		}
	}()

	// Wait for shutdown signal.
	var runErr error
	select {
	case <-ctx.Done():
		logger.Info("shutdown signal received")
	case runErr = <-errCh:
		logger.Error("server error", "error", runErr)
		cancel()
	}

	// Graceful shutdown.
	grpcServer.GracefulStop()

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer shutdownCancel()

	if err := httpServer.Shutdown(shutdownCtx); err != nil {
		logger.Error("HTTP server shutdown error", "error", err)
	}

	logger.Info("origination-service stopped")
	return runErr
}
