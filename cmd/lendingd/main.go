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

	"github.com/ricare/lending/internal/application/usecase"
	"github.com/ricare/lending/internal/domain/port"
	"github.com/ricare/lending/internal/infrastructure/adapter"
	"github.com/ricare/lending/internal/infrastructure/config"
	"github.com/ricare/lending/internal/infrastructure/idempotency"
	"github.com/ricare/lending/internal/infrastructure/kafka"
	"github.com/ricare/lending/internal/infrastructure/outbox"
	grpcPresentation "github.com/ricare/lending/internal/presentation/grpc"
	"github.com/ricare/lending/internal/presentation/rest"
	"github.com/ricare/lending/pkg/auth"
	pkgkafka "github.com/ricare/lending/pkg/kafka"
	"github.com/ricare/lending/pkg/observability"
)

func main() {
	if err := run(); err != nil {
		slog.Error("lending-service failed", "error", err)
		os.Exit(1)
	}
}

func run() error {
	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	cfg := config.Load(".env")

	logger := observability.InitLogger(observability.LogConfig{
		Level:       cfg.LogLevel,
		Format:      cfg.LogFormat,
		ServiceName: cfg.ServiceName,
	})

	if err := cfg.Validate(); err != nil {
		return fmt.Errorf("invalid configuration: %w", err)
	}

	logger.Info("starting lending-service",
		"environment", cfg.Environment,
		"storage", cfg.StorageDriver,
		"http_port", cfg.HTTPPort,
		"grpc_port", cfg.GRPCPort,
	)

	// Observability.
	shutdownTracer, err := observability.InitTracer(ctx, observability.TracingConfig{
		ServiceName: cfg.ServiceName,
		Endpoint:    cfg.OTLPEndpoint,
		Insecure:    true,
		SampleRatio: 1,
	})
	if err != nil {
		logger.Warn("failed to initialize tracer, continuing without tracing", "error", err)
	} else {
		defer func() { _ = shutdownTracer(context.Background()) }() //nolint:errcheck // best-effort flush
	}

	meterProvider, metricsHandler, err := observability.InitMetrics(observability.MetricsConfig{ServiceName: cfg.ServiceName})
	if err != nil {
		return fmt.Errorf("init metrics: %w", err)
	}
	defer func() { _ = meterProvider.Shutdown(context.Background()) }() //nolint:errcheck

	ledgerMetrics, err := usecase.NewLedgerMetrics(meterProvider.Meter("github.com/ricare/lending"))
	if err != nil {
		return fmt.Errorf("init ledger metrics: %w", err)
	}

	// Storage.
	store, err := openStorage(ctx, cfg, logger)
	if err != nil {
		return err
	}
	defer store.close()

	checks := []rest.ReadinessCheck{{Name: cfg.StorageDriver, Check: store.ping}}

	// Idempotency keys need Redis; without it PayEmi ignores them.
	var idem port.IdempotencyStore
	if cfg.Redis.Addr != "" {
		client, err := idempotency.NewRedisClient(ctx, idempotency.RedisConfig{
			Addr:     cfg.Redis.Addr,
			Password: cfg.Redis.Password,
			DB:       cfg.Redis.DB,
			CAFile:   cfg.Redis.CAFile,
		}, logger)
		if err != nil {
			return err
		}
		defer client.Close()
		idem = idempotency.NewRedisStore(client, cfg.Redis.IdempotencyTTL)
		checks = append(checks, rest.ReadinessCheck{
			Name:  "redis",
			Check: func(ctx context.Context) error { return client.Ping(ctx).Err() },
		})
	} else {
		logger.Warn("REDIS_ADDR not set, PayEmi idempotency keys are disabled")
	}

	var bureau port.CreditBureauClient
	if cfg.StubCreditScore > 0 {
		bureau = adapter.NewStubCreditBureauClient(cfg.StubCreditScore)
	} else {
		bureau = adapter.NewCreditBureauAdapter(adapter.DefaultCreditBureauConfig(), nil)
	}

	uc := usecase.NewUseCases(usecase.Dependencies{
		Loans:        store.loans,
		Wallets:      store.wallets,
		Disbursement: store.disbursement,
		Sequence:     store.sequence,
		Idempotency:  idem,
		Bureau:       bureau,
		Identity:     adapter.NewStubIdentityVerifier(),
		Metrics:      ledgerMetrics,
		Logger:       logger,
	})

	errCh := make(chan error, 4)

	// Kafka: outbox relay and health-card status consumer.
	if cfg.Kafka.Enabled() {
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

		relay := outbox.NewRelay(store.outbox, producer, cfg.Kafka.EventsTopic,
			cfg.Outbox.PollInterval, cfg.Outbox.BatchSize, logger)
		go func() { _ = relay.Run(ctx) }()

		consumer, err := kafka.NewHealthCardStatusConsumer(kafkaCfg, cfg.Kafka.HealthCardTopic,
			kafka.NewHealthCardStatusHandler(uc.ApplyWalletStatus, logger), logger)
		if err != nil {
			return fmt.Errorf("create health-card consumer: %w", err)
		}
		defer consumer.Close()
		go func() {
			if err := consumer.Start(ctx); err != nil && !errors.Is(err, context.Canceled) {
				errCh <- fmt.Errorf("health-card consumer: %w", err)
			}
		}()
	} else {
		logger.Warn("KAFKA_BROKERS not set, outbox relay and health-card consumer are disabled")
	}

	jwtSvc, err := newJWTService(cfg.Auth)
	if err != nil {
		return err
	}

	// gRPC server.
	handler := grpcPresentation.NewLendingHandler(uc, logger)
	grpcServer, err := grpcPresentation.NewServer(grpcPresentation.ServerConfig{
		TLSCertFile: cfg.Server.GRPCTLSCertFile,
		TLSKeyFile:  cfg.Server.GRPCTLSKeyFile,
		Reflection:  cfg.Server.GRPCReflection,
	}, handler, jwtSvc, logger)
	if err != nil {
		return err
	}

	// HTTP server: JSON API, probes and metrics.
	httpServer := &http.Server{
		Addr: cfg.HTTPAddr(),
		Handler: rest.NewRouter(rest.RouterConfig{
			ServiceName:  cfg.ServiceName,
			Service:      handler,
			JWT:          jwtSvc,
			Metrics:      metricsHandler,
			Checks:       checks,
			RateLimitRPS: cfg.Server.HTTPRateLimitRPS,
			Logger:       logger,
		}),
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		if err := grpcServer.ListenAndServe(cfg.GRPCAddr()); err != nil {
			errCh <- fmt.Errorf("gRPC server error: %w", err)
		}
	}()

	go func() {
		logger.Info("HTTP server starting", "addr", cfg.HTTPAddr())
		if err := httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- fmt.Errorf("HTTP server error: %w", err)
		}
	}()

	var runErr error
	select {
	case <-ctx.Done():
		logger.Info("shutdown signal received")
	case runErr = <-errCh:
		logger.Error("server error", "error", runErr)
		cancel()
	}

	grpcServer.GracefulStop()

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer shutdownCancel()
	if err := httpServer.Shutdown(shutdownCtx); err != nil {
		logger.Error("HTTP server shutdown error", "error", err)
	}

	logger.Info("lending-service stopped")
	return runErr
}

// newJWTService builds a validation-only JWT service: a public key is
// preferred, the shared secret is the fallback.
func newJWTService(cfg config.AuthConfig) (*auth.JWTService, error) {
	jwtCfg := auth.JWTConfig{Issuer: cfg.Issuer}
	switch {
	case cfg.JWTPublicKey != "":
		jwtCfg.PublicKeyPEM = cfg.JWTPublicKey
	case cfg.JWTPublicKeyFile != "":
		key, err := auth.LoadKeyFromFile(cfg.JWTPublicKeyFile)
		if err != nil {
			return nil, fmt.Errorf("load JWT public key: %w", err)
		}
		jwtCfg.PublicKeyPEM = key
	default:
		jwtCfg.Secret = cfg.JWTSecret
	}

	svc, err := auth.NewJWTService(jwtCfg)
	if err != nil {
		return nil, fmt.Errorf("init JWT service: %w", err)
	}
	return svc, nil
}
