package main

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/ricare/lending/internal/domain/port"
	"github.com/ricare/lending/internal/infrastructure/config"
	pgrepo "github.com/ricare/lending/internal/infrastructure/persistence/postgres"
	"github.com/ricare/lending/internal/infrastructure/persistence/sqlite"
	"github.com/ricare/lending/pkg/events"
	pkgpostgres "github.com/ricare/lending/pkg/postgres"
)

// storage is the set of repositories backing one storage driver.
type storage struct {
	loans        port.LoanRepository
	wallets      port.WalletRepository
	disbursement port.DisbursementStore
	sequence     port.SequenceGenerator
	outbox       events.OutboxRepository
	ping         func(ctx context.Context) error
	close        func()
}

func openStorage(ctx context.Context, cfg config.Config, logger *slog.Logger) (*storage, error) {
	switch cfg.StorageDriver {
	case config.StorageSQLite:
		return openSQLite(cfg, logger)
	default:
		return openPostgres(ctx, cfg, logger)
	}
}

func openPostgres(ctx context.Context, cfg config.Config, logger *slog.Logger) (*storage, error) {
	pgCfg := pkgpostgres.Config{
		Host:     cfg.DB.Host,
		Port:     cfg.DB.Port,
		User:     cfg.DB.User,
		Password: cfg.DB.Password,
		Database: cfg.DB.Name,
		SSLMode:  cfg.DB.SSLMode,
		MaxConns: int32(cfg.DB.MaxConns),
	}

	dbCtx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()

	pool, err := pkgpostgres.NewPool(dbCtx, pgCfg)
	if err != nil {
		return nil, fmt.Errorf("connect to database: %w", err)
	}
	logger.Info("connected to database", "host", cfg.DB.Host, "database", cfg.DB.Name)

	if err := pkgpostgres.RunMigrations(pgCfg.DSN(), pgrepo.Migrations, pgrepo.MigrationsDir); err != nil {
		pool.Close()
		return nil, fmt.Errorf("run migrations: %w", err)
	}

	return &storage{
		loans:        pgrepo.NewLoanRepo(pool),
		wallets:      pgrepo.NewWalletRepo(pool),
		disbursement: pgrepo.NewDisbursementStore(pool),
		sequence:     pgrepo.NewSequenceRepo(pool),
		outbox:       pgrepo.NewOutboxRepo(pool),
		ping:         func(ctx context.Context) error { return pkgpostgres.HealthCheck(ctx, pool) },
		close:        pool.Close,
	}, nil
}

func openSQLite(cfg config.Config, logger *slog.Logger) (*storage, error) {
	store, err := sqlite.Open(cfg.SQLitePath)
	if err != nil {
		return nil, err
	}
	logger.Info("opened sqlite store", "path", cfg.SQLitePath)

	return &storage{
		loans:        sqlite.NewLoanRepo(store),
		wallets:      sqlite.NewWalletRepo(store),
		disbursement: sqlite.NewDisbursementStore(store),
		sequence:     store,
		outbox:       store,
		ping:         store.Ping,
		close:        func() { _ = store.Close() },
	}, nil
}
