package main

import (
	"context"
	"database/sql"
	"fmt"

	"go.uber.org/zap"

	"bank/internal/app/accounts"
	"bank/internal/config"
	"bank/internal/infrastructure/database"
	"bank/internal/outbox"
	"bank/internal/repository/accounts_repo"
	accounts_pg "bank/internal/repository/accounts_repo/postgres"
	"bank/internal/repository/memory"
	"bank/internal/repository/outbox_repo"
	outbox_pg "bank/internal/repository/outbox_repo/postgres"
)

type transactor interface {
	accounts.Transactor
	outbox.Transactor
}

// store bundles everything main needs from the selected STORE_DRIVER.
type store struct {
	tx       transactor
	accounts accounts_repo.AccountRepository
	outbox   outbox_repo.OutboxRepository
	pinger   interface{ Ping(ctx context.Context) error }
	close    func() error
}

type dbPinger struct {
	db *sql.DB
}

func (p dbPinger) Ping(ctx context.Context) error {
	return p.db.PingContext(ctx)
}

func openStore(ctx context.Context, cfg *config.Config, logger *zap.Logger) (*store, error) {
	switch cfg.StoreDriver {
	case config.StoreDriverMemory:
		logger.Warn("Using in-memory store, data will not survive a restart")
		mem := memory.NewStore()
		return &store{
			tx:       mem,
			accounts: mem.Accounts(),
			outbox:   mem.Outbox(),
			pinger:   mem,
			close:    func() error { return nil },
		}, nil

	case config.StoreDriverPostgres:
		logger.Info("Waiting for database to be available...")
		db, err := database.ConnectWithRetry(ctx, cfg.DBConfig(), cfg.DB.ConnectRetries, cfg.DB.ConnectRetryDelay, logger)
		if err != nil {
			return nil, err
		}

		logger.Info("Running database migrations...")
		if err := database.Migrate(db, logger); err != nil {
			db.Close()
			return nil, err
		}

		return &store{
			tx:       database.NewTransactor(db),
			accounts: accounts_pg.NewAccountRepository(db),
			outbox:   outbox_pg.NewOutboxRepository(db),
			pinger:   dbPinger{db: db},
			close:    db.Close,
		}, nil

	default:
		return nil, fmt.Errorf("unknown store driver %q", cfg.StoreDriver)
	}
}
