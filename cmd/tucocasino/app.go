package main

import (
	"context"
	"fmt"

	"github.com/fadedpez/tucocasino/internal/config"
	"github.com/fadedpez/tucocasino/internal/logging"
	"github.com/fadedpez/tucocasino/pkg/db"
	historyRepo "github.com/fadedpez/tucocasino/pkg/repositories/history"
	walletRepo "github.com/fadedpez/tucocasino/pkg/repositories/wallet"
	"github.com/fadedpez/tucocasino/pkg/rng"
	"github.com/fadedpez/tucocasino/pkg/scheduler"
	"github.com/fadedpez/tucocasino/pkg/services/blackjack"
	"github.com/fadedpez/tucocasino/pkg/services/jackpot"
	"github.com/fadedpez/tucocasino/pkg/services/slot"
	"github.com/fadedpez/tucocasino/pkg/services/statistics"
	"github.com/fadedpez/tucocasino/pkg/services/wallet"
	"github.com/shopspring/decimal"
)

// app is the fully wired casino for one command invocation
type app struct {
	cfg       *config.Config
	logger    *logging.Logger
	wallets   *wallet.Service
	history   historyRepo.Repository
	jackpots  *jackpot.Manager
	machine   *slot.Machine
	blackjack *blackjack.Engine
	stats     *statistics.Service
	scheduler *scheduler.Scheduler

	closers []func() error
}

type appOptions struct {
	logLevel        string
	seed            int64
	startingBalance decimal.Decimal
	statsWindow     int
}

// sourceFor returns the randomness for one component. A zero seed means
// crypto randomness; otherwise each component gets its own seeded stream.
func sourceFor(seed, stream int64) rng.Source {
	if seed == 0 {
		return rng.Crypto()
	}
	return rng.NewSeeded(seed + stream)
}

func newLogger(cfg *config.Config, override string) (*logging.Logger, error) {
	name := cfg.LogLevel
	if override != "" {
		name = override
	}
	level, err := logging.ParseLevel(name)
	if err != nil {
		return nil, err
	}
	return logging.NewLogger(level), nil
}

func newApp(ctx context.Context, opts appOptions) (*app, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}

	logger, err := newLogger(cfg, opts.logLevel)
	if err != nil {
		return nil, err
	}

	a := &app{
		cfg:       cfg,
		logger:    logger,
		scheduler: scheduler.NewScheduler(scheduler.WithLogger(logger)),
	}

	wallets, rounds, err := a.openStorage(ctx)
	if err != nil {
		a.Close()
		return nil, err
	}
	a.history = rounds

	walletOpts := []wallet.Option{wallet.WithLogger(logger)}
	if opts.startingBalance.IsPositive() {
		walletOpts = append(walletOpts, wallet.WithStartingBalance(opts.startingBalance))
	}
	a.wallets = wallet.NewService(wallets, walletOpts...)

	a.jackpots = jackpot.NewManager(jackpot.WithSource(sourceFor(opts.seed, 1)), jackpot.WithLogger(logger))
	pool, err := a.jackpots.Register(jackpot.Config{
		ID:               cfg.Jackpot.ID,
		SeedAmount:       cfg.Jackpot.SeedAmount,
		ResetAmount:      cfg.Jackpot.ResetAmount,
		ContributionRate: cfg.Jackpot.ContributionRate,
		MustHitBy:        cfg.Jackpot.MustHitBy,
	})
	if err != nil {
		a.Close()
		return nil, err
	}

	a.machine, err = slot.NewMachine(slot.Config{
		MachineID:   cfg.Slot.MachineID,
		Reels:       cfg.Slot.Reels,
		StripLength: cfg.Slot.StripLength,
		Rows:        cfg.Slot.Rows,
	}, pool, a.wallets,
		slot.WithSource(sourceFor(opts.seed, 2)),
		slot.WithHistory(rounds),
		slot.WithLogger(logger),
	)
	if err != nil {
		a.Close()
		return nil, err
	}

	a.blackjack = blackjack.NewEngine(a.wallets,
		blackjack.WithSource(sourceFor(opts.seed, 3)),
		blackjack.WithHistory(rounds),
		blackjack.WithLogger(logger),
	)
	a.scheduler.AddSessionReaping("blackjack", a.blackjack,
		cfg.Sessions.FinishedTTL, cfg.Sessions.AbandonedTTL, cfg.Sessions.ReapInterval)

	statsOpts := []statistics.Option{}
	if opts.statsWindow > 0 {
		statsOpts = append(statsOpts, statistics.WithWindow(opts.statsWindow))
	}
	a.stats = statistics.NewService(rounds, statsOpts...)

	return a, nil
}

// openStorage picks the wallet and history repositories for the configured
// storage type. Elasticsearch indexes rounds on top of the sqlite store.
func (a *app) openStorage(ctx context.Context) (walletRepo.Repository, historyRepo.Repository, error) {
	cfg := a.cfg
	if cfg.StorageType == config.StorageMemory {
		a.logger.Info("Using in-memory storage")
		return walletRepo.NewMemoryRepository(), historyRepo.NewMemoryRepository(), nil
	}

	conn, err := db.OpenSQLite(ctx, cfg.DBPath, a.logger)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to open database: %w", err)
	}
	a.closers = append(a.closers, conn.Close)
	a.logger.Info("Using SQLite storage at %s", cfg.DBPath)

	wallets := walletRepo.NewSQLiteRepository(conn)
	var rounds historyRepo.Repository = historyRepo.NewSQLiteRepository(conn)
	if cfg.StorageType != config.StorageElasticsearch {
		return wallets, rounds, nil
	}

	es, err := historyRepo.NewElasticsearchRepository(rounds, historyRepo.ElasticsearchConfig{
		URL:         cfg.Elasticsearch.URL,
		Username:    cfg.Elasticsearch.Username,
		Password:    cfg.Elasticsearch.Password,
		IndexPrefix: cfg.Elasticsearch.IndexPrefix,
	}, a.logger)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to connect to elasticsearch: %w", err)
	}
	a.logger.Info("Indexing rounds to Elasticsearch at %s", cfg.Elasticsearch.URL)
	a.scheduler.AddIndexPruning(es, cfg.Elasticsearch.RetentionMonths, cfg.Elasticsearch.PruneInterval)

	return wallets, es, nil
}

// Close stops background work and releases storage
func (a *app) Close() error {
	a.scheduler.Stop()

	var firstErr error
	for i := len(a.closers) - 1; i >= 0; i-- {
		if err := a.closers[i](); err != nil && firstErr == nil {
			firstErr = err
		}
	}
	a.closers = nil
	return firstErr
}
