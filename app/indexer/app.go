package indexer

import (
	"context"
	"errors"
	"io"
	"net/http"
	"time"

	"github.com/robfig/cron/v3"
	"github.com/votascan/votascan/pkg/config"
	"github.com/votascan/votascan/pkg/db/rounds"
	"github.com/votascan/votascan/pkg/feed"
	"github.com/votascan/votascan/pkg/indexer"
	"github.com/votascan/votascan/pkg/logging"
	"github.com/votascan/votascan/pkg/metrics"
	"github.com/votascan/votascan/pkg/notify"
	"go.uber.org/zap"
)

// App wires the ingestion pipeline: feed source, dispatcher, store, metrics,
// and the optional notifier.
type App struct {
	Logger   *zap.Logger
	Config   *config.Config
	Store    rounds.Store
	Source   feed.Source
	Indexer  *indexer.Indexer
	Notifier *notify.Notifier

	cron       *cron.Cron
	metricsSrv *http.Server
}

// Initialize builds the application from a config file path.
func Initialize(ctx context.Context, cfgPath string) *App {
	logger, err := logging.New()
	if err != nil {
		panic(err)
	}

	cfg, err := config.Load(cfgPath)
	if err != nil {
		logger.Fatal("Unable to load config", zap.Error(err))
	}

	var store rounds.Store
	if cfg.Store.ClickHouseDSN != "" {
		db, err := rounds.New(ctx, logger, cfg.Store.ClickHouseDSN, cfg.Store.Database)
		if err != nil {
			logger.Fatal("Unable to initialize store", zap.Error(err))
		}
		store = db
	} else {
		logger.Warn("No ClickHouse DSN configured, using in-memory store")
		store = rounds.NewMemory()
	}

	notifier, err := notify.New(ctx, logger, cfg.Redis.Addr, cfg.Redis.Password, cfg.Redis.DB)
	if err != nil {
		logger.Warn("Redis unavailable, notifications disabled", zap.Error(err))
		notifier = nil
	}

	source, err := newSource(cfg, logger)
	if err != nil {
		logger.Fatal("Unable to initialize feed source", zap.Error(err))
	}

	m := metrics.Init()
	ix := indexer.New(store, logger, m, notifier, indexer.Options{
		CodeIDs: cfg.Indexer.CodeIDs,
		Denom:   cfg.Indexer.Denom,
	})

	return &App{
		Logger:   logger,
		Config:   cfg,
		Store:    store,
		Source:   source,
		Indexer:  ix,
		Notifier: notifier,
	}
}

func newSource(cfg *config.Config, logger *zap.Logger) (feed.Source, error) {
	if cfg.Indexer.ReplayPath != "" {
		logger.Info("Replaying feed dump", zap.String("path", cfg.Indexer.ReplayPath))
		return feed.OpenReplay(cfg.Indexer.ReplayPath)
	}

	interval := 5 * time.Second
	if cfg.Chain.PollInterval != "" {
		parsed, err := time.ParseDuration(cfg.Chain.PollInterval)
		if err != nil {
			return nil, err
		}
		interval = parsed
	}
	logger.Info("Connecting to chain",
		zap.String("rpc", cfg.Chain.RPCURL),
		zap.Uint64("startHeight", cfg.Chain.StartHeight))
	return feed.NewComet(cfg.Chain.RPCURL, cfg.Chain.StartHeight, interval, nil, logger)
}

// Start runs the pipeline until the feed is exhausted or the context is
// canceled. Fatal processing errors abort the whole run; there is no
// partial-item recovery by design.
func (a *App) Start(ctx context.Context) {
	a.startMetricsServer()
	a.startProgressReporter(ctx)

	err := a.run(ctx)
	switch {
	case err == nil:
		a.Logger.Info("Feed exhausted, shutting down")
	case errors.Is(err, context.Canceled):
		a.Logger.Info("Shutdown requested")
	default:
		a.Stop()
		a.Logger.Fatal("Pipeline aborted", zap.Error(err))
	}

	a.Stop()
}

// run drains the feed one item at a time. Each handler runs to completion,
// store writes included, before the next item is pulled; this loop is the
// whole concurrency model.
func (a *App) run(ctx context.Context) error {
	for {
		item, err := a.Source.Next(ctx)
		if errors.Is(err, io.EOF) {
			return nil
		}
		if err != nil {
			return err
		}

		switch {
		case item.Instantiate != nil:
			err = a.Indexer.HandleInstantiate(ctx, item.Instantiate)
		case item.Message != nil:
			err = a.Indexer.HandleMessage(ctx, item.Message)
		case item.Event != nil:
			err = a.Indexer.HandleEvent(ctx, item.Event)
		}
		if err != nil {
			metrics.Init().Error()
			return err
		}
	}
}

func (a *App) startMetricsServer() {
	addr := a.Config.HTTP.MetricsAddr
	if addr == "" {
		return
	}
	mux := http.NewServeMux()
	mux.Handle("/metrics", metrics.Handler())
	a.metricsSrv = &http.Server{Addr: addr, Handler: mux, ReadHeaderTimeout: 3 * time.Second}
	a.Logger.Info("Serving metrics", zap.String("addr", addr))
	go func() {
		if err := a.metricsSrv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			a.Logger.Warn("Metrics server stopped", zap.Error(err))
		}
	}()
}

// startProgressReporter logs the ingestion watermark once a minute, enough
// to see a stalled feed in the logs without watching metrics.
func (a *App) startProgressReporter(ctx context.Context) {
	a.cron = cron.New()
	_, err := a.cron.AddFunc("@every 1m", func() {
		height, err := a.Store.LatestHeight(ctx)
		if err != nil {
			a.Logger.Warn("Unable to read ingestion watermark", zap.Error(err))
			return
		}
		a.Logger.Info("Ingestion progress", zap.Uint64("height", height))
	})
	if err != nil {
		a.Logger.Warn("Unable to schedule progress reporter", zap.Error(err))
		return
	}
	a.cron.Start()
}

// Stop releases resources in reverse dependency order.
func (a *App) Stop() {
	if a.cron != nil {
		a.cron.Stop()
	}
	if a.metricsSrv != nil {
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		_ = a.metricsSrv.Shutdown(shutdownCtx)
	}
	_ = a.Source.Close()
	_ = a.Notifier.Close()
	if err := a.Store.Close(); err != nil {
		a.Logger.Warn("Error closing store", zap.Error(err))
	}
}
