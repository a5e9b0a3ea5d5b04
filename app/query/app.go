package query

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/votascan/votascan/app/query/controller"
	"github.com/votascan/votascan/pkg/config"
	"github.com/votascan/votascan/pkg/db/rounds"
	"github.com/votascan/votascan/pkg/logging"
	"go.uber.org/zap"
)

// App is the read-only query service over the indexed entities.
type App struct {
	Logger *zap.Logger
	Store  rounds.Store
	Server *http.Server
}

// Initialize builds the query service from a config file path.
func Initialize(ctx context.Context, cfgPath string) *App {
	logger, err := logging.New()
	if err != nil {
		panic(err)
	}

	cfg, err := config.Load(cfgPath)
	if err != nil {
		logger.Fatal("Unable to load config", zap.Error(err))
	}
	if cfg.Store.ClickHouseDSN == "" {
		logger.Fatal("query service requires store.clickhouse_dsn")
	}

	store, err := rounds.New(ctx, logger, cfg.Store.ClickHouseDSN, cfg.Store.Database)
	if err != nil {
		logger.Fatal("Unable to initialize store", zap.Error(err))
	}

	addr := cfg.HTTP.QueryAddr
	if addr == "" {
		addr = ":8080"
	}

	ctler := controller.New(store, logger)
	app := &App{
		Logger: logger,
		Store:  store,
		Server: &http.Server{
			Addr:              addr,
			Handler:           ctler.NewRouter(),
			ReadHeaderTimeout: 3 * time.Second,
		},
	}
	return app
}

// Start serves until the context is canceled.
func (a *App) Start(ctx context.Context) {
	a.Logger.Info("Starting query server", zap.String("addr", a.Server.Addr))
	go func() {
		if err := a.Server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			a.Logger.Fatal("Query server failed", zap.Error(err))
		}
	}()

	<-ctx.Done()
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	_ = a.Server.Shutdown(shutdownCtx)
	_ = a.Store.Close()
	a.Logger.Info("Query server stopped")
}
