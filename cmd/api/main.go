package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"github.com/atharvakonge/paper-trader/internal/auth"
	"github.com/atharvakonge/paper-trader/internal/config"
	"github.com/atharvakonge/paper-trader/internal/db"
	"github.com/atharvakonge/paper-trader/internal/handlers"
	"github.com/atharvakonge/paper-trader/internal/ledger"
	"github.com/atharvakonge/paper-trader/internal/log"
	"github.com/atharvakonge/paper-trader/internal/marketdata"
)

func main() {
	configPath := flag.String("config", os.Getenv("CONFIG_PATH"), "path to a yaml config file")
	flag.Parse()

	cfg, err := config.Load(*configPath)
	if err != nil {
		fmt.Fprintln(os.Stderr, "Failed to load config:", err)
		os.Exit(1)
	}
	if err := log.Configure(cfg.Log.Level, cfg.Log.Encoding); err != nil {
		fmt.Fprintln(os.Stderr, "Failed to configure logger:", err)
		os.Exit(1)
	}
	defer log.Sync()

	// quantities and prices go out as JSON numbers
	decimal.MarshalJSONWithoutQuotes = true

	if cfg.IsProduction() {
		gin.SetMode(gin.ReleaseMode)
	}

	ctx := context.Background()

	store, closeStore, err := openStore(ctx, cfg)
	if err != nil {
		log.Fatal("Failed to open storage", zap.Error(err))
	}
	defer closeStore()

	var market marketdata.Gateway = marketdata.NewTiingo(cfg.Tiingo)
	if cfg.Tiingo.APIKey == "" {
		log.Warn("API_KEY not set, market data requests will fail")
	}
	if cfg.Redis.URL != "" {
		opt, err := redis.ParseURL(cfg.Redis.URL)
		if err != nil {
			log.Fatal("Invalid REDIS_URL", zap.Error(err))
		}
		rdb := redis.NewClient(opt)
		defer rdb.Close()
		market = marketdata.NewCachedGateway(market, rdb, cfg.Redis.HistoryTTL)
		log.Info("price history cache enabled", zap.Duration("ttl", cfg.Redis.HistoryTTL))
	}

	hub := handlers.NewHub()
	defer hub.Close()

	h := handlers.New(handlers.Deps{
		Ledger:        ledger.NewService(store, market, hub, cfg.Orders.HistoryLimit),
		Accounts:      auth.NewService(store, cfg.Auth.BcryptCost),
		Sessions:      auth.NewSessionManager(cfg.Session, cfg.IsProduction()),
		Market:        market,
		Store:         store,
		Hub:           hub,
		HistoryWindow: cfg.Tiingo.HistoryWindow,
	})

	srv := &http.Server{
		Addr:         ":" + cfg.HTTP.Port,
		Handler:      handlers.NewRouter(h, cfg.HTTP.StaticDir),
		ReadTimeout:  cfg.HTTP.ReadTimeout,
		WriteTimeout: cfg.HTTP.WriteTimeout,
	}

	go func() {
		log.Info("Server starting", zap.String("addr", "http://localhost:"+cfg.HTTP.Port), zap.String("storage", cfg.Storage.Driver))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatal("Failed to start server", zap.Error(err))
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info("shutting down")
	shutdownCtx, cancel := context.WithTimeout(ctx, cfg.HTTP.ShutdownTimeout)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error("shutdown error", zap.Error(err))
	}
}

func openStore(ctx context.Context, cfg *config.Config) (db.Store, func(), error) {
	if cfg.Storage.Driver == config.DriverMemory {
		log.Warn("using in-memory storage, data will not persist")
		return db.NewMemoryStore(), func() {}, nil
	}

	conn, err := db.Open(ctx, cfg.Postgres)
	if err != nil {
		return nil, nil, err
	}
	closeConn := func() {
		if err := conn.Close(); err != nil {
			log.Error("close database", zap.Error(err))
		}
	}

	if cfg.Postgres.AutoMigrate {
		if err := db.Migrate(conn); err != nil {
			closeConn()
			return nil, nil, err
		}
	}

	return db.NewPostgresStore(conn), closeConn, nil
}

