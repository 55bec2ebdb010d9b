package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/rogerio-castellano/inventory-changelog/internal/auth"
	"github.com/rogerio-castellano/inventory-changelog/internal/config"
	"github.com/rogerio-castellano/inventory-changelog/internal/db"
	api "github.com/rogerio-castellano/inventory-changelog/internal/http"
	"github.com/rogerio-castellano/inventory-changelog/internal/http/ban"
	"github.com/rogerio-castellano/inventory-changelog/internal/http/handlers"
	rl "github.com/rogerio-castellano/inventory-changelog/internal/http/rate_limiter"
	"github.com/rogerio-castellano/inventory-changelog/internal/inventory"
	"github.com/rogerio-castellano/inventory-changelog/internal/logger"
	"github.com/rogerio-castellano/inventory-changelog/internal/metrics"
	"github.com/rogerio-castellano/inventory-changelog/internal/redissvc"
	"github.com/rogerio-castellano/inventory-changelog/internal/repo"
	"golang.org/x/sync/errgroup"
)

// @title Inventory Change Log API
// @version 1.0
// @description REST API for managing inventory items and the audit trail of their quantity changes.
// @host localhost:8080
// @BasePath /
// @securityDefinitions.apikey BearerAuth
// @in header
// @name Authorization
func main() {
	configPath := flag.String("config", os.Getenv("INVENTORY_CONFIG"), "path to a YAML config file")
	flag.Parse()

	cfg, err := config.Load(*configPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "config: %v\n", err)
		os.Exit(1)
	}

	log := logger.New(cfg.App.Env)
	if err := run(cfg, log); err != nil {
		log.Error("server stopped", "err", err)
		os.Exit(1)
	}
}

func openStore(ctx context.Context, cfg config.Config, log *slog.Logger) (repo.Store, func(), error) {
	if cfg.Storage.Driver == "memory" {
		log.Warn("using in-memory storage, data is lost on restart")
		return repo.NewInMemoryStore(), func() {}, nil
	}

	database, err := db.Connect(ctx, cfg.Postgres.DSN)
	if err != nil {
		return nil, nil, fmt.Errorf("could not connect to database: %w", err)
	}
	if cfg.Postgres.Migrate {
		if err := db.Migrate(ctx, database); err != nil {
			_ = database.Close()
			return nil, nil, err
		}
	}
	return repo.NewPostgresStore(database), func() { _ = database.Close() }, nil
}

func openSessions(ctx context.Context, cfg config.Config, log *slog.Logger) (auth.SessionStore, func(), error) {
	if cfg.Redis.Addr == "" {
		log.Warn("redis.addr not set, sessions are kept in memory")
		return auth.NewMemorySessionStore(), func() {}, nil
	}
	rdb, err := redissvc.Connect(ctx, cfg.Redis.Addr, cfg.Redis.Password, cfg.Redis.DB)
	if err != nil {
		return nil, nil, err
	}
	return redissvc.NewSessionStore(rdb), func() { _ = rdb.Close() }, nil
}

func run(cfg config.Config, log *slog.Logger) error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	store, closeStore, err := openStore(ctx, cfg, log)
	if err != nil {
		return err
	}
	defer closeStore()

	sessions, closeSessions, err := openSessions(ctx, cfg, log)
	if err != nil {
		return err
	}
	defer closeSessions()

	var m *metrics.Metrics
	invOpts := []inventory.Option{
		inventory.WithLogger(log),
		inventory.WithLowStockThreshold(cfg.Inventory.LowStockThreshold),
	}
	if cfg.Metrics.Enabled {
		m = metrics.New()
		invOpts = append(invOpts, inventory.WithObserver(m))
	}
	invSvc := inventory.NewService(store, invOpts...)
	authSvc := auth.NewService(store.Users(), sessions,
		auth.NewTokenManager(cfg.Auth.JWTSecret, cfg.Auth.TokenTTL),
		auth.WithBcryptCost(cfg.Auth.BcryptCost),
		auth.WithLogger(log),
	)

	if cfg.Admin.Username != "" {
		created, err := authSvc.EnsureStaffUser(ctx, cfg.Admin.Username, cfg.Admin.Email, cfg.Admin.Password)
		if err != nil {
			return err
		}
		if created {
			log.Info("staff user created", "username", cfg.Admin.Username)
		}
	}

	bans := ban.NewTracker(5, 10*time.Minute, 15*time.Minute, log)
	limiter := rl.New(cfg.RateLimit.RPS, cfg.RateLimit.Burst).WithStrikes(bans)

	srv := &http.Server{
		Addr: cfg.HTTP.Addr,
		Handler: api.NewRouter(api.RouterConfig{
			Server:  handlers.NewServer(invSvc, authSvc, log),
			Auth:    authSvc,
			Limiter: limiter,
			Metrics: m,
			Logger:  log,
		}),
		ReadTimeout:  cfg.HTTP.ReadTimeout,
		WriteTimeout: cfg.HTTP.WriteTimeout,
	}

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		log.Info("server running", "addr", cfg.HTTP.Addr, "storage", cfg.Storage.Driver)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})
	g.Go(func() error {
		<-gctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.HTTP.ShutdownTimeout)
		defer cancel()
		log.Info("shutting down")
		return srv.Shutdown(shutdownCtx)
	})
	g.Go(func() error { return limiter.CleanupLoop(gctx) })
	g.Go(func() error { return bans.SummaryLoop(gctx, 24*time.Hour) })

	return g.Wait()
}
