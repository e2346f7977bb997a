// Command supportd serves the support desk HTTP API: FAQ search, per-client
// view history and feedback, and the escalation triage queue.
//
// @title       Support Desk API
// @version     1.0
// @description FAQ knowledge base and escalation triage queue.
// @BasePath    /api
package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
	"gorm.io/gorm"

	"github.com/tbourn/go-support-desk/internal/catalog"
	"github.com/tbourn/go-support-desk/internal/config"
	httpapi "github.com/tbourn/go-support-desk/internal/http"
	"github.com/tbourn/go-support-desk/internal/kvstore"
	"github.com/tbourn/go-support-desk/internal/observability"
	"github.com/tbourn/go-support-desk/internal/repo"
	"github.com/tbourn/go-support-desk/internal/services"
	"github.com/tbourn/go-support-desk/internal/sysutil"
)

// version is set at build time with -ldflags "-X main.version=...".
var version = "dev"

func main() {
	// A missing .env is fine; the environment wins over the file.
	_ = godotenv.Load()

	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintln(os.Stderr, "config:", err)
		os.Exit(2)
	}

	sysutil.SetLogLevel(cfg.LogLevel)
	log := sysutil.NewLogger(os.Stdout, cfg.LogPretty, cfg.OTEL.ServiceName)

	if err := run(cfg, log); err != nil {
		log.Fatal().Err(err).Msg("supportd stopped")
	}
}

func run(cfg config.Config, log zerolog.Logger) error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	shutdownOTel, err := observability.SetupOTel(ctx, cfg.OTEL, version, log)
	if err != nil {
		return fmt.Errorf("otel: %w", err)
	}
	defer func() {
		if err := observability.Flush(shutdownOTel, 5*time.Second); err != nil {
			log.Warn().Err(err).Msg("otel shutdown")
		}
	}()

	db, err := repo.OpenSQLite(cfg.DBPath, repo.WithTracing(cfg.OTEL.Enabled), repo.WithSilentLogger())
	if err != nil {
		return fmt.Errorf("open db: %w", err)
	}
	if err := repo.AutoMigrate(db); err != nil {
		return fmt.Errorf("migrate: %w", err)
	}
	if cfg.SeedDemoData {
		if err := repo.SeedDemoData(ctx, db, time.Now()); err != nil {
			return fmt.Errorf("seed: %w", err)
		}
		log.Info().Msg("demo data seeded")
	}

	cat, err := loadCatalog(cfg.CatalogPath)
	if err != nil {
		return err
	}
	log.Info().Int("items", len(cat.Items())).Int("categories", len(cat.Categories())).Msg("catalog loaded")

	stores, closeStores, err := historyStores(ctx, cfg, db)
	if err != nil {
		return err
	}
	defer closeStores()
	log.Info().Str("backend", cfg.HistoryBackend).Int("cap", cfg.HistoryCap).Msg("view history ready")

	gin.SetMode(cfg.GinMode)
	r := gin.New()
	httpapi.RegisterRoutes(r, httpapi.Deps{DB: db, Catalog: cat, Stores: stores, Log: log}, cfg)

	go purgeIdempotency(ctx, db, cfg.IdempotencyPurge, log)

	srv := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           r,
		ReadTimeout:       cfg.ReadTimeout,
		ReadHeaderTimeout: cfg.ReadHeaderTimeout,
		WriteTimeout:      cfg.WriteTimeout,
		IdleTimeout:       cfg.IdleTimeout,
		MaxHeaderBytes:    cfg.MaxHeaderBytes,
	}

	errCh := make(chan error, 1)
	go func() {
		log.Info().Str("addr", srv.Addr).Str("base_path", cfg.APIBasePath).Str("version", version).Msg("listening")
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	log.Info().Msg("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("http shutdown: %w", err)
	}
	if sqlDB, err := db.DB(); err == nil {
		_ = sqlDB.Close()
	}
	return nil
}

// loadCatalog reads path, or the embedded catalog when path is empty.
func loadCatalog(path string) (*catalog.Catalog, error) {
	cat, err := catalog.LoadFile(path)
	if err != nil {
		return nil, fmt.Errorf("catalog %q: %w", path, err)
	}
	return cat, nil
}

// historyStores returns the per-client store factory for the configured
// backend and a func releasing its resources.
func historyStores(ctx context.Context, cfg config.Config, db *gorm.DB) (services.StoreFactory, func(), error) {
	switch cfg.HistoryBackend {
	case "redis":
		client, err := kvstore.NewRedisClient(ctx, cfg.RedisURL)
		if err != nil {
			return nil, nil, err
		}
		return redisStores(client), func() { _ = client.Close() }, nil
	case "memory":
		mem := kvstore.NewMemoryStore()
		return func(clientID string) kvstore.Store {
			return kvstore.WithPrefix(mem, clientID+":")
		}, func() {}, nil
	case "sqlite", "":
		return func(clientID string) kvstore.Store {
			return repo.NewKVStore(db, "client:"+clientID)
		}, func() {}, nil
	default:
		return nil, nil, fmt.Errorf("unknown history backend %q", cfg.HistoryBackend)
	}
}

func redisStores(client *redis.Client) services.StoreFactory {
	return func(clientID string) kvstore.Store {
		return kvstore.NewRedisStore(client, "supportdesk:client:"+clientID)
	}
}

// purgeIdempotency deletes expired idempotency keys every interval until ctx
// is done. A zero interval disables the sweep.
func purgeIdempotency(ctx context.Context, db *gorm.DB, every time.Duration, log zerolog.Logger) {
	if every <= 0 {
		return
	}
	t := time.NewTicker(every)
	defer t.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case now := <-t.C:
			n, err := repo.PurgeExpiredIdempotency(ctx, db, now)
			if err != nil {
				log.Warn().Err(err).Msg("idempotency purge failed")
				continue
			}
			if n > 0 {
				log.Debug().Int64("deleted", n).Msg("idempotency keys purged")
			}
		}
	}
}
