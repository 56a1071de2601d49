// File: cmd/app/main.go
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/rs/zerolog"

	"github.com/Aliiiqbp/OverUnder/internal/application"
	"github.com/Aliiiqbp/OverUnder/internal/config"
	"github.com/Aliiiqbp/OverUnder/internal/domain"
	"github.com/Aliiiqbp/OverUnder/internal/domain/ports/repository"
	aiAdapters "github.com/Aliiiqbp/OverUnder/internal/infra/adapters/ai"
	pg "github.com/Aliiiqbp/OverUnder/internal/infra/db/postgres"
	"github.com/Aliiiqbp/OverUnder/internal/infra/db/sqlite"
	adminhttp "github.com/Aliiiqbp/OverUnder/internal/infra/http"
	"github.com/Aliiiqbp/OverUnder/internal/infra/logging"
	"github.com/Aliiiqbp/OverUnder/internal/infra/metrics"
	red "github.com/Aliiiqbp/OverUnder/internal/infra/redis"
	"github.com/Aliiiqbp/OverUnder/internal/infra/security"
	"github.com/Aliiiqbp/OverUnder/internal/infra/store"
	"github.com/Aliiiqbp/OverUnder/internal/infra/worker"
	"github.com/Aliiiqbp/OverUnder/internal/usecase"
)

var version = "dev"

func main() {
	// ---- CLI flags ----
	cfgPath := flag.String("config", "config.yaml", "path to YAML config file")
	devMode := flag.Bool("dev", false, "enable developer mode (console logs, verbose errors)")
	name := flag.String("name", "", "log in with this display name")
	email := flag.String("email", "", "log in with this e-mail (skips the prompt)")
	flag.Parse()

	cfg, err := config.LoadConfig(*cfgPath, *devMode)
	if err != nil {
		fmt.Fprintf(os.Stderr, "config: %v\n", err)
		os.Exit(1)
	}
	logger := logging.New(cfg.Log, cfg.Runtime.Dev)
	if err := run(cfg, logger, *name, *email); err != nil {
		logger.Error().Err(err).Msg("exiting")
		os.Exit(1)
	}
}

func run(cfg *config.Config, logger *zerolog.Logger, name, email string) error {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	metrics.MustRegister()
	metrics.SetBuildInfo(version)

	// ---- Store ----
	kv, health, closeStore, err := openStore(ctx, cfg, logger)
	if err != nil {
		return err
	}
	defer closeStore()

	// ---- Commit queue ----
	var queue usecase.Queue
	if cfg.Persistence.Async {
		pool := worker.NewPool(1, 64, logger)
		pool.Start(context.Background())
		defer pool.Stop()
		queue = pool
	}

	// ---- AI ----
	channels, err := aiAdapters.NewChannelFactory(ctx, &cfg.AI, logger)
	if err != nil {
		return fmt.Errorf("ai: %w", err)
	}

	// ---- Use cases ----
	userUC := usecase.NewUserUseCase(kv, logger, cfg.Runtime.Dev)
	sessionUC := usecase.NewSessionUseCase(kv, logger)
	committer := usecase.NewCommitter(sessionUC, queue, logger)
	extractor := usecase.NewReportExtractor(logger)
	chatUC := usecase.NewConversationUseCase(committer, extractor, channels, cfg.AI.RequestTimeout, logger)
	app := application.NewApp(userUC, sessionUC, chatUC, committer, logger)

	// ---- Admin HTTP ----
	if cfg.Admin.Port > 0 {
		admin := adminhttp.NewAdminServer(cfg.Admin.Port, metrics.Gatherer(), health, logger)
		go func() {
			if err := admin.Start(); err != nil {
				logger.Error().Err(err).Msg("admin http stopped")
			}
		}()
		defer func() {
			shutCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancel()
			_ = admin.Shutdown(shutCtx)
		}()
	}

	// ---- Console ----
	c := newConsole(app, os.Stdin, os.Stdout)
	if email != "" {
		if _, err := app.Login(ctx, name, email); err != nil {
			return err
		}
	} else if _, err := app.Restore(ctx); err != nil {
		if !errors.Is(err, domain.ErrNotLoggedIn) {
			return err
		}
		if err := c.login(ctx); err != nil {
			return err
		}
	}
	err = c.run(ctx)
	logger.Info().Msg("shutdown requested")
	return err
}

// openStore builds the configured KV backend, then applies the key prefix
// and encryption-at-rest. The health check targets the backend itself.
func openStore(ctx context.Context, cfg *config.Config, logger *zerolog.Logger) (repository.KVStore, adminhttp.HealthFunc, func(), error) {
	var (
		kv      repository.KVStore
		closeFn = func() {}
	)
	switch cfg.Store.Driver {
	case "memory":
		kv = store.NewMemoryStore()
	case "file":
		fs, err := store.NewFileStore(cfg.Store.Path)
		if err != nil {
			return nil, nil, nil, err
		}
		kv = fs
	case "sqlite":
		db, err := sqlite.Open(ctx, cfg.Store.Path)
		if err != nil {
			return nil, nil, nil, err
		}
		kv = db
		closeFn = func() { _ = db.Close() }
	case "redis":
		client, err := red.NewClient(ctx, &cfg.Redis)
		if err != nil {
			return nil, nil, nil, fmt.Errorf("redis: %w", err)
		}
		kv = red.NewKVStore(client)
		closeFn = func() { _ = client.Close() }
	case "postgres":
		pool, err := pg.Connect(ctx, cfg.Database.URL, cfg.Database.MaxConns)
		if err != nil {
			return nil, nil, nil, err
		}
		pgStore := pg.NewKVStore(pool)
		if err := pgStore.EnsureSchema(ctx); err != nil {
			pool.Close()
			return nil, nil, nil, err
		}
		kv = pgStore
		closeFn = pool.Close
	default:
		return nil, nil, nil, fmt.Errorf("unsupported store driver %q", cfg.Store.Driver)
	}

	health := storeHealth(kv)
	kv = store.WithPrefix(kv, cfg.Store.KeyPrefix)
	if cfg.Security.EncryptionKey != "" {
		enc, err := security.NewEncryptionService(cfg.Security.EncryptionKey)
		if err != nil {
			closeFn()
			return nil, nil, nil, err
		}
		kv = security.NewEncryptedStore(kv, enc)
	}
	logger.Info().Str("driver", cfg.Store.Driver).Bool("encrypted", cfg.Security.EncryptionKey != "").Msg("store ready")
	return kv, health, closeFn, nil
}

// storeHealth pings backends that can be pinged and falls back to a read.
func storeHealth(kv repository.KVStore) adminhttp.HealthFunc {
	if p, ok := kv.(interface{ Ping(context.Context) error }); ok {
		return p.Ping
	}
	return func(ctx context.Context) error {
		_, err := kv.Get(ctx, repository.KeyCurrentUser)
		if err != nil && !errors.Is(err, domain.ErrNotFound) {
			return err
		}
		return nil
	}
}
