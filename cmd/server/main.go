package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"

	"loungebook/internal/api"
	"loungebook/internal/auth"
	"loungebook/internal/config"
	"loungebook/internal/directory"
	"loungebook/internal/events"
	"loungebook/internal/ledger"
	"loungebook/internal/metrics"
	"loungebook/internal/notify"
	"loungebook/internal/store"
)

func main() {
	_ = godotenv.Load()

	output := zerolog.ConsoleWriter{Out: os.Stdout, TimeFormat: time.RFC3339}
	logger := zerolog.New(output).With().Timestamp().Logger()

	cfg, err := config.Load(os.Getenv("LOUNGEBOOK_CONFIG_PATH"))
	if err != nil {
		logger.Fatal().Err(err).Msg("failed to load config")
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	recordStore, fileStore, err := buildStore(ctx, cfg, logger)
	if err != nil {
		logger.Fatal().Err(err).Str("backend", cfg.Storage.Backend).Msg("failed to open store")
	}

	bus := events.NewBus()
	metrics.Register()

	dir := directory.New(recordStore, bus, logger)
	led := ledger.New(recordStore, bus, logger)

	provider, err := buildAuthProvider(ctx, cfg, recordStore, logger)
	if err != nil {
		logger.Fatal().Err(err).Str("provider", cfg.Auth.Provider).Msg("failed to init auth provider")
	}

	if cfg.Telegram.Enabled {
		notifier, err := notify.NewTelegramNotifier(cfg.Telegram, logger)
		if err != nil {
			logger.Fatal().Err(err).Msg("failed to create telegram notifier")
		}
		notifier.Register(bus)
	}

	go startHealthServer(ctx, cfg.Monitoring.HealthCheckPort, recordStore, &logger)

	if cfg.Monitoring.PrometheusEnabled {
		go startMetricsServer(ctx, cfg.Monitoring.PrometheusPort, &logger)
	}

	if fileStore != nil && cfg.Backup.Enabled {
		backup := store.NewBackupService(fileStore, cfg.Backup, logger)
		go backup.Start(ctx)
	}

	server := api.NewServer(dir, led, provider, cfg.Server, logger)
	logger.Info().Str("backend", cfg.Storage.Backend).Msg("loungebook started")
	if err := server.Start(ctx); err != nil {
		logger.Fatal().Err(err).Msg("HTTP server error")
	}
}

// buildStore selects the record-store backend. The second return value
// is non-nil only for the file backend, which supports backups.
func buildStore(ctx context.Context, cfg *config.Config, logger zerolog.Logger) (store.Store, *store.FileStore, error) {
	switch cfg.Storage.Backend {
	case config.BackendFile:
		fs, err := store.NewFileStore(cfg.Storage.DataDir, logger)
		return fs, fs, err
	case config.BackendMemory:
		return store.NewMemoryStore(), nil, nil
	case config.BackendRedis:
		client := redis.NewClient(&redis.Options{
			Addr:     cfg.Redis.Address,
			Password: cfg.Redis.Password,
			DB:       cfg.Redis.DB,
		})
		rs, err := store.NewRedisStore(ctx, client)
		return rs, nil, err
	case config.BackendSQLite:
		ss, err := store.NewSQLiteStore(cfg.Storage.SQLitePath)
		return ss, nil, err
	default:
		return nil, nil, fmt.Errorf("unknown storage backend %q", cfg.Storage.Backend)
	}
}

func buildAuthProvider(ctx context.Context, cfg *config.Config, s store.Store, logger zerolog.Logger) (auth.Provider, error) {
	switch cfg.Auth.Provider {
	case config.AuthFirebase:
		return auth.NewFirebaseProvider(ctx, cfg.Auth.CredentialsFile, s, logger)
	default:
		return auth.NewLocalProvider(s, logger), nil
	}
}

func startHealthServer(ctx context.Context, port int, s store.Store, logger *zerolog.Logger) {
	mux := http.NewServeMux()
	mux.HandleFunc("/healthz", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ok"))
	})
	mux.HandleFunc("/readyz", func(w http.ResponseWriter, r *http.Request) {
		ctxProbe, cancel := context.WithTimeout(r.Context(), time.Second)
		defer cancel()
		if _, err := s.Load(ctxProbe, store.Bookings); err != nil {
			http.Error(w, "store not ready", http.StatusServiceUnavailable)
			return
		}
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ready"))
	})

	srv := &http.Server{Addr: fmt.Sprintf(":%d", port), Handler: mux}
	go func() {
		<-ctx.Done()
		ctxShutdown, cancel := context.WithTimeout(context.Background(), 3*time.Second)
		defer cancel()
		_ = srv.Shutdown(ctxShutdown)
	}()
	if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		logger.Error().Err(err).Msg("health server error")
	}
}

func startMetricsServer(ctx context.Context, port int, logger *zerolog.Logger) {
	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.Handler())

	srv := &http.Server{Addr: fmt.Sprintf(":%d", port), Handler: mux}
	go func() {
		<-ctx.Done()
		ctxShutdown, cancel := context.WithTimeout(context.Background(), 3*time.Second)
		defer cancel()
		_ = srv.Shutdown(ctxShutdown)
	}()
	if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		logger.Error().Err(err).Msg("metrics server error")
	}
}
