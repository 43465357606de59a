package main

import (
	"context"
	"fmt"
	"log"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"github.com/jwebster45206/fallhouse/internal/config"
	"github.com/jwebster45206/fallhouse/internal/handlers"
	"github.com/jwebster45206/fallhouse/internal/logger"
	"github.com/jwebster45206/fallhouse/internal/middleware"
	"github.com/jwebster45206/fallhouse/internal/session"
	backends "github.com/jwebster45206/fallhouse/internal/storage"
	"github.com/jwebster45206/fallhouse/pkg/storage"
)

// purgeInterval is how often expired records are swept from the bolt file.
const purgeInterval = time.Hour

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatal(err)
	}

	log := logger.Setup(cfg)

	log.Info("Starting Fallhouse",
		"port", cfg.Port,
		"environment", cfg.Environment,
		"session_backend", cfg.SessionBackend,
		"climb_branch", cfg.ClimbBranch)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	store, backend, err := newSessionStore(ctx, cfg, log)
	if err != nil {
		log.Error("Failed to initialize session store", "error", err, "backend", cfg.SessionBackend)
		os.Exit(1)
	}
	log.Info("Session store ready", "backend", store.Name())

	places := handlers.Places{ClimbBranch: cfg.ClimbBranch}
	mux := handlers.NewRouter(
		handlers.NewGameHandler(store, places, log),
		handlers.NewHealthHandler(store, log),
		handlers.NewSessionHandler(store, log),
	)

	server := &http.Server{
		Addr:         ":" + cfg.Port,
		Handler:      middleware.Logger(log, mux),
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	go func() {
		log.Info("Server starting", "addr", server.Addr)
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Error("Server failed to start", "error", err)
			os.Exit(1)
		}
	}()

	// Wait for interrupt signal to gracefully shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info("Server is shutting down...")
	cancel()

	// Graceful shutdown with timeout
	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer shutdownCancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		log.Error("Server forced to shutdown", "error", err)
	}

	if backend != nil {
		if err := backend.Close(); err != nil {
			log.Error("Error closing session storage", "error", err)
		}
	}

	log.Info("Server exited")
}

// newSessionStore builds the configured session store. The returned backend is
// nil for the client-side stores; otherwise the caller must close it.
func newSessionStore(ctx context.Context, cfg *config.Config, log *slog.Logger) (session.Store, storage.Storage, error) {
	secret := []byte(cfg.SecretKey)
	opts := session.Options{
		CookieName: cfg.SessionCookie,
		MaxAge:     cfg.SessionMaxAge,
		Secure:     cfg.IsProduction(),
	}

	switch cfg.SessionBackend {
	case config.BackendCookie:
		return session.NewCookieStore(secret, opts), nil, nil

	case config.BackendJWT:
		return session.NewJWTStore(secret, opts), nil, nil

	case config.BackendRedis:
		redisStorage, err := backends.NewRedisStorage(cfg.RedisURL, log)
		if err != nil {
			return nil, nil, err
		}
		connCtx, connCancel := context.WithTimeout(ctx, 2*time.Minute)
		defer connCancel()
		if err := redisStorage.WaitForConnection(connCtx); err != nil {
			_ = redisStorage.Close()
			return nil, nil, fmt.Errorf("connect to redis: %w", err)
		}
		return session.NewServerStore(config.BackendRedis, redisStorage, secret, opts), redisStorage, nil

	case config.BackendBolt:
		if err := os.MkdirAll(filepath.Dir(cfg.BoltPath), 0o755); err != nil {
			return nil, nil, fmt.Errorf("create bolt directory: %w", err)
		}
		boltStorage, err := backends.OpenBoltStorage(cfg.BoltPath, log)
		if err != nil {
			return nil, nil, err
		}
		go purgeExpired(ctx, boltStorage, log)
		return session.NewServerStore(config.BackendBolt, boltStorage, secret, opts), boltStorage, nil

	default:
		return nil, nil, fmt.Errorf("unsupported session backend %q", cfg.SessionBackend)
	}
}

// purgeExpired sweeps expired sessions until ctx is cancelled.
func purgeExpired(ctx context.Context, b *backends.BoltStorage, log *slog.Logger) {
	ticker := time.NewTicker(purgeInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			n, err := b.PurgeExpired(ctx)
			if err != nil {
				log.Warn("Failed to purge expired sessions", "error", err)
				continue
			}
			if n > 0 {
				log.Info("Purged expired sessions", "count", n)
			}
		}
	}
}
