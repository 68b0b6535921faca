// Command server runs the gatekeeper web application.
//
//	@title			Gatekeeper
//	@version		1.0
//	@description	Session-based account registration, login and gated pages.
//	@BasePath		/
package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	goredis "github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"

	"github.com/sessionauth/gatekeeper/internal/api"
	"github.com/sessionauth/gatekeeper/internal/api/metrics"
	"github.com/sessionauth/gatekeeper/internal/api/middleware"
	"github.com/sessionauth/gatekeeper/internal/core/ports"
	"github.com/sessionauth/gatekeeper/internal/core/service"
	"github.com/sessionauth/gatekeeper/internal/infrastructure/db/mongo"
	"github.com/sessionauth/gatekeeper/internal/infrastructure/db/redis"
	"github.com/sessionauth/gatekeeper/internal/infrastructure/password"
	"github.com/sessionauth/gatekeeper/internal/infrastructure/queue"
	"github.com/sessionauth/gatekeeper/internal/infrastructure/session"
	"github.com/sessionauth/gatekeeper/internal/pkg/config"
	"github.com/sessionauth/gatekeeper/pkg/logger"
)

const (
	shutdownTimeout = 10 * time.Second
	sweepInterval   = time.Minute
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		// The logger is not up yet; fall back to a bare one on stderr.
		l := zerolog.New(os.Stderr).With().Timestamp().Logger()
		l.Fatal().Err(err).Msg("load config")
	}

	log := logger.Init(logger.Options{
		Level:   cfg.LogLevel,
		Pretty:  !cfg.IsProduction(),
		Service: "gatekeeper",
	})

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	mongoClient, db, err := mongo.Connect(ctx, mongo.Config{
		URI:      cfg.Mongo.URI,
		Database: cfg.Mongo.Database,
		Timeout:  cfg.Mongo.Timeout,
	})
	if err != nil {
		log.Fatal().Err(err).Msg("connect to mongodb")
	}
	log.Info().Str("database", cfg.Mongo.Database).Msg("connected to mongodb")

	users := mongo.NewUserRepository(db)
	auditRepo := mongo.NewAuditRepository(db)
	if err := users.EnsureIndexes(ctx); err != nil {
		log.Fatal().Err(err).Msg("ensure user indexes")
	}
	if err := auditRepo.EnsureIndexes(ctx); err != nil {
		log.Fatal().Err(err).Msg("ensure audit indexes")
	}

	var (
		store ports.SessionStore
		rdb   *goredis.Client
	)
	switch cfg.Session.Store {
	case config.SessionStoreRedis:
		rdb, err = redis.Connect(ctx, redis.Config{
			Addr:     cfg.Redis.Addr,
			Password: cfg.Redis.Password,
			DB:       cfg.Redis.DB,
		})
		if err != nil {
			log.Fatal().Err(err).Msg("connect to redis")
		}
		store = redis.NewSessionStore(rdb)
	default:
		mem := session.NewMemoryStore()
		go mem.RunSweeper(ctx, sweepInterval)
		store = mem
	}
	log.Info().Str("store", cfg.Session.Store).Dur("ttl", cfg.Session.TTL).Msg("session store ready")

	workerCtx, stopWorkers := context.WithCancel(context.Background())
	dispatcher := queue.NewDispatcher(cfg.Audit.Workers, service.NewAuditService(auditRepo, log), log)
	dispatcher.Start(workerCtx)

	sessions := service.NewSessionManager(store, cfg.Session.TTL, cfg.Session.Sliding, log)
	auth := service.NewAuthService(users, password.NewBcryptHasher(password.DefaultCost), sessions, dispatcher, log)

	e, err := api.NewRouter(api.Dependencies{
		Auth:     auth,
		Sessions: sessions,
		Cookie: middleware.CookieConfig{
			Name:   cfg.Session.CookieName,
			Secret: cfg.SessionSecret,
			TTL:    cfg.Session.TTL,
			Secure: cfg.Session.CookieSecure,
		},
		SlidingSessions: cfg.Session.Sliding,
		RateLimit:       cfg.Auth.RateLimit,
		RateBurst:       cfg.Auth.RateBurst,
		Mongo:           mongoClient,
		Redis:           rdb,
		Registry:        metrics.Registry,
		Log:             log,
	})
	if err != nil {
		log.Fatal().Err(err).Msg("build router")
	}

	srv := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           e,
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		log.Info().Str("port", cfg.Port).Str("env", cfg.Env).Msg("server starting")
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatal().Err(err).Msg("server error")
		}
	}()

	<-ctx.Done()
	log.Info().Msg("shutting down server")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("server forced shutdown")
	}

	stopWorkers()
	dispatcher.Wait()

	if err := mongoClient.Disconnect(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("disconnect mongodb")
	}
	if rdb != nil {
		if err := rdb.Close(); err != nil {
			log.Error().Err(err).Msg("close redis")
		}
	}

	log.Info().Msg("server stopped")
}
