package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/ericfitz/personnel/api"
	"github.com/ericfitz/personnel/api/models"
	"github.com/ericfitz/personnel/auth"
	"github.com/ericfitz/personnel/auth/db"
	"github.com/ericfitz/personnel/internal/config"
	"github.com/ericfitz/personnel/internal/events"
	"github.com/ericfitz/personnel/internal/secrets"
	"github.com/ericfitz/personnel/internal/slogging"
	"github.com/ericfitz/personnel/internal/telemetry"
	"github.com/gin-gonic/gin"
)

func main() {
	configFile, generateConfig, err := config.ParseFlags(os.Args[1:])
	if err != nil {
		os.Exit(2)
	}
	if generateConfig {
		if err := config.GenerateExampleConfig(os.Stdout); err != nil {
			fmt.Fprintln(os.Stderr, err)
			os.Exit(1)
		}
		return
	}

	if err := run(configFile); err != nil {
		slogging.Get().Error("Server exited: %v", err)
		_ = slogging.Get().Close()
		os.Exit(1)
	}
}

func run(configFile string) error {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	cfg, err := config.Load(configFile)
	if err != nil {
		return err
	}

	provider, err := secrets.NewProvider(ctx, cfg.Secrets)
	if err != nil {
		return fmt.Errorf("secrets provider: %w", err)
	}
	defer func() { _ = provider.Close() }()
	if err := secrets.Apply(ctx, provider, cfg); err != nil {
		return err
	}

	if err := slogging.Initialize(cfg.LoggerConfig()); err != nil {
		return fmt.Errorf("logger: %w", err)
	}
	logger := slogging.Get()
	defer func() { _ = logger.Close() }()
	logger.Info("Starting %s", api.GetVersionString())

	if !cfg.Logging.IsDev {
		gin.SetMode(gin.ReleaseMode)
	}

	tel, err := telemetry.NewService(ctx, telemetry.FromRuntimeConfig(cfg.Telemetry))
	if err != nil {
		return fmt.Errorf("telemetry: %w", err)
	}
	defer func() {
		shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
		defer cancel()
		if err := tel.Shutdown(shutdownCtx); err != nil {
			logger.Warn("Telemetry shutdown: %v", err)
		}
	}()
	metrics, err := telemetry.NewDomainMetrics(tel.Meter())
	if err != nil {
		return fmt.Errorf("domain metrics: %w", err)
	}
	telemetryMiddleware, err := tel.Middleware()
	if err != nil {
		return fmt.Errorf("telemetry middleware: %w", err)
	}

	gormDB, err := db.NewGormDB(cfg.GormConfig())
	if err != nil {
		return err
	}
	defer func() { _ = gormDB.Close() }()
	if cfg.Database.AutoMigrate {
		if err := gormDB.AutoMigrate(models.AllModels()...); err != nil {
			return err
		}
	}

	deps := api.ServerDeps{
		DB:             gormDB.DB(),
		Metrics:        metrics,
		DatabasePinger: gormDB,
		CacheTTL:       cfg.Redis.CacheTTL,
		Keys:           db.NewRedisKeyBuilder(cfg.Redis.KeyPrefix),
	}

	var revocations *auth.TokenRevocationList
	if cfg.Redis.Enabled {
		redisDB, err := db.NewRedisDB(cfg.RedisConfig())
		if err != nil {
			return err
		}
		defer func() { _ = redisDB.Close() }()
		deps.Redis = redisDB
		deps.RedisPinger = redisDB
		revocations = auth.NewTokenRevocationList(redisDB, deps.Keys)
	}

	publisher, err := newPublisher(cfg.Events)
	if err != nil {
		return err
	}
	defer func() { _ = publisher.Close() }()
	deps.Publisher = publisher

	var tokens *auth.TokenService
	if cfg.Auth.JWT.Secret != "" {
		tokens, err = auth.NewTokenService(cfg.Auth.JWT)
		if err != nil {
			return err
		}
	} else {
		logger.Warn("No JWT secret configured; requests are served anonymously")
	}
	authenticate := auth.NewMiddleware(tokens, revocations, cfg.Auth.Required).Authenticate()

	router := api.NewRouter(api.NewServer(deps), tel.MetricsHandler(), authenticate, telemetryMiddleware...)

	srv := &http.Server{
		Addr:         cfg.ListenAddress(),
		Handler:      router,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
		IdleTimeout:  cfg.Server.IdleTimeout,
	}

	serveErr := make(chan error, 1)
	go func() {
		logger.Info("Listening on %s (tls=%t)", srv.Addr, cfg.Server.TLSEnabled)
		var err error
		if cfg.Server.TLSEnabled {
			err = srv.ListenAndServeTLS(cfg.Server.TLSCertFile, cfg.Server.TLSKeyFile)
		} else {
			err = srv.ListenAndServe()
		}
		if !errors.Is(err, http.ErrServerClosed) {
			serveErr <- err
		}
		close(serveErr)
	}()

	select {
	case err := <-serveErr:
		return err
	case <-ctx.Done():
		logger.Info("Shutdown signal received")
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("http shutdown: %w", err)
	}
	logger.Info("Server stopped")
	return nil
}

func newPublisher(cfg config.EventsConfig) (events.Publisher, error) {
	if cfg.NATSURL == "" {
		slogging.Get().Info("Event publishing disabled (no NATS URL)")
		return &events.NoopPublisher{}, nil
	}
	pub, err := events.NewNATSPublisher(cfg.NATSURL, cfg.SubjectPrefix)
	if err != nil {
		return nil, err
	}
	slogging.Get().Info("Publishing events to %s", cfg.NATSURL)
	return pub, nil
}
