package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"time"

	"plenio/internal/amqp"
	"plenio/internal/backend"
	"plenio/internal/cache"
	"plenio/internal/cli"
	"plenio/internal/config"
	apphttp "plenio/internal/http"
	"plenio/internal/identity"
	"plenio/internal/log"
	"plenio/internal/services"
)

const (
	shutdownTimeout      = 30 * time.Second
	cacheCleanupInterval = 5 * time.Minute
	amqpConnectAttempts  = 3
)

func main() {
	cli.LoadEnvFile()
	cfg, logger := cli.LoadAndValidateConfig()

	ctx := context.Background()

	backendCfg, err := backend.FromAppConfig(cfg)
	if err != nil {
		logger.Error("Invalid backend configuration", log.FieldError, err)
		os.Exit(1)
	}
	result, err := backend.NewFactory(logger).CreateBackend(ctx, backendCfg)
	if err != nil {
		logger.Error("Failed to initialize backend", log.FieldError, err, "backend", cfg.DataBackend)
		os.Exit(1)
	}

	verifier, err := newVerifier(ctx, cfg, backendCfg)
	if err != nil {
		logger.Error("Failed to initialize identity verifier", log.FieldError, err, "provider", cfg.AuthProvider)
		os.Exit(1)
	}

	opts := services.Options{SummaryCacheTTL: cfg.SummaryCacheTTL}
	var events *amqp.Client
	if cfg.AMQPURL != "" {
		events, err = amqp.Connect(ctx, cfg.AMQPURL, cfg.AMQPExchange, amqpConnectAttempts)
		if err != nil {
			logger.WithComponent(log.ComponentAMQP).Warn("Failed to connect to AMQP, ledger events disabled", log.FieldError, err)
		} else {
			opts.Publisher = events
			logger.WithComponent(log.ComponentAMQP).Info("Publishing ledger events", "exchange", cfg.AMQPExchange)
		}
	}

	ledger := services.NewLedger(result.Store, opts)

	caches := cache.NewManager()
	if c := ledger.Cache(); c != nil {
		caches.Register(c)
		caches.StartCleanup(cacheCleanupInterval)
	}

	srv := apphttp.NewServer(apphttp.Config{
		Addr:               ":" + cfg.Port,
		AllowedOrigins:     cfg.AllowedOrigins(),
		RateLimitPerMinute: cfg.RateLimitPerMinute,
		Logger:             logger,
	}, ledger, verifier)

	runCtx, done := cli.GracefulShutdown(logger, shutdownTimeout, func(ctx context.Context) {
		if err := srv.Shutdown(ctx); err != nil {
			logger.Error("Server shutdown error", log.FieldError, err)
		}
		caches.Stop()
		if events != nil {
			if err := events.Close(); err != nil {
				logger.Warn("AMQP close error", log.FieldError, err)
			}
		}
		if err := result.Close(); err != nil {
			logger.Warn("Backend cleanup error", log.FieldError, err)
		}
	})

	logger.Info("Starting plenio server",
		"port", cfg.Port,
		"backend", cfg.DataBackend,
		"auth_provider", cfg.AuthProvider,
		log.FieldOperation, log.OpStartup)
	if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		logger.Error("Server error", log.FieldError, err, "port", cfg.Port)
		os.Exit(1)
	}

	cli.WaitForShutdown(runCtx, done)
	logger.Info("Server stopped gracefully")
}

func newVerifier(ctx context.Context, cfg *config.Config, backendCfg backend.Config) (identity.Verifier, error) {
	if cfg.AuthProvider == config.AuthJWT {
		return identity.NewHMACVerifier(cfg.JWTSecret, cfg.JWTIssuer, cfg.JWTAudience), nil
	}
	return identity.NewFirebaseVerifier(ctx, cfg.FirebaseProjectID, cfg.FirebaseCheckRevoked, backendCfg.ClientOptions()...)
}
