package main

import (
	"context"
	"errors"
	"fmt"
	"log"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/joho/godotenv"
	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/01moynul/wholesale-shop/internal/auth"
	"github.com/01moynul/wholesale-shop/internal/config"
	"github.com/01moynul/wholesale-shop/internal/database"
	"github.com/01moynul/wholesale-shop/internal/handlers"
	"github.com/01moynul/wholesale-shop/internal/logging"
	"github.com/01moynul/wholesale-shop/internal/middleware"
	"github.com/01moynul/wholesale-shop/internal/observability"
	"github.com/01moynul/wholesale-shop/internal/routes"
)

func main() {
	// 0. --- Load Environment Variables (.env) ---
	envErr := godotenv.Load()

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	logger, err := logging.New(config.ServiceName, cfg.LogLevel, cfg.Development())
	if err != nil {
		log.Fatalf("Failed to create logger: %v", err)
	}
	defer func() { _ = logger.Sync() }()

	if envErr != nil {
		logger.Warn("Could not find or load .env file. Relying on system environment variables.")
	}

	if err := run(cfg, logger); err != nil {
		logger.Fatal("server stopped with error", zap.Error(err))
	}
	logger.Info("server has been gracefully shutdown")
}

// setupTracing is replaced in tests.
var setupTracing = observability.SetupTracing

func run(cfg *config.Config, logger *zap.Logger) error {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// 1. --- Tracing ---
	shutdownTracing, err := setupTracing(ctx, observability.TracingConfig{
		ServiceName: config.ServiceName,
		Environment: cfg.AppEnv,
		Endpoint:    cfg.OtelEndpoint,
		AuthHeader:  cfg.OtelAuthHeader,
		Insecure:    cfg.Development(),
	})
	if err != nil {
		return err
	}
	defer func() {
		flushCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := shutdownTracing(flushCtx); err != nil {
			logger.Warn("failed to flush traces", zap.Error(err))
		}
	}()
	if cfg.TracingEnabled() {
		logger.Info("tracing enabled", zap.String("endpoint", cfg.OtelEndpoint))
	}

	// 2. --- Database ---
	db, err := database.OpenDB(ctx, cfg.DB, logger)
	if err != nil {
		return fmt.Errorf("connect to database: %w", err)
	}
	defer func() {
		if err := db.Close(); err != nil {
			logger.Warn("failed to close database", zap.Error(err))
		}
	}()

	// 3. --- Application Setup ---
	secret := cfg.JWTSecret
	if secret == "" {
		// tokens issued with this secret stop working after a restart
		secret = uuid.NewString()
		logger.Warn("JWT_SECRET is not set; using a per-process secret")
	}
	app := handlers.New(db, auth.NewTokenManager(secret, cfg.JWTTTL), logger)
	app.UploadDir = cfg.UploadDir
	app.BaseURL = cfg.BaseURL

	if !cfg.Development() {
		gin.SetMode(gin.ReleaseMode)
	}
	router, err := routes.SetupRouter(app, routes.Options{
		AuthRequired: cfg.AuthRequired,
		CORSOrigin:   cfg.CORSOrigin,
		StaticDir:    cfg.StaticDir,
		Logger:       logger,
		AuthLimiter:  middleware.NewRateLimiter(10, 5, 10*time.Minute),
	})
	if err != nil {
		return err
	}

	srv := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           otelhttp.NewHandler(router, "http.server"),
		ReadHeaderTimeout: 10 * time.Second,
	}

	// --- Start Server ---
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		logger.Info("server started",
			zap.String("port", cfg.Port),
			zap.String("env", cfg.AppEnv),
			zap.Bool("auth_required", cfg.AuthRequired),
		)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("listen: %w", err)
		}
		return nil
	})
	g.Go(func() error {
		<-gctx.Done()
		logger.Info("server is gracefully shutting down, waiting for pending requests")

		shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			return fmt.Errorf("shutdown: %w", err)
		}
		return nil
	})
	return g.Wait()
}
