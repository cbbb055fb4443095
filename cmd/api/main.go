package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/cors"
	"github.com/golang-migrate/migrate/v4"
	_ "github.com/golang-migrate/migrate/v4/database/postgres"
	_ "github.com/golang-migrate/migrate/v4/source/file"
	"github.com/jackc/pgx/v5/pgxpool"

	httpAdapter "github.com/jobtrail/jobtrail-backend/internal/adapters/primary/http"
	mw "github.com/jobtrail/jobtrail-backend/internal/adapters/primary/http/middleware"
	"github.com/jobtrail/jobtrail-backend/internal/adapters/primary/websocket"
	"github.com/jobtrail/jobtrail-backend/internal/adapters/secondary/email"
	"github.com/jobtrail/jobtrail-backend/internal/adapters/secondary/postgres"
	"github.com/jobtrail/jobtrail-backend/internal/auth"
	"github.com/jobtrail/jobtrail-backend/internal/config"
	"github.com/jobtrail/jobtrail-backend/internal/core/services"
	"github.com/jobtrail/jobtrail-backend/internal/events"
	"github.com/jobtrail/jobtrail-backend/internal/infrastructure/logging"
)

func main() {
	// 1. Load Configuration
	cfg, err := config.Load()
	if err != nil {
		slog.Error("failed to load configuration", "error", err)
		os.Exit(1)
	}

	// 2. Initialize Structured Logger
	logger := logging.NewLogger(logging.Config{
		Level:       cfg.Logging.Level,
		Format:      cfg.Logging.Format,
		Output:      os.Stdout,
		ServiceName: cfg.App.Name,
		Environment: cfg.App.Environment,
	})

	logger.Info("starting service",
		"version", cfg.App.Version,
		"environment", cfg.App.Environment,
	)

	// 3. Initialize Database Pool
	ctx := context.Background()
	poolConfig, err := pgxpool.ParseConfig(cfg.Database.URL)
	if err != nil {
		logger.Error("failed to parse database URL", "error", err)
		os.Exit(1)
	}

	poolConfig.MaxConns = int32(cfg.Database.MaxOpenConns)
	poolConfig.MinConns = int32(cfg.Database.MinIdleConns)
	poolConfig.MaxConnLifetime = cfg.Database.ConnMaxLifetime
	poolConfig.MaxConnIdleTime = cfg.Database.ConnMaxIdleTime

	pool, err := pgxpool.NewWithConfig(ctx, poolConfig)
	if err != nil {
		logger.Error("failed to connect to database", "error", err)
		os.Exit(1)
	}
	defer pool.Close()

	if err := pool.Ping(ctx); err != nil {
		logger.Error("database ping failed", "error", err)
		os.Exit(1)
	}
	logger.Info("database connection established")

	// 4. Run Migrations
	if err := runMigrations(cfg.Database.MigrationsPath, cfg.Database.URL); err != nil {
		logger.Error("failed to run migrations", "error", err)
		os.Exit(1)
	}
	logger.Info("database schema up to date")

	// 5. Initialize Security & Real-time Components
	tokenManager := auth.NewTokenManager(cfg.JWT.Secret, cfg.JWT.AccessTokenTTL)

	bus := events.NewBus(cfg.Events.BufferSize, logger)

	hubCtx, stopHub := context.WithCancel(ctx)
	defer stopHub()
	hub := websocket.NewHub(bus, logger)
	go hub.Run(hubCtx)

	visitorLocation, err := time.LoadLocation(cfg.Visitor.Timezone)
	if err != nil {
		logger.Error("invalid visitor timezone", "timezone", cfg.Visitor.Timezone, "error", err)
		os.Exit(1)
	}

	// 6. Initialize Rate Limiters
	var generalRateLimiter, authRateLimiter *mw.RateLimiter
	if cfg.RateLimit.Enabled {
		generalCfg := mw.DefaultRateLimiterConfig()
		generalCfg.RequestsPerSecond = cfg.RateLimit.RequestsPerSecond
		generalCfg.BurstSize = cfg.RateLimit.BurstSize
		generalRateLimiter = mw.NewRateLimiter(generalCfg)

		authCfg := mw.AuthRateLimiterConfig()
		authCfg.RequestsPerSecond = cfg.RateLimit.AuthRPS
		authCfg.BurstSize = cfg.RateLimit.AuthBurst
		authRateLimiter = mw.NewRateLimiter(authCfg)
	}

	// 7. Dependency Injection (Wiring the Hexagon)

	// Error Handler
	errorHandler := httpAdapter.NewErrorHandler(logger)

	// Repositories (Secondary Adapters)
	userRepo := postgres.NewUserRepository(pool)
	appRepo := postgres.NewApplicationRepository(pool)
	commentRepo := postgres.NewCommentRepository(pool)
	visitorRepo := postgres.NewVisitorRepository(pool)

	// Notifier (Secondary Adapter)
	notifier := email.NewMockSMTPNotifier(cfg.Email.FromAddress, logger)

	// Services (Core)
	authService := services.NewAuthService(userRepo, notifier, logger)
	appService := services.NewApplicationService(appRepo, bus, logger)
	commentService := services.NewCommentService(commentRepo, appRepo, bus, logger)
	visitorService := services.NewVisitorService(visitorRepo, cfg.Visitor.Salt, visitorLocation, services.SystemClock(), logger)

	// Handlers (Primary Adapters)
	authHandler := httpAdapter.NewAuthHandler(authService, tokenManager, errorHandler, logger)
	appHandler := httpAdapter.NewApplicationHandler(appService, commentService, errorHandler, logger)
	commentHandler := httpAdapter.NewCommentHandler(commentService, errorHandler, logger)
	visitorHandler := httpAdapter.NewVisitorHandler(visitorService, errorHandler, logger)
	sseHandler := httpAdapter.NewSSEHandler(bus, cfg.Events.KeepAliveInterval, logger)
	wsHandler := httpAdapter.NewWebSocketHandler(hub, cfg, logger)
	uploadHandler := httpAdapter.NewUploadHandler(cfg.Upload.Dir, cfg.Upload.MaxBytes, errorHandler, logger)
	contactHandler := httpAdapter.NewContactHandler(notifier, cfg.Email.ContactTo, errorHandler, logger)
	healthHandler := httpAdapter.NewHealthHandler(pool, cfg.App.Version)

	// 8. Setup Router
	r := chi.NewRouter()

	// Global middleware
	r.Use(mw.RequestID)
	r.Use(mw.RequestLogger(logger))
	r.Use(mw.RecoveryLogger(logger))
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   cfg.Server.AllowedOrigins,
		AllowedMethods:   []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type"},
		AllowCredentials: true,
		MaxAge:           300,
	}))

	if generalRateLimiter != nil {
		r.Use(generalRateLimiter.Middleware)
	}

	// Health check endpoints (outside /api for standard probe paths)
	healthHandler.RegisterRoutes(r)

	// API routes
	r.Route("/api", func(r chi.Router) {
		// Public auth routes with stricter rate limiting
		r.Group(func(r chi.Router) {
			if authRateLimiter != nil {
				r.Use(authRateLimiter.Middleware)
			}
			r.Route("/auth", authHandler.RegisterRoutes)
		})

		// Public visitor-facing routes
		r.Post("/visit", visitorHandler.HandleRecordVisit)
		r.Get("/events", sseHandler.HandleStream)
		r.Get("/ws", wsHandler.ServeHTTP)
		r.Post("/contact", contactHandler.HandleContact)

		r.Route("/public/applications", func(r chi.Router) {
			appHandler.RegisterPublicRoutes(r)
			r.Route("/{applicationID}/comments", commentHandler.RegisterPublicRoutes)
		})

		// Protected REST routes
		r.Group(func(r chi.Router) {
			r.Use(mw.JWTMiddleware(tokenManager))
			r.Route("/applications", appHandler.RegisterRoutes)
			r.Get("/comments/recent", commentHandler.HandleRecentComments)
			r.Post("/upload", uploadHandler.HandleUpload)
		})
	})

	// Uploaded files are served as-is under /uploads/.
	uploadsDir := http.Dir(cfg.Upload.Dir)
	r.Handle("/uploads/*", http.StripPrefix("/uploads/", http.FileServer(uploadsDir)))

	// 9. Start Server with Graceful Shutdown
	srv := &http.Server{
		Addr:         cfg.Server.Port,
		Handler:      r,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
		IdleTimeout:  cfg.Server.IdleTimeout,
	}

	go func() {
		logger.Info("server starting", "port", cfg.Server.Port)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("server error", "error", err)
			os.Exit(1)
		}
	}()

	// Wait for interrupt signal
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	sig := <-quit

	logger.Info("shutdown signal received", "signal", sig.String())

	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("server shutdown error", "error", err)
		os.Exit(1)
	}

	// Closing the bus unblocks any remaining SSE loops and the hub.
	bus.Shutdown()
	stopHub()

	logger.Info("server shutdown complete")
}

// runMigrations applies pending migrations from dir against the database.
func runMigrations(dir, databaseURL string) error {
	absPath, err := filepath.Abs(dir)
	if err != nil {
		return err
	}

	mig, err := migrate.New("file://"+absPath, databaseURL)
	if err != nil {
		return err
	}
	defer mig.Close()

	if err := mig.Up(); err != nil && !errors.Is(err, migrate.ErrNoChange) {
		return err
	}
	return nil
}
