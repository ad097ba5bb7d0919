package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/ghostofweb/portfolio-api/internal/auth"
	"github.com/ghostofweb/portfolio-api/internal/background"
	"github.com/ghostofweb/portfolio-api/internal/config"
	"github.com/ghostofweb/portfolio-api/internal/database"
	"github.com/ghostofweb/portfolio-api/internal/handlers"
	middlewareCustom "github.com/ghostofweb/portfolio-api/internal/middleware"
	"github.com/ghostofweb/portfolio-api/internal/models"
	"github.com/ghostofweb/portfolio-api/internal/repositories"
	"github.com/ghostofweb/portfolio-api/internal/routes"
	"github.com/ghostofweb/portfolio-api/internal/services"
	pkgauth "github.com/ghostofweb/portfolio-api/pkg/auth"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
)

func main() {
	logger := slog.New(slog.NewJSONHandler(os.Stdout, nil))
	slog.SetDefault(logger)

	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		logger.Error("failed to load configuration", slog.Any("error", err))
		os.Exit(1)
	}

	logger.Info("configuration loaded", slog.String("env", cfg.Server.Env))

	// Initialize database
	db, err := database.NewConnection(&cfg.Database, logger)
	if err != nil {
		logger.Error("failed to connect to database", slog.Any("error", err))
		os.Exit(1)
	}
	defer db.Close()

	// Apply schema migrations
	migrateCtx, migrateCancel := context.WithTimeout(context.Background(), 60*time.Second)
	if err := db.Migrate(migrateCtx); err != nil {
		migrateCancel()
		logger.Error("failed to run migrations", slog.Any("error", err))
		os.Exit(1)
	}
	migrateCancel()

	// Initialize repositories
	userRepo := repositories.NewUserRepository(db)
	codeRepo := repositories.NewOneTimeCodeRepository(db)
	blogRepo := repositories.NewBlogRepository(db)

	// AWS SES email service
	emailService, err := services.NewAWSSESEmailService(cfg.Email.AWSRegion, cfg.Email.FromAddress, logger)
	if err != nil {
		logger.Error("failed to initialize email service", slog.Any("error", err))
		os.Exit(1)
	}

	// S3 image storage
	storageService, err := services.NewS3StorageService(cfg.Storage, logger)
	if err != nil {
		logger.Error("failed to initialize storage service", slog.Any("error", err))
		os.Exit(1)
	}

	// Initialize services
	codeService := services.NewOneTimeCodeService(codeRepo, emailService, logger, cfg.Auth.OTPTTL)
	userService := services.NewUserService(userRepo, codeService, emailService, logger, cfg.Server.FrontendURL, cfg.Auth.ResetTokenTTL)
	blogService := services.NewBlogService(blogRepo, storageService, logger)

	// Token manager
	tokenManager := auth.NewTokenManager(cfg.Auth.JWTSecret, cfg.Auth.TokenExpiry)

	// Initialize handlers
	userHandler := handlers.NewUserHandler(userService, tokenManager)
	blogHandler := handlers.NewBlogHandler(blogService)

	// Expired-code sweeper
	cleanupManager := background.NewCleanupManager(codeService, logger, cfg.Auth.OTPSweepInterval)

	// Bootstrap the master admin if configured
	bootCtx, bootCancel := context.WithTimeout(context.Background(), 10*time.Second)
	if err := ensureMasterUser(bootCtx, userRepo, cfg.Master, logger); err != nil {
		logger.Error("failed to ensure master user", slog.Any("error", err))
	}
	bootCancel()

	// Setup router
	router := chi.NewRouter()
	router.Use(middleware.RequestID)
	router.Use(middleware.RealIP)
	router.Use(middlewareCustom.SecurityHeaders(middlewareCustom.SecurityHeadersConfig{Env: cfg.Server.Env}))
	router.Use(middlewareCustom.CORS(middlewareCustom.DefaultCORSConfig(cfg.Server.AllowedOrigins)))
	router.Use(middlewareCustom.SecureLogger(logger))
	router.Use(middleware.Recoverer)
	router.Use(middleware.Timeout(60 * time.Second))

	// Register routes
	routes.RegisterRoutes(router, userHandler, blogHandler, tokenManager, userRepo)

	// Health check with database
	router.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
		defer cancel()

		w.Header().Set("Content-Type", "application/json")
		if err := db.HealthCheck(ctx); err != nil {
			w.WriteHeader(http.StatusServiceUnavailable)
			w.Write([]byte(`{"status":"unhealthy","database":"down"}`))
			return
		}

		w.WriteHeader(http.StatusOK)
		w.Write([]byte(`{"status":"healthy","database":"up"}`))
	})

	// Create server
	server := &http.Server{
		Addr:         ":" + cfg.Server.Port,
		Handler:      router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	// Start sweeper
	cleanupCtx, cleanupCancel := context.WithCancel(context.Background())
	defer cleanupCancel()

	go cleanupManager.Start(cleanupCtx)

	// Start server
	go func() {
		logger.Info("starting server", slog.String("addr", server.Addr))
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Error("server error", slog.Any("error", err))
			os.Exit(1)
		}
	}()

	// Graceful shutdown
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)
	<-sigChan

	logger.Info("shutdown signal received")

	cleanupCancel()
	cleanupManager.Stop()

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer shutdownCancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		logger.Error("server shutdown error", slog.Any("error", err))
		os.Exit(1)
	}

	logger.Info("server stopped gracefully")
}

// ensureMasterUser creates the removal-exempt master admin when
// MASTER_EMAIL and MASTER_PASSWORD are set and the account is absent
func ensureMasterUser(ctx context.Context, userRepo *repositories.UserRepository, cfg config.MasterConfig, logger *slog.Logger) error {
	if cfg.Email == "" || cfg.Password == "" {
		logger.Info("no MASTER_EMAIL or MASTER_PASSWORD set, skipping master user creation")
		return nil
	}

	_, err := userRepo.GetByUsername(ctx, cfg.Username)
	if err == nil {
		logger.Info("master user already exists")
		return nil
	}
	if !errors.Is(err, models.ErrNotFound) {
		return fmt.Errorf("failed to check if master exists: %w", err)
	}

	passwordHash, err := pkgauth.HashPassword(cfg.Password)
	if err != nil {
		return fmt.Errorf("failed to hash master password: %w", err)
	}

	master := &models.User{
		Username:     cfg.Username,
		Name:         cfg.Username,
		Position:     "Master Admin",
		Email:        cfg.Email,
		PasswordHash: passwordHash,
		IsMaster:     true,
	}

	if _, err := userRepo.Create(ctx, master); err != nil {
		return fmt.Errorf("failed to create master user: %w", err)
	}

	logger.Info("master user created successfully", slog.String("username", cfg.Username))
	return nil
}
