package main

import (
	"context"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/sirupsen/logrus"

	config "github.com/thepotential/verification-service/configs"
	"github.com/thepotential/verification-service/internal/application/services"
	"github.com/thepotential/verification-service/internal/core/ports"
	"github.com/thepotential/verification-service/internal/infrastructure/db"
	"github.com/thepotential/verification-service/internal/infrastructure/email"
	"github.com/thepotential/verification-service/internal/infrastructure/health"
	"github.com/thepotential/verification-service/internal/infrastructure/httpserver"
	"github.com/thepotential/verification-service/internal/infrastructure/redis"
	"github.com/thepotential/verification-service/internal/infrastructure/repositories"
)

func main() {
	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		log.Fatal("Failed to load configuration:", err)
	}

	// Setup logger
	logger := logrus.New()
	if cfg.Log.Format == "text" {
		logger.SetFormatter(&logrus.TextFormatter{FullTimestamp: true})
	} else {
		logger.SetFormatter(&logrus.JSONFormatter{})
	}
	level, err := logrus.ParseLevel(cfg.Log.Level)
	if err != nil {
		logger.SetLevel(logrus.InfoLevel)
	} else {
		logger.SetLevel(level)
	}

	logger.Info("Starting verification service...")

	// Initialize database (apply pool settings from config)
	database, err := db.NewDatabase(&cfg.Database)
	if err != nil {
		logger.Fatal("Failed to connect to database:", err)
	}
	defer database.Close()

	logger.Info("Connected to database successfully")

	// Initialize Redis client
	redisClient, err := redis.NewRedisClient(&cfg.Redis)
	if err != nil {
		logger.Fatal("Failed to connect to Redis:", err)
	}
	defer redisClient.Close()

	logger.Info("Connected to Redis successfully")

	// Run migrations
	if err := database.Migrate("./migrations"); err != nil {
		logger.Warn("Failed to run migrations:", err)
	}

	// Select the token store backend. Redis expires tokens natively; the
	// Postgres store filters on read, so clear out stale rows at startup.
	var tokenStore ports.TokenStore
	switch cfg.Store.Backend {
	case "postgres":
		dbStore := repositories.NewTokenDBRepository(database, logger)
		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		if removed, err := dbStore.DeleteExpired(ctx); err != nil {
			logger.Warn("Failed to sweep expired tokens:", err)
		} else if removed > 0 {
			logger.Infof("Swept %d expired tokens", removed)
		}
		cancel()
		tokenStore = dbStore
	default:
		tokenStore = repositories.NewTokenRedisRepository(redisClient, logger)
	}
	logger.Infof("Using %s token store", cfg.Store.Backend)

	// Initialize account repository with a Redis read cache on top
	redisCache := redis.NewCache(redisClient, "appcache")
	accountRepo := repositories.NewCachingAccountRepository(
		repositories.NewAccountRepository(database, logger), redisCache, 3*time.Minute)

	rateLimitRepo := repositories.NewRateLimitRedisRepository(redisClient)

	// Select the transactional email provider
	var emailService ports.EmailService
	switch cfg.Email.Provider {
	case "resend":
		emailService, err = email.NewResendService(&cfg.Email, logger)
	default:
		emailService, err = email.NewSendGridService(&cfg.Email, logger)
	}
	if err != nil {
		logger.Fatal("Failed to initialize email service:", err)
	}
	logger.Infof("Using %s email provider", cfg.Email.Provider)

	// Wire services
	sessionService := services.NewSessionService(&cfg.JWT, logger)
	verificationService := services.NewVerificationService(tokenStore, accountRepo, sessionService, &cfg.Token, logger)
	accountService := services.NewAccountService(accountRepo, verificationService, emailService, logger)

	hcSlice := []ports.HealthChecker{health.NewDBHealthChecker(database), health.NewRedisHealthChecker(redisClient)}

	// Create server configuration
	serverConfig := &httpserver.ServerConfig{
		Host:         cfg.Server.Host,
		Port:         cfg.Server.Port,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
		IdleTimeout:  cfg.Server.IdleTimeout,
		TLSCertFile:  cfg.Server.TLSCertFile,
		TLSKeyFile:   cfg.Server.TLSKeyFile,
	}

	deps := httpserver.ServerDeps{
		AccountService:      accountService,
		VerificationService: verificationService,
		SessionService:      sessionService,
		RateLimit: httpserver.RateLimitConfig{
			Counter:           rateLimitRepo,
			RequestsPerMinute: cfg.RateLimit.RequestsPerMinute,
			Window:            cfg.RateLimit.Window,
			KeyPrefix:         cfg.RateLimit.KeyPrefix,
		},
		HealthCheckers: hcSlice,
	}

	server := httpserver.NewServer(serverConfig, logger, deps)

	// Start server in a goroutine
	go func() {
		if err := server.Start(); err != nil && err != http.ErrServerClosed {
			logger.Fatal("Failed to start server:", err)
		}
	}()

	logger.Infof("Server started on %s:%s", cfg.Server.Host, cfg.Server.Port)

	// Wait for interrupt signal to gracefully shutdown the server
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Info("Shutting down server...")

	// Graceful shutdown with timeout
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := server.Shutdown(ctx); err != nil {
		logger.Fatal("Server forced to shutdown:", err)
	}

	logger.Info("Server exited")
}
