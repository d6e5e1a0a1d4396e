package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"org-registry/internal/di"
	"org-registry/internal/organization/config"
	"org-registry/internal/shared/database"
	"org-registry/internal/shared/database/migrate"
	"org-registry/internal/shared/logger"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/joho/godotenv"
	"github.com/redis/go-redis/v9"
)

func main() {
	// Load environment variables from .env file
	if err := godotenv.Load(); err != nil {
		log.Printf("Warning: Could not load .env file: %v", err)
	}

	cfg, err := config.LoadConfig()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	appLogger := logger.NewLogger()
	appLogger.Info("Configuration loaded successfully")

	container := di.NewContainer()
	container.Logger = appLogger
	defer func() {
		if err := container.Close(); err != nil {
			appLogger.Error("Failed to close container: ", err)
		}
	}()

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	// Connect to Postgres
	poolCfg := database.DefaultPoolConfig(cfg.PostgresURL())
	poolCfg.MaxConns = cfg.DBMaxConns
	poolCfg.MinConns = cfg.DBMinConns
	poolCfg.MaxConnLifetime = cfg.DBMaxConnLifetime
	poolCfg.MaxConnIdleTime = cfg.DBMaxConnIdleTime
	poolCfg.ConnectTimeout = cfg.DBConnectTimeout

	pool, err := database.Connect(ctx, poolCfg, appLogger)
	if err != nil {
		log.Fatalf("Failed to connect to Postgres: %v", err)
	}

	// Apply pending migrations before serving. The container entrypoint
	// normally runs them already; this keeps bare `go run` setups working.
	runner, err := migrate.NewRunner(pool, appLogger)
	if err != nil {
		log.Fatalf("Failed to load migrations: %v", err)
	}
	applied, err := runner.Up(ctx)
	if err != nil {
		log.Fatalf("Failed to apply migrations: %v", err)
	}
	if applied > 0 {
		appLogger.Info("Applied ", applied, " pending migrations")
	}

	// Optional Redis client for the lifecycle event stream
	var redisClient *redis.Client
	if cfg.EventsEnabled {
		redisClient = redis.NewClient(&redis.Options{
			Addr:     cfg.RedisAddr(),
			Password: cfg.RedisPassword,
			DB:       cfg.RedisDB,
		})
		if err := redisClient.Ping(ctx).Err(); err != nil {
			appLogger.WithFields(map[string]interface{}{"error": err}).Warn("Redis unreachable, lifecycle events stay in-process")
			_ = redisClient.Close()
			redisClient = nil
		} else {
			appLogger.Info("Redis connection established")
		}
	}

	if err := container.InitializeOrganization(cfg, pool, redisClient); err != nil {
		log.Fatalf("Failed to initialize organization module: %v", err)
	}
	appLogger.Info("Organization module initialized successfully")

	app := fiber.New(fiber.Config{
		AppName:      "Organization Registry API v1.0",
		ReadTimeout:  30 * time.Second,
		WriteTimeout: 30 * time.Second,
		IdleTimeout:  60 * time.Second,
		ErrorHandler: func(c *fiber.Ctx, err error) error {
			appLogger.Error("HTTP Error: ", err)
			return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
				"error": "Internal Server Error",
			})
		},
	})

	app.Use(recover.New())
	app.Use(cors.New(cors.Config{
		AllowOrigins: "*",
		AllowMethods: "GET,POST,HEAD,PUT,DELETE,PATCH,OPTIONS",
		AllowHeaders: "Origin, Content-Type, Accept, Authorization",
	}))

	app.Get("/health", func(c *fiber.Ctx) error {
		healthCtx, cancel := context.WithTimeout(c.Context(), 5*time.Second)
		defer cancel()

		if err := container.HealthCheck(healthCtx); err != nil {
			appLogger.Error("Health check failed: ", err)
			return c.Status(fiber.StatusServiceUnavailable).JSON(fiber.Map{
				"status":  "UNHEALTHY",
				"error":   err.Error(),
				"message": "One or more services are unhealthy",
			})
		}

		return c.JSON(fiber.Map{
			"status":    "HEALTHY",
			"message":   "Organization Registry API is running",
			"timestamp": time.Now().UTC(),
		})
	})

	orgModule := container.GetOrganizationModule()
	orgModule.RegisterRoutes(app)
	appLogger.Info("Organization routes registered")

	serverAddr := cfg.ServerAddr()
	appLogger.Info("Starting HTTP server on ", serverAddr)

	serverShutdown := make(chan error, 1)
	go func() {
		serverShutdown <- app.Listen(serverAddr)
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

	select {
	case err := <-serverShutdown:
		if err != nil {
			log.Fatalf("Server startup failed: %v", err)
		}
	case sig := <-quit:
		appLogger.Info("Received shutdown signal: ", sig)

		shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
		defer cancel()

		if err := app.ShutdownWithContext(shutdownCtx); err != nil {
			appLogger.Error("Server forced to shutdown: ", err)
		}
		appLogger.Info("HTTP server stopped")
	}
}
