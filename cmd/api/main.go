package main

import (
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/gofiber/websocket/v2"
	"go.uber.org/zap"

	"github.com/skillcompass/backend/internal/analyzer"
	"github.com/skillcompass/backend/internal/api/handlers"
	"github.com/skillcompass/backend/internal/cache/memory"
	rediscache "github.com/skillcompass/backend/internal/cache/redis"
	"github.com/skillcompass/backend/internal/demand/adzuna"
	"github.com/skillcompass/backend/internal/demand/stackexchange"
	"github.com/skillcompass/backend/internal/metrics"
	"github.com/skillcompass/backend/internal/middleware/ratelimit"
	"github.com/skillcompass/backend/internal/middleware/security"
	"github.com/skillcompass/backend/internal/middleware/validation"
	"github.com/skillcompass/backend/internal/storage/sqlite"
	"github.com/skillcompass/backend/pkg/config"
	appLogger "github.com/skillcompass/backend/pkg/logger"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		fmt.Printf("Failed to load config: %v\n", err)
		os.Exit(1)
	}

	err = appLogger.Init(cfg.Logging.Level, cfg.Logging.Format, cfg.Logging.OutputPath)
	if err != nil {
		fmt.Printf("Failed to initialize logger: %v\n", err)
		os.Exit(1)
	}
	defer appLogger.Sync()

	appLogger.Info("Starting SkillCompass API Server")

	metrics.Init()

	sqliteClient, err := sqlite.NewClient(cfg.SQLite.Path)
	if err != nil {
		appLogger.Fatal("Failed to create SQLite client", zap.Error(err))
	}
	defer sqliteClient.Close()

	if err := sqliteClient.InitSchema(); err != nil {
		appLogger.Fatal("Failed to initialize schema", zap.Error(err))
	}

	evidenceCache := memory.New(memory.Config{
		MaxSize:       cfg.Cache.MaxSize,
		DefaultTTL:    time.Duration(cfg.Cache.DefaultTTLMillis) * time.Millisecond,
		SweepInterval: time.Duration(cfg.Cache.SweepIntervalSec) * time.Second,
	})
	defer evidenceCache.Stop()

	// Redis only mirrors trend series; the service is fully functional
	// without it, so a connect failure downgrades instead of aborting.
	var trendCache *rediscache.Client
	if cfg.Redis.Enabled {
		trendCache, err = rediscache.NewClient(cfg.Redis.Host, cfg.Redis.Port, cfg.Redis.Password, cfg.Redis.DB)
		if err != nil {
			appLogger.Warn("Redis unavailable, trend L2 cache disabled", zap.Error(err))
			trendCache = nil
		} else {
			defer trendCache.Close()
		}
	}

	jobSource := adzuna.NewClient(cfg.Providers.Adzuna, evidenceCache)
	communitySource := stackexchange.NewClient(cfg.Providers.StackExchange, evidenceCache)

	engine := analyzer.NewEngine(jobSource, communitySource)

	app := fiber.New(fiber.Config{
		ReadTimeout:  time.Duration(cfg.Server.ReadTimeout) * time.Second,
		WriteTimeout: time.Duration(cfg.Server.WriteTimeout) * time.Second,
		BodyLimit:    cfg.Server.BodyLimit,
	})

	app.Use(recover.New())
	app.Use(logger.New())
	app.Use(cors.New(cors.Config{
		AllowOrigins: "*",
		AllowHeaders: "Origin, Content-Type, Accept, X-Client-ID, X-JobBoard-Credential, X-Community-Credential",
		AllowMethods: "GET, POST, OPTIONS",
	}))
	app.Use(security.HeadersMiddleware(security.HeadersConfig{}))

	limiter := ratelimit.New(ratelimit.Config{
		MaxRequestsPerMinute: cfg.RateLimit.MaxRequestsPerMinute,
		Logger:               appLogger.Log,
	})
	defer limiter.Stop()

	validateHandler := handlers.NewValidateHandler(engine, sqliteClient)
	trendHandler := handlers.NewTrendHandler(engine, trendCache)
	wsHandler := handlers.NewWebSocketHandler(engine)

	api := app.Group("/api/v1")
	api.Use(limiter.Middleware())
	api.Use(validation.Middleware(validation.Config{Logger: appLogger.Log}))

	api.Post("/validate", validateHandler.HandleValidate)
	api.Get("/validations", validateHandler.GetHistory)
	api.Get("/tracks", validateHandler.GetTracks)
	api.Get("/skills/:skill/trend", trendHandler.GetSkillTrend)

	app.Get("/metrics", metrics.MetricsHandler())

	app.Use("/ws", func(c *fiber.Ctx) error {
		if websocket.IsWebSocketUpgrade(c) {
			return c.Next()
		}
		return fiber.ErrUpgradeRequired
	})
	app.Get("/ws/validate", websocket.New(wsHandler.HandleConnection))

	api.Get("/health", func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{
			"status": "healthy",
			"time":   time.Now().Unix(),
		})
	})

	api.Get("/ready", func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{
			"status": "ready",
		})
	})

	addr := fmt.Sprintf("%s:%d", cfg.Server.Host, cfg.Server.Port)
	appLogger.Info("Server starting", zap.String("address", addr))

	go func() {
		if err := app.Listen(addr); err != nil {
			appLogger.Fatal("Server failed to start", zap.Error(err))
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, os.Interrupt, syscall.SIGTERM)
	<-quit

	appLogger.Info("Server shutting down gracefully...")
	app.Shutdown()
	appLogger.Info("Server stopped")
}
