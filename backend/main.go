package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/Koloda55SA/RaDev-sub001/backend/config"
	"github.com/Koloda55SA/RaDev-sub001/backend/middleware"
	"github.com/Koloda55SA/RaDev-sub001/backend/notify"
	"github.com/Koloda55SA/RaDev-sub001/backend/profile"
	"github.com/Koloda55SA/RaDev-sub001/backend/routes"
	"github.com/Koloda55SA/RaDev-sub001/backend/utils"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"go.uber.org/zap"
)

func main() {
	// Load configuration
	cfg, err := config.LoadConfig()
	if err != nil {
		log.Fatalf("Error loading config: %v", err)
	}

	// Initialize logger
	logger, err := utils.InitLogger(utils.LoggerConfig{Env: cfg.Env, Format: cfg.LogFormat})
	if err != nil {
		log.Fatalf("Error initializing logger: %v", err)
	}
	defer func() { _ = logger.Sync() }()

	// Initialize database
	db, err := utils.InitDB(cfg, logger)
	if err != nil {
		logger.Fatal("Error initializing database", zap.Error(err))
	}
	defer func() { _ = utils.CloseDB(db) }()

	// Profile store
	var profiles profile.Store
	switch cfg.ProfileStore {
	case config.ProfileStoreRemote:
		profiles = profile.NewRemoteStore(cfg.ProfileAPIURL, cfg.ProfileAPITimeout)
	case config.ProfileStoreMemory:
		profiles = profile.NewMemoryStore()
	default:
		profiles = profile.NewDBStore(db)
	}
	logger.Info("profile store ready", zap.String("mode", cfg.ProfileStore))

	// Notifications
	notifiers := notify.Multi{notify.NewLogNotifier(logger)}
	if cfg.RedisAddr != "" {
		rdb, err := notify.DialRedis(cfg.RedisAddr)
		if err != nil {
			logger.Warn("redis unavailable, achievement events stay local", zap.String("addr", cfg.RedisAddr), zap.Error(err))
		} else {
			defer func() { _ = rdb.Close() }()
			notifiers = append(notifiers, notify.NewRedisNotifier(rdb, cfg.RedisChannel))
		}
	}

	// Create Fiber app
	app := fiber.New(fiber.Config{
		AppName:      "radev",
		ErrorHandler: utils.ErrorHandler(logger),
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
	})

	// Middleware
	app.Use(recover.New())
	app.Use(cors.New(cors.Config{
		AllowOrigins: "*",
		AllowHeaders: "Origin, Content-Type, Accept, Authorization, X-Request-ID",
	}))
	app.Use(middleware.RequestIDMiddleware())
	app.Use(middleware.LoggingMiddleware(logger))

	// Setup routes
	routes.SetupRoutes(app, routes.Deps{
		DB:       db,
		Cfg:      cfg,
		Log:      logger,
		Profiles: profiles,
		Notifier: notifiers,
	})

	go func() {
		if err := app.Listen(":" + cfg.ServerPort); err != nil {
			logger.Error("server stopped", zap.Error(err))
		}
	}()
	logger.Info("server started", zap.String("port", cfg.ServerPort), zap.String("env", cfg.Env))

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGTERM, syscall.SIGINT)
	<-quit

	logger.Info("shutting down server")
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := app.ShutdownWithContext(ctx); err != nil {
		logger.Error("shutdown", zap.Error(err))
	}
}
