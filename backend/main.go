package main

import (
	"context"
	"log"
	"time"

	"examprep/backend/config"
	"examprep/backend/lock"
	"examprep/backend/metrics"
	"examprep/backend/routes"
	"examprep/backend/utils"
)

func main() {
	// Load configuration
	cfg, err := config.LoadConfig()
	if err != nil {
		log.Fatalf("Error loading config: %v", err)
	}

	// Initialize logger
	logger, err := utils.InitLogger(cfg.LogMode)
	if err != nil {
		log.Fatalf("Error initializing logger: %v", err)
	}
	defer logger.Sync()

	// Initialize database
	db, err := utils.InitDB(cfg)
	if err != nil {
		logger.Fatal("Error initializing database", "error", err)
	}

	// Analytics locks span instances only when redis is configured
	var locker lock.Locker = lock.NewLocalLocker()
	if cfg.RedisAddr != "" {
		rdb, err := lock.DialRedis(context.Background(), cfg.RedisAddr)
		if err != nil {
			logger.Fatal("Error connecting to redis", "addr", cfg.RedisAddr, "error", err)
		}
		defer rdb.Close()
		locker = lock.NewRedisLocker(rdb, "exam:lock:", 10*time.Second)
		logger.Info("using redis analytics locks", "addr", cfg.RedisAddr)
	}

	m := metrics.New()

	app := routes.NewApp(cfg, logger, m)
	routes.SetupRoutes(app, routes.Deps{
		DB:      db,
		Cfg:     cfg,
		Logger:  logger,
		Metrics: m,
		Locker:  locker,
	})

	// Start server
	logger.Info("server starting", "port", cfg.ServerPort, "env", cfg.AppEnv)
	if err := app.Listen(":" + cfg.ServerPort); err != nil {
		logger.Fatal("server stopped", "error", err)
	}
}
