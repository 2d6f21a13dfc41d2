package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-redis/redis/v8"
	"github.com/sirupsen/logrus"

	"github.com/gravitas-games/crimeboss/internal/config"
	"github.com/gravitas-games/crimeboss/internal/logging"
	"github.com/gravitas-games/crimeboss/internal/server"
	"github.com/gravitas-games/crimeboss/internal/storage"
	"github.com/gravitas-games/crimeboss/pkg/crafting"
	"github.com/gravitas-games/crimeboss/pkg/engine"
	"github.com/gravitas-games/crimeboss/pkg/item"
)

func main() {
	// Load configuration
	configPath := os.Getenv("CONFIG_PATH")
	if configPath == "" {
		configPath = "./configs/server.yaml"
	}

	cfg, err := config.Load(configPath)
	if err != nil {
		logrus.Fatalf("Failed to load configuration: %v", err)
	}

	log, err := logging.New(cfg.Logging)
	if err != nil {
		logrus.Fatalf("Failed to configure logging: %v", err)
	}
	log.Info("Starting crime boss inventory server...")
	log.Infof("Configuration loaded from %s", configPath)

	catalog, err := item.LoadCatalog(cfg.Catalog.ItemsPath)
	if err != nil {
		log.Fatalf("Failed to load item catalog: %v", err)
	}
	recipes, err := crafting.LoadRecipes(cfg.Catalog.RecipesPath, catalog)
	if err != nil {
		log.Fatalf("Failed to load recipes: %v", err)
	}
	log.Infof("Loaded %d items and %d recipes", catalog.Len(), recipes.Count())

	opts := engine.DefaultOptions()
	opts.ConsumeWithoutEffect = cfg.Engine.ConsumesWithoutEffect()
	opts.CraftSlots = cfg.Engine.CraftSlots
	opts.Logger = log.WithField("component", "engine")
	eng := engine.New(catalog, recipes, opts)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	redisClient := redis.NewClient(&redis.Options{
		Addr:     cfg.Redis.Address,
		Password: cfg.Redis.Password,
		DB:       cfg.Redis.DB,
	})
	pingCtx, pingCancel := context.WithTimeout(ctx, 5*time.Second)
	if err := redisClient.Ping(pingCtx).Err(); err != nil {
		log.WithError(err).Warn("Redis unavailable, snapshot cache and blacklist checks will fail open")
	} else {
		log.Infof("Connected to Redis at %s", cfg.Redis.Address)
	}
	pingCancel()

	db, err := storage.OpenSQLite(cfg.Database.Path)
	if err != nil {
		log.Fatalf("Failed to open save database: %v", err)
	}
	defer db.Close()
	snapshots := storage.NewCachedStore(db, storage.NewRedisClient(redisClient),
		cfg.Redis.SnapshotPrefix, time.Duration(cfg.Redis.SnapshotTTLMinutes)*time.Minute,
		log.WithField("component", "snapshots"))

	validator, err := server.NewJWTValidator(ctx, cfg, redisClient, log)
	if err != nil {
		log.Fatalf("Failed to initialize JWT validator: %v", err)
	}

	srv, err := server.New(cfg, server.Deps{
		Engine:    eng,
		Snapshots: snapshots,
		Validator: validator,
		Redis:     redisClient,
		Logger:    log,
	})
	if err != nil {
		log.Fatalf("Failed to create server: %v", err)
	}

	// Start server in goroutine
	errChan := make(chan error, 1)
	go func() {
		addr := fmt.Sprintf("%s:%d", cfg.Server.Host, cfg.Server.Port)
		if err := srv.Start(addr); err != nil {
			errChan <- err
		}
	}()

	// Wait for interrupt signal or error
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)

	select {
	case err := <-errChan:
		log.Errorf("Server error: %v", err)
	case sig := <-sigChan:
		log.Infof("Received signal %v, shutting down...", sig)
	}

	if err := srv.Shutdown(); err != nil {
		log.WithError(err).Error("Error during shutdown")
	}

	log.Info("Server stopped")
}
