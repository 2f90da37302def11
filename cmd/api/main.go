// cmd/api/main.go
package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/your-org/storefront-bff/internal/config"
	"github.com/your-org/storefront-bff/internal/domain/cart"
	"github.com/your-org/storefront-bff/internal/domain/wishlist"
	"github.com/your-org/storefront-bff/internal/infrastructure/commerce"
	"github.com/your-org/storefront-bff/internal/infrastructure/store"
	"github.com/your-org/storefront-bff/internal/interfaces/http"
	"github.com/your-org/storefront-bff/internal/interfaces/http/routes"
	"github.com/your-org/storefront-bff/internal/pkg/auth"
	"github.com/your-org/storefront-bff/internal/pkg/logging"
	"github.com/your-org/storefront-bff/internal/pkg/session"
)

func main() {
	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	logger := logging.New(cfg)
	logger.WithFields(logrus.Fields{
		"version":     cfg.App.Version,
		"environment": cfg.App.Environment,
	}).Infof("Starting %s", cfg.App.Name)

	// Connect to Redis
	redisClient, err := store.NewRedisClient(cfg)
	if err != nil {
		logger.Fatalf("Failed to connect to Redis: %v", err)
	}
	defer redisClient.Close()

	if err := store.Health(redisClient); err != nil {
		logger.Fatalf("Redis health check failed: %v", err)
	}

	// Persisted collections and the upstream response cache share the
	// same Redis instance but carry different TTLs
	collections := store.New(redisClient, cfg.Store.CollectionTTL, logger)
	cache := store.New(redisClient, cfg.Upstream.CacheTTL, logger)

	carts := cart.NewService(collections, logger)
	wishlists := wishlist.NewService(collections, logger)

	jwtManager := auth.NewJWTManager(cfg)
	resolver := session.NewResolver(jwtManager, collections, logger)
	resolver.OnChange(func(id session.Identity) {
		logger.WithFields(logrus.Fields{
			"owner":         id.OwnerKey(),
			"authenticated": id.IsAuthenticated(),
		}).Info("Identity changed")
	})

	commerceClient := commerce.NewClient(cfg, cache, logger)

	logger.Info("All systems operational")

	server := http.NewServer(cfg, logger, redisClient, routes.Deps{
		Config:    cfg,
		Logger:    logger,
		Carts:     carts,
		Wishlists: wishlists,
		Commerce:  commerceClient,
		Resolver:  resolver,
	})

	// Start server in a goroutine
	go func() {
		if err := server.Start(); err != nil {
			logger.Fatalf("Failed to start HTTP server: %v", err)
		}
	}()

	// Wait for interrupt signal to gracefully shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, os.Interrupt, syscall.SIGTERM)
	<-quit

	logger.Info("Shutting down gracefully...")

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := server.Stop(ctx); err != nil {
		logger.Errorf("Failed to shutdown HTTP server gracefully: %v", err)
	}

	logger.Info("Server shutdown completed")
}
