package main

import (
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/nvak1999/book-store/config"
	"github.com/nvak1999/book-store/internal/app/controller"
	"github.com/nvak1999/book-store/internal/app/repository"
	"github.com/nvak1999/book-store/internal/app/service"
	"github.com/nvak1999/book-store/internal/db"
	"github.com/nvak1999/book-store/internal/middleware"
	"github.com/nvak1999/book-store/internal/router"
	"github.com/nvak1999/book-store/internal/scheduler"
	"github.com/nvak1999/book-store/internal/storage"
	"github.com/nvak1999/book-store/pkg/logger"
	"github.com/nvak1999/book-store/pkg/redis"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		logger.Fatal("Failed to load configuration", err)
	}

	logLevel := "info"
	if cfg.Server.Environment == "development" {
		logLevel = "debug"
	}
	logger.Initialize(logger.Config{
		Level:       logLevel,
		Format:      "console", // Use "json" for production
		EnableColor: true,
	})

	logger.Info("Starting book store server", map[string]interface{}{
		"environment": cfg.Server.Environment,
		"port":        cfg.Server.Port,
		"log_level":   logLevel,
	})

	if err := db.Initialize(&cfg.Database); err != nil {
		logger.Fatal("Failed to initialize database", err)
	}
	defer func() {
		if err := db.Close(); err != nil {
			logger.Error("Failed to close database connection", err)
		}
	}()

	if err := db.Migrate(); err != nil {
		logger.Fatal("Failed to run migrations", err)
	}
	if err := db.Seed(); err != nil {
		logger.Warn("Failed to seed database", map[string]interface{}{
			"error": err.Error(),
		})
	}

	// Redis is optional: without it the catalog just skips its cache.
	cache := redis.NewCache(nil, 0)
	if err := redis.Init(&cfg.Redis); err != nil {
		logger.Warn("Redis unavailable, catalog cache disabled", map[string]interface{}{
			"error": err.Error(),
		})
	} else {
		defer redis.Close()
		cache = redis.NewCache(redis.GetClient(), cfg.Redis.CacheTTL)
	}

	userRepo := repository.NewUserRepository(db.GetDB())
	bookRepo := repository.NewBookRepository(db.GetDB())
	bookCategoryRepo := repository.NewBookCategoryRepository(db.GetDB())
	categoryRepo := repository.NewCategoryRepository(db.GetDB())
	reviewRepo := repository.NewReviewRepository(db.GetDB())
	cartRepo := repository.NewCartRepository(db.GetDB())
	orderRepo := repository.NewOrderRepository(db.GetDB())

	authService := service.NewAuthService(userRepo, cfg.JWT)
	bookService := service.NewBookService(bookRepo, bookCategoryRepo, reviewRepo, cache)
	categoryService := service.NewCategoryService(categoryRepo, bookRepo, bookCategoryRepo)
	cartService := service.NewCartService(cartRepo, bookRepo, userRepo)
	orderService := service.NewOrderService(orderRepo, cartRepo, userRepo)

	authController := controller.NewAuthController(authService)
	bookController := controller.NewBookController(bookService)
	categoryController := controller.NewCategoryController(categoryService)
	cartController := controller.NewCartController(cartService)
	orderController := controller.NewOrderController(orderService)
	uploadController := controller.NewUploadController(storage.NewCoverStorage(cfg.S3))

	authMiddleware := middleware.NewAuthMiddleware(cfg.JWT.Secret)

	reconciler := scheduler.NewCartReconciler(cartService)
	if err := reconciler.Start(); err != nil {
		logger.Warn("Failed to start cart reconciler", map[string]interface{}{
			"error": err.Error(),
		})
	}
	defer reconciler.Stop()

	r := router.NewRouter(
		authController,
		bookController,
		categoryController,
		cartController,
		orderController,
		uploadController,
		authMiddleware,
		cfg,
	)
	engine := r.Setup()

	go func() {
		addr := fmt.Sprintf(":%s", cfg.Server.Port)
		logger.Info("Server started successfully", map[string]interface{}{
			"address": addr,
			"pid":     os.Getpid(),
		})
		if err := engine.Run(addr); err != nil {
			logger.Fatal("Failed to start server", err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Info("Shutting down server gracefully...")
	logger.Info("Server stopped successfully")
}
