package main

import (
	"context"
	"log"

	"github.com/foodgram-app/backend/config"
	"github.com/foodgram-app/backend/internal/api"
	"github.com/foodgram-app/backend/internal/database"
	"github.com/foodgram-app/backend/internal/middleware"
	"github.com/foodgram-app/backend/internal/router"
	"github.com/foodgram-app/backend/internal/server"
	"github.com/foodgram-app/backend/internal/service"
)

func main() {
	cfg, err := config.LoadConfig()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	db, err := database.New(cfg)
	if err != nil {
		log.Fatalf("Failed to connect to database: %v", err)
	}
	if err := database.RunMigrations(db); err != nil {
		log.Fatalf("Failed to run migrations: %v", err)
	}

	authService := service.NewAuthService(db, cfg.JWTSecret)
	userService := service.NewUserService(db)
	recipeService := service.NewRecipeService(db)
	catalogService := service.NewCatalogService(db)

	// Image uploads fall back to passing URLs through when S3 is not configured
	var imageService *service.ImageService
	if cfg.S3Bucket != "" {
		imageService, err = service.NewImageService(context.Background(), cfg)
		if err != nil {
			log.Fatalf("Failed to initialize image storage: %v", err)
		}
	} else {
		log.Println("S3_BUCKET_NAME not set, storing image URLs as-is")
	}

	var creationLimiter *middleware.RateLimiter
	if redisClient, err := database.NewRedisClient(cfg); err != nil {
		log.Printf("Redis unavailable, recipe creation is unthrottled: %v", err)
	} else {
		creationLimiter = middleware.NewRecipeCreationRateLimiter(redisClient)
	}

	authHandler := api.NewAuthHandler(authService)
	userHandler := api.NewUserHandler(userService, recipeService, authService)
	recipeHandler := api.NewRecipeHandler(recipeService, userService, authService, imageService, creationLimiter)
	catalogHandler := api.NewCatalogHandler(catalogService)

	engine := router.SetupRouter(db, authHandler, userHandler, recipeHandler, catalogHandler)

	srv := server.NewServer(engine)
	log.Printf("Starting server on port %s", cfg.ServerPort)
	if err := srv.Start(cfg.ServerPort); err != nil {
		log.Fatalf("Server error: %v", err)
	}
	log.Println("Server stopped")
}
