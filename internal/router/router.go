package router

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/foodgram-app/backend/internal/api"
	"github.com/foodgram-app/backend/internal/database"
	"github.com/foodgram-app/backend/internal/middleware"
	"gorm.io/gorm"
)

// SetupRouter configures the application routes
func SetupRouter(
	db *gorm.DB,
	authHandler *api.AuthHandler,
	userHandler *api.UserHandler,
	recipeHandler *api.RecipeHandler,
	catalogHandler *api.CatalogHandler,
) *gin.Engine {
	router := gin.Default()

	// CORS middleware
	router.Use(middleware.CORS())

	router.GET("/health", func(c *gin.Context) {
		if err := database.HealthCheck(c.Request.Context(), db); err != nil {
			c.JSON(http.StatusServiceUnavailable, gin.H{"status": "unhealthy", "error": err.Error()})
			return
		}
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})

	// API v1 routes
	v1 := router.Group("/api/v1")
	authHandler.RegisterRoutes(v1)
	userHandler.RegisterRoutes(v1)
	recipeHandler.RegisterRoutes(v1)
	catalogHandler.RegisterRoutes(v1)

	return router
}
