package database

import (
	"log"

	"gorm.io/gorm"

	"github.com/foodgram-app/backend/internal/models"
)

// RunMigrations brings the schema up to date with the model definitions.
func RunMigrations(db *gorm.DB) error {
	log.Printf("Running schema migration (%s)", db.Dialector.Name())
	return db.AutoMigrate(
		&models.User{},
		&models.Follow{},
		&models.Tag{},
		&models.Ingredient{},
		&models.Recipe{},
		&models.RecipeIngredient{},
		&models.FavoriteRecipe{},
		&models.CartRecipe{},
	)
}
