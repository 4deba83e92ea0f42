package testutil

import (
	"fmt"
	"testing"

	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/foodgram-app/backend/internal/database"
	"github.com/foodgram-app/backend/internal/models"
)

// TestPassword is the password of every fixture user
const TestPassword = "testpassword123"

// NewTestDB opens a fresh in-memory database with the full schema applied.
// Each call gets its own named memory database so tests stay isolated.
func NewTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", uuid.New().String())
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		Logger:         logger.Default.LogMode(logger.Silent),
		TranslateError: true,
	})
	if err != nil {
		t.Fatalf("failed to open test database: %v", err)
	}

	if err := database.RunMigrations(db); err != nil {
		t.Fatalf("failed to migrate test database: %v", err)
	}
	return db
}

// CreateTestUser inserts a user with a bcrypt hash of TestPassword
func CreateTestUser(t *testing.T, db *gorm.DB, username string) *models.User {
	t.Helper()

	hash, err := bcrypt.GenerateFromPassword([]byte(TestPassword), bcrypt.DefaultCost)
	if err != nil {
		t.Fatalf("failed to hash password: %v", err)
	}

	user := models.User{
		Username:     username,
		Email:        fmt.Sprintf("%s@example.com", username),
		FirstName:    "Test",
		LastName:     "User",
		PasswordHash: string(hash),
	}
	if err := db.Create(&user).Error; err != nil {
		t.Fatalf("failed to create test user: %v", err)
	}
	return &user
}

// CreateTestIngredient inserts a catalog ingredient
func CreateTestIngredient(t *testing.T, db *gorm.DB, name, unit string) *models.Ingredient {
	t.Helper()

	ingredient := models.Ingredient{Name: name, MeasurementUnit: unit}
	if err := db.Create(&ingredient).Error; err != nil {
		t.Fatalf("failed to create test ingredient: %v", err)
	}
	return &ingredient
}

// CreateTestTag inserts a tag
func CreateTestTag(t *testing.T, db *gorm.DB, name, slug string) *models.Tag {
	t.Helper()

	tag := models.Tag{Name: name, Color: "#E26C2D", Slug: slug}
	if err := db.Create(&tag).Error; err != nil {
		t.Fatalf("failed to create test tag: %v", err)
	}
	return &tag
}
