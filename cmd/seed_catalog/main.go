package main

import (
	"context"
	"flag"
	"log"
	"os"

	"github.com/foodgram-app/backend/config"
	"github.com/foodgram-app/backend/internal/database"
	"github.com/foodgram-app/backend/internal/service"
)

// Loads the ingredient catalog from a CSV file with name,measurement_unit rows.
func main() {
	path := flag.String("file", "data/ingredients.csv", "path to the ingredients CSV file")
	flag.Parse()

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

	f, err := os.Open(*path)
	if err != nil {
		log.Fatalf("Failed to open %s: %v", *path, err)
	}
	defer f.Close()

	count, err := service.NewCatalogService(db).ImportIngredientsCSV(context.Background(), f)
	if err != nil {
		log.Fatalf("Import failed: %v", err)
	}
	log.Printf("Imported %d ingredients", count)
}
