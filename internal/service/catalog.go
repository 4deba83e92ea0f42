package service

import (
	"context"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/foodgram-app/backend/internal/models"
)

// CatalogService serves the global tag and ingredient catalogs
type CatalogService struct {
	db *gorm.DB
}

func NewCatalogService(db *gorm.DB) *CatalogService {
	return &CatalogService{db: db}
}

// ListTags returns every tag
func (s *CatalogService) ListTags(ctx context.Context) ([]models.Tag, error) {
	var tags []models.Tag
	if err := s.db.WithContext(ctx).Order("slug").Find(&tags).Error; err != nil {
		return nil, err
	}
	return tags, nil
}

// GetTag retrieves a tag by ID
func (s *CatalogService) GetTag(ctx context.Context, id uuid.UUID) (*models.Tag, error) {
	var tag models.Tag
	if err := s.db.WithContext(ctx).First(&tag, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("tag %s: %w", id, ErrNotFound)
		}
		return nil, err
	}
	return &tag, nil
}

// ListIngredients returns ingredients ordered by name, optionally narrowed
// to a case-insensitive name prefix
func (s *CatalogService) ListIngredients(ctx context.Context, namePrefix string) ([]models.Ingredient, error) {
	query := s.db.WithContext(ctx).Order("name")
	if namePrefix != "" {
		query = query.Where("LOWER(name) LIKE ?", strings.ToLower(namePrefix)+"%")
	}
	var ingredients []models.Ingredient
	if err := query.Find(&ingredients).Error; err != nil {
		return nil, err
	}
	return ingredients, nil
}

// GetIngredient retrieves an ingredient by ID
func (s *CatalogService) GetIngredient(ctx context.Context, id uuid.UUID) (*models.Ingredient, error) {
	var ingredient models.Ingredient
	if err := s.db.WithContext(ctx).First(&ingredient, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("ingredient %s: %w", id, ErrNotFound)
		}
		return nil, err
	}
	return &ingredient, nil
}

// ImportIngredientsCSV bulk-loads "name,measurement_unit" rows into the
// catalog, skipping the header row. Returns the number of rows created.
func (s *CatalogService) ImportIngredientsCSV(ctx context.Context, r io.Reader) (int, error) {
	reader := csv.NewReader(r)
	records, err := reader.ReadAll()
	if err != nil {
		return 0, fmt.Errorf("failed to parse csv: %w", err)
	}
	if len(records) <= 1 {
		return 0, nil
	}

	ingredients := make([]models.Ingredient, 0, len(records)-1)
	for _, row := range records[1:] {
		if len(row) < 2 {
			return 0, fmt.Errorf("%w: expected name,measurement_unit, got %d columns", ErrValidation, len(row))
		}
		ingredients = append(ingredients, models.Ingredient{
			Name:            row[0],
			MeasurementUnit: row[1],
		})
	}

	if err := s.db.WithContext(ctx).CreateInBatches(&ingredients, 500).Error; err != nil {
		return 0, err
	}
	return len(ingredients), nil
}
