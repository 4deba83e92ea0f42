package service

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/foodgram-app/backend/internal/models"
)

// IngredientLine is one (ingredient, amount) pair of a submitted recipe.
type IngredientLine struct {
	IngredientID uuid.UUID
	Amount       float64
}

// RecipeInput carries all client-supplied fields of a recipe create request.
// The author always comes from the caller context, never from the client.
type RecipeInput struct {
	Name        string
	Text        string
	ImageURL    string
	CookingTime int
	Ingredients []IngredientLine
	TagIDs      []uuid.UUID
}

// RecipePatch carries a recipe update. Nil scalar fields keep the stored
// value; the ingredient and tag sets always replace the prior sets wholesale,
// so an empty slice clears them.
type RecipePatch struct {
	Name        *string
	Text        *string
	ImageURL    *string
	CookingTime *int
	Ingredients []IngredientLine
	TagIDs      []uuid.UUID
}

// RecipeFilter narrows and pages the recipe listing.
type RecipeFilter struct {
	AuthorID    *uuid.UUID
	TagSlugs    []string
	FavoritedBy *uuid.UUID
	InCartOf    *uuid.UUID
	Page        int
	Limit       int
}

// ShoppingListItem is one aggregated row of a user's shopping list.
type ShoppingListItem struct {
	Name            string  `json:"name"`
	MeasurementUnit string  `json:"measurement_unit"`
	Amount          float64 `json:"amount"`
}

// RecipeService handles recipe composition, the shopping list aggregation
// and the favorite/cart membership toggles.
type RecipeService struct {
	db *gorm.DB
}

func NewRecipeService(db *gorm.DB) *RecipeService {
	return &RecipeService{db: db}
}

// CreateRecipe validates the submitted composition and persists the recipe
// with its ingredient lines and tags in one transaction.
func (s *RecipeService) CreateRecipe(ctx context.Context, authorID uuid.UUID, input RecipeInput) (*models.Recipe, error) {
	if err := validateScalars(input.Name, input.Text, input.CookingTime); err != nil {
		return nil, err
	}
	if err := validateIngredientLines(input.Ingredients); err != nil {
		return nil, err
	}

	recipe := models.Recipe{
		Name:        input.Name,
		Text:        input.Text,
		ImageURL:    input.ImageURL,
		CookingTime: input.CookingTime,
		AuthorID:    authorID,
	}

	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := resolveIngredients(tx, input.Ingredients); err != nil {
			return err
		}
		tags, err := resolveTags(tx, input.TagIDs)
		if err != nil {
			return err
		}

		if err := tx.Create(&recipe).Error; err != nil {
			return err
		}
		if err := insertIngredientLines(tx, recipe.ID, input.Ingredients); err != nil {
			return err
		}
		if len(tags) > 0 {
			if err := tx.Model(&recipe).Omit("Tags.*").Association("Tags").Append(tags); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	return s.GetRecipe(ctx, recipe.ID)
}

// UpdateRecipe merges the patch into an existing recipe. The scalar merge,
// the wholesale ingredient replace and the tag replace commit atomically; the
// recipe row is locked for the duration on postgres so concurrent updates to
// the same recipe serialize instead of interleaving partial replacements.
func (s *RecipeService) UpdateRecipe(ctx context.Context, userID, recipeID uuid.UUID, patch RecipePatch) (*models.Recipe, error) {
	if err := validateIngredientLines(patch.Ingredients); err != nil {
		return nil, err
	}

	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		q := tx
		if tx.Dialector.Name() == "postgres" {
			q = tx.Clauses(clause.Locking{Strength: "UPDATE"})
		}

		var recipe models.Recipe
		if err := q.First(&recipe, "id = ?", recipeID).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return fmt.Errorf("recipe %s: %w", recipeID, ErrNotFound)
			}
			return err
		}
		if recipe.AuthorID != userID {
			return ErrNotAuthor
		}

		if patch.Name != nil {
			recipe.Name = *patch.Name
		}
		if patch.Text != nil {
			recipe.Text = *patch.Text
		}
		if patch.ImageURL != nil {
			recipe.ImageURL = *patch.ImageURL
		}
		if patch.CookingTime != nil {
			recipe.CookingTime = *patch.CookingTime
		}
		if err := validateScalars(recipe.Name, recipe.Text, recipe.CookingTime); err != nil {
			return err
		}

		if err := resolveIngredients(tx, patch.Ingredients); err != nil {
			return err
		}
		tags, err := resolveTags(tx, patch.TagIDs)
		if err != nil {
			return err
		}

		if err := tx.Save(&recipe).Error; err != nil {
			return err
		}

		// Full replace, not a diff: clear every prior line, then re-add
		if err := tx.Where("recipe_id = ?", recipe.ID).Delete(&models.RecipeIngredient{}).Error; err != nil {
			return err
		}
		if err := insertIngredientLines(tx, recipe.ID, patch.Ingredients); err != nil {
			return err
		}
		if err := tx.Model(&recipe).Omit("Tags.*").Association("Tags").Replace(tags); err != nil {
			return err
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	return s.GetRecipe(ctx, recipeID)
}

// GetRecipe loads a recipe with its author, ingredient lines and tags
func (s *RecipeService) GetRecipe(ctx context.Context, id uuid.UUID) (*models.Recipe, error) {
	var recipe models.Recipe
	err := s.db.WithContext(ctx).
		Preload("Author").
		Preload("Ingredients.Ingredient").
		Preload("Tags").
		First(&recipe, "id = ?", id).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("recipe %s: %w", id, ErrNotFound)
		}
		return nil, err
	}
	return &recipe, nil
}

// DeleteRecipe removes a recipe and its dependent rows. Author-only.
func (s *RecipeService) DeleteRecipe(ctx context.Context, userID, recipeID uuid.UUID) error {
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var recipe models.Recipe
		if err := tx.First(&recipe, "id = ?", recipeID).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return fmt.Errorf("recipe %s: %w", recipeID, ErrNotFound)
			}
			return err
		}
		if recipe.AuthorID != userID {
			return ErrNotAuthor
		}

		if err := tx.Where("recipe_id = ?", recipeID).Delete(&models.RecipeIngredient{}).Error; err != nil {
			return err
		}
		if err := tx.Where("recipe_id = ?", recipeID).Delete(&models.FavoriteRecipe{}).Error; err != nil {
			return err
		}
		if err := tx.Where("recipe_id = ?", recipeID).Delete(&models.CartRecipe{}).Error; err != nil {
			return err
		}
		if err := tx.Model(&recipe).Association("Tags").Clear(); err != nil {
			return err
		}
		return tx.Delete(&recipe).Error
	})
}

// ListRecipes returns a page of recipes, newest first, with the total count
func (s *RecipeService) ListRecipes(ctx context.Context, filter RecipeFilter) ([]models.Recipe, int64, error) {
	query := s.db.WithContext(ctx).Model(&models.Recipe{})

	if filter.AuthorID != nil {
		query = query.Where("recipes.author_id = ?", *filter.AuthorID)
	}
	if len(filter.TagSlugs) > 0 {
		tagged := s.db.Table("recipe_tags").
			Select("recipe_tags.recipe_id").
			Joins("JOIN tags ON tags.id = recipe_tags.tag_id").
			Where("tags.slug IN ?", filter.TagSlugs)
		query = query.Where("recipes.id IN (?)", tagged)
	}
	if filter.FavoritedBy != nil {
		query = query.Where("recipes.id IN (?)", s.db.Table("favorite_recipes").
			Select("recipe_id").Where("user_id = ?", *filter.FavoritedBy))
	}
	if filter.InCartOf != nil {
		query = query.Where("recipes.id IN (?)", s.db.Table("shopping_cart_recipes").
			Select("recipe_id").Where("user_id = ?", *filter.InCartOf))
	}

	var count int64
	if err := query.Count(&count).Error; err != nil {
		return nil, 0, err
	}

	var recipes []models.Recipe
	err := query.
		Preload("Author").
		Preload("Ingredients.Ingredient").
		Preload("Tags").
		Order("recipes.created_at DESC").
		Offset((filter.Page - 1) * filter.Limit).
		Limit(filter.Limit).
		Find(&recipes).Error
	if err != nil {
		return nil, 0, err
	}
	return recipes, count, nil
}

// AuthorRecipes returns an author's recipes, newest first, optionally trimmed
func (s *RecipeService) AuthorRecipes(ctx context.Context, authorID uuid.UUID, limit int) ([]models.Recipe, error) {
	query := s.db.WithContext(ctx).
		Where("author_id = ?", authorID).
		Order("created_at DESC")
	if limit > 0 {
		query = query.Limit(limit)
	}
	var recipes []models.Recipe
	if err := query.Find(&recipes).Error; err != nil {
		return nil, err
	}
	return recipes, nil
}

// CountAuthorRecipes returns the number of recipes an author has published
func (s *RecipeService) CountAuthorRecipes(ctx context.Context, authorID uuid.UUID) (int64, error) {
	var count int64
	err := s.db.WithContext(ctx).Model(&models.Recipe{}).
		Where("author_id = ?", authorID).Count(&count).Error
	return count, err
}

// ShoppingList aggregates the ingredient lines of every recipe in the user's
// cart into one row per distinct ingredient with the summed amount. An empty
// cart yields an empty slice. Rows with the same ingredient name but
// different catalog ids stay separate.
func (s *RecipeService) ShoppingList(ctx context.Context, userID uuid.UUID) ([]ShoppingListItem, error) {
	var items []ShoppingListItem
	err := s.db.WithContext(ctx).
		Table("recipe_ingredients").
		Select("ingredients.name AS name, ingredients.measurement_unit AS measurement_unit, SUM(recipe_ingredients.amount) AS amount").
		Joins("JOIN ingredients ON ingredients.id = recipe_ingredients.ingredient_id").
		Joins("JOIN shopping_cart_recipes ON shopping_cart_recipes.recipe_id = recipe_ingredients.recipe_id").
		Where("shopping_cart_recipes.user_id = ?", userID).
		Group("recipe_ingredients.ingredient_id, ingredients.name, ingredients.measurement_unit").
		Order("ingredients.name, recipe_ingredients.ingredient_id").
		Scan(&items).Error
	if err != nil {
		return nil, err
	}
	return items, nil
}

// AddFavorite marks a recipe as a favorite of the user. Repeating the add is
// an error, not a no-op: the insert relies on the composite unique index, so
// the existence check and the write are one statement.
func (s *RecipeService) AddFavorite(ctx context.Context, userID, recipeID uuid.UUID) error {
	return s.addEdge(ctx, recipeID, &models.FavoriteRecipe{UserID: userID, RecipeID: recipeID})
}

// RemoveFavorite removes a recipe from the user's favorites
func (s *RecipeService) RemoveFavorite(ctx context.Context, userID, recipeID uuid.UUID) error {
	return s.removeEdge(ctx, s.db.WithContext(ctx).
		Where("user_id = ? AND recipe_id = ?", userID, recipeID).
		Delete(&models.FavoriteRecipe{}))
}

// AddToCart places a recipe in the user's shopping cart
func (s *RecipeService) AddToCart(ctx context.Context, userID, recipeID uuid.UUID) error {
	return s.addEdge(ctx, recipeID, &models.CartRecipe{UserID: userID, RecipeID: recipeID})
}

// RemoveFromCart takes a recipe out of the user's shopping cart
func (s *RecipeService) RemoveFromCart(ctx context.Context, userID, recipeID uuid.UUID) error {
	return s.removeEdge(ctx, s.db.WithContext(ctx).
		Where("user_id = ? AND recipe_id = ?", userID, recipeID).
		Delete(&models.CartRecipe{}))
}

func (s *RecipeService) addEdge(ctx context.Context, recipeID uuid.UUID, edge interface{}) error {
	var count int64
	if err := s.db.WithContext(ctx).Model(&models.Recipe{}).Where("id = ?", recipeID).Count(&count).Error; err != nil {
		return err
	}
	if count == 0 {
		return fmt.Errorf("recipe %s: %w", recipeID, ErrNotFound)
	}

	if err := s.db.WithContext(ctx).Create(edge).Error; err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return fmt.Errorf("recipe %s %w", recipeID, ErrAlreadyExists)
		}
		return err
	}
	return nil
}

func (s *RecipeService) removeEdge(ctx context.Context, result *gorm.DB) error {
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return fmt.Errorf("membership %w", ErrNotFound)
	}
	return nil
}

// FavoritedSet reports which of the given recipes the user has favorited
func (s *RecipeService) FavoritedSet(ctx context.Context, userID uuid.UUID, recipeIDs []uuid.UUID) (map[uuid.UUID]bool, error) {
	return s.edgeSet(ctx, "favorite_recipes", userID, recipeIDs)
}

// CartSet reports which of the given recipes are in the user's cart
func (s *RecipeService) CartSet(ctx context.Context, userID uuid.UUID, recipeIDs []uuid.UUID) (map[uuid.UUID]bool, error) {
	return s.edgeSet(ctx, "shopping_cart_recipes", userID, recipeIDs)
}

func (s *RecipeService) edgeSet(ctx context.Context, table string, userID uuid.UUID, recipeIDs []uuid.UUID) (map[uuid.UUID]bool, error) {
	set := make(map[uuid.UUID]bool, len(recipeIDs))
	if len(recipeIDs) == 0 {
		return set, nil
	}
	var ids []uuid.UUID
	err := s.db.WithContext(ctx).Table(table).
		Where("user_id = ? AND recipe_id IN ?", userID, recipeIDs).
		Pluck("recipe_id", &ids).Error
	if err != nil {
		return nil, err
	}
	for _, id := range ids {
		set[id] = true
	}
	return set, nil
}

func validateScalars(name, text string, cookingTime int) error {
	if name == "" {
		return fmt.Errorf("%w: recipe name must not be empty", ErrValidation)
	}
	if text == "" {
		return fmt.Errorf("%w: recipe text must not be empty", ErrValidation)
	}
	if cookingTime < 1 {
		return fmt.Errorf("%w: cooking time must be at least 1 minute", ErrValidation)
	}
	return nil
}

// validateIngredientLines rejects repeated ingredient ids and non-positive
// amounts before anything touches the database
func validateIngredientLines(lines []IngredientLine) error {
	seen := make(map[uuid.UUID]struct{}, len(lines))
	for _, line := range lines {
		if _, ok := seen[line.IngredientID]; ok {
			return ErrDuplicateIngredient
		}
		seen[line.IngredientID] = struct{}{}
		if line.Amount <= 0 {
			return fmt.Errorf("%w: ingredient amount must be positive", ErrValidation)
		}
	}
	return nil
}

// resolveIngredients verifies that every referenced ingredient exists,
// naming the first missing id. Runs before any association write.
func resolveIngredients(tx *gorm.DB, lines []IngredientLine) error {
	if len(lines) == 0 {
		return nil
	}
	ids := make([]uuid.UUID, 0, len(lines))
	for _, line := range lines {
		ids = append(ids, line.IngredientID)
	}

	var found []uuid.UUID
	if err := tx.Model(&models.Ingredient{}).Where("id IN ?", ids).Pluck("id", &found).Error; err != nil {
		return err
	}
	existing := make(map[uuid.UUID]struct{}, len(found))
	for _, id := range found {
		existing[id] = struct{}{}
	}
	for _, line := range lines {
		if _, ok := existing[line.IngredientID]; !ok {
			return fmt.Errorf("ingredient %s: %w", line.IngredientID, ErrNotFound)
		}
	}
	return nil
}

func resolveTags(tx *gorm.DB, tagIDs []uuid.UUID) ([]models.Tag, error) {
	if len(tagIDs) == 0 {
		return nil, nil
	}
	var tags []models.Tag
	if err := tx.Where("id IN ?", tagIDs).Find(&tags).Error; err != nil {
		return nil, err
	}
	if len(tags) != len(tagIDs) {
		known := make(map[uuid.UUID]struct{}, len(tags))
		for _, t := range tags {
			known[t.ID] = struct{}{}
		}
		for _, id := range tagIDs {
			if _, ok := known[id]; !ok {
				return nil, fmt.Errorf("tag %s: %w", id, ErrNotFound)
			}
		}
	}
	return tags, nil
}

func insertIngredientLines(tx *gorm.DB, recipeID uuid.UUID, lines []IngredientLine) error {
	if len(lines) == 0 {
		return nil
	}
	rows := make([]models.RecipeIngredient, 0, len(lines))
	for _, line := range lines {
		rows = append(rows, models.RecipeIngredient{
			RecipeID:     recipeID,
			IngredientID: line.IngredientID,
			Amount:       line.Amount,
		})
	}
	return tx.Create(&rows).Error
}
