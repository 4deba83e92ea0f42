package api

import (
	"errors"
	"log"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/foodgram-app/backend/internal/models"
	"github.com/foodgram-app/backend/internal/service"
)

// UserResponse is the public shape of a user, with the subscription flag
// computed relative to the caller
type UserResponse struct {
	ID           uuid.UUID `json:"id"`
	Email        string    `json:"email"`
	Username     string    `json:"username"`
	FirstName    string    `json:"first_name"`
	LastName     string    `json:"last_name"`
	IsSubscribed bool      `json:"is_subscribed"`
}

// IngredientLineResponse is one ingredient line of a recipe payload
type IngredientLineResponse struct {
	ID              uuid.UUID `json:"id"`
	Name            string    `json:"name"`
	MeasurementUnit string    `json:"measurement_unit"`
	Amount          float64   `json:"amount"`
}

// RecipeResponse is the full recipe payload
type RecipeResponse struct {
	ID               uuid.UUID                `json:"id"`
	Tags             []models.Tag             `json:"tags"`
	Author           UserResponse             `json:"author"`
	Ingredients      []IngredientLineResponse `json:"ingredients"`
	IsFavorited      bool                     `json:"is_favorited"`
	IsInShoppingCart bool                     `json:"is_in_shopping_cart"`
	Name             string                   `json:"name"`
	Image            string                   `json:"image"`
	Text             string                   `json:"text"`
	CookingTime      int                      `json:"cooking_time"`
	CreatedAt        time.Time                `json:"created_at"`
}

// RecipeShortResponse is the trimmed recipe shape used in subscription and
// toggle payloads
type RecipeShortResponse struct {
	ID          uuid.UUID `json:"id"`
	Name        string    `json:"name"`
	Image       string    `json:"image"`
	CookingTime int       `json:"cooking_time"`
}

// SubscriptionResponse embeds an author's recent recipes and recipe count
type SubscriptionResponse struct {
	UserResponse
	Recipes      []RecipeShortResponse `json:"recipes"`
	RecipesCount int64                 `json:"recipes_count"`
}

// PagedResponse is the pagination envelope for list endpoints
type PagedResponse struct {
	Count   int64       `json:"count"`
	Results interface{} `json:"results"`
}

func newUserResponse(user *models.User, isSubscribed bool) UserResponse {
	return UserResponse{
		ID:           user.ID,
		Email:        user.Email,
		Username:     user.Username,
		FirstName:    user.FirstName,
		LastName:     user.LastName,
		IsSubscribed: isSubscribed,
	}
}

func newRecipeResponse(recipe *models.Recipe, isFavorited, isInCart, authorSubscribed bool) RecipeResponse {
	lines := make([]IngredientLineResponse, 0, len(recipe.Ingredients))
	for _, ri := range recipe.Ingredients {
		lines = append(lines, IngredientLineResponse{
			ID:              ri.IngredientID,
			Name:            ri.Ingredient.Name,
			MeasurementUnit: ri.Ingredient.MeasurementUnit,
			Amount:          ri.Amount,
		})
	}

	tags := recipe.Tags
	if tags == nil {
		tags = []models.Tag{}
	}

	return RecipeResponse{
		ID:               recipe.ID,
		Tags:             tags,
		Author:           newUserResponse(&recipe.Author, authorSubscribed),
		Ingredients:      lines,
		IsFavorited:      isFavorited,
		IsInShoppingCart: isInCart,
		Name:             recipe.Name,
		Image:            recipe.ImageURL,
		Text:             recipe.Text,
		CookingTime:      recipe.CookingTime,
		CreatedAt:        recipe.CreatedAt,
	}
}

func newRecipeShortResponse(recipe *models.Recipe) RecipeShortResponse {
	return RecipeShortResponse{
		ID:          recipe.ID,
		Name:        recipe.Name,
		Image:       recipe.ImageURL,
		CookingTime: recipe.CookingTime,
	}
}

// respondError maps domain errors onto HTTP status codes
func respondError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, service.ErrNotFound):
		c.JSON(http.StatusNotFound, gin.H{"error": err.Error()})
	case errors.Is(err, service.ErrNotAuthor):
		c.JSON(http.StatusForbidden, gin.H{"error": err.Error()})
	case errors.Is(err, service.ErrValidation),
		errors.Is(err, service.ErrAlreadyExists),
		errors.Is(err, service.ErrInvalidCredentials):
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
	default:
		log.Printf("internal error: %v", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "internal server error"})
	}
}
