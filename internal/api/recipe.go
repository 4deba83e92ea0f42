package api

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/foodgram-app/backend/internal/middleware"
	"github.com/foodgram-app/backend/internal/models"
	"github.com/foodgram-app/backend/internal/render"
	"github.com/foodgram-app/backend/internal/service"
)

type RecipeHandler struct {
	recipeService *service.RecipeService
	userService   *service.UserService
	authService   *service.AuthService
	imageService  *service.ImageService
	// nil when redis is unavailable, creation is then unthrottled
	creationLimiter *middleware.RateLimiter
}

func NewRecipeHandler(recipeService *service.RecipeService, userService *service.UserService, authService *service.AuthService, imageService *service.ImageService, creationLimiter *middleware.RateLimiter) *RecipeHandler {
	return &RecipeHandler{
		recipeService:   recipeService,
		userService:     userService,
		authService:     authService,
		imageService:    imageService,
		creationLimiter: creationLimiter,
	}
}

func (h *RecipeHandler) RegisterRoutes(router *gin.RouterGroup) {
	recipes := router.Group("/recipes")
	{
		recipes.GET("", middleware.OptionalAuthMiddleware(h.authService), h.ListRecipes)
		recipes.GET("/download_shopping_cart", middleware.AuthMiddleware(h.authService), h.DownloadShoppingCart)
		recipes.GET("/:id", middleware.OptionalAuthMiddleware(h.authService), h.GetRecipe)

		create := []gin.HandlerFunc{middleware.AuthMiddleware(h.authService)}
		if h.creationLimiter != nil {
			create = append(create, h.creationLimiter.RateLimitMiddleware())
		}
		recipes.POST("", append(create, h.CreateRecipe)...)

		recipes.PATCH("/:id", middleware.AuthMiddleware(h.authService), h.UpdateRecipe)
		recipes.DELETE("/:id", middleware.AuthMiddleware(h.authService), h.DeleteRecipe)
		recipes.POST("/:id/favorite", middleware.AuthMiddleware(h.authService), h.Favorite)
		recipes.DELETE("/:id/favorite", middleware.AuthMiddleware(h.authService), h.Unfavorite)
		recipes.POST("/:id/shopping_cart", middleware.AuthMiddleware(h.authService), h.AddToCart)
		recipes.DELETE("/:id/shopping_cart", middleware.AuthMiddleware(h.authService), h.RemoveFromCart)
	}
}

type IngredientLineRequest struct {
	ID     uuid.UUID `json:"id" binding:"required"`
	Amount float64   `json:"amount" binding:"required"`
}

type CreateRecipeRequest struct {
	Name        string                  `json:"name" binding:"required"`
	Text        string                  `json:"text" binding:"required"`
	Image       string                  `json:"image"`
	CookingTime int                     `json:"cooking_time" binding:"required"`
	Ingredients []IngredientLineRequest `json:"ingredients"`
	Tags        []uuid.UUID             `json:"tags"`
}

type UpdateRecipeRequest struct {
	Name        *string                 `json:"name"`
	Text        *string                 `json:"text"`
	Image       *string                 `json:"image"`
	CookingTime *int                    `json:"cooking_time"`
	Ingredients []IngredientLineRequest `json:"ingredients"`
	Tags        []uuid.UUID             `json:"tags"`
}

func (h *RecipeHandler) ListRecipes(c *gin.Context) {
	page, limit := pageParams(c)

	filter := service.RecipeFilter{
		Page:     page,
		Limit:    limit,
		TagSlugs: c.QueryArray("tags"),
	}
	if author := c.Query("author"); author != "" {
		authorID, err := uuid.Parse(author)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid author id"})
			return
		}
		filter.AuthorID = &authorID
	}

	viewerID, authenticated := middleware.CurrentUserID(c)
	if authenticated {
		if c.Query("is_favorited") == "1" {
			filter.FavoritedBy = &viewerID
		}
		if c.Query("is_in_shopping_cart") == "1" {
			filter.InCartOf = &viewerID
		}
	}

	recipes, count, err := h.recipeService.ListRecipes(c.Request.Context(), filter)
	if err != nil {
		respondError(c, err)
		return
	}

	favorited := map[uuid.UUID]bool{}
	inCart := map[uuid.UUID]bool{}
	subscribed := map[uuid.UUID]bool{}
	if authenticated {
		recipeIDs := make([]uuid.UUID, 0, len(recipes))
		authorIDs := make([]uuid.UUID, 0, len(recipes))
		for _, r := range recipes {
			recipeIDs = append(recipeIDs, r.ID)
			authorIDs = append(authorIDs, r.AuthorID)
		}
		if favorited, err = h.recipeService.FavoritedSet(c.Request.Context(), viewerID, recipeIDs); err != nil {
			respondError(c, err)
			return
		}
		if inCart, err = h.recipeService.CartSet(c.Request.Context(), viewerID, recipeIDs); err != nil {
			respondError(c, err)
			return
		}
		if subscribed, err = h.userService.SubscribedSet(c.Request.Context(), viewerID, authorIDs); err != nil {
			respondError(c, err)
			return
		}
	}

	results := make([]RecipeResponse, 0, len(recipes))
	for i := range recipes {
		r := &recipes[i]
		results = append(results, newRecipeResponse(r, favorited[r.ID], inCart[r.ID], subscribed[r.AuthorID]))
	}

	c.JSON(http.StatusOK, PagedResponse{Count: count, Results: results})
}

func (h *RecipeHandler) GetRecipe(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid recipe id"})
		return
	}

	recipe, err := h.recipeService.GetRecipe(c.Request.Context(), id)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, h.recipeResponse(c, recipe))
}

func (h *RecipeHandler) CreateRecipe(c *gin.Context) {
	userID, ok := middleware.CurrentUserID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "user not authenticated"})
		return
	}

	var req CreateRecipeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	imageURL, err := h.storeImage(c, req.Image)
	if err != nil {
		respondError(c, err)
		return
	}

	recipe, err := h.recipeService.CreateRecipe(c.Request.Context(), userID, service.RecipeInput{
		Name:        req.Name,
		Text:        req.Text,
		ImageURL:    imageURL,
		CookingTime: req.CookingTime,
		Ingredients: toIngredientLines(req.Ingredients),
		TagIDs:      req.Tags,
	})
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusCreated, h.recipeResponse(c, recipe))
}

func (h *RecipeHandler) UpdateRecipe(c *gin.Context) {
	userID, ok := middleware.CurrentUserID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "user not authenticated"})
		return
	}

	recipeID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid recipe id"})
		return
	}

	var req UpdateRecipeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	patch := service.RecipePatch{
		Name:        req.Name,
		Text:        req.Text,
		CookingTime: req.CookingTime,
		Ingredients: toIngredientLines(req.Ingredients),
		TagIDs:      req.Tags,
	}
	if req.Image != nil {
		imageURL, err := h.storeImage(c, *req.Image)
		if err != nil {
			respondError(c, err)
			return
		}
		patch.ImageURL = &imageURL
	}

	recipe, err := h.recipeService.UpdateRecipe(c.Request.Context(), userID, recipeID, patch)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, h.recipeResponse(c, recipe))
}

func (h *RecipeHandler) DeleteRecipe(c *gin.Context) {
	userID, ok := middleware.CurrentUserID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "user not authenticated"})
		return
	}

	recipeID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid recipe id"})
		return
	}

	if err := h.recipeService.DeleteRecipe(c.Request.Context(), userID, recipeID); err != nil {
		respondError(c, err)
		return
	}

	c.Status(http.StatusNoContent)
}

func (h *RecipeHandler) Favorite(c *gin.Context) {
	h.addEdge(c, h.recipeService.AddFavorite)
}

func (h *RecipeHandler) Unfavorite(c *gin.Context) {
	h.removeEdge(c, h.recipeService.RemoveFavorite)
}

func (h *RecipeHandler) AddToCart(c *gin.Context) {
	h.addEdge(c, h.recipeService.AddToCart)
}

func (h *RecipeHandler) RemoveFromCart(c *gin.Context) {
	h.removeEdge(c, h.recipeService.RemoveFromCart)
}

func (h *RecipeHandler) DownloadShoppingCart(c *gin.Context) {
	userID, ok := middleware.CurrentUserID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "user not authenticated"})
		return
	}

	items, err := h.recipeService.ShoppingList(c.Request.Context(), userID)
	if err != nil {
		respondError(c, err)
		return
	}

	payload := render.ShoppingList(items)
	c.Header("Content-Disposition", `attachment; filename="shopping_list.txt"`)
	c.Data(http.StatusOK, "text/plain; charset=utf-8", payload)
}

func (h *RecipeHandler) addEdge(c *gin.Context, add func(ctx context.Context, userID, recipeID uuid.UUID) error) {
	userID, ok := middleware.CurrentUserID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "user not authenticated"})
		return
	}

	recipeID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid recipe id"})
		return
	}

	if err := add(c.Request.Context(), userID, recipeID); err != nil {
		respondError(c, err)
		return
	}

	recipe, err := h.recipeService.GetRecipe(c.Request.Context(), recipeID)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusCreated, newRecipeShortResponse(recipe))
}

func (h *RecipeHandler) removeEdge(c *gin.Context, remove func(ctx context.Context, userID, recipeID uuid.UUID) error) {
	userID, ok := middleware.CurrentUserID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "user not authenticated"})
		return
	}

	recipeID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid recipe id"})
		return
	}

	if err := remove(c.Request.Context(), userID, recipeID); err != nil {
		respondError(c, err)
		return
	}

	c.Status(http.StatusNoContent)
}

// recipeResponse computes the viewer-relative flags for one recipe
func (h *RecipeHandler) recipeResponse(c *gin.Context, recipe *models.Recipe) RecipeResponse {
	viewerID, ok := middleware.CurrentUserID(c)
	if !ok {
		return newRecipeResponse(recipe, false, false, false)
	}

	favorited, _ := h.recipeService.FavoritedSet(c.Request.Context(), viewerID, []uuid.UUID{recipe.ID})
	inCart, _ := h.recipeService.CartSet(c.Request.Context(), viewerID, []uuid.UUID{recipe.ID})
	isSubscribed, _ := h.userService.IsSubscribed(c.Request.Context(), viewerID, recipe.AuthorID)

	return newRecipeResponse(recipe, favorited[recipe.ID], inCart[recipe.ID], isSubscribed)
}

func (h *RecipeHandler) storeImage(c *gin.Context, image string) (string, error) {
	if h.imageService == nil || image == "" {
		return image, nil
	}
	return h.imageService.StoreRecipeImage(c.Request.Context(), image)
}

func toIngredientLines(reqs []IngredientLineRequest) []service.IngredientLine {
	lines := make([]service.IngredientLine, 0, len(reqs))
	for _, r := range reqs {
		lines = append(lines, service.IngredientLine{IngredientID: r.ID, Amount: r.Amount})
	}
	return lines
}
