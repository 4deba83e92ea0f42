package api

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/foodgram-app/backend/internal/middleware"
	"github.com/foodgram-app/backend/internal/models"
	"github.com/foodgram-app/backend/internal/service"
)

type UserHandler struct {
	userService   *service.UserService
	recipeService *service.RecipeService
	authService   *service.AuthService
}

func NewUserHandler(userService *service.UserService, recipeService *service.RecipeService, authService *service.AuthService) *UserHandler {
	return &UserHandler{
		userService:   userService,
		recipeService: recipeService,
		authService:   authService,
	}
}

func (h *UserHandler) RegisterRoutes(router *gin.RouterGroup) {
	users := router.Group("/users")
	{
		users.GET("", middleware.OptionalAuthMiddleware(h.authService), h.ListUsers)
		users.GET("/me", middleware.AuthMiddleware(h.authService), h.Me)
		users.POST("/set_password", middleware.AuthMiddleware(h.authService), h.SetPassword)
		users.GET("/subscriptions", middleware.AuthMiddleware(h.authService), h.Subscriptions)
		users.GET("/:id", middleware.OptionalAuthMiddleware(h.authService), h.GetUser)
		users.POST("/:id/subscribe", middleware.AuthMiddleware(h.authService), h.Subscribe)
		users.DELETE("/:id/subscribe", middleware.AuthMiddleware(h.authService), h.Unsubscribe)
	}
}

func (h *UserHandler) ListUsers(c *gin.Context) {
	page, limit := pageParams(c)

	users, count, err := h.userService.ListUsers(c.Request.Context(), page, limit)
	if err != nil {
		respondError(c, err)
		return
	}

	subscribed := map[uuid.UUID]bool{}
	if viewerID, ok := middleware.CurrentUserID(c); ok {
		ids := make([]uuid.UUID, 0, len(users))
		for _, u := range users {
			ids = append(ids, u.ID)
		}
		subscribed, err = h.userService.SubscribedSet(c.Request.Context(), viewerID, ids)
		if err != nil {
			respondError(c, err)
			return
		}
	}

	results := make([]UserResponse, 0, len(users))
	for i := range users {
		results = append(results, newUserResponse(&users[i], subscribed[users[i].ID]))
	}

	c.JSON(http.StatusOK, PagedResponse{Count: count, Results: results})
}

func (h *UserHandler) GetUser(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid user id"})
		return
	}

	user, err := h.userService.GetUser(c.Request.Context(), id)
	if err != nil {
		respondError(c, err)
		return
	}

	isSubscribed := false
	if viewerID, ok := middleware.CurrentUserID(c); ok {
		isSubscribed, err = h.userService.IsSubscribed(c.Request.Context(), viewerID, user.ID)
		if err != nil {
			respondError(c, err)
			return
		}
	}

	c.JSON(http.StatusOK, newUserResponse(user, isSubscribed))
}

func (h *UserHandler) Me(c *gin.Context) {
	userID, ok := middleware.CurrentUserID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "user not authenticated"})
		return
	}

	user, err := h.userService.GetUser(c.Request.Context(), userID)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, newUserResponse(user, false))
}

type SetPasswordRequest struct {
	CurrentPassword string `json:"current_password" binding:"required"`
	NewPassword     string `json:"new_password" binding:"required,min=6"`
}

func (h *UserHandler) SetPassword(c *gin.Context) {
	userID, ok := middleware.CurrentUserID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "user not authenticated"})
		return
	}

	var req SetPasswordRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	if err := h.authService.SetPassword(c.Request.Context(), userID, req.CurrentPassword, req.NewPassword); err != nil {
		respondError(c, err)
		return
	}

	c.Status(http.StatusNoContent)
}

func (h *UserHandler) Subscribe(c *gin.Context) {
	userID, ok := middleware.CurrentUserID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "user not authenticated"})
		return
	}

	authorID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid user id"})
		return
	}

	if err := h.userService.Subscribe(c.Request.Context(), userID, authorID); err != nil {
		respondError(c, err)
		return
	}

	author, err := h.userService.GetUser(c.Request.Context(), authorID)
	if err != nil {
		respondError(c, err)
		return
	}

	resp, err := h.subscriptionResponse(c, author, 0)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, resp)
}

func (h *UserHandler) Unsubscribe(c *gin.Context) {
	userID, ok := middleware.CurrentUserID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "user not authenticated"})
		return
	}

	authorID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid user id"})
		return
	}

	if err := h.userService.Unsubscribe(c.Request.Context(), userID, authorID); err != nil {
		respondError(c, err)
		return
	}

	c.Status(http.StatusNoContent)
}

func (h *UserHandler) Subscriptions(c *gin.Context) {
	userID, ok := middleware.CurrentUserID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "user not authenticated"})
		return
	}

	page, limit := pageParams(c)

	recipesLimit := 0
	if v, err := strconv.Atoi(c.Query("recipes_limit")); err == nil && v > 0 {
		recipesLimit = v
	}

	authors, count, err := h.userService.Subscriptions(c.Request.Context(), userID, page, limit)
	if err != nil {
		respondError(c, err)
		return
	}

	results := make([]SubscriptionResponse, 0, len(authors))
	for i := range authors {
		resp, err := h.subscriptionResponse(c, &authors[i], recipesLimit)
		if err != nil {
			respondError(c, err)
			return
		}
		results = append(results, resp)
	}

	c.JSON(http.StatusOK, PagedResponse{Count: count, Results: results})
}

// subscriptionResponse embeds the author's recent recipes and recipe count
func (h *UserHandler) subscriptionResponse(c *gin.Context, author *models.User, recipesLimit int) (SubscriptionResponse, error) {
	recipes, err := h.recipeService.AuthorRecipes(c.Request.Context(), author.ID, recipesLimit)
	if err != nil {
		return SubscriptionResponse{}, err
	}
	recipesCount, err := h.recipeService.CountAuthorRecipes(c.Request.Context(), author.ID)
	if err != nil {
		return SubscriptionResponse{}, err
	}

	short := make([]RecipeShortResponse, 0, len(recipes))
	for i := range recipes {
		short = append(short, newRecipeShortResponse(&recipes[i]))
	}

	return SubscriptionResponse{
		UserResponse: newUserResponse(author, true),
		Recipes:      short,
		RecipesCount: recipesCount,
	}, nil
}
