package api

import (
	"net/http"
	"strings"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/foodgram-app/backend/internal/testutil"
)

func recipeBody(name string, ingredients []map[string]interface{}, tags []string) map[string]interface{} {
	return map[string]interface{}{
		"name":         name,
		"text":         "Cook it well.",
		"image":        "http://example.com/image.jpg",
		"cooking_time": 30,
		"ingredients":  ingredients,
		"tags":         tags,
	}
}

func TestCreateRecipeEndpoint(t *testing.T) {
	env := setupTestRouter(t)
	token := env.registerUser(t, "author")
	carrot := testutil.CreateTestIngredient(t, env.db, "carrot", "g")
	dinner := testutil.CreateTestTag(t, env.db, "Dinner", "dinner")

	body := recipeBody("Carrot soup", []map[string]interface{}{
		{"id": carrot.ID.String(), "amount": 100},
	}, []string{dinner.ID.String()})

	w := env.request(t, http.MethodPost, "/api/v1/recipes", token, body)
	require.Equal(t, http.StatusCreated, w.Code)

	var resp RecipeResponse
	decodeBody(t, w, &resp)
	assert.Equal(t, "Carrot soup", resp.Name)
	assert.Equal(t, "author", resp.Author.Username)
	require.Len(t, resp.Ingredients, 1)
	assert.Equal(t, "carrot", resp.Ingredients[0].Name)
	assert.Equal(t, float64(100), resp.Ingredients[0].Amount)
	require.Len(t, resp.Tags, 1)
	assert.Equal(t, "dinner", resp.Tags[0].Slug)
	assert.False(t, resp.IsFavorited)
}

func TestCreateRecipeEndpointRequiresAuth(t *testing.T) {
	env := setupTestRouter(t)

	w := env.request(t, http.MethodPost, "/api/v1/recipes", "", recipeBody("Soup", nil, nil))
	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestCreateRecipeEndpointDuplicateIngredient(t *testing.T) {
	env := setupTestRouter(t)
	token := env.registerUser(t, "author")
	carrot := testutil.CreateTestIngredient(t, env.db, "carrot", "g")

	body := recipeBody("Soup", []map[string]interface{}{
		{"id": carrot.ID.String(), "amount": 100},
		{"id": carrot.ID.String(), "amount": 50},
	}, nil)

	w := env.request(t, http.MethodPost, "/api/v1/recipes", token, body)
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestCreateRecipeEndpointUnknownIngredient(t *testing.T) {
	env := setupTestRouter(t)
	token := env.registerUser(t, "author")

	body := recipeBody("Soup", []map[string]interface{}{
		{"id": uuid.New().String(), "amount": 100},
	}, nil)

	w := env.request(t, http.MethodPost, "/api/v1/recipes", token, body)
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestGetRecipeEndpoint(t *testing.T) {
	env := setupTestRouter(t)
	token := env.registerUser(t, "author")
	carrot := testutil.CreateTestIngredient(t, env.db, "carrot", "g")

	w := env.request(t, http.MethodPost, "/api/v1/recipes", token, recipeBody("Soup", []map[string]interface{}{
		{"id": carrot.ID.String(), "amount": 100},
	}, nil))
	require.Equal(t, http.StatusCreated, w.Code)
	var created RecipeResponse
	decodeBody(t, w, &created)

	// Anonymous read works
	w = env.request(t, http.MethodGet, "/api/v1/recipes/"+created.ID.String(), "", nil)
	assert.Equal(t, http.StatusOK, w.Code)

	w = env.request(t, http.MethodGet, "/api/v1/recipes/"+uuid.New().String(), "", nil)
	assert.Equal(t, http.StatusNotFound, w.Code)

	w = env.request(t, http.MethodGet, "/api/v1/recipes/not-a-uuid", "", nil)
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestUpdateRecipeEndpointAuthorOnly(t *testing.T) {
	env := setupTestRouter(t)
	authorToken := env.registerUser(t, "author")
	intruderToken := env.registerUser(t, "intruder")
	carrot := testutil.CreateTestIngredient(t, env.db, "carrot", "g")

	w := env.request(t, http.MethodPost, "/api/v1/recipes", authorToken, recipeBody("Soup", []map[string]interface{}{
		{"id": carrot.ID.String(), "amount": 100},
	}, nil))
	require.Equal(t, http.StatusCreated, w.Code)
	var created RecipeResponse
	decodeBody(t, w, &created)

	patch := map[string]interface{}{
		"name": "Hijacked",
		"ingredients": []map[string]interface{}{
			{"id": carrot.ID.String(), "amount": 100},
		},
	}
	w = env.request(t, http.MethodPatch, "/api/v1/recipes/"+created.ID.String(), intruderToken, patch)
	assert.Equal(t, http.StatusForbidden, w.Code)

	w = env.request(t, http.MethodPatch, "/api/v1/recipes/"+created.ID.String(), authorToken, patch)
	require.Equal(t, http.StatusOK, w.Code)
	var updated RecipeResponse
	decodeBody(t, w, &updated)
	assert.Equal(t, "Hijacked", updated.Name)
	assert.Equal(t, "Cook it well.", updated.Text)
}

func TestDeleteRecipeEndpoint(t *testing.T) {
	env := setupTestRouter(t)
	token := env.registerUser(t, "author")
	carrot := testutil.CreateTestIngredient(t, env.db, "carrot", "g")

	w := env.request(t, http.MethodPost, "/api/v1/recipes", token, recipeBody("Soup", []map[string]interface{}{
		{"id": carrot.ID.String(), "amount": 100},
	}, nil))
	require.Equal(t, http.StatusCreated, w.Code)
	var created RecipeResponse
	decodeBody(t, w, &created)

	w = env.request(t, http.MethodDelete, "/api/v1/recipes/"+created.ID.String(), token, nil)
	assert.Equal(t, http.StatusNoContent, w.Code)

	w = env.request(t, http.MethodDelete, "/api/v1/recipes/"+created.ID.String(), token, nil)
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestFavoriteEndpoints(t *testing.T) {
	env := setupTestRouter(t)
	authorToken := env.registerUser(t, "author")
	fanToken := env.registerUser(t, "fan")
	carrot := testutil.CreateTestIngredient(t, env.db, "carrot", "g")

	w := env.request(t, http.MethodPost, "/api/v1/recipes", authorToken, recipeBody("Soup", []map[string]interface{}{
		{"id": carrot.ID.String(), "amount": 100},
	}, nil))
	require.Equal(t, http.StatusCreated, w.Code)
	var created RecipeResponse
	decodeBody(t, w, &created)
	path := "/api/v1/recipes/" + created.ID.String() + "/favorite"

	w = env.request(t, http.MethodPost, path, fanToken, nil)
	require.Equal(t, http.StatusCreated, w.Code)
	var short RecipeShortResponse
	decodeBody(t, w, &short)
	assert.Equal(t, created.ID, short.ID)

	// Repeating the add is rejected, not ignored
	w = env.request(t, http.MethodPost, path, fanToken, nil)
	assert.Equal(t, http.StatusBadRequest, w.Code)

	// The flag shows up on the personalized read
	w = env.request(t, http.MethodGet, "/api/v1/recipes/"+created.ID.String(), fanToken, nil)
	require.Equal(t, http.StatusOK, w.Code)
	var got RecipeResponse
	decodeBody(t, w, &got)
	assert.True(t, got.IsFavorited)

	w = env.request(t, http.MethodDelete, path, fanToken, nil)
	assert.Equal(t, http.StatusNoContent, w.Code)
	w = env.request(t, http.MethodDelete, path, fanToken, nil)
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestShoppingCartAndDownload(t *testing.T) {
	env := setupTestRouter(t)
	token := env.registerUser(t, "shopper")
	carrot := testutil.CreateTestIngredient(t, env.db, "carrot", "g")
	salt := testutil.CreateTestIngredient(t, env.db, "salt", "g")

	w := env.request(t, http.MethodPost, "/api/v1/recipes", token, recipeBody("Soup", []map[string]interface{}{
		{"id": carrot.ID.String(), "amount": 100},
		{"id": salt.ID.String(), "amount": 5},
	}, nil))
	require.Equal(t, http.StatusCreated, w.Code)
	var soup RecipeResponse
	decodeBody(t, w, &soup)

	w = env.request(t, http.MethodPost, "/api/v1/recipes", token, recipeBody("Salad", []map[string]interface{}{
		{"id": carrot.ID.String(), "amount": 50},
	}, nil))
	require.Equal(t, http.StatusCreated, w.Code)
	var salad RecipeResponse
	decodeBody(t, w, &salad)

	for _, id := range []uuid.UUID{soup.ID, salad.ID} {
		w = env.request(t, http.MethodPost, "/api/v1/recipes/"+id.String()+"/shopping_cart", token, nil)
		require.Equal(t, http.StatusCreated, w.Code)
	}

	w = env.request(t, http.MethodGet, "/api/v1/recipes/download_shopping_cart", token, nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Header().Get("Content-Disposition"), "shopping_list.txt")

	text := w.Body.String()
	assert.Contains(t, text, "carrot (g): 150")
	assert.Contains(t, text, "salt (g): 5")
	assert.Less(t, strings.Index(text, "carrot"), strings.Index(text, "salt"))
}

func TestListRecipesEndpointPagination(t *testing.T) {
	env := setupTestRouter(t)
	token := env.registerUser(t, "author")
	carrot := testutil.CreateTestIngredient(t, env.db, "carrot", "g")

	for _, name := range []string{"One", "Two", "Three"} {
		w := env.request(t, http.MethodPost, "/api/v1/recipes", token, recipeBody(name, []map[string]interface{}{
			{"id": carrot.ID.String(), "amount": 10},
		}, nil))
		require.Equal(t, http.StatusCreated, w.Code)
	}

	w := env.request(t, http.MethodGet, "/api/v1/recipes?page=1&limit=2", "", nil)
	require.Equal(t, http.StatusOK, w.Code)

	var resp struct {
		Count   int64            `json:"count"`
		Results []RecipeResponse `json:"results"`
	}
	decodeBody(t, w, &resp)
	assert.Equal(t, int64(3), resp.Count)
	assert.Len(t, resp.Results, 2)
}
