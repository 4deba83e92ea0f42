package api

import (
	"net/http"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/foodgram-app/backend/internal/models"
	"github.com/foodgram-app/backend/internal/testutil"
)

func TestTagsEndpoints(t *testing.T) {
	env := setupTestRouter(t)
	dinner := testutil.CreateTestTag(t, env.db, "Dinner", "dinner")
	testutil.CreateTestTag(t, env.db, "Breakfast", "breakfast")

	w := env.request(t, http.MethodGet, "/api/v1/tags", "", nil)
	require.Equal(t, http.StatusOK, w.Code)

	var tags []models.Tag
	decodeBody(t, w, &tags)
	require.Len(t, tags, 2)
	assert.Equal(t, "breakfast", tags[0].Slug)

	w = env.request(t, http.MethodGet, "/api/v1/tags/"+dinner.ID.String(), "", nil)
	require.Equal(t, http.StatusOK, w.Code)

	w = env.request(t, http.MethodGet, "/api/v1/tags/"+uuid.New().String(), "", nil)
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestIngredientsEndpoints(t *testing.T) {
	env := setupTestRouter(t)
	carrot := testutil.CreateTestIngredient(t, env.db, "carrot", "g")
	testutil.CreateTestIngredient(t, env.db, "cardamom", "g")
	testutil.CreateTestIngredient(t, env.db, "salt", "g")

	w := env.request(t, http.MethodGet, "/api/v1/ingredients?name=car", "", nil)
	require.Equal(t, http.StatusOK, w.Code)

	var ingredients []models.Ingredient
	decodeBody(t, w, &ingredients)
	assert.Len(t, ingredients, 2)

	w = env.request(t, http.MethodGet, "/api/v1/ingredients/"+carrot.ID.String(), "", nil)
	require.Equal(t, http.StatusOK, w.Code)

	var got models.Ingredient
	decodeBody(t, w, &got)
	assert.Equal(t, "carrot", got.Name)
}
