package service

import (
	"context"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/foodgram-app/backend/internal/testutil"
)

func TestListIngredientsPrefixSearch(t *testing.T) {
	db := testutil.NewTestDB(t)
	svc := NewCatalogService(db)
	testutil.CreateTestIngredient(t, db, "carrot", "g")
	testutil.CreateTestIngredient(t, db, "cardamom", "g")
	testutil.CreateTestIngredient(t, db, "salt", "g")

	all, err := svc.ListIngredients(context.Background(), "")
	require.NoError(t, err)
	assert.Len(t, all, 3)

	matched, err := svc.ListIngredients(context.Background(), "Car")
	require.NoError(t, err)
	require.Len(t, matched, 2)
	for _, ing := range matched {
		assert.True(t, strings.HasPrefix(ing.Name, "car"))
	}

	none, err := svc.ListIngredients(context.Background(), "zz")
	require.NoError(t, err)
	assert.Empty(t, none)
}

func TestListTagsOrderedBySlug(t *testing.T) {
	db := testutil.NewTestDB(t)
	svc := NewCatalogService(db)
	testutil.CreateTestTag(t, db, "Dinner", "dinner")
	testutil.CreateTestTag(t, db, "Breakfast", "breakfast")

	tags, err := svc.ListTags(context.Background())
	require.NoError(t, err)
	require.Len(t, tags, 2)
	assert.Equal(t, "breakfast", tags[0].Slug)
	assert.Equal(t, "dinner", tags[1].Slug)
}

func TestImportIngredientsCSV(t *testing.T) {
	db := testutil.NewTestDB(t)
	svc := NewCatalogService(db)

	csv := "name,measurement_unit\ncarrot,g\nsalt,g\nmilk,ml\n"
	count, err := svc.ImportIngredientsCSV(context.Background(), strings.NewReader(csv))
	require.NoError(t, err)
	assert.Equal(t, 3, count)

	ingredients, err := svc.ListIngredients(context.Background(), "")
	require.NoError(t, err)
	assert.Len(t, ingredients, 3)
}
