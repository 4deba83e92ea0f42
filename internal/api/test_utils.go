package api

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"github.com/foodgram-app/backend/internal/service"
	"github.com/foodgram-app/backend/internal/testutil"
)

type testEnv struct {
	router *gin.Engine
	db     *gorm.DB
	auth   *service.AuthService
}

func setupTestRouter(t *testing.T) *testEnv {
	t.Helper()
	gin.SetMode(gin.TestMode)

	db := testutil.NewTestDB(t)
	authService := service.NewAuthService(db, "test-secret")
	userService := service.NewUserService(db)
	recipeService := service.NewRecipeService(db)
	catalogService := service.NewCatalogService(db)

	router := gin.New()
	v1 := router.Group("/api/v1")
	NewAuthHandler(authService).RegisterRoutes(v1)
	NewUserHandler(userService, recipeService, authService).RegisterRoutes(v1)
	NewRecipeHandler(recipeService, userService, authService, nil, nil).RegisterRoutes(v1)
	NewCatalogHandler(catalogService).RegisterRoutes(v1)

	return &testEnv{router: router, db: db, auth: authService}
}

// registerUser creates an account through the auth service and returns a token
func (e *testEnv) registerUser(t *testing.T, username string) string {
	t.Helper()
	token, err := e.auth.Register(context.Background(), service.RegisterInput{
		Email:     fmt.Sprintf("%s@example.com", username),
		Username:  username,
		FirstName: "Test",
		LastName:  "User",
		Password:  testutil.TestPassword,
	})
	if err != nil {
		t.Fatalf("failed to register test user: %v", err)
	}
	return token
}

func (e *testEnv) request(t *testing.T, method, path, token string, body interface{}) *httptest.ResponseRecorder {
	t.Helper()

	var buf bytes.Buffer
	if body != nil {
		if err := json.NewEncoder(&buf).Encode(body); err != nil {
			t.Fatalf("failed to encode request body: %v", err)
		}
	}

	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	w := httptest.NewRecorder()
	e.router.ServeHTTP(w, req)
	return w
}

func decodeBody(t *testing.T, w *httptest.ResponseRecorder, out interface{}) {
	t.Helper()
	if err := json.Unmarshal(w.Body.Bytes(), out); err != nil {
		t.Fatalf("failed to decode response %q: %v", w.Body.String(), err)
	}
}
