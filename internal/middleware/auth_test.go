package middleware

import (
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
)

type stubValidator struct {
	userID uuid.UUID
}

func (v *stubValidator) ValidateToken(token string) (*TokenClaims, error) {
	if token == "valid" {
		return &TokenClaims{UserID: v.userID, Username: "tester"}, nil
	}
	return nil, fmt.Errorf("invalid token")
}

func setupAuthRouter(validator TokenValidator) *gin.Engine {
	gin.SetMode(gin.TestMode)
	router := gin.New()
	router.GET("/private", AuthMiddleware(validator), func(c *gin.Context) {
		id, _ := CurrentUserID(c)
		c.JSON(http.StatusOK, gin.H{"user_id": id})
	})
	router.GET("/public", OptionalAuthMiddleware(validator), func(c *gin.Context) {
		_, authenticated := CurrentUserID(c)
		c.JSON(http.StatusOK, gin.H{"authenticated": authenticated})
	})
	return router
}

func TestAuthMiddleware(t *testing.T) {
	router := setupAuthRouter(&stubValidator{userID: uuid.New()})

	cases := []struct {
		name   string
		header string
		status int
	}{
		{"missing header", "", http.StatusUnauthorized},
		{"malformed header", "valid", http.StatusUnauthorized},
		{"wrong scheme", "Basic valid", http.StatusUnauthorized},
		{"invalid token", "Bearer nope", http.StatusUnauthorized},
		{"valid token", "Bearer valid", http.StatusOK},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, "/private", nil)
			if tc.header != "" {
				req.Header.Set("Authorization", tc.header)
			}
			w := httptest.NewRecorder()
			router.ServeHTTP(w, req)
			assert.Equal(t, tc.status, w.Code)
		})
	}
}

func TestOptionalAuthMiddleware(t *testing.T) {
	router := setupAuthRouter(&stubValidator{userID: uuid.New()})

	req := httptest.NewRequest(http.MethodGet, "/public", nil)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `"authenticated":false`)

	req = httptest.NewRequest(http.MethodGet, "/public", nil)
	req.Header.Set("Authorization", "Bearer valid")
	w = httptest.NewRecorder()
	router.ServeHTTP(w, req)
	assert.Contains(t, w.Body.String(), `"authenticated":true`)

	// A bad token on an optional route stays anonymous instead of failing
	req = httptest.NewRequest(http.MethodGet, "/public", nil)
	req.Header.Set("Authorization", "Bearer nope")
	w = httptest.NewRecorder()
	router.ServeHTTP(w, req)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `"authenticated":false`)
}
