package middleware_test

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"todoshare/internal/auth"
	"todoshare/internal/middleware"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v4"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const secret = "test-secret-key"

func newProtectedRouter() *gin.Engine {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.GET("/me", middleware.JWTAuthMiddleware(secret), func(c *gin.Context) {
		userID := c.MustGet(middleware.UserIDKey).(uuid.UUID)
		c.JSON(http.StatusOK, gin.H{"user_id": userID})
	})
	return r
}

func issue(t *testing.T, key string, ttl time.Duration, subject string) string {
	t.Helper()
	token, err := auth.NewTokenIssuer(key, ttl).GenerateToken(subject)
	require.NoError(t, err)
	return token
}

// forge signs claims the issuer never produces itself.
func forge(t *testing.T, method jwt.SigningMethod, claims jwt.MapClaims) string {
	t.Helper()
	token, err := jwt.NewWithClaims(method, claims).SignedString([]byte(secret))
	require.NoError(t, err)
	return token
}

func TestJWTAuthMiddleware(t *testing.T) {
	userID := uuid.New()
	exp := time.Now().Add(time.Hour).Unix()

	tests := []struct {
		name    string
		header  string
		code    int
		message string
	}{
		{
			name:   "valid token",
			header: "Bearer " + issue(t, secret, time.Hour, userID.String()),
			code:   http.StatusOK,
		},
		{
			name:    "missing header",
			code:    http.StatusUnauthorized,
			message: "Authorization header is required",
		},
		{
			name:    "wrong scheme",
			header:  "Token " + issue(t, secret, time.Hour, userID.String()),
			code:    http.StatusUnauthorized,
			message: "Authorization header format must be Bearer {token}",
		},
		{
			name:    "scheme without token",
			header:  "Bearer",
			code:    http.StatusUnauthorized,
			message: "Authorization header format must be Bearer {token}",
		},
		{
			name:    "garbage token",
			header:  "Bearer invalid.token.here",
			code:    http.StatusUnauthorized,
			message: "Invalid or expired token",
		},
		{
			name:    "other secret",
			header:  "Bearer " + issue(t, "another-secret", time.Hour, userID.String()),
			code:    http.StatusUnauthorized,
			message: "Invalid or expired token",
		},
		{
			name:    "expired",
			header:  "Bearer " + issue(t, secret, -time.Minute, userID.String()),
			code:    http.StatusUnauthorized,
			message: "Invalid or expired token",
		},
		{
			name:    "subject is not a user id",
			header:  "Bearer " + issue(t, secret, time.Hour, "admin"),
			code:    http.StatusUnauthorized,
			message: "Invalid user ID in token",
		},
		{
			name:    "unexpected algorithm",
			header:  "Bearer " + forge(t, jwt.SigningMethodHS512, jwt.MapClaims{"user_id": userID.String(), "exp": exp}),
			code:    http.StatusUnauthorized,
			message: "Invalid or expired token",
		},
		{
			name:    "no user_id claim",
			header:  "Bearer " + forge(t, jwt.SigningMethodHS256, jwt.MapClaims{"sub": userID.String(), "exp": exp}),
			code:    http.StatusUnauthorized,
			message: "Invalid or expired token",
		},
	}

	router := newProtectedRouter()
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, "/me", nil)
			if tt.header != "" {
				req.Header.Set("Authorization", tt.header)
			}
			w := httptest.NewRecorder()

			router.ServeHTTP(w, req)

			require.Equal(t, tt.code, w.Code)
			var body map[string]string
			require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
			if tt.code == http.StatusOK {
				assert.Equal(t, userID.String(), body["user_id"])
				return
			}
			assert.Equal(t, tt.message, body["error"])
		})
	}
}
