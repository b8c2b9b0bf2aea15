package middleware

import (
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/biblio-app/biblio/internal/models"
	"github.com/biblio-app/biblio/internal/services"
)

const testSecret = "test-secret"

func createTestAuthService() *services.AuthService {
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	// No store or redis: token validation only needs the signing secret
	return services.NewAuthService(nil, testSecret, time.Hour, nil, logger)
}

func signTestToken(t *testing.T, userID int64, role models.UserRole, expiresIn time.Duration) string {
	t.Helper()
	now := time.Now()
	claims := &models.JWTClaims{
		UserID: userID,
		Email:  "test@example.com",
		Role:   role,
		RegisteredClaims: jwt.RegisteredClaims{
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(expiresIn)),
			Issuer:    "biblio",
		},
	}
	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte(testSecret))
	require.NoError(t, err)
	return token
}

func TestAuthMiddleware_RequireAuth(t *testing.T) {
	gin.SetMode(gin.TestMode)

	middleware := NewAuthMiddleware(createTestAuthService())
	validToken := signTestToken(t, 42, models.RoleStaff, time.Hour)
	expiredToken := signTestToken(t, 42, models.RoleStaff, -time.Hour)

	tests := []struct {
		name           string
		authHeader     string
		expectedStatus int
		expectedError  string
	}{
		{
			name:           "missing authorization header",
			authHeader:     "",
			expectedStatus: http.StatusUnauthorized,
			expectedError:  "MISSING_AUTH_HEADER",
		},
		{
			name:           "no bearer scheme",
			authHeader:     "InvalidToken",
			expectedStatus: http.StatusUnauthorized,
			expectedError:  "INVALID_AUTH_FORMAT",
		},
		{
			name:           "wrong scheme",
			authHeader:     "Basic dGVzdDp0ZXN0",
			expectedStatus: http.StatusUnauthorized,
			expectedError:  "INVALID_AUTH_FORMAT",
		},
		{
			name:           "garbage token",
			authHeader:     "Bearer not-a-token",
			expectedStatus: http.StatusUnauthorized,
			expectedError:  "INVALID_TOKEN",
		},
		{
			name:           "expired token",
			authHeader:     "Bearer " + expiredToken,
			expectedStatus: http.StatusUnauthorized,
			expectedError:  "INVALID_TOKEN",
		},
		{
			name:           "valid token",
			authHeader:     "Bearer " + validToken,
			expectedStatus: http.StatusOK,
			expectedError:  "",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := httptest.NewRecorder()
			c, _ := gin.CreateTestContext(w)

			req, _ := http.NewRequest("GET", "/test", nil)
			if tt.authHeader != "" {
				req.Header.Set("Authorization", tt.authHeader)
			}
			c.Request = req

			handlerCalled := false
			middleware.RequireAuth()(c)
			if !c.IsAborted() {
				handlerCalled = true
				c.JSON(http.StatusOK, gin.H{"message": "success"})
			}

			assert.Equal(t, tt.expectedStatus, w.Code)

			if tt.expectedError != "" {
				assert.Contains(t, w.Body.String(), tt.expectedError)
				assert.False(t, handlerCalled)
			} else {
				assert.True(t, handlerCalled)

				userID, exists := c.Get("user_id")
				assert.True(t, exists)
				assert.Equal(t, int64(42), userID)

				role, exists := c.Get("user_role")
				assert.True(t, exists)
				assert.Equal(t, models.RoleStaff, role)
			}
		})
	}
}

func TestAuthMiddleware_RequireRole(t *testing.T) {
	gin.SetMode(gin.TestMode)

	middleware := NewAuthMiddleware(createTestAuthService())

	tests := []struct {
		name           string
		userRole       models.UserRole
		requiredRoles  []models.UserRole
		expectedStatus int
		expectedError  string
	}{
		{
			name:           "admin access admin endpoint",
			userRole:       models.RoleAdmin,
			requiredRoles:  []models.UserRole{models.RoleAdmin},
			expectedStatus: http.StatusOK,
		},
		{
			name:           "staff access admin endpoint",
			userRole:       models.RoleStaff,
			requiredRoles:  []models.UserRole{models.RoleAdmin},
			expectedStatus: http.StatusForbidden,
			expectedError:  "INSUFFICIENT_PERMISSIONS",
		},
		{
			name:           "staff access staff endpoint",
			userRole:       models.RoleStaff,
			requiredRoles:  []models.UserRole{models.RoleStaff, models.RoleAdmin},
			expectedStatus: http.StatusOK,
		},
		{
			name:           "member access staff endpoint",
			userRole:       models.RoleMember,
			requiredRoles:  []models.UserRole{models.RoleStaff, models.RoleAdmin},
			expectedStatus: http.StatusForbidden,
			expectedError:  "INSUFFICIENT_PERMISSIONS",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := httptest.NewRecorder()
			c, _ := gin.CreateTestContext(w)

			c.Set("user_id", int64(1))
			c.Set("user_role", tt.userRole)

			handlerCalled := false
			middleware.RequireRole(tt.requiredRoles...)(c)
			if !c.IsAborted() {
				handlerCalled = true
				c.JSON(http.StatusOK, gin.H{"message": "success"})
			}

			assert.Equal(t, tt.expectedStatus, w.Code)

			if tt.expectedError != "" {
				assert.Contains(t, w.Body.String(), tt.expectedError)
				assert.False(t, handlerCalled)
			} else {
				assert.True(t, handlerCalled)
			}
		})
	}
}

func TestAuthMiddleware_RequireStaff(t *testing.T) {
	gin.SetMode(gin.TestMode)

	middleware := NewAuthMiddleware(createTestAuthService())

	tests := []struct {
		name       string
		userRole   models.UserRole
		shouldPass bool
	}{
		{"admin access", models.RoleAdmin, true},
		{"staff access", models.RoleStaff, true},
		{"member access", models.RoleMember, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := httptest.NewRecorder()
			c, _ := gin.CreateTestContext(w)

			c.Set("user_id", int64(1))
			c.Set("user_role", tt.userRole)

			handlerCalled := false
			middleware.RequireStaff()(c)
			if !c.IsAborted() {
				handlerCalled = true
				c.JSON(http.StatusOK, gin.H{"message": "success"})
			}

			assert.Equal(t, tt.shouldPass, handlerCalled)
		})
	}
}

func TestAuthMiddleware_MissingUserContext(t *testing.T) {
	gin.SetMode(gin.TestMode)

	middleware := NewAuthMiddleware(createTestAuthService())

	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)

	middleware.RequireRole(models.RoleAdmin)(c)

	assert.Equal(t, http.StatusUnauthorized, w.Code)
	assert.Contains(t, w.Body.String(), "MISSING_USER_ROLE")
}
