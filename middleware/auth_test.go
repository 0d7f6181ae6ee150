package middleware_test

import (
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"strconv"
	"testing"
	"time"

	"food-ordering-api/auth"
	"food-ordering-api/config"
	"food-ordering-api/middleware"
	"food-ordering-api/models"
	"food-ordering-api/policy"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

const secret = "middleware-test-secret"

func setup(t *testing.T) (*gin.Engine, *gorm.DB) {
	t.Helper()
	gin.SetMode(gin.TestMode)

	db, err := config.OpenDB(filepath.Join(t.TempDir(), "test.db"))
	require.NoError(t, err)

	r := gin.New()
	r.GET("/whoami", middleware.AuthRequired(db, secret), func(c *gin.Context) {
		user := middleware.CurrentUser(c)
		c.JSON(http.StatusOK, gin.H{"id": user.ID})
	})
	r.GET("/staff", middleware.AuthRequired(db, secret),
		middleware.RoleRequired(policy.ActionOrderListOwned), func(c *gin.Context) {
			c.Status(http.StatusNoContent)
		})
	return r, db
}

func seedUser(t *testing.T, db *gorm.DB, role models.UserRole) (*models.User, string) {
	t.Helper()
	user := models.User{Name: "T", Email: string(role) + "@example.com", PasswordHash: "x", Role: role}
	require.NoError(t, db.Create(&user).Error)
	token, err := auth.GenerateToken(user.ID, secret)
	require.NoError(t, err)
	return &user, token
}

func TestIdentityFromCookie(t *testing.T) {
	r, db := setup(t)
	user, token := seedUser(t, db, models.RoleCustomer)

	req := httptest.NewRequest(http.MethodGet, "/whoami", nil)
	req.AddCookie(&http.Cookie{Name: auth.CookieName, Value: token})
	rr := httptest.NewRecorder()
	r.ServeHTTP(rr, req)

	require.Equal(t, http.StatusOK, rr.Code)
	assert.Contains(t, rr.Body.String(), strconv.Itoa(int(user.ID)))
}

func TestIdentityFromBearerHeader(t *testing.T) {
	r, db := setup(t)
	_, token := seedUser(t, db, models.RoleCustomer)

	req := httptest.NewRequest(http.MethodGet, "/whoami", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	rr := httptest.NewRecorder()
	r.ServeHTTP(rr, req)

	assert.Equal(t, http.StatusOK, rr.Code)
}

func TestUnauthorizedSubCodes(t *testing.T) {
	r, db := setup(t)
	_, goodToken := seedUser(t, db, models.RoleCustomer)

	expired := jwt.NewWithClaims(jwt.SigningMethodHS256, auth.Claims{
		UserID: 1,
		RegisteredClaims: jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(-time.Hour)),
			IssuedAt:  jwt.NewNumericDate(time.Now().Add(-2 * time.Hour)),
		},
	})
	expiredToken, err := expired.SignedString([]byte(secret))
	require.NoError(t, err)

	ghostToken, err := auth.GenerateToken(99999, secret)
	require.NoError(t, err)

	cases := []struct {
		name  string
		token string
		code  string
	}{
		{"no token", "", "NO_TOKEN"},
		{"garbage", "not-a-jwt", "TOKEN_INVALID"},
		{"wrong secret", mustSign(t, "other-secret"), "TOKEN_INVALID"},
		{"expired", expiredToken, "TOKEN_EXPIRED"},
		{"deleted user", ghostToken, "USER_NOT_FOUND"},
		{"valid", goodToken, ""},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, "/whoami", nil)
			if tc.token != "" {
				req.Header.Set("Authorization", "Bearer "+tc.token)
			}
			rr := httptest.NewRecorder()
			r.ServeHTTP(rr, req)

			if tc.code == "" {
				assert.Equal(t, http.StatusOK, rr.Code)
				return
			}
			assert.Equal(t, http.StatusUnauthorized, rr.Code)
			assert.Contains(t, rr.Body.String(), tc.code)
		})
	}
}

func TestRoleGate(t *testing.T) {
	r, db := setup(t)
	_, custToken := seedUser(t, db, models.RoleCustomer)
	_, ownerToken := seedUser(t, db, models.RoleRestaurant)

	req := httptest.NewRequest(http.MethodGet, "/staff", nil)
	req.Header.Set("Authorization", "Bearer "+custToken)
	rr := httptest.NewRecorder()
	r.ServeHTTP(rr, req)
	assert.Equal(t, http.StatusForbidden, rr.Code)
	assert.Contains(t, rr.Body.String(), "FORBIDDEN")

	req = httptest.NewRequest(http.MethodGet, "/staff", nil)
	req.Header.Set("Authorization", "Bearer "+ownerToken)
	rr = httptest.NewRecorder()
	r.ServeHTTP(rr, req)
	assert.Equal(t, http.StatusNoContent, rr.Code)
}

func mustSign(t *testing.T, withSecret string) string {
	t.Helper()
	token, err := auth.GenerateToken(1, withSecret)
	require.NoError(t, err)
	return token
}
