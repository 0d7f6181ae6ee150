package handlers_test

import (
	"bytes"
	"encoding/json"
	"net/http/httptest"
	"path/filepath"
	"sync"
	"testing"

	"food-ordering-api/auth"
	"food-ordering-api/config"
	"food-ordering-api/handlers"
	"food-ordering-api/middleware"
	"food-ordering-api/models"
	"food-ordering-api/policy"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

const testSecret = "handlers-test-secret"

// recorderHub counts broadcasts so tests can assert exactly-once emission.
type recorderHub struct {
	mu     sync.Mutex
	events []string
}

func (h *recorderHub) PublishOrder(event string, order *models.Order) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.events = append(h.events, event)
}

func (h *recorderHub) Events() []string {
	h.mu.Lock()
	defer h.mu.Unlock()
	return append([]string(nil), h.events...)
}

type testEnv struct {
	r   *gin.Engine
	db  *gorm.DB
	hub *recorderHub
}

// newTestEnv builds an isolated engine with the production route layout, a
// throwaway sqlite database and a recording broadcaster.
func newTestEnv(t *testing.T) *testEnv {
	t.Helper()
	gin.SetMode(gin.TestMode)

	db, err := config.OpenDB(filepath.Join(t.TempDir(), "test.db"))
	require.NoError(t, err)

	cfg := &config.Config{JWTSecret: testSecret}
	hub := &recorderHub{}

	r := gin.New()
	authed := middleware.AuthRequired(db, cfg.JWTSecret)

	r.POST("/auth", handlers.Auth(db, cfg))
	r.GET("/auth", authed, handlers.Me())

	r.GET("/restaurants", handlers.ListRestaurants(db, nil))
	r.GET("/restaurants/:id", handlers.GetRestaurant(db))
	r.GET("/restaurants/owner/my-restaurants", authed,
		middleware.RoleRequired(policy.ActionRestaurantOwned), handlers.MyRestaurants(db))
	r.POST("/restaurants", authed,
		middleware.RoleRequired(policy.ActionRestaurantCreate), handlers.CreateRestaurant(db, nil))
	r.PUT("/restaurants/:id", authed,
		middleware.RoleRequired(policy.ActionRestaurantUpdate), handlers.UpdateRestaurant(db, nil))
	r.DELETE("/restaurants/:id", authed,
		middleware.RoleRequired(policy.ActionRestaurantDelete), handlers.DeleteRestaurant(db, nil))
	r.POST("/restaurants/:id/menu", authed,
		middleware.RoleRequired(policy.ActionMenuManage), handlers.AddMenuItem(db))
	r.PUT("/restaurants/menu/:menuItemId", authed,
		middleware.RoleRequired(policy.ActionMenuManage), handlers.UpdateMenuItem(db))
	r.DELETE("/restaurants/menu/:menuItemId", authed,
		middleware.RoleRequired(policy.ActionMenuManage), handlers.DeleteMenuItem(db))

	r.POST("/orders", authed,
		middleware.RoleRequired(policy.ActionOrderCreate), handlers.CreateOrder(db, hub))
	r.GET("/orders", authed,
		middleware.RoleRequired(policy.ActionOrderListAll), handlers.AllOrders(db))
	r.GET("/orders/restaurant/my-orders", authed,
		middleware.RoleRequired(policy.ActionOrderListOwned), handlers.MyRestaurantOrders(db))
	r.GET("/orders/user/:userId", authed, handlers.UserOrders(db))
	r.GET("/orders/:id", authed, handlers.GetOrder(db))
	r.PUT("/orders/:id/status", authed,
		middleware.RoleRequired(policy.ActionOrderUpdate), handlers.UpdateOrderStatus(db, hub))
	r.PUT("/orders/:id/cancel", authed, handlers.CancelOrder(db, hub))

	r.GET("/users/:id", authed, handlers.GetUser(db))
	r.PUT("/users/:id", authed, handlers.UpdateUser(db))

	return &testEnv{r: r, db: db, hub: hub}
}

// createUser seeds a user directly and returns it with a valid session
// token. MinCost keeps the suite fast.
func (e *testEnv) createUser(t *testing.T, name, email string, role models.UserRole) (*models.User, string) {
	t.Helper()
	hash, err := bcrypt.GenerateFromPassword([]byte("password123"), bcrypt.MinCost)
	require.NoError(t, err)
	user := models.User{Name: name, Email: email, PasswordHash: string(hash), Role: role}
	require.NoError(t, e.db.Create(&user).Error)

	token, err := auth.GenerateToken(user.ID, testSecret)
	require.NoError(t, err)
	return &user, token
}

func (e *testEnv) createRestaurant(t *testing.T, ownerID uint, name string) *models.Restaurant {
	t.Helper()
	restaurant := models.Restaurant{
		OwnerID:     ownerID,
		Name:        name,
		CuisineType: []string{"Italian"},
		PriceRange:  models.PriceModerate,
		IsActive:    true,
	}
	require.NoError(t, e.db.Create(&restaurant).Error)
	return &restaurant
}

func (e *testEnv) createMenuItem(t *testing.T, restaurantID uint, name string, price float64) *models.MenuItem {
	t.Helper()
	item := models.MenuItem{
		RestaurantID: restaurantID,
		Name:         name,
		Price:        price,
		Category:     "mains",
		IsAvailable:  true,
	}
	require.NoError(t, e.db.Create(&item).Error)
	return &item
}

// do performs a request with an optional bearer token and JSON body.
func (e *testEnv) do(t *testing.T, method, path, token string, body any) *httptest.ResponseRecorder {
	t.Helper()
	var reader *bytes.Reader
	if body != nil {
		b, err := json.Marshal(body)
		require.NoError(t, err)
		reader = bytes.NewReader(b)
	} else {
		reader = bytes.NewReader(nil)
	}
	req := httptest.NewRequest(method, path, reader)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	rr := httptest.NewRecorder()
	e.r.ServeHTTP(rr, req)
	return rr
}

func decode(t *testing.T, rr *httptest.ResponseRecorder) map[string]any {
	t.Helper()
	var out map[string]any
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &out))
	return out
}
