package routes

import (
	"food-ordering-api/config"
	"food-ordering-api/handlers"
	"food-ordering-api/middleware"
	"food-ordering-api/policy"
	"food-ordering-api/realtime"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
	"gorm.io/gorm"
)

// SetupRoutes wires the REST surface and the websocket endpoint. Role gates
// run as middleware; ownership and self-scope checks live in the handlers,
// after the target's ownership chain is resolved.
func SetupRoutes(r *gin.Engine, db *gorm.DB, rdb *redis.Client, hub *realtime.Hub, cfg *config.Config) {
	authed := middleware.AuthRequired(db, cfg.JWTSecret)

	r.GET("/health", handlers.Health())

	// ── Auth ───────────────────────────────────────────────────────
	r.POST("/auth", handlers.Auth(db, cfg))
	r.GET("/auth", authed, handlers.Me())

	// ── Restaurants & menus ────────────────────────────────────────
	restaurants := r.Group("/restaurants")
	{
		// Public reads
		restaurants.GET("", handlers.ListRestaurants(db, rdb))
		restaurants.GET("/:id", handlers.GetRestaurant(db))

		// Owner/admin surface
		restaurants.GET("/owner/my-restaurants", authed,
			middleware.RoleRequired(policy.ActionRestaurantOwned), handlers.MyRestaurants(db))
		restaurants.POST("", authed,
			middleware.RoleRequired(policy.ActionRestaurantCreate), handlers.CreateRestaurant(db, rdb))
		restaurants.PUT("/:id", authed,
			middleware.RoleRequired(policy.ActionRestaurantUpdate), handlers.UpdateRestaurant(db, rdb))
		restaurants.DELETE("/:id", authed,
			middleware.RoleRequired(policy.ActionRestaurantDelete), handlers.DeleteRestaurant(db, rdb))

		// Menu management
		restaurants.POST("/:id/menu", authed,
			middleware.RoleRequired(policy.ActionMenuManage), handlers.AddMenuItem(db))
		restaurants.PUT("/menu/:menuItemId", authed,
			middleware.RoleRequired(policy.ActionMenuManage), handlers.UpdateMenuItem(db))
		restaurants.DELETE("/menu/:menuItemId", authed,
			middleware.RoleRequired(policy.ActionMenuManage), handlers.DeleteMenuItem(db))

		// Admin listing
		restaurants.GET("/admin/all", authed,
			middleware.RoleRequired(policy.ActionAdminView), handlers.AllRestaurants(db))
	}

	// ── Orders ─────────────────────────────────────────────────────
	orders := r.Group("/orders", authed)
	{
		orders.POST("", middleware.RoleRequired(policy.ActionOrderCreate), handlers.CreateOrder(db, hub))
		orders.GET("", middleware.RoleRequired(policy.ActionOrderListAll), handlers.AllOrders(db))
		orders.GET("/restaurant/my-orders",
			middleware.RoleRequired(policy.ActionOrderListOwned), handlers.MyRestaurantOrders(db))
		orders.GET("/user/:userId", handlers.UserOrders(db))
		orders.GET("/:id", handlers.GetOrder(db))
		orders.PUT("/:id/status",
			middleware.RoleRequired(policy.ActionOrderUpdate), handlers.UpdateOrderStatus(db, hub))
		orders.PUT("/:id/cancel", handlers.CancelOrder(db, hub))
	}

	// ── Users ──────────────────────────────────────────────────────
	users := r.Group("/users", authed)
	{
		users.GET("/:id", handlers.GetUser(db))
		users.PUT("/:id", handlers.UpdateUser(db))
	}

	// ── Admin ──────────────────────────────────────────────────────
	admin := r.Group("/admin", authed, middleware.RoleRequired(policy.ActionAdminView))
	{
		admin.GET("/users", handlers.AllUsers(db))
	}

	// ── Real-time channel ──────────────────────────────────────────
	r.GET("/ws", authed, realtime.ServeWS(hub, db))
}
