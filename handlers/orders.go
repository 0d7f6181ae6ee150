package handlers

import (
	"fmt"
	"math"
	"net/http"
	"strconv"

	"food-ordering-api/middleware"
	"food-ordering-api/models"
	"food-ordering-api/policy"
	"food-ordering-api/realtime"
	"food-ordering-api/statemachine"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
	"gorm.io/gorm"
)

type CreateOrderRequest struct {
	RestaurantID    uint                   `json:"restaurant_id" binding:"required"`
	DeliveryAddress models.DeliveryAddress `json:"delivery_address" binding:"required"`
	PaymentMethod   string                 `json:"payment_method"`
	Notes           string                 `json:"notes"`
	Items           []struct {
		MenuItemID uint     `json:"menu_item_id" binding:"required"`
		Quantity   int      `json:"quantity" binding:"required,min=1"`
		Price      *float64 `json:"price"` // client-declared, verified below
	} `json:"items" binding:"required,min=1"`
}

// CreateOrder places a new order for the authenticated customer. Every line
// is re-priced from the persisted menu records; a client-declared price that
// disagrees with the stored one is rejected rather than trusted. On success
// the populated order is broadcast as a newOrder event.
func CreateOrder(db *gorm.DB, hub realtime.Broadcaster) gin.HandlerFunc {
	return func(c *gin.Context) {
		user := middleware.CurrentUser(c)

		var req CreateOrderRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			fail(c, http.StatusBadRequest, CodeValidation, err.Error())
			return
		}

		paymentMethod := req.PaymentMethod
		if paymentMethod == "" {
			paymentMethod = "cod"
		}
		if paymentMethod != "cod" && paymentMethod != "none" {
			fail(c, http.StatusBadRequest, CodeValidation, "payment_method must be 'cod' or 'none'")
			return
		}

		var restaurant models.Restaurant
		if err := db.First(&restaurant, req.RestaurantID).Error; err != nil {
			fail(c, http.StatusNotFound, CodeNotFound, "Restaurant not found")
			return
		}
		if !restaurant.IsActive {
			fail(c, http.StatusBadRequest, CodeValidation, "Restaurant is not accepting orders")
			return
		}

		var orderItems []models.OrderItem
		for _, reqItem := range req.Items {
			var menuItem models.MenuItem
			if err := db.First(&menuItem, reqItem.MenuItemID).Error; err != nil {
				fail(c, http.StatusBadRequest, CodeValidation,
					fmt.Sprintf("Menu item %d not found", reqItem.MenuItemID))
				return
			}
			if menuItem.RestaurantID != restaurant.ID {
				fail(c, http.StatusBadRequest, CodeValidation,
					"Menu item '"+menuItem.Name+"' does not belong to this restaurant")
				return
			}
			if !menuItem.IsAvailable {
				fail(c, http.StatusBadRequest, CodeValidation,
					"Menu item '"+menuItem.Name+"' is not available")
				return
			}
			if reqItem.Price != nil && math.Abs(*reqItem.Price-menuItem.Price) > 0.009 {
				fail(c, http.StatusBadRequest, CodePriceMismatch,
					fmt.Sprintf("Price for '%s' does not match the menu (sent %.2f, menu %.2f)",
						menuItem.Name, *reqItem.Price, menuItem.Price))
				return
			}
			orderItems = append(orderItems, models.OrderItem{
				MenuItemID: menuItem.ID,
				Quantity:   reqItem.Quantity,
				Price:      menuItem.Price, // always the stored price
				Name:       menuItem.Name,
			})
		}

		order := models.Order{
			UserID:          user.ID,
			RestaurantID:    restaurant.ID,
			Items:           orderItems,
			DeliveryAddress: req.DeliveryAddress,
			PaymentMethod:   paymentMethod,
			Status:          models.StatusPending,
			Notes:           req.Notes,
		}
		order.ComputeCharges()

		if err := db.Create(&order).Error; err != nil {
			failInternal(c, "Failed to place order")
			return
		}
		recordHistory(db, &models.OrderStatusHistory{
			OrderID:   order.ID,
			ToStatus:  models.StatusPending,
			ChangedBy: user.ID,
			Note:      "Order placed by customer",
		})

		populated := populateOrder(db, order.ID)
		hub.PublishOrder(realtime.EventNewOrder, populated)

		c.JSON(http.StatusCreated, gin.H{"message": "Order placed successfully", "order": populated})
	}
}

// GetOrder returns a single order, self-scoped: the placing customer, the
// owner of the order's restaurant, or an admin.
func GetOrder(db *gorm.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		user := middleware.CurrentUser(c)

		var order models.Order
		if err := db.Preload("Items").Preload("User").Preload("Restaurant").
			Preload("StatusHistory").First(&order, c.Param("id")).Error; err != nil {
			fail(c, http.StatusNotFound, CodeNotFound, "Order not found")
			return
		}
		if err := policy.AllowOrderRead(user, order.UserID, order.Restaurant.OwnerID); err != nil {
			fail(c, http.StatusForbidden, CodeForbidden, "This order does not belong to you")
			return
		}
		c.JSON(http.StatusOK, gin.H{"order": order})
	}
}

// UserOrders lists a user's orders. Requesting another user's id is
// Forbidden for non-admins; self-scope is a denial, not an empty result.
func UserOrders(db *gorm.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		user := middleware.CurrentUser(c)

		targetID, err := strconv.ParseUint(c.Param("userId"), 10, 32)
		if err != nil {
			fail(c, http.StatusBadRequest, CodeValidation, "Invalid user id")
			return
		}
		if err := policy.AllowUserOrders(user, uint(targetID)); err != nil {
			fail(c, http.StatusForbidden, CodeForbidden, "You may only list your own orders")
			return
		}

		var orders []models.Order
		db.Preload("Items").Preload("Restaurant").
			Where("user_id = ?", targetID).
			Order("created_at desc").Find(&orders)
		c.JSON(http.StatusOK, gin.H{"count": len(orders), "orders": orders})
	}
}

// MyRestaurantOrders lists all orders across the restaurants the caller
// owns.
func MyRestaurantOrders(db *gorm.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		user := middleware.CurrentUser(c)

		var restaurantIDs []uint
		db.Model(&models.Restaurant{}).Where("owner_id = ?", user.ID).Pluck("id", &restaurantIDs)
		if len(restaurantIDs) == 0 {
			c.JSON(http.StatusOK, gin.H{"count": 0, "orders": []models.Order{}})
			return
		}

		var orders []models.Order
		query := db.Preload("Items").Preload("User").Preload("Restaurant").
			Where("restaurant_id IN ?", restaurantIDs)
		if status := c.Query("status"); status != "" {
			query = query.Where("status = ?", status)
		}
		query.Order("created_at desc").Find(&orders)

		c.JSON(http.StatusOK, gin.H{"count": len(orders), "orders": orders})
	}
}

// AllOrders returns every order — admin only (role gate on the route).
func AllOrders(db *gorm.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		var orders []models.Order
		query := db.Preload("Items").Preload("User").Preload("Restaurant")
		if status := c.Query("status"); status != "" {
			query = query.Where("status = ?", status)
		}
		query.Order("created_at desc").Find(&orders)
		c.JSON(http.StatusOK, gin.H{"count": len(orders), "orders": orders})
	}
}

type UpdateOrderStatusRequest struct {
	Status models.OrderStatus `json:"status" binding:"required"`
	Note   string             `json:"note"`
	// Force lets an admin jump states outside the canonical lifecycle.
	// The override is recorded in the status history.
	Force bool `json:"force"`
}

// UpdateOrderStatus transitions an order through its lifecycle. The caller
// must own the order's restaurant (or be admin); the move must follow the
// canonical state machine unless an admin forces it. A successful transition
// is broadcast as an orderStatusUpdate event.
func UpdateOrderStatus(db *gorm.DB, hub realtime.Broadcaster) gin.HandlerFunc {
	return func(c *gin.Context) {
		user := middleware.CurrentUser(c)

		var order models.Order
		if err := db.First(&order, c.Param("id")).Error; err != nil {
			fail(c, http.StatusNotFound, CodeNotFound, "Order not found")
			return
		}
		var restaurant models.Restaurant
		if err := db.First(&restaurant, order.RestaurantID).Error; err != nil {
			fail(c, http.StatusNotFound, CodeNotFound, "Restaurant not found")
			return
		}
		if err := policy.AllowOwner(user, policy.ActionOrderUpdate, restaurant.OwnerID); err != nil {
			fail(c, http.StatusForbidden, CodeForbidden, "This order does not belong to your restaurant")
			return
		}

		var req UpdateOrderStatusRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			fail(c, http.StatusBadRequest, CodeValidation, err.Error())
			return
		}
		if !models.ValidStatus(req.Status) {
			fail(c, http.StatusBadRequest, CodeValidation, "Unknown status: "+string(req.Status))
			return
		}

		forced := req.Force && user.Role == models.RoleAdmin
		if !forced {
			if err := statemachine.CanTransition(order.Status, req.Status); err != nil {
				fail(c, http.StatusUnprocessableEntity, CodeInvalidTransition, err.Error())
				return
			}
		}

		// Conditional write: two concurrent transitions from the same state
		// can both pass the table check, but only one wins the row.
		prevStatus := order.Status
		res := db.Model(&models.Order{}).
			Where("id = ? AND status = ?", order.ID, prevStatus).
			Update("status", req.Status)
		if res.Error != nil {
			failInternal(c, "Failed to update order status")
			return
		}
		if res.RowsAffected == 0 {
			fail(c, http.StatusUnprocessableEntity, CodeInvalidTransition,
				"Order status changed concurrently, please retry")
			return
		}

		note := req.Note
		if forced {
			note = "[ADMIN OVERRIDE] " + note
			logrus.WithFields(logrus.Fields{
				"order_id": order.ID,
				"from":     prevStatus,
				"to":       req.Status,
				"admin":    user.ID,
			}).Warn("order status forced outside canonical lifecycle")
		}
		recordHistory(db, &models.OrderStatusHistory{
			OrderID:    order.ID,
			FromStatus: prevStatus,
			ToStatus:   req.Status,
			ChangedBy:  user.ID,
			Note:       note,
		})

		populated := populateOrder(db, order.ID)
		hub.PublishOrder(realtime.EventOrderStatusUpdate, populated)

		c.JSON(http.StatusOK, gin.H{
			"message":         "Order status updated",
			"previous_status": prevStatus,
			"order":           populated,
		})
	}
}

// CancelOrder lets the placing customer cancel while the lifecycle still
// allows it (PENDING, CONFIRMED or IN_PROGRESS).
func CancelOrder(db *gorm.DB, hub realtime.Broadcaster) gin.HandlerFunc {
	return func(c *gin.Context) {
		user := middleware.CurrentUser(c)

		var order models.Order
		if err := db.First(&order, c.Param("id")).Error; err != nil {
			fail(c, http.StatusNotFound, CodeNotFound, "Order not found")
			return
		}
		if order.UserID != user.ID {
			fail(c, http.StatusForbidden, CodeForbidden, "This order does not belong to you")
			return
		}
		if err := statemachine.CanTransition(order.Status, models.StatusCancelled); err != nil {
			fail(c, http.StatusUnprocessableEntity, CodeInvalidTransition, err.Error())
			return
		}

		prevStatus := order.Status
		res := db.Model(&models.Order{}).
			Where("id = ? AND status = ?", order.ID, prevStatus).
			Update("status", models.StatusCancelled)
		if res.Error != nil {
			failInternal(c, "Failed to cancel order")
			return
		}
		if res.RowsAffected == 0 {
			fail(c, http.StatusUnprocessableEntity, CodeInvalidTransition,
				"Order status changed concurrently, please retry")
			return
		}
		recordHistory(db, &models.OrderStatusHistory{
			OrderID:    order.ID,
			FromStatus: prevStatus,
			ToStatus:   models.StatusCancelled,
			ChangedBy:  user.ID,
			Note:       "Order cancelled by customer",
		})

		populated := populateOrder(db, order.ID)
		hub.PublishOrder(realtime.EventOrderStatusUpdate, populated)

		c.JSON(http.StatusOK, gin.H{"message": "Order cancelled", "order": populated})
	}
}

// recordHistory appends an audit row. A failed audit write never fails the
// transition it describes, but it must not pass silently either.
func recordHistory(db *gorm.DB, entry *models.OrderStatusHistory) {
	if err := db.Create(entry).Error; err != nil {
		logrus.WithError(err).WithFields(logrus.Fields{
			"order_id": entry.OrderID,
			"to":       entry.ToStatus,
		}).Warn("failed to record order status history")
	}
}

// populateOrder joins the customer and restaurant onto the order the way the
// real-time payload expects them.
func populateOrder(db *gorm.DB, orderID uint) *models.Order {
	var order models.Order
	if err := db.Preload("Items").Preload("User").Preload("Restaurant").
		First(&order, orderID).Error; err != nil {
		return nil
	}
	return &order
}
