package handlers

import (
	"net/http"

	"food-ordering-api/cache"
	"food-ordering-api/middleware"
	"food-ordering-api/models"
	"food-ordering-api/policy"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
	"gorm.io/gorm"
)

// ── Restaurant Management ────────────────────────────────────────────────────

type CreateRestaurantRequest struct {
	Name        string            `json:"name" binding:"required"`
	Description string            `json:"description"`
	Address     models.Address    `json:"address"`
	CuisineType []string          `json:"cuisine_type"`
	PriceRange  models.PriceRange `json:"price_range"`
}

// CreateRestaurant lets a restaurant-role user (or admin) create a
// restaurant they own. The owner reference is taken from the identity, never
// from the request body, and is immutable afterwards.
func CreateRestaurant(db *gorm.DB, rdb *redis.Client) gin.HandlerFunc {
	return func(c *gin.Context) {
		user := middleware.CurrentUser(c)
		var req CreateRestaurantRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			fail(c, http.StatusBadRequest, CodeValidation, err.Error())
			return
		}

		priceRange := req.PriceRange
		if priceRange == "" {
			priceRange = models.PriceModerate
		}

		restaurant := models.Restaurant{
			OwnerID:     user.ID,
			Name:        req.Name,
			Description: req.Description,
			Address:     req.Address,
			CuisineType: req.CuisineType,
			PriceRange:  priceRange,
			IsActive:    true,
		}
		if err := db.Create(&restaurant).Error; err != nil {
			failInternal(c, "Failed to create restaurant")
			return
		}
		cache.Delete(c.Request.Context(), rdb, cache.ListingKey)
		c.JSON(http.StatusCreated, gin.H{"message": "Restaurant created", "restaurant": restaurant})
	}
}

type UpdateRestaurantRequest struct {
	Name        *string            `json:"name"`
	Description *string            `json:"description"`
	Address     *models.Address    `json:"address"`
	CuisineType []string           `json:"cuisine_type"`
	PriceRange  *models.PriceRange `json:"price_range"`
	Rating      *float64           `json:"rating"`
	IsActive    *bool              `json:"is_active"`
}

// UpdateRestaurant updates restaurant details after the ownership gate.
// Fields absent from the body are left untouched; the owner reference is
// immutable. Saving the full record keeps the embedded address columns and
// the serialized cuisine list going through gorm's serializers.
func UpdateRestaurant(db *gorm.DB, rdb *redis.Client) gin.HandlerFunc {
	return func(c *gin.Context) {
		user := middleware.CurrentUser(c)

		var restaurant models.Restaurant
		if err := db.First(&restaurant, c.Param("id")).Error; err != nil {
			fail(c, http.StatusNotFound, CodeNotFound, "Restaurant not found")
			return
		}
		if err := policy.AllowOwner(user, policy.ActionRestaurantUpdate, restaurant.OwnerID); err != nil {
			fail(c, http.StatusForbidden, CodeForbidden, "You don't own this restaurant")
			return
		}

		var req UpdateRestaurantRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			fail(c, http.StatusBadRequest, CodeValidation, err.Error())
			return
		}
		if req.Name != nil {
			restaurant.Name = *req.Name
		}
		if req.Description != nil {
			restaurant.Description = *req.Description
		}
		if req.Address != nil {
			restaurant.Address = *req.Address
		}
		if req.CuisineType != nil {
			restaurant.CuisineType = req.CuisineType
		}
		if req.PriceRange != nil {
			restaurant.PriceRange = *req.PriceRange
		}
		if req.Rating != nil {
			restaurant.Rating = *req.Rating
		}
		if req.IsActive != nil {
			restaurant.IsActive = *req.IsActive
		}
		if err := db.Save(&restaurant).Error; err != nil {
			failInternal(c, "Failed to update restaurant")
			return
		}
		cache.Delete(c.Request.Context(), rdb, cache.ListingKey)
		c.JSON(http.StatusOK, gin.H{"message": "Restaurant updated", "restaurant": restaurant})
	}
}

// DeleteRestaurant removes a restaurant and its menu — admin only (enforced
// by the route's role gate).
func DeleteRestaurant(db *gorm.DB, rdb *redis.Client) gin.HandlerFunc {
	return func(c *gin.Context) {
		var restaurant models.Restaurant
		if err := db.First(&restaurant, c.Param("id")).Error; err != nil {
			fail(c, http.StatusNotFound, CodeNotFound, "Restaurant not found")
			return
		}
		db.Where("restaurant_id = ?", restaurant.ID).Delete(&models.MenuItem{})
		db.Delete(&restaurant)
		cache.Delete(c.Request.Context(), rdb, cache.ListingKey)
		c.JSON(http.StatusOK, gin.H{"message": "Restaurant and associated menu items deleted"})
	}
}

// MyRestaurants lists the restaurants owned by the logged-in user.
func MyRestaurants(db *gorm.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		user := middleware.CurrentUser(c)
		var restaurants []models.Restaurant
		db.Preload("MenuItems").Where("owner_id = ?", user.ID).
			Order("created_at desc").Find(&restaurants)
		c.JSON(http.StatusOK, gin.H{"count": len(restaurants), "restaurants": restaurants})
	}
}

// ── Menu Management ─────────────────────────────────────────────────────────

type MenuItemRequest struct {
	Name         string            `json:"name" binding:"required"`
	Description  string            `json:"description"`
	Price        float64           `json:"price" binding:"required,gte=0"`
	Category     string            `json:"category"`
	IsVegetarian bool              `json:"is_vegetarian"`
	IsVegan      bool              `json:"is_vegan"`
	SpiceLevel   models.SpiceLevel `json:"spice_level"`
}

// AddMenuItem adds an item to a restaurant's menu after resolving the
// restaurant's owner.
func AddMenuItem(db *gorm.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		user := middleware.CurrentUser(c)

		var restaurant models.Restaurant
		if err := db.First(&restaurant, c.Param("id")).Error; err != nil {
			fail(c, http.StatusNotFound, CodeNotFound, "Restaurant not found")
			return
		}
		if err := policy.AllowOwner(user, policy.ActionMenuManage, restaurant.OwnerID); err != nil {
			fail(c, http.StatusForbidden, CodeForbidden, "You don't own this restaurant")
			return
		}

		var req MenuItemRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			fail(c, http.StatusBadRequest, CodeValidation, err.Error())
			return
		}

		item := models.MenuItem{
			RestaurantID: restaurant.ID,
			Name:         req.Name,
			Description:  req.Description,
			Price:        req.Price,
			Category:     req.Category,
			IsVegetarian: req.IsVegetarian,
			IsVegan:      req.IsVegan,
			SpiceLevel:   req.SpiceLevel,
			IsAvailable:  true,
		}
		if err := db.Create(&item).Error; err != nil {
			failInternal(c, "Failed to add menu item")
			return
		}
		c.JSON(http.StatusCreated, gin.H{"message": "Menu item added", "item": item})
	}
}

type UpdateMenuItemRequest struct {
	Name         *string            `json:"name"`
	Description  *string            `json:"description"`
	Price        *float64           `json:"price"`
	Category     *string            `json:"category"`
	IsAvailable  *bool              `json:"is_available"`
	IsVegetarian *bool              `json:"is_vegetarian"`
	IsVegan      *bool              `json:"is_vegan"`
	SpiceLevel   *models.SpiceLevel `json:"spice_level"`
}

// UpdateMenuItem updates a menu item. The ownership chain
// MenuItem → Restaurant → owner is resolved before granting access — never
// assumed from the request body. The restaurant reference is immutable.
func UpdateMenuItem(db *gorm.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		item, ok := resolveMenuItem(c, db)
		if !ok {
			return
		}

		var req UpdateMenuItemRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			fail(c, http.StatusBadRequest, CodeValidation, err.Error())
			return
		}
		if req.Price != nil && *req.Price < 0 {
			fail(c, http.StatusBadRequest, CodeValidation, "price must not be negative")
			return
		}

		if req.Name != nil {
			item.Name = *req.Name
		}
		if req.Description != nil {
			item.Description = *req.Description
		}
		if req.Price != nil {
			item.Price = *req.Price
		}
		if req.Category != nil {
			item.Category = *req.Category
		}
		if req.IsAvailable != nil {
			item.IsAvailable = *req.IsAvailable
		}
		if req.IsVegetarian != nil {
			item.IsVegetarian = *req.IsVegetarian
		}
		if req.IsVegan != nil {
			item.IsVegan = *req.IsVegan
		}
		if req.SpiceLevel != nil {
			item.SpiceLevel = *req.SpiceLevel
		}
		if err := db.Save(item).Error; err != nil {
			failInternal(c, "Failed to update menu item")
			return
		}
		c.JSON(http.StatusOK, gin.H{"message": "Menu item updated", "item": item})
	}
}

// DeleteMenuItem removes a menu item after the same ownership resolution.
func DeleteMenuItem(db *gorm.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		item, ok := resolveMenuItem(c, db)
		if !ok {
			return
		}
		db.Delete(item)
		c.JSON(http.StatusOK, gin.H{"message": "Menu item deleted"})
	}
}

// resolveMenuItem loads the item, walks its ownership chain and applies the
// policy engine. Writes the error response itself when access is denied.
func resolveMenuItem(c *gin.Context, db *gorm.DB) (*models.MenuItem, bool) {
	user := middleware.CurrentUser(c)

	var item models.MenuItem
	if err := db.First(&item, c.Param("menuItemId")).Error; err != nil {
		fail(c, http.StatusNotFound, CodeNotFound, "Menu item not found")
		return nil, false
	}
	var restaurant models.Restaurant
	if err := db.First(&restaurant, item.RestaurantID).Error; err != nil {
		fail(c, http.StatusNotFound, CodeNotFound, "Restaurant not found")
		return nil, false
	}
	if err := policy.AllowOwner(user, policy.ActionMenuManage, restaurant.OwnerID); err != nil {
		fail(c, http.StatusForbidden, CodeForbidden, "You don't own this menu item")
		return nil, false
	}
	return &item, true
}
