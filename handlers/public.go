package handlers

import (
	"net/http"

	"food-ordering-api/cache"
	"food-ordering-api/models"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
	"github.com/sirupsen/logrus"
	"gorm.io/gorm"
)

// ListRestaurants returns all active restaurants (public). The unfiltered
// listing is served read-through from redis; filtered queries go straight to
// the database.
func ListRestaurants(db *gorm.DB, rdb *redis.Client) gin.HandlerFunc {
	return func(c *gin.Context) {
		cuisine := c.Query("cuisine")
		priceRange := c.Query("price_range")
		search := c.Query("search")
		filtered := cuisine != "" || priceRange != "" || search != ""

		if !filtered {
			var cached []models.Restaurant
			if hit, err := cache.Get(c.Request.Context(), rdb, cache.ListingKey, &cached); err != nil {
				logrus.WithError(err).Warn("restaurant listing cache read failed")
			} else if hit {
				c.JSON(http.StatusOK, gin.H{"count": len(cached), "restaurants": cached})
				return
			}
		}

		var restaurants []models.Restaurant
		query := db.Where("is_active = ?", true)
		if cuisine != "" {
			query = query.Where("cuisine_type LIKE ?", "%"+cuisine+"%")
		}
		if priceRange != "" {
			query = query.Where("price_range = ?", priceRange)
		}
		if search != "" {
			query = query.Where("name LIKE ? OR description LIKE ?", "%"+search+"%", "%"+search+"%")
		}
		query.Order("created_at desc").Find(&restaurants)

		if !filtered {
			if err := cache.Set(c.Request.Context(), rdb, cache.ListingKey, restaurants, cache.ListingTTL); err != nil {
				logrus.WithError(err).Warn("restaurant listing cache write failed")
			}
		}

		c.JSON(http.StatusOK, gin.H{"count": len(restaurants), "restaurants": restaurants})
	}
}

// GetRestaurant returns a single restaurant joined with its available menu
// (public).
func GetRestaurant(db *gorm.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		var restaurant models.Restaurant
		if err := db.Preload("MenuItems", "is_available = ?", true).
			First(&restaurant, c.Param("id")).Error; err != nil {
			fail(c, http.StatusNotFound, CodeNotFound, "Restaurant not found")
			return
		}
		c.JSON(http.StatusOK, gin.H{"restaurant": restaurant})
	}
}

// Health is a liveness probe.
func Health() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok", "service": "Food Ordering API"})
	}
}
