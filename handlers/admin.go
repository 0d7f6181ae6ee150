package handlers

import (
	"net/http"

	"food-ordering-api/models"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"
)

// AllUsers returns every user — admin only (role gate on the route).
func AllUsers(db *gorm.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		var users []models.User
		query := db.Order("created_at desc")
		if role := c.Query("role"); role != "" {
			query = query.Where("role = ?", role)
		}
		query.Find(&users)
		c.JSON(http.StatusOK, gin.H{"count": len(users), "users": users})
	}
}

// AllRestaurants returns every restaurant, active or not, with owners
// joined — admin only.
func AllRestaurants(db *gorm.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		var restaurants []models.Restaurant
		db.Preload("Owner").Order("created_at desc").Find(&restaurants)
		c.JSON(http.StatusOK, gin.H{"count": len(restaurants), "restaurants": restaurants})
	}
}
