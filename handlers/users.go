package handlers

import (
	"net/http"
	"strconv"

	"food-ordering-api/middleware"
	"food-ordering-api/models"

	"github.com/gin-gonic/gin"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

// GetUser returns a user profile: self-scope, admin unrestricted.
func GetUser(db *gorm.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		caller := middleware.CurrentUser(c)
		targetID, err := strconv.ParseUint(c.Param("id"), 10, 32)
		if err != nil {
			fail(c, http.StatusBadRequest, CodeValidation, "Invalid user id")
			return
		}
		if caller.Role != models.RoleAdmin && caller.ID != uint(targetID) {
			fail(c, http.StatusForbidden, CodeForbidden, "You may only view your own profile")
			return
		}
		var user models.User
		if err := db.First(&user, targetID).Error; err != nil {
			fail(c, http.StatusNotFound, CodeNotFound, "User not found")
			return
		}
		c.JSON(http.StatusOK, gin.H{"user": user})
	}
}

type UpdateUserRequest struct {
	Name     string          `json:"name"`
	Phone    string          `json:"phone"`
	Address  *models.Address `json:"address"`
	Password string          `json:"password"`
}

// UpdateUser updates the caller's own contact profile. Role and email are
// fixed at registration and cannot be changed here; a new password is
// re-hashed before the write.
func UpdateUser(db *gorm.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		caller := middleware.CurrentUser(c)
		targetID, err := strconv.ParseUint(c.Param("id"), 10, 32)
		if err != nil {
			fail(c, http.StatusBadRequest, CodeValidation, "Invalid user id")
			return
		}
		if caller.ID != uint(targetID) {
			fail(c, http.StatusForbidden, CodeForbidden, "You may only update your own profile")
			return
		}

		var req UpdateUserRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			fail(c, http.StatusBadRequest, CodeValidation, err.Error())
			return
		}

		update := map[string]interface{}{}
		if req.Name != "" {
			update["name"] = req.Name
		}
		if req.Phone != "" {
			update["phone"] = req.Phone
		}
		if req.Address != nil {
			update["address_street"] = req.Address.Street
			update["address_city"] = req.Address.City
			update["address_state"] = req.Address.State
			update["address_zip_code"] = req.Address.ZipCode
		}
		if req.Password != "" {
			if len(req.Password) < 6 {
				fail(c, http.StatusBadRequest, CodeValidation, "password must be at least 6 characters")
				return
			}
			hash, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcrypt.DefaultCost)
			if err != nil {
				failInternal(c, "Failed to hash password")
				return
			}
			update["password_hash"] = string(hash)
		}

		if err := db.Model(caller).Updates(update).Error; err != nil {
			failInternal(c, "Failed to update user")
			return
		}
		c.JSON(http.StatusOK, gin.H{"message": "Profile updated", "user": caller})
	}
}
