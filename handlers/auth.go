package handlers

import (
	"net/http"
	"strings"

	"food-ordering-api/auth"
	"food-ordering-api/config"
	"food-ordering-api/middleware"
	"food-ordering-api/models"

	"github.com/gin-gonic/gin"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

// AuthRequest is the single-envelope auth endpoint body; action selects the
// operation.
type AuthRequest struct {
	Action   string          `json:"action" binding:"required"`
	Name     string          `json:"name"`
	Email    string          `json:"email"`
	Password string          `json:"password"`
	Role     models.UserRole `json:"role"`
	Phone    string          `json:"phone"`
	Address  models.Address  `json:"address"`
}

// Auth dispatches POST /auth between register, login and logout.
func Auth(db *gorm.DB, cfg *config.Config) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req AuthRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			fail(c, http.StatusBadRequest, CodeValidation, err.Error())
			return
		}
		switch req.Action {
		case "register":
			register(c, db, cfg, req)
		case "login":
			login(c, db, cfg, req)
		case "logout":
			auth.ClearSessionCookie(c, cfg.IsProd)
			c.JSON(http.StatusOK, gin.H{"message": "Logged out"})
		default:
			fail(c, http.StatusBadRequest, CodeValidation, "Unknown action: "+req.Action)
		}
	}
}

func register(c *gin.Context, db *gorm.DB, cfg *config.Config, req AuthRequest) {
	if req.Name == "" || req.Email == "" || req.Password == "" {
		fail(c, http.StatusBadRequest, CodeValidation, "name, email and password are required")
		return
	}
	if len(req.Password) < 6 {
		fail(c, http.StatusBadRequest, CodeValidation, "password must be at least 6 characters")
		return
	}

	// Role is fixed at creation. An unknown or empty role registers as a
	// customer; there is no promotion endpoint.
	role := req.Role
	if !models.ValidRole(role) {
		role = models.RoleCustomer
	}

	// Email uniqueness is case-insensitive; the canonical form is lowercase.
	email := strings.ToLower(strings.TrimSpace(req.Email))
	var existing models.User
	if err := db.Where("email = ?", email).First(&existing).Error; err == nil {
		fail(c, http.StatusConflict, CodeConflict, "Email already registered")
		return
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcrypt.DefaultCost)
	if err != nil {
		failInternal(c, "Failed to hash password")
		return
	}

	user := models.User{
		Name:         req.Name,
		Email:        email,
		PasswordHash: string(hash),
		Role:         role,
		Phone:        req.Phone,
		Address:      req.Address,
	}
	if err := db.Create(&user).Error; err != nil {
		failInternal(c, "Failed to create user")
		return
	}

	token, err := auth.GenerateToken(user.ID, cfg.JWTSecret)
	if err != nil {
		failInternal(c, "Failed to generate token")
		return
	}
	auth.SetSessionCookie(c, token, cfg.IsProd)

	c.JSON(http.StatusCreated, gin.H{
		"message": "Account created successfully",
		"token":   token,
		"user":    publicUser(&user),
	})
}

func login(c *gin.Context, db *gorm.DB, cfg *config.Config, req AuthRequest) {
	if req.Email == "" || req.Password == "" {
		fail(c, http.StatusBadRequest, CodeValidation, "email and password are required")
		return
	}

	var user models.User
	email := strings.ToLower(strings.TrimSpace(req.Email))
	if err := db.Where("email = ?", email).First(&user).Error; err != nil {
		fail(c, http.StatusUnauthorized, "UNAUTHORIZED", "Invalid email or password")
		return
	}
	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(req.Password)); err != nil {
		fail(c, http.StatusUnauthorized, "UNAUTHORIZED", "Invalid email or password")
		return
	}

	token, err := auth.GenerateToken(user.ID, cfg.JWTSecret)
	if err != nil {
		failInternal(c, "Failed to generate token")
		return
	}
	auth.SetSessionCookie(c, token, cfg.IsProd)

	c.JSON(http.StatusOK, gin.H{
		"message": "Login successful",
		"token":   token,
		"user":    publicUser(&user),
	})
}

// Me answers GET /auth?action=me with the resolved identity.
func Me() gin.HandlerFunc {
	return func(c *gin.Context) {
		if c.Query("action") != "me" {
			fail(c, http.StatusBadRequest, CodeValidation, "Unknown action: "+c.Query("action"))
			return
		}
		user := middleware.CurrentUser(c)
		c.JSON(http.StatusOK, gin.H{"user": user})
	}
}

func publicUser(u *models.User) gin.H {
	return gin.H{
		"id":    u.ID,
		"name":  u.Name,
		"email": u.Email,
		"role":  u.Role,
	}
}
