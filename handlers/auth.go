package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"github.com/swagatsuman/delivery-app-sub002/models"
	"github.com/swagatsuman/delivery-app-sub002/utils"
)

var DB *gorm.DB

const UserClaimsHandlerKey = "user_claims"

// RegisterRequest binds owner signup data.
type RegisterRequest struct {
	Name     string `json:"name" binding:"required"`
	Email    string `json:"email" binding:"required,email"`
	Phone    string `json:"phone"`
	Password string `json:"password" binding:"required,min=8,max=64"`
}

type LoginRequest struct {
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required,min=8,max=64"`
}

func AuthHandler(c *gin.Context) {
	if DB == nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Database connection not initialized"})
		return
	}

	switch c.Request.URL.Path {
	case "/auth/register":
		register(c)
	case "/auth/login":
		login(c)
	default:
		c.JSON(http.StatusNotFound, gin.H{"error": "Route not found"})
	}
}

func register(c *gin.Context) {
	var req RegisterRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	// Check if a user with the email already exists
	var existingUser models.User
	queryResult := DB.Where("email = ?", req.Email).First(&existingUser)

	if queryResult.Error == nil {
		// No error means user was found. Email is already registered.
		c.JSON(http.StatusConflict, gin.H{"error": "Email already registered"})
		return
	}

	if queryResult.Error != gorm.ErrRecordNotFound {
		c.JSON(http.StatusInternalServerError, gin.H{"error": queryResult.Error.Error()})
		return
	}

	user := models.User{Name: req.Name, Email: req.Email, Phone: req.Phone}

	if err := user.HashPassword(req.Password); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to hash password"})
		return
	}

	if err := DB.Create(&user).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to create user"})
		return
	}

	c.JSON(http.StatusCreated, gin.H{"message": "User registered successfully", "user_id": user.ID})
}

func login(c *gin.Context) {
	var req LoginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	var user models.User
	if err := DB.Where("email = ?", req.Email).First(&user).Error; err != nil {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Invalid credentials"})
		return
	}

	if err := user.CheckPassword(req.Password); err != nil {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Invalid credentials"})
		return
	}

	token, err := utils.GenerateToken(user.ID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to generate token"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"token": token, "user_id": user.ID})
}

func AuthMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		tokenString := c.GetHeader("Authorization")
		if tokenString == "" {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "Authorization header is missing"})
			return
		}

		claims, err := utils.ValidateToken(tokenString)
		if err != nil {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "Invalid token"})
			return
		}

		c.Set(UserClaimsHandlerKey, claims)
		c.Next()
	}
}

// AccountHandler returns the authenticated owner's account.
func AccountHandler(c *gin.Context) {
	claims, ok := currentClaims(c)
	if !ok {
		return
	}

	var user models.User
	if err := DB.First(&user, claims.UserID).Error; err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "Account not found"})
		return
	}

	c.JSON(http.StatusOK, user)
}

func currentClaims(c *gin.Context) (*utils.Claims, bool) {
	claimsInterface, _ := c.Get(UserClaimsHandlerKey)
	if claimsInterface == nil {
		c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "User isn't authorized"})
		return nil, false
	}
	return claimsInterface.(*utils.Claims), true
}
