package handlers

import (
	"log"
	"net/http"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"github.com/swagatsuman/delivery-app-sub002/models"
)

// CreateEstablishmentRequest defines the request body (JSON) for registering
// a new establishment. Address fields come pre-filled from the signup
// geocoding widget.
type CreateEstablishmentRequest struct {
	Name        string  `json:"name" binding:"required"`
	Description string  `json:"description"`
	CuisineType string  `json:"cuisine_type" binding:"required"`
	Address     string  `json:"address" binding:"required"`
	City        string  `json:"city"`
	State       string  `json:"state"`
	Pincode     string  `json:"pincode"`
	Latitude    float64 `json:"latitude"`
	Longitude   float64 `json:"longitude"`
	Phone       string  `json:"phone"`
	OpeningTime string  `json:"opening_time"`
	ClosingTime string  `json:"closing_time"`
}

type UpdateEstablishmentRequest struct {
	Name        string  `json:"name"`
	Description string  `json:"description"`
	CuisineType string  `json:"cuisine_type"`
	Address     string  `json:"address"`
	City        string  `json:"city"`
	State       string  `json:"state"`
	Pincode     string  `json:"pincode"`
	Latitude    float64 `json:"latitude"`
	Longitude   float64 `json:"longitude"`
	Phone       string  `json:"phone"`
	OpeningTime string  `json:"opening_time"`
	ClosingTime string  `json:"closing_time"`
	IsOpen      *bool   `json:"is_open"`
}

// CheckEstablishmentOwnership loads the establishment and aborts unless the
// authenticated owner owns it.
func CheckEstablishmentOwnership(c *gin.Context, establishmentIDString string) (*models.Establishment, bool) {
	if DB == nil {
		c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{"error": "Database not initialized"})
		return nil, false
	}

	claims, ok := currentClaims(c)
	if !ok {
		return nil, false
	}

	var establishment models.Establishment
	if err := DB.First(&establishment, establishmentIDString).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			c.AbortWithStatusJSON(http.StatusNotFound, gin.H{"error": "Establishment not found"})
			return nil, false
		}

		log.Println(err)
		c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{"error": "Failed to get establishment"})
		return nil, false
	}

	if establishment.OwnerID != claims.UserID {
		c.AbortWithStatusJSON(http.StatusForbidden, gin.H{"error": "You don't own this establishment"})
		return nil, false
	}

	return &establishment, true
}

func CreateEstablishmentHandler(c *gin.Context) {
	if DB == nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Database connection not initialized"})
		return
	}

	var request CreateEstablishmentRequest
	if err := c.ShouldBindJSON(&request); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	claims, ok := currentClaims(c)
	if !ok {
		return
	}

	establishment := models.Establishment{
		Name:        request.Name,
		Description: request.Description,
		CuisineType: request.CuisineType,
		Address:     request.Address,
		City:        request.City,
		State:       request.State,
		Pincode:     request.Pincode,
		Latitude:    request.Latitude,
		Longitude:   request.Longitude,
		Phone:       request.Phone,
		IsOpen:      true,
		OpeningTime: request.OpeningTime,
		ClosingTime: request.ClosingTime,
		OwnerID:     claims.UserID,
	}

	if err := DB.Create(&establishment).Error; err != nil {
		log.Printf("Failed to create establishment %v: %v", establishment.Name, err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to create establishment: " + err.Error()})
		return
	}

	c.JSON(http.StatusCreated, gin.H{"establishment": establishment})
}

func GetOwnerEstablishmentsHandler(c *gin.Context) {
	if DB == nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Database connection not initialized"})
		return
	}

	claims, ok := currentClaims(c)
	if !ok {
		return
	}

	var establishments []models.Establishment
	if err := DB.Where("owner_id = ?", claims.UserID).Find(&establishments).Error; err != nil {
		log.Printf("Failed to get establishments for user %v: %v", claims.UserID, err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to get establishments: " + err.Error()})
		return
	}

	if establishments == nil {
		establishments = []models.Establishment{}
	}

	c.JSON(http.StatusOK, gin.H{"establishments": establishments})
}

func GetEstablishmentHandler(c *gin.Context) {
	establishment, owned := CheckEstablishmentOwnership(c, c.Param("establishment_id"))
	if !owned {
		return
	}

	c.JSON(http.StatusOK, gin.H{"establishment": establishment})
}

func UpdateEstablishmentHandler(c *gin.Context) {
	establishment, owned := CheckEstablishmentOwnership(c, c.Param("establishment_id"))
	if !owned {
		return
	}

	var request UpdateEstablishmentRequest
	if err := c.ShouldBindJSON(&request); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "JSON error: " + err.Error()})
		return
	}

	updateData := models.Establishment{
		Name:        request.Name,
		Description: request.Description,
		CuisineType: request.CuisineType,
		Address:     request.Address,
		City:        request.City,
		State:       request.State,
		Pincode:     request.Pincode,
		Latitude:    request.Latitude,
		Longitude:   request.Longitude,
		Phone:       request.Phone,
		OpeningTime: request.OpeningTime,
		ClosingTime: request.ClosingTime,
	}

	if err := DB.Model(establishment).Updates(updateData).Error; err != nil {
		log.Printf("Failed to update establishment %v: %v", establishment.ID, err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to update establishment: " + err.Error()})
		return
	}

	// Updates skips zero values, so the open flag toggles through a pointer.
	if request.IsOpen != nil {
		if err := DB.Model(establishment).Update("is_open", *request.IsOpen).Error; err != nil {
			log.Printf("Failed to update establishment %v: %v", establishment.ID, err)
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to update establishment: " + err.Error()})
			return
		}
	}

	c.JSON(http.StatusOK, gin.H{"establishment": establishment})
}

func DeleteEstablishmentHandler(c *gin.Context) {
	establishment, owned := CheckEstablishmentOwnership(c, c.Param("establishment_id"))
	if !owned {
		return
	}

	if err := DB.Delete(establishment).Error; err != nil {
		log.Printf("Failed to delete establishment %v: %v", establishment.ID, err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to delete establishment: " + err.Error()})
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "Establishment deleted successfully"})
}
