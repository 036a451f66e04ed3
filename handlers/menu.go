package handlers

import (
	"log"
	"net/http"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"github.com/swagatsuman/delivery-app-sub002/models"
)

type CreateCategoryRequest struct {
	Name        string `json:"name" binding:"required"`
	Description string `json:"description"`
	SortOrder   int    `json:"sort_order"`
}

type CreateMenuItemRequest struct {
	Name               string  `json:"name" binding:"required"`
	Description        string  `json:"description"`
	Price              float64 `json:"price" binding:"required,gt=0"`
	ImageURL           string  `json:"image_url"`
	IsVeg              bool    `json:"is_veg"`
	PreparationMinutes int     `json:"preparation_minutes"`
	CategoryID         uint    `json:"category_id" binding:"required"`
}

type UpdateMenuItemRequest struct {
	Name               *string  `json:"name"`
	Description        *string  `json:"description"`
	Price              *float64 `json:"price"`
	ImageURL           *string  `json:"image_url"`
	IsVeg              *bool    `json:"is_veg"`
	IsAvailable        *bool    `json:"is_available"`
	PreparationMinutes *int     `json:"preparation_minutes"`
	CategoryID         *uint    `json:"category_id"`
}

func CreateCategoryHandler(c *gin.Context) {
	establishment, owned := CheckEstablishmentOwnership(c, c.Param("establishment_id"))
	if !owned {
		return
	}

	var request CreateCategoryRequest
	if err := c.ShouldBindJSON(&request); err != nil {
		c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	category := &models.Category{
		Name:            request.Name,
		Description:     request.Description,
		SortOrder:       request.SortOrder,
		EstablishmentID: establishment.ID,
	}

	if err := DB.Create(category).Error; err != nil {
		log.Println(err)
		c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusCreated, category)
}

func GetCategoriesHandler(c *gin.Context) {
	establishment, owned := CheckEstablishmentOwnership(c, c.Param("establishment_id"))
	if !owned {
		return
	}

	var categories []models.Category
	if err := DB.Where("establishment_id = ?", establishment.ID).Order("sort_order").Find(&categories).Error; err != nil {
		log.Println(err)
		c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{"error": "Failed to get categories: " + err.Error()})
		return
	}

	if categories == nil {
		categories = []models.Category{}
	}

	c.JSON(http.StatusOK, categories)
}

func DeleteCategoryHandler(c *gin.Context) {
	establishment, owned := CheckEstablishmentOwnership(c, c.Param("establishment_id"))
	if !owned {
		return
	}

	var category models.Category
	if err := DB.Where("id = ? AND establishment_id = ?", c.Param("category_id"), establishment.ID).First(&category).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			c.AbortWithStatusJSON(http.StatusNotFound, gin.H{"error": "Category not found"})
			return
		}

		log.Println(err)
		c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{"error": "Category not found"})
		return
	}

	if err := DB.Delete(&category).Error; err != nil {
		log.Println(err)
		c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{"error": "Failed to delete category: " + err.Error()})
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "Deleted category"})
}

func CreateMenuItemHandler(c *gin.Context) {
	establishment, owned := CheckEstablishmentOwnership(c, c.Param("establishment_id"))
	if !owned {
		return
	}

	var request CreateMenuItemRequest
	if err := c.ShouldBindJSON(&request); err != nil {
		c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	// The category must belong to the same establishment.
	var category models.Category
	if err := DB.Where("id = ? AND establishment_id = ?", request.CategoryID, establishment.ID).First(&category).Error; err != nil {
		c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{"error": "Invalid category for this establishment"})
		return
	}

	menuItem := &models.MenuItem{
		Name:               request.Name,
		Description:        request.Description,
		Price:              request.Price,
		ImageURL:           request.ImageURL,
		IsVeg:              request.IsVeg,
		IsAvailable:        true,
		PreparationMinutes: request.PreparationMinutes,
		CategoryID:         request.CategoryID,
		EstablishmentID:    establishment.ID,
	}

	if err := DB.Create(menuItem).Error; err != nil {
		log.Println(err)
		c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusCreated, menuItem)
}

func GetMenuItemsHandler(c *gin.Context) {
	establishment, owned := CheckEstablishmentOwnership(c, c.Param("establishment_id"))
	if !owned {
		return
	}

	query := DB.Where("establishment_id = ?", establishment.ID)
	if categoryID := c.Query("category_id"); categoryID != "" {
		query = query.Where("category_id = ?", categoryID)
	}

	var menuItems []models.MenuItem
	if err := query.Find(&menuItems).Error; err != nil {
		log.Println(err)
		c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{"error": "Failed to get menu items: " + err.Error()})
		return
	}

	if menuItems == nil {
		menuItems = []models.MenuItem{}
	}

	c.JSON(http.StatusOK, menuItems)
}

func UpdateMenuItemHandler(c *gin.Context) {
	establishment, owned := CheckEstablishmentOwnership(c, c.Param("establishment_id"))
	if !owned {
		return
	}

	var request UpdateMenuItemRequest
	if err := c.ShouldBindJSON(&request); err != nil {
		c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	var menuItem models.MenuItem
	if err := DB.Where("id = ? AND establishment_id = ?", c.Param("item_id"), establishment.ID).First(&menuItem).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			c.AbortWithStatusJSON(http.StatusNotFound, gin.H{"error": "Menu item not found"})
			return
		}

		log.Println(err)
		c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{"error": "Menu item not found"})
		return
	}

	// Build map for updates to handle partial updates correctly with pointers
	updates := make(map[string]interface{})

	if request.Name != nil {
		updates["name"] = *request.Name
	}

	if request.Description != nil {
		updates["description"] = *request.Description
	}

	if request.Price != nil {
		updates["price"] = *request.Price
	}

	if request.ImageURL != nil {
		updates["image_url"] = *request.ImageURL
	}

	if request.IsVeg != nil {
		updates["is_veg"] = *request.IsVeg
	}

	if request.IsAvailable != nil {
		updates["is_available"] = *request.IsAvailable
	}

	if request.PreparationMinutes != nil {
		updates["preparation_minutes"] = *request.PreparationMinutes
	}

	if request.CategoryID != nil {
		var category models.Category
		if err := DB.Where("id = ? AND establishment_id = ?", *request.CategoryID, establishment.ID).First(&category).Error; err != nil {
			c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{"error": "Invalid category for this establishment"})
			return
		}
		updates["category_id"] = *request.CategoryID
	}

	if len(updates) == 0 {
		c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{"error": "No update fields provided"})
		return
	}

	if err := DB.Model(&menuItem).Updates(updates).Error; err != nil {
		log.Println(err)
		c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusOK, menuItem)
}

func DeleteMenuItemHandler(c *gin.Context) {
	establishment, owned := CheckEstablishmentOwnership(c, c.Param("establishment_id"))
	if !owned {
		return
	}

	var menuItem models.MenuItem
	if err := DB.Where("id = ? AND establishment_id = ?", c.Param("item_id"), establishment.ID).First(&menuItem).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			c.AbortWithStatusJSON(http.StatusNotFound, gin.H{"error": "Menu item not found"})
			return
		}

		log.Println(err)
		c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{"error": "Menu item not found"})
		return
	}

	if err := DB.Delete(&menuItem).Error; err != nil {
		log.Println(err)
		c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{"error": "Failed to delete menu item: " + err.Error()})
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "Deleted menu item"})
}
