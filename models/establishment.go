package models

import (
	"gorm.io/gorm"
)

// Establishment is the business entity operating the dashboard (restaurant,
// food truck, etc.). Its id, as a string, is the establishmentId orders are
// keyed by in the orders collection.
type Establishment struct {
	gorm.Model         // ID, CreatedAt, UpdatedAt, DeletedAt
	Name        string `json:"name" gorm:"not null"`
	Description string `json:"description"`
	CuisineType string `json:"cuisine_type"`

	// Address fields are filled by the signup geocoding widget.
	Address   string  `json:"address"`
	City      string  `json:"city"`
	State     string  `json:"state"`
	Pincode   string  `json:"pincode"`
	Latitude  float64 `json:"latitude"`
	Longitude float64 `json:"longitude"`

	Phone       string `json:"phone"`
	IsOpen      bool   `json:"is_open" gorm:"default:true"`
	OpeningTime string `json:"opening_time"` // "09:00"
	ClosingTime string `json:"closing_time"` // "22:30"

	OwnerID uint `json:"owner_id" gorm:"not null;index"`
	Owner   User `json:"-" gorm:"foreignKey:OwnerID"`
}
