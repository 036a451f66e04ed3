package models

import (
	"gorm.io/gorm"
)

// Category groups menu items within an establishment.
type Category struct {
	gorm.Model
	Name            string        `json:"name" gorm:"not null"`
	Description     string        `json:"description"`
	SortOrder       int           `json:"sort_order"`
	EstablishmentID uint          `json:"establishment_id" gorm:"not null;index"`
	Establishment   Establishment `json:"-"`
}

// MenuItem is one dish on an establishment's menu. Order documents reference
// it by id and carry their own price/name snapshot, so edits here never
// rewrite past orders.
type MenuItem struct {
	gorm.Model
	Name               string        `json:"name" gorm:"not null"`
	Description        string        `json:"description"`
	Price              float64       `json:"price" gorm:"not null"`
	ImageURL           string        `json:"image_url"`
	IsVeg              bool          `json:"is_veg"`
	IsAvailable        bool          `json:"is_available" gorm:"default:true"`
	PreparationMinutes int           `json:"preparation_minutes"`
	CategoryID         uint          `json:"category_id" gorm:"not null;index"`
	Category           Category      `json:"-"`
	EstablishmentID    uint          `json:"establishment_id" gorm:"not null;index"`
	Establishment      Establishment `json:"-"`
}
