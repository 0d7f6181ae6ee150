package models

import "time"

// PriceRange buckets a restaurant by typical spend.
type PriceRange string

const (
	PriceBudget    PriceRange = "$"
	PriceModerate  PriceRange = "$$"
	PriceExpensive PriceRange = "$$$"
	PriceFine      PriceRange = "$$$$"
)

// SpiceLevel is an optional per-item heat rating.
type SpiceLevel string

const (
	SpiceMild     SpiceLevel = "mild"
	SpiceMedium   SpiceLevel = "medium"
	SpiceHot      SpiceLevel = "hot"
	SpiceExtraHot SpiceLevel = "extra-hot"
)

type Restaurant struct {
	ID          uint       `json:"id" gorm:"primaryKey"`
	OwnerID     uint       `json:"owner_id" gorm:"not null"` // immutable after creation
	Owner       User       `json:"owner,omitempty" gorm:"foreignKey:OwnerID"`
	Name        string     `json:"name" gorm:"not null"`
	Description string     `json:"description"`
	Address     Address    `json:"address" gorm:"embedded;embeddedPrefix:address_"`
	CuisineType []string   `json:"cuisine_type" gorm:"serializer:json"`
	PriceRange  PriceRange `json:"price_range" gorm:"default:'$$'"`
	Rating      float64    `json:"rating" gorm:"default:0"` // 0–5
	IsActive    bool       `json:"is_active" gorm:"default:true"`
	MenuItems   []MenuItem `json:"menu_items,omitempty" gorm:"foreignKey:RestaurantID"`
	CreatedAt   time.Time  `json:"created_at"`
	UpdatedAt   time.Time  `json:"updated_at"`
}

type MenuItem struct {
	ID           uint       `json:"id" gorm:"primaryKey"`
	RestaurantID uint       `json:"restaurant_id" gorm:"not null"` // immutable
	Name         string     `json:"name" gorm:"not null"`
	Description  string     `json:"description"`
	Price        float64    `json:"price" gorm:"not null"` // >= 0
	Category     string     `json:"category"`
	IsAvailable  bool       `json:"is_available" gorm:"default:true"`
	IsVegetarian bool       `json:"is_vegetarian" gorm:"default:false"`
	IsVegan      bool       `json:"is_vegan" gorm:"default:false"`
	SpiceLevel   SpiceLevel `json:"spice_level,omitempty"`
	CreatedAt    time.Time  `json:"created_at"`
	UpdatedAt    time.Time  `json:"updated_at"`
}
