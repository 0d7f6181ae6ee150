package models

import (
	"math"
	"time"
)

// OrderStatus represents all possible states of an order
type OrderStatus string

const (
	StatusPending        OrderStatus = "PENDING"
	StatusConfirmed      OrderStatus = "CONFIRMED"
	StatusInProgress     OrderStatus = "IN_PROGRESS"
	StatusOutForDelivery OrderStatus = "OUT_FOR_DELIVERY"
	StatusDelivered      OrderStatus = "DELIVERED"
	StatusCancelled      OrderStatus = "CANCELLED"
)

// ValidStatus reports whether s is a member of the closed status enumeration.
func ValidStatus(s OrderStatus) bool {
	switch s {
	case StatusPending, StatusConfirmed, StatusInProgress,
		StatusOutForDelivery, StatusDelivered, StatusCancelled:
		return true
	}
	return false
}

// Charges applied on top of the line-item subtotal.
const (
	TaxRate     = 0.08
	DeliveryFee = 40.0
)

// DeliveryAddress is the denormalized drop-off captured at order time.
type DeliveryAddress struct {
	Name    string `json:"name"`
	Street  string `json:"street"`
	City    string `json:"city"`
	State   string `json:"state"`
	ZipCode string `json:"zip_code"`
	Phone   string `json:"phone"`
}

// Order is immutable after creation except for Status. Line items and the
// delivery address are snapshots so later menu edits never rewrite history.
type Order struct {
	ID              uint                 `json:"id" gorm:"primaryKey"`
	UserID          uint                 `json:"user_id" gorm:"not null"`
	User            User                 `json:"user,omitempty" gorm:"foreignKey:UserID"`
	RestaurantID    uint                 `json:"restaurant_id" gorm:"not null"`
	Restaurant      Restaurant           `json:"restaurant,omitempty" gorm:"foreignKey:RestaurantID"`
	Items           []OrderItem          `json:"items,omitempty" gorm:"foreignKey:OrderID"`
	DeliveryAddress DeliveryAddress      `json:"delivery_address" gorm:"embedded;embeddedPrefix:delivery_"`
	Subtotal        float64              `json:"subtotal"`
	Tax             float64              `json:"tax"`
	DeliveryFee     float64              `json:"delivery_fee"`
	Total           float64              `json:"total"`
	PaymentMethod   string               `json:"payment_method" gorm:"default:'cod'"` // label only, no processing
	Status          OrderStatus          `json:"status" gorm:"not null;default:'PENDING'"`
	Notes           string               `json:"notes"`
	StatusHistory   []OrderStatusHistory `json:"status_history,omitempty" gorm:"foreignKey:OrderID"`
	CreatedAt       time.Time            `json:"created_at"`
	UpdatedAt       time.Time            `json:"updated_at"`
}

type OrderItem struct {
	ID         uint    `json:"id" gorm:"primaryKey"`
	OrderID    uint    `json:"order_id" gorm:"not null"`
	MenuItemID uint    `json:"menu_item_id" gorm:"not null"`
	Quantity   int     `json:"quantity" gorm:"not null"`
	Price      float64 `json:"price" gorm:"not null"` // snapshot price at time of order
	Name       string  `json:"name"`                  // snapshot name
}

// OrderStatusHistory tracks every status change — audit trail
type OrderStatusHistory struct {
	ID         uint        `json:"id" gorm:"primaryKey"`
	OrderID    uint        `json:"order_id" gorm:"not null"`
	FromStatus OrderStatus `json:"from_status"`
	ToStatus   OrderStatus `json:"to_status" gorm:"not null"`
	ChangedBy  uint        `json:"changed_by"` // user ID who triggered the transition
	Note       string      `json:"note"`
	CreatedAt  time.Time   `json:"created_at"`
}

// Round2 keeps money math at two decimal places.
func Round2(v float64) float64 {
	return math.Round(v*100) / 100
}

// ComputeCharges fills Subtotal, Tax, DeliveryFee and Total from the order's
// line items. Caller is expected to have priced the items from stored menu
// records first.
func (o *Order) ComputeCharges() {
	var subtotal float64
	for _, item := range o.Items {
		subtotal += item.Price * float64(item.Quantity)
	}
	o.Subtotal = Round2(subtotal)
	o.Tax = Round2(o.Subtotal * TaxRate)
	o.DeliveryFee = DeliveryFee
	o.Total = Round2(o.Subtotal + o.Tax + o.DeliveryFee)
}
