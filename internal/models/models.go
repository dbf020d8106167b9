package models

import (
	"time"
)

const (
	RoleAdmin    = "ADMIN"
	RoleCustomer = "CUSTOMER"
)

const (
	OrderStatusPending        = "PENDING"
	OrderStatusConfirmed      = "CONFIRMED"
	OrderStatusPreparing      = "PREPARING"
	OrderStatusOutForDelivery = "OUT_FOR_DELIVERY"
	OrderStatusDelivered      = "DELIVERED"
	OrderStatusCancelled      = "CANCELLED"
)

type User struct {
	ID           uint      `gorm:"primaryKey;autoIncrement"  json:"id"`
	Email        string    `gorm:"unique;not null"           json:"email"`
	PasswordHash string    `gorm:"not null"                  json:"-"`
	Name         string    `json:"name"`
	Phone        string    `json:"phone"`
	Address      string    `json:"address"`
	Role         string    `gorm:"not null;default:CUSTOMER" json:"role"`
	CreatedAt    time.Time `json:"created_at"`
}

type Category struct {
	ID          uint      `gorm:"primaryKey;autoIncrement" json:"id"`
	Name        string    `gorm:"unique;not null"          json:"name"`
	Description string    `json:"description"`
	ImageURL    string    `json:"image_url"`
	Products    []Product `gorm:"foreignKey:CategoryID"    json:"products,omitempty"`
}

type Product struct {
	ID          uint      `gorm:"primaryKey;autoIncrement" json:"id"`
	Name        string    `gorm:"not null"                 json:"name"`
	Description string    `json:"description"`
	Price       float64   `gorm:"not null"                 json:"price"`
	Unit        string    `gorm:"not null"                 json:"unit"`
	ImageURL    string    `json:"image_url"`
	Stock       int       `gorm:"not null;default:0"       json:"stock"`
	IsActive    bool      `gorm:"not null;default:true"    json:"is_active"`
	CategoryID  uint      `gorm:"index;not null"           json:"category_id"`
	Category    *Category `gorm:"foreignKey:CategoryID"    json:"category,omitempty"`
	CreatedAt   time.Time `json:"created_at"`
}

type Order struct {
	ID              uint        `gorm:"primaryKey;autoIncrement" json:"id"`
	OrderNumber     string      `gorm:"unique;not null"          json:"order_number"`
	UserID          uint        `gorm:"index;not null"           json:"user_id"`
	User            *User       `gorm:"foreignKey:UserID"        json:"user,omitempty"`
	Status          string      `gorm:"not null;default:PENDING" json:"status"`
	TotalAmount     float64     `gorm:"not null"                 json:"total_amount"`
	DeliveryAddress string      `gorm:"not null"                 json:"delivery_address"`
	Notes           string      `json:"notes"`
	DeliveryDate    *time.Time  `json:"delivery_date,omitempty"`
	Items           []OrderItem `gorm:"foreignKey:OrderID"       json:"items"`
	CreatedAt       time.Time   `json:"created_at"`
}

// OrderItem.Price is the unit price at order time; later catalog price
// changes must not affect it.
type OrderItem struct {
	ID        uint     `gorm:"primaryKey;autoIncrement"  json:"id"`
	OrderID   uint     `gorm:"index;not null"            json:"order_id"`
	ProductID uint     `gorm:"not null"                  json:"product_id"`
	Product   *Product `gorm:"foreignKey:ProductID"      json:"product,omitempty"`
	Quantity  int      `gorm:"not null;check:quantity>0" json:"quantity"`
	Price     float64  `gorm:"not null"                  json:"price"`
}

func ValidOrderStatus(s string) bool {
	switch s {
	case OrderStatusPending, OrderStatusConfirmed, OrderStatusPreparing,
		OrderStatusOutForDelivery, OrderStatusDelivered, OrderStatusCancelled:
		return true
	}
	return false
}

func TerminalOrderStatus(s string) bool {
	return s == OrderStatusDelivered || s == OrderStatusCancelled
}
