package model

import (
	"time"

	"gorm.io/gorm"
)

// OrderStatus is a free-form status string. The workflow only ever sets
// StatusProcessing itself; status updates accept whatever the caller sends,
// with StatusCancelled acting as a terminal marker.
type OrderStatus string

const (
	StatusProcessing OrderStatus = "Processing"
	StatusShipped    OrderStatus = "Shipped"
	StatusCancelled  OrderStatus = "Cancelled"
)

type Order struct {
	ID              uint           `gorm:"primarykey" json:"id"`
	UserID          uint           `gorm:"not null;index" json:"user_id"`
	Status          OrderStatus    `gorm:"type:varchar(50);default:'Processing'" json:"status"`
	TotalAmount     float64        `gorm:"not null" json:"totalAmount"`
	ShippingAddress string         `gorm:"type:text" json:"shippingAddress"`
	CreatedAt       time.Time      `json:"created_at"`
	UpdatedAt       time.Time      `json:"updated_at"`
	DeletedAt       gorm.DeletedAt `gorm:"index" json:"-"`

	User  User        `gorm:"foreignKey:UserID" json:"-"`
	Items []OrderItem `gorm:"foreignKey:OrderID;constraint:OnDelete:CASCADE" json:"books"`
}

func (Order) TableName() string {
	return "orders"
}

// OrderItem is a point-in-time snapshot of the ordered book. Name and Price
// are copied from the live book at order creation so later catalog edits
// never change historical totals.
type OrderItem struct {
	ID        uint           `gorm:"primarykey" json:"id"`
	OrderID   uint           `gorm:"not null;index" json:"-"`
	BookID    uint           `gorm:"not null;index" json:"bookId"`
	Name      string         `gorm:"not null" json:"name"`
	Quantity  int            `gorm:"not null" json:"quantity"`
	Price     float64        `gorm:"not null" json:"price"`
	Total     float64        `gorm:"not null" json:"total"`
	CreatedAt time.Time      `json:"-"`
	DeletedAt gorm.DeletedAt `gorm:"index" json:"-"`

	Order Order `gorm:"foreignKey:OrderID" json:"-"`
	Book  Book  `gorm:"foreignKey:BookID" json:"-"`
}

func (OrderItem) TableName() string {
	return "order_items"
}
