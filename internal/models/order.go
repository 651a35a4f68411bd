package models

import (
	"time"

	"mandale/pkg/wallet"
)

// OrderStatus values. Checkout creates orders as Completed; the seller may
// move them afterwards.
type OrderStatus string

const (
	OrderPending   OrderStatus = "Pending"
	OrderConfirmed OrderStatus = "Confirmed"
	OrderShipped   OrderStatus = "Shipped"
	OrderDelivered OrderStatus = "Delivered"
	OrderCancelled OrderStatus = "Cancelled"
	OrderRejected  OrderStatus = "Rejected"
	OrderCompleted OrderStatus = "Completed"
)

// ValidOrderStatus reports whether s is a known order status.
func ValidOrderStatus(s OrderStatus) bool {
	switch s {
	case OrderPending, OrderConfirmed, OrderShipped, OrderDelivered, OrderCancelled, OrderRejected, OrderCompleted:
		return true
	}
	return false
}

// Order is a single-product purchase.
type Order struct {
	ID              string      `json:"id" gorm:"primaryKey;type:varchar(36)"`
	ProductID       string      `json:"product_id" gorm:"type:varchar(36);index;not null"`
	BuyerID         string      `json:"buyer_id" gorm:"type:varchar(36);index;not null"`
	SellerID        string      `json:"seller_id" gorm:"type:varchar(36);index;not null"`
	Quantity        int         `json:"quantity" gorm:"not null"`
	UnitPrice       float64     `json:"unit_price" gorm:"not null"` // Price at the time of order
	TotalPrice      float64     `json:"total_price" gorm:"not null"`
	PaymentMethod   wallet.Kind `json:"payment_method" gorm:"type:varchar(20);not null"`
	DeliveryAddress string      `json:"delivery_address" gorm:"type:text"`
	Status          OrderStatus `json:"status" gorm:"type:varchar(20);not null"`
	TransactionID   string      `json:"transaction_id,omitempty" gorm:"type:varchar(200)"`
	CreatedAt       time.Time   `json:"created_at"`
	UpdatedAt       time.Time   `json:"updated_at"`
}
