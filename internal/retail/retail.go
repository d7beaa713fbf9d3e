// Package retail defines the consumer, order, and product records the
// analytics engine reads. Records are owned by the storage layer; everything
// downstream treats them as read-only values.
package retail

import "time"

// OrderStatus is the fulfillment state of an order.
type OrderStatus string

const (
	StatusPending    OrderStatus = "pending"
	StatusProcessing OrderStatus = "processing"
	StatusShipped    OrderStatus = "shipped"
	StatusDelivered  OrderStatus = "delivered"
	StatusCancelled  OrderStatus = "cancelled"
)

// Statuses lists every known order status in lifecycle order.
var Statuses = []OrderStatus{
	StatusPending,
	StatusProcessing,
	StatusShipped,
	StatusDelivered,
	StatusCancelled,
}

// Valid reports whether s is one of the known statuses.
func (s OrderStatus) Valid() bool {
	for _, known := range Statuses {
		if s == known {
			return true
		}
	}
	return false
}

// Consumer is a customer record with its stored order aggregates.
type Consumer struct {
	ID            int        `json:"id" validate:"required,min=1"`
	Name          string     `json:"name" validate:"required"`
	Email         string     `json:"email" validate:"omitempty,email"`
	Phone         string     `json:"phone,omitempty"`
	Address       string     `json:"address,omitempty"`
	RegisteredAt  time.Time  `json:"registered_at" validate:"required"`
	TotalOrders   int        `json:"total_orders" validate:"min=0"`
	TotalSpent    float64    `json:"total_spent" validate:"min=0"`
	LastOrderDate *time.Time `json:"last_order_date,omitempty"`
}

// Order is a single purchase of one product by one consumer.
type Order struct {
	ID           int         `json:"id" validate:"required,min=1"`
	ConsumerID   int         `json:"consumer_id" validate:"required,min=1"`
	ProductID    int         `json:"product_id" validate:"required,min=1"`
	Quantity     int         `json:"quantity" validate:"min=1"`
	TotalPrice   float64     `json:"total_price" validate:"min=0"`
	Status       OrderStatus `json:"status" validate:"required,order_status"`
	OrderDate    time.Time   `json:"order_date" validate:"required"`
	DeliveryDate *time.Time  `json:"delivery_date,omitempty"`
}

// Product is a catalog item. Only Category matters to the analytics engine.
type Product struct {
	ID          int       `json:"id" validate:"required,min=1"`
	Name        string    `json:"name" validate:"required"`
	Description string    `json:"description,omitempty"`
	Price       float64   `json:"price" validate:"min=0"`
	Category    string    `json:"category" validate:"required"`
	Stock       int       `json:"stock" validate:"min=0"`
	CreatedAt   time.Time `json:"created_at"`
}
