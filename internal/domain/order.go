package domain

import "time"

type OrderStatus string

const OrderStatusDelivered OrderStatus = "delivered"

// Order binds one buyer to exactly one consumed stock key. It is created in
// the same transaction that marks the key sold, so neither can exist without
// the other.
type Order struct {
	ID          int64
	UserID      string
	ProductID   int64
	KeyID       int64
	Status      OrderStatus
	DeliveredAt time.Time
}
