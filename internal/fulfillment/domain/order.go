package domain

import (
	"time"

	"gorm.io/gorm"
)

// Order status progresses linearly. Only Assigned -> Picked is driven
// by this service (task completion); packing and shipping transitions
// arrive from downstream stations.
const (
	OrderAssigned = "Assigned"
	OrderPicked   = "Picked"
	OrderPacked   = "Packed"
	OrderShipped  = "Shipped"
)

// Order item status
const (
	OrderItemPending = "Pending"
	OrderItemPicked  = "Picked"
)

// Order is a customer fulfillment request, created in lockstep with the
// pick task that fulfills it. TaskID is the 1:1 link used to cascade
// task completion back to order status.
type Order struct {
	ID           uint           `json:"id" gorm:"primaryKey"`
	OrderNumber  string         `json:"order_number" gorm:"uniqueIndex;not null"`
	CustomerName string         `json:"customer_name" gorm:"not null"`
	Status       string         `json:"status" gorm:"not null;default:'Assigned'"`
	Priority     string         `json:"priority" gorm:"not null;default:'Urgent'"`
	TaskID       uint           `json:"task_id" gorm:"index"`
	AssignedTo   uint           `json:"assigned_to" gorm:"index"`
	Warehouse    string         `json:"warehouse"`
	TotalItems   int            `json:"total_items"`
	CreatedAt    time.Time      `json:"created_at"`
	UpdatedAt    time.Time      `json:"updated_at"`
	AssignedAt   *time.Time     `json:"assigned_at,omitempty"`
	PickedAt     *time.Time     `json:"picked_at,omitempty"`
	DeletedAt    gorm.DeletedAt `json:"-" gorm:"index"`

	Items []OrderItem `json:"items,omitempty" gorm:"-"`
}

func (Order) TableName() string {
	return "orders"
}

// OrderItem is one line of an order. Progress is not tracked here; it
// lives on the task item and order-side state is derived from it.
type OrderItem struct {
	ID        uint      `json:"id" gorm:"primaryKey"`
	OrderID   uint      `json:"order_id" gorm:"not null;index"`
	SKUID     uint      `json:"sku_id" gorm:"not null"`
	SKUCode   string    `json:"sku_code" gorm:"not null"`
	BinID     uint      `json:"bin_id" gorm:"not null"`
	BinCode   string    `json:"bin_code" gorm:"not null"`
	Quantity  int       `json:"quantity" gorm:"not null"`
	Status    string    `json:"status" gorm:"not null;default:'Pending'"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

func (OrderItem) TableName() string {
	return "order_items"
}
