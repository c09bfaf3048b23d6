package domain

import (
	"time"

	"gorm.io/gorm"
)

// Task types. Only Pick drives the order cascade.
const (
	TaskTypePick       = "Pick"
	TaskTypePack       = "Pack"
	TaskTypePutaway    = "Putaway"
	TaskTypeBinToBin   = "BinToBin"
	TaskTypeCycleCount = "CycleCount"
)

// Task status. Cancelled is absorbing.
const (
	TaskPending    = "Pending"
	TaskAssigned   = "Assigned"
	TaskInProgress = "InProgress"
	TaskCompleted  = "Completed"
	TaskCancelled  = "Cancelled"
)

// Task priority
const (
	PriorityLow    = "Low"
	PriorityNormal = "Normal"
	PriorityHigh   = "High"
	PriorityUrgent = "Urgent"
)

// Task item status
const (
	TaskItemPending   = "Pending"
	TaskItemCompleted = "Completed"
)

// IsTerminal reports whether a task status admits no further
// transitions.
func IsTerminal(status string) bool {
	return status == TaskCompleted || status == TaskCancelled
}

// Task is a unit of work assigned to one worker. OrderID is the
// structured back-reference to the order a pick task fulfills; Notes
// carries the human-readable order number for the picker's device but
// is never parsed for linkage.
type Task struct {
	ID          uint           `json:"id" gorm:"primaryKey"`
	Type        string         `json:"type" gorm:"not null"`
	Status      string         `json:"status" gorm:"not null;default:'Pending'"`
	Priority    string         `json:"priority" gorm:"not null;default:'Normal'"`
	AssignedTo  uint           `json:"assigned_to" gorm:"index"`
	OrderID     *uint          `json:"order_id,omitempty" gorm:"index"`
	Warehouse   string         `json:"warehouse"`
	Zone        string         `json:"zone"`
	Notes       string         `json:"notes"`
	CompletedAt *time.Time     `json:"completed_at,omitempty"`
	CreatedAt   time.Time      `json:"created_at"`
	UpdatedAt   time.Time      `json:"updated_at"`
	DeletedAt   gorm.DeletedAt `json:"-" gorm:"index"`

	Items []TaskItem `json:"items,omitempty" gorm:"-"`
}

func (Task) TableName() string {
	return "tasks"
}

// TaskItem is one line of work within a task. QuantityScanned moves
// only on a genuine reservation scan and never exceeds Quantity.
type TaskItem struct {
	ID              uint      `json:"id" gorm:"primaryKey"`
	TaskID          uint      `json:"task_id" gorm:"not null;index"`
	SKUID           uint      `json:"sku_id" gorm:"not null"`
	SKUCode         string    `json:"sku_code" gorm:"not null"`
	BinID           uint      `json:"bin_id" gorm:"not null"`
	BinCode         string    `json:"bin_code" gorm:"not null"`
	Quantity        int       `json:"quantity" gorm:"not null"`
	QuantityScanned int       `json:"quantity_scanned" gorm:"not null;default:0"`
	Status          string    `json:"status" gorm:"not null;default:'Pending'"`
	CreatedAt       time.Time `json:"created_at"`
	UpdatedAt       time.Time `json:"updated_at"`

	LockTags []TaskItemLockTag `json:"lock_tags,omitempty" gorm:"-"`
}

func (TaskItem) TableName() string {
	return "task_items"
}

// TaskItemLockTag is the reservation record: its existence is what
// makes a lock tag Allocated rather than merely InStock. At most
// Quantity rows exist per task item.
type TaskItemLockTag struct {
	ID          uint      `json:"id" gorm:"primaryKey"`
	TaskItemID  uint      `json:"task_item_id" gorm:"not null;index"`
	LockTagID   uint      `json:"lock_tag_id" gorm:"not null;uniqueIndex"`
	LockTagCode string    `json:"lock_tag_code" gorm:"not null;index"`
	Scanned     bool      `json:"scanned" gorm:"not null;default:false"`
	CreatedAt   time.Time `json:"created_at"`
}

func (TaskItemLockTag) TableName() string {
	return "task_item_lock_tags"
}
