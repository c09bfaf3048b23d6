package domain

import (
	"time"

	"gorm.io/gorm"
)

// OrderRepository defines the contract for order data access.
type OrderRepository interface {
	WithTx(tx *gorm.DB) OrderRepository
	Create(order *Order) error
	CreateItems(items []OrderItem) error
	SetTaskID(orderID, taskID uint) error
	FindByID(id uint) (*Order, error)
	FindByNumber(orderNumber string) (*Order, error)
	FindByTaskID(taskID uint) (*Order, error)
	ItemsByOrderID(orderID uint) ([]OrderItem, error)
	ListByWorker(workerID uint, status string) ([]Order, error)
	PackingQueue(workerID uint) ([]Order, error)

	// MarkPicked transitions an order (and its items) to Picked,
	// stamping picked_at only on the first transition. Replays are
	// no-ops.
	MarkPicked(orderID uint, at time.Time) error
	MarkItemsPicked(orderID uint) error
}

// TaskRepository defines the contract for task data access.
type TaskRepository interface {
	WithTx(tx *gorm.DB) TaskRepository
	Create(task *Task) error
	CreateItem(item *TaskItem) error
	CreateReservations(reservations []TaskItemLockTag) error
	FindByID(id uint) (*Task, error)

	// FindAssigned returns the task only if it is assigned to workerID.
	FindAssigned(taskID, workerID uint) (*Task, error)

	ListByWorker(workerID uint, status, taskType string, limit, offset int) ([]Task, int64, error)
	PickingQueue(workerID uint) ([]Task, error)
	ItemsByTaskID(taskID uint) ([]TaskItem, error)
	ReservationsByItemID(taskItemID uint) ([]TaskItemLockTag, error)

	// FindReservation locates the reservation row for a decoded tag
	// code within a task, together with its owning item. A miss is a
	// normal negative result, reported as (nil, nil, nil).
	FindReservation(taskID uint, lockTagCode string) (*TaskItemLockTag, *TaskItem, error)

	// ClaimReservationScan flips a reservation row Unscanned->Scanned.
	// Returns false without error if the row was already scanned, so
	// progress counters only move on a genuine transition.
	ClaimReservationScan(reservationID uint) (bool, error)

	// AdvanceItemProgress moves a task item's progress counter by one
	// with a single guarded increment, never past Quantity, flipping
	// the item Completed when the counter gets there. Returns the
	// counter value after the call. Because the increment happens in
	// the database, concurrent scans of different tags on the same
	// item cannot lose updates.
	AdvanceItemProgress(taskItemID uint) (int, error)

	Complete(taskID uint, at time.Time) error

	// Shift summary metrics.
	CountCompletedByWorkerSince(workerID uint, since time.Time) (int64, error)
	CountOpenByWorker(workerID uint) (int64, error)
	SumScannedByWorker(workerID uint) (int64, error)
}
