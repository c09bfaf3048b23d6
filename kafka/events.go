package kafka

import "time"

// TaskCompletedEvent is emitted whenever a worker completes a task.
type TaskCompletedEvent struct {
	EventID   string    `json:"event_id"`
	EventType string    `json:"event_type"`
	TaskID    uint      `json:"task_id"`
	TaskType  string    `json:"task_type"`
	WorkerID  uint      `json:"worker_id"`
	Warehouse string    `json:"warehouse"`
	Timestamp time.Time `json:"timestamp"`
}

// OrderPickedEvent is emitted when a completed pick task moves its
// order to Picked, signalling the packing station.
type OrderPickedEvent struct {
	EventID     string    `json:"event_id"`
	EventType   string    `json:"event_type"`
	OrderID     uint      `json:"order_id"`
	OrderNumber string    `json:"order_number"`
	TaskID      uint      `json:"task_id"`
	WorkerID    uint      `json:"worker_id"`
	TotalItems  int       `json:"total_items"`
	Timestamp   time.Time `json:"timestamp"`
}

// Event types
const (
	EventTypeTaskCompleted = "task.completed"
	EventTypeOrderPicked   = "order.picked"
)

// Kafka topics
const (
	TopicTaskCompleted = "task-completed"
	TopicOrderPicked   = "order-picked"
)
