package command

import (
	"context"
	"errors"
	"fmt"
	"time"

	"gorm.io/gorm"

	"github.com/pickerpack/fulfillment/internal/fulfillment/domain"
	"github.com/pickerpack/fulfillment/kafka"
	"github.com/pickerpack/fulfillment/pkg/logger"
)

// EventPublisher emits fulfillment lifecycle events. A nil publisher
// disables event emission.
type EventPublisher interface {
	PublishTaskCompleted(ctx context.Context, event kafka.TaskCompletedEvent) error
	PublishOrderPicked(ctx context.Context, event kafka.OrderPickedEvent) error
}

// CompleteTaskCommand marks a task completed on behalf of its worker.
type CompleteTaskCommand struct {
	TaskID   uint
	WorkerID uint
}

// CompleteTaskHandler completes tasks and cascades pick completion to
// the linked order. Full scan coverage is not enforced here; the
// caller decides whether to allow completing with unscanned items.
type CompleteTaskHandler struct {
	db        *gorm.DB
	tasks     domain.TaskRepository
	orders    domain.OrderRepository
	publisher EventPublisher
}

// NewCompleteTaskHandler creates a new complete task handler.
func NewCompleteTaskHandler(db *gorm.DB, tasks domain.TaskRepository, orders domain.OrderRepository, publisher EventPublisher) *CompleteTaskHandler {
	return &CompleteTaskHandler{db: db, tasks: tasks, orders: orders, publisher: publisher}
}

// Handle executes the complete task command. Double completion is
// caller misuse and is rejected with ErrTaskAlreadyCompleted.
func (h *CompleteTaskHandler) Handle(ctx context.Context, cmd CompleteTaskCommand) (*domain.Task, error) {
	now := time.Now()

	var task *domain.Task
	var order *domain.Order
	err := h.db.Transaction(func(tx *gorm.DB) error {
		tasks := h.tasks.WithTx(tx)

		var err error
		task, err = tasks.FindAssigned(cmd.TaskID, cmd.WorkerID)
		if err != nil {
			return err
		}
		if domain.IsTerminal(task.Status) {
			if task.Status == domain.TaskCancelled {
				return domain.ErrTaskCancelled
			}
			return domain.ErrTaskAlreadyCompleted
		}

		if err := tasks.Complete(task.ID, now); err != nil {
			return fmt.Errorf("failed to complete task: %w", err)
		}
		task.Status = domain.TaskCompleted
		task.CompletedAt = &now

		if task.Type == domain.TaskTypePick {
			order, err = cascadeOrderPicked(h.orders.WithTx(tx), task, now)
			if err != nil {
				return err
			}
		}

		task.Items, err = tasks.ItemsByTaskID(task.ID)
		return err
	})
	if err != nil {
		return nil, err
	}

	h.emit(ctx, task, order)
	return task, nil
}

// OnTaskCompleted replays the order cascade for an already completed
// pick task. Idempotent: a task with no linked order, or an order
// already Picked, is a no-op.
func (h *CompleteTaskHandler) OnTaskCompleted(task *domain.Task) (*domain.Order, error) {
	if task.Type != domain.TaskTypePick {
		return nil, nil
	}

	var order *domain.Order
	err := h.db.Transaction(func(tx *gorm.DB) error {
		var err error
		order, err = cascadeOrderPicked(h.orders.WithTx(tx), task, time.Now())
		return err
	})
	return order, err
}

// cascadeOrderPicked moves the order linked to a completed pick task to
// Picked and flips its items. No linked order is a no-op, not an error.
func cascadeOrderPicked(orders domain.OrderRepository, task *domain.Task, now time.Time) (*domain.Order, error) {
	order, err := orders.FindByTaskID(task.ID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to look up order for task: %w", err)
	}

	if err := orders.MarkPicked(order.ID, now); err != nil {
		return nil, fmt.Errorf("failed to mark order picked: %w", err)
	}
	if err := orders.MarkItemsPicked(order.ID); err != nil {
		return nil, fmt.Errorf("failed to mark order items picked: %w", err)
	}

	order.Status = domain.OrderPicked
	if order.PickedAt == nil {
		order.PickedAt = &now
	}
	return order, nil
}

func (h *CompleteTaskHandler) emit(ctx context.Context, task *domain.Task, order *domain.Order) {
	if h.publisher == nil {
		return
	}

	if err := h.publisher.PublishTaskCompleted(ctx, kafka.TaskCompletedEvent{
		TaskID:    task.ID,
		TaskType:  task.Type,
		WorkerID:  task.AssignedTo,
		Warehouse: task.Warehouse,
	}); err != nil {
		logger.Error(ctx).Err(err).Uint("task_id", task.ID).Msg("Failed to publish task completion")
	}

	if order == nil {
		return
	}
	if err := h.publisher.PublishOrderPicked(ctx, kafka.OrderPickedEvent{
		OrderID:     order.ID,
		OrderNumber: order.OrderNumber,
		TaskID:      task.ID,
		WorkerID:    task.AssignedTo,
		TotalItems:  order.TotalItems,
	}); err != nil {
		logger.Error(ctx).Err(err).Uint("order_id", order.ID).Msg("Failed to publish order picked")
	}
}
