package command

import (
	"fmt"
	"time"

	"gorm.io/gorm"

	invdomain "github.com/pickerpack/fulfillment/internal/inventory/domain"

	"github.com/pickerpack/fulfillment/internal/fulfillment/assign"
	"github.com/pickerpack/fulfillment/internal/fulfillment/domain"
)

// OrderItemSpec is one requested line of a new order.
type OrderItemSpec struct {
	SKUID    uint
	SKUCode  string
	BinID    uint
	BinCode  string
	Quantity int
}

// CreateOrderCommand creates an order together with the pick task that
// fulfills it. The two are one atomic unit: neither is ever persisted
// without the other.
type CreateOrderCommand struct {
	OrderNumber  string
	CustomerName string
	Warehouse    string
	Zone         string
	Priority     string
	Items        []OrderItemSpec
	WorkerPool   []uint

	// AllowPartial keeps the order when fewer lock tags are available
	// than requested: the task item retains its full target quantity
	// with fewer reservation rows. When false a shortfall aborts the
	// whole creation with ErrInsufficientStock.
	AllowPartial bool
}

// CreateOrderResult pairs the created order with its task.
type CreateOrderResult struct {
	Order *domain.Order `json:"order"`
	Task  *domain.Task  `json:"task"`
}

// CreateOrderHandler handles create order commands.
type CreateOrderHandler struct {
	db       *gorm.DB
	orders   domain.OrderRepository
	tasks    domain.TaskRepository
	ledger   invdomain.Ledger
	rotation *assign.RoundRobin
}

// NewCreateOrderHandler creates a new create order handler.
func NewCreateOrderHandler(db *gorm.DB, orders domain.OrderRepository, tasks domain.TaskRepository, ledger invdomain.Ledger, rotation *assign.RoundRobin) *CreateOrderHandler {
	return &CreateOrderHandler{
		db:       db,
		orders:   orders,
		tasks:    tasks,
		ledger:   ledger,
		rotation: rotation,
	}
}

// Handle executes the create order command.
func (h *CreateOrderHandler) Handle(cmd CreateOrderCommand) (*CreateOrderResult, error) {
	if cmd.OrderNumber == "" {
		return nil, fmt.Errorf("order_number is required")
	}
	if len(cmd.Items) == 0 {
		return nil, domain.ErrEmptyOrder
	}
	if len(cmd.WorkerPool) == 0 {
		return nil, domain.ErrNoPickersAvailable
	}
	for _, item := range cmd.Items {
		if item.Quantity <= 0 {
			return nil, fmt.Errorf("item quantity must be positive for sku %s", item.SKUCode)
		}
	}
	if cmd.Priority == "" {
		cmd.Priority = domain.PriorityUrgent
	}

	worker := h.rotation.Next(cmd.WorkerPool)
	now := time.Now()

	totalItems := 0
	for _, item := range cmd.Items {
		totalItems += item.Quantity
	}

	var result CreateOrderResult
	err := h.db.Transaction(func(tx *gorm.DB) error {
		orders := h.orders.WithTx(tx)
		tasks := h.tasks.WithTx(tx)
		ledger := h.ledger.WithTx(tx)

		order := &domain.Order{
			OrderNumber:  cmd.OrderNumber,
			CustomerName: cmd.CustomerName,
			Status:       domain.OrderAssigned,
			Priority:     cmd.Priority,
			AssignedTo:   worker,
			Warehouse:    cmd.Warehouse,
			TotalItems:   totalItems,
			AssignedAt:   &now,
		}
		if err := orders.Create(order); err != nil {
			return fmt.Errorf("failed to create order: %w", err)
		}

		orderItems := make([]domain.OrderItem, 0, len(cmd.Items))
		for _, item := range cmd.Items {
			orderItems = append(orderItems, domain.OrderItem{
				OrderID:  order.ID,
				SKUID:    item.SKUID,
				SKUCode:  item.SKUCode,
				BinID:    item.BinID,
				BinCode:  item.BinCode,
				Quantity: item.Quantity,
				Status:   domain.OrderItemPending,
			})
		}
		if err := orders.CreateItems(orderItems); err != nil {
			return fmt.Errorf("failed to create order items: %w", err)
		}

		task := &domain.Task{
			Type:       domain.TaskTypePick,
			Status:     domain.TaskAssigned,
			Priority:   cmd.Priority,
			AssignedTo: worker,
			OrderID:    &order.ID,
			Warehouse:  cmd.Warehouse,
			Zone:       cmd.Zone,
			Notes:      fmt.Sprintf("Order %s", cmd.OrderNumber),
		}
		if err := tasks.Create(task); err != nil {
			return fmt.Errorf("failed to create task: %w", err)
		}
		if err := orders.SetTaskID(order.ID, task.ID); err != nil {
			return fmt.Errorf("failed to link order to task: %w", err)
		}
		order.TaskID = task.ID

		taskItems := make([]domain.TaskItem, 0, len(cmd.Items))
		for _, item := range cmd.Items {
			taskItem := domain.TaskItem{
				TaskID:   task.ID,
				SKUID:    item.SKUID,
				SKUCode:  item.SKUCode,
				BinID:    item.BinID,
				BinCode:  item.BinCode,
				Quantity: item.Quantity,
				Status:   domain.TaskItemPending,
			}
			if err := tasks.CreateItem(&taskItem); err != nil {
				return fmt.Errorf("failed to create task item: %w", err)
			}

			tags, err := ledger.Allocate(item.SKUID, item.BinID, item.Quantity)
			if err != nil {
				return err
			}
			if len(tags) < item.Quantity && !cmd.AllowPartial {
				return fmt.Errorf("sku %s in bin %s: have %d of %d: %w",
					item.SKUCode, item.BinCode, len(tags), item.Quantity, domain.ErrInsufficientStock)
			}

			reservations := make([]domain.TaskItemLockTag, 0, len(tags))
			for _, tag := range tags {
				reservations = append(reservations, domain.TaskItemLockTag{
					TaskItemID:  taskItem.ID,
					LockTagID:   tag.ID,
					LockTagCode: tag.TagCode,
				})
			}
			if err := tasks.CreateReservations(reservations); err != nil {
				return fmt.Errorf("failed to create reservations: %w", err)
			}

			taskItem.LockTags = reservations
			taskItems = append(taskItems, taskItem)
		}

		order.Items = orderItems
		task.Items = taskItems
		result.Order = order
		result.Task = task
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &result, nil
}
