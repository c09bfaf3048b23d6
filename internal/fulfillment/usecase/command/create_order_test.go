package command

import (
	"errors"
	"fmt"
	"testing"

	invdomain "github.com/pickerpack/fulfillment/internal/inventory/domain"

	"github.com/pickerpack/fulfillment/internal/fulfillment/domain"
)

func TestCreateOrderReservesStockAndAssignsTask(t *testing.T) {
	e := newEnv(t)

	appleID, binAID := e.seedStock(t, "SKU-APPLE", "A1-01", 5)
	bananaID, binBID := e.seedStock(t, "SKU-BANANA", "A1-02", 3)

	result, err := e.create.Handle(CreateOrderCommand{
		OrderNumber:  "ORD-1001",
		CustomerName: "Walk-in",
		Warehouse:    "WH1",
		Items: []OrderItemSpec{
			{SKUID: appleID, SKUCode: "SKU-APPLE", BinID: binAID, BinCode: "A1-01", Quantity: 5},
			{SKUID: bananaID, SKUCode: "SKU-BANANA", BinID: binBID, BinCode: "A1-02", Quantity: 3},
		},
		WorkerPool: []uint{42},
	})
	if err != nil {
		t.Fatalf("Handle failed: %v", err)
	}

	order, task := result.Order, result.Task
	if order.Status != domain.OrderAssigned {
		t.Errorf("expected order status Assigned, got %s", order.Status)
	}
	if order.AssignedTo != 42 {
		t.Errorf("expected worker 42, got %d", order.AssignedTo)
	}
	if order.TotalItems != 8 {
		t.Errorf("expected 8 total items, got %d", order.TotalItems)
	}
	if order.TaskID != task.ID {
		t.Errorf("order not linked to task: %d != %d", order.TaskID, task.ID)
	}
	if task.OrderID == nil || *task.OrderID != order.ID {
		t.Errorf("task not linked back to order")
	}
	if task.Type != domain.TaskTypePick || task.Status != domain.TaskAssigned {
		t.Errorf("unexpected task %s/%s", task.Type, task.Status)
	}

	if len(task.Items) != 2 {
		t.Fatalf("expected 2 task items, got %d", len(task.Items))
	}
	wantTags := []int{5, 3}
	for i, item := range task.Items {
		if len(item.LockTags) != wantTags[i] {
			t.Errorf("item %d: expected %d reservations, got %d", i, wantTags[i], len(item.LockTags))
		}
		if item.QuantityScanned != 0 {
			t.Errorf("item %d: progress should start at zero", i)
		}
	}

	// Every reserved tag left the pool.
	var inStock int64
	e.db.Model(&invdomain.LockTag{}).Where("status = ?", invdomain.TagInStock).Count(&inStock)
	if inStock != 0 {
		t.Errorf("expected no tags left in stock, got %d", inStock)
	}
	var allocated int64
	e.db.Model(&invdomain.LockTag{}).Where("status = ?", invdomain.TagAllocated).Count(&allocated)
	if allocated != 8 {
		t.Errorf("expected 8 allocated tags, got %d", allocated)
	}
}

func TestCreateOrderValidation(t *testing.T) {
	e := newEnv(t)

	_, err := e.create.Handle(CreateOrderCommand{
		OrderNumber: "ORD-1",
		WorkerPool:  []uint{1},
	})
	if !errors.Is(err, domain.ErrEmptyOrder) {
		t.Errorf("expected ErrEmptyOrder, got %v", err)
	}

	_, err = e.create.Handle(CreateOrderCommand{
		OrderNumber: "ORD-1",
		Items:       []OrderItemSpec{{SKUID: 1, BinID: 1, Quantity: 1}},
	})
	if !errors.Is(err, domain.ErrNoPickersAvailable) {
		t.Errorf("expected ErrNoPickersAvailable, got %v", err)
	}

	_, err = e.create.Handle(CreateOrderCommand{
		OrderNumber: "ORD-1",
		Items:       []OrderItemSpec{{SKUID: 1, BinID: 1, Quantity: 0}},
		WorkerPool:  []uint{1},
	})
	if err == nil {
		t.Error("expected error for zero quantity")
	}
}

func TestCreateOrderInsufficientStockRollsBack(t *testing.T) {
	e := newEnv(t)
	skuID, binID := e.seedStock(t, "SKU-SCARCE", "B2-01", 3)

	_, err := e.create.Handle(CreateOrderCommand{
		OrderNumber: "ORD-2001",
		Warehouse:   "WH1",
		Items: []OrderItemSpec{
			{SKUID: skuID, SKUCode: "SKU-SCARCE", BinID: binID, BinCode: "B2-01", Quantity: 5},
		},
		WorkerPool: []uint{7},
	})
	if !errors.Is(err, domain.ErrInsufficientStock) {
		t.Fatalf("expected ErrInsufficientStock, got %v", err)
	}

	// The whole creation rolled back: no order, no task, pool intact.
	var orders, tasks int64
	e.db.Model(&domain.Order{}).Count(&orders)
	e.db.Model(&domain.Task{}).Count(&tasks)
	if orders != 0 || tasks != 0 {
		t.Errorf("expected clean rollback, got %d orders and %d tasks", orders, tasks)
	}
	count, err := e.ledger.CountInStock(skuID, binID)
	if err != nil {
		t.Fatalf("CountInStock failed: %v", err)
	}
	if count != 3 {
		t.Errorf("expected 3 tags back in stock, got %d", count)
	}
}

func TestCreateOrderPartialAllocation(t *testing.T) {
	e := newEnv(t)
	skuID, binID := e.seedStock(t, "SKU-SCARCE", "B2-01", 3)

	result, err := e.create.Handle(CreateOrderCommand{
		OrderNumber: "ORD-2002",
		Warehouse:   "WH1",
		Items: []OrderItemSpec{
			{SKUID: skuID, SKUCode: "SKU-SCARCE", BinID: binID, BinCode: "B2-01", Quantity: 5},
		},
		WorkerPool:   []uint{7},
		AllowPartial: true,
	})
	if err != nil {
		t.Fatalf("Handle failed: %v", err)
	}

	item := result.Task.Items[0]
	if item.Quantity != 5 {
		t.Errorf("target quantity should stay 5, got %d", item.Quantity)
	}
	if len(item.LockTags) != 3 {
		t.Errorf("expected 3 reservations, got %d", len(item.LockTags))
	}
}

func TestAssignmentIsIdleFirstThenRoundRobin(t *testing.T) {
	e := newEnv(t)
	skuID, binID := e.seedStock(t, "SKU-BULK", "C1-01", 7)

	pool := []uint{11, 22, 33}
	counts := make(map[uint]int)
	for i := 0; i < 7; i++ {
		result, err := e.create.Handle(CreateOrderCommand{
			OrderNumber: fmt.Sprintf("ORD-30%02d", i),
			Warehouse:   "WH1",
			Items: []OrderItemSpec{
				{SKUID: skuID, SKUCode: "SKU-BULK", BinID: binID, BinCode: "C1-01", Quantity: 1},
			},
			WorkerPool: pool,
		})
		if err != nil {
			t.Fatalf("order %d failed: %v", i, err)
		}
		counts[result.Order.AssignedTo]++
	}

	// 7 orders over 3 workers: no worker gets a third order before
	// everyone has two.
	if counts[11] != 3 || counts[22] != 2 || counts[33] != 2 {
		t.Errorf("uneven assignment: %v", counts)
	}
}

func TestCreateOrderDefaultsPriorityToUrgent(t *testing.T) {
	e := newEnv(t)
	result := e.createSimpleOrder(t, "ORD-4001", 5, 1)

	if result.Order.Priority != domain.PriorityUrgent {
		t.Errorf("expected default priority Urgent, got %s", result.Order.Priority)
	}
	if result.Task.Priority != domain.PriorityUrgent {
		t.Errorf("expected task priority Urgent, got %s", result.Task.Priority)
	}
}
