package command

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/pickerpack/fulfillment/internal/fulfillment/domain"
)

func TestCompleteTaskCascadesToOrder(t *testing.T) {
	e := newEnv(t)
	result := e.createSimpleOrder(t, "ORD-6001", 9, 2)

	task, err := e.complete.Handle(context.Background(), CompleteTaskCommand{
		TaskID:   result.Task.ID,
		WorkerID: 9,
	})
	if err != nil {
		t.Fatalf("Handle failed: %v", err)
	}
	if task.Status != domain.TaskCompleted {
		t.Errorf("expected task Completed, got %s", task.Status)
	}
	if task.CompletedAt == nil {
		t.Error("completed_at not set")
	}

	order, err := e.orders.FindByID(result.Order.ID)
	if err != nil {
		t.Fatalf("FindByID failed: %v", err)
	}
	if order.Status != domain.OrderPicked {
		t.Errorf("expected order Picked, got %s", order.Status)
	}
	if order.PickedAt == nil {
		t.Error("picked_at not set")
	}

	items, err := e.orders.ItemsByOrderID(order.ID)
	if err != nil {
		t.Fatalf("ItemsByOrderID failed: %v", err)
	}
	for _, item := range items {
		if item.Status != domain.OrderItemPicked {
			t.Errorf("expected item Picked, got %s", item.Status)
		}
	}
}

func TestCompleteTaskTwiceIsRejected(t *testing.T) {
	e := newEnv(t)
	result := e.createSimpleOrder(t, "ORD-6002", 9, 1)
	cmd := CompleteTaskCommand{TaskID: result.Task.ID, WorkerID: 9}

	if _, err := e.complete.Handle(context.Background(), cmd); err != nil {
		t.Fatalf("first completion failed: %v", err)
	}
	_, err := e.complete.Handle(context.Background(), cmd)
	if !errors.Is(err, domain.ErrTaskAlreadyCompleted) {
		t.Errorf("expected ErrTaskAlreadyCompleted, got %v", err)
	}
}

func TestCompleteCancelledTaskIsRejected(t *testing.T) {
	e := newEnv(t)

	task := &domain.Task{
		Type:       domain.TaskTypePick,
		Status:     domain.TaskCancelled,
		Priority:   domain.PriorityNormal,
		AssignedTo: 9,
		Warehouse:  "WH1",
	}
	if err := e.tasks.Create(task); err != nil {
		t.Fatalf("failed to create task: %v", err)
	}

	_, err := e.complete.Handle(context.Background(), CompleteTaskCommand{
		TaskID:   task.ID,
		WorkerID: 9,
	})
	if !errors.Is(err, domain.ErrTaskCancelled) {
		t.Errorf("expected ErrTaskCancelled, got %v", err)
	}

	reloaded, err := e.tasks.FindByID(task.ID)
	if err != nil {
		t.Fatalf("FindByID failed: %v", err)
	}
	if reloaded.Status != domain.TaskCancelled {
		t.Errorf("cancelled task flipped to %s", reloaded.Status)
	}
}

func TestCompleteTaskRequiresAssignedWorker(t *testing.T) {
	e := newEnv(t)
	result := e.createSimpleOrder(t, "ORD-6003", 9, 1)

	_, err := e.complete.Handle(context.Background(), CompleteTaskCommand{
		TaskID:   result.Task.ID,
		WorkerID: 777,
	})
	if !errors.Is(err, domain.ErrTaskNotFound) {
		t.Errorf("expected ErrTaskNotFound, got %v", err)
	}
}

func TestReplayedCascadeLeavesOrderUntouched(t *testing.T) {
	e := newEnv(t)
	result := e.createSimpleOrder(t, "ORD-6004", 9, 1)

	task, err := e.complete.Handle(context.Background(), CompleteTaskCommand{
		TaskID:   result.Task.ID,
		WorkerID: 9,
	})
	if err != nil {
		t.Fatalf("completion failed: %v", err)
	}

	before, err := e.orders.FindByID(result.Order.ID)
	if err != nil {
		t.Fatalf("FindByID failed: %v", err)
	}

	time.Sleep(10 * time.Millisecond)
	if _, err := e.complete.OnTaskCompleted(task); err != nil {
		t.Fatalf("replay failed: %v", err)
	}

	after, err := e.orders.FindByID(result.Order.ID)
	if err != nil {
		t.Fatalf("FindByID failed: %v", err)
	}
	if after.Status != domain.OrderPicked {
		t.Errorf("replay changed status to %s", after.Status)
	}
	if !after.PickedAt.Equal(*before.PickedAt) {
		t.Errorf("replay rewrote picked_at: %v != %v", after.PickedAt, before.PickedAt)
	}
}

func TestCascadeFromCompletionEvent(t *testing.T) {
	e := newEnv(t)
	result := e.createSimpleOrder(t, "ORD-6005", 9, 1)

	// The pick finished on another instance; only the event's task id
	// and type arrive here.
	if err := e.tasks.Complete(result.Task.ID, time.Now()); err != nil {
		t.Fatalf("failed to complete task: %v", err)
	}
	if _, err := e.complete.OnTaskCompleted(&domain.Task{
		ID:   result.Task.ID,
		Type: domain.TaskTypePick,
	}); err != nil {
		t.Fatalf("OnTaskCompleted failed: %v", err)
	}

	order, err := e.orders.FindByID(result.Order.ID)
	if err != nil {
		t.Fatalf("FindByID failed: %v", err)
	}
	if order.Status != domain.OrderPicked {
		t.Errorf("expected order Picked, got %s", order.Status)
	}
	if order.PickedAt == nil {
		t.Error("picked_at not set")
	}
}

func TestCompleteNonPickTaskSkipsCascade(t *testing.T) {
	e := newEnv(t)

	task := &domain.Task{
		Type:       domain.TaskTypePutaway,
		Status:     domain.TaskAssigned,
		Priority:   domain.PriorityNormal,
		AssignedTo: 9,
		Warehouse:  "WH1",
	}
	if err := e.tasks.Create(task); err != nil {
		t.Fatalf("failed to create task: %v", err)
	}

	completed, err := e.complete.Handle(context.Background(), CompleteTaskCommand{
		TaskID:   task.ID,
		WorkerID: 9,
	})
	if err != nil {
		t.Fatalf("Handle failed: %v", err)
	}
	if completed.Status != domain.TaskCompleted {
		t.Errorf("expected Completed, got %s", completed.Status)
	}

	var orders int64
	e.db.Model(&domain.Order{}).Count(&orders)
	if orders != 0 {
		t.Errorf("putaway completion created %d orders", orders)
	}
}

func TestCompletePickTaskWithoutOrderIsNoOp(t *testing.T) {
	e := newEnv(t)

	task := &domain.Task{
		Type:       domain.TaskTypePick,
		Status:     domain.TaskAssigned,
		Priority:   domain.PriorityNormal,
		AssignedTo: 9,
		Warehouse:  "WH1",
	}
	if err := e.tasks.Create(task); err != nil {
		t.Fatalf("failed to create task: %v", err)
	}

	completed, err := e.complete.Handle(context.Background(), CompleteTaskCommand{
		TaskID:   task.ID,
		WorkerID: 9,
	})
	if err != nil {
		t.Fatalf("Handle failed: %v", err)
	}
	if completed.Status != domain.TaskCompleted {
		t.Errorf("expected Completed, got %s", completed.Status)
	}
}
