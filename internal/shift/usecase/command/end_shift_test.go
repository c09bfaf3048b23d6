package command

import (
	"errors"
	"testing"
	"time"

	fulfillment "github.com/pickerpack/fulfillment/internal/fulfillment/domain"
	frepo "github.com/pickerpack/fulfillment/internal/fulfillment/repository"
	"github.com/pickerpack/fulfillment/internal/shift/domain"
	"github.com/pickerpack/fulfillment/internal/shift/repository"
	"github.com/pickerpack/fulfillment/internal/testutil"
)

func TestEndShiftClosesAndSummarizes(t *testing.T) {
	db := testutil.NewDB(t,
		&domain.Shift{},
		&fulfillment.Task{},
		&fulfillment.TaskItem{},
	)
	shifts := repository.NewGormShiftRepository(db)
	tasks := frepo.NewGormTaskRepository(db)

	started := time.Now().Add(-2 * time.Hour)
	shift := &domain.Shift{
		UserID:       9,
		Warehouse:    "WH1",
		Status:       domain.ShiftActive,
		SelfieURI:    "s3://selfies/9.jpg",
		GeoValidated: true,
		StartedAt:    started,
	}
	if err := shifts.Create(shift); err != nil {
		t.Fatalf("failed to create shift: %v", err)
	}

	// Two tasks finished during the shift, one still open.
	for i := 0; i < 2; i++ {
		task := &fulfillment.Task{
			Type:       fulfillment.TaskTypePick,
			Status:     fulfillment.TaskAssigned,
			Priority:   fulfillment.PriorityNormal,
			AssignedTo: 9,
			Warehouse:  "WH1",
		}
		if err := tasks.Create(task); err != nil {
			t.Fatalf("failed to create task: %v", err)
		}
		if err := tasks.Complete(task.ID, time.Now()); err != nil {
			t.Fatalf("failed to complete task: %v", err)
		}
	}
	open := &fulfillment.Task{
		Type:       fulfillment.TaskTypePick,
		Status:     fulfillment.TaskAssigned,
		Priority:   fulfillment.PriorityNormal,
		AssignedTo: 9,
		Warehouse:  "WH1",
	}
	if err := tasks.Create(open); err != nil {
		t.Fatalf("failed to create task: %v", err)
	}

	result, err := NewEndShiftHandler(shifts, tasks).Handle(EndShiftCommand{UserID: 9})
	if err != nil {
		t.Fatalf("Handle failed: %v", err)
	}

	if result.Shift.Status != domain.ShiftEnded {
		t.Errorf("expected Ended, got %s", result.Shift.Status)
	}
	if result.Shift.EndedAt == nil {
		t.Error("ended_at not set")
	}

	summary := result.Summary
	if summary.TasksCompleted != 2 {
		t.Errorf("expected 2 completed tasks, got %d", summary.TasksCompleted)
	}
	if summary.TasksPending != 1 {
		t.Errorf("expected 1 pending task, got %d", summary.TasksPending)
	}
	if summary.TasksPerHour <= 0 {
		t.Errorf("expected positive tasks per hour, got %f", summary.TasksPerHour)
	}
	if summary.Duration < 2*time.Hour {
		t.Errorf("expected at least 2h duration, got %s", summary.Duration)
	}
}

func TestEndShiftWithoutActiveShift(t *testing.T) {
	db := testutil.NewDB(t, &domain.Shift{}, &fulfillment.Task{}, &fulfillment.TaskItem{})
	shifts := repository.NewGormShiftRepository(db)
	tasks := frepo.NewGormTaskRepository(db)

	_, err := NewEndShiftHandler(shifts, tasks).Handle(EndShiftCommand{UserID: 9})
	if !errors.Is(err, domain.ErrShiftNotStarted) {
		t.Errorf("expected ErrShiftNotStarted, got %v", err)
	}
}
