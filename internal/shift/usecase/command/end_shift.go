package command

import (
	"fmt"
	"time"

	fulfillment "github.com/pickerpack/fulfillment/internal/fulfillment/domain"
	"github.com/pickerpack/fulfillment/internal/shift/domain"
)

// EndShiftCommand clocks a worker out of their active shift.
type EndShiftCommand struct {
	UserID uint
}

// EndShiftResult pairs the closed shift with its summary.
type EndShiftResult struct {
	Shift   *domain.Shift        `json:"shift"`
	Summary *domain.ShiftSummary `json:"summary"`
}

// EndShiftHandler handles end shift commands.
type EndShiftHandler struct {
	shifts domain.ShiftRepository
	tasks  fulfillment.TaskRepository
}

// NewEndShiftHandler creates a new end shift handler.
func NewEndShiftHandler(shifts domain.ShiftRepository, tasks fulfillment.TaskRepository) *EndShiftHandler {
	return &EndShiftHandler{shifts: shifts, tasks: tasks}
}

// Handle executes the end shift command and computes the worker's
// shift summary.
func (h *EndShiftHandler) Handle(cmd EndShiftCommand) (*EndShiftResult, error) {
	shift, err := h.shifts.ActiveByUser(cmd.UserID)
	if err != nil {
		return nil, err
	}

	now := time.Now()
	if err := h.shifts.End(shift.ID, now); err != nil {
		return nil, fmt.Errorf("failed to end shift: %w", err)
	}
	shift.Status = domain.ShiftEnded
	shift.EndedAt = &now

	summary, err := h.buildSummary(shift, now)
	if err != nil {
		return nil, err
	}
	return &EndShiftResult{Shift: shift, Summary: summary}, nil
}

func (h *EndShiftHandler) buildSummary(shift *domain.Shift, endedAt time.Time) (*domain.ShiftSummary, error) {
	completed, err := h.tasks.CountCompletedByWorkerSince(shift.UserID, shift.StartedAt)
	if err != nil {
		return nil, err
	}
	pending, err := h.tasks.CountOpenByWorker(shift.UserID)
	if err != nil {
		return nil, err
	}
	scanned, err := h.tasks.SumScannedByWorker(shift.UserID)
	if err != nil {
		return nil, err
	}

	duration := endedAt.Sub(shift.StartedAt)
	hours := duration.Hours()
	var perHour float64
	if hours > 0 {
		perHour = float64(completed) / hours
	}

	return &domain.ShiftSummary{
		ShiftID:        shift.ID,
		Duration:       duration,
		DurationHuman:  duration.Round(time.Minute).String(),
		TasksCompleted: completed,
		TasksPending:   pending,
		ItemsScanned:   scanned,
		TasksPerHour:   perHour,
	}, nil
}
