package domain

import "errors"

var (
	// ErrEmptyOrder rejects order creation with no line items.
	ErrEmptyOrder = errors.New("order has no items")

	// ErrNoPickersAvailable rejects order creation with an empty
	// worker pool.
	ErrNoPickersAvailable = errors.New("no pickers available")

	// ErrInsufficientStock reports an allocation shortfall: fewer
	// InStock tags were available than the order requires.
	ErrInsufficientStock = errors.New("insufficient stock to allocate order")

	// ErrOrderNotFound is returned for lookups of unknown orders.
	ErrOrderNotFound = errors.New("order not found")

	// ErrTaskNotFound is returned when a task does not exist or is not
	// assigned to the requesting worker.
	ErrTaskNotFound = errors.New("task not found")

	// ErrTaskAlreadyCompleted flags a double-complete. Unlike a replayed
	// order cascade this is caller misuse and is surfaced distinctly.
	ErrTaskAlreadyCompleted = errors.New("task already completed")

	// ErrTaskCancelled rejects work against a cancelled task. Cancelled
	// is absorbing; a cancelled task never becomes Completed.
	ErrTaskCancelled = errors.New("task is cancelled")
)
