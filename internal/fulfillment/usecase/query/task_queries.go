package query

import (
	"github.com/pickerpack/fulfillment/internal/fulfillment/domain"
)

// ListTasksQuery lists a worker's tasks, optionally filtered, newest
// first.
type ListTasksQuery struct {
	WorkerID uint
	Status   string
	Type     string
	Page     int
	PageSize int
}

// ListTasksResult carries one page of tasks.
type ListTasksResult struct {
	Tasks      []domain.Task `json:"tasks"`
	Total      int64         `json:"total"`
	Page       int           `json:"page"`
	PageSize   int           `json:"page_size"`
	TotalPages int           `json:"total_pages"`
}

// ListTasksHandler handles list tasks queries.
type ListTasksHandler struct {
	repo domain.TaskRepository
}

// NewListTasksHandler creates a new list tasks handler.
func NewListTasksHandler(repo domain.TaskRepository) *ListTasksHandler {
	return &ListTasksHandler{repo: repo}
}

// Handle executes the list tasks query.
func (h *ListTasksHandler) Handle(q ListTasksQuery) (*ListTasksResult, error) {
	if q.Page < 1 {
		q.Page = 1
	}
	if q.PageSize < 1 || q.PageSize > 100 {
		q.PageSize = 20
	}
	offset := (q.Page - 1) * q.PageSize

	tasks, total, err := h.repo.ListByWorker(q.WorkerID, q.Status, q.Type, q.PageSize, offset)
	if err != nil {
		return nil, err
	}

	totalPages := int(total) / q.PageSize
	if int(total)%q.PageSize > 0 {
		totalPages++
	}
	return &ListTasksResult{
		Tasks:      tasks,
		Total:      total,
		Page:       q.Page,
		PageSize:   q.PageSize,
		TotalPages: totalPages,
	}, nil
}

// GetTaskQuery fetches one task with its items and reservations. The
// task must belong to the requesting worker.
type GetTaskQuery struct {
	TaskID   uint
	WorkerID uint
}

// GetTaskHandler handles get task queries.
type GetTaskHandler struct {
	repo domain.TaskRepository
}

// NewGetTaskHandler creates a new get task handler.
func NewGetTaskHandler(repo domain.TaskRepository) *GetTaskHandler {
	return &GetTaskHandler{repo: repo}
}

// Handle executes the get task query.
func (h *GetTaskHandler) Handle(q GetTaskQuery) (*domain.Task, error) {
	task, err := h.repo.FindAssigned(q.TaskID, q.WorkerID)
	if err != nil {
		return nil, err
	}

	items, err := h.repo.ItemsByTaskID(task.ID)
	if err != nil {
		return nil, err
	}
	for i := range items {
		tags, err := h.repo.ReservationsByItemID(items[i].ID)
		if err != nil {
			return nil, err
		}
		items[i].LockTags = tags
	}
	task.Items = items
	return task, nil
}

// PickingQueueQuery lists a worker's open pick tasks in priority order.
type PickingQueueQuery struct {
	WorkerID uint
}

// PickingQueueHandler handles picking queue queries.
type PickingQueueHandler struct {
	repo domain.TaskRepository
}

// NewPickingQueueHandler creates a new picking queue handler.
func NewPickingQueueHandler(repo domain.TaskRepository) *PickingQueueHandler {
	return &PickingQueueHandler{repo: repo}
}

// Handle executes the picking queue query.
func (h *PickingQueueHandler) Handle(q PickingQueueQuery) ([]domain.Task, error) {
	tasks, err := h.repo.PickingQueue(q.WorkerID)
	if err != nil {
		return nil, err
	}
	for i := range tasks {
		items, err := h.repo.ItemsByTaskID(tasks[i].ID)
		if err != nil {
			return nil, err
		}
		tasks[i].Items = items
	}
	return tasks, nil
}
