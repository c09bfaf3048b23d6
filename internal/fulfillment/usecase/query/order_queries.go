package query

import (
	"github.com/pickerpack/fulfillment/internal/fulfillment/domain"
)

// ListOrdersQuery lists a worker's orders, optionally filtered by
// status.
type ListOrdersQuery struct {
	WorkerID uint
	Status   string
}

// ListOrdersHandler handles list orders queries.
type ListOrdersHandler struct {
	repo domain.OrderRepository
}

// NewListOrdersHandler creates a new list orders handler.
func NewListOrdersHandler(repo domain.OrderRepository) *ListOrdersHandler {
	return &ListOrdersHandler{repo: repo}
}

// Handle executes the list orders query.
func (h *ListOrdersHandler) Handle(q ListOrdersQuery) ([]domain.Order, error) {
	return h.repo.ListByWorker(q.WorkerID, q.Status)
}

// GetOrderQuery fetches one order with its items.
type GetOrderQuery struct {
	OrderID uint
}

// GetOrderHandler handles get order queries.
type GetOrderHandler struct {
	repo domain.OrderRepository
}

// NewGetOrderHandler creates a new get order handler.
func NewGetOrderHandler(repo domain.OrderRepository) *GetOrderHandler {
	return &GetOrderHandler{repo: repo}
}

// Handle executes the get order query.
func (h *GetOrderHandler) Handle(q GetOrderQuery) (*domain.Order, error) {
	order, err := h.repo.FindByID(q.OrderID)
	if err != nil {
		return nil, err
	}
	items, err := h.repo.ItemsByOrderID(order.ID)
	if err != nil {
		return nil, err
	}
	order.Items = items
	return order, nil
}

// PackingQueueQuery lists Picked orders awaiting packing for a worker.
type PackingQueueQuery struct {
	WorkerID uint
}

// PackingQueueHandler handles packing queue queries.
type PackingQueueHandler struct {
	repo domain.OrderRepository
}

// NewPackingQueueHandler creates a new packing queue handler.
func NewPackingQueueHandler(repo domain.OrderRepository) *PackingQueueHandler {
	return &PackingQueueHandler{repo: repo}
}

// Handle executes the packing queue query.
func (h *PackingQueueHandler) Handle(q PackingQueueQuery) ([]domain.Order, error) {
	orders, err := h.repo.PackingQueue(q.WorkerID)
	if err != nil {
		return nil, err
	}
	for i := range orders {
		items, err := h.repo.ItemsByOrderID(orders[i].ID)
		if err != nil {
			return nil, err
		}
		orders[i].Items = items
	}
	return orders, nil
}
