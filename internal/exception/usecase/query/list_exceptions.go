package query

import "github.com/pickerpack/fulfillment/internal/exception/domain"

// ListExceptionsQuery filters exceptions. UserID 0 lists every
// worker's reports, which is the admin review queue.
type ListExceptionsQuery struct {
	UserID uint
	Status string
	Type   string
	Limit  int
	Offset int
}

// ListExceptionsHandler handles list exceptions queries.
type ListExceptionsHandler struct {
	repo domain.ExceptionRepository
}

// NewListExceptionsHandler creates a new list exceptions handler.
func NewListExceptionsHandler(repo domain.ExceptionRepository) *ListExceptionsHandler {
	return &ListExceptionsHandler{repo: repo}
}

// Handle executes the list exceptions query.
func (h *ListExceptionsHandler) Handle(q ListExceptionsQuery) ([]domain.Exception, error) {
	return h.repo.List(q.UserID, q.Status, q.Type, q.Limit, q.Offset)
}
