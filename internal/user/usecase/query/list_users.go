package query

import (
	"github.com/pickerpack/fulfillment/internal/user/domain"
)

// ListUsersQuery lists accounts, optionally filtered by status.
type ListUsersQuery struct {
	Status string
	Limit  int
	Offset int
}

// ListUsersHandler handles list users queries.
type ListUsersHandler struct {
	repo domain.UserRepository
}

// NewListUsersHandler creates a new list users handler.
func NewListUsersHandler(repo domain.UserRepository) *ListUsersHandler {
	return &ListUsersHandler{repo: repo}
}

// Handle executes the list users query.
func (h *ListUsersHandler) Handle(q ListUsersQuery) ([]domain.User, error) {
	return h.repo.FindAll(q.Status, q.Limit, q.Offset)
}

// PendingApprovalsHandler lists signups waiting for review, oldest
// first so the queue drains in order.
type PendingApprovalsHandler struct {
	repo domain.UserRepository
}

// NewPendingApprovalsHandler creates a new pending approvals handler.
func NewPendingApprovalsHandler(repo domain.UserRepository) *PendingApprovalsHandler {
	return &PendingApprovalsHandler{repo: repo}
}

// Handle executes the pending approvals query.
func (h *PendingApprovalsHandler) Handle() ([]domain.User, error) {
	users, err := h.repo.FindAll(domain.StatusPending, 100, 0)
	if err != nil {
		return nil, err
	}
	// FindAll returns newest first; reviewers work oldest first.
	for i, j := 0, len(users)-1; i < j; i, j = i+1, j-1 {
		users[i], users[j] = users[j], users[i]
	}
	return users, nil
}
