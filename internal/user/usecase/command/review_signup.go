package command

import (
	"time"

	"github.com/pickerpack/fulfillment/internal/user/domain"
)

// ReviewSignupCommand approves or rejects a pending signup.
type ReviewSignupCommand struct {
	UserID     uint
	ReviewerID uint
	Approve    bool
}

// ReviewSignupHandler handles signup review commands. Role checks live
// at the route boundary; this handler only enforces the state machine.
type ReviewSignupHandler struct {
	repo domain.UserRepository
}

// NewReviewSignupHandler creates a new review signup handler.
func NewReviewSignupHandler(repo domain.UserRepository) *ReviewSignupHandler {
	return &ReviewSignupHandler{repo: repo}
}

// Handle executes the review command. Only Pending accounts can be
// reviewed; a second review is rejected rather than silently rewritten.
func (h *ReviewSignupHandler) Handle(cmd ReviewSignupCommand) (*domain.User, error) {
	user, err := h.repo.FindByID(cmd.UserID)
	if err != nil {
		return nil, err
	}
	if user.Status != domain.StatusPending {
		return nil, domain.ErrAlreadyReviewed
	}

	now := time.Now()
	if cmd.Approve {
		user.Status = domain.StatusApproved
	} else {
		user.Status = domain.StatusRejected
	}
	user.ApprovedAt = &now
	user.ApprovedBy = &cmd.ReviewerID

	if err := h.repo.Update(user); err != nil {
		return nil, err
	}
	return user, nil
}
