package command

import (
	"fmt"
	"time"

	"github.com/pickerpack/fulfillment/internal/exception/domain"
)

// ReviewExceptionCommand moves an exception through review. Status may
// be InReview, Resolved or Rejected.
type ReviewExceptionCommand struct {
	ExceptionID uint
	ReviewerID  uint
	Status      string
	Resolution  string
}

// ReviewExceptionHandler handles exception review commands.
type ReviewExceptionHandler struct {
	repo domain.ExceptionRepository
}

// NewReviewExceptionHandler creates a new review exception handler.
func NewReviewExceptionHandler(repo domain.ExceptionRepository) *ReviewExceptionHandler {
	return &ReviewExceptionHandler{repo: repo}
}

// Handle executes the review command. Resolved and Rejected stamp the
// reviewer; an exception at a terminal outcome cannot be reviewed
// again.
func (h *ReviewExceptionHandler) Handle(cmd ReviewExceptionCommand) (*domain.Exception, error) {
	switch cmd.Status {
	case domain.StatusInReview, domain.StatusResolved, domain.StatusRejected:
	default:
		return nil, domain.ErrInvalidStatus
	}

	exc, err := h.repo.FindByID(cmd.ExceptionID)
	if err != nil {
		return nil, err
	}
	if domain.Reviewed(exc.Status) {
		return nil, domain.ErrAlreadyReviewed
	}

	exc.Status = cmd.Status
	if cmd.Resolution != "" {
		exc.Resolution = cmd.Resolution
	}
	if domain.Reviewed(cmd.Status) {
		now := time.Now()
		exc.ReviewedAt = &now
		exc.ReviewedBy = &cmd.ReviewerID
	}

	if err := h.repo.Update(exc); err != nil {
		return nil, fmt.Errorf("failed to update exception: %w", err)
	}
	return exc, nil
}
