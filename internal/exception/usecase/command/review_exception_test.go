package command

import (
	"errors"
	"testing"

	"github.com/pickerpack/fulfillment/internal/exception/domain"
)

func seedException(t *testing.T, repo domain.ExceptionRepository) *domain.Exception {
	t.Helper()
	exc, err := NewReportExceptionHandler(repo).Handle(ReportExceptionCommand{
		UserID:      9,
		Type:        domain.TypeMissing,
		Description: "two units short against the reservation",
		Quantity:    2,
	})
	if err != nil {
		t.Fatalf("failed to seed exception: %v", err)
	}
	return exc
}

func TestReviewResolvesAndStampsReviewer(t *testing.T) {
	repo := newExceptionRepo(t)
	exc := seedException(t, repo)

	reviewed, err := NewReviewExceptionHandler(repo).Handle(ReviewExceptionCommand{
		ExceptionID: exc.ID,
		ReviewerID:  7,
		Status:      domain.StatusResolved,
		Resolution:  "stock adjusted, bin recounted",
	})
	if err != nil {
		t.Fatalf("Handle failed: %v", err)
	}

	if reviewed.Status != domain.StatusResolved {
		t.Errorf("expected Resolved, got %s", reviewed.Status)
	}
	if reviewed.Resolution != "stock adjusted, bin recounted" {
		t.Errorf("resolution not kept: %q", reviewed.Resolution)
	}
	if reviewed.ReviewedBy == nil || *reviewed.ReviewedBy != 7 {
		t.Errorf("reviewer not stamped: %v", reviewed.ReviewedBy)
	}
	if reviewed.ReviewedAt == nil {
		t.Error("reviewed_at not set")
	}
}

func TestReviewInReviewIsNotTerminal(t *testing.T) {
	repo := newExceptionRepo(t)
	exc := seedException(t, repo)
	handler := NewReviewExceptionHandler(repo)

	held, err := handler.Handle(ReviewExceptionCommand{
		ExceptionID: exc.ID,
		ReviewerID:  7,
		Status:      domain.StatusInReview,
	})
	if err != nil {
		t.Fatalf("Handle failed: %v", err)
	}
	if held.ReviewedAt != nil {
		t.Error("InReview must not stamp reviewed_at")
	}

	// The review can still conclude afterwards.
	if _, err := handler.Handle(ReviewExceptionCommand{
		ExceptionID: exc.ID,
		ReviewerID:  7,
		Status:      domain.StatusRejected,
		Resolution:  "count was correct on recheck",
	}); err != nil {
		t.Fatalf("concluding review failed: %v", err)
	}
}

func TestReviewRefusesSecondReview(t *testing.T) {
	repo := newExceptionRepo(t)
	exc := seedException(t, repo)
	handler := NewReviewExceptionHandler(repo)

	if _, err := handler.Handle(ReviewExceptionCommand{
		ExceptionID: exc.ID,
		ReviewerID:  7,
		Status:      domain.StatusResolved,
	}); err != nil {
		t.Fatalf("first review failed: %v", err)
	}

	_, err := handler.Handle(ReviewExceptionCommand{
		ExceptionID: exc.ID,
		ReviewerID:  8,
		Status:      domain.StatusRejected,
	})
	if !errors.Is(err, domain.ErrAlreadyReviewed) {
		t.Errorf("expected ErrAlreadyReviewed, got %v", err)
	}
}

func TestReviewRejectsUnknownStatus(t *testing.T) {
	repo := newExceptionRepo(t)
	exc := seedException(t, repo)

	_, err := NewReviewExceptionHandler(repo).Handle(ReviewExceptionCommand{
		ExceptionID: exc.ID,
		ReviewerID:  7,
		Status:      "Escalated",
	})
	if !errors.Is(err, domain.ErrInvalidStatus) {
		t.Errorf("expected ErrInvalidStatus, got %v", err)
	}
}

func TestReviewUnknownException(t *testing.T) {
	repo := newExceptionRepo(t)

	_, err := NewReviewExceptionHandler(repo).Handle(ReviewExceptionCommand{
		ExceptionID: 404,
		ReviewerID:  7,
		Status:      domain.StatusResolved,
	})
	if !errors.Is(err, domain.ErrExceptionNotFound) {
		t.Errorf("expected ErrExceptionNotFound, got %v", err)
	}
}
