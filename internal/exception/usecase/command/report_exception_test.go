package command

import (
	"errors"
	"testing"

	"github.com/pickerpack/fulfillment/internal/exception/domain"
	"github.com/pickerpack/fulfillment/internal/exception/repository"
	"github.com/pickerpack/fulfillment/internal/testutil"
)

func newExceptionRepo(t *testing.T) domain.ExceptionRepository {
	t.Helper()
	db := testutil.NewDB(t, &domain.Exception{})
	return repository.NewGormExceptionRepository(db)
}

func ptrUint(v uint) *uint { return &v }

func TestReportExceptionStartsPending(t *testing.T) {
	repo := newExceptionRepo(t)

	exc, err := NewReportExceptionHandler(repo).Handle(ReportExceptionCommand{
		UserID:      9,
		Type:        domain.TypeDamage,
		TaskID:      ptrUint(4),
		Quantity:    2,
		Description: "crushed carton on the top shelf",
		PhotoURIs:   []string{"s3://exceptions/1.jpg"},
	})
	if err != nil {
		t.Fatalf("Handle failed: %v", err)
	}

	if exc.Status != domain.StatusPending {
		t.Errorf("expected Pending, got %s", exc.Status)
	}
	if exc.UserID != 9 {
		t.Errorf("expected reporter 9, got %d", exc.UserID)
	}
	if exc.TaskID == nil || *exc.TaskID != 4 {
		t.Errorf("task reference not kept: %v", exc.TaskID)
	}
	if exc.ReviewedAt != nil || exc.ReviewedBy != nil {
		t.Error("fresh report carries review stamps")
	}

	stored, err := repo.FindByID(exc.ID)
	if err != nil {
		t.Fatalf("FindByID failed: %v", err)
	}
	if len(stored.PhotoURIs) != 1 || stored.PhotoURIs[0] != "s3://exceptions/1.jpg" {
		t.Errorf("photos not persisted: %v", stored.PhotoURIs)
	}
}

func TestReportExceptionValidates(t *testing.T) {
	repo := newExceptionRepo(t)
	handler := NewReportExceptionHandler(repo)

	if _, err := handler.Handle(ReportExceptionCommand{
		UserID: 9, Type: "Shrinkage", Description: "x",
	}); !errors.Is(err, domain.ErrUnknownType) {
		t.Errorf("expected ErrUnknownType, got %v", err)
	}

	if _, err := handler.Handle(ReportExceptionCommand{
		UserID: 9, Type: domain.TypeMissing,
	}); err == nil {
		t.Error("expected error for missing description")
	}

	tooMany := make([]string, domain.MaxPhotos+1)
	if _, err := handler.Handle(ReportExceptionCommand{
		UserID: 9, Type: domain.TypeDamage, Description: "x", PhotoURIs: tooMany,
	}); err == nil {
		t.Error("expected error for too many photos")
	}

	if _, err := handler.Handle(ReportExceptionCommand{
		UserID: 9, Type: domain.TypeTagReplacement, Description: "torn tag",
	}); err == nil {
		t.Error("expected error for tag replacement without tag codes")
	}
}

func TestReportTagReplacementKeepsBothCodes(t *testing.T) {
	repo := newExceptionRepo(t)

	exc, err := NewReportExceptionHandler(repo).Handle(ReportExceptionCommand{
		UserID:      9,
		Type:        domain.TypeTagReplacement,
		Description: "tag unreadable after water damage",
		OldTagCode:  "LT-AAAA1111",
		NewTagCode:  "LT-BBBB2222",
	})
	if err != nil {
		t.Fatalf("Handle failed: %v", err)
	}
	if exc.OldTagCode != "LT-AAAA1111" || exc.NewTagCode != "LT-BBBB2222" {
		t.Errorf("tag codes not kept: %s -> %s", exc.OldTagCode, exc.NewTagCode)
	}
}
