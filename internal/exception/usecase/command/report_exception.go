package command

import (
	"fmt"

	"github.com/pickerpack/fulfillment/internal/exception/domain"
)

// ReportExceptionCommand raises a floor exception against stock or a
// task. Reference IDs are optional; which ones make sense depends on
// the type.
type ReportExceptionCommand struct {
	UserID      uint
	Type        string
	TaskID      *uint
	SKUID       *uint
	LockTagID   *uint
	BinID       *uint
	Description string
	PhotoURIs   []string
	Quantity    int
	OldTagCode  string
	NewTagCode  string
}

// ReportExceptionHandler handles report exception commands.
type ReportExceptionHandler struct {
	repo domain.ExceptionRepository
}

// NewReportExceptionHandler creates a new report exception handler.
func NewReportExceptionHandler(repo domain.ExceptionRepository) *ReportExceptionHandler {
	return &ReportExceptionHandler{repo: repo}
}

// Handle executes the report command. Every report starts Pending and
// waits for an admin review.
func (h *ReportExceptionHandler) Handle(cmd ReportExceptionCommand) (*domain.Exception, error) {
	if !domain.ValidType(cmd.Type) {
		return nil, domain.ErrUnknownType
	}
	if cmd.Description == "" {
		return nil, fmt.Errorf("description is required")
	}
	if len(cmd.PhotoURIs) > domain.MaxPhotos {
		return nil, fmt.Errorf("at most %d photos may be attached", domain.MaxPhotos)
	}
	if cmd.Type == domain.TypeTagReplacement && (cmd.OldTagCode == "" || cmd.NewTagCode == "") {
		return nil, fmt.Errorf("tag replacement requires the old and new tag codes")
	}

	exc := &domain.Exception{
		Type:        cmd.Type,
		Status:      domain.StatusPending,
		UserID:      cmd.UserID,
		TaskID:      cmd.TaskID,
		SKUID:       cmd.SKUID,
		LockTagID:   cmd.LockTagID,
		BinID:       cmd.BinID,
		Description: cmd.Description,
		PhotoURIs:   cmd.PhotoURIs,
		Quantity:    cmd.Quantity,
		OldTagCode:  cmd.OldTagCode,
		NewTagCode:  cmd.NewTagCode,
	}
	if err := h.repo.Create(exc); err != nil {
		return nil, fmt.Errorf("failed to create exception: %w", err)
	}
	return exc, nil
}
