package command

import (
	"errors"
	"fmt"

	"github.com/pickerpack/fulfillment/internal/user/domain"
	"github.com/pickerpack/fulfillment/pkg/auth"
)

// SignupCommand registers a new worker. The account starts Pending and
// cannot log in until a manager approves it.
type SignupCommand struct {
	FullName  string
	Phone     string
	Warehouse string
}

// SignupResult carries the created account and its one-time PIN. The
// PIN is returned exactly once and only its hash is stored.
type SignupResult struct {
	User *domain.User `json:"user"`
	PIN  string       `json:"pin"`
}

// SignupHandler handles worker signup commands.
type SignupHandler struct {
	repo domain.UserRepository
}

// NewSignupHandler creates a new signup handler.
func NewSignupHandler(repo domain.UserRepository) *SignupHandler {
	return &SignupHandler{repo: repo}
}

// Handle executes the signup command. A Rejected account may sign up
// again under the same phone number; its record is reset to Pending.
func (h *SignupHandler) Handle(cmd SignupCommand) (*SignupResult, error) {
	if cmd.FullName == "" {
		return nil, fmt.Errorf("full_name is required")
	}
	if cmd.Phone == "" {
		return nil, fmt.Errorf("phone is required")
	}
	if cmd.Warehouse == "" {
		return nil, fmt.Errorf("warehouse is required")
	}

	pin, err := auth.GeneratePIN()
	if err != nil {
		return nil, fmt.Errorf("failed to generate pin: %w", err)
	}
	pinHash, err := auth.HashPin(pin)
	if err != nil {
		return nil, fmt.Errorf("failed to hash pin: %w", err)
	}

	existing, err := h.repo.FindByPhone(cmd.Phone)
	switch {
	case err == nil:
		if existing.Status != domain.StatusRejected {
			return nil, domain.ErrPhoneTaken
		}
		// Rejected account signing up again: reset in place so the
		// phone's history stays on one record.
		existing.FullName = cmd.FullName
		existing.Warehouse = cmd.Warehouse
		existing.PinHash = pinHash
		existing.Status = domain.StatusPending
		existing.ApprovedAt = nil
		existing.ApprovedBy = nil
		if err := h.repo.Update(existing); err != nil {
			return nil, fmt.Errorf("failed to reset rejected account: %w", err)
		}
		return &SignupResult{User: existing, PIN: pin}, nil
	case !errors.Is(err, domain.ErrUserNotFound):
		return nil, err
	}

	user := &domain.User{
		FullName:  cmd.FullName,
		Phone:     cmd.Phone,
		PinHash:   pinHash,
		Role:      domain.RolePickerPacker,
		Status:    domain.StatusPending,
		Warehouse: cmd.Warehouse,
	}
	if err := h.repo.Create(user); err != nil {
		return nil, fmt.Errorf("failed to create user: %w", err)
	}

	// Badge number derives from the row id so it is unique per
	// warehouse without a separate sequence.
	user.EmployeeID = fmt.Sprintf("PP-%s-%06d", cmd.Warehouse, user.ID)
	if err := h.repo.Update(user); err != nil {
		return nil, fmt.Errorf("failed to assign employee id: %w", err)
	}

	return &SignupResult{User: user, PIN: pin}, nil
}
