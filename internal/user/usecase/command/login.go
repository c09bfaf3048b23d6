package command

import (
	"fmt"

	"github.com/pickerpack/fulfillment/internal/user/domain"
	"github.com/pickerpack/fulfillment/pkg/auth"
)

// LoginCommand authenticates a worker by phone number and PIN.
type LoginCommand struct {
	Phone string
	PIN   string
}

// LoginResponse carries the JWT pair and the authenticated user.
type LoginResponse struct {
	Token        string       `json:"token"`
	RefreshToken string       `json:"refresh_token"`
	User         *domain.User `json:"user"`
}

// LoginHandler handles login commands.
type LoginHandler struct {
	repo domain.UserRepository
}

// NewLoginHandler creates a new login handler.
func NewLoginHandler(repo domain.UserRepository) *LoginHandler {
	return &LoginHandler{repo: repo}
}

// Handle executes the login command. Only Approved accounts may log
// in; Pending is reported distinctly so the device can show a waiting
// screen, everything else is an opaque credential failure.
func (h *LoginHandler) Handle(cmd LoginCommand) (*LoginResponse, error) {
	if cmd.Phone == "" || cmd.PIN == "" {
		return nil, fmt.Errorf("phone and pin are required")
	}

	user, err := h.repo.FindByPhone(cmd.Phone)
	if err != nil {
		return nil, domain.ErrInvalidCredentials
	}

	if !auth.CheckPin(user.PinHash, cmd.PIN) {
		return nil, domain.ErrInvalidCredentials
	}

	switch user.Status {
	case domain.StatusApproved:
	case domain.StatusPending:
		return nil, domain.ErrPendingApproval
	case domain.StatusInactive:
		return nil, domain.ErrAccountInactive
	default:
		return nil, domain.ErrInvalidCredentials
	}

	token, err := auth.GenerateToken(user.ID, user.EmployeeID, user.Role, user.Warehouse)
	if err != nil {
		return nil, fmt.Errorf("failed to generate token: %w", err)
	}
	refreshToken, err := auth.GenerateRefreshToken(user.ID, user.EmployeeID, user.Role, user.Warehouse)
	if err != nil {
		return nil, fmt.Errorf("failed to generate refresh token: %w", err)
	}

	return &LoginResponse{
		Token:        token,
		RefreshToken: refreshToken,
		User:         user,
	}, nil
}
