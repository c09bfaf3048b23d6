package command

import (
	"errors"
	"testing"

	"github.com/pickerpack/fulfillment/internal/user/domain"
)

func TestLoginApprovedWorker(t *testing.T) {
	repo := newUserRepo(t)
	result := signup(t, repo, "Asha Verma", "+919800000001", "WH1")
	if _, err := NewReviewSignupHandler(repo).Handle(ReviewSignupCommand{
		UserID: result.User.ID, ReviewerID: 7, Approve: true,
	}); err != nil {
		t.Fatalf("approval failed: %v", err)
	}

	resp, err := NewLoginHandler(repo).Handle(LoginCommand{
		Phone: "+919800000001",
		PIN:   result.PIN,
	})
	if err != nil {
		t.Fatalf("login failed: %v", err)
	}
	if resp.Token == "" || resp.RefreshToken == "" {
		t.Error("expected a token pair")
	}
	if resp.User.ID != result.User.ID {
		t.Errorf("wrong user: %d", resp.User.ID)
	}
}

func TestLoginPendingWorkerIsHeld(t *testing.T) {
	repo := newUserRepo(t)
	result := signup(t, repo, "Asha Verma", "+919800000001", "WH1")

	_, err := NewLoginHandler(repo).Handle(LoginCommand{
		Phone: "+919800000001",
		PIN:   result.PIN,
	})
	if !errors.Is(err, domain.ErrPendingApproval) {
		t.Errorf("expected ErrPendingApproval, got %v", err)
	}
}

func TestLoginWrongPin(t *testing.T) {
	repo := newUserRepo(t)
	result := signup(t, repo, "Asha Verma", "+919800000001", "WH1")
	if _, err := NewReviewSignupHandler(repo).Handle(ReviewSignupCommand{
		UserID: result.User.ID, ReviewerID: 7, Approve: true,
	}); err != nil {
		t.Fatalf("approval failed: %v", err)
	}

	wrong := "000000"
	if wrong == result.PIN {
		wrong = "000001"
	}
	_, err := NewLoginHandler(repo).Handle(LoginCommand{Phone: "+919800000001", PIN: wrong})
	if !errors.Is(err, domain.ErrInvalidCredentials) {
		t.Errorf("expected ErrInvalidCredentials, got %v", err)
	}
}

func TestLoginUnknownPhone(t *testing.T) {
	repo := newUserRepo(t)

	_, err := NewLoginHandler(repo).Handle(LoginCommand{Phone: "+919899999999", PIN: "123456"})
	if !errors.Is(err, domain.ErrInvalidCredentials) {
		t.Errorf("expected ErrInvalidCredentials, got %v", err)
	}
}

func TestLoginRejectedWorker(t *testing.T) {
	repo := newUserRepo(t)
	result := signup(t, repo, "Asha Verma", "+919800000001", "WH1")
	if _, err := NewReviewSignupHandler(repo).Handle(ReviewSignupCommand{
		UserID: result.User.ID, ReviewerID: 7, Approve: false,
	}); err != nil {
		t.Fatalf("rejection failed: %v", err)
	}

	_, err := NewLoginHandler(repo).Handle(LoginCommand{
		Phone: "+919800000001",
		PIN:   result.PIN,
	})
	if !errors.Is(err, domain.ErrInvalidCredentials) {
		t.Errorf("expected ErrInvalidCredentials, got %v", err)
	}
}
