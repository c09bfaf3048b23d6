//go:build wireinject
// +build wireinject

package user

import (
	"github.com/google/wire"
	"gorm.io/gorm"

	"github.com/pickerpack/fulfillment/internal/user/delivery/http"
	"github.com/pickerpack/fulfillment/internal/user/domain"
	"github.com/pickerpack/fulfillment/internal/user/repository"
	"github.com/pickerpack/fulfillment/internal/user/usecase/command"
	"github.com/pickerpack/fulfillment/internal/user/usecase/query"
)

// ProvideUserRepository provides the user repository
func ProvideUserRepository(db *gorm.DB) domain.UserRepository {
	return repository.NewGormUserRepository(db)
}

var RepositorySet = wire.NewSet(
	ProvideUserRepository,
)

var HandlerSet = wire.NewSet(
	command.NewSignupHandler,
	command.NewLoginHandler,
	command.NewReviewSignupHandler,
	query.NewListUsersHandler,
	query.NewPendingApprovalsHandler,
)

// InitializeHTTPHandler initializes the user HTTP handler with all
// dependencies
func InitializeHTTPHandler(db *gorm.DB) (*http.UserHandler, error) {
	wire.Build(
		RepositorySet,
		HandlerSet,
		http.NewUserHandlerWithDI,
	)
	return nil, nil
}
