//go:build wireinject
// +build wireinject

package exception

import (
	"github.com/google/wire"
	"gorm.io/gorm"

	"github.com/pickerpack/fulfillment/internal/exception/delivery/http"
	"github.com/pickerpack/fulfillment/internal/exception/domain"
	"github.com/pickerpack/fulfillment/internal/exception/repository"
	"github.com/pickerpack/fulfillment/internal/exception/usecase/command"
	"github.com/pickerpack/fulfillment/internal/exception/usecase/query"
)

// ProvideExceptionRepository provides the exception repository
func ProvideExceptionRepository(db *gorm.DB) domain.ExceptionRepository {
	return repository.NewGormExceptionRepository(db)
}

var HandlerSet = wire.NewSet(
	command.NewReportExceptionHandler,
	command.NewReviewExceptionHandler,
	query.NewListExceptionsHandler,
)

// InitializeHTTPHandler initializes the exception HTTP handler with all
// dependencies
func InitializeHTTPHandler(db *gorm.DB) (*http.ExceptionHandler, error) {
	wire.Build(
		ProvideExceptionRepository,
		HandlerSet,
		http.NewExceptionHandler,
	)
	return nil, nil
}
