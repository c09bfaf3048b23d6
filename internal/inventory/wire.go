//go:build wireinject
// +build wireinject

package inventory

import (
	"github.com/google/wire"
	"gorm.io/gorm"

	"github.com/pickerpack/fulfillment/internal/inventory/delivery/http"
	"github.com/pickerpack/fulfillment/internal/inventory/domain"
	"github.com/pickerpack/fulfillment/internal/inventory/repository"
	"github.com/pickerpack/fulfillment/internal/inventory/usecase/command"
	"github.com/pickerpack/fulfillment/internal/inventory/usecase/query"
)

// ProvideCatalogRepository provides the catalog repository
func ProvideCatalogRepository(db *gorm.DB) domain.CatalogRepository {
	return repository.NewGormCatalogRepository(db)
}

// ProvideLedger provides the traced lock tag ledger
func ProvideLedger(db *gorm.DB) domain.Ledger {
	return repository.NewGormLedgerWithTracing(db)
}

var RepositorySet = wire.NewSet(
	ProvideCatalogRepository,
	ProvideLedger,
)

var HandlerSet = wire.NewSet(
	command.NewCreateSKUHandler,
	command.NewCreateBinHandler,
	command.NewPutawayHandler,
	query.NewStockLevelHandler,
	query.NewListTagsHandler,
)

// InitializeHTTPHandler initializes the inventory HTTP handler with
// all dependencies
func InitializeHTTPHandler(db *gorm.DB) (*http.InventoryHandler, error) {
	wire.Build(
		RepositorySet,
		HandlerSet,
		http.NewInventoryHandler,
	)
	return nil, nil
}
