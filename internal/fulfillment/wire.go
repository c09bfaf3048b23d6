//go:build wireinject
// +build wireinject

package fulfillment

import (
	"github.com/google/wire"
	"gorm.io/gorm"

	invdomain "github.com/pickerpack/fulfillment/internal/inventory/domain"
	invrepo "github.com/pickerpack/fulfillment/internal/inventory/repository"

	"github.com/pickerpack/fulfillment/internal/fulfillment/assign"
	"github.com/pickerpack/fulfillment/internal/fulfillment/delivery/http"
	"github.com/pickerpack/fulfillment/internal/fulfillment/domain"
	"github.com/pickerpack/fulfillment/internal/fulfillment/repository"
	"github.com/pickerpack/fulfillment/internal/fulfillment/usecase/command"
	"github.com/pickerpack/fulfillment/internal/fulfillment/usecase/query"
)

// ProvideOrderRepository provides the order repository
func ProvideOrderRepository(db *gorm.DB) domain.OrderRepository {
	return repository.NewGormOrderRepository(db)
}

// ProvideTaskRepository provides the task repository
func ProvideTaskRepository(db *gorm.DB) domain.TaskRepository {
	return repository.NewGormTaskRepository(db)
}

// ProvideLedger provides the traced lock tag ledger
func ProvideLedger(db *gorm.DB) invdomain.Ledger {
	return invrepo.NewGormLedgerWithTracing(db)
}

// ProvideRotation provides the shared round-robin assignment state
func ProvideRotation() *assign.RoundRobin {
	return assign.NewRoundRobin()
}

var RepositorySet = wire.NewSet(
	ProvideOrderRepository,
	ProvideTaskRepository,
	ProvideLedger,
	ProvideRotation,
)

var HandlerSet = wire.NewSet(
	command.NewCreateOrderHandler,
	command.NewProcessScanHandler,
	command.NewCompleteTaskHandler,
	query.NewListTasksHandler,
	query.NewGetTaskHandler,
	query.NewPickingQueueHandler,
	query.NewListOrdersHandler,
	query.NewGetOrderHandler,
	query.NewPackingQueueHandler,
)

// InitializeHTTPHandler initializes the fulfillment HTTP handler with
// all dependencies
func InitializeHTTPHandler(
	db *gorm.DB,
	publisher command.EventPublisher,
	guard http.ShiftGuard,
	workers http.WorkerDirectory,
) (*http.FulfillmentHandler, error) {
	wire.Build(
		RepositorySet,
		HandlerSet,
		http.NewFulfillmentHandler,
	)
	return nil, nil
}
