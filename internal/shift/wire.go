//go:build wireinject
// +build wireinject

package shift

import (
	"github.com/google/wire"
	"github.com/redis/go-redis/v9"
	"gorm.io/gorm"

	fulfillment "github.com/pickerpack/fulfillment/internal/fulfillment/domain"

	"github.com/pickerpack/fulfillment/internal/shift/delivery/http"
	"github.com/pickerpack/fulfillment/internal/shift/domain"
	"github.com/pickerpack/fulfillment/internal/shift/repository"
	"github.com/pickerpack/fulfillment/internal/shift/usecase/command"
	"github.com/pickerpack/fulfillment/internal/shift/usecase/query"
)

// ProvideShiftRepository provides the shift repository
func ProvideShiftRepository(db *gorm.DB) domain.ShiftRepository {
	return repository.NewGormShiftRepository(db)
}

// ProvideGeofenceRepository provides the cached geofence repository.
// The redis client may be nil, which disables caching.
func ProvideGeofenceRepository(db *gorm.DB, client *redis.Client) domain.GeofenceRepository {
	return repository.NewCachedGeofenceRepository(repository.NewGormGeofenceRepository(db), client)
}

var RepositorySet = wire.NewSet(
	ProvideShiftRepository,
	ProvideGeofenceRepository,
)

var HandlerSet = wire.NewSet(
	command.NewStartShiftHandler,
	command.NewEndShiftHandler,
	command.NewUpsertGeofenceHandler,
	command.NewDeleteGeofenceHandler,
	query.NewActiveShiftHandler,
	query.NewShiftGuard,
)

// InitializeHTTPHandler initializes the shift HTTP handler with all
// dependencies
func InitializeHTTPHandler(db *gorm.DB, client *redis.Client, tasks fulfillment.TaskRepository) (*http.ShiftHandler, error) {
	wire.Build(
		RepositorySet,
		HandlerSet,
		http.NewShiftHandler,
	)
	return nil, nil
}

// InitializeShiftGuard initializes the clock-in precondition guard
func InitializeShiftGuard(db *gorm.DB) (*query.ShiftGuard, error) {
	wire.Build(
		ProvideShiftRepository,
		query.NewShiftGuard,
	)
	return nil, nil
}
