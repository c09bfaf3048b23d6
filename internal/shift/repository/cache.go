package repository

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/pickerpack/fulfillment/internal/shift/domain"
	"github.com/pickerpack/fulfillment/pkg/logger"
)

const geofenceCacheTTL = 5 * time.Minute

// CachedGeofenceRepository is a Redis read-through cache in front of a
// GeofenceRepository. Geofence settings are read on every clock-in but
// change rarely. A nil client degrades to passthrough.
type CachedGeofenceRepository struct {
	inner  domain.GeofenceRepository
	client *redis.Client
}

// NewCachedGeofenceRepository wraps a geofence repository with caching.
func NewCachedGeofenceRepository(inner domain.GeofenceRepository, client *redis.Client) *CachedGeofenceRepository {
	return &CachedGeofenceRepository{inner: inner, client: client}
}

func geofenceKey(warehouse string) string {
	return fmt.Sprintf("geofence:%s", warehouse)
}

func (r *CachedGeofenceRepository) ByWarehouse(warehouse string) (*domain.GeofenceSetting, error) {
	if r.client == nil {
		return r.inner.ByWarehouse(warehouse)
	}

	ctx := context.Background()
	key := geofenceKey(warehouse)

	cached, err := r.client.Get(ctx, key).Bytes()
	if err == nil && len(cached) > 0 {
		var setting domain.GeofenceSetting
		if err := json.Unmarshal(cached, &setting); err == nil {
			logger.Logger.Debug().Str("warehouse", warehouse).Msg("Geofence cache hit")
			return &setting, nil
		}
	}

	setting, err := r.inner.ByWarehouse(warehouse)
	if err != nil {
		return nil, err
	}

	if data, err := json.Marshal(setting); err == nil {
		if err := r.client.Set(ctx, key, data, geofenceCacheTTL).Err(); err != nil {
			logger.Logger.Warn().Err(err).Str("warehouse", warehouse).Msg("Failed to cache geofence")
		}
	}
	return setting, nil
}

func (r *CachedGeofenceRepository) Upsert(setting *domain.GeofenceSetting) error {
	if err := r.inner.Upsert(setting); err != nil {
		return err
	}
	r.invalidate(setting.Warehouse)
	return nil
}

func (r *CachedGeofenceRepository) Delete(warehouse string) error {
	if err := r.inner.Delete(warehouse); err != nil {
		return err
	}
	r.invalidate(warehouse)
	return nil
}

func (r *CachedGeofenceRepository) List() ([]domain.GeofenceSetting, error) {
	return r.inner.List()
}

func (r *CachedGeofenceRepository) invalidate(warehouse string) {
	if r.client == nil {
		return
	}
	if err := r.client.Del(context.Background(), geofenceKey(warehouse)).Err(); err != nil {
		logger.Logger.Warn().Err(err).Str("warehouse", warehouse).Msg("Failed to invalidate geofence cache")
	}
}
