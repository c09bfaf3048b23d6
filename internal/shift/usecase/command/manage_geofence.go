package command

import (
	"fmt"

	"github.com/pickerpack/fulfillment/internal/shift/domain"
)

// UpsertGeofenceCommand creates or replaces a warehouse geofence.
type UpsertGeofenceCommand struct {
	Warehouse    string
	Latitude     float64
	Longitude    float64
	RadiusMeters float64
	Enabled      bool
}

// UpsertGeofenceHandler handles geofence upsert commands.
type UpsertGeofenceHandler struct {
	repo domain.GeofenceRepository
}

// NewUpsertGeofenceHandler creates a new upsert geofence handler.
func NewUpsertGeofenceHandler(repo domain.GeofenceRepository) *UpsertGeofenceHandler {
	return &UpsertGeofenceHandler{repo: repo}
}

// Handle executes the upsert geofence command.
func (h *UpsertGeofenceHandler) Handle(cmd UpsertGeofenceCommand) (*domain.GeofenceSetting, error) {
	if cmd.Warehouse == "" {
		return nil, fmt.Errorf("warehouse is required")
	}
	if cmd.Latitude < -90 || cmd.Latitude > 90 {
		return nil, fmt.Errorf("latitude out of range")
	}
	if cmd.Longitude < -180 || cmd.Longitude > 180 {
		return nil, fmt.Errorf("longitude out of range")
	}
	if cmd.RadiusMeters <= 0 {
		return nil, fmt.Errorf("radius_meters must be positive")
	}

	setting := &domain.GeofenceSetting{
		Warehouse:    cmd.Warehouse,
		Latitude:     cmd.Latitude,
		Longitude:    cmd.Longitude,
		RadiusMeters: cmd.RadiusMeters,
		Enabled:      cmd.Enabled,
	}
	if err := h.repo.Upsert(setting); err != nil {
		return nil, fmt.Errorf("failed to upsert geofence: %w", err)
	}
	return setting, nil
}

// DeleteGeofenceHandler handles geofence delete commands.
type DeleteGeofenceHandler struct {
	repo domain.GeofenceRepository
}

// NewDeleteGeofenceHandler creates a new delete geofence handler.
func NewDeleteGeofenceHandler(repo domain.GeofenceRepository) *DeleteGeofenceHandler {
	return &DeleteGeofenceHandler{repo: repo}
}

// Handle executes the delete geofence command.
func (h *DeleteGeofenceHandler) Handle(warehouse string) error {
	if warehouse == "" {
		return fmt.Errorf("warehouse is required")
	}
	return h.repo.Delete(warehouse)
}
