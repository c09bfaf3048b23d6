package command

import (
	"errors"
	"time"

	"github.com/pickerpack/fulfillment/internal/shift/domain"
	"github.com/pickerpack/fulfillment/pkg/geo"
)

// StartShiftCommand clocks a worker in. Selfie and GPS fix are both
// mandatory; the shift is refused if the fix falls outside the
// warehouse geofence.
type StartShiftCommand struct {
	UserID    uint
	Warehouse string
	Zone      string
	SelfieURI string
	Latitude  *float64
	Longitude *float64
}

// StartShiftHandler handles start shift commands.
type StartShiftHandler struct {
	shifts    domain.ShiftRepository
	geofences domain.GeofenceRepository
}

// NewStartShiftHandler creates a new start shift handler.
func NewStartShiftHandler(shifts domain.ShiftRepository, geofences domain.GeofenceRepository) *StartShiftHandler {
	return &StartShiftHandler{shifts: shifts, geofences: geofences}
}

// Handle executes the start shift command.
func (h *StartShiftHandler) Handle(cmd StartShiftCommand) (*domain.Shift, error) {
	if cmd.SelfieURI == "" {
		return nil, domain.ErrSelfieRequired
	}
	if cmd.Latitude == nil || cmd.Longitude == nil {
		return nil, domain.ErrLocationRequired
	}

	if _, err := h.shifts.ActiveByUser(cmd.UserID); err == nil {
		return nil, domain.ErrActiveShiftExists
	} else if !errors.Is(err, domain.ErrShiftNotStarted) {
		return nil, err
	}

	validated, err := h.validateLocation(cmd.Warehouse, *cmd.Latitude, *cmd.Longitude)
	if err != nil {
		return nil, err
	}

	shift := &domain.Shift{
		UserID:       cmd.UserID,
		Warehouse:    cmd.Warehouse,
		Zone:         cmd.Zone,
		Status:       domain.ShiftActive,
		SelfieURI:    cmd.SelfieURI,
		StartLat:     *cmd.Latitude,
		StartLon:     *cmd.Longitude,
		GeoValidated: validated,
		StartedAt:    time.Now(),
	}
	if err := h.shifts.Create(shift); err != nil {
		return nil, err
	}
	return shift, nil
}

// validateLocation checks the GPS fix against the warehouse geofence.
// A warehouse with no fence, or a disabled one, admits any location.
func (h *StartShiftHandler) validateLocation(warehouse string, lat, lon float64) (bool, error) {
	setting, err := h.geofences.ByWarehouse(warehouse)
	if err != nil {
		if errors.Is(err, domain.ErrGeofenceNotConfigured) {
			return true, nil
		}
		return false, err
	}
	if !setting.Enabled {
		return true, nil
	}

	if !geo.WithinRadius(lat, lon, setting.Latitude, setting.Longitude, setting.RadiusMeters) {
		return false, domain.ErrOutsideGeofence
	}
	return true, nil
}
