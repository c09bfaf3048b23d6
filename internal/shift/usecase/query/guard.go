package query

import (
	"errors"

	"github.com/pickerpack/fulfillment/internal/shift/domain"
)

// ActiveShiftHandler returns a worker's open shift, if any.
type ActiveShiftHandler struct {
	repo domain.ShiftRepository
}

// NewActiveShiftHandler creates a new active shift handler.
func NewActiveShiftHandler(repo domain.ShiftRepository) *ActiveShiftHandler {
	return &ActiveShiftHandler{repo: repo}
}

// Handle executes the active shift query.
func (h *ActiveShiftHandler) Handle(userID uint) (*domain.Shift, error) {
	return h.repo.ActiveByUser(userID)
}

// ShiftGuard answers the one question the fulfillment routes need:
// may this worker act right now. It never mutates anything.
type ShiftGuard struct {
	repo domain.ShiftRepository
}

// NewShiftGuard creates a new shift guard.
func NewShiftGuard(repo domain.ShiftRepository) *ShiftGuard {
	return &ShiftGuard{repo: repo}
}

// IsClockedInAndGeoValid reports whether the worker has an active,
// geofence-validated shift. Repository failures deny rather than
// allow.
func (g *ShiftGuard) IsClockedInAndGeoValid(userID uint) (bool, error) {
	shift, err := g.repo.ActiveByUser(userID)
	if err != nil {
		if errors.Is(err, domain.ErrShiftNotStarted) {
			return false, nil
		}
		return false, err
	}
	return shift.GeoValidated, nil
}
