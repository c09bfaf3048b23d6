package command

import (
	"errors"
	"testing"

	"gorm.io/gorm"

	"github.com/pickerpack/fulfillment/internal/shift/domain"
	"github.com/pickerpack/fulfillment/internal/shift/repository"
	"github.com/pickerpack/fulfillment/internal/testutil"
)

// Warehouse WH1 sits at the fence center; nearDock is roughly 100m
// out, farAway roughly 2.5km.
const (
	fenceLat = 40.7128
	fenceLon = -74.0060

	nearLat = 40.7137
	nearLon = -74.0060

	farLat = 40.7350
	farLon = -74.0060
)

func ptr(v float64) *float64 { return &v }

func newShiftEnv(t *testing.T) (*gorm.DB, *StartShiftHandler, domain.ShiftRepository, domain.GeofenceRepository) {
	t.Helper()
	db := testutil.NewDB(t, &domain.Shift{}, &domain.GeofenceSetting{})
	shifts := repository.NewGormShiftRepository(db)
	geofences := repository.NewGormGeofenceRepository(db)
	return db, NewStartShiftHandler(shifts, geofences), shifts, geofences
}

func seedFence(t *testing.T, geofences domain.GeofenceRepository, radius float64, enabled bool) {
	t.Helper()
	err := geofences.Upsert(&domain.GeofenceSetting{
		Warehouse:    "WH1",
		Latitude:     fenceLat,
		Longitude:    fenceLon,
		RadiusMeters: radius,
		Enabled:      enabled,
	})
	if err != nil {
		t.Fatalf("failed to seed geofence: %v", err)
	}
}

func TestStartShiftInsideGeofence(t *testing.T) {
	_, handler, _, geofences := newShiftEnv(t)
	seedFence(t, geofences, 200, true)

	shift, err := handler.Handle(StartShiftCommand{
		UserID:    1,
		Warehouse: "WH1",
		Zone:      "Z-A",
		SelfieURI: "s3://selfies/1.jpg",
		Latitude:  ptr(nearLat),
		Longitude: ptr(nearLon),
	})
	if err != nil {
		t.Fatalf("Handle failed: %v", err)
	}
	if shift.Status != domain.ShiftActive {
		t.Errorf("expected Active, got %s", shift.Status)
	}
	if !shift.GeoValidated {
		t.Error("shift inside the fence must be geo validated")
	}
}

func TestStartShiftOutsideGeofence(t *testing.T) {
	db, handler, _, geofences := newShiftEnv(t)
	seedFence(t, geofences, 200, true)

	_, err := handler.Handle(StartShiftCommand{
		UserID:    1,
		Warehouse: "WH1",
		SelfieURI: "s3://selfies/1.jpg",
		Latitude:  ptr(farLat),
		Longitude: ptr(farLon),
	})
	if !errors.Is(err, domain.ErrOutsideGeofence) {
		t.Fatalf("expected ErrOutsideGeofence, got %v", err)
	}

	var count int64
	db.Model(&domain.Shift{}).Count(&count)
	if count != 0 {
		t.Errorf("rejected clock-in still created %d shifts", count)
	}
}

func TestStartShiftDisabledFenceAdmitsAnywhere(t *testing.T) {
	_, handler, _, geofences := newShiftEnv(t)
	seedFence(t, geofences, 200, false)

	shift, err := handler.Handle(StartShiftCommand{
		UserID:    1,
		Warehouse: "WH1",
		SelfieURI: "s3://selfies/1.jpg",
		Latitude:  ptr(farLat),
		Longitude: ptr(farLon),
	})
	if err != nil {
		t.Fatalf("Handle failed: %v", err)
	}
	if !shift.GeoValidated {
		t.Error("disabled fence should validate any location")
	}
}

func TestStartShiftUnconfiguredWarehouseAdmits(t *testing.T) {
	_, handler, _, _ := newShiftEnv(t)

	shift, err := handler.Handle(StartShiftCommand{
		UserID:    1,
		Warehouse: "WH9",
		SelfieURI: "s3://selfies/1.jpg",
		Latitude:  ptr(farLat),
		Longitude: ptr(farLon),
	})
	if err != nil {
		t.Fatalf("Handle failed: %v", err)
	}
	if !shift.GeoValidated {
		t.Error("warehouse without a fence should admit any location")
	}
}

func TestStartShiftRequiresSelfieAndLocation(t *testing.T) {
	_, handler, _, _ := newShiftEnv(t)

	_, err := handler.Handle(StartShiftCommand{
		UserID:    1,
		Warehouse: "WH1",
		Latitude:  ptr(nearLat),
		Longitude: ptr(nearLon),
	})
	if !errors.Is(err, domain.ErrSelfieRequired) {
		t.Errorf("expected ErrSelfieRequired, got %v", err)
	}

	_, err = handler.Handle(StartShiftCommand{
		UserID:    1,
		Warehouse: "WH1",
		SelfieURI: "s3://selfies/1.jpg",
	})
	if !errors.Is(err, domain.ErrLocationRequired) {
		t.Errorf("expected ErrLocationRequired, got %v", err)
	}
}

func TestStartShiftRejectsSecondActiveShift(t *testing.T) {
	_, handler, _, _ := newShiftEnv(t)

	cmd := StartShiftCommand{
		UserID:    1,
		Warehouse: "WH1",
		SelfieURI: "s3://selfies/1.jpg",
		Latitude:  ptr(nearLat),
		Longitude: ptr(nearLon),
	}
	if _, err := handler.Handle(cmd); err != nil {
		t.Fatalf("first clock-in failed: %v", err)
	}
	_, err := handler.Handle(cmd)
	if !errors.Is(err, domain.ErrActiveShiftExists) {
		t.Errorf("expected ErrActiveShiftExists, got %v", err)
	}
}
