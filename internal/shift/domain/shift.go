package domain

import (
	"errors"
	"time"

	"gorm.io/gorm"
)

// Shift status
const (
	ShiftNotStarted = "NotStarted"
	ShiftActive     = "Active"
	ShiftEnded      = "Ended"
)

var (
	ErrActiveShiftExists     = errors.New("an active shift already exists")
	ErrShiftNotStarted       = errors.New("no active shift")
	ErrShiftNotFound         = errors.New("shift not found")
	ErrSelfieRequired        = errors.New("selfie is required to start a shift")
	ErrLocationRequired      = errors.New("gps location is required to start a shift")
	ErrOutsideGeofence       = errors.New("location is outside the warehouse geofence")
	ErrGeofenceNotConfigured = errors.New("no geofence configured for warehouse")
)

// Shift is one worker's clock-in/clock-out window. The selfie is kept
// as an opaque URI; this service never stores the image itself.
type Shift struct {
	ID           uint           `json:"id" gorm:"primaryKey"`
	UserID       uint           `json:"user_id" gorm:"not null;index"`
	Warehouse    string         `json:"warehouse" gorm:"not null"`
	Zone         string         `json:"zone"`
	Status       string         `json:"status" gorm:"not null;default:'Active'"`
	SelfieURI    string         `json:"selfie_uri" gorm:"not null"`
	StartLat     float64        `json:"start_lat"`
	StartLon     float64        `json:"start_lon"`
	GeoValidated bool           `json:"geo_validated" gorm:"not null;default:false"`
	StartedAt    time.Time      `json:"started_at"`
	EndedAt      *time.Time     `json:"ended_at,omitempty"`
	CreatedAt    time.Time      `json:"created_at"`
	UpdatedAt    time.Time      `json:"updated_at"`
	DeletedAt    gorm.DeletedAt `json:"-" gorm:"index"`
}

func (Shift) TableName() string {
	return "shifts"
}

// GeofenceSetting is the per-warehouse clock-in perimeter.
type GeofenceSetting struct {
	ID           uint      `json:"id" gorm:"primaryKey"`
	Warehouse    string    `json:"warehouse" gorm:"uniqueIndex;not null"`
	Latitude     float64   `json:"latitude" gorm:"not null"`
	Longitude    float64   `json:"longitude" gorm:"not null"`
	RadiusMeters float64   `json:"radius_meters" gorm:"not null;default:200"`
	Enabled      bool      `json:"enabled" gorm:"not null;default:true"`
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`
}

func (GeofenceSetting) TableName() string {
	return "geofence_settings"
}

// ShiftSummary is the end-of-shift report shown to the worker.
type ShiftSummary struct {
	ShiftID        uint          `json:"shift_id"`
	Duration       time.Duration `json:"duration"`
	DurationHuman  string        `json:"duration_human"`
	TasksCompleted int64         `json:"tasks_completed"`
	TasksPending   int64         `json:"tasks_pending"`
	ItemsScanned   int64         `json:"items_scanned"`
	TasksPerHour   float64       `json:"tasks_per_hour"`
}

// ShiftRepository defines the contract for shift data access.
type ShiftRepository interface {
	Create(shift *Shift) error
	FindByID(id uint) (*Shift, error)

	// ActiveByUser returns the open shift for a worker, or
	// ErrShiftNotStarted if none exists.
	ActiveByUser(userID uint) (*Shift, error)

	End(shiftID uint, at time.Time) error
	ListByUser(userID uint, limit int) ([]Shift, error)
}

// GeofenceRepository defines the contract for geofence settings.
type GeofenceRepository interface {
	Upsert(setting *GeofenceSetting) error
	ByWarehouse(warehouse string) (*GeofenceSetting, error)
	Delete(warehouse string) error
	List() ([]GeofenceSetting, error)
}
